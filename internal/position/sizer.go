package position

import (
	"fmt"
	"math"

	jgcfg "jongga/internal/config"
	"jongga/internal/logger"
	"jongga/internal/market"
)

// 中文说明：
// 최종 비중 = 켈리 비율 × 진입 등급 배수 × 레짐 배수。
// 종목당 상한으로 클립하고，최소 현금 보유와 포지션 개수 한도를
// 지킨 뒤 주수로 환산한다。비중 0 은 진입 생략。

// SizeRequest 단일 진입 비중 산출 입력
type SizeRequest struct {
	Symbol         string
	Price          float64
	TierMultiplier float64 // PRIORITY 1.5 / STANDARD 1.0 / SMALL 0.5 / SKIP 0.0
	RegimeMult     float64 // NORMAL 1.0 / CAUTION 0.5 / DANGER 0.0
	Stats          TradeStats
}

// SizeResult 산출 결과
type SizeResult struct {
	Weight     float64 // 총자산 대비 최종 비중
	Quantity   int64
	Investment float64
	Skipped    bool
	Reason     string
}

// Sizer 포지션 사이저
type Sizer struct {
	cfg jgcfg.PositionConfig
}

func NewSizer(cfg jgcfg.PositionConfig) *Sizer {
	return &Sizer{cfg: cfg}
}

// Size 계좌 상태를 반영해 주문 수량 결정
func (s *Sizer) Size(acct market.Account, req SizeRequest) SizeResult {
	if req.Price <= 0 {
		return SizeResult{Skipped: true, Reason: "가격 정보 없음"}
	}
	if len(acct.Holdings) >= s.cfg.MaxPositions {
		return SizeResult{Skipped: true,
			Reason: fmt.Sprintf("포지션 한도 도달 (%d/%d)", len(acct.Holdings), s.cfg.MaxPositions)}
	}

	weight := KellyFraction(req.Stats, s.cfg) * req.TierMultiplier * req.RegimeMult
	if weight <= 0 {
		return SizeResult{Skipped: true, Reason: "산출 비중 0 — 진입 생략"}
	}
	if weight > s.cfg.MaxWeightPerSymbol {
		weight = s.cfg.MaxWeightPerSymbol
	}

	investment := acct.TotalAsset * weight

	// 최소 현금 보유: 주문 후 현금이 기준 아래로 내려가면 주문액 축소
	minCash := acct.TotalAsset * s.cfg.MinCashPct
	available := acct.Cash - minCash
	if available <= 0 {
		return SizeResult{Skipped: true, Reason: "최소 현금 보유 기준 미달"}
	}
	if investment > available {
		investment = available
		weight = investment / acct.TotalAsset
	}

	// 부동소수 오차로 정수비 입력이 한 주 깎이지 않게 보정 후 내림
	qty := int64(math.Floor(investment/req.Price + 1e-9))
	if qty < 1 {
		return SizeResult{Skipped: true, Reason: "1주 미만 — 진입 생략"}
	}

	res := SizeResult{
		Weight:     weight,
		Quantity:   qty,
		Investment: float64(qty) * req.Price,
	}
	logger.Infof("[SIZER] %s %d주 (비중 %.1f%%, 투자금 %.0f원)",
		req.Symbol, qty, weight*100, res.Investment)
	return res
}
