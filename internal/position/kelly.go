package position

import (
	jgcfg "jongga/internal/config"
	"jongga/internal/logger"
)

// 中文说明：
// 켈리 공식 기반 베팅 비율。f = (p·b − q) / b，b = 평균수익/평균손실。
// 실적이 얇거나 승률이 낮으면 고정 소액 비율로 후퇴하고，기본적으로
// Half Kelly 를 적용해 과베팅을 막는다。

// 후퇴 비율
const (
	kellyDefaultFraction = 0.10 // 거래 10건 미만
	kellyMinFraction     = 0.05 // 저승률/음수 기댓값
	kellyMinTrades       = 10
	kellyMinWinRate      = 0.4
)

// TradeStats 최근 거래 통계（storage 가 집계）
type TradeStats struct {
	TotalTrades int
	WinRate     float64 // 0~1
	AvgWinPct   float64 // 평균 승리 수익률 (%)
	AvgLossPct  float64 // 평균 손실률 (%, 음수)
}

// KellyFraction 통계 → 베팅 비율
func KellyFraction(stats TradeStats, cfg jgcfg.PositionConfig) float64 {
	if stats.TotalTrades < kellyMinTrades {
		logger.Warnf("[KELLY] 거래 데이터 부족 (%d건) — 기본 비율 %.0f%%",
			stats.TotalTrades, kellyDefaultFraction*100)
		return kellyDefaultFraction
	}

	p := stats.WinRate
	if p < kellyMinWinRate {
		logger.Warnf("[KELLY] 승률 과소 (%.1f%%) — 최소 비율", p*100)
		return kellyMinFraction
	}
	q := 1 - p

	avgWin := stats.AvgWinPct / 100
	avgLoss := stats.AvgLossPct / 100
	if avgLoss < 0 {
		avgLoss = -avgLoss
	}
	if avgLoss == 0 {
		// 모든 거래가 이익
		return cfg.KellyMaxFraction
	}

	b := avgWin / avgLoss
	f := (p*b - q) / b
	if f <= 0 {
		logger.Warnf("[KELLY] 기댓값 음수 (f=%.4f) — 최소 비율", f)
		return kellyMinFraction
	}
	if cfg.UseHalfKelly {
		f /= 2
	}
	if f > cfg.KellyMaxFraction {
		f = cfg.KellyMaxFraction
	}

	logger.Infof("[KELLY] p=%.2f b=%.2f → 베팅 비율 %.2f%%", p, b, f*100)
	return f
}
