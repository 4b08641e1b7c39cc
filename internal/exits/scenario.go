package exits

import (
	"fmt"
	"time"

	"jongga/internal/logger"
)

// 中文说明：
// 익일 아침 시나리오 분기。시초가 갭과 현재가의 시초가 대비 위치로
// 여섯 가지 시나리오를 나누고 각 시나리오의 매도 비중을 정한다。
// 하프 청산(0.5) 후 잔여 물량은 손절 사다리와 EMA 추적이 관리한다。

// Scenario 아침 청산 시나리오
type Scenario string

const (
	GapUpStrong  Scenario = "GAP_UP_STRONG"  // 갭 +4% 이상 + 시초가 위
	GapUpSuccess Scenario = "GAP_UP_SUCCESS" // 갭 +2% 이상 + 시초가 위
	GapUpWeak    Scenario = "GAP_UP_WEAK"    // 갭 상승했으나 시초가 붕괴
	GapDown      Scenario = "GAP_DOWN"       // 갭 -1% 이하
	FlatUp       Scenario = "FLAT_UP"        // 보합 출발, 시초가 위
	FlatDown     Scenario = "FLAT_DOWN"      // 보합 출발, 시초가 아래
)

// 시나리오별 갭 경계 (%)
const (
	strongGapPct  = 4.0
	successGapPct = 2.0
	gapDownPct    = -1.0
)

// Decision 시나리오 판정 결과
type Decision struct {
	Scenario  Scenario
	SellRatio float64 // 0.0(보유) ~ 1.0(전량)
	GapPct    float64
	Reason    string
}

// Resolve 진입가·시초가·현재가로 아침 시나리오 결정
func Resolve(entryPrice, openPrice, currentPrice float64, now time.Time) Decision {
	var d Decision
	if entryPrice > 0 {
		d.GapPct = (openPrice - entryPrice) / entryPrice * 100
	}
	aboveOpen := currentPrice >= openPrice

	switch {
	case d.GapPct >= successGapPct:
		switch {
		case !aboveOpen:
			d.Scenario, d.SellRatio = GapUpWeak, 1.0
			d.Reason = "갭 상승 후 시초가 붕괴 — 전량 청산"
		case d.GapPct >= strongGapPct:
			d.Scenario, d.SellRatio = GapUpStrong, 0.5
			d.Reason = "강한 갭 상승 유지 — 절반 익절 후 추세 추적"
		default:
			d.Scenario, d.SellRatio = GapUpSuccess, 0.5
			d.Reason = "갭 상승 유지 — 절반 익절"
		}
	case d.GapPct <= gapDownPct:
		d.Scenario, d.SellRatio = GapDown, 1.0
		d.Reason = "갭 하락 — 전량 청산"
	case aboveOpen:
		d.Scenario, d.SellRatio = FlatUp, 0.0
		d.Reason = "보합 출발, 시초가 지지 — 보유"
	default:
		d.Scenario, d.SellRatio = FlatDown, 0.5
		d.Reason = "보합 출발, 시초가 이탈 — 절반 정리"
	}

	logger.Infof("[EXIT] %s 시나리오 %s: 갭 %+.2f%%, 매도 %.0f%% (%s)",
		now.Format("15:04:05"), d.Scenario, d.GapPct, d.SellRatio*100, d.Reason)
	return d
}

// SellQuantity 매도 비중 → 주수 환산（보유 잔량 기준 내림）
func (d Decision) SellQuantity(held int64) int64 {
	if d.SellRatio >= 1.0 {
		return held
	}
	qty := int64(float64(held) * d.SellRatio)
	if qty < 0 {
		return 0
	}
	return qty
}

func (d Decision) String() string {
	return fmt.Sprintf("%s(갭 %+.2f%%, 매도 %.0f%%)", d.Scenario, d.GapPct, d.SellRatio*100)
}
