package exits

import (
	"jongga/internal/logger"
	"jongga/internal/market"
)

// 中文说明：
// 아침 추적 매도。두 갈래：
//   - 3분의 법칙: 09:00~09:03 구간 고가가 시초가를 못 넘으면 시간 손절
//   - 1분봉 EMA20 추적: 현재가가 EMA20 대비 기준 이하 이탈하면 매도
// 분봉 데이터가 부족하면 안전하게 보유 판정한다。

// MorningSignal 아침 추적 판정
type MorningSignal struct {
	Sell   bool
	Reason string
}

// ThreeMinuteRule 09:00~09:03 시초가 돌파 확인。
// bars 는 당일 1분봉 오름차순，최소 앞 3개가 09:00 구간이어야 한다。
func ThreeMinuteRule(symbol string, openPrice float64, bars []market.MinuteBar) MorningSignal {
	if len(bars) < 3 {
		logger.Warnf("[MORNING] %s 분봉 부족 (%d개) — 보유 유지", symbol, len(bars))
		return MorningSignal{Reason: "데이터 부족"}
	}
	maxHigh := 0.0
	for _, b := range bars[:3] {
		if b.High > maxHigh {
			maxHigh = b.High
		}
	}
	if maxHigh > openPrice {
		return MorningSignal{Reason: "시초가 돌파"}
	}
	logger.Warnf("[MORNING] %s 3분의 법칙 실패: 시초가 %.0f, 3분 고가 %.0f", symbol, openPrice, maxHigh)
	return MorningSignal{Sell: true, Reason: "시초가 미돌파"}
}

// EMATrail 1분봉 EMA20 추적。breakPct 는 음수 기준（예: -1.5）。
func EMATrail(symbol string, currentPrice float64, bars []market.MinuteBar, breakPct float64) MorningSignal {
	if len(bars) < 20 {
		logger.Warnf("[MORNING] %s EMA 데이터 부족 (%d개) — 보유 유지", symbol, len(bars))
		return MorningSignal{Reason: "데이터 부족"}
	}
	ema := market.EMA(market.MinuteCloses(bars), 20)
	if ema <= 0 {
		return MorningSignal{Reason: "데이터 부족"}
	}
	distance := (currentPrice - ema) / ema * 100
	if distance < breakPct {
		logger.Warnf("[MORNING] %s EMA20 이탈: 현재 %.0f, EMA %.0f (%.2f%%)",
			symbol, currentPrice, ema, distance)
		return MorningSignal{Sell: true, Reason: "이평선 이탈"}
	}
	return MorningSignal{Reason: "이평선 지지"}
}
