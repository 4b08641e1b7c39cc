package exits

import (
	"jongga/internal/logger"
)

// 中文说明：
// 장후 리스크 관리。
//   - 3시 59분의 법칙: 동시호가 매도/매수 잔량 비율로 종가 정리 비중 산출
//   - 시간외 단일가: 등락률 기준 익절/리스크 축소 비중 산출
// 반환값은 매도 비중（0 = 홀딩）。

// Rule359 동시호가 잔량 비율 → 종가 정리 비중
func Rule359(sellQty, buyQty float64) float64 {
	if buyQty <= 0 {
		return 1.0
	}
	ratio := sellQty / buyQty
	switch {
	case ratio >= 2.0:
		logger.Warnf("[AFTERHOURS] 359 법칙: 매도:매수 %.1f:1 — 50%% 정리", ratio)
		return 0.5
	case ratio >= 1.5:
		logger.Warnf("[AFTERHOURS] 359 법칙: 매도:매수 %.1f:1 — 30%% 정리", ratio)
		return 0.3
	}
	return 0.0
}

// OvernightExit 시간외 단일가 등락률 → 대응 비중
func OvernightExit(changePct float64) float64 {
	switch {
	case changePct >= 4.0:
		logger.Infof("[AFTERHOURS] 시간외 +%.1f%% — 50%% 익절", changePct)
		return 0.5
	case changePct <= -2.0:
		logger.Warnf("[AFTERHOURS] 시간외 %.1f%% — 30%% 리스크 축소", changePct)
		return 0.3
	}
	return 0.0
}
