package risk

import (
	"fmt"
	"time"

	jgcfg "jongga/internal/config"
	"jongga/internal/logger"
)

// 中文说明：
// 기계적 손절 엔진。다섯 단계를 우선순위 순으로 평가하고 첫 번째로
// 발동한 단계만 반환한다（비상 청산이 언제나 다른 모든 단계를 이긴다）。
//
//   1. EMERGENCY     코스피 급락 → 전 포지션 즉시 시장가 청산
//   2. PRICE_STOP    총자산 대비 손실 한도 초과 → 전량 매도
//   3. MA20_STOP     종가가 20일선 하회 → 매도
//   4. TIME_STOP     09:03까지 시초가 미돌파 → 전량 매도
//   5. FORCED_EXIT   10:00 도달 → 전량 매도 (예외 없음)

// StopType 손절 단계
type StopType string

const (
	StopEmergency StopType = "EMERGENCY"
	StopPrice     StopType = "PRICE_STOP"
	StopMA20      StopType = "MA20_STOP"
	StopTime      StopType = "TIME_STOP_3MIN"
	StopTimeout   StopType = "TIMEOUT_10AM"
)

// StopSignal 손절 평가 결과
type StopSignal struct {
	Triggered bool
	Type      StopType
	Priority  int
	Reason    string
}

// StopInput 단일 포지션 평가 입력
type StopInput struct {
	EntryPrice  float64
	Price       float64
	Quantity    int64
	OpenPrice   float64 // 당일 시초가
	KospiChange float64 // 코스피 등락률 (%)
	MA20        float64 // 일봉 20일선
}

// StopLossEngine 기계적 손절 엔진
type StopLossEngine struct {
	cfg        jgcfg.RiskConfig
	totalAsset float64
}

func NewStopLossEngine(cfg jgcfg.RiskConfig) *StopLossEngine {
	return &StopLossEngine{cfg: cfg}
}

// SetTotalAsset 총자산 갱신（가격 손절의 분모）
func (e *StopLossEngine) SetTotalAsset(v float64) { e.totalAsset = v }

// Evaluate 우선순위 순 평가，첫 발동 단계 반환
func (e *StopLossEngine) Evaluate(now time.Time, in StopInput) StopSignal {
	// 1. 비상 청산
	if in.KospiChange <= e.cfg.EmergencyKospiDrop {
		return e.fire(StopEmergency, 1, fmt.Sprintf("코스피 %+.1f%% — 비상 청산", in.KospiChange))
	}
	// 2. 가격 손절: 손실액이 총자산의 한도 비율 이상
	if e.totalAsset > 0 {
		loss := (in.EntryPrice - in.Price) * float64(in.Quantity)
		if loss/e.totalAsset >= e.cfg.MaxSingleLossPct {
			pct := (in.Price - in.EntryPrice) / in.EntryPrice * 100
			return e.fire(StopPrice, 2, fmt.Sprintf("진입가 대비 %+.2f%% 손실 — 가격 손절", pct))
		}
	}
	// 3. 20일선 이탈
	if in.MA20 > 0 && in.Price < in.MA20 {
		return e.fire(StopMA20, 3, fmt.Sprintf("현재가 %.0f < 20MA %.0f — 20일선 이탈", in.Price, in.MA20))
	}
	hms := now.Format("15:04:05")
	// 4. 시간 손절: 기준 시각까지 시초가 미돌파
	if hms >= e.cfg.TimeStopAt && in.Price <= in.OpenPrice {
		return e.fire(StopTime, 4, fmt.Sprintf("%s 시초가 미돌파 — 3분 시간 손절", hms))
	}
	// 5. 강제 청산
	if hms >= e.cfg.ForcedTimeoutAt {
		return e.fire(StopTimeout, 5, "10:00 도달 — 강제 청산 (예외 없음)")
	}
	return StopSignal{}
}

func (e *StopLossEngine) fire(t StopType, priority int, reason string) StopSignal {
	logger.Warnf("[STOP] %s 발동: %s", t, reason)
	return StopSignal{Triggered: true, Type: t, Priority: priority, Reason: reason}
}
