package ensemble

import (
	"math"

	"jongga/internal/logger"
)

// 中文说明：
// LOGIC 1 Tug of War（투자자 이질성）。机构偏好收盘 MOC 流动性、散户
// 偏好开盘情绪交易，两者的时间差造成日内价格被压而隔夜回归。
// 四个子项各 0~25，另有两处小额加分，总分截断到 [0,100]。

// TugOfWarInput LOGIC 1 输入
type TugOfWarInput struct {
	Open           float64
	Price          float64
	PrevClose      float64
	High           float64
	ForeignNet     float64
	InstitutionNet float64
	IndividualNet  float64
	NewHigh20d     bool
	MAAligned      bool
	Overnight5d    []float64 // 최근 5일 오버나이트 수익률 (%)
}

// TugOfWarResult LOGIC 1 산출
type TugOfWarResult struct {
	Score            float64
	IntradayReturn   float64
	DayReturn        float64
	AvgOvernight     float64
	IndividualRatio  float64
	MomentumAlive    bool
	NegativeIntraday bool
}

// TugOfWarScore LOGIC 1 점수 산출 (0~100)
func TugOfWarScore(symbol, name string, in TugOfWarInput) TugOfWarResult {
	var res TugOfWarResult

	if in.Open > 0 {
		res.IntradayReturn = (in.Price - in.Open) / in.Open * 100
	}
	res.NegativeIntraday = res.IntradayReturn < 0
	if in.PrevClose > 0 {
		res.DayReturn = (in.Price - in.PrevClose) / in.PrevClose * 100
	}
	if len(in.Overnight5d) > 0 {
		sum := 0.0
		for _, r := range in.Overnight5d {
			sum += r
		}
		res.AvgOvernight = sum / float64(len(in.Overnight5d))
	}
	totalAbs := math.Abs(in.ForeignNet) + math.Abs(in.InstitutionNet) + math.Abs(in.IndividualNet)
	if totalAbs > 0 {
		res.IndividualRatio = math.Abs(in.IndividualNet) / totalAbs * 100
	}
	res.MomentumAlive = in.NewHigh20d || in.MAAligned

	score := 0.0

	// 1. 장중 수익률 패턴: 장중 음수 + 전일대비 양수가 이상적
	switch {
	case res.NegativeIntraday && res.DayReturn > 0:
		score += 25
	case res.NegativeIntraday && res.DayReturn > -1:
		score += 18
	case res.DayReturn > 2:
		score += 12
	case res.DayReturn > 0:
		score += 6
	}

	// 2. 모멘텀 생존
	switch {
	case in.NewHigh20d && in.MAAligned:
		score += 25
	case in.NewHigh20d:
		score += 18
	case in.MAAligned:
		score += 12
	}
	if in.High > 0 && in.Price >= in.High*0.97 {
		score += 5
	}

	// 3. 수급 줄다리기: 외국인+기관 vs 개인
	fiNet := in.ForeignNet + in.InstitutionNet
	switch {
	case fiNet > 0 && in.IndividualNet < 0:
		score += 25
	case fiNet > 0:
		score += 15
	case in.ForeignNet > 0 || in.InstitutionNet > 0:
		score += 8
	}
	if res.IndividualRatio >= 60 {
		score += 3
	}

	// 4. 과거 오버나이트 수익률
	switch {
	case res.AvgOvernight >= 1.0:
		score += 25
	case res.AvgOvernight >= 0.5:
		score += 18
	case res.AvgOvernight >= 0.2:
		score += 10
	case res.AvgOvernight > 0:
		score += 5
	}

	res.Score = clamp(score)

	logger.Debugf("[LOGIC1] %s(%s) 점수=%.1f 장중=%+.2f%% 5일ON=%+.2f%% 외기=%+.0f",
		name, symbol, res.Score, res.IntradayReturn, res.AvgOvernight, fiNet)
	return res
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
