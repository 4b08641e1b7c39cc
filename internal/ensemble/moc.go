package ensemble

import (
	"jongga/internal/logger"
)

// 中文说明：
// LOGIC 3 MOC Imbalance。동시호가에서 매도잔량이 매수잔량을 압도하는데
// 주가가 지지되면 「역설적 호가창」— 밤사이 가치 회복(Reversal)을 기대。

const (
	paradoxRatio       = 2.0 // 매도:매수 2:1 이상
	strongParadoxRatio = 3.0
)

// MOCInput LOGIC 3 输入（15:20 이후 동시호가 구간 스냅샷）
type MOCInput struct {
	SellOrderQty   float64
	BuyOrderQty    float64
	Price          float64
	ExpectedClose  float64
	PriceAt1520    float64
	BuyOrderSurge  bool
	ExpectedRising bool
}

// MOCResult LOGIC 3 산출
type MOCResult struct {
	Score          float64
	ImbalanceRatio float64
	Paradoxical    bool
	PriceHolding   bool
}

// MOCScore LOGIC 3 점수 산출 (0~100)
func MOCScore(symbol, name string, in MOCInput) MOCResult {
	var res MOCResult
	if in.BuyOrderQty > 0 {
		res.ImbalanceRatio = in.SellOrderQty / in.BuyOrderQty
	}

	score := 0.0

	// 1. 역설적 호가창 (0~35)
	switch {
	case res.ImbalanceRatio >= strongParadoxRatio:
		if in.Price >= in.PriceAt1520*0.995 {
			score += 35
			res.Paradoxical = true
		}
	case res.ImbalanceRatio >= paradoxRatio:
		if in.Price >= in.PriceAt1520*0.995 {
			score += 25
			res.Paradoxical = true
		}
	case res.ImbalanceRatio >= 1.5:
		if in.Price >= in.PriceAt1520*0.997 {
			score += 15
		}
	}

	// 2. 예상체결가 상승 추이 (0~25)
	if in.ExpectedRising && in.Price > 0 {
		diffPct := (in.ExpectedClose - in.Price) / in.Price * 100
		switch {
		case diffPct > 0.5:
			score += 25
		case diffPct > 0.2:
			score += 15
		case diffPct > 0:
			score += 8
		}
	}

	// 3. 동시호가 매수 주문 급증 (0~20)
	if in.BuyOrderSurge {
		score += 20
	}

	// 4. 주가 지지력 (0~20)
	if in.PriceAt1520 > 0 {
		change := (in.Price - in.PriceAt1520) / in.PriceAt1520 * 100
		switch {
		case change >= 0.3:
			score += 20
			res.PriceHolding = true
		case change >= 0:
			score += 12
			res.PriceHolding = true
		case change >= -0.3:
			score += 5
		}
	}

	res.Score = clamp(score)

	logger.Debugf("[LOGIC3] %s(%s) 점수=%.1f 매도:매수=%.1f:1 역설=%v 지지=%v",
		name, symbol, res.Score, res.ImbalanceRatio, res.Paradoxical, res.PriceHolding)
	return res
}
