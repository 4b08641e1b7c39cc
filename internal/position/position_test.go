package position

import (
	"math"
	"testing"

	jgcfg "jongga/internal/config"
	"jongga/internal/market"
)

func positionConfig() jgcfg.PositionConfig {
	return jgcfg.PositionConfig{
		MaxPositions:       5,
		MaxWeightPerSymbol: 0.30,
		MinCashPct:         0.20,
		KellyRecentTrades:  20,
		KellyMaxFraction:   0.25,
		UseHalfKelly:       true,
	}
}

func TestKellyFallbacks(t *testing.T) {
	cfg := positionConfig()

	// 거래 10건 미만 → 기본 10%
	if f := KellyFraction(TradeStats{TotalTrades: 5, WinRate: 0.9}, cfg); f != 0.10 {
		t.Errorf("데이터 부족 비율 = %.2f, want 0.10", f)
	}
	// 승률 40% 미만 → 최소 5%
	if f := KellyFraction(TradeStats{TotalTrades: 30, WinRate: 0.3, AvgWinPct: 5, AvgLossPct: -2}, cfg); f != 0.05 {
		t.Errorf("저승률 비율 = %.2f, want 0.05", f)
	}
	// 손실 0 (전승) → 상한
	if f := KellyFraction(TradeStats{TotalTrades: 15, WinRate: 1.0, AvgWinPct: 3, AvgLossPct: 0}, cfg); f != 0.25 {
		t.Errorf("전승 비율 = %.2f, want 0.25", f)
	}
	// 기댓값 음수 → 최소 5%
	if f := KellyFraction(TradeStats{TotalTrades: 20, WinRate: 0.45, AvgWinPct: 1, AvgLossPct: -3}, cfg); f != 0.05 {
		t.Errorf("음수 기댓값 비율 = %.2f, want 0.05", f)
	}
}

func TestKellyHalfAndCap(t *testing.T) {
	cfg := positionConfig()
	// p=0.6, avgWin=4%, avgLoss=-2% → b=2, f=(1.2-0.4)/2=0.4, half=0.2
	stats := TradeStats{TotalTrades: 20, WinRate: 0.6, AvgWinPct: 4, AvgLossPct: -2}
	if f := KellyFraction(stats, cfg); math.Abs(f-0.20) > 1e-9 {
		t.Errorf("Half Kelly = %.4f, want 0.20", f)
	}

	// p=0.7, b=3 → f=(2.1-0.3)/3=0.6, half=0.3 → 상한 0.25
	stats = TradeStats{TotalTrades: 20, WinRate: 0.7, AvgWinPct: 6, AvgLossPct: -2}
	if f := KellyFraction(stats, cfg); f != 0.25 {
		t.Errorf("상한 적용 = %.4f, want 0.25", f)
	}

	// 풀켈리 설정
	cfg.UseHalfKelly = false
	cfg.KellyMaxFraction = 1.0
	stats = TradeStats{TotalTrades: 20, WinRate: 0.6, AvgWinPct: 4, AvgLossPct: -2}
	if f := KellyFraction(stats, cfg); math.Abs(f-0.40) > 1e-9 {
		t.Errorf("풀켈리 = %.4f, want 0.40", f)
	}
}

func goodStats() TradeStats {
	return TradeStats{TotalTrades: 20, WinRate: 0.6, AvgWinPct: 4, AvgLossPct: -2} // 켈리 0.20
}

func TestSizerComposesMultipliers(t *testing.T) {
	s := NewSizer(positionConfig())
	acct := market.Account{Cash: 10_000_000, TotalAsset: 10_000_000}

	// 0.20 × 1.0(STANDARD) × 1.0(NORMAL) = 20% → 200만원 / 10,000원 = 200주
	res := s.Size(acct, SizeRequest{Symbol: "005930", Price: 10000, TierMultiplier: 1.0, RegimeMult: 1.0, Stats: goodStats()})
	if res.Skipped {
		t.Fatalf("생략됨: %s", res.Reason)
	}
	if res.Quantity != 200 {
		t.Errorf("수량 = %d, want 200", res.Quantity)
	}

	// CAUTION 0.5 적용 → 10% → 100주
	res = s.Size(acct, SizeRequest{Symbol: "005930", Price: 10000, TierMultiplier: 1.0, RegimeMult: 0.5, Stats: goodStats()})
	if res.Quantity != 100 {
		t.Errorf("CAUTION 수량 = %d, want 100", res.Quantity)
	}

	// DANGER 0.0 → 생략
	res = s.Size(acct, SizeRequest{Symbol: "005930", Price: 10000, TierMultiplier: 1.5, RegimeMult: 0.0, Stats: goodStats()})
	if !res.Skipped {
		t.Error("DANGER 인데 진입")
	}
}

func TestSizerClipsToMaxWeight(t *testing.T) {
	s := NewSizer(positionConfig())
	acct := market.Account{Cash: 10_000_000, TotalAsset: 10_000_000}
	// 0.25(전승 상한) × 1.5(PRIORITY) = 0.375 → 종목당 상한 0.30 클립
	stats := TradeStats{TotalTrades: 15, WinRate: 1.0, AvgWinPct: 3, AvgLossPct: 0}
	res := s.Size(acct, SizeRequest{Symbol: "005930", Price: 10000, TierMultiplier: 1.5, RegimeMult: 1.0, Stats: stats})
	if math.Abs(res.Weight-0.30) > 1e-9 {
		t.Errorf("Weight = %.3f, want 0.30", res.Weight)
	}
	if res.Quantity != 300 {
		t.Errorf("수량 = %d, want 300", res.Quantity)
	}
}

func TestSizerRespectsMinCash(t *testing.T) {
	s := NewSizer(positionConfig())
	// 총자산 1,000만 중 현금 250만: 최소 현금 200만 → 가용 50만
	acct := market.Account{Cash: 2_500_000, TotalAsset: 10_000_000,
		Holdings: []market.Holding{{Symbol: "A"}}}
	res := s.Size(acct, SizeRequest{Symbol: "005930", Price: 10000, TierMultiplier: 1.0, RegimeMult: 1.0, Stats: goodStats()})
	if res.Skipped {
		t.Fatalf("생략됨: %s", res.Reason)
	}
	if res.Quantity != 50 {
		t.Errorf("수량 = %d, want 50 (가용 50만원)", res.Quantity)
	}

	// 현금이 최소 기준 이하면 생략
	acct.Cash = 1_500_000
	res = s.Size(acct, SizeRequest{Symbol: "005930", Price: 10000, TierMultiplier: 1.0, RegimeMult: 1.0, Stats: goodStats()})
	if !res.Skipped {
		t.Error("현금 부족인데 진입")
	}
}

func TestSizerPositionCap(t *testing.T) {
	s := NewSizer(positionConfig())
	holdings := make([]market.Holding, 5)
	acct := market.Account{Cash: 10_000_000, TotalAsset: 20_000_000, Holdings: holdings}
	res := s.Size(acct, SizeRequest{Symbol: "005930", Price: 10000, TierMultiplier: 1.0, RegimeMult: 1.0, Stats: goodStats()})
	if !res.Skipped {
		t.Error("5포지션 보유 중인데 진입")
	}
}
