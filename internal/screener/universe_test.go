package screener

import (
	"testing"

	jgcfg "jongga/internal/config"
	"jongga/internal/market"
)

func universeConfig() jgcfg.UniverseConfig {
	return jgcfg.UniverseConfig{
		MinMarketCap:      300_000_000_000,
		MinTradingValue:   100_000_000_000,
		MinChangePct:      2.0,
		MaxChangePct:      15.0,
		MaxCandidates:     50,
		Tier1TradingValue: 1_000_000_000_000,
		Tier1MaxRank:      10,
		Tier2TradingValue: 300_000_000_000,
		Tier2ThemeRising:  2,
	}
}

func goodSnapshot() market.Snapshot {
	return market.Snapshot{
		Symbol:       "005930",
		Name:         "삼성전자",
		Price:        75000,
		Open:         73000,
		High:         76000,
		Low:          72500,
		MarketCap:    400e12,
		TradingValue: 500e9,
		ChangePct:    5.0,
	}
}

func TestCheckMustAllConditions(t *testing.T) {
	f := NewUniverseFilter(universeConfig())

	if reason, ok := f.CheckMust(goodSnapshot()); !ok {
		t.Fatalf("정상 종목이 제외됨: %s", reason)
	}

	cases := []struct {
		name   string
		mutate func(*market.Snapshot)
	}{
		{"시가총액 미달", func(s *market.Snapshot) { s.MarketCap = 200e9 }},
		{"거래대금 미달", func(s *market.Snapshot) { s.TradingValue = 50e9 }},
		{"등락률 하한", func(s *market.Snapshot) { s.ChangePct = 1.5 }},
		{"등락률 상한", func(s *market.Snapshot) { s.ChangePct = 16.0 }},
		{"관리종목", func(s *market.Snapshot) { s.IsManaged = true }},
		{"상한가", func(s *market.Snapshot) { s.IsLimitUp = true }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := goodSnapshot()
			tc.mutate(&s)
			if reason, ok := f.CheckMust(s); ok {
				t.Errorf("%s 인데 통과됨", tc.name)
			} else if reason == "" {
				t.Error("제외 사유가 비어 있음")
			}
		})
	}
}

func TestAssignTierPureAndIdempotent(t *testing.T) {
	f := NewUniverseFilter(universeConfig())

	cases := []struct {
		value  float64
		rank   int
		rising int
		want   Tier
	}{
		{1.2e12, 5, 0, Tier1},
		{1.2e12, 11, 0, Tier3}, // 거래대금은 충분하나 순위 밖
		{500e9, 15, 3, Tier2},
		{500e9, 15, 1, Tier3},
		{150e9, 1, 5, Tier3},
	}
	for _, tc := range cases {
		got := f.AssignTier(tc.value, tc.rank, tc.rising)
		if got != tc.want {
			t.Errorf("AssignTier(%.0f, %d, %d) = %d, want %d", tc.value, tc.rank, tc.rising, got, tc.want)
		}
		// 동일 입력 재평가 시 결과 불변
		if again := f.AssignTier(tc.value, tc.rank, tc.rising); again != got {
			t.Errorf("재평가 결과가 달라짐: %d != %d", again, got)
		}
	}
}

func TestFilterOrderingAndCap(t *testing.T) {
	cfg := universeConfig()
	cfg.MaxCandidates = 2
	f := NewUniverseFilter(cfg)

	a := goodSnapshot()
	a.Symbol = "A"
	a.TradingValue = 1.5e12 // Tier1 (rank 1)
	b := goodSnapshot()
	b.Symbol = "B"
	b.TradingValue = 200e9 // Tier3
	c := goodSnapshot()
	c.Symbol = "C"
	c.TradingValue = 2.0e12 // Tier1 (rank 3)

	out := f.Filter([]market.Snapshot{a, b, c}, nil)
	if len(out) != 2 {
		t.Fatalf("cap 적용 실패: %d개", len(out))
	}
	// Tier1 끼리는 거래대금 내림차순
	if out[0].Snapshot.Symbol != "C" || out[1].Snapshot.Symbol != "A" {
		t.Errorf("정렬 오류: %s, %s", out[0].Snapshot.Symbol, out[1].Snapshot.Symbol)
	}
}

func TestFilterExcludesFailures(t *testing.T) {
	f := NewUniverseFilter(universeConfig())
	bad := goodSnapshot()
	bad.IsLimitUp = true
	out := f.Filter([]market.Snapshot{bad}, nil)
	if len(out) != 0 {
		t.Fatal("상한가 종목이 통과됨")
	}
}
