package ensemble

import (
	"math"
	"testing"

	jgcfg "jongga/internal/config"
)

func ensembleConfig() jgcfg.EnsembleConfig {
	return jgcfg.EnsembleConfig{
		Weights: map[string]float64{
			WeightTugOfWar: 0.30,
			WeightVPattern: 0.35,
			WeightMOC:      0.15,
			WeightNews:     0.20,
		},
		PriorityThreshold: 70,
		StandardThreshold: 55,
		SmallThreshold:    40,
	}
}

func TestCombineWeightedSum(t *testing.T) {
	s := NewScorer(ensembleConfig())
	// 80*0.30 + 60*0.35 + 40*0.15 + 20*0.20 = 55.0
	got := s.Combine(LogicScores{TugOfWar: 80, VPattern: 60, MOC: 40, News: 20})
	if math.Abs(got-55.0) > 1e-9 {
		t.Errorf("Combine = %.4f, want 55.0", got)
	}
	res := s.Score("005930", "삼성전자", LogicScores{TugOfWar: 80, VPattern: 60, MOC: 40, News: 20})
	if res.Tier != TierStandard {
		t.Errorf("55.0점 등급 = %s, want STANDARD", res.Tier)
	}
}

// 등급 경계는 하한 포함
func TestTierBoundariesInclusive(t *testing.T) {
	s := NewScorer(ensembleConfig())
	cases := []struct {
		score float64
		tier  EntryTier
		mult  float64
	}{
		{70.0, TierPriority, 1.5},
		{69.9, TierStandard, 1.0},
		{55.0, TierStandard, 1.0},
		{54.9, TierSmall, 0.5},
		{40.0, TierSmall, 0.5},
		{39.9, TierSkip, 0.0},
		{0, TierSkip, 0.0},
		{100, TierPriority, 1.5},
	}
	for _, tc := range cases {
		tier, mult := s.TierOf(tc.score)
		if tier != tc.tier || mult != tc.mult {
			t.Errorf("TierOf(%.1f) = (%s, %.1f), want (%s, %.1f)",
				tc.score, tier, mult, tc.tier, tc.mult)
		}
	}
}

func TestDominantLogic(t *testing.T) {
	if d := DominantLogic(LogicScores{TugOfWar: 50, VPattern: 80, MOC: 30, News: 60}); d != LogicVPattern {
		t.Errorf("DominantLogic = %s", d)
	}
	// 동률이면 앞 로직 우선
	if d := DominantLogic(LogicScores{TugOfWar: 70, VPattern: 70, MOC: 70, News: 70}); d != LogicTugOfWar {
		t.Errorf("동률 DominantLogic = %s", d)
	}
}

func TestRankExcludesSkip(t *testing.T) {
	s := NewScorer(ensembleConfig())
	results := []Result{
		s.Score("A", "에이", LogicScores{TugOfWar: 30, VPattern: 30, MOC: 30, News: 30}), // 30 SKIP
		s.Score("B", "비", LogicScores{TugOfWar: 60, VPattern: 60, MOC: 60, News: 60}),   // 60
		s.Score("C", "씨", LogicScores{TugOfWar: 90, VPattern: 90, MOC: 90, News: 90}),   // 90
	}
	ranked := Rank(results)
	if len(ranked) != 2 {
		t.Fatalf("SKIP 제외 실패: %d개", len(ranked))
	}
	if ranked[0].Symbol != "C" || ranked[1].Symbol != "B" {
		t.Errorf("순위 오류: %s, %s", ranked[0].Symbol, ranked[1].Symbol)
	}
}

func TestTugOfWarIdealPattern(t *testing.T) {
	// 갭상승 후 장중 눌림 + 신고가/정배열 + 외기 매수/개인 매도 + 오버나이트 1% 이상
	in := TugOfWarInput{
		Open: 10200, Price: 10100, PrevClose: 10000, High: 10300,
		ForeignNet: 50000, InstitutionNet: 30000, IndividualNet: -80000,
		NewHigh20d: true, MAAligned: true,
		Overnight5d: []float64{1.2, 1.0, 0.8, 1.5, 1.1},
	}
	res := TugOfWarScore("005930", "삼성전자", in)
	// 25 + 25 + 5(고가 근접 10100 >= 10300*0.97) + 25 + 3(개인비중 50%? → 미달) + 25
	if !res.NegativeIntraday {
		t.Error("장중 음수 판정 실패")
	}
	if res.Score != 100 {
		t.Errorf("Score = %.1f, want 100 (클램프)", res.Score)
	}
}

func TestTugOfWarClampZero(t *testing.T) {
	res := TugOfWarScore("000000", "테스트", TugOfWarInput{
		Open: 10000, Price: 9800, PrevClose: 10200,
		ForeignNet: -100, InstitutionNet: -100, IndividualNet: 200,
	})
	if res.Score != 0 {
		t.Errorf("Score = %.1f, want 0", res.Score)
	}
}

func TestMOCParadoxicalOrderBook(t *testing.T) {
	// 매도잔량 3배 + 주가 지지 + 예상체결가 상승 + 매수 급증
	res := MOCScore("005930", "삼성전자", MOCInput{
		SellOrderQty:   30000,
		BuyOrderQty:    10000,
		Price:          1520,
		ExpectedClose:  1530, // +0.66%
		PriceAt1520:    1518,
		BuyOrderSurge:  true,
		ExpectedRising: true,
	})
	if !res.Paradoxical {
		t.Error("역설적 호가창 미감지")
	}
	// 35 + 25 + 20 + 12(지지 0~0.3%) = 92
	if res.Score != 92 {
		t.Errorf("Score = %.1f, want 92", res.Score)
	}
	if !res.PriceHolding {
		t.Error("주가 지지 판정 실패")
	}
}

func TestMOCNoSupportNoParadox(t *testing.T) {
	// 매도잔량 우위지만 주가 붕괴 → 역설 불성립
	res := MOCScore("000000", "테스트", MOCInput{
		SellOrderQty: 30000,
		BuyOrderQty:  10000,
		Price:        1490,
		PriceAt1520:  1520,
	})
	if res.Paradoxical {
		t.Error("지지 없는 호가창이 역설로 판정됨")
	}
	if res.Score != 0 {
		t.Errorf("Score = %.1f, want 0", res.Score)
	}
}

func TestNewsScoreBands(t *testing.T) {
	res := NewsScore("005930", "삼성전자", NewsInput{
		GoogleNewsCount:   32,
		Headlines:         []string{"세계 최초 기술 공개", "대규모 수주 단독 보도"},
		SentimentPositive: 0.75,
		SentimentNegative: 0.05,
		PortalTop:         true,
		DailyPatternMatch: true,
	})
	// 30 + 24(파급 3건×8) + 20 + 10 + 15 = 99
	if res.Score != 99 {
		t.Errorf("Score = %.1f, want 99", res.Score)
	}
	if res.SpreadLevel != "HIGH" {
		t.Errorf("SpreadLevel = %s", res.SpreadLevel)
	}
}

func TestNewsNegativePenaltyAndClamp(t *testing.T) {
	res := NewsScore("000000", "테스트", NewsInput{
		GoogleNewsCount:   3,
		SentimentPositive: 0.1,
		SentimentNegative: 0.5,
	})
	if res.Score != 0 {
		t.Errorf("Score = %.1f, want 0 (클램프)", res.Score)
	}
}
