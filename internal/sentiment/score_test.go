package sentiment

import (
	"testing"

	jgcfg "jongga/internal/config"
	"jongga/internal/market"
)

func sentimentConfig() jgcfg.SentimentConfig {
	return jgcfg.SentimentConfig{
		NewsCountHigh:    20,
		NewsCountLow:     10,
		PositiveRatioMin: 0.6,
		BoardPostMin:     50,
		ThemeMinDays:     3,
		FinalTopN:        5,
	}
}

func newsOf(titles ...string) []market.NewsItem {
	items := make([]market.NewsItem, len(titles))
	for i, t := range titles {
		items[i] = market.NewsItem{Title: t}
	}
	return items
}

func TestVetoScanCategories(t *testing.T) {
	v := NewVetoScanner()

	cases := []struct {
		text     string
		category string
	}{
		{"OO제약 유상증자 결정 공시", "dilution_risk"},
		{"대표이사 횡령 혐의로 검찰 고발", "corporate_risk"},
		{"공매도 급증에 주가 출렁", "short_risk"},
		{"3분기 적자전환 쇼크", "earnings_risk"},
		{"FDA 반려 통보 수령", "regulatory_risk"},
		{"최대주주 변경 수반 주식 양수도", "insider_risk"},
	}
	for _, tc := range cases {
		kws, cats := v.ScanText(tc.text)
		if len(kws) == 0 {
			t.Errorf("%q: 매칭 실패", tc.text)
			continue
		}
		found := false
		for _, c := range cats {
			if c == tc.category {
				found = true
			}
		}
		if !found {
			t.Errorf("%q: 카테고리 %v, want %s 포함", tc.text, cats, tc.category)
		}
	}

	if kws, _ := v.ScanText("신규 수주 대규모 투자 유치"); len(kws) != 0 {
		t.Errorf("호재성 문구가 VETO 매칭됨: %v", kws)
	}
}

func TestScanNewsAggregation(t *testing.T) {
	v := NewVetoScanner()
	items := newsOf(
		"A사 전환사채 발행 결정",
		"A사 유상증자 검토",
		"A사 신제품 출시",
	)
	res := v.ScanNews("000001", "A사", items)
	if !res.Vetoed {
		t.Fatal("VETO 미발동")
	}
	if len(res.SourceTexts) != 2 {
		t.Errorf("원문 %d개, want 2", len(res.SourceTexts))
	}
	if len(res.MatchedKeywords) < 2 {
		t.Errorf("키워드 %v", res.MatchedKeywords)
	}
}

// VETO 는 점수와 무관하게 절대적이다: 만점급 재료라도 즉시 제외
func TestVetoBeatsAnyScore(t *testing.T) {
	sc := NewSentimentScorer(sentimentConfig(), NewVetoScanner())

	titles := make([]string, 0, 25)
	for i := 0; i < 24; i++ {
		titles = append(titles, "B사 세계 최초 기술 수주 돌파")
	}
	titles = append(titles, "B사 주가 급등 속 유상증자 결정") // VETO
	data := market.SentimentData{
		News:      newsOf(titles...),
		PortalTop: true,
		ThemeDays: 5,
		Community: market.CommunityStats{PostCount: 120},
	}
	res := sc.Score("000002", "B사", data)
	if res.Passed {
		t.Error("VETO 종목이 통과됨")
	}
	if res.Score != 0 {
		t.Errorf("VETO 후 점수 %d, want 0", res.Score)
	}
	if !res.Veto.Vetoed {
		t.Error("Veto 결과 누락")
	}
}

func TestScoreComponents(t *testing.T) {
	sc := NewSentimentScorer(sentimentConfig(), NewVetoScanner())

	titles := make([]string, 0, 22)
	for i := 0; i < 22; i++ {
		titles = append(titles, "C사 대규모 수주 호실적 기대")
	}
	data := market.SentimentData{
		News:      newsOf(titles...),
		Community: market.CommunityStats{PostCount: 80},
		PortalTop: true,
		ThemeDays: 4,
	}
	res := sc.Score("000003", "C사", data)
	if !res.Passed {
		t.Fatal("VETO 없는 종목이 탈락")
	}
	// 15(확산) + 10(긍정) + 5(종토방) + 10(파급력) + 5(포털) + 5(테마) = 50
	if res.Score != 50 {
		t.Errorf("Score = %d, want 50", res.Score)
	}
	if len(res.PowerHits) == 0 {
		t.Error("파급력 키워드 미검출")
	}
}

func TestHeadlineSentimentRatios(t *testing.T) {
	pos, neg := HeadlineSentiment([]string{
		"수주 확대",  // 긍정
		"실적 호실적", // 긍정
		"적자 우려",  // 부정
		"무난한 흐름", // 중립
	})
	if pos != 0.5 {
		t.Errorf("긍정 비율 %.2f, want 0.50", pos)
	}
	if neg != 0.25 {
		t.Errorf("부정 비율 %.2f, want 0.25", neg)
	}
}
