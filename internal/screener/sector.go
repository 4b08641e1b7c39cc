package screener

import (
	"sort"
	"strings"

	"jongga/internal/logger"
	"jongga/internal/market"
)

// 中文说明：
// 主题/板块分析。按关键词把候选股归入主题，统计同主题当日上涨家数，
// 供 Tier2 判定与 PHASE 2 板块共振加分使用。

// 업종 키워드 매핑（종목명 기준）
var sectorKeywords = map[string][]string{
	"2차전지": {"2차전지", "배터리", "LG에너지", "삼성SDI", "SK온", "에코프로"},
	"반도체":  {"반도체", "SK하이닉스", "삼성전자", "메모리", "파운드리"},
	"바이오":  {"바이오", "제약", "셀트리온", "삼성바이오", "헬스케어"},
	"자동차":  {"자동차", "현대차", "기아", "모빌리티"},
	"조선":   {"조선", "HD현대", "삼성중공업", "한화오션"},
	"엔터":   {"엔터", "하이브", "SM", "YG", "JYP"},
	"게임":   {"게임", "넥슨", "엔씨", "크래프톤", "넷마블"},
	"은행":   {"은행", "KB금융", "신한", "하나", "우리"},
	"증권":   {"증권", "미래에셋", "삼성증권", "NH투자", "키움"},
	"화학":   {"화학", "LG화학", "SK케미칼", "롯데케미칼"},
	"건설":   {"건설", "삼성물산", "현대건설", "대우건설"},
	"유통":   {"유통", "신세계", "롯데쇼핑", "현대백화점"},
	"인터넷":  {"인터넷", "카카오", "네이버", "쿠팡"},
	"항공":   {"항공", "대한항공", "아시아나"},
	"원전":   {"원전", "두산에너빌리티", "한전", "한국전력"},
}

const sectorOther = "기타"

// SectorAnalyzer 主题分析器
type SectorAnalyzer struct {
	keywords map[string][]string
}

func NewSectorAnalyzer() *SectorAnalyzer { return NewSectorAnalyzerWith(nil) }

// NewSectorAnalyzerWith 외부 키워드 사전 주입。nil이면 내장 사전 사용。
func NewSectorAnalyzerWith(keywords map[string][]string) *SectorAnalyzer {
	if len(keywords) == 0 {
		keywords = sectorKeywords
	}
	return &SectorAnalyzer{keywords: keywords}
}

// Classify 依据종목명归类主题
func (a *SectorAnalyzer) Classify(stockName string) string {
	for sector, keywords := range a.keywords {
		for _, kw := range keywords {
			if strings.Contains(stockName, kw) {
				return sector
			}
		}
	}
	return sectorOther
}

// Annotate 给快照填充 Theme 字段并返回主题→当日上涨家数
func (a *SectorAnalyzer) Annotate(snaps []market.Snapshot) map[string]int {
	rising := make(map[string]int)
	for i := range snaps {
		theme := snaps[i].Theme
		if theme == "" {
			theme = a.Classify(snaps[i].Name)
			snaps[i].Theme = theme
		}
		if theme == sectorOther {
			continue
		}
		if snaps[i].ChangePct > 0 {
			rising[theme]++
		}
	}
	return rising
}

// DominantSectors 当日主导主题（≥2 只同涨，按合计涨幅降序）
func (a *SectorAnalyzer) DominantSectors(snaps []market.Snapshot) []string {
	type agg struct {
		name  string
		count int
		sum   float64
	}
	byTheme := make(map[string]*agg)
	for _, s := range snaps {
		theme := s.Theme
		if theme == "" {
			theme = a.Classify(s.Name)
		}
		if theme == sectorOther || s.ChangePct <= 0 {
			continue
		}
		if byTheme[theme] == nil {
			byTheme[theme] = &agg{name: theme}
		}
		byTheme[theme].count++
		byTheme[theme].sum += s.ChangePct
	}
	out := make([]*agg, 0, len(byTheme))
	for _, v := range byTheme {
		if v.count >= 2 {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].sum > out[j].sum })
	names := make([]string, len(out))
	for i, v := range out {
		names[i] = v.name
	}
	if len(names) > 0 {
		logger.Infof("[SECTOR] 주도 테마: %v", names)
	}
	return names
}
