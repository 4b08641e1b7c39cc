package sentiment

import (
	"strings"

	"jongga/internal/logger"
	"jongga/internal/market"
)

// 中文说明：
// VETO 关键词系统。新闻/帖子命中任一恶性关键词即立即排除，
// 不给分、不复议。关键词按风险类别分组，记录命中明细便于追溯。

// VETO 키워드 DB（카테고리별）
var vetoKeywords = map[string][]string{
	// 기업 리스크
	"corporate_risk": {
		"감사의견", "감사의견거절", "한정의견",
		"횡령", "배임", "분식회계",
		"상장폐지", "상폐", "관리종목",
		"거래정지", "매매정지",
	},
	// 자금 조달 리스크 (희석)
	"dilution_risk": {
		"유상증자", "유증",
		"전환사채", "CB발행", "CB 발행",
		"신주인수권부사채", "BW발행", "BW 발행",
		"무상감자",
	},
	// 공매도/숏
	"short_risk": {
		"공매도", "대차잔고 급증", "공매도 급증",
	},
	// 실적 악화
	"earnings_risk": {
		"적자전환", "적자확대", "매출급감",
		"실적쇼크", "어닝쇼크",
	},
	// 규제/법적 리스크
	"regulatory_risk": {
		"검찰수사", "압수수색", "과징금",
		"제재", "FDA 반려", "임상실패", "임상 실패",
	},
	// 대주주 리스크
	"insider_risk": {
		"대주주 매도", "최대주주 변경", "최대주주 매도",
		"지분매각", "블록딜",
	},
}

const maxSourceTexts = 5

// VetoResult VETO 판정 결과
type VetoResult struct {
	Symbol            string
	Name              string
	Vetoed            bool
	MatchedKeywords   []string
	MatchedCategories []string
	SourceTexts       []string // VETO 가 발견된 뉴스 제목 (최대 5개)
}

// VetoScanner 恶性关键词扫描器
type VetoScanner struct{}

func NewVetoScanner() *VetoScanner {
	n := 0
	for _, kws := range vetoKeywords {
		n += len(kws)
	}
	logger.Infof("[VETO] 스캐너 초기화: 키워드 %d개, 카테고리 %d개", n, len(vetoKeywords))
	return &VetoScanner{}
}

// ScanText 单条文本扫描，返回命中的关键词与类别
func (v *VetoScanner) ScanText(text string) (keywords, categories []string) {
	seen := make(map[string]bool)
	for category, kws := range vetoKeywords {
		for _, kw := range kws {
			if strings.Contains(text, kw) {
				keywords = append(keywords, kw)
				if !seen[category] {
					seen[category] = true
					categories = append(categories, category)
				}
			}
		}
	}
	return keywords, categories
}

// ScanNews 对一只候选的全部新闻做汇总扫描
func (v *VetoScanner) ScanNews(symbol, name string, items []market.NewsItem) VetoResult {
	res := VetoResult{Symbol: symbol, Name: name}
	kwSeen := make(map[string]bool)
	catSeen := make(map[string]bool)

	for _, item := range items {
		kws, cats := v.ScanText(item.Title + " " + item.Content)
		if len(kws) == 0 {
			continue
		}
		res.Vetoed = true
		for _, kw := range kws {
			if !kwSeen[kw] {
				kwSeen[kw] = true
				res.MatchedKeywords = append(res.MatchedKeywords, kw)
			}
		}
		for _, c := range cats {
			if !catSeen[c] {
				catSeen[c] = true
				res.MatchedCategories = append(res.MatchedCategories, c)
			}
		}
		if len(res.SourceTexts) < maxSourceTexts {
			res.SourceTexts = append(res.SourceTexts, item.Title)
		}
	}

	if res.Vetoed {
		logger.Warnf("[VETO] %s(%s) VETO 발동! 키워드: %v | 카테고리: %v",
			name, symbol, res.MatchedKeywords, res.MatchedCategories)
	} else {
		logger.Debugf("[VETO] %s(%s) 통과", name, symbol)
	}
	return res
}

// QuickCheck 单条文本快速判定
func (v *VetoScanner) QuickCheck(symbol, name, text string) bool {
	kws, _ := v.ScanText(text)
	if len(kws) > 0 {
		logger.Warnf("[VETO] %s(%s) 빠른체크 VETO: %v", name, symbol, kws)
		return true
	}
	return false
}
