package sentiment

import (
	"strings"

	jgcfg "jongga/internal/config"
	"jongga/internal/logger"
	"jongga/internal/market"
)

// 中文说明：
// PHASE 3 심리적 검증。先过 VETO（绝对闸门），VETO 未命中即通过本阶段，
// 之后给出 0~50 的心理分：与 PHASE 2 技术分合计决定最终排名。
// 感情比率为关键词启发式（正式环境可由外部分析器替换）。

// 파급력 키워드（命中任一 → 加分）
var powerKeywords = []string{
	"세계 최초", "단독", "정부 정책",
	"국책과제", "수주", "흑자전환",
	"FDA 승인", "특허", "M&A",
	"대규모 투자", "신규 수주", "독점 공급",
	"전략적 제휴", "기술이전", "라이센스",
}

// 헤드라인 간이 감정 키워드
var positiveKeywords = []string{
	"수주", "흑자", "상향", "최대", "신고가", "돌파",
	"호실적", "성장", "확대", "개선", "급등", "강세",
	"기대", "전망", "승인", "계약",
}

var negativeKeywords = []string{
	"적자", "하락", "급락", "부진", "악재", "하향",
	"위기", "우려", "리스크", "폭락", "감소", "철회",
	"실패", "손실",
}

// 고정 배점
const (
	scoreNewsSpreadHigh = 15 // S1: 기사 확산 (상위 기준)
	scoreNewsSpreadLow  = 7  // S1: 기사 확산 (하위 기준)
	scorePositive       = 10 // S2: 긍정 감정
	bonusBoardActive    = 5  // B1: 종토방 활성화
	bonusPowerKeyword   = 10 // B2: 파급력 키워드
	bonusPortalTop      = 5  // B3: 포털 상위 노출
	bonusThemeSustained = 5  // B4: 테마 지속 (3일 이상)
)

// SentimentScore PHASE 3 注解
type SentimentScore struct {
	Score        int
	Veto         VetoResult
	Passed       bool // VETO 만이 탈락 사유, 점수는 순위용
	PowerHits    []string
	NewsCount    int
	PositiveRate float64
	NegativeRate float64
}

// SentimentScorer PHASE 3 打分器
type SentimentScorer struct {
	cfg  jgcfg.SentimentConfig
	veto *VetoScanner
}

func NewSentimentScorer(cfg jgcfg.SentimentConfig, veto *VetoScanner) *SentimentScorer {
	return &SentimentScorer{cfg: cfg, veto: veto}
}

// LateVeto 진입 직전 최신 헤드라인 재검사. 스캔 이후 뜬 공시가
// VETO 키워드에 걸리면 true (점수와 무관한 절대 제외).
func (s *SentimentScorer) LateVeto(symbol, name string, headlines []string) bool {
	for _, h := range headlines {
		if s.veto.QuickCheck(symbol, name, h) {
			return true
		}
	}
	return false
}

// HeadlineSentiment 关键词启发式：返回 (긍정 비율, 부정 비율)
func HeadlineSentiment(headlines []string) (pos, neg float64) {
	if len(headlines) == 0 {
		return 0, 0
	}
	posCount, negCount := 0, 0
	for _, h := range headlines {
		for _, kw := range positiveKeywords {
			if strings.Contains(h, kw) {
				posCount++
				break
			}
		}
		for _, kw := range negativeKeywords {
			if strings.Contains(h, kw) {
				negCount++
				break
			}
		}
	}
	total := float64(len(headlines))
	return float64(posCount) / total, float64(negCount) / total
}

// PowerKeywordHits 파급력 키워드 명중 목록
func PowerKeywordHits(headlines []string) []string {
	var hits []string
	seen := make(map[string]bool)
	for _, h := range headlines {
		for _, kw := range powerKeywords {
			if !seen[kw] && strings.Contains(h, kw) {
				seen[kw] = true
				hits = append(hits, kw)
			}
		}
	}
	return hits
}

// Score 단일 후보 PHASE 3 평가。VETO 명중 시 즉시 탈락（점수 0）。
func (s *SentimentScorer) Score(symbol, name string, data market.SentimentData) SentimentScore {
	res := SentimentScore{}

	res.Veto = s.veto.ScanNews(symbol, name, data.News)
	if res.Veto.Vetoed {
		return res // Passed=false, Score=0
	}
	res.Passed = true

	headlines := make([]string, len(data.News))
	for i, n := range data.News {
		headlines[i] = n.Title
	}
	res.NewsCount = data.GoogleNewsCount
	if res.NewsCount == 0 {
		res.NewsCount = len(headlines)
	}
	res.PositiveRate, res.NegativeRate = HeadlineSentiment(headlines)
	if data.PositiveRatio > 0 {
		res.PositiveRate = data.PositiveRatio
	}
	if data.NegativeRatio > 0 {
		res.NegativeRate = data.NegativeRatio
	}

	// S1: 뉴스 확산성
	switch {
	case res.NewsCount >= s.cfg.NewsCountHigh:
		res.Score += scoreNewsSpreadHigh
	case res.NewsCount >= s.cfg.NewsCountLow:
		res.Score += scoreNewsSpreadLow
	}
	// S2: 긍정 감정
	if res.PositiveRate >= s.cfg.PositiveRatioMin {
		res.Score += scorePositive
	}
	// B1: 종토방 활성화
	if data.Community.PostCount >= s.cfg.BoardPostMin {
		res.Score += bonusBoardActive
	}
	// B2: 파급력 키워드
	res.PowerHits = PowerKeywordHits(headlines)
	if len(res.PowerHits) > 0 {
		res.Score += bonusPowerKeyword
	}
	// B3: 포털 상위 노출
	if data.PortalTop {
		res.Score += bonusPortalTop
	}
	// B4: 테마 지속
	if data.ThemeDays >= s.cfg.ThemeMinDays {
		res.Score += bonusThemeSustained
	}

	logger.Debugf("[PHASE3] %s(%s) 점수 %d (뉴스 %d, 긍정 %.0f%%)",
		name, symbol, res.Score, res.NewsCount, res.PositiveRate*100)
	return res
}
