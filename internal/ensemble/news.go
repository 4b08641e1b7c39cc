package ensemble

import (
	"jongga/internal/logger"
	"jongga/internal/sentiment"
)

// 中文说明：
// LOGIC 4 뉴스 Temporal Anomaly。장 마감 후 쏟아지는 뉴스는 익일까지
// 시간차를 두고 가격에 반영된다(Price Drift)。확산량·파급력 키워드·
// 감정·노출·일봉 패턴으로 0~100 점수화。

// 뉴스 확산성 기준
const (
	newsSpreadMin  = 20 // 구글뉴스 기사 수 최소 기준
	newsSpreadHigh = 30 // 보편적 관심 확인 기준
)

// NewsInput LOGIC 4 输入
type NewsInput struct {
	GoogleNewsCount   int
	Headlines         []string
	SentimentPositive float64 // 0~1
	SentimentNegative float64
	PortalTop         bool // 네이버 금융 상위 노출
	DailyPatternMatch bool // 일봉 보조 패턴 (4음1양 등)
}

// NewsResult LOGIC 4 산출
type NewsResult struct {
	Score       float64
	PowerHits   []string
	SpreadLevel string // LOW / MEDIUM / HIGH
}

// NewsScore LOGIC 4 점수 산출 (0~100)
func NewsScore(symbol, name string, in NewsInput) NewsResult {
	var res NewsResult
	score := 0.0

	// 1. 구글 뉴스 기사 수 (0~30)
	switch {
	case in.GoogleNewsCount >= newsSpreadHigh:
		score += 30
		res.SpreadLevel = "HIGH"
	case in.GoogleNewsCount >= newsSpreadMin:
		score += 20
		res.SpreadLevel = "MEDIUM"
	case in.GoogleNewsCount >= 10:
		score += 10
		res.SpreadLevel = "LOW"
	default:
		res.SpreadLevel = "LOW"
	}

	// 2. 파급력 키워드 (건당 8점, 상한 25)
	res.PowerHits = sentiment.PowerKeywordHits(in.Headlines)
	kwScore := float64(len(res.PowerHits) * 8)
	if kwScore > 25 {
		kwScore = 25
	}
	score += kwScore

	// 3. 감정 분석 (0~20, 부정 패널티 -10)
	switch {
	case in.SentimentPositive >= 0.7:
		score += 20
	case in.SentimentPositive >= 0.5:
		score += 12
	case in.SentimentPositive >= 0.3:
		score += 5
	}
	if in.SentimentNegative >= 0.3 {
		score -= 10
	}

	// 4. 포털 상위 노출 (0~10)
	if in.PortalTop {
		score += 10
	}

	// 5. 일봉 패턴 보조 (0~15)
	if in.DailyPatternMatch {
		score += 15
	}

	res.Score = clamp(score)

	logger.Debugf("[LOGIC4] %s(%s) 점수=%.1f 구글=%d건 파급=%v 확산=%s",
		name, symbol, res.Score, in.GoogleNewsCount, res.PowerHits, res.SpreadLevel)
	return res
}
