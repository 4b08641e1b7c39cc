package decision

import (
	"sync"
	"time"

	"jongga/internal/market"
	"jongga/internal/screener"
	"jongga/internal/sentiment"
)

// 中文说明：
// 오후 스캔(PHASE 1~3)으로 뽑힌 후보를 종가 진입 사이클까지 보관한다。
// TTL이 지난 스냅샷은 무효 처리되어 재스캔을 유도한다。

// Candidate PHASE 1~3 주석이 붙은 최종 후보
type Candidate struct {
	Snapshot   market.Snapshot
	Tier       screener.Tier
	ChangeRank int
	DailyBars  []market.DailyBar
	Technical  screener.TechnicalScore
	Sentiment  sentiment.SentimentScore
	News       market.SentimentData
	Combined   int // Phase2+Phase3 합산
}

type candidateCache struct {
	mu    sync.RWMutex
	cands []Candidate
	at    time.Time
	ttl   time.Duration
}

func newCandidateCache(ttl time.Duration) *candidateCache {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &candidateCache{ttl: ttl}
}

func (c *candidateCache) set(cands []Candidate, now time.Time) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.cands = append([]Candidate(nil), cands...)
	c.at = now
	c.mu.Unlock()
}

// snapshot TTL 이내의 후보 복사본; 만료 시 nil
func (c *candidateCache) snapshot(now time.Time) []Candidate {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.cands) == 0 || now.Sub(c.at) > c.ttl {
		return nil
	}
	return append([]Candidate(nil), c.cands...)
}

// overnightReturns 최근 N일 오버나이트 수익률(%)。前日收盘 → 当日开盘
func overnightReturns(bars []market.DailyBar, n int) []float64 {
	var out []float64
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev <= 0 {
			continue
		}
		out = append(out, (bars[i].Open-prev)/prev*100)
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

// dailyBullishPattern 4음1양: 직전 4일 음봉 후 당일 양봉
func dailyBullishPattern(bars []market.DailyBar) bool {
	if len(bars) < 5 {
		return false
	}
	last5 := bars[len(bars)-5:]
	for _, b := range last5[:4] {
		if b.Close >= b.Open {
			return false
		}
	}
	return last5[4].Close > last5[4].Open
}

// headlines 제목만 추출 (뉴스 + 토론방)
func headlines(data market.SentimentData) []string {
	out := make([]string, 0, len(data.News))
	for _, n := range data.News {
		out = append(out, n.Title)
	}
	return out
}
