package screener

import (
	"sort"

	jgcfg "jongga/internal/config"
	"jongga/internal/logger"
	"jongga/internal/market"
)

// 中文说明：
// PHASE 2 技术面打分。三项 SHOULD 给固定分，至少命中两项否则无论加分
// 多少一律拒绝；五项 BONUS 独立加分，顺序无关。通过条件：
// SHOULD 命中数 >= 2 且 总分 >= min_score。

// SHOULD 固定分值
const (
	scoreNewHigh  = 20 // S1: N일 신고가 돌파
	scoreAligned  = 15 // S2: 정배열 (ma5 > ma20 > ma60)
	scoreNearHigh = 10 // S3: 종가가 장중 고점 부근
)

// BONUS 固定分值
const (
	bonusVolumeSurge = 10 // 거래량 급증
	bonusSectorSync  = 10 // 섹터 동반 상승
	bonusStrongBody  = 5  // 장대양봉 (몸통 비율)
	bonusShortWick   = 5  // 짧은 윗꼬리
	bonusPullback    = 5  // 5일선 눌림목 지지
)

// TechnicalInput PHASE 2 所需行情：快照 + 升序日线 + 主题同涨家数
type TechnicalInput struct {
	Snapshot    market.Snapshot
	DailyBars   []market.DailyBar
	ThemeRising int
}

// TechnicalScore PHASE 2 注解
type TechnicalScore struct {
	Score       int
	ShouldCount int
	NewHigh     bool
	Aligned     bool
	NearHigh    bool
	Passed      bool
	Reason      string // 未通过原因
}

// TechnicalScorer PHASE 2 打分器
type TechnicalScorer struct {
	cfg jgcfg.TechnicalConfig
}

func NewTechnicalScorer(cfg jgcfg.TechnicalConfig) *TechnicalScorer {
	return &TechnicalScorer{cfg: cfg}
}

// Score 对单只候选打分
func (t *TechnicalScorer) Score(in TechnicalInput) TechnicalScore {
	s := in.Snapshot
	closes := market.Closes(in.DailyBars)

	res := TechnicalScore{}

	// ── SHOULD ──
	if market.IsNewHigh(in.DailyBars, t.cfg.NewHighDays) {
		res.NewHigh = true
		res.ShouldCount++
		res.Score += scoreNewHigh
	}
	if market.IsAligned(closes) {
		res.Aligned = true
		res.ShouldCount++
		res.Score += scoreAligned
	}
	// 收盘距日内高点 near_high_pct 以内
	if s.High > 0 && s.Price >= s.High*(1-t.cfg.NearHighPct/100) {
		res.NearHigh = true
		res.ShouldCount++
		res.Score += scoreNearHigh
	}

	// ── BONUS（独立、可加顺序无关）──
	if avg := market.AvgVolume(in.DailyBars, t.cfg.NewHighDays); avg > 0 && float64(s.Volume) >= avg*t.cfg.VolumeSurgeX {
		res.Score += bonusVolumeSurge
	}
	if in.ThemeRising >= 2 {
		res.Score += bonusSectorSync
	}
	if isStrongBody(s) {
		res.Score += bonusStrongBody
	}
	if isShortUpperWick(s) {
		res.Score += bonusShortWick
	}
	if isPullbackSupport(in.DailyBars) {
		res.Score += bonusPullback
	}

	// ── 闸门 ──
	switch {
	case res.ShouldCount < 2:
		res.Reason = "SHOULD 조건 미달"
	case res.Score < t.cfg.MinScore:
		res.Reason = "점수 미달"
	default:
		res.Passed = true
	}
	return res
}

// Rank 批量打分并按分数降序截取 TopN
func (t *TechnicalScorer) Rank(inputs []TechnicalInput) ([]TechnicalInput, []TechnicalScore) {
	type scored struct {
		in TechnicalInput
		sc TechnicalScore
	}
	passed := make([]scored, 0, len(inputs))
	for _, in := range inputs {
		sc := t.Score(in)
		if !sc.Passed {
			logger.Debugf("[PHASE2] %s(%s) 제외: %s (점수 %d, SHOULD %d)",
				in.Snapshot.Name, in.Snapshot.Symbol, sc.Reason, sc.Score, sc.ShouldCount)
			continue
		}
		passed = append(passed, scored{in, sc})
	}
	sort.SliceStable(passed, func(a, b int) bool {
		return passed[a].sc.Score > passed[b].sc.Score
	})
	if len(passed) > t.cfg.TopN {
		passed = passed[:t.cfg.TopN]
	}
	outIn := make([]TechnicalInput, len(passed))
	outSc := make([]TechnicalScore, len(passed))
	for i, p := range passed {
		outIn[i] = p.in
		outSc[i] = p.sc
	}
	logger.Infof("[PHASE2] %d/%d개 통과", len(passed), len(inputs))
	return outIn, outSc
}

// 장대양봉：몸통이 전체 변동폭의 70% 이상
func isStrongBody(s market.Snapshot) bool {
	rng := s.High - s.Low
	if rng <= 0 {
		return false
	}
	body := s.Price - s.Open
	return body > 0 && body/rng >= 0.7
}

// 짧은 윗꼬리：윗꼬리가 몸통의 30% 이하
func isShortUpperWick(s market.Snapshot) bool {
	body := s.Price - s.Open
	if body <= 0 {
		return false
	}
	wick := s.High - s.Price
	return wick >= 0 && wick <= body*0.3
}

// 눌림목 지지：어제 종가가 5일선 아래로 눌렸다가 오늘 5일선 위 회복
func isPullbackSupport(bars []market.DailyBar) bool {
	if len(bars) < 7 {
		return false
	}
	closes := market.Closes(bars)
	ma5 := market.SMA(closes, 5)
	if ma5 <= 0 {
		return false
	}
	prevCloses := closes[:len(closes)-1]
	prevMA5 := market.SMA(prevCloses, 5)
	prev := prevCloses[len(prevCloses)-1]
	cur := closes[len(closes)-1]
	return prevMA5 > 0 && prev < prevMA5 && cur > ma5
}
