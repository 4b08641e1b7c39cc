package ensemble

import (
	"sort"

	jgcfg "jongga/internal/config"
	"jongga/internal/logger"
)

// 中文说明：
// 四路 수익원천 로직 앙상블。각 로직 점수(0~100)를 가중 합산하여
// 진입 등급을 결정한다。등급 경계는 하한 포함（70.0은 PRIORITY）。
//
// LOGIC 1: Tug of War（투자자 이질성）       30%
// LOGIC 2: V자 수급전환（프로그램 매매）      35%
// LOGIC 3: MOC Imbalance（체결 메커니즘 왜곡）15%
// LOGIC 4: 뉴스 Temporal Anomaly             20%

// 가중치 맵 키
const (
	WeightTugOfWar = "tug_of_war"
	WeightVPattern = "v_pattern"
	WeightMOC      = "moc_imbalance"
	WeightNews     = "news_temporal"
)

// EntryTier 진입 등급
type EntryTier string

const (
	TierPriority EntryTier = "PRIORITY"
	TierStandard EntryTier = "STANDARD"
	TierSmall    EntryTier = "SMALL"
	TierSkip     EntryTier = "SKIP"
)

// 로직명（주도 로직 표기용）
const (
	LogicTugOfWar = "LOGIC_1_TOW"
	LogicVPattern = "LOGIC_2_V"
	LogicMOC      = "LOGIC_3_MOC"
	LogicNews     = "LOGIC_4_NEWS"
)

// LogicScores 四路 점수 묶음
type LogicScores struct {
	TugOfWar float64
	VPattern float64
	MOC      float64
	News     float64
}

// Result 앙상블 종합 결과
type Result struct {
	Symbol        string
	Name          string
	Score         float64
	Tier          EntryTier
	Multiplier    float64 // 포지션 비중 배수
	DominantLogic string
	Logic         LogicScores
}

// Scorer 앙상블 산출기
type Scorer struct {
	cfg jgcfg.EnsembleConfig
}

func NewScorer(cfg jgcfg.EnsembleConfig) *Scorer {
	logger.Infof("[ENSEMBLE] 가중치: TOW=%.0f%% V=%.0f%% MOC=%.0f%% NEWS=%.0f%%",
		cfg.Weights[WeightTugOfWar]*100, cfg.Weights[WeightVPattern]*100,
		cfg.Weights[WeightMOC]*100, cfg.Weights[WeightNews]*100)
	return &Scorer{cfg: cfg}
}

// Combine 가중 합산
func (s *Scorer) Combine(l LogicScores) float64 {
	return l.TugOfWar*s.cfg.Weights[WeightTugOfWar] +
		l.VPattern*s.cfg.Weights[WeightVPattern] +
		l.MOC*s.cfg.Weights[WeightMOC] +
		l.News*s.cfg.Weights[WeightNews]
}

// TierOf 점수 → 진입 등급 + 비중 배수（하한 포함）
func (s *Scorer) TierOf(score float64) (EntryTier, float64) {
	switch {
	case score >= s.cfg.PriorityThreshold:
		return TierPriority, 1.5
	case score >= s.cfg.StandardThreshold:
		return TierStandard, 1.0
	case score >= s.cfg.SmallThreshold:
		return TierSmall, 0.5
	default:
		return TierSkip, 0.0
	}
}

// DominantLogic 최고 점수 로직명（동률 시 LOGIC 1→4 순 우선）
func DominantLogic(l LogicScores) string {
	name, best := LogicTugOfWar, l.TugOfWar
	if l.VPattern > best {
		name, best = LogicVPattern, l.VPattern
	}
	if l.MOC > best {
		name, best = LogicMOC, l.MOC
	}
	if l.News > best {
		name = LogicNews
	}
	return name
}

// Score 단일 후보 앙상블 평가
func (s *Scorer) Score(symbol, name string, l LogicScores) Result {
	score := s.Combine(l)
	tier, mult := s.TierOf(score)
	res := Result{
		Symbol:        symbol,
		Name:          name,
		Score:         score,
		Tier:          tier,
		Multiplier:    mult,
		DominantLogic: DominantLogic(l),
		Logic:         l,
	}
	logger.Infof("[ENSEMBLE] %s(%s) 종합=%.1f 등급=%s TOW=%.0f V=%.0f MOC=%.0f NEWS=%.0f 주도=%s",
		name, symbol, score, tier, l.TugOfWar, l.VPattern, l.MOC, l.News, res.DominantLogic)
	return res
}

// Rank SKIP 제외 후 점수 내림차순 정렬
func Rank(results []Result) []Result {
	ranked := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Tier != TierSkip {
			ranked = append(ranked, r)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	logger.Infof("[ENSEMBLE] 순위화 완료: %d/%d개 진입 가능", len(ranked), len(results))
	return ranked
}
