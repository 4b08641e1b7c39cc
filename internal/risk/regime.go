package risk

import (
	"fmt"
	"strings"
	"sync"

	jgcfg "jongga/internal/config"
	"jongga/internal/logger"
	"jongga/internal/market"
)

// 中文说明：
// 거시 환경 레짐 필터。DANGER 는 세션 내 고착(sticky)：한 번 발동하면
// 지표가 회복되어도 당일 리셋 전까지 유지한다（급락 직후의 반등 추격
// 진입을 차단）。전환 시 원인을 함께 로그로 남긴다。

// Regime 시장 레짐
type Regime string

const (
	RegimeNormal  Regime = "NORMAL"  // 정상 운영
	RegimeCaution Regime = "CAUTION" // 비중 50% 축소
	RegimeDanger  Regime = "DANGER"  // 신규 진입 금지
)

// MacroFilter 거시 레짐 판정기
type MacroFilter struct {
	cfg jgcfg.RiskConfig

	mu         sync.Mutex
	current    Regime
	lastCauses []string
	lastSnap   market.IndexSnapshot
	stuck      bool // DANGER 고착 여부
}

func NewMacroFilter(cfg jgcfg.RiskConfig) *MacroFilter {
	return &MacroFilter{cfg: cfg, current: RegimeNormal}
}

// assess 순수 판정：지표 → (레짐, 발동 원인)
func (m *MacroFilter) assess(s market.IndexSnapshot) (Regime, []string) {
	var causes []string
	if s.KospiChangePct <= m.cfg.DangerKospiDrop {
		causes = append(causes, sprintfPct("KOSPI", s.KospiChangePct))
	}
	if s.USFuturesChangePct <= m.cfg.DangerFuturesDrop {
		causes = append(causes, sprintfPct("US선물", s.USFuturesChangePct))
	}
	if s.VIX >= m.cfg.DangerVix {
		causes = append(causes, sprintfVix(s.VIX))
	}
	if len(causes) > 0 {
		return RegimeDanger, causes
	}

	if s.KospiChangePct <= m.cfg.CautionKospiDrop {
		causes = append(causes, sprintfPct("KOSPI", s.KospiChangePct))
	}
	if s.USFuturesChangePct <= m.cfg.CautionFuturesDrop {
		causes = append(causes, sprintfPct("US선물", s.USFuturesChangePct))
	}
	if s.VIX >= m.cfg.CautionVix {
		causes = append(causes, sprintfVix(s.VIX))
	}
	if s.KospiChangePct < 0 && s.KosdaqChangePct < 0 {
		causes = append(causes, "양시장 동반하락")
	}
	if len(causes) > 0 {
		return RegimeCaution, causes
	}
	return RegimeNormal, nil
}

// Update 지표 갱신 및 레짐 재판단
func (m *MacroFilter) Update(s market.IndexSnapshot) Regime {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastSnap = s
	next, causes := m.assess(s)

	// DANGER 고착: 회복돼도 당일 리셋 전까지 유지
	if m.stuck && next != RegimeDanger {
		logger.Warnf("[MACRO] DANGER 고착 유지 (지표 회복: %s)", next)
		return RegimeDanger
	}
	if next == RegimeDanger {
		m.stuck = true
	}

	if next != m.current {
		logger.Warnf("[MACRO] 레짐 전환: %s → %s (%s)", m.current, next, strings.Join(causes, ", "))
	} else if len(causes) > 0 {
		logger.Infof("[MACRO] %s 유지 (%s)", next, strings.Join(causes, ", "))
	}
	m.current = next
	m.lastCauses = causes
	return next
}

// Current 현재 레짐
func (m *MacroFilter) Current() Regime {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Multiplier 레짐 기반 포지션 배수
func (m *MacroFilter) Multiplier() float64 {
	switch m.Current() {
	case RegimeDanger:
		return 0.0
	case RegimeCaution:
		return 0.5
	default:
		return 1.0
	}
}

// EntryAllowed 신규 진입 가능 여부
func (m *MacroFilter) EntryAllowed() bool {
	return m.Current() != RegimeDanger
}

// ResetDaily 당일 고착 해제（세션 시작 시 호출）
func (m *MacroFilter) ResetDaily() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stuck = false
	m.current = RegimeNormal
	m.lastCauses = nil
	logger.Infof("[MACRO] 레짐 일일 초기화")
}

// Snapshot 마지막 지표 스냅샷（상태 API 용）
func (m *MacroFilter) Snapshot() (market.IndexSnapshot, []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSnap, m.lastCauses
}

func sprintfPct(label string, v float64) string {
	return fmt.Sprintf("%s %+.1f%%", label, v)
}

func sprintfVix(v float64) string {
	return fmt.Sprintf("VIX %.1f", v)
}
