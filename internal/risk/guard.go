package risk

import (
	"fmt"
	"sync"
	"time"

	jgcfg "jongga/internal/config"
	"jongga/internal/logger"
)

// 中文说明：
// 뇌동매매 방지 가드。시간 윈도우 밖의 주문과 행동 한도 초과를 차단한다：
// 하루 최대 진입 횟수、연속 손실、일일 누적 손실。날짜가 바뀌면
// 카운터를 자동 초기화한다（연패 카운터는 익일까지 유지 후 해제）。

// Action 주문 방향
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// window 매매 허용 시간대
type window struct {
	name    string
	start   string // "HH:MM"
	end     string
	actions []Action
	desc    string
}

var tradingWindows = []window{
	{"exit_mode", "08:30", "10:00", []Action{ActionSell}, "청산 모드: 매도만 가능"},
	{"data_only", "10:00", "14:30", nil, "데이터 수집 전용: 매매 금지"},
	{"entry_mode", "14:30", "15:20", []Action{ActionBuy}, "진입 모드: 매수만 가능"},
	{"after_hours_risk", "15:30", "18:00", []Action{ActionSell}, "장후 리스크 관리: 매도만 가능"},
	{"ats_mode", "19:00", "20:00", []Action{ActionBuy}, "ATS 추가 매수"},
}

// currentWindow 해당 시각이 속한 윈도우（없으면 nil）
func currentWindow(now time.Time) *window {
	hm := now.Format("15:04")
	for i := range tradingWindows {
		w := &tradingWindows[i]
		if w.start <= hm && hm <= w.end {
			return w
		}
	}
	return nil
}

// ActionAllowed 해당 시각에 해당 방향 주문이 허용되는지
func ActionAllowed(now time.Time, action Action) bool {
	w := currentWindow(now)
	if w == nil {
		return false
	}
	for _, a := range w.actions {
		if a == action {
			return true
		}
	}
	return false
}

// TradingGuard 행동 통제 가드
type TradingGuard struct {
	cfg jgcfg.RiskConfig

	mu                sync.Mutex
	entryCount        int
	consecutiveLosses int
	dailyPnlPct       float64
	lastResetDay      string // "2006-01-02"
	lockedUntil       string // 연패 잠금 해제일
}

func NewTradingGuard(cfg jgcfg.RiskConfig) *TradingGuard {
	return &TradingGuard{cfg: cfg}
}

// rollover 날짜가 바뀌면 일일 카운터 초기화（잠금상태에서 호출）
func (g *TradingGuard) rollover(now time.Time) {
	day := now.Format("2006-01-02")
	if day == g.lastResetDay {
		return
	}
	g.entryCount = 0
	g.dailyPnlPct = 0
	// 연패 잠금은 기록된 해제일이 지나야 풀린다
	if g.lockedUntil != "" && day >= g.lockedUntil {
		g.consecutiveLosses = 0
		g.lockedUntil = ""
	}
	g.lastResetDay = day
	logger.Infof("[GUARD] 일일 초기화 (%s)", day)
}

// CanEnter 신규 진입 가능 여부와 사유
func (g *TradingGuard) CanEnter(now time.Time) (bool, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rollover(now)

	if !ActionAllowed(now, ActionBuy) {
		desc := "매매 불가 시간"
		if w := currentWindow(now); w != nil {
			desc = w.desc
		}
		return false, fmt.Sprintf("현재 시간(%s) 매수 불가 구간 (%s)", now.Format("15:04:05"), desc)
	}
	if g.entryCount >= g.cfg.MaxDailyEntries {
		return false, fmt.Sprintf("일일 진입 한도 도달 (%d/%d)", g.entryCount, g.cfg.MaxDailyEntries)
	}
	if g.consecutiveLosses >= g.cfg.MaxConsecutiveLosses {
		return false, fmt.Sprintf("연속 %d패 → 익일까지 매매 금지", g.consecutiveLosses)
	}
	if g.dailyPnlPct <= g.cfg.MaxDailyLossPct {
		return false, fmt.Sprintf("일일 손실 한도 도달 (%.1f%%)", g.dailyPnlPct)
	}
	return true, "진입 가능"
}

// CanExit 매도 가능 여부（비상 청산은 시간 무관 허용）
func (g *TradingGuard) CanExit(now time.Time) (bool, string) {
	if ActionAllowed(now, ActionSell) {
		return true, "매도 가능"
	}
	return true, "비상 청산 허용"
}

// RecordEntry 진입 기록
func (g *TradingGuard) RecordEntry(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rollover(now)
	g.entryCount++
	logger.Infof("[GUARD] 진입 기록 (%d/%d)", g.entryCount, g.cfg.MaxDailyEntries)
}

// RecordResult 거래 결과 기록（pnlPct: 총자산 대비 %）
func (g *TradingGuard) RecordResult(now time.Time, symbol string, pnlPct float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rollover(now)
	g.dailyPnlPct += pnlPct

	if pnlPct < 0 {
		g.consecutiveLosses++
		if g.consecutiveLosses >= g.cfg.MaxConsecutiveLosses {
			g.lockedUntil = now.AddDate(0, 0, 1).Format("2006-01-02")
		}
		logger.Infof("[GUARD] 손실 기록 %s %+.2f%% | 연패=%d", symbol, pnlPct, g.consecutiveLosses)
	} else {
		g.consecutiveLosses = 0
		g.lockedUntil = ""
		logger.Infof("[GUARD] 수익 기록 %s %+.2f%% | 연패 초기화", symbol, pnlPct)
	}
}

// Status 현재 가드 상태
func (g *TradingGuard) Status() map[string]any {
	g.mu.Lock()
	defer g.mu.Unlock()
	return map[string]any{
		"daily_entries":      fmt.Sprintf("%d/%d", g.entryCount, g.cfg.MaxDailyEntries),
		"consecutive_losses": g.consecutiveLosses,
		"daily_pnl_pct":      g.dailyPnlPct,
		"is_locked": g.consecutiveLosses >= g.cfg.MaxConsecutiveLosses ||
			g.dailyPnlPct <= g.cfg.MaxDailyLossPct,
	}
}
