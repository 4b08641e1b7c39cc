package screener

import (
	"fmt"
	"sort"

	jgcfg "jongga/internal/config"
	"jongga/internal/logger"
	"jongga/internal/market"
	"jongga/internal/pkg/format"
)

// 中文说明：
// PHASE 1 유니버스 필터：五项硬性条件全部满足才进入候选池，任何一条
// 不满足即带原因排除（不给部分分）。通过后独立判定 Tier。

// Tier 候选优先级，1 最高
type Tier int

const (
	Tier1 Tier = 1
	Tier2 Tier = 2
	Tier3 Tier = 3
)

// UniverseResult PHASE 1 产出：基础快照 + Tier 注解
type UniverseResult struct {
	Snapshot   market.Snapshot
	Tier       Tier
	ChangeRank int // 涨幅榜名次（1 起）
}

// UniverseFilter PHASE 1 过滤器
type UniverseFilter struct {
	cfg jgcfg.UniverseConfig
}

func NewUniverseFilter(cfg jgcfg.UniverseConfig) *UniverseFilter {
	return &UniverseFilter{cfg: cfg}
}

// CheckMust 逐条检查硬性条件；通过返回 ("", true)，否则返回失败原因
func (f *UniverseFilter) CheckMust(s market.Snapshot) (string, bool) {
	if s.MarketCap < f.cfg.MinMarketCap {
		return fmt.Sprintf("시가총액 부족 %s < %s", format.Won(s.MarketCap), format.Won(f.cfg.MinMarketCap)), false
	}
	if s.TradingValue < f.cfg.MinTradingValue {
		return fmt.Sprintf("거래대금 부족 %s < %s", format.Won(s.TradingValue), format.Won(f.cfg.MinTradingValue)), false
	}
	if s.ChangePct < f.cfg.MinChangePct || s.ChangePct > f.cfg.MaxChangePct {
		return fmt.Sprintf("등락률 범위 밖 %s", format.ChangePct(s.ChangePct)), false
	}
	if s.IsManaged {
		return "관리종목", false
	}
	if s.IsLimitUp {
		return "상한가 도달", false
	}
	return "", true
}

// AssignTier 纯函数：由 (成交额, 涨幅名次, 同主题上涨家数) 决定 Tier
func (f *UniverseFilter) AssignTier(tradingValue float64, changeRank, themeRising int) Tier {
	if tradingValue >= f.cfg.Tier1TradingValue && changeRank > 0 && changeRank <= f.cfg.Tier1MaxRank {
		return Tier1
	}
	if tradingValue >= f.cfg.Tier2TradingValue && themeRising >= f.cfg.Tier2ThemeRising {
		return Tier2
	}
	return Tier3
}

// Filter 对整批快照执行 PHASE 1。
// snaps 需按涨幅降序（名次即下标+1）；themeRising 为主题→当日上涨家数。
func (f *UniverseFilter) Filter(snaps []market.Snapshot, themeRising map[string]int) []UniverseResult {
	results := make([]UniverseResult, 0, len(snaps))
	for i, s := range snaps {
		reason, ok := f.CheckMust(s)
		if !ok {
			logger.Debugf("[PHASE1] %s(%s) 제외: %s", s.Name, s.Symbol, reason)
			continue
		}
		tier := f.AssignTier(s.TradingValue, i+1, themeRising[s.Theme])
		results = append(results, UniverseResult{Snapshot: s, Tier: tier, ChangeRank: i + 1})
	}
	// Tier 升序，同 Tier 按成交额降序
	sort.SliceStable(results, func(a, b int) bool {
		if results[a].Tier != results[b].Tier {
			return results[a].Tier < results[b].Tier
		}
		return results[a].Snapshot.TradingValue > results[b].Snapshot.TradingValue
	})
	if len(results) > f.cfg.MaxCandidates {
		results = results[:f.cfg.MaxCandidates]
	}
	logger.Infof("[PHASE1] 후보 %d/%d개 통과", len(results), len(snaps))
	return results
}
