package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
[app]
paper_trading = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Universe.MinMarketCap != 300_000_000_000 {
		t.Errorf("min_market_cap 默认值错误: %v", cfg.Universe.MinMarketCap)
	}
	if cfg.Universe.MinChangePct != 2.0 || cfg.Universe.MaxChangePct != 15.0 {
		t.Errorf("涨幅区间默认值错误: [%v, %v]", cfg.Universe.MinChangePct, cfg.Universe.MaxChangePct)
	}
	if cfg.Technical.MinScore != 35 {
		t.Errorf("technical.min_score 默认值错误: %v", cfg.Technical.MinScore)
	}
	if got := cfg.Ensemble.Weights["v_pattern"]; got != 0.35 {
		t.Errorf("v_pattern 权重默认值错误: %v", got)
	}
	if cfg.Risk.ForcedTimeoutAt != "10:00:00" {
		t.Errorf("forced_timeout_at 默认值错误: %v", cfg.Risk.ForcedTimeoutAt)
	}
	if cfg.Position.MaxPositions != 5 {
		t.Errorf("max_positions 默认值错误: %v", cfg.Position.MaxPositions)
	}
}

func TestWeightsMustSumToOne(t *testing.T) {
	path := writeConfig(t, `
[app]
paper_trading = true

[ensemble.weights]
tug_of_war = 0.30
v_pattern = 0.35
moc_imbalance = 0.15
news_temporal = 0.30
`)
	if _, err := Load(path); err == nil {
		t.Fatal("权重合计 1.10 应在启动时失败")
	}
}

func TestWeightsMissingLogic(t *testing.T) {
	path := writeConfig(t, `
[app]
paper_trading = true

[ensemble.weights]
tug_of_war = 0.50
v_pattern = 0.50
`)
	if _, err := Load(path); err == nil {
		t.Fatal("缺少逻辑权重应在启动时失败")
	}
}

func TestThresholdOrdering(t *testing.T) {
	path := writeConfig(t, `
[app]
paper_trading = true

[ensemble]
priority_threshold = 50
standard_threshold = 55
small_threshold = 40
`)
	if _, err := Load(path); err == nil {
		t.Fatal("阈值乱序应在启动时失败")
	}
}

func TestLiveModeRequiresCredentials(t *testing.T) {
	path := writeConfig(t, `
[app]
paper_trading = false
`)
	if _, err := Load(path); err == nil {
		t.Fatal("实盘模式缺少凭证应在启动时失败")
	}
}

func TestBadWindowFormat(t *testing.T) {
	path := writeConfig(t, `
[app]
paper_trading = true

[pattern]
window_start = "quarter past three"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("非法时间格式应在启动时失败")
	}
}
