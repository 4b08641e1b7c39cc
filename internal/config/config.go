package config

import (
	"fmt"
	"math"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// 配置结构体（按模块分节；缺省值见 applyDefaults，启动校验见 validate）
type Config struct {
	App AppConfig `toml:"app"`

	KIS KISConfig `toml:"kis"`

	Universe UniverseConfig `toml:"universe"`

	Technical TechnicalConfig `toml:"technical"`

	Sentiment SentimentConfig `toml:"sentiment"`

	Pattern PatternConfig `toml:"pattern"`

	Ensemble EnsembleConfig `toml:"ensemble"`

	Risk RiskConfig `toml:"risk"`

	Position PositionConfig `toml:"position"`

	Storage StorageConfig `toml:"storage"`

	Notify NotifyConfig `toml:"notify"`

	Web WebConfig `toml:"web"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	// 纸面模式：不真正下单，只记录决策
	PaperTrading bool `toml:"paper_trading"`
}

// KISConfig 韩国投资证券 OpenAPI 接入配置
type KISConfig struct {
	BaseURL        string `toml:"base_url"`
	AppKey         string `toml:"app_key"`
	AppSecret      string `toml:"app_secret"`
	AccountNo      string `toml:"account_no"`
	AccountCode    string `toml:"account_code"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// 行情富化并发上限（技术/情绪查询）
	LookupConcurrency int `toml:"lookup_concurrency"`
}

// UniverseConfig PHASE 1 硬性过滤条件
type UniverseConfig struct {
	MinMarketCap    float64 `toml:"min_market_cap"`    // 韩元
	MinTradingValue float64 `toml:"min_trading_value"` // 韩元
	MinChangePct    float64 `toml:"min_change_pct"`
	MaxChangePct    float64 `toml:"max_change_pct"`
	MaxCandidates   int     `toml:"max_candidates"`
	// Tier 判定
	Tier1TradingValue float64 `toml:"tier1_trading_value"`
	Tier1MaxRank      int     `toml:"tier1_max_rank"`
	Tier2TradingValue float64 `toml:"tier2_trading_value"`
	Tier2ThemeRising  int     `toml:"tier2_theme_rising"`

	// ThemeAPIURL 선택。테마 키워드 사전을 외부 API에서 받아온다
	ThemeAPIURL string `toml:"theme_api_url"`
}

// TechnicalConfig PHASE 2 打分参数
type TechnicalConfig struct {
	NewHighDays  int     `toml:"new_high_days"`
	MinScore     int     `toml:"min_score"`
	TopN         int     `toml:"top_n"`
	NearHighPct  float64 `toml:"near_high_pct"`  // 收盘距日内高点比例
	VolumeSurgeX float64 `toml:"volume_surge_x"` // 量能放大倍数
}

// SentimentConfig PHASE 3 参数（VETO 关键词为内置数据，不走配置）
type SentimentConfig struct {
	NewsCountHigh    int     `toml:"news_count_high"`
	NewsCountLow     int     `toml:"news_count_low"`
	PositiveRatioMin float64 `toml:"positive_ratio_min"`
	BoardPostMin     int     `toml:"board_post_min"`
	ThemeMinDays     int     `toml:"theme_min_days"`
	FinalTopN        int     `toml:"final_top_n"`
}

// PatternConfig PHASE 4 收盘窗口 V 形反转侦测
type PatternConfig struct {
	WindowStart   string  `toml:"window_start"` // "15:16:00"
	WindowEnd     string  `toml:"window_end"`   // "15:19:30"
	ReboundPct    float64 `toml:"rebound_pct"`  // 相对 15:00 以来低点
	ExecStrength  float64 `toml:"exec_strength"`
	StrongerExec  float64 `toml:"stronger_exec"`
	OrderImbRatio float64 `toml:"order_imb_ratio"`
	VolumeSurgeX  float64 `toml:"volume_surge_x"`
}

// EnsembleConfig 四路逻辑加权与进场分档
type EnsembleConfig struct {
	Weights           map[string]float64 `toml:"weights"` // tug_of_war / v_pattern / moc_imbalance / news_temporal
	PriorityThreshold float64            `toml:"priority_threshold"`
	StandardThreshold float64            `toml:"standard_threshold"`
	SmallThreshold    float64            `toml:"small_threshold"`
}

// RiskConfig 宏观过滤、止损与行为闸门
type RiskConfig struct {
	// 宏观
	DangerKospiDrop   float64 `toml:"danger_kospi_drop"`
	DangerFuturesDrop float64 `toml:"danger_futures_drop"`
	DangerVix         float64 `toml:"danger_vix"`
	CautionKospiDrop  float64 `toml:"caution_kospi_drop"`
	CautionFuturesDrop float64 `toml:"caution_futures_drop"`
	CautionVix        float64 `toml:"caution_vix"`
	// 止损阶梯
	EmergencyKospiDrop float64 `toml:"emergency_kospi_drop"`
	MaxSingleLossPct   float64 `toml:"max_single_loss_pct"` // 占总资产比例
	TimeStopAt         string  `toml:"time_stop_at"`        // "09:03:00"
	ForcedTimeoutAt    string  `toml:"forced_timeout_at"`   // "10:00:00"
	// 行为闸门
	MaxDailyEntries      int     `toml:"max_daily_entries"`
	MaxConsecutiveLosses int     `toml:"max_consecutive_losses"`
	MaxDailyLossPct      float64 `toml:"max_daily_loss_pct"`
	// 晨间离场
	EMABreakPct float64 `toml:"ema_break_pct"` // 1 分钟 EMA20 离场阈值
}

// PositionConfig 仓位上限与凯利参数
type PositionConfig struct {
	MaxPositions       int     `toml:"max_positions"`
	MaxWeightPerSymbol float64 `toml:"max_weight_per_symbol"`
	MinCashPct         float64 `toml:"min_cash_pct"`
	KellyRecentTrades  int     `toml:"kelly_recent_trades"`
	KellyMaxFraction   float64 `toml:"kelly_max_fraction"`
	UseHalfKelly       bool    `toml:"use_half_kelly"`
}

type StorageConfig struct {
	Path string `toml:"path"`
}

type NotifyConfig struct {
	Telegram struct {
		Enabled  bool   `toml:"enabled"`
		BotToken string `toml:"bot_token"`
		ChatID   string `toml:"chat_id"`
	} `toml:"telegram"`
}

type WebConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// Load 读取并解析 TOML 配置文件，并设置缺省值与启动校验
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析 TOML 失败: %w", err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// 默认值设置（与原始策略常量一致）
func applyDefaults(c *Config) {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.KIS.BaseURL == "" {
		c.KIS.BaseURL = "https://openapi.koreainvestment.com:9443"
	}
	if c.KIS.AccountCode == "" {
		c.KIS.AccountCode = "01"
	}
	if c.KIS.TimeoutSeconds <= 0 {
		c.KIS.TimeoutSeconds = 15
	}
	if c.KIS.LookupConcurrency <= 0 {
		c.KIS.LookupConcurrency = 4
	}

	if c.Universe.MinMarketCap <= 0 {
		c.Universe.MinMarketCap = 300_000_000_000 // 3,000억
	}
	if c.Universe.MinTradingValue <= 0 {
		c.Universe.MinTradingValue = 100_000_000_000 // 1,000억
	}
	if c.Universe.MinChangePct == 0 {
		c.Universe.MinChangePct = 2.0
	}
	if c.Universe.MaxChangePct == 0 {
		c.Universe.MaxChangePct = 15.0
	}
	if c.Universe.MaxCandidates <= 0 {
		c.Universe.MaxCandidates = 50
	}
	if c.Universe.Tier1TradingValue <= 0 {
		c.Universe.Tier1TradingValue = 1_000_000_000_000 // 1조
	}
	if c.Universe.Tier1MaxRank <= 0 {
		c.Universe.Tier1MaxRank = 10
	}
	if c.Universe.Tier2TradingValue <= 0 {
		c.Universe.Tier2TradingValue = 300_000_000_000
	}
	if c.Universe.Tier2ThemeRising <= 0 {
		c.Universe.Tier2ThemeRising = 2
	}

	if c.Technical.NewHighDays <= 0 {
		c.Technical.NewHighDays = 20
	}
	if c.Technical.MinScore <= 0 {
		c.Technical.MinScore = 35
	}
	if c.Technical.TopN <= 0 {
		c.Technical.TopN = 10
	}
	if c.Technical.NearHighPct <= 0 {
		c.Technical.NearHighPct = 3.0
	}
	if c.Technical.VolumeSurgeX <= 0 {
		c.Technical.VolumeSurgeX = 2.0
	}

	if c.Sentiment.NewsCountHigh <= 0 {
		c.Sentiment.NewsCountHigh = 20
	}
	if c.Sentiment.NewsCountLow <= 0 {
		c.Sentiment.NewsCountLow = 10
	}
	if c.Sentiment.PositiveRatioMin <= 0 {
		c.Sentiment.PositiveRatioMin = 0.6
	}
	if c.Sentiment.BoardPostMin <= 0 {
		c.Sentiment.BoardPostMin = 50
	}
	if c.Sentiment.ThemeMinDays <= 0 {
		c.Sentiment.ThemeMinDays = 3
	}
	if c.Sentiment.FinalTopN <= 0 {
		c.Sentiment.FinalTopN = 5
	}

	if c.Pattern.WindowStart == "" {
		c.Pattern.WindowStart = "15:16:00"
	}
	if c.Pattern.WindowEnd == "" {
		c.Pattern.WindowEnd = "15:19:30"
	}
	if c.Pattern.ReboundPct <= 0 {
		c.Pattern.ReboundPct = 0.005
	}
	if c.Pattern.ExecStrength <= 0 {
		c.Pattern.ExecStrength = 100
	}
	if c.Pattern.StrongerExec <= 0 {
		c.Pattern.StrongerExec = 120
	}
	if c.Pattern.OrderImbRatio <= 0 {
		c.Pattern.OrderImbRatio = 1.5
	}
	if c.Pattern.VolumeSurgeX <= 0 {
		c.Pattern.VolumeSurgeX = 2.0
	}

	if len(c.Ensemble.Weights) == 0 {
		c.Ensemble.Weights = map[string]float64{
			"tug_of_war":    0.30,
			"v_pattern":     0.35,
			"moc_imbalance": 0.15,
			"news_temporal": 0.20,
		}
	}
	if c.Ensemble.PriorityThreshold <= 0 {
		c.Ensemble.PriorityThreshold = 70
	}
	if c.Ensemble.StandardThreshold <= 0 {
		c.Ensemble.StandardThreshold = 55
	}
	if c.Ensemble.SmallThreshold <= 0 {
		c.Ensemble.SmallThreshold = 40
	}

	if c.Risk.DangerKospiDrop == 0 {
		c.Risk.DangerKospiDrop = -2.0
	}
	if c.Risk.DangerFuturesDrop == 0 {
		c.Risk.DangerFuturesDrop = -2.0
	}
	if c.Risk.DangerVix <= 0 {
		c.Risk.DangerVix = 30
	}
	if c.Risk.CautionKospiDrop == 0 {
		c.Risk.CautionKospiDrop = -1.0
	}
	if c.Risk.CautionFuturesDrop == 0 {
		c.Risk.CautionFuturesDrop = -1.0
	}
	if c.Risk.CautionVix <= 0 {
		c.Risk.CautionVix = 25
	}
	if c.Risk.EmergencyKospiDrop == 0 {
		c.Risk.EmergencyKospiDrop = -2.0
	}
	if c.Risk.MaxSingleLossPct <= 0 {
		c.Risk.MaxSingleLossPct = 0.03
	}
	if c.Risk.TimeStopAt == "" {
		c.Risk.TimeStopAt = "09:03:00"
	}
	if c.Risk.ForcedTimeoutAt == "" {
		c.Risk.ForcedTimeoutAt = "10:00:00"
	}
	if c.Risk.MaxDailyEntries <= 0 {
		c.Risk.MaxDailyEntries = 3
	}
	if c.Risk.MaxConsecutiveLosses <= 0 {
		c.Risk.MaxConsecutiveLosses = 3
	}
	if c.Risk.MaxDailyLossPct == 0 {
		c.Risk.MaxDailyLossPct = -5.0
	}
	if c.Risk.EMABreakPct == 0 {
		c.Risk.EMABreakPct = -1.5
	}

	if c.Position.MaxPositions <= 0 {
		c.Position.MaxPositions = 5
	}
	if c.Position.MaxWeightPerSymbol <= 0 {
		c.Position.MaxWeightPerSymbol = 0.30
	}
	if c.Position.MinCashPct <= 0 {
		c.Position.MinCashPct = 0.20
	}
	if c.Position.KellyRecentTrades <= 0 {
		c.Position.KellyRecentTrades = 20
	}
	if c.Position.KellyMaxFraction <= 0 {
		c.Position.KellyMaxFraction = 0.25
		c.Position.UseHalfKelly = true
	}

	if c.Storage.Path == "" {
		c.Storage.Path = "data/jongga.db"
	}
	if c.Web.Addr == "" {
		c.Web.Addr = ":8787"
	}
}

// 启动校验：任何一条不满足都视为致命错误，进程不得继续
func validate(c *Config) error {
	if c.Universe.MinChangePct >= c.Universe.MaxChangePct {
		return fmt.Errorf("universe 涨幅区间非法: [%.1f, %.1f]", c.Universe.MinChangePct, c.Universe.MaxChangePct)
	}
	// 四路权重必须恰好合计 1.0
	required := []string{"tug_of_war", "v_pattern", "moc_imbalance", "news_temporal"}
	sum := 0.0
	for _, name := range required {
		w, ok := c.Ensemble.Weights[name]
		if !ok {
			return fmt.Errorf("ensemble.weights 缺少 %s", name)
		}
		if w < 0 || w > 1 {
			return fmt.Errorf("ensemble.weights.%s 需在 [0,1]: %v", name, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("ensemble.weights 合计需为 1.0，当前 %.6f", sum)
	}
	if !(c.Ensemble.PriorityThreshold > c.Ensemble.StandardThreshold &&
		c.Ensemble.StandardThreshold > c.Ensemble.SmallThreshold) {
		return fmt.Errorf("ensemble 阈值需满足 priority > standard > small")
	}
	for _, ts := range []struct {
		name, val string
	}{
		{"pattern.window_start", c.Pattern.WindowStart},
		{"pattern.window_end", c.Pattern.WindowEnd},
		{"risk.time_stop_at", c.Risk.TimeStopAt},
		{"risk.forced_timeout_at", c.Risk.ForcedTimeoutAt},
	} {
		if _, err := time.Parse("15:04:05", ts.val); err != nil {
			return fmt.Errorf("%s 时间格式非法: %s", ts.name, ts.val)
		}
	}
	if c.Pattern.WindowStart >= c.Pattern.WindowEnd {
		return fmt.Errorf("pattern 窗口起止非法: %s >= %s", c.Pattern.WindowStart, c.Pattern.WindowEnd)
	}
	if c.Risk.MaxSingleLossPct <= 0 || c.Risk.MaxSingleLossPct >= 1 {
		return fmt.Errorf("risk.max_single_loss_pct 需在 (0,1): %v", c.Risk.MaxSingleLossPct)
	}
	if c.Risk.MaxDailyLossPct >= 0 {
		return fmt.Errorf("risk.max_daily_loss_pct 需为负值: %v", c.Risk.MaxDailyLossPct)
	}
	if c.Position.MaxWeightPerSymbol <= 0 || c.Position.MaxWeightPerSymbol > 1 {
		return fmt.Errorf("position.max_weight_per_symbol 需在 (0,1]: %v", c.Position.MaxWeightPerSymbol)
	}
	if c.Position.MinCashPct < 0 || c.Position.MinCashPct >= 1 {
		return fmt.Errorf("position.min_cash_pct 需在 [0,1): %v", c.Position.MinCashPct)
	}
	if !c.App.PaperTrading {
		if c.KIS.AppKey == "" || c.KIS.AppSecret == "" || c.KIS.AccountNo == "" {
			return fmt.Errorf("实盘模式需提供 kis.app_key / kis.app_secret / kis.account_no")
		}
	}
	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.BotToken == "" || c.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("已启用 Telegram 通知，请提供 bot_token 与 chat_id")
		}
	}
	return nil
}
