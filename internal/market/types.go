package market

import (
	"context"
	"time"
)

// 中文说明：
// KRX 行情与账户数据模型。所有决策阶段只依赖这里的结构与 DataSource 抽象，
// 券商实现见 internal/broker/kis。

// Snapshot 个股即时快照
type Snapshot struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Open         float64 `json:"open"`
	High         float64 `json:"high"`
	Low          float64 `json:"low"`
	PrevClose    float64 `json:"prev_close"`
	Volume       int64   `json:"volume"`
	TradingValue float64 `json:"trading_value"` // 成交额（韩元）
	MarketCap    float64 `json:"market_cap"`
	ChangePct    float64 `json:"change_pct"`
	IsManaged    bool    `json:"is_managed"`  // 관리종목
	IsLimitUp    bool    `json:"is_limit_up"` // 상한가
	Theme        string  `json:"theme"`
}

// DailyBar 日线
type DailyBar struct {
	Date   string  `json:"date"` // YYYYMMDD
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// MinuteBar 分钟线
type MinuteBar struct {
	Time   string  `json:"time"` // HHMMSS
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// OrderBook 五档合计盘口
type OrderBook struct {
	SellQty       int64   `json:"sell_qty"` // 总卖出挂单
	BuyQty        int64   `json:"buy_qty"`  // 总买入挂单
	BestBid       float64 `json:"best_bid"`
	BestAsk       float64 `json:"best_ask"`
	ExpectedClose float64 `json:"expected_close"` // 동시호가 예상체결가
}

// InvestorFlow 投资者资金流向（股数）
type InvestorFlow struct {
	ForeignNet     int64 `json:"foreign_net"`
	InstitutionNet int64 `json:"institution_net"`
	IndividualNet  int64 `json:"individual_net"`
	ProgramNet3Min int64 `json:"program_net_3min"`
}

// ExecutionStrength 체결강도采样（当前值与上一采样）
type ExecutionStrength struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
}

// IndexSnapshot 宏观指数快照
type IndexSnapshot struct {
	KospiChangePct     float64 `json:"kospi_change_pct"`
	KosdaqChangePct    float64 `json:"kosdaq_change_pct"`
	USFuturesChangePct float64 `json:"us_futures_change_pct"`
	VIX                float64 `json:"vix"`
}

// NewsItem 新闻/公告条目
type NewsItem struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CommunityStats 종목토론방活跃度
type CommunityStats struct {
	PostCount int        `json:"post_count"`
	Posts     []NewsItem `json:"posts,omitempty"`
}

// SentimentData 某只候选股当日的舆情汇总
type SentimentData struct {
	News            []NewsItem     `json:"news"`
	GoogleNewsCount int            `json:"google_news_count"`
	PositiveRatio   float64        `json:"positive_ratio"`
	NegativeRatio   float64        `json:"negative_ratio"`
	Community       CommunityStats `json:"community"`
	PortalTop       bool           `json:"portal_top"` // 네이버 금융 상위 노출
	ThemeDays       int            `json:"theme_days"` // 主题持续天数
}

// Holding 账户持仓
type Holding struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Quantity int64   `json:"quantity"`
	AvgPrice float64 `json:"avg_price"`
}

// Account 账户快照
type Account struct {
	Cash       float64   `json:"cash"`
	TotalAsset float64   `json:"total_asset"`
	Holdings   []Holding `json:"holdings"`
}

// Order 下单请求；Price 为 0 时按市价委托
type Order struct {
	Symbol   string  `json:"symbol"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
}

// DataSource 决策管线消费的行情抽象；任何一次调用失败只影响对应候选股
type DataSource interface {
	TopGainers(ctx context.Context, count int) ([]Snapshot, error)
	Snapshot(ctx context.Context, symbol string) (Snapshot, error)
	DailyBars(ctx context.Context, symbol string, days int) ([]DailyBar, error)
	MinuteBars(ctx context.Context, symbol string, count int) ([]MinuteBar, error)
	OrderBook(ctx context.Context, symbol string) (OrderBook, error)
	InvestorFlow(ctx context.Context, symbol string) (InvestorFlow, error)
	ExecutionStrength(ctx context.Context, symbol string) (ExecutionStrength, error)
	Indices(ctx context.Context) (IndexSnapshot, error)
	Sentiment(ctx context.Context, symbol, name string) (SentimentData, error)
}

// Broker 交易抽象
type Broker interface {
	Balance(ctx context.Context) (Account, error)
	PlaceBuy(ctx context.Context, order Order) error
	PlaceSell(ctx context.Context, order Order) error
}

// Clock 供测试注入时间
type Clock interface {
	Now() time.Time
}

// SystemClock 真实时钟
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
