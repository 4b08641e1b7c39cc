package kis

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"jongga/internal/market"
)

// Market-data surface of the KIS OpenAPI. Numeric fields arrive as strings
// and are parsed leniently: a malformed field degrades to zero, a failed
// call surfaces as an error so the caller can skip the affected symbol.

const (
	trInquirePrice   = "FHKST01010100"
	trVolumeRank     = "FHPST01710000"
	trDailyPrice     = "FHKST01010400"
	trMinutePrice    = "FHKST03010200"
	trInvestor       = "FHKST01010900"
	trAskingPrice    = "FHKST01010200"
	trIndexPrice     = "FHPUP02100000"
	trNewsTitle      = "FHKST01011800"
	trProgramTrade   = "FHPPG04650100"
	trBalance        = "TTTC8434R"
	trOrderCashBuy   = "TTTC0802U"
	trOrderCashSell  = "TTTC0801U"
)

func f64(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}

func i64(s string) int64 {
	v, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return v
}

// Source adapts Client to the market.DataSource / market.Broker contracts.
// A small per-symbol sample memory backs the execution-strength trend check.
type Source struct {
	client *Client

	mu       sync.Mutex
	lastExec map[string]float64
}

var (
	_ market.DataSource = (*Source)(nil)
	_ market.Broker     = (*Source)(nil)
)

func NewSource(client *Client) *Source {
	return &Source{client: client, lastExec: make(map[string]float64)}
}

type priceOutput struct {
	Output struct {
		Price        string `json:"stck_prpr"`
		Open         string `json:"stck_oprc"`
		High         string `json:"stck_hgpr"`
		Low          string `json:"stck_lwpr"`
		PrevClose    string `json:"stck_sdpr"`
		Volume       string `json:"acml_vol"`
		TradingValue string `json:"acml_tr_pbmn"`
		ChangePct    string `json:"prdy_ctrt"`
		MarketCap    string `json:"hts_avls"` // 억원
		ExecStrength string `json:"seln_cntg_smtn"`
		MngIssue     string `json:"mang_issu_cls_code"`
		LimitClass   string `json:"iscd_stat_cls_code"`
		Name         string `json:"hts_kor_isnm"`
	} `json:"output"`
}

// Snapshot 个股快照
func (s *Source) Snapshot(ctx context.Context, symbol string) (market.Snapshot, error) {
	q := url.Values{}
	q.Set("FID_COND_MRKT_DIV_CODE", "J")
	q.Set("FID_INPUT_ISCD", symbol)
	var out priceOutput
	if err := s.client.doRequest(ctx, http.MethodGet,
		"/uapi/domestic-stock/v1/quotations/inquire-price", trInquirePrice, q, nil, &out); err != nil {
		return market.Snapshot{}, err
	}
	o := out.Output
	snap := market.Snapshot{
		Symbol:       symbol,
		Name:         strings.TrimSpace(o.Name),
		Price:        f64(o.Price),
		Open:         f64(o.Open),
		High:         f64(o.High),
		Low:          f64(o.Low),
		PrevClose:    f64(o.PrevClose),
		Volume:       i64(o.Volume),
		TradingValue: f64(o.TradingValue),
		MarketCap:    f64(o.MarketCap) * 100_000_000, // 억원 → 원
		ChangePct:    f64(o.ChangePct),
		IsManaged:    strings.TrimSpace(o.MngIssue) != "" && o.MngIssue != "00",
		IsLimitUp:    strings.TrimSpace(o.LimitClass) == "1",
	}
	return snap, nil
}

type rankOutput struct {
	Output []struct {
		Symbol       string `json:"mksc_shrn_iscd"`
		Name         string `json:"hts_kor_isnm"`
		Price        string `json:"stck_prpr"`
		ChangePct    string `json:"prdy_ctrt"`
		Volume       string `json:"acml_vol"`
		TradingValue string `json:"acml_tr_pbmn"`
	} `json:"output"`
}

// TopGainers 涨幅榜；详细字段（市值、管理/涨停标记）由 Snapshot 富化
func (s *Source) TopGainers(ctx context.Context, count int) ([]market.Snapshot, error) {
	q := url.Values{}
	q.Set("FID_COND_MRKT_DIV_CODE", "J")
	q.Set("FID_COND_SCR_DIV_CODE", "20171")
	q.Set("FID_INPUT_ISCD", "0000")
	q.Set("FID_DIV_CLS_CODE", "0")
	q.Set("FID_BLNG_CLS_CODE", "0")
	q.Set("FID_TRGT_CLS_CODE", "111111111")
	q.Set("FID_TRGT_EXLS_CLS_CODE", "000000")
	var out rankOutput
	if err := s.client.doRequest(ctx, http.MethodGet,
		"/uapi/domestic-stock/v1/quotations/volume-rank", trVolumeRank, q, nil, &out); err != nil {
		return nil, err
	}
	snaps := make([]market.Snapshot, 0, count)
	for _, row := range out.Output {
		if len(snaps) >= count {
			break
		}
		snaps = append(snaps, market.Snapshot{
			Symbol:       strings.TrimSpace(row.Symbol),
			Name:         strings.TrimSpace(row.Name),
			Price:        f64(row.Price),
			ChangePct:    f64(row.ChangePct),
			Volume:       i64(row.Volume),
			TradingValue: f64(row.TradingValue),
		})
	}
	return snaps, nil
}

type dailyOutput struct {
	Output []struct {
		Date   string `json:"stck_bsop_date"`
		Open   string `json:"stck_oprc"`
		High   string `json:"stck_hgpr"`
		Low    string `json:"stck_lwpr"`
		Close  string `json:"stck_clpr"`
		Volume string `json:"acml_vol"`
	} `json:"output"`
}

// DailyBars 返回升序日线（最老在前），便于直接喂给指标计算
func (s *Source) DailyBars(ctx context.Context, symbol string, days int) ([]market.DailyBar, error) {
	q := url.Values{}
	q.Set("FID_COND_MRKT_DIV_CODE", "J")
	q.Set("FID_INPUT_ISCD", symbol)
	q.Set("FID_PERIOD_DIV_CODE", "D")
	q.Set("FID_ORG_ADJ_PRC", "0")
	var out dailyOutput
	if err := s.client.doRequest(ctx, http.MethodGet,
		"/uapi/domestic-stock/v1/quotations/inquire-daily-price", trDailyPrice, q, nil, &out); err != nil {
		return nil, err
	}
	rows := out.Output
	if len(rows) > days {
		rows = rows[:days]
	}
	// KIS 按最新在前返回，倒序成升序
	bars := make([]market.DailyBar, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		bars = append(bars, market.DailyBar{
			Date:   strings.TrimSpace(r.Date),
			Open:   f64(r.Open),
			High:   f64(r.High),
			Low:    f64(r.Low),
			Close:  f64(r.Close),
			Volume: i64(r.Volume),
		})
	}
	return bars, nil
}

type minuteOutput struct {
	Output2 []struct {
		Time   string `json:"stck_cntg_hour"`
		Open   string `json:"stck_oprc"`
		High   string `json:"stck_hgpr"`
		Low    string `json:"stck_lwpr"`
		Close  string `json:"stck_prpr"`
		Volume string `json:"cntg_vol"`
	} `json:"output2"`
}

// MinuteBars 返回升序 1 分钟线
func (s *Source) MinuteBars(ctx context.Context, symbol string, count int) ([]market.MinuteBar, error) {
	q := url.Values{}
	q.Set("FID_ETC_CLS_CODE", "")
	q.Set("FID_COND_MRKT_DIV_CODE", "J")
	q.Set("FID_INPUT_ISCD", symbol)
	q.Set("FID_INPUT_HOUR_1", "")
	q.Set("FID_PW_DATA_INCU_YN", "Y")
	var out minuteOutput
	if err := s.client.doRequest(ctx, http.MethodGet,
		"/uapi/domestic-stock/v1/quotations/inquire-time-itemchartprice", trMinutePrice, q, nil, &out); err != nil {
		return nil, err
	}
	rows := out.Output2
	if len(rows) > count {
		rows = rows[:count]
	}
	bars := make([]market.MinuteBar, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		bars = append(bars, market.MinuteBar{
			Time:   strings.TrimSpace(r.Time),
			Open:   f64(r.Open),
			High:   f64(r.High),
			Low:    f64(r.Low),
			Close:  f64(r.Close),
			Volume: i64(r.Volume),
		})
	}
	return bars, nil
}

type askingOutput struct {
	Output1 struct {
		TotalSellQty  string `json:"total_askp_rsqn"`
		TotalBuyQty   string `json:"total_bidp_rsqn"`
		BestAsk       string `json:"askp1"`
		BestBid       string `json:"bidp1"`
		ExpectedClose string `json:"antc_cnpr"`
	} `json:"output1"`
}

// OrderBook 五档合计盘口与预计成交价
func (s *Source) OrderBook(ctx context.Context, symbol string) (market.OrderBook, error) {
	q := url.Values{}
	q.Set("FID_COND_MRKT_DIV_CODE", "J")
	q.Set("FID_INPUT_ISCD", symbol)
	var out askingOutput
	if err := s.client.doRequest(ctx, http.MethodGet,
		"/uapi/domestic-stock/v1/quotations/inquire-asking-price-exp-ccn", trAskingPrice, q, nil, &out); err != nil {
		return market.OrderBook{}, err
	}
	o := out.Output1
	return market.OrderBook{
		SellQty:       i64(o.TotalSellQty),
		BuyQty:        i64(o.TotalBuyQty),
		BestAsk:       f64(o.BestAsk),
		BestBid:       f64(o.BestBid),
		ExpectedClose: f64(o.ExpectedClose),
	}, nil
}

type investorOutput struct {
	Output []struct {
		ForeignNet     string `json:"frgn_ntby_qty"`
		InstitutionNet string `json:"orgn_ntby_qty"`
		IndividualNet  string `json:"prsn_ntby_qty"`
	} `json:"output"`
}

type programOutput struct {
	Output struct {
		ProgramNet string `json:"whol_ntby_qty"`
	} `json:"output"`
}

// InvestorFlow 外资/机构/个人净买入与程序化 3 分钟净买入
func (s *Source) InvestorFlow(ctx context.Context, symbol string) (market.InvestorFlow, error) {
	q := url.Values{}
	q.Set("FID_COND_MRKT_DIV_CODE", "J")
	q.Set("FID_INPUT_ISCD", symbol)
	var inv investorOutput
	if err := s.client.doRequest(ctx, http.MethodGet,
		"/uapi/domestic-stock/v1/quotations/inquire-investor", trInvestor, q, nil, &inv); err != nil {
		return market.InvestorFlow{}, err
	}
	flow := market.InvestorFlow{}
	if len(inv.Output) > 0 {
		row := inv.Output[0]
		flow.ForeignNet = i64(row.ForeignNet)
		flow.InstitutionNet = i64(row.InstitutionNet)
		flow.IndividualNet = i64(row.IndividualNet)
	}
	var prog programOutput
	if err := s.client.doRequest(ctx, http.MethodGet,
		"/uapi/domestic-stock/v1/quotations/program-trade-by-stock", trProgramTrade, q, nil, &prog); err == nil {
		flow.ProgramNet3Min = i64(prog.Output.ProgramNet)
	}
	return flow, nil
}

type strengthOutput struct {
	Output struct {
		Strength string `json:"cttr"`
	} `json:"output"`
}

// ExecutionStrength 체결강도；上一采样取自本进程的采样记忆
func (s *Source) ExecutionStrength(ctx context.Context, symbol string) (market.ExecutionStrength, error) {
	q := url.Values{}
	q.Set("FID_COND_MRKT_DIV_CODE", "J")
	q.Set("FID_INPUT_ISCD", symbol)
	var out strengthOutput
	if err := s.client.doRequest(ctx, http.MethodGet,
		"/uapi/domestic-stock/v1/quotations/inquire-ccnl", trInquirePrice, q, nil, &out); err != nil {
		return market.ExecutionStrength{}, err
	}
	cur := f64(out.Output.Strength)
	s.mu.Lock()
	prev, ok := s.lastExec[symbol]
	if !ok {
		prev = cur
	}
	s.lastExec[symbol] = cur
	s.mu.Unlock()
	return market.ExecutionStrength{Current: cur, Previous: prev}, nil
}

type indexOutput struct {
	Output struct {
		ChangePct string `json:"bstp_nmix_prdy_ctrt"`
	} `json:"output"`
}

// Indices 宏观指数；美国期货与 VIX 取不到时降级为 0（下游视情况跳过 CAUTION 判定）
func (s *Source) Indices(ctx context.Context) (market.IndexSnapshot, error) {
	get := func(code string) (float64, error) {
		q := url.Values{}
		q.Set("FID_COND_MRKT_DIV_CODE", "U")
		q.Set("FID_INPUT_ISCD", code)
		var out indexOutput
		if err := s.client.doRequest(ctx, http.MethodGet,
			"/uapi/domestic-stock/v1/quotations/inquire-index-price", trIndexPrice, q, nil, &out); err != nil {
			return 0, err
		}
		return f64(out.Output.ChangePct), nil
	}
	kospi, err := get("0001")
	if err != nil {
		return market.IndexSnapshot{}, err
	}
	kosdaq, err := get("1001")
	if err != nil {
		return market.IndexSnapshot{}, err
	}
	snap := market.IndexSnapshot{KospiChangePct: kospi, KosdaqChangePct: kosdaq}
	// 海外指标尽力而为
	if fut, err := get("COMP"); err == nil {
		snap.USFuturesChangePct = fut
	}
	if vix, err := get("VIX"); err == nil {
		snap.VIX = vix
	}
	return snap, nil
}

type newsOutput struct {
	Output []struct {
		Title string `json:"hts_pbnt_titl_cntt"`
	} `json:"output"`
}

// Sentiment 拉取当日新闻标题；正负面比例与论坛数据由 sentiment 包另行推导
func (s *Source) Sentiment(ctx context.Context, symbol, name string) (market.SentimentData, error) {
	q := url.Values{}
	q.Set("FID_NEWS_OFER_ENTP_CODE", "")
	q.Set("FID_COND_MRKT_CLS_CODE", "")
	q.Set("FID_INPUT_ISCD", symbol)
	q.Set("FID_TITL_CNTT", "")
	q.Set("FID_INPUT_DATE_1", "")
	q.Set("FID_INPUT_HOUR_1", "")
	q.Set("FID_RANK_SORT_CLS_CODE", "")
	q.Set("FID_INPUT_SRNO", "")
	var out newsOutput
	if err := s.client.doRequest(ctx, http.MethodGet,
		"/uapi/domestic-stock/v1/quotations/news-title", trNewsTitle, q, nil, &out); err != nil {
		return market.SentimentData{}, err
	}
	data := market.SentimentData{}
	for _, row := range out.Output {
		title := strings.TrimSpace(row.Title)
		if title == "" {
			continue
		}
		data.News = append(data.News, market.NewsItem{Title: title})
	}
	data.GoogleNewsCount = len(data.News)
	return data, nil
}
