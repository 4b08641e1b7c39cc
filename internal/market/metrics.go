package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// 中文说明：
// 从 Yahoo Finance chart 端点拉取 KIS 取不到的海外指标（VIX、标普期货涨跌率）。
// 默认使用 https://query1.finance.yahoo.com，可在构造时自定义 BaseURL。

type GlobalQuotes interface {
	VIX(ctx context.Context) (float64, error)
	USFutures(ctx context.Context) (float64, error)
}

type YahooFetcher struct {
	// BaseURL 例如: https://query1.finance.yahoo.com
	BaseURL string
	Client  *http.Client
}

func NewYahooFetcher(baseURL string) *YahooFetcher {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	return &YahooFetcher{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

func (f *YahooFetcher) quote(ctx context.Context, symbol string) (price, prevClose float64, err error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1d", f.BaseURL, symbol)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	var out yahooChart
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, 0, err
	}
	if len(out.Chart.Result) == 0 {
		return 0, 0, fmt.Errorf("%s: 차트 응답 비어 있음", symbol)
	}
	meta := out.Chart.Result[0].Meta
	return meta.RegularMarketPrice, meta.ChartPreviousClose, nil
}

// VIX 获取 VIX 最新值
func (f *YahooFetcher) VIX(ctx context.Context) (float64, error) {
	price, _, err := f.quote(ctx, "%5EVIX")
	return price, err
}

// USFutures 获取标普期货隔夜涨跌率（%）
func (f *YahooFetcher) USFutures(ctx context.Context) (float64, error) {
	price, prev, err := f.quote(ctx, "ES%3DF")
	if err != nil {
		return 0, err
	}
	if prev == 0 {
		return 0, nil
	}
	return (price - prev) / prev * 100, nil
}
