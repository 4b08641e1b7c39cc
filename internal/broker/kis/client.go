package kis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	jgcfg "jongga/internal/config"
	"jongga/internal/logger"
	"jongga/internal/pkg/jsonutil"
)

// Client wraps the Korea Investment & Securities OpenAPI REST interactions
// required by jongga. Access tokens are issued lazily and cached until expiry.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	appKey     string
	appSecret  string
	accountNo  string
	acntCode   string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient constructs a KIS client from configuration.
func NewClient(cfg jgcfg.KISConfig) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("kis.base_url 不能为空")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("解析 kis.base_url 失败: %w", err)
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
		appKey:     strings.TrimSpace(cfg.AppKey),
		appSecret:  strings.TrimSpace(cfg.AppSecret),
		accountNo:  strings.TrimSpace(cfg.AccountNo),
		acntCode:   strings.TrimSpace(cfg.AccountCode),
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// ensureToken issues /oauth2/tokenP when the cached token is absent or stale.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}
	payload := map[string]string{
		"grant_type": "client_credentials",
		"appkey":     c.appKey,
		"appsecret":  c.appSecret,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("序列化 token 请求失败: %w", err)
	}
	endpoint := c.baseURL.ResolveReference(&url.URL{Path: "/oauth2/tokenP"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(buf))
	if err != nil {
		return "", fmt.Errorf("构造 token 请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("调用 KIS token 接口失败: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("KIS token 返回错误(%s): %s", resp.Status, strings.TrimSpace(string(data)))
	}
	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("解析 token 响应失败: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("KIS 未返回 access_token")
	}
	c.token = tr.AccessToken
	// 提前 5 分钟过期，避开边界
	ttl := time.Duration(tr.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	c.tokenExpiry = time.Now().Add(ttl - 5*time.Minute)
	return c.token, nil
}

// doRequest issues a request against KIS with the standard headers.
// trID selects the transaction. query is appended for GET; payload for POST.
func (c *Client) doRequest(ctx context.Context, method, path, trID string, query url.Values, payload any, out any) error {
	if c == nil {
		return fmt.Errorf("kis client 未初始化")
	}
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}
	rel := &url.URL{Path: path}
	endpoint := c.baseURL.ResolveReference(rel)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("序列化请求失败: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("构造请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("authorization", "Bearer "+token)
	req.Header.Set("appkey", c.appKey)
	req.Header.Set("appsecret", c.appSecret)
	req.Header.Set("tr_id", trID)
	req.Header.Set("custtype", "P")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("调用 KIS 失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(data) == 0 {
			return fmt.Errorf("KIS 返回错误: %s", resp.Status)
		}
		logger.Debugf("[KIS] %s %s 오류 응답:\n%s", trID, path, jsonutil.Pretty(string(data)))
		return fmt.Errorf("KIS 返回错误(%s): %s", resp.Status, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("解析 KIS 响应失败: %w", err)
	}
	return nil
}
