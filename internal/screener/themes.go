package screener

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

// ThemeProvider 테마 키워드 사전 출처
type ThemeProvider interface {
	Themes(ctx context.Context) (map[string][]string, error)
	Name() string
}

// 기본 구현：내장 사전 + 추가 사전 병합
type StaticThemeProvider struct{ extra map[string][]string }

func NewStaticThemeProvider(extra map[string][]string) *StaticThemeProvider {
	return &StaticThemeProvider{extra: extra}
}
func (p *StaticThemeProvider) Name() string { return "static" }
func (p *StaticThemeProvider) Themes(ctx context.Context) (map[string][]string, error) {
	out := make(map[string][]string, len(sectorKeywords)+len(p.extra))
	for theme, kws := range sectorKeywords {
		out[theme] = append([]string(nil), kws...)
	}
	for theme, kws := range p.extra {
		theme = strings.TrimSpace(theme)
		if theme == "" {
			continue
		}
		seen := map[string]struct{}{}
		for _, kw := range out[theme] {
			seen[kw] = struct{}{}
		}
		for _, kw := range kws {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			out[theme] = append(out[theme], kw)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("테마 사전이 비어 있음")
	}
	return out, nil
}

// HTTP 구현：커스텀 API에서 {"테마":["키워드",...]} 형태의 사전을 받아온다
type HTTPThemeProvider struct {
	URL    string
	Client *http.Client
}

func NewHTTPThemeProvider(url string) *HTTPThemeProvider {
	return &HTTPThemeProvider{URL: url, Client: &http.Client{Timeout: 10 * time.Second}}
}
func (p *HTTPThemeProvider) Name() string { return "http" }
func (p *HTTPThemeProvider) Themes(ctx context.Context) (map[string][]string, error) {
	if p.URL == "" {
		return nil, errors.New("universe.theme_api_url 미설정")
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, errors.New("http 상태 이상")
	}
	var raw map[string][]string
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	return NewStaticThemeProvider(raw).Themes(ctx)
}
