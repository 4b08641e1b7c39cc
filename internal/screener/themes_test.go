package screener

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStaticThemeProviderMergesExtra(t *testing.T) {
	p := NewStaticThemeProvider(map[string][]string{
		"로봇":   {"로봇", "레인보우로보틱스"},
		"반도체":  {"HBM", "반도체"}, // 중복 키워드는 한 번만
		"  ":   {"무시"},
		"2차전지": {""},
	})
	themes, err := p.Themes(context.Background())
	if err != nil {
		t.Fatalf("Themes: %v", err)
	}
	if _, ok := themes["로봇"]; !ok {
		t.Fatal("추가 테마가 병합되지 않음")
	}
	count := 0
	for _, kw := range themes["반도체"] {
		if kw == "반도체" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("중복 키워드 병합 실패: %d", count)
	}

	a := NewSectorAnalyzerWith(themes)
	if got := a.Classify("레인보우로보틱스"); got != "로봇" {
		t.Fatalf("Classify = %s, want 로봇", got)
	}
}

func TestHTTPThemeProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"우주항공":["우주","한화에어로"]}`))
	}))
	defer srv.Close()

	p := NewHTTPThemeProvider(srv.URL)
	themes, err := p.Themes(context.Background())
	if err != nil {
		t.Fatalf("Themes: %v", err)
	}
	if _, ok := themes["우주항공"]; !ok {
		t.Fatal("API 테마가 반영되지 않음")
	}
	if _, ok := themes["반도체"]; !ok {
		t.Fatal("내장 사전이 유지되지 않음")
	}
}

func TestHTTPThemeProviderErrors(t *testing.T) {
	if _, err := NewHTTPThemeProvider("").Themes(context.Background()); err == nil {
		t.Fatal("URL 미설정인데 에러 없음")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	if _, err := NewHTTPThemeProvider(srv.URL).Themes(context.Background()); err == nil {
		t.Fatal("5xx 응답인데 에러 없음")
	}
}
