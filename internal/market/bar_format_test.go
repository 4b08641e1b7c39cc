package market

import (
	"strings"
	"testing"
)

func TestMinuteBarsSummary(t *testing.T) {
	bars := MinuteBars{
		{Time: "151600", Open: 75000, High: 75100, Low: 74900, Close: 75050, Volume: 1000},
		{Time: "151700", Open: 75050, High: 75600, Low: 75000, Close: 75500, Volume: 3000},
	}
	s := bars.Summary()
	for _, want := range []string{"현재가 75500원", "(+0.67%/2분)", "구간 74900–75600", "x1.5"} {
		if !strings.Contains(s, want) {
			t.Fatalf("요약에 %q 누락: %s", want, s)
		}
	}

	if got := MinuteBars(nil).Summary(); got != "" {
		t.Fatalf("빈 분봉 요약 = %q", got)
	}
}

func TestMinuteBarTimeString(t *testing.T) {
	if got := (MinuteBar{Time: "151630"}).TimeString(); got != "15:16" {
		t.Fatalf("TimeString = %s", got)
	}
	if got := (MinuteBar{Time: ""}).TimeString(); got != "-" {
		t.Fatalf("TimeString 공백 = %s", got)
	}
}
