package exits

import (
	"testing"
	"time"

	"jongga/internal/market"
)

func at901() time.Time {
	return time.Date(2026, 3, 3, 9, 1, 0, 0, time.Local)
}

// 진입 75,000 → 시초가 77,000(+2.67%) → 현재 77,500: 갭 상승 유지
func TestResolveGapUpSuccess(t *testing.T) {
	d := Resolve(75000, 77000, 77500, at901())
	if d.Scenario != GapUpSuccess {
		t.Fatalf("Scenario = %s, want GAP_UP_SUCCESS", d.Scenario)
	}
	if d.SellRatio != 0.5 {
		t.Errorf("SellRatio = %.1f, want 0.5", d.SellRatio)
	}
}

func TestResolveScenarioTable(t *testing.T) {
	cases := []struct {
		name            string
		entry, open, cur float64
		scenario        Scenario
		ratio           float64
	}{
		{"강한 갭상승 유지", 10000, 10500, 10600, GapUpStrong, 0.5},
		{"갭상승 시초가 붕괴", 10000, 10300, 10100, GapUpWeak, 1.0},
		{"강한 갭도 붕괴면 전량", 10000, 10500, 10200, GapUpWeak, 1.0},
		{"갭하락", 10000, 9880, 9900, GapDown, 1.0},
		{"보합 시초가 위", 10000, 10050, 10080, FlatUp, 0.0},
		{"보합 시초가 아래", 10000, 10050, 10000, FlatDown, 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Resolve(tc.entry, tc.open, tc.cur, at901())
			if d.Scenario != tc.scenario {
				t.Errorf("Scenario = %s, want %s (갭 %.2f%%)", d.Scenario, tc.scenario, d.GapPct)
			}
			if d.SellRatio != tc.ratio {
				t.Errorf("SellRatio = %.1f, want %.1f", d.SellRatio, tc.ratio)
			}
		})
	}
}

func TestSellQuantity(t *testing.T) {
	half := Decision{SellRatio: 0.5}
	if got := half.SellQuantity(101); got != 50 {
		t.Errorf("SellQuantity(101) = %d, want 50", got)
	}
	full := Decision{SellRatio: 1.0}
	if got := full.SellQuantity(33); got != 33 {
		t.Errorf("전량 매도 = %d, want 33", got)
	}
	hold := Decision{SellRatio: 0}
	if got := hold.SellQuantity(33); got != 0 {
		t.Errorf("보유인데 매도 %d주", got)
	}
}

func minuteBars(highs ...float64) []market.MinuteBar {
	bars := make([]market.MinuteBar, len(highs))
	for i, h := range highs {
		bars[i] = market.MinuteBar{High: h, Close: h - 50}
	}
	return bars
}

func TestThreeMinuteRule(t *testing.T) {
	// 3분 내 고가가 시초가를 넘으면 보유
	sig := ThreeMinuteRule("005930", 77000, minuteBars(76900, 77200, 77100))
	if sig.Sell {
		t.Error("시초가 돌파인데 매도 신호")
	}
	// 3분 내 미돌파면 시간 손절
	sig = ThreeMinuteRule("005930", 77000, minuteBars(76900, 76800, 76950))
	if !sig.Sell {
		t.Error("시초가 미돌파인데 보유 신호")
	}
	if sig.Reason != "시초가 미돌파" {
		t.Errorf("사유 = %q", sig.Reason)
	}
	// 분봉 부족 시 안전하게 보유
	sig = ThreeMinuteRule("005930", 77000, minuteBars(76900))
	if sig.Sell {
		t.Error("데이터 부족인데 매도 신호")
	}
}

func TestEMATrail(t *testing.T) {
	// 30개 횡보 분봉: EMA ≈ 10000
	bars := make([]market.MinuteBar, 30)
	for i := range bars {
		bars[i] = market.MinuteBar{Close: 10000}
	}
	// -1.5% 이내면 지지
	if sig := EMATrail("005930", 9900, bars, -1.5); sig.Sell {
		t.Error("-1.0% 이격인데 매도 신호")
	}
	// -1.5% 초과 이탈이면 매도
	if sig := EMATrail("005930", 9800, bars, -1.5); !sig.Sell {
		t.Error("-2.0% 이탈인데 보유 신호")
	}
	// 데이터 부족이면 보유
	if sig := EMATrail("005930", 9000, bars[:10], -1.5); sig.Sell {
		t.Error("데이터 부족인데 매도 신호")
	}
}

func TestRule359(t *testing.T) {
	cases := []struct {
		sell, buy float64
		want      float64
	}{
		{20000, 10000, 0.5},
		{16000, 10000, 0.3},
		{12000, 10000, 0.0},
		{10000, 0, 1.0},
	}
	for _, tc := range cases {
		if got := Rule359(tc.sell, tc.buy); got != tc.want {
			t.Errorf("Rule359(%.0f, %.0f) = %.1f, want %.1f", tc.sell, tc.buy, got, tc.want)
		}
	}
}

func TestOvernightExit(t *testing.T) {
	if got := OvernightExit(4.5); got != 0.5 {
		t.Errorf("+4.5%% = %.1f, want 0.5", got)
	}
	if got := OvernightExit(-2.5); got != 0.3 {
		t.Errorf("-2.5%% = %.1f, want 0.3", got)
	}
	if got := OvernightExit(1.0); got != 0 {
		t.Errorf("+1.0%% = %.1f, want 0", got)
	}
}
