package intraday

import (
	"testing"
	"time"

	jgcfg "jongga/internal/config"
)

func patternConfig() jgcfg.PatternConfig {
	return jgcfg.PatternConfig{
		WindowStart:   "15:16:00",
		WindowEnd:     "15:19:30",
		ReboundPct:    0.005,
		ExecStrength:  100,
		StrongerExec:  120,
		OrderImbRatio: 1.5,
		VolumeSurgeX:  2.0,
	}
}

func at(hhmmss string) time.Time {
	t, err := time.Parse("15:04:05", hhmmss)
	if err != nil {
		panic(err)
	}
	return time.Date(2026, 3, 2, t.Hour(), t.Minute(), t.Second(), 0, time.Local)
}

// 실시간 모의 데이터: MUST 전부 통과 + 체결강도/호가잔량 보너스
func mockInput() PatternInput {
	return PatternInput{
		Price:        75500,
		LowSince1500: 75000,
		MA5:          75200,
		MA20:         75100,
		ExecStrength: 120,
		ExecPrev:     110,
		ProgramNet3m: 10000,
		SellOrderQty: 15000,
		BuyOrderQty:  10000,
	}
}

func TestDetectScore70(t *testing.T) {
	d, err := NewPatternDetector(patternConfig())
	if err != nil {
		t.Fatal(err)
	}
	res := d.Detect("005930", at("15:17:00"), mockInput())
	if !res.Passed {
		t.Fatalf("탈락: %s", res.FailedRung)
	}
	// 50(base) + 10(체결강도) + 10(호가잔량)
	if res.Score != 70 {
		t.Errorf("Score = %d, want 70", res.Score)
	}
}

// MUST 사다리는 단락 평가: 실패 단계명이 그대로 남는다
func TestDetectLadderShortCircuit(t *testing.T) {
	d, _ := NewPatternDetector(patternConfig())

	cases := []struct {
		name   string
		now    time.Time
		mutate func(*PatternInput)
		rung   string
	}{
		{"시간창 전", at("15:10:00"), func(in *PatternInput) {}, rungWindow},
		{"시간창 후", at("15:20:00"), func(in *PatternInput) {}, rungWindow},
		{"반등 미달", at("15:17:00"), func(in *PatternInput) { in.Price = 75200; in.LowSince1500 = 75000; in.MA5 = 75100 }, rungRebound},
		{"5평선 아래", at("15:17:00"), func(in *PatternInput) { in.MA5 = 76000 }, rungMA5},
		{"체결강도 미달", at("15:17:00"), func(in *PatternInput) { in.ExecStrength = 90 }, rungExec},
		{"체결강도 하락", at("15:17:00"), func(in *PatternInput) { in.ExecPrev = 130 }, rungExec},
		{"프로그램 순매도", at("15:17:00"), func(in *PatternInput) { in.ProgramNet3m = -500 }, rungProgram},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := mockInput()
			tc.mutate(&in)
			res := d.Detect("005930", tc.now, in)
			if res.Passed {
				t.Fatal("통과되면 안 됨")
			}
			if res.FailedRung != tc.rung {
				t.Errorf("FailedRung = %q, want %q", res.FailedRung, tc.rung)
			}
			if res.Score != 0 {
				t.Errorf("탈락 시 점수 %d, want 0", res.Score)
			}
		})
	}
}

func TestDetectAllBonusesCapped(t *testing.T) {
	d, _ := NewPatternDetector(patternConfig())
	in := mockInput()
	in.MA20Prev = 75000 // 20평선 상승 전환
	in.MinuteVolume = 5000
	in.AvgMinuteVol = 2000 // 거래량 급증
	in.MA20Support = true // 20평선 지지 반등

	res := d.Detect("005930", at("15:17:00"), in)
	if !res.Passed {
		t.Fatalf("탈락: %s", res.FailedRung)
	}
	if res.Score != 100 {
		t.Errorf("Score = %d, want 100 (상한)", res.Score)
	}
}

// 20평선 지지 반등 보너스: 저가가 20평선을 찍고 복귀한 종목은 +10,
// 현재가가 20평선 아래면 지지 신호가 있어도 가산하지 않는다
func TestDetectMA20SupportBonus(t *testing.T) {
	d, _ := NewPatternDetector(patternConfig())

	in := mockInput()
	in.MA20Support = true
	res := d.Detect("005930", at("15:17:00"), in)
	if res.Score != 80 {
		t.Errorf("Score = %d, want 80 (70 + 지지 반등)", res.Score)
	}

	in = mockInput()
	in.MA20Support = true
	in.MA20 = 76000 // 현재가 아래로 복귀하지 못한 경우
	res = d.Detect("005930", at("15:17:00"), in)
	if res.Score != 70 {
		t.Errorf("Score = %d, want 70 (가산 없음)", res.Score)
	}
}

func TestWindowBoundariesInclusive(t *testing.T) {
	d, _ := NewPatternDetector(patternConfig())
	if !d.InWindow(at("15:16:00")) {
		t.Error("시작 경계가 제외됨")
	}
	if !d.InWindow(at("15:19:30")) {
		t.Error("종료 경계가 제외됨")
	}
	if d.InWindow(at("15:19:31")) {
		t.Error("종료 직후가 포함됨")
	}
}
