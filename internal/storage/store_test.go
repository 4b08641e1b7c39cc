package storage

import (
	"context"
	"math"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "jongga.db"))
	if err != nil {
		t.Fatalf("저장소 오픈 실패: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTrade(symbol string) TradeRecord {
	return TradeRecord{
		Symbol:        symbol,
		Name:          "테스트종목",
		Theme:         "2차전지",
		EntryDate:     "2026-03-02",
		EntryTime:     "15:18:00",
		EntryPrice:    75500,
		Quantity:      10,
		WeightPct:     5.0,
		Phase2Score:   42,
		Phase3Score:   35,
		VPatternScore: 70,
		EnsembleScore: 64.5,
		Logic1Tow:     60,
		Logic2V:       70,
		Logic3Moc:     55,
		Logic4News:    62,
	}
}

func TestTradeRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.InsertTrade(ctx, sampleTrade("005930"))
	if err != nil {
		t.Fatalf("삽입 실패: %v", err)
	}
	if id == "" {
		t.Fatal("트레이드 ID가 비어 있음")
	}

	open, err := s.OpenTrades(ctx)
	if err != nil {
		t.Fatalf("미청산 조회 실패: %v", err)
	}
	if len(open) != 1 || open[0].ID != id || open[0].Closed {
		t.Fatalf("미청산 거래 불일치: %+v", open)
	}
	if open[0].VPatternScore != 70 || open[0].EnsembleScore != 64.5 {
		t.Fatalf("점수 필드 왕복 불일치: %+v", open[0])
	}

	err = s.UpdateTradeExit(ctx, id, ExitInfo{
		ExitDate:   "2026-03-03",
		ExitTime:   "09:01:00",
		ExitPrice:  77500,
		Scenario:   "GAP_UP_SUCCESS",
		Reason:     "갭상승 목표 도달",
		Pnl:        20000,
		PnlPercent: 2.65,
	})
	if err != nil {
		t.Fatalf("청산 업데이트 실패: %v", err)
	}

	got, ok, err := s.Trade(ctx, id)
	if err != nil || !ok {
		t.Fatalf("단건 조회 실패: ok=%v err=%v", ok, err)
	}
	if !got.Closed || got.ExitScenario != "GAP_UP_SUCCESS" || got.ExitPrice != 77500 {
		t.Fatalf("청산 왕복 불일치: %+v", got)
	}

	open, err = s.OpenTrades(ctx)
	if err != nil {
		t.Fatalf("미청산 재조회 실패: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("청산 후에도 미청산으로 남음: %d건", len(open))
	}
}

func TestUpdateTradeExitUnknownID(t *testing.T) {
	s := openTestStore(t)
	if err := s.UpdateTradeExit(context.Background(), "없는-아이디", ExitInfo{}); err == nil {
		t.Fatal("없는 ID 업데이트가 성공 처리됨")
	}
}

func TestTradeStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// 승 2건(+3%, +1%), 패 2건(-2%, 0%)
	pnls := []float64{3.0, 1.0, -2.0, 0.0}
	for i, p := range pnls {
		rec := sampleTrade("00000" + string(rune('1'+i)))
		id, err := s.InsertTrade(ctx, rec)
		if err != nil {
			t.Fatalf("삽입 실패: %v", err)
		}
		err = s.UpdateTradeExit(ctx, id, ExitInfo{
			ExitDate: "2026-03-03", ExitTime: "09:05:00",
			ExitPrice: rec.EntryPrice * (1 + p/100), PnlPercent: p,
		})
		if err != nil {
			t.Fatalf("청산 실패: %v", err)
		}
	}
	// 미청산 거래는 통계에서 제외
	if _, err := s.InsertTrade(ctx, sampleTrade("999999")); err != nil {
		t.Fatalf("삽입 실패: %v", err)
	}

	stats, err := s.TradeStats(ctx, 20)
	if err != nil {
		t.Fatalf("통계 실패: %v", err)
	}
	if stats.TotalTrades != 4 {
		t.Fatalf("청산 거래 수 = %d, 기대 4", stats.TotalTrades)
	}
	if math.Abs(stats.WinRate-0.5) > 1e-9 {
		t.Fatalf("승률 = %.4f, 기대 0.5", stats.WinRate)
	}
	if math.Abs(stats.AvgWinPct-2.0) > 1e-9 {
		t.Fatalf("평균 수익률 = %.4f, 기대 2.0", stats.AvgWinPct)
	}
	if math.Abs(stats.AvgLossPct-(-1.0)) > 1e-9 {
		t.Fatalf("평균 손실률 = %.4f, 기대 -1.0", stats.AvgLossPct)
	}
}

func TestTradeStatsEmpty(t *testing.T) {
	s := openTestStore(t)
	stats, err := s.TradeStats(context.Background(), 20)
	if err != nil {
		t.Fatalf("통계 실패: %v", err)
	}
	if stats.TotalTrades != 0 || stats.WinRate != 0 {
		t.Fatalf("빈 저장소 통계 불일치: %+v", stats)
	}
}
