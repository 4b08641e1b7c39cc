package store

import (
	"context"
	"testing"

	"jongga/internal/market"
)

func mb(t string, close float64) market.MinuteBar {
	return market.MinuteBar{Time: t, Close: close}
}

func TestMemoryBarStoreMergesOverlap(t *testing.T) {
	s := NewMemoryBarStore()
	ctx := context.Background()

	if err := s.Put(ctx, "005930", []market.MinuteBar{
		mb("090100", 100), mb("090200", 101), mb("090300", 102),
	}, 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	// 다음 틱：앞부분 겹치고 막봉은 갱신된 값
	if err := s.Put(ctx, "005930", []market.MinuteBar{
		mb("090200", 101), mb("090300", 103), mb("090400", 104),
	}, 0); err != nil {
		t.Fatalf("Put: %v", err)
	}

	bars, err := s.Get(ctx, "005930")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(bars) != 4 {
		t.Fatalf("len = %d, want 4", len(bars))
	}
	if bars[2].Close != 103 {
		t.Fatalf("겹친 막봉이 갱신되지 않음: %v", bars[2].Close)
	}
	if bars[3].Time != "090400" {
		t.Fatalf("신규 분봉 누락: %s", bars[3].Time)
	}
}

func TestMemoryBarStoreTrimAndReset(t *testing.T) {
	s := NewMemoryBarStore()
	ctx := context.Background()

	for _, bar := range []market.MinuteBar{mb("090100", 1), mb("090200", 2), mb("090300", 3)} {
		if err := s.Put(ctx, "000660", []market.MinuteBar{bar}, 2); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	bars, _ := s.Get(ctx, "000660")
	if len(bars) != 2 || bars[0].Time != "090200" {
		t.Fatalf("max 트리밍이 동작하지 않음: %v", bars)
	}

	s.Reset()
	if bars, _ := s.Get(ctx, "000660"); len(bars) != 0 {
		t.Fatalf("Reset 후에도 %d개 잔존", len(bars))
	}

	if err := s.Put(ctx, "", []market.MinuteBar{mb("090100", 1)}, 0); err == nil {
		t.Fatal("빈 symbol인데 에러 없음")
	}
}
