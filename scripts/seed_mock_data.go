package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jongga/internal/storage"
)

// Seed a SQLite database with mock trade history for local development.
// Usage: go run scripts/seed_mock_data.go [db_path]
// Default db_path: data/jongga.db
func main() {
	dbPath := "data/jongga.db"
	if len(os.Args) > 1 && strings.TrimSpace(os.Args[1]) != "" {
		dbPath = strings.TrimSpace(os.Args[1])
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		panic(err)
	}

	store, err := storage.NewStore(dbPath)
	if err != nil {
		panic(err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := seedTrades(ctx, store); err != nil {
		panic(err)
	}
	if err := seedRegimes(ctx, store); err != nil {
		panic(err)
	}

	fmt.Printf("✓ mock data seeded into %s\n", dbPath)
}

type seedTrade struct {
	rec  storage.TradeRecord
	exit *storage.ExitInfo
}

func seedTrades(ctx context.Context, store *storage.Store) error {
	now := time.Now()
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format("2006-01-02") }

	samples := []seedTrade{
		{
			rec: storage.TradeRecord{
				Symbol: "247540", Name: "에코프로비엠", Theme: "2차전지",
				EntryDate: day(-3), EntryTime: "15:19:02",
				EntryPrice: 75500, Quantity: 13, WeightPct: 0.10,
				Phase2Score: 72, Phase3Score: 24, VPatternScore: 70,
				EnsembleScore: 63.2,
				Logic1Tow:     63, Logic2V: 70, Logic3Moc: 43, Logic4News: 78,
				Notes: "수주 모멘텀; PRIORITY 미달 STANDARD 진입",
			},
			exit: &storage.ExitInfo{
				ExitDate: day(-2), ExitTime: "09:01:30",
				ExitPrice: 77500, Scenario: "GAP_UP_SUCCESS", Reason: "갭상승 후 시가 상회, 절반 청산",
				Pnl: 26000, PnlPercent: 2.65,
			},
		},
		{
			rec: storage.TradeRecord{
				Symbol: "005930", Name: "삼성전자", Theme: "반도체",
				EntryDate: day(-2), EntryTime: "15:18:45",
				EntryPrice: 81200, Quantity: 12, WeightPct: 0.10,
				Phase2Score: 55, Phase3Score: 18, VPatternScore: 60,
				EnsembleScore: 57.8,
				Logic1Tow:     58, Logic2V: 60, Logic3Moc: 38, Logic4News: 65,
			},
			exit: &storage.ExitInfo{
				ExitDate: day(-1), ExitTime: "09:03:10",
				ExitPrice: 80400, Scenario: "STOP_LOSS", Reason: "TIME_STOP_3MIN: 09:03 시가 하회",
				Pnl: -9600, PnlPercent: -0.99,
			},
		},
		{
			rec: storage.TradeRecord{
				Symbol: "042700", Name: "한미반도체", Theme: "HBM",
				EntryDate: day(0), EntryTime: "15:17:58",
				EntryPrice: 132000, Quantity: 7, WeightPct: 0.094,
				Phase2Score: 81, Phase3Score: 27, VPatternScore: 90,
				EnsembleScore: 74.1,
				Logic1Tow:     70, Logic2V: 90, Logic3Moc: 55, Logic4News: 72,
				Notes: "PRIORITY 등급",
			},
		},
	}

	for _, s := range samples {
		id, err := store.InsertTrade(ctx, s.rec)
		if err != nil {
			return err
		}
		if s.exit != nil {
			if err := store.UpdateTradeExit(ctx, id, *s.exit); err != nil {
				return err
			}
		}
	}
	return nil
}

func seedRegimes(ctx context.Context, store *storage.Store) error {
	if err := store.LogRegime(ctx, "NORMAL", 0.4, 0.7, 0.1, 15.2, "장 시작 기본 상태"); err != nil {
		return err
	}
	return store.LogRegime(ctx, "CAUTION", -1.2, -0.8, -0.5, 21.0, "코스피 -1% 하회")
}
