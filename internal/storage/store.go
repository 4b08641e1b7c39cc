package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"jongga/internal/logger"
	"jongga/internal/position"
)

// 中文说明：
// SQLite 持久层。매매 기록(trade_history)과 거시 레짐 로그를 관리한다。
// 미청산 거래는 exit_price IS NULL 행으로 표현하고，켈리 통계는
// 청산 완료 행만 집계한다。

const schemaSQL = `
CREATE TABLE IF NOT EXISTS trade_history (
    id                 TEXT PRIMARY KEY,
    symbol             TEXT NOT NULL,
    name               TEXT,
    theme              TEXT,

    entry_date         TEXT NOT NULL,
    entry_time         TEXT NOT NULL,
    entry_price        REAL NOT NULL,
    quantity           INTEGER NOT NULL,
    weight_pct         REAL,

    exit_date          TEXT,
    exit_time          TEXT,
    exit_price         REAL,
    exit_scenario      TEXT,
    exit_reason        TEXT,

    pnl                REAL,
    pnl_percent        REAL,

    phase2_score       INTEGER,
    phase3_score       INTEGER,
    v_pattern_score    INTEGER,
    ensemble_score     REAL,
    logic1_tow_score   REAL,
    logic2_v_score     REAL,
    logic3_moc_score   REAL,
    logic4_news_score  REAL,

    notes              TEXT,
    created_at         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_trade_history_symbol ON trade_history(symbol);
CREATE INDEX IF NOT EXISTS idx_trade_history_entry ON trade_history(entry_date);

CREATE TABLE IF NOT EXISTS macro_regime_log (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp          TEXT NOT NULL,
    regime             TEXT NOT NULL,
    kospi_change       REAL,
    kosdaq_change      REAL,
    us_futures_change  REAL,
    vix                REAL,
    trigger_reason     TEXT,
    created_at         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// TradeRecord trade_history 한 행
type TradeRecord struct {
	ID         string
	Symbol     string
	Name       string
	Theme      string
	EntryDate  string // "2006-01-02"
	EntryTime  string // "15:04:05"
	EntryPrice float64
	Quantity   int64
	WeightPct  float64

	ExitDate     string
	ExitTime     string
	ExitPrice    float64
	ExitScenario string
	ExitReason   string
	Pnl          float64
	PnlPercent   float64
	Closed       bool

	Phase2Score   int
	Phase3Score   int
	VPatternScore int
	EnsembleScore float64
	Logic1Tow     float64
	Logic2V       float64
	Logic3Moc     float64
	Logic4News    float64
	Notes         string
}

// ExitInfo 청산 업데이트 입력
type ExitInfo struct {
	ExitDate   string
	ExitTime   string
	ExitPrice  float64
	Scenario   string
	Reason     string
	Pnl        float64
	PnlPercent float64
}

// Store SQLite 매매 저장소
type Store struct {
	db *sql.DB
}

// NewStore 파일 경로로 저장소 오픈 및 스키마 초기화
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite 오픈 실패: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite PRAGMA 실패: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("스키마 초기화 실패: %w", err)
	}
	logger.Infof("[DB] 저장소 초기화 완료: %s", path)
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// InsertTrade 진입 기록 삽입，트레이드 ID 반환
func (s *Store) InsertTrade(ctx context.Context, rec TradeRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trade_history (
			id, symbol, name, theme,
			entry_date, entry_time, entry_price, quantity, weight_pct,
			phase2_score, phase3_score, v_pattern_score,
			ensemble_score, logic1_tow_score, logic2_v_score,
			logic3_moc_score, logic4_news_score, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Symbol, rec.Name, rec.Theme,
		rec.EntryDate, rec.EntryTime, rec.EntryPrice, rec.Quantity, rec.WeightPct,
		rec.Phase2Score, rec.Phase3Score, rec.VPatternScore,
		rec.EnsembleScore, rec.Logic1Tow, rec.Logic2V,
		rec.Logic3Moc, rec.Logic4News, rec.Notes,
	)
	if err != nil {
		return "", fmt.Errorf("매매 기록 삽입 실패: %w", err)
	}
	logger.Infof("[DB] 매매 기록 삽입: %s %s(%s)", rec.ID, rec.Name, rec.Symbol)
	return rec.ID, nil
}

// UpdateTradeExit 청산 정보 업데이트
func (s *Store) UpdateTradeExit(ctx context.Context, id string, info ExitInfo) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE trade_history SET
			exit_date = ?, exit_time = ?, exit_price = ?,
			exit_scenario = ?, exit_reason = ?, pnl = ?, pnl_percent = ?
		WHERE id = ?`,
		info.ExitDate, info.ExitTime, info.ExitPrice,
		info.Scenario, info.Reason, info.Pnl, info.PnlPercent, id,
	)
	if err != nil {
		return fmt.Errorf("청산 업데이트 실패: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("트레이드 없음: %s", id)
	}
	logger.Infof("[DB] 청산 업데이트: %s (%s)", id, info.Scenario)
	return nil
}

func scanTrade(rows *sql.Rows) (TradeRecord, error) {
	var rec TradeRecord
	var exitDate, exitTime, exitScenario, exitReason, theme, notes sql.NullString
	var exitPrice, pnl, pnlPct sql.NullFloat64
	err := rows.Scan(
		&rec.ID, &rec.Symbol, &rec.Name, &theme,
		&rec.EntryDate, &rec.EntryTime, &rec.EntryPrice, &rec.Quantity, &rec.WeightPct,
		&exitDate, &exitTime, &exitPrice, &exitScenario, &exitReason,
		&pnl, &pnlPct,
		&rec.Phase2Score, &rec.Phase3Score, &rec.VPatternScore,
		&rec.EnsembleScore, &rec.Logic1Tow, &rec.Logic2V,
		&rec.Logic3Moc, &rec.Logic4News, &notes,
	)
	if err != nil {
		return rec, err
	}
	rec.Theme = theme.String
	rec.Notes = notes.String
	rec.ExitDate = exitDate.String
	rec.ExitTime = exitTime.String
	rec.ExitScenario = exitScenario.String
	rec.ExitReason = exitReason.String
	rec.ExitPrice = exitPrice.Float64
	rec.Pnl = pnl.Float64
	rec.PnlPercent = pnlPct.Float64
	rec.Closed = exitPrice.Valid
	return rec, nil
}

const tradeColumns = `
	id, symbol, name, theme,
	entry_date, entry_time, entry_price, quantity, weight_pct,
	exit_date, exit_time, exit_price, exit_scenario, exit_reason,
	pnl, pnl_percent,
	phase2_score, phase3_score, v_pattern_score,
	ensemble_score, logic1_tow_score, logic2_v_score,
	logic3_moc_score, logic4_news_score, notes`

func (s *Store) queryTrades(ctx context.Context, where string, args ...any) ([]TradeRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT"+tradeColumns+" FROM trade_history "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("매매 기록 조회 실패: %w", err)
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RecentTrades 최근 매매 기록（최신 우선）
func (s *Store) RecentTrades(ctx context.Context, limit int) ([]TradeRecord, error) {
	return s.queryTrades(ctx, "ORDER BY created_at DESC, id DESC LIMIT ?", limit)
}

// OpenTrades 미청산 거래
func (s *Store) OpenTrades(ctx context.Context) ([]TradeRecord, error) {
	return s.queryTrades(ctx, "WHERE exit_price IS NULL ORDER BY created_at DESC")
}

// Trade 단건 조회
func (s *Store) Trade(ctx context.Context, id string) (TradeRecord, bool, error) {
	recs, err := s.queryTrades(ctx, "WHERE id = ?", id)
	if err != nil {
		return TradeRecord{}, false, err
	}
	if len(recs) == 0 {
		return TradeRecord{}, false, nil
	}
	return recs[0], true, nil
}

// TradeStats 최근 N건 청산 거래 통계（켈리 입력）
func (s *Store) TradeStats(ctx context.Context, recentN int) (position.TradeStats, error) {
	recs, err := s.queryTrades(ctx,
		"WHERE exit_price IS NOT NULL ORDER BY created_at DESC, id DESC LIMIT ?", recentN)
	if err != nil {
		return position.TradeStats{}, err
	}

	var stats position.TradeStats
	stats.TotalTrades = len(recs)
	if len(recs) == 0 {
		return stats, nil
	}
	var winSum, lossSum float64
	var wins, losses int
	for _, r := range recs {
		if r.PnlPercent > 0 {
			wins++
			winSum += r.PnlPercent
		} else {
			losses++
			lossSum += r.PnlPercent
		}
	}
	stats.WinRate = float64(wins) / float64(len(recs))
	if wins > 0 {
		stats.AvgWinPct = winSum / float64(wins)
	}
	if losses > 0 {
		stats.AvgLossPct = lossSum / float64(losses)
	}
	return stats, nil
}

// LogRegime 거시 레짐 전환 기록
func (s *Store) LogRegime(ctx context.Context, regime string, kospi, kosdaq, usFutures, vix float64, reason string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO macro_regime_log (timestamp, regime, kospi_change, kosdaq_change, us_futures_change, vix, trigger_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		time.Now().Format(time.RFC3339), regime, kospi, kosdaq, usFutures, vix, reason,
	)
	if err != nil {
		return fmt.Errorf("레짐 로그 실패: %w", err)
	}
	return nil
}
