package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"TrendTrader/internal/model"
)

// SQLiteStore persists price history, generated signals, and backtest
// results to a SQLite database.
type SQLiteStore struct {
	db       *sql.DB
	mu       sync.Mutex
	strategy string
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
// strategyName is stamped on every signal row.
func NewSQLiteStore(dbPath, strategyName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while a scan writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, strategy: strategyName}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_data (
			symbol         TEXT NOT NULL,
			time           INTEGER NOT NULL,
			open           REAL NOT NULL,
			high           REAL NOT NULL,
			low            REAL NOT NULL,
			close          REAL NOT NULL,
			adjusted_close REAL,
			volume         REAL,
			is_etf         INTEGER NOT NULL DEFAULT 0,
			country        TEXT,
			PRIMARY KEY (symbol, time)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_symbol_time ON price_data(symbol, time)`,

		`CREATE TABLE IF NOT EXISTS trading_signals (
			signal_id       TEXT PRIMARY KEY,
			symbol          TEXT NOT NULL,
			time            INTEGER NOT NULL,
			signal_type     TEXT NOT NULL CHECK (signal_type IN ('BUY','SELL','HOLD')),
			signal_strength REAL,
			price           REAL,
			volume          REAL,
			strategy_name   TEXT,
			rationale       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_symbol_time ON trading_signals(symbol, time)`,

		`CREATE TABLE IF NOT EXISTS backtest_results (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			strategy_name     TEXT NOT NULL,
			symbol            TEXT NOT NULL,
			start_date        INTEGER NOT NULL,
			end_date          INTEGER NOT NULL,
			total_return      REAL,
			annualized_return REAL,
			sharpe_ratio      REAL,
			max_drawdown      REAL,
			win_rate          REAL,
			parameters        TEXT,
			execution_time    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_strategy ON backtest_results(strategy_name, symbol)`,

		`CREATE TABLE IF NOT EXISTS etf_sectors (
			symbol TEXT PRIMARY KEY,
			sector TEXT
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// SaveBars upserts price history; re-ingesting a day replaces the old row.
func (s *SQLiteStore) SaveBars(bars []model.PriceBar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO price_data
		(symbol, time, open, high, low, close, adjusted_close, volume, is_etf, country)
		VALUES (?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.Exec(b.Symbol, b.Time.Unix(), b.Open, b.High, b.Low,
			b.Close, b.AdjClose, b.Volume, boolToInt(b.IsETF), b.Country); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert bar %s@%s: %w", b.Symbol, b.Time.Format("2006-01-02"), err)
		}
	}
	return tx.Commit()
}

// LoadBars returns up to limit most recent bars for a symbol, oldest first.
// limit <= 0 loads the entire history.
func (s *SQLiteStore) LoadBars(symbol string, limit int) ([]model.PriceBar, error) {
	query := `SELECT symbol, time, open, high, low, close, adjusted_close, volume, is_etf, country
		FROM price_data WHERE symbol = ? ORDER BY time DESC`
	args := []any{symbol}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bars, err := scanBars(rows)
	if err != nil {
		return nil, err
	}
	// rows came newest-first; reverse into chronological order
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}

// LoadBarsRange returns bars for [from, to] in chronological order.
func (s *SQLiteStore) LoadBarsRange(symbol string, from, to time.Time) ([]model.PriceBar, error) {
	rows, err := s.db.Query(`SELECT symbol, time, open, high, low, close, adjusted_close, volume, is_etf, country
		FROM price_data WHERE symbol = ? AND time >= ? AND time <= ? ORDER BY time ASC`,
		symbol, from.Unix(), to.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBars(rows)
}

func scanBars(rows *sql.Rows) ([]model.PriceBar, error) {
	var bars []model.PriceBar
	for rows.Next() {
		var b model.PriceBar
		var ts int64
		var adjClose, volume sql.NullFloat64
		var isETF int
		var country sql.NullString
		if err := rows.Scan(&b.Symbol, &ts, &b.Open, &b.High, &b.Low, &b.Close,
			&adjClose, &volume, &isETF, &country); err != nil {
			return nil, err
		}
		b.Time = time.Unix(ts, 0).UTC()
		b.AdjClose = adjClose.Float64
		b.Volume = volume.Float64
		b.IsETF = isETF != 0
		b.Country = country.String
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// ListETFSymbols returns the scan universe from the etf_sectors reference
// table. The table is seeded externally and never mutated here.
func (s *SQLiteStore) ListETFSymbols() ([]string, error) {
	rows, err := s.db.Query(`SELECT symbol FROM etf_sectors ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

// SaveSignal records a generated signal under a fresh UUID. The storage enum
// only distinguishes BUY/SELL/HOLD; the fine-grained type travels in the
// rationale text.
func (s *SQLiteStore) SaveSignal(sig *model.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO trading_signals
		(signal_id, symbol, time, signal_type, signal_strength, price, volume, strategy_name, rationale)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		uuid.NewString(), sig.Symbol, sig.Time.Unix(), sig.Type.CoarseType(),
		sig.Strength, sig.Price, sig.Volume, s.strategy, sig.Rationale,
	)
	return err
}

// SaveBacktestResult stores the summary row; full risk parameters are kept as
// a JSON blob so runs stay reproducible.
func (s *SQLiteStore) SaveBacktestResult(res *model.BacktestResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	params, err := json.Marshal(res.Parameters)
	if err != nil {
		return fmt.Errorf("marshal parameters: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO backtest_results
		(strategy_name, symbol, start_date, end_date, total_return, annualized_return,
		 sharpe_ratio, max_drawdown, win_rate, parameters, execution_time)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		res.StrategyName, res.Symbol, res.StartDate.Unix(), res.EndDate.Unix(),
		res.TotalReturn, res.AnnualizedReturn, res.SharpeRatio, res.MaxDrawdown,
		res.WinRate, string(params), time.Now().Unix(),
	)
	return err
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
