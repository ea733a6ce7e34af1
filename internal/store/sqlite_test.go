package store

import (
	"path/filepath"
	"testing"
	"time"

	"TrendTrader/internal/model"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), "trend_following")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedBars(symbol string, n int) []model.PriceBar {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, n)
	for i := range bars {
		bars[i] = model.PriceBar{
			Symbol:   symbol,
			Time:     t0.AddDate(0, 0, i),
			Open:     100 + float64(i),
			High:     101 + float64(i),
			Low:      99 + float64(i),
			Close:    100.5 + float64(i),
			AdjClose: 100.4 + float64(i),
			Volume:   1000,
			IsETF:    true,
			Country:  "US",
		}
	}
	return bars
}

func TestBarsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveBars(seedBars("SPY", 10)); err != nil {
		t.Fatal(err)
	}

	bars, err := s.LoadBars("SPY", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 5 {
		t.Fatalf("expected 5 bars, got %d", len(bars))
	}
	// limited load returns the most recent bars, oldest first
	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			t.Fatal("bars not in chronological order")
		}
	}
	last := bars[len(bars)-1]
	if last.Close != 109.5 || last.AdjClose != 109.4 {
		t.Errorf("last bar mismatch: close %f adj %f", last.Close, last.AdjClose)
	}
	if !last.IsETF || last.Country != "US" {
		t.Errorf("flags lost: etf=%v country=%q", last.IsETF, last.Country)
	}
}

func TestSaveBarsUpserts(t *testing.T) {
	s := openTestStore(t)
	bars := seedBars("SPY", 3)
	if err := s.SaveBars(bars); err != nil {
		t.Fatal(err)
	}

	bars[1].Close = 555
	if err := s.SaveBars(bars); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.LoadBars("SPY", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 3 {
		t.Fatalf("re-ingest should not duplicate rows: got %d", len(loaded))
	}
	if loaded[1].Close != 555 {
		t.Errorf("re-ingest should replace the row: close %f", loaded[1].Close)
	}
}

func TestLoadBarsRange(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveBars(seedBars("SPY", 10)); err != nil {
		t.Fatal(err)
	}

	from := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
	bars, err := s.LoadBarsRange("SPY", from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 4 {
		t.Fatalf("expected 4 bars in range, got %d", len(bars))
	}
	if !bars[0].Time.Equal(from) {
		t.Errorf("range start: got %s", bars[0].Time)
	}
}

func TestListETFSymbols(t *testing.T) {
	s := openTestStore(t)
	for _, row := range [][2]string{{"XLK", "Technology"}, {"SPY", "Broad Market"}} {
		if _, err := s.db.Exec(`INSERT INTO etf_sectors (symbol, sector) VALUES (?, ?)`, row[0], row[1]); err != nil {
			t.Fatal(err)
		}
	}
	// price_data rows never leak into the universe
	if err := s.SaveBars(seedBars("AAPL", 2)); err != nil {
		t.Fatal(err)
	}

	symbols, err := s.ListETFSymbols()
	if err != nil {
		t.Fatal(err)
	}
	if len(symbols) != 2 || symbols[0] != "SPY" || symbols[1] != "XLK" {
		t.Errorf("expected [SPY XLK], got %v", symbols)
	}
}

func TestListETFSymbolsEmptyTable(t *testing.T) {
	s := openTestStore(t)
	symbols, err := s.ListETFSymbols()
	if err != nil {
		t.Fatal(err)
	}
	if len(symbols) != 0 {
		t.Errorf("expected empty universe, got %v", symbols)
	}
}

func TestSaveSignalAndResult(t *testing.T) {
	s := openTestStore(t)

	sig := &model.Signal{
		Symbol:    "SPY",
		Time:      time.Now().UTC(),
		Type:      model.SignalTrendFollowingBuy,
		Strength:  75,
		Price:     450.25,
		Volume:    1_000_000,
		Rationale: "trend_following_buy: breakout",
	}
	if err := s.SaveSignal(sig); err != nil {
		t.Fatal(err)
	}

	var coarse string
	if err := s.db.QueryRow(`SELECT signal_type FROM trading_signals WHERE symbol = 'SPY'`).Scan(&coarse); err != nil {
		t.Fatal(err)
	}
	if coarse != "BUY" {
		t.Errorf("fine-grained type should be stored coarse: got %q", coarse)
	}

	res := &model.BacktestResult{
		StrategyName: "trend_following",
		Symbol:       "SPY",
		StartDate:    time.Now().AddDate(-1, 0, 0),
		EndDate:      time.Now(),
		TotalReturn:  0.25,
		Parameters:   model.RiskParameters{RiskLevel: model.RiskModerate, StopLossATRMultiplier: 1.5},
	}
	if err := s.SaveBacktestResult(res); err != nil {
		t.Fatal(err)
	}

	var params string
	var executed int64
	if err := s.db.QueryRow(`SELECT parameters, execution_time FROM backtest_results WHERE symbol = 'SPY'`).Scan(&params, &executed); err != nil {
		t.Fatal(err)
	}
	if params == "" || params[0] != '{' {
		t.Errorf("parameters should be a JSON object, got %q", params)
	}
	if executed <= 0 {
		t.Errorf("execution_time should record when the run was stored, got %d", executed)
	}
}
