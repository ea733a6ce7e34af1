package store

import (
	"time"

	"TrendTrader/internal/model"
)

// Store abstracts signal and result persistence plus price-history access.
// The sqlite implementation is the real one; Noop lets the backtester run
// against in-memory bars without a database on disk.
type Store interface {
	SaveBars(bars []model.PriceBar) error
	LoadBars(symbol string, limit int) ([]model.PriceBar, error)
	LoadBarsRange(symbol string, from, to time.Time) ([]model.PriceBar, error)
	ListETFSymbols() ([]string, error)

	SaveSignal(sig *model.Signal) error
	SaveBacktestResult(res *model.BacktestResult) error

	Close() error
}

// Noop discards writes and returns empty reads.
type Noop struct{}

func (Noop) SaveBars([]model.PriceBar) error                { return nil }
func (Noop) LoadBars(string, int) ([]model.PriceBar, error) { return nil, nil }
func (Noop) LoadBarsRange(string, time.Time, time.Time) ([]model.PriceBar, error) {
	return nil, nil
}
func (Noop) ListETFSymbols() ([]string, error)              { return nil, nil }
func (Noop) SaveSignal(*model.Signal) error                 { return nil }
func (Noop) SaveBacktestResult(*model.BacktestResult) error { return nil }
func (Noop) Close() error                                   { return nil }
