package risk

import (
	"fmt"

	"TrendTrader/internal/config"
	"TrendTrader/internal/model"
)

// TradeStats summarizes realized trade history for the Kelly model.
type TradeStats struct {
	Trades  int
	WinRate float64 // fraction of winners
	AvgWin  float64 // mean positive pnl
	AvgLoss float64 // mean |negative pnl|
}

// Sizer converts an entry decision into a position size in units. Two models
// are supported, selected by configuration: risk-based (risk amount divided by
// per-unit stop distance) and Kelly-capped.
type Sizer struct {
	model          string
	riskPerTrade   float64
	kellyCap       float64
	maxPositionPct float64
}

// NewSizer builds a sizer from validated configuration.
func NewSizer(cfg *config.Config) *Sizer {
	return &Sizer{
		model:          cfg.Risk.SizingModel,
		riskPerTrade:   cfg.Risk.RiskPerTrade,
		kellyCap:       cfg.Risk.KellyCap,
		maxPositionPct: cfg.Risk.MaxPositionPct,
	}
}

// Size returns the number of units to buy. stats may be nil for the
// risk-based model; the Kelly model fails with ErrInsufficientHistory when no
// realized statistics exist yet.
func (s *Sizer) Size(equity, entry, stop float64, stats *TradeStats) (float64, error) {
	if s.model == config.SizingKelly {
		f, err := kellyFraction(stats, s.kellyCap)
		if err != nil {
			return 0, err
		}
		return s.cap(equity, entry, equity*f/entry), nil
	}
	return s.RiskBasedSize(equity, entry, stop)
}

// RiskBasedSize applies the risk-based rule regardless of the configured
// model. The backtester uses it to bootstrap a Kelly run before any trade
// statistics exist.
func (s *Sizer) RiskBasedSize(equity, entry, stop float64) (float64, error) {
	dist := entry - stop
	if dist <= 0 {
		return 0, fmt.Errorf("stop %.4f not below entry %.4f", stop, entry)
	}
	return s.cap(equity, entry, equity*s.riskPerTrade/dist), nil
}

func (s *Sizer) cap(equity, entry, size float64) float64 {
	if maxUnits := equity * s.maxPositionPct / entry; size > maxUnits {
		size = maxUnits
	}
	if size < 0 {
		size = 0
	}
	return size
}

// kellyFraction is (winRate*avgWin - (1-winRate)*avgLoss) / avgWin, clamped
// to [0, cap].
func kellyFraction(stats *TradeStats, cap float64) (float64, error) {
	if stats == nil || stats.Trades == 0 || stats.AvgWin <= 0 {
		return 0, fmt.Errorf("%w: kelly sizing needs realized win/loss statistics", model.ErrInsufficientHistory)
	}
	f := (stats.WinRate*stats.AvgWin - (1-stats.WinRate)*stats.AvgLoss) / stats.AvgWin
	if f < 0 {
		f = 0
	}
	if f > cap {
		f = cap
	}
	return f, nil
}
