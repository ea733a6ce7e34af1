package model

import "time"

// RiskLevel selects the stop-loss ATR multiplier family.
type RiskLevel string

const (
	RiskConservative RiskLevel = "conservative"
	RiskModerate     RiskLevel = "moderate"
	RiskAggressive   RiskLevel = "aggressive"
)

// RiskParameters is the externally supplied risk configuration, immutable per
// run. It is persisted verbatim with every backtest result.
type RiskParameters struct {
	RiskLevel               RiskLevel `json:"risk_level"`
	StopLossATRMultiplier   float64   `json:"stop_loss_atr_multiplier"`
	TakeProfitATRMultiplier float64   `json:"take_profit_atr_multiplier"`
	TrailingStopMultiplier  float64   `json:"trailing_stop_multiplier"`
	PyramidAddFraction      float64   `json:"pyramid_add_fraction"`
	MaxPyramids             int       `json:"max_pyramids"`
	MaxPositionPct          float64   `json:"max_position_pct"`
	MaxDailyLossPct         float64   `json:"max_daily_loss_pct"`
	MaxDrawdownPct          float64   `json:"max_drawdown_pct"`
	MaxHoldDays             int       `json:"max_hold_days"`
	SizingModel             string    `json:"sizing_model"`
}

// PyramidLevel records one addition to a winning position.
type PyramidLevel struct {
	Price float64
	Size  float64
	Time  time.Time
}

// Position is an open long position. It is owned exclusively by the risk
// manager / backtester and mutated only through trailing-stop updates and
// pyramid additions.
type Position struct {
	Symbol     string
	EntryPrice float64
	EntryTime  time.Time
	Size       float64 // base size, excluding pyramids
	StopLoss   float64
	TakeProfit float64
	Pyramids   []PyramidLevel

	// HighWater is the highest price seen since entry; pyramiding requires a
	// new local high. AddStrength is the trend strength at the last add.
	HighWater   float64
	AddStrength float64
}

// TotalSize is the base size plus all pyramid additions.
func (p *Position) TotalSize() float64 {
	total := p.Size
	for _, lvl := range p.Pyramids {
		total += lvl.Size
	}
	return total
}

// BlendedEntry is the size-weighted average entry across the base position and
// every pyramid level.
func (p *Position) BlendedEntry() float64 {
	total := p.TotalSize()
	if total == 0 {
		return 0
	}
	sum := p.EntryPrice * p.Size
	for _, lvl := range p.Pyramids {
		sum += lvl.Price * lvl.Size
	}
	return sum / total
}

// Trade is the immutable record of a closed position.
type Trade struct {
	Symbol     string
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
	Size       float64
	PnL        float64
	ExitReason ExitReason
}

// ExitReason explains why a position was closed.
type ExitReason string

const (
	ExitStopLoss   ExitReason = "stop_loss"
	ExitTakeProfit ExitReason = "take_profit"
	ExitReversal   ExitReason = "reversal"
	ExitTimeLimit  ExitReason = "time_limit"
	ExitGuard      ExitReason = "guard_flatten"
	ExitEndOfData  ExitReason = "end_of_data"
)

// EquityPoint is one sample of the simulated equity curve.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}

// BacktestResult is produced once per backtest run and immutable afterwards.
type BacktestResult struct {
	StrategyName     string
	Symbol           string
	StartDate        time.Time
	EndDate          time.Time
	InitialEquity    float64
	FinalEquity      float64
	TotalReturn      float64 // fraction, e.g. 0.25 for +25%
	AnnualizedReturn float64
	SharpeRatio      float64
	MaxDrawdown      float64 // fraction of peak
	WinRate          float64
	ProfitFactor     float64
	AvgWin           float64
	AvgLoss          float64
	MaxConsecWins    int
	MaxConsecLosses  int
	Trades           []Trade
	EquityCurve      []EquityPoint
	Parameters       RiskParameters
}
