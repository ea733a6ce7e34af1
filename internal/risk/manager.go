package risk

import (
	"fmt"
	"time"

	"TrendTrader/internal/model"
)

// Manager owns the lifecycle of a single open position: initial stop and
// target placement, trailing, pyramiding, and time limits. It is stateless
// across positions; all state lives in the model.Position it returns.
type Manager struct {
	params model.RiskParameters
}

func NewManager(params model.RiskParameters) *Manager {
	return &Manager{params: params}
}

func (m *Manager) Params() model.RiskParameters { return m.params }

// OpenPosition places the initial stop at entry - ATR*multiplier and the
// take-profit at twice the stop distance above entry.
func (m *Manager) OpenPosition(symbol string, t time.Time, entry, size, atr, strength float64) (*model.Position, error) {
	if atr <= 0 {
		return nil, fmt.Errorf("%w: ATR must be positive to place a stop", model.ErrDegenerateInput)
	}
	if size <= 0 {
		return nil, fmt.Errorf("position size %.4f must be positive", size)
	}
	dist := atr * m.params.StopLossATRMultiplier
	return &model.Position{
		Symbol:      symbol,
		EntryTime:   t,
		EntryPrice:  entry,
		Size:        size,
		StopLoss:    entry - dist,
		TakeProfit:  entry + 2*dist,
		HighWater:   entry,
		AddStrength: strength,
	}, nil
}

// Trail raises the stop toward price - ATR*trailingMultiplier once the
// position is in profit. The stop never decreases and trailing is inactive
// at or below the blended entry.
func (m *Manager) Trail(pos *model.Position, price, atr float64) {
	if price > pos.HighWater {
		pos.HighWater = price
	}
	if price <= pos.BlendedEntry() {
		return
	}
	candidate := price - atr*m.params.TrailingStopMultiplier
	if candidate > pos.StopLoss {
		pos.StopLoss = candidate
	}
}

// CanPyramid reports whether an add is allowed: trend strength above the
// strength recorded at the last add, price at a new high for the position,
// and the add count below the configured maximum.
func (m *Manager) CanPyramid(pos *model.Position, price, strength float64) bool {
	if len(pos.Pyramids) >= m.params.MaxPyramids {
		return false
	}
	if strength <= pos.AddStrength {
		return false
	}
	return price > pos.HighWater
}

// Pyramid appends an add of addFraction * base size and recomputes the stop
// from the blended entry. The recomputed stop never lowers the existing one.
func (m *Manager) Pyramid(pos *model.Position, t time.Time, price, atr, strength float64) error {
	if atr <= 0 {
		return fmt.Errorf("%w: ATR must be positive to pyramid", model.ErrDegenerateInput)
	}
	pos.Pyramids = append(pos.Pyramids, model.PyramidLevel{
		Time:  t,
		Price: price,
		Size:  pos.Size * m.params.PyramidAddFraction,
	})
	pos.AddStrength = strength
	if price > pos.HighWater {
		pos.HighWater = price
	}

	blendedStop := pos.BlendedEntry() - atr*m.params.StopLossATRMultiplier
	if blendedStop > pos.StopLoss {
		pos.StopLoss = blendedStop
	}
	return nil
}

// TimeExceeded reports whether the position has been held past the maximum
// holding period.
func (m *Manager) TimeExceeded(pos *model.Position, now time.Time) bool {
	if m.params.MaxHoldDays <= 0 {
		return false
	}
	return now.Sub(pos.EntryTime) >= time.Duration(m.params.MaxHoldDays)*24*time.Hour
}
