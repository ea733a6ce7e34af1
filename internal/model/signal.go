package model

import "time"

// SignalType is the engine-level signal classification.
type SignalType string

const (
	SignalStrongBuy         SignalType = "strong_buy"
	SignalBuy               SignalType = "buy"
	SignalTrendFollowingBuy SignalType = "trend_following_buy"
	SignalHold              SignalType = "hold"
	SignalSell              SignalType = "sell"
	SignalStrongSell        SignalType = "strong_sell"
	SignalTrendReversalSell SignalType = "trend_reversal_sell"
)

// CoarseType maps the engine signal onto the storage enum, which only
// distinguishes BUY/SELL/HOLD. The fine-grained type survives in Rationale.
func (t SignalType) CoarseType() string {
	switch t {
	case SignalStrongBuy, SignalBuy, SignalTrendFollowingBuy:
		return "BUY"
	case SignalSell, SignalStrongSell, SignalTrendReversalSell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// IsBuy reports whether the signal opens or adds long exposure.
func (t SignalType) IsBuy() bool { return t.CoarseType() == "BUY" }

// IsSell reports whether the signal closes long exposure.
func (t SignalType) IsSell() bool { return t.CoarseType() == "SELL" }

// Signal is the generator's output for one bar. At most one per bar per
// symbol; immutable once produced.
type Signal struct {
	Symbol    string
	Time      time.Time
	Type      SignalType
	Strength  float64 // confidence, 0-100
	Price     float64
	Volume    float64
	Rationale string
}
