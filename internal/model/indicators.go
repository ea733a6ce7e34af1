package model

import "time"

// IndicatorSet holds every derived value for one bar. One set exists per bar
// once the warm-up window (the longest lookback) has passed; earlier bars have
// no set at all rather than zeroed fields.
type IndicatorSet struct {
	Symbol string
	Time   time.Time

	SMAShort float64
	SMAMid   float64
	SMALong  float64
	EMAFast  float64
	EMASlow  float64

	RSI           float64
	MACD          float64
	MACDSignal    float64
	MACDHistogram float64

	BollingerUpper float64
	BollingerMid   float64
	BollingerLower float64

	ATR       float64
	OBV       float64
	VolumeSMA float64
}

// BollingerPosition is where the price sits inside the bands, clamped to [0,1].
func (s IndicatorSet) BollingerPosition(price float64) float64 {
	width := s.BollingerUpper - s.BollingerLower
	if width <= 0 {
		return 0.5
	}
	pos := (price - s.BollingerLower) / width
	if pos < 0 {
		return 0
	}
	if pos > 1 {
		return 1
	}
	return pos
}

// TrendDirection labels the prevailing trend.
type TrendDirection string

const (
	TrendUp       TrendDirection = "up"
	TrendDown     TrendDirection = "down"
	TrendSideways TrendDirection = "sideways"
)

// TrendState is the classified trend for one bar. Strength is a continuous
// 0-100 score, not just a band.
type TrendState struct {
	Direction TrendDirection
	Strength  float64
}
