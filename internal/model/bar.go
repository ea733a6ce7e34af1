package model

import (
	"fmt"
	"time"
)

// PriceBar is a single OHLCV candlestick for one symbol. Bars are immutable
// once produced; a series is strictly ordered by timestamp.
type PriceBar struct {
	Symbol   string
	Time     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
	IsETF    bool
	Country  string
}

// Price returns the adjusted close when available, otherwise the raw close.
// All indicator and signal math runs on this value.
func (b PriceBar) Price() float64 {
	if b.AdjClose > 0 {
		return b.AdjClose
	}
	return b.Close
}

// adjustFactor maps raw intrabar levels onto the adjusted series. Without an
// adjusted close the factor is 1 and the raw levels pass through.
func (b PriceBar) adjustFactor() float64 {
	if b.AdjClose > 0 && b.Close > 0 {
		return b.AdjClose / b.Close
	}
	return 1
}

// AdjOpen is the open on the same basis as Price. Stop and target fills
// compare against these, never the raw levels, so splits and dividends do not
// shift where a stop appears to have been touched.
func (b PriceBar) AdjOpen() float64 { return b.Open * b.adjustFactor() }

// AdjHigh is the high on the same basis as Price.
func (b PriceBar) AdjHigh() float64 { return b.High * b.adjustFactor() }

// AdjLow is the low on the same basis as Price.
func (b PriceBar) AdjLow() float64 { return b.Low * b.adjustFactor() }

// ValidateSeries checks a single-symbol bar sequence for degenerate input:
// non-monotonic or duplicate timestamps, non-positive prices, or mixed
// symbols. A failing series is rejected as a whole.
func ValidateSeries(bars []PriceBar) error {
	if len(bars) == 0 {
		return fmt.Errorf("%w: empty series", ErrDegenerateInput)
	}
	symbol := bars[0].Symbol
	for i, b := range bars {
		if b.Symbol != symbol {
			return fmt.Errorf("%w: mixed symbols %q and %q", ErrDegenerateInput, symbol, b.Symbol)
		}
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return fmt.Errorf("%w: non-positive price at %s", ErrDegenerateInput, b.Time.Format("2006-01-02"))
		}
		if b.High < b.Low {
			return fmt.Errorf("%w: high below low at %s", ErrDegenerateInput, b.Time.Format("2006-01-02"))
		}
		if i > 0 && !b.Time.After(bars[i-1].Time) {
			return fmt.Errorf("%w: timestamp not increasing at %s", ErrDegenerateInput, b.Time.Format("2006-01-02"))
		}
	}
	return nil
}
