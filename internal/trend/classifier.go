package trend

import "TrendTrader/internal/model"

// Weights control how the continuous strength score is composed: ordering
// consistency of the moving averages, slope of the long SMA, and the price's
// ATR-normalized distance from the long SMA. They are configuration, not
// hidden constants.
type Weights struct {
	Alignment float64
	Slope     float64
	Distance  float64
}

// DefaultWeights weight alignment heaviest, matching how the moving-average
// ordering dominates the direction rules.
func DefaultWeights() Weights {
	return Weights{Alignment: 0.5, Slope: 0.3, Distance: 0.2}
}

// Classifier derives a TrendState per bar from the indicator set. It keeps a
// small history of the long SMA to measure its slope over its own lookback.
type Classifier struct {
	weights       Weights
	slopeLookback int
	history       []float64 // ring of long-SMA values, oldest evicted
}

// NewClassifier creates a classifier. slopeLookback is normally the long SMA
// period itself.
func NewClassifier(w Weights, slopeLookback int) *Classifier {
	if slopeLookback < 2 {
		slopeLookback = 2
	}
	return &Classifier{weights: w, slopeLookback: slopeLookback}
}

// Update classifies the trend for the bar the indicator set was computed for.
func (c *Classifier) Update(price float64, ind model.IndicatorSet) model.TrendState {
	c.history = append(c.history, ind.SMALong)
	if len(c.history) > c.slopeLookback {
		c.history = c.history[1:]
	}

	dir := direction(price, ind)
	strength := c.strength(dir, price, ind)
	return model.TrendState{Direction: dir, Strength: strength}
}

// direction applies the moving-average ordering rules: a full stack
// (price > short > mid > long) is a strong trend, price above mid above long
// is a weak one, mirrored for downtrends, anything else is sideways.
func direction(price float64, ind model.IndicatorSet) model.TrendDirection {
	switch {
	case price > ind.SMAShort && ind.SMAShort > ind.SMAMid && ind.SMAMid > ind.SMALong:
		return model.TrendUp
	case price < ind.SMAShort && ind.SMAShort < ind.SMAMid && ind.SMAMid < ind.SMALong:
		return model.TrendDown
	case price > ind.SMAMid && ind.SMAMid > ind.SMALong:
		return model.TrendUp
	case price < ind.SMAMid && ind.SMAMid < ind.SMALong:
		return model.TrendDown
	default:
		return model.TrendSideways
	}
}

// strength maps the weighted component score into the band the direction rule
// implies: >=75 for a fully stacked trend, 50-74 for a weak one, <50 for
// sideways.
func (c *Classifier) strength(dir model.TrendDirection, price float64, ind model.IndicatorSet) float64 {
	up := alignedChecks(price, ind, true)
	down := alignedChecks(price, ind, false)

	if dir == model.TrendSideways {
		best := up
		if down > best {
			best = down
		}
		return 49 * best / 3
	}

	var align float64
	if dir == model.TrendUp {
		align = up / 3
	} else {
		align = down / 3
	}

	score := c.compose(align, c.slopeScore(dir, ind), c.distanceScore(dir, price, ind))

	fullStack := (dir == model.TrendUp && up == 3) || (dir == model.TrendDown && down == 3)
	if fullStack {
		return 75 + 25*score
	}
	return 50 + 24*score
}

func (c *Classifier) compose(align, slope, dist float64) float64 {
	total := c.weights.Alignment + c.weights.Slope + c.weights.Distance
	if total == 0 {
		return align
	}
	return (c.weights.Alignment*align + c.weights.Slope*slope + c.weights.Distance*dist) / total
}

// slopeScore is the long SMA's change over the tracked window in ATR units,
// clamped to [0,1]. A flat or adverse slope scores zero.
func (c *Classifier) slopeScore(dir model.TrendDirection, ind model.IndicatorSet) float64 {
	if len(c.history) < 2 || ind.ATR <= 0 {
		return 0
	}
	change := c.history[len(c.history)-1] - c.history[0]
	if dir == model.TrendDown {
		change = -change
	}
	return clamp01(change / ind.ATR)
}

// distanceScore is the price's favorable distance from the long SMA,
// normalized so three ATRs saturate the score.
func (c *Classifier) distanceScore(dir model.TrendDirection, price float64, ind model.IndicatorSet) float64 {
	if ind.ATR <= 0 {
		return 0
	}
	dist := price - ind.SMALong
	if dir == model.TrendDown {
		dist = -dist
	}
	return clamp01(dist / (3 * ind.ATR))
}

// alignedChecks counts how many of the three orderings hold in the given
// direction.
func alignedChecks(price float64, ind model.IndicatorSet, up bool) float64 {
	n := 0.0
	if up {
		if price > ind.SMAShort {
			n++
		}
		if ind.SMAShort > ind.SMAMid {
			n++
		}
		if ind.SMAMid > ind.SMALong {
			n++
		}
	} else {
		if price < ind.SMAShort {
			n++
		}
		if ind.SMAShort < ind.SMAMid {
			n++
		}
		if ind.SMAMid < ind.SMALong {
			n++
		}
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Reset clears the slope history for a fresh series.
func (c *Classifier) Reset() { c.history = c.history[:0] }
