package strategy

import (
	"fmt"

	"TrendTrader/internal/model"
)

// ruleContext carries everything a rule predicate may inspect for one bar.
type ruleContext struct {
	price      float64
	volume     float64
	ind        model.IndicatorSet
	trend      model.TrendState
	bollPos    float64
	resistance float64
	support    float64
	hasLevels  bool
}

// rule is one (predicate, outcome) pair of the decision table.
type rule struct {
	signal     model.SignalType
	confidence float64 // 0 means "use the configured breakout confidence"
	match      func(ruleContext) bool
	rationale  func(ruleContext) string
}

// buildRules returns the decision table in priority order. Evaluation stops at
// the first match, so a bar satisfying both strong_buy and buy always yields
// strong_buy.
func buildRules() []rule {
	return []rule{
		{
			signal:     model.SignalStrongBuy,
			confidence: 85,
			match: func(c ruleContext) bool {
				return c.trend.Direction == model.TrendUp &&
					c.price > c.ind.SMAShort && c.ind.SMAShort > c.ind.SMAMid && c.ind.SMAMid > c.ind.SMALong &&
					c.ind.RSI < 70 &&
					c.ind.MACD > c.ind.MACDSignal &&
					c.volume > c.ind.VolumeSMA &&
					c.bollPos < 0.8
			},
			rationale: func(c ruleContext) string {
				return fmt.Sprintf("strong_buy: full bullish MA stack; RSI %.1f below 70; MACD above signal; volume above average; band position %.2f", c.ind.RSI, c.bollPos)
			},
		},
		{
			signal:     model.SignalBuy,
			confidence: 70,
			match: func(c ruleContext) bool {
				return c.trend.Direction == model.TrendUp &&
					c.price > c.ind.SMAMid &&
					c.ind.RSI < 75 &&
					c.ind.MACD > c.ind.MACDSignal
			},
			rationale: func(c ruleContext) string {
				return fmt.Sprintf("buy: uptrend confirmed; price above mid SMA; RSI %.1f in healthy range; MACD bullish", c.ind.RSI)
			},
		},
		{
			signal: model.SignalTrendFollowingBuy,
			match: func(c ruleContext) bool {
				return c.hasLevels &&
					c.price > c.resistance &&
					c.volume > c.ind.VolumeSMA &&
					c.trend.Strength > 60
			},
			rationale: func(c ruleContext) string {
				return fmt.Sprintf("trend_following_buy: close %.2f broke resistance %.2f on above-average volume; trend strength %.0f", c.price, c.resistance, c.trend.Strength)
			},
		},
		{
			signal:     model.SignalStrongSell,
			confidence: 85,
			match: func(c ruleContext) bool {
				return c.trend.Direction == model.TrendDown &&
					c.price < c.ind.SMAShort && c.ind.SMAShort < c.ind.SMAMid && c.ind.SMAMid < c.ind.SMALong &&
					c.ind.RSI > 30 &&
					c.ind.MACD < c.ind.MACDSignal &&
					c.volume > c.ind.VolumeSMA &&
					c.bollPos > 0.2
			},
			rationale: func(c ruleContext) string {
				return fmt.Sprintf("strong_sell: full bearish MA stack; RSI %.1f above 30; MACD below signal; volume above average; band position %.2f", c.ind.RSI, c.bollPos)
			},
		},
		{
			signal:     model.SignalSell,
			confidence: 70,
			match: func(c ruleContext) bool {
				return c.trend.Direction == model.TrendDown &&
					c.price < c.ind.SMAMid &&
					c.ind.RSI > 25 &&
					c.ind.MACD < c.ind.MACDSignal
			},
			rationale: func(c ruleContext) string {
				return fmt.Sprintf("sell: downtrend confirmed; price below mid SMA; RSI %.1f; MACD bearish", c.ind.RSI)
			},
		},
		{
			signal: model.SignalTrendReversalSell,
			match: func(c ruleContext) bool {
				return c.hasLevels &&
					c.price < c.support &&
					c.volume > c.ind.VolumeSMA &&
					c.trend.Strength < 40
			},
			rationale: func(c ruleContext) string {
				return fmt.Sprintf("trend_reversal_sell: close %.2f broke support %.2f on above-average volume; trend strength %.0f", c.price, c.support, c.trend.Strength)
			},
		},
	}
}

func holdRationale(c ruleContext) string {
	return fmt.Sprintf("hold: mixed signals, trend %s strength %.0f", c.trend.Direction, c.trend.Strength)
}
