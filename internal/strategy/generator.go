package strategy

// The buy/sell cascade is an explicit ordered decision table rather than
// nested branching, so individual rules stay independently testable.

import (
	"TrendTrader/internal/model"
)

// GeneratorConfig tunes signal generation.
type GeneratorConfig struct {
	// BreakoutLookback is the window for the rolling resistance (highest
	// high) and support (lowest low), excluding the bar under evaluation.
	BreakoutLookback int
	// BreakoutConfidence scores the breakout/reversal rules, which the
	// cascade otherwise leaves unscored.
	BreakoutConfidence float64
	// RiskLevel scales the final confidence: conservative 0.8x,
	// aggressive 1.2x, clamped to 100.
	RiskLevel model.RiskLevel
}

// Generator produces at most one Signal per bar per symbol. Its only state is
// the rolling resistance/support window, so it can run live or inside the
// backtester interchangeably.
type Generator struct {
	cfg   GeneratorConfig
	rules []rule
	highs []float64
	lows  []float64
}

// NewGenerator builds a generator with the fixed-priority rule set.
func NewGenerator(cfg GeneratorConfig) *Generator {
	if cfg.BreakoutLookback <= 0 {
		cfg.BreakoutLookback = 20
	}
	return &Generator{cfg: cfg, rules: buildRules()}
}

// Evaluate applies the rule cascade to one bar. Rules are tried in priority
// order and the first match wins; when none match the result is a hold.
func (g *Generator) Evaluate(bar model.PriceBar, ind model.IndicatorSet, tr model.TrendState) model.Signal {
	ctx := ruleContext{
		price:   bar.Price(),
		volume:  bar.Volume,
		ind:     ind,
		trend:   tr,
		bollPos: ind.BollingerPosition(bar.Price()),
	}
	if len(g.highs) == g.cfg.BreakoutLookback {
		ctx.hasLevels = true
		ctx.resistance = maxOf(g.highs)
		ctx.support = minOf(g.lows)
	}

	sig := model.Signal{
		Symbol: bar.Symbol,
		Time:   bar.Time,
		Type:   model.SignalHold,
		Price:  bar.Price(),
		Volume: bar.Volume,
	}
	matched := false
	for _, r := range g.rules {
		if r.match(ctx) {
			sig.Type = r.signal
			sig.Strength = r.confidence
			if sig.Strength == 0 {
				sig.Strength = g.cfg.BreakoutConfidence
			}
			sig.Rationale = r.rationale(ctx)
			matched = true
			break
		}
	}
	if !matched {
		sig.Strength = 60
		sig.Rationale = holdRationale(ctx)
	}
	sig.Strength = g.scaleConfidence(sig.Strength)

	g.pushLevels(bar)
	return sig
}

func (g *Generator) scaleConfidence(conf float64) float64 {
	switch g.cfg.RiskLevel {
	case model.RiskConservative:
		conf *= 0.8
	case model.RiskAggressive:
		conf *= 1.2
	}
	if conf > 100 {
		return 100
	}
	return conf
}

// pushLevels records the bar into the breakout window after evaluation, so
// the current bar never competes with its own high/low.
func (g *Generator) pushLevels(bar model.PriceBar) {
	g.highs = append(g.highs, bar.AdjHigh())
	g.lows = append(g.lows, bar.AdjLow())
	if len(g.highs) > g.cfg.BreakoutLookback {
		g.highs = g.highs[1:]
		g.lows = g.lows[1:]
	}
}

// Reset clears the breakout window for a fresh series.
func (g *Generator) Reset() {
	g.highs = g.highs[:0]
	g.lows = g.lows[:0]
}

func maxOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
