package strategy

import (
	"fmt"

	"TrendTrader/internal/config"
	"TrendTrader/internal/indicator"
	"TrendTrader/internal/model"
	"TrendTrader/internal/trend"
)

// Pipeline chains the indicator engine, trend classifier, and signal
// generator for one symbol. All state is owned by the pipeline, so distinct
// symbols can run on distinct goroutines without sharing anything.
type Pipeline struct {
	engine     *indicator.Engine
	classifier *trend.Classifier
	generator  *Generator
}

// NewPipeline wires the three stages from configuration.
func NewPipeline(cfg *config.Config) *Pipeline {
	ind := cfg.Indicators
	params := indicator.Params{
		SMAShort:        ind.SMAShort,
		SMAMid:          ind.SMAMid,
		SMALong:         ind.SMALong,
		EMAFast:         ind.EMAFast,
		EMASlow:         ind.EMASlow,
		MACDSignal:      ind.MACDSignal,
		RSIPeriod:       ind.RSIPeriod,
		BollingerPeriod: ind.BollingerPeriod,
		BollingerStdDev: ind.BollingerStdDev,
		ATRPeriod:       ind.ATRPeriod,
		VolumePeriod:    ind.VolumePeriod,
	}
	weights := trend.Weights{
		Alignment: cfg.Trend.AlignmentWeight,
		Slope:     cfg.Trend.SlopeWeight,
		Distance:  cfg.Trend.DistanceWeight,
	}
	return &Pipeline{
		engine:     indicator.NewEngine(params),
		classifier: trend.NewClassifier(weights, ind.SMALong),
		generator: NewGenerator(GeneratorConfig{
			BreakoutLookback:   ind.BreakoutLookback,
			BreakoutConfidence: cfg.Signals.BreakoutConfidence,
			RiskLevel:          model.RiskLevel(cfg.Risk.Level),
		}),
	}
}

// WarmupBars is the number of bars consumed before the first signal.
func (p *Pipeline) WarmupBars() int { return p.engine.WarmupBars() }

// Step feeds one bar through all three stages. ok is false during warm-up, in
// which case no signal is emitted for the bar.
func (p *Pipeline) Step(bar model.PriceBar) (model.IndicatorSet, model.TrendState, model.Signal, bool) {
	ind, ok := p.engine.Update(bar)
	if !ok {
		return model.IndicatorSet{}, model.TrendState{}, model.Signal{}, false
	}
	tr := p.classifier.Update(bar.Price(), ind)
	sig := p.generator.Evaluate(bar, ind, tr)
	return ind, tr, sig, true
}

// Reset restarts every stage for a fresh series.
func (p *Pipeline) Reset() {
	p.engine.Reset()
	p.classifier.Reset()
	p.generator.Reset()
}

// EvaluateSeries validates a bar series and returns the signal for its final
// bar, the way a live scan consumes history: only the most recent value
// matters. Returns ErrInsufficientHistory when the series never clears the
// warm-up window.
func EvaluateSeries(cfg *config.Config, bars []model.PriceBar) (*model.Signal, error) {
	if err := model.ValidateSeries(bars); err != nil {
		return nil, err
	}
	p := NewPipeline(cfg)
	var last *model.Signal
	for _, bar := range bars {
		if _, _, sig, ok := p.Step(bar); ok {
			s := sig
			last = &s
		}
	}
	if last == nil {
		return nil, fmt.Errorf("%w: need %d bars, have %d", model.ErrInsufficientHistory, p.WarmupBars(), len(bars))
	}
	return last, nil
}
