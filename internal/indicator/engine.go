package indicator

import "TrendTrader/internal/model"

// Params holds every lookback window for the engine.
type Params struct {
	SMAShort        int
	SMAMid          int
	SMALong         int
	EMAFast         int
	EMASlow         int
	MACDSignal      int
	RSIPeriod       int
	BollingerPeriod int
	BollingerStdDev float64
	ATRPeriod       int
	VolumePeriod    int
}

// DefaultParams are the conventional daily-bar windows: 20/50/200 SMA,
// 12/26/9 MACD, 14 RSI, 20x2 sigma Bollinger, 14 ATR.
func DefaultParams() Params {
	return Params{
		SMAShort:        20,
		SMAMid:          50,
		SMALong:         200,
		EMAFast:         12,
		EMASlow:         26,
		MACDSignal:      9,
		RSIPeriod:       14,
		BollingerPeriod: 20,
		BollingerStdDev: 2.0,
		ATRPeriod:       14,
		VolumePeriod:    20,
	}
}

// Engine derives one IndicatorSet per input bar. Every sub-indicator is a
// rolling accumulator, so each Update is O(1) amortized and the same engine
// serves both backtesting and live updates. Bars inside the warm-up window
// (the longest lookback) produce no set at all.
type Engine struct {
	params Params
	warmup int
	count  int

	smaShort *rollingWindow
	smaMid   *rollingWindow
	smaLong  *rollingWindow
	boll     *rollingWindow
	volSMA   *rollingWindow

	emaFast    *ema
	emaSlow    *ema
	macdSignal *ema

	rsi *rsi
	atr *atr

	obv       float64
	prevPrice float64
	hasPrev   bool
}

// NewEngine creates a streaming engine for one symbol.
func NewEngine(p Params) *Engine {
	warmup := p.SMALong
	for _, n := range []int{
		p.SMAShort, p.SMAMid,
		p.EMASlow + p.MACDSignal,
		p.RSIPeriod + 1,
		p.ATRPeriod,
		p.BollingerPeriod,
		p.VolumePeriod,
	} {
		if n > warmup {
			warmup = n
		}
	}
	return &Engine{
		params:     p,
		warmup:     warmup,
		smaShort:   newRollingWindow(p.SMAShort),
		smaMid:     newRollingWindow(p.SMAMid),
		smaLong:    newRollingWindow(p.SMALong),
		boll:       newRollingWindow(p.BollingerPeriod),
		volSMA:     newRollingWindow(p.VolumePeriod),
		emaFast:    newEMA(p.EMAFast),
		emaSlow:    newEMA(p.EMASlow),
		macdSignal: newEMA(p.MACDSignal),
		rsi:        newRSI(p.RSIPeriod),
		atr:        newATR(p.ATRPeriod),
	}
}

// WarmupBars is the number of bars consumed before the first IndicatorSet.
func (e *Engine) WarmupBars() int { return e.warmup }

// Update consumes the next bar and returns the indicator set for it. The
// second return is false while the engine is still warming up.
func (e *Engine) Update(bar model.PriceBar) (model.IndicatorSet, bool) {
	price := bar.Price()

	e.smaShort.Push(price)
	e.smaMid.Push(price)
	e.smaLong.Push(price)
	e.boll.Push(price)
	e.volSMA.Push(bar.Volume)

	e.emaFast.Push(price)
	e.emaSlow.Push(price)
	if e.emaFast.Ready() && e.emaSlow.Ready() {
		e.macdSignal.Push(e.emaFast.Value() - e.emaSlow.Value())
	}

	e.rsi.Push(price)
	e.atr.Push(bar)

	if e.hasPrev {
		if price > e.prevPrice {
			e.obv += bar.Volume
		} else if price < e.prevPrice {
			e.obv -= bar.Volume
		}
	}
	e.prevPrice = price
	e.hasPrev = true

	e.count++
	if e.count < e.warmup || !e.ready() {
		return model.IndicatorSet{}, false
	}

	macd := e.emaFast.Value() - e.emaSlow.Value()
	mid := e.boll.Mean()
	band := e.boll.StdDev() * e.params.BollingerStdDev

	return model.IndicatorSet{
		Symbol:         bar.Symbol,
		Time:           bar.Time,
		SMAShort:       e.smaShort.Mean(),
		SMAMid:         e.smaMid.Mean(),
		SMALong:        e.smaLong.Mean(),
		EMAFast:        e.emaFast.Value(),
		EMASlow:        e.emaSlow.Value(),
		RSI:            e.rsi.Value(),
		MACD:           macd,
		MACDSignal:     e.macdSignal.Value(),
		MACDHistogram:  macd - e.macdSignal.Value(),
		BollingerUpper: mid + band,
		BollingerMid:   mid,
		BollingerLower: mid - band,
		ATR:            e.atr.Value(),
		OBV:            e.obv,
		VolumeSMA:      e.volSMA.Mean(),
	}, true
}

func (e *Engine) ready() bool {
	return e.smaLong.Full() &&
		e.macdSignal.Ready() &&
		e.rsi.Ready() &&
		e.atr.Ready() &&
		e.boll.Full() &&
		e.volSMA.Full()
}

// Reset restarts the engine for a fresh series.
func (e *Engine) Reset() {
	e.count = 0
	e.smaShort.Reset()
	e.smaMid.Reset()
	e.smaLong.Reset()
	e.boll.Reset()
	e.volSMA.Reset()
	e.emaFast.Reset()
	e.emaSlow.Reset()
	e.macdSignal.Reset()
	e.rsi.Reset()
	e.atr.Reset()
	e.obv = 0
	e.prevPrice = 0
	e.hasPrev = false
}

// ComputeSeries runs a full series through a fresh engine and returns one
// entry per bar; entries inside the warm-up window are nil, not zeroed.
func ComputeSeries(p Params, bars []model.PriceBar) []*model.IndicatorSet {
	eng := NewEngine(p)
	out := make([]*model.IndicatorSet, len(bars))
	for i, bar := range bars {
		if set, ok := eng.Update(bar); ok {
			s := set
			out[i] = &s
		}
	}
	return out
}
