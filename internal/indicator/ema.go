package indicator

// ema is a streaming exponential moving average. The first value is seeded
// with the simple average of the first `period` inputs, then updated
// recursively with k = 2/(period+1).
type ema struct {
	period  int
	k       float64
	value   float64
	seedSum float64
	seen    int
	ready   bool
}

func newEMA(period int) *ema {
	return &ema{period: period, k: 2.0 / float64(period+1)}
}

func (e *ema) Push(v float64) {
	if e.ready {
		e.value = v*e.k + e.value*(1-e.k)
		return
	}
	e.seedSum += v
	e.seen++
	if e.seen == e.period {
		e.value = e.seedSum / float64(e.period)
		e.ready = true
	}
}

func (e *ema) Ready() bool    { return e.ready }
func (e *ema) Value() float64 { return e.value }

func (e *ema) Reset() {
	e.value = 0
	e.seedSum = 0
	e.seen = 0
	e.ready = false
}
