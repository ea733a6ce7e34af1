package indicator

// rsi computes the Wilder-smoothed relative strength index as a stream. The
// first `period` price changes seed the average gain/loss; subsequent changes
// use Wilder smoothing. A zero average loss yields RSI 100, never a division
// error.
type rsi struct {
	period   int
	prev     float64
	hasPrev  bool
	seen     int
	avgGain  float64
	avgLoss  float64
	smoothed bool
}

func newRSI(period int) *rsi {
	return &rsi{period: period}
}

func (r *rsi) Push(price float64) {
	if !r.hasPrev {
		r.prev = price
		r.hasPrev = true
		return
	}
	change := price - r.prev
	r.prev = price

	gain, loss := 0.0, 0.0
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	if !r.smoothed {
		r.avgGain += gain
		r.avgLoss += loss
		r.seen++
		if r.seen == r.period {
			r.avgGain /= float64(r.period)
			r.avgLoss /= float64(r.period)
			r.smoothed = true
		}
		return
	}

	n := float64(r.period)
	r.avgGain = (r.avgGain*(n-1) + gain) / n
	r.avgLoss = (r.avgLoss*(n-1) + loss) / n
}

func (r *rsi) Ready() bool { return r.smoothed }

func (r *rsi) Value() float64 {
	if r.avgLoss == 0 {
		return 100
	}
	rs := r.avgGain / r.avgLoss
	return 100 - 100/(1+rs)
}

func (r *rsi) Reset() {
	r.prev = 0
	r.hasPrev = false
	r.seen = 0
	r.avgGain = 0
	r.avgLoss = 0
	r.smoothed = false
}
