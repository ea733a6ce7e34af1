package indicator

import "TrendTrader/internal/model"

// atr is the Wilder-smoothed average true range. True range runs on the
// adjusted high/low/close of each bar, matching the close series the rest of
// the indicators consume; the first bar's range is high-low since there is no
// previous close.
type atr struct {
	period    int
	prevClose float64
	hasPrev   bool
	seen      int
	sumTR     float64
	value     float64
	ready     bool
}

func newATR(period int) *atr {
	return &atr{period: period}
}

func (a *atr) Push(bar model.PriceBar) {
	high, low := bar.AdjHigh(), bar.AdjLow()
	tr := high - low
	if a.hasPrev {
		if hc := abs(high - a.prevClose); hc > tr {
			tr = hc
		}
		if lc := abs(low - a.prevClose); lc > tr {
			tr = lc
		}
	}
	a.prevClose = bar.Price()
	a.hasPrev = true

	if !a.ready {
		a.sumTR += tr
		a.seen++
		if a.seen == a.period {
			a.value = a.sumTR / float64(a.period)
			a.ready = true
		}
		return
	}
	n := float64(a.period)
	a.value = (a.value*(n-1) + tr) / n
}

func (a *atr) Ready() bool    { return a.ready }
func (a *atr) Value() float64 { return a.value }

func (a *atr) Reset() {
	a.prevClose = 0
	a.hasPrev = false
	a.seen = 0
	a.sumTR = 0
	a.value = 0
	a.ready = false
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
