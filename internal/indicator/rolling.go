package indicator

import "math"

// rollingWindow is a fixed-size ring buffer with O(1) amortized mean and
// standard deviation updates.
type rollingWindow struct {
	size  int
	buf   []float64
	head  int
	count int
	sum   float64
	sumSq float64
}

func newRollingWindow(size int) *rollingWindow {
	return &rollingWindow{size: size, buf: make([]float64, size)}
}

func (w *rollingWindow) Push(v float64) {
	if w.count == w.size {
		old := w.buf[w.head]
		w.sum -= old
		w.sumSq -= old * old
	} else {
		w.count++
	}
	w.buf[w.head] = v
	w.head = (w.head + 1) % w.size
	w.sum += v
	w.sumSq += v * v
}

func (w *rollingWindow) Full() bool { return w.count == w.size }

func (w *rollingWindow) Mean() float64 {
	if w.count == 0 {
		return 0
	}
	return w.sum / float64(w.count)
}

// StdDev is the sample standard deviation of the window contents.
func (w *rollingWindow) StdDev() float64 {
	n := float64(w.count)
	if w.count < 2 {
		return 0
	}
	variance := (w.sumSq - w.sum*w.sum/n) / (n - 1)
	if variance < 0 {
		// floating-point cancellation can drive a near-zero variance negative
		return 0
	}
	return math.Sqrt(variance)
}

// Max scans the occupied portion of the window. The windows used here are
// short (20 bars by default), so a linear scan is cheaper than maintaining a
// monotonic deque.
func (w *rollingWindow) Max() float64 {
	max := math.Inf(-1)
	for i := 0; i < w.count; i++ {
		if w.buf[i] > max {
			max = w.buf[i]
		}
	}
	return max
}

func (w *rollingWindow) Min() float64 {
	min := math.Inf(1)
	for i := 0; i < w.count; i++ {
		if w.buf[i] < min {
			min = w.buf[i]
		}
	}
	return min
}

func (w *rollingWindow) Reset() {
	w.head = 0
	w.count = 0
	w.sum = 0
	w.sumSq = 0
}
