package risk

import (
	"sync"
	"time"

	"TrendTrader/internal/model"
)

// GuardEventType identifies which portfolio guard fired.
type GuardEventType string

const (
	GuardDailyLoss   GuardEventType = "daily_loss_limit"
	GuardMaxDrawdown GuardEventType = "max_drawdown"
)

// GuardEvent is emitted when a portfolio guard trips. It is a control event,
// not an error: the caller is expected to flatten all positions and suspend
// new entries.
type GuardEvent struct {
	Type   GuardEventType
	Time   time.Time
	Equity float64
}

// Portfolio tracks equity, the equity peak, and the day anchor used by the
// daily loss guard. It is safe for concurrent use, so a live scheduler and a
// manual command can share one instance; the mutex is the single
// serialization point.
type Portfolio struct {
	mu sync.Mutex

	equity     float64
	peak       float64
	dayAnchor  float64
	day        time.Time
	maxDaily   float64
	maxDD      float64
	suspDaily  bool
	suspDrawDn bool
}

func NewPortfolio(initialEquity float64, params model.RiskParameters) *Portfolio {
	return &Portfolio{
		equity:    initialEquity,
		peak:      initialEquity,
		dayAnchor: initialEquity,
		maxDaily:  params.MaxDailyLossPct,
		maxDD:     params.MaxDrawdownPct,
	}
}

// Equity returns the current marked equity.
func (p *Portfolio) Equity() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.equity
}

// Suspended reports whether any guard currently blocks new entries.
func (p *Portfolio) Suspended() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.suspDaily || p.suspDrawDn
}

// MarkToMarket records the equity sample for t and evaluates both guards.
// The daily-loss suspension clears automatically when t rolls into a new
// calendar day; a drawdown suspension persists until Reset. At most one
// event is returned per call, drawdown taking precedence.
func (p *Portfolio) MarkToMarket(t time.Time, equity float64) *GuardEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	day := t.Truncate(24 * time.Hour)
	if !day.Equal(p.day) {
		p.day = day
		p.dayAnchor = p.equity
		p.suspDaily = false
	}

	p.equity = equity
	if equity > p.peak {
		p.peak = equity
	}

	if !p.suspDrawDn && p.peak > 0 && (p.peak-equity)/p.peak >= p.maxDD {
		p.suspDrawDn = true
		return &GuardEvent{Type: GuardMaxDrawdown, Time: t, Equity: equity}
	}
	if !p.suspDaily && p.dayAnchor > 0 && (p.dayAnchor-equity)/p.dayAnchor >= p.maxDaily {
		p.suspDaily = true
		return &GuardEvent{Type: GuardDailyLoss, Time: t, Equity: equity}
	}
	return nil
}

// Reset clears the drawdown suspension and re-anchors the peak at current
// equity. Intended as an explicit operator action, never automatic.
func (p *Portfolio) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.suspDrawDn = false
	p.suspDaily = false
	p.peak = p.equity
	p.dayAnchor = p.equity
}

// Snapshot exports the guard state for persistence across process restarts.
func (p *Portfolio) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{
		Equity:            p.equity,
		Peak:              p.peak,
		DayAnchor:         p.dayAnchor,
		Day:               p.day,
		DailySuspended:    p.suspDaily,
		DrawdownSuspended: p.suspDrawDn,
	}
}

// Restore loads a previously persisted guard state.
func (p *Portfolio) Restore(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s.Equity > 0 {
		p.equity = s.Equity
	}
	if s.Peak > p.peak {
		p.peak = s.Peak
	}
	if s.DayAnchor > 0 {
		p.dayAnchor = s.DayAnchor
	}
	p.day = s.Day
	p.suspDaily = s.DailySuspended
	p.suspDrawDn = s.DrawdownSuspended
}
