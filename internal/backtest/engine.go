package backtest

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"TrendTrader/internal/config"
	"TrendTrader/internal/model"
	"TrendTrader/internal/risk"
	"TrendTrader/internal/strategy"
)

// Engine replays a historical bar series through the full signal pipeline and
// simulates position management bar by bar. A run is strictly chronological
// and deterministic: the same series and configuration always produce the
// same trades and equity curve.
type Engine struct {
	cfg *config.Config
}

func NewEngine(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// run-scoped simulation state for one symbol.
type simulation struct {
	manager   *risk.Manager
	sizer     *risk.Sizer
	portfolio *risk.Portfolio

	cash   float64
	pos    *model.Position
	trades []model.Trade
	curve  []model.EquityPoint

	wins    int
	sumWin  float64
	sumLoss float64
}

// Run backtests a single symbol. At most one position state transition
// happens per bar, with closes taking precedence over adds, adds over
// trailing, and trailing over new entries.
func (e *Engine) Run(symbol string, bars []model.PriceBar) (*model.BacktestResult, error) {
	if err := model.ValidateSeries(bars); err != nil {
		return nil, fmt.Errorf("backtest %s: %w", symbol, err)
	}

	params := e.cfg.RiskParameters()
	sim := &simulation{
		manager:   risk.NewManager(params),
		sizer:     risk.NewSizer(e.cfg),
		portfolio: risk.NewPortfolio(e.cfg.Backtest.InitialEquity, params),
		cash:      e.cfg.Backtest.InitialEquity,
	}
	pipeline := strategy.NewPipeline(e.cfg)

	for _, bar := range bars {
		ind, tr, sig, ready := pipeline.Step(bar)
		price := bar.Price()
		closed := false

		if sim.pos != nil {
			if exitPrice, reason, hit := firstTouch(sim.pos, bar); hit {
				sim.close(bar, exitPrice, reason)
				closed = true
			} else if sim.manager.TimeExceeded(sim.pos, bar.Time) {
				sim.close(bar, price, model.ExitTimeLimit)
				closed = true
			} else if ready && sig.Type.IsSell() {
				sim.close(bar, price, model.ExitReversal)
				closed = true
			} else if ready && sig.Type.IsBuy() && sim.manager.CanPyramid(sim.pos, price, tr.Strength) {
				if err := sim.pyramid(bar, price, ind.ATR, tr.Strength); err != nil {
					return nil, err
				}
			} else if ready {
				sim.manager.Trail(sim.pos, price, ind.ATR)
			}
		}

		equity := sim.markEquity(price)
		if ev := sim.portfolio.MarkToMarket(bar.Time, equity); ev != nil && sim.pos != nil {
			sim.close(bar, price, model.ExitGuard)
			closed = true
			equity = sim.cash
		}
		sim.curve = append(sim.curve, model.EquityPoint{Time: bar.Time, Equity: equity})

		if sim.pos == nil && !closed && ready && sig.Type.IsBuy() &&
			!sim.portfolio.Suspended() && ind.ATR > 0 {
			if err := sim.open(bar, price, ind.ATR, tr.Strength, params); err != nil {
				return nil, err
			}
		}
	}

	if sim.pos != nil {
		last := bars[len(bars)-1]
		sim.close(last, last.Price(), model.ExitEndOfData)
		sim.curve[len(sim.curve)-1].Equity = sim.cash
	}

	return Analyze(Input{
		StrategyName:  e.cfg.Strategy.Name,
		Symbol:        symbol,
		InitialEquity: e.cfg.Backtest.InitialEquity,
		RiskFreeRate:  e.cfg.Backtest.RiskFreeRate,
		Parameters:    params,
		Trades:        sim.trades,
		EquityCurve:   sim.curve,
	}), nil
}

// RunAll backtests each symbol on its own goroutine. Symbols never share
// state, so parallelism cannot change any per-symbol outcome. Results are
// keyed by symbol; symbols whose run failed are reported in the joined error
// and absent from the map.
func (e *Engine) RunAll(series map[string][]model.PriceBar) (map[string]*model.BacktestResult, error) {
	symbols := make([]string, 0, len(series))
	for sym := range series {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]*model.BacktestResult, len(symbols))
		errs    []error
	)
	for _, sym := range symbols {
		wg.Add(1)
		go func(sym string, bars []model.PriceBar) {
			defer wg.Done()
			res, err := e.Run(sym, bars)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[WARN] backtest failed for %s: %v", sym, err)
				errs = append(errs, err)
				return
			}
			results[sym] = res
		}(sym, series[sym])
	}
	wg.Wait()
	return results, errors.Join(errs...)
}

// firstTouch resolves stop and take-profit fills against the bar's range,
// checking the open first so gaps fill at the opening print, never at a
// better price than the market offered. The stop is checked before the
// target. Levels come from the adjusted close series, so fills compare
// against the adjusted open/low/high rather than the raw prints.
func firstTouch(pos *model.Position, bar model.PriceBar) (float64, model.ExitReason, bool) {
	open, low, high := bar.AdjOpen(), bar.AdjLow(), bar.AdjHigh()
	switch {
	case open <= pos.StopLoss:
		return open, model.ExitStopLoss, true
	case low <= pos.StopLoss:
		return pos.StopLoss, model.ExitStopLoss, true
	case open >= pos.TakeProfit:
		return open, model.ExitTakeProfit, true
	case high >= pos.TakeProfit:
		return pos.TakeProfit, model.ExitTakeProfit, true
	}
	return 0, "", false
}

func (s *simulation) open(bar model.PriceBar, price, atr, strength float64, params model.RiskParameters) error {
	stop := price - atr*params.StopLossATRMultiplier
	stats := s.stats()
	size, err := s.sizer.Size(s.markEquity(price), price, stop, stats)
	if errors.Is(err, model.ErrInsufficientHistory) {
		size, err = s.sizer.RiskBasedSize(s.markEquity(price), price, stop)
	}
	if err != nil {
		return fmt.Errorf("size %s at %s: %w", bar.Symbol, bar.Time.Format("2006-01-02"), err)
	}
	if size <= 0 {
		return nil
	}
	pos, err := s.manager.OpenPosition(bar.Symbol, bar.Time, price, size, atr, strength)
	if err != nil {
		return err
	}
	s.cash -= size * price
	s.pos = pos
	return nil
}

func (s *simulation) pyramid(bar model.PriceBar, price, atr, strength float64) error {
	before := s.pos.TotalSize()
	if err := s.manager.Pyramid(s.pos, bar.Time, price, atr, strength); err != nil {
		return err
	}
	s.cash -= (s.pos.TotalSize() - before) * price
	return nil
}

func (s *simulation) close(bar model.PriceBar, exitPrice float64, reason model.ExitReason) {
	size := s.pos.TotalSize()
	pnl := (exitPrice - s.pos.BlendedEntry()) * size
	s.cash += size * exitPrice
	s.trades = append(s.trades, model.Trade{
		Symbol:     s.pos.Symbol,
		EntryTime:  s.pos.EntryTime,
		ExitTime:   bar.Time,
		EntryPrice: s.pos.BlendedEntry(),
		ExitPrice:  exitPrice,
		Size:       size,
		PnL:        pnl,
		ExitReason: reason,
	})
	if pnl > 0 {
		s.wins++
		s.sumWin += pnl
	} else {
		s.sumLoss += -pnl
	}
	s.pos = nil
}

func (s *simulation) markEquity(price float64) float64 {
	if s.pos == nil {
		return s.cash
	}
	return s.cash + s.pos.TotalSize()*price
}

// stats summarizes closed trades so far, nil until the first close.
func (s *simulation) stats() *risk.TradeStats {
	n := len(s.trades)
	if n == 0 {
		return nil
	}
	st := &risk.TradeStats{
		Trades:  n,
		WinRate: float64(s.wins) / float64(n),
	}
	if s.wins > 0 {
		st.AvgWin = s.sumWin / float64(s.wins)
	}
	if losses := n - s.wins; losses > 0 {
		st.AvgLoss = s.sumLoss / float64(losses)
	}
	return st
}
