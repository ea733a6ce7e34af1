package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"TrendTrader/internal/config"
	"TrendTrader/internal/model"
	"TrendTrader/internal/report"
	"TrendTrader/internal/risk"
	"TrendTrader/internal/store"
	"TrendTrader/internal/strategy"
)

// Scheduler runs the periodic signal scan. Each scan loads history for every
// symbol in the scan universe, evaluates the latest bar, and persists the
// resulting signal. Symbols are scanned sequentially; one symbol failing
// never aborts the rest.
type Scheduler struct {
	cron      *cron.Cron
	cfg       *config.Config
	store     store.Store
	portfolio *risk.Portfolio
}

// NewScheduler builds the scan daemon. Portfolio guard state is restored from
// the configured state file, so a suspension recorded before a restart keeps
// blocking entries afterwards.
func NewScheduler(cfg *config.Config, st store.Store) *Scheduler {
	portfolio := risk.NewPortfolio(cfg.Backtest.InitialEquity, cfg.RiskParameters())
	if state, err := risk.LoadState(cfg.StateFile); err != nil {
		log.Printf("[WARN] load guard state: %v", err)
	} else {
		portfolio.Restore(*state)
	}
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		cfg:       cfg,
		store:     st,
		portfolio: portfolio,
	}
}

// RegisterScan installs the scan job on the configured cron expression.
func (s *Scheduler) RegisterScan() error {
	if _, err := s.cron.AddFunc(s.cfg.Schedule.ScanCron, s.scan); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunScanNow executes the scan immediately (manual trigger).
func (s *Scheduler) RunScanNow() {
	s.scan()
}

func (s *Scheduler) scan() {
	// Roll the guard into the current day. A daily-loss suspension from a
	// previous day clears here; a drawdown suspension does not.
	s.portfolio.MarkToMarket(time.Now(), s.portfolio.Equity())
	suspended := s.portfolio.Suspended()
	if suspended {
		log.Println("[WARN] portfolio guard tripped: buy signals will be reported but not persisted as actionable")
	}

	symbols, err := s.universe()
	if err != nil {
		log.Printf("[ERROR] resolve scan universe: %v", err)
	}
	log.Printf("[INFO] running scan for %d symbols", len(symbols))

	// Twice the longest lookback leaves slack for market holidays.
	barsNeeded := s.cfg.Indicators.SMALong * 2

	for _, symbol := range symbols {
		bars, err := s.store.LoadBars(symbol, barsNeeded)
		if err != nil {
			log.Printf("[ERROR] load bars for %s: %v", symbol, err)
			continue
		}

		sig, err := strategy.EvaluateSeries(s.cfg, bars)
		if err != nil {
			log.Printf("[WARN] evaluate %s: %v", symbol, err)
			continue
		}

		if suspended && sig.Type.IsBuy() {
			held := *sig
			held.Type = model.SignalHold
			held.Rationale = fmt.Sprintf("portfolio guard active, suppressing %s: %s", sig.Type, sig.Rationale)
			sig = &held
		}

		log.Printf("[INFO] %s", report.FormatSignal(sig))
		if err := s.store.SaveSignal(sig); err != nil {
			log.Printf("[ERROR] save signal for %s: %v", symbol, err)
		}
	}

	snap := s.portfolio.Snapshot()
	if err := risk.SaveState(s.cfg.StateFile, &snap); err != nil {
		log.Printf("[ERROR] save guard state: %v", err)
	}
}

// universe resolves the symbols to scan: the configured list, or every symbol
// in the etf_sectors reference table when none are configured.
func (s *Scheduler) universe() ([]string, error) {
	if len(s.cfg.Symbols) > 0 {
		return s.cfg.Symbols, nil
	}
	symbols, err := s.store.ListETFSymbols()
	if err != nil {
		return nil, fmt.Errorf("list etf universe: %w", err)
	}
	return symbols, nil
}
