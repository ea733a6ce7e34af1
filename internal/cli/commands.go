package cli

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"TrendTrader/internal/backtest"
	"TrendTrader/internal/config"
	"TrendTrader/internal/model"
	"TrendTrader/internal/report"
	"TrendTrader/internal/risk"
	"TrendTrader/internal/scheduler"
	"TrendTrader/internal/store"
	"TrendTrader/internal/strategy"
)

// app carries state shared by all subcommands after config loading.
type app struct {
	cfg *config.Config
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "trendtrader",
		Short: "Trend-following signal engine and backtester",
		Long: `TrendTrader scans price history for trend-following entry and exit signals,
sizes positions against ATR-based stops, and replays strategies over
historical data with full risk management.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				path = os.Getenv("CONFIG_PATH")
			}
			if path == "" {
				path = "configs/config.yaml"
			}
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}
			a.cfg = cfg
			return nil
		},
	}

	rootCmd.AddCommand(newBacktestCmd(a))
	rootCmd.AddCommand(newScanCmd(a))
	rootCmd.AddCommand(newSignalCmd(a))
	rootCmd.AddCommand(newResetGuardCmd(a))

	rootCmd.PersistentFlags().String("config", "", "Configuration file path")

	return rootCmd
}

func newBacktestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backtest [SYMBOL...]",
		Short: "Replay the strategy over stored price history",
		Long: `Run the full strategy over historical bars for the given symbols
(configured symbols if none are given) and print a performance report
per symbol. Results are persisted for later comparison.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			symbols := args
			if len(symbols) == 0 {
				symbols = a.cfg.Symbols
			}
			if len(symbols) == 0 {
				return fmt.Errorf("no symbols given and none configured")
			}
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			return runBacktest(a.cfg, symbols, from, to)
		},
	}

	cmd.Flags().String("from", "", "Start date (YYYY-MM-DD), full history if omitted")
	cmd.Flags().String("to", "", "End date (YYYY-MM-DD), today if omitted")

	return cmd
}

func newScanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan configured symbols for signals",
		Long: `Evaluate the latest bar of every configured symbol and persist the
resulting signals. With --serve the scan runs on the configured cron
schedule until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			serve, _ := cmd.Flags().GetBool("serve")
			return runScan(a.cfg, serve)
		},
	}

	cmd.Flags().Bool("serve", false, "Keep running and scan on the cron schedule")

	return cmd
}

func newSignalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "signal SYMBOL",
		Short: "Print the current signal for one symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignal(a.cfg, args[0])
		},
	}
}

func newResetGuardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-guard",
		Short: "Clear a tripped portfolio guard",
		Long: `Clear the persisted daily-loss and drawdown suspensions so scans
resume acting on buy signals. This is an explicit operator action;
suspensions never clear themselves except daily loss at day rollover.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := risk.LoadState(a.cfg.StateFile)
			if err != nil {
				return fmt.Errorf("load guard state: %w", err)
			}
			if !state.DailySuspended && !state.DrawdownSuspended {
				fmt.Println("no guard suspension active")
				return nil
			}
			state.DailySuspended = false
			state.DrawdownSuspended = false
			state.Peak = state.Equity
			state.DayAnchor = state.Equity
			if err := risk.SaveState(a.cfg.StateFile, state); err != nil {
				return fmt.Errorf("save guard state: %w", err)
			}
			fmt.Println("guard suspensions cleared")
			return nil
		},
	}
}

func runBacktest(cfg *config.Config, symbols []string, from, to string) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	series := make(map[string][]model.PriceBar, len(symbols))
	for _, sym := range symbols {
		bars, err := loadRange(st, sym, from, to)
		if err != nil {
			return fmt.Errorf("load bars for %s: %w", sym, err)
		}
		if len(bars) == 0 {
			log.Printf("[WARN] no price history for %s, skipping", sym)
			continue
		}
		series[sym] = bars
	}
	if len(series) == 0 {
		return fmt.Errorf("no price history for any requested symbol")
	}

	engine := backtest.NewEngine(cfg)
	results, runErr := engine.RunAll(series)

	for _, sym := range symbols {
		res, ok := results[sym]
		if !ok {
			continue
		}
		fmt.Println(report.FormatBacktestReport(res))
		if err := st.SaveBacktestResult(res); err != nil {
			log.Printf("[ERROR] save result for %s: %v", sym, err)
		}
	}
	return runErr
}

func runScan(cfg *config.Config, serve bool) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	sched := scheduler.NewScheduler(cfg, st)
	if !serve {
		sched.RunScanNow()
		return nil
	}

	if err := sched.RegisterScan(); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	log.Printf("[INFO] scanning on schedule %q. Press Ctrl+C to stop.", cfg.Schedule.ScanCron)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("[INFO] shutdown signal received, stopping...")
	return nil
}

func runSignal(cfg *config.Config, symbol string) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	bars, err := st.LoadBars(symbol, cfg.Indicators.SMALong*2)
	if err != nil {
		return fmt.Errorf("load bars for %s: %w", symbol, err)
	}
	sig, err := strategy.EvaluateSeries(cfg, bars)
	if err != nil {
		return fmt.Errorf("evaluate %s: %w", symbol, err)
	}
	fmt.Println(report.FormatSignal(sig))
	return nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.Database.SQLitePath == "" {
		return store.Noop{}, nil
	}
	return store.NewSQLiteStore(cfg.Database.SQLitePath, cfg.Strategy.Name)
}

func loadRange(st store.Store, symbol, from, to string) ([]model.PriceBar, error) {
	if from == "" && to == "" {
		return st.LoadBars(symbol, 0)
	}
	fromT := time.Unix(0, 0)
	toT := time.Now()
	var err error
	if from != "" {
		if fromT, err = time.Parse("2006-01-02", from); err != nil {
			return nil, fmt.Errorf("parse --from: %w", err)
		}
	}
	if to != "" {
		if toT, err = time.Parse("2006-01-02", to); err != nil {
			return nil, fmt.Errorf("parse --to: %w", err)
		}
		toT = toT.Add(24*time.Hour - time.Second)
	}
	return st.LoadBarsRange(symbol, fromT, toT)
}
