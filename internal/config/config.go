package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"TrendTrader/internal/model"
)

// Sizing model selectors. Validated exhaustively so configuration errors
// surface before any bar is processed.
const (
	SizingRiskBased = "risk_based"
	SizingKelly     = "kelly"
)

// Config holds all application configuration.
type Config struct {
	Strategy struct {
		Name string `yaml:"name"`
	} `yaml:"strategy"`
	Symbols    []string `yaml:"symbols"`
	Indicators struct {
		SMAShort         int     `yaml:"sma_short"`
		SMAMid           int     `yaml:"sma_mid"`
		SMALong          int     `yaml:"sma_long"`
		EMAFast          int     `yaml:"ema_fast"`
		EMASlow          int     `yaml:"ema_slow"`
		MACDSignal       int     `yaml:"macd_signal"`
		RSIPeriod        int     `yaml:"rsi_period"`
		BollingerPeriod  int     `yaml:"bollinger_period"`
		BollingerStdDev  float64 `yaml:"bollinger_std_dev"`
		ATRPeriod        int     `yaml:"atr_period"`
		VolumePeriod     int     `yaml:"volume_period"`
		BreakoutLookback int     `yaml:"breakout_lookback"`
	} `yaml:"indicators"`
	Trend struct {
		AlignmentWeight float64 `yaml:"alignment_weight"`
		SlopeWeight     float64 `yaml:"slope_weight"`
		DistanceWeight  float64 `yaml:"distance_weight"`
	} `yaml:"trend"`
	Signals struct {
		BreakoutConfidence float64 `yaml:"breakout_confidence"`
	} `yaml:"signals"`
	Risk struct {
		Level              string  `yaml:"level"`
		SizingModel        string  `yaml:"sizing_model"`
		RiskPerTrade       float64 `yaml:"risk_per_trade"`
		KellyCap           float64 `yaml:"kelly_cap"`
		TrailingMultiplier float64 `yaml:"trailing_multiplier"`
		PyramidAddFraction float64 `yaml:"pyramid_add_fraction"`
		MaxPyramids        int     `yaml:"max_pyramids"`
		MaxPositionPct     float64 `yaml:"max_position_pct"`
		DailyLossLimitPct  float64 `yaml:"daily_loss_limit_pct"`
		MaxDrawdownPct     float64 `yaml:"max_drawdown_pct"`
		MaxHoldDays        int     `yaml:"max_hold_days"`
	} `yaml:"risk"`
	Backtest struct {
		InitialEquity float64 `yaml:"initial_equity"`
		RiskFreeRate  float64 `yaml:"risk_free_rate"`
	} `yaml:"backtest"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"`
	} `yaml:"schedule"`
	StateFile string `yaml:"state_file"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SCAN_CRON"); v != "" {
		cfg.Schedule.ScanCron = v
	}
	if v := os.Getenv("RISK_LEVEL"); v != "" {
		cfg.Risk.Level = v
	}
	if v := os.Getenv("INITIAL_EQUITY"); v != "" {
		if eq, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Backtest.InitialEquity = eq
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	ind := &c.Indicators
	if ind.SMAShort == 0 {
		ind.SMAShort = 20
	}
	if ind.SMAMid == 0 {
		ind.SMAMid = 50
	}
	if ind.SMALong == 0 {
		ind.SMALong = 200
	}
	if ind.EMAFast == 0 {
		ind.EMAFast = 12
	}
	if ind.EMASlow == 0 {
		ind.EMASlow = 26
	}
	if ind.MACDSignal == 0 {
		ind.MACDSignal = 9
	}
	if ind.RSIPeriod == 0 {
		ind.RSIPeriod = 14
	}
	if ind.BollingerPeriod == 0 {
		ind.BollingerPeriod = 20
	}
	if ind.BollingerStdDev == 0 {
		ind.BollingerStdDev = 2.0
	}
	if ind.ATRPeriod == 0 {
		ind.ATRPeriod = 14
	}
	if ind.VolumePeriod == 0 {
		ind.VolumePeriod = 20
	}
	if ind.BreakoutLookback == 0 {
		ind.BreakoutLookback = 20
	}

	if c.Trend.AlignmentWeight == 0 && c.Trend.SlopeWeight == 0 && c.Trend.DistanceWeight == 0 {
		c.Trend.AlignmentWeight = 0.5
		c.Trend.SlopeWeight = 0.3
		c.Trend.DistanceWeight = 0.2
	}
	if c.Signals.BreakoutConfidence == 0 {
		c.Signals.BreakoutConfidence = 75
	}

	r := &c.Risk
	if r.Level == "" {
		r.Level = string(model.RiskModerate)
	}
	if r.SizingModel == "" {
		r.SizingModel = SizingRiskBased
	}
	if r.RiskPerTrade == 0 {
		r.RiskPerTrade = 0.01
	}
	if r.KellyCap == 0 {
		r.KellyCap = 0.25
	}
	if r.TrailingMultiplier == 0 {
		r.TrailingMultiplier = 2.0
	}
	if r.PyramidAddFraction == 0 {
		r.PyramidAddFraction = 0.25
	}
	if r.MaxPyramids == 0 {
		r.MaxPyramids = 2
	}
	if r.MaxPositionPct == 0 {
		r.MaxPositionPct = 0.25
	}
	if r.DailyLossLimitPct == 0 {
		r.DailyLossLimitPct = 0.02
	}
	if r.MaxDrawdownPct == 0 {
		r.MaxDrawdownPct = 0.15
	}
	if r.MaxHoldDays == 0 {
		r.MaxHoldDays = 30
	}

	if c.Strategy.Name == "" {
		c.Strategy.Name = "trend_following"
	}
	if c.Backtest.InitialEquity == 0 {
		c.Backtest.InitialEquity = 100000
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/trendtrader.db"
	}
	if c.Schedule.ScanCron == "" {
		c.Schedule.ScanCron = "0 30 22 * * 1-5"
	}
	if c.StateFile == "" {
		c.StateFile = "data/portfolio_state.json"
	}
}

// Validate checks every parameter domain before any bar processing starts.
func (c *Config) Validate() error {
	switch model.RiskLevel(c.Risk.Level) {
	case model.RiskConservative, model.RiskModerate, model.RiskAggressive:
	default:
		return fmt.Errorf("risk.level %q is not one of conservative/moderate/aggressive", c.Risk.Level)
	}
	switch c.Risk.SizingModel {
	case SizingRiskBased, SizingKelly:
	default:
		return fmt.Errorf("risk.sizing_model %q is not one of %s/%s", c.Risk.SizingModel, SizingRiskBased, SizingKelly)
	}

	ind := c.Indicators
	if ind.SMAShort <= 0 || ind.SMAMid <= 0 || ind.SMALong <= 0 {
		return fmt.Errorf("indicator SMA periods must be positive")
	}
	if ind.SMAShort >= ind.SMAMid || ind.SMAMid >= ind.SMALong {
		return fmt.Errorf("SMA periods must be strictly increasing (short < mid < long)")
	}
	if ind.EMAFast >= ind.EMASlow {
		return fmt.Errorf("ema_fast must be less than ema_slow")
	}
	if ind.MACDSignal <= 0 || ind.RSIPeriod <= 0 || ind.ATRPeriod <= 0 ||
		ind.BollingerPeriod <= 0 || ind.VolumePeriod <= 0 || ind.BreakoutLookback <= 0 {
		return fmt.Errorf("indicator periods must be positive")
	}
	if ind.BollingerStdDev <= 0 {
		return fmt.Errorf("bollinger_std_dev must be positive")
	}

	t := c.Trend
	if t.AlignmentWeight < 0 || t.SlopeWeight < 0 || t.DistanceWeight < 0 {
		return fmt.Errorf("trend weights must be non-negative")
	}
	if t.AlignmentWeight+t.SlopeWeight+t.DistanceWeight == 0 {
		return fmt.Errorf("trend weights must not all be zero")
	}
	if c.Signals.BreakoutConfidence < 0 || c.Signals.BreakoutConfidence > 100 {
		return fmt.Errorf("signals.breakout_confidence must be within [0,100]")
	}

	r := c.Risk
	if r.RiskPerTrade <= 0 || r.RiskPerTrade > 1 {
		return fmt.Errorf("risk.risk_per_trade must be in (0,1]")
	}
	if r.KellyCap <= 0 || r.KellyCap > 1 {
		return fmt.Errorf("risk.kelly_cap must be in (0,1]")
	}
	if r.TrailingMultiplier <= 0 {
		return fmt.Errorf("risk.trailing_multiplier must be positive")
	}
	if r.PyramidAddFraction < 0.25 || r.PyramidAddFraction > 0.5 {
		return fmt.Errorf("risk.pyramid_add_fraction must be within [0.25, 0.50]")
	}
	if r.MaxPyramids < 0 {
		return fmt.Errorf("risk.max_pyramids must be non-negative")
	}
	if r.MaxPositionPct <= 0 || r.MaxPositionPct > 1 {
		return fmt.Errorf("risk.max_position_pct must be in (0,1]")
	}
	if r.DailyLossLimitPct <= 0 || r.DailyLossLimitPct > 1 {
		return fmt.Errorf("risk.daily_loss_limit_pct must be in (0,1]")
	}
	if r.MaxDrawdownPct <= 0 || r.MaxDrawdownPct > 1 {
		return fmt.Errorf("risk.max_drawdown_pct must be in (0,1]")
	}
	if r.MaxHoldDays <= 0 {
		return fmt.Errorf("risk.max_hold_days must be positive")
	}

	if c.Backtest.InitialEquity <= 0 {
		return fmt.Errorf("backtest.initial_equity must be positive")
	}
	return nil
}

// RiskParameters materializes the risk configuration into the immutable
// per-run parameter set that travels with backtest results.
func (c *Config) RiskParameters() model.RiskParameters {
	level := model.RiskLevel(c.Risk.Level)
	stopMult := StopMultiplier(level)
	return model.RiskParameters{
		RiskLevel:               level,
		StopLossATRMultiplier:   stopMult,
		TakeProfitATRMultiplier: stopMult * 2, // 2:1 reward:risk
		TrailingStopMultiplier:  c.Risk.TrailingMultiplier,
		PyramidAddFraction:      c.Risk.PyramidAddFraction,
		MaxPyramids:             c.Risk.MaxPyramids,
		MaxPositionPct:          c.Risk.MaxPositionPct,
		MaxDailyLossPct:         c.Risk.DailyLossLimitPct,
		MaxDrawdownPct:          c.Risk.MaxDrawdownPct,
		MaxHoldDays:             c.Risk.MaxHoldDays,
		SizingModel:             c.Risk.SizingModel,
	}
}

// StopMultiplier maps a risk level to its stop-loss ATR multiplier.
func StopMultiplier(level model.RiskLevel) float64 {
	switch level {
	case model.RiskConservative:
		return 2.0
	case model.RiskAggressive:
		return 1.0
	default:
		return 1.5
	}
}
