package backtest

import (
	"errors"
	"testing"
	"time"

	"TrendTrader/internal/config"
	"TrendTrader/internal/model"
)

// testConfig uses short windows so the warm-up is 10 bars.
func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Strategy.Name = "trend_following"
	cfg.Indicators.SMAShort = 3
	cfg.Indicators.SMAMid = 5
	cfg.Indicators.SMALong = 10
	cfg.Indicators.EMAFast = 3
	cfg.Indicators.EMASlow = 5
	cfg.Indicators.MACDSignal = 3
	cfg.Indicators.RSIPeriod = 3
	cfg.Indicators.BollingerPeriod = 5
	cfg.Indicators.BollingerStdDev = 2.0
	cfg.Indicators.ATRPeriod = 3
	cfg.Indicators.VolumePeriod = 5
	cfg.Indicators.BreakoutLookback = 5
	cfg.Trend.AlignmentWeight = 0.5
	cfg.Trend.SlopeWeight = 0.3
	cfg.Trend.DistanceWeight = 0.2
	cfg.Signals.BreakoutConfidence = 75
	cfg.Risk.Level = string(model.RiskModerate)
	cfg.Risk.SizingModel = config.SizingRiskBased
	cfg.Risk.RiskPerTrade = 0.01
	cfg.Risk.KellyCap = 0.25
	cfg.Risk.TrailingMultiplier = 2.0
	cfg.Risk.PyramidAddFraction = 0.25
	cfg.Risk.MaxPyramids = 2
	cfg.Risk.MaxPositionPct = 0.25
	cfg.Risk.DailyLossLimitPct = 0.02
	cfg.Risk.MaxDrawdownPct = 0.15
	cfg.Risk.MaxHoldDays = 30
	cfg.Backtest.InitialEquity = 100000
	return cfg
}

// risingBars climbs two points per day with growing volume, which keeps a
// breakout signal live on every post-warmup bar.
func risingBars(n int) []model.PriceBar {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, n)
	for i := range bars {
		close := 100 + 2*float64(i)
		bars[i] = model.PriceBar{
			Symbol: "TEST",
			Time:   t0.AddDate(0, 0, i),
			Open:   close,
			High:   close + 1,
			Low:    close - 1,
			Close:  close,
			Volume: 1000 + 10*float64(i),
		}
	}
	return bars
}

func TestRunRejectsDegenerateSeries(t *testing.T) {
	eng := NewEngine(testConfig())
	if _, err := eng.Run("TEST", nil); !errors.Is(err, model.ErrDegenerateInput) {
		t.Fatalf("expected ErrDegenerateInput for empty series, got %v", err)
	}
}

func TestRunTrendingMarket(t *testing.T) {
	eng := NewEngine(testConfig())
	res, err := eng.Run("TEST", risingBars(60))
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Trades) == 0 {
		t.Fatal("a steady uptrend should produce trades")
	}
	if res.TotalReturn <= 0 {
		t.Errorf("expected a profitable run, total return %f", res.TotalReturn)
	}
	for i, tr := range res.Trades {
		if tr.PnL <= 0 {
			t.Errorf("trade %d in a monotone uptrend lost money: %+v", i, tr)
		}
		if !tr.ExitTime.After(tr.EntryTime) {
			t.Errorf("trade %d exit not after entry", i)
		}
	}
	if len(res.EquityCurve) != 60 {
		t.Errorf("expected one equity point per bar, got %d", len(res.EquityCurve))
	}
}

func TestRunDeterministic(t *testing.T) {
	bars := risingBars(60)
	eng := NewEngine(testConfig())

	first, err := eng.Run("TEST", bars)
	if err != nil {
		t.Fatal(err)
	}
	second, err := eng.Run("TEST", bars)
	if err != nil {
		t.Fatal(err)
	}

	if first.FinalEquity != second.FinalEquity {
		t.Errorf("final equity differs: %f vs %f", first.FinalEquity, second.FinalEquity)
	}
	if len(first.Trades) != len(second.Trades) {
		t.Fatalf("trade count differs: %d vs %d", len(first.Trades), len(second.Trades))
	}
	for i := range first.Trades {
		if first.Trades[i] != second.Trades[i] {
			t.Errorf("trade %d differs: %+v vs %+v", i, first.Trades[i], second.Trades[i])
		}
	}
	for i := range first.EquityCurve {
		if first.EquityCurve[i] != second.EquityCurve[i] {
			t.Errorf("equity point %d differs", i)
		}
	}
}

func TestGapDownFillsAtOpen(t *testing.T) {
	bars := risingBars(21)
	// overnight collapse far below any stop
	t0 := bars[20].Time.AddDate(0, 0, 1)
	bars = append(bars, model.PriceBar{
		Symbol: "TEST",
		Time:   t0,
		Open:   50,
		High:   51,
		Low:    49,
		Close:  50,
		Volume: 5000,
	})

	eng := NewEngine(testConfig())
	res, err := eng.Run("TEST", bars)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trades) == 0 {
		t.Fatal("expected trades")
	}

	last := res.Trades[len(res.Trades)-1]
	if last.ExitReason != model.ExitStopLoss {
		t.Fatalf("expected stop_loss exit on the gap, got %s", last.ExitReason)
	}
	// the fill is the opening print, never the (higher) stop level
	if last.ExitPrice != 50 {
		t.Errorf("gap through the stop must fill at the open: got %f", last.ExitPrice)
	}
}

func TestDailyLossGuardFlattens(t *testing.T) {
	cfg := testConfig()
	// tight enough that a two-point pullback trips the daily guard before
	// the stop is anywhere near
	cfg.Risk.DailyLossLimitPct = 0.003

	bars := risingBars(15) // entry fires on the last bar at close 128
	pullbackDay := bars[14].Time.AddDate(0, 0, 1)
	bars = append(bars,
		model.PriceBar{
			Symbol: "TEST",
			Time:   pullbackDay,
			Open:   127,
			High:   128,
			Low:    125.5, // stays above the 123.5 stop
			Close:  126,
			Volume: 1150,
		},
		// a fresh breakout later the same day must not re-enter
		model.PriceBar{
			Symbol: "TEST",
			Time:   pullbackDay.Add(6 * time.Hour),
			Open:   127,
			High:   133,
			Low:    126,
			Close:  132,
			Volume: 5000,
		},
	)

	eng := NewEngine(cfg)
	res, err := eng.Run("TEST", bars)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Trades) != 1 {
		t.Fatalf("expected exactly the flattened trade, got %d: %+v", len(res.Trades), res.Trades)
	}
	tr := res.Trades[0]
	if tr.ExitReason != model.ExitGuard {
		t.Fatalf("expected guard_flatten exit, got %s", tr.ExitReason)
	}
	if tr.ExitPrice != 126 {
		t.Errorf("guard flatten should fill at the bar close: got %f", tr.ExitPrice)
	}
	if !tr.ExitTime.Equal(pullbackDay) {
		t.Errorf("flatten should happen on the pullback bar, got %s", tr.ExitTime)
	}
	if tr.PnL >= 0 {
		t.Errorf("guard flatten on a pullback should realize a loss, got %f", tr.PnL)
	}
}

func TestFirstTouchUsesAdjustedLevels(t *testing.T) {
	// factor 0.5: the adjusted range is half the raw prints
	bar := model.PriceBar{Open: 200, High: 210, Low: 188, Close: 200, AdjClose: 100}
	gapBar := model.PriceBar{Open: 180, High: 210, Low: 178, Close: 200, AdjClose: 100}

	tests := []struct {
		name       string
		bar        model.PriceBar
		stop, tp   float64
		wantPrice  float64
		wantReason model.ExitReason
		wantHit    bool
	}{
		{"adjusted low touches stop", bar, 95, 200, 95, model.ExitStopLoss, true},
		{"adjusted open gaps below stop", gapBar, 95, 200, 90, model.ExitStopLoss, true},
		{"adjusted high touches target", bar, 80, 104, 104, model.ExitTakeProfit, true},
		{"raw range would touch, adjusted does not", bar, 90, 110, 0, "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := &model.Position{StopLoss: tc.stop, TakeProfit: tc.tp}
			price, reason, hit := firstTouch(pos, tc.bar)
			if hit != tc.wantHit || reason != tc.wantReason || price != tc.wantPrice {
				t.Errorf("got (%f, %q, %v), want (%f, %q, %v)",
					price, reason, hit, tc.wantPrice, tc.wantReason, tc.wantHit)
			}
		})
	}
}

func TestEndOfDataLiquidation(t *testing.T) {
	eng := NewEngine(testConfig())
	res, err := eng.Run("TEST", risingBars(18))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Trades) == 0 {
		t.Fatal("expected at least the forced liquidation trade")
	}

	last := res.Trades[len(res.Trades)-1]
	if last.ExitReason != model.ExitEndOfData {
		t.Fatalf("expected end_of_data exit, got %s", last.ExitReason)
	}
	finalPoint := res.EquityCurve[len(res.EquityCurve)-1]
	if finalPoint.Equity != res.FinalEquity {
		t.Errorf("final equity point %f should match result %f", finalPoint.Equity, res.FinalEquity)
	}
}

func TestRunAllIsolatesSymbols(t *testing.T) {
	eng := NewEngine(testConfig())
	series := map[string][]model.PriceBar{
		"AAA": relabel(risingBars(60), "AAA"),
		"BAD": nil,
		"CCC": relabel(risingBars(60), "CCC"),
	}

	results, err := eng.RunAll(series)
	if err == nil {
		t.Fatal("expected an error for the empty series")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 successful results, got %d", len(results))
	}

	// identical inputs give identical outcomes regardless of goroutine order
	if results["AAA"].FinalEquity != results["CCC"].FinalEquity {
		t.Errorf("identical series diverged: %f vs %f",
			results["AAA"].FinalEquity, results["CCC"].FinalEquity)
	}
}

func relabel(bars []model.PriceBar, symbol string) []model.PriceBar {
	for i := range bars {
		bars[i].Symbol = symbol
	}
	return bars
}
