package backtest

import (
	"math"
	"testing"
	"time"

	"TrendTrader/internal/model"
)

func pt(day int, equity float64) model.EquityPoint {
	return model.EquityPoint{
		Time:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		Equity: equity,
	}
}

func trade(pnl float64) model.Trade {
	return model.Trade{Symbol: "TEST", PnL: pnl}
}

func TestAnalyzeNoTrades(t *testing.T) {
	res := Analyze(Input{Symbol: "TEST", InitialEquity: 100000})
	if res.FinalEquity != 100000 {
		t.Errorf("final equity should default to initial, got %f", res.FinalEquity)
	}
	if res.WinRate != 0 || res.ProfitFactor != 0 || res.SharpeRatio != 0 {
		t.Errorf("no-trade run should report zeroed stats: %+v", res)
	}
}

func TestProfitFactor(t *testing.T) {
	res := Analyze(Input{
		InitialEquity: 100000,
		Trades:        []model.Trade{trade(200), trade(-100), trade(300), trade(-50)},
	})
	// avg win 250, avg loss 75
	if math.Abs(res.ProfitFactor-250.0/75.0) > 1e-9 {
		t.Errorf("expected profit factor %f, got %f", 250.0/75.0, res.ProfitFactor)
	}
	if res.WinRate != 0.5 {
		t.Errorf("expected win rate 0.5, got %f", res.WinRate)
	}
	if res.AvgWin != 250 || res.AvgLoss != 75 {
		t.Errorf("avg win/loss: got %f / %f", res.AvgWin, res.AvgLoss)
	}
}

func TestProfitFactorNoLosses(t *testing.T) {
	res := Analyze(Input{
		InitialEquity: 100000,
		Trades:        []model.Trade{trade(200), trade(300)},
	})
	if !math.IsInf(res.ProfitFactor, 1) {
		t.Errorf("all-win run should report +Inf profit factor, got %f", res.ProfitFactor)
	}
	if res.WinRate != 1 {
		t.Errorf("expected win rate 1, got %f", res.WinRate)
	}
}

func TestStreaks(t *testing.T) {
	res := Analyze(Input{
		InitialEquity: 100000,
		Trades: []model.Trade{
			trade(10), trade(20), trade(-5), trade(15), trade(-5), trade(-5), trade(-5),
		},
	})
	if res.MaxConsecWins != 2 {
		t.Errorf("expected max 2 consecutive wins, got %d", res.MaxConsecWins)
	}
	if res.MaxConsecLosses != 3 {
		t.Errorf("expected max 3 consecutive losses, got %d", res.MaxConsecLosses)
	}
}

func TestMaxDrawdown(t *testing.T) {
	res := Analyze(Input{
		InitialEquity: 100000,
		EquityCurve:   []model.EquityPoint{pt(0, 100000), pt(1, 120000), pt(2, 90000), pt(3, 110000)},
	})
	if math.Abs(res.MaxDrawdown-0.25) > 1e-9 {
		t.Errorf("expected max drawdown 0.25, got %f", res.MaxDrawdown)
	}
}

func TestSharpeFlatCurveIsZero(t *testing.T) {
	curve := make([]model.EquityPoint, 10)
	for i := range curve {
		curve[i] = pt(i, 100000)
	}
	res := Analyze(Input{InitialEquity: 100000, EquityCurve: curve})
	if res.SharpeRatio != 0 {
		t.Errorf("flat curve should yield Sharpe 0, got %f", res.SharpeRatio)
	}
}

func TestAnnualizedReturn(t *testing.T) {
	// +10% over exactly one year annualizes to +10%
	res := Analyze(Input{
		InitialEquity: 100000,
		EquityCurve:   []model.EquityPoint{pt(0, 100000), pt(365, 110000)},
	})
	if math.Abs(res.AnnualizedReturn-0.10) > 1e-9 {
		t.Errorf("expected annualized 0.10, got %f", res.AnnualizedReturn)
	}

	// +21% over two years annualizes to +10%
	res = Analyze(Input{
		InitialEquity: 100000,
		EquityCurve:   []model.EquityPoint{pt(0, 100000), pt(730, 121000)},
	})
	if math.Abs(res.AnnualizedReturn-0.10) > 1e-6 {
		t.Errorf("expected annualized 0.10 over two years, got %f", res.AnnualizedReturn)
	}
}
