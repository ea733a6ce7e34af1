package report

import (
	"math"
	"strings"
	"testing"
	"time"

	"TrendTrader/internal/model"
)

func TestFormatBacktestReport(t *testing.T) {
	res := &model.BacktestResult{
		StrategyName:     "trend_following",
		Symbol:           "SPY",
		StartDate:        time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		InitialEquity:    100000,
		FinalEquity:      124500.55,
		TotalReturn:      0.245,
		AnnualizedReturn: 0.246,
		SharpeRatio:      1.42,
		MaxDrawdown:      0.083,
		WinRate:          0.55,
		ProfitFactor:     1.8,
		AvgWin:           900,
		AvgLoss:          500,
		MaxConsecWins:    4,
		MaxConsecLosses:  2,
		Trades: []model.Trade{
			{ExitReason: model.ExitTakeProfit},
			{ExitReason: model.ExitTakeProfit},
			{ExitReason: model.ExitStopLoss},
		},
		Parameters: model.RiskParameters{
			RiskLevel:              model.RiskModerate,
			StopLossATRMultiplier:  1.5,
			TrailingStopMultiplier: 2.0,
			SizingModel:            "risk_based",
		},
	}

	out := FormatBacktestReport(res)
	for _, want := range []string{
		"trend_following / SPY",
		"2023-01-03 to 2024-01-02",
		"124,500.55",
		"+24.50%",
		"1.42",
		"take_profit    2",
		"stop_loss      1",
		"moderate",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestFormatProfitFactorInf(t *testing.T) {
	if got := formatProfitFactor(math.Inf(1)); !strings.Contains(got, "no losing trades") {
		t.Errorf("expected the +Inf sentinel to be spelled out, got %q", got)
	}
}

func TestFormatSignal(t *testing.T) {
	sig := &model.Signal{
		Symbol:    "QQQ",
		Time:      time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Type:      model.SignalStrongBuy,
		Strength:  85,
		Price:     440.12,
		Rationale: "strong_buy: full bullish MA stack",
	}
	out := FormatSignal(sig)
	for _, want := range []string{"2024-06-03", "QQQ", "strong_buy", "85", "440.12"} {
		if !strings.Contains(out, want) {
			t.Errorf("signal line missing %q: %s", want, out)
		}
	}
}
