package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"TrendTrader/internal/model"
)

// FormatBacktestReport renders one backtest result as a plain-text console
// report.
func FormatBacktestReport(res *model.BacktestResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("=== Backtest: %s / %s ===\n", res.StrategyName, res.Symbol))
	b.WriteString(fmt.Sprintf("Period:            %s to %s\n",
		res.StartDate.Format("2006-01-02"), res.EndDate.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Initial equity:    $%s\n", humanize.CommafWithDigits(res.InitialEquity, 2)))
	b.WriteString(fmt.Sprintf("Final equity:      $%s\n", humanize.CommafWithDigits(res.FinalEquity, 2)))
	b.WriteString(fmt.Sprintf("Total return:      %+.2f%%\n", res.TotalReturn*100))
	b.WriteString(fmt.Sprintf("Annualized:        %+.2f%%\n", res.AnnualizedReturn*100))
	b.WriteString(fmt.Sprintf("Sharpe ratio:      %.2f\n", res.SharpeRatio))
	b.WriteString(fmt.Sprintf("Max drawdown:      %.2f%%\n", res.MaxDrawdown*100))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Trades:            %d\n", len(res.Trades)))
	if len(res.Trades) > 0 {
		b.WriteString(fmt.Sprintf("Win rate:          %.1f%%\n", res.WinRate*100))
		b.WriteString(fmt.Sprintf("Profit factor:     %s\n", formatProfitFactor(res.ProfitFactor)))
		b.WriteString(fmt.Sprintf("Avg win / loss:    $%s / $%s\n",
			humanize.CommafWithDigits(res.AvgWin, 2), humanize.CommafWithDigits(res.AvgLoss, 2)))
		b.WriteString(fmt.Sprintf("Max streaks:       %d wins, %d losses\n",
			res.MaxConsecWins, res.MaxConsecLosses))
		b.WriteString("\n")
		b.WriteString(formatExitBreakdown(res.Trades))
	}

	b.WriteString(fmt.Sprintf("\nRisk level: %s | stop %.1fx ATR | trail %.1fx ATR | sizing: %s\n",
		res.Parameters.RiskLevel, res.Parameters.StopLossATRMultiplier,
		res.Parameters.TrailingStopMultiplier, res.Parameters.SizingModel))
	return b.String()
}

// FormatSignal renders one scan signal as a single log-friendly line.
func FormatSignal(sig *model.Signal) string {
	return fmt.Sprintf("%s %s [%s] strength=%.0f price=%.2f | %s",
		sig.Time.Format("2006-01-02"), sig.Symbol, sig.Type, sig.Strength, sig.Price, sig.Rationale)
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "inf (no losing trades)"
	}
	return fmt.Sprintf("%.2f", pf)
}

func formatExitBreakdown(trades []model.Trade) string {
	counts := make(map[model.ExitReason]int)
	for _, t := range trades {
		counts[t.ExitReason]++
	}
	reasons := make([]string, 0, len(counts))
	for r := range counts {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)

	var b strings.Builder
	b.WriteString("Exits:\n")
	for _, r := range reasons {
		b.WriteString(fmt.Sprintf("  %-14s %d\n", r, counts[model.ExitReason(r)]))
	}
	return b.String()
}
