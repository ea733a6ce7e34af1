package backtest

import (
	"math"
	"time"

	"TrendTrader/internal/model"
)

// Input is everything Analyze needs from a finished simulation.
type Input struct {
	StrategyName  string
	Symbol        string
	InitialEquity float64
	RiskFreeRate  float64 // annualized, e.g. 0.02
	Parameters    model.RiskParameters
	Trades        []model.Trade
	EquityCurve   []model.EquityPoint
}

const tradingDaysPerYear = 252

// Analyze derives the full performance report from a trade list and equity
// curve. It never fails: degenerate inputs yield zeroed statistics, and a run
// with wins but no losses reports a profit factor of +Inf.
func Analyze(in Input) *model.BacktestResult {
	res := &model.BacktestResult{
		StrategyName:  in.StrategyName,
		Symbol:        in.Symbol,
		InitialEquity: in.InitialEquity,
		FinalEquity:   in.InitialEquity,
		Trades:        in.Trades,
		EquityCurve:   in.EquityCurve,
		Parameters:    in.Parameters,
	}
	if len(in.EquityCurve) > 0 {
		res.StartDate = in.EquityCurve[0].Time
		res.EndDate = in.EquityCurve[len(in.EquityCurve)-1].Time
		res.FinalEquity = in.EquityCurve[len(in.EquityCurve)-1].Equity
	}

	if in.InitialEquity > 0 {
		res.TotalReturn = res.FinalEquity/in.InitialEquity - 1
	}
	res.AnnualizedReturn = annualize(res.TotalReturn, res.StartDate, res.EndDate)
	res.SharpeRatio = sharpe(in.EquityCurve, in.RiskFreeRate)
	res.MaxDrawdown = maxDrawdown(in.EquityCurve)
	analyzeTrades(res, in.Trades)
	return res
}

func analyzeTrades(res *model.BacktestResult, trades []model.Trade) {
	if len(trades) == 0 {
		return
	}
	var wins, losses int
	var sumWin, sumLoss float64
	var curWins, curLosses int
	for _, tr := range trades {
		if tr.PnL > 0 {
			wins++
			sumWin += tr.PnL
			curWins++
			curLosses = 0
		} else {
			losses++
			sumLoss += -tr.PnL
			curLosses++
			curWins = 0
		}
		if curWins > res.MaxConsecWins {
			res.MaxConsecWins = curWins
		}
		if curLosses > res.MaxConsecLosses {
			res.MaxConsecLosses = curLosses
		}
	}

	res.WinRate = float64(wins) / float64(len(trades))
	if wins > 0 {
		res.AvgWin = sumWin / float64(wins)
	}
	if losses > 0 {
		res.AvgLoss = sumLoss / float64(losses)
	}
	switch {
	case losses == 0 && wins > 0:
		res.ProfitFactor = math.Inf(1)
	case losses > 0:
		res.ProfitFactor = res.AvgWin / res.AvgLoss
	}
}

// annualize converts a total return over [start, end] to a compound annual
// rate. Periods under one day are treated as one day.
func annualize(totalReturn float64, start, end time.Time) float64 {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return totalReturn
	}
	days := end.Sub(start).Hours() / 24
	if days < 1 {
		days = 1
	}
	growth := 1 + totalReturn
	if growth <= 0 {
		return -1
	}
	return math.Pow(growth, 365/days) - 1
}

func maxDrawdown(curve []model.EquityPoint) float64 {
	var peak, maxDD float64
	for _, pt := range curve {
		if pt.Equity > peak {
			peak = pt.Equity
		}
		if peak > 0 {
			if dd := (peak - pt.Equity) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// sharpe is the annualized Sharpe ratio over bar-to-bar equity returns. A
// flat curve (zero return deviation) reports 0 rather than dividing by zero.
func sharpe(curve []model.EquityPoint, riskFreeRate float64) float64 {
	if len(curve) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev <= 0 {
			continue
		}
		returns = append(returns, curve[i].Equity/prev-1)
	}
	if len(returns) < 2 {
		return 0
	}

	dailyRF := riskFreeRate / tradingDaysPerYear
	var mean float64
	for _, r := range returns {
		mean += r - dailyRF
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := (r - dailyRF) - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)
	if variance <= 0 {
		return 0
	}
	return mean / math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear)
}
