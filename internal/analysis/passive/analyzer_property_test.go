package passive

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trading-journal/internal/models"
)

// Property: for any history, every number in the report is finite and the
// risk score stays in [0,100].
func TestProperty_ReportHasNoNaN(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)
	analyzer := NewAnalyzer(DefaultConfig())

	finite := func(vs ...float64) bool {
		for _, v := range vs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
		return true
	}

	properties.Property("finite metrics", prop.ForAll(
		func(pcts []float64, gaps []int, qtys []int) bool {
			if len(gaps) == 0 || len(qtys) == 0 {
				return true
			}
			var trades []models.Trade
			at := monday
			for i, pct := range pcts {
				gap := time.Duration(gaps[i%len(gaps)]) * time.Minute
				qty := float64(qtys[i%len(qtys)])
				trades = append(trades, closedTrade(string(rune('a'+i%26)), []string{"BTC", "ETH", "SOL"}[i%3], at, gap, qty, pct))
				at = at.Add(gap + time.Duration(i%4)*time.Minute)
			}
			r := analyzer.Analyze(models.NewTradeHistory(trades))

			if r.RiskScore < 0 || r.RiskScore > 100 {
				return false
			}
			if !finite(r.WinRate, r.AvgPnLPct, r.MaxDrawdownPct,
				r.Interval.AvgAfterLossMinutes, r.Interval.AvgAfterWinMinutes, r.Interval.RushRatio,
				r.Sizing.AvgRatioAfterLoss, r.Sizing.AvgRatioAfterWin, r.Hold.Ratio) {
				return false
			}
			if r.ProfitFactor != nil && !finite(*r.ProfitFactor) {
				return false
			}
			for _, s := range r.Symbol.Symbols {
				if !finite(s.WinRate, s.AvgPnLPct) || (s.Sharpe != nil && !finite(*s.Sharpe)) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(-10, 10)),
		gen.SliceOfN(4, gen.IntRange(0, 120)),
		gen.SliceOfN(4, gen.IntRange(0, 5)),
	))

	properties.TestingRun(t)
}
