package passive

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"trading-journal/internal/models"
)

// Config holds the passive analyzer thresholds.
type Config struct {
	// MinClosedTrades below which every metric reports insufficient data.
	MinClosedTrades int
	// RushRatio flags rushing when the mean gap after losses is below
	// this fraction of the mean gap after wins.
	RushRatio float64
	// RevengeSizeRatio flags revenge sizing when the mean size ratio after
	// losses exceeds it.
	RevengeSizeRatio float64
	// HighSizeRatio raises revenge sizing to HIGH severity.
	HighSizeRatio float64
	// LossAversionRatio flags loss aversion when losers are held this
	// many times longer than winners.
	LossAversionRatio float64
	// MinBucketTrades is the sample a bucket needs to be ranked best/worst.
	MinBucketTrades int
	// Location is the time zone for hour and weekday buckets. Nil means UTC.
	Location *time.Location
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		MinClosedTrades:   2,
		RushRatio:         0.5,
		RevengeSizeRatio:  1.3,
		HighSizeRatio:     1.5,
		LossAversionRatio: 2,
		MinBucketTrades:   1,
	}
}

// Analyzer computes passive reports. It holds no mutable state.
type Analyzer struct {
	cfg Config
	now func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClock sets the clock used for Report.GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// NewAnalyzer creates a passive analyzer.
func NewAnalyzer(cfg Config, opts ...Option) *Analyzer {
	if cfg.MinClosedTrades < 2 {
		cfg.MinClosedTrades = 2
	}
	if cfg.MinBucketTrades < 1 {
		cfg.MinBucketTrades = 1
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	a := &Analyzer{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze builds the report for a history. Only closed trades are used for
// the behavioral metrics.
func (a *Analyzer) Analyze(history models.TradeHistory) *Report {
	closed := history.Closed()
	r := &Report{
		GeneratedAt:  a.now().UTC(),
		TotalTrades:  history.Len(),
		ClosedTrades: len(closed),
	}

	if len(closed) < a.cfg.MinClosedTrades {
		r.Interval.Status = StatusInsufficientData
		r.Sizing.Status = StatusInsufficientData
		r.Sizing.Severity = models.SeverityInfo
		r.Hold.Status = StatusInsufficientData
		r.Time.Status = StatusInsufficientData
		r.Symbol.Status = StatusInsufficientData
		r.Recommendations = []string{"Not enough closed trades to analyze yet."}
		return r
	}

	a.summarize(r, closed)
	r.Interval = a.intervals(closed)
	r.Sizing = a.sizing(closed)
	r.Hold = a.hold(closed)
	r.Time = a.timePatterns(closed)
	r.Symbol = a.symbols(closed)
	r.Recommendations = recommendations(r)
	r.RiskScore = riskScore(r)
	return r
}

func (a *Analyzer) summarize(r *Report, closed []models.Trade) {
	var wins int
	var grossProfit, grossLoss float64
	pnls := make([]float64, 0, len(closed))

	for _, t := range closed {
		if t.IsWin() {
			wins++
		}
		if *t.PnL > 0 {
			grossProfit += *t.PnL
		} else {
			grossLoss -= *t.PnL
		}
		pnls = append(pnls, t.PnLPercent())
	}

	r.WinRate = round(float64(wins)/float64(len(closed)), 4)
	if grossLoss > 0 {
		pf := round(grossProfit/grossLoss, 2)
		r.ProfitFactor = &pf
	}
	r.AvgPnLPct = round(stat.Mean(pnls, nil), 2)
	r.MaxDrawdownPct = round(maxDrawdown(pnls), 2)
}

// maxDrawdown is the largest peak-to-trough fall of the cumulative PnL%
// curve, which starts at zero.
func maxDrawdown(pnls []float64) float64 {
	var cum, peak, dd float64
	for _, p := range pnls {
		cum += p
		if cum > peak {
			peak = cum
		}
		if peak-cum > dd {
			dd = peak - cum
		}
	}
	return dd
}

func (a *Analyzer) intervals(closed []models.Trade) IntervalAnalysis {
	var afterLoss, afterWin []float64
	for i := 1; i < len(closed); i++ {
		prev, cur := closed[i-1], closed[i]
		if prev.ExitTime == nil {
			continue
		}
		gap := cur.EntryTime.Sub(*prev.ExitTime).Minutes()
		if gap < 0 {
			// Overlapping positions.
			continue
		}
		switch {
		case prev.IsLoss():
			afterLoss = append(afterLoss, gap)
		case prev.IsWin():
			afterWin = append(afterWin, gap)
		}
	}

	res := IntervalAnalysis{
		Status:           StatusNotApplicable,
		SamplesAfterLoss: len(afterLoss),
		SamplesAfterWin:  len(afterWin),
	}
	if len(afterLoss) == 0 || len(afterWin) == 0 {
		return res
	}
	avgLoss := stat.Mean(afterLoss, nil)
	avgWin := stat.Mean(afterWin, nil)
	res.AvgAfterLossMinutes = round(avgLoss, 1)
	res.AvgAfterWinMinutes = round(avgWin, 1)
	if avgWin <= 0 {
		return res
	}

	ratio := avgLoss / avgWin
	res.Status = StatusOK
	res.RushRatio = round(ratio, 2)
	res.RushingAfterLoss = avgLoss < a.cfg.RushRatio*avgWin
	if res.RushingAfterLoss {
		res.Recommendation = fmt.Sprintf(
			"You re-enter %.0f%% faster after a loss (%.0f vs %.0f minutes). Wait at least 30 minutes after a losing trade.",
			(1-ratio)*100, avgLoss, avgWin)
	}
	return res
}

func (a *Analyzer) sizing(closed []models.Trade) SizingAnalysis {
	var afterLoss, afterWin []float64
	for i := 1; i < len(closed); i++ {
		prev, cur := closed[i-1], closed[i]
		if prev.Quantity <= 0 || cur.Quantity <= 0 {
			continue
		}
		ratio := cur.Quantity / prev.Quantity
		switch {
		case prev.IsLoss():
			afterLoss = append(afterLoss, ratio)
		case prev.IsWin():
			afterWin = append(afterWin, ratio)
		}
	}

	res := SizingAnalysis{Status: StatusNotApplicable, Severity: models.SeverityInfo}
	if len(afterLoss) == 0 {
		return res
	}

	avgLoss := stat.Mean(afterLoss, nil)
	avgWin := 1.0
	if len(afterWin) > 0 {
		avgWin = stat.Mean(afterWin, nil)
	}

	res.Status = StatusOK
	res.AvgRatioAfterLoss = round(avgLoss, 2)
	res.AvgRatioAfterWin = round(avgWin, 2)
	res.RevengePattern = avgLoss > a.cfg.RevengeSizeRatio
	switch {
	case avgLoss > a.cfg.HighSizeRatio:
		res.Severity = models.SeverityHigh
	case avgLoss > a.cfg.RevengeSizeRatio:
		res.Severity = models.SeverityMedium
	}
	if res.RevengePattern {
		res.Recommendation = fmt.Sprintf(
			"Revenge sizing: position size grows %.0f%% after a loss. Keep size fixed after losing trades.",
			(avgLoss-1)*100)
	}
	return res
}

func (a *Analyzer) hold(closed []models.Trade) HoldAnalysis {
	var winning, losing []float64
	for _, t := range closed {
		d, ok := t.HoldDuration()
		if !ok || d <= 0 {
			continue
		}
		switch {
		case t.IsWin():
			winning = append(winning, d.Minutes())
		case t.IsLoss():
			losing = append(losing, d.Minutes())
		}
	}

	res := HoldAnalysis{Status: StatusNotApplicable}
	if len(winning) == 0 || len(losing) == 0 {
		return res
	}

	avgWin := stat.Mean(winning, nil)
	avgLoss := stat.Mean(losing, nil)
	ratio := avgLoss / avgWin

	res.Status = StatusOK
	res.AvgWinningMinutes = round(avgWin, 1)
	res.AvgLosingMinutes = round(avgLoss, 1)
	res.Ratio = round(ratio, 2)
	res.LossAversion = ratio > a.cfg.LossAversionRatio
	if res.LossAversion {
		res.Recommendation = fmt.Sprintf(
			"Loss aversion: losing trades are held %.1fx longer than winners. Cut losses faster.", ratio)
	}
	return res
}

type bucketAcc struct {
	trades, wins int
	pnls         []float64
}

func (a *Analyzer) timePatterns(closed []models.Trade) TimeAnalysis {
	hours := make(map[int]*bucketAcc)
	days := make(map[int]*bucketAcc)
	for _, t := range closed {
		at := t.EntryTime.In(a.cfg.Location)
		addToBucket(hours, at.Hour(), t)
		addToBucket(days, int(at.Weekday()), t)
	}

	res := TimeAnalysis{
		Status: StatusOK,
		Hours:  buildBuckets(hours, func(i int) string { return fmt.Sprintf("%02d:00", i) }),
		Days:   buildBuckets(days, func(i int) string { return time.Weekday(i).String() }),
	}
	res.BestHour = a.pickBucket(res.Hours, true)
	res.WorstHour = a.pickBucket(res.Hours, false)
	res.BestDay = a.pickBucket(res.Days, true)
	res.WorstDay = a.pickBucket(res.Days, false)

	if res.BestHour != nil && res.WorstHour != nil && res.BestHour.Index != res.WorstHour.Index {
		res.Recommendation = fmt.Sprintf("Best entry hour is %s (%.0f%% wins), worst is %s (%.0f%% wins).",
			res.BestHour.Label, res.BestHour.WinRate*100, res.WorstHour.Label, res.WorstHour.WinRate*100)
	}
	return res
}

func addToBucket(m map[int]*bucketAcc, key int, t models.Trade) {
	acc, ok := m[key]
	if !ok {
		acc = &bucketAcc{}
		m[key] = acc
	}
	acc.trades++
	if t.IsWin() {
		acc.wins++
	}
	acc.pnls = append(acc.pnls, t.PnLPercent())
}

func buildBuckets(m map[int]*bucketAcc, label func(int) string) []Bucket {
	buckets := make([]Bucket, 0, len(m))
	for idx, acc := range m {
		buckets = append(buckets, Bucket{
			Index:     idx,
			Label:     label(idx),
			Trades:    acc.trades,
			Wins:      acc.wins,
			WinRate:   float64(acc.wins) / float64(acc.trades),
			AvgPnLPct: round(stat.Mean(acc.pnls, nil), 2),
		})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Index < buckets[j].Index })
	return buckets
}

// pickBucket returns the best (or worst) bucket by win rate. Ties go to the
// larger sample, then to the earlier index.
func (a *Analyzer) pickBucket(buckets []Bucket, best bool) *Bucket {
	var pick *Bucket
	for i := range buckets {
		b := &buckets[i]
		if b.Trades < a.cfg.MinBucketTrades {
			continue
		}
		if pick == nil || beats(b.WinRate, b.Trades, pick.WinRate, pick.Trades, best) {
			pick = b
		}
	}
	if pick == nil {
		return nil
	}
	cp := *pick
	return &cp
}

func beats(rate float64, n int, curRate float64, curN int, best bool) bool {
	if rate != curRate {
		if best {
			return rate > curRate
		}
		return rate < curRate
	}
	return n > curN
}

func (a *Analyzer) symbols(closed []models.Trade) SymbolAnalysis {
	groups := make(map[string][]models.Trade)
	for _, t := range closed {
		groups[t.Symbol] = append(groups[t.Symbol], t)
	}
	names := make([]string, 0, len(groups))
	for s := range groups {
		names = append(names, s)
	}
	sort.Strings(names)

	res := SymbolAnalysis{Status: StatusOK}
	for _, name := range names {
		trades := groups[name]
		pnls := make([]float64, 0, len(trades))
		var wins int
		for _, t := range trades {
			if t.IsWin() {
				wins++
			}
			pnls = append(pnls, t.PnLPercent())
		}
		st := SymbolStats{
			Symbol:    name,
			Trades:    len(trades),
			Wins:      wins,
			WinRate:   float64(wins) / float64(len(trades)),
			AvgPnLPct: round(stat.Mean(pnls, nil), 2),
		}
		if len(pnls) >= 2 {
			if sd := stat.StdDev(pnls, nil); sd > 0 {
				sharpe := round(stat.Mean(pnls, nil)/sd, 2)
				st.Sharpe = &sharpe
			}
		}
		res.Symbols = append(res.Symbols, st)
	}

	res.Best = a.pickSymbol(res.Symbols, true)
	res.Worst = a.pickSymbol(res.Symbols, false)
	if res.Best != nil && res.Worst != nil && res.Best.Symbol != res.Worst.Symbol {
		res.Recommendation = fmt.Sprintf("Focus on %s (%.0f%% wins); review your edge on %s (%.0f%% wins).",
			res.Best.Symbol, res.Best.WinRate*100, res.Worst.Symbol, res.Worst.WinRate*100)
	}
	return res
}

func (a *Analyzer) pickSymbol(stats []SymbolStats, best bool) *SymbolStats {
	var pick *SymbolStats
	for i := range stats {
		s := &stats[i]
		if s.Trades < a.cfg.MinBucketTrades {
			continue
		}
		if pick == nil || beats(s.WinRate, s.Trades, pick.WinRate, pick.Trades, best) {
			pick = s
		}
	}
	if pick == nil {
		return nil
	}
	cp := *pick
	return &cp
}

func recommendations(r *Report) []string {
	var recs []string
	for _, rec := range []string{
		r.Interval.Recommendation,
		r.Sizing.Recommendation,
		r.Hold.Recommendation,
		r.Time.Recommendation,
		r.Symbol.Recommendation,
	} {
		if rec != "" {
			recs = append(recs, rec)
		}
	}
	if len(recs) == 0 {
		recs = append(recs, "No serious behavioral issues found. Keep following your rules.")
	}
	return recs
}

func riskScore(r *Report) int {
	score := 0
	if r.Interval.Status.Applicable() && r.Interval.RushingAfterLoss {
		score += 25
	}
	if r.Sizing.Status.Applicable() && r.Sizing.RevengePattern {
		switch r.Sizing.Severity {
		case models.SeverityHigh:
			score += 35
		case models.SeverityMedium:
			score += 25
		default:
			score += 15
		}
	}
	if r.Hold.Status.Applicable() && r.Hold.LossAversion {
		score += 20
	}
	if score > 100 {
		score = 100
	}
	return score
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
