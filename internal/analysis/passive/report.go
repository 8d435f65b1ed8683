// Package passive mines a trader's closed trades for statistical
// behavioral patterns such as rushing after losses or sizing up to win
// money back.
package passive

import (
	"time"

	"trading-journal/internal/models"
)

// Status tells whether a metric carries a usable value.
type Status string

const (
	StatusOK               Status = "ok"
	StatusInsufficientData Status = "insufficient_data"
	StatusNotApplicable    Status = "not_applicable"
)

// Applicable reports whether the metric's numbers are meaningful.
func (s Status) Applicable() bool {
	return s == StatusOK
}

// IntervalAnalysis compares the gap before the next entry after losses
// and after wins.
type IntervalAnalysis struct {
	Status              Status  `json:"status"`
	AvgAfterLossMinutes float64 `json:"avg_after_loss_minutes"`
	AvgAfterWinMinutes  float64 `json:"avg_after_win_minutes"`
	RushRatio           float64 `json:"rush_ratio"`
	RushingAfterLoss    bool    `json:"rushing_after_loss"`
	SamplesAfterLoss    int     `json:"samples_after_loss"`
	SamplesAfterWin     int     `json:"samples_after_win"`
	Recommendation      string  `json:"recommendation,omitempty"`
}

// SizingAnalysis compares position size changes after losses and wins.
type SizingAnalysis struct {
	Status            Status          `json:"status"`
	AvgRatioAfterLoss float64         `json:"avg_ratio_after_loss"`
	AvgRatioAfterWin  float64         `json:"avg_ratio_after_win"`
	RevengePattern    bool            `json:"revenge_pattern"`
	Severity          models.Severity `json:"severity"`
	Recommendation    string          `json:"recommendation,omitempty"`
}

// HoldAnalysis compares how long winners and losers are held.
type HoldAnalysis struct {
	Status            Status  `json:"status"`
	AvgWinningMinutes float64 `json:"avg_winning_minutes"`
	AvgLosingMinutes  float64 `json:"avg_losing_minutes"`
	Ratio             float64 `json:"ratio"`
	LossAversion      bool    `json:"loss_aversion"`
	Recommendation    string  `json:"recommendation,omitempty"`
}

// Bucket holds win statistics for one hour of day or weekday.
type Bucket struct {
	Index     int     `json:"index"`
	Label     string  `json:"label"`
	Trades    int     `json:"trades"`
	Wins      int     `json:"wins"`
	WinRate   float64 `json:"win_rate"`
	AvgPnLPct float64 `json:"avg_pnl_pct"`
}

// TimeAnalysis buckets results by entry hour and weekday.
type TimeAnalysis struct {
	Status         Status   `json:"status"`
	Hours          []Bucket `json:"hours"`
	Days           []Bucket `json:"days"`
	BestHour       *Bucket  `json:"best_hour,omitempty"`
	WorstHour      *Bucket  `json:"worst_hour,omitempty"`
	BestDay        *Bucket  `json:"best_day,omitempty"`
	WorstDay       *Bucket  `json:"worst_day,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// SymbolStats holds results for one instrument. Sharpe is nil when fewer
// than two trades exist or their PnL does not vary.
type SymbolStats struct {
	Symbol    string   `json:"symbol"`
	Trades    int      `json:"trades"`
	Wins      int      `json:"wins"`
	WinRate   float64  `json:"win_rate"`
	AvgPnLPct float64  `json:"avg_pnl_pct"`
	Sharpe    *float64 `json:"sharpe,omitempty"`
}

// SymbolAnalysis buckets results by instrument.
type SymbolAnalysis struct {
	Status         Status        `json:"status"`
	Symbols        []SymbolStats `json:"symbols"`
	Best           *SymbolStats  `json:"best,omitempty"`
	Worst          *SymbolStats  `json:"worst,omitempty"`
	Recommendation string        `json:"recommendation,omitempty"`
}

// Report is the full passive analysis of a trade history.
type Report struct {
	GeneratedAt    time.Time `json:"generated_at"`
	TotalTrades    int       `json:"total_trades"`
	ClosedTrades   int       `json:"closed_trades"`
	WinRate        float64   `json:"win_rate"`
	ProfitFactor   *float64  `json:"profit_factor,omitempty"`
	AvgPnLPct      float64   `json:"avg_pnl_pct"`
	MaxDrawdownPct float64   `json:"max_drawdown_pct"`

	Interval IntervalAnalysis `json:"interval"`
	Sizing   SizingAnalysis   `json:"sizing"`
	Hold     HoldAnalysis     `json:"hold"`
	Time     TimeAnalysis     `json:"time"`
	Symbol   SymbolAnalysis   `json:"symbol"`

	Recommendations []string `json:"recommendations"`
	RiskScore       int      `json:"risk_score"`
}

// FlagKind names a passive pattern the risk composer can attach to alerts.
type FlagKind string

const (
	FlagRushingAfterLoss FlagKind = "RUSHING_AFTER_LOSS"
	FlagRevengeSizing    FlagKind = "REVENGE_SIZING"
	FlagLossAversion     FlagKind = "LOSS_AVERSION"
)

// Flag is one detected passive pattern.
type Flag struct {
	Kind     FlagKind        `json:"kind"`
	Severity models.Severity `json:"severity"`
	Reason   string          `json:"reason"`
}

// Flags returns the patterns detected in the report.
func (r *Report) Flags() []Flag {
	if r == nil {
		return nil
	}
	var flags []Flag
	if r.Interval.Status.Applicable() && r.Interval.RushingAfterLoss {
		flags = append(flags, Flag{
			Kind:     FlagRushingAfterLoss,
			Severity: models.SeverityMedium,
			Reason:   r.Interval.Recommendation,
		})
	}
	if r.Sizing.Status.Applicable() && r.Sizing.RevengePattern {
		flags = append(flags, Flag{
			Kind:     FlagRevengeSizing,
			Severity: r.Sizing.Severity,
			Reason:   r.Sizing.Recommendation,
		})
	}
	if r.Hold.Status.Applicable() && r.Hold.LossAversion {
		flags = append(flags, Flag{
			Kind:     FlagLossAversion,
			Severity: models.SeverityMedium,
			Reason:   r.Hold.Recommendation,
		})
	}
	return flags
}
