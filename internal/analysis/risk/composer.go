// Package risk turns detector results and passive flags into ordered
// alerts and one overall risk score.
package risk

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"trading-journal/internal/analysis/passive"
	"trading-journal/internal/analysis/rules"
	"trading-journal/internal/models"
)

// CriticalFloor is the lowest overall score when any alert is CRITICAL.
const CriticalFloor = 80

// Weights scale each alert's score by its severity in the overall score.
var Weights = map[models.Severity]float64{
	models.SeverityInfo:     0.5,
	models.SeverityMedium:   1,
	models.SeverityHigh:     1.5,
	models.SeverityCritical: 2,
}

// Passive flags reinforce the alerts they corroborate.
var passiveTargets = map[passive.FlagKind][]models.AlertType{
	passive.FlagRushingAfterLoss: {models.AlertRevenge, models.AlertTilt},
	passive.FlagRevengeSizing:    {models.AlertRevenge},
	passive.FlagLossAversion:     {models.AlertTilt},
}

const (
	passiveBoost       = 5
	extraAlertPoints   = 5
	passiveScoreFactor = 0.1
)

// Assessment is the composed outcome for one trade.
type Assessment struct {
	Alerts           []models.Alert
	RiskScore        int
	HasCritical      bool
	HasHigh          bool
	ShouldBlockTrade bool
}

// Composer builds assessments. It holds no per-call state.
type Composer struct {
	now   func() time.Time
	newID func() string
}

// Option configures a Composer.
type Option func(*Composer)

// WithClock sets the time source for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) { c.now = now }
}

// WithIDGenerator sets the alert ID source.
func WithIDGenerator(fn func() string) Option {
	return func(c *Composer) { c.newID = fn }
}

// NewComposer creates a composer.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose builds one alert per triggered result, folds in the passive
// report's flags, sorts the alerts by severity then score and computes the
// overall score. report may be nil.
func (c *Composer) Compose(trade models.Trade, results []rules.Result, report *passive.Report) Assessment {
	created := c.now()
	var alerts []models.Alert
	for _, r := range rules.Triggered(results) {
		alerts = append(alerts, models.Alert{
			ID:             c.newID(),
			UserID:         trade.UserID,
			TradeID:        trade.ID,
			Type:           r.Type,
			Severity:       r.Severity,
			Score:          r.Score,
			Reasons:        append([]string(nil), r.Reasons...),
			Recommendation: r.Recommendation,
			CreatedAt:      created,
		})
	}

	for _, f := range report.Flags() {
		for _, target := range passiveTargets[f.Kind] {
			for i := range alerts {
				if alerts[i].Type != target {
					continue
				}
				alerts[i].Reasons = append(alerts[i].Reasons, f.Reason)
				alerts[i].Score = min(100, alerts[i].Score+passiveBoost)
			}
		}
	}

	SortAlerts(alerts)

	a := Assessment{Alerts: alerts}
	if alerts == nil {
		a.Alerts = []models.Alert{}
	}
	highs := 0
	for _, al := range alerts {
		switch al.Severity {
		case models.SeverityCritical:
			a.HasCritical = true
		case models.SeverityHigh:
			a.HasHigh = true
			highs++
		}
	}
	a.ShouldBlockTrade = a.HasCritical || highs >= 2

	passiveScore := 0
	if report != nil {
		passiveScore = report.RiskScore
	}
	a.RiskScore = Score(alerts, passiveScore)
	return a
}

// SortAlerts orders alerts by severity, then score, both descending.
func SortAlerts(alerts []models.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := alerts[i].Severity.Rank(), alerts[j].Severity.Rank()
		if ri != rj {
			return ri > rj
		}
		return alerts[i].Score > alerts[j].Score
	})
}

// Score is the overall risk in [0,100]: the severity-weighted mean of the
// alert scores, plus a little for each extra alert and a tenth of the
// passive score. No alerts scores 0. Any CRITICAL alert floors it at
// CriticalFloor.
func Score(alerts []models.Alert, passiveScore int) int {
	if len(alerts) == 0 {
		return 0
	}
	var sum, weights float64
	critical := false
	for _, a := range alerts {
		w := Weights[a.Severity]
		sum += w * float64(a.Score)
		weights += w
		if a.Severity == models.SeverityCritical {
			critical = true
		}
	}
	var score float64
	if weights > 0 {
		score = sum / weights
	}
	score += float64(extraAlertPoints * (len(alerts) - 1))
	score += passiveScoreFactor * float64(passiveScore)

	out := int(math.Round(math.Max(0, math.Min(100, score))))
	if critical && out < CriticalFloor {
		out = CriticalFloor
	}
	return out
}
