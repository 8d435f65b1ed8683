// Package rules holds the real-time behavioral detectors evaluated against
// a trade and the trades that preceded it.
package rules

import (
	"time"

	"trading-journal/internal/models"
)

// Context is everything a detector may look at. It is read-only.
type Context struct {
	Trade models.Trade
	// Recent holds the trades entered before Trade, oldest first.
	Recent   []models.Trade
	Note     *models.AnalysisResult
	Market   models.MarketContext
	Baseline *models.Baseline
}

// NewContext builds a context from a history snapshot. Trades entered at
// or after the evaluated trade, and the trade itself, are excluded.
func NewContext(trade models.Trade, history models.TradeHistory) Context {
	return Context{
		Trade:  trade,
		Recent: history.Without(trade.ID).Before(trade.EntryTime),
	}
}

// Now is the evaluation instant, the trade's entry time.
func (c Context) Now() time.Time {
	return c.Trade.EntryTime
}

// Language is the note language, English when there is no note.
func (c Context) Language() models.Language {
	if c.Note != nil && c.Note.Language == models.LangVietnamese {
		return models.LangVietnamese
	}
	return models.LangEnglish
}

// Signal is a detector's raw output.
type Signal struct {
	Score   int
	Reasons []string
}

func (s *Signal) add(points int, reason string) {
	s.Score += points
	s.Reasons = append(s.Reasons, reason)
}

// Detector scores one behavioral pattern from 0 to 100.
type Detector interface {
	Type() models.AlertType
	Detect(ctx Context) Signal
	// Grade returns the severity for a score and whether it triggers.
	Grade(score int) (models.Severity, bool)
	Recommendation(lang models.Language) string
}

// Result is a graded detector outcome.
type Result struct {
	Type           models.AlertType
	Score          int
	Severity       models.Severity
	Triggered      bool
	Reasons        []string
	Recommendation string
}

// Engine evaluates an explicit, ordered list of detectors.
type Engine struct {
	detectors []Detector
}

// NewEngine creates an engine over detectors.
func NewEngine(detectors ...Detector) *Engine {
	return &Engine{detectors: detectors}
}

// Detectors returns the registered detectors in evaluation order.
func (e *Engine) Detectors() []Detector {
	out := make([]Detector, len(e.detectors))
	copy(out, e.detectors)
	return out
}

// Evaluate runs every detector and returns one result each, in
// registration order. Detectors are independent; several may trigger.
func (e *Engine) Evaluate(ctx Context) []Result {
	results := make([]Result, 0, len(e.detectors))
	for _, d := range e.detectors {
		sig := d.Detect(ctx)
		score := clampScore(sig.Score)
		sev, triggered := d.Grade(score)
		res := Result{
			Type:      d.Type(),
			Score:     score,
			Severity:  sev,
			Triggered: triggered,
			Reasons:   sig.Reasons,
		}
		if triggered {
			res.Recommendation = d.Recommendation(ctx.Language())
		}
		results = append(results, res)
	}
	return results
}

// Triggered filters results down to those that crossed their threshold.
func Triggered(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Triggered {
			out = append(out, r)
		}
	}
	return out
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
