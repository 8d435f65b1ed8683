package nlp

import (
	"math"
	"sort"

	"trading-journal/internal/models"
)

// ScorerConfig holds the tunable constants of the sentiment/emotion scorer.
type ScorerConfig struct {
	// ConfidencePerMatch is added per matched term from the note's own
	// language table. Confidence saturates at 1.
	ConfidencePerMatch float64
	// CriticalBoost multiplies the primary-language confidence of
	// critical emotions (FOMO, REVENGE, MANIPULATION), so one clear match
	// clears FlagThreshold. Values below 1 are treated as 1.
	CriticalBoost float64
	// SecondaryConfidencePerMatch applies to terms from the other table.
	SecondaryConfidencePerMatch float64
	// SecondaryConfidenceCap bounds confidence from the other table.
	SecondaryConfidenceCap float64
	// FlagThreshold is the confidence a dangerous emotion must exceed to
	// become a behavioral flag.
	FlagThreshold float64
	// LabelThreshold separates positive/negative from neutral.
	LabelThreshold float64
	// ClassifierWeight is the share of the final sentiment given to the
	// pretrained classifier when one answers.
	ClassifierWeight float64
}

// DefaultScorerConfig returns the default scorer constants.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		ConfidencePerMatch:          0.3,
		CriticalBoost:               1.2,
		SecondaryConfidencePerMatch: 0.2,
		SecondaryConfidenceCap:      0.9,
		FlagThreshold:               0.3,
		LabelThreshold:              0.3,
		ClassifierWeight:            0.5,
	}
}

// Scorer turns keyword matches into sentiment and emotions.
type Scorer struct {
	cfg ScorerConfig
}

// NewScorer creates a scorer.
func NewScorer(cfg ScorerConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Sentiment sums weight times match count over all categories and clamps
// the total to [-1, 1].
func (s *Scorer) Sentiment(matches []CategoryMatch) float64 {
	var score float64
	for _, m := range matches {
		score += m.Weight * float64(m.Count())
	}
	return round4(clamp(score, -1, 1))
}

// Label maps a sentiment score to its label. The thresholds are exclusive.
func (s *Scorer) Label(score float64) models.SentimentLabel {
	switch {
	case score > s.cfg.LabelThreshold:
		return models.SentimentPositive
	case score < -s.cfg.LabelThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// Emotions builds one Emotion per matched category, in reporting order.
// Emotions are not mutually exclusive.
func (s *Scorer) Emotions(matches []CategoryMatch) []models.Emotion {
	emotions := make([]models.Emotion, 0, len(matches))
	for _, m := range matches {
		if m.Count() == 0 {
			continue
		}
		var conf float64
		if m.Primary {
			conf = math.Min(1, float64(m.Count())*s.cfg.ConfidencePerMatch)
			if m.Emotion.Critical() && s.cfg.CriticalBoost > 1 {
				conf = math.Min(1, conf*s.cfg.CriticalBoost)
			}
		} else {
			conf = math.Min(s.cfg.SecondaryConfidenceCap, float64(m.Count())*s.cfg.SecondaryConfidencePerMatch)
		}
		emotions = append(emotions, models.Emotion{
			Type:         m.Emotion,
			Confidence:   round4(conf),
			MatchedTerms: append([]string(nil), m.Terms...),
		})
	}
	sort.SliceStable(emotions, func(i, j int) bool {
		return emotions[i].Type.Order() < emotions[j].Type.Order()
	})
	return emotions
}

// Flags returns the dangerous emotions whose confidence exceeds the flag
// threshold.
func (s *Scorer) Flags(emotions []models.Emotion) []string {
	flags := []string{}
	for _, e := range emotions {
		if e.Type.Dangerous() && e.Confidence > s.cfg.FlagThreshold {
			flags = append(flags, string(e.Type))
		}
	}
	return flags
}

// Blend mixes the keyword sentiment with a classifier answer. The
// classifier never decides emotions, only nudges polarity.
func (s *Scorer) Blend(keyword float64, res ClassifierResult) float64 {
	var signed float64
	switch res.Label {
	case models.SentimentPositive:
		signed = res.Confidence
	case models.SentimentNegative:
		signed = -res.Confidence
	}
	w := clamp(s.cfg.ClassifierWeight, 0, 1)
	return round4(clamp((1-w)*keyword+w*signed, -1, 1))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// round4 rounds to four decimals so repeated float additions compare stably.
func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
