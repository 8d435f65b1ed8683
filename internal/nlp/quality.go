package nlp

import (
	"trading-journal/internal/models"
)

// QualityConfig holds the quality score increments.
type QualityConfig struct {
	Baseline        float64
	VocabularyBonus float64
	DangerPenalty   float64
	FearPenalty     float64
}

// DefaultQualityConfig returns the default increments.
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{
		Baseline:        0.5,
		VocabularyBonus: 0.15,
		DangerPenalty:   0.2,
		FearPenalty:     0.1,
	}
}

// QualityScorer rates how disciplined a note reads, from 0 to 1.
//
// The score is a heuristic proxy for discipline: it rewards
// risk-management vocabulary and penalizes dangerous emotions. It is not a
// calibrated probability and should not be read as one.
type QualityScorer struct {
	cfg     QualityConfig
	matcher *Matcher
	groups  []VocabularyGroup
}

// NewQualityScorer creates a quality scorer using the lexicon's vocabulary.
func NewQualityScorer(cfg QualityConfig, matcher *Matcher) *QualityScorer {
	return &QualityScorer{
		cfg:     cfg,
		matcher: matcher,
		groups:  matcher.lexicon.vocabulary,
	}
}

// Score rates text given the emotions already detected in it.
func (q *QualityScorer) Score(text string, emotions []models.Emotion) float64 {
	return q.score(Normalize(text), emotions)
}

func (q *QualityScorer) score(normalized string, emotions []models.Emotion) float64 {
	score := q.cfg.Baseline
	for _, g := range q.groups {
		for _, term := range g.Terms {
			if q.matcher.contains(normalized, term) {
				score += q.cfg.VocabularyBonus
				break
			}
		}
	}
	for _, e := range emotions {
		switch {
		case e.Type == models.EmotionFear:
			score -= q.cfg.FearPenalty * e.Confidence
		case e.Type.Dangerous():
			score -= q.cfg.DangerPenalty * e.Confidence
		}
	}
	return round4(clamp(score, 0, 1))
}
