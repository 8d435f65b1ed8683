package nlp

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/models"
)

type fixedClassifier struct {
	res ClassifierResult
	err error
}

func (f fixedClassifier) Classify(context.Context, string, models.Language) (ClassifierResult, error) {
	return f.res, f.err
}

func newTestEngine(c Classifier) *Engine {
	cfg := DefaultEngineConfig()
	if c != nil {
		cfg.Classifier = c
	}
	return NewEngine(cfg, zerolog.Nop())
}

func TestEngine_FOMONote(t *testing.T) {
	res := newTestEngine(nil).Analyze(context.Background(), "BTC breakout! Phải vào ngay kẻo lỡ! All in luôn!")

	assert.Equal(t, models.LangVietnamese, res.Language)

	fomo, ok := res.Emotion(models.EmotionFOMO)
	require.True(t, ok)
	assert.Greater(t, fomo.Confidence, 0.3)
	assert.InDelta(t, 0.72, fomo.Confidence, 1e-9)
	assert.Equal(t, []string{"phải vào ngay", "all in"}, fomo.MatchedTerms)

	greed, ok := res.Emotion(models.EmotionGreed)
	require.True(t, ok)
	assert.InDelta(t, 0.3, greed.Confidence, 1e-9)

	assert.Equal(t, []string{"FOMO"}, res.BehavioralFlags)
	assert.Less(t, res.QualityScore, 0.5)
	assert.InDelta(t, 0.296, res.QualityScore, 1e-9)
	assert.Equal(t, -1.0, res.SentimentScore)
	assert.Equal(t, models.SentimentNegative, res.SentimentLabel)
	assert.Len(t, res.Warnings, 2)
}

func TestEngine_DisciplinedNote(t *testing.T) {
	res := newTestEngine(nil).Analyze(context.Background(), "Entry theo plan, RR 1:3, đặt SL 2%, theo trend lớn.")

	assert.Equal(t, models.LangVietnamese, res.Language)
	for _, e := range res.Emotions {
		assert.False(t, e.Type.Dangerous(), "unexpected dangerous emotion %s", e.Type)
	}
	assert.Empty(t, res.BehavioralFlags)
	assert.Empty(t, res.Warnings)
	assert.Greater(t, res.QualityScore, 0.6)
	assert.InDelta(t, 0.95, res.QualityScore, 1e-9)

	rational, ok := res.Emotion(models.EmotionRational)
	require.True(t, ok)
	assert.Equal(t, []string{"rr", "sl"}, rational.MatchedTerms)
	assert.True(t, res.HasEmotion(models.EmotionConfident))
	assert.True(t, res.HasEmotion(models.EmotionDiscipline))
	assert.Equal(t, models.SentimentPositive, res.SentimentLabel)
}

func TestEngine_NegationRoundTrip(t *testing.T) {
	e := newTestEngine(nil)
	ctx := context.Background()

	plain := e.Analyze(ctx, "FOMO")
	fomo, ok := plain.Emotion(models.EmotionFOMO)
	require.True(t, ok)
	assert.Greater(t, fomo.Confidence, 0.3)
	assert.True(t, plain.HasFlag(models.EmotionFOMO))

	negated := e.Analyze(ctx, "không FOMO")
	assert.False(t, negated.HasFlag(models.EmotionFOMO))
	assert.False(t, negated.HasEmotion(models.EmotionFOMO))
	assert.True(t, negated.HasEmotion(models.EmotionDiscipline))

	english := e.Analyze(ctx, "No FOMO today, following plan")
	assert.False(t, english.HasEmotion(models.EmotionFOMO))
	assert.True(t, english.HasEmotion(models.EmotionDiscipline))
}

func TestEngine_EmptyText(t *testing.T) {
	e := newTestEngine(nil)
	for _, text := range []string{"", "   ", "\n\t"} {
		res := e.Analyze(context.Background(), text)
		assert.Equal(t, models.EmptyAnalysis(), res)
		assert.Equal(t, models.LangUnknown, res.Language)
		assert.Equal(t, 0.5, res.QualityScore)
		assert.Equal(t, models.SentimentNeutral, res.SentimentLabel)
	}
}

func TestEngine_LanguageHint(t *testing.T) {
	e := newTestEngine(nil)
	res := e.AnalyzeWithHint(context.Background(), "fomo", models.LangVietnamese)
	assert.Equal(t, models.LangVietnamese, res.Language)

	res = e.AnalyzeWithHint(context.Background(), "Phải vào ngay", "fr")
	assert.Equal(t, models.LangVietnamese, res.Language)
}

func TestEngine_ClassifierBlend(t *testing.T) {
	note := "Entry theo plan, RR 1:3, đặt SL 2%, theo trend lớn."
	ctx := context.Background()

	keywordOnly := newTestEngine(nil).Analyze(ctx, note)
	require.Equal(t, 1.0, keywordOnly.SentimentScore)

	agree := newTestEngine(fixedClassifier{res: ClassifierResult{Label: models.SentimentPositive, Confidence: 0.8}}).Analyze(ctx, note)
	assert.InDelta(t, 0.9, agree.SentimentScore, 1e-9)
	assert.Equal(t, keywordOnly.Emotions, agree.Emotions, "classifier must not change emotions")

	disagree := newTestEngine(fixedClassifier{res: ClassifierResult{Label: models.SentimentNegative, Confidence: 1}}).Analyze(ctx, note)
	assert.InDelta(t, 0.0, disagree.SentimentScore, 1e-9)
	assert.Equal(t, models.SentimentNeutral, disagree.SentimentLabel)

	failing := newTestEngine(fixedClassifier{err: errors.New("boom")}).Analyze(ctx, note)
	assert.Equal(t, keywordOnly, failing)
}

func TestQualityScorer_FearPenaltyIsLighter(t *testing.T) {
	q := NewQualityScorer(DefaultQualityConfig(), NewMatcher(DefaultLexicon()))

	fear := q.Score("hello", []models.Emotion{{Type: models.EmotionFear, Confidence: 1}})
	fomo := q.Score("hello", []models.Emotion{{Type: models.EmotionFOMO, Confidence: 1}})
	rational := q.Score("hello", []models.Emotion{{Type: models.EmotionRational, Confidence: 1}})

	assert.InDelta(t, 0.4, fear, 1e-9)
	assert.InDelta(t, 0.3, fomo, 1e-9)
	assert.InDelta(t, 0.5, rational, 1e-9)
}

func TestQualityScorer_Clamps(t *testing.T) {
	q := NewQualityScorer(DefaultQualityConfig(), NewMatcher(DefaultLexicon()))

	high := q.Score("plan: stop loss, take profit, RR 1:2, position size 1%", nil)
	assert.Equal(t, 1.0, high)

	var emotions []models.Emotion
	for _, e := range []models.EmotionType{models.EmotionFOMO, models.EmotionGreed, models.EmotionRevenge, models.EmotionManipulation} {
		emotions = append(emotions, models.Emotion{Type: e, Confidence: 1})
	}
	assert.Equal(t, 0.0, q.Score("no plan", emotions))
}

func TestScorer_LabelThresholdsAreExclusive(t *testing.T) {
	s := NewScorer(DefaultScorerConfig())
	assert.Equal(t, models.SentimentNeutral, s.Label(0.3))
	assert.Equal(t, models.SentimentNeutral, s.Label(-0.3))
	assert.Equal(t, models.SentimentPositive, s.Label(0.31))
	assert.Equal(t, models.SentimentNegative, s.Label(-0.31))
}

func TestScorer_ConfidenceSaturates(t *testing.T) {
	s := NewScorer(DefaultScorerConfig())
	terms := []string{"a", "b", "c", "d", "e"}

	emotions := s.Emotions([]CategoryMatch{
		{Emotion: models.EmotionFOMO, Weight: -0.8, Primary: true, Terms: terms},
		{Emotion: models.EmotionFear, Weight: -0.6, Primary: false, Terms: terms},
	})
	require.Len(t, emotions, 2)
	assert.Equal(t, 1.0, emotions[0].Confidence)
	assert.Equal(t, 0.9, emotions[1].Confidence)
}

func TestScorer_CriticalBoost(t *testing.T) {
	s := NewScorer(DefaultScorerConfig())
	emotions := s.Emotions([]CategoryMatch{
		{Emotion: models.EmotionRevenge, Weight: -0.9, Primary: true, Terms: []string{"revenge trade"}},
		{Emotion: models.EmotionGreed, Weight: -0.7, Primary: true, Terms: []string{"x2"}},
		{Emotion: models.EmotionManipulation, Weight: -0.5, Primary: false, Terms: []string{"pump"}},
	})
	require.Len(t, emotions, 3)
	byType := map[models.EmotionType]float64{}
	for _, e := range emotions {
		byType[e.Type] = e.Confidence
	}
	assert.InDelta(t, 0.36, byType[models.EmotionRevenge], 1e-9)
	assert.InDelta(t, 0.3, byType[models.EmotionGreed], 1e-9)
	// Other-language matches are not boosted.
	assert.InDelta(t, 0.2, byType[models.EmotionManipulation], 1e-9)

	unboosted := DefaultScorerConfig()
	unboosted.CriticalBoost = 0
	assert.InDelta(t, 0.3, NewScorer(unboosted).Emotions([]CategoryMatch{
		{Emotion: models.EmotionRevenge, Primary: true, Terms: []string{"revenge trade"}},
	})[0].Confidence, 1e-9)
}

func TestEngine_SingleCriticalTermIsFlagged(t *testing.T) {
	e := newTestEngine(nil)
	tests := []struct {
		note    string
		emotion models.EmotionType
	}{
		{"FOMO", models.EmotionFOMO},
		{"revenge trade", models.EmotionRevenge},
		{"gỡ lại", models.EmotionRevenge},
	}
	for _, tt := range tests {
		res := e.Analyze(context.Background(), tt.note)
		assert.True(t, res.HasFlag(tt.emotion), tt.note)
	}
}

func TestWarnings(t *testing.T) {
	emotions := []models.Emotion{
		{Type: models.EmotionFOMO, Confidence: 0.3},
		{Type: models.EmotionFear, Confidence: 0.2},
		{Type: models.EmotionRational, Confidence: 0.9},
	}
	en := Warnings(models.LangEnglish, emotions)
	require.Len(t, en, 1)
	assert.Contains(t, en[0], "FOMO")

	assert.Equal(t, en, Warnings(models.LangUnknown, emotions))
	assert.NotEqual(t, en, Warnings(models.LangVietnamese, emotions))
}
