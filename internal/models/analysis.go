package models

// Language identifies a supported note language.
type Language string

const (
	LangVietnamese Language = "vi"
	LangEnglish    Language = "en"
	LangUnknown    Language = "unknown"
)

// EmotionType enumerates detectable emotions.
type EmotionType string

const (
	EmotionFOMO           EmotionType = "FOMO"
	EmotionFear           EmotionType = "FEAR"
	EmotionGreed          EmotionType = "GREED"
	EmotionRevenge        EmotionType = "REVENGE"
	EmotionOverconfidence EmotionType = "OVERCONFIDENCE"
	EmotionManipulation   EmotionType = "MANIPULATION"
	EmotionRational       EmotionType = "RATIONAL"
	EmotionConfident      EmotionType = "CONFIDENT"
	EmotionDiscipline     EmotionType = "DISCIPLINE"
)

// EmotionTypes lists every emotion in reporting order.
var EmotionTypes = []EmotionType{
	EmotionFOMO,
	EmotionFear,
	EmotionGreed,
	EmotionRevenge,
	EmotionOverconfidence,
	EmotionManipulation,
	EmotionRational,
	EmotionConfident,
	EmotionDiscipline,
}

// Valid reports whether e is a known emotion.
func (e EmotionType) Valid() bool {
	return e.Order() >= 0
}

// Order returns the reporting position of e, or -1 if unknown.
func (e EmotionType) Order() int {
	for i, t := range EmotionTypes {
		if t == e {
			return i
		}
	}
	return -1
}

// Dangerous reports whether the emotion is risk-indicative.
func (e EmotionType) Dangerous() bool {
	switch e {
	case EmotionFOMO, EmotionFear, EmotionGreed, EmotionRevenge, EmotionOverconfidence, EmotionManipulation:
		return true
	}
	return false
}

// Critical reports whether the emotion drives the most damaging trades.
// Their primary-language confidence is boosted.
func (e EmotionType) Critical() bool {
	switch e {
	case EmotionFOMO, EmotionRevenge, EmotionManipulation:
		return true
	}
	return false
}

// SentimentLabel is the coarse polarity of a note.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// Emotion is one detected emotion with the terms that triggered it.
type Emotion struct {
	Type         EmotionType `json:"type"`
	Confidence   float64     `json:"confidence"`
	MatchedTerms []string    `json:"matched_terms"`
}

// AnalysisResult is the outcome of analyzing a single note.
//
// QualityScore is a heuristic proxy for trading discipline in [0,1]. It is
// not a calibrated probability.
type AnalysisResult struct {
	Language        Language       `json:"language"`
	SentimentScore  float64        `json:"sentiment_score"`
	SentimentLabel  SentimentLabel `json:"sentiment_label"`
	Emotions        []Emotion      `json:"emotions"`
	BehavioralFlags []string       `json:"behavioral_flags"`
	QualityScore    float64        `json:"quality_score"`
	Warnings        []string       `json:"warnings"`
}

// EmptyAnalysis returns the neutral result used for blank notes.
func EmptyAnalysis() AnalysisResult {
	return AnalysisResult{
		Language:        LangUnknown,
		SentimentLabel:  SentimentNeutral,
		Emotions:        []Emotion{},
		BehavioralFlags: []string{},
		QualityScore:    0.5,
		Warnings:        []string{},
	}
}

// Emotion returns the detected emotion of the given type.
func (r AnalysisResult) Emotion(t EmotionType) (Emotion, bool) {
	for _, e := range r.Emotions {
		if e.Type == t {
			return e, true
		}
	}
	return Emotion{}, false
}

// HasEmotion reports whether an emotion of the given type was detected.
func (r AnalysisResult) HasEmotion(t EmotionType) bool {
	_, ok := r.Emotion(t)
	return ok
}

// HasFlag reports whether the emotion type is among the behavioral flags.
func (r AnalysisResult) HasFlag(t EmotionType) bool {
	for _, f := range r.BehavioralFlags {
		if f == string(t) {
			return true
		}
	}
	return false
}
