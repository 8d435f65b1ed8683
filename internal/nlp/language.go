package nlp

import (
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"

	"trading-journal/internal/models"
)

// LanguageDetector classifies a note as Vietnamese or English. Detectors
// never fail; unrecognised text gets a best guess.
type LanguageDetector interface {
	Detect(text string) models.Language
}

const vietnameseLetters = "àáảãạăằắẳẵặâầấẩẫậèéẻẽẹêềếểễệìíỉĩịòóỏõọôồốổỗộơờớởỡợùúủũụưừứửữựỳýỷỹỵđ"

var vietnameseLetterSet = func() map[rune]bool {
	set := make(map[rune]bool)
	for _, r := range vietnameseLetters {
		set[r] = true
	}
	return set
}()

var commonVietnameseWords = map[string]bool{
	"và": true, "là": true, "của": true, "có": true, "được": true,
	"trong": true, "cho": true, "với": true, "không": true, "này": true,
	"thì": true, "đã": true, "sẽ": true, "phải": true, "như": true,
	"nếu": true, "khi": true, "để": true, "còn": true, "đang": true,
}

// HeuristicDetector decides by the density of Vietnamese-only letters and,
// failing that, by counting common Vietnamese function words.
type HeuristicDetector struct {
	// DiacriticThreshold is the share of letters that must be
	// Vietnamese-specific for the text to count as Vietnamese.
	DiacriticThreshold float64
	// MinCommonWords is the number of distinct function words needed.
	MinCommonWords int
}

// NewHeuristicDetector creates a detector with the default thresholds.
func NewHeuristicDetector() HeuristicDetector {
	return HeuristicDetector{DiacriticThreshold: 0.03, MinCommonWords: 2}
}

// Detect implements LanguageDetector.
func (d HeuristicDetector) Detect(text string) models.Language {
	if d.diacriticDensity(text) > d.DiacriticThreshold {
		return models.LangVietnamese
	}
	if d.commonWords(text) >= d.MinCommonWords {
		return models.LangVietnamese
	}
	return models.LangEnglish
}

func (d HeuristicDetector) diacriticDensity(text string) float64 {
	var letters, vietnamese int
	for _, r := range Normalize(text) {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if vietnameseLetterSet[r] {
			vietnamese++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(vietnamese) / float64(letters)
}

func (d HeuristicDetector) commonWords(text string) int {
	seen := make(map[string]bool)
	for _, tok := range tokenize(Normalize(text)) {
		if commonVietnameseWords[tok] {
			seen[tok] = true
		}
	}
	return len(seen)
}

// StatisticalDetector runs a trigram language model restricted to Vietnamese
// and English. Text with a decisive share of Vietnamese letters skips the
// model, and low-confidence answers fall back to the heuristic.
type StatisticalDetector struct {
	MinConfidence float64
	Fallback      HeuristicDetector
	options       whatlanggo.Options
}

// NewStatisticalDetector creates a detector that trusts the model at or
// above minConfidence.
func NewStatisticalDetector(minConfidence float64) *StatisticalDetector {
	return &StatisticalDetector{
		MinConfidence: minConfidence,
		Fallback:      NewHeuristicDetector(),
		options: whatlanggo.Options{
			Whitelist: map[whatlanggo.Lang]bool{
				whatlanggo.Vie: true,
				whatlanggo.Eng: true,
			},
		},
	}
}

// Detect implements LanguageDetector.
func (d *StatisticalDetector) Detect(text string) models.Language {
	if strings.TrimSpace(text) == "" {
		return d.Fallback.Detect(text)
	}
	if d.Fallback.diacriticDensity(text) > d.Fallback.DiacriticThreshold {
		return models.LangVietnamese
	}

	info := whatlanggo.DetectWithOptions(text, d.options)
	if info.Confidence >= d.MinConfidence {
		switch info.Lang {
		case whatlanggo.Vie:
			return models.LangVietnamese
		case whatlanggo.Eng:
			return models.LangEnglish
		}
	}
	return d.Fallback.Detect(text)
}
