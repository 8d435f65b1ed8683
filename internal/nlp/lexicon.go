package nlp

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
)

// Category groups the trigger terms of one emotion in one language.
type Category struct {
	Name    string
	Emotion models.EmotionType
	Weight  float64
	Terms   []string
}

// Table is the keyword table of a single language.
type Table struct {
	Language   models.Language
	Categories []Category
	Negations  []string
}

// VocabularyGroup is a set of interchangeable risk-management terms. The
// quality scorer rewards each group once when any of its terms appears.
type VocabularyGroup struct {
	Name  string
	Terms []string
}

// Lexicon is the validated, immutable set of keyword tables shared by every
// matcher. Build one with NewLexicon and never modify it afterwards.
type Lexicon struct {
	tables     map[models.Language]Table
	languages  []models.Language
	negations  [][]string
	vocabulary []VocabularyGroup
}

// NewLexicon validates and normalizes tables and vocabulary groups.
// Malformed input is a programming error and yields an error wrapping
// ErrLexiconInvalid.
func NewLexicon(tables []Table, vocabulary []VocabularyGroup) (*Lexicon, error) {
	if len(tables) == 0 {
		return nil, apperrors.NewLexiconError("", "", "no keyword tables")
	}

	lex := &Lexicon{tables: make(map[models.Language]Table, len(tables))}
	negations := make(map[string][]string)

	for _, t := range tables {
		lang := string(t.Language)
		if t.Language != models.LangVietnamese && t.Language != models.LangEnglish {
			return nil, apperrors.NewLexiconError(lang, "", "unsupported language")
		}
		if _, dup := lex.tables[t.Language]; dup {
			return nil, apperrors.NewLexiconError(lang, "", "duplicate table")
		}
		if len(t.Categories) == 0 {
			return nil, apperrors.NewLexiconError(lang, "", "table has no categories")
		}

		table := Table{Language: t.Language}
		emotions := make(map[models.EmotionType]bool)
		for _, c := range t.Categories {
			cat, err := normalizeCategory(lang, c)
			if err != nil {
				return nil, err
			}
			if emotions[cat.Emotion] {
				return nil, apperrors.NewLexiconError(lang, cat.Name, fmt.Sprintf("emotion %s mapped twice", cat.Emotion))
			}
			emotions[cat.Emotion] = true
			table.Categories = append(table.Categories, cat)
		}

		for _, n := range t.Negations {
			n = Normalize(strings.TrimSpace(n))
			toks := tokenize(n)
			if len(toks) == 0 {
				return nil, apperrors.NewLexiconError(lang, "", "empty negation marker")
			}
			table.Negations = append(table.Negations, n)
			negations[strings.Join(toks, " ")] = toks
		}

		lex.tables[t.Language] = table
		lex.languages = append(lex.languages, t.Language)
	}

	keys := make([]string, 0, len(negations))
	for k := range negations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lex.negations = append(lex.negations, negations[k])
	}
	sort.Slice(lex.languages, func(i, j int) bool { return lex.languages[i] < lex.languages[j] })

	for _, g := range vocabulary {
		group, err := normalizeGroup(g)
		if err != nil {
			return nil, err
		}
		lex.vocabulary = append(lex.vocabulary, group)
	}

	return lex, nil
}

func normalizeCategory(lang string, c Category) (Category, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return Category{}, apperrors.NewLexiconError(lang, "", "category without name")
	}
	if !c.Emotion.Valid() {
		return Category{}, fmt.Errorf("%w: %w", apperrors.NewLexiconError(lang, name, fmt.Sprintf("emotion %q", c.Emotion)), apperrors.ErrUnknownEmotion)
	}
	if math.IsNaN(c.Weight) || c.Weight < -1 || c.Weight > 1 {
		return Category{}, apperrors.NewLexiconError(lang, name, fmt.Sprintf("weight %v outside [-1,1]", c.Weight))
	}
	terms, err := normalizeTerms(c.Terms)
	if err != nil {
		return Category{}, apperrors.NewLexiconError(lang, name, err.Error())
	}
	return Category{Name: name, Emotion: c.Emotion, Weight: c.Weight, Terms: terms}, nil
}

func normalizeGroup(g VocabularyGroup) (VocabularyGroup, error) {
	name := strings.TrimSpace(g.Name)
	if name == "" {
		return VocabularyGroup{}, apperrors.NewLexiconError("vocabulary", "", "group without name")
	}
	terms, err := normalizeTerms(g.Terms)
	if err != nil {
		return VocabularyGroup{}, apperrors.NewLexiconError("vocabulary", name, err.Error())
	}
	return VocabularyGroup{Name: name, Terms: terms}, nil
}

func normalizeTerms(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("no terms")
	}
	seen := make(map[string]bool, len(raw))
	terms := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.Join(strings.Fields(Normalize(t)), " ")
		if t == "" {
			return nil, fmt.Errorf("empty term")
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}
	return terms, nil
}

// MustLexicon panics if err is non-nil. It is meant for start-up code.
func MustLexicon(lex *Lexicon, err error) *Lexicon {
	if err != nil {
		panic(err)
	}
	return lex
}

var (
	defaultLexiconOnce sync.Once
	defaultLexicon     *Lexicon
)

// DefaultLexicon returns the built-in Vietnamese and English tables.
func DefaultLexicon() *Lexicon {
	defaultLexiconOnce.Do(func() {
		defaultLexicon = MustLexicon(NewLexicon(DefaultTables(), DefaultVocabulary()))
	})
	return defaultLexicon
}

// Languages returns the languages with a table, sorted.
func (l *Lexicon) Languages() []models.Language {
	out := make([]models.Language, len(l.languages))
	copy(out, l.languages)
	return out
}

// Table returns a copy of the table for lang.
func (l *Lexicon) Table(lang models.Language) (Table, bool) {
	t, ok := l.tables[lang]
	if !ok {
		return Table{}, false
	}
	cp := Table{Language: t.Language, Negations: append([]string(nil), t.Negations...)}
	for _, c := range t.Categories {
		c.Terms = append([]string(nil), c.Terms...)
		cp.Categories = append(cp.Categories, c)
	}
	return cp, true
}

// Vocabulary returns a copy of the risk-management vocabulary groups.
func (l *Lexicon) Vocabulary() []VocabularyGroup {
	out := make([]VocabularyGroup, 0, len(l.vocabulary))
	for _, g := range l.vocabulary {
		out = append(out, VocabularyGroup{Name: g.Name, Terms: append([]string(nil), g.Terms...)})
	}
	return out
}

// secondary returns the language whose table is consulted after lang's.
func (l *Lexicon) secondary(lang models.Language) (models.Language, bool) {
	for _, other := range l.languages {
		if other != lang {
			return other, true
		}
	}
	return "", false
}
