package nlp

import (
	"strings"
	"unicode/utf8"

	"trading-journal/internal/models"
)

// DefaultNegationWindow is the number of preceding tokens searched for a
// negation marker.
const DefaultNegationWindow = 4

// CategoryMatch is the surviving matches of one category.
type CategoryMatch struct {
	Category string
	Emotion  models.EmotionType
	Weight   float64
	Language models.Language
	// Primary is false when the match came from the table of a language
	// other than the note's.
	Primary bool
	Terms   []string
}

// Count returns the number of distinct matched terms.
func (c CategoryMatch) Count() int {
	return len(c.Terms)
}

// Matcher finds lexicon terms in text, respecting word boundaries and
// negation scope. It holds no mutable state and is safe for concurrent use.
type Matcher struct {
	lexicon *Lexicon
	window  int
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithNegationWindow sets how many preceding tokens may hold a negation.
func WithNegationWindow(n int) MatcherOption {
	return func(m *Matcher) {
		if n >= 0 {
			m.window = n
		}
	}
}

// NewMatcher creates a matcher over lex.
func NewMatcher(lex *Lexicon, opts ...MatcherOption) *Matcher {
	m := &Matcher{lexicon: lex, window: DefaultNegationWindow}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match returns the categories of lang's table with at least one
// surviving term, in table order.
func (m *Matcher) Match(text string, lang models.Language) []CategoryMatch {
	return m.matchTable(Normalize(text), lang, true, nil)
}

// MatchBilingual matches lang's table first, then the other language's
// table for emotions not found yet. Mixed-language notes are common.
func (m *Matcher) MatchBilingual(text string, lang models.Language) []CategoryMatch {
	return m.matchBilingual(Normalize(text), lang)
}

func (m *Matcher) matchBilingual(normalized string, lang models.Language) []CategoryMatch {
	matches := m.matchTable(normalized, lang, true, nil)

	other, ok := m.lexicon.secondary(lang)
	if !ok {
		return matches
	}
	seen := make(map[models.EmotionType]bool, len(matches))
	for _, cm := range matches {
		seen[cm.Emotion] = true
	}
	return append(matches, m.matchTable(normalized, other, false, seen)...)
}

func (m *Matcher) matchTable(normalized string, lang models.Language, primary bool, skip map[models.EmotionType]bool) []CategoryMatch {
	table, ok := m.lexicon.tables[lang]
	if !ok {
		return nil
	}
	var out []CategoryMatch
	for _, cat := range table.Categories {
		if skip[cat.Emotion] {
			continue
		}
		terms := m.matchTerms(normalized, cat.Terms)
		if len(terms) == 0 {
			continue
		}
		out = append(out, CategoryMatch{
			Category: cat.Name,
			Emotion:  cat.Emotion,
			Weight:   cat.Weight,
			Language: lang,
			Primary:  primary,
			Terms:    terms,
		})
	}
	return out
}

// MatchTerms returns the terms found in text, in the order given. Terms
// must already be normalized.
func (m *Matcher) MatchTerms(text string, terms []string) []string {
	return m.matchTerms(Normalize(text), terms)
}

func (m *Matcher) matchTerms(normalized string, terms []string) []string {
	var found []string
	for _, term := range terms {
		if m.contains(normalized, term) {
			found = append(found, term)
		}
	}
	return found
}

// contains reports whether term occurs at least once without a preceding
// negation. Single-word terms must stand on word boundaries; phrases match
// as contiguous substrings.
func (m *Matcher) contains(text, term string) bool {
	if term == "" {
		return false
	}
	single := !strings.ContainsRune(term, ' ')
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], term)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(term)
		if (!single || atWordBoundary(text, start, end)) && !m.negated(text, start) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}
	return false
}

// negated reports whether a negation marker sits within the window of
// tokens before pos, without crossing a clause break.
func (m *Matcher) negated(text string, pos int) bool {
	if m.window == 0 {
		return false
	}
	tokens := tokenize(text[clauseStart(text, pos):pos])
	if len(tokens) > m.window {
		tokens = tokens[len(tokens)-m.window:]
	}
	for i := range tokens {
		for _, marker := range m.lexicon.negations {
			if hasTokens(tokens[i:], marker) {
				return true
			}
		}
	}
	return false
}

func hasTokens(tokens, marker []string) bool {
	if len(marker) > len(tokens) {
		return false
	}
	for i, t := range marker {
		if tokens[i] != t {
			return false
		}
	}
	return true
}
