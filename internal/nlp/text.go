package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var quoteReplacer = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

// Normalize returns the canonical form used for matching: NFC composed,
// lower-cased, with typographic apostrophes folded to ASCII.
func Normalize(text string) string {
	return strings.ToLower(norm.NFC.String(quoteReplacer.Replace(text)))
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_'
}

func isTokenRune(r rune) bool {
	return isWordRune(r) || r == '\''
}

// tokenize splits text into word tokens. Apostrophes stay inside tokens so
// contractions such as "don't" survive.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool { return !isTokenRune(r) })
	tokens := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// atWordBoundary reports whether text[start:end] is not glued to a letter or
// digit on either side.
func atWordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isClauseBreak(r rune) bool {
	switch r {
	case '.', ',', ';', ':', '!', '?', '\n', '\r':
		return true
	}
	return false
}

// clauseStart returns the byte offset where the clause containing pos
// begins. Separators between two digits ("2.5", "1:3") do not end a clause.
func clauseStart(text string, pos int) int {
	for i := pos; i > 0; {
		r, size := utf8.DecodeLastRuneInString(text[:i])
		i -= size
		if !isClauseBreak(r) {
			continue
		}
		if r == '.' || r == ',' || r == ':' {
			prev, _ := utf8.DecodeLastRuneInString(text[:i])
			next, _ := utf8.DecodeRuneInString(text[i+size:])
			if unicode.IsDigit(prev) && unicode.IsDigit(next) {
				continue
			}
		}
		return i + size
	}
	return 0
}
