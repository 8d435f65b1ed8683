// Package security keeps credentials out of logs and command output.
package security

import (
	"regexp"
	"strings"
)

// sensitivePatterns match credentials that may be echoed back in errors
// from remote APIs.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api[_-]?key|secret[_-]?key|access[_-]?token|auth[_-]?token|bearer|password)([=:\s]+["']?)([^\s"',]+)`),
	regexp.MustCompile(`sk-[A-Za-z0-9_-]{16,}`), // OpenAI keys
}

// MaskCredential masks a credential value for display, keeping at most
// the first and last four characters.
func MaskCredential(value string) string {
	if len(value) == 0 {
		return ""
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	if len(value) <= 8 {
		return value[:2] + strings.Repeat("*", len(value)-2)
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

// Redact masks every credential found in s.
func Redact(s string) string {
	s = sensitivePatterns[0].ReplaceAllStringFunc(s, func(match string) string {
		parts := sensitivePatterns[0].FindStringSubmatch(match)
		return parts[1] + parts[2] + MaskCredential(parts[3])
	})
	return sensitivePatterns[1].ReplaceAllStringFunc(s, MaskCredential)
}

// RedactError returns err's message with credentials masked. A nil error
// yields an empty string.
func RedactError(err error) string {
	if err == nil {
		return ""
	}
	return Redact(err.Error())
}
