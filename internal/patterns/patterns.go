// Package patterns holds the stateless matchers used to pull contact
// fields out of free text. Every matcher returns the first match only.
package patterns

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	emailRe   = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe   = regexp.MustCompile(`(?:\(\d{3}\)[ .\-]?|\b\d{3}[ .\-]?)?\b\d{3}[ .\-]\d{4}\b`)
	websiteRe = regexp.MustCompile(`(?i)(?:\bhttps?://|\bwww\.)\S+`)

	// Leading capital, then letters, whitespace and & . , ' -
	titleCaseRe = regexp.MustCompile(`^[A-Z][A-Za-z\s&.,'\-]+$`)
	keywordRe   = regexp.MustCompile(`(?i)\b(?:inc|incorporated|llc|llp|corp|corporation|ltd|limited|company|services|solutions|group|enterprises)\b`)
)

const (
	minNameLen = 2
	maxNameLen = 100
)

// ExtractEmail returns the first email-shaped substring of text.
func ExtractEmail(text string) (string, bool) {
	m := emailRe.FindString(text)
	return m, m != ""
}

// ExtractPhone returns the first North-American phone grouping in text,
// verbatim.
func ExtractPhone(text string) (string, bool) {
	m := phoneRe.FindString(text)
	return m, m != ""
}

// ExtractWebsite returns the first http(s):// or www. token in text.
// Trailing sentence punctuation is not part of the token.
func ExtractWebsite(text string) (string, bool) {
	m := websiteRe.FindString(text)
	m = strings.TrimRight(m, ".,;:)")
	return m, m != ""
}

// IsCompanyNameLike reports whether line looks like a business name. It is a
// lexical filter used to rank lines for the name slot.
func IsCompanyNameLike(line string) bool {
	line = strings.TrimSpace(line)
	n := len([]rune(line))
	if n < minNameLen || n > maxNameLen {
		return false
	}
	return titleCaseRe.MatchString(line) || keywordRe.MatchString(line)
}

// Digits returns only the decimal digits of s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeKey folds a company name into a lookup key: lower case,
// letters and digits only, single spaces.
func NormalizeKey(name string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case r == '&':
			continue
		default:
			space = true
		}
	}
	return b.String()
}
