package components

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	csiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
	oscPattern = regexp.MustCompile(`\x1b\][^\x07\x1b]*(\x07|\x1b\\)`)
)

var bidiControls = map[rune]struct{}{
	'\u202a': {},
	'\u202b': {},
	'\u202c': {},
	'\u202d': {},
	'\u202e': {},
	'\u2066': {},
	'\u2067': {},
	'\u2068': {},
	'\u2069': {},
	'\u200e': {},
	'\u200f': {},
}

// SanitizeText strips escape sequences and control characters from strings
// that came from the cluster (file names, ESP messages) before display.
// Newlines and tabs survive.
func SanitizeText(input string) string {
	if input == "" {
		return input
	}
	cleaned := oscPattern.ReplaceAllString(input, "")
	cleaned = csiPattern.ReplaceAllString(cleaned, "")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if _, ok := bidiControls[r]; ok {
			return -1
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, cleaned)
}

// SanitizeOneLine is SanitizeText with line breaks and tabs folded into
// single spaces.
func SanitizeOneLine(input string) string {
	cleaned := SanitizeText(input)
	if !strings.ContainsAny(cleaned, "\n\t\r") {
		return cleaned
	}
	return strings.Join(strings.Fields(cleaned), " ")
}
