package util

import "strings"

// Truncate keeps at most maxRunes runes of s and marks a cut with "...".
func Truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// Normalize lowercases and trims s for case-insensitive lookups.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
