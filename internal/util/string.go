package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize performs basic string normalization (lowercase + trim)
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// foldASCII strips combining marks so "Curaçao" slugs as "curacao".
func foldASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// Slugify converts a name to URL-friendly slug format: lowercase ASCII
// letters and digits, with every other run of characters collapsed to a
// single hyphen.
func Slugify(name string) string {
	name = foldASCII(Normalize(name))

	var builder strings.Builder
	pendingHyphen := false
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && builder.Len() > 0 {
				builder.WriteByte('-')
			}
			pendingHyphen = false
			builder.WriteRune(r)
			continue
		}
		// apostrophes join words rather than splitting them
		if r == '\'' || r == '’' {
			continue
		}
		pendingHyphen = true
	}
	return builder.String()
}

// CountRunes returns the total rune length of all lines.
func CountRunes(lines []string) int {
	total := 0
	for _, line := range lines {
		total += len([]rune(line))
	}
	return total
}

// Contains checks if a string slice contains a specific item
func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
