// Package sanitizer drops biography lines we never want a generated profile
// to repeat.
package sanitizer

import (
	"regexp"
	"strings"
)

// RE2's \b only knows ASCII word characters, so "édie" would match "die".
// Word characters here are Unicode letters, digits and underscore.
const (
	wordStart = `(?:^|[^\p{L}\p{N}_])`
	wordEnd   = `(?:$|[^\p{L}\p{N}_])`
)

// DefaultDenylist is the initial set of banned whole words.
var DefaultDenylist = []string{"die", "died", "cancer", "death"}

type Sanitizer struct {
	patterns []*regexp.Regexp
}

// New builds a sanitizer rejecting the given words (matched case-insensitively
// on word boundaries). With no words it uses DefaultDenylist.
func New(words ...string) *Sanitizer {
	if len(words) == 0 {
		words = DefaultDenylist
	}
	patterns := make([]*regexp.Regexp, 0, len(words))
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		patterns = append(patterns, regexp.MustCompile(wordStart+regexp.QuoteMeta(word)+wordEnd))
	}
	return &Sanitizer{patterns: patterns}
}

// IsSafe reports whether line may be used for training. Blank lines are
// unsafe.
func (s *Sanitizer) IsSafe(line string) bool {
	normalized := strings.ToLower(strings.TrimSpace(line))
	if normalized == "" {
		return false
	}
	for _, pattern := range s.patterns {
		if pattern.MatchString(normalized) {
			return false
		}
	}
	return true
}

// FilterSafe returns the safe lines in their original order.
func (s *Sanitizer) FilterSafe(lines []string) []string {
	safe := make([]string, 0, len(lines))
	for _, line := range lines {
		if s.IsSafe(line) {
			safe = append(safe, line)
		}
	}
	return safe
}

var defaultSanitizer = New()

func IsSafe(line string) bool {
	return defaultSanitizer.IsSafe(line)
}

func FilterSafe(lines []string) []string {
	return defaultSanitizer.FilterSafe(lines)
}
