package proxy

import (
	"strings"
)

// titleLabels are prefixes the model sometimes puts in front of a title.
// Longer labels come first so "Optimierter Titel:" is not cut as "Optimiert...".
var titleLabels = []string{
	"Verbesserter Titel:",
	"Optimierter Titel:",
	"Optimized Title:",
	"Neuer Titel:",
	"New Title:",
	"Optimiert:",
	"Optimized:",
	"Titel:",
	"Title:",
	"Neu:",
}

const quoteChars = `"'„“”«»`

// NormalizeTitle reduces a title-optimization answer to the bare title: wrapping
// quotes removed, first line only, one leading label removed.
func NormalizeTitle(s string) string {
	s = trimQuotes(s)

	if line, _, found := strings.Cut(s, "\n"); found {
		s = strings.TrimSpace(line)
	}

	for _, label := range titleLabels {
		if len(s) >= len(label) && strings.EqualFold(s[:len(label)], label) {
			s = strings.TrimSpace(s[len(label):])
			break
		}
	}

	return trimQuotes(s)
}

// trimQuotes strips at most one quote character from each end, independently.
func trimQuotes(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range quoteChars {
		if rest, ok := strings.CutPrefix(s, string(q)); ok {
			s = rest
			break
		}
	}
	for _, q := range quoteChars {
		if rest, ok := strings.CutSuffix(s, string(q)); ok {
			s = rest
			break
		}
	}
	return strings.TrimSpace(s)
}
