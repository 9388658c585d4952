package services

import (
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type ScannerConfig struct {
	Terms []string
}

// ContentScanner checks listing text against a fixed list of prohibited terms.
// Matching is plain substring containment on normalized text; the first term
// in list order wins.
type ContentScanner struct {
	terms      []string
	normalized []string
}

func NewContentScanner(cfg ScannerConfig) *ContentScanner {
	s := &ContentScanner{
		terms:      make([]string, 0, len(cfg.Terms)),
		normalized: make([]string, 0, len(cfg.Terms)),
	}
	for _, term := range cfg.Terms {
		n := Normalize(term)
		if strings.TrimSpace(n) == "" {
			continue
		}
		s.terms = append(s.terms, term)
		s.normalized = append(s.normalized, n)
	}
	return s
}

// Scan returns the first configured term found in title + description.
func (s *ContentScanner) Scan(title, description string) (string, bool) {
	text := Normalize(title + " " + description)
	for i, term := range s.normalized {
		if strings.Contains(text, term) {
			return s.terms[i], true
		}
	}
	return "", false
}

func (s *ContentScanner) Terms() []string {
	return append([]string(nil), s.terms...)
}

// Normalize lower-cases text and strips diacritics ("Pistolá" -> "pistola").
func Normalize(text string) string {
	// transform chains carry state, so build one per call
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	lower := strings.ToLower(text)
	out, _, err := transform.String(fold, lower)
	if err != nil {
		slog.Warn("unicode normalization error", "error", err)
		return lower
	}
	return out
}
