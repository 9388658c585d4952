package services

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// cleanText strips markup from user-supplied free text and trims it to limit runes.
func cleanText(s string, limit int) string {
	s = strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
	if r := []rune(s); len(r) > limit {
		s = string(r[:limit])
	}
	return s
}
