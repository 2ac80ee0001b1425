package util

import (
	"regexp"
	"strings"
)

var (
	slugDropPattern  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpacePattern = regexp.MustCompile(`\s+`)
)

// Slugify converts a category label into its URL slug: lowercase, "&" becomes
// "and", anything outside [a-z0-9 -] is dropped and whitespace runs collapse
// to single hyphens. The function is idempotent, so slugs can be re-slugged
// safely when matching user input against stored labels.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = strings.ReplaceAll(s, "&", "and")
	s = slugDropPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return slugSpacePattern.ReplaceAllString(s, "-")
}
