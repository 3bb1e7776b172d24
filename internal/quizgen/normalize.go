package quizgen

import (
	"regexp"
	"strings"
)

// indexPrefix matches list numbering at the start of a line: "1.", "2)", "3 -".
var indexPrefix = regexp.MustCompile(`(?m)^\s*\d+\s*[.)-]\s*`)

// Normalize strips list/index prefixes from every line of raw and trims
// the result. Numbers that do not open a line are left alone.
func Normalize(raw string) string {
	return strings.TrimSpace(indexPrefix.ReplaceAllString(raw, ""))
}
