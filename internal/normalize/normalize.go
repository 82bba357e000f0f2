// Package normalize strips recognition artifacts from OCR output while keeping the
// punctuation that dates and currency amounts depend on.
package normalize

import (
	"regexp"
	"strings"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	// Letters and digits in any script, underscore, whitespace and . , ! ? - : ; ( ) ' " & /
	disallowed = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?\-:;()'"&/]`)
)

// Text collapses all whitespace (newlines included) to single spaces, removes
// characters outside the allow-list and trims the result.
func Text(s string) string {
	s = whitespace.ReplaceAllString(s, " ")
	s = disallowed.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Lines applies Text to every line of s and drops the lines that end up empty.
// Line breaks survive, so layout-sensitive extractors can still see them.
func Lines(s string) string {
	raw := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if cleaned := Text(line); cleaned != "" {
			lines = append(lines, cleaned)
		}
	}
	return strings.Join(lines, "\n")
}
