package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxVendorLen = 40

var (
	businessLine  = regexp.MustCompile(`^[A-Za-z][A-Za-z\s&'\-.]{2,39}$`)
	digitRun      = regexp.MustCompile(`\d{3,}`)
	vendorMarker  = regexp.MustCompile(`(?i:\b(?:from|at|vendor|merchant|store|shop)\b)[\s:]+([A-Za-z][A-Za-z\s&'\-.]{2,40})`)
	titleCaseName = regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3})`)
	nonNameChars  = regexp.MustCompile(`[^A-Za-z\s&'\-.]`)
	letter        = regexp.MustCompile(`[A-Za-z]`)
)

// priorityVendorTerms mark a line as the merchant name when no line has a clean
// name shape.
var priorityVendorTerms = []string{"biryani", "briyani", "biriyani", "royal"}

// Vendor guesses the merchant name from the receipt layout. text should keep its
// line breaks. It returns an empty string when no strategy finds a name.
func Vendor(text string) string {
	lines := nonEmptyLines(text)

	for _, line := range head(lines, 6) {
		if businessLine.MatchString(line) && !digitRun.MatchString(line) {
			return truncate(line)
		}
	}

	for _, line := range head(lines, 8) {
		low := strings.ToLower(line)
		for _, term := range priorityVendorTerms {
			if strings.Contains(low, term) {
				return truncate(line)
			}
		}
	}

	for _, re := range []*regexp.Regexp{vendorMarker, titleCaseName} {
		if m := re.FindStringSubmatch(text); m != nil {
			return truncate(strings.TrimSpace(m[1]))
		}
	}

	var best string
	bestLetters := 0
	for _, line := range head(lines, 6) {
		clean := strings.TrimSpace(nonNameChars.ReplaceAllString(line, ""))
		if n := len(letter.FindAllStringIndex(clean, -1)); n > bestLetters {
			best, bestLetters = clean, n
		}
	}
	if bestLetters >= 4 {
		return truncate(best)
	}
	return ""
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func head(lines []string, n int) []string {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxVendorLen {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:maxVendorLen]))
}
