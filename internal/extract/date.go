package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// datePatterns are tried in priority order. Patterns with a single capture group
// yield that group; patterns with three groups are joined as day/month/year;
// patterns without groups yield the whole match.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Date\s*:\s*(\d{1,2}/\d{1,2}/\d{4})`),
	regexp.MustCompile(`(?i)Date\s*[:=]\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
	regexp.MustCompile(`(?i)\b(\d{2}/\d{2}/\d{4})\b`),
	regexp.MustCompile(`(?i)\b(\d{1,2}[/-]\d{1,2}[/-]\d{4})\b`),
	regexp.MustCompile(`(?i)(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2}\b(?:,?\s+\d{2,4})?`),
	regexp.MustCompile(`(?i)\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*,?\s+\d{2,4}`),
	regexp.MustCompile(`(?i)Time[^\n]*\n[^\n]*?(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
	regexp.MustCompile(`(?i)(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})[^\n]*Time`),
	regexp.MustCompile(`(?i)Bill\s*No[^\n]*?(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
	regexp.MustCompile(`(?i)(\d{1,2})\s*[/\-.]\s*(\d{1,2})\s*[/\-.]\s*(\d{4})`),
	regexp.MustCompile(`(?i)\b(\d{2})(\d{2})/(\d{2,4})\b`),
	regexp.MustCompile(`(?i)\b(\d{2})/(\d{2})(\d{2,4})\b`),
}

// Day-first layouts come before month-first ones; yearless layouts last.
var (
	dateLayouts = []string{
		"2/1/2006", "1/2/2006",
		"Jan 2 2006", "Jan 2, 2006", "January 2 2006", "January 2, 2006",
		"2 Jan 2006", "2 January 2006", "2 Jan, 2006", "2 January, 2006",
	}
	yearlessLayouts = []string{"Jan 2", "January 2", "2 Jan", "2 January"}
)

var (
	dateSeparator = regexp.MustCompile(`\s*[/\-.]\s*`)
	datePart      = regexp.MustCompile(`[/\-.]`)
	spaces        = regexp.MustCompile(`\s+`)
)

// Date returns the first plausible transaction date found in text as YYYY-MM-DD,
// or an empty string when none validates. ref supplies the year for candidates
// that carry only a day and month.
func Date(text string, ref time.Time) string {
	for _, re := range datePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			candidate := dateCandidate(m)
			if !plausibleDate(candidate) {
				continue
			}
			if iso, ok := parseDate(candidate, ref); ok {
				return iso
			}
		}
	}
	return ""
}

func dateCandidate(m []string) string {
	switch len(m) {
	case 1:
		return m[0]
	case 2:
		return m[1]
	default:
		return strings.Join(m[1:4], "/")
	}
}

// plausibleDate rejects numeric day/month/year triples outside the calendar or
// the 2000-2099 window. Candidates that are not three numbers pass through to
// the layout parser.
func plausibleDate(candidate string) bool {
	parts := datePart.Split(strings.TrimSpace(candidate), -1)
	if len(parts) < 3 {
		return true
	}
	nums := make([]int, 3)
	for i := range nums {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return true
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]
	if year < 100 {
		year += 2000
	}
	if year < 2000 || year > 2099 {
		return false
	}
	return day >= 1 && day <= 31 && month >= 1 && month <= 12
}

func parseDate(candidate string, ref time.Time) (string, bool) {
	s := cleanDate(candidate)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil && validYear(t.Year()) {
			return t.Format(isoDate), true
		}
	}
	for _, layout := range yearlessLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		dated := time.Date(ref.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		if dated.Month() != t.Month() || dated.Day() != t.Day() {
			// Feb 29 outside a leap year
			continue
		}
		if validYear(dated.Year()) {
			return dated.Format(isoDate), true
		}
	}
	return "", false
}

// cleanDate unifies separators to '/' and widens two-digit years.
func cleanDate(candidate string) string {
	s := strings.TrimSpace(spaces.ReplaceAllString(candidate, " "))
	s = dateSeparator.ReplaceAllString(s, "/")

	if parts := strings.Split(s, "/"); len(parts) == 3 && len(parts[2]) == 2 {
		parts[2] = "20" + parts[2]
		return strings.Join(parts, "/")
	}
	if fields := strings.Fields(s); len(fields) == 3 {
		last := fields[2]
		if _, err := strconv.Atoi(last); err == nil && len(last) == 2 {
			fields[2] = "20" + last
			return strings.Join(fields, " ")
		}
	}
	return s
}

func validYear(y int) bool {
	return y >= 2000 && y <= 2099
}
