package conference

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// defaultYear fills in announcement dates published without a year. Listings
// announce the upcoming cycle, so a bare "June 1-3" means the next edition.
const defaultYear = 2026

var (
	isoDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

	// "1 June 2026", "15th May", "3 Jun, 2026"
	dayMonthRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\b\.?,?\s*(\d{4})?`)

	// "June 1-3, 2026", "May 15, 2026", "May 15"
	monthDayRe = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:\s*(?:-|–|to)\s*\d{1,2}(?:st|nd|rd|th)?\b)?,?\s*(\d{4})?`)
)

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// StartDate extracts the first calendar date from a free-text conference
// date string such as "June 1-3, 2026" or "Between 1 June 2026 and 3 June
// 2026". Returns the zero time when nothing parseable is found.
func StartDate(dates string) time.Time {
	dates = strings.TrimSpace(dates)
	if dates == "" {
		return time.Time{}
	}

	if iso := isoDateRe.FindString(dates); iso != "" {
		if t, err := time.Parse("2006-01-02", iso); err == nil {
			return t
		}
	}

	if m := dayMonthRe.FindStringSubmatch(dates); m != nil {
		if t, ok := buildDate(m[2], m[1], m[3]); ok {
			return t
		}
	}

	if m := monthDayRe.FindStringSubmatch(dates); m != nil {
		if t, ok := buildDate(m[1], m[2], m[3]); ok {
			return t
		}
	}

	// Anything else ("May 2026", "2026/06/01") gets one lenient attempt.
	if t, err := dateparse.ParseAny(dates); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}

	return time.Time{}
}

// buildDate assembles a UTC date from regex captures, defaulting the year
// when the source omitted it.
func buildDate(monthName, dayStr, yearStr string) (time.Time, bool) {
	month, ok := months[strings.ToLower(monthName)]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	year := defaultYear
	if yearStr != "" {
		year, err = strconv.Atoi(yearStr)
		if err != nil {
			return time.Time{}, false
		}
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

// startDateKey returns the normalized YYYY-MM-DD grouping key for a
// conference date string, or "" when no date can be extracted.
func startDateKey(dates string) string {
	t := StartDate(dates)
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// deadlineFormats are tried in order before falling back to lenient parsing.
var deadlineFormats = []string{
	"2006-01-02",
	"January 2, 2006",
	"2 January 2006",
	"January 2 2006",
}

// ParseDeadline parses a submission deadline into a day-granular UTC time.
// Returns the zero time when the field is empty or unparseable, which the
// caller treats as "no deadline" rather than an error.
func ParseDeadline(deadline string) time.Time {
	deadline = strings.TrimSpace(deadline)
	if deadline == "" {
		return time.Time{}
	}

	for _, layout := range deadlineFormats {
		if t, err := time.Parse(layout, deadline); err == nil {
			return t
		}
	}

	if t, err := dateparse.ParseAny(deadline); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}

	return time.Time{}
}

// dateOnly truncates t to midnight UTC so comparisons are day-granular.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
