package conference

import (
	"sort"
	"strings"
	"time"
)

// DefaultPastLimit is how many elapsed conferences the past sheet keeps.
const DefaultPastLimit = 10

// deadMarkers flag deadlines the classifier reported as no longer open.
// Such records carry no usable date and are excluded from output entirely.
var deadMarkers = []string{"expired", "passed", "closed"}

// placeholders are deadline values that mean "not announced yet". They are
// cleared to empty rather than treated as parseable dates.
var placeholders = map[string]struct{}{
	"tba":             {},
	"to be announced": {},
	"tbd":             {},
	"n/a":             {},
	"na":              {},
	"none":            {},
	"-":               {},
}

// CleanDeadlines sanitizes the deadline field of freshly classified records.
// Records whose deadline text marks the call as over are returned separately
// in excluded; placeholder deadlines are cleared in place. Order is
// preserved.
func CleanDeadlines(records []Record) (kept, excluded []Record) {
	kept = make([]Record, 0, len(records))
	for _, r := range records {
		lower := strings.ToLower(strings.TrimSpace(r.SubmissionDeadline))
		dead := false
		for _, marker := range deadMarkers {
			if strings.Contains(lower, marker) {
				dead = true
				break
			}
		}
		if dead {
			excluded = append(excluded, r)
			continue
		}
		if _, ok := placeholders[lower]; ok {
			r.SubmissionDeadline = ""
		}
		kept = append(kept, r)
	}
	return kept, excluded
}

// Partition splits records into the active and past sets as of now.
//
// A record is past only when its deadline parses, fell before today, and the
// conference itself is not still upcoming. Records without a parseable
// deadline stay active. Active records are sorted by deadline ascending with
// undated records last; past records are sorted most recently elapsed first
// and capped at pastLimit.
func Partition(records []Record, now time.Time, pastLimit int) (active, past []Record) {
	if pastLimit <= 0 {
		pastLimit = DefaultPastLimit
	}
	today := dateOnly(now)

	for _, r := range records {
		if isPast(r, today) {
			past = append(past, r)
		} else {
			active = append(active, r)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return deadlineLess(active[i], active[j])
	})
	sort.SliceStable(past, func(i, j int) bool {
		return elapsedAfter(past[i], past[j])
	})
	if len(past) > pastLimit {
		past = past[:pastLimit]
	}
	return active, past
}

// isPast reports whether a record's deadline has elapsed with no upcoming
// conference date to keep it relevant.
func isPast(r Record, today time.Time) bool {
	deadline := ParseDeadline(r.SubmissionDeadline)
	if deadline.IsZero() || !deadline.Before(today) {
		return false
	}
	start := StartDate(r.ConferenceDates)
	if !start.IsZero() && !start.Before(today) {
		// Submission window closed but the event itself is still ahead.
		return false
	}
	return true
}

// deadlineLess orders active records: earliest deadline first, records with
// no parseable deadline last, ties alphabetical by title.
func deadlineLess(a, b Record) bool {
	da, db := ParseDeadline(a.SubmissionDeadline), ParseDeadline(b.SubmissionDeadline)
	switch {
	case da.IsZero() && db.IsZero():
		return a.Title < b.Title
	case da.IsZero():
		return false
	case db.IsZero():
		return true
	case !da.Equal(db):
		return da.Before(db)
	default:
		return a.Title < b.Title
	}
}

// elapsedAfter orders past records most recently elapsed first, using the
// deadline when it parses and the conference start date otherwise.
func elapsedAfter(a, b Record) bool {
	ta, tb := elapsedRef(a), elapsedRef(b)
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return a.Title < b.Title
}

func elapsedRef(r Record) time.Time {
	if t := ParseDeadline(r.SubmissionDeadline); !t.IsZero() {
		return t
	}
	return StartDate(r.ConferenceDates)
}
