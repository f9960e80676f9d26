package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/confsheet/internal/conference"
)

// sortRecordsByDeadline orders records by their submission deadline so the
// most urgent calls appear first in the output
func sortRecordsByDeadline(records []conference.Record) {
	sort.Slice(records, func(i, j int) bool {
		return deadlineBefore(records[i], records[j])
	})
}

// deadlineBefore compares two records by parsed deadline
// Returns true if record a should come before record b
func deadlineBefore(a, b conference.Record) bool {
	da := conference.ParseDeadline(a.SubmissionDeadline)
	db := conference.ParseDeadline(b.SubmissionDeadline)

	// If both deadlines are valid, compare them
	if !da.IsZero() && !db.IsZero() {
		if !da.Equal(db) {
			return da.Before(db)
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	}

	// If only one deadline is valid, put the valid one first
	if !da.IsZero() {
		return true
	}
	if !db.IsZero() {
		return false
	}

	// If neither has a valid deadline, sort by title
	return strings.ToLower(a.Title) < strings.ToLower(b.Title)
}
