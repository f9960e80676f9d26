package conference

import (
	"sort"
	"strings"
)

// RawCandidate is one scraped listing as returned by a source adapter,
// before deduplication or classification.
type RawCandidate struct {
	Title           string `json:"title"`
	URL             string `json:"url"`
	Source          string `json:"source"`
	PageText        string `json:"page_text"`
	ConferenceDates string `json:"conference_dates,omitempty"`
	Location        string `json:"location,omitempty"`
}

// Record is the canonical representation of one real-world conference as
// persisted in the spreadsheet. A record is never deleted; it moves between
// the active and past sheets as its deadline elapses.
type Record struct {
	Title              string   `json:"title"`
	SubmissionDeadline string   `json:"submission_deadline"`
	ConferenceDates    string   `json:"conference_dates"`
	Location           string   `json:"location"`
	Speakers           string   `json:"speakers"`
	Description        string   `json:"description"`
	Topics             []string `json:"topics,omitempty"`
	SourceURL          string   `json:"source_url"`
	Source             string   `json:"source"`
}

// TopicList turns a comma-separated topic string into a sorted,
// de-duplicated slice. Duplicates are compared case-insensitively with the
// first spelling kept. Returns nil when nothing usable remains.
func TopicList(s string) []string {
	seen := make(map[string]struct{})
	var topics []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key := strings.ToLower(part)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		topics = append(topics, part)
	}
	sort.Strings(topics)
	return topics
}

// KnownURLSet holds the URLs already present in the store. Adapters use it
// to skip detail fetches and stop paginating once a page yields nothing new.
type KnownURLSet map[string]struct{}

// NewKnownURLSet builds a KnownURLSet from persisted records.
func NewKnownURLSet(records []Record) KnownURLSet {
	known := make(KnownURLSet, len(records))
	for _, r := range records {
		if r.SourceURL != "" {
			known[r.SourceURL] = struct{}{}
		}
	}
	return known
}

// Contains reports whether url is already known.
func (k KnownURLSet) Contains(url string) bool {
	_, ok := k[url]
	return ok
}

// Entry is one unit of deduplication input: either a fresh candidate or a
// record already in the store. The engine treats both uniformly and the
// Persisted flag only matters for merge tie-breaking and for deciding which
// merge groups represent genuinely new conferences.
type Entry struct {
	Record    Record
	PageText  string
	Persisted bool
}

// CandidateEntry wraps a fresh scrape result for deduplication.
func CandidateEntry(c RawCandidate) Entry {
	return Entry{
		Record: Record{
			Title:           c.Title,
			ConferenceDates: c.ConferenceDates,
			Location:        c.Location,
			SourceURL:       c.URL,
			Source:          c.Source,
		},
		PageText: c.PageText,
	}
}

// RecordEntry wraps a persisted record for deduplication.
func RecordEntry(r Record) Entry {
	return Entry{Record: r, Persisted: true}
}

// Candidate converts an entry back into the raw candidate shape handed to
// the classifier.
func (e Entry) Candidate() RawCandidate {
	return RawCandidate{
		Title:           e.Record.Title,
		URL:             e.Record.SourceURL,
		Source:          e.Record.Source,
		PageText:        e.PageText,
		ConferenceDates: e.Record.ConferenceDates,
		Location:        e.Record.Location,
	}
}

// fieldCount is the number of populated structured fields, used to pick the
// richest member of a merge group.
func (e Entry) fieldCount() int {
	n := 0
	for _, f := range []string{
		e.Record.SubmissionDeadline,
		e.Record.ConferenceDates,
		e.Record.Location,
		e.Record.Speakers,
		e.Record.Description,
	} {
		if strings.TrimSpace(f) != "" {
			n++
		}
	}
	if len(e.Record.Topics) > 0 {
		n++
	}
	return n
}
