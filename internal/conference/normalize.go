package conference

import (
	"regexp"
	"strings"
)

// similarityThreshold is the token-overlap ratio two titles must exceed to
// be considered the same conference. Strict comparison: exactly 0.8 is not a
// match.
const similarityThreshold = 0.8

// prefixMatchLen is the minimum normalized-title length for the containment
// shortcut: when one whole title is a prefix of the other and both are at
// least this long, they match without a token comparison.
const prefixMatchLen = 15

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// stopWords are ignored when comparing titles. Generic event words carry no
// identity: "4th Workshop on Labor Economics" and "4th Labor Economics
// Workshop" must compare equal.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "on": {}, "in": {}, "for": {},
	"and": {}, "at": {}, "to": {}, "with": {},
	"international": {}, "annual": {},
	"conference": {}, "workshop": {}, "symposium": {},
}

// NormalizeTitle lowercases a title and collapses every punctuation run to a
// single space, so formatting differences never defeat a comparison.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(nonAlnumRe.ReplaceAllString(strings.ToLower(title), " "))
}

// titleTokens returns the stop-word-filtered token set of a title. When
// filtering would leave nothing (a title made entirely of generic words),
// the unfiltered tokens are returned instead so the title still compares.
func titleTokens(title string) map[string]struct{} {
	fields := strings.Fields(NormalizeTitle(title))
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens[f] = struct{}{}
	}
	if len(tokens) == 0 {
		for _, f := range fields {
			tokens[f] = struct{}{}
		}
	}
	return tokens
}

// Similarity computes the Jaccard overlap of two titles' normalized token
// sets: |intersection| / |union|, in [0, 1]. It is deterministic and
// order-insensitive, so it can be tested apart from the grouping logic.
func Similarity(a, b string) float64 {
	ta, tb := titleTokens(a), titleTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	common := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			common++
		}
	}
	union := len(ta) + len(tb) - common
	if union == 0 {
		return 0
	}
	return float64(common) / float64(union)
}

// titlesMatch reports whether two titles identify the same conference:
// either one normalized title contains the other as a prefix (both long
// enough that this is not a coincidence), or their token overlap exceeds
// the similarity threshold.
func titlesMatch(a, b string) bool {
	na, nb := NormalizeTitle(a), NormalizeTitle(b)
	if na == "" || nb == "" {
		return false
	}
	if len(na) >= prefixMatchLen && len(nb) >= prefixMatchLen {
		if strings.HasPrefix(na, nb) || strings.HasPrefix(nb, na) {
			return true
		}
	}
	return Similarity(a, b) > similarityThreshold
}

// normalizeLocation reduces a free-text location to a comparable key: the
// last two comma-separated segments (typically city and country), lowercased
// with punctuation stripped. "Paris, France" and "paris france" collapse to
// the same key. Returns "" when there is nothing usable.
func normalizeLocation(location string) string {
	location = strings.ToLower(strings.TrimSpace(location))
	if location == "" {
		return ""
	}
	parts := strings.Split(location, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) >= 2 {
		location = parts[len(parts)-2] + " " + parts[len(parts)-1]
	}
	return strings.TrimSpace(nonAlnumRe.ReplaceAllString(location, " "))
}
