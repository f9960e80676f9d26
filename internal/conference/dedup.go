package conference

import "sort"

// Group is one equivalence class of entries judged to describe the same
// real-world conference, together with its merged representative.
type Group struct {
	Entries []Entry
	Merged  Entry
}

// HasPersisted reports whether any member of the group is already in the
// store. A fresh candidate landing in such a group is not a new conference.
func (g Group) HasPersisted() bool {
	for _, e := range g.Entries {
		if e.Persisted {
			return true
		}
	}
	return false
}

// Dedup partitions entries into groups describing the same conference and
// merges each group into a single representative.
//
// Matching runs in two stages. Entries sharing a normalized start date and
// location merge first. Entries with no usable date/location key fall
// through to a fuzzy title comparison against every other entry, with
// transitive closure: if A matches B and B matches C, all three form one
// group. Keyed entries never title-probe each other, only keys group them,
// which keeps annually recurring events with near-identical titles apart;
// they remain reachable as targets so a listing that omits its date or
// location still folds into the conference it duplicates.
//
// No entry is ever dropped: unmatched entries come back as singleton groups.
// Groups are returned in order of each group's first entry, and the merge is
// insensitive to input order.
func Dedup(entries []Entry) []Group {
	uf := newUnionFind(len(entries))

	// Stage one: exact match on normalized (start date, location).
	bucketKeys := make([]string, 0)
	buckets := make(map[string][]int)
	probe := make([]bool, len(entries))
	for i, e := range entries {
		dateKey := startDateKey(e.Record.ConferenceDates)
		locKey := normalizeLocation(e.Record.Location)
		if dateKey == "" || locKey == "" {
			probe[i] = true
			continue
		}
		key := dateKey + "|" + locKey
		if _, seen := buckets[key]; !seen {
			bucketKeys = append(bucketKeys, key)
		}
		buckets[key] = append(buckets[key], i)
	}

	for _, key := range bucketKeys {
		idxs := buckets[key]
		for _, i := range idxs[1:] {
			uf.union(idxs[0], i)
		}
	}

	// Stage two: fuzzy title fallback for unkeyed entries.
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			if !probe[i] && !probe[j] {
				continue
			}
			if uf.find(i) == uf.find(j) {
				continue
			}
			if titlesMatch(entries[i].Record.Title, entries[j].Record.Title) {
				uf.union(i, j)
			}
		}
	}

	// Collect groups in order of first appearance.
	order := make([]int, 0)
	members := make(map[int][]int)
	for i := range entries {
		root := uf.find(i)
		if _, seen := members[root]; !seen {
			order = append(order, root)
		}
		members[root] = append(members[root], i)
	}

	groups := make([]Group, 0, len(order))
	for _, root := range order {
		g := Group{Entries: make([]Entry, 0, len(members[root]))}
		for _, i := range members[root] {
			g.Entries = append(g.Entries, entries[i])
		}
		g.Merged = mergeGroup(g.Entries)
		groups = append(groups, g)
	}
	return groups
}

// Merge deduplicates entries and returns only the merged representative of
// each group.
func Merge(entries []Entry) []Entry {
	groups := Dedup(entries)
	merged := make([]Entry, 0, len(groups))
	for _, g := range groups {
		merged = append(merged, g.Merged)
	}
	return merged
}

// mergeGroup collapses a group to its richest member, backfilling every
// field that member is missing from the next-richest ones. Populated fields
// are never overwritten, so a later sparse scrape cannot erase data, and
// provenance stays with the richest member.
func mergeGroup(group []Entry) Entry {
	ordered := make([]Entry, len(group))
	copy(ordered, group)
	sort.SliceStable(ordered, func(i, j int) bool {
		return richer(ordered[i], ordered[j])
	})

	rep := ordered[0]
	rep.Record.Topics = append([]string(nil), rep.Record.Topics...)
	for _, donor := range ordered[1:] {
		if donor.Persisted {
			rep.Persisted = true
		}
		fillString(&rep.Record.SubmissionDeadline, donor.Record.SubmissionDeadline)
		fillString(&rep.Record.ConferenceDates, donor.Record.ConferenceDates)
		fillString(&rep.Record.Location, donor.Record.Location)
		fillString(&rep.Record.Speakers, donor.Record.Speakers)
		fillString(&rep.Record.Description, donor.Record.Description)
		fillString(&rep.Record.Title, donor.Record.Title)
		fillString(&rep.Record.SourceURL, donor.Record.SourceURL)
		fillString(&rep.Record.Source, donor.Record.Source)
		fillString(&rep.PageText, donor.PageText)
		if len(rep.Record.Topics) == 0 && len(donor.Record.Topics) > 0 {
			rep.Record.Topics = append([]string(nil), donor.Record.Topics...)
		}
	}
	return rep
}

// richer orders merge-group members from most to least complete. Every rung
// below the field count compares content rather than position, so the merge
// result does not depend on input order.
func richer(a, b Entry) bool {
	if ca, cb := a.fieldCount(), b.fieldCount(); ca != cb {
		return ca > cb
	}
	if la, lb := len(a.Record.Description), len(b.Record.Description); la != lb {
		return la > lb
	}
	if a.Persisted != b.Persisted {
		return a.Persisted
	}
	if la, lb := len(a.PageText), len(b.PageText); la != lb {
		return la > lb
	}
	if a.Record.Title != b.Record.Title {
		return a.Record.Title < b.Record.Title
	}
	return a.Record.SourceURL < b.Record.SourceURL
}

func fillString(dst *string, src string) {
	if *dst == "" && src != "" {
		*dst = src
	}
}

// unionFind is a plain disjoint-set structure over entry indexes, used for
// the transitive closure of title matches.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
}
