package conference

import (
	"reflect"
	"testing"
)

func TestTopicList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "Split, trimmed and sorted",
			in:   "policy evaluation, econometrics , labor",
			want: []string{"econometrics", "labor", "policy evaluation"},
		},
		{
			name: "Case-insensitive duplicates keep the first spelling",
			in:   "Econometrics, econometrics, ECONOMETRICS",
			want: []string{"Econometrics"},
		},
		{
			name: "Empty segments dropped",
			in:   ",, finance ,",
			want: []string{"finance"},
		},
		{
			name: "Empty input",
			in:   "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TopicList(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TopicList(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestKnownURLSet(t *testing.T) {
	records := []Record{
		{Title: "A", SourceURL: "https://a.example.com/1"},
		{Title: "B", SourceURL: ""},
		{Title: "C", SourceURL: "https://c.example.com/3"},
	}

	known := NewKnownURLSet(records)
	if len(known) != 2 {
		t.Fatalf("set has %d URLs, want 2 (empty URL skipped)", len(known))
	}
	if !known.Contains("https://a.example.com/1") {
		t.Error("Contains(a) = false, want true")
	}
	if known.Contains("https://b.example.com/2") {
		t.Error("Contains(unknown) = true, want false")
	}
}

func TestEntryCandidateRoundTrip(t *testing.T) {
	cand := RawCandidate{
		Title:           "Workshop on Labor Economics",
		URL:             "https://a.example.com/conference/labor-1",
		Source:          "inomics",
		PageText:        "full page text",
		ConferenceDates: "June 1-3, 2026",
		Location:        "Paris, France",
	}

	entry := CandidateEntry(cand)
	if entry.Persisted {
		t.Error("CandidateEntry marked persisted")
	}
	if got := entry.Candidate(); !reflect.DeepEqual(got, cand) {
		t.Errorf("Candidate() = %+v, want %+v", got, cand)
	}
}
