package conference

import (
	"math"
	"testing"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{
			name:  "Lowercase and punctuation stripped",
			title: "4th Workshop on Labor Economics!",
			want:  "4th workshop on labor economics",
		},
		{
			name:  "Punctuation runs collapse to one space",
			title: "AI & Finance: 2026 Summit",
			want:  "ai finance 2026 summit",
		},
		{
			name:  "Surrounding whitespace trimmed",
			title: "  Econometrics  Meeting  ",
			want:  "econometrics meeting",
		},
		{
			name:  "Empty title",
			title: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.title); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{
			name: "Reordered tokens are identical",
			a:    "4th Workshop on Labor Economics",
			b:    "4th Labor Economics Workshop",
			want: 1.0,
		},
		{
			name: "Different field entirely",
			a:    "4th Workshop on Labor Economics",
			b:    "Workshop on Development Economics",
			want: 0.25,
		},
		{
			name: "One extra token out of five",
			a:    "machine learning financial econometrics",
			b:    "financial econometrics methods machine learning",
			want: 0.8,
		},
		{
			name: "Identical titles",
			a:    "Empirical Banking Workshop",
			b:    "Empirical Banking Workshop",
			want: 1.0,
		},
		{
			name: "Empty title scores zero",
			a:    "",
			b:    "Empirical Banking Workshop",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			// The function is symmetric by construction; hold it to that.
			if rev := Similarity(tt.b, tt.a); math.Abs(got-rev) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %v but reversed = %v", tt.a, tt.b, got, rev)
			}
		})
	}
}

func TestTitlesMatch(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{
			name: "Reordered duplicate matches",
			a:    "4th Workshop on Labor Economics",
			b:    "4th Labor Economics Workshop",
			want: true,
		},
		{
			name: "Related but distinct does not match",
			a:    "4th Workshop on Labor Economics",
			b:    "Workshop on Development Economics",
			want: false,
		},
		{
			name: "Exactly at threshold does not match",
			a:    "machine learning financial econometrics",
			b:    "financial econometrics methods machine learning",
			want: false,
		},
		{
			name: "Prefix containment matches",
			a:    "Conference on Empirical Macroeconomics",
			b:    "Conference on Empirical Macroeconomics 2026 Edition",
			want: true,
		},
		{
			name: "Short titles never use the prefix rule",
			a:    "AI Summit",
			b:    "AI Summit Yearly",
			want: false,
		},
		{
			name: "Empty titles never match",
			a:    "",
			b:    "",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := titlesMatch(tt.a, tt.b); got != tt.want {
				t.Errorf("titlesMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNormalizeLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     string
	}{
		{
			name:     "City and country",
			location: "Paris, France",
			want:     "paris france",
		},
		{
			name:     "Case and spacing ignored",
			location: "paris,   FRANCE",
			want:     "paris france",
		},
		{
			name:     "Single segment kept whole",
			location: "Berlin",
			want:     "berlin",
		},
		{
			name:     "Only the last two segments matter",
			location: "University Campus 5, Madrid, Spain",
			want:     "madrid spain",
		},
		{
			name:     "Punctuation stripped",
			location: "St. Gallen, Switzerland",
			want:     "st gallen switzerland",
		},
		{
			name:     "Empty location",
			location: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeLocation(tt.location); got != tt.want {
				t.Errorf("normalizeLocation(%q) = %q, want %q", tt.location, got, tt.want)
			}
		})
	}
}
