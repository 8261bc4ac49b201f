package ui

import (
	"testing"

	"github.com/five82/stash/internal/library"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"  budget.xlsx ", 0, "budget.xlsx"},
		{"short", 10, "short"},
		{"holiday-video.mp4", 10, "holiday..."},
		{"abcdef", 3, "abc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.limit); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}

func TestTruncateMiddle(t *testing.T) {
	if got := truncateMiddle("  ", 10); got != "" {
		t.Fatalf("truncateMiddle blank = %q, want empty", got)
	}
	if got := truncateMiddle("abcd", 2); got != "ab" {
		t.Fatalf("truncateMiddle limit<=3 = %q, want ab", got)
	}
	if got := truncateMiddle("/videos/2026/holiday.mp4", 13); got != "/vide...y.mp4" {
		t.Fatalf("truncateMiddle = %q, want /vide...y.mp4", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q, want %q", got, "ab  ")
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Fatalf("padRight longer = %q, want unchanged", got)
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ i, n, want int }{
		{-1, 5, 0},
		{2, 5, 2},
		{9, 5, 4},
		{3, 0, 0},
	}
	for _, tc := range cases {
		if got := clamp(tc.i, tc.n); got != tc.want {
			t.Fatalf("clamp(%d, %d) = %d, want %d", tc.i, tc.n, got, tc.want)
		}
	}
}

func TestNextTypeFilter(t *testing.T) {
	seen := []string{filterAll}
	current := filterAll
	for i := 0; i < 6; i++ {
		current = nextTypeFilter(current)
		seen = append(seen, current)
	}
	want := []string{"all", "video", "music", "document", "image", "archive", "other"}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("filter cycle = %v, want %v", seen, want)
		}
	}
	if got := nextTypeFilter("other"); got != filterAll {
		t.Fatalf("nextTypeFilter(other) = %q, want all", got)
	}
	if got := nextTypeFilter("bogus"); got != filterAll {
		t.Fatalf("nextTypeFilter(bogus) = %q, want all", got)
	}
}

func TestMatchingSuggestions(t *testing.T) {
	tags := []string{"Travel", "trips", "work"}
	got := matchingSuggestions(tags, "TR")
	if len(got) != 2 || got[0] != "Travel" || got[1] != "trips" {
		t.Fatalf("matchingSuggestions(TR) = %v", got)
	}
	if got := matchingSuggestions(tags, "-wo"); len(got) != 1 || got[0] != "work" {
		t.Fatalf("matchingSuggestions(-wo) = %v, want [work]", got)
	}
	if got := matchingSuggestions(tags, ""); len(got) != 3 {
		t.Fatalf("matchingSuggestions empty prefix = %v, want all", got)
	}
}

func TestRenderCounts(t *testing.T) {
	c := library.CountByType(sampleFiles())
	got := renderCounts(GetTheme("", true).Styles(), "watched", c)
	want := "3 watched · video 1 · music 1 · document 1"
	if got != want {
		t.Fatalf("renderCounts = %q, want %q", got, want)
	}
}
