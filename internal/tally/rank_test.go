package tally

import (
	"fmt"
	"slices"
	"testing"
)

func entries(counts map[string]uint64) []Entry {
	out := make([]Entry, 0, len(counts))
	for k, c := range counts {
		out = append(out, Entry{Key: k, Count: c})
	}
	return out
}

func keys(es []Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Key
	}
	return out
}

func TestRank(t *testing.T) {
	abc := map[string]uint64{"A": 2, "B": 1, "C": 3}
	tests := []struct {
		name   string
		counts map[string]uint64
		cfg    RankConfig
		want   []string
	}{
		{"descending", abc, RankConfig{}, []string{"C", "A", "B"}},
		{"reverse", abc, RankConfig{Reverse: true}, []string{"B", "A", "C"}},
		{"head", abc, RankConfig{Head: 2}, []string{"C", "A"}},
		{"head larger than table", abc, RankConfig{Head: 10}, []string{"C", "A", "B"}},
		{"ties by key", map[string]uint64{"b": 1, "a": 1, "c": 2}, RankConfig{}, []string{"c", "a", "b"}},
		{"reverse flips ties", map[string]uint64{"b": 1, "a": 1, "c": 2}, RankConfig{Reverse: true}, []string{"b", "a", "c"}},
		{"reverse head", map[string]uint64{"A": 3, "B": 4, "C": 5, "D": 6}, RankConfig{Reverse: true, Head: 2}, []string{"A", "B"}},
		{"reverse head after more keys", map[string]uint64{"A": 3, "B": 4, "C": 5, "D": 6, "E": 1, "F": 2}, RankConfig{Reverse: true, Head: 2}, []string{"E", "F"}},
		{"empty", nil, RankConfig{Head: 3}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keys(Rank(entries(tt.counts), tt.cfg))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Rank() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRankReverseLaw(t *testing.T) {
	counts := map[string]uint64{}
	for i := range 20 {
		counts[fmt.Sprintf("k%02d", i)] = uint64(i*7%20 + 1)
	}

	forward := Rank(entries(counts), RankConfig{})
	backward := Rank(entries(counts), RankConfig{Reverse: true})
	slices.Reverse(backward)
	if !slices.Equal(forward, backward) {
		t.Errorf("reversed rank %v is not the reversal of %v", backward, forward)
	}
}

func TestRankHeadLaw(t *testing.T) {
	counts := map[string]uint64{"a": 5, "b": 3, "c": 3, "d": 1, "e": 8}
	for _, reverse := range []bool{false, true} {
		full := Rank(entries(counts), RankConfig{Reverse: reverse})
		for n := 1; n <= len(counts)+2; n++ {
			t.Run(fmt.Sprintf("reverse=%v/head=%d", reverse, n), func(t *testing.T) {
				got := Rank(entries(counts), RankConfig{Reverse: reverse, Head: n})
				if len(got) != min(n, len(counts)) {
					t.Fatalf("len = %d, want %d", len(got), min(n, len(counts)))
				}
				if !slices.Equal(got, full[:len(got)]) {
					t.Errorf("Rank(head=%d) = %v, want prefix of %v", n, got, full)
				}
			})
		}
	}
}
