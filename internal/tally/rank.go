package tally

import "sort"

// RankConfig shapes the ranked view.
type RankConfig struct {
	// Reverse puts the lowest counts first.
	Reverse bool
	// Head keeps only the first Head rows of the view; 0 keeps all.
	Head int
}

// Rank orders entries by count, highest first, breaking ties by key. Reverse
// flips the whole order, so ties then run by key descending, and Head is
// applied after the flip. entries is sorted in place.
func Rank(entries []Entry, cfg RankConfig) []Entry {
	sort.Slice(entries, func(i, j int) bool {
		ei := entries[i]
		ej := entries[j]
		if ei.Count != ej.Count {
			return ei.Count > ej.Count
		}
		return ei.Key < ej.Key
	})

	if cfg.Reverse {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}

	if cfg.Head > 0 && cfg.Head < len(entries) {
		entries = entries[:cfg.Head]
	}
	return entries
}
