package tally

import "math"

// Entry is one key with its occurrence count.
type Entry struct {
	Key   string
	Count uint64
}

// Table counts occurrences of canonical keys.
type Table interface {
	// Incr adds one occurrence of key.
	Incr(key string)
	// Snapshot returns all counted keys. The slice belongs to the caller.
	Snapshot() []Entry
	// Len returns the number of distinct keys held.
	Len() int
}

// ExactTable is a Table that keeps every key with its exact count.
type ExactTable struct {
	counts map[string]uint64
}

func NewExactTable() *ExactTable {
	return &ExactTable{counts: make(map[string]uint64)}
}

// Incr saturates at the maximum count instead of wrapping.
func (t *ExactTable) Incr(key string) {
	if c := t.counts[key]; c < math.MaxUint64 {
		t.counts[key] = c + 1
	}
}

func (t *ExactTable) Count(key string) uint64 {
	return t.counts[key]
}

func (t *ExactTable) Len() int {
	return len(t.counts)
}

func (t *ExactTable) Snapshot() []Entry {
	out := make([]Entry, 0, len(t.counts))
	for k, c := range t.counts {
		out = append(out, Entry{Key: k, Count: c})
	}
	return out
}
