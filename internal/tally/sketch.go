package tally

import (
	"fmt"

	"github.com/keilerkonzept/topk"
)

// SketchConfig sizes the approximate table.
type SketchConfig struct {
	K            int
	Width        int
	Depth        int
	Decay        float64
	DecayLUTSize int
}

// DefaultSketchConfig returns the sketch sizing used when no flags override it.
func DefaultSketchConfig() SketchConfig {
	return SketchConfig{
		K:            50,
		Width:        3000,
		Depth:        3,
		Decay:        0.9,
		DecayLUTSize: 8192,
	}
}

// Validate reports the first out-of-range field.
func (c SketchConfig) Validate() error {
	if c.K < 1 {
		return fmt.Errorf("k must be >= 1")
	}
	if c.Width < 1 {
		return fmt.Errorf("width must be >= 1")
	}
	if c.Depth < 1 {
		return fmt.Errorf("depth must be >= 1")
	}
	if c.Decay < 0 || c.Decay > 1 {
		return fmt.Errorf("decay must be in [0,1]")
	}
	if c.DecayLUTSize < 1 {
		return fmt.Errorf("decay LUT size must be >= 1")
	}
	return nil
}

// SketchTable is a Table backed by a heavy-keeper top-K sketch. Memory stays
// bounded no matter how many distinct keys arrive, but only the K heaviest
// keys are held and their counts are estimates.
type SketchTable struct {
	sketch *topk.Sketch
}

// NewSketchTable validates cfg and returns an empty sketch-backed table.
func NewSketchTable(cfg SketchConfig) (*SketchTable, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sketch := topk.New(cfg.K,
		topk.WithWidth(cfg.Width),
		topk.WithDepth(cfg.Depth),
		topk.WithDecay(float32(cfg.Decay)),
		topk.WithDecayLUTSize(cfg.DecayLUTSize),
	)
	return &SketchTable{sketch: sketch}, nil
}

func (t *SketchTable) Incr(key string) {
	t.sketch.Incr(key)
}

// Count returns the estimated count of key, 0 if it is not tracked.
func (t *SketchTable) Count(key string) uint64 {
	return uint64(t.sketch.Count(key))
}

func (t *SketchTable) Len() int {
	return len(t.Snapshot())
}

func (t *SketchTable) Snapshot() []Entry {
	items := t.sketch.SortedSlice()
	out := make([]Entry, 0, len(items))
	for _, item := range items {
		if item.Count == 0 {
			continue
		}
		out = append(out, Entry{Key: item.Item, Count: uint64(item.Count)})
	}
	return out
}
