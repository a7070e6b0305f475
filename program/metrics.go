package main

import (
	"fmt"
	"time"
)

type durationRing struct {
	buf   []time.Duration
	idx   int
	count int
}

func newDurationRing(n int) *durationRing {
	if n < 1 {
		n = 1
	}
	return &durationRing{buf: make([]time.Duration, n)}
}

func (r *durationRing) add(d time.Duration) {
	r.buf[r.idx] = d
	r.idx++
	if r.idx >= len(r.buf) {
		r.idx = 0
	}
	if r.count < len(r.buf) {
		r.count++
	}
}

type durationStats struct {
	last time.Duration
	max  time.Duration
	avg  time.Duration
	n    int
}

func (r *durationRing) snapshot() durationStats {
	if r.count == 0 {
		return durationStats{}
	}
	var sum time.Duration
	var max time.Duration
	for i := 0; i < r.count; i++ {
		d := r.buf[i]
		sum += d
		if d > max {
			max = d
		}
	}

	lastIdx := r.idx - 1
	if lastIdx < 0 {
		lastIdx = len(r.buf) - 1
	}

	return durationStats{
		last: r.buf[lastIdx],
		max:  max,
		avg:  sum / time.Duration(r.count),
		n:    r.count,
	}
}

// runStats tracks how many lines went through the pipeline and how long each
// step (count, rank and draw) took. Only the event loop touches it.
type runStats struct {
	lines       uint64
	firstStep   time.Time
	lastStep    time.Time
	stepLatency *durationRing
}

func newRunStats(window int) *runStats {
	return &runStats{stepLatency: newDurationRing(window)}
}

func (s *runStats) observeStep(start, end time.Time) {
	if s.firstStep.IsZero() {
		s.firstStep = start
	}
	s.lastStep = end
	s.lines++
	s.stepLatency.add(end.Sub(start))
}

type statsSnapshot struct {
	lines   uint64
	avgRate uint64
	step    durationStats
}

func (s *runStats) snapshot() statsSnapshot {
	avgRate := uint64(0)
	if active := s.lastStep.Sub(s.firstStep); s.lines > 1 && active > 0 {
		avgRate = uint64(float64(s.lines)/active.Seconds() + 0.5)
	}
	return statsSnapshot{
		lines:   s.lines,
		avgRate: avgRate,
		step:    s.stepLatency.snapshot(),
	}
}

func formatMetricDuration(d time.Duration) string {
	if d <= 0 {
		return "0.000ms"
	}
	return fmt.Sprintf("%.3fms", float64(d)/float64(time.Millisecond))
}
