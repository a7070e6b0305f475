package main

import (
	"testing"
	"time"
)

func TestDurationRing(t *testing.T) {
	r := newDurationRing(3)
	if got := r.snapshot(); got != (durationStats{}) {
		t.Fatalf("empty snapshot = %+v", got)
	}
	for _, d := range []time.Duration{1, 2, 3, 10} {
		r.add(d * time.Millisecond)
	}

	got := r.snapshot()
	want := durationStats{
		last: 10 * time.Millisecond,
		max:  10 * time.Millisecond,
		avg:  5 * time.Millisecond,
		n:    3,
	}
	if got != want {
		t.Errorf("snapshot() = %+v, want %+v", got, want)
	}
}

func TestRunStats(t *testing.T) {
	s := newRunStats(4)
	start := time.Unix(100, 0)
	for i := range 11 {
		at := start.Add(time.Duration(i) * 100 * time.Millisecond)
		s.observeStep(at, at.Add(time.Millisecond))
	}

	snap := s.snapshot()
	if snap.lines != 11 {
		t.Errorf("lines = %d, want 11", snap.lines)
	}
	// 11 steps over 1.001s
	if snap.avgRate != 11 {
		t.Errorf("avgRate = %d, want 11", snap.avgRate)
	}
	if snap.step.avg != time.Millisecond || snap.step.n != 4 {
		t.Errorf("step = %+v, want avg 1ms over 4 samples", snap.step)
	}
}

func TestFormatMetricDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0.000ms"},
		{-time.Second, "0.000ms"},
		{1500 * time.Microsecond, "1.500ms"},
	}
	for _, tt := range tests {
		if got := formatMetricDuration(tt.d); got != tt.want {
			t.Errorf("formatMetricDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
