package stream

import (
	"errors"
	"io"
	"time"

	"github.com/keilerkonzept/liveuniq/internal/tally"
)

// Frame receives the ranked view after every line.
type Frame interface {
	Render(entries []tally.Entry) error
}

// StepFunc is called after each line has been counted and drawn.
type StepFunc func(line string, start time.Time)

// Pipeline counts one line at a time and redraws the full ranking after each.
type Pipeline struct {
	table  tally.Table
	norm   tally.NormalizeConfig
	rank   tally.RankConfig
	frame  Frame
	onStep StepFunc
}

type Option func(*Pipeline)

// WithStepFunc installs a hook run after every completed step.
func WithStepFunc(fn StepFunc) Option {
	return func(p *Pipeline) { p.onStep = fn }
}

func NewPipeline(table tally.Table, norm tally.NormalizeConfig, rank tally.RankConfig, frame Frame, opts ...Option) *Pipeline {
	p := &Pipeline{
		table:  table,
		norm:   norm,
		rank:   rank,
		frame:  frame,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Step normalizes and counts line, re-ranks the whole table and renders it.
func (p *Pipeline) Step(line string) error {
	start := time.Now()
	p.table.Incr(tally.Normalize(line, p.norm))
	ranked := tally.Rank(p.table.Snapshot(), p.rank)
	if err := p.frame.Render(ranked); err != nil {
		return err
	}
	if p.onStep != nil {
		p.onStep(line, start)
	}
	return nil
}

// Run steps through every line of r, stopping after maxLines lines when
// maxLines > 0. It returns the number of lines processed.
func (p *Pipeline) Run(r *Reader, maxLines int) (int, error) {
	n := 0
	for maxLines <= 0 || n < maxLines {
		line, err := r.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if err := p.Step(line); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
