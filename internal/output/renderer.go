// Package output draws ranked frames to a terminal or a plain stream.
package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/keilerkonzept/liveuniq/internal/tally"
)

// EraseLine moves the cursor to the start of the previous line and clears it.
const EraseLine = "\x1b[F\x1b[K"

// Sink is the stream frames are written to. *bufio.Writer satisfies it.
type Sink interface {
	io.Writer
	Flush() error
}

// Renderer writes one frame per call to Render. In interactive mode each
// frame replaces the previous one in place; in debug mode frames are
// appended so every intermediate state stays visible.
type Renderer struct {
	sink       Sink
	debug      bool
	lastHeight int
	buf        []byte
}

// Config selects how frames follow each other.
type Config struct {
	// Debug appends frames instead of redrawing them in place.
	Debug bool
}

func NewRenderer(sink Sink, cfg Config) *Renderer {
	return &Renderer{sink: sink, debug: cfg.Debug}
}

// LastHeight is the number of rows in the previous interactive frame.
func (r *Renderer) LastHeight() int {
	return r.lastHeight
}

// Render writes entries as "count<TAB>key" rows and flushes the sink.
func (r *Renderer) Render(entries []tally.Entry) error {
	buf := r.buf[:0]
	if !r.debug {
		for range r.lastHeight {
			buf = append(buf, EraseLine...)
		}
	}
	for _, e := range entries {
		buf = strconv.AppendUint(buf, e.Count, 10)
		buf = append(buf, '\t')
		buf = append(buf, e.Key...)
		buf = append(buf, '\n')
	}
	r.buf = buf

	if _, err := r.sink.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if err := r.sink.Flush(); err != nil {
		return fmt.Errorf("flush frame: %w", err)
	}
	if !r.debug {
		r.lastHeight = len(entries)
	}
	return nil
}
