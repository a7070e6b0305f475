// Package stream feeds input lines through the counting pipeline.
package stream

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var ErrInvalidEncoding = errors.New("invalid UTF-8 in input")

// Reader splits a byte stream into lines of any length. "\n", "\r\n" and a
// lone "\r" all end a line; the terminator is not part of the line.
type Reader struct {
	r   *bufio.Reader
	buf []byte
	n   int
	err error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the next line, or io.EOF once the input is exhausted.
func (r *Reader) Next() (string, error) {
	if r.err != nil {
		err := r.err
		r.err = nil
		return "", fmt.Errorf("read line %d: %w", r.n+1, err)
	}
	r.buf = r.buf[:0]
	for {
		if _, err := r.r.Peek(1); err != nil {
			if !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("read line %d: %w", r.n+1, err)
			}
			if len(r.buf) == 0 {
				return "", io.EOF
			}
			return r.line()
		}
		window, _ := r.r.Peek(r.r.Buffered())
		i := bytes.IndexAny(window, "\r\n")
		if i < 0 {
			r.buf = append(r.buf, window...)
			_, _ = r.r.Discard(len(window))
			continue
		}
		r.buf = append(r.buf, window[:i]...)
		cr := window[i] == '\r'
		_, _ = r.r.Discard(i + 1)
		if cr {
			r.skipLF()
		}
		return r.line()
	}
}

// Lines returns how many lines have been read.
func (r *Reader) Lines() int {
	return r.n
}

func (r *Reader) line() (string, error) {
	r.n++
	if !utf8.Valid(r.buf) {
		return "", fmt.Errorf("line %d: %w", r.n, ErrInvalidEncoding)
	}
	return string(r.buf), nil
}

// skipLF consumes the "\n" of a "\r\n" pair. A read error hit while
// looking is kept for the next call so the current line is still returned.
func (r *Reader) skipLF() {
	next, err := r.r.Peek(1)
	if err == nil && next[0] == '\n' {
		_, _ = r.r.Discard(1)
		return
	}
	if err != nil && !errors.Is(err, io.EOF) {
		r.err = err
	}
}
