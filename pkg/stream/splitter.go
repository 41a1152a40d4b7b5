package stream

import (
	"bytes"
	"fmt"
)

// DefaultMaxLineSize is the maximum accumulated size of a single line (4 KB).
// AT-style replies are short; anything larger indicates a framing fault.
const DefaultMaxLineSize = 4096

// Splitter converts raw byte chunks into terminator-delimited lines.
// A trailing fragment without a terminator stays buffered until more data
// arrives; it is never emitted as a line. Reset discards the fragment,
// which the engine does between commands so a partial reply cannot leak
// into the next command's output.
type Splitter struct {
	buf         bytes.Buffer
	maxLineSize int
}

// NewSplitter creates a splitter with the default maximum line size.
func NewSplitter() *Splitter {
	return &Splitter{maxLineSize: DefaultMaxLineSize}
}

// NewSplitterWithMaxSize creates a splitter with a custom maximum line size.
func NewSplitterWithMaxSize(maxSize int) *Splitter {
	return &Splitter{maxLineSize: maxSize}
}

// Push appends a chunk and returns all complete lines it produced.
// Line terminators are LF or CRLF; the terminator and a trailing CR are
// stripped from returned lines.
func (s *Splitter) Push(chunk []byte) ([]string, error) {
	s.buf.Write(chunk)

	var lines []string
	for {
		data := s.buf.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		line := data[:i]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		lines = append(lines, string(line))
		s.buf.Next(i + 1)
	}

	if s.buf.Len() > s.maxLineSize {
		pending := s.buf.Len()
		s.buf.Reset()
		return lines, fmt.Errorf("%w: %d > %d", ErrLineTooLong, pending, s.maxLineSize)
	}
	return lines, nil
}

// Pending returns the size of the buffered partial fragment.
func (s *Splitter) Pending() int {
	return s.buf.Len()
}

// Reset discards any buffered partial fragment.
func (s *Splitter) Reset() {
	s.buf.Reset()
}
