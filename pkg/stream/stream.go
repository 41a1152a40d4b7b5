package stream

import (
	"errors"
	"time"
)

// Stream errors.
var (
	// ErrReadTimeout indicates no complete line arrived before the deadline.
	ErrReadTimeout = errors.New("read timeout: no complete line before deadline")

	// ErrClosed indicates the stream has been closed.
	ErrClosed = errors.New("stream closed")

	// ErrLineTooLong indicates a line exceeded the maximum line size.
	ErrLineTooLong = errors.New("line too long")
)

// LineStream is a bidirectional line transport. The query engine owns
// exactly one LineStream at a time and serializes access to it; concurrent
// use from multiple goroutines is not required of implementations.
type LineStream interface {
	// WriteLine sends one command line to the device. Implementations
	// append the protocol line terminator; callers pass the bare command.
	WriteLine(line string) error

	// ReadLine returns the next complete line, blocking until one is
	// available or the deadline passes. A partial line buffered at the
	// deadline is retained for a later call, never returned truncated.
	// Returns ErrReadTimeout when the deadline passes with no complete
	// line, ErrClosed when the stream is dead.
	ReadLine(deadline time.Time) (string, error)
}
