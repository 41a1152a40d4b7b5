package stream

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"
)

// DefaultTerminator is the line terminator appended to outgoing commands.
const DefaultTerminator = "\r\n"

// DeadlineReadWriter is the subset of net.Conn the adapter needs: a byte
// stream whose reads can be bounded by a deadline.
type DeadlineReadWriter interface {
	io.ReadWriter
	SetReadDeadline(t time.Time) error
}

// Conn adapts a deadline-capable byte stream (typically a net.Conn to a
// serial bridge) into a LineStream. Incoming bytes pass through a Splitter
// so only terminator-complete lines are ever returned.
type Conn struct {
	rw         DeadlineReadWriter
	terminator string

	mu       sync.Mutex
	splitter *Splitter
	queue    []string
	readBuf  []byte
	closed   bool
}

// NewConn creates a line stream over rw using the default CRLF terminator.
func NewConn(rw DeadlineReadWriter) *Conn {
	return NewConnWithTerminator(rw, DefaultTerminator)
}

// NewConnWithTerminator creates a line stream with a custom outgoing
// terminator (e.g. a host-to-device sentinel).
func NewConnWithTerminator(rw DeadlineReadWriter, terminator string) *Conn {
	return &Conn{
		rw:         rw,
		terminator: terminator,
		splitter:   NewSplitter(),
		readBuf:    make([]byte, 1024),
	}
}

// WriteLine sends one command line followed by the terminator.
func (c *Conn) WriteLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if _, err := io.WriteString(c.rw, line+c.terminator); err != nil {
		return fmt.Errorf("failed to write command: %w", err)
	}
	return nil
}

// ReadLine returns the next complete line or ErrReadTimeout at the deadline.
func (c *Conn) ReadLine(deadline time.Time) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		if len(c.queue) > 0 {
			line := c.queue[0]
			c.queue = c.queue[1:]
			return line, nil
		}
		if c.closed {
			return "", ErrClosed
		}
		if !time.Now().Before(deadline) {
			return "", ErrReadTimeout
		}

		if err := c.rw.SetReadDeadline(deadline); err != nil {
			return "", fmt.Errorf("failed to set read deadline: %w", err)
		}
		n, err := c.rw.Read(c.readBuf)
		if n > 0 {
			lines, serr := c.splitter.Push(c.readBuf[:n])
			c.queue = append(c.queue, lines...)
			if serr != nil {
				return "", serr
			}
		}
		if err != nil {
			if isDeadlineError(err) {
				continue // queue check above decides between line and timeout
			}
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				c.closed = true
				continue
			}
			return "", fmt.Errorf("failed to read stream: %w", err)
		}
	}
}

// ResetPending discards unconsumed input: the buffered partial fragment and
// any complete lines not yet read. The engine calls this before each
// command so stale output cannot attach to the next reply.
func (c *Conn) ResetPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = nil
	c.splitter.Reset()
}

func isDeadlineError(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Resetter is implemented by streams that buffer input between reads.
// The query engine purges pending input through it before each command.
type Resetter interface {
	ResetPending()
}

// Compile-time interface satisfaction checks.
var (
	_ LineStream = (*Conn)(nil)
	_ Resetter   = (*Conn)(nil)
)
