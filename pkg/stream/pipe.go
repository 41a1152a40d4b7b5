package stream

import (
	"sync"
	"time"
)

// pollInterval bounds how often a blocked ReadLine rechecks the queue.
const pollInterval = time.Millisecond

type pendingLine struct {
	text string
	at   time.Time // earliest time the line may be delivered
}

// Pipe is an in-memory LineStream for tests and trace replay. Replies are
// scripted per command: writing a scripted command enqueues its reply lines,
// optionally spaced by a per-line delay. Commands without a script produce
// no output, which the engine observes as a timeout.
type Pipe struct {
	mu      sync.Mutex
	scripts map[string][]scriptLine
	pending []pendingLine
	written []string
	closed  bool
}

type scriptLine struct {
	text  string
	delay time.Duration
}

// NewPipe creates an empty scripted pipe.
func NewPipe() *Pipe {
	return &Pipe{scripts: make(map[string][]scriptLine)}
}

// ScriptReply registers the reply lines delivered when command is written.
// Replies become available immediately.
func (p *Pipe) ScriptReply(command string, lines ...string) {
	p.ScriptReplyDelayed(command, 0, lines...)
}

// ScriptReplyDelayed registers reply lines delivered with the given delay
// between consecutive lines (the first line is delayed once).
func (p *Pipe) ScriptReplyDelayed(command string, delay time.Duration, lines ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	script := make([]scriptLine, 0, len(lines))
	for _, l := range lines {
		script = append(script, scriptLine{text: l, delay: delay})
	}
	p.scripts[command] = script
}

// QueueLines enqueues unsolicited lines, available immediately.
func (p *Pipe) QueueLines(lines ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	for _, l := range lines {
		p.pending = append(p.pending, pendingLine{text: l, at: now})
	}
}

// WriteLine records the command and enqueues its scripted reply, if any.
func (p *Pipe) WriteLine(line string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.written = append(p.written, line)

	at := time.Now()
	for _, sl := range p.scripts[line] {
		at = at.Add(sl.delay)
		p.pending = append(p.pending, pendingLine{text: sl.text, at: at})
	}
	return nil
}

// ReadLine delivers the next available line, honoring scripted delays.
func (p *Pipe) ReadLine(deadline time.Time) (string, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return "", ErrClosed
		}
		if len(p.pending) > 0 {
			next := p.pending[0]
			if !next.at.After(time.Now()) {
				p.pending = p.pending[1:]
				p.mu.Unlock()
				return next.text, nil
			}
			p.mu.Unlock()
			if next.at.After(deadline) {
				time.Sleep(time.Until(deadline))
				return "", ErrReadTimeout
			}
			time.Sleep(time.Until(next.at))
			continue
		}
		p.mu.Unlock()

		if !time.Now().Before(deadline) {
			return "", ErrReadTimeout
		}
		time.Sleep(pollInterval)
	}
}

// ResetPending discards all queued lines not yet read, including scripted
// lines still waiting on their delay. Mirrors a real adapter purging stale
// device output before the next command.
func (p *Pipe) ResetPending() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = nil
}

// Written returns the commands written so far, in order.
func (p *Pipe) Written() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.written))
	copy(out, p.written)
	return out
}

// Close marks the pipe dead; subsequent operations return ErrClosed.
func (p *Pipe) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// Compile-time interface satisfaction checks.
var (
	_ LineStream = (*Pipe)(nil)
	_ Resetter   = (*Pipe)(nil)
)
