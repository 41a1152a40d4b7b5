package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/msense/atharness/pkg/stream"
	"github.com/msense/atharness/pkg/tracelog"
)

// DefaultTimeout is the per-command idle timeout used when the caller
// passes zero.
const DefaultTimeout = 2 * time.Second

// readSlice bounds a single blocking read so cancellation is observed
// promptly even under a long idle timeout.
const readSlice = 50 * time.Millisecond

// Engine errors.
var (
	// ErrBusy indicates a query is already in flight on this engine.
	// Concurrent queries against one stream would interleave unattributable
	// replies, so the second caller is rejected, not queued.
	ErrBusy = errors.New("query already in flight")
)

// RawReply is the collected output of one command exchange.
type RawReply struct {
	// Command is the command text as written, without terminator.
	Command string

	// Lines are the complete reply lines in arrival order. Partial
	// fragments at the deadline are never included.
	Lines []string

	// Status is the terminal classification of the exchange.
	Status Status

	// Elapsed is the total wait time for the exchange.
	Elapsed time.Duration
}

// ATResult is the convenience result of ATQuery: the reply body plus the
// classified status, with the full raw exchange retained.
type ATResult struct {
	Command string
	Reply   string
	Status  Status
	Raw     RawReply
}

// Config configures a query engine.
type Config struct {
	// DefaultTimeout is the per-command idle timeout when a caller
	// passes zero (default: 2s).
	DefaultTimeout time.Duration

	// Dwell is an optional pause between consecutive batch commands,
	// giving slow modems settle time.
	Dwell time.Duration

	// Trace receives an event for every command, reply line, and
	// outcome. Nil disables tracing.
	Trace tracelog.Logger

	// OnCommand, if set, is called before each batch command is issued.
	OnCommand func(cmd string)
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{DefaultTimeout: DefaultTimeout}
}

// Engine executes commands against a single line stream, one at a time.
type Engine struct {
	stream    stream.LineStream
	config    Config
	trace     tracelog.Logger
	sessionID string

	busy atomic.Bool
}

// New creates an engine with the default configuration.
func New(s stream.LineStream) *Engine {
	return NewWithConfig(s, DefaultConfig())
}

// NewWithConfig creates an engine with the given configuration.
func NewWithConfig(s stream.LineStream, config Config) *Engine {
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = DefaultTimeout
	}
	trace := config.Trace
	if trace == nil {
		trace = tracelog.NoopLogger{}
	}
	return &Engine{
		stream:    s,
		config:    config,
		trace:     trace,
		sessionID: uuid.NewString(),
	}
}

// SessionID returns the UUID stamped on this engine's trace events.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Query writes a command and collects reply lines until the stop predicate
// returns true, a terminal token arrives (when stop is nil), or the idle
// timeout elapses with no further data. The returned status comes from
// Classify over the collected lines; a timeout is a status, not an error.
// Returns ErrBusy if another query is in flight.
func (e *Engine) Query(ctx context.Context, cmd string, timeout time.Duration, stop StopFunc) (RawReply, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return RawReply{Command: cmd}, ErrBusy
	}
	defer e.busy.Store(false)
	return e.query(ctx, cmd, timeout, stop)
}

// ATQuery is the AT convenience form: classify the exchange and extract the
// reply body (the last payload line, with echo and terminal tokens ignored).
func (e *Engine) ATQuery(ctx context.Context, cmd string, timeout time.Duration) (ATResult, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return ATResult{Command: cmd}, ErrBusy
	}
	defer e.busy.Store(false)
	return e.atQuery(ctx, cmd, timeout)
}

// BatchATQuery issues each command to completion before starting the next;
// commands are never interleaved. The result preserves input order with one
// entry per requested command; an ERROR or TIMEOUT on one command never
// prevents subsequent commands from running. Only caller cancellation
// cuts the batch short, returning the entries collected so far.
func (e *Engine) BatchATQuery(ctx context.Context, cmds []string, timeout time.Duration) ([]ATResult, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer e.busy.Store(false)

	results := make([]ATResult, 0, len(cmds))
	for i, cmd := range cmds {
		if i > 0 && e.config.Dwell > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(e.config.Dwell):
			}
		}
		if e.config.OnCommand != nil {
			e.config.OnCommand(cmd)
		}

		res, err := e.atQuery(ctx, cmd, timeout)
		results = append(results, res)
		if err != nil && ctx.Err() != nil {
			return results, ctx.Err()
		}
		// Transport faults stay isolated to their own entry.
	}
	return results, nil
}

func (e *Engine) atQuery(ctx context.Context, cmd string, timeout time.Duration) (ATResult, error) {
	raw, err := e.query(ctx, cmd, timeout, nil)
	return ATResult{
		Command: cmd,
		Reply:   replyBody(raw),
		Status:  raw.Status,
		Raw:     raw,
	}, err
}

func (e *Engine) query(ctx context.Context, cmd string, timeout time.Duration, stop StopFunc) (RawReply, error) {
	if timeout <= 0 {
		timeout = e.config.DefaultTimeout
	}
	reply := RawReply{Command: cmd, Status: StatusTimeout}
	start := time.Now()

	// Purge stale output so a fragment left over from a previous exchange
	// cannot attach to this reply.
	if r, ok := e.stream.(stream.Resetter); ok {
		r.ResetPending()
	}

	e.trace.Log(tracelog.Event{
		Timestamp: start,
		SessionID: e.sessionID,
		Direction: tracelog.DirectionOut,
		Category:  tracelog.CategoryCommand,
		Command:   &tracelog.CommandEvent{Text: cmd},
	})

	if err := e.stream.WriteLine(cmd); err != nil {
		e.logError(cmd, err)
		reply.Elapsed = time.Since(start)
		return reply, fmt.Errorf("failed to write %q: %w", cmd, err)
	}

	idle := time.Now().Add(timeout)
	for {
		if err := ctx.Err(); err != nil {
			return e.finish(reply, start), err
		}

		deadline := idle
		if slice := time.Now().Add(readSlice); slice.Before(deadline) {
			deadline = slice
		}
		if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
			deadline = ctxDeadline
		}

		line, err := e.stream.ReadLine(deadline)
		if err != nil {
			if errors.Is(err, stream.ErrReadTimeout) {
				if time.Now().Before(idle) {
					continue // sliced wait expired, idle budget remains
				}
				break // idle timeout; trailing fragment stays in the adapter
			}
			e.logError(cmd, err)
			return e.finish(reply, start), fmt.Errorf("failed to read reply for %q: %w", cmd, err)
		}

		reply.Lines = append(reply.Lines, line)
		e.trace.Log(tracelog.Event{
			Timestamp: time.Now(),
			SessionID: e.sessionID,
			Direction: tracelog.DirectionIn,
			Category:  tracelog.CategoryLine,
			Line:      &tracelog.LineEvent{Text: line, Command: cmd},
		})

		if stop != nil {
			if stop(reply.Lines) {
				break
			}
		} else if IsTerminal(line) {
			break
		}
		idle = time.Now().Add(timeout)
	}

	return e.finish(reply, start), nil
}

// finish classifies the accumulated lines and records the outcome.
func (e *Engine) finish(reply RawReply, start time.Time) RawReply {
	reply.Status = Classify(reply.Lines)
	reply.Elapsed = time.Since(start)
	e.trace.Log(tracelog.Event{
		Timestamp: time.Now(),
		SessionID: e.sessionID,
		Direction: tracelog.DirectionIn,
		Category:  tracelog.CategoryOutcome,
		Outcome: &tracelog.OutcomeEvent{
			Command:       reply.Command,
			Status:        reply.Status.String(),
			ElapsedMillis: reply.Elapsed.Milliseconds(),
			LineCount:     len(reply.Lines),
		},
	})
	return reply
}

func (e *Engine) logError(cmd string, err error) {
	e.trace.Log(tracelog.Event{
		Timestamp: time.Now(),
		SessionID: e.sessionID,
		Direction: tracelog.DirectionIn,
		Category:  tracelog.CategoryError,
		Error:     &tracelog.ErrorEvent{Command: cmd, Message: err.Error()},
	})
}

// replyBody extracts the reply payload: the last non-empty line that is
// neither a terminal token nor an echo of the command itself.
func replyBody(raw RawReply) string {
	body := ""
	for _, line := range raw.Lines {
		t := strings.TrimSpace(line)
		if t == "" || t == raw.Command || IsTerminal(line) {
			continue
		}
		body = t
	}
	return body
}
