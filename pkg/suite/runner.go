package suite

import (
	"context"
	"errors"
	"time"

	"github.com/msense/atharness/pkg/limits"
	"github.com/msense/atharness/pkg/parse"
	"github.com/msense/atharness/pkg/query"
)

// Runner executes suites against one engine. One verdict per command,
// in order; a failing command never stops the commands after it.
type Runner struct {
	engine   *query.Engine
	registry *parse.Registry
}

// NewRunner creates a runner for the given engine and parser registry.
func NewRunner(engine *query.Engine, registry *parse.Registry) *Runner {
	return &Runner{engine: engine, registry: registry}
}

// Run issues every suite command in order and evaluates each reply against
// the suite's limits. Only caller cancellation or a busy engine cuts the
// run short, returning the verdicts collected so far.
func (r *Runner) Run(ctx context.Context, s *Suite) ([]limits.Verdict, error) {
	timeout := s.TimeoutDuration()
	dwell := s.DwellDuration()

	verdicts := make([]limits.Verdict, 0, len(s.Commands))
	for i, cmd := range s.Commands {
		if i > 0 && dwell > 0 {
			select {
			case <-ctx.Done():
				return verdicts, ctx.Err()
			case <-time.After(dwell):
			}
		}

		res, err := r.engine.ATQuery(ctx, cmd, timeout)
		if err != nil {
			if ctx.Err() != nil {
				return verdicts, ctx.Err()
			}
			if errors.Is(err, query.ErrBusy) {
				return verdicts, err
			}
			// Transport fault: the verdict below records it, the suite
			// moves on.
		}

		verdicts = append(verdicts, r.evaluate(cmd, res, s.Limits))
	}
	return verdicts, nil
}

// evaluate resolves the command's parser and checks the reply against the
// suite limits. A non-OK status or a parse failure is a FAIL verdict on
// its own; limits are only consulted for replies that parsed cleanly.
func (r *Runner) evaluate(cmd string, res query.ATResult, rules map[string]limits.SpecSet) limits.Verdict {
	parser, name := r.registry.Resolve(cmd)

	if !res.Status.IsOK() {
		return limits.Verdict{
			Name:    name,
			Command: cmd,
			Raw:     res.Raw.Lines,
			Status:  res.Status,
			Reason:  "status " + res.Status.String(),
		}
	}

	parsed, err := parser(res)
	if err != nil {
		return limits.Verdict{
			Name:    name,
			Command: cmd,
			Raw:     res.Raw.Lines,
			Status:  res.Status,
			Reason:  "parse failure: " + err.Error(),
		}
	}

	verdict := limits.Evaluate(name, parsed, rules)
	verdict.Command = cmd
	verdict.Raw = res.Raw.Lines
	verdict.Status = res.Status
	return verdict
}
