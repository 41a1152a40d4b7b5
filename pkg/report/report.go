package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/msense/atharness/pkg/limits"
)

var (
	passStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
)

// Record is the serialization-ready form of one verdict.
type Record struct {
	RunID   string         `json:"run_id,omitempty"`
	Name    string         `json:"name"`
	Command string         `json:"command"`
	Status  string         `json:"status"`
	Passed  bool           `json:"passed"`
	Reason  string         `json:"reason"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// Options controls report rendering.
type Options struct {
	// Highlight wraps PASS/FAIL tokens in color when the sink is an
	// interactive terminal. Redirected output stays plain.
	Highlight bool

	// AsJSON appends the records as a serialized JSON document after
	// the text block.
	AsJSON bool

	// Sink is the writer the text is destined for; it is consulted only
	// for interactivity detection. Defaults to os.Stdout.
	Sink io.Writer

	// RunID, if set, is stamped on every record. Callers typically pass
	// the engine's session ID so records correlate with trace events.
	RunID string
}

// Generate renders verdicts in execution order: one line per verdict plus
// a summary block, and one Record per verdict regardless of options.
func Generate(verdicts []limits.Verdict, opts Options) (string, []Record, error) {
	colorize := opts.Highlight && interactive(opts.Sink)

	records := make([]Record, 0, len(verdicts))
	var b strings.Builder
	passed := 0

	for _, v := range verdicts {
		rec := toRecord(v)
		rec.RunID = opts.RunID
		records = append(records, rec)
		if v.Passed {
			passed++
		}

		tag := "FAIL"
		if v.Passed {
			tag = "PASS"
		}
		if colorize {
			if v.Passed {
				tag = passStyle.Render(tag)
			} else {
				tag = failStyle.Render(tag)
			}
		}
		fmt.Fprintf(&b, "%s  %-25s  %s\n", tag, v.Name, v.Reason)
	}

	fmt.Fprintf(&b, "\n%d/%d passed\n", passed, len(verdicts))

	if opts.AsJSON {
		doc, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return "", nil, fmt.Errorf("failed to serialize records: %w", err)
		}
		b.WriteString("\n")
		b.Write(doc)
		b.WriteString("\n")
	}

	return b.String(), records, nil
}

func toRecord(v limits.Verdict) Record {
	return Record{
		Name:    v.Name,
		Command: v.Command,
		Status:  v.Status.String(),
		Passed:  v.Passed,
		Reason:  v.Reason,
		Fields:  v.Parsed.Fields,
	}
}

// interactive reports whether the sink is a terminal. Only real files can
// be terminals; everything else (buffers, pipes wrapped in writers) is
// treated as redirected.
func interactive(sink io.Writer) bool {
	if sink == nil {
		sink = os.Stdout
	}
	f, ok := sink.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
