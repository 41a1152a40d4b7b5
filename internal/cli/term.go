package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/msense/atharness/pkg/query"
)

func newTermCmd() *cobra.Command {
	var (
		connect   string
		replay    string
		timeout   time.Duration
		tracePath string
	)

	c := &cobra.Command{
		Use:   "term",
		Short: "Interactive AT terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ls, closeStream, err := openStream(connect, replay)
			if err != nil {
				return err
			}
			defer closeStream()

			trace, closeTrace, err := openTrace(tracePath)
			if err != nil {
				return err
			}
			defer closeTrace()

			engine := query.NewWithConfig(ls, query.Config{
				DefaultTimeout: timeout,
				Trace:          trace,
			})

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "at> ",
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return fmt.Errorf("failed to create readline: %w", err)
			}
			defer rl.Close()

			return termLoop(cmd, rl, engine)
		},
	}

	c.Flags().StringVarP(&connect, "connect", "c", "", "Device address (host:port)")
	c.Flags().StringVar(&replay, "replay", "", "Replay a recorded .atrace file instead of connecting")
	c.Flags().DurationVarP(&timeout, "timeout", "t", 2*time.Second, "Per-command idle timeout")
	c.Flags().StringVar(&tracePath, "trace", "", "Record all exchanges to an .atrace file")
	return c
}

func termLoop(cmd *cobra.Command, rl *readline.Instance, engine *query.Engine) error {
	out := rl.Stdout()
	fmt.Fprintln(out, "Type AT commands; 'exit' to quit.")

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(out, "Exiting...")
			return nil
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return nil
		}

		reply, err := engine.Query(cmd.Context(), input, 0, nil)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		for _, l := range reply.Lines {
			fmt.Fprintln(out, l)
		}
		fmt.Fprintf(out, "[%s after %s]\n", reply.Status, reply.Elapsed.Round(time.Millisecond))
	}
}
