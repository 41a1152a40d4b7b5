package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/msense/atharness/pkg/tracelog"
)

func newTraceCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded .atrace files",
	}
	c.AddCommand(newTraceViewCmd())
	c.AddCommand(newTraceStatsCmd())
	return c
}

func newTraceViewCmd() *cobra.Command {
	var (
		session   string
		direction string
		category  string
	)

	c := &cobra.Command{
		Use:   "view <file.atrace>",
		Short: "View trace events in human-readable form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := tracelog.Filter{SessionID: session}
			if direction != "" {
				d, err := parseDirection(direction)
				if err != nil {
					return err
				}
				filter.Direction = &d
			}
			if category != "" {
				cat, err := parseCategory(category)
				if err != nil {
					return err
				}
				filter.Category = &cat
			}

			reader, err := tracelog.NewFilteredReader(args[0], filter)
			if err != nil {
				return err
			}
			defer reader.Close()

			out := cmd.OutOrStdout()
			for {
				event, err := reader.Next()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
				printEvent(out, event)
			}
		},
	}

	c.Flags().StringVar(&session, "session", "", "Filter by session ID")
	c.Flags().StringVar(&direction, "direction", "", "Filter by direction: in|out")
	c.Flags().StringVar(&category, "category", "", "Filter by category: command|line|outcome|error")
	return c
}

func newTraceStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file.atrace>",
		Short: "Show per-command statistics for a trace file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := tracelog.NewReader(args[0])
			if err != nil {
				return err
			}
			defer reader.Close()

			events, err := reader.ReadAll()
			if err != nil {
				return err
			}

			type stat struct {
				count  int
				status map[string]int
			}
			byCommand := make(map[string]*stat)
			var order []string
			sessions := make(map[string]struct{})

			for _, ev := range events {
				sessions[ev.SessionID] = struct{}{}
				if ev.Outcome == nil {
					continue
				}
				s, ok := byCommand[ev.Outcome.Command]
				if !ok {
					s = &stat{status: make(map[string]int)}
					byCommand[ev.Outcome.Command] = s
					order = append(order, ev.Outcome.Command)
				}
				s.count++
				s.status[ev.Outcome.Status]++
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Events:   %d\n", len(events))
			fmt.Fprintf(out, "Sessions: %d\n", len(sessions))
			fmt.Fprintf(out, "\n")
			for _, cmdText := range order {
				s := byCommand[cmdText]
				var parts []string
				for status, n := range s.status {
					parts = append(parts, fmt.Sprintf("%s=%d", status, n))
				}
				fmt.Fprintf(out, "%-20s %3dx  %s\n", cmdText, s.count, strings.Join(parts, " "))
			}
			return nil
		},
	}
}

func printEvent(out io.Writer, event tracelog.Event) {
	ts := event.Timestamp.Format(time.RFC3339Nano)
	switch {
	case event.Command != nil:
		fmt.Fprintf(out, "%s %s %s  %s\n", ts, event.Direction, event.Category, event.Command.Text)
	case event.Line != nil:
		fmt.Fprintf(out, "%s %s %s  %s\n", ts, event.Direction, event.Category, event.Line.Text)
	case event.Outcome != nil:
		fmt.Fprintf(out, "%s %s %s  %s -> %s (%d lines, %dms)\n", ts, event.Direction, event.Category,
			event.Outcome.Command, event.Outcome.Status, event.Outcome.LineCount, event.Outcome.ElapsedMillis)
	case event.Error != nil:
		fmt.Fprintf(out, "%s %s %s  %s: %s\n", ts, event.Direction, event.Category,
			event.Error.Command, event.Error.Message)
	default:
		fmt.Fprintf(out, "%s %s %s\n", ts, event.Direction, event.Category)
	}
}

func parseDirection(s string) (tracelog.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return tracelog.DirectionIn, nil
	case "out":
		return tracelog.DirectionOut, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (expected in|out)", s)
	}
}

func parseCategory(s string) (tracelog.Category, error) {
	switch strings.ToLower(s) {
	case "command":
		return tracelog.CategoryCommand, nil
	case "line":
		return tracelog.CategoryLine, nil
	case "outcome":
		return tracelog.CategoryOutcome, nil
	case "error":
		return tracelog.CategoryError, nil
	default:
		return 0, fmt.Errorf("unknown category %q (expected command|line|outcome|error)", s)
	}
}
