package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/msense/atharness/pkg/parse"
	"github.com/msense/atharness/pkg/query"
	"github.com/msense/atharness/pkg/report"
	"github.com/msense/atharness/pkg/suite"
)

func newRunCmd() *cobra.Command {
	var (
		suitePath string
		connect   string
		replay    string
		timeout   time.Duration
		csvPath   string
		asJSON    bool
		highlight bool
		tracePath string
	)

	c := &cobra.Command{
		Use:   "run",
		Short: "Run a check suite against a device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := suite.Load(suitePath)
			if err != nil {
				return err
			}
			if timeout > 0 {
				s.Timeout = timeout.String()
			}

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

			registry := parse.NewRegistry()
			if err := parse.RegisterModemParsers(registry); err != nil {
				return err
			}

			engine := query.NewWithConfig(ls, query.Config{Trace: trace})
			runner := suite.NewRunner(engine, registry)

			verdicts, err := runner.Run(cmd.Context(), s)
			if err != nil {
				return err
			}

			text, records, err := report.Generate(verdicts, report.Options{
				Highlight: highlight,
				AsJSON:    asJSON,
				Sink:      os.Stdout,
				RunID:     engine.SessionID(),
			})
			if err != nil {
				return err
			}
			fmt.Print(text)

			if csvPath != "" {
				if err := report.ExportCSV(csvPath, records); err != nil {
					return err
				}
			}

			failed := 0
			for _, v := range verdicts {
				if !v.Passed {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("suite failed (%d failed check(s))", failed)
			}
			return nil
		},
	}

	c.Flags().StringVarP(&suitePath, "suite", "s", "", "Suite YAML file (required)")
	c.Flags().StringVarP(&connect, "connect", "c", "", "Device address (host:port)")
	c.Flags().StringVar(&replay, "replay", "", "Replay a recorded .atrace file instead of connecting")
	c.Flags().DurationVarP(&timeout, "timeout", "t", 0, "Override the suite's per-command timeout")
	c.Flags().StringVar(&csvPath, "csv", "", "Append result records to a CSV file")
	c.Flags().BoolVar(&asJSON, "json", false, "Emit records as JSON after the text report")
	c.Flags().BoolVar(&highlight, "highlight", true, "Colorize PASS/FAIL when stdout is a terminal")
	c.Flags().StringVar(&tracePath, "trace", "", "Record all exchanges to an .atrace file")

	_ = c.MarkFlagRequired("suite")
	return c
}
