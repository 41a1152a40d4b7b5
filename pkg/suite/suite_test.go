package suite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msense/atharness/pkg/parse"
	"github.com/msense/atharness/pkg/query"
	"github.com/msense/atharness/pkg/stream"
)

const sampleYAML = `
name: factory-check
timeout: 500ms
commands:
  - AT+CGMI
  - AT%XVBAT
  - AT%XMONITOR
limits:
  Battery voltage:
    min: 4900
    max: 5100
  Network monitor:
    - field: rsrp_dbm
      min: -106
    - field: reg_status
      equals: 1
`

func TestParseSuite(t *testing.T) {
	s, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "factory-check", s.Name)
	assert.Equal(t, 500*time.Millisecond, s.TimeoutDuration())
	assert.Equal(t, []string{"AT+CGMI", "AT%XVBAT", "AT%XMONITOR"}, s.Commands)

	bat, ok := s.Limits["Battery voltage"]
	require.True(t, ok)
	assert.False(t, bat.List)

	mon, ok := s.Limits["Network monitor"]
	require.True(t, ok)
	assert.True(t, mon.List)
	require.Len(t, mon.Specs, 2)
}

func TestParseSuiteValidation(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"missing name", "commands: [AT]", "name is required"},
		{"no commands", "name: x", "at least one command"},
		{"empty command", "name: x\ncommands: ['AT', '']", "command 2 is empty"},
		{"bad yaml", "name: [", "failed to parse YAML"},
		{"bad timeout", "name: x\ncommands: [AT]\ntimeout: soon", "invalid timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			require.Error(t, err)

			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Contains(t, le.Error(), tt.want)
		})
	}
}

func TestLoadSuiteFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "factory-check", s.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Error(), "failed to read file")
}

func newTestRunner(t *testing.T, pipe *stream.Pipe) *Runner {
	t.Helper()
	registry := parse.NewRegistry()
	require.NoError(t, parse.RegisterModemParsers(registry))
	return NewRunner(query.New(pipe), registry)
}

func TestRunnerVerdictPerCommand(t *testing.T) {
	pipe := stream.NewPipe()
	pipe.ScriptReply("AT+CGMI", "Nordic Semiconductor ASA", "OK")
	pipe.ScriptReply("AT%XVBAT", "%XVBAT: 5046", "OK")
	pipe.ScriptReply("AT%XMONITOR",
		`%XMONITOR: 1,"","","24201","81AE",7,20,"0331C805",281,6400,53,42,"","","",""`,
		"OK")

	s, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	runner := newTestRunner(t, pipe)
	verdicts, err := runner.Run(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, verdicts, 3)

	assert.Equal(t, "Manufacturer", verdicts[0].Name)
	assert.True(t, verdicts[0].Passed)
	assert.Equal(t, "no limit defined", verdicts[0].Reason)

	assert.Equal(t, "Battery voltage", verdicts[1].Name)
	assert.True(t, verdicts[1].Passed)

	// rsrp_dbm = 53 - 140 = -87, above the -106 floor; reg_status 1.
	assert.Equal(t, "Network monitor", verdicts[2].Name)
	assert.True(t, verdicts[2].Passed)
}

func TestRunnerNonOKStatusFailsWithoutLimits(t *testing.T) {
	pipe := stream.NewPipe()
	pipe.ScriptReply("AT+CGMI", "+CME ERROR: 513")
	pipe.ScriptReply("AT%XVBAT", "%XVBAT: 5000", "OK")

	s := &Suite{
		Name:     "errors",
		Timeout:  "100ms",
		Commands: []string{"AT+CGMI", "AT%XVBAT"},
	}

	runner := newTestRunner(t, pipe)
	verdicts, err := runner.Run(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, verdicts, 2)

	assert.False(t, verdicts[0].Passed)
	assert.Equal(t, query.StatusError, verdicts[0].Status)
	assert.Contains(t, verdicts[0].Reason, "ERROR")

	// The failing command does not stop the one after it.
	assert.True(t, verdicts[1].Passed)
}

func TestRunnerParseFailureIsFailVerdict(t *testing.T) {
	pipe := stream.NewPipe()
	pipe.ScriptReply("AT%XVBAT", "garbage", "OK")

	s := &Suite{
		Name:     "parse-fail",
		Timeout:  "100ms",
		Commands: []string{"AT%XVBAT"},
	}

	runner := newTestRunner(t, pipe)
	verdicts, err := runner.Run(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, verdicts, 1)

	assert.False(t, verdicts[0].Passed)
	assert.Contains(t, verdicts[0].Reason, "parse failure")
}

func TestRunnerTimeoutVerdict(t *testing.T) {
	pipe := stream.NewPipe()

	s := &Suite{
		Name:     "silent",
		Timeout:  "50ms",
		Commands: []string{"AT+SILENT"},
	}

	runner := newTestRunner(t, pipe)
	verdicts, err := runner.Run(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, verdicts, 1)

	assert.False(t, verdicts[0].Passed)
	assert.Equal(t, query.StatusTimeout, verdicts[0].Status)
}
