package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msense/atharness/pkg/limits"
	"github.com/msense/atharness/pkg/parse"
	"github.com/msense/atharness/pkg/query"
)

func sampleVerdicts() []limits.Verdict {
	return []limits.Verdict{
		{
			Name:    "Battery voltage",
			Command: "AT%XVBAT",
			Status:  query.StatusOK,
			Parsed:  parse.Parsed{Fields: map[string]any{"value": 5046}},
			Passed:  true,
			Reason:  "within limits",
		},
		{
			Name:    "Modem temperature",
			Command: "AT%XTEMP?",
			Status:  query.StatusOK,
			Parsed:  parse.Parsed{Fields: map[string]any{"value": 42}},
			Passed:  false,
			Reason:  "42 above max 30",
		},
	}
}

func TestGenerateTextAndRecords(t *testing.T) {
	text, records, err := Generate(sampleVerdicts(), Options{RunID: "run-1"})
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "run-1", records[0].RunID)
	assert.Equal(t, "Battery voltage", records[0].Name)
	assert.Equal(t, "OK", records[0].Status)
	assert.True(t, records[0].Passed)
	assert.Equal(t, "Modem temperature", records[1].Name)
	assert.False(t, records[1].Passed)

	assert.Contains(t, text, "PASS")
	assert.Contains(t, text, "FAIL")
	assert.Contains(t, text, "42 above max 30")
	assert.Contains(t, text, "1/2 passed")
}

func TestGenerateRedirectedOutputStaysPlain(t *testing.T) {
	// A buffer is not a terminal, so highlight must not inject escapes.
	text, _, err := Generate(sampleVerdicts(), Options{Highlight: true, Sink: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.NotContains(t, text, "\x1b[")
}

func TestGenerateAsJSON(t *testing.T) {
	text, records, err := Generate(sampleVerdicts(), Options{AsJSON: true})
	require.NoError(t, err)

	start := strings.Index(text, "[")
	require.GreaterOrEqual(t, start, 0)

	var decoded []Record
	require.NoError(t, json.Unmarshal([]byte(text[start:]), &decoded))
	require.Len(t, decoded, len(records))

	// Round trip preserves the identifying fields.
	for i, r := range records {
		assert.Equal(t, r.Name, decoded[i].Name)
		assert.Equal(t, r.Status, decoded[i].Status)
		assert.Equal(t, r.Reason, decoded[i].Reason)
	}
}

func TestExportCSVHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	_, records, err := Generate(sampleVerdicts()[:1], Options{})
	require.NoError(t, err)

	require.NoError(t, ExportCSV(path, records))
	require.NoError(t, ExportCSV(path, records))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	// One header plus two data rows across both calls.
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "Battery voltage", rows[1][1])
	assert.Equal(t, "Battery voltage", rows[2][1])
}

func TestExportCSVFieldsColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.csv")
	records := []Record{{
		Name:   "Network monitor",
		Status: "OK",
		Fields: map[string]any{"rsrp_dbm": -87},
	}}
	require.NoError(t, ExportCSV(path, records))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var fields map[string]any
	require.NoError(t, json.Unmarshal([]byte(rows[1][6]), &fields))
	assert.Equal(t, float64(-87), fields["rsrp_dbm"])
}
