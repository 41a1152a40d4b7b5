package limits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/msense/atharness/pkg/parse"
)

func f(v float64) *float64 { return &v }

func scalar(v any) parse.Parsed {
	return parse.Parsed{Fields: map[string]any{"value": v}}
}

func TestEvaluateNoLimitDefined(t *testing.T) {
	rules := map[string]SpecSet{"Battery voltage": One(Spec{Min: f(3300)})}

	for _, parsed := range []parse.Parsed{
		scalar(42),
		scalar("anything"),
		{},
	} {
		verdict := Evaluate("Unlisted command", parsed, rules)
		assert.True(t, verdict.Passed)
		assert.Equal(t, "no limit defined", verdict.Reason)
		assert.Nil(t, verdict.Limit)
	}
}

func TestEvaluateMinMaxRange(t *testing.T) {
	rules := map[string]SpecSet{
		"System Voltage": One(Spec{Min: f(4900), Max: f(5100)}),
	}

	verdict := Evaluate("System Voltage", scalar(5000), rules)
	assert.True(t, verdict.Passed)
	assert.Equal(t, "within limits", verdict.Reason)

	verdict = Evaluate("System Voltage", scalar(5200), rules)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.Reason, "max 5100")
	assert.Contains(t, verdict.Reason, "5200")

	verdict = Evaluate("System Voltage", scalar(4800), rules)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.Reason, "min 4900")
}

func TestEvaluateListEnumeratesOnlyFailures(t *testing.T) {
	rules := map[string]SpecSet{
		"Network monitor": Many(
			Spec{Field: "rsrp_dbm", Min: f(-106)},
			Spec{Field: "reg_status", Equals: 1},
		),
	}
	parsed := parse.Parsed{Fields: map[string]any{
		"rsrp_dbm":   -110,
		"reg_status": 1,
	}}

	verdict := Evaluate("Network monitor", parsed, rules)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.Reason, "rsrp_dbm")
	assert.NotContains(t, verdict.Reason, "reg_status")

	// All entries passing means a clean PASS.
	parsed.Fields["rsrp_dbm"] = -90
	verdict = Evaluate("Network monitor", parsed, rules)
	assert.True(t, verdict.Passed)
}

func TestEvaluateListMissingField(t *testing.T) {
	rules := map[string]SpecSet{
		"Network monitor": Many(Spec{Field: "snr_db", Min: f(4)}),
	}
	verdict := Evaluate("Network monitor", parse.Parsed{Fields: map[string]any{}}, rules)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.Reason, "snr_db: field not present")
}

func TestEvaluateBareSpecWithFieldSelector(t *testing.T) {
	rules := map[string]SpecSet{
		"Network monitor": One(Spec{Field: "rsrp_dbm", Min: f(-105)}),
	}
	parsed := parse.Parsed{Fields: map[string]any{"rsrp_dbm": -87, "snr_db": 4.2}}

	verdict := Evaluate("Network monitor", parsed, rules)
	assert.True(t, verdict.Passed)
}

func TestEvaluateEquals(t *testing.T) {
	rules := map[string]SpecSet{
		"Manufacturer":         One(Spec{Equals: "Nordic Semiconductor ASA"}),
		"Network registration": One(Spec{Equals: 1}),
	}

	verdict := Evaluate("Manufacturer", scalar("Nordic Semiconductor ASA"), rules)
	assert.True(t, verdict.Passed)

	verdict = Evaluate("Manufacturer", scalar("Acme Corp"), rules)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.Reason, "expected Nordic Semiconductor ASA")

	// Numeric equality tolerates int/float representation differences.
	verdict = Evaluate("Network registration", scalar(1.0), rules)
	assert.True(t, verdict.Passed)

	// Cross-family comparison is a type mismatch, not a coercion.
	verdict = Evaluate("Network registration", scalar("1"), rules)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.Reason, "type mismatch")
}

func TestEvaluateAllowed(t *testing.T) {
	rules := map[string]SpecSet{
		"Network registration": One(Spec{Allowed: []any{1, 5}}),
	}

	verdict := Evaluate("Network registration", scalar(5), rules)
	assert.True(t, verdict.Passed)

	verdict = Evaluate("Network registration", scalar(2), rules)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.Reason, "not in allowed set")
}

func TestEvaluateConstraintsAreANDed(t *testing.T) {
	rules := map[string]SpecSet{
		"Modem temperature": One(Spec{Min: f(-40), Max: f(30), Allowed: []any{25}}),
	}

	verdict := Evaluate("Modem temperature", scalar(25), rules)
	assert.True(t, verdict.Passed)

	// In range but not in the allowed set.
	verdict = Evaluate("Modem temperature", scalar(20), rules)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.Reason, "not in allowed set")
}

func TestEvaluateEmptyRuleFails(t *testing.T) {
	rules := map[string]SpecSet{"Battery voltage": One(Spec{})}

	verdict := Evaluate("Battery voltage", scalar(5000), rules)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.Reason, "empty rule")
}

func TestEvaluateTypeMismatchDoesNotPanic(t *testing.T) {
	rules := map[string]SpecSet{"Firmware version": One(Spec{Min: f(1)})}

	verdict := Evaluate("Firmware version", scalar("mfw_nrf9160_1.3.2"), rules)
	assert.False(t, verdict.Passed)
	assert.Contains(t, verdict.Reason, "non-numeric")
}

func TestSpecSetUnmarshalYAML(t *testing.T) {
	var rules map[string]SpecSet
	src := `
Battery voltage:
  min: 4900
  max: 5100
Network monitor:
  - field: rsrp_dbm
    min: -106
  - field: reg_status
    equals: 1
`
	require.NoError(t, yaml.Unmarshal([]byte(src), &rules))

	bat := rules["Battery voltage"]
	require.False(t, bat.List)
	require.Len(t, bat.Specs, 1)
	assert.Equal(t, 4900.0, *bat.Specs[0].Min)
	assert.Equal(t, 5100.0, *bat.Specs[0].Max)

	mon := rules["Network monitor"]
	require.True(t, mon.List)
	require.Len(t, mon.Specs, 2)
	assert.Equal(t, "rsrp_dbm", mon.Specs[0].Field)
	assert.Equal(t, -106.0, *mon.Specs[0].Min)
	assert.Equal(t, 1, mon.Specs[1].Equals)

	var bad SpecSet
	assert.Error(t, yaml.Unmarshal([]byte(`"just a string"`), &bad))
}
