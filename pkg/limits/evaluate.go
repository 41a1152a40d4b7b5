package limits

import (
	"fmt"
	"strings"

	"github.com/msense/atharness/pkg/parse"
)

// ToFloat64 converts various numeric types to float64 for comparison.
func ToFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}

// Evaluate checks a parsed reply against the rule registered for its human
// name. A name with no rule passes with reason "no limit defined". A list
// rule passes only if every entry passes; the reason enumerates exactly the
// failing entries. A malformed rule fails the verdict but never panics, so
// one bad rule cannot abort a batch.
//
// Command, raw lines, and status on the returned Verdict are left for the
// caller to fill in.
func Evaluate(name string, parsed parse.Parsed, rules map[string]SpecSet) Verdict {
	verdict := Verdict{Name: name, Parsed: parsed, Passed: true}

	rule, ok := rules[name]
	if !ok {
		verdict.Reason = "no limit defined"
		return verdict
	}
	verdict.Limit = &rule

	if len(rule.Specs) == 0 {
		verdict.Passed = false
		verdict.Reason = "empty rule"
		return verdict
	}

	var failures []string
	if rule.List {
		for _, spec := range rule.Specs {
			if spec.Field == "" {
				failures = append(failures, "list entry missing field name")
				continue
			}
			val, present := parsed.Fields[spec.Field]
			if !present {
				failures = append(failures, fmt.Sprintf("%s: field not present", spec.Field))
				continue
			}
			if reason := check(spec, val); reason != "" {
				failures = append(failures, fmt.Sprintf("%s: %s", spec.Field, reason))
			}
		}
	} else {
		spec := rule.Specs[0]
		if spec.Field != "" {
			val, present := parsed.Fields[spec.Field]
			if !present {
				failures = append(failures, fmt.Sprintf("%s: field not present", spec.Field))
			} else if reason := check(spec, val); reason != "" {
				failures = append(failures, fmt.Sprintf("%s: %s", spec.Field, reason))
			}
		} else {
			val, present := parsed.Value()
			if !present {
				failures = append(failures, "no scalar value to check")
			} else if reason := check(spec, val); reason != "" {
				failures = append(failures, reason)
			}
		}
	}

	if len(failures) > 0 {
		verdict.Passed = false
		verdict.Reason = strings.Join(failures, "; ")
	} else {
		verdict.Reason = "within limits"
	}
	return verdict
}

// check applies one spec's constraints to a value. Returns "" on pass,
// otherwise every violated constraint joined into one reason.
func check(spec Spec, val any) string {
	if spec.empty() {
		return "empty rule"
	}

	var problems []string

	if spec.Equals != nil {
		eq, err := valuesEqual(val, spec.Equals)
		switch {
		case err != nil:
			problems = append(problems, err.Error())
		case !eq:
			problems = append(problems, fmt.Sprintf("expected %v, got %v", spec.Equals, val))
		}
	}

	if spec.Allowed != nil {
		member := false
		for _, allowed := range spec.Allowed {
			if eq, err := valuesEqual(val, allowed); err == nil && eq {
				member = true
				break
			}
		}
		if !member {
			problems = append(problems, fmt.Sprintf("%v not in allowed set %v", val, spec.Allowed))
		}
	}

	if spec.Min != nil || spec.Max != nil {
		n, numeric := ToFloat64(val)
		if !numeric {
			problems = append(problems, fmt.Sprintf("cannot compare non-numeric value %v (%T) against numeric bound", val, val))
		} else {
			if spec.Min != nil && n < *spec.Min {
				problems = append(problems, fmt.Sprintf("%v below min %v", n, *spec.Min))
			}
			if spec.Max != nil && n > *spec.Max {
				problems = append(problems, fmt.Sprintf("%v above max %v", n, *spec.Max))
			}
		}
	}

	return strings.Join(problems, ", ")
}

// valuesEqual compares within a type family: numerics against numerics,
// strings against strings. Comparing across families is a type mismatch,
// never a coercion.
func valuesEqual(actual, expected any) (bool, error) {
	an, aNum := ToFloat64(actual)
	en, eNum := ToFloat64(expected)
	if aNum && eNum {
		return an == en, nil
	}
	if aNum != eNum {
		return false, fmt.Errorf("type mismatch: %T vs %T", actual, expected)
	}

	as, aStr := actual.(string)
	es, eStr := expected.(string)
	if aStr && eStr {
		return as == es, nil
	}
	if aStr != eStr {
		return false, fmt.Errorf("type mismatch: %T vs %T", actual, expected)
	}

	ab, aBool := actual.(bool)
	eb, eBool := expected.(bool)
	if aBool && eBool {
		return ab == eb, nil
	}
	return false, fmt.Errorf("unsupported comparison: %T vs %T", actual, expected)
}
