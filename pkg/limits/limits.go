package limits

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/msense/atharness/pkg/parse"
	"github.com/msense/atharness/pkg/query"
)

// Spec is one declarative constraint. All set keys are ANDed. Field selects
// which parsed field the constraint applies to; when empty, the constraint
// applies to the reply's principal scalar value.
type Spec struct {
	Field   string   `yaml:"field,omitempty" json:"field,omitempty"`
	Min     *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max     *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Equals  any      `yaml:"equals,omitempty" json:"equals,omitempty"`
	Allowed []any    `yaml:"allowed,omitempty" json:"allowed,omitempty"`
}

// empty reports whether the spec carries no recognized constraint key.
// An empty rule is an authoring error, not a free pass.
func (s Spec) empty() bool {
	return s.Min == nil && s.Max == nil && s.Equals == nil && s.Allowed == nil
}

// SpecSet is the limit attached to one human name: either a bare Spec or
// an ordered list of per-field Specs for multi-field replies.
type SpecSet struct {
	Specs []Spec

	// List is true when the limit was authored as a list; list entries
	// are looked up by field name and all must pass.
	List bool
}

// One wraps a single constraint as a SpecSet.
func One(s Spec) SpecSet {
	return SpecSet{Specs: []Spec{s}}
}

// Many wraps per-field constraints as a list SpecSet.
func Many(specs ...Spec) SpecSet {
	return SpecSet{Specs: specs, List: true}
}

// UnmarshalYAML accepts either a mapping (bare spec) or a sequence of
// mappings (per-field list).
func (ss *SpecSet) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		var s Spec
		if err := node.Decode(&s); err != nil {
			return err
		}
		*ss = One(s)
		return nil
	case yaml.SequenceNode:
		var specs []Spec
		if err := node.Decode(&specs); err != nil {
			return err
		}
		*ss = Many(specs...)
		return nil
	default:
		return fmt.Errorf("limit must be a mapping or a list, got %v node", node.Kind)
	}
}

// Verdict is the outcome of evaluating one command's parsed reply.
type Verdict struct {
	Name    string
	Command string
	Raw     []string
	Parsed  parse.Parsed
	Status  query.Status
	Limit   *SpecSet
	Passed  bool
	Reason  string
}
