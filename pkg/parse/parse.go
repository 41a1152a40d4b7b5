package parse

import (
	"errors"
	"regexp"

	"github.com/msense/atharness/pkg/query"
)

var (
	// ErrNoDigest indicates the reply carried no digest token.
	ErrNoDigest = errors.New("no digest found in reply")
)

// Parsed is the structured form of one reply: named fields plus a short
// human-readable description for report lines.
type Parsed struct {
	Fields      map[string]any
	Description string
}

// Value returns the principal scalar of the parsed reply: the "value"
// field if present, otherwise the sole field if exactly one exists.
func (p Parsed) Value() (any, bool) {
	if v, ok := p.Fields["value"]; ok {
		return v, true
	}
	if len(p.Fields) == 1 {
		for _, v := range p.Fields {
			return v, true
		}
	}
	return nil, false
}

// Parser extracts structured fields from one command result. Parsers must
// be pure: no I/O, no external state.
type Parser func(res query.ATResult) (Parsed, error)

// Generic is the fallback extractor: the reply body (echo and terminal
// tokens already stripped) becomes a single "value" field.
func Generic() Parser {
	return func(res query.ATResult) (Parsed, error) {
		desc := res.Reply
		if desc == "" {
			desc = "(no reply)"
		}
		return Parsed{
			Fields:      map[string]any{"value": res.Reply},
			Description: desc,
		}, nil
	}
}

// digestPattern matches the 64-character uppercase hex token used by
// certificate and key digest confirmations (%CMNG and friends).
var digestPattern = regexp.MustCompile(`\b[0-9A-F]{64}\b`)

// Digest pulls a SHA-256 hex token out of any reply line.
func Digest() Parser {
	return func(res query.ATResult) (Parsed, error) {
		for _, line := range res.Raw.Lines {
			if m := digestPattern.FindString(line); m != "" {
				return Parsed{
					Fields:      map[string]any{"digest": m},
					Description: m,
				}, nil
			}
		}
		return Parsed{}, ErrNoDigest
	}
}
