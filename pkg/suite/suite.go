// Package suite loads declarative check suites from YAML and runs them
// against a query engine, producing one verdict per command.
package suite

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/msense/atharness/pkg/limits"
)

// Suite is a declarative sequence of commands plus the limits their
// replies must satisfy.
type Suite struct {
	// Name identifies the suite in reports.
	Name string `yaml:"name"`

	// Timeout is the per-command idle timeout (e.g., "500ms").
	// Empty uses the engine default.
	Timeout string `yaml:"timeout,omitempty"`

	// Dwell is an optional pause between commands (e.g., "100ms").
	Dwell string `yaml:"dwell,omitempty"`

	// Commands are issued in order, one at a time.
	Commands []string `yaml:"commands"`

	// Limits maps a command's human name to its pass/fail rule.
	Limits map[string]limits.SpecSet `yaml:"limits"`
}

// TimeoutDuration returns the parsed per-command timeout, or zero when
// unset so the engine default applies.
func (s *Suite) TimeoutDuration() time.Duration {
	if s.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// DwellDuration returns the parsed inter-command pause, or zero.
func (s *Suite) DwellDuration() time.Duration {
	if s.Dwell == "" {
		return 0
	}
	d, err := time.ParseDuration(s.Dwell)
	if err != nil {
		return 0
	}
	return d
}

// LoadError provides details about a suite loading error.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	if e.File != "" {
		return e.File + ": " + e.Message
	}
	return e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Parse parses a suite from YAML bytes.
func Parse(data []byte) (*Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}

	if s.Name == "" {
		return nil, &LoadError{Message: "suite name is required"}
	}
	if len(s.Commands) == 0 {
		return nil, &LoadError{Message: "suite must have at least one command"}
	}
	for i, cmd := range s.Commands {
		if cmd == "" {
			return nil, &LoadError{Message: fmt.Sprintf("command %d is empty", i+1)}
		}
	}
	if s.Timeout != "" {
		if _, err := time.ParseDuration(s.Timeout); err != nil {
			return nil, &LoadError{Message: "invalid timeout", Cause: err}
		}
	}
	if s.Dwell != "" {
		if _, err := time.ParseDuration(s.Dwell); err != nil {
			return nil, &LoadError{Message: "invalid dwell", Cause: err}
		}
	}

	return &s, nil
}

// Load loads a suite from a file.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	s, err := Parse(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}

	return s, nil
}
