package parse

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrDuplicateKey indicates a Register call on an existing key without
// override. Registration conflicts are a setup fault and must stop startup.
var ErrDuplicateKey = errors.New("parser already registered for key")

// DefaultName is the human name Resolve reports for commands no parser
// was registered for.
const DefaultName = "Command"

type registration struct {
	parser Parser
	name   string
}

// Registry maps command text to a named parser. Populate it once during
// setup; lookups are safe for concurrent use afterwards.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registration)}
}

// Register binds a parser and human name to a command key. Registering an
// existing key fails with ErrDuplicateKey unless override is set; override
// is the only way to replace an entry.
func (r *Registry) Register(key string, parser Parser, humanName string, override bool) error {
	if parser == nil {
		return fmt.Errorf("nil parser for key %q", key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[key]; exists && !override {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	r.entries[key] = registration{parser: parser, name: humanName}
	return nil
}

// Resolve returns the parser and human name for a command. Exact match
// wins; otherwise the longest registered key that prefixes the command;
// otherwise the generic extractor under DefaultName.
func (r *Registry) Resolve(command string) (Parser, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if reg, ok := r.entries[command]; ok {
		return reg.parser, reg.name
	}

	bestKey := ""
	var best registration
	for key, reg := range r.entries {
		if strings.HasPrefix(command, key) && len(key) > len(bestKey) {
			bestKey, best = key, reg
		}
	}
	if bestKey != "" {
		return best.parser, best.name
	}

	return Generic(), DefaultName
}

// Keys returns the registered command keys, in no particular order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	return keys
}
