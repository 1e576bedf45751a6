// Package keyreg classifies configuration keys as sensitive or non-sensitive.
// The registry is built once at startup from per-connector key lists and is
// immutable afterwards; classification is a pure function of the key name.
package keyreg

import (
	"log/slog"
	"strings"
	"sync"
)

// Class is the sensitivity classification of a config key.
type Class int

const (
	// NonSensitive keys are stored in the tenant's relational config table.
	NonSensitive Class = iota
	// Sensitive keys are stored in the encrypted parameter store.
	Sensitive
)

func (c Class) String() string {
	if c == Sensitive {
		return "sensitive"
	}
	return "non-sensitive"
}

// Registry holds the union of all connector key lists.
type Registry struct {
	sensitive map[string]struct{}
	plain     map[string]struct{}

	logger *slog.Logger
	warned sync.Map // key -> struct{}, so unknown keys are logged once
}

// New builds a registry from the given key lists. Keys appearing in both
// lists classify as sensitive.
func New(sensitive, plain []string, logger *slog.Logger) *Registry {
	r := &Registry{
		sensitive: make(map[string]struct{}, len(sensitive)),
		plain:     make(map[string]struct{}, len(plain)),
		logger:    logger,
	}
	for _, k := range sensitive {
		r.sensitive[k] = struct{}{}
	}
	for _, k := range plain {
		r.plain[k] = struct{}{}
	}
	return r
}

// Default returns the registry covering every connector the platform ships.
func Default(logger *slog.Logger) *Registry {
	return New(allSensitiveKeys(), allPlainKeys(), logger)
}

// Classify returns the sensitivity class for key. A key is sensitive when it
// is an exact member of the sensitive set, or when its trailing
// slash-delimited component is (hierarchical keys such as
// "abc123/SLACK_SIGNING_SECRET"). Any key covered by neither list defaults to
// NonSensitive; that fail-open default is intentional but logged, because an
// unregistered sensitive key would otherwise land in the database in
// plaintext.
func (r *Registry) Classify(key string) Class {
	if _, ok := r.sensitive[key]; ok {
		return Sensitive
	}
	if base, ok := trailingComponent(key); ok {
		if _, ok := r.sensitive[base]; ok {
			return Sensitive
		}
	}
	if !r.Known(key) {
		if _, loaded := r.warned.LoadOrStore(key, struct{}{}); !loaded && r.logger != nil {
			r.logger.Warn("unregistered config key defaults to non-sensitive storage", "key", key)
		}
	}
	return NonSensitive
}

// Known reports whether key is covered by either registry list, directly or
// through the hierarchical suffix rule.
func (r *Registry) Known(key string) bool {
	if _, ok := r.sensitive[key]; ok {
		return true
	}
	if _, ok := r.plain[key]; ok {
		return true
	}
	if base, ok := trailingComponent(key); ok {
		if _, found := r.sensitive[base]; found {
			return true
		}
		if _, found := r.plain[base]; found {
			return true
		}
	}
	return false
}

func trailingComponent(key string) (string, bool) {
	idx := strings.LastIndex(key, "/")
	if idx < 0 || idx == len(key)-1 {
		return "", false
	}
	return key[idx+1:], true
}
