// Package router is the routing facade over the two config backends. It
// classifies every key and dispatches to the database store or the secret
// store; callers never choose a backend themselves.
package router

import (
	"context"
	"log/slog"

	"github.com/alfredjeanlab/gridvault/internal/keyreg"
	"github.com/alfredjeanlab/gridvault/internal/store"
)

// Router is the single public entry point for tenant config reads and writes.
type Router struct {
	registry *keyreg.Registry
	db       store.ConfigStore
	secrets  store.SecretStore
	logger   *slog.Logger
}

// New returns a Router dispatching between the given backends.
func New(registry *keyreg.Registry, db store.ConfigStore, secrets store.SecretStore, logger *slog.Logger) *Router {
	return &Router{registry: registry, db: db, secrets: secrets, logger: logger}
}

// Classify exposes the registry's classification for a key.
func (r *Router) Classify(key string) keyreg.Class {
	return r.registry.Classify(key)
}

// IsSensitive reports whether key routes to the secret store.
func (r *Router) IsSensitive(key string) bool {
	return r.registry.Classify(key) == keyreg.Sensitive
}

// GetConfigValue returns the value for key from whichever store holds it.
// ok is false when the key is absent; a non-nil error means the backend
// could not complete the read.
func (r *Router) GetConfigValue(ctx context.Context, key, tenantID string) (string, bool, error) {
	if r.registry.Classify(key) == keyreg.Sensitive {
		return r.secrets.GetParameter(ctx, store.ConfigParameterName(tenantID, key))
	}
	return r.db.Get(ctx, tenantID, key)
}

// SaveConfigValue upserts the value for key in the store its class selects.
func (r *Router) SaveConfigValue(ctx context.Context, key, value, tenantID string) error {
	if r.registry.Classify(key) == keyreg.Sensitive {
		return r.secrets.PutParameter(ctx, store.ConfigParameterName(tenantID, key), value)
	}
	return r.db.Save(ctx, tenantID, key, value)
}

// DeleteConfigValue removes the key from the store its class selects.
func (r *Router) DeleteConfigValue(ctx context.Context, key, tenantID string) error {
	if r.registry.Classify(key) == keyreg.Sensitive {
		return r.secrets.DeleteParameter(ctx, store.ConfigParameterName(tenantID, key))
	}
	return r.db.Delete(ctx, tenantID, key)
}

// GetAllConfigValues returns the tenant's non-sensitive config only.
// Sensitive values are fetched one key at a time, never enumerated; any
// sensitive key that somehow has a database row is filtered out rather than
// exposed in bulk.
func (r *Router) GetAllConfigValues(ctx context.Context, tenantID string) (map[string]string, error) {
	values, err := r.db.GetAll(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for key := range values {
		if r.registry.Classify(key) == keyreg.Sensitive {
			if r.logger != nil {
				r.logger.Warn("sensitive key found in database store, excluded from bulk read",
					"tenant", tenantID, "key", key)
			}
			delete(values, key)
		}
	}
	return values, nil
}
