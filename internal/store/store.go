// Package store defines the persistence contracts shared by the routing
// facade and the API key lifecycle manager, plus the parameter naming scheme
// for the secret store.
package store

import (
	"context"
	"errors"

	"github.com/alfredjeanlab/gridvault/internal/model"
)

// ErrTenantUnknown is returned when no connection pool exists for the tenant.
// Callers treat this as "store unavailable", not a fatal condition.
var ErrTenantUnknown = errors.New("store: unknown tenant")

// ErrNotFound is returned by delete operations when the target row or
// parameter does not exist.
var ErrNotFound = errors.New("store: not found")

// ConfigStore is the database-backed side of the config layer. Every
// operation is scoped to a tenant; isolation is structural (one pool per
// tenant), not enforced by a runtime check here.
type ConfigStore interface {
	// Get returns the value for key. ok is false when the key is absent;
	// a non-nil error means the read could not be completed.
	Get(ctx context.Context, tenantID, key string) (value string, ok bool, err error)
	// Save upserts the value for key (last-write-wins under concurrency).
	Save(ctx context.Context, tenantID, key, value string) error
	// GetAll returns every key/value pair in the tenant's config table.
	GetAll(ctx context.Context, tenantID string) (map[string]string, error)
	// Delete removes the key, returning ErrNotFound when it was absent.
	Delete(ctx context.Context, tenantID, key string) error
}

// APIKeyStore is the database-backed side of the API key lifecycle.
type APIKeyStore interface {
	InsertAPIKey(ctx context.Context, tenantID string, info *model.APIKeyInfo) error
	ListAPIKeys(ctx context.Context, tenantID string) ([]*model.APIKeyInfo, error)
	DeleteAPIKey(ctx context.Context, tenantID, id string) error
	GetAPIKeyByPrefix(ctx context.Context, tenantID, prefix string) (*model.APIKeyInfo, error)
	TouchAPIKey(ctx context.Context, tenantID, id string) error
}

// SecretStore is the encrypted parameter store side. All writes are
// encrypted at rest; the interface deliberately has no plaintext write path.
type SecretStore interface {
	GetParameter(ctx context.Context, name string) (value string, ok bool, err error)
	PutParameter(ctx context.Context, name, value string) error
	// DeleteParameter returns ErrNotFound when the parameter does not exist.
	DeleteParameter(ctx context.Context, name string) error

	GetSigningSecret(ctx context.Context, tenantID, connector string) (string, bool, error)
	StoreSigningSecret(ctx context.Context, tenantID, connector, value string) error
	StoreAPIKey(ctx context.Context, tenantID, keyID, value string) error
	DeleteAPIKey(ctx context.Context, tenantID, keyID string) error
}

// Parameter names are hierarchical and tenant-prefixed so that deleting a
// tenant's root wipes exactly that tenant's secrets.

// ConfigParameterName is the secret-store path for a sensitive config key.
func ConfigParameterName(tenantID, key string) string {
	return "/" + tenantID + "/" + key
}

// SigningSecretParameterName is the path for a connector's webhook signing secret.
func SigningSecretParameterName(tenantID, connector string) string {
	return "/" + tenantID + "/signing-secret/" + connector
}

// APIKeyParameterName is the path for an API key's full secret, derived from
// the generated row ID (never from the public prefix).
func APIKeyParameterName(tenantID, keyID string) string {
	return "/" + tenantID + "/api-key/gv_api_" + keyID
}
