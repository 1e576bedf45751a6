// Package apikey implements the API key lifecycle: a composite entity whose
// metadata row lives in the database and whose secret lives in the parameter
// store. Creation is a short saga with a compensating delete, because the
// two halves must never exist independently.
package apikey

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alfredjeanlab/gridvault/internal/events"
	"github.com/alfredjeanlab/gridvault/internal/idgen"
	"github.com/alfredjeanlab/gridvault/internal/model"
	"github.com/alfredjeanlab/gridvault/internal/store"
)

// CreateStatus is the terminal state of a create saga.
type CreateStatus int

const (
	// StatusCreated: both the metadata row and the secret exist.
	StatusCreated CreateStatus = iota
	// StatusRolledBack: the secret write failed and the metadata row was
	// removed again; nothing persists.
	StatusRolledBack
	// StatusInconsistent: the secret write failed and the compensating row
	// delete also failed, leaving an orphaned secret-less metadata row that
	// needs reconciliation.
	StatusInconsistent
)

// CreateResult carries the raw key out of a successful create. The raw key
// is returned exactly once and is never retrievable afterwards; only the
// 8-hex-char prefix survives in the database.
type CreateResult struct {
	Status  CreateStatus
	APIKey  string
	KeyInfo *model.APIKeyInfo
}

// ReconcileError marks the inconsistent terminal state so callers can alert
// on it instead of treating it as an ordinary failure.
type ReconcileError struct {
	TenantID string
	KeyID    string
	Cause    error
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("api key %s/%s needs reconciliation: %v", e.TenantID, e.KeyID, e.Cause)
}

func (e *ReconcileError) Unwrap() error { return e.Cause }

// ErrInvalidKey is returned by Verify for keys that parse but do not
// authenticate.
var ErrInvalidKey = errors.New("apikey: invalid key")

// Manager composes the two stores. It talks to them directly rather than
// through the routing facade because creation needs transactional sequencing
// the facade does not provide.
type Manager struct {
	meta      store.APIKeyStore
	secrets   store.SecretStore
	publisher events.Publisher
	logger    *slog.Logger
}

// NewManager returns a Manager over the given backends.
func NewManager(meta store.APIKeyStore, secrets store.SecretStore, publisher events.Publisher, logger *slog.Logger) *Manager {
	return &Manager{meta: meta, secrets: secrets, publisher: publisher, logger: logger}
}

// Create generates a key for the tenant, persists the metadata row, then the
// secret. If the secret write fails the row is deleted again; if that
// compensating delete also fails the result is StatusInconsistent and a
// reconcile event is emitted.
func (m *Manager) Create(ctx context.Context, tenantID, name, createdBy string) (*CreateResult, error) {
	if name == "" {
		return nil, fmt.Errorf("apikey: name is required")
	}
	if tenantID == "" || strings.ContainsAny(tenantID, "_/") {
		return nil, fmt.Errorf("apikey: invalid tenant id %q", tenantID)
	}

	raw, prefix, err := newRawKey(tenantID)
	if err != nil {
		return nil, err
	}

	id, err := idgen.Generate()
	if err != nil {
		return nil, err
	}

	info := &model.APIKeyInfo{
		ID:        id,
		Name:      name,
		Prefix:    prefix,
		CreatedBy: createdBy,
	}
	if err := m.meta.InsertAPIKey(ctx, tenantID, info); err != nil {
		return nil, fmt.Errorf("apikey: insert metadata: %w", err)
	}

	if err := m.secrets.StoreAPIKey(ctx, tenantID, id, raw); err != nil {
		// The row and the secret must never exist independently; undo the
		// insert before failing.
		if delErr := m.meta.DeleteAPIKey(ctx, tenantID, id); delErr != nil {
			m.logger.Error("api key rollback failed, metadata row orphaned",
				"tenant", tenantID, "key_id", id, "err", delErr)
			m.publish(ctx, events.TopicReconcileNeeded, events.ReconcileNeeded{
				TenantID: tenantID,
				KeyID:    id,
				Reason:   "secret write failed and compensating row delete failed",
			})
			return &CreateResult{Status: StatusInconsistent},
				&ReconcileError{TenantID: tenantID, KeyID: id, Cause: err}
		}
		return &CreateResult{Status: StatusRolledBack},
			fmt.Errorf("apikey: store secret: %w", err)
	}

	m.publish(ctx, events.TopicAPIKeyCreated, events.APIKeyCreated{TenantID: tenantID, KeyInfo: info})

	return &CreateResult{Status: StatusCreated, APIKey: raw, KeyInfo: info}, nil
}

// List returns the tenant's key metadata. It never touches the secret store.
func (m *Manager) List(ctx context.Context, tenantID string) ([]*model.APIKeyInfo, error) {
	return m.meta.ListAPIKeys(ctx, tenantID)
}

// Delete removes the metadata row and then, best-effort, the stored secret.
// Once the row is gone the key can no longer authenticate, so a failed
// secret delete is reported as an orphaned-secret event rather than an
// error; the reconciliation worker retries it.
func (m *Manager) Delete(ctx context.Context, tenantID, keyID string) error {
	if err := m.meta.DeleteAPIKey(ctx, tenantID, keyID); err != nil {
		return err
	}

	if err := m.secrets.DeleteAPIKey(ctx, tenantID, keyID); err != nil && !errors.Is(err, store.ErrNotFound) {
		m.logger.Warn("api key secret delete failed, key already unusable",
			"tenant", tenantID, "key_id", keyID, "err", err)
		m.publish(ctx, events.TopicSecretOrphaned, events.SecretOrphaned{
			TenantID:  tenantID,
			KeyID:     keyID,
			Parameter: store.APIKeyParameterName(tenantID, keyID),
		})
	}

	m.publish(ctx, events.TopicAPIKeyDeleted, events.APIKeyDeleted{TenantID: tenantID, KeyID: keyID})
	return nil
}

// Verify authenticates a raw key: parse, look up the metadata row by prefix,
// compare against the stored secret in constant time, and touch last_used_at.
// Malformed keys are rejected before any store access.
func (m *Manager) Verify(ctx context.Context, raw string) (*model.APIKeyInfo, error) {
	tenantID, _, err := ParseRawKey(raw)
	if err != nil {
		return nil, err
	}

	info, err := m.meta.GetAPIKeyByPrefix(ctx, tenantID, StoredPrefix(raw))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidKey
	}
	if err != nil {
		return nil, err
	}

	stored, ok, err := m.secrets.GetParameter(ctx, store.APIKeyParameterName(tenantID, info.ID))
	if err != nil {
		return nil, err
	}
	if !ok || subtle.ConstantTimeCompare([]byte(stored), []byte(raw)) != 1 {
		return nil, ErrInvalidKey
	}

	if err := m.meta.TouchAPIKey(ctx, tenantID, info.ID); err != nil {
		m.logger.Warn("touch api key failed", "tenant", tenantID, "key_id", info.ID, "err", err)
	}

	return info, nil
}

// publish emits an event, best-effort.
func (m *Manager) publish(ctx context.Context, topic string, event any) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.Publish(ctx, topic, event); err != nil {
		m.logger.Warn("failed to publish event", "topic", topic, "err", err)
	}
}
