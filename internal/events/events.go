package events

import (
	"context"

	"github.com/alfredjeanlab/gridvault/internal/model"
)

// Event topic constants
const (
	TopicAPIKeyCreated = "gridvault.apikey.created"
	TopicAPIKeyDeleted = "gridvault.apikey.deleted"

	// TopicSecretOrphaned is emitted when an API key's metadata row was
	// deleted but the secret-store parameter delete failed. The raw secret
	// is unusable (the row is gone) but still resident; the reconciliation
	// worker retries the delete.
	TopicSecretOrphaned = "gridvault.secret.orphaned"

	// TopicReconcileNeeded is emitted when a create rollback failed, leaving
	// a metadata row with no backing secret.
	TopicReconcileNeeded = "gridvault.apikey.reconcile_needed"
)

// Event types. None of them ever carries secret material; key references are
// by row ID and public prefix only.

type APIKeyCreated struct {
	TenantID string            `json:"tenant_id"`
	KeyInfo  *model.APIKeyInfo `json:"key_info"`
}

type APIKeyDeleted struct {
	TenantID string `json:"tenant_id"`
	KeyID    string `json:"key_id"`
}

type SecretOrphaned struct {
	TenantID  string `json:"tenant_id"`
	KeyID     string `json:"key_id"`
	Parameter string `json:"parameter"`
}

type ReconcileNeeded struct {
	TenantID string `json:"tenant_id"`
	KeyID    string `json:"key_id"`
	Reason   string `json:"reason"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Subscriber is the interface for consuming events.
type Subscriber interface {
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}
