package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alfredjeanlab/gridvault/internal/events"
	"github.com/alfredjeanlab/gridvault/internal/store"
)

// chanSubscriber delivers payloads from a test-controlled channel.
type chanSubscriber struct {
	ch chan []byte
}

func (s *chanSubscriber) Subscribe(_ string) (<-chan []byte, func(), error) {
	return s.ch, func() {}, nil
}

func (s *chanSubscriber) Close() error { return nil }

// trackingSecretStore records DeleteParameter calls.
type trackingSecretStore struct {
	deleted   []string
	deleteErr error
}

func (f *trackingSecretStore) GetParameter(context.Context, string) (string, bool, error) {
	return "", false, nil
}
func (f *trackingSecretStore) PutParameter(context.Context, string, string) error { return nil }
func (f *trackingSecretStore) DeleteParameter(_ context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return f.deleteErr
}
func (f *trackingSecretStore) GetSigningSecret(context.Context, string, string) (string, bool, error) {
	return "", false, nil
}
func (f *trackingSecretStore) StoreSigningSecret(context.Context, string, string, string) error {
	return nil
}
func (f *trackingSecretStore) StoreAPIKey(context.Context, string, string, string) error { return nil }
func (f *trackingSecretStore) DeleteAPIKey(context.Context, string, string) error        { return nil }

func runWorker(t *testing.T, secrets *trackingSecretStore, payloads ...[]byte) {
	t.Helper()
	sub := &chanSubscriber{ch: make(chan []byte, len(payloads))}
	for _, p := range payloads {
		sub.ch <- p
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan struct{})
	w := NewWorker(secrets, slog.Default())
	go func() {
		defer close(done)
		_ = w.Run(ctx, sub)
	}()

	// Give the worker a moment to drain, then stop it.
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done
}

func TestRun_DeletesOrphanedSecret(t *testing.T) {
	secrets := &trackingSecretStore{}
	payload, _ := json.Marshal(events.SecretOrphaned{
		TenantID:  "acme",
		KeyID:     "ak1",
		Parameter: "/acme/api-key/gv_api_ak1",
	})

	runWorker(t, secrets, payload)

	if len(secrets.deleted) != 1 || secrets.deleted[0] != "/acme/api-key/gv_api_ak1" {
		t.Errorf("deleted = %v", secrets.deleted)
	}
}

func TestRun_IgnoresMalformedEvents(t *testing.T) {
	secrets := &trackingSecretStore{}
	runWorker(t, secrets, []byte("not json"), []byte(`{"tenant_id":"acme","key_id":"ak1"}`))

	if len(secrets.deleted) != 0 {
		t.Errorf("deleted = %v, want none", secrets.deleted)
	}
}

func TestRun_AlreadyGoneIsFine(t *testing.T) {
	secrets := &trackingSecretStore{deleteErr: store.ErrNotFound}
	payload, _ := json.Marshal(events.SecretOrphaned{
		TenantID:  "acme",
		KeyID:     "ak1",
		Parameter: "/acme/api-key/gv_api_ak1",
	})

	runWorker(t, secrets, payload)

	if len(secrets.deleted) != 1 {
		t.Errorf("deleted = %v", secrets.deleted)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	sub := &chanSubscriber{ch: make(chan []byte)}
	w := NewWorker(&trackingSecretStore{}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, sub) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}

func TestRun_SubscribeError(t *testing.T) {
	w := NewWorker(&trackingSecretStore{}, slog.Default())
	if err := w.Run(context.Background(), failingSubscriber{}); err == nil {
		t.Fatal("Run swallowed the subscribe error")
	}
}

type failingSubscriber struct{}

func (failingSubscriber) Subscribe(string) (<-chan []byte, func(), error) {
	return nil, nil, errors.New("nats down")
}

func (failingSubscriber) Close() error { return nil }
