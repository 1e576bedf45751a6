// Package reconcile cleans up secrets orphaned by best-effort deletes. The
// lifecycle manager emits an event when a metadata row is gone but the
// secret-store delete failed; this worker retries the delete so stale key
// material does not linger encrypted-at-rest forever.
package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/alfredjeanlab/gridvault/internal/events"
	"github.com/alfredjeanlab/gridvault/internal/store"
)

// Worker consumes orphaned-secret events and retries parameter deletes.
type Worker struct {
	secrets store.SecretStore
	logger  *slog.Logger
}

// NewWorker returns a Worker deleting through the given secret store.
func NewWorker(secrets store.SecretStore, logger *slog.Logger) *Worker {
	return &Worker{secrets: secrets, logger: logger}
}

// Run subscribes to orphaned-secret events and processes them until ctx is
// cancelled.
func (w *Worker) Run(ctx context.Context, sub events.Subscriber) error {
	ch, cancel, err := sub.Subscribe(events.TopicSecretOrphaned)
	if err != nil {
		return err
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case payload, ok := <-ch:
			if !ok {
				return nil
			}
			w.handle(ctx, payload)
		}
	}
}

func (w *Worker) handle(ctx context.Context, payload []byte) {
	var evt events.SecretOrphaned
	if err := json.Unmarshal(payload, &evt); err != nil {
		w.logger.Warn("ignoring malformed orphaned-secret event", "err", err)
		return
	}
	if evt.Parameter == "" {
		w.logger.Warn("ignoring orphaned-secret event without parameter name",
			"tenant", evt.TenantID, "key_id", evt.KeyID)
		return
	}

	err := w.secrets.DeleteParameter(ctx, evt.Parameter)
	switch {
	case err == nil:
		w.logger.Info("orphaned secret deleted",
			"tenant", evt.TenantID, "key_id", evt.KeyID, "parameter", evt.Parameter)
	case errors.Is(err, store.ErrNotFound):
		// Someone else already cleaned it up.
		w.logger.Info("orphaned secret already gone",
			"tenant", evt.TenantID, "key_id", evt.KeyID, "parameter", evt.Parameter)
	default:
		w.logger.Error("orphaned secret delete failed again",
			"tenant", evt.TenantID, "key_id", evt.KeyID, "parameter", evt.Parameter, "err", err)
	}
}
