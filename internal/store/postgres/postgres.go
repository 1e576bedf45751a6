// Package postgres implements the database-backed halves of the config layer
// (store.ConfigStore and store.APIKeyStore) over per-tenant connection pools.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/alfredjeanlab/gridvault/internal/model"
	"github.com/alfredjeanlab/gridvault/internal/store"
	"github.com/alfredjeanlab/gridvault/internal/tenant"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// queryTimeout bounds every query against a stalled tenant pool so one
// tenant's outage cannot block unrelated requests.
const queryTimeout = 10 * time.Second

// Store routes config and API key queries to the tenant's own pool.
type Store struct {
	pools  *tenant.Manager
	logger *slog.Logger
}

// Compile-time checks that Store implements both database-backed contracts.
var (
	_ store.ConfigStore = (*Store)(nil)
	_ store.APIKeyStore = (*Store)(nil)
)

// New returns a Store backed by the given pool manager.
func New(pools *tenant.Manager, logger *slog.Logger) *Store {
	return &Store{pools: pools, logger: logger}
}

// Migrate applies any pending migrations to a single tenant database.
func Migrate(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, tenantID, key string) (string, bool, error) {
	db, ok := s.pools.DB(tenantID)
	if !ok {
		return "", false, store.ErrTenantUnknown
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	value, err := queryGetConfig(ctx, db, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		s.logFailure("get config", tenantID, err)
		return "", false, fmt.Errorf("get config %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) Save(ctx context.Context, tenantID, key, value string) error {
	db, ok := s.pools.DB(tenantID)
	if !ok {
		return store.ErrTenantUnknown
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := queryUpsertConfig(ctx, db, key, value); err != nil {
		s.logFailure("save config", tenantID, err)
		return fmt.Errorf("save config %s: %w", key, err)
	}
	return nil
}

func (s *Store) GetAll(ctx context.Context, tenantID string) (map[string]string, error) {
	db, ok := s.pools.DB(tenantID)
	if !ok {
		return nil, store.ErrTenantUnknown
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	values, err := queryListConfigs(ctx, db)
	if err != nil {
		s.logFailure("list configs", tenantID, err)
		return nil, fmt.Errorf("list configs: %w", err)
	}
	return values, nil
}

func (s *Store) Delete(ctx context.Context, tenantID, key string) error {
	db, ok := s.pools.DB(tenantID)
	if !ok {
		return store.ErrTenantUnknown
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := queryDeleteConfig(ctx, db, key)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		s.logFailure("delete config", tenantID, err)
		return fmt.Errorf("delete config %s: %w", key, err)
	}
	return nil
}

func (s *Store) InsertAPIKey(ctx context.Context, tenantID string, info *model.APIKeyInfo) error {
	db, ok := s.pools.DB(tenantID)
	if !ok {
		return store.ErrTenantUnknown
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := queryInsertAPIKey(ctx, db, info); err != nil {
		s.logFailure("insert api key", tenantID, err)
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

func (s *Store) ListAPIKeys(ctx context.Context, tenantID string) ([]*model.APIKeyInfo, error) {
	db, ok := s.pools.DB(tenantID)
	if !ok {
		return nil, store.ErrTenantUnknown
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	keys, err := queryListAPIKeys(ctx, db)
	if err != nil {
		s.logFailure("list api keys", tenantID, err)
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return keys, nil
}

func (s *Store) DeleteAPIKey(ctx context.Context, tenantID, id string) error {
	db, ok := s.pools.DB(tenantID)
	if !ok {
		return store.ErrTenantUnknown
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := queryDeleteAPIKey(ctx, db, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		s.logFailure("delete api key", tenantID, err)
		return fmt.Errorf("delete api key %s: %w", id, err)
	}
	return nil
}

func (s *Store) GetAPIKeyByPrefix(ctx context.Context, tenantID, prefix string) (*model.APIKeyInfo, error) {
	db, ok := s.pools.DB(tenantID)
	if !ok {
		return nil, store.ErrTenantUnknown
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	info, err := queryGetAPIKeyByPrefix(ctx, db, prefix)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		s.logFailure("get api key by prefix", tenantID, err)
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	return info, nil
}

func (s *Store) TouchAPIKey(ctx context.Context, tenantID, id string) error {
	db, ok := s.pools.DB(tenantID)
	if !ok {
		return store.ErrTenantUnknown
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := queryTouchAPIKey(ctx, db, id); err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.logFailure("touch api key", tenantID, err)
		return fmt.Errorf("touch api key %s: %w", id, err)
	}
	return nil
}

// logFailure logs a store failure, attaching pool saturation counters when
// the error looks like connection exhaustion or a timeout.
func (s *Store) logFailure(op, tenantID string, err error) {
	if s.logger == nil {
		return
	}
	attrs := []any{"op", op, "tenant", tenantID, "err", err}
	if looksLikeExhaustion(err) {
		if stats, ok := s.pools.Stats(tenantID); ok {
			attrs = append(attrs,
				"pool_in_use", stats.InUse,
				"pool_idle", stats.Idle,
				"pool_wait_count", stats.WaitCount,
			)
		}
	}
	s.logger.Error("database store failure", attrs...)
}

func looksLikeExhaustion(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "too many") ||
		strings.Contains(msg, "connection") ||
		strings.Contains(msg, "timeout")
}
