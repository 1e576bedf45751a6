// Package tenant manages one database connection pool per tenant. Pools are
// never shared across tenants; a missing pool means the tenant is unknown to
// this process, which stores treat as "unavailable" rather than fatal.
package tenant

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	_ "github.com/lib/pq"
)

// Manager holds the per-tenant pools. The pool set is fixed at startup from
// the tenant registry; there is no runtime add/remove.
type Manager struct {
	pools  map[string]*sql.DB
	logger *slog.Logger
}

// NewManager opens a pool for every tenant in dsns and verifies connectivity.
// On any failure it closes the pools it already opened and returns the error.
func NewManager(dsns map[string]string, logger *slog.Logger) (*Manager, error) {
	m := &Manager{
		pools:  make(map[string]*sql.DB, len(dsns)),
		logger: logger,
	}

	for id, dsn := range dsns {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("open database for tenant %s: %w", id, err)
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.Ping(); err != nil {
			db.Close()
			m.Close()
			return nil, fmt.Errorf("ping database for tenant %s: %w", id, err)
		}

		m.pools[id] = db
	}

	return m, nil
}

// NewManagerWithPools wraps already-open pools without pinging them. Tests
// use this to supply mock databases.
func NewManagerWithPools(pools map[string]*sql.DB, logger *slog.Logger) *Manager {
	return &Manager{pools: pools, logger: logger}
}

// DB returns the pool for the given tenant, or false when the tenant is not
// registered.
func (m *Manager) DB(tenantID string) (*sql.DB, bool) {
	db, ok := m.pools[tenantID]
	return db, ok
}

// Tenants returns the registered tenant IDs in sorted order.
func (m *Manager) Tenants() []string {
	ids := make([]string, 0, len(m.pools))
	for id := range m.pools {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ForEach calls fn for every tenant pool, stopping at the first error.
func (m *Manager) ForEach(fn func(tenantID string, db *sql.DB) error) error {
	for _, id := range m.Tenants() {
		if err := fn(id, m.pools[id]); err != nil {
			return fmt.Errorf("tenant %s: %w", id, err)
		}
	}
	return nil
}

// Stats returns pool statistics for the tenant, for saturation diagnostics.
func (m *Manager) Stats(tenantID string) (sql.DBStats, bool) {
	db, ok := m.pools[tenantID]
	if !ok {
		return sql.DBStats{}, false
	}
	return db.Stats(), true
}

// Close closes every pool. Errors are logged, not returned; shutdown should
// not stop on a single pool failure.
func (m *Manager) Close() {
	for id, db := range m.pools {
		if err := db.Close(); err != nil && m.logger != nil {
			m.logger.Error("closing tenant pool", "tenant", id, "err", err)
		}
	}
}
