package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alfredjeanlab/gridvault/internal/model"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryGetConfig(ctx context.Context, db executor, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `
		SELECT value FROM config WHERE key = $1`, key).Scan(&value)
	return value, err
}

func queryUpsertConfig(ctx context.Context, db executor, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO config (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value,
	)
	return err
}

func queryListConfigs(ctx context.Context, db executor) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT key, value FROM config ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		values[key] = value
	}
	return values, rows.Err()
}

func queryDeleteConfig(ctx context.Context, db executor, key string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM config WHERE key = $1`, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryInsertAPIKey(ctx context.Context, db executor, info *model.APIKeyInfo) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO api_keys (id, name, prefix, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		info.ID, info.Name, info.Prefix, nullString(info.CreatedBy),
	).Scan(&info.CreatedAt)
}

func queryListAPIKeys(ctx context.Context, db executor) ([]*model.APIKeyInfo, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, prefix, created_by, created_at, last_used_at
		FROM api_keys
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAPIKeys(rows)
}

func queryGetAPIKeyByPrefix(ctx context.Context, db executor, prefix string) (*model.APIKeyInfo, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, name, prefix, created_by, created_at, last_used_at
		FROM api_keys WHERE prefix = $1`, prefix)
	return scanAPIKey(row)
}

func queryDeleteAPIKey(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryTouchAPIKey(ctx context.Context, db executor, id string) error {
	_, err := db.ExecContext(ctx, `
		UPDATE api_keys SET last_used_at = NOW() WHERE id = $1`, id)
	return err
}
