package postgres

import (
	"database/sql"

	"github.com/alfredjeanlab/gridvault/internal/model"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAPIKey(row rowScanner) (*model.APIKeyInfo, error) {
	var (
		info       model.APIKeyInfo
		createdBy  sql.NullString
		lastUsedAt sql.NullTime
	)
	if err := row.Scan(&info.ID, &info.Name, &info.Prefix, &createdBy, &info.CreatedAt, &lastUsedAt); err != nil {
		return nil, err
	}
	info.CreatedBy = createdBy.String
	if lastUsedAt.Valid {
		t := lastUsedAt.Time
		info.LastUsedAt = &t
	}
	return &info, nil
}

func scanAPIKeys(rows *sql.Rows) ([]*model.APIKeyInfo, error) {
	var keys []*model.APIKeyInfo
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
