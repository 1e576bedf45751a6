package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"
)

// ConfigSource yields a tenant's non-sensitive config. The routing facade's
// bulk read satisfies this, which is what keeps sensitive values out of
// backups structurally.
type ConfigSource interface {
	GetAllConfigValues(ctx context.Context, tenantID string) (map[string]string, error)
}

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version     string    `json:"version"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	TenantCount int       `json:"tenant_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type   string `json:"type"`
	Tenant string `json:"tenant"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ExportJSONL writes every tenant's non-sensitive config as JSONL to w,
// sorted by tenant then key.
func ExportJSONL(ctx context.Context, src ConfigSource, tenants []string, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:     "1",
		Type:        "header",
		Timestamp:   time.Now().UTC(),
		TenantCount: len(tenants),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	sorted := append([]string(nil), tenants...)
	sort.Strings(sorted)

	for _, tenant := range sorted {
		values, err := src.GetAllConfigValues(ctx, tenant)
		if err != nil {
			return fmt.Errorf("get configs for %s: %w", tenant, err)
		}

		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			if err := enc.Encode(record{Type: "config", Tenant: tenant, Key: k, Value: values[k]}); err != nil {
				return fmt.Errorf("encode config %s/%s: %w", tenant, k, err)
			}
		}
	}

	return nil
}
