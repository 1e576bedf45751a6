package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// tenantRegistry is the on-disk tenant registry:
//
//	[tenants.acme]
//	database_url = "postgres://..."
type tenantRegistry struct {
	Tenants map[string]tenantEntry `toml:"tenants"`
}

type tenantEntry struct {
	DatabaseURL string `toml:"database_url"`
}

// LoadTenants reads the TOML tenant registry and returns a tenant ID to
// database URL map. Tenant IDs may not contain "_" (reserved as the API key
// field delimiter) or "/" (the parameter store path delimiter).
func LoadTenants(path string) (map[string]string, error) {
	var f tenantRegistry
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decode tenants file %s: %w", path, err)
	}
	if len(f.Tenants) == 0 {
		return nil, fmt.Errorf("tenants file %s defines no tenants", path)
	}

	dsns := make(map[string]string, len(f.Tenants))
	for id, t := range f.Tenants {
		if strings.ContainsAny(id, "_/") {
			return nil, fmt.Errorf("invalid tenant id %q: must not contain '_' or '/'", id)
		}
		if t.DatabaseURL == "" {
			return nil, fmt.Errorf("tenant %q: database_url is required", id)
		}
		dsns[id] = t.DatabaseURL
	}
	return dsns, nil
}
