// Package client is the Go client for the gridvault HTTP API, used by the gv
// CLI and by other services that read tenant config.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/alfredjeanlab/gridvault/internal/model"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to a gridvault server over HTTP/JSON.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client targeting the given base URL (e.g.
// "http://localhost:8080"). When token is non-empty, an Authorization header
// is set on every request.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// ConfigValue is a single config entry as returned by the server.
type ConfigValue struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	Sensitive bool   `json:"sensitive"`
}

// CreatedAPIKey is the response to a key creation. The APIKey field holds the
// raw key and is only ever populated here.
type CreatedAPIKey struct {
	APIKey  string            `json:"api_key"`
	KeyInfo *model.APIKeyInfo `json:"key_info"`
}

// GetConfig fetches a single config value for the tenant.
func (c *Client) GetConfig(ctx context.Context, tenant, key string) (*ConfigValue, error) {
	var cv ConfigValue
	if err := c.doJSON(ctx, http.MethodGet, configPath(tenant, key), nil, &cv); err != nil {
		return nil, err
	}
	return &cv, nil
}

// SetConfig upserts a config value for the tenant.
func (c *Client) SetConfig(ctx context.Context, tenant, key, value string) (*ConfigValue, error) {
	body := map[string]string{"value": value}
	var cv ConfigValue
	if err := c.doJSON(ctx, http.MethodPut, configPath(tenant, key), body, &cv); err != nil {
		return nil, err
	}
	return &cv, nil
}

// DeleteConfig removes a config value for the tenant.
func (c *Client) DeleteConfig(ctx context.Context, tenant, key string) error {
	return c.doJSON(ctx, http.MethodDelete, configPath(tenant, key), nil, nil)
}

// ListConfigs returns the tenant's non-sensitive config values.
func (c *Client) ListConfigs(ctx context.Context, tenant string) (map[string]string, error) {
	var resp struct {
		Configs map[string]string `json:"configs"`
	}
	path := "/v1/tenants/" + url.PathEscape(tenant) + "/configs"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Configs, nil
}

// CreateAPIKey creates a named API key for the tenant and returns the raw key.
func (c *Client) CreateAPIKey(ctx context.Context, tenant, name, createdBy string) (*CreatedAPIKey, error) {
	body := map[string]string{"name": name}
	if createdBy != "" {
		body["created_by"] = createdBy
	}
	var resp CreatedAPIKey
	path := "/v1/tenants/" + url.PathEscape(tenant) + "/api-keys"
	if err := c.doJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListAPIKeys returns the tenant's key metadata.
func (c *Client) ListAPIKeys(ctx context.Context, tenant string) ([]*model.APIKeyInfo, error) {
	var resp struct {
		APIKeys []*model.APIKeyInfo `json:"api_keys"`
	}
	path := "/v1/tenants/" + url.PathEscape(tenant) + "/api-keys"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.APIKeys, nil
}

// DeleteAPIKey removes the key's metadata row and revokes the key.
func (c *Client) DeleteAPIKey(ctx context.Context, tenant, id string) error {
	path := "/v1/tenants/" + url.PathEscape(tenant) + "/api-keys/" + url.PathEscape(id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// VerifyAPIKey checks a raw key against the server and returns its metadata.
func (c *Client) VerifyAPIKey(ctx context.Context, raw string) (*model.APIKeyInfo, error) {
	var resp struct {
		KeyInfo *model.APIKeyInfo `json:"key_info"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/api-keys/verify", map[string]string{"api_key": raw}, &resp); err != nil {
		return nil, err
	}
	return resp.KeyInfo, nil
}

// Health checks whether the server is up.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/v1/health", nil, nil)
}

// configPath builds the tenant-scoped config URL. Config keys may contain
// slashes, so each path segment is escaped separately.
func configPath(tenant, key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return "/v1/tenants/" + url.PathEscape(tenant) + "/configs/" + strings.Join(parts, "/")
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
