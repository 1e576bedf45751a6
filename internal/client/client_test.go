package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alfredjeanlab/gridvault/internal/model"
)

func TestGetConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/v1/tenants/acme/configs/COMPANY_NAME" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(ConfigValue{Key: "COMPANY_NAME", Value: "Acme Inc"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	cv, err := c.GetConfig(context.Background(), "acme", "COMPANY_NAME")
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if cv.Value != "Acme Inc" {
		t.Errorf("value = %q", cv.Value)
	}
}

func TestGetConfig_HierarchicalKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tenants/acme/configs/ws1/SLACK_SIGNING_SECRET" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(ConfigValue{Key: "ws1/SLACK_SIGNING_SECRET", Value: "whsec", Sensitive: true})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	cv, err := c.GetConfig(context.Background(), "acme", "ws1/SLACK_SIGNING_SECRET")
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if !cv.Sensitive {
		t.Error("Sensitive flag lost")
	}
}

func TestSetConfig_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer s3cret" {
			t.Errorf("Authorization = %q", got)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["value"] != "Acme Inc" {
			t.Errorf("body = %v", body)
		}
		json.NewEncoder(w).Encode(ConfigValue{Key: "COMPANY_NAME", Value: body["value"]})
	}))
	defer srv.Close()

	c := New(srv.URL, "s3cret")
	if _, err := c.SetConfig(context.Background(), "acme", "COMPANY_NAME", "Acme Inc"); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
}

func TestDeleteConfig_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	if err := c.DeleteConfig(context.Background(), "acme", "COMPANY_NAME"); err != nil {
		t.Fatalf("DeleteConfig: %v", err)
	}
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "config not found"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.GetConfig(context.Background(), "acme", "MISSING")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v (%T), want *APIError", err, err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "config not found" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestCreateAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["name"] != "ci-deploy" || body["created_by"] != "alice" {
			t.Errorf("body = %v", body)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(CreatedAPIKey{
			APIKey:  "gv_acme_0123456789abcdef0123456789abcdef",
			KeyInfo: &model.APIKeyInfo{ID: "ak1", Name: "ci-deploy", Prefix: "gv_acme_01234567"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	created, err := c.CreateAPIKey(context.Background(), "acme", "ci-deploy", "alice")
	if err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}
	if created.APIKey == "" || created.KeyInfo.ID != "ak1" {
		t.Errorf("created = %+v", created)
	}
}

func TestListAPIKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"api_keys": []*model.APIKeyInfo{{ID: "ak1"}, {ID: "ak2"}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	keys, err := c.ListAPIKeys(context.Background(), "acme")
	if err != nil {
		t.Fatalf("ListAPIKeys: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("got %d keys", len(keys))
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
}
