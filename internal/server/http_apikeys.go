package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alfredjeanlab/gridvault/internal/apikey"
	"github.com/alfredjeanlab/gridvault/internal/model"
	"github.com/alfredjeanlab/gridvault/internal/store"
)

// createAPIKeyRequest is the JSON body for POST /v1/tenants/{tenant}/api-keys.
type createAPIKeyRequest struct {
	Name      string `json:"name"`
	CreatedBy string `json:"created_by,omitempty"`
}

// createAPIKeyResponse carries the raw key back to the caller. This is the
// only time the raw key is ever transmitted.
type createAPIKeyResponse struct {
	APIKey  string            `json:"api_key"`
	KeyInfo *model.APIKeyInfo `json:"key_info"`
}

// handleCreateAPIKey handles POST /v1/tenants/{tenant}/api-keys.
func (s *Server) handleCreateAPIKey(w http.ResponseWriter, r *http.Request) {
	tenant := r.PathValue("tenant")

	var req createAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	result, err := s.apikeys.Create(r.Context(), tenant, req.Name, req.CreatedBy)
	if err != nil {
		var reconcile *apikey.ReconcileError
		switch {
		case errors.Is(err, store.ErrTenantUnknown):
			writeError(w, http.StatusNotFound, "unknown tenant")
		case errors.As(err, &reconcile):
			s.logger.Error("api key create left inconsistent state",
				"tenant", tenant, "key_id", reconcile.KeyID, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to create api key")
		default:
			s.logger.Error("create api key failed", "tenant", tenant, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to create api key")
		}
		return
	}

	writeJSON(w, http.StatusCreated, createAPIKeyResponse{
		APIKey:  result.APIKey,
		KeyInfo: result.KeyInfo,
	})
}

// handleListAPIKeys handles GET /v1/tenants/{tenant}/api-keys.
func (s *Server) handleListAPIKeys(w http.ResponseWriter, r *http.Request) {
	tenant := r.PathValue("tenant")

	keys, err := s.apikeys.List(r.Context(), tenant)
	if err != nil {
		if errors.Is(err, store.ErrTenantUnknown) {
			writeError(w, http.StatusNotFound, "unknown tenant")
			return
		}
		s.logger.Error("list api keys failed", "tenant", tenant, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list api keys")
		return
	}

	if keys == nil {
		keys = []*model.APIKeyInfo{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"api_keys": keys})
}

// handleDeleteAPIKey handles DELETE /v1/tenants/{tenant}/api-keys/{id}.
func (s *Server) handleDeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	tenant := r.PathValue("tenant")
	id := r.PathValue("id")

	if err := s.apikeys.Delete(r.Context(), tenant, id); err != nil {
		switch {
		case errors.Is(err, store.ErrTenantUnknown):
			writeError(w, http.StatusNotFound, "unknown tenant")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "api key not found")
		default:
			s.logger.Error("delete api key failed", "tenant", tenant, "key_id", id, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to delete api key")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// verifyAPIKeyRequest is the JSON body for POST /v1/api-keys/verify.
type verifyAPIKeyRequest struct {
	APIKey string `json:"api_key"`
}

// handleVerifyAPIKey handles POST /v1/api-keys/verify. The tenant comes from
// the key itself, so this route is not tenant-scoped.
func (s *Server) handleVerifyAPIKey(w http.ResponseWriter, r *http.Request) {
	var req verifyAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.APIKey == "" {
		writeError(w, http.StatusBadRequest, "api_key is required")
		return
	}

	info, err := s.apikeys.Verify(r.Context(), req.APIKey)
	if err != nil {
		switch {
		case errors.Is(err, apikey.ErrMalformedKey), errors.Is(err, apikey.ErrInvalidKey),
			errors.Is(err, store.ErrTenantUnknown):
			writeError(w, http.StatusUnauthorized, "invalid api key")
		default:
			s.logger.Error("verify api key failed", "err", err)
			writeError(w, http.StatusInternalServerError, "failed to verify api key")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"key_info": info})
}
