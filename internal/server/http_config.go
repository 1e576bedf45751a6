package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alfredjeanlab/gridvault/internal/store"
)

// setConfigRequest is the JSON body for PUT /v1/tenants/{tenant}/configs/{key}.
type setConfigRequest struct {
	Value string `json:"value"`
}

// configResponse is the JSON shape for a single config value.
type configResponse struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	Sensitive bool   `json:"sensitive"`
}

// handleSetConfig handles PUT /v1/tenants/{tenant}/configs/{key}.
func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	tenant := r.PathValue("tenant")
	key := r.PathValue("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	var req setConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.router.SaveConfigValue(r.Context(), key, req.Value, tenant); err != nil {
		if errors.Is(err, store.ErrTenantUnknown) {
			writeError(w, http.StatusNotFound, "unknown tenant")
			return
		}
		s.logger.Error("set config failed", "tenant", tenant, "key", key, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to set config")
		return
	}

	writeJSON(w, http.StatusOK, configResponse{
		Key:       key,
		Value:     req.Value,
		Sensitive: s.router.IsSensitive(key),
	})
}

// handleGetConfig handles GET /v1/tenants/{tenant}/configs/{key}.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	tenant := r.PathValue("tenant")
	key := r.PathValue("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	value, ok, err := s.router.GetConfigValue(r.Context(), key, tenant)
	if err != nil {
		if errors.Is(err, store.ErrTenantUnknown) {
			writeError(w, http.StatusNotFound, "unknown tenant")
			return
		}
		s.logger.Error("get config failed", "tenant", tenant, "key", key, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to get config")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "config not found")
		return
	}

	writeJSON(w, http.StatusOK, configResponse{
		Key:       key,
		Value:     value,
		Sensitive: s.router.IsSensitive(key),
	})
}

// handleListConfigs handles GET /v1/tenants/{tenant}/configs. Only
// non-sensitive values are returned; secrets never appear in bulk reads.
func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	tenant := r.PathValue("tenant")

	values, err := s.router.GetAllConfigValues(r.Context(), tenant)
	if err != nil {
		if errors.Is(err, store.ErrTenantUnknown) {
			writeError(w, http.StatusNotFound, "unknown tenant")
			return
		}
		s.logger.Error("list configs failed", "tenant", tenant, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list configs")
		return
	}

	if values == nil {
		values = map[string]string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"configs": values})
}

// handleDeleteConfig handles DELETE /v1/tenants/{tenant}/configs/{key}.
func (s *Server) handleDeleteConfig(w http.ResponseWriter, r *http.Request) {
	tenant := r.PathValue("tenant")
	key := r.PathValue("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	if err := s.router.DeleteConfigValue(r.Context(), key, tenant); err != nil {
		switch {
		case errors.Is(err, store.ErrTenantUnknown):
			writeError(w, http.StatusNotFound, "unknown tenant")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "config not found")
		default:
			s.logger.Error("delete config failed", "tenant", tenant, "key", key, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to delete config")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
