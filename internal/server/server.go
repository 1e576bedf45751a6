// Package server exposes the routing facade and the API key lifecycle over
// HTTP. All routes are tenant-scoped; the tenant ID comes from the URL path.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/alfredjeanlab/gridvault/internal/apikey"
	"github.com/alfredjeanlab/gridvault/internal/router"
)

// Server handles the HTTP admin API.
type Server struct {
	router  *router.Router
	apikeys *apikey.Manager
	logger  *slog.Logger
}

// NewServer returns a Server backed by the given routing facade and key manager.
func NewServer(rt *router.Router, keys *apikey.Manager, logger *slog.Logger) *Server {
	return &Server{router: rt, apikeys: keys, logger: logger}
}

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *Server) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.HandleFunc("GET /v1/tenants/{tenant}/configs", s.handleListConfigs)
	mux.HandleFunc("PUT /v1/tenants/{tenant}/configs/{key...}", s.handleSetConfig)
	mux.HandleFunc("GET /v1/tenants/{tenant}/configs/{key...}", s.handleGetConfig)
	mux.HandleFunc("DELETE /v1/tenants/{tenant}/configs/{key...}", s.handleDeleteConfig)
	mux.HandleFunc("POST /v1/tenants/{tenant}/api-keys", s.handleCreateAPIKey)
	mux.HandleFunc("GET /v1/tenants/{tenant}/api-keys", s.handleListAPIKeys)
	mux.HandleFunc("DELETE /v1/tenants/{tenant}/api-keys/{id}", s.handleDeleteAPIKey)
	mux.HandleFunc("POST /v1/api-keys/verify", s.handleVerifyAPIKey)
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
