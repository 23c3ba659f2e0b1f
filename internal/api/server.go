// Package api exposes the detection and patch engine over HTTP
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/alevsk/pipescope/internal/dispatcher"
	"github.com/alevsk/pipescope/internal/logger"
	"github.com/alevsk/pipescope/internal/types"
	"github.com/gorilla/mux"
)

// Server represents the API server
type Server struct {
	router  *mux.Router
	timeout time.Duration
}

// NewServer creates a new API server instance
func NewServer(timeout time.Duration) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		timeout: timeout,
	}
	s.routes()
	return s
}

// routes sets up the API routes
func (s *Server) routes() {
	s.router.HandleFunc("/api/v1/health", s.healthCheck).Methods("GET")
	s.router.HandleFunc("/api/v1/detect", s.detect).Methods("POST")
	s.router.HandleFunc("/api/v1/fix", s.fix).Methods("POST")
}

// ServeHTTP dispatches requests to the router
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start starts the API server
func (s *Server) Start(addr string) error {
	logger.Info().Str("addr", addr).Msg("starting api server")
	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.timeout,
		WriteTimeout: s.timeout,
	}
	return server.ListenAndServe()
}

// detectRequest is the body of a detection call
type detectRequest struct {
	Content string `json:"content"`
	Kind    string `json:"kind"`
	Logs    string `json:"logs,omitempty"`
}

// fixRequest is the body of a fix call. Report is optional; when absent the
// pipeline is re-detected before patching.
type fixRequest struct {
	Content string        `json:"content"`
	Kind    string        `json:"kind"`
	Report  *types.Report `json:"report,omitempty"`
}

// fixResponse carries the patched pipeline text
type fixResponse struct {
	Content string `json:"content"`
}

// healthCheck handles the health check endpoint
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// detect runs the failure rules over the posted pipeline
func (s *Server) detect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	kind, err := types.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report := dispatcher.Detect(req.Content, kind, req.Logs)
	writeJSON(w, http.StatusOK, report)
}

// fix patches the posted pipeline against its failures
func (s *Server) fix(w http.ResponseWriter, r *http.Request) {
	var req fixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	kind, err := types.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fixed, err := dispatcher.Fix(req.Content, kind, req.Report)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, fixResponse{Content: fixed})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
