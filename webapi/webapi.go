// Package webapi exposes scanning and scan history over HTTP.
package webapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/tracer/scan"
	"github.com/hazyhaar/tracer/store"
)

// Server wires the scanner and the store behind a chi router.
type Server struct {
	scanner *scan.Scanner
	store   *store.Store
	logger  *slog.Logger
}

// NewServer creates the API server.
func NewServer(scanner *scan.Scanner, st *store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{scanner: scanner, store: st, logger: logger}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/scan", s.handleScan)
	r.Get("/scans", s.handleListScans)
	r.Get("/scans/{id}", s.handleGetScan)
	r.Get("/settings/{key}", s.handleGetSetting)
	r.Put("/settings/{key}", s.handleSetSetting)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type scanRequest struct {
	URL  string `json:"url"`
	Deep *bool  `json:"deep,omitempty"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	res, err := s.scanner.Scan(r.Context(), req.URL, scan.Options{Deep: req.Deep})
	if err != nil {
		s.logger.Error("webapi: scan failed", "url", req.URL, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if _, err := s.store.SaveScan(r.Context(), res); err != nil {
		// The scan itself succeeded; history is best effort.
		s.logger.Warn("webapi: persist scan failed", "url", req.URL, "error", err)
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	scans, err := s.store.ListScans(r.Context(), limit)
	if err != nil {
		s.logger.Error("webapi: list scans failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list scans failed")
		return
	}
	if scans == nil {
		scans = []store.ScanSummary{}
	}
	writeJSON(w, http.StatusOK, scans)
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid scan id")
		return
	}

	res, err := s.store.GetScan(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "scan not found")
		return
	}
	if err != nil {
		s.logger.Error("webapi: get scan failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "get scan failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, err := s.store.Setting(r.Context(), key)
	if err != nil {
		s.logger.Error("webapi: get setting failed", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "get setting failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

type settingRequest struct {
	Value string `json:"value"`
}

func (s *Server) handleSetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req settingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.store.SetSetting(r.Context(), key, req.Value); err != nil {
		s.logger.Error("webapi: set setting failed", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "set setting failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
