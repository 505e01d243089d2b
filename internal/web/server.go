// Package web exposes the triage queue over HTTP for the swipe UI.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/user/skim/internal/queue"
	"github.com/user/skim/internal/store"
	skimsync "github.com/user/skim/internal/sync"
	"github.com/user/skim/internal/summarize"
)

//go:embed static
var staticFS embed.FS

// Server wires the triage queue, summarizer, and sync engine onto an
// HTTP mux.
type Server struct {
	queue      *queue.Service
	summarizer *summarize.Service
	engine     *skimsync.Engine
	log        *slog.Logger
}

// NewServer creates the HTTP boundary. summarizer and engine may be nil,
// in which case the corresponding endpoints report unavailability.
func NewServer(q *queue.Service, summarizer *summarize.Service, engine *skimsync.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{queue: q, summarizer: summarizer, engine: engine, log: logger}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/next", s.handleNext)
	mux.HandleFunc("POST /api/swipe", s.handleSwipe)
	mux.HandleFunc("POST /api/undo", s.handleUndo)
	mux.HandleFunc("POST /api/read", s.handleRead)
	mux.HandleFunc("GET /api/reads", s.handleReads)
	mux.HandleFunc("POST /api/summarize", s.handleSummarize)
	mux.HandleFunc("POST /api/sync", s.handleSync)
	mux.HandleFunc("GET /api/sync/status", s.handleSyncStatus)
	mux.HandleFunc("GET /health", s.handleHealth)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("/", http.FileServer(http.FS(static)))

	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			offset = n
		}
	}

	doc, remaining, err := s.queue.Next(offset)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if doc == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"doc": nil, "remaining": 0})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"doc": doc, "remaining": remaining})
}

func (s *Server) handleSwipe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentID string `json:"documentId"`
		Action     string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.queue.Swipe(req.DocumentID, req.Action)
	switch {
	case errors.Is(err, queue.ErrInvalidAction):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "unknown document")
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	default:
		s.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	title, err := s.queue.Undo()
	switch {
	case errors.Is(err, queue.ErrNothingToUndo):
		s.writeJSON(w, http.StatusOK, map[string]any{"ok": false, "error": "Nothing to undo"})
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	default:
		s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "title": title})
	}
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentID string `json:"documentId"`
		Title      string `json:"title"`
		SourceURL  string `json:"sourceUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.queue.RecordRead(req.DocumentID, req.Title, req.SourceURL)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "unknown document")
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	default:
		s.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func (s *Server) handleReads(w http.ResponseWriter, r *http.Request) {
	reads, err := s.queue.RecentReads(20)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if reads == nil {
		reads = []store.ReadEntry{}
	}
	s.writeJSON(w, http.StatusOK, reads)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	if s.summarizer == nil {
		s.writeError(w, http.StatusServiceUnavailable, "summarizer not configured")
		return
	}

	var req struct {
		DocumentID string `json:"documentId"`
		Title      string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DocumentID == "" {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := s.summarizer.Summarize(req.DocumentID, req.Title)
	if err != nil {
		s.log.Error("summarize failed", "id", req.DocumentID, "error", err)
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"summary":   summary.Summary,
		"keyPoints": summary.KeyPoints,
	})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		s.writeError(w, http.StatusServiceUnavailable, "sync not configured")
		return
	}

	result, err := s.engine.Run(r.Context())
	switch {
	case errors.Is(err, skimsync.ErrSyncInProgress):
		s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "inProgress": true})
	case err != nil:
		// Partial progress is retained; report it alongside the failure.
		s.writeJSON(w, http.StatusOK, map[string]any{
			"ok":          false,
			"updated":     result.Updated,
			"incremental": result.Incremental,
			"error":       err.Error(),
		})
	default:
		s.writeJSON(w, http.StatusOK, map[string]any{
			"ok":          true,
			"updated":     result.Updated,
			"incremental": result.Incremental,
		})
	}
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		s.writeError(w, http.StatusServiceUnavailable, "sync not configured")
		return
	}

	status := s.engine.Status()
	resp := map[string]any{
		"inProgress":    status.InProgress,
		"lastSyncCount": status.LastSyncCount,
	}
	if !status.LastSyncAt.IsZero() {
		resp["lastSyncAt"] = status.LastSyncAt
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, remaining, err := s.queue.Next(0)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "remaining": remaining})
}
