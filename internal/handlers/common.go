package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vanha-creative/autonamer/internal/config"
	"github.com/vanha-creative/autonamer/internal/grouping"
	"github.com/vanha-creative/autonamer/internal/inference"
	"github.com/vanha-creative/autonamer/internal/models"
	"github.com/vanha-creative/autonamer/internal/source"
	"github.com/vanha-creative/autonamer/internal/storage"
)

// Analyzer runs the extraction and grouping pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, src source.Source, inputs models.UserInputs) (*models.GroupedAssets, error)
	Classifier() *grouping.Classifier
	Inference() *inference.Engine
}

// SourceOpener resolves a folder path or bucket location to a source.
type SourceOpener func(location string) (source.Source, error)

type Handler struct {
	sessionStore *storage.SessionStore
	analyzer     Analyzer
	openSource   SourceOpener
	cfg          *config.Config
	now          func() time.Time
}

func New(cfg *config.Config, analyzer Analyzer, open SourceOpener) *Handler {
	return &Handler{
		sessionStore: storage.New(),
		analyzer:     analyzer,
		openSource:   open,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "status", code)
	http.Error(w, message, code)
}

// writeStoreError maps domain errors onto status codes.
func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotReady):
		h.writeError(w, "No analysis results. Run /api/analyze first.", http.StatusConflict)
	case errors.Is(err, storage.ErrNotFound):
		h.writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, storage.ErrInvalidInput), errors.Is(err, source.ErrEmptySource):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	default:
		h.writeError(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// Session helpers

// session returns the session named by the "session" query parameter, or
// the current one.
func (h *Handler) session(r *http.Request) (*storage.Session, error) {
	if id := r.URL.Query().Get("session"); id != "" {
		s, ok := h.sessionStore.Get(id)
		if !ok {
			return nil, fmt.Errorf("session %s: %w", id, storage.ErrNotFound)
		}
		return s, nil
	}
	return h.sessionStore.Current()
}

// withStore runs fn against the selected session's store and writes the
// error, if any. It reports whether fn succeeded.
func (h *Handler) withStore(w http.ResponseWriter, r *http.Request, fn func(*storage.GroupStore) error) bool {
	s, err := h.session(r)
	if err == nil {
		err = s.Do(fn)
	}
	if err != nil {
		h.writeStoreError(w, err)
		return false
	}
	return true
}

// writeSnapshot writes the selected session's groups.
func (h *Handler) writeSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap *models.GroupedAssets
	if h.withStore(w, r, func(store *storage.GroupStore) error {
		var err error
		snap, err = store.Snapshot()
		return err
	}) {
		h.writeJSON(w, snap)
	}
}
