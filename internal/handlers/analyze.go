package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vanha-creative/autonamer/internal/config"
	"github.com/vanha-creative/autonamer/internal/models"
	"github.com/vanha-creative/autonamer/internal/storage"
)

type analyzeRequest struct {
	FolderPath  string `json:"folder_path"`
	Client      string `json:"client"`
	Campaign    string `json:"campaign"`
	StartNumber *int   `json:"start_number"`
	Date        string `json:"date"`
}

// HandleAnalyze runs the pipeline over a folder and stores the result as the
// new current session.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var request analyzeRequest
	if !h.decode(w, r, &request) {
		return
	}

	request.FolderPath = strings.TrimSpace(request.FolderPath)
	if request.FolderPath == "" {
		h.writeError(w, "folder_path is required", http.StatusBadRequest)
		return
	}

	inputs := models.UserInputs{
		Client:      strings.TrimSpace(request.Client),
		Campaign:    strings.TrimSpace(request.Campaign),
		StartNumber: h.cfg.Session.StartNumber,
		Date:        strings.TrimSpace(request.Date),
		FolderPath:  request.FolderPath,
	}
	if inputs.Client == "" {
		inputs.Client = h.cfg.Session.Client
	}
	if request.StartNumber != nil {
		if *request.StartNumber < 1 {
			h.writeError(w, "start_number must be at least 1", http.StatusBadRequest)
			return
		}
		inputs.StartNumber = *request.StartNumber
	}

	// Resolved here so clustering, the store and the session agree.
	inputs = storage.WithDefaults(inputs, h.now())

	src, err := h.openSource(inputs.FolderPath)
	if err != nil {
		h.writeError(w, "Failed to open source: "+err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	grouped, err := h.analyzer.Analyze(r.Context(), src, inputs)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	store := storage.NewGroupStore(h.analyzer.Classifier(), inputs)
	store.Load(grouped)
	session := storage.NewSession(inputs, store)
	h.sessionStore.Set(session)

	slog.Info("Analysis complete",
		"session_id", session.ID,
		"folder", inputs.FolderPath,
		"groups", len(grouped.Groups),
		"ungrouped", len(grouped.Ungrouped),
		"elapsed", time.Since(start).Round(time.Millisecond))

	w.Header().Set("X-Session-ID", session.ID)
	h.writeJSON(w, grouped)
}

// HandleInfer re-runs field inference over the current groups without
// clustering again. Manual edits to inferred fields are overwritten.
func (h *Handler) HandleInfer(w http.ResponseWriter, r *http.Request) {
	if !h.withStore(w, r, func(store *storage.GroupStore) error {
		if !store.Ready() {
			return storage.ErrNotReady
		}
		h.analyzer.Inference().InferAll(store.Groups(), store.Inputs())
		return nil
	}) {
		return
	}
	h.writeSnapshot(w, r)
}

// HandleConfig returns the defaults a client needs to prefill its form.
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	h.writeJSON(w, map[string]any{
		"default_campaign":     config.DefaultCampaign(now),
		"default_date":         config.DefaultDate(now),
		"default_start_number": h.cfg.Session.StartNumber,
		"default_client":       h.cfg.Session.Client,
		"angle_options":        h.cfg.Inference.AngleOptions,
		"client_options":       h.cfg.Inference.ClientOptions,
		"ocr_provider":         h.cfg.OCR.Provider,
	})
}
