package handlers

import (
	"net/http"
	"time"

	"github.com/vanha-creative/autonamer/internal/models"
	"github.com/vanha-creative/autonamer/internal/storage"
)

type sessionSummary struct {
	ID        string            `json:"id"`
	Inputs    models.UserInputs `json:"inputs"`
	CreatedAt time.Time         `json:"created_at"`
	Current   bool              `json:"current"`
	Groups    int               `json:"groups"`
	Ungrouped int               `json:"ungrouped"`
}

func (h *Handler) summarize(session *storage.Session) sessionSummary {
	summary := sessionSummary{
		ID:        session.ID,
		Inputs:    session.Inputs,
		CreatedAt: session.CreatedAt,
	}
	if current, err := h.sessionStore.Current(); err == nil {
		summary.Current = current.ID == session.ID
	}
	_ = session.Do(func(store *storage.GroupStore) error {
		summary.Groups = len(store.Groups())
		summary.Ungrouped = len(store.Ungrouped())
		return nil
	})
	return summary
}

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.sessionStore.List()
	sessionList := make([]sessionSummary, 0, len(sessions))
	for _, session := range sessions {
		sessionList = append(sessionList, h.summarize(session))
	}
	h.writeJSON(w, sessionList)
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	session, ok := h.sessionStore.Get(sessionID)
	if !ok {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case "GET":
		var snap *models.GroupedAssets
		if err := session.Do(func(store *storage.GroupStore) error {
			var err error
			snap, err = store.Snapshot()
			return err
		}); err != nil {
			h.writeStoreError(w, err)
			return
		}
		h.writeJSON(w, map[string]any{
			"session": h.summarize(session),
			"groups":  snap,
		})
	case "DELETE":
		if err := h.sessionStore.Delete(sessionID); err != nil {
			h.writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
