package handlers

import (
	"log/slog"
	"net/http"

	"github.com/felixge/httpsnoop"
)

// Routes returns the API mux wrapped in request logging and CORS.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.HandleRoot)
	mux.HandleFunc("GET /healthcheck", h.HandleHealthcheck)
	mux.HandleFunc("GET /api/config", h.HandleConfig)

	mux.HandleFunc("POST /api/analyze", h.HandleAnalyze)
	mux.HandleFunc("GET /api/groups", h.HandleGroups)
	mux.HandleFunc("PUT /api/groups/renumber", h.HandleRenumber)
	mux.HandleFunc("PUT /api/groups/regroup", h.HandleRegroup)
	mux.HandleFunc("POST /api/groups/infer", h.HandleInfer)
	mux.HandleFunc("PUT /api/groups/{id}", h.HandleUpdateGroup)
	mux.HandleFunc("PUT /api/groups/{id}/assets/{assetID}", h.HandleUpdateAsset)

	mux.HandleFunc("POST /api/bulk/replace", h.HandleBulkReplace)
	mux.HandleFunc("POST /api/bulk/apply", h.HandleBulkApply)

	mux.HandleFunc("GET /api/export/preview", h.HandleExportPreview)
	mux.HandleFunc("POST /api/export", h.HandleExport)
	mux.HandleFunc("GET /api/debug/analysis", h.HandleDebugAnalysis)

	mux.HandleFunc("GET /api/sessions", h.HandleSessions)
	mux.HandleFunc("/api/sessions/{id}", h.HandleSessionDetail)

	mux.HandleFunc("GET /temp/", h.HandleTemp)

	return logRequests(cors(mux))
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		level := slog.LevelDebug
		if m.Code >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		slog.Log(r.Context(), level, "Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", m.Code,
			"bytes", m.Written,
			"duration", m.Duration)
	})
}

// cors allows the local frontend dev servers.
func cors(next http.Handler) http.Handler {
	allowed := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Session-ID, X-Updated-Count")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
