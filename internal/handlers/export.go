package handlers

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"sort"

	"github.com/vanha-creative/autonamer/internal/export"
	"github.com/vanha-creative/autonamer/internal/models"
	"github.com/vanha-creative/autonamer/internal/storage"
)

// rows projects the selected session into export rows.
func (h *Handler) rows(w http.ResponseWriter, r *http.Request) ([]models.ExportRow, bool) {
	var rows []models.ExportRow
	ok := h.withStore(w, r, func(store *storage.GroupStore) error {
		if !store.Ready() {
			return storage.ErrNotReady
		}
		rows = export.Rows(store.Groups())
		return nil
	})
	return rows, ok
}

func (h *Handler) HandleExportPreview(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.rows(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, map[string]any{"rows": rows})
}

// HandleExport downloads the export as CSV, or Parquet with ?format=parquet.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "parquet" {
		h.writeError(w, "Invalid format. Must be 'csv' or 'parquet'", http.StatusBadRequest)
		return
	}

	rows, ok := h.rows(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	var err error
	contentType := "text/csv"
	if format == "parquet" {
		contentType = "application/vnd.apache.parquet"
		err = export.WriteParquet(&buf, rows)
	} else {
		err = export.WriteCSV(&buf, rows)
	}
	if err != nil {
		h.writeError(w, "Failed to write export: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=ad_names.%s", format))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.writeError(w, "Failed to write response: "+err.Error(), http.StatusInternalServerError)
	}
}

type assetBreakdown struct {
	Filename    string  `json:"filename"`
	Type        string  `json:"type"`
	Dimensions  string  `json:"dimensions"`
	AspectRatio float64 `json:"aspect_ratio"`
	Placement   string  `json:"placement"`
	Degraded    bool    `json:"degraded"`
	GroupID     string  `json:"group_id"`
	GroupType   string  `json:"group_type"`
	AdNumber    *int    `json:"ad_number"`
	Fingerprint string  `json:"fingerprint"`
	OCRPreview  string  `json:"ocr_preview"`
}

type groupSummary struct {
	AdNumber   int      `json:"ad_number"`
	Type       string   `json:"type"`
	Format     string   `json:"format"`
	AssetCount int      `json:"asset_count"`
	Assets     []string `json:"assets"`
}

// HandleDebugAnalysis reports how every asset was measured and grouped.
func (h *Handler) HandleDebugAnalysis(w http.ResponseWriter, r *http.Request) {
	var snap *models.GroupedAssets
	if !h.withStore(w, r, func(store *storage.GroupStore) error {
		var err error
		snap, err = store.Snapshot()
		return err
	}) {
		return
	}

	var breakdown []assetBreakdown
	summaries := make([]groupSummary, 0, len(snap.Groups))
	for _, g := range snap.Groups {
		summary := groupSummary{
			AdNumber:   g.AdNumber,
			Type:       string(g.GroupType),
			Format:     g.FormatToken,
			AssetCount: len(g.Assets),
		}
		for _, a := range g.Assets {
			adNumber := g.AdNumber
			entry := breakdownOf(a)
			entry.GroupID = prefix(g.ID, 8)
			entry.GroupType = string(g.GroupType)
			entry.AdNumber = &adNumber
			breakdown = append(breakdown, entry)
			summary.Assets = append(summary.Assets, a.Asset.Name)
		}
		summaries = append(summaries, summary)
	}
	for _, a := range snap.Ungrouped {
		entry := breakdownOf(a)
		entry.GroupID = "UNGROUPED"
		entry.GroupType = "none"
		breakdown = append(breakdown, entry)
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Filename < breakdown[j].Filename
	})

	h.writeJSON(w, map[string]any{
		"total_assets":     len(breakdown),
		"total_groups":     len(snap.Groups),
		"ungrouped_count":  len(snap.Ungrouped),
		"groups_summary":   summaries,
		"assets_breakdown": breakdown,
	})
}

func breakdownOf(a *models.ProcessedAsset) assetBreakdown {
	fp := "none"
	if a.Fingerprint.Reliable() {
		fp = fmt.Sprintf("%016x", a.Fingerprint.Hashes[0])
	}
	ocr := "none"
	if a.OCRText != "" {
		ocr = prefix(a.OCRText, 50)
	}
	return assetBreakdown{
		Filename:    a.Asset.Name,
		Type:        string(a.Asset.Kind),
		Dimensions:  fmt.Sprintf("%dx%d", a.Metadata.Width, a.Metadata.Height),
		AspectRatio: math.Round(a.Metadata.AspectRatio*10000) / 10000,
		Placement:   string(a.Placement),
		Degraded:    a.Metadata.Degraded,
		Fingerprint: fp,
		OCRPreview:  ocr,
	}
}

// prefix returns at most n runes of s.
func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
