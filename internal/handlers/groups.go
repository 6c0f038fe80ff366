package handlers

import (
	"net/http"
	"strconv"

	"github.com/vanha-creative/autonamer/internal/models"
	"github.com/vanha-creative/autonamer/internal/storage"
)

func (h *Handler) HandleGroups(w http.ResponseWriter, r *http.Request) {
	h.writeSnapshot(w, r)
}

func (h *Handler) HandleRenumber(w http.ResponseWriter, r *http.Request) {
	var request struct {
		StartNumber *int `json:"start_number"`
	}
	if !h.decode(w, r, &request) {
		return
	}
	start := 1
	if request.StartNumber != nil {
		start = *request.StartNumber
	}

	if h.withStore(w, r, func(store *storage.GroupStore) error {
		return store.Renumber(start)
	}) {
		h.writeSnapshot(w, r)
	}
}

func (h *Handler) HandleRegroup(w http.ResponseWriter, r *http.Request) {
	var request struct {
		AssetID       string `json:"asset_id"`
		TargetGroupID string `json:"target_group_id"`
	}
	if !h.decode(w, r, &request) {
		return
	}
	if request.AssetID == "" {
		h.writeError(w, "asset_id is required", http.StatusBadRequest)
		return
	}

	if h.withStore(w, r, func(store *storage.GroupStore) error {
		return store.Regroup(request.AssetID, request.TargetGroupID)
	}) {
		h.writeSnapshot(w, r)
	}
}

func (h *Handler) HandleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	var patch storage.GroupPatch
	if !h.decode(w, r, &patch) {
		return
	}

	var group *models.AdGroup
	if h.withStore(w, r, func(store *storage.GroupStore) error {
		var err error
		group, err = store.UpdateGroup(r.PathValue("id"), patch)
		return err
	}) {
		h.writeJSON(w, group)
	}
}

func (h *Handler) HandleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	var patch storage.AssetPatch
	if !h.decode(w, r, &patch) {
		return
	}

	var asset *models.ProcessedAsset
	if h.withStore(w, r, func(store *storage.GroupStore) error {
		var err error
		asset, err = store.UpdateAsset(r.PathValue("id"), r.PathValue("assetID"), patch)
		return err
	}) {
		h.writeJSON(w, asset)
	}
}

func (h *Handler) HandleBulkReplace(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Field   string `json:"field"`
		Find    string `json:"find"`
		Replace string `json:"replace"`
	}
	if !h.decode(w, r, &request) {
		return
	}

	var changed int
	if h.withStore(w, r, func(store *storage.GroupStore) error {
		var err error
		changed, err = store.BulkReplace(request.Field, request.Find, request.Replace)
		return err
	}) {
		w.Header().Set("X-Updated-Count", strconv.Itoa(changed))
		h.writeSnapshot(w, r)
	}
}

func (h *Handler) HandleBulkApply(w http.ResponseWriter, r *http.Request) {
	var request struct {
		GroupIDs []string `json:"group_ids"`
		Field    string   `json:"field"`
		Value    string   `json:"value"`
	}
	if !h.decode(w, r, &request) {
		return
	}

	var changed int
	if h.withStore(w, r, func(store *storage.GroupStore) error {
		var err error
		changed, err = store.BulkApply(request.GroupIDs, request.Field, request.Value)
		return err
	}) {
		w.Header().Set("X-Updated-Count", strconv.Itoa(changed))
		h.writeSnapshot(w, r)
	}
}
