package mockserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/whatsupgo/whatsupgo/internal/mockserver/store"
)

// groupHandler serves the device-group endpoints.
type groupHandler struct {
	store *store.Store
}

// ListGroups handles GET /device-groups/-
func (h *groupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups := h.store.Groups(r.URL.Query().Get("search"))
	limit, offset := pageParams(r, 25)
	pageItems, p := page(groups, limit, offset)
	respondData(w, http.StatusOK, p, map[string]any{"groups": pageItems})
}

// GetGroup handles GET /device-groups/{groupId}
func (h *groupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	group := h.store.Group(chi.URLParam(r, "groupId"))
	if group == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Device group not found")
		return
	}
	respondData(w, http.StatusOK, nil, group)
}
