package mockserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/whatsupgo/whatsupgo/internal/mockserver/store"
)

// pollingHandler serves the polling/maintenance config endpoints.
type pollingHandler struct {
	store *store.Store
}

// GetPolling handles GET /devices/{id}/config/polling
func (h *pollingHandler) GetPolling(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.store.PollingConfig(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Device not found")
		return
	}
	respondData(w, http.StatusOK, nil, cfg)
}

// SetMaintenance handles PATCH /devices/{id}/config/polling
func (h *pollingHandler) SetMaintenance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool       `json:"enabled"`
		EndUTC  *time.Time `json:"endUtc"`
		Reason  string     `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid JSON body")
		return
	}
	cfg, ok := h.store.SetMaintenance(chi.URLParam(r, "id"), req.Enabled, req.EndUTC, req.Reason)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Device not found")
		return
	}
	respondData(w, http.StatusOK, nil, cfg)
}
