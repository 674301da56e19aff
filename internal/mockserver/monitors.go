package mockserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/whatsupgo/whatsupgo/internal/mockserver/store"
)

// monitorHandler serves the monitor library and assignment endpoints.
type monitorHandler struct {
	store *store.Store
}

// ListMonitors handles GET /monitors/-
func (h *monitorHandler) ListMonitors(w http.ResponseWriter, r *http.Request) {
	monitors := h.store.Monitors(r.URL.Query().Get("type"), r.URL.Query().Get("search"))
	respondData(w, http.StatusOK, nil, map[string]any{"monitors": monitors})
}

// ListDeviceMonitors handles GET /devices/{id}/monitors/-
func (h *monitorHandler) ListDeviceMonitors(w http.ResponseWriter, r *http.Request) {
	monitors, ok := h.store.DeviceMonitors(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Device not found")
		return
	}
	respondData(w, http.StatusOK, nil, map[string]any{"monitors": monitors})
}

// AssignMonitor handles POST /devices/{id}/monitors/-
func (h *monitorHandler) AssignMonitor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MonitorID string `json:"monitorId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MonitorID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "monitorId is required")
		return
	}
	mon, ok := h.store.AssignMonitor(chi.URLParam(r, "id"), req.MonitorID)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Device or monitor not found")
		return
	}
	respondData(w, http.StatusCreated, nil, mon)
}
