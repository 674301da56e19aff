package mockserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/whatsupgo/whatsupgo/internal/mockserver/store"
	"github.com/whatsupgo/whatsupgo/wug"
)

// deviceHandler serves the device CRUD and template endpoints.
type deviceHandler struct {
	store *store.Store
}

// cardView is the reduced device shape returned for view=card.
type cardView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

func deviceView(d *store.Device, view string) any {
	if view == "card" {
		return cardView{ID: d.ID, Name: d.Name, Status: d.Status}
	}
	return d.Device
}

// GetDevice handles GET /devices/{id}
func (h *deviceHandler) GetDevice(w http.ResponseWriter, r *http.Request) {
	dev := h.store.Device(chi.URLParam(r, "id"))
	if dev == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Device not found")
		return
	}
	respondData(w, http.StatusOK, nil, deviceView(dev, r.URL.Query().Get("view")))
}

// ListGroupDevices handles GET /device-groups/{groupId}/devices/-
func (h *deviceHandler) ListGroupDevices(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")
	if h.store.Group(groupID) == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Device group not found")
		return
	}

	view := r.URL.Query().Get("view")
	devices := h.store.GroupDevices(groupID)
	limit, offset := pageParams(r, 25)
	pageItems, p := page(devices, limit, offset)

	out := make([]any, len(pageItems))
	for i, d := range pageItems {
		out[i] = deviceView(d, view)
	}
	respondData(w, http.StatusOK, p, map[string]any{"devices": out})
}

// UpdateProperties handles PUT /devices/{id}/properties
func (h *deviceHandler) UpdateProperties(w http.ResponseWriter, r *http.Request) {
	var props map[string]any
	if err := json.NewDecoder(r.Body).Decode(&props); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid JSON body")
		return
	}
	if !h.store.UpdateDeviceProperties(chi.URLParam(r, "id"), props) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Device not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteDevice handles DELETE /devices/{id}
func (h *deviceHandler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	if !h.store.DeleteDevice(chi.URLParam(r, "id")) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Device not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportTemplate handles GET /devices/{id}/config/template
func (h *deviceHandler) ExportTemplate(w http.ResponseWriter, r *http.Request) {
	dev := h.store.Device(chi.URLParam(r, "id"))
	if dev == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Device not found")
		return
	}

	tpl := wug.DeviceTemplate{
		DisplayName:     dev.Name,
		Role:            dev.Role,
		Notes:           dev.Notes,
		PollIntervalSec: dev.Polling.IntervalSeconds,
		Interfaces: []wug.TemplateInterface{
			{NetworkAddress: dev.NetworkAddress, HostName: dev.HostName, IsDefault: true},
		},
	}
	monitors, _ := h.store.DeviceMonitors(dev.ID)
	for _, m := range monitors {
		if m.Type == "active" {
			tpl.ActiveMonitors = append(tpl.ActiveMonitors, wug.TemplateMonitor{Name: m.Name})
		}
	}
	respondData(w, http.StatusOK, nil, tpl)
}

// ApplyTemplates handles PATCH /devices/-/config/template
func (h *deviceHandler) ApplyTemplates(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Templates []wug.DeviceTemplate `json:"templates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid JSON body")
		return
	}
	if len(req.Templates) == 0 {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "No templates given")
		return
	}

	result := wug.TemplateResult{}
	for _, tpl := range req.Templates {
		if tpl.DisplayName == "" || len(tpl.Interfaces) == 0 {
			result.Failed++
			result.Errors = append(result.Errors, "template missing displayName or interfaces")
			continue
		}
		result.Successful++
		result.IDs = append(result.IDs, h.store.CreateDevice(tpl))
	}
	respondData(w, http.StatusCreated, nil, result)
}
