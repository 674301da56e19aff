package mockserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/whatsupgo/whatsupgo/internal/mockserver/store"
)

// attributeHandler serves the device attribute endpoints.
type attributeHandler struct {
	store *store.Store
}

// ListAttributes handles GET /devices/{id}/attributes/-
func (h *attributeHandler) ListAttributes(w http.ResponseWriter, r *http.Request) {
	attrs, ok := h.store.Attributes(chi.URLParam(r, "id"), r.URL.Query()["names"])
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Device not found")
		return
	}
	respondData(w, http.StatusOK, nil, map[string]any{"attributes": attrs})
}

// CreateAttribute handles PUT /devices/{id}/attributes/-
func (h *attributeHandler) CreateAttribute(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Attribute name is required")
		return
	}
	attr, ok := h.store.CreateAttribute(chi.URLParam(r, "id"), name, r.URL.Query().Get("value"))
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Device not found")
		return
	}
	respondData(w, http.StatusCreated, nil, attr)
}

// UpdateAttribute handles PUT /devices/{id}/attributes/{attributeId}
func (h *attributeHandler) UpdateAttribute(w http.ResponseWriter, r *http.Request) {
	attr, ok := h.store.UpdateAttribute(
		chi.URLParam(r, "id"),
		chi.URLParam(r, "attributeId"),
		r.URL.Query().Get("value"),
	)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Device or attribute not found")
		return
	}
	respondData(w, http.StatusOK, nil, attr)
}

// DeleteAttribute handles DELETE /devices/{id}/attributes/{attributeId}
func (h *attributeHandler) DeleteAttribute(w http.ResponseWriter, r *http.Request) {
	if !h.store.DeleteAttribute(chi.URLParam(r, "id"), chi.URLParam(r, "attributeId")) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Device or attribute not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAttributes handles DELETE /devices/{id}/attributes/-
func (h *attributeHandler) DeleteAttributes(w http.ResponseWriter, r *http.Request) {
	removed, ok := h.store.DeleteAttributes(chi.URLParam(r, "id"), r.URL.Query()["names"])
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Device not found")
		return
	}
	respondData(w, http.StatusOK, nil, map[string]int{"removed": removed})
}
