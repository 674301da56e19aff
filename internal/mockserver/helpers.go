package mockserver

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// paging mirrors the paging block of list and report responses.
type paging struct {
	Size       int    `json:"size"`
	NextPageID string `json:"nextPageId,omitempty"`
}

// respondData sends a {"paging", "data"} envelope.
func respondData(w http.ResponseWriter, statusCode int, p *paging, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	body := map[string]any{"data": data}
	if p != nil {
		body["paging"] = p
	}
	json.NewEncoder(w).Encode(body)
}

// respondError sends an {"error": {"code", "message"}} envelope.
func respondError(w http.ResponseWriter, statusCode int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeJSON(w http.ResponseWriter, body any) {
	json.NewEncoder(w).Encode(body)
}

// pageParams reads limit/pageId query parameters. pageId is a row offset.
func pageParams(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("pageId"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = n
		}
	}
	return limit, offset
}

// page slices one page out of n items and builds its paging block.
func page[T any](items []T, limit, offset int) ([]T, *paging) {
	if offset >= len(items) {
		return []T{}, &paging{Size: 0}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	p := &paging{Size: end - offset}
	if end < len(items) {
		p.NextPageID = strconv.Itoa(end)
	}
	return items[offset:end], p
}
