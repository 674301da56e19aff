package mockserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/whatsupgo/whatsupgo/internal/mockserver/store"
)

// reportHandler serves the device and group report endpoints. Rows are
// synthesized deterministically from the device id and the hour index so
// tests can assert on exact values.
type reportHandler struct {
	store *store.Store
}

// reportBase anchors the synthetic series. Fixed so output never depends on
// the wall clock.
var reportBase = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

const reportHours = 48

type availabilityRow struct {
	PollTimeUTC      string  `json:"pollTimeUtc"`
	DeviceName       string  `json:"deviceName,omitempty"`
	PercentAvailable float64 `json:"percentAvailable"`
	OutageMinutes    int     `json:"outageMinutes"`
}

type responseTimeRow struct {
	PollTimeUTC string  `json:"pollTimeUtc"`
	DeviceName  string  `json:"deviceName,omitempty"`
	MinimumMS   float64 `json:"minimumMs"`
	MaximumMS   float64 `json:"maximumMs"`
	AverageMS   float64 `json:"averageMs"`
}

type utilizationRow struct {
	PollTimeUTC string  `json:"pollTimeUtc"`
	DeviceName  string  `json:"deviceName,omitempty"`
	PercentUsed float64 `json:"percentUsed"`
}

type interfaceRow struct {
	PollTimeUTC   string  `json:"pollTimeUtc"`
	DeviceName    string  `json:"deviceName,omitempty"`
	InterfaceName string  `json:"interfaceName"`
	InPercent     float64 `json:"inPercent"`
	OutPercent    float64 `json:"outPercent"`
}

var reportCategories = map[string]bool{
	"ping-availability":     true,
	"ping-response-time":    true,
	"cpu-utilization":       true,
	"disk-utilization":      true,
	"memory-utilization":    true,
	"interface-utilization": true,
}

// DeviceReport handles GET /devices/{id}/reports/{category}
func (h *reportHandler) DeviceReport(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if !reportCategories[category] {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Unknown report category")
		return
	}
	dev := h.store.Device(chi.URLParam(r, "id"))
	if dev == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Device not found")
		return
	}

	rows := deviceRows(category, dev, false)
	limit, offset := pageParams(r, 25)
	pageRows, p := page(rows, limit, offset)
	respondData(w, http.StatusOK, p, pageRows)
}

// GroupReport handles GET /device-groups/{groupId}/devices/reports/{category}
func (h *reportHandler) GroupReport(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if !reportCategories[category] {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Unknown report category")
		return
	}
	groupID := chi.URLParam(r, "groupId")
	if h.store.Group(groupID) == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Device group not found")
		return
	}

	var rows []any
	for _, dev := range h.store.GroupDevices(groupID) {
		rows = append(rows, deviceRows(category, dev, true)...)
	}
	limit, offset := pageParams(r, 25)
	pageRows, p := page(rows, limit, offset)
	respondData(w, http.StatusOK, p, pageRows)
}

// deviceRows builds the full synthetic series for one device.
func deviceRows(category string, dev *store.Device, withName bool) []any {
	devNum, _ := strconv.Atoi(dev.ID)
	name := ""
	if withName {
		name = dev.Name
	}

	rows := make([]any, 0, reportHours)
	for i := 0; i < reportHours; i++ {
		ts := reportBase.Add(time.Duration(i) * time.Hour).Format(time.RFC3339)
		// Value in [0,100), different per device and hour but reproducible.
		v := float64((devNum*31 + i*7) % 100)

		switch category {
		case "ping-availability":
			outage := 0
			if v < 5 {
				outage = int(5 - v)
			}
			rows = append(rows, availabilityRow{
				PollTimeUTC: ts, DeviceName: name,
				PercentAvailable: 100 - float64(outage), OutageMinutes: outage,
			})
		case "ping-response-time":
			rows = append(rows, responseTimeRow{
				PollTimeUTC: ts, DeviceName: name,
				MinimumMS: v / 10, MaximumMS: v/10 + 12, AverageMS: v/10 + 4,
			})
		case "cpu-utilization", "disk-utilization", "memory-utilization":
			rows = append(rows, utilizationRow{
				PollTimeUTC: ts, DeviceName: name, PercentUsed: v,
			})
		case "interface-utilization":
			rows = append(rows, interfaceRow{
				PollTimeUTC: ts, DeviceName: name, InterfaceName: "GigabitEthernet0/1",
				InPercent: v, OutPercent: float64(int(v*3) % 100),
			})
		}
	}
	return rows
}
