package wug

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestDeviceReportQueryParams(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	srv := newTestServer(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/v1/devices/1/reports/cpu-utilization", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("range") != "custom" {
				t.Errorf("range = %q", q.Get("range"))
			}
			if q.Get("rangeStartUtc") != "2026-02-01T00:00:00Z" {
				t.Errorf("rangeStartUtc = %q", q.Get("rangeStartUtc"))
			}
			if q.Get("rangeEndUtc") != "2026-02-02T00:00:00Z" {
				t.Errorf("rangeEndUtc = %q", q.Get("rangeEndUtc"))
			}
			if q.Get("granularity") != "hourly" || q.Get("limit") != "5" {
				t.Errorf("unexpected query %q", r.URL.RawQuery)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"paging": Paging{Size: 1},
				"data":   []map[string]any{{"pollTimeUtc": "2026-02-01T00:00:00Z", "percentUsed": 42.0}},
			})
		})
	})
	c := newTestClient(t, srv.URL)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	page, err := c.DeviceReport(context.Background(), "1", ReportCPUUtilization, ReportQuery{
		Range:       "custom",
		StartUTC:    &start,
		EndUTC:      &end,
		Granularity: "hourly",
		Limit:       5,
	})
	if err != nil {
		t.Fatalf("DeviceReport: %v", err)
	}
	if len(page.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(page.Rows))
	}

	var row struct {
		PercentUsed float64 `json:"percentUsed"`
	}
	if err := json.Unmarshal(page.Rows[0], &row); err != nil {
		t.Fatalf("row is not JSON: %v", err)
	}
	if row.PercentUsed != 42.0 {
		t.Errorf("percentUsed = %v, want 42", row.PercentUsed)
	}
}

func TestAllDeviceReportWalksPages(t *testing.T) {
	srv := newTestServer(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/v1/devices/1/reports/ping-availability", func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("pageId") {
			case "":
				json.NewEncoder(w).Encode(map[string]any{
					"paging": Paging{Size: 2, NextPageID: "2"},
					"data":   []map[string]any{{"n": 1}, {"n": 2}},
				})
			case "2":
				json.NewEncoder(w).Encode(map[string]any{
					"paging": Paging{Size: 1},
					"data":   []map[string]any{{"n": 3}},
				})
			default:
				t.Errorf("unexpected pageId %q", r.URL.Query().Get("pageId"))
			}
		})
	})
	c := newTestClient(t, srv.URL)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	rows, err := c.AllDeviceReport(context.Background(), "1", ReportPingAvailability, ReportQuery{})
	if err != nil {
		t.Fatalf("AllDeviceReport: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows, want 3", len(rows))
	}
}

func TestGroupReportPath(t *testing.T) {
	srv := newTestServer(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/v1/device-groups/2/devices/reports/memory-utilization", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"paging": Paging{Size: 0},
				"data":   []map[string]any{},
			})
		})
	})
	c := newTestClient(t, srv.URL)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	page, err := c.GroupReport(context.Background(), "2", ReportMemoryUtilization, ReportQuery{})
	if err != nil {
		t.Fatalf("GroupReport: %v", err)
	}
	if len(page.Rows) != 0 {
		t.Errorf("got %d rows, want 0", len(page.Rows))
	}
}
