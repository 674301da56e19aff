package wug_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/whatsupgo/whatsupgo/internal/mockserver"
	"github.com/whatsupgo/whatsupgo/report"
	"github.com/whatsupgo/whatsupgo/wug"
)

// startSim boots the API simulator and a client connected to it.
func startSim(t *testing.T) *wug.Client {
	t.Helper()
	sim, err := mockserver.New(mockserver.Options{})
	if err != nil {
		t.Fatalf("mockserver.New: %v", err)
	}
	srv := httptest.NewServer(sim.Router())
	t.Cleanup(srv.Close)

	client, err := wug.New(wug.Config{
		ServerURL: srv.URL,
		Username:  "admin",
		Password:  "secret",
	})
	if err != nil {
		t.Fatalf("wug.New: %v", err)
	}
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return client
}

func TestSimulatorDeviceLifecycle(t *testing.T) {
	client := startSim(t)
	ctx := context.Background()

	devices, err := client.AllDeviceGroupDevices(ctx, "", wug.ViewOverview)
	if err != nil {
		t.Fatalf("AllDeviceGroupDevices: %v", err)
	}
	if len(devices) != 3 {
		t.Fatalf("seeded device count = %d, want 3", len(devices))
	}

	dev, err := client.Device(ctx, devices[0].ID, wug.ViewOverview)
	if err != nil {
		t.Fatalf("Device: %v", err)
	}
	if dev.Name != "edge-rtr-01" {
		t.Errorf("device name = %q, want edge-rtr-01", dev.Name)
	}

	// Create from template, update, then delete.
	result, err := client.ApplyDeviceTemplates(ctx, []wug.DeviceTemplate{{
		DisplayName: "new-fw-01",
		Role:        "Firewall",
		Interfaces: []wug.TemplateInterface{
			{NetworkAddress: "10.0.0.9", HostName: "new-fw-01.example.com", IsDefault: true},
		},
	}})
	if err != nil {
		t.Fatalf("ApplyDeviceTemplates: %v", err)
	}
	if result.Successful != 1 || len(result.IDs) != 1 {
		t.Fatalf("unexpected template result %+v", result)
	}
	newID := result.IDs[0]

	if err := client.UpdateDeviceProperties(ctx, newID, map[string]any{"notes": "staged"}); err != nil {
		t.Fatalf("UpdateDeviceProperties: %v", err)
	}
	created, err := client.Device(ctx, newID, wug.ViewOverview)
	if err != nil {
		t.Fatalf("Device: %v", err)
	}
	if created.Notes != "staged" || created.NetworkAddress != "10.0.0.9" {
		t.Errorf("created device = %+v", created)
	}

	if err := client.DeleteDevice(ctx, newID); err != nil {
		t.Fatalf("DeleteDevice: %v", err)
	}
	if _, err := client.Device(ctx, newID, wug.ViewOverview); err == nil {
		t.Error("deleted device still fetchable")
	}
}

func TestSimulatorAttributesAndMaintenance(t *testing.T) {
	client := startSim(t)
	ctx := context.Background()

	attrs, err := client.DeviceAttributes(ctx, "1")
	if err != nil {
		t.Fatalf("DeviceAttributes: %v", err)
	}
	if len(attrs) != 2 {
		t.Fatalf("seeded attribute count = %d, want 2", len(attrs))
	}

	attr, err := client.CreateDeviceAttribute(ctx, "1", "Rack", "B-12")
	if err != nil {
		t.Fatalf("CreateDeviceAttribute: %v", err)
	}
	updated, err := client.UpdateDeviceAttribute(ctx, "1", attr.ID, "B-13")
	if err != nil {
		t.Fatalf("UpdateDeviceAttribute: %v", err)
	}
	if updated.Value != "B-13" {
		t.Errorf("attribute value = %q, want B-13", updated.Value)
	}
	if err := client.DeleteDeviceAttribute(ctx, "1", attr.ID); err != nil {
		t.Fatalf("DeleteDeviceAttribute: %v", err)
	}

	end := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	cfg, err := client.SetMaintenance(ctx, "1", wug.MaintenanceRequest{
		Enabled: true,
		EndUTC:  &end,
		Reason:  "firmware upgrade",
	})
	if err != nil {
		t.Fatalf("SetMaintenance: %v", err)
	}
	if !cfg.MaintenanceEnabled || cfg.MaintenanceReason != "firmware upgrade" {
		t.Errorf("polling config = %+v", cfg)
	}

	dev, err := client.Device(ctx, "1", wug.ViewCard)
	if err != nil {
		t.Fatalf("Device: %v", err)
	}
	if dev.Status != "Maintenance" {
		t.Errorf("status = %q, want Maintenance", dev.Status)
	}

	if _, err := client.SetMaintenance(ctx, "1", wug.MaintenanceRequest{Enabled: false}); err != nil {
		t.Fatalf("SetMaintenance disable: %v", err)
	}
	back, err := client.PollingConfig(ctx, "1")
	if err != nil {
		t.Fatalf("PollingConfig: %v", err)
	}
	if back.MaintenanceEnabled {
		t.Error("maintenance still enabled after disable")
	}
}

func TestSimulatorGroupsAndMonitors(t *testing.T) {
	client := startSim(t)
	ctx := context.Background()

	groups, err := client.AllDeviceGroups(ctx, "")
	if err != nil {
		t.Fatalf("AllDeviceGroups: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("seeded group count = %d, want 2", len(groups))
	}

	routers, err := client.AllDeviceGroups(ctx, "router")
	if err != nil {
		t.Fatalf("AllDeviceGroups(search): %v", err)
	}
	if len(routers) != 1 || routers[0].Name != "Core Routers" {
		t.Errorf("search result = %+v", routers)
	}

	coreDevices, err := client.AllDeviceGroupDevices(ctx, routers[0].ID, wug.ViewCard)
	if err != nil {
		t.Fatalf("AllDeviceGroupDevices: %v", err)
	}
	if len(coreDevices) != 2 {
		t.Errorf("core router count = %d, want 2", len(coreDevices))
	}

	monitors, err := client.Monitors(ctx, "active", "")
	if err != nil {
		t.Fatalf("Monitors: %v", err)
	}
	if len(monitors) != 2 {
		t.Errorf("active monitor count = %d, want 2", len(monitors))
	}

	assigned, err := client.AssignMonitor(ctx, "2", "11")
	if err != nil {
		t.Fatalf("AssignMonitor: %v", err)
	}
	if assigned.Name != "HTTP" {
		t.Errorf("assigned monitor = %+v", assigned)
	}
	devMonitors, err := client.DeviceMonitors(ctx, "2")
	if err != nil {
		t.Fatalf("DeviceMonitors: %v", err)
	}
	if len(devMonitors) != 2 {
		t.Errorf("device monitor count = %d, want 2", len(devMonitors))
	}
}

func TestSimulatorReportToHTML(t *testing.T) {
	client := startSim(t)
	ctx := context.Background()

	rows, err := client.AllDeviceReport(ctx, "1", wug.ReportPingResponseTime, wug.ReportQuery{})
	if err != nil {
		t.Fatalf("AllDeviceReport: %v", err)
	}
	if len(rows) != 48 {
		t.Fatalf("row count = %d, want 48", len(rows))
	}

	table, err := report.Infer(rows)
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	wantColumns := []string{"pollTimeUtc", "minimumMs", "maximumMs", "averageMs"}
	if len(table.Columns) != len(wantColumns) {
		t.Fatalf("columns = %v, want %v", table.Columns, wantColumns)
	}
	for i, c := range wantColumns {
		if table.Columns[i] != c {
			t.Errorf("columns[%d] = %q, want %q", i, table.Columns[i], c)
		}
	}

	var buf strings.Builder
	if err := table.WriteHTML(&buf, report.Options{Title: "Ping Response"}); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	if !strings.Contains(buf.String(), "<th>averageMs</th>") {
		t.Error("rendered HTML missing report column")
	}

	// Group reports carry the device name and span every group member.
	groupRows, err := client.AllGroupReport(ctx, "-1", wug.ReportCPUUtilization, wug.ReportQuery{})
	if err != nil {
		t.Fatalf("AllGroupReport: %v", err)
	}
	if len(groupRows) != 3*48 {
		t.Errorf("group row count = %d, want %d", len(groupRows), 3*48)
	}
	groupTable, err := report.Infer(groupRows)
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	found := false
	for _, c := range groupTable.Columns {
		if c == "deviceName" {
			found = true
		}
	}
	if !found {
		t.Errorf("group report columns = %v, want deviceName included", groupTable.Columns)
	}
}

func TestSimulatorTokenRefresh(t *testing.T) {
	client := startSim(t)
	if err := client.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, err := client.Device(context.Background(), "1", wug.ViewCard); err != nil {
		t.Fatalf("Device after refresh: %v", err)
	}
}
