package wug

import (
	"encoding/json"
	"time"
)

// Token holds the credential triple returned by the token endpoint.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"-"`
}

// Paging describes the paging block of a list or report response.
type Paging struct {
	Size       int    `json:"size"`
	NextPageID string `json:"nextPageId,omitempty"`
}

// Device is a monitored device record.
type Device struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	HostName            string `json:"hostName"`
	NetworkAddress      string `json:"networkAddress"`
	Status              string `json:"status"` // Up, Down, Maintenance, Unknown
	OS                  string `json:"os,omitempty"`
	Brand               string `json:"brand,omitempty"`
	Role                string `json:"role,omitempty"`
	Notes               string `json:"notes,omitempty"`
	TotalActiveMonitors int    `json:"totalActiveMonitors"`
	DownActiveMonitors  int    `json:"downActiveMonitors"`
}

// DeviceGroup is a device container in the group tree.
type DeviceGroup struct {
	ID          string `json:"id"`
	ParentID    string `json:"parentId,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	DeviceCount int    `json:"deviceCount"`
	StatusUp    int    `json:"monitorsUp"`
	StatusDown  int    `json:"monitorsDown"`
}

// Attribute is a free-form name/value pair attached to a device.
type Attribute struct {
	ID       string `json:"attributeId"`
	DeviceID string `json:"deviceId"`
	Name     string `json:"name"`
	Value    string `json:"value"`
}

// Monitor is an entry in the monitor library or a monitor assigned to a
// device, depending on which endpoint returned it.
type Monitor struct {
	ID          string `json:"monitorId"`
	Name        string `json:"name"`
	Type        string `json:"type"` // active, performance, passive
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// PollingConfig is the polling and maintenance state of a device.
type PollingConfig struct {
	IntervalSeconds    int        `json:"pollingIntervalSeconds"`
	MaintenanceEnabled bool       `json:"maintenanceEnabled"`
	MaintenanceEndUTC  *time.Time `json:"maintenanceEndUtc,omitempty"`
	MaintenanceReason  string     `json:"maintenanceReason,omitempty"`
}

// TemplateInterface is one network interface of a device template.
type TemplateInterface struct {
	NetworkAddress string `json:"networkAddress"`
	HostName       string `json:"hostName,omitempty"`
	IsDefault      bool   `json:"isDefault"`
}

// TemplateMonitor names a monitor to assign when a template is applied.
type TemplateMonitor struct {
	Name     string `json:"name"`
	Argument string `json:"argument,omitempty"`
}

// DeviceTemplate describes a device for export or bulk creation.
type DeviceTemplate struct {
	DisplayName     string              `json:"displayName" validate:"required"`
	DeviceType      string              `json:"deviceType,omitempty"`
	Role            string              `json:"role,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	PollIntervalSec int                 `json:"pollIntervalSeconds,omitempty"`
	Interfaces      []TemplateInterface `json:"interfaces" validate:"min=1,dive"`
	ActiveMonitors  []TemplateMonitor   `json:"activeMonitors,omitempty"`
}

// TemplateResult reports the outcome of applying device templates.
type TemplateResult struct {
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	IDs        []string `json:"ids,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

// ReportCategory selects a device or group report endpoint.
type ReportCategory string

// Report categories exposed by the reports endpoints.
const (
	ReportPingAvailability  ReportCategory = "ping-availability"
	ReportPingResponseTime  ReportCategory = "ping-response-time"
	ReportCPUUtilization    ReportCategory = "cpu-utilization"
	ReportDiskUtilization   ReportCategory = "disk-utilization"
	ReportMemoryUtilization ReportCategory = "memory-utilization"
	ReportInterfaceUtil     ReportCategory = "interface-utilization"
)

// ReportQuery narrows a report request. The zero value asks the server for
// its default range with no paging.
type ReportQuery struct {
	Range       string // lastPolled, today, lastWeek, custom
	StartUTC    *time.Time
	EndUTC      *time.Time
	Granularity string // raw, hourly, daily
	Limit       int
	PageID      string
}

// ReportPage is one page of report rows. Rows are kept as raw JSON: the
// server owns the per-category row schema and callers (the HTML renderer in
// particular) consume it as-is.
type ReportPage struct {
	Paging Paging
	Rows   []json.RawMessage
}
