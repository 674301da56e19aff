package wug

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// MaintenanceRequest configures a device maintenance window. EndUTC nil
// means the window stays open until explicitly disabled.
type MaintenanceRequest struct {
	Enabled bool       `json:"enabled"`
	EndUTC  *time.Time `json:"endUtc,omitempty"`
	Reason  string     `json:"reason,omitempty"`
}

// SetMaintenance enables or disables maintenance mode on a device.
func (c *Client) SetMaintenance(ctx context.Context, deviceID string, req MaintenanceRequest) (*PollingConfig, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("wug: device id is required")
	}
	var cfg PollingConfig
	if _, err := c.Do(ctx, http.MethodPatch, "/devices/"+deviceID+"/config/polling", nil, req, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PollingConfig reads back the polling and maintenance state of a device.
func (c *Client) PollingConfig(ctx context.Context, deviceID string) (*PollingConfig, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("wug: device id is required")
	}
	var cfg PollingConfig
	if _, err := c.Do(ctx, http.MethodGet, "/devices/"+deviceID+"/config/polling", nil, nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
