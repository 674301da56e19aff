package wug

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Monitors searches the monitor library. monitorType is one of "active",
// "performance" or "passive"; empty returns all types.
func (c *Client) Monitors(ctx context.Context, monitorType, search string) ([]Monitor, error) {
	q := url.Values{}
	if monitorType != "" {
		q.Set("type", monitorType)
	}
	if search != "" {
		q.Set("search", search)
	}
	var out struct {
		Monitors []Monitor `json:"monitors"`
	}
	if _, err := c.Do(ctx, http.MethodGet, "/monitors/-", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Monitors, nil
}

// DeviceMonitors lists the monitors assigned to a device.
func (c *Client) DeviceMonitors(ctx context.Context, deviceID string) ([]Monitor, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("wug: device id is required")
	}
	var out struct {
		Monitors []Monitor `json:"monitors"`
	}
	if _, err := c.Do(ctx, http.MethodGet, "/devices/"+deviceID+"/monitors/-", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Monitors, nil
}

// AssignMonitor assigns a library monitor to a device.
func (c *Client) AssignMonitor(ctx context.Context, deviceID, monitorID string) (*Monitor, error) {
	if deviceID == "" || monitorID == "" {
		return nil, fmt.Errorf("wug: device id and monitor id are required")
	}
	body := map[string]string{"monitorId": monitorID}
	var mon Monitor
	if _, err := c.Do(ctx, http.MethodPost, "/devices/"+deviceID+"/monitors/-", nil, body, &mon); err != nil {
		return nil, err
	}
	return &mon, nil
}
