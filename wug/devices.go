package wug

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// DeviceView selects how much detail device endpoints return.
type DeviceView string

// Device views. Card is the id/name/status summary, overview adds inventory
// fields and monitor counts.
const (
	ViewCard     DeviceView = "card"
	ViewOverview DeviceView = "overview"
)

// Device fetches a single device.
func (c *Client) Device(ctx context.Context, deviceID string, view DeviceView) (*Device, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("wug: device id is required")
	}
	q := url.Values{}
	if view != "" {
		q.Set("view", string(view))
	}
	var dev Device
	if _, err := c.Do(ctx, http.MethodGet, "/devices/"+deviceID, q, nil, &dev); err != nil {
		return nil, err
	}
	return &dev, nil
}

// DeviceGroupDevices lists one page of devices in a group. Group "-1" is the
// server's root group and therefore every device.
func (c *Client) DeviceGroupDevices(ctx context.Context, groupID string, view DeviceView, limit int, pageID string) ([]Device, *Paging, error) {
	if groupID == "" {
		groupID = "-1"
	}
	q := url.Values{}
	if view != "" {
		q.Set("view", string(view))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	if pageID != "" {
		q.Set("pageId", pageID)
	}
	var out struct {
		Devices []Device `json:"devices"`
	}
	paging, err := c.Do(ctx, http.MethodGet, "/device-groups/"+groupID+"/devices/-", q, nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out.Devices, paging, nil
}

// AllDeviceGroupDevices walks every page of DeviceGroupDevices.
func (c *Client) AllDeviceGroupDevices(ctx context.Context, groupID string, view DeviceView) ([]Device, error) {
	var all []Device
	pageID := ""
	for {
		devices, paging, err := c.DeviceGroupDevices(ctx, groupID, view, 0, pageID)
		if err != nil {
			return nil, err
		}
		all = append(all, devices...)
		if paging == nil || paging.NextPageID == "" {
			return all, nil
		}
		pageID = paging.NextPageID
	}
}

// UpdateDeviceProperties patches device properties. props is a pass-through
// map of property name to value; the server owns the property schema.
func (c *Client) UpdateDeviceProperties(ctx context.Context, deviceID string, props map[string]any) error {
	if deviceID == "" {
		return fmt.Errorf("wug: device id is required")
	}
	if len(props) == 0 {
		return fmt.Errorf("wug: no properties given")
	}
	_, err := c.Do(ctx, http.MethodPut, "/devices/"+deviceID+"/properties", nil, props, nil)
	return err
}

// DeleteDevice removes the device from monitoring.
func (c *Client) DeleteDevice(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return fmt.Errorf("wug: device id is required")
	}
	_, err := c.Do(ctx, http.MethodDelete, "/devices/"+deviceID, nil, nil, nil)
	return err
}
