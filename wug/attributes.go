package wug

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// DeviceAttributes lists the attributes of a device. names, when non-empty,
// filters server-side to attributes whose name contains any of the values.
func (c *Client) DeviceAttributes(ctx context.Context, deviceID string, names ...string) ([]Attribute, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("wug: device id is required")
	}
	q := url.Values{}
	for _, n := range names {
		q.Add("names", n)
	}
	var out struct {
		Attributes []Attribute `json:"attributes"`
	}
	if _, err := c.Do(ctx, http.MethodGet, "/devices/"+deviceID+"/attributes/-", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Attributes, nil
}

// CreateDeviceAttribute attaches a new name/value attribute to a device.
// The request is never retried: each replay would create another attribute.
func (c *Client) CreateDeviceAttribute(ctx context.Context, deviceID, name, value string) (*Attribute, error) {
	if deviceID == "" || name == "" {
		return nil, fmt.Errorf("wug: device id and attribute name are required")
	}
	q := url.Values{"name": {name}, "value": {value}}
	var attr Attribute
	if _, err := c.do(ctx, http.MethodPut, "/devices/"+deviceID+"/attributes/-", q, nil, &attr, false); err != nil {
		return nil, err
	}
	return &attr, nil
}

// UpdateDeviceAttribute replaces the value of an existing attribute.
func (c *Client) UpdateDeviceAttribute(ctx context.Context, deviceID, attributeID, value string) (*Attribute, error) {
	if deviceID == "" || attributeID == "" {
		return nil, fmt.Errorf("wug: device id and attribute id are required")
	}
	q := url.Values{"value": {value}}
	var attr Attribute
	if _, err := c.Do(ctx, http.MethodPut, "/devices/"+deviceID+"/attributes/"+attributeID, q, nil, &attr); err != nil {
		return nil, err
	}
	return &attr, nil
}

// DeleteDeviceAttribute removes a single attribute.
func (c *Client) DeleteDeviceAttribute(ctx context.Context, deviceID, attributeID string) error {
	if deviceID == "" || attributeID == "" {
		return fmt.Errorf("wug: device id and attribute id are required")
	}
	_, err := c.Do(ctx, http.MethodDelete, "/devices/"+deviceID+"/attributes/"+attributeID, nil, nil, nil)
	return err
}

// DeleteDeviceAttributes removes every attribute matching the name filter,
// or all attributes of the device when names is empty. Returns the number
// of attributes removed.
func (c *Client) DeleteDeviceAttributes(ctx context.Context, deviceID string, names ...string) (int, error) {
	if deviceID == "" {
		return 0, fmt.Errorf("wug: device id is required")
	}
	q := url.Values{}
	for _, n := range names {
		q.Add("names", n)
	}
	var out struct {
		Removed int `json:"removed"`
	}
	if _, err := c.Do(ctx, http.MethodDelete, "/devices/"+deviceID+"/attributes/-", q, nil, &out); err != nil {
		return 0, err
	}
	return out.Removed, nil
}
