package wug

import (
	"context"
	"fmt"
	"net/http"
)

// ExportDeviceTemplate exports a device as a template suitable for
// ApplyDeviceTemplates.
func (c *Client) ExportDeviceTemplate(ctx context.Context, deviceID string) (*DeviceTemplate, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("wug: device id is required")
	}
	var tpl DeviceTemplate
	if _, err := c.Do(ctx, http.MethodGet, "/devices/"+deviceID+"/config/template", nil, nil, &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// ApplyDeviceTemplates creates devices from templates. Templates are
// validated locally before anything is sent so a malformed batch fails
// whole instead of half-applying.
func (c *Client) ApplyDeviceTemplates(ctx context.Context, templates []DeviceTemplate) (*TemplateResult, error) {
	if len(templates) == 0 {
		return nil, fmt.Errorf("wug: no templates given")
	}
	for i, tpl := range templates {
		if err := validate.Struct(tpl); err != nil {
			return nil, fmt.Errorf("template %d (%q): %w", i, tpl.DisplayName, err)
		}
	}
	body := map[string]any{"templates": templates}
	var result TemplateResult
	if _, err := c.Do(ctx, http.MethodPatch, "/devices/-/config/template", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
