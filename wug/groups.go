package wug

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// DeviceGroups lists one page of device groups, optionally filtered by a
// case-insensitive name search.
func (c *Client) DeviceGroups(ctx context.Context, search string, limit int, pageID string) ([]DeviceGroup, *Paging, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	if pageID != "" {
		q.Set("pageId", pageID)
	}
	var out struct {
		Groups []DeviceGroup `json:"groups"`
	}
	paging, err := c.Do(ctx, http.MethodGet, "/device-groups/-", q, nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out.Groups, paging, nil
}

// AllDeviceGroups walks every page of DeviceGroups.
func (c *Client) AllDeviceGroups(ctx context.Context, search string) ([]DeviceGroup, error) {
	var all []DeviceGroup
	pageID := ""
	for {
		groups, paging, err := c.DeviceGroups(ctx, search, 0, pageID)
		if err != nil {
			return nil, err
		}
		all = append(all, groups...)
		if paging == nil || paging.NextPageID == "" {
			return all, nil
		}
		pageID = paging.NextPageID
	}
}

// DeviceGroup fetches a single group.
func (c *Client) DeviceGroup(ctx context.Context, groupID string) (*DeviceGroup, error) {
	if groupID == "" {
		return nil, fmt.Errorf("wug: group id is required")
	}
	var group DeviceGroup
	if _, err := c.Do(ctx, http.MethodGet, "/device-groups/"+groupID, nil, nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}
