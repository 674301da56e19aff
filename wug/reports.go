package wug

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

func (q ReportQuery) values() url.Values {
	v := url.Values{}
	if q.Range != "" {
		v.Set("range", q.Range)
	}
	if q.StartUTC != nil {
		v.Set("rangeStartUtc", q.StartUTC.UTC().Format(time.RFC3339))
	}
	if q.EndUTC != nil {
		v.Set("rangeEndUtc", q.EndUTC.UTC().Format(time.RFC3339))
	}
	if q.Granularity != "" {
		v.Set("granularity", q.Granularity)
	}
	if q.Limit > 0 {
		v.Set("limit", fmt.Sprint(q.Limit))
	}
	if q.PageID != "" {
		v.Set("pageId", q.PageID)
	}
	return v
}

// DeviceReport fetches one page of a per-device report. Rows pass through
// as raw JSON, ready for the HTML renderer.
func (c *Client) DeviceReport(ctx context.Context, deviceID string, category ReportCategory, query ReportQuery) (*ReportPage, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("wug: device id is required")
	}
	return c.report(ctx, "/devices/"+deviceID+"/reports/"+string(category), query)
}

// GroupReport fetches one page of a report aggregated over every device in
// a group.
func (c *Client) GroupReport(ctx context.Context, groupID string, category ReportCategory, query ReportQuery) (*ReportPage, error) {
	if groupID == "" {
		return nil, fmt.Errorf("wug: group id is required")
	}
	return c.report(ctx, "/device-groups/"+groupID+"/devices/reports/"+string(category), query)
}

func (c *Client) report(ctx context.Context, path string, query ReportQuery) (*ReportPage, error) {
	var rows []json.RawMessage
	paging, err := c.Do(ctx, http.MethodGet, path, query.values(), nil, &rows)
	if err != nil {
		return nil, err
	}
	page := &ReportPage{Rows: rows}
	if paging != nil {
		page.Paging = *paging
	}
	return page, nil
}

// AllDeviceReport walks every page of DeviceReport.
func (c *Client) AllDeviceReport(ctx context.Context, deviceID string, category ReportCategory, query ReportQuery) ([]json.RawMessage, error) {
	fetch := func(q ReportQuery) (*ReportPage, error) {
		return c.DeviceReport(ctx, deviceID, category, q)
	}
	return allReportPages(query, fetch)
}

// AllGroupReport walks every page of GroupReport.
func (c *Client) AllGroupReport(ctx context.Context, groupID string, category ReportCategory, query ReportQuery) ([]json.RawMessage, error) {
	fetch := func(q ReportQuery) (*ReportPage, error) {
		return c.GroupReport(ctx, groupID, category, q)
	}
	return allReportPages(query, fetch)
}

func allReportPages(query ReportQuery, fetch func(ReportQuery) (*ReportPage, error)) ([]json.RawMessage, error) {
	var rows []json.RawMessage
	for {
		page, err := fetch(query)
		if err != nil {
			return nil, err
		}
		rows = append(rows, page.Rows...)
		if page.Paging.NextPageID == "" {
			return rows, nil
		}
		query.PageID = page.Paging.NextPageID
	}
}
