// Package store holds the simulator's seed data in memory.
package store

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/whatsupgo/whatsupgo/wug"
)

// Device is a simulated device with its per-device state.
type Device struct {
	wug.Device
	Polling    wug.PollingConfig
	Attributes map[string]*wug.Attribute // keyed by attribute id
	Monitors   []string                  // assigned monitor ids
	GroupID    string
}

// Store holds all simulator data in memory.
type Store struct {
	mu         sync.RWMutex
	devices    map[string]*Device
	groups     map[string]*wug.DeviceGroup
	monitors   map[string]*wug.Monitor
	nextDevID  int
	nextAttrID int
}

// New creates a store with seed data: two groups, three devices with
// attributes, and a small monitor library.
func New() *Store {
	s := &Store{
		devices:    make(map[string]*Device),
		groups:     make(map[string]*wug.DeviceGroup),
		monitors:   make(map[string]*wug.Monitor),
		nextDevID:  4,
		nextAttrID: 100,
	}

	s.groups["-1"] = &wug.DeviceGroup{ID: "-1", Name: "My Network", Description: "Root group"}
	s.groups["2"] = &wug.DeviceGroup{ID: "2", ParentID: "-1", Name: "Core Routers", Description: "Backbone devices"}

	seed := []*Device{
		{
			Device: wug.Device{
				ID: "1", Name: "edge-rtr-01", HostName: "edge-rtr-01.example.com",
				NetworkAddress: "192.168.1.1", Status: "Up", OS: "IOS XE",
				Brand: "Cisco", Role: "Router", TotalActiveMonitors: 3,
			},
			Polling: wug.PollingConfig{IntervalSeconds: 60},
			GroupID: "2",
		},
		{
			Device: wug.Device{
				ID: "2", Name: "core-sw-01", HostName: "core-sw-01.example.com",
				NetworkAddress: "192.168.1.2", Status: "Up", OS: "NX-OS",
				Brand: "Cisco", Role: "Switch", TotalActiveMonitors: 2,
			},
			Polling: wug.PollingConfig{IntervalSeconds: 60},
			GroupID: "2",
		},
		{
			Device: wug.Device{
				ID: "3", Name: "app-srv-01", HostName: "app-srv-01.example.com",
				NetworkAddress: "192.168.10.5", Status: "Down", OS: "Windows Server 2022",
				Brand: "Dell", Role: "Server", TotalActiveMonitors: 4, DownActiveMonitors: 1,
			},
			Polling: wug.PollingConfig{IntervalSeconds: 120},
			GroupID: "-1",
		},
	}
	for _, d := range seed {
		d.Attributes = make(map[string]*wug.Attribute)
		s.devices[d.ID] = d
	}
	s.setAttribute("1", "Location", "DC-East rack 4")
	s.setAttribute("1", "Owner", "netops")
	s.setAttribute("3", "Owner", "platform")

	s.monitors["10"] = &wug.Monitor{ID: "10", Name: "Ping", Type: "active", Enabled: true}
	s.monitors["11"] = &wug.Monitor{ID: "11", Name: "HTTP", Type: "active", Enabled: true}
	s.monitors["12"] = &wug.Monitor{ID: "12", Name: "CPU Utilization", Type: "performance", Enabled: true}
	s.devices["1"].Monitors = []string{"10", "12"}
	s.devices["2"].Monitors = []string{"10"}
	s.devices["3"].Monitors = []string{"10", "11"}

	return s
}

func (s *Store) setAttribute(deviceID, name, value string) {
	id := strconv.Itoa(s.nextAttrID)
	s.nextAttrID++
	s.devices[deviceID].Attributes[id] = &wug.Attribute{
		ID: id, DeviceID: deviceID, Name: name, Value: value,
	}
}

// snapshot copies a device so callers can encode it after the lock is
// released. Attributes and monitors stay behind their own accessors.
func (d *Device) snapshot() *Device {
	if d == nil {
		return nil
	}
	cp := *d
	cp.Monitors = append([]string(nil), d.Monitors...)
	return &cp
}

// Device returns a snapshot of a device, or nil.
func (s *Store) Device(id string) *Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.devices[id].snapshot()
}

// GroupDevices lists devices in a group, root group "-1" meaning all,
// sorted by id for stable paging.
func (s *Store) GroupDevices(groupID string) []*Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Device
	for _, d := range s.devices {
		if groupID == "-1" || d.GroupID == groupID {
			out = append(out, d.snapshot())
		}
	}
	sort.Slice(out, func(i, j int) bool { return numericLess(out[i].ID, out[j].ID) })
	return out
}

// Group returns a group by id, or nil.
func (s *Store) Group(id string) *wug.DeviceGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groups[id]
}

// Groups lists groups matching the search string, sorted by id.
func (s *Store) Groups(search string) []*wug.DeviceGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*wug.DeviceGroup
	for _, g := range s.groups {
		if search == "" || strings.Contains(strings.ToLower(g.Name), strings.ToLower(search)) {
			cp := *g
			cp.DeviceCount = 0
			for _, d := range s.devices {
				if g.ID == "-1" || d.GroupID == g.ID {
					cp.DeviceCount++
				}
			}
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return numericLess(out[i].ID, out[j].ID) })
	return out
}

// CreateDevice adds a device built from a template and returns its id.
func (s *Store) CreateDevice(tpl wug.DeviceTemplate) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strconv.Itoa(s.nextDevID)
	s.nextDevID++

	dev := &Device{
		Device: wug.Device{
			ID: id, Name: tpl.DisplayName, Status: "Unknown",
			Role: tpl.Role, Notes: tpl.Notes,
		},
		Polling:    wug.PollingConfig{IntervalSeconds: 60},
		Attributes: make(map[string]*wug.Attribute),
		GroupID:    "-1",
	}
	if tpl.PollIntervalSec > 0 {
		dev.Polling.IntervalSeconds = tpl.PollIntervalSec
	}
	for _, iface := range tpl.Interfaces {
		if iface.IsDefault || dev.NetworkAddress == "" {
			dev.NetworkAddress = iface.NetworkAddress
			dev.HostName = iface.HostName
		}
	}
	s.devices[id] = dev
	return id
}

// DeleteDevice removes a device. Returns false when the id is unknown.
func (s *Store) DeleteDevice(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.devices[id]; !ok {
		return false
	}
	delete(s.devices, id)
	return true
}

// UpdateDeviceProperties applies the recognized keys of a property map to a
// device. Unknown keys are accepted and ignored, matching the pass-through
// contract of the endpoint.
func (s *Store) UpdateDeviceProperties(id string, props map[string]any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok {
		return false
	}
	for k, v := range props {
		sv, _ := v.(string)
		switch k {
		case "name":
			d.Name = sv
		case "hostName":
			d.HostName = sv
		case "networkAddress":
			d.NetworkAddress = sv
		case "notes":
			d.Notes = sv
		case "role":
			d.Role = sv
		}
	}
	return true
}

// Attributes lists a device's attributes, filtered by name substrings,
// sorted by attribute id.
func (s *Store) Attributes(deviceID string, names []string) ([]*wug.Attribute, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devices[deviceID]
	if !ok {
		return nil, false
	}
	var out []*wug.Attribute
	for _, a := range d.Attributes {
		if matchesAny(a.Name, names) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return numericLess(out[i].ID, out[j].ID) })
	return out, true
}

// CreateAttribute adds an attribute to a device.
func (s *Store) CreateAttribute(deviceID, name, value string) (*wug.Attribute, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[deviceID]
	if !ok {
		return nil, false
	}
	id := strconv.Itoa(s.nextAttrID)
	s.nextAttrID++
	attr := &wug.Attribute{ID: id, DeviceID: deviceID, Name: name, Value: value}
	d.Attributes[id] = attr
	cp := *attr
	return &cp, true
}

// UpdateAttribute replaces an attribute value.
func (s *Store) UpdateAttribute(deviceID, attrID, value string) (*wug.Attribute, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[deviceID]
	if !ok {
		return nil, false
	}
	attr, ok := d.Attributes[attrID]
	if !ok {
		return nil, false
	}
	attr.Value = value
	cp := *attr
	return &cp, true
}

// DeleteAttribute removes one attribute.
func (s *Store) DeleteAttribute(deviceID, attrID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[deviceID]
	if !ok {
		return false
	}
	if _, ok := d.Attributes[attrID]; !ok {
		return false
	}
	delete(d.Attributes, attrID)
	return true
}

// DeleteAttributes removes attributes matching the name filter and reports
// how many were removed.
func (s *Store) DeleteAttributes(deviceID string, names []string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[deviceID]
	if !ok {
		return 0, false
	}
	removed := 0
	for id, a := range d.Attributes {
		if matchesAny(a.Name, names) {
			delete(d.Attributes, id)
			removed++
		}
	}
	return removed, true
}

// Monitors lists the monitor library filtered by type and name search.
func (s *Store) Monitors(monitorType, search string) []*wug.Monitor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*wug.Monitor
	for _, m := range s.monitors {
		if monitorType != "" && m.Type != monitorType {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(m.Name), strings.ToLower(search)) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return numericLess(out[i].ID, out[j].ID) })
	return out
}

// Monitor returns a library monitor by id, or nil.
func (s *Store) Monitor(id string) *wug.Monitor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.monitors[id]
}

// DeviceMonitors lists monitors assigned to a device.
func (s *Store) DeviceMonitors(deviceID string) ([]*wug.Monitor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devices[deviceID]
	if !ok {
		return nil, false
	}
	out := make([]*wug.Monitor, 0, len(d.Monitors))
	for _, id := range d.Monitors {
		if m := s.monitors[id]; m != nil {
			out = append(out, m)
		}
	}
	return out, true
}

// AssignMonitor assigns a library monitor to a device.
func (s *Store) AssignMonitor(deviceID, monitorID string) (*wug.Monitor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[deviceID]
	if !ok {
		return nil, false
	}
	m, ok := s.monitors[monitorID]
	if !ok {
		return nil, false
	}
	for _, id := range d.Monitors {
		if id == monitorID {
			return m, true
		}
	}
	d.Monitors = append(d.Monitors, monitorID)
	d.TotalActiveMonitors++
	return m, true
}

// SetMaintenance updates a device's maintenance state and mirrors it into
// the device status.
func (s *Store) SetMaintenance(deviceID string, enabled bool, endUTC *time.Time, reason string) (*wug.PollingConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[deviceID]
	if !ok {
		return nil, false
	}
	d.Polling.MaintenanceEnabled = enabled
	d.Polling.MaintenanceEndUTC = endUTC
	d.Polling.MaintenanceReason = reason
	if enabled {
		d.Status = "Maintenance"
	} else if d.Status == "Maintenance" {
		d.Status = "Up"
	}
	cfg := d.Polling
	return &cfg, true
}

// PollingConfig returns a device's polling state.
func (s *Store) PollingConfig(deviceID string) (*wug.PollingConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devices[deviceID]
	if !ok {
		return nil, false
	}
	cfg := d.Polling
	return &cfg, true
}

func matchesAny(name string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if strings.Contains(strings.ToLower(name), strings.ToLower(f)) {
			return true
		}
	}
	return false
}

// numericLess orders ids numerically when both parse, lexically otherwise.
func numericLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}
