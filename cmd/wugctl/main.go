// wugctl is a command-line client for a WhatsUp Gold server: device and
// group listings, attribute and maintenance management, and report pulls
// rendered as HTML tables.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/whatsupgo/whatsupgo/internal/config"
	"github.com/whatsupgo/whatsupgo/report"
	"github.com/whatsupgo/whatsupgo/wug"
)

const usage = `Usage: wugctl [-config FILE] COMMAND [ARGS]

Commands:
  devices          list devices (optionally one group)
  device           show one device
  set-device       update device properties
  remove-device    delete a device
  groups           list device groups
  attributes       list device attributes
  set-attribute    create or update a device attribute
  rm-attribute     delete device attributes
  monitors         list the monitor library or a device's monitors
  maintenance      enable or disable maintenance mode
  report           pull a report and render it as an HTML table
  export-template  export a device as a template
  apply-template   create devices from a template file
`

func main() {
	configPath := flag.String("config", "wugctl.yaml", "path to configuration file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wugctl: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	client, err := wug.New(wug.Config{
		ServerURL:          cfg.Server.URL,
		Username:           cfg.Auth.Username,
		Password:           cfg.Auth.Password,
		Timeout:            cfg.Server.GetTimeout(),
		MaxRetries:         cfg.Retry.MaxRetries,
		InsecureSkipVerify: cfg.Server.InsecureSkipVerify,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "wugctl: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := client.Connect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "wugctl: connect: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("Connected", "server", cfg.Server.URL)

	app := &app{client: client, cfg: cfg, logger: logger}
	if err := app.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "wugctl: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	client *wug.Client
	cfg    *config.Config
	logger *slog.Logger
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "devices":
		return a.devices(ctx, args)
	case "device":
		return a.device(ctx, args)
	case "set-device":
		return a.setDevice(ctx, args)
	case "remove-device":
		return a.removeDevice(ctx, args)
	case "groups":
		return a.groups(ctx, args)
	case "attributes":
		return a.attributes(ctx, args)
	case "set-attribute":
		return a.setAttribute(ctx, args)
	case "rm-attribute":
		return a.rmAttribute(ctx, args)
	case "monitors":
		return a.monitors(ctx, args)
	case "maintenance":
		return a.maintenance(ctx, args)
	case "report":
		return a.report(ctx, args)
	case "export-template":
		return a.exportTemplate(ctx, args)
	case "apply-template":
		return a.applyTemplate(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) devices(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("devices", flag.ExitOnError)
	group := fs.String("group", "-1", "device group id, -1 is the whole network")
	view := fs.String("view", "overview", "view: card or overview")
	fs.Parse(args)

	devices, err := a.client.AllDeviceGroupDevices(ctx, *group, wug.DeviceView(*view))
	if err != nil {
		return err
	}
	return printJSON(devices)
}

func (a *app) device(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("device", flag.ExitOnError)
	view := fs.String("view", "overview", "view: card or overview")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: device [-view V] DEVICE_ID")
	}

	dev, err := a.client.Device(ctx, fs.Arg(0), wug.DeviceView(*view))
	if err != nil {
		return err
	}
	return printJSON(dev)
}

func (a *app) setDevice(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set-device", flag.ExitOnError)
	var props stringList
	fs.Var(&props, "prop", "property as name=value, repeatable")
	fs.Parse(args)
	if fs.NArg() != 1 || len(props) == 0 {
		return fmt.Errorf("usage: set-device -prop name=value [-prop ...] DEVICE_ID")
	}

	update := make(map[string]any, len(props))
	for _, p := range props {
		name, value, ok := strings.Cut(p, "=")
		if !ok {
			return fmt.Errorf("invalid property %q, want name=value", p)
		}
		update[name] = value
	}
	if err := a.client.UpdateDeviceProperties(ctx, fs.Arg(0), update); err != nil {
		return err
	}
	a.logger.Info("Device updated", "device", fs.Arg(0), "properties", len(update))
	return nil
}

func (a *app) removeDevice(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: remove-device DEVICE_ID")
	}
	if err := a.client.DeleteDevice(ctx, args[0]); err != nil {
		return err
	}
	a.logger.Info("Device removed", "device", args[0])
	return nil
}

func (a *app) groups(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("groups", flag.ExitOnError)
	search := fs.String("search", "", "filter groups by name")
	fs.Parse(args)

	groups, err := a.client.AllDeviceGroups(ctx, *search)
	if err != nil {
		return err
	}
	return printJSON(groups)
}

func (a *app) attributes(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("attributes", flag.ExitOnError)
	var names stringList
	fs.Var(&names, "name", "attribute name filter, repeatable")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: attributes [-name N] DEVICE_ID")
	}

	attrs, err := a.client.DeviceAttributes(ctx, fs.Arg(0), names...)
	if err != nil {
		return err
	}
	return printJSON(attrs)
}

func (a *app) setAttribute(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set-attribute", flag.ExitOnError)
	id := fs.String("id", "", "attribute id to update; empty creates a new attribute")
	name := fs.String("name", "", "attribute name (create)")
	value := fs.String("value", "", "attribute value")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: set-attribute [-id A | -name N] -value V DEVICE_ID")
	}

	var attr *wug.Attribute
	var err error
	if *id != "" {
		attr, err = a.client.UpdateDeviceAttribute(ctx, fs.Arg(0), *id, *value)
	} else {
		attr, err = a.client.CreateDeviceAttribute(ctx, fs.Arg(0), *name, *value)
	}
	if err != nil {
		return err
	}
	return printJSON(attr)
}

func (a *app) rmAttribute(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rm-attribute", flag.ExitOnError)
	id := fs.String("id", "", "attribute id to delete")
	var names stringList
	fs.Var(&names, "name", "attribute name filter for bulk delete, repeatable")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: rm-attribute [-id A | -name N] DEVICE_ID")
	}

	if *id != "" {
		if err := a.client.DeleteDeviceAttribute(ctx, fs.Arg(0), *id); err != nil {
			return err
		}
		a.logger.Info("Attribute removed", "device", fs.Arg(0), "attribute", *id)
		return nil
	}
	removed, err := a.client.DeleteDeviceAttributes(ctx, fs.Arg(0), names...)
	if err != nil {
		return err
	}
	a.logger.Info("Attributes removed", "device", fs.Arg(0), "count", removed)
	return nil
}

func (a *app) monitors(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("monitors", flag.ExitOnError)
	device := fs.String("device", "", "list monitors assigned to this device instead of the library")
	monitorType := fs.String("type", "", "library filter: active, performance or passive")
	search := fs.String("search", "", "library name filter")
	fs.Parse(args)

	var monitors []wug.Monitor
	var err error
	if *device != "" {
		monitors, err = a.client.DeviceMonitors(ctx, *device)
	} else {
		monitors, err = a.client.Monitors(ctx, *monitorType, *search)
	}
	if err != nil {
		return err
	}
	return printJSON(monitors)
}

func (a *app) maintenance(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("maintenance", flag.ExitOnError)
	enable := fs.Bool("enable", false, "enable maintenance mode")
	disable := fs.Bool("disable", false, "disable maintenance mode")
	end := fs.String("end", "", "end time, RFC 3339 (optional)")
	reason := fs.String("reason", "", "maintenance reason")
	fs.Parse(args)
	if fs.NArg() != 1 || *enable == *disable {
		return fmt.Errorf("usage: maintenance -enable|-disable [-end T] [-reason R] DEVICE_ID")
	}

	req := wug.MaintenanceRequest{Enabled: *enable, Reason: *reason}
	if *end != "" {
		t, err := time.Parse(time.RFC3339, *end)
		if err != nil {
			return fmt.Errorf("invalid -end time: %w", err)
		}
		req.EndUTC = &t
	}
	cfg, err := a.client.SetMaintenance(ctx, fs.Arg(0), req)
	if err != nil {
		return err
	}
	return printJSON(cfg)
}

func (a *app) report(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	device := fs.String("device", "", "device id")
	group := fs.String("group", "", "device group id")
	category := fs.String("category", string(wug.ReportPingAvailability), "report category")
	reportRange := fs.String("range", "", "time range: lastPolled, today, lastWeek or custom")
	out := fs.String("out", "", "output HTML file; default derived from the category")
	title := fs.String("title", "", "report title")
	fs.Parse(args)
	if (*device == "") == (*group == "") {
		return fmt.Errorf("usage: report -device ID | -group ID [-category C] [-out F]")
	}

	query := wug.ReportQuery{Range: *reportRange}
	var rows []json.RawMessage
	var err error
	if *device != "" {
		rows, err = a.client.AllDeviceReport(ctx, *device, wug.ReportCategory(*category), query)
	} else {
		rows, err = a.client.AllGroupReport(ctx, *group, wug.ReportCategory(*category), query)
	}
	if err != nil {
		return err
	}

	table, err := report.Infer(rows)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = filepath.Join(a.cfg.Output.Directory, *category+".html")
	}
	heading := *title
	if heading == "" {
		heading = a.cfg.Output.ReportTitle
	}
	opts := report.Options{Title: heading, GeneratedAt: time.Now()}
	if err := table.WriteHTMLFile(path, opts); err != nil {
		return err
	}
	a.logger.Info("Report written", "path", path, "rows", len(table.Rows))
	return nil
}

func (a *app) exportTemplate(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: export-template DEVICE_ID")
	}
	tpl, err := a.client.ExportDeviceTemplate(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(tpl)
}

func (a *app) applyTemplate(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: apply-template TEMPLATE_FILE")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	// The file may hold one template object or an array of them.
	var templates []wug.DeviceTemplate
	if err := json.Unmarshal(data, &templates); err != nil {
		var single wug.DeviceTemplate
		if err := json.Unmarshal(data, &single); err != nil {
			return fmt.Errorf("parse template file: %w", err)
		}
		templates = []wug.DeviceTemplate{single}
	}

	result, err := a.client.ApplyDeviceTemplates(ctx, templates)
	if err != nil {
		return err
	}
	return printJSON(result)
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
