// Package mockserver is an in-memory WhatsUp Gold API simulator. It backs
// the client test suite and the wugsim binary, covering every endpoint the
// wug package calls: token grants, devices, groups, attributes, monitors,
// polling config and reports.
package mockserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/whatsupgo/whatsupgo/internal/mockserver/store"
)

// Options configures the simulator. The zero value is completed by
// defaults suitable for tests.
type Options struct {
	Username    string        // default "admin"
	Password    string        // default "secret"
	JWTSecret   string        // default is a fixed test secret
	TokenExpiry time.Duration // default 15m
	Logger      *slog.Logger  // nil disables request logging
}

// Server is the simulator: a chi router over an in-memory store.
type Server struct {
	router *chi.Mux
	store  *store.Store
	auth   *authService
}

// New creates and wires the simulator.
func New(opts Options) (*Server, error) {
	if opts.Username == "" {
		opts.Username = "admin"
	}
	if opts.Password == "" {
		opts.Password = "secret"
	}
	if opts.JWTSecret == "" {
		opts.JWTSecret = "whatsup-sim-secret-not-for-production!"
	}
	if opts.TokenExpiry == 0 {
		opts.TokenExpiry = 15 * time.Minute
	}

	auth, err := newAuthService(opts.Username, opts.Password, opts.JWTSecret, opts.TokenExpiry)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		store:  store.New(),
		auth:   auth,
	}

	r := s.router
	r.Use(requestID)
	if opts.Logger != nil {
		r.Use(requestLogger(opts.Logger))
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	devices := &deviceHandler{store: s.store}
	groups := &groupHandler{store: s.store}
	attributes := &attributeHandler{store: s.store}
	monitors := &monitorHandler{store: s.store}
	polling := &pollingHandler{store: s.store}
	reports := &reportHandler{store: s.store}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondData(w, http.StatusOK, nil, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/token", auth.Token)

		// Everything below requires a bearer token.
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Route("/devices", func(r chi.Router) {
				r.Patch("/-/config/template", devices.ApplyTemplates)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", devices.GetDevice)
					r.Put("/properties", devices.UpdateProperties)
					r.Delete("/", devices.DeleteDevice)
					r.Get("/config/template", devices.ExportTemplate)
					r.Get("/config/polling", polling.GetPolling)
					r.Patch("/config/polling", polling.SetMaintenance)

					r.Get("/attributes/-", attributes.ListAttributes)
					r.Put("/attributes/-", attributes.CreateAttribute)
					r.Delete("/attributes/-", attributes.DeleteAttributes)
					r.Put("/attributes/{attributeId}", attributes.UpdateAttribute)
					r.Delete("/attributes/{attributeId}", attributes.DeleteAttribute)

					r.Get("/monitors/-", monitors.ListDeviceMonitors)
					r.Post("/monitors/-", monitors.AssignMonitor)

					r.Get("/reports/{category}", reports.DeviceReport)
				})
			})

			r.Get("/monitors/-", monitors.ListMonitors)

			r.Route("/device-groups", func(r chi.Router) {
				r.Get("/-", groups.ListGroups)
				r.Get("/{groupId}", groups.GetGroup)
				r.Get("/{groupId}/devices/-", devices.ListGroupDevices)
				r.Get("/{groupId}/devices/reports/{category}", reports.GroupReport)
			})
		})
	})

	return s, nil
}

// Router returns the chi router, for httptest servers.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Store exposes the backing store to tests that need to inspect state.
func (s *Server) Store() *store.Store {
	return s.store
}

// Start serves on addr until the listener fails.
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.router)
}
