package server

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/app"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StateSource exposes the raw persisted state.
type StateSource interface {
	Snapshot() models.State
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	app    *app.Controller
	state  StateSource
	alpha  *alpha.Provider
	log    *slog.Logger
	router chi.Router
	pages  *template.Template

	metrics  *metrics.Manager
	gatherer prometheus.Gatherer
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records request metrics into m and serves g on /metrics.
func WithMetrics(m *metrics.Manager, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// New creates a new Server with all routes configured. The page itself is
// served once SetFrontend has been called.
func New(ctrl *app.Controller, state StateSource, alphaProvider *alpha.Provider, log *slog.Logger, opts ...Option) *Server {
	s := &Server{
		app:    ctrl,
		state:  state,
		alpha:  alphaProvider,
		log:    log,
		router: chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestID)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	if s.metrics != nil {
		s.router.Use(RequestMetrics(s.metrics))
	}

	s.router.Get("/", s.handleIndex)
	s.router.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Post("/weeks", s.handleAddWeek)
	s.router.Post("/weeks/{id}", s.handleSelectWeek)
	s.router.Post("/tabs/weight", s.action(s.app.ShowWeight))
	s.router.Post("/tabs/calendar", s.action(s.app.ShowCalendar))

	s.router.Post("/workouts/new", s.action(s.app.CreateWorkout))
	s.router.Post("/workouts/{id}/edit", s.handleEditWorkout)
	s.router.Post("/editor/{action}", s.handleEditor)

	s.router.Post("/weights", s.handleLogWeight)

	s.router.Route("/calendar", func(r chi.Router) {
		r.Post("/prev", s.action(s.app.PrevMonth))
		r.Post("/next", s.action(s.app.NextMonth))
		r.Post("/days/{date}", s.handleOpenDay)
		r.Post("/close", s.action(s.app.CloseDay))
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/view", s.handleView)
		r.Get("/state", s.handleState)
		r.Post("/import/alpha", s.handleAlphaImport)
	})
}

// SetFrontend parses the page templates and mounts the static assets from
// webFS, which must contain templates/ and static/.
func (s *Server) SetFrontend(webFS fs.FS) error {
	pages, err := template.New("").Funcs(funcs).ParseFS(webFS, "templates/*.html")
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}
	s.pages = pages

	static, err := fs.Sub(webFS, "static")
	if err != nil {
		return fmt.Errorf("opening static assets: %w", err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))
	return nil
}

// MountMCP serves an MCP transport under /mcp.
func (s *Server) MountMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
	s.router.Handle("/mcp/*", h)
}
