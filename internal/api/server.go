// Package api exposes the coordinator's weather data over HTTP: the
// last-known-good snapshot, an on-demand refresh trigger, and the runtime
// credential/plan update surface. It enforces the cross-cutting concerns
// (panic recovery, request IDs, timeouts, structured request logging) before
// requests reach the handlers.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"meteopoll/internal/config"
	"meteopoll/internal/coordinator"
	"meteopoll/internal/types"
)

// defaultRequestTimeout is the soft deadline applied to request contexts
// when no explicit timeout is configured.
const defaultRequestTimeout = 29 * time.Second

// WeatherSource is the coordinator surface the API serves from.
type WeatherSource interface {
	Latest() (*types.WeatherData, bool)
	Refresh(ctx context.Context) (*types.WeatherData, error)
	Status() coordinator.Status
	UpdateCredentials(username, password string) bool
	UpdatePlan(plan types.PlanTier, optional []string) bool
}

// CredentialProber validates candidate credentials against the upstream
// before they are applied.
type CredentialProber interface {
	Probe(ctx context.Context, creds types.Credentials, now time.Time, loc *time.Location) error
}

// Server encapsulates the API dependencies, allowing injection during
// testing.
type Server struct {
	source  WeatherSource
	prober  CredentialProber
	loc     *time.Location
	build   config.BuildInfo
	timeout time.Duration
	logger  *slog.Logger
	router  *chi.Mux
}

// ServerConfig holds the construction parameters for a Server.
type ServerConfig struct {
	Source WeatherSource
	Prober CredentialProber
	// Location is the installation time zone, used by the credential probe.
	Location       *time.Location
	Build          config.BuildInfo
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewServer creates the Server and mounts its routes.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("weather source must not be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	s := &Server{
		source:  cfg.Source,
		prober:  cfg.Prober,
		loc:     loc,
		build:   cfg.Build,
		timeout: timeout,
		logger:  logger,
		router:  chi.NewRouter(),
	}
	s.mountRoutes()
	return s, nil
}

// Handler returns the http.Handler for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// mountRoutes registers the global middleware chain and all endpoints.
// Middleware order: recoverer outermost, then timeout, request ID, logging.
func (s *Server) mountRoutes() {
	s.router.Use(Recoverer(s.logger))
	s.router.Use(ContextTimeoutMiddleware(s.timeout))
	s.router.Use(RequestIDMiddleware)
	s.router.Use(RequestLogger(s.logger))

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/weather", s.handleWeather)
		r.Get("/weather/current", s.handleWeatherCurrent)
		r.Get("/weather/hourly", s.handleWeatherHourly)
		r.Get("/weather/daily", s.handleWeatherDaily)
		r.Post("/refresh", s.handleRefresh)
		r.Put("/config/credentials", s.handleUpdateCredentials)
		r.Put("/config/plan", s.handleUpdatePlan)
	})
}
