// Package gateway serves the ProjectHub API to a browser frontend on the
// local machine. Browser calls are forwarded through the shared client, so
// the session, token rotation and 401 handling are the same as for the CLI.
package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/straye-as/projecthub/internal/api"
	"github.com/straye-as/projecthub/internal/apiclient"
	"github.com/straye-as/projecthub/internal/config"
	"github.com/straye-as/projecthub/internal/metrics"
	"go.uber.org/zap"
)

const (
	// LoginPath is where the browser is sent when its session ends
	LoginPath = "/login"
	// SessionPath describes the current session
	SessionPath = "/session"
)

// Server holds the gateway's dependencies
type Server struct {
	cfg         *config.Config
	logger      *zap.Logger
	client      *apiclient.Client
	services    *api.Services
	rateLimiter *RateLimiter
	gatherer    prometheus.Gatherer
	metrics     *metrics.GatewayMetrics
}

// NewServer creates a gateway. gatherer backs /metrics and m records served
// requests; either may be nil.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	client *apiclient.Client,
	gatherer prometheus.Gatherer,
	m *metrics.GatewayMetrics,
) *Server {
	return &Server{
		cfg:         cfg,
		logger:      logger.Named("gateway"),
		client:      client,
		services:    api.New(client),
		rateLimiter: NewRateLimiter(&cfg.RateLimit, logger),
		gatherer:    gatherer,
		metrics:     m,
	}
}

// Routes builds the HTTP handler
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(Recovery(s.logger))
	r.Use(Logging(s.logger, s.metrics))
	r.Use(SecurityHeaders(&s.cfg.Security))
	r.Use(CORS(&s.cfg.CORS, s.cfg.App.Environment, s.logger))
	r.Use(SameOrigin(&s.cfg.CORS, s.logger))
	r.Use(s.rateLimiter.LimitByIP)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Get(LoginPath, s.handleLoginPage)
	r.Post(LoginPath, s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Get(SessionPath, s.handleSession)

	r.HandleFunc("/api/*", s.handleProxy)

	return r
}

// NewHTTPServer wraps Routes with the configured listen address and timeouts
func (s *Server) NewHTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Console.Addr(),
		Handler:      s.Routes(),
		ReadTimeout:  s.cfg.Console.ReadTimeoutDuration(),
		WriteTimeout: s.cfg.Console.WriteTimeoutDuration(),
	}
}
