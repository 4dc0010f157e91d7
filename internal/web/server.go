// Package web is the HTTP surface of the frontend: server-rendered
// pages, the JSON proxy under /api/, and the live store channel.
package web

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scribeapp/scribe-web/internal/config"
	"github.com/scribeapp/scribe-web/pkg/authmw"
	"github.com/scribeapp/scribe-web/pkg/middleware"
	"github.com/scribeapp/scribe-web/pkg/session"
	"github.com/scribeapp/scribe-web/pkg/upload"
	"github.com/scribeapp/scribe-web/pkg/upstream"
)

// Server wires the page handlers, the proxy, and the middleware chain.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	api     *upstream.Client
	cookies *session.CookieStore
	guard   *authmw.Guard
	uploads upload.Store
	views   *views
	metrics *metrics
	trusted *middleware.TrustedProxies
	router  chi.Router
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithUploadStore sets the avatar storage backend. Without one the
// upload endpoint answers 503.
func WithUploadStore(store upload.Store) ServerOption {
	return func(s *Server) {
		s.uploads = store
	}
}

// WithMetricsRegistry sets the Prometheus registry (default registry
// otherwise).
func WithMetricsRegistry(reg prometheus.Registerer) ServerOption {
	return func(s *Server) {
		s.metrics = newMetrics(s.cfg.MetricsNamespace, reg)
	}
}

// NewServer builds the full handler tree.
func NewServer(cfg *config.Config, api *upstream.Client, opts ...ServerOption) (*Server, error) {
	views, err := parseViews()
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}

	s := &Server{
		cfg:    cfg,
		logger: slog.Default().With("component", "web"),
		api:    api,
		cookies: session.NewCookieStore(
			session.WithCookieName(cfg.Cookie.Name),
			session.WithSecure(!cfg.Cookie.Insecure),
		),
		guard: authmw.New(
			authmw.WithPublicPaths("/", "/login", "/register", "/healthz", "/api/users/register"),
		),
		views: views,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.trusted = middleware.NewTrustedProxies(cfg.TrustedProxies, s.logger)
	if s.metrics == nil {
		s.metrics = newMetrics(cfg.MetricsNamespace, prometheus.DefaultRegisterer)
	}

	s.router = s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	hydrator := session.NewHydrator(s.cookies, s.api, s.logger)

	r := chi.NewRouter()
	r.Use(s.observe)
	r.Use(middleware.Tracing(
		middleware.WithTracerName("scribe-web"),
		middleware.WithTracingFilter(func(r *http.Request) bool {
			return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
		}),
	))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Handle("/static/*", s.staticHandler())

	r.Group(func(r chi.Router) {
		r.Use(hydrator.Middleware())
		r.Use(s.guard.Middleware())

		// Pages
		r.Get("/", s.handleHome)
		r.Get("/login", s.handleLoginForm)
		r.Post("/login", s.handleLogin)
		r.Get("/register", s.handleRegisterForm)
		r.Post("/register", s.handleRegister)
		r.Post("/logout", s.handleLogout)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/account", s.handleAccount)
		r.Get("/live", s.handleLive)

		// JSON proxy
		r.Route("/api", func(r chi.Router) {
			r.Post("/notes/add", s.proxyNoteAdd)
			r.Patch("/notes/update/{id}", s.proxyNoteUpdate)
			r.Delete("/notes/delete/{id}", s.proxyNoteDelete)
			r.Get("/notes/all/{id}", s.proxyNotesAll)

			r.Post("/folders/add", s.proxyFolderAdd)
			r.Delete("/folders/delete/{id}", s.proxyFolderDelete)
			r.Get("/folders/all/{id}", s.proxyFoldersAll)

			r.Post("/users/register", s.proxyUserRegister)
			r.Patch("/users/update/{id}", s.proxyUserUpdate)
			r.Patch("/users/password/{id}", s.proxyUserPassword)
			r.Post("/users/pfp/upload", s.handlePfpUpload)
		})
	})

	return r
}

func (s *Server) handlePfpUpload(w http.ResponseWriter, r *http.Request) {
	if s.uploads == nil {
		writeJSON(w, http.StatusServiceUnavailable, envelope{"error": "uploads not configured"})
		return
	}
	upload.Handler(s.uploads, &upload.Config{MaxFileSize: s.cfg.Upload.MaxFileSize}).ServeHTTP(w, r)
}
