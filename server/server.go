// Package server exposes the report gateway over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gaurav-prasanna/reportgate/core"
	"github.com/gaurav-prasanna/reportgate/core/cache"
	"github.com/gaurav-prasanna/reportgate/logger"
)

// Version is reported by the test endpoint.
var Version = "dev"

const (
	defaultAPIPrefix    = "/api/report"
	defaultMaxBodyBytes = 32 << 20
)

// Server handles report generation and retrieval requests.
type Server struct {
	normalizer core.Normalizer
	gateway    core.Gateway
	cache      *cache.Cache
	log        logger.Logger

	metrics  *Metrics
	gatherer prometheus.Gatherer
	prefix   string
	maxBody  int64
	now      func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithAPIPrefix mounts the report routes under prefix.
func WithAPIPrefix(prefix string) Option {
	return func(s *Server) { s.prefix = prefix }
}

// WithMaxBodyBytes limits the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithMetrics records request metrics and serves g on /metrics.
func WithMetrics(m *Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithClock replaces time.Now for download names.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a Server.
func New(n core.Normalizer, g core.Gateway, c *cache.Cache, opts ...Option) *Server {
	s := &Server{
		normalizer: n,
		gateway:    g,
		cache:      c,
		log:        logger.NewNop(),
		prefix:     defaultAPIPrefix,
		maxBody:    defaultMaxBodyBytes,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Route(s.prefix, func(r chi.Router) {
		r.Put("/run", s.handleGenerate)
		r.Options("/run", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Get("/run", s.handleRetrieve)
		r.Delete("/run", s.handleDiscard)
		r.Get("/cache", s.handleCacheInfo)
		r.Get("/test", s.handleTest)
	})

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

// enableCORS allows the browser-based report designer to call the gateway.
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Z-Key")
		w.Header().Set("Access-Control-Expose-Headers", "X-Report-Key, Content-Disposition")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// unmatchedRoute labels requests no route matched.
const unmatchedRoute = "unmatched"

// instrument logs and measures each request.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		s.metrics.observe(r.Method, route, status, elapsed)
		s.log.Debug("request", "method", r.Method, "route", route, "status", status,
			"bytes", ww.BytesWritten(), "duration", elapsed)
	})
}
