package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"ecomdash/internal/core"
	"ecomdash/internal/dataset"
	applog "ecomdash/internal/log"
	"ecomdash/internal/middleware/ratelimit"
	"ecomdash/internal/middleware/security"
	"ecomdash/internal/middleware/trace"
	appweb "ecomdash/web"
)

// Options tunes the middleware chain. Zero values fall back to defaults.
type Options struct {
	Logger            *applog.Logger
	RequestsPerMinute int
	TrustedProxies    []string
	Headers           *security.HeadersConfig
}

// Server serves the dashboard page and its chart payloads from one
// immutable dataset.
type Server struct {
	http.Server
	templates *template.Template
	dataset   *dataset.Dataset
	logger    *applog.Logger
	dashLog   *applog.StructuredLogger
	startedAt time.Time

	securityDetector *security.Detector
	rateLimiter      *ratelimit.Limiter
	traceMiddleware  *trace.Middleware

	shutdownOnce sync.Once
}

var templateFuncs = template.FuncMap{
	"brl":  core.FormatBRL,
	"date": func(t time.Time) string { return t.Format(time.DateOnly) },
}

// NewServer configures routes, templates and middleware, returning a
// ready-to-run server. ds may be nil, in which case /readyz reports not
// ready and the page renders its no-data state.
func NewServer(addr string, ds *dataset.Dataset, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	httpLogger := logger.WithComponent(applog.ComponentHTTP)

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			httpLogger.Warn("Ignoring invalid trusted proxy", "cidr", cidr, applog.FieldError, err)
		}
	}

	headers := security.DefaultHeadersConfig()
	if opts.Headers != nil {
		headers = *opts.Headers
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:           addr,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 16,
		},
		dataset:          ds,
		logger:           httpLogger,
		dashLog:          applog.NewStructuredLogger(logger.WithComponent(applog.ComponentDashboard)),
		startedAt:        time.Now(),
		securityDetector: detector,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		traceMiddleware:  trace.NewMiddleware(detector.ClientIP, logger.WithComponent(applog.ComponentTrace)),
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		httpLogger.Error("Failed parsing templates", applog.FieldError, err,
			applog.FieldComponent, applog.ComponentTemplate)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		httpLogger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/daily", s.handleDaily)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/reviews", s.handleReviews)
	mux.HandleFunc("GET /api/monthly", s.handleMonthly)
	mux.HandleFunc("GET /api/states", s.handleStates)
	mux.HandleFunc("GET /api/cities", s.handleCities)
	mux.HandleFunc("GET /api/map", s.handleMap)
	mux.HandleFunc("GET /api/totals", s.handleTotals)

	// innermost first
	var h http.Handler = mux
	h = s.rateLimiter.Middleware(detector.ClientIP)(h)
	h = detector.Middleware(h)
	h = security.Headers(headers)(h)
	h = applog.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(h)
	h = s.traceMiddleware.Middleware(h)
	h = applog.Middleware(httpLogger)(h)
	s.Handler = h

	return s
}

// Shutdown stops background goroutines and gracefully shuts down the
// HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
