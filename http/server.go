// Package http serves extraction runs and record downloads over HTTP using
// go-chi.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/unscraper"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// Server defaults.
const (
	DefaultRequestLimit  = 30
	DefaultLimitWindow   = time.Minute
	DefaultMaxBodySize   = 8 << 20
	DefaultShutdownGrace = 10 * time.Second
)

// Server exposes an unscraper.Extractor over HTTP.
type Server struct {
	extractor unscraper.Extractor
	router    chi.Router
	logger    *slog.Logger

	requestLimit   int
	limitWindow    time.Duration
	maxBodySize    int64
	allowedOrigins []string
}

// Option configures a Server.
type Option func(*Server)

// WithRequestLimit limits each client IP to n extraction requests per
// window. A non-positive n disables the limit.
func WithRequestLimit(n int, window time.Duration) Option {
	return func(s *Server) {
		s.requestLimit = n
		s.limitWindow = window
	}
}

// WithMaxBodySize caps request bodies at n bytes.
func WithMaxBodySize(n int64) Option {
	return func(s *Server) {
		s.maxBodySize = n
	}
}

// WithAllowedOrigins enables CORS for the given origins. "*" allows any
// origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithLogger sets the request logger. Defaults to discarding logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server with its routes registered.
func NewServer(extractor unscraper.Extractor, opts ...Option) *Server {
	s := &Server{
		extractor:    extractor,
		logger:       slog.New(slog.DiscardHandler),
		requestLimit: DefaultRequestLimit,
		limitWindow:  DefaultLimitWindow,
		maxBodySize:  DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(s.maxBodySize))
	if len(s.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			ExposedHeaders: []string{"Content-Disposition"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.handleHealth)
	r.Group(func(r chi.Router) {
		if s.requestLimit > 0 {
			r.Use(httprate.Limit(s.requestLimit, s.limitWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					writeError(w, unscraper.RateLimited(""))
				}),
			))
		}
		r.Post("/extract", s.handleExtract)
	})
	r.Post("/download/{format}", s.handleDownload)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func(begin time.Time) {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"request_id", middleware.GetReqID(r.Context()),
				"duration", time.Since(begin),
			)
		}(time.Now())
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
