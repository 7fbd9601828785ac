// Package server exposes the UCS form and its JSON API over HTTP. It keeps no session state; every request replays the posted values into a
// fresh controller.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-ucsform/pkg/form"
	"github.com/goliatone/go-ucsform/pkg/render"
	"github.com/goliatone/go-ucsform/pkg/renderers/jsonview"
	"github.com/goliatone/go-ucsform/pkg/renderers/page"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and controller logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRateLimit caps /api/predict per client. rps <= 0 disables the limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = newLimiterStore(rps, burst)
	}
}

// WithTrustForwarded keys rate limits on X-Forwarded-For.
func WithTrustForwarded(trust bool) Option {
	return func(s *Server) {
		s.trustForwarded = trust
	}
}

// WithRequestIDs overrides the request id generator.
func WithRequestIDs(fn func() string) Option {
	return func(s *Server) {
		if fn != nil {
			s.newRequestID = fn
		}
	}
}

// WithRenderer adds a renderer the form routes can negotiate. The page
// and JSON renderers are always registered.
func WithRenderer(renderer render.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.extra = append(s.extra, renderer)
		}
	}
}

// Server serves the form.
type Server struct {
	renderers      *render.Registry
	extra          []render.Renderer
	predictor      form.Predictor
	logger         *zap.Logger
	limiter        *limiterStore
	trustForwarded bool
	newRequestID   func() string
}

// New builds a server around a page renderer and a predictor.
func New(renderer *page.Renderer, predictor form.Predictor, options ...Option) (*Server, error) {
	if renderer == nil {
		return nil, errors.New("server: page renderer is required")
	}
	if predictor == nil {
		return nil, errors.New("server: predictor is required")
	}
	s := &Server{
		predictor:    predictor,
		logger:       zap.NewNop(),
		newRequestID: defaultRequestID,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	s.renderers = render.NewRegistry()
	for _, r := range append([]render.Renderer{renderer, jsonview.New()}, s.extra...) {
		if err := s.renderers.Register(r); err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
	}
	return s, nil
}

// Handler returns the routed, logged handler tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("POST /{$}", s.handleFormAction)
	mux.HandleFunc("POST /api/derive", s.handleDerive)
	mux.Handle("POST /api/predict", rateLimit(s.limiter, ClientKey(s.trustForwarded), http.HandlerFunc(s.handlePredict)))
	mux.HandleFunc("GET /api/openapi.yaml", handleContract)
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(page.AssetsFS())))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return requestLogging(s.logger, s.newRequestID, mux)
}

// ListenAndServe runs the server on addr until ctx is cancelled, then shuts
// down within grace.
func (s *Server) ListenAndServe(ctx context.Context, addr string, grace time.Duration) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	s.logger.Info("listening", zap.String("addr", addr))

	select {
	case err, ok := <-errChan:
		if ok {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) newController() *form.Controller {
	return form.NewController(s.predictor,
		form.WithLogger(s.logger),
		form.WithNotifier(form.NotifierFunc(func(ctx context.Context, message string) {
			s.logger.Info("notice shown",
				zap.String("request_id", form.RequestID(ctx)),
				zap.String("notice", message),
			)
		})),
	)
}
