// Package httpapi exposes the anchor engine over HTTP.
package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"eth-anchor/internal/anchor"
	"eth-anchor/internal/fetcher"
	"eth-anchor/internal/metrics"
	"eth-anchor/internal/service"
)

const (
	RouteSnapshot = "/api/eth-snapshot"
	RouteSample   = "/api/ethusd"
	RouteHealth   = "/healthz"

	tokenParam = "k"
)

// Engine computes the payloads served by the API.
type Engine interface {
	Snapshot(ctx context.Context) (service.SnapshotResponse, error)
	Sample(ctx context.Context) (service.SampleResponse, error)
}

// Options configure the listener and routes.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// GateToken protects the sample route. An empty token rejects every
	// request unless GateDisabled is set.
	GateToken    string
	GateDisabled bool
	MetricsPath  string
}

// Server is the read-only HTTP API.
type Server struct {
	opts    Options
	engine  Engine
	metrics *metrics.Metrics
	router  *mux.Router
	logger  zerolog.Logger
}

// NewServer builds the router. m may be nil, in which case no metrics route is
// registered.
func NewServer(opts Options, engine Engine, m *metrics.Metrics, logger zerolog.Logger) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		opts:    opts,
		engine:  engine,
		metrics: m,
		router:  mux.NewRouter(),
		logger:  logger.With().Str("component", "httpapi").Logger(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(hlog.NewHandler(s.logger))
	s.router.Use(requestIDMiddleware)
	s.router.Use(hlog.AccessHandler(s.accessLog))

	s.router.HandleFunc(RouteSnapshot, s.handleSnapshot).Methods(http.MethodGet)
	s.router.HandleFunc(RouteSample, s.handleSample).Methods(http.MethodGet)
	s.router.HandleFunc(RouteHealth, s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil && s.opts.MetricsPath != "" {
		s.router.Handle(s.opts.MetricsPath, s.metrics.Handler()).Methods(http.MethodGet)
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found"})
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method_not_allowed"})
	})
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.opts.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	s.logger.Info().Msg("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engine.Snapshot(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("snapshot failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r.URL.Query().Get(tokenParam)) {
		writeJSON(w, http.StatusForbidden, errorBody{Error: "forbidden"})
		return
	}

	resp, err := s.engine.Sample(r.Context())
	if err != nil {
		code, body := sampleError(err)
		hlog.FromRequest(r).Error().Err(err).Int("status", code).Msg("sample failed")
		writeJSON(w, code, body)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) authorized(presented string) bool {
	if s.opts.GateDisabled {
		return true
	}
	if s.opts.GateToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(s.opts.GateToken)) == 1
}

func (s *Server) accessLog(r *http.Request, status, size int, elapsed time.Duration) {
	route := r.URL.Path
	if current := mux.CurrentRoute(r); current != nil {
		if tpl, err := current.GetPathTemplate(); err == nil {
			route = tpl
		}
	}
	s.metrics.ObserveHTTP(route, status, elapsed)

	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("route", route).
		Int("status", status).
		Int("size", size).
		Dur("duration", elapsed).
		Msg("request served")
}

func sampleError(err error) (int, errorBody) {
	var statusErr *fetcher.StatusError
	switch {
	case errors.As(err, &statusErr):
		return http.StatusBadGateway, errorBody{Error: fmt.Sprintf("coinbase_status_%d", statusErr.Code)}
	case errors.Is(err, anchor.ErrNoPrice):
		return http.StatusBadGateway, errorBody{Error: "no_price"}
	default:
		return http.StatusInternalServerError, errorBody{Error: err.Error()}
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	h.Set("X-Robots-Tag", "noindex, nofollow")
	h.Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// requestIDMiddleware tags the response and the request logger with an id.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		log := zerolog.Ctx(r.Context())
		log.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("request_id", requestID)
		})
		next.ServeHTTP(w, r)
	})
}
