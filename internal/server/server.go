// Package server is the HTTP host that lets a remote workflow engine submit batches.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/surrealdb/surrealflow"
	"github.com/surrealdb/surrealflow/pkg/constants"
	"github.com/surrealdb/surrealflow/pkg/credentials"
	"github.com/surrealdb/surrealflow/pkg/item"
)

// maxBodyBytes bounds the size of a submitted batch.
const maxBodyBytes = 16 << 20

// Executor runs batches. *surrealflow.Node implements it.
type Executor interface {
	Execute(ctx context.Context, req surrealflow.Request) ([]item.Item, error)
	Operations() []surrealflow.Operation
}

// Server routes HTTP requests to an Executor.
type Server struct {
	exec     Executor
	defaults *credentials.Settings
	gatherer prometheus.Gatherer
	logger   zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithDefaultCredentials sets the settings used for requests that carry none.
func WithDefaultCredentials(s *credentials.Settings) Option {
	return func(srv *Server) {
		srv.defaults = s
	}
}

// WithGatherer sets the registry served on /metrics. It defaults to the global registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(srv *Server) {
		srv.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(srv *Server) {
		srv.logger = l
	}
}

// New creates a Server.
func New(exec Executor, opts ...Option) *Server {
	s := &Server{exec: exec, gatherer: prometheus.DefaultGatherer, logger: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Router returns the HTTP routes.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.logRequests)

	api := router.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/execute", s.handleExecute).Methods(http.MethodPost)
	api.HandleFunc("/operations", s.handleOperations).Methods(http.MethodGet)

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	s.logger.Info().Str("addr", addr).Msg("http host listening")

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down http host")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

type executeResponse struct {
	Items []item.Item `json:"items"`
}

type errorResponse struct {
	Error string `json:"error"`
	Item  *int   `json:"item,omitempty"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req surrealflow.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request payload: " + err.Error()})
		return
	}
	if req.Settings == (credentials.Settings{}) && s.defaults != nil {
		req.Settings = *s.defaults
	}

	items, err := s.exec.Execute(r.Context(), req)
	if err != nil {
		var itemErr *surrealflow.ItemError
		switch {
		case errors.Is(err, constants.ErrUnsupportedOperation):
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.As(err, &itemErr):
			respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Item: &itemErr.Index})
		default:
			respondJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return
	}
	respondJSON(w, http.StatusOK, executeResponse{Items: items})
}

func (s *Server) handleOperations(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"operations": s.exec.Operations()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}
