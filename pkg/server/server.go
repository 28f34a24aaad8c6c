package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/groupfit/pkg/config"
	"github.com/matzehuels/groupfit/pkg/pipeline"
	"github.com/matzehuels/groupfit/pkg/snapshot"
)

// shutdownTimeout bounds how long in-flight requests may take after the
// serve context is cancelled.
const shutdownTimeout = 10 * time.Second

// Server is the HTTP API.
type Server struct {
	store  snapshot.Store
	runner *pipeline.Runner
	logger *log.Logger
	cfg    config.ServerConfig
	router chi.Router
}

// New builds a server around store and runner. A nil runner gets an
// uncached one.
func New(store snapshot.Store, runner *pipeline.Runner, logger *log.Logger, cfg config.ServerConfig) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{
		store:  store,
		runner: runner,
		logger: logger,
		cfg:    cfg,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cors)
	if s.cfg.MaxBodyBytes > 0 {
		r.Use(limitBody(s.cfg.MaxBodyBytes))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", s.handleHealth)
		r.Post("/fit", s.handleFit)
		r.Post("/render", s.handleRender)

		r.Route("/diagrams", func(r chi.Router) {
			r.Get("/", s.handleListDiagrams)
			r.Post("/", s.handleSaveDiagram)
			r.Get("/{id}", s.handleGetDiagram)
			r.Delete("/{id}", s.handleDeleteDiagram)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found", Code: "NOT_FOUND"})
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is [Server.ListenAndServe] on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String(), "store", s.store.Kind())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
