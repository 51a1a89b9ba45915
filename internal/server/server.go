package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/niexiaoning/deep-searcher/internal/adapter/utils"
	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/handlers"
	"github.com/niexiaoning/deep-searcher/internal/middleware"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
)

type Server struct {
	httpServer *http.Server
	logger     *logger_i.Logger
}

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

// NewRouter mounts the ingestion API behind the middleware chain. Swagger,
// metrics and health stay public.
func NewRouter(mw *middleware.Middleware, rh *handlers.RequestHandler) http.Handler {
	r := utils.NewRouter()

	r.Router.Get("/health", rh.GetHandler)
	r.Router.Get("/status/{id}", mw.Wrap(rh.GetStatusHandler))
	r.Router.Post("/ingest/local", mw.Wrap(rh.PostLocalIngestHandler))
	r.Router.Post("/ingest/website", mw.Wrap(rh.PostWebsiteIngestHandler))
	r.Router.Post("/ingest/upload", mw.Wrap(rh.PostUploadIngestHandler))
	return r.Router
}

func New(listenAddr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         listenAddr,
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		logger: logger_i.NewLogger("Server"),
	}
}

func (s *Server) Run() {
	s.logger.Info("Server is listening at", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Server crashed", "error", err, "addr", s.httpServer.Addr)
	}
}

func (s *Server) ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	s.logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		s.httpServer.SetKeepAlivesEnabled(false)
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("Could not shutdown gracefully", "error", err)
		}

		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Gracefully shut down")
	case <-ctx.Done():
		s.logger.Info("Force Shut down")
		os.Exit(1)
	}
}
