package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/docsearch/config"
	"github.com/meghashyamc/docsearch/logger"
	"github.com/meghashyamc/docsearch/session"
	"github.com/meghashyamc/docsearch/validation"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	cfg        *config.Config
	router     *gin.Engine
	httpServer *http.Server
	session    *session.Session
	validator  *validation.Validator
	logger     logger.Logger
}

// Run serves the HTTP API until ctx is cancelled or the process is
// interrupted, then shuts down and discards the session.
func Run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s := &server{
		cfg:    cfg,
		logger: logger.New(cfg.GetLogLevel()),
	}
	if err := s.setupDependencies(); err != nil {
		return err
	}
	s.setupRouter()
	s.setupHTTPServer()

	return s.serve(ctx)
}

func (s *server) setupDependencies() error {
	var err error
	s.session, err = session.Open(s.logger, s.cfg)
	if err != nil {
		s.logger.Error("error opening session", "err", err.Error())
		return err
	}
	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		s.session.Close()
		return err
	}

	return nil

}

func (s *server) setupRouter() {
	if !s.cfg.IsDebug() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter()

	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(s.logger))

	setupRoutes(router, s.logger, s.cfg, s.session, s.validator)

	s.router = router
}

func (s *server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(s.cfg.GetHost(), s.cfg.GetPort()),
		Handler:           s.router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *server) serve(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", s.httpServer.Addr, "session_id", s.session.ID())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			s.logger.Error("http server failed", "err", err.Error())
			runErr = fmt.Errorf("http server failed: %w", err)
		}
	}

	s.logger.Info("starting to shut down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error shutting down http server", "err", err.Error())
		runErr = errors.Join(runErr, err)
	}
	if err := s.session.Close(); err != nil {
		s.logger.Error("error closing session", "err", err.Error())
		runErr = errors.Join(runErr, err)
	}
	s.logger.Info("shut down http server")

	return runErr
}
