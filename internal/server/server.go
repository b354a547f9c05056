// Package server is the HTTP front end of the workflow designer. It serves
// the JSON API and mounts the MCP transport under /mcp.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/LiboWorks/workflow-wizard/internal/logging"
	"github.com/LiboWorks/workflow-wizard/internal/mcpserver"
)

const (
	ServiceName = "Workflow Wizard"
	Version     = "1.0.0"

	shutdownTimeout = 30 * time.Second
)

type Server struct {
	echo     *echo.Echo
	designer mcpserver.Designer
	validate *validator.Validate
	logger   *slog.Logger
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New builds the router. The MCP tools share the same designer.
func New(designer mcpserver.Designer, opts ...Option) *Server {
	s := &Server{
		echo:     echo.New(),
		designer: designer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logging.WithModule("server"),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			)
			return nil
		},
	}))

	e.GET("/", s.root)
	e.GET("/health", s.health)
	e.POST("/workflow", s.createWorkflow)
	e.POST("/validate", s.validateWorkflow)
	e.POST("/export", s.exportWorkflow)

	mcpServer := mcpserver.NewServer(designer, Version)
	mcpHandlers := http.NewServeMux()
	mcpserver.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
	e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// ListenAndServe serves on addr until ctx is canceled, then drains in-flight
// requests before returning.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.echo,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // a full design run makes three model calls
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server_starting", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("server_shutdown", "reason", context.Cause(ctx))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server_shutdown_failed", "error", err)
			return httpServer.Close()
		}
		s.logger.Info("server_stopped")
		return nil
	}
}
