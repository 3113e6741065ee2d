// Package server provides HTTP server lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mobilyasoft/configurator/internal/core/api"
	"github.com/mobilyasoft/configurator/internal/core/config"
)

// HTTPServer manages the echo server lifecycle.
type HTTPServer struct {
	echo   *echo.Echo
	config *config.ConfiguratorConfig
}

// NewHTTPServer creates the echo server with middleware and route registration.
func NewHTTPServer(cfg *config.ConfiguratorConfig, service *api.ConfiguratorService) (*HTTPServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	service.Register(e)

	return &HTTPServer{
		echo:   e,
		config: cfg,
	}, nil
}

// Start binds the listener and serves requests.
// Context is provided for API consistency but Start blocks until Shutdown is called.
func (s *HTTPServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve on %s: %w", addr, err)
	}
	return nil
}

// Shutdown gracefully stops the server with a 30-second timeout.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		s.echo.Close()
		return fmt.Errorf("graceful shutdown failed, forced stop: %w", err)
	}
	return nil
}
