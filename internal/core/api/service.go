// Package api provides the HTTP handlers for the configurator service.
package api

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/mobilyasoft/configurator/internal/core/catalog"
	"github.com/mobilyasoft/configurator/internal/core/config"
	"github.com/mobilyasoft/configurator/internal/core/session"
)

// ConfiguratorService wires the HTTP surface to the session manager.
// Thin orchestration layer delegating to session, catalog, and rules packages.
type ConfiguratorService struct {
	manager *session.Manager
	store   *catalog.Store
	cache   *catalog.RuleCache
	cfg     *config.ConfiguratorConfig
}

// NewConfiguratorService creates the service instance with dependencies.
func NewConfiguratorService(manager *session.Manager, store *catalog.Store, cache *catalog.RuleCache, cfg *config.ConfiguratorConfig) (*ConfiguratorService, error) {
	if manager == nil {
		return nil, fmt.Errorf("manager cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	return &ConfiguratorService{
		manager: manager,
		store:   store,
		cache:   cache,
		cfg:     cfg,
	}, nil
}

// Register mounts all routes on the echo instance.
func (s *ConfiguratorService) Register(e *echo.Echo) {
	e.GET("/healthz", s.Health)

	e.POST("/v1/sessions", s.CreateSession)
	e.GET("/v1/sessions/:id", s.GetSession)
	e.POST("/v1/sessions/:id/select", s.Select)
	e.POST("/v1/sessions/:id/reset", s.Reset)
	e.GET("/v1/sessions/:id/evaluation", s.Evaluation)
	e.POST("/v1/sessions/:id/preview", s.Preview)
	e.POST("/v1/sessions/:id/submit", s.Submit)
	e.POST("/v1/sessions/:id/price-refresh", s.RefreshPrice)

	e.GET("/v1/variants/:id", s.GetVariant)

	e.POST("/v1/rules/refresh", s.RefreshRules)
}
