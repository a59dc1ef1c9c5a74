package server

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"gateway-shim/internal/config"
	"gateway-shim/internal/handlers"
	"gateway-shim/internal/middleware"
	"gateway-shim/pkg/shim"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      logrus.FieldLogger
	AuthService *middleware.AuthService
	Registry    handlers.Registry

	// Handler is the configured handler, adapted to platform requests and logged
	Handler shim.AdaptedFunc
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, logger logrus.FieldLogger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	var authService *middleware.AuthService
	if cfg.JWT.Secret != "" {
		authService = middleware.NewAuthService(&middleware.AuthConfig{
			JWTSecret:     cfg.JWT.Secret,
			TokenDuration: time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
			Issuer:        cfg.JWT.Issuer,
		})
	}

	registry := handlers.NewRegistry(handlers.Dependencies{
		AuthService:       authService,
		Version:           cfg.Version,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	})

	handler, err := registry.Lookup(cfg.Handler)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve handler: %w", err)
	}

	handlerLogger := logger.WithField("handler", cfg.Handler)

	return &Container{
		Config:      cfg,
		Logger:      handlerLogger,
		AuthService: authService,
		Registry:    registry,
		Handler:     middleware.Logged(shim.Wrap(handler, shim.WithLogger(handlerLogger)), handlerLogger),
	}, nil
}
