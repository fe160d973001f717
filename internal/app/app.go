// Package app wires configuration, logging, the verdict cache and the evaluation service for the
// command-line entry points.
package app

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/radassist-mcp-server/internal/cache"
	"github.com/radassist-mcp-server/internal/config"
	"github.com/radassist-mcp-server/internal/domain"
	"github.com/radassist-mcp-server/internal/service"
)

// App is a fully wired process.
type App struct {
	Config  *config.Manager
	Logger  *logrus.Logger
	Service *service.EvaluationService

	cache domain.VerdictCache
}

// Options adjusts bootstrap.
type Options struct {
	// ConfigFile is an explicit config path; empty searches the default locations.
	ConfigFile string
	// LogOutput overrides logging.output. Stdio transports log to stderr.
	LogOutput string
	// LogLevel overrides logging.level when set.
	LogLevel string
}

// New loads and validates configuration and builds the service stack.
func New(opts Options) (*App, error) {
	manager, err := config.NewManager(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := manager.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	cfg := manager.GetConfig()
	logging := cfg.Logging
	if opts.LogOutput != "" {
		logging.Output = opts.LogOutput
	}
	if opts.LogLevel != "" {
		logging.Level = opts.LogLevel
	}
	logger, err := config.NewLogger(logging)
	if err != nil {
		return nil, err
	}

	verdictCache, err := cache.New(cfg.Cache, logger)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"environment":   cfg.Environment,
		"cache_enabled": cfg.Cache.Enabled,
		"cache_backend": cfg.Cache.Backend,
	}).Debug("Application initialized")

	return &App{
		Config:  manager,
		Logger:  logger,
		Service: service.NewEvaluationService(logger, verdictCache),
		cache:   verdictCache,
	}, nil
}

// Close releases the cache connection, if the backend holds one.
func (a *App) Close() error {
	if c, ok := a.cache.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
