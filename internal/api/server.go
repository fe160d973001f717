package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/radassist-mcp-server/internal/domain"
	"github.com/radassist-mcp-server/internal/middleware"
)

const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	evaluator     domain.Evaluator
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
	started       time.Time
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, evaluator domain.Evaluator, logger *logrus.Logger) *Server {
	cfg := configManager.GetConfig()

	gin.SetMode(cfg.Server.Mode)

	router := gin.New()

	router.Use(middleware.CorrelationID())
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst).Middleware())
	}

	server := &Server{
		configManager: configManager,
		evaluator:     evaluator,
		logger:        logger,
		router:        router,
		started:       time.Now(),
	}

	server.setupRoutes()

	return server
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/brain/evaluate", s.handleEvaluateBrain)
		v1.POST("/liver/evaluate", s.handleEvaluateLiver)
		v1.POST("/liver/modality", s.handleApplyModality)
		v1.POST("/lesion/suggest", s.handleSuggestLesion)
		v1.POST("/lesion/report", s.handleComposeReport)
		v1.POST("/differentials/normalize", s.handleNormalize)
		v1.POST("/differentials/apply", s.handleApplySuggestions)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	cfg := s.configManager.GetConfig()
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   cfg.MCP.ServerVersion,
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}
