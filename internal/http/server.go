// Package http provides the HTTP server, routing and shared middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/speakwell/rtcauth/internal/config"
	"github.com/speakwell/rtcauth/internal/metrics"
	usersigHTTP "github.com/speakwell/rtcauth/internal/usersig/http"
	usersigService "github.com/speakwell/rtcauth/internal/usersig/service"
)

// Server represents the API HTTP server.
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new API server. db may be nil when the issuance audit trail is
// disabled; readiness then does not depend on a database.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine with middleware and all routes.
//
// Issuance routes are rate limited per client IP when enabled and require a caller access
// token when AuthJWTSecret is set. Admin routes are only registered when an admin key hash
// is configured. ctx bounds background goroutines started by middleware.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	userSigHandler *usersigHTTP.UserSigHandler,
	adminKeyService usersigService.AdminKeyService,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	// Credential self-check is public so deployments can poll it.
	v1.GET("/usersig/health", userSigHandler.HealthHandler)

	issuance := v1.Group("/usersig")
	if cfg.RateLimitEnabled {
		issuance.Use(usersigHTTP.RateLimitMiddleware(
			ctx,
			cfg.RateLimitRequestsPerSec,
			cfg.RateLimitBurst,
			s.logger,
		))
	}
	if cfg.AuthJWTSecret != "" {
		issuance.Use(usersigHTTP.CallerAuthMiddleware([]byte(cfg.AuthJWTSecret), s.logger))
	} else {
		s.logger.Warn("AUTH_JWT_SECRET not set - usersig issuance is unauthenticated")
	}
	{
		issuance.POST("", userSigHandler.IssueHandler)
		issuance.GET("", userSigHandler.IssueQueryHandler)
		issuance.POST("/agent", userSigHandler.IssueAgentHandler)
	}

	if cfg.AdminAPIKeyHash != "" {
		admin := v1.Group("/admin")
		admin.Use(usersigHTTP.AdminAuthMiddleware(adminKeyService, cfg.AdminAPIKeyHash, s.logger))
		{
			admin.POST("/usersig/verify", userSigHandler.VerifyHandler)
			admin.GET("/issuances", userSigHandler.ListIssuancesHandler)
		}
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start serves HTTP until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router is not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports readiness, pinging the database when one is configured.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"components": gin.H{"database": "disabled"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Error("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
