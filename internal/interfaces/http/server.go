// Package http provides the HTTP adapter for the application layer. It
// translates requests into service calls and application errors into
// status codes; no business rules live here.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sugun-2430327/project-backend/internal/application/service"
	"github.com/sugun-2430327/project-backend/internal/auth"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Services bundles the application services the server exposes
type Services struct {
	Users       service.UserService
	Policies    service.PolicyService
	Enrollments service.EnrollmentService
	Claims      service.ClaimService
	Support     service.SupportService
	Reports     service.ReportService
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	tokens     *auth.TokenService
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, tokens *auth.TokenService, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		services: services,
		tokens:   tokens,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()
	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.services, s.logger)
	authenticated := s.authMiddleware()

	// Health check
	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")
	{
		// Public authentication endpoints
		api.POST("/auth/register", handlers.Register)
		api.POST("/auth/login", handlers.Login)

		// Policy template catalog
		policies := api.Group("/policies", authenticated)
		{
			policies.GET("", handlers.ListTemplates)
			policies.GET("/:id", handlers.GetTemplate)
			policies.POST("", handlers.CreateTemplate)
			policies.PUT("/:id", handlers.UpdateTemplate)
			policies.DELETE("/:id", handlers.DeleteTemplate)
		}

		// Enrollment lifecycle
		enrollments := api.Group("/enrollments", authenticated)
		{
			enrollments.POST("", handlers.Enroll)
			enrollments.GET("/eligibility/:templateId", handlers.CheckEligibility)
			enrollments.GET("", handlers.ListEnrollments)
			enrollments.GET("/:id", handlers.GetEnrollment)
			enrollments.PUT("/:id/agent-review", handlers.AgentReview)
			enrollments.PUT("/:id/approve", handlers.AdminApprove)
			enrollments.PUT("/:id/decline", handlers.AdminDecline)
			enrollments.PUT("/:id/withdraw", handlers.Withdraw)
		}

		// Claims
		claims := api.Group("/claims", authenticated)
		{
			claims.POST("", handlers.SubmitClaim)
			claims.GET("", handlers.ListClaims)
			claims.GET("/:id", handlers.GetClaim)
			claims.PUT("/:id/status", handlers.UpdateClaimStatus)
		}

		// Support tickets
		support := api.Group("/support", authenticated)
		{
			support.POST("", handlers.CreateTicket)
			support.GET("", handlers.ListTickets)
			support.GET("/:id", handlers.GetTicket)
			support.PUT("/:id/resolve", handlers.ResolveTicket)
		}

		// Administrative exports
		reportsGroup := api.Group("/reports", authenticated)
		{
			reportsGroup.GET("/enrollments", handlers.ExportEnrollments)
			reportsGroup.GET("/claims", handlers.ExportClaims)
		}

		// User directory
		users := api.Group("/users", authenticated)
		{
			users.GET("", handlers.ListUsers)
			users.GET("/:id", handlers.GetUser)
		}
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
