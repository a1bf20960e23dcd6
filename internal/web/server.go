// Package web provides the HTTP gateway for deskfolio.
// It maps shareable URLs such as /resume onto the SSH command that opens
// the same view, and serves health, catalogue and metrics endpoints.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gaurav-Gosain/deskfolio/internal/logging"
	"github.com/Gaurav-Gosain/deskfolio/internal/metrics"
)

var logger = logging.New("web")

// Config holds the gateway configuration.
type Config struct {
	Address        string // host:port to listen on (default: "localhost:8080")
	SSHHost        string // host shown in generated ssh commands
	SSHPort        string // port shown in generated ssh commands, omitted when 22
	MaxConnections int    // maximum concurrent requests (0 = unlimited)
	Metrics        *metrics.Metrics
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Address: "localhost:8080",
		SSHHost: "localhost",
		SSHPort: "2222",
	}
}

// Server is the HTTP gateway.
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	connCount  atomic.Int32
}

// NewServer creates a gateway and registers its routes.
func NewServer(config Config) *Server {
	def := DefaultConfig()
	if config.Address == "" {
		config.Address = def.Address
	}
	if config.SSHHost == "" {
		config.SSHHost = def.SSHHost
	}
	if config.SSHPort == "" {
		config.SSHPort = def.SSHPort
	}

	logger.Info("creating web server",
		"address", config.Address,
		"ssh", net.JoinHostPort(config.SSHHost, config.SSHPort),
		"max_connections", config.MaxConnections,
	)

	s := &Server{config: config}
	s.router = s.routes()
	return s
}

// Handler returns the gateway's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.observe(), s.connectionLimit())

	r.GET("/healthz", s.handleHealth)
	r.GET("/api/apps", s.handleApps)
	r.GET("/api/routes", s.handleRoutes)
	r.GET("/metrics", gin.WrapH(s.config.Metrics.Handler()))
	r.NoRoute(s.handlePath)
	return r
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "url", fmt.Sprintf("http://%s", s.config.Address))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"remote", c.ClientIP(),
		)
	}
}

// observe counts requests by route template so unmatched paths do not
// explode label cardinality.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "deeplink"
		}
		s.config.Metrics.ObserveHTTP(route, fmt.Sprint(c.Writer.Status()))
	}
}

func (s *Server) connectionLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.config.MaxConnections <= 0 {
			c.Next()
			return
		}
		n := s.connCount.Add(1)
		defer s.connCount.Add(-1)
		if int(n) > s.config.MaxConnections {
			logger.Warn("connection limit reached", "current", n-1, "max", s.config.MaxConnections)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "maximum connections reached"})
			return
		}
		c.Next()
	}
}
