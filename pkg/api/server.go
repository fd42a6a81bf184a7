// Package api provides the REST API server for midiunion
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/james-see/midiunion/pkg/forwarder"
	"github.com/james-see/midiunion/pkg/logging"
)

// @title midiunion API
// @version 1.0
// @description API for controlling a real-time MIDI forwarding session
// @host localhost:8080
// @BasePath /api/v1

const shutdownTimeout = 5 * time.Second

// Server exposes a Forwarder over HTTP
type Server struct {
	fwd    *forwarder.Forwarder
	hub    *Hub
	logger *logging.Logger
	engine *gin.Engine

	beforeShutdown []func()
}

// NewServer builds the router. hub may be nil when no event stream is wanted.
func NewServer(fwd *forwarder.Forwarder, hub *Hub, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Server{
		fwd:    fwd,
		hub:    hub,
		logger: logger.With("component", "api"),
		engine: gin.New(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.engine
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(corsMiddleware())

	r.GET("/health", healthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/devices", s.listDevices)
		v1.GET("/status", s.getStatus)
		v1.GET("/notes", s.getNotes)
		v1.POST("/forward/start", s.startForwarding)
		v1.POST("/forward/stop", s.stopForwarding)
		v1.POST("/route", s.routeMessage)
		if s.hub != nil {
			v1.GET("/events", s.streamEvents)
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// BeforeShutdown registers fn to run when Run is asked to stop, while
// websocket clients are still connected
func (s *Server) BeforeShutdown(fn func()) {
	s.beforeShutdown = append(s.beforeShutdown, fn)
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	for _, fn := range s.beforeShutdown {
		fn()
	}
	if s.hub != nil {
		s.hub.CloseAll()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
