// Package api exposes the conversation pipeline over HTTP. Each chat
// session maps to its own processor so buffered context never leaks
// between clients.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server wraps a gin engine around the chat and catalog handlers.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	handler    *Handler
	addr       string
	logger     *zap.Logger
}

// NewServer builds the router with recovery and request logging installed.
func NewServer(handler *Handler, addr string, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	s := &Server{
		engine:  engine,
		handler: handler,
		addr:    addr,
		logger:  logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/health", s.handler.Health)
		api.GET("/templates", s.handler.ListTemplates)
		api.POST("/chat", s.handler.Chat)
	}
}

// Start blocks serving HTTP until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}
	s.logger.Info("http server listening", zap.String("addr", s.addr))
	return s.httpServer.ListenAndServe()
}

// Stop shuts the server down, waiting for in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client", c.ClientIP()))
	}
}
