// Package api exposes the canvas store over HTTP with gin.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dyluth/pixellar/pkg/canvas"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Server is the HTTP front of one canvas store.
type Server struct {
	store      *canvas.Store
	adminToken string
	log        *logrus.Entry
	engine     *gin.Engine
	server     *http.Server
}

// NewServer builds the router. adminToken may be empty, which leaves
// initialize and game lifecycle routes open.
func NewServer(store *canvas.Store, adminToken string) *Server {
	s := &Server{
		store:      store,
		adminToken: adminToken,
		log:        logrus.WithFields(logrus.Fields{"component": "api", "instance": store.InstanceName()}),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), BearerToken())

	r.GET("/healthz", s.handleHealth)

	v1 := r.Group("/api/v1")
	v1.GET("/canvas", s.handleCanvasInfo)
	v1.GET("/pixels", s.handleListPixels)
	v1.GET("/pixels/:x/:y", s.handleGetPixel)
	v1.PUT("/pixels/:x/:y", s.handleDraw)
	v1.GET("/stream", s.handleStream)

	admin := v1.Group("", AdminToken(s.adminToken))
	admin.POST("/canvas/initialize", s.handleInitialize)
	admin.POST("/games/:id/start", s.handleStartGame)
	admin.POST("/games/:id/end", s.handleEndGame)

	return r
}

// Start listens on addr in the background.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Surface immediate bind failures to the caller
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start HTTP server on %s: %w", addr, err)
		}
	case <-time.After(100 * time.Millisecond):
	}

	s.log.WithField("addr", addr).Info("HTTP server listening")
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Debug("Request served")
	}
}
