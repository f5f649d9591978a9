package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dyluth/pixellar/pkg/canvas"
	"github.com/gin-gonic/gin"
)

// HealthResponse is the JSON response structure for health checks.
type HealthResponse struct {
	Status string `json:"status"`
	Redis  string `json:"redis,omitempty"`
	Error  string `json:"error,omitempty"`
}

// CanvasInfo describes the fixed canvas geometry and palette.
type CanvasInfo struct {
	Width   uint64   `json:"width"`
	Height  uint64   `json:"height"`
	Palette []string `json:"palette"`
}

// DrawRequest is the body of PUT /pixels/:x/:y.
type DrawRequest struct {
	Painter canvas.Identity `json:"painter" binding:"required"`
	Color   *uint32         `json:"color" binding:"required"`
}

// InitializeRequest is the body of POST /canvas/initialize.
type InitializeRequest struct {
	Hub canvas.Identity `json:"hub" binding:"required"`
}

// handleHealth returns 200 OK if Redis is accessible, 503 Service Unavailable otherwise.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Redis:  "disconnected",
			Error:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Redis: "connected"})
}

func (s *Server) handleCanvasInfo(c *gin.Context) {
	c.JSON(http.StatusOK, CanvasInfo{
		Width:   canvas.Width,
		Height:  canvas.Height,
		Palette: canvas.Palette[:],
	})
}

func (s *Server) handleListPixels(c *gin.Context) {
	pixels, err := s.store.GetAllPixels(c.Request.Context())
	if err != nil {
		HandleStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, pixels)
}

func (s *Server) handleGetPixel(c *gin.Context) {
	x, y, ok := parseCoord(c)
	if !ok {
		return
	}

	pixel, found, err := s.store.GetPixel(c.Request.Context(), x, y)
	if err != nil {
		HandleStoreError(c, err)
		return
	}
	if !found {
		ErrorResponse(c, http.StatusNotFound, "absent", "pixel has not been drawn")
		return
	}

	c.JSON(http.StatusOK, pixel)
}

func (s *Server) handleDraw(c *gin.Context) {
	x, y, ok := parseCoord(c)
	if !ok {
		return
	}

	var req DrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	if err := s.store.Draw(c.Request.Context(), req.Painter, x, y, *req.Color); err != nil {
		HandleStoreError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) handleInitialize(c *gin.Context) {
	var req InitializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	if err := s.store.Initialize(c.Request.Context(), req.Hub); err != nil {
		HandleStoreError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) handleStartGame(c *gin.Context) {
	if err := s.store.StartGame(c.Request.Context(), c.Param("id")); err != nil {
		HandleStoreError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"game_id": c.Param("id"), "status": "started"})
}

func (s *Server) handleEndGame(c *gin.Context) {
	if err := s.store.EndGame(c.Request.Context(), c.Param("id")); err != nil {
		HandleStoreError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"game_id": c.Param("id"), "status": "ended"})
}

// parseCoord reads :x and :y. Any unsigned integer is accepted; range checks
// belong to the store so reads stay permissive and writes strict.
func parseCoord(c *gin.Context) (uint64, uint64, bool) {
	x, errX := strconv.ParseUint(c.Param("x"), 10, 64)
	y, errY := strconv.ParseUint(c.Param("y"), 10, 64)
	if errX != nil || errY != nil {
		ErrorResponse(c, http.StatusBadRequest, "bad_request", "coordinates must be unsigned integers")
		return 0, 0, false
	}
	return x, y, true
}
