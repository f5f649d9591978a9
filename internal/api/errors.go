package api

import (
	"errors"
	"net/http"

	"github.com/dyluth/pixellar/pkg/canvas"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorResponse writes an error body with the given status.
func ErrorResponse(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorBody{Error: code, Message: message})
}

// HandleStoreError maps store errors onto HTTP responses.
func HandleStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, canvas.ErrUnauthorized):
		ErrorResponse(c, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, canvas.ErrOutOfBounds):
		ErrorResponse(c, http.StatusBadRequest, "out_of_bounds", err.Error())
	case errors.Is(err, canvas.ErrInvalidColor):
		ErrorResponse(c, http.StatusBadRequest, "invalid_color", err.Error())
	case errors.Is(err, canvas.ErrHubNotInitialized):
		// Deployment defect: make it loud
		logrus.WithError(err).Error("Canvas used before initialize")
		ErrorResponse(c, http.StatusInternalServerError, "hub_not_initialized", err.Error())
	default:
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "internal", "An unexpected error occurred")
	}
}
