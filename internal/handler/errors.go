// internal/handler/errors.go
package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/robustlab/smoothing-service/internal/middleware"
)

// errorResponse is the JSON error payload
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFromError maps known internal errors to appropriate HTTP status codes
func statusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}

	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "empty input batch"):
		return http.StatusBadRequest

	case strings.Contains(errMsg, "wrong size"):
		return http.StatusBadRequest

	case strings.Contains(errMsg, "must be positive"):
		return http.StatusBadRequest

	case strings.Contains(errMsg, "session is nil"):
		return http.StatusServiceUnavailable

	case strings.Contains(errMsg, "failed to create input tensor"):
		return http.StatusInternalServerError

	case strings.Contains(errMsg, "failed to create output tensor"):
		return http.StatusInternalServerError

	case strings.Contains(errMsg, "inference failed"):
		return http.StatusInternalServerError

	case strings.Contains(errMsg, "score row"):
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes the JSON error payload and aborts the request
func abortWithError(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, errorResponse{
		Error:     msg,
		RequestID: middleware.GetRequestID(c),
	})
}
