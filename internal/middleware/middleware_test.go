// internal/middleware/middleware_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(captured *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		*captured = GetRequestID(c)
		c.String(http.StatusOK, "pong")
	})
	return r
}

func TestRequestID_GeneratesID(t *testing.T) {
	var captured string
	r := newTestRouter(&captured)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if captured == "" {
		t.Error("Expected request ID to be generated, got empty string")
	}

	// Verify it looks like a UUID (36 chars with dashes)
	if len(captured) != 36 {
		t.Errorf("Expected UUID format (36 chars), got %d chars: %s", len(captured), captured)
	}

	// The response must echo the generated ID
	if got := w.Header().Get(RequestIDHeader); got != captured {
		t.Errorf("Expected response header %s, got %s", captured, got)
	}
}

func TestRequestID_PreservesExistingID(t *testing.T) {
	existingID := "test-request-id-12345"

	var captured string
	r := newTestRouter(&captured)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, existingID)
	r.ServeHTTP(w, req)

	if captured != existingID {
		t.Errorf("Expected request ID %s, got %s", existingID, captured)
	}
	if got := w.Header().Get(RequestIDHeader); got != existingID {
		t.Errorf("Expected response header %s, got %s", existingID, got)
	}
}

func TestGetRequestID_MissingFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if id := GetRequestID(c); id != "" {
		t.Errorf("Expected empty request ID without middleware, got %s", id)
	}
}

func TestMetrics_DoesNotBreakHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusTeapot, "short and stout")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Errorf("Expected status %d, got %d", http.StatusTeapot, w.Code)
	}
}
