package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequestLog_DoesNotAlterResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLog())
	router.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	router.GET("/teapot", func(c *gin.Context) {
		c.JSON(http.StatusTeapot, gin.H{"message": "short and stout"})
	})

	for path, want := range map[string]int{
		"/ok":     http.StatusOK,
		"/teapot": http.StatusTeapot,
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		assert.Equal(t, want, resp.Code)
	}
}

func TestRequestLog_SkipPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := DefaultRequestLogConfig()
	cfg.SkipPaths = []string{"/health"}

	router := gin.New()
	router.Use(RequestLogWithConfig(cfg))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}
