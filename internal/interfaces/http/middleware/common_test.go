package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serveCORS(cfg CORSConfig, method, origin string) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	router.GET("/cart", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(method, "/cart", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORSWithConfig(t *testing.T) {
	t.Run("default config rejects cross-origin requests", func(t *testing.T) {
		w := serveCORS(DefaultCORSConfig(), http.MethodGet, "http://evil.example")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("allows listed origin and exposes the cart session header", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"https://shop.example"}

		w := serveCORS(cfg, http.MethodGet, "https://shop.example")
		assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), CartSessionHeader)
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), CartSessionHeader)
		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("unlisted origin gets no headers", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"https://shop.example"}

		w := serveCORS(cfg, http.MethodGet, "https://other.example")
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard never sends credentials", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"*"}

		w := serveCORS(cfg, http.MethodGet, "https://any.example")
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight answers 204", func(t *testing.T) {
		cfg := CORSConfig{AllowOrigins: []string{"https://shop.example"}, AllowMethods: []string{"GET"}, MaxAge: time.Minute}

		w := serveCORS(cfg, http.MethodOptions, "https://shop.example")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "GET", w.Header().Get("Access-Control-Allow-Methods"))

		w = serveCORS(cfg, http.MethodOptions, "https://other.example")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	serve := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		if header != "" {
			req.Header.Set(RequestIDHeader, header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("generates request ID", func(t *testing.T) {
		w := serve("")
		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
		assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())
	})

	t.Run("uses provided request ID", func(t *testing.T) {
		w := serve("test-request-id")
		assert.Equal(t, "test-request-id", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "test-request-id", w.Body.String())
	})

	t.Run("replaces oversized request ID", func(t *testing.T) {
		w := serve(strings.Repeat("x", 200))
		assert.Len(t, w.Body.String(), 36)
	})
}

func TestSecureWithConfig(t *testing.T) {
	serve := func(cfg SecurityConfig) http.Header {
		router := gin.New()
		router.Use(SecureWithConfig(cfg))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		return w.Header()
	}

	t.Run("defaults", func(t *testing.T) {
		h := serve(DefaultSecurityConfig())
		assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
		assert.Contains(t, h.Get("Content-Security-Policy"), "default-src 'self'")
		assert.Empty(t, h.Get("Strict-Transport-Security"))
	})

	t.Run("hsts", func(t *testing.T) {
		cfg := DefaultSecurityConfig()
		cfg.HSTSEnabled = true
		assert.Equal(t, "max-age=31536000; includeSubDomains", serve(cfg).Get("Strict-Transport-Security"))
	})
}
