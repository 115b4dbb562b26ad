package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/brewline/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveSwagger(cfg SwaggerConfig, jwt gin.HandlerFunc, remoteAddr string) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, jwt), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})

	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection(t *testing.T) {
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
	allow := func(c *gin.Context) {}

	t.Run("disabled answers 404", func(t *testing.T) {
		w := serveSwagger(SwaggerConfig{Enabled: false}, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeDocsUnavailable, errorCode(t, w))
	})

	t.Run("enabled without restrictions", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serveSwagger(SwaggerConfig{Enabled: true}, nil, "").Code)
	})

	t.Run("ip allow list", func(t *testing.T) {
		cfg := SwaggerConfig{Enabled: true, AllowedIPs: []string{"127.0.0.1", "10.0.0.0/8"}}
		assert.Equal(t, http.StatusOK, serveSwagger(cfg, nil, "127.0.0.1:1234").Code)
		assert.Equal(t, http.StatusOK, serveSwagger(cfg, nil, "10.20.30.40:1234").Code)

		w := serveSwagger(cfg, nil, "192.168.1.1:1234")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, dto.ErrCodeDocsRestricted, errorCode(t, w))
	})

	t.Run("require auth delegates to jwt middleware", func(t *testing.T) {
		cfg := SwaggerConfig{Enabled: true, RequireAuth: true}
		assert.Equal(t, http.StatusUnauthorized, serveSwagger(cfg, deny, "").Code)
		assert.Equal(t, http.StatusOK, serveSwagger(cfg, allow, "").Code)
	})

	t.Run("ip check runs before auth", func(t *testing.T) {
		cfg := SwaggerConfig{Enabled: true, RequireAuth: true, AllowedIPs: []string{"127.0.0.1"}}
		assert.Equal(t, http.StatusForbidden, serveSwagger(cfg, allow, "192.168.1.1:1234").Code)
	})
}

func TestParseAllowList(t *testing.T) {
	list := parseAllowList([]string{" 192.168.0.5 ", "10.0.0.0/8", "2001:db8::/32", "not-an-ip", "10.1.2.3/33"})
	require.Len(t, list, 3)

	for addr, want := range map[string]bool{
		"192.168.0.5":     true,
		"10.1.2.3":        true,
		"::ffff:10.9.9.9": true,
		"2001:db8::1":     true,
		"172.16.0.1":      false,
		"192.168.0.6":     false,
		"2001:db9::1":     false,
	} {
		assert.Equal(t, want, list.contains(netip.MustParseAddr(addr)), addr)
	}
	assert.False(t, list.contains(netip.Addr{}))
}

func TestSwaggerProtection_UnparseableAllowListDeniesAll(t *testing.T) {
	cfg := SwaggerConfig{Enabled: true, AllowedIPs: []string{"office"}}
	w := serveSwagger(cfg, nil, "127.0.0.1:1234")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
