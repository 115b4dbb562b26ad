package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/brewline/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SwaggerConfig controls who may read the API docs
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool     // only signed-in admins
	AllowedIPs  []string // addresses or CIDR ranges; empty allows everyone
}

// SwaggerProtection gates the API docs. A disabled endpoint answers
// ERR_DOCS_UNAVAILABLE, an address outside the allow list ERR_DOCS_RESTRICTED,
// and RequireAuth hands over to requireAdmin.
func SwaggerProtection(cfg SwaggerConfig, requireAdmin gin.HandlerFunc) gin.HandlerFunc {
	restricted := len(cfg.AllowedIPs) > 0
	allowed := parseAllowList(cfg.AllowedIPs)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			abortWithCode(c, http.StatusNotFound, dto.ErrCodeDocsUnavailable, "API documentation is not available")
			return
		}
		if restricted && !allowed.contains(clientAddr(c)) {
			abortWithCode(c, http.StatusForbidden, dto.ErrCodeDocsRestricted, "Access to API documentation is restricted")
			return
		}
		if cfg.RequireAuth && requireAdmin != nil {
			requireAdmin(c)
			if c.IsAborted() {
				return
			}
		}
		c.Next()
	}
}

// allowList matches client addresses; single addresses are stored as full-length prefixes
type allowList []netip.Prefix

// parseAllowList skips entries that are neither an address nor a CIDR range
func parseAllowList(entries []string) allowList {
	var list allowList
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			list = append(list, prefix.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			addr = addr.Unmap()
			list = append(list, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return list
}

func (l allowList) contains(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range l {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// clientAddr prefers gin's proxy-aware ClientIP and falls back to RemoteAddr
func clientAddr(c *gin.Context) netip.Addr {
	if addr, err := netip.ParseAddr(c.ClientIP()); err == nil {
		return addr
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	addr, _ := netip.ParseAddr(host)
	return addr
}
