package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// CatalogCounter reports the size of the loaded catalog
type CatalogCounter interface {
	Counts() (products, categories int)
}

// ReadinessResponse describes the state of the backing stores
type ReadinessResponse struct {
	Status     string            `json:"status"`
	Checks     map[string]string `json:"checks"`
	Products   int               `json:"products"`
	Categories int               `json:"categories"`
	Timestamp  time.Time         `json:"timestamp"`
}

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	BaseHandler
	pingers map[string]Pinger
	catalog CatalogCounter
	timeout time.Duration
}

// NewHealthHandler creates a health handler. pingers are checked by name on /ready.
func NewHealthHandler(catalog CatalogCounter, pingers map[string]Pinger) *HealthHandler {
	return &HealthHandler{pingers: pingers, catalog: catalog, timeout: 2 * time.Second}
}

// Health godoc
// @Summary      Liveness probe
// @Tags         system
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Ready godoc
// @Summary      Readiness probe
// @Tags         system
// @Produce      json
// @Success      200 {object} ReadinessResponse
// @Failure      503 {object} ReadinessResponse
// @Router       /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := ReadinessResponse{Status: "ready", Checks: make(map[string]string, len(h.pingers)), Timestamp: time.Now().UTC()}
	status := http.StatusOK
	for name, p := range h.pingers {
		if err := p.Ping(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	if h.catalog != nil {
		resp.Products, resp.Categories = h.catalog.Counts()
	}
	c.JSON(status, resp)
}
