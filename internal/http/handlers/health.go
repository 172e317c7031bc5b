package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	canonical Pinger
	mirror    Pinger // nil when no mirror is configured
	timeout   time.Duration
	now       func() time.Time
}

func NewHealthHandler(canonical, mirror Pinger) *HealthHandler {
	return &HealthHandler{
		canonical: canonical,
		mirror:    mirror,
		timeout:   2 * time.Second,
		now:       time.Now,
	}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz only depends on the canonical store; the mirror is best effort.
func (h *HealthHandler) Readyz(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	if err := h.canonical.Ping(pingCtx); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": "canonical store unavailable"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Health pings both stores in parallel and reports each one.
func (h *HealthHandler) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
	defer cancel()

	canonical, mirror := "disconnected", "disabled"

	// results are per store, so one failure must not cancel the other ping
	var g errgroup.Group
	g.Go(func() error {
		if h.canonical.Ping(pingCtx) == nil {
			canonical = "connected"
		}
		return nil
	})
	if h.mirror != nil {
		g.Go(func() error {
			mirror = "disconnected"
			if h.mirror.Ping(pingCtx) == nil {
				mirror = "connected"
			}
			return nil
		})
	}
	_ = g.Wait()

	status, code := "healthy", http.StatusOK
	if canonical != "connected" {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	ctx.JSON(code, gin.H{
		"status":    status,
		"canonical": canonical,
		"mirror":    mirror,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}
