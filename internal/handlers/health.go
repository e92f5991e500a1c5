package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/alimgiray/crewledger/pkg/logger"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	db      *sql.DB
	started time.Time
	now     func() time.Time
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now(), now: time.Now}
}

// HealthCheck reports database reachability along with process uptime and
// memory usage
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	now := h.now()
	body := gin.H{
		"status":    "ok",
		"database":  "up",
		"timestamp": now.UTC().Format(time.RFC3339),
		"application": gin.H{
			"uptimeSeconds": int64(now.Sub(h.started).Seconds()),
			"goroutines":    runtime.NumGoroutine(),
		},
		"system": systemHealth(),
	}

	if err := h.db.PingContext(ctx); err != nil {
		logger.WithError(err).Error("Database ping failed")
		body["status"] = "unavailable"
		body["database"] = "down"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}

	c.JSON(http.StatusOK, body)
}

func systemHealth() gin.H {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return gin.H{
		"goVersion":      runtime.Version(),
		"cpus":           runtime.NumCPU(),
		"heapAllocBytes": mem.HeapAlloc,
		"sysBytes":       mem.Sys,
	}
}
