package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"surveilens-control-plane/internal/services/transcribe"
	"surveilens-control-plane/internal/store"
)

// SystemHandler handles system-related endpoints
type SystemHandler struct {
	Version     string
	store       *store.Store
	transcriber *transcribe.Service
	started     time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(version string, st *store.Store, transcriber *transcribe.Service) *SystemHandler {
	return &SystemHandler{
		Version:     version,
		store:       st,
		transcriber: transcriber,
		started:     time.Now(),
	}
}

// @Summary Get system stats
// @Description Get system statistics and performance metrics
// @Tags system
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /system/stats [get]
func (h *SystemHandler) GetStats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	transcript := gin.H{"connected": false, "phrases": 0}
	if h.transcriber != nil {
		transcript = gin.H{
			"connected": h.transcriber.Connected(),
			"phrases":   len(h.transcriber.Phrases()),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"service":    serviceName,
			"version":    h.Version,
			"uptime_sec": int64(time.Since(h.started).Seconds()),
			"memory_mb":  m.Alloc / 1024 / 1024,
			"cpu_cores":  runtime.NumCPU(),
			"goroutines": runtime.NumGoroutine(),
			"go_version": runtime.Version(),
			"alerts":     h.store.Stats(),
			"transcript": transcript,
		},
		"timestamp": time.Now().Unix(),
	})
}
