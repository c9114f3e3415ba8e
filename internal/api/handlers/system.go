package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"birdsos/internal/config"
	"birdsos/internal/hardware/gpio"
	"birdsos/internal/logging"
	"birdsos/internal/services/status"
	"birdsos/internal/services/storage"
)

// SystemHandler serves the one-call overview the dashboard polls.
type SystemHandler struct {
	cfg     *config.Config
	status  *status.Publisher
	storage *storage.Service
	gpio    *gpio.Manager
	started time.Time
}

func NewSystemHandler(cfg *config.Config, statusPub *status.Publisher, store *storage.Service, manager *gpio.Manager) *SystemHandler {
	return &SystemHandler{
		cfg:     cfg,
		status:  statusPub,
		storage: store,
		gpio:    manager,
		started: time.Now(),
	}
}

// @Summary System status
// @Description Get device uptime, camera state, storage usage and GPIO summary in one call
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/system/status [get]
func (h *SystemHandler) GetStatus(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	payload := gin.H{
		"device_id":      h.cfg.DeviceID,
		"version":        h.cfg.Version,
		"uptime_seconds": time.Since(h.started).Seconds(),
		"camera":         h.status.Current(),
		"gpio": gin.H{
			"configured_pins": len(h.gpio.ConfiguredPins()),
		},
		"runtime": gin.H{
			"memory_mb":  m.Alloc / 1024 / 1024,
			"goroutines": runtime.NumGoroutine(),
			"go_version": runtime.Version(),
		},
		"timestamp": time.Now(),
	}

	if storageStatus, err := h.storage.Check(); err != nil {
		logging.Warn(c).Err(err).Msg("Storage check failed for system status")
	} else {
		payload["storage"] = storageStatus
	}

	c.JSON(http.StatusOK, payload)
}
