package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"birdsos/internal/config"
)

type HealthHandler struct {
	cfg *config.Config
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

type HealthResponse struct {
	Status   string `json:"status" example:"healthy"`
	DeviceID string `json:"device_id" example:"feeder-1"`
}

type DeviceInfoResponse struct {
	DeviceID     string   `json:"device_id" example:"feeder-1"`
	CameraID     string   `json:"camera_id" example:"feeder-cam"`
	Status       string   `json:"status" example:"running"`
	Version      string   `json:"version" example:"1.0.0"`
	Environment  string   `json:"environment" example:"production"`
	Capabilities []string `json:"capabilities"`
}

// @Summary Health check
// @Description Check if the device is healthy and responsive
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:   "healthy",
		DeviceID: h.cfg.DeviceID,
	})
}

// @Summary Device information
// @Description Get basic device information and capabilities
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} DeviceInfoResponse
// @Router / [get]
func (h *HealthHandler) DeviceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, DeviceInfoResponse{
		DeviceID:    h.cfg.DeviceID,
		CameraID:    h.cfg.CameraID,
		Status:      "running",
		Version:     h.cfg.Version,
		Environment: h.cfg.Environment,
		Capabilities: []string{
			"motion_detection",
			"event_recording",
			"mjpeg_streaming",
			"gpio_control",
		},
	})
}
