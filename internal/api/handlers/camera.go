package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"birdsos/internal/config"
	"birdsos/internal/logging"
	"birdsos/internal/services/pipeline"
	"birdsos/internal/services/publisher"
	"birdsos/internal/services/recorder"
	"birdsos/internal/services/status"
)

type CameraHandler struct {
	cfg    *config.Config
	worker *pipeline.Worker
	status *status.Publisher
	frames *publisher.Publisher
}

func NewCameraHandler(cfg *config.Config, worker *pipeline.Worker, statusPub *status.Publisher, frames *publisher.Publisher) *CameraHandler {
	return &CameraHandler{
		cfg:    cfg,
		worker: worker,
		status: statusPub,
		frames: frames,
	}
}

// @Summary Camera status
// @Description Get the latest camera status: recording state, frame rate and motion flag
// @Tags camera
// @Produce json
// @Success 200 {object} models.StatusUpdate
// @Router /api/v1/camera/status [get]
func (h *CameraHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.status.Current())
}

// @Summary Live MJPEG stream
// @Description Stream the camera feed as multipart MJPEG
// @Tags camera
// @Produce mpfd
// @Success 200 {string} string "multipart/x-mixed-replace stream"
// @Router /api/v1/camera/stream [get]
func (h *CameraHandler) Stream(c *gin.Context) {
	h.frames.StreamMJPEG(c.Writer, c.Request, h.cfg.CameraID)
}

// @Summary Camera snapshot
// @Description Get the most recent frame as a JPEG image
// @Tags camera
// @Produce jpeg
// @Success 200 {string} string "JPEG image"
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/camera/snapshot [get]
func (h *CameraHandler) Snapshot(c *gin.Context) {
	data, ok := h.frames.Snapshot(h.cfg.CameraID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no frame captured yet"})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", data)
}

type RecordStartResponse struct {
	Status string `json:"status" example:"recording triggered"`
	State  string `json:"state" example:"recording"`
}

// @Summary Start recording
// @Description Trigger a recording session manually; the pre-roll buffer is flushed into it like a motion trigger
// @Tags camera
// @Produce json
// @Success 200 {object} RecordStartResponse
// @Router /api/v1/camera/record/start [post]
func (h *CameraHandler) StartRecording(c *gin.Context) {
	h.worker.TriggerRecording()
	c.JSON(http.StatusOK, RecordStartResponse{
		Status: "recording triggered",
		State:  string(h.worker.State()),
	})
}

// @Summary Stop recording
// @Description Finalize the in-flight recording session immediately
// @Tags camera
// @Produce json
// @Success 200 {object} models.SessionInfo
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/camera/record/stop [post]
func (h *CameraHandler) StopRecording(c *gin.Context) {
	info, err := h.worker.StopRecording()
	if err != nil {
		if errors.Is(err, recorder.ErrNotRecording) {
			c.JSON(http.StatusConflict, gin.H{"error": "no recording in progress"})
			return
		}
		logging.Error(c).Err(err).Msg("Failed to finalize recording")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}
