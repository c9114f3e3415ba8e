package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"birdsos/internal/database"
	"birdsos/internal/logging"
	"birdsos/internal/models"
	"birdsos/internal/services/storage"
)

type RecordingsHandler struct {
	storage *storage.Service
	db      *database.Database
}

func NewRecordingsHandler(store *storage.Service, db *database.Database) *RecordingsHandler {
	return &RecordingsHandler{storage: store, db: db}
}

type RecordingsResponse struct {
	Count      int                    `json:"count"`
	TotalBytes int64                  `json:"total_bytes"`
	Recordings []models.RecordingFile `json:"recordings"`
}

// @Summary List recordings
// @Description Get all recording files on disk, newest first
// @Tags recordings
// @Produce json
// @Param limit query int false "Maximum number of files to return"
// @Success 200 {object} RecordingsResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/recordings [get]
func (h *RecordingsHandler) ListFiles(c *gin.Context) {
	files, err := h.storage.Files()
	if err != nil {
		logging.Error(c).Err(err).Msg("Failed to list recordings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list recordings"})
		return
	}

	var total int64
	for _, f := range files {
		total += f.Size
	}
	count := len(files)

	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit >= 0 && limit < len(files) {
			files = files[:limit]
		}
	}

	c.JSON(http.StatusOK, RecordingsResponse{
		Count:      count,
		TotalBytes: total,
		Recordings: files,
	})
}

// @Summary List recording sessions
// @Description Get recorded session metadata, newest first
// @Tags recordings
// @Produce json
// @Param camera_id query string false "Filter by camera"
// @Param since query string false "RFC 3339 lower bound on start time"
// @Param limit query int false "Maximum number of sessions (default 50)"
// @Success 200 {array} models.SessionInfo
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/recordings/sessions [get]
func (h *RecordingsHandler) ListSessions(c *gin.Context) {
	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	var since *time.Time
	if sinceStr := c.Query("since"); sinceStr != "" {
		parsed, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid since timestamp: %v", err)})
			return
		}
		since = &parsed
	}

	sessions, err := h.db.ListSessions(c.Query("camera_id"), since, limit)
	if err != nil {
		logging.Error(c).Err(err).Msg("Failed to list sessions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sessions"})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// @Summary Download a recording
// @Description Download one recording file by name
// @Tags recordings
// @Produce application/octet-stream
// @Param name path string true "Recording file name"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/recordings/{name}/download [get]
func (h *RecordingsHandler) Download(c *gin.Context) {
	name := c.Param("name")
	path, err := h.storage.FilePath(name)
	if err != nil {
		respondFileError(c, name, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Accept-Ranges", "bytes")
	c.File(path)
}

// @Summary Delete a recording
// @Description Delete one recording file by name or session id
// @Tags recordings
// @Produce json
// @Param name path string true "Recording file name"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/recordings/{name} [delete]
func (h *RecordingsHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	if err := h.storage.DeleteFile(name); err != nil {
		respondFileError(c, name, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "recording deleted"})
}

func respondFileError(c *gin.Context, name string, err error) {
	switch {
	case errors.Is(err, storage.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recording name"})
	case errors.Is(err, os.ErrNotExist):
		c.JSON(http.StatusNotFound, gin.H{"error": "recording not found"})
	default:
		logging.Error(c).Err(err).Str("name", name).Msg("Recording access failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
