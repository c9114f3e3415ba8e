package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"birdsos/internal/database"
	"birdsos/internal/logging"
	"birdsos/internal/services/storage"
)

type MaintenanceHandler struct {
	storage *storage.Service
	db      *database.Database
}

func NewMaintenanceHandler(store *storage.Service, db *database.Database) *MaintenanceHandler {
	return &MaintenanceHandler{storage: store, db: db}
}

// @Summary Storage status
// @Description Get the recording inventory and how it stands against the storage budget
// @Tags maintenance
// @Produce json
// @Success 200 {object} storage.Statistics
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/maintenance/storage/status [get]
func (h *MaintenanceHandler) StorageStatus(c *gin.Context) {
	stats, err := h.storage.Statistics()
	if err != nil {
		logging.Error(c).Err(err).Msg("Failed to collect storage statistics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to collect storage statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

type CleanupResponse struct {
	RemovedFiles   int   `json:"removed_files"`
	FreedBytes     int64 `json:"freed_bytes"`
	RemovedEmpty   int   `json:"removed_empty"`
	PrunedSessions int64 `json:"pruned_sessions"`
}

// @Summary Run storage cleanup
// @Description Prune recordings past retention, delete empty files and drop session rows older than the retention period
// @Tags maintenance
// @Produce json
// @Success 200 {object} CleanupResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/maintenance/storage/cleanup [post]
func (h *MaintenanceHandler) Cleanup(c *gin.Context) {
	removed, freed, err := h.storage.Cleanup()
	if err != nil {
		logging.Error(c).Err(err).Msg("Storage cleanup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	empty, err := h.storage.RemoveEmptyFiles()
	if err != nil {
		logging.Warn(c).Err(err).Msg("Empty file sweep failed")
	}

	var pruned int64
	if h.db != nil {
		cutoff := time.Now().AddDate(0, 0, -h.storage.Settings().RetentionDays)
		pruned, err = h.db.DeleteOldSessions(cutoff)
		if err != nil {
			logging.Warn(c).Err(err).Msg("Session row pruning failed")
		}
	}

	c.JSON(http.StatusOK, CleanupResponse{
		RemovedFiles:   removed,
		FreedBytes:     freed,
		RemovedEmpty:   empty,
		PrunedSessions: pruned,
	})
}
