package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"birdsos/internal/config"
	"birdsos/internal/database"
	"birdsos/internal/logging"
	"birdsos/internal/services/pipeline"
	"birdsos/internal/services/storage"
)

type ConfigHandler struct {
	worker  *pipeline.Worker
	storage *storage.Service
	db      *database.Database
}

func NewConfigHandler(worker *pipeline.Worker, store *storage.Service, db *database.Database) *ConfigHandler {
	return &ConfigHandler{worker: worker, storage: store, db: db}
}

// MotionSettingsPayload carries motion settings over the API with
// durations in seconds.
type MotionSettingsPayload struct {
	MotionSensitivity int     `json:"motion_sensitivity" example:"25"`
	MinMotionArea     int     `json:"min_motion_area" example:"500"`
	PreRollDuration   float64 `json:"pre_roll_duration" example:"5"`
	PostRollDuration  float64 `json:"post_roll_duration" example:"10"`
	FrameRate         int     `json:"frame_rate" example:"15"`
}

func motionPayload(ms config.MotionSettings) MotionSettingsPayload {
	return MotionSettingsPayload{
		MotionSensitivity: ms.MotionSensitivity,
		MinMotionArea:     ms.MinMotionArea,
		PreRollDuration:   ms.PreRollDuration.Seconds(),
		PostRollDuration:  ms.PostRollDuration.Seconds(),
		FrameRate:         ms.FrameRate,
	}
}

func (p MotionSettingsPayload) settings() config.MotionSettings {
	return config.MotionSettings{
		MotionSensitivity: p.MotionSensitivity,
		MinMotionArea:     p.MinMotionArea,
		PreRollDuration:   time.Duration(p.PreRollDuration * float64(time.Second)),
		PostRollDuration:  time.Duration(p.PostRollDuration * float64(time.Second)),
		FrameRate:         p.FrameRate,
	}
}

// MotionSettingsRequest updates motion settings. Omitted fields keep
// their current value.
type MotionSettingsRequest struct {
	MotionSensitivity *int     `json:"motion_sensitivity,omitempty"`
	MinMotionArea     *int     `json:"min_motion_area,omitempty"`
	PreRollDuration   *float64 `json:"pre_roll_duration,omitempty"`
	PostRollDuration  *float64 `json:"post_roll_duration,omitempty"`
	FrameRate         *int     `json:"frame_rate,omitempty"`
}

func (r MotionSettingsRequest) apply(ms config.MotionSettings) config.MotionSettings {
	if r.MotionSensitivity != nil {
		ms.MotionSensitivity = *r.MotionSensitivity
	}
	if r.MinMotionArea != nil {
		ms.MinMotionArea = *r.MinMotionArea
	}
	if r.PreRollDuration != nil {
		ms.PreRollDuration = time.Duration(*r.PreRollDuration * float64(time.Second))
	}
	if r.PostRollDuration != nil {
		ms.PostRollDuration = time.Duration(*r.PostRollDuration * float64(time.Second))
	}
	if r.FrameRate != nil {
		ms.FrameRate = *r.FrameRate
	}
	return ms
}

// @Summary Get motion settings
// @Description Get the motion detection and recording settings currently driving the pipeline
// @Tags config
// @Produce json
// @Success 200 {object} MotionSettingsPayload
// @Router /api/v1/config/settings [get]
func (h *ConfigHandler) GetMotionSettings(c *gin.Context) {
	c.JSON(http.StatusOK, motionPayload(h.worker.Settings()))
}

// @Summary Update motion settings
// @Description Update motion detection and recording settings; the pipeline swaps them in between frames
// @Tags config
// @Accept json
// @Produce json
// @Param request body MotionSettingsRequest true "Settings to change"
// @Success 200 {object} MotionSettingsPayload
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/config/settings [post]
func (h *ConfigHandler) UpdateMotionSettings(c *gin.Context) {
	var req MotionSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings := req.apply(h.worker.Settings())
	if err := h.worker.ApplySettings(settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := config.SaveMotion(settings); err != nil {
		logging.Error(c).Err(err).Msg("Failed to persist motion settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settings applied but not persisted"})
		return
	}
	c.JSON(http.StatusOK, motionPayload(settings))
}

// StorageSettingsRequest updates storage settings. Omitted fields keep
// their current value.
type StorageSettingsRequest struct {
	StorageLimit     *int64   `json:"storage_limit,omitempty"`
	WarningThreshold *float64 `json:"warning_threshold,omitempty"`
	RetentionDays    *int     `json:"retention_days,omitempty"`
}

func (r StorageSettingsRequest) apply(ss config.StorageSettings) config.StorageSettings {
	if r.StorageLimit != nil {
		ss.StorageLimit = *r.StorageLimit
	}
	if r.WarningThreshold != nil {
		ss.WarningThreshold = *r.WarningThreshold
	}
	if r.RetentionDays != nil {
		ss.RetentionDays = *r.RetentionDays
	}
	return ss
}

// @Summary Get storage settings
// @Description Get the storage limit, warning threshold and retention period
// @Tags config
// @Produce json
// @Success 200 {object} config.StorageSettings
// @Router /api/v1/config/storage [get]
func (h *ConfigHandler) GetStorageSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.storage.Settings())
}

// @Summary Update storage settings
// @Description Update the storage limit, warning threshold or retention period
// @Tags config
// @Accept json
// @Produce json
// @Param request body StorageSettingsRequest true "Settings to change"
// @Success 200 {object} config.StorageSettings
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/config/storage [post]
func (h *ConfigHandler) UpdateStorageSettings(c *gin.Context) {
	var req StorageSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings := req.apply(h.storage.Settings())
	if err := h.storage.UpdateSettings(settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// ProfilePayload is one named settings profile.
type ProfilePayload struct {
	Name      string                 `json:"name" example:"night"`
	Motion    MotionSettingsPayload  `json:"motion"`
	Storage   config.StorageSettings `json:"storage"`
	CreatedAt time.Time              `json:"created_at,omitempty"`
	UpdatedAt time.Time              `json:"updated_at,omitempty"`
}

func profilePayload(record *database.ProfileRecord) ProfilePayload {
	return ProfilePayload{
		Name:      record.Name,
		Motion:    motionPayload(record.Motion),
		Storage:   record.Storage,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

// @Summary List profiles
// @Description Get every saved settings profile, ordered by name
// @Tags config
// @Produce json
// @Success 200 {array} ProfilePayload
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/config/profiles [get]
func (h *ConfigHandler) ListProfiles(c *gin.Context) {
	records, err := h.db.ListProfiles()
	if err != nil {
		logging.Error(c).Err(err).Msg("Failed to list profiles")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list profiles"})
		return
	}

	profiles := make([]ProfilePayload, 0, len(records))
	for _, record := range records {
		profiles = append(profiles, profilePayload(record))
	}
	c.JSON(http.StatusOK, profiles)
}

// @Summary Get a profile
// @Description Get one saved settings profile by name
// @Tags config
// @Produce json
// @Param name path string true "Profile name"
// @Success 200 {object} ProfilePayload
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/config/profiles/{name} [get]
func (h *ConfigHandler) GetProfile(c *gin.Context) {
	record, err := h.profileByName(c)
	if record == nil || err != nil {
		return
	}
	c.JSON(http.StatusOK, profilePayload(record))
}

// @Summary Save a profile
// @Description Create or replace a named settings profile
// @Tags config
// @Accept json
// @Produce json
// @Param request body ProfilePayload true "Profile"
// @Success 200 {object} ProfilePayload
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/config/profiles [post]
func (h *ConfigHandler) SaveProfile(c *gin.Context) {
	var req ProfilePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile name is required"})
		return
	}

	motion := req.Motion.settings()
	if err := motion.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Storage.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record := &database.ProfileRecord{
		Name:    req.Name,
		Motion:  motion,
		Storage: req.Storage,
	}
	if err := h.db.SaveProfile(record); err != nil {
		logging.Error(c).Err(err).Str("profile", req.Name).Msg("Failed to save profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save profile"})
		return
	}

	logging.Info(c).Str("profile", req.Name).Msg("Settings profile saved")
	saved, err := h.db.GetProfile(req.Name)
	if err != nil || saved == nil {
		c.JSON(http.StatusOK, req)
		return
	}
	c.JSON(http.StatusOK, profilePayload(saved))
}

// @Summary Delete a profile
// @Description Delete one saved settings profile by name
// @Tags config
// @Produce json
// @Param name path string true "Profile name"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/config/profiles/{name} [delete]
func (h *ConfigHandler) DeleteProfile(c *gin.Context) {
	record, err := h.profileByName(c)
	if record == nil || err != nil {
		return
	}

	if err := h.db.DeleteProfile(record.Name); err != nil {
		logging.Error(c).Err(err).Str("profile", record.Name).Msg("Failed to delete profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete profile"})
		return
	}
	logging.Info(c).Str("profile", record.Name).Msg("Settings profile deleted")
	c.JSON(http.StatusOK, SuccessResponse{Message: "profile deleted"})
}

// @Summary Apply a profile
// @Description Apply a saved profile's motion and storage settings to the running pipeline
// @Tags config
// @Produce json
// @Param name path string true "Profile name"
// @Success 200 {object} ProfilePayload
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/config/profiles/{name}/apply [post]
func (h *ConfigHandler) ApplyProfile(c *gin.Context) {
	record, err := h.profileByName(c)
	if record == nil || err != nil {
		return
	}

	if err := h.worker.ApplySettings(record.Motion); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.storage.UpdateSettings(record.Storage); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := config.SaveMotion(record.Motion); err != nil {
		logging.Error(c).Err(err).Str("profile", record.Name).Msg("Failed to persist motion settings")
	}

	logging.Info(c).Str("profile", record.Name).Msg("Settings profile applied")
	c.JSON(http.StatusOK, profilePayload(record))
}

// profileByName loads the profile named in the route, writing the error
// response itself when the profile is missing or the lookup fails.
func (h *ConfigHandler) profileByName(c *gin.Context) (*database.ProfileRecord, error) {
	name := c.Param("name")
	record, err := h.db.GetProfile(name)
	if err != nil {
		logging.Error(c).Err(err).Str("profile", name).Msg("Profile lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile lookup failed"})
		return nil, err
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return nil, nil
	}
	return record, nil
}
