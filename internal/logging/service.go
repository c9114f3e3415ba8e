package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"birdsos/internal/config"
)

// NewServiceLogger returns a logger tagged with the device and service so
// lines from different feeders can be told apart when logs are aggregated.
func NewServiceLogger(cfg *config.Config, service string) zerolog.Logger {
	return log.With().Str("device_id", cfg.DeviceID).Str("service", service).Logger()
}

func WithCamera(base zerolog.Logger, cameraID string) zerolog.Logger {
	return base.With().Str("camera_id", cameraID).Logger()
}
