package camera

import (
	"errors"

	"github.com/rs/zerolog/log"

	"birdsos/internal/config"
	"birdsos/internal/models"
)

// ErrSourceUnavailable marks capture failures the pipeline cannot recover
// from. Transient read errors are returned without this sentinel and the
// caller skips the frame.
var ErrSourceUnavailable = errors.New("camera source unavailable")

// Source yields frames from one capture device. Implementations own the
// device handle exclusively; no other component touches the device.
type Source interface {
	Open() error
	Read() (*models.Frame, error)
	Close() error
	ID() string
}

// Detect opens the configured capture device, falling back to the mock
// pattern generator when the device is unavailable or mock mode is forced.
func Detect(cfg *config.Config) (Source, error) {
	if !cfg.CameraMock {
		device := NewDeviceSource(cfg)
		if err := device.Open(); err == nil {
			log.Info().
				Str("camera_id", cfg.CameraID).
				Str("device", cfg.CameraDevice).
				Msg("Camera device opened")
			return device, nil
		} else {
			log.Warn().
				Err(err).
				Str("device", cfg.CameraDevice).
				Msg("Camera device unavailable, falling back to mock source")
		}
	}

	mock := NewMockSource(cfg)
	if err := mock.Open(); err != nil {
		return nil, err
	}
	log.Info().Str("camera_id", cfg.CameraID).Msg("Mock camera source opened")
	return mock, nil
}
