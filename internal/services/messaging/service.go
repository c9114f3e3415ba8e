package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"birdsos/internal/config"
	"birdsos/internal/models"
)

const subjectPrefix = "birdsos"

type Service struct {
	conn *nats.Conn
	cfg  *config.Config
}

func NewService(cfg *config.Config) (*Service, error) {
	opts := []nats.Option{
		nats.Name("birdsos"),
		nats.Timeout(cfg.NatsConnectTimeout),
		nats.ReconnectWait(cfg.NatsReconnectWait),
		nats.MaxReconnects(cfg.NatsMaxReconnects),
		nats.DrainTimeout(cfg.NatsDrainTimeout),
	}

	conn, err := nats.Connect(cfg.NatsURL, opts...)
	if err != nil {
		return nil, err
	}

	log.Info().Str("url", cfg.NatsURL).Msg("NATS connection established")

	return &Service{
		conn: conn,
		cfg:  cfg,
	}, nil
}

// StatusSubject is the subject carrying camera status snapshots.
func StatusSubject(cameraID string) string {
	return fmt.Sprintf("%s.status.%s", subjectPrefix, cameraID)
}

// SessionSubject is the subject carrying finalized session metadata.
func SessionSubject(cameraID string) string {
	return fmt.Sprintf("%s.recordings.%s", subjectPrefix, cameraID)
}

// PublishStatus forwards a status snapshot onto the event bus. It satisfies
// status.Sink, so publish failures are logged rather than returned.
func (s *Service) PublishStatus(update models.StatusUpdate) {
	if err := s.Publish(StatusSubject(update.CameraID), update); err != nil {
		log.Warn().Err(err).Str("camera_id", update.CameraID).Msg("Failed to publish status update")
	}
}

// PublishSession announces a finalized or failed recording session.
func (s *Service) PublishSession(info models.SessionInfo) {
	if err := s.Publish(SessionSubject(info.CameraID), info); err != nil {
		log.Warn().Err(err).Str("session_id", info.ID).Msg("Failed to publish session event")
	}
}

func (s *Service) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return s.conn.Publish(subject, payload)
}

func (s *Service) IsConnected() bool {
	return s.conn != nil && s.conn.IsConnected()
}

func (s *Service) Shutdown(ctx context.Context) error {
	if s.conn != nil {
		// Try graceful drain first, fall back to immediate close
		if err := s.conn.Drain(); err != nil {
			log.Warn().Err(err).Msg("Failed to drain NATS connection gracefully, closing immediately")
			s.conn.Close()
		}
	}
	return nil
}
