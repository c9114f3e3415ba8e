package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"birdsos/internal/config"
	"birdsos/internal/database"
	"birdsos/internal/hardware/camera"
	"birdsos/internal/hardware/gpio"
	"birdsos/internal/models"
	"birdsos/internal/services/messaging"
	"birdsos/internal/services/motion"
	"birdsos/internal/services/pipeline"
	"birdsos/internal/services/publisher"
	"birdsos/internal/services/recorder"
	"birdsos/internal/services/status"
	"birdsos/internal/services/storage"
	"birdsos/internal/ws"
)

// ServiceContainer holds every long-lived service and the wiring between
// them. The zero value is not usable; use NewServiceContainer.
type ServiceContainer struct {
	Config    *config.Config
	DB        *database.Database
	Storage   *storage.Service
	GPIO      *gpio.Manager
	Hub       *ws.Hub
	Status    *status.Publisher
	Frames    *publisher.Publisher
	Worker    *pipeline.Worker
	Messaging *messaging.Service
}

// NewServiceContainer builds and wires all services. NATS is optional: a
// failed broker connection degrades to local-only operation.
func NewServiceContainer(cfg *config.Config) (*ServiceContainer, error) {
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	store, err := storage.NewService(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	hub := ws.NewHub()
	statusPub := status.NewPublisher(cfg, ws.NewStatusRelay(hub))

	nats, err := messaging.NewService(cfg)
	if err != nil {
		log.Warn().Err(err).Str("url", cfg.NatsURL).Msg("NATS unavailable, continuing without messaging")
		nats = nil
	} else {
		statusPub.AddSink(nats)
	}

	gpioManager := gpio.NewManager(gpio.Detect())
	gpioManager.Subscribe(func(event gpio.PinEvent) {
		hub.Broadcast(ws.TopicGPIO, ws.NewGPIOMessage(event))
	})

	store.SetWarningFunc(func(st storage.Status) {
		hub.Broadcast(ws.TopicNotifications,
			ws.NewNotification("warning", "storage budget nearly exhausted", st))
	})

	frames := publisher.NewPublisher(cfg)

	source, err := camera.Detect(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	detector, err := motion.NewDetector(cfg.Motion())
	if err != nil {
		source.Close()
		db.Close()
		return nil, err
	}

	hook := sessionFanout(statusPub, hub, db, nats)
	rec := recorder.New(cfg, recorder.NewVideoWriter(cfg.RecordingCodec), store, hook)
	worker := pipeline.NewWorker(cfg, source, detector, rec, statusPub, frames)

	return &ServiceContainer{
		Config:    cfg,
		DB:        db,
		Storage:   store,
		GPIO:      gpioManager,
		Hub:       hub,
		Status:    statusPub,
		Frames:    frames,
		Worker:    worker,
		Messaging: nats,
	}, nil
}

// sessionFanout distributes finalized sessions to every consumer. It runs
// on the frame path, so the database insert and broker publish are pushed
// onto a short-lived goroutine.
func sessionFanout(statusPub *status.Publisher, hub *ws.Hub, db *database.Database, nats *messaging.Service) recorder.SessionHook {
	return func(info models.SessionInfo) {
		statusPub.Session(info)
		hub.Broadcast(ws.TopicNotifications, ws.NewSessionMessage(info))

		go func() {
			if err := db.SaveSession(&info); err != nil {
				log.Error().Err(err).Str("session_id", info.ID).Msg("Failed to persist session")
			}
			if nats != nil {
				nats.PublishSession(info)
			}
		}()
	}
}

// Start launches the background loops. Call it once, after the container
// is built.
func (sc *ServiceContainer) Start() {
	if removed, err := sc.Storage.RemoveEmptyFiles(); err != nil {
		log.Warn().Err(err).Msg("Startup sweep of empty recordings failed")
	} else if removed > 0 {
		log.Info().Int("removed", removed).Msg("Removed empty recordings from previous run")
	}

	sc.Storage.Start()
	sc.Status.Start()
	sc.Worker.Start()
}

// Shutdown stops everything in dependency order: the pipeline first so the
// last session finalizes, the broker drain and database close last.
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.Worker.Stop()
	sc.Status.Stop()
	sc.Storage.Stop()

	if err := sc.GPIO.Cleanup(); err != nil {
		log.Warn().Err(err).Msg("GPIO cleanup failed during shutdown")
	}
	sc.Hub.Close()
	sc.Frames.Shutdown()

	if sc.Messaging != nil {
		if err := sc.Messaging.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("NATS drain failed during shutdown")
		}
	}
	return sc.DB.Close()
}
