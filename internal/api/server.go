package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"birdsos/internal/api/handlers"
	"birdsos/internal/config"
	"birdsos/internal/services"
	"birdsos/internal/ws"
)

type Server struct {
	config *config.Config
	router *gin.Engine
	server *http.Server

	healthHandler      *handlers.HealthHandler
	cameraHandler      *handlers.CameraHandler
	recordingsHandler  *handlers.RecordingsHandler
	gpioHandler        *handlers.GPIOHandler
	configHandler      *handlers.ConfigHandler
	maintenanceHandler *handlers.MaintenanceHandler
	systemHandler      *handlers.SystemHandler
	wsHandler          *ws.Handler
}

func NewServer(cfg *config.Config, container *services.ServiceContainer) *Server {
	gin.SetMode(gin.ReleaseMode)

	return &Server{
		config:             cfg,
		router:             gin.New(),
		healthHandler:      handlers.NewHealthHandler(cfg),
		cameraHandler:      handlers.NewCameraHandler(cfg, container.Worker, container.Status, container.Frames),
		recordingsHandler:  handlers.NewRecordingsHandler(container.Storage, container.DB),
		gpioHandler:        handlers.NewGPIOHandler(container.GPIO),
		configHandler:      handlers.NewConfigHandler(container.Worker, container.Storage, container.DB),
		maintenanceHandler: handlers.NewMaintenanceHandler(container.Storage, container.DB),
		systemHandler:      handlers.NewSystemHandler(cfg, container.Status, container.Storage, container.GPIO),
		wsHandler:          ws.NewHandler(container.Hub),
	}
}

func (s *Server) Setup() error {
	s.setupMiddleware()
	s.setupRoutes()
	s.setupSwagger()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
	}
	return nil
}

// Router exposes the configured handler tree. Setup must have run.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	log.Info().Int("port", s.config.Port).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	log.Info().Msg("Stopping HTTP API")
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}
