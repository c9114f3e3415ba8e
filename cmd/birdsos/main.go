package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"birdsos/internal/api"
	"birdsos/internal/config"
	"birdsos/internal/logging"
	"birdsos/internal/services"
)

// @title BirdsOS API
// @version 1.0.0
// @description Motion-triggered bird feeder camera: event recording, live streaming and GPIO control
// @BasePath /
func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = time.RFC3339
	console := zerolog.ConsoleWriter{Out: os.Stderr}
	log.Logger = log.Output(console)

	// Load configuration
	cfg := config.Load()

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("Invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Tee logs into the embedded Logdy UI when enabled
	if cfg.LogdyEnabled {
		if tee, url, err := logging.StartLogdy(cfg); err == nil {
			log.Logger = log.Output(zerolog.MultiLevelWriter(console, tee))
			log.Info().Str("url", url).Msg("Streaming logs to Logdy")
		} else {
			log.Warn().Err(err).Msg("Logdy startup failed, console only")
		}
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("device_id", cfg.DeviceID).
		Str("camera_id", cfg.CameraID).
		Str("version", cfg.Version).
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Bool("mock_camera", cfg.CameraMock).
		Msg("Starting BirdsOS")

	// Build and start the camera pipeline and supporting services
	container, err := services.NewServiceContainer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build services")
	}
	container.Start()

	// Create and start server
	server := api.NewServer(cfg, container)
	if err := server.Setup(); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up API server")
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	if err := server.Stop(); err != nil {
		log.Error().Err(err).Msg("HTTP server forced to shut down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := container.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Service shutdown incomplete")
	} else {
		log.Info().Msg("Shutdown complete")
	}
}
