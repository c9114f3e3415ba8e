package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Application
	Version     string
	Environment string
	DeviceID    string
	Port        int
	LogLevel    string

	// Logdy (lightweight web log viewer)
	LogdyEnabled bool
	LogdyHost    string
	LogdyPort    int

	// NATS (status and recording events)
	NatsURL            string
	NatsConnectTimeout time.Duration
	NatsReconnectWait  time.Duration
	NatsMaxReconnects  int
	NatsDrainTimeout   time.Duration

	// Camera
	CameraID     string
	CameraDevice string
	CameraMock   bool
	FrameWidth   int
	FrameHeight  int

	// Motion detection and recording (runtime adjustable, see Motion())
	MotionSensitivity int
	MinMotionArea     int
	PreRollDuration   time.Duration
	PostRollDuration  time.Duration
	FrameRate         int
	MotionOverlay     bool

	// Recording output
	RecordingsDir  string
	RecordingCodec string
	JPEGQuality    int

	// Storage accounting
	StorageLimit     int64
	WarningThreshold float64
	RetentionDays    int
	CleanupInterval  time.Duration

	// Status publishing
	StatusInterval time.Duration

	// Persistence
	DatabasePath string

	// Swagger Configuration
	SwaggerHost string
	SwaggerPort int

	// Graceful Shutdown
	ShutdownTimeout time.Duration
}

// MotionSettings is the runtime-adjustable subset of settings driving the
// camera pipeline. It is applied atomically via the pipeline worker.
type MotionSettings struct {
	MotionSensitivity int           `json:"motion_sensitivity"`
	MinMotionArea     int           `json:"min_motion_area"`
	PreRollDuration   time.Duration `json:"pre_roll_duration"`
	PostRollDuration  time.Duration `json:"post_roll_duration"`
	FrameRate         int           `json:"frame_rate"`
}

// StorageSettings is the runtime-adjustable storage accounting subset.
type StorageSettings struct {
	StorageLimit     int64   `json:"storage_limit"`
	WarningThreshold float64 `json:"warning_threshold"`
	RetentionDays    int     `json:"retention_days"`
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file found, using environment variables and defaults")
	} else {
		log.Info().Msg("Loaded configuration from .env file")
	}

	return &Config{
		// Application
		Version:     getEnv("VERSION", "1.0.0"),
		Environment: getEnv("ENVIRONMENT", "development"),
		DeviceID:    getEnv("DEVICE_ID", "feeder-1"),
		Port:        getEnvInt("PORT", 8000),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Logdy (lightweight web log viewer)
		LogdyEnabled: getEnvBool("LOGDY_ENABLED", false),
		LogdyHost:    getEnv("LOGDY_HOST", "localhost"),
		LogdyPort:    getEnvInt("LOGDY_PORT", 8080),

		// NATS
		NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		NatsConnectTimeout: getEnvDuration("NATS_CONNECT_TIMEOUT", 10*time.Second),
		NatsReconnectWait:  getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		NatsMaxReconnects:  getEnvInt("NATS_MAX_RECONNECTS", -1), // -1 = unlimited
		NatsDrainTimeout:   getEnvDuration("NATS_DRAIN_TIMEOUT", 5*time.Second),

		// Camera
		CameraID:     getEnv("CAMERA_ID", "feeder-cam"),
		CameraDevice: getEnv("CAMERA_DEVICE", "0"),
		CameraMock:   getEnvBool("CAMERA_MOCK", false),
		FrameWidth:   getEnvInt("FRAME_WIDTH", 640),
		FrameHeight:  getEnvInt("FRAME_HEIGHT", 480),

		// Motion detection and recording
		MotionSensitivity: getEnvInt("MOTION_SENSITIVITY", 25),
		MinMotionArea:     getEnvInt("MIN_MOTION_AREA", 500),
		PreRollDuration:   getEnvDuration("PRE_ROLL_DURATION", 5*time.Second),
		PostRollDuration:  getEnvDuration("POST_ROLL_DURATION", 10*time.Second),
		FrameRate:         getEnvInt("FRAME_RATE", 15),
		MotionOverlay:     getEnvBool("MOTION_OVERLAY", false),

		// Recording output
		RecordingsDir:  getEnv("RECORDINGS_DIR", "recordings"),
		RecordingCodec: getEnv("RECORDING_CODEC", "MJPG"),
		JPEGQuality:    getEnvInt("JPEG_QUALITY", 90),

		// Storage accounting
		StorageLimit:     getEnvInt64("MAX_STORAGE_BYTES", 10*1024*1024*1024), // 10 GB
		WarningThreshold: getEnvFloat("WARNING_THRESHOLD", 0.85),
		RetentionDays:    getEnvInt("RETENTION_DAYS", 14),
		CleanupInterval:  getEnvDuration("CLEANUP_INTERVAL", 1*time.Hour),

		// Status publishing
		StatusInterval: getEnvDuration("STATUS_INTERVAL", 1*time.Second),

		// Persistence
		DatabasePath: getEnv("DATABASE_PATH", "birdsos.db"),

		// Swagger Configuration
		SwaggerHost: getEnv("SWAGGER_HOST", "localhost"),
		SwaggerPort: getEnvInt("SWAGGER_PORT", 8000),

		// Graceful Shutdown
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// envFile is where runtime settings changes are persisted so they
// survive a restart.
const envFile = ".env"

// SaveMotion writes motion settings back to the .env file, preserving any
// other entries in it.
func SaveMotion(settings MotionSettings) error {
	env, err := godotenv.Read(envFile)
	if err != nil {
		env = map[string]string{}
	}
	env["MOTION_SENSITIVITY"] = strconv.Itoa(settings.MotionSensitivity)
	env["MIN_MOTION_AREA"] = strconv.Itoa(settings.MinMotionArea)
	env["PRE_ROLL_DURATION"] = settings.PreRollDuration.String()
	env["POST_ROLL_DURATION"] = settings.PostRollDuration.String()
	env["FRAME_RATE"] = strconv.Itoa(settings.FrameRate)
	return godotenv.Write(env, envFile)
}

// Motion returns the runtime-adjustable motion settings.
func (c *Config) Motion() MotionSettings {
	return MotionSettings{
		MotionSensitivity: c.MotionSensitivity,
		MinMotionArea:     c.MinMotionArea,
		PreRollDuration:   c.PreRollDuration,
		PostRollDuration:  c.PostRollDuration,
		FrameRate:         c.FrameRate,
	}
}

// Storage returns the runtime-adjustable storage settings.
func (c *Config) Storage() StorageSettings {
	return StorageSettings{
		StorageLimit:     c.StorageLimit,
		WarningThreshold: c.WarningThreshold,
		RetentionDays:    c.RetentionDays,
	}
}

// Validate rejects invalid settings at configuration time so the frame
// pipeline never has to reason about them.
func (c *Config) Validate() error {
	if err := c.Motion().Validate(); err != nil {
		return err
	}
	if err := c.Storage().Validate(); err != nil {
		return err
	}
	if c.FrameWidth <= 0 || c.FrameHeight <= 0 {
		return fmt.Errorf("frame dimensions must be positive, got %dx%d", c.FrameWidth, c.FrameHeight)
	}
	if c.StatusInterval <= 0 {
		return fmt.Errorf("status interval must be positive, got %s", c.StatusInterval)
	}
	return nil
}

// Validate checks the motion settings ranges.
func (ms MotionSettings) Validate() error {
	if ms.MotionSensitivity < 0 || ms.MotionSensitivity > 255 {
		return fmt.Errorf("motion sensitivity must be in [0,255], got %d", ms.MotionSensitivity)
	}
	if ms.MinMotionArea <= 0 {
		return fmt.Errorf("minimum motion area must be positive, got %d", ms.MinMotionArea)
	}
	if ms.PreRollDuration <= 0 {
		return fmt.Errorf("pre-roll duration must be positive, got %s", ms.PreRollDuration)
	}
	if ms.PostRollDuration <= 0 {
		return fmt.Errorf("post-roll duration must be positive, got %s", ms.PostRollDuration)
	}
	if ms.FrameRate <= 0 {
		return fmt.Errorf("frame rate must be positive, got %d", ms.FrameRate)
	}
	return nil
}

// PreRollFrames returns the pre-roll ring buffer capacity in frames.
func (ms MotionSettings) PreRollFrames() int {
	frames := int(ms.PreRollDuration.Seconds() * float64(ms.FrameRate))
	if frames < 1 {
		frames = 1
	}
	return frames
}

// Validate checks the storage settings ranges.
func (ss StorageSettings) Validate() error {
	if ss.StorageLimit <= 0 {
		return fmt.Errorf("storage limit must be positive, got %d", ss.StorageLimit)
	}
	if ss.WarningThreshold < 0.5 || ss.WarningThreshold > 0.95 {
		return fmt.Errorf("warning threshold must be in [0.5,0.95], got %.2f", ss.WarningThreshold)
	}
	if ss.RetentionDays < 1 || ss.RetentionDays > 365 {
		return fmt.Errorf("retention days must be in [1,365], got %d", ss.RetentionDays)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
