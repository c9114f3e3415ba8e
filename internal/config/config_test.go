package config

import (
	"testing"
	"time"
)

func validMotion() MotionSettings {
	return MotionSettings{
		MotionSensitivity: 25,
		MinMotionArea:     500,
		PreRollDuration:   5 * time.Second,
		PostRollDuration:  10 * time.Second,
		FrameRate:         15,
	}
}

func TestMotionSettings_Validate(t *testing.T) {
	if err := validMotion().Validate(); err != nil {
		t.Fatalf("valid settings rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*MotionSettings)
	}{
		{"negative sensitivity", func(ms *MotionSettings) { ms.MotionSensitivity = -1 }},
		{"sensitivity above 255", func(ms *MotionSettings) { ms.MotionSensitivity = 256 }},
		{"zero area", func(ms *MotionSettings) { ms.MinMotionArea = 0 }},
		{"negative area", func(ms *MotionSettings) { ms.MinMotionArea = -50 }},
		{"zero pre-roll", func(ms *MotionSettings) { ms.PreRollDuration = 0 }},
		{"zero post-roll", func(ms *MotionSettings) { ms.PostRollDuration = 0 }},
		{"zero frame rate", func(ms *MotionSettings) { ms.FrameRate = 0 }},
	}

	for _, tc := range cases {
		ms := validMotion()
		tc.mutate(&ms)
		if err := ms.Validate(); err == nil {
			t.Errorf("%s: expected validation error, got nil", tc.name)
		}
	}
}

func TestMotionSettings_ValidateBoundaries(t *testing.T) {
	ms := validMotion()
	ms.MotionSensitivity = 0
	if err := ms.Validate(); err != nil {
		t.Errorf("sensitivity 0 should be valid: %v", err)
	}
	ms.MotionSensitivity = 255
	if err := ms.Validate(); err != nil {
		t.Errorf("sensitivity 255 should be valid: %v", err)
	}
}

func TestMotionSettings_PreRollFrames(t *testing.T) {
	ms := validMotion()
	if got := ms.PreRollFrames(); got != 75 {
		t.Errorf("expected 75 pre-roll frames for 5s at 15fps, got %d", got)
	}

	ms.PreRollDuration = 500 * time.Millisecond
	ms.FrameRate = 30
	if got := ms.PreRollFrames(); got != 15 {
		t.Errorf("expected 15 pre-roll frames for 0.5s at 30fps, got %d", got)
	}

	// Degenerate settings still yield a usable buffer.
	ms.PreRollDuration = 1 * time.Millisecond
	ms.FrameRate = 1
	if got := ms.PreRollFrames(); got != 1 {
		t.Errorf("expected minimum capacity 1, got %d", got)
	}
}

func TestStorageSettings_Validate(t *testing.T) {
	ss := StorageSettings{StorageLimit: 10 << 30, WarningThreshold: 0.85, RetentionDays: 14}
	if err := ss.Validate(); err != nil {
		t.Fatalf("valid settings rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*StorageSettings)
	}{
		{"zero limit", func(s *StorageSettings) { s.StorageLimit = 0 }},
		{"threshold too low", func(s *StorageSettings) { s.WarningThreshold = 0.4 }},
		{"threshold too high", func(s *StorageSettings) { s.WarningThreshold = 0.96 }},
		{"retention too short", func(s *StorageSettings) { s.RetentionDays = 0 }},
		{"retention too long", func(s *StorageSettings) { s.RetentionDays = 400 }},
	}

	for _, tc := range cases {
		s := StorageSettings{StorageLimit: 10 << 30, WarningThreshold: 0.85, RetentionDays: 14}
		tc.mutate(&s)
		if err := s.Validate(); err == nil {
			t.Errorf("%s: expected validation error, got nil", tc.name)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.MotionSensitivity != 25 {
		t.Errorf("expected default sensitivity 25, got %d", cfg.MotionSensitivity)
	}
	if cfg.MinMotionArea != 500 {
		t.Errorf("expected default min area 500, got %d", cfg.MinMotionArea)
	}
	if cfg.PostRollDuration != 10*time.Second {
		t.Errorf("expected default post-roll 10s, got %s", cfg.PostRollDuration)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MOTION_SENSITIVITY", "40")
	t.Setenv("FRAME_RATE", "30")
	t.Setenv("CAMERA_MOCK", "true")

	cfg := Load()
	if cfg.MotionSensitivity != 40 {
		t.Errorf("expected sensitivity 40 from env, got %d", cfg.MotionSensitivity)
	}
	if cfg.FrameRate != 30 {
		t.Errorf("expected frame rate 30 from env, got %d", cfg.FrameRate)
	}
	if !cfg.CameraMock {
		t.Error("expected camera mock enabled from env")
	}
}
