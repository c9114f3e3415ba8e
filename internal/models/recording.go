package models

import (
	"time"
)

// RecordingState represents the recorder state machine state
type RecordingState string

const (
	RecordingStateIdle      RecordingState = "idle"
	RecordingStateRecording RecordingState = "recording"
)

// String returns the string representation of RecordingState
func (rs RecordingState) String() string {
	return string(rs)
}

// IsValid checks if the recording state is valid
func (rs RecordingState) IsValid() bool {
	switch rs {
	case RecordingStateIdle, RecordingStateRecording:
		return true
	default:
		return false
	}
}

// SessionStatus is the terminal outcome of a recording session
type SessionStatus string

const (
	SessionStatusOK     SessionStatus = "ok"
	SessionStatusFailed SessionStatus = "failed"
)

// SessionInfo is the metadata emitted when a recording session closes.
type SessionInfo struct {
	ID         string        `json:"id"`
	CameraID   string        `json:"camera_id"`
	Path       string        `json:"path"`
	FrameCount int           `json:"frame_count"`
	Duration   time.Duration `json:"duration"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	Status     SessionStatus `json:"status"`
	Error      string        `json:"error,omitempty"`
}

// RecordingFile describes one file in the recordings directory.
type RecordingFile struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}
