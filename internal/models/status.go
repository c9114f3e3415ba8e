package models

import (
	"time"
)

// StatusUpdate is the sole payload the web layer reads from the camera
// pipeline. It is emitted after every recorder state transition and, for
// liveness, at a bounded minimum interval even without transitions.
type StatusUpdate struct {
	CameraID       string         `json:"camera_id"`
	State          RecordingState `json:"state"`
	FPS            float64        `json:"fps"`
	MotionDetected bool           `json:"motion_detected"`
	LastSession    *SessionInfo   `json:"last_session"`
	Error          string         `json:"error,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Clone returns a copy safe to hand to another goroutine.
func (su StatusUpdate) Clone() StatusUpdate {
	out := su
	if su.LastSession != nil {
		session := *su.LastSession
		out.LastSession = &session
	}
	return out
}
