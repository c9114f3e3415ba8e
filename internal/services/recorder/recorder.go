package recorder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"birdsos/internal/config"
	"birdsos/internal/models"
)

// ErrNotRecording is returned by Finalize when no session is in flight.
var ErrNotRecording = errors.New("no recording in progress")

// StorageGuard is consulted before a new session file is opened.
// Implementations may free space or refuse the session outright.
type StorageGuard interface {
	EnsureHeadroom() error
}

// SessionHook receives every finalized or failed session. It is invoked
// from the frame path and must not block.
type SessionHook func(models.SessionInfo)

// Recorder drives the idle/recording state machine for one camera. It owns
// the pre-roll buffer and the session file handle. Process and Stop must be
// called from a single goroutine; the read accessors are safe from any.
type Recorder struct {
	cameraID string
	dir      string
	fps      int
	postRoll time.Duration
	factory  WriterFactory
	guard    StorageGuard
	hook     SessionHook

	mu          sync.Mutex
	state       models.RecordingState
	preRoll     *RingBuffer
	writer      SessionWriter
	sessionID   string
	path        string
	startTime   time.Time
	lastWritten time.Time
	frameCount  int
	lastMotion  time.Time
	lastSession *models.SessionInfo
}

func New(cfg *config.Config, factory WriterFactory, guard StorageGuard, hook SessionHook) *Recorder {
	settings := cfg.Motion()
	return &Recorder{
		cameraID: cfg.CameraID,
		dir:      cfg.RecordingsDir,
		fps:      settings.FrameRate,
		postRoll: settings.PostRollDuration,
		factory:  factory,
		guard:    guard,
		hook:     hook,
		state:    models.RecordingStateIdle,
		preRoll:  NewRingBuffer(settings.PreRollFrames()),
	}
}

// Process advances the state machine with one captured frame and the motion
// decision made for it. Post-roll expiry is measured against the frame's
// own timestamp, so replayed frame sequences behave identically to live
// capture.
func (r *Recorder) Process(frame *models.Frame, motion bool) error {
	r.mu.Lock()
	var emit *models.SessionInfo
	var err error
	if r.state == models.RecordingStateRecording {
		emit, err = r.processRecording(frame, motion)
	} else {
		emit, err = r.processIdle(frame, motion)
	}
	r.mu.Unlock()

	if emit != nil && r.hook != nil {
		r.hook(*emit)
	}
	return err
}

func (r *Recorder) processIdle(frame *models.Frame, motion bool) (*models.SessionInfo, error) {
	if !motion {
		r.preRoll.Push(frame)
		return nil, nil
	}

	if r.guard != nil {
		if err := r.guard.EnsureHeadroom(); err != nil {
			r.preRoll.Push(frame)
			return nil, fmt.Errorf("recording not started: %w", err)
		}
	}

	if emit, err := r.openSession(frame); err != nil {
		return emit, err
	}
	if err := r.append(frame); err != nil {
		return r.discard(err)
	}
	r.lastMotion = frame.Timestamp

	log.Info().
		Str("camera_id", r.cameraID).
		Str("session_id", r.sessionID).
		Str("path", r.path).
		Int("pre_roll_frames", r.frameCount-1).
		Msg("Recording session started")
	return nil, nil
}

func (r *Recorder) processRecording(frame *models.Frame, motion bool) (*models.SessionInfo, error) {
	if err := r.append(frame); err != nil {
		return r.discard(err)
	}
	if motion {
		r.lastMotion = frame.Timestamp
	}
	if frame.Timestamp.Sub(r.lastMotion) >= r.postRoll {
		return r.finalize()
	}
	return nil, nil
}

// openSession opens the session file and flushes the pre-roll buffer into
// it, oldest frame first. The triggering frame is not written here.
func (r *Recorder) openSession(trigger *models.Frame) (*models.SessionInfo, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		r.preRoll.Push(trigger)
		return nil, fmt.Errorf("failed to create recordings directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s.avi", r.cameraID, trigger.Timestamp.Format("20060102_150405"))
	path := filepath.Join(r.dir, name)

	writer, err := r.factory(path, trigger.Width, trigger.Height, r.fps)
	if err != nil {
		// The session never opened; keep the pre-roll intact so the
		// next trigger still has history behind it.
		r.preRoll.Push(trigger)
		return nil, fmt.Errorf("failed to open session file: %w", err)
	}

	r.state = models.RecordingStateRecording
	r.writer = writer
	r.sessionID = uuid.NewString()
	r.path = path
	r.frameCount = 0

	for _, buffered := range r.preRoll.Drain() {
		if err := r.append(buffered); err != nil {
			return r.discard(err)
		}
	}
	return nil, nil
}

func (r *Recorder) append(frame *models.Frame) error {
	if err := r.writer.Write(frame); err != nil {
		return err
	}
	if r.frameCount == 0 {
		r.startTime = frame.Timestamp
	}
	r.frameCount++
	r.lastWritten = frame.Timestamp
	return nil
}

// finalize closes the session file and publishes the session metadata.
func (r *Recorder) finalize() (*models.SessionInfo, error) {
	writer := r.writer
	r.writer = nil
	if err := writer.Close(); err != nil {
		return r.discard(fmt.Errorf("failed to finalize %s: %w", r.path, err))
	}

	info := r.sessionInfo(models.SessionStatusOK, "")
	log.Info().
		Str("camera_id", r.cameraID).
		Str("session_id", info.ID).
		Str("path", info.Path).
		Int("frames", info.FrameCount).
		Dur("duration", info.Duration).
		Msg("Recording session finalized")

	r.resetSession()
	r.lastSession = &info
	return &info, nil
}

// discard abandons the current session after a write failure: the partial
// file is deleted and the recorder returns to idle. There is no retry.
func (r *Recorder) discard(cause error) (*models.SessionInfo, error) {
	if r.writer != nil {
		r.writer.Close()
		r.writer = nil
	}
	if r.path != "" {
		if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", r.path).Msg("Failed to remove partial recording")
		}
	}

	info := r.sessionInfo(models.SessionStatusFailed, cause.Error())
	log.Error().
		Err(cause).
		Str("camera_id", r.cameraID).
		Str("session_id", info.ID).
		Msg("Recording session aborted, partial file discarded")

	r.resetSession()
	r.lastSession = &info
	return &info, fmt.Errorf("recording session aborted: %w", cause)
}

func (r *Recorder) sessionInfo(status models.SessionStatus, errMsg string) models.SessionInfo {
	info := models.SessionInfo{
		ID:         r.sessionID,
		CameraID:   r.cameraID,
		Path:       r.path,
		FrameCount: r.frameCount,
		StartTime:  r.startTime,
		EndTime:    r.lastWritten,
		Status:     status,
		Error:      errMsg,
	}
	if r.frameCount > 0 {
		info.Duration = r.lastWritten.Sub(r.startTime)
	}
	return info
}

func (r *Recorder) resetSession() {
	r.state = models.RecordingStateIdle
	r.writer = nil
	r.sessionID = ""
	r.path = ""
	r.startTime = time.Time{}
	r.lastWritten = time.Time{}
	r.frameCount = 0
	r.lastMotion = time.Time{}
}

// UpdateSettings applies new timing parameters. The pre-roll buffer is
// rebuilt at the new capacity, keeping the newest frames it held. The
// frame rate takes effect when the next session file is opened.
func (r *Recorder) UpdateSettings(settings config.MotionSettings) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fps = settings.FrameRate
	r.postRoll = settings.PostRollDuration

	capacity := settings.PreRollFrames()
	if capacity != r.preRoll.Cap() {
		rebuilt := NewRingBuffer(capacity)
		for _, frame := range r.preRoll.Drain() {
			rebuilt.Push(frame)
		}
		r.preRoll = rebuilt
	}
}

// Finalize closes the in-flight session immediately instead of waiting
// for the post-roll to expire. Unlike Process it may be called from any
// goroutine; the manual stop endpoint relies on that.
func (r *Recorder) Finalize() (*models.SessionInfo, error) {
	r.mu.Lock()
	if r.state != models.RecordingStateRecording {
		r.mu.Unlock()
		return nil, ErrNotRecording
	}
	log.Info().Str("camera_id", r.cameraID).Str("session_id", r.sessionID).Msg("Finalizing recording on request")
	emit, err := r.finalize()
	r.mu.Unlock()

	if emit != nil && r.hook != nil {
		r.hook(*emit)
	}
	return emit, err
}

// Stop finalizes any in-flight session. Call it on shutdown, after the
// frame feed has stopped.
func (r *Recorder) Stop() {
	r.mu.Lock()
	var emit *models.SessionInfo
	if r.state == models.RecordingStateRecording {
		log.Info().Str("camera_id", r.cameraID).Msg("Finalizing recording on shutdown")
		emit, _ = r.finalize()
	}
	r.preRoll.Clear()
	r.mu.Unlock()

	if emit != nil && r.hook != nil {
		r.hook(*emit)
	}
}

func (r *Recorder) State() models.RecordingState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// LastSession returns a copy of the most recently closed session, or nil.
func (r *Recorder) LastSession() *models.SessionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastSession == nil {
		return nil
	}
	session := *r.lastSession
	return &session
}

// PreRollFrames reports how many frames are currently buffered ahead of a
// trigger.
func (r *Recorder) PreRollFrames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.preRoll.Len()
}
