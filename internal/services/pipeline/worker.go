package pipeline

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"birdsos/internal/config"
	"birdsos/internal/hardware/camera"
	"birdsos/internal/logging"
	"birdsos/internal/models"
	"birdsos/internal/services/motion"
	"birdsos/internal/services/recorder"
	"birdsos/internal/services/status"
)

// fpsWindow bounds the sliding window behind the reported frame rate.
const fpsWindow = 3 * time.Second

// readErrorBackoff paces the loop after a transient capture error, which
// returns without the usual frame-interval delay.
const readErrorBackoff = 100 * time.Millisecond

// FramePublisher receives every processed frame for live viewing.
type FramePublisher interface {
	PublishFrame(frame *models.Frame, regions []motion.Region) error
}

// Worker drives the capture loop for one camera: read, detect, record,
// publish, in that order, on a single goroutine. It is the sole mutator of
// the detector and recorder, which makes the frame path lock-free end to
// end apart from the recorder's own accessor mutex.
type Worker struct {
	cfg      *config.Config
	source   camera.Source
	detector *motion.Detector
	recorder *recorder.Recorder
	status   *status.Publisher
	frames   FramePublisher
	log      zerolog.Logger

	settingsMu sync.Mutex
	current    config.MotionSettings
	pending    *config.MotionSettings

	manualTrigger int32

	samples []time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewWorker(cfg *config.Config, source camera.Source, detector *motion.Detector, rec *recorder.Recorder, pub *status.Publisher, frames FramePublisher) *Worker {
	return &Worker{
		cfg:      cfg,
		source:   source,
		detector: detector,
		recorder: rec,
		status:   pub,
		frames:   frames,
		log:      logging.WithCamera(logging.NewServiceLogger(cfg, "pipeline"), source.ID()),
		current:  cfg.Motion(),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the capture loop.
func (w *Worker) Start() {
	w.log.Info().Int("frame_rate", w.cfg.FrameRate).Msg("Pipeline worker started")
	go w.run()
}

// Stop halts the loop, finalizes any in-flight recording and closes the
// capture device. Safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.done

	w.recorder.Stop()
	if err := w.source.Close(); err != nil {
		w.log.Warn().Err(err).Msg("Failed to close camera source")
	}
	w.detector.Close()
	w.log.Info().Msg("Pipeline worker stopped")
}

// ApplySettings validates new motion settings and hands them to the loop,
// which swaps them in between frames. The last call wins when several
// arrive within one frame interval.
func (w *Worker) ApplySettings(settings config.MotionSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	w.settingsMu.Lock()
	w.pending = &settings
	w.settingsMu.Unlock()
	return nil
}

// Settings returns the motion settings currently driving the loop. Pending
// updates are excluded until the loop picks them up.
func (w *Worker) Settings() config.MotionSettings {
	w.settingsMu.Lock()
	defer w.settingsMu.Unlock()
	return w.current
}

// TriggerRecording arms a one-shot trigger that the loop treats as motion
// on the next frame, so a manual start flushes the pre-roll buffer exactly
// like a detection would. Triggering during a session extends it the same
// way fresh motion does.
func (w *Worker) TriggerRecording() {
	atomic.StoreInt32(&w.manualTrigger, 1)
	w.log.Info().Msg("Manual recording trigger armed")
}

// StopRecording finalizes the in-flight session without waiting for the
// post-roll to expire. It returns recorder.ErrNotRecording when the
// pipeline is idle. Any armed trigger is cleared so a stop cannot be
// overtaken by a start issued just before it.
func (w *Worker) StopRecording() (*models.SessionInfo, error) {
	atomic.StoreInt32(&w.manualTrigger, 0)
	return w.recorder.Finalize()
}

// State reports the recording state seen by API handlers.
func (w *Worker) State() models.RecordingState {
	return w.recorder.State()
}

func (w *Worker) run() {
	defer close(w.done)

	for {
		select {
		case <-w.stopCh:
			return
		default:
		}

		w.swapSettings()

		frame, err := w.source.Read()
		if err != nil {
			if errors.Is(err, camera.ErrSourceUnavailable) {
				w.log.Error().Err(err).Msg("Camera source lost, pipeline halted")
				w.status.ReportError(err.Error())
				return
			}
			w.log.Warn().Err(err).Msg("Frame capture failed, skipping")
			time.Sleep(readErrorBackoff)
			continue
		}

		w.process(frame)
	}
}

func (w *Worker) process(frame *models.Frame) {
	result, err := w.detector.Detect(frame)
	if err != nil {
		// A malformed frame invalidates the stored baseline as well.
		w.log.Warn().Err(err).Int64("seq", frame.Seq).Msg("Frame rejected by motion detector")
		w.detector.Reset()
		return
	}

	manual := atomic.SwapInt32(&w.manualTrigger, 0) == 1
	if err := w.recorder.Process(frame, result.Detected || manual); err != nil {
		w.status.ReportError(err.Error())
	}

	w.status.Tick(w.recorder.State(), w.observeFrame(frame.Timestamp), result.Detected)

	if w.frames != nil {
		if err := w.frames.PublishFrame(frame, result.Regions); err != nil {
			w.log.Debug().Err(err).Int64("seq", frame.Seq).Msg("Frame publish failed")
		}
	}
}

// swapSettings applies any pending settings update between frames.
func (w *Worker) swapSettings() {
	w.settingsMu.Lock()
	pending := w.pending
	w.pending = nil
	w.settingsMu.Unlock()

	if pending == nil {
		return
	}

	if err := w.detector.UpdateSettings(*pending); err != nil {
		w.log.Error().Err(err).Msg("Failed to apply motion settings")
		return
	}
	w.recorder.UpdateSettings(*pending)

	w.settingsMu.Lock()
	w.current = *pending
	w.settingsMu.Unlock()

	w.log.Info().
		Int("sensitivity", pending.MotionSensitivity).
		Int("min_area", pending.MinMotionArea).
		Dur("pre_roll", pending.PreRollDuration).
		Dur("post_roll", pending.PostRollDuration).
		Int("frame_rate", pending.FrameRate).
		Msg("Motion settings applied")
}

// observeFrame records one frame arrival and returns the rate over the
// sliding window. Frame timestamps drive the window, so replayed sequences
// report the same rate as live capture.
func (w *Worker) observeFrame(ts time.Time) float64 {
	w.samples = append(w.samples, ts)

	cutoff := ts.Add(-fpsWindow)
	drop := 0
	for drop < len(w.samples) && w.samples[drop].Before(cutoff) {
		drop++
	}
	w.samples = w.samples[drop:]

	if len(w.samples) < 2 {
		return 0
	}
	span := w.samples[len(w.samples)-1].Sub(w.samples[0])
	if span <= 0 {
		return 0
	}
	return float64(len(w.samples)-1) / span.Seconds()
}
