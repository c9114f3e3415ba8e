package status

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"birdsos/internal/config"
	"birdsos/internal/models"
)

// Sink receives status snapshots. Implementations must not block; slow
// consumers drop updates rather than stall the frame path.
type Sink interface {
	PublishStatus(update models.StatusUpdate)
}

// Publisher owns the live status snapshot for one camera. Recorder
// transitions and session events are emitted synchronously from the frame
// path; a liveness ticker re-emits the latest snapshot so consumers can
// tell a quiet camera from a dead one.
type Publisher struct {
	cameraID string
	interval time.Duration

	mu      sync.Mutex
	sinks   []Sink
	current models.StatusUpdate

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewPublisher(cfg *config.Config, sinks ...Sink) *Publisher {
	interval := cfg.StatusInterval
	if interval <= 0 {
		interval = time.Second
	}
	return &Publisher{
		cameraID: cfg.CameraID,
		interval: interval,
		sinks:    sinks,
		current: models.StatusUpdate{
			CameraID:  cfg.CameraID,
			State:     models.RecordingStateIdle,
			Timestamp: time.Now(),
		},
		stopCh: make(chan struct{}),
	}
}

// AddSink registers an additional consumer.
func (p *Publisher) AddSink(sink Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks = append(p.sinks, sink)
}

// Start launches the liveness loop.
func (p *Publisher) Start() {
	p.wg.Add(1)
	go p.livenessLoop()
	log.Info().
		Str("camera_id", p.cameraID).
		Dur("interval", p.interval).
		Msg("Status publisher started")
}

// Stop halts the liveness loop. Pending synchronous emits still complete.
func (p *Publisher) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()
}

func (p *Publisher) livenessLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.mu.Lock()
			update := p.snapshotLocked()
			sinks := p.sinks
			p.mu.Unlock()
			deliver(sinks, update)
		case <-p.stopCh:
			return
		}
	}
}

// Tick folds one frame's outcome into the snapshot. A change of recorder
// state or motion flag is emitted immediately; an unchanged snapshot is
// left to the liveness ticker.
func (p *Publisher) Tick(state models.RecordingState, fps float64, motion bool) {
	p.mu.Lock()
	changed := p.current.State != state || p.current.MotionDetected != motion
	p.current.State = state
	p.current.FPS = fps
	p.current.MotionDetected = motion

	var update models.StatusUpdate
	var sinks []Sink
	if changed {
		update = p.snapshotLocked()
		sinks = p.sinks
	}
	p.mu.Unlock()

	if changed {
		deliver(sinks, update)
	}
}

// Session records a closed session and emits immediately. A failed session
// surfaces its error in the snapshot until it is superseded.
func (p *Publisher) Session(info models.SessionInfo) {
	p.mu.Lock()
	session := info
	p.current.LastSession = &session
	p.current.Error = info.Error
	update := p.snapshotLocked()
	sinks := p.sinks
	p.mu.Unlock()

	deliver(sinks, update)
}

// ReportError surfaces a pipeline error (or clears it with an empty
// message). Repeated identical messages are emitted only once.
func (p *Publisher) ReportError(msg string) {
	p.mu.Lock()
	if p.current.Error == msg {
		p.mu.Unlock()
		return
	}
	p.current.Error = msg
	update := p.snapshotLocked()
	sinks := p.sinks
	p.mu.Unlock()

	deliver(sinks, update)
}

// Current returns a copy of the live snapshot for request/response readers.
func (p *Publisher) Current() models.StatusUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Publisher) snapshotLocked() models.StatusUpdate {
	update := p.current.Clone()
	update.Timestamp = time.Now()
	return update
}

func deliver(sinks []Sink, update models.StatusUpdate) {
	for _, sink := range sinks {
		sink.PublishStatus(update)
	}
}
