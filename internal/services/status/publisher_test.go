package status

import (
	"sync"
	"testing"
	"time"

	"birdsos/internal/config"
	"birdsos/internal/models"
)

type fakeSink struct {
	mu      sync.Mutex
	updates []models.StatusUpdate
}

func (s *fakeSink) PublishStatus(update models.StatusUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, update)
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

func (s *fakeSink) last() models.StatusUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.updates) == 0 {
		return models.StatusUpdate{}
	}
	return s.updates[len(s.updates)-1]
}

func newTestPublisher(sink Sink) *Publisher {
	cfg := &config.Config{CameraID: "feeder-cam", StatusInterval: time.Hour}
	return NewPublisher(cfg, sink)
}

func TestPublisher_EmitsOnStateChange(t *testing.T) {
	sink := &fakeSink{}
	p := newTestPublisher(sink)

	p.Tick(models.RecordingStateRecording, 15, true)
	if sink.count() != 1 {
		t.Fatalf("got %d emits, want 1", sink.count())
	}
	got := sink.last()
	if got.State != models.RecordingStateRecording || !got.MotionDetected {
		t.Errorf("emitted %+v, want recording with motion", got)
	}
	if got.CameraID != "feeder-cam" {
		t.Errorf("camera_id = %q", got.CameraID)
	}

	// Unchanged state and motion do not emit again.
	p.Tick(models.RecordingStateRecording, 14.8, true)
	if sink.count() != 1 {
		t.Errorf("unchanged tick emitted: %d total", sink.count())
	}

	p.Tick(models.RecordingStateIdle, 15, false)
	if sink.count() != 2 {
		t.Errorf("state change back to idle did not emit: %d total", sink.count())
	}
}

func TestPublisher_MotionToggleEmits(t *testing.T) {
	sink := &fakeSink{}
	p := newTestPublisher(sink)

	p.Tick(models.RecordingStateIdle, 15, false)
	base := sink.count()
	p.Tick(models.RecordingStateIdle, 15, true)
	if sink.count() != base+1 {
		t.Errorf("motion toggle did not emit")
	}
	if !sink.last().MotionDetected {
		t.Errorf("emitted snapshot lost the motion flag")
	}
}

func TestPublisher_SessionEmit(t *testing.T) {
	sink := &fakeSink{}
	p := newTestPublisher(sink)

	p.Session(models.SessionInfo{
		ID:       "abc",
		CameraID: "feeder-cam",
		Status:   models.SessionStatusOK,
	})
	if sink.count() != 1 {
		t.Fatalf("got %d emits, want 1", sink.count())
	}
	got := sink.last()
	if got.LastSession == nil || got.LastSession.ID != "abc" {
		t.Fatalf("last_session missing from snapshot: %+v", got)
	}
	if got.Error != "" {
		t.Errorf("healthy session set error %q", got.Error)
	}

	p.Session(models.SessionInfo{
		ID:     "def",
		Status: models.SessionStatusFailed,
		Error:  "disk full",
	})
	got = sink.last()
	if got.Error != "disk full" {
		t.Errorf("failed session error not surfaced, got %q", got.Error)
	}
	if got.LastSession == nil || got.LastSession.Status != models.SessionStatusFailed {
		t.Errorf("last_session not updated: %+v", got.LastSession)
	}
}

func TestPublisher_ReportErrorDedupes(t *testing.T) {
	sink := &fakeSink{}
	p := newTestPublisher(sink)

	p.ReportError("camera unavailable")
	p.ReportError("camera unavailable")
	if sink.count() != 1 {
		t.Fatalf("duplicate error emitted %d times", sink.count())
	}
	if sink.last().Error != "camera unavailable" {
		t.Errorf("error not carried: %+v", sink.last())
	}

	p.ReportError("")
	if sink.count() != 2 {
		t.Fatalf("error clear did not emit")
	}
	if sink.last().Error != "" {
		t.Errorf("error not cleared: %q", sink.last().Error)
	}
}

func TestPublisher_LivenessTicker(t *testing.T) {
	sink := &fakeSink{}
	cfg := &config.Config{CameraID: "feeder-cam", StatusInterval: 20 * time.Millisecond}
	p := NewPublisher(cfg, sink)

	p.Start()
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for sink.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if sink.count() < 3 {
		t.Fatalf("liveness ticker emitted only %d snapshots", sink.count())
	}
	got := sink.last()
	if got.State != models.RecordingStateIdle || got.CameraID != "feeder-cam" {
		t.Errorf("liveness snapshot = %+v", got)
	}
}

func TestPublisher_CurrentReturnsCopy(t *testing.T) {
	p := newTestPublisher(&fakeSink{})
	p.Session(models.SessionInfo{ID: "abc", Status: models.SessionStatusOK})

	snap := p.Current()
	if snap.LastSession == nil {
		t.Fatal("snapshot missing last_session")
	}
	snap.LastSession.ID = "mutated"

	if got := p.Current().LastSession.ID; got != "abc" {
		t.Errorf("internal snapshot mutated through the copy: %q", got)
	}
}
