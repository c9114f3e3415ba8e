package recorder

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"birdsos/internal/config"
	"birdsos/internal/models"
)

const testFPS = 10

var (
	frameStep = time.Second / testFPS
	testBase  = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		CameraID:          "feeder-cam",
		RecordingsDir:     t.TempDir(),
		MotionSensitivity: 25,
		MinMotionArea:     500,
		PreRollDuration:   5 * time.Second,
		PostRollDuration:  10 * time.Second,
		FrameRate:         testFPS,
	}
}

// frameAt builds a tiny frame whose timestamp is seq frame intervals past
// the test epoch, mirroring a camera running at the test frame rate.
func frameAt(seq int) *models.Frame {
	return &models.Frame{
		CameraID:  "feeder-cam",
		Data:      make([]byte, 4*4*3),
		Width:     4,
		Height:    4,
		Timestamp: testBase.Add(time.Duration(seq) * frameStep),
		Seq:       int64(seq),
	}
}

type fakeWriter struct {
	path     string
	frames   []*models.Frame
	writes   int
	failOn   int // 1-based write index that fails, 0 for never
	closed   bool
	closeErr error
}

func (w *fakeWriter) Write(f *models.Frame) error {
	w.writes++
	if w.failOn > 0 && w.writes == w.failOn {
		return errors.New("disk full")
	}
	w.frames = append(w.frames, f)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return w.closeErr
}

// fakeFactory hands out fakeWriters and creates the session file on disk so
// the abort path's file deletion can be observed.
type fakeFactory struct {
	opens    int
	openErr  error
	failOn   int
	closeErr error
	writers  []*fakeWriter
}

func (f *fakeFactory) open(path string, width, height, fps int) (SessionWriter, error) {
	f.opens++
	if f.openErr != nil {
		return nil, f.openErr
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	file.Close()
	w := &fakeWriter{path: path, failOn: f.failOn, closeErr: f.closeErr}
	f.writers = append(f.writers, w)
	return w, nil
}

type sessionLog struct {
	sessions []models.SessionInfo
}

func (sl *sessionLog) hook(info models.SessionInfo) {
	sl.sessions = append(sl.sessions, info)
}

func feedIdle(t *testing.T, rec *Recorder, from, to int) {
	t.Helper()
	for i := from; i < to; i++ {
		if err := rec.Process(frameAt(i), false); err != nil {
			t.Fatalf("Process(%d) failed: %v", i, err)
		}
	}
}

func TestRecorder_PreRollNeverExceedsCapacity(t *testing.T) {
	ff := &fakeFactory{}
	rec := New(testConfig(t), ff.open, nil, nil)

	for i := 0; i < 200; i++ {
		if err := rec.Process(frameAt(i), false); err != nil {
			t.Fatalf("Process failed: %v", err)
		}
		if n := rec.PreRollFrames(); n > 50 {
			t.Fatalf("pre-roll held %d frames, capacity is 50", n)
		}
	}
	if n := rec.PreRollFrames(); n != 50 {
		t.Errorf("pre-roll held %d frames after warm-up, want 50", n)
	}
	if rec.State() != models.RecordingStateIdle {
		t.Errorf("state = %s, want idle", rec.State())
	}
	if ff.opens != 0 {
		t.Errorf("opened %d session files without motion", ff.opens)
	}
}

func TestRecorder_TriggerFlushesPreRollOldestFirst(t *testing.T) {
	ff := &fakeFactory{}
	rec := New(testConfig(t), ff.open, nil, nil)

	feedIdle(t, rec, 0, 100)
	if err := rec.Process(frameAt(100), true); err != nil {
		t.Fatalf("trigger frame failed: %v", err)
	}

	if rec.State() != models.RecordingStateRecording {
		t.Fatalf("state = %s, want recording", rec.State())
	}
	if ff.opens != 1 {
		t.Fatalf("opened %d session files, want 1", ff.opens)
	}

	written := ff.writers[0].frames
	// Exactly the newest 50 idle frames, then the trigger frame.
	if len(written) != 51 {
		t.Fatalf("wrote %d frames, want 51 (50 pre-roll + trigger)", len(written))
	}
	for i, f := range written {
		want := int64(50 + i)
		if f.Seq != want {
			t.Fatalf("frame %d has seq %d, want %d (capture order)", i, f.Seq, want)
		}
	}
	if rec.PreRollFrames() != 0 {
		t.Errorf("pre-roll not emptied by flush: %d frames left", rec.PreRollFrames())
	}
}

func TestRecorder_PostRollFinalizes(t *testing.T) {
	ff := &fakeFactory{}
	sl := &sessionLog{}
	rec := New(testConfig(t), ff.open, nil, sl.hook)

	feedIdle(t, rec, 0, 100)
	if err := rec.Process(frameAt(100), true); err != nil {
		t.Fatalf("trigger frame failed: %v", err)
	}

	// No further motion: the session must close when a frame lands a full
	// post-roll past the trigger. At 10 fps that is frame 100+100.
	closedAt := -1
	for i := 101; i <= 300; i++ {
		if err := rec.Process(frameAt(i), false); err != nil {
			t.Fatalf("Process(%d) failed: %v", i, err)
		}
		if rec.State() == models.RecordingStateIdle {
			closedAt = i
			break
		}
	}
	if closedAt != 200 {
		t.Fatalf("session closed at frame %d, want 200", closedAt)
	}

	if len(sl.sessions) != 1 {
		t.Fatalf("got %d session events, want 1", len(sl.sessions))
	}
	s := sl.sessions[0]
	if s.Status != models.SessionStatusOK {
		t.Errorf("status = %s, want ok", s.Status)
	}
	// 50 pre-roll frames plus every frame from the trigger through the
	// post-roll boundary frame (100..200 inclusive).
	if s.FrameCount != 151 {
		t.Errorf("frame count = %d, want 151", s.FrameCount)
	}
	if s.ID == "" {
		t.Error("session ID is empty")
	}
	if s.CameraID != "feeder-cam" {
		t.Errorf("camera_id = %q, want feeder-cam", s.CameraID)
	}
	wantDuration := time.Duration(150) * frameStep
	if s.Duration != wantDuration {
		t.Errorf("duration = %v, want %v", s.Duration, wantDuration)
	}
	if !ff.writers[0].closed {
		t.Error("session writer was not closed")
	}

	last := rec.LastSession()
	if last == nil || last.ID != s.ID {
		t.Errorf("LastSession = %+v, want the finalized session", last)
	}
}

func TestRecorder_MotionExtendsSession(t *testing.T) {
	ff := &fakeFactory{}
	sl := &sessionLog{}
	rec := New(testConfig(t), ff.open, nil, sl.hook)

	if err := rec.Process(frameAt(0), true); err != nil {
		t.Fatalf("trigger frame failed: %v", err)
	}

	closedAt := -1
	for i := 1; i <= 400; i++ {
		motion := i == 50 // fresh motion 5s in
		if err := rec.Process(frameAt(i), motion); err != nil {
			t.Fatalf("Process(%d) failed: %v", i, err)
		}
		if rec.State() == models.RecordingStateIdle {
			closedAt = i
			break
		}
	}

	// Post-roll restarts from the last motion frame: 50 + 100.
	if closedAt != 150 {
		t.Fatalf("session closed at frame %d, want 150", closedAt)
	}
	if ff.opens != 1 {
		t.Errorf("opened %d session files, want 1", ff.opens)
	}
	if got := sl.sessions[0].FrameCount; got != 151 {
		t.Errorf("frame count = %d, want 151", got)
	}
}

func TestRecorder_SingleSessionPerCamera(t *testing.T) {
	ff := &fakeFactory{}
	rec := New(testConfig(t), ff.open, nil, nil)

	// Continuous motion must never open a second file.
	for i := 0; i < 60; i++ {
		if err := rec.Process(frameAt(i), true); err != nil {
			t.Fatalf("Process(%d) failed: %v", i, err)
		}
	}
	if ff.opens != 1 {
		t.Fatalf("opened %d session files during continuous motion, want 1", ff.opens)
	}

	// After the session closes, a new trigger starts a fresh one.
	for i := 60; i <= 300; i++ {
		if err := rec.Process(frameAt(i), false); err != nil {
			t.Fatalf("Process(%d) failed: %v", i, err)
		}
		if rec.State() == models.RecordingStateIdle {
			break
		}
	}
	if rec.State() != models.RecordingStateIdle {
		t.Fatal("session never closed")
	}
	if err := rec.Process(frameAt(301), true); err != nil {
		t.Fatalf("second trigger failed: %v", err)
	}
	if ff.opens != 2 {
		t.Errorf("opened %d session files, want 2", ff.opens)
	}
}

func TestRecorder_WriteFailureAbortsSession(t *testing.T) {
	ff := &fakeFactory{failOn: 10}
	sl := &sessionLog{}
	rec := New(testConfig(t), ff.open, nil, sl.hook)

	feedIdle(t, rec, 0, 100)
	err := rec.Process(frameAt(100), true)
	if err == nil {
		t.Fatal("expected an error from the failing write")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("error %q does not surface the write failure", err)
	}

	if rec.State() != models.RecordingStateIdle {
		t.Errorf("state = %s after abort, want idle", rec.State())
	}
	if len(sl.sessions) != 1 {
		t.Fatalf("got %d session events, want 1", len(sl.sessions))
	}
	if sl.sessions[0].Status != models.SessionStatusFailed {
		t.Errorf("status = %s, want failed", sl.sessions[0].Status)
	}
	if sl.sessions[0].Error == "" {
		t.Error("failed session carries no error message")
	}

	// The partial file must be gone.
	if _, statErr := os.Stat(ff.writers[0].path); !os.IsNotExist(statErr) {
		t.Errorf("partial file still present: %v", statErr)
	}

	last := rec.LastSession()
	if last == nil || last.Status != models.SessionStatusFailed {
		t.Errorf("LastSession = %+v, want the failed session", last)
	}

	// No retry: idle frames do not reopen anything, a fresh trigger does.
	feedIdle(t, rec, 101, 110)
	if ff.opens != 1 {
		t.Fatalf("recorder retried the aborted session: %d opens", ff.opens)
	}
	ff.failOn = 0
	if err := rec.Process(frameAt(110), true); err != nil {
		t.Fatalf("fresh trigger failed: %v", err)
	}
	if ff.opens != 2 {
		t.Errorf("fresh trigger opened %d files, want 2 total", ff.opens)
	}
}

func TestRecorder_OpenFailureKeepsPreRoll(t *testing.T) {
	ff := &fakeFactory{openErr: errors.New("device busy")}
	sl := &sessionLog{}
	rec := New(testConfig(t), ff.open, nil, sl.hook)

	feedIdle(t, rec, 0, 80)
	err := rec.Process(frameAt(80), true)
	if err == nil {
		t.Fatal("expected an error when the session file cannot open")
	}
	if rec.State() != models.RecordingStateIdle {
		t.Errorf("state = %s, want idle", rec.State())
	}
	if n := rec.PreRollFrames(); n != 50 {
		t.Errorf("pre-roll holds %d frames, want 50 (history kept)", n)
	}
	if len(sl.sessions) != 0 {
		t.Errorf("got %d session events for a session that never opened", len(sl.sessions))
	}
}

type fakeGuard struct {
	err   error
	calls int
}

func (g *fakeGuard) EnsureHeadroom() error {
	g.calls++
	return g.err
}

func TestRecorder_StorageGuardRefusesSession(t *testing.T) {
	ff := &fakeFactory{}
	guard := &fakeGuard{err: errors.New("storage limit reached")}
	rec := New(testConfig(t), ff.open, guard, nil)

	err := rec.Process(frameAt(0), true)
	if err == nil || !strings.Contains(err.Error(), "storage limit reached") {
		t.Fatalf("expected guard refusal to surface, got %v", err)
	}
	if guard.calls != 1 {
		t.Errorf("guard consulted %d times, want 1", guard.calls)
	}
	if ff.opens != 0 {
		t.Errorf("session file opened despite guard refusal")
	}
	if rec.PreRollFrames() != 1 {
		t.Errorf("trigger frame not kept in pre-roll")
	}

	// Once the guard clears, recording proceeds.
	guard.err = nil
	if err := rec.Process(frameAt(1), true); err != nil {
		t.Fatalf("Process failed after guard cleared: %v", err)
	}
	if ff.opens != 1 {
		t.Errorf("opened %d session files, want 1", ff.opens)
	}
}

func TestRecorder_StopFinalizesInFlight(t *testing.T) {
	ff := &fakeFactory{}
	sl := &sessionLog{}
	rec := New(testConfig(t), ff.open, nil, sl.hook)

	if err := rec.Process(frameAt(0), true); err != nil {
		t.Fatalf("trigger frame failed: %v", err)
	}
	feedIdle(t, rec, 1, 11)

	rec.Stop()
	if rec.State() != models.RecordingStateIdle {
		t.Errorf("state = %s after Stop, want idle", rec.State())
	}
	if len(sl.sessions) != 1 {
		t.Fatalf("got %d session events, want 1", len(sl.sessions))
	}
	if sl.sessions[0].Status != models.SessionStatusOK {
		t.Errorf("status = %s, want ok", sl.sessions[0].Status)
	}
	if sl.sessions[0].FrameCount != 11 {
		t.Errorf("frame count = %d, want 11", sl.sessions[0].FrameCount)
	}
	if !ff.writers[0].closed {
		t.Error("session writer was not closed on Stop")
	}

	// Stop while idle is a no-op.
	rec.Stop()
	if len(sl.sessions) != 1 {
		t.Errorf("idle Stop emitted a session event")
	}
}

func TestRecorder_FinalizeClosesSessionEarly(t *testing.T) {
	ff := &fakeFactory{}
	sl := &sessionLog{}
	rec := New(testConfig(t), ff.open, nil, sl.hook)

	if _, err := rec.Finalize(); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("idle Finalize error = %v, want ErrNotRecording", err)
	}

	if err := rec.Process(frameAt(0), true); err != nil {
		t.Fatalf("trigger frame failed: %v", err)
	}
	feedIdle(t, rec, 1, 6)

	info, err := rec.Finalize()
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if info.Status != models.SessionStatusOK || info.FrameCount != 6 {
		t.Errorf("session = %+v", info)
	}
	if rec.State() != models.RecordingStateIdle {
		t.Errorf("state = %s after Finalize, want idle", rec.State())
	}
	if len(sl.sessions) != 1 {
		t.Fatalf("got %d session events, want 1", len(sl.sessions))
	}
	if !ff.writers[0].closed {
		t.Error("session writer was not closed")
	}

	// The recorder is ready for the next trigger straight away.
	if err := rec.Process(frameAt(6), true); err != nil {
		t.Fatalf("retrigger failed: %v", err)
	}
	if rec.State() != models.RecordingStateRecording {
		t.Errorf("state = %s after retrigger, want recording", rec.State())
	}
}

func TestRecorder_CloseFailureDiscardsFile(t *testing.T) {
	ff := &fakeFactory{closeErr: errors.New("flush failed")}
	sl := &sessionLog{}
	rec := New(testConfig(t), ff.open, nil, sl.hook)

	if err := rec.Process(frameAt(0), true); err != nil {
		t.Fatalf("trigger frame failed: %v", err)
	}
	var lastErr error
	for i := 1; i <= 200; i++ {
		lastErr = rec.Process(frameAt(i), false)
		if rec.State() == models.RecordingStateIdle {
			break
		}
	}
	if lastErr == nil {
		t.Fatal("expected the close failure to surface")
	}
	if len(sl.sessions) != 1 || sl.sessions[0].Status != models.SessionStatusFailed {
		t.Fatalf("expected one failed session, got %+v", sl.sessions)
	}
	if _, statErr := os.Stat(ff.writers[0].path); !os.IsNotExist(statErr) {
		t.Errorf("file kept after failed finalize: %v", statErr)
	}
}
