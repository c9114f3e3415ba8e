package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"birdsos/internal/config"
)

func testService(t *testing.T, limit int64, retentionDays int) *Service {
	t.Helper()
	cfg := &config.Config{
		RecordingsDir:    t.TempDir(),
		StorageLimit:     limit,
		WarningThreshold: 0.85,
		RetentionDays:    retentionDays,
		CleanupInterval:  time.Hour,
	}
	s, err := NewService(cfg)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return s
}

func writeVideo(t *testing.T, dir, name string, size int, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, bytes.Repeat([]byte{0xAB}, size), 0644); err != nil {
		t.Fatalf("writing %s failed: %v", name, err)
	}
	mtime := time.Now().Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("setting mtime of %s failed: %v", name, err)
	}
	return path
}

func TestService_Check(t *testing.T) {
	s := testService(t, 10_000, 14)

	status, err := s.Check()
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if status.Used != 0 || status.Warning || status.Critical {
		t.Errorf("empty dir status = %+v", status)
	}
	if status.Free != 10_000 {
		t.Errorf("free = %d, want full limit", status.Free)
	}

	writeVideo(t, s.dir, "a.avi", 6_000, time.Hour)
	status, err = s.Check()
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if status.Used != 6_000 || status.Free != 4_000 {
		t.Errorf("status after write = %+v", status)
	}
	if status.Warning || status.Critical {
		t.Errorf("60%% usage flagged: %+v", status)
	}

	writeVideo(t, s.dir, "b.avi", 6_000, time.Minute)
	status, err = s.Check()
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !status.Warning || !status.Critical {
		t.Errorf("120%% usage not flagged: %+v", status)
	}
	if status.Free != 0 {
		t.Errorf("free clamps at zero, got %d", status.Free)
	}
}

func TestService_CleanupRetention(t *testing.T) {
	s := testService(t, 1<<30, 14)

	old := writeVideo(t, s.dir, "old.avi", 100, 20*24*time.Hour)
	fresh := writeVideo(t, s.dir, "fresh.avi", 100, 24*time.Hour)

	removed, freed, err := s.Cleanup()
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if removed != 1 || freed != 100 {
		t.Errorf("removed %d files (%d bytes), want 1 file of 100 bytes", removed, freed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("expired file survived cleanup")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("fresh file was removed: %v", err)
	}
}

func TestService_CleanupOverLimit(t *testing.T) {
	s := testService(t, 250, 14)

	oldest := writeVideo(t, s.dir, "one.avi", 100, 3*time.Hour)
	middle := writeVideo(t, s.dir, "two.avi", 100, 2*time.Hour)
	newest := writeVideo(t, s.dir, "three.avi", 100, time.Hour)

	removed, _, err := s.Cleanup()
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed %d files, want 1 (just enough to fit the limit)", removed)
	}
	if _, err := os.Stat(oldest); !os.IsNotExist(err) {
		t.Error("oldest file must go first")
	}
	for _, path := range []string{middle, newest} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s removed although usage was back under the limit", filepath.Base(path))
		}
	}
}

func TestService_EnsureHeadroom(t *testing.T) {
	s := testService(t, 250, 14)

	if err := s.EnsureHeadroom(); err != nil {
		t.Fatalf("EnsureHeadroom on empty dir failed: %v", err)
	}

	// Over the limit but recoverable: cleanup frees the oldest recording.
	writeVideo(t, s.dir, "one.avi", 150, 2*time.Hour)
	writeVideo(t, s.dir, "two.avi", 150, time.Hour)
	if err := s.EnsureHeadroom(); err != nil {
		t.Fatalf("EnsureHeadroom did not recover by cleanup: %v", err)
	}

	// Over the limit with nothing prunable: refuse.
	writeVideo(t, s.dir, "sidecar.bin", 400, time.Minute)
	err := s.EnsureHeadroom()
	if err == nil {
		t.Fatal("expected refusal when cleanup cannot free space")
	}
	if !strings.Contains(err.Error(), "storage limit reached") {
		t.Errorf("unexpected refusal error: %v", err)
	}
}

func TestService_FilesNewestFirst(t *testing.T) {
	s := testService(t, 1<<30, 14)

	writeVideo(t, s.dir, "b.avi", 10, 2*time.Hour)
	writeVideo(t, s.dir, "c.mp4", 10, time.Hour)
	writeVideo(t, s.dir, "a.avi", 10, 3*time.Hour)
	writeVideo(t, s.dir, "notes.txt", 10, time.Minute)

	files, err := s.Files()
	if err != nil {
		t.Fatalf("Files failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3 video files", len(files))
	}
	wantOrder := []string{"c.mp4", "b.avi", "a.avi"}
	for i, want := range wantOrder {
		if files[i].Name != want {
			t.Errorf("files[%d] = %s, want %s", i, files[i].Name, want)
		}
	}
	if files[0].Size != 10 || files[0].Path == "" {
		t.Errorf("file metadata incomplete: %+v", files[0])
	}
}

func TestService_Statistics(t *testing.T) {
	s := testService(t, 10_000, 14)

	stats, err := s.Statistics()
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}
	if stats.TotalVideos != 0 || stats.OldestFile != nil || stats.NewestFile != nil {
		t.Errorf("empty statistics = %+v", stats)
	}

	writeVideo(t, s.dir, "a.avi", 300, 3*time.Hour)
	writeVideo(t, s.dir, "b.avi", 200, time.Hour)

	stats, err = s.Statistics()
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}
	if stats.TotalVideos != 2 || stats.TotalSize != 500 {
		t.Errorf("statistics = %+v", stats)
	}
	if stats.OldestFile == nil || stats.NewestFile == nil {
		t.Fatal("oldest/newest not populated")
	}
	if !stats.OldestFile.Before(*stats.NewestFile) {
		t.Errorf("oldest %v not before newest %v", stats.OldestFile, stats.NewestFile)
	}
	if stats.RetentionDays != 14 || stats.WarningThreshold != 0.85 {
		t.Errorf("settings not reflected: %+v", stats)
	}
}

func TestService_UpdateSettings(t *testing.T) {
	t.Chdir(t.TempDir())
	s := testService(t, 10_000, 14)

	bad := config.StorageSettings{StorageLimit: 10_000, WarningThreshold: 0.2, RetentionDays: 14}
	if err := s.UpdateSettings(bad); err == nil {
		t.Error("out-of-range warning threshold accepted")
	}

	good := config.StorageSettings{StorageLimit: 20_000, WarningThreshold: 0.9, RetentionDays: 7}
	if err := s.UpdateSettings(good); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if got := s.Settings(); got != good {
		t.Errorf("Settings = %+v, want %+v", got, good)
	}

	// Settings survive in the env file for the next boot.
	env, err := godotenv.Read(envFile)
	if err != nil {
		t.Fatalf("env file not written: %v", err)
	}
	if env["MAX_STORAGE_BYTES"] != "20000" {
		t.Errorf("MAX_STORAGE_BYTES = %q", env["MAX_STORAGE_BYTES"])
	}
	if env["RETENTION_DAYS"] != "7" {
		t.Errorf("RETENTION_DAYS = %q", env["RETENTION_DAYS"])
	}
}

func TestService_WarningCallbackFiresOnce(t *testing.T) {
	s := testService(t, 100, 14)

	var fired int
	s.SetWarningFunc(func(Status) { fired++ })

	writeVideo(t, s.dir, "big.avi", 90, time.Minute)
	status, err := s.Check()
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	s.notifyWarning(status)
	s.notifyWarning(status)
	if fired != 1 {
		t.Errorf("warning callback fired %d times, want 1", fired)
	}
}

func TestService_FilePath(t *testing.T) {
	s := testService(t, 10_000, 14)
	want := writeVideo(t, s.dir, "clip.avi", 64, time.Hour)

	got, err := s.FilePath("clip.avi")
	if err != nil {
		t.Fatalf("FilePath failed: %v", err)
	}
	if got != want {
		t.Errorf("path = %s, want %s", got, want)
	}

	if _, err := s.FilePath("../../etc/passwd"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("traversal name accepted: %v", err)
	}
	if _, err := s.FilePath("missing.avi"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want not-exist", err)
	}
}

func TestService_DeleteFile(t *testing.T) {
	s := testService(t, 10_000, 14)
	writeVideo(t, s.dir, "clip.avi", 100, time.Hour)
	writeVideo(t, s.dir, "other.mp4", 100, time.Hour)

	if err := s.DeleteFile("clip.avi"); err != nil {
		t.Fatalf("DeleteFile failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.dir, "clip.avi")); !os.IsNotExist(err) {
		t.Error("file still present after delete")
	}

	// Extension-less names resolve like the recording ids in session rows.
	if err := s.DeleteFile("other"); err != nil {
		t.Fatalf("DeleteFile by id failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.dir, "other.mp4")); !os.IsNotExist(err) {
		t.Error("file still present after delete by id")
	}

	if err := s.DeleteFile("ghost.avi"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want not-exist", err)
	}
}

func TestService_DeleteFileRejectsEscapes(t *testing.T) {
	s := testService(t, 10_000, 14)
	sidecar := filepath.Join(s.dir, "notes.txt")
	if err := os.WriteFile(sidecar, []byte("keep"), 0644); err != nil {
		t.Fatalf("writing sidecar failed: %v", err)
	}

	for _, name := range []string{"../clip.avi", "a/b.avi", ".hidden.avi", "notes.txt", ""} {
		if err := s.DeleteFile(name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("DeleteFile(%q) = %v, want ErrInvalidName", name, err)
		}
	}
	if _, err := os.Stat(sidecar); err != nil {
		t.Error("non-video file was touched")
	}
}

func TestService_RemoveEmptyFiles(t *testing.T) {
	s := testService(t, 10_000, 14)
	writeVideo(t, s.dir, "good.avi", 100, time.Hour)
	writeVideo(t, s.dir, "dead.avi", 0, time.Hour)
	writeVideo(t, s.dir, "dead2.mp4", 0, time.Hour)

	removed, err := s.RemoveEmptyFiles()
	if err != nil {
		t.Fatalf("RemoveEmptyFiles failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed %d files, want 2", removed)
	}

	files, err := s.Files()
	if err != nil {
		t.Fatalf("Files failed: %v", err)
	}
	if len(files) != 1 || files[0].Name != "good.avi" {
		t.Errorf("remaining files = %+v", files)
	}
}
