package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"

	"birdsos/internal/config"
	"birdsos/internal/models"
)

// ErrInvalidName rejects recording names that could escape the recordings
// directory or touch non-video files.
var ErrInvalidName = errors.New("invalid recording name")

// envFile is where runtime storage settings changes are persisted so they
// survive a restart.
const envFile = ".env"

var videoExtensions = map[string]bool{
	".avi": true,
	".mp4": true,
}

// Status is the point-in-time storage accounting for the recordings
// directory, measured against the configured limit rather than the disk.
type Status struct {
	Total      int64   `json:"total"`
	Used       int64   `json:"used"`
	Free       int64   `json:"free"`
	UsageRatio float64 `json:"usage_ratio"`
	Warning    bool    `json:"warning"`
	Critical   bool    `json:"critical"`
	DiskFree   int64   `json:"disk_free"`
}

// Statistics is the richer inventory summary served by the API.
type Statistics struct {
	TotalVideos      int        `json:"total_videos"`
	TotalSize        int64      `json:"total_size"`
	OldestFile       *time.Time `json:"oldest_file"`
	NewestFile       *time.Time `json:"newest_file"`
	Status           Status     `json:"storage_status"`
	RetentionDays    int        `json:"retention_days"`
	WarningThreshold float64    `json:"warning_threshold"`
}

// Service accounts for recording files against a storage budget and prunes
// them by age and by limit pressure.
type Service struct {
	dir string

	mu               sync.RWMutex
	limit            int64
	warningThreshold float64
	retentionDays    int

	interval   time.Duration
	onWarning  func(Status)
	wasWarning bool

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewService(cfg *config.Config) (*Service, error) {
	if err := os.MkdirAll(cfg.RecordingsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create recordings directory: %w", err)
	}

	s := &Service{
		dir:              cfg.RecordingsDir,
		limit:            cfg.StorageLimit,
		warningThreshold: cfg.WarningThreshold,
		retentionDays:    cfg.RetentionDays,
		interval:         cfg.CleanupInterval,
		stopCh:           make(chan struct{}),
	}
	log.Info().
		Str("dir", s.dir).
		Int64("limit_bytes", s.limit).
		Int("retention_days", s.retentionDays).
		Msg("Storage service initialized")
	return s, nil
}

// SetWarningFunc registers the callback fired when usage crosses the
// warning threshold.
func (s *Service) SetWarningFunc(fn func(Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onWarning = fn
}

// Start launches the periodic cleanup loop.
func (s *Service) Start() {
	if s.interval <= 0 {
		s.interval = time.Hour
	}
	s.wg.Add(1)
	go s.cleanupLoop()
}

func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *Service) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, _, err := s.Cleanup(); err != nil {
				log.Error().Err(err).Msg("Periodic storage cleanup failed")
			}
			if status, err := s.Check(); err == nil {
				s.notifyWarning(status)
			}
		case <-s.stopCh:
			return
		}
	}
}

func (s *Service) notifyWarning(status Status) {
	s.mu.Lock()
	fire := status.Warning && !s.wasWarning
	s.wasWarning = status.Warning
	fn := s.onWarning
	s.mu.Unlock()

	if fire && fn != nil {
		fn(status)
	}
}

// Check measures current usage against the configured limit.
func (s *Service) Check() (Status, error) {
	used, err := s.directorySize()
	if err != nil {
		return Status{}, fmt.Errorf("failed to measure storage usage: %w", err)
	}

	s.mu.RLock()
	limit := s.limit
	threshold := s.warningThreshold
	s.mu.RUnlock()

	status := Status{
		Total:      limit,
		Used:       used,
		UsageRatio: float64(used) / float64(limit),
		DiskFree:   diskFree(s.dir),
	}
	if free := limit - used; free > 0 {
		status.Free = free
	}
	status.Warning = status.UsageRatio > threshold
	status.Critical = used > limit

	if status.Warning {
		log.Warn().
			Float64("usage_ratio", status.UsageRatio).
			Int64("used", used).
			Int64("limit", limit).
			Msg("Storage usage high")
	}
	return status, nil
}

// EnsureHeadroom is the recorder's pre-session gate: over the limit it
// first tries a cleanup, and refuses the session only when that does not
// bring usage back under the limit.
func (s *Service) EnsureHeadroom() error {
	status, err := s.Check()
	if err != nil {
		return err
	}
	if !status.Critical {
		s.notifyWarning(status)
		return nil
	}

	log.Warn().Int64("used", status.Used).Int64("limit", status.Total).Msg("Storage over limit, cleaning up before recording")
	if _, _, err := s.Cleanup(); err != nil {
		return err
	}
	status, err = s.Check()
	if err != nil {
		return err
	}
	if status.Critical {
		return fmt.Errorf("storage limit reached: %d of %d bytes used", status.Used, status.Total)
	}
	return nil
}

// Cleanup prunes recordings in two passes: first everything past the
// retention window, then oldest-first while usage still exceeds the limit.
// Files that fail to delete are skipped, not retried.
func (s *Service) Cleanup() (removed int, freed int64, err error) {
	s.mu.RLock()
	limit := s.limit
	retentionDays := s.retentionDays
	s.mu.RUnlock()

	files, err := s.videoFiles()
	if err != nil {
		return 0, 0, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Modified.Before(files[j].Modified) })

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	remaining := files[:0]
	for _, f := range files {
		if f.Modified.Before(cutoff) {
			if rmErr := os.Remove(f.Path); rmErr != nil {
				log.Warn().Err(rmErr).Str("file", f.Name).Msg("Could not remove expired recording")
				remaining = append(remaining, f)
				continue
			}
			removed++
			freed += f.Size
			log.Info().Str("file", f.Name).Msg("Removed recording past retention")
			continue
		}
		remaining = append(remaining, f)
	}

	used, err := s.directorySize()
	if err != nil {
		return removed, freed, err
	}
	for _, f := range remaining {
		if used <= limit {
			break
		}
		if rmErr := os.Remove(f.Path); rmErr != nil {
			log.Warn().Err(rmErr).Str("file", f.Name).Msg("Could not remove recording over limit")
			continue
		}
		used -= f.Size
		removed++
		freed += f.Size
		log.Info().Str("file", f.Name).Msg("Removed recording to stay under storage limit")
	}

	if removed > 0 {
		log.Info().
			Int("files", removed).
			Int64("bytes_freed", freed).
			Msg("Storage cleanup completed")
	}
	return removed, freed, nil
}

// Files lists recordings newest first.
func (s *Service) Files() ([]models.RecordingFile, error) {
	files, err := s.videoFiles()
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Modified.After(files[j].Modified) })
	return files, nil
}

// FilePath maps a client-supplied recording name to its path, confined to
// the recordings directory. Only known video files resolve.
func (s *Service) FilePath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !videoExtensions[strings.ToLower(filepath.Ext(name))] {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("recording %q: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return path, nil
}

// DeleteFile removes one recording by name. A name without an extension
// tries each known video extension, matching how recordings are addressed
// by their timestamp id.
func (s *Service) DeleteFile(name string) error {
	if filepath.Ext(name) == "" {
		var lastErr error = fmt.Errorf("recording %q: %w", name, os.ErrNotExist)
		for ext := range videoExtensions {
			path, err := s.FilePath(name + ext)
			if err != nil {
				lastErr = err
				continue
			}
			return s.removeRecording(path)
		}
		return lastErr
	}

	path, err := s.FilePath(name)
	if err != nil {
		return err
	}
	return s.removeRecording(path)
}

func (s *Service) removeRecording(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete recording: %w", err)
	}
	log.Info().Str("path", path).Msg("Recording deleted")
	return nil
}

// RemoveEmptyFiles deletes zero-byte recordings, the leftovers of sessions
// that died before their first frame hit the disk.
func (s *Service) RemoveEmptyFiles() (int, error) {
	files, err := s.videoFiles()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range files {
		if f.Size != 0 {
			continue
		}
		path := filepath.Join(s.dir, f.Name)
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to remove empty recording")
			continue
		}
		log.Warn().Str("path", path).Msg("Removed empty recording file")
		removed++
	}
	return removed, nil
}

// Statistics summarizes the inventory plus the live status.
func (s *Service) Statistics() (Statistics, error) {
	files, err := s.videoFiles()
	if err != nil {
		return Statistics{}, err
	}
	status, err := s.Check()
	if err != nil {
		return Statistics{}, err
	}

	s.mu.RLock()
	stats := Statistics{
		TotalVideos:      len(files),
		Status:           status,
		RetentionDays:    s.retentionDays,
		WarningThreshold: s.warningThreshold,
	}
	s.mu.RUnlock()

	for _, f := range files {
		stats.TotalSize += f.Size
		modified := f.Modified
		if stats.OldestFile == nil || modified.Before(*stats.OldestFile) {
			t := modified
			stats.OldestFile = &t
		}
		if stats.NewestFile == nil || modified.After(*stats.NewestFile) {
			t := modified
			stats.NewestFile = &t
		}
	}
	return stats, nil
}

// Settings returns the current storage settings.
func (s *Service) Settings() config.StorageSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return config.StorageSettings{
		StorageLimit:     s.limit,
		WarningThreshold: s.warningThreshold,
		RetentionDays:    s.retentionDays,
	}
}

// UpdateSettings applies and persists new storage settings. The limit may
// not exceed the size of the disk backing the recordings directory.
func (s *Service) UpdateSettings(settings config.StorageSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if total := diskTotal(s.dir); total > 0 && settings.StorageLimit > total {
		return fmt.Errorf("storage limit %d exceeds disk size %d", settings.StorageLimit, total)
	}

	s.mu.Lock()
	s.limit = settings.StorageLimit
	s.warningThreshold = settings.WarningThreshold
	s.retentionDays = settings.RetentionDays
	s.mu.Unlock()

	if err := persistSettings(settings); err != nil {
		log.Error().Err(err).Msg("Failed to persist storage settings")
		return err
	}
	log.Info().
		Int64("limit_bytes", settings.StorageLimit).
		Float64("warning_threshold", settings.WarningThreshold).
		Int("retention_days", settings.RetentionDays).
		Msg("Storage settings updated")
	return nil
}

// persistSettings round-trips the .env file so manual entries survive.
func persistSettings(settings config.StorageSettings) error {
	env, err := godotenv.Read(envFile)
	if err != nil {
		env = map[string]string{}
	}
	env["MAX_STORAGE_BYTES"] = strconv.FormatInt(settings.StorageLimit, 10)
	env["WARNING_THRESHOLD"] = strconv.FormatFloat(settings.WarningThreshold, 'f', -1, 64)
	env["RETENTION_DAYS"] = strconv.Itoa(settings.RetentionDays)
	return godotenv.Write(env, envFile)
}

func (s *Service) videoFiles() ([]models.RecordingFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read recordings directory: %w", err)
	}

	files := make([]models.RecordingFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !videoExtensions[filepath.Ext(entry.Name())] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, models.RecordingFile{
			Name:     entry.Name(),
			Path:     filepath.Join(s.dir, entry.Name()),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	return files, nil
}

// directorySize walks the whole directory, not just video files, so
// sidecar artifacts count against the budget too.
func (s *Service) directorySize() (int64, error) {
	var total int64
	err := filepath.WalkDir(s.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total += info.Size()
		return nil
	})
	return total, err
}

func diskFree(dir string) int64 {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0
	}
	return int64(stat.Bavail) * int64(stat.Bsize)
}

func diskTotal(dir string) int64 {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0
	}
	return int64(stat.Blocks) * int64(stat.Bsize)
}
