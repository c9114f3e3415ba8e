package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"birdsos/internal/config"
	"birdsos/internal/models"
)

// Database persists recording session history and named settings profiles.
type Database struct {
	db *sql.DB
}

// ProfileRecord is a named bundle of runtime settings.
type ProfileRecord struct {
	Name      string                 `json:"name"`
	Motion    config.MotionSettings  `json:"motion"`
	Storage   config.StorageSettings `json:"storage"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// New opens the SQLite database at dbPath.
func New(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL lets the frame path insert while the API reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// Migrate creates the schema. Safe to run on every boot.
func (d *Database) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS recordings (
			id TEXT PRIMARY KEY,
			camera_id TEXT NOT NULL,
			path TEXT,
			frame_count INTEGER DEFAULT 0,
			duration_ms INTEGER DEFAULT 0,
			start_time DATETIME,
			end_time DATETIME,
			status TEXT NOT NULL,
			error TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS config_profiles (
			name TEXT PRIMARY KEY,
			settings TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recordings_camera_time ON recordings(camera_id, start_time DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_recordings_time ON recordings(start_time DESC)`,
	}

	for _, migration := range migrations {
		if _, err := d.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log.Info().Msg("Database migrations completed")
	return nil
}

// SaveSession records a closed session, failed ones included.
func (d *Database) SaveSession(info *models.SessionInfo) error {
	query := `INSERT INTO recordings
		(id, camera_id, path, frame_count, duration_ms, start_time, end_time, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path = excluded.path,
			frame_count = excluded.frame_count,
			duration_ms = excluded.duration_ms,
			end_time = excluded.end_time,
			status = excluded.status,
			error = excluded.error`

	_, err := d.db.Exec(query, info.ID, info.CameraID, info.Path, info.FrameCount,
		info.Duration.Milliseconds(), info.StartTime, info.EndTime, string(info.Status), info.Error)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession retrieves one session by ID, or nil when unknown.
func (d *Database) GetSession(id string) (*models.SessionInfo, error) {
	query := `SELECT id, camera_id, path, frame_count, duration_ms, start_time, end_time, status, error
		FROM recordings WHERE id = ?`

	info, err := scanSession(d.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return info, nil
}

// ListSessions returns session history newest first, optionally filtered by
// camera and start time.
func (d *Database) ListSessions(cameraID string, since *time.Time, limit int) ([]*models.SessionInfo, error) {
	query := `SELECT id, camera_id, path, frame_count, duration_ms, start_time, end_time, status, error
		FROM recordings WHERE 1=1`
	args := []interface{}{}

	if cameraID != "" {
		query += " AND camera_id = ?"
		args = append(args, cameraID)
	}
	if since != nil {
		query += " AND start_time >= ?"
		args = append(args, *since)
	}
	query += " ORDER BY start_time DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.SessionInfo
	for rows.Next() {
		info, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, info)
	}
	return sessions, rows.Err()
}

// DeleteOldSessions removes history rows whose session started before the
// given time and reports how many went.
func (d *Database) DeleteOldSessions(before time.Time) (int64, error) {
	result, err := d.db.Exec("DELETE FROM recordings WHERE start_time < ?", before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old sessions: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.SessionInfo, error) {
	var info models.SessionInfo
	var durationMs int64
	var status string
	if err := row.Scan(&info.ID, &info.CameraID, &info.Path, &info.FrameCount,
		&durationMs, &info.StartTime, &info.EndTime, &status, &info.Error); err != nil {
		return nil, err
	}
	info.Duration = time.Duration(durationMs) * time.Millisecond
	info.Status = models.SessionStatus(status)
	return &info, nil
}

// SaveProfile creates or updates a named settings profile.
func (d *Database) SaveProfile(profile *ProfileRecord) error {
	settings, err := json.Marshal(struct {
		Motion  config.MotionSettings  `json:"motion"`
		Storage config.StorageSettings `json:"storage"`
	}{profile.Motion, profile.Storage})
	if err != nil {
		return fmt.Errorf("failed to marshal profile settings: %w", err)
	}

	query := `INSERT INTO config_profiles (name, settings, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			settings = excluded.settings,
			updated_at = CURRENT_TIMESTAMP`

	if _, err := d.db.Exec(query, profile.Name, string(settings)); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// GetProfile retrieves a profile by name, or nil when unknown.
func (d *Database) GetProfile(name string) (*ProfileRecord, error) {
	query := `SELECT name, settings, created_at, updated_at FROM config_profiles WHERE name = ?`

	profile, err := scanProfile(d.db.QueryRow(query, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// ListProfiles returns all profiles ordered by name.
func (d *Database) ListProfiles() ([]*ProfileRecord, error) {
	rows, err := d.db.Query(`SELECT name, settings, created_at, updated_at FROM config_profiles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*ProfileRecord
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

// DeleteProfile removes a profile by name.
func (d *Database) DeleteProfile(name string) error {
	if _, err := d.db.Exec("DELETE FROM config_profiles WHERE name = ?", name); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

func scanProfile(row rowScanner) (*ProfileRecord, error) {
	var profile ProfileRecord
	var settings string
	if err := row.Scan(&profile.Name, &settings, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
		return nil, err
	}

	var decoded struct {
		Motion  config.MotionSettings  `json:"motion"`
		Storage config.StorageSettings `json:"storage"`
	}
	if err := json.Unmarshal([]byte(settings), &decoded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile settings: %w", err)
	}
	profile.Motion = decoded.Motion
	profile.Storage = decoded.Storage
	return &profile, nil
}
