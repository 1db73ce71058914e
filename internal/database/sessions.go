package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Exit statuses stored for finished sessions. Crashes store
// "crashed: <reason>".
const (
	StatusRunning   = ""
	StatusStopped   = "stopped"
	StatusCompleted = "completed"
	StatusCrashed   = "crashed"
)

// DefaultRecentLimit bounds Recent when the caller passes no limit.
const DefaultRecentLimit = 20

// ErrSessionNotFound is returned when RecordEnd targets an unknown id.
var ErrSessionNotFound = errors.New("session not found")

// Session is one started stream.
type Session struct {
	ID           uuid.UUID  `json:"id"`
	SourcePath   string     `json:"source_path"`
	Preset       string     `json:"preset"`
	SubtitlePath string     `json:"subtitle_path,omitempty"`
	ForceSync    bool       `json:"force_sync"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	ExitStatus   string     `json:"exit_status,omitempty"`
}

// RecordStart inserts s. A zero ID is replaced with a fresh random one.
func (d *Database) RecordStart(ctx context.Context, s *Session) (err error) {
	start := time.Now()
	defer func() { recordQuery("record_start", start, err) }()

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
	INSERT INTO sessions (id, source_path, preset, subtitle_path, force_sync, started_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID.String(), s.SourcePath, s.Preset, s.SubtitlePath, s.ForceSync, s.StartedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record session start: %w", err)
	}
	return nil
}

// RecordEnd stores the end time and exit status of session id.
func (d *Database) RecordEnd(ctx context.Context, id uuid.UUID, endedAt time.Time, status string) (err error) {
	start := time.Now()
	defer func() { recordQuery("record_end", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx,
		"UPDATE sessions SET ended_at = ?, exit_status = ? WHERE id = ?",
		endedAt.UnixMilli(), status, id.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to record session end: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to record session end: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// Recent returns up to limit sessions, newest first.
func (d *Database) Recent(ctx context.Context, limit int) (sessions []Session, err error) {
	start := time.Now()
	defer func() { recordQuery("recent", start, err) }()

	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
	SELECT id, source_path, preset, subtitle_path, force_sync, started_at, ended_at, exit_status
	FROM sessions
	ORDER BY started_at DESC, rowid DESC
	LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions = []Session{}
	for rows.Next() {
		var (
			s         Session
			id        string
			startedAt int64
			endedAt   sql.NullInt64
		)
		if err = rows.Scan(&id, &s.SourcePath, &s.Preset, &s.SubtitlePath, &s.ForceSync, &startedAt, &endedAt, &s.ExitStatus); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid session id %q: %w", id, err)
		}
		s.StartedAt = time.UnixMilli(startedAt)
		if endedAt.Valid {
			t := time.UnixMilli(endedAt.Int64)
			s.EndedAt = &t
		}
		sessions = append(sessions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}
