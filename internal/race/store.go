package race

import (
	"context"
	"database/sql"
	"time"
)

// Store persists finished runs and the global suspension switch.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) InsertRun(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO race_runs (id, user_id, duration, level, score, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Duration, string(r.Level), r.Score, r.Attempts, r.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

// RunsForUser returns the user's most recent runs, newest first.
func (s *Store) RunsForUser(ctx context.Context, userID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, duration, level, score, attempts, created_at
		FROM race_runs
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var level, created string
		if err := rows.Scan(&r.ID, &r.UserID, &r.Duration, &level, &r.Score, &r.Attempts, &created); err != nil {
			return nil, err
		}
		r.Level = Level(level)
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			r.CreatedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *Store) Suspended(ctx context.Context) (bool, error) {
	var suspended int
	err := s.db.QueryRowContext(ctx,
		`SELECT suspended FROM race_settings WHERE id = 1`).Scan(&suspended)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return suspended != 0, nil
}

func (s *Store) SetSuspended(ctx context.Context, suspended bool) error {
	v := 0
	if suspended {
		v = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO race_settings (id, suspended) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET suspended = excluded.suspended`, v)
	return err
}
