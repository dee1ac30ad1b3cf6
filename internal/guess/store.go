package guess

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"
)

// Attempt is one persisted guess for (user, day).
type Attempt struct {
	ID        int64     `json:"-"`
	UserID    string    `json:"-"`
	DayKey    string    `json:"dayKey"`
	RiddleID  int64     `json:"riddleId"`
	Guess     string    `json:"guess"`
	Result    Result    `json:"result"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists attempts and reads ban state.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// History returns the user's attempts for a day, newest first.
func (s *Store) History(ctx context.Context, userID, dayKey string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, day_key, riddle_id, guess, result, created_at
		FROM attempts
		WHERE user_id=? AND day_key=?
		ORDER BY created_at DESC, id DESC`, userID, dayKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Attempt{}
	for rows.Next() {
		var a Attempt
		var created string
		if err := rows.Scan(&a.ID, &a.UserID, &a.DayKey, &a.RiddleID, &a.Guess, &a.Result, &created); err != nil {
			return nil, err
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountForDay returns how many attempts the user has persisted for a day.
func (s *Store) CountForDay(ctx context.Context, userID, dayKey string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM attempts WHERE user_id=? AND day_key=?`, userID, dayKey).Scan(&n)
	return n, err
}

// Solved reports whether any attempt for (user, day) is correct.
func (s *Store) Solved(ctx context.Context, userID, dayKey string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM attempts WHERE user_id=? AND day_key=? AND result='correct'`,
		userID, dayKey).Scan(&n)
	return n > 0, err
}

// Insert persists an attempt. A unique partial index allows at most one
// correct row per (user, day); hitting it means another session solved the
// day between our solved-check and this insert, which callers must treat as
// success, not failure.
func (s *Store) Insert(ctx context.Context, a Attempt) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attempts (user_id, day_key, riddle_id, guess, result, created_at)
		VALUES (?,?,?,?,?,?)`,
		a.UserID, a.DayKey, a.RiddleID, a.Guess, string(a.Result),
		a.CreatedAt.UTC().Format(time.RFC3339))
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrAlreadySolved
	}
	return err
}

// DeleteForDay wipes every attempt for a day. Used when an admin override
// resets the day; the leaderboard starts over.
func (s *Store) DeleteForDay(ctx context.Context, dayKey string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM attempts WHERE day_key=?`, dayKey)
	return err
}

// ------------------------------- bans ---------------------------------------

// Banned reports whether the user has a ban row.
func (s *Store) Banned(ctx context.Context, userID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM bans WHERE user_id=?`, userID).Scan(&n)
	return n > 0, err
}

// SetBan creates or removes the user's ban row.
func (s *Store) SetBan(ctx context.Context, userID, reason string, banned bool) error {
	if banned {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO bans (user_id, reason, created_at) VALUES (?,?,?)
			ON CONFLICT(user_id) DO UPDATE SET reason=excluded.reason`,
			userID, reason, time.Now().UTC().Format(time.RFC3339))
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM bans WHERE user_id=?`, userID)
	return err
}
