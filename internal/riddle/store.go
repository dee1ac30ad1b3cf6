package riddle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Store persists the catalog, per-day overrides, the schedule, and the
// per-day state version.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Seed inserts the embedded catalog if the riddles table is empty.
func (s *Store) Seed(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM riddles`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	list, err := DefaultCatalog()
	if err != nil {
		return fmt.Errorf("load embedded catalog: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, r := range list {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO riddles (type, question, answer, explanation) VALUES (?,?,?,?)`,
			string(r.Type), r.Question, r.Answer, r.Explanation); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Count returns the catalog size.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM riddles`).Scan(&n)
	return n, err
}

// ByIndex returns the i-th riddle in stable id order. The fallback hash
// indexes into this ordering.
func (s *Store) ByIndex(ctx context.Context, i int) (Riddle, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, type, question, answer, explanation FROM riddles ORDER BY id LIMIT 1 OFFSET ?`, i)
	return scanRiddle(row)
}

// ByID returns the riddle with the given catalog id.
func (s *Store) ByID(ctx context.Context, id int64) (Riddle, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, type, question, answer, explanation FROM riddles WHERE id=?`, id)
	return scanRiddle(row)
}

// Add appends a riddle to the catalog and returns its id.
func (s *Store) Add(ctx context.Context, r Riddle) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO riddles (type, question, answer, explanation) VALUES (?,?,?,?)`,
		string(r.Type), r.Question, r.Answer, r.Explanation)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func scanRiddle(row *sql.Row) (Riddle, error) {
	var r Riddle
	var typ string
	if err := row.Scan(&r.ID, &typ, &r.Question, &r.Answer, &r.Explanation); err != nil {
		return Riddle{}, err
	}
	r.Type = Type(typ)
	return r, nil
}

// ---------------------------- overrides & schedule --------------------------

// Override returns the override entry for a day, or nil if none exists.
func (s *Store) Override(ctx context.Context, dayKey string) (*Entry, error) {
	return s.entry(ctx, `riddle_overrides`, dayKey)
}

// SetOverride upserts the override row for a day.
func (s *Store) SetOverride(ctx context.Context, e Entry) error {
	return s.setEntry(ctx, `riddle_overrides`, e)
}

// ClearOverride deletes the override row for a day if present.
func (s *Store) ClearOverride(ctx context.Context, dayKey string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM riddle_overrides WHERE day_key=?`, dayKey)
	return err
}

// Schedule returns the schedule entry for a day, or nil.
func (s *Store) Schedule(ctx context.Context, dayKey string) (*Entry, error) {
	return s.entry(ctx, `riddle_schedule`, dayKey)
}

func (s *Store) SetSchedule(ctx context.Context, e Entry) error {
	return s.setEntry(ctx, `riddle_schedule`, e)
}

func (s *Store) ClearSchedule(ctx context.Context, dayKey string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM riddle_schedule WHERE day_key=?`, dayKey)
	return err
}

func (s *Store) entry(ctx context.Context, table, dayKey string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT day_key, riddle_id, question, type, answer, explanation FROM `+table+` WHERE day_key=?`, dayKey)
	var e Entry
	var rid sql.NullInt64
	var q, typ, a, exp sql.NullString
	if err := row.Scan(&e.DayKey, &rid, &q, &typ, &a, &exp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if rid.Valid {
		e.RiddleID = &rid.Int64
	}
	e.Question, e.Type, e.Answer, e.Explanation = q.String, Type(typ.String), a.String, exp.String
	return &e, nil
}

func (s *Store) setEntry(ctx context.Context, table string, e Entry) error {
	var rid any
	if e.RiddleID != nil {
		rid = *e.RiddleID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO `+table+` (day_key, riddle_id, question, type, answer, explanation)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(day_key) DO UPDATE SET
			riddle_id=excluded.riddle_id, question=excluded.question,
			type=excluded.type, answer=excluded.answer, explanation=excluded.explanation`,
		e.DayKey, rid, e.Question, string(e.Type), e.Answer, e.Explanation)
	return err
}

// ------------------------------ day state version ---------------------------

// Version returns the current state version for a day (0 if never bumped).
func (s *Store) Version(ctx context.Context, dayKey string) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, `SELECT version FROM day_state WHERE day_key=?`, dayKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return v, err
}

// BumpVersion increments the day's state version and returns the new value.
// Submissions tagged with an older version are rejected so a client that
// loaded the pre-override riddle cannot write against the new one.
func (s *Store) BumpVersion(ctx context.Context, dayKey string) (int64, error) {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO day_state (day_key, version) VALUES (?, 1)
		ON CONFLICT(day_key) DO UPDATE SET version = version + 1`, dayKey); err != nil {
		return 0, err
	}
	return s.Version(ctx, dayKey)
}

// ------------------------------- archive ------------------------------------

// ArchiveRow is one past day with its resolved riddle, answer included.
type ArchiveRow struct {
	DayKey      string `json:"dayKey"`
	Source      Source `json:"source"`
	Type        Type   `json:"type"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation,omitempty"`
}

// ArchiveDays lists played days strictly before today, newest first.
func (s *Store) ArchiveDays(ctx context.Context, today string, limit, offset int) ([]string, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT day_key FROM attempts
		WHERE day_key < ?
		ORDER BY day_key DESC
		LIMIT ? OFFSET ?`, today, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
