// Package leaderboard ranks a day's participants by fewest attempts.
package leaderboard

import (
	"context"
	"database/sql"
	"sort"
)

// DefaultLimit caps the displayed rows; the day's participant count is
// reported separately so a capped list does not imply only ten players.
const DefaultLimit = 10

// Row is one ranked participant.
type Row struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Attempts int    `json:"attempts"`
}

// Rank orders rows by ascending attempt count, then by username exactly as
// stored (no case folding), and truncates to limit.
func Rank(rows []Row, limit int) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Attempts != out[j].Attempts {
			return out[i].Attempts < out[j].Attempts
		}
		return out[i].Username < out[j].Username
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Store aggregates attempts per user for a day.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Day returns the ranked top rows for a day key plus the total number of
// participants.
func (s *Store) Day(ctx context.Context, dayKey string, limit int) ([]Row, int, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.user_id, COALESCE(p.username, ''), COUNT(1)
		FROM attempts a
		LEFT JOIN profiles p ON p.user_id = a.user_id
		WHERE a.day_key = ?
		GROUP BY a.user_id`, dayKey)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var all []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.UserID, &r.Username, &r.Attempts); err != nil {
			return nil, 0, err
		}
		if r.Username == "" && len(r.UserID) >= 8 {
			r.Username = "user_" + r.UserID[:8]
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return Rank(all, limit), len(all), nil
}
