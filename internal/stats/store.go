package stats

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/brainteaserday/server/internal/guess"
)

// Store reads aggregate figures out of the attempts table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Completion is one solved day on a user's calendar.
type Completion struct {
	DayKey   string `json:"dayKey"`
	Attempts int    `json:"attempts"`
}

// Completions lists the days the user solved within the window of n days
// ending at end, oldest first, with the attempt count spent on each.
func (s *Store) Completions(ctx context.Context, userID string, end time.Time, n int) ([]Completion, error) {
	keys := DayRange(end, n)
	if len(keys) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT day_key, COUNT(1)
		FROM attempts
		WHERE user_id = ? AND day_key >= ? AND day_key <= ?
		GROUP BY day_key
		HAVING SUM(CASE WHEN result = 'correct' THEN 1 ELSE 0 END) > 0
		ORDER BY day_key ASC`, userID, keys[0], keys[len(keys)-1])
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Completion
	for rows.Next() {
		var c Completion
		if err := rows.Scan(&c.DayKey, &c.Attempts); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SolvedDays returns the set of day keys the user has solved.
func (s *Store) SolvedDays(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT day_key FROM attempts
		WHERE user_id = ? AND result = 'correct'`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	solved := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		solved[key] = true
	}
	return solved, rows.Err()
}

// UserStats aggregates one user's lifetime figures. The average counts only
// attempts spent up to each day's solve.
func (s *Store) UserStats(ctx context.Context, userID string, today time.Time) (UserStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day_key, result FROM attempts
		WHERE user_id = ?
		ORDER BY day_key ASC, created_at ASC, id ASC`, userID)
	if err != nil {
		return UserStats{}, err
	}
	defer rows.Close()

	byDay := make(map[string][]guess.Result)
	for rows.Next() {
		var key, result string
		if err := rows.Scan(&key, &result); err != nil {
			return UserStats{}, err
		}
		byDay[key] = append(byDay[key], guess.Result(result))
	}
	if err := rows.Err(); err != nil {
		return UserStats{}, err
	}

	solved := make(map[string]bool, len(byDay))
	var untilSolve []int
	for key, results := range byDay {
		if n := AttemptsUntilSuccess(results); n > 0 {
			solved[key] = true
			untilSolve = append(untilSolve, n)
		}
	}
	return UserStats{
		DaysPlayed:    len(byDay),
		DaysSolved:    len(solved),
		CurrentStreak: CurrentStreak(solved, today),
		AvgAttempts:   Average(untilSolve),
	}, nil
}

// DayStats aggregates everyone's play on one day.
func (s *Store) DayStats(ctx context.Context, dayKey string) (DayStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, result FROM attempts
		WHERE day_key = ?
		ORDER BY created_at ASC, id ASC`, dayKey)
	if err != nil {
		return DayStats{}, err
	}
	defer rows.Close()

	byUser := make(map[string][]guess.Result)
	var order []string
	for rows.Next() {
		var uid, result string
		if err := rows.Scan(&uid, &result); err != nil {
			return DayStats{}, err
		}
		if _, seen := byUser[uid]; !seen {
			order = append(order, uid)
		}
		byUser[uid] = append(byUser[uid], guess.Result(result))
	}
	if err := rows.Err(); err != nil {
		return DayStats{}, err
	}
	sort.Strings(order)

	var untilSolve []int
	for _, uid := range order {
		if n := AttemptsUntilSuccess(byUser[uid]); n > 0 {
			untilSolve = append(untilSolve, n)
		}
	}
	return DayStats{
		DayKey:       dayKey,
		TotalPlayers: len(byUser),
		Solvers:      len(untilSolve),
		AvgAttempts:  Average(untilSolve),
		Distribution: BuildDistribution(untilSolve),
	}, nil
}
