package stats

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brainteaserday/server/internal/guess"
)

// Achievement keys. Keys are stable identifiers; TitleOf maps them to
// display text.
const (
	AchFirstSolve = "first_solve"
	AchFirstTry   = "first_try"
	AchNoHints    = "no_hints"
	AchStreak7    = "streak_7"
	AchStreak30   = "streak_30"
)

var achievementTitles = map[string]string{
	AchFirstSolve: "First Solve",
	AchFirstTry:   "Nailed It First Try",
	AchNoHints:    "No Hints Needed",
	AchStreak7:    "7-Day Streak",
	AchStreak30:   "30-Day Streak",
}

// TitleOf returns the display title for a key, or the key itself when it is
// unknown.
func TitleOf(key string) string {
	if t, ok := achievementTitles[key]; ok {
		return t
	}
	return key
}

// Achievement is one earned badge.
type Achievement struct {
	Key      string    `json:"key"`
	Title    string    `json:"title"`
	EarnedAt time.Time `json:"earnedAt"`
}

// Achievements grants and lists badges. It implements the guess service's
// award hook so solves grant badges in the same request.
type Achievements struct {
	db    *sql.DB
	store *Store
}

func NewAchievements(db *sql.DB, store *Store) *Achievements {
	return &Achievements{db: db, store: store}
}

// Award grants a badge once. Re-awarding is a no-op.
func (a *Achievements) Award(ctx context.Context, userID, key string) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_achievements (user_id, key, earned_at)
		VALUES (?, ?, ?)`,
		userID, key, time.Now().UTC().Format(time.RFC3339))
	return err
}

// ForUser lists the user's badges, oldest first.
func (a *Achievements) ForUser(ctx context.Context, userID string) ([]Achievement, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT key, earned_at FROM user_achievements
		WHERE user_id = ?
		ORDER BY earned_at ASC, key ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Achievement
	for rows.Next() {
		var ach Achievement
		var earned string
		if err := rows.Scan(&ach.Key, &earned); err != nil {
			return nil, err
		}
		ach.Title = TitleOf(ach.Key)
		if t, err := time.Parse(time.RFC3339, earned); err == nil {
			ach.EarnedAt = t
		}
		out = append(out, ach)
	}
	return out, rows.Err()
}

// OnCorrect is invoked by the guess service after a solve is persisted.
// attemptNumber is 1-based and includes the correct guess.
func (a *Achievements) OnCorrect(ctx context.Context, userID, dayKey string, attemptNumber int) {
	grant := func(key string) {
		if err := a.Award(ctx, userID, key); err != nil {
			log.Error().Err(err).Str("user", userID).Str("achievement", key).Msg("award achievement")
		}
	}

	grant(AchFirstSolve)
	if attemptNumber == 1 {
		grant(AchFirstTry)
	}
	if attemptNumber < guess.HintThreshold {
		grant(AchNoHints)
	}

	solved, err := a.store.SolvedDays(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user", userID).Msg("load solved days for streak badges")
		return
	}
	day, err := time.Parse("2006-01-02", dayKey)
	if err != nil {
		return
	}
	streak := CurrentStreak(solved, day)
	if streak >= 7 {
		grant(AchStreak7)
	}
	if streak >= 30 {
		grant(AchStreak30)
	}
}
