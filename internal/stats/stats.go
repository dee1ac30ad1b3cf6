// Package stats derives aggregate and per-user figures from the attempt
// history: day-level distributions, solve streaks, and achievement awards.
package stats

import (
	"time"

	"github.com/brainteaserday/server/internal/daykey"
	"github.com/brainteaserday/server/internal/guess"
)

// DistributionBuckets are the labels of the attempts-to-solve histogram.
// Solves needing more than six attempts share the last bucket.
var DistributionBuckets = []string{"1", "2", "3", "4", "5", "6", ">6"}

// DayStats summarizes everyone's play on a single day.
type DayStats struct {
	DayKey       string         `json:"dayKey"`
	TotalPlayers int            `json:"totalPlayers"`
	Solvers      int            `json:"solvers"`
	AvgAttempts  float64        `json:"avgAttempts"`
	Distribution map[string]int `json:"distribution"`
}

// UserStats summarizes one user's history.
type UserStats struct {
	DaysPlayed    int     `json:"daysPlayed"`
	DaysSolved    int     `json:"daysSolved"`
	CurrentStreak int     `json:"currentStreak"`
	AvgAttempts   float64 `json:"avgAttempts"`
}

// Bucket maps an attempts-until-solve count onto its histogram label.
func Bucket(attempts int) string {
	if attempts >= 1 && attempts <= 6 {
		return DistributionBuckets[attempts-1]
	}
	return ">6"
}

// BuildDistribution counts solvers per bucket. Every label is present in
// the result even when its count is zero.
func BuildDistribution(attemptsPerSolver []int) map[string]int {
	dist := make(map[string]int, len(DistributionBuckets))
	for _, b := range DistributionBuckets {
		dist[b] = 0
	}
	for _, n := range attemptsPerSolver {
		dist[Bucket(n)]++
	}
	return dist
}

// Average returns the mean of ns, or 0 for an empty slice.
func Average(ns []int) float64 {
	if len(ns) == 0 {
		return 0
	}
	sum := 0
	for _, n := range ns {
		sum += n
	}
	return float64(sum) / float64(len(ns))
}

// AttemptsUntilSuccess counts attempts in chronological order up to and
// including the first correct one. It returns 0 if the day was never solved.
func AttemptsUntilSuccess(results []guess.Result) int {
	for i, r := range results {
		if r == guess.ResultCorrect {
			return i + 1
		}
	}
	return 0
}

// CurrentStreak counts consecutive solved day keys ending at today. An
// unsolved day breaks the count, so a solve today after a missed yesterday
// yields a streak of one.
func CurrentStreak(solvedDays map[string]bool, today time.Time) int {
	streak := 0
	day := today.UTC()
	for {
		key := daykey.DateKey(day)
		if !solvedDays[key] {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// DayRange lists the day keys of the n days ending at (and including) end,
// oldest first.
func DayRange(end time.Time, n int) []string {
	if n <= 0 {
		return nil
	}
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[n-1-i] = daykey.DateKey(end.AddDate(0, 0, -i))
	}
	return keys
}
