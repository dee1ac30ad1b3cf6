// Package daykey derives the UTC calendar-day key that partitions all daily
// puzzle state, plus the countdown to the next key change.
package daykey

import (
	"time"
)

const layout = "2006-01-02"

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(layout)
}

// Parse validates a day key and returns its UTC midnight.
func Parse(key string) (time.Time, error) {
	return time.ParseInLocation(layout, key, time.UTC)
}

// UntilNextMidnight returns how long until the day key changes.
func UntilNextMidnight(t time.Time) time.Duration {
	u := t.UTC()
	next := time.Date(u.Year(), u.Month(), u.Day()+1, 0, 0, 0, 0, time.UTC)
	return next.Sub(u)
}

// FallbackIndex maps a day key to an index in [0, n).
// The hash is a rolling (h<<5)-h+c over the key with 32-bit wraparound,
// kept bit-identical to the first client release so that archived days
// still resolve to the riddle players actually saw.
func FallbackIndex(key string, n int) int {
	if n <= 0 {
		return 0
	}
	var h int32
	for _, c := range key {
		h = (h << 5) - h + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return int(v % int64(n))
}
