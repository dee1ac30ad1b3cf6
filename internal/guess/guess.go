// Package guess implements the daily puzzle submission flow: guess
// normalization and classification, attempt persistence, and the rules that
// gate a submission (ban, already solved, rate limit, stale day state).
package guess

import (
	"strings"
	"unicode"
)

// Result classifies a single attempt.
type Result string

const (
	ResultCorrect Result = "correct"
	ResultLow     Result = "low"
	ResultHigh    Result = "high"
	ResultWrong   Result = "wrong"
)

// HintThreshold is the attempt number (counting the current one) from which
// a wrong word guess reveals the answer's first letter.
const HintThreshold = 3

// Normalize prepares a word guess or answer for comparison: lowercase with
// all whitespace removed, so "Blue Whale" and " blue   whale " compare equal.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ClassifyNumber orders a numeric guess against the answer.
func ClassifyNumber(guess, answer float64) Result {
	switch {
	case guess == answer:
		return ResultCorrect
	case guess < answer:
		return ResultLow
	default:
		return ResultHigh
	}
}

// ClassifyWord compares normalized forms for exact equality.
func ClassifyWord(guess, answer string) Result {
	if Normalize(guess) == Normalize(answer) {
		return ResultCorrect
	}
	return ResultWrong
}

// ShowHint reports whether the current attempt qualifies for the
// first-letter hint, given the number of already-persisted attempts.
func ShowHint(priorAttempts int) bool {
	return priorAttempts+1 >= HintThreshold
}

// FirstLetter returns the hint letter for a word answer, or "" if the
// normalized answer is empty.
func FirstLetter(answer string) string {
	n := Normalize(answer)
	if n == "" {
		return ""
	}
	return string([]rune(n)[0])
}
