package guess

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Blue Whale", "bluewhale"},
		{" blue   whale ", "bluewhale"},
		{"ECHO", "echo"},
		{"  Short\ter ", "shorter"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if Normalize("Blue Whale") != Normalize(" blue   whale ") {
		t.Fatal("equivalent word answers must normalize identically")
	}
}

func TestClassifyNumber(t *testing.T) {
	cases := []struct {
		name          string
		guess, answer float64
		want          Result
	}{
		{"equal", 36, 36, ResultCorrect},
		{"below", 35, 36, ResultLow},
		{"above", 37, 36, ResultHigh},
		{"negative below", -5, 0, ResultLow},
		{"decimal equal", 12.5, 12.5, ResultCorrect},
		{"decimal above", 12.51, 12.5, ResultHigh},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyNumber(tc.guess, tc.answer); got != tc.want {
				t.Fatalf("ClassifyNumber(%v, %v) = %q, want %q", tc.guess, tc.answer, got, tc.want)
			}
		})
	}
}

func TestClassifyWord(t *testing.T) {
	if got := ClassifyWord("Echo ", "echo"); got != ResultCorrect {
		t.Fatalf("case/space-insensitive match failed: %q", got)
	}
	if got := ClassifyWord("shadow", "echo"); got != ResultWrong {
		t.Fatalf("mismatch should be wrong, got %q", got)
	}
}

func TestShowHint(t *testing.T) {
	// Hint appears on the third attempt (two prior), not before.
	cases := []struct {
		prior int
		want  bool
	}{
		{0, false},
		{1, false},
		{2, true},
		{5, true},
	}
	for _, tc := range cases {
		if got := ShowHint(tc.prior); got != tc.want {
			t.Errorf("ShowHint(%d) = %v, want %v", tc.prior, got, tc.want)
		}
	}
}

func TestFirstLetter(t *testing.T) {
	if got := FirstLetter(" Blue Whale"); got != "b" {
		t.Fatalf("FirstLetter = %q, want b", got)
	}
	if got := FirstLetter("   "); got != "" {
		t.Fatalf("FirstLetter(blank) = %q, want empty", got)
	}
}

func TestLimiter(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewLimiter(3, time.Minute, clock)

	for i := 0; i < 3; i++ {
		if !l.Allow("u1") {
			t.Fatalf("submission %d should be allowed", i+1)
		}
	}
	if l.Allow("u1") {
		t.Fatal("fourth submission within the window should be blocked")
	}
	if !l.Allow("u2") {
		t.Fatal("limits are per user")
	}

	clock.Advance(time.Minute + time.Second)
	if !l.Allow("u1") {
		t.Fatal("window expiry should free the budget")
	}
}
