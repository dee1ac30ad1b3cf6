package stats

import (
	"reflect"
	"testing"
	"time"

	"github.com/brainteaserday/server/internal/guess"
)

func TestBucket(t *testing.T) {
	cases := []struct {
		attempts int
		want     string
	}{
		{1, "1"},
		{3, "3"},
		{6, "6"},
		{7, ">6"},
		{42, ">6"},
	}
	for _, tc := range cases {
		if got := Bucket(tc.attempts); got != tc.want {
			t.Fatalf("Bucket(%d) = %q, want %q", tc.attempts, got, tc.want)
		}
	}
}

func TestBuildDistribution(t *testing.T) {
	got := BuildDistribution([]int{1, 1, 3, 8, 12})
	want := map[string]int{"1": 2, "2": 0, "3": 1, "4": 0, "5": 0, "6": 0, ">6": 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("distribution = %v, want %v", got, want)
	}
}

func TestAttemptsUntilSuccess(t *testing.T) {
	cases := []struct {
		name    string
		results []guess.Result
		want    int
	}{
		{"first try", []guess.Result{guess.ResultCorrect}, 1},
		{"third try", []guess.Result{guess.ResultLow, guess.ResultHigh, guess.ResultCorrect}, 3},
		{"never solved", []guess.Result{guess.ResultWrong, guess.ResultWrong}, 0},
		{"empty", nil, 0},
	}
	for _, tc := range cases {
		if got := AttemptsUntilSuccess(tc.results); got != tc.want {
			t.Fatalf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestAverage(t *testing.T) {
	if got := Average(nil); got != 0 {
		t.Fatalf("empty average = %v, want 0", got)
	}
	if got := Average([]int{1, 2, 3}); got != 2 {
		t.Fatalf("average = %v, want 2", got)
	}
}

func TestCurrentStreak(t *testing.T) {
	today := time.Date(2025, 10, 13, 12, 0, 0, 0, time.UTC)

	solved := map[string]bool{
		"2025-10-13": true,
		"2025-10-12": true,
		"2025-10-11": true,
		"2025-10-09": true, // gap on the 10th
	}
	if got := CurrentStreak(solved, today); got != 3 {
		t.Fatalf("streak = %d, want 3", got)
	}

	if got := CurrentStreak(map[string]bool{"2025-10-12": true}, today); got != 0 {
		t.Fatal("an unsolved today means no current streak")
	}
	if got := CurrentStreak(nil, today); got != 0 {
		t.Fatal("empty history means no streak")
	}
}

func TestDayRange(t *testing.T) {
	end := time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)
	got := DayRange(end, 3)
	want := []string{"2025-12-31", "2026-01-01", "2026-01-02"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DayRange = %v, want %v", got, want)
	}
	if DayRange(end, 0) != nil {
		t.Fatal("zero-length range should be nil")
	}
}
