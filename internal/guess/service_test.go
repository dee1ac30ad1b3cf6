package guess

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/brainteaserday/server/internal/riddle"
)

// fakeAttempts keeps attempts in memory and mimics the store's one-correct-
// row-per-day constraint.
type fakeAttempts struct {
	attempts []Attempt
	banned   map[string]bool
	inserts  int
}

func (f *fakeAttempts) History(_ context.Context, userID, dayKey string) ([]Attempt, error) {
	var out []Attempt
	for i := len(f.attempts) - 1; i >= 0; i-- {
		a := f.attempts[i]
		if a.UserID == userID && a.DayKey == dayKey {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttempts) CountForDay(_ context.Context, userID, dayKey string) (int, error) {
	n := 0
	for _, a := range f.attempts {
		if a.UserID == userID && a.DayKey == dayKey {
			n++
		}
	}
	return n, nil
}

func (f *fakeAttempts) Solved(_ context.Context, userID, dayKey string) (bool, error) {
	for _, a := range f.attempts {
		if a.UserID == userID && a.DayKey == dayKey && a.Result == ResultCorrect {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAttempts) Insert(ctx context.Context, a Attempt) error {
	f.inserts++
	if a.Result == ResultCorrect {
		if solved, _ := f.Solved(ctx, a.UserID, a.DayKey); solved {
			return ErrAlreadySolved
		}
	}
	f.attempts = append(f.attempts, a)
	return nil
}

func (f *fakeAttempts) Banned(_ context.Context, userID string) (bool, error) {
	return f.banned[userID], nil
}

type fakeResolver struct {
	res riddle.Resolved
}

func (f *fakeResolver) Resolve(context.Context, string) (riddle.Resolved, error) {
	return f.res, nil
}

func numberRiddle(answer string) riddle.Resolved {
	return riddle.Resolved{
		Riddle: riddle.Riddle{ID: 1, Type: riddle.TypeNumber, Question: "q", Answer: answer},
		Source: riddle.SourceDefault,
	}
}

func wordRiddle(answer string) riddle.Resolved {
	return riddle.Resolved{
		Riddle: riddle.Riddle{ID: 2, Type: riddle.TypeWord, Question: "q", Answer: answer},
		Source: riddle.SourceDefault,
	}
}

func newTestService(store *fakeAttempts, res riddle.Resolved) *Service {
	limiter := NewLimiter(100, time.Minute, clockwork.NewFakeClock())
	return NewService(store, &fakeResolver{res: res}, limiter, nil)
}

func TestSubmitNumberClassification(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		guess string
		want  Result
	}{
		{"35", ResultLow},
		{"37", ResultHigh},
		{"36", ResultCorrect},
	}
	store := &fakeAttempts{banned: map[string]bool{}}
	svc := newTestService(store, numberRiddle("36"))
	for _, tc := range cases {
		sub, err := svc.Submit(ctx, "u1", "2025-10-13", tc.guess, nil)
		if err != nil {
			t.Fatalf("Submit(%q) failed: %v", tc.guess, err)
		}
		if sub.Result != tc.want {
			t.Fatalf("Submit(%q) = %q, want %q", tc.guess, sub.Result, tc.want)
		}
	}
	if len(store.attempts) != 3 {
		t.Fatalf("expected 3 persisted attempts, got %d", len(store.attempts))
	}

	// Solved: further submissions are rejected without persisting.
	_, err := svc.Submit(ctx, "u1", "2025-10-13", "36", nil)
	if err != ErrAlreadySolved {
		t.Fatalf("expected ErrAlreadySolved after solve, got %v", err)
	}
	if len(store.attempts) != 3 {
		t.Fatalf("solved day must not grow history, got %d attempts", len(store.attempts))
	}
}

func TestSubmitValidation(t *testing.T) {
	ctx := context.Background()
	store := &fakeAttempts{banned: map[string]bool{}}
	svc := newTestService(store, numberRiddle("36"))

	if _, err := svc.Submit(ctx, "u1", "2025-10-13", "   ", nil); err != ErrEmptyGuess {
		t.Fatalf("blank guess: got %v, want ErrEmptyGuess", err)
	}
	if _, err := svc.Submit(ctx, "u1", "2025-10-13", "banana", nil); err != ErrNotANumber {
		t.Fatalf("non-numeric guess: got %v, want ErrNotANumber", err)
	}
	if len(store.attempts) != 0 {
		t.Fatal("validation failures must not be persisted")
	}
}

func TestSubmitBanned(t *testing.T) {
	ctx := context.Background()
	store := &fakeAttempts{banned: map[string]bool{"u1": true}}
	svc := newTestService(store, numberRiddle("36"))
	if _, err := svc.Submit(ctx, "u1", "2025-10-13", "36", nil); err != ErrBanned {
		t.Fatalf("got %v, want ErrBanned", err)
	}
	if len(store.attempts) != 0 {
		t.Fatal("banned user's attempt must not be persisted")
	}
}

func TestSubmitWordHintAfterThirdAttempt(t *testing.T) {
	ctx := context.Background()
	store := &fakeAttempts{banned: map[string]bool{}}
	svc := newTestService(store, wordRiddle("echo"))

	first, err := svc.Submit(ctx, "u1", "2025-10-13", "shadow", nil)
	if err != nil || first.Result != ResultWrong {
		t.Fatalf("first wrong guess: %v %v", first.Result, err)
	}
	if first.Message != "Not quite, try again!" {
		t.Fatalf("no hint expected on first attempt, got %q", first.Message)
	}

	if _, err := svc.Submit(ctx, "u1", "2025-10-13", "wind", nil); err != nil {
		t.Fatal(err)
	}
	third, err := svc.Submit(ctx, "u1", "2025-10-13", "mirror", nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := `Not quite. Hint: it starts with "e".`; third.Message != want {
		t.Fatalf("third attempt message = %q, want %q", third.Message, want)
	}

	// Normalized comparison accepts spacing and case differences.
	sub, err := svc.Submit(ctx, "u1", "2025-10-13", "  EcHo ", nil)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Result != ResultCorrect || !sub.Solved {
		t.Fatalf("normalized word match should solve, got %+v", sub)
	}
}

func TestSubmitStaleVersionRejected(t *testing.T) {
	ctx := context.Background()
	store := &fakeAttempts{banned: map[string]bool{}}
	res := numberRiddle("36")
	res.Version = 2
	svc := newTestService(store, res)

	old := int64(1)
	if _, err := svc.Submit(ctx, "u1", "2025-10-13", "36", &old); err != ErrStaleState {
		t.Fatalf("got %v, want ErrStaleState", err)
	}
	current := int64(2)
	if _, err := svc.Submit(ctx, "u1", "2025-10-13", "36", &current); err != nil {
		t.Fatalf("current version should pass: %v", err)
	}
}

func TestSubmitRateLimited(t *testing.T) {
	ctx := context.Background()
	store := &fakeAttempts{banned: map[string]bool{}}
	limiter := NewLimiter(2, time.Minute, clockwork.NewFakeClock())
	svc := NewService(store, &fakeResolver{res: numberRiddle("100")}, limiter, nil)

	for _, g := range []string{"1", "2"} {
		if _, err := svc.Submit(ctx, "u1", "2025-10-13", g, nil); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.Submit(ctx, "u1", "2025-10-13", "3", nil); err != ErrRateLimited {
		t.Fatalf("got %v, want ErrRateLimited", err)
	}
}

func TestHistorySolvedFlag(t *testing.T) {
	ctx := context.Background()
	store := &fakeAttempts{banned: map[string]bool{}}
	svc := newTestService(store, numberRiddle("36"))

	if _, err := svc.Submit(ctx, "u1", "2025-10-13", "10", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Submit(ctx, "u1", "2025-10-13", "36", nil); err != nil {
		t.Fatal(err)
	}
	history, solved, err := svc.History(ctx, "u1", "2025-10-13")
	if err != nil {
		t.Fatal(err)
	}
	if !solved {
		t.Fatal("solved flag should derive from the correct attempt")
	}
	if len(history) != 2 || history[0].Guess != "36" {
		t.Fatalf("history should be newest first, got %+v", history)
	}
}
