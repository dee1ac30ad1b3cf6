package guess

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brainteaserday/server/internal/riddle"
)

// Gate errors, each mapped to a distinct user-facing message by the HTTP
// layer. ErrAlreadySolved doubles as the reconciliation signal: callers must
// surface it as "solved", never as a failure.
var (
	ErrEmptyGuess    = errors.New("empty guess")
	ErrNotANumber    = errors.New("guess is not a number")
	ErrBanned        = errors.New("user is banned")
	ErrAlreadySolved = errors.New("already solved")
	ErrRateLimited   = errors.New("rate limited")
	ErrStaleState    = errors.New("day state changed")
)

// AttemptStore is the persistence the service needs. *Store satisfies it.
type AttemptStore interface {
	History(ctx context.Context, userID, dayKey string) ([]Attempt, error)
	CountForDay(ctx context.Context, userID, dayKey string) (int, error)
	Solved(ctx context.Context, userID, dayKey string) (bool, error)
	Insert(ctx context.Context, a Attempt) error
	Banned(ctx context.Context, userID string) (bool, error)
}

// Resolver yields the effective riddle for a day.
type Resolver interface {
	Resolve(ctx context.Context, dayKey string) (riddle.Resolved, error)
}

// Awarder is notified after a correct attempt is persisted. Implementations
// must tolerate repeat calls for the same (user, day).
type Awarder interface {
	OnCorrect(ctx context.Context, userID, dayKey string, attemptNumber int)
}

// Service mediates a day's answering lifecycle for one user.
type Service struct {
	attempts AttemptStore
	riddles  Resolver
	limiter  *Limiter
	awards   Awarder // optional
}

func NewService(attempts AttemptStore, riddles Resolver, limiter *Limiter, awards Awarder) *Service {
	return &Service{attempts: attempts, riddles: riddles, limiter: limiter, awards: awards}
}

// Submission is the outcome of an accepted guess.
type Submission struct {
	Result  Result  `json:"result"`
	Message string  `json:"message"`
	Solved  bool    `json:"solved"`
	Attempt Attempt `json:"attempt"`
}

// History returns attempts newest-first plus the derived solved flag. Safe
// to call repeatedly; it is the refresh path after every override, ban, or
// day-change signal.
func (s *Service) History(ctx context.Context, userID, dayKey string) ([]Attempt, bool, error) {
	attempts, err := s.attempts.History(ctx, userID, dayKey)
	if err != nil {
		return nil, false, err
	}
	solved := false
	for _, a := range attempts {
		if a.Result == ResultCorrect {
			solved = true
			break
		}
	}
	return attempts, solved, nil
}

// Submit validates, classifies, and persists one guess.
//
// stateVersion, when non-nil, is the day-state version the client resolved
// its riddle under; a mismatch means an admin reset the day after the client
// loaded it, and the submission is rejected with ErrStaleState instead of
// being recorded against the wrong riddle.
func (s *Service) Submit(ctx context.Context, userID, dayKey, raw string, stateVersion *int64) (Submission, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Submission{}, ErrEmptyGuess
	}

	if banned, err := s.attempts.Banned(ctx, userID); err != nil {
		return Submission{}, err
	} else if banned {
		return Submission{}, ErrBanned
	}

	res, err := s.riddles.Resolve(ctx, dayKey)
	if err != nil {
		return Submission{}, err
	}
	if stateVersion != nil && *stateVersion != res.Version {
		return Submission{}, ErrStaleState
	}

	if solved, err := s.attempts.Solved(ctx, userID, dayKey); err != nil {
		return Submission{}, err
	} else if solved {
		return Submission{}, ErrAlreadySolved
	}

	if !s.limiter.Allow(userID) {
		return Submission{}, ErrRateLimited
	}

	prior, err := s.attempts.CountForDay(ctx, userID, dayKey)
	if err != nil {
		return Submission{}, err
	}

	result, message, err := classify(res.Riddle, raw, prior)
	if err != nil {
		return Submission{}, err
	}

	attempt := Attempt{
		UserID:    userID,
		DayKey:    dayKey,
		RiddleID:  res.Riddle.ID,
		Guess:     raw,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.attempts.Insert(ctx, attempt); err != nil {
		// Another session solved the day between our check and this insert.
		return Submission{}, err
	}

	if result == ResultCorrect && s.awards != nil {
		s.awards.OnCorrect(ctx, userID, dayKey, prior+1)
	}

	return Submission{
		Result:  result,
		Message: message,
		Solved:  result == ResultCorrect,
		Attempt: attempt,
	}, nil
}

func classify(r riddle.Riddle, raw string, prior int) (Result, string, error) {
	switch r.Type {
	case riddle.TypeNumber:
		g, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil || math.IsNaN(g) || math.IsInf(g, 0) {
			return "", "", ErrNotANumber
		}
		ans, err := strconv.ParseFloat(strings.TrimSpace(r.Answer), 64)
		if err != nil {
			return "", "", fmt.Errorf("riddle %d has non-numeric answer: %w", r.ID, err)
		}
		switch ClassifyNumber(g, ans) {
		case ResultCorrect:
			return ResultCorrect, "Correct!", nil
		case ResultLow:
			return ResultLow, "Too low!", nil
		default:
			return ResultHigh, "Too high!", nil
		}
	case riddle.TypeWord:
		if ClassifyWord(raw, r.Answer) == ResultCorrect {
			return ResultCorrect, "Correct!", nil
		}
		if ShowHint(prior) {
			if letter := FirstLetter(r.Answer); letter != "" {
				return ResultWrong, fmt.Sprintf("Not quite. Hint: it starts with %q.", letter), nil
			}
		}
		return ResultWrong, "Not quite, try again!", nil
	default:
		log.Warn().Str("type", string(r.Type)).Int64("riddle", r.ID).Msg("unhandled riddle type")
		return "", "", fmt.Errorf("unhandled riddle type %q", r.Type)
	}
}
