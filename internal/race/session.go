package race

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

var (
	ErrSuspended   = errors.New("race mode is suspended")
	ErrNoSession   = errors.New("no active race session")
	ErrBadDuration = errors.New("duration must be 30, 60 or 120 seconds")
	ErrBadLevel    = errors.New("unknown difficulty level")
)

// Run is a finished session's persisted result.
type Run struct {
	ID        string    `json:"-"`
	UserID    string    `json:"-"`
	Duration  int       `json:"duration"`
	Level     Level     `json:"level"`
	Score     int       `json:"score"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"createdAt"`
}

// RunStore is the persistence the manager needs. *Store satisfies it.
type RunStore interface {
	InsertRun(ctx context.Context, r Run) error
	Suspended(ctx context.Context) (bool, error)
}

type session struct {
	id       string
	userID   string
	level    Level
	duration int
	deadline time.Time
	score    int
	attempts int
	eq       Equation
	saved    bool
	timer    clockwork.Timer
}

// Manager owns all in-flight race sessions, one per user. Sessions live in
// memory only; the persisted Run is written exactly once, whether the
// session ends by timer expiry, manual stop, or being replaced by a new
// start.
type Manager struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	store    RunStore
	gen      *Generator
	sessions map[string]*session // keyed by userID
}

func NewManager(store RunStore, clock clockwork.Clock, gen *Generator) *Manager {
	return &Manager{
		clock:    clock,
		store:    store,
		gen:      gen,
		sessions: make(map[string]*session),
	}
}

// StartResult is returned by Start.
type StartResult struct {
	SessionID string    `json:"sessionId"`
	Equation  string    `json:"equation"`
	EndsAt    time.Time `json:"endsAt"`
}

// Start opens a session. An in-flight session for the same user is finished
// and persisted first, as if stopped manually.
func (m *Manager) Start(ctx context.Context, userID string, duration int, level Level) (StartResult, error) {
	if duration != 30 && duration != 60 && duration != 120 {
		return StartResult{}, ErrBadDuration
	}
	if !level.Valid() {
		return StartResult{}, ErrBadLevel
	}
	if suspended, err := m.store.Suspended(ctx); err != nil {
		return StartResult{}, err
	} else if suspended {
		return StartResult{}, ErrSuspended
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.sessions[userID]; ok {
		prev.timer.Stop()
		m.finishLocked(ctx, prev)
	}

	s := &session{
		id:       uuid.NewString(),
		userID:   userID,
		level:    level,
		duration: duration,
		deadline: m.clock.Now().Add(time.Duration(duration) * time.Second),
		eq:       m.gen.Next(level),
	}
	s.timer = m.clock.AfterFunc(time.Duration(duration)*time.Second, func() {
		m.expire(userID, s.id)
	})
	m.sessions[userID] = s

	return StartResult{SessionID: s.id, Equation: s.eq.Text, EndsAt: s.deadline}, nil
}

// GuessOutcome reports the state after one submitted answer.
type GuessOutcome struct {
	Correct  bool   `json:"correct"`
	Score    int    `json:"score"`
	Attempts int    `json:"attempts"`
	Equation string `json:"equation"`
}

// Guess scores one numeric answer. A correct answer advances to a fresh
// equation; an incorrect one keeps the current equation on screen.
func (m *Manager) Guess(userID, sessionID string, answer int) (GuessOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok || s.id != sessionID {
		return GuessOutcome{}, ErrNoSession
	}
	s.attempts++
	correct := answer == s.eq.Answer
	if correct {
		s.score++
		s.eq = m.gen.Next(s.level)
	}
	return GuessOutcome{
		Correct:  correct,
		Score:    s.score,
		Attempts: s.attempts,
		Equation: s.eq.Text,
	}, nil
}

// Stop ends a session early and persists its result.
func (m *Manager) Stop(ctx context.Context, userID, sessionID string) (Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok || s.id != sessionID {
		return Run{}, ErrNoSession
	}
	s.timer.Stop()
	return m.finishLocked(ctx, s), nil
}

// expire runs on the session timer goroutine.
func (m *Manager) expire(userID, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok || s.id != sessionID {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m.finishLocked(ctx, s)
}

// finishLocked persists the run once and removes the session. The saved
// flag guards the expiry path and the stop path against double writes.
func (m *Manager) finishLocked(ctx context.Context, s *session) Run {
	run := Run{
		ID:        s.id,
		UserID:    s.userID,
		Duration:  s.duration,
		Level:     s.level,
		Score:     s.score,
		Attempts:  s.attempts,
		CreatedAt: m.clock.Now().UTC(),
	}
	if !s.saved {
		s.saved = true
		if err := m.store.InsertRun(ctx, run); err != nil {
			log.Error().Err(err).Str("user", s.userID).Msg("save race run")
		}
	}
	delete(m.sessions, s.userID)
	return run
}
