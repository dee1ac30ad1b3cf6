package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/brainteaserday/server/internal/daykey"
	"github.com/brainteaserday/server/internal/guess"
	"github.com/brainteaserday/server/internal/riddle"
)

// today returns the current UTC day key plus the milliseconds remaining
// until rollover.
func (s *Server) today() (string, int64) {
	now := s.d.Clock.Now()
	return daykey.DateKey(now), daykey.UntilNextMidnight(now).Milliseconds()
}

// handleDailyRiddle returns the day's puzzle. The answer and explanation
// never leave the server here; they only appear in the archive once the day
// is over.
func (s *Server) handleDailyRiddle(w http.ResponseWriter, r *http.Request) {
	key, nextIn := s.today()
	res, err := s.d.Resolver.Resolve(r.Context(), key)
	if err != nil {
		if errors.Is(err, riddle.ErrUnavailable) {
			writeErr(w, http.StatusServiceUnavailable, "no riddle today")
			return
		}
		log.Error().Err(err).Str("day", key).Msg("resolve daily riddle")
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, map[string]any{
		"dayKey":   key,
		"riddleId": res.Riddle.ID,
		"type":     res.Riddle.Type,
		"question": res.Riddle.Question,
		"source":   res.Source,
		"version":  res.Version,
		"nextIn":   nextIn,
	})
}

// handleDailyHistory returns the caller's attempts for today, newest first.
func (s *Server) handleDailyHistory(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	key, _ := s.today()
	attempts, solved, err := s.d.Guesses.History(r.Context(), me.ID, key)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, map[string]any{"dayKey": key, "solved": solved, "attempts": attempts})
}

type dailyGuessReq struct {
	Guess   string `json:"guess"`
	Version *int64 `json:"version,omitempty"`
}

// handleDailyGuess submits one guess against today's riddle.
func (s *Server) handleDailyGuess(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	var body dailyGuessReq
	if !decode(w, r, &body) {
		return
	}
	key, _ := s.today()
	sub, err := s.d.Guesses.Submit(r.Context(), me.ID, key, body.Guess, body.Version)
	if err != nil {
		switch {
		case errors.Is(err, guess.ErrAlreadySolved):
			// Solved is a terminal success state, not a failure.
			writeJSON(w, map[string]any{"solved": true, "message": "Correct!"})
		case errors.Is(err, guess.ErrEmptyGuess):
			writeErr(w, http.StatusBadRequest, "guess is required")
		case errors.Is(err, guess.ErrNotANumber):
			writeErr(w, http.StatusBadRequest, "guess must be a number")
		case errors.Is(err, guess.ErrBanned):
			writeErr(w, http.StatusForbidden, "banned")
		case errors.Is(err, guess.ErrRateLimited):
			writeErr(w, http.StatusTooManyRequests, "rate_limited")
		case errors.Is(err, guess.ErrStaleState):
			writeErr(w, http.StatusConflict, "state_changed")
		default:
			log.Error().Err(err).Str("user", me.ID).Msg("submit guess")
			writeErr(w, http.StatusInternalServerError, "db_error")
		}
		return
	}
	writeJSON(w, sub)
}

// handleDailyLeaderboard returns today's top solvers plus participant count.
func (s *Server) handleDailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	key, _ := s.today()
	rows, total, err := s.d.Board.Day(r.Context(), key, 0)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, map[string]any{"dayKey": key, "rows": rows, "total": total})
}

// handleDailyStats returns today's aggregate figures.
func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("day")
	if key == "" {
		key, _ = s.today()
	} else if _, err := daykey.Parse(key); err != nil {
		writeErr(w, http.StatusBadRequest, "day must be YYYY-MM-DD")
		return
	}
	ds, err := s.d.Stats.DayStats(r.Context(), key)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, ds)
}

// handleArchive lists past days with their riddles and answers revealed.
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	key, _ := s.today()
	limit := queryInt(r, "limit", 30)
	offset := queryInt(r, "offset", 0)
	rows, err := s.d.Resolver.Archive(r.Context(), key, limit, offset)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, map[string]any{"days": rows})
}

func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
