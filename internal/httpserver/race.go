package httpserver

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/brainteaserday/server/internal/race"
)

// handleRaceSettings reports whether race mode is currently available.
func (s *Server) handleRaceSettings(w http.ResponseWriter, r *http.Request) {
	suspended, err := s.d.RaceStore.Suspended(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, map[string]any{
		"suspended": suspended,
		"durations": []int{30, 60, 120},
		"levels":    []race.Level{race.LevelEasy, race.LevelMed, race.LevelHard},
	})
}

type raceStartReq struct {
	Duration int        `json:"duration"`
	Level    race.Level `json:"level"`
}

func (s *Server) handleRaceStart(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	var body raceStartReq
	if !decode(w, r, &body) {
		return
	}
	res, err := s.d.Race.Start(r.Context(), me.ID, body.Duration, body.Level)
	if err != nil {
		switch {
		case errors.Is(err, race.ErrBadDuration), errors.Is(err, race.ErrBadLevel):
			writeErr(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, race.ErrSuspended):
			writeErr(w, http.StatusForbidden, "race mode is suspended")
		default:
			log.Error().Err(err).Str("user", me.ID).Msg("start race")
			writeErr(w, http.StatusInternalServerError, "db_error")
		}
		return
	}
	writeJSON(w, res)
}

type raceGuessReq struct {
	SessionID string `json:"sessionId"`
	Answer    int    `json:"answer"`
}

func (s *Server) handleRaceGuess(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	var body raceGuessReq
	if !decode(w, r, &body) {
		return
	}
	out, err := s.d.Race.Guess(me.ID, body.SessionID, body.Answer)
	if err != nil {
		writeErr(w, http.StatusNotFound, "no active session")
		return
	}
	writeJSON(w, out)
}

type raceStopReq struct {
	SessionID string `json:"sessionId"`
}

func (s *Server) handleRaceStop(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	var body raceStopReq
	if !decode(w, r, &body) {
		return
	}
	run, err := s.d.Race.Stop(r.Context(), me.ID, body.SessionID)
	if err != nil {
		writeErr(w, http.StatusNotFound, "no active session")
		return
	}
	writeJSON(w, run)
}
