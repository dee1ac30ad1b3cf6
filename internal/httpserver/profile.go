package httpserver

import (
	"errors"
	"net/http"
	"strings"
)

// handleGetProfile returns the caller's display name and lifetime figures.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	username, err := s.d.Users.Username(r.Context(), me.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	us, err := s.d.Stats.UserStats(r.Context(), me.ID, s.d.Clock.Now())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	u, err := s.d.Users.byID(r.Context(), me.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, map[string]any{
		"id":        me.ID,
		"email":     me.Email,
		"username":  username,
		"isAdmin":   me.IsAdmin,
		"createdAt": u.CreatedAt,
		"stats":     us,
	})
}

type profileReq struct {
	Username string `json:"username"`
}

// handleUpdateProfile sets the caller's display name.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	var body profileReq
	if !decode(w, r, &body) {
		return
	}
	username := strings.TrimSpace(body.Username)
	if err := validateUsername(username); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.d.Users.setUsername(r.Context(), me.ID, username); err != nil {
		if errors.Is(err, errUsernameTaken) {
			writeErr(w, http.StatusConflict, "username taken")
			return
		}
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, map[string]any{"username": username})
}

// handleCompletions returns the solved-day calendar for the trailing window.
func (s *Server) handleCompletions(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	days := queryInt(r, "days", 42)
	out, err := s.d.Stats.Completions(r.Context(), me.ID, s.d.Clock.Now(), days)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, map[string]any{"completions": out})
}

// handleRaceRuns returns the caller's recent race results.
func (s *Server) handleRaceRuns(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	runs, err := s.d.RaceStore.RunsForUser(r.Context(), me.ID, queryInt(r, "limit", 10))
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, map[string]any{"runs": runs})
}

// handleAchievements lists the caller's earned badges.
func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	out, err := s.d.Achievements.ForUser(r.Context(), me.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, map[string]any{"achievements": out})
}

// handleMyStats returns lifetime stats only, without the profile wrapper.
func (s *Server) handleMyStats(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	us, err := s.d.Stats.UserStats(r.Context(), me.ID, s.d.Clock.Now())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, us)
}

// handleBanner is public; the client shows it before login too.
func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	b, err := s.d.Banner.Banner(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, b)
}
