package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/brainteaserday/server/internal/admin"
)

// adminErr maps validation failures to 400s and everything else to 500s.
func adminErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, admin.ErrBadDayKey),
		errors.Is(err, admin.ErrBadRiddleRef),
		errors.Is(err, admin.ErrBadType),
		errors.Is(err, admin.ErrBadAnswer),
		errors.Is(err, admin.ErrEmptyField):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, admin.ErrUnknownRiddle):
		writeErr(w, http.StatusNotFound, err.Error())
	default:
		log.Error().Err(err).Msg("admin mutation")
		writeErr(w, http.StatusInternalServerError, "db_error")
	}
}

func (s *Server) handleSetOverride(w http.ResponseWriter, r *http.Request) {
	var req admin.EntryRequest
	if !decode(w, r, &req) {
		return
	}
	version, err := s.d.Admin.SetOverride(r.Context(), req)
	if err != nil {
		adminErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"dayKey": req.DayKey, "version": version})
}

func (s *Server) handleClearOverride(w http.ResponseWriter, r *http.Request) {
	dayKey := chi.URLParam(r, "dayKey")
	version, err := s.d.Admin.ClearOverride(r.Context(), dayKey)
	if err != nil {
		adminErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"dayKey": dayKey, "version": version})
}

func (s *Server) handleSetSchedule(w http.ResponseWriter, r *http.Request) {
	var req admin.EntryRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.d.Admin.SetSchedule(r.Context(), req); err != nil {
		adminErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"dayKey": req.DayKey, "ok": true})
}

func (s *Server) handleClearSchedule(w http.ResponseWriter, r *http.Request) {
	dayKey := chi.URLParam(r, "dayKey")
	if err := s.d.Admin.ClearSchedule(r.Context(), dayKey); err != nil {
		adminErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"dayKey": dayKey, "ok": true})
}

func (s *Server) handleAddRiddle(w http.ResponseWriter, r *http.Request) {
	var req admin.AddRiddleRequest
	if !decode(w, r, &req) {
		return
	}
	id, err := s.d.Admin.AddRiddle(r.Context(), req)
	if err != nil {
		adminErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"id": id})
}

func (s *Server) handleSetBan(w http.ResponseWriter, r *http.Request) {
	var req admin.BanRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.d.Admin.SetBan(r.Context(), req); err != nil {
		adminErr(w, err)
		return
	}
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handleSetBanner(w http.ResponseWriter, r *http.Request) {
	var req admin.BannerRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.d.Admin.SetBanner(r.Context(), req); err != nil {
		adminErr(w, err)
		return
	}
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handleSetRace(w http.ResponseWriter, r *http.Request) {
	var req admin.RaceRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.d.Admin.SetRaceSuspended(r.Context(), req); err != nil {
		adminErr(w, err)
		return
	}
	writeJSON(w, map[string]bool{"ok": true})
}
