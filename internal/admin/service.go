// Package admin implements the moderation console: per-day riddle overrides
// and scheduling, catalog additions, user bans, the site banner, and the
// race-mode switch. Mutations that change what a day's riddle is also reset
// the day and notify connected clients.
package admin

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/brainteaserday/server/internal/daykey"
	"github.com/brainteaserday/server/internal/events"
	"github.com/brainteaserday/server/internal/riddle"
)

var (
	ErrBadDayKey     = errors.New("day key must be YYYY-MM-DD")
	ErrBadRiddleRef  = errors.New("request must carry either a catalog riddle id or a full custom riddle")
	ErrUnknownRiddle = errors.New("no catalog riddle with that id")
	ErrBadType       = errors.New("riddle type must be word or number")
	ErrBadAnswer     = errors.New("number riddle answers must be numeric")
	ErrEmptyField    = errors.New("question and answer are required")
)

// RiddleStore is the catalog and override persistence the service mutates.
type RiddleStore interface {
	ByID(ctx context.Context, id int64) (riddle.Riddle, error)
	Add(ctx context.Context, r riddle.Riddle) (int64, error)
	SetOverride(ctx context.Context, e riddle.Entry) error
	ClearOverride(ctx context.Context, dayKey string) error
	SetSchedule(ctx context.Context, e riddle.Entry) error
	ClearSchedule(ctx context.Context, dayKey string) error
	BumpVersion(ctx context.Context, dayKey string) (int64, error)
}

// AttemptWiper wipes a day's attempts when an override resets it.
type AttemptWiper interface {
	DeleteForDay(ctx context.Context, dayKey string) error
	SetBan(ctx context.Context, userID, reason string, banned bool) error
}

// RaceSwitch toggles the race-mode suspension flag.
type RaceSwitch interface {
	SetSuspended(ctx context.Context, suspended bool) error
}

// Service wires the admin mutations together.
type Service struct {
	riddles  RiddleStore
	attempts AttemptWiper
	race     RaceSwitch
	banner   *BannerStore
	bus      *events.Bus
}

func NewService(riddles RiddleStore, attempts AttemptWiper, race RaceSwitch, banner *BannerStore, bus *events.Bus) *Service {
	return &Service{riddles: riddles, attempts: attempts, race: race, banner: banner, bus: bus}
}

// ----------------------------- request types --------------------------------

// EntryRequest targets one day with either a catalog reference or a full
// custom riddle. It backs both overrides and schedule entries.
type EntryRequest struct {
	DayKey      string `json:"dayKey"`
	RiddleID    *int64 `json:"riddleId,omitempty"`
	Question    string `json:"question,omitempty"`
	Type        string `json:"type,omitempty"`
	Answer      string `json:"answer,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

func (r EntryRequest) validate() (riddle.Entry, error) {
	if _, err := daykey.Parse(r.DayKey); err != nil {
		return riddle.Entry{}, ErrBadDayKey
	}
	e := riddle.Entry{DayKey: r.DayKey}
	if r.RiddleID != nil {
		e.RiddleID = r.RiddleID
		return e, nil
	}
	typ := riddle.Type(r.Type)
	if !typ.Valid() {
		return riddle.Entry{}, ErrBadType
	}
	question := strings.TrimSpace(r.Question)
	answer := strings.TrimSpace(r.Answer)
	if question == "" || answer == "" {
		return riddle.Entry{}, ErrBadRiddleRef
	}
	if typ == riddle.TypeNumber {
		if _, err := parseNumericAnswer(answer); err != nil {
			return riddle.Entry{}, ErrBadAnswer
		}
	}
	e.Question, e.Type, e.Answer, e.Explanation = question, typ, answer, strings.TrimSpace(r.Explanation)
	return e, nil
}

// AddRiddleRequest appends a riddle to the catalog.
type AddRiddleRequest struct {
	Type        string `json:"type"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation,omitempty"`
}

func (r AddRiddleRequest) validate() (riddle.Riddle, error) {
	typ := riddle.Type(r.Type)
	if !typ.Valid() {
		return riddle.Riddle{}, ErrBadType
	}
	question := strings.TrimSpace(r.Question)
	answer := strings.TrimSpace(r.Answer)
	if question == "" || answer == "" {
		return riddle.Riddle{}, ErrEmptyField
	}
	if typ == riddle.TypeNumber {
		if _, err := parseNumericAnswer(answer); err != nil {
			return riddle.Riddle{}, ErrBadAnswer
		}
	}
	return riddle.Riddle{
		Type:        typ,
		Question:    question,
		Answer:      answer,
		Explanation: strings.TrimSpace(r.Explanation),
	}, nil
}

// BanRequest sets or clears a user's ban.
type BanRequest struct {
	UserID string `json:"userId"`
	Banned bool   `json:"banned"`
	Reason string `json:"reason,omitempty"`
}

// BannerRequest replaces the site banner.
type BannerRequest struct {
	Message string `json:"message"`
	Active  bool   `json:"active"`
}

// RaceRequest toggles race-mode availability.
type RaceRequest struct {
	Suspended bool `json:"suspended"`
}

// parseNumericAnswer accepts the same formats players may submit, including
// a decimal comma.
func parseNumericAnswer(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

// ----------------------------- operations -----------------------------------

// SetOverride replaces the day's riddle, wipes the day's attempts, bumps the
// state version, and notifies clients. Returns the new version.
func (s *Service) SetOverride(ctx context.Context, req EntryRequest) (int64, error) {
	e, err := req.validate()
	if err != nil {
		return 0, err
	}
	if e.RiddleID != nil {
		if _, err := s.riddles.ByID(ctx, *e.RiddleID); err != nil {
			return 0, ErrUnknownRiddle
		}
	}
	if err := s.riddles.SetOverride(ctx, e); err != nil {
		return 0, err
	}
	return s.resetDay(ctx, e.DayKey)
}

// ClearOverride removes the day's override, wipes attempts made against it,
// bumps the state version, and notifies clients.
func (s *Service) ClearOverride(ctx context.Context, dayKey string) (int64, error) {
	if _, err := daykey.Parse(dayKey); err != nil {
		return 0, ErrBadDayKey
	}
	if err := s.riddles.ClearOverride(ctx, dayKey); err != nil {
		return 0, err
	}
	return s.resetDay(ctx, dayKey)
}

func (s *Service) resetDay(ctx context.Context, dayKey string) (int64, error) {
	if err := s.attempts.DeleteForDay(ctx, dayKey); err != nil {
		return 0, err
	}
	version, err := s.riddles.BumpVersion(ctx, dayKey)
	if err != nil {
		return 0, err
	}
	s.bus.Publish(events.Event{Topic: events.TopicOverride, DayKey: dayKey, Version: version})
	log.Info().Str("day", dayKey).Int64("version", version).Msg("day reset")
	return version, nil
}

// SetSchedule plans a riddle for a future day. Scheduling does not reset the
// day; it only matters once the day arrives.
func (s *Service) SetSchedule(ctx context.Context, req EntryRequest) error {
	e, err := req.validate()
	if err != nil {
		return err
	}
	if e.RiddleID != nil {
		if _, err := s.riddles.ByID(ctx, *e.RiddleID); err != nil {
			return ErrUnknownRiddle
		}
	}
	return s.riddles.SetSchedule(ctx, e)
}

func (s *Service) ClearSchedule(ctx context.Context, dayKey string) error {
	if _, err := daykey.Parse(dayKey); err != nil {
		return ErrBadDayKey
	}
	return s.riddles.ClearSchedule(ctx, dayKey)
}

// AddRiddle appends to the catalog and returns the assigned id.
func (s *Service) AddRiddle(ctx context.Context, req AddRiddleRequest) (int64, error) {
	r, err := req.validate()
	if err != nil {
		return 0, err
	}
	return s.riddles.Add(ctx, r)
}

// SetBan creates or lifts a ban.
func (s *Service) SetBan(ctx context.Context, req BanRequest) error {
	if strings.TrimSpace(req.UserID) == "" {
		return ErrEmptyField
	}
	return s.attempts.SetBan(ctx, req.UserID, req.Reason, req.Banned)
}

// SetBanner replaces the site banner and notifies clients.
func (s *Service) SetBanner(ctx context.Context, req BannerRequest) error {
	if err := s.banner.SetBanner(ctx, Banner{Message: req.Message, Active: req.Active}); err != nil {
		return err
	}
	s.bus.Publish(events.Event{Topic: events.TopicBanner})
	return nil
}

// SetRaceSuspended flips race availability and notifies clients.
func (s *Service) SetRaceSuspended(ctx context.Context, req RaceRequest) error {
	if err := s.race.SetSuspended(ctx, req.Suspended); err != nil {
		return err
	}
	s.bus.Publish(events.Event{Topic: events.TopicRace})
	return nil
}
