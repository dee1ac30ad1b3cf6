// HTTP wiring for the BrainteaserDay backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/banner", auth.
//   - Daily riddle endpoints (require auth): mounted under /daily.
//   - Profile, race, and event-stream endpoints (require auth).
//   - Admin console endpoints (require admin) under /admin.
//
// Notes:
//   - CORS is credentials-enabled for a single configured origin so the auth
//     cookie works cross-origin.
//   - Admin status lives on the user row; the middleware re-reads it per
//     request so revocation takes effect immediately.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/brainteaserday/server/internal/admin"
	"github.com/brainteaserday/server/internal/events"
	"github.com/brainteaserday/server/internal/guess"
	"github.com/brainteaserday/server/internal/leaderboard"
	"github.com/brainteaserday/server/internal/race"
	"github.com/brainteaserday/server/internal/riddle"
	"github.com/brainteaserday/server/internal/stats"
)

// Config carries the pieces of server behavior set at startup.
type Config struct {
	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	ClientOrigin   string
	SecureCookies  bool
	AdminEmails    []string
}

// Deps bundles the services the server exposes over HTTP.
type Deps struct {
	Users        *UserStore
	Riddles      *riddle.Store
	Resolver     *riddle.Resolver
	Attempts     *guess.Store
	Guesses      *guess.Service
	Board        *leaderboard.Store
	Stats        *stats.Store
	Achievements *stats.Achievements
	Race         *race.Manager
	RaceStore    *race.Store
	Banner       *admin.BannerStore
	Admin        *admin.Service
	Bus          *events.Bus
	Clock        clockwork.Clock
}

// Server bundles the router, configuration, and service handles.
type Server struct {
	r   *chi.Mux
	cfg Config
	d   Deps
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg Config, d Deps) *Server {
	if cfg.JWTExpiresDays <= 0 {
		cfg.JWTExpiresDays = 14
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "brainteaser_token"
	}
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	s := &Server{r: chi.NewRouter(), cfg: cfg, d: d}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(15 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.ClientOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"brainteaserday","endpoints":["/health","/auth/*","/daily/*","/race/*","/profile","/admin/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Public
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)
	s.r.Get("/banner", s.handleBanner)

	// Authenticated
	s.r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/auth/me", s.handleMe)
		r.Post("/auth/password", s.handleChangePassword)

		r.Get("/daily/riddle", s.handleDailyRiddle)
		r.Get("/daily/history", s.handleDailyHistory)
		r.Post("/daily/guess", s.handleDailyGuess)
		r.Get("/daily/leaderboard", s.handleDailyLeaderboard)
		r.Get("/daily/stats", s.handleDailyStats)
		r.Get("/archive", s.handleArchive)

		r.Get("/profile", s.handleGetProfile)
		r.Post("/profile", s.handleUpdateProfile)
		r.Get("/profile/completions", s.handleCompletions)
		r.Get("/profile/race-runs", s.handleRaceRuns)
		r.Get("/profile/achievements", s.handleAchievements)
		r.Get("/stats/me", s.handleMyStats)

		r.Get("/race/settings", s.handleRaceSettings)
		r.Post("/race/start", s.handleRaceStart)
		r.Post("/race/guess", s.handleRaceGuess)
		r.Post("/race/stop", s.handleRaceStop)

		r.Get("/events", s.handleEvents)
	})

	// Admin console
	s.r.Group(func(r chi.Router) {
		r.Use(s.requireAuth, s.requireAdmin)

		r.Post("/admin/override", s.handleSetOverride)
		r.Delete("/admin/override/{dayKey}", s.handleClearOverride)
		r.Post("/admin/schedule", s.handleSetSchedule)
		r.Delete("/admin/schedule/{dayKey}", s.handleClearSchedule)
		r.Post("/admin/riddles", s.handleAddRiddle)
		r.Post("/admin/ban", s.handleSetBan)
		r.Post("/admin/banner", s.handleSetBanner)
		r.Post("/admin/race", s.handleSetRace)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	log.Info().Str("addr", addr).Msg("listening")
	return http.ListenAndServe(addr, s.r)
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ helpers ------------------------------------

func writeJSON(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	http.Error(w, `{"error":"`+msg+`"}`, code)
}

// decode reads a JSON body into v; a malformed body yields a 400.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}
