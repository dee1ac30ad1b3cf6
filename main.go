package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/brainteaserday/server/internal/admin"
	"github.com/brainteaserday/server/internal/events"
	"github.com/brainteaserday/server/internal/guess"
	"github.com/brainteaserday/server/internal/httpserver"
	"github.com/brainteaserday/server/internal/leaderboard"
	"github.com/brainteaserday/server/internal/race"
	"github.com/brainteaserday/server/internal/riddle"
	"github.com/brainteaserday/server/internal/stats"
)

func main() {
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := openDB(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	ctx := context.Background()
	clock := clockwork.NewRealClock()

	riddles := riddle.NewStore(db)
	if err := riddles.Seed(ctx); err != nil {
		log.Fatal().Err(err).Msg("seed riddle catalog")
	}
	resolver := riddle.NewResolver(riddles)

	attempts := guess.NewStore(db)
	statsStore := stats.NewStore(db)
	achievements := stats.NewAchievements(db, statsStore)
	limiter := guess.NewLimiter(cfg.GuessesPerMin, time.Minute, clock)
	guesses := guess.NewService(attempts, resolver, limiter, achievements)

	raceStore := race.NewStore(db)
	raceMgr := race.NewManager(raceStore, clock, race.NewGenerator(time.Now().UnixNano()))

	bus := events.NewBus()
	banner := admin.NewBannerStore(db)
	adminSvc := admin.NewService(riddles, attempts, raceStore, banner, bus)

	srv := httpserver.New(httpserver.Config{
		JWTSecret:      cfg.JWTSecret,
		JWTExpiresDays: cfg.JWTExpiresDays,
		CookieName:     cfg.CookieName,
		ClientOrigin:   cfg.ClientOrigin,
		SecureCookies:  cfg.SecureCookies,
		AdminEmails:    cfg.AdminEmails,
	}, httpserver.Deps{
		Users:        httpserver.NewUserStore(db),
		Riddles:      riddles,
		Resolver:     resolver,
		Attempts:     attempts,
		Guesses:      guesses,
		Board:        leaderboard.NewStore(db),
		Stats:        statsStore,
		Achievements: achievements,
		Race:         raceMgr,
		RaceStore:    raceStore,
		Banner:       banner,
		Admin:        adminSvc,
		Bus:          bus,
		Clock:        clock,
	})

	log.Info().Str("port", cfg.Port).Msg("starting brainteaserday server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
