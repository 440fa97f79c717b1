package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"roundbot/internal/adapters/discord"
	"roundbot/internal/application"
	"roundbot/internal/config"
	"roundbot/internal/infrastructure/database"
	"roundbot/internal/infrastructure/i18n"
	"roundbot/internal/infrastructure/memory"
	"roundbot/pkg/tz"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := tz.Load(cfg.Timezone); err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("load timezone")
	}
	clock := clockwork.NewRealClock()

	repos, closeStore, err := openStore(ctx, cfg, clock)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("open store")
	}
	defer closeStore()

	translator, err := i18n.NewTranslator(cfg.Locale)
	if err != nil {
		log.Fatal().Err(err).Msg("load translations")
	}

	session, err := discord.NewSession(cfg.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("create discord session")
	}
	notifier := discord.NewNotifier(session, translator, cfg.Locale)

	rounds := application.NewRoundService(repos, notifier, translator, clock, application.Settings{
		Locale:       cfg.Locale,
		Window:       cfg.RoundWindow,
		TickInterval: cfg.TickInterval,
	})
	defer rounds.Shutdown()
	participants := application.NewParticipantService(rounds)

	if n, err := rounds.Recover(ctx); err != nil {
		log.Error().Err(err).Msg("recover round runtime")
	} else if n > 0 {
		log.Info().Int("countdowns", n).Msg("countdowns resumed")
	}

	bot := discord.NewBot(cfg, session, rounds, participants, translator)
	if err := bot.Start(ctx); err != nil {
		log.Error().Err(err).Msg("bot stopped")
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) {
	zerolog.SetGlobalLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// openStore returns the repositories of the configured backend and a close func.
func openStore(ctx context.Context, cfg *config.Config, clock clockwork.Clock) (application.Repositories, func(), error) {
	if cfg.Store == config.StoreMemory {
		store := memory.NewStore(clock)
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return application.Repositories{
			Events:        store.Events(),
			Rounds:        store.Rounds(),
			Participants:  store.Participants(),
			Opinions:      store.Opinions(),
			RoundMessages: store.RoundMessages(),
		}, func() {}, nil
	}

	if cfg.MigrationsPath != "" {
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			return application.Repositories{}, nil, err
		}
	}
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return application.Repositories{}, nil, err
	}
	q := database.NewQueries(pool)
	return application.Repositories{
		Events:        database.NewEventRepository(q),
		Rounds:        database.NewRoundRepository(q),
		Participants:  database.NewParticipantRepository(q),
		Opinions:      database.NewOpinionRepository(q),
		RoundMessages: database.NewRoundMessageRepository(q),
	}, pool.Close, nil
}
