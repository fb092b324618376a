package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/detectivesigma/sigma/internal/broker"
	"github.com/detectivesigma/sigma/internal/envstruct"
	"github.com/detectivesigma/sigma/internal/errors"
	"github.com/detectivesigma/sigma/internal/leaderboard"
	"github.com/detectivesigma/sigma/internal/logging"
	"github.com/detectivesigma/sigma/internal/models"
	"github.com/detectivesigma/sigma/internal/pprofserver"
	"github.com/detectivesigma/sigma/internal/repositories"
	"github.com/detectivesigma/sigma/internal/scoring"
	"github.com/detectivesigma/sigma/internal/sqlite"
	"github.com/detectivesigma/sigma/internal/webauthnhandler"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type config struct {
	Addr           string `env:"SIGMA_ADDR"            envDefault:"localhost:4000"`
	PprofPort      string `env:"SIGMA_PPROF_PORT"      envDefault:":6060"`
	SQLiteURL      string `env:"SIGMA_SQLITE_URL"      envDefault:"./sigma.sqlite"`
	FQDN           string `env:"SIGMA_FQDN"            envDefault:"localhost"`
	RedisAddr      string `env:"SIGMA_REDIS_ADDR"      envDefault:""`
	LeaderboardTTL string `env:"SIGMA_LEADERBOARD_TTL" envDefault:"30s"`
}

type application struct {
	logger           *slog.Logger
	sessionManager   *scs.SessionManager
	webAuthnHandler  *webauthnhandler.WebAuthnHandler
	cases            *repositories.CaseRepository
	progress         *repositories.ProgressRepository
	scoring          *scoring.Service
	leaderboard      leaderboard.Reader
	leaderboardCache *leaderboard.Cache // nil when Redis is not configured
	leaderboardFeed  *broker.FanOutBroker[[]models.LeaderboardEntry]
}

func main() {
	// .env is a development convenience, its absence is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	loggerHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{ //nolint:exhaustruct
		Level:     slog.LevelDebug,
		AddSource: true,
	})
	logger := slog.New(logging.NewContextHandler(loggerHandler))

	ctx := context.Background()
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server failed", errors.SlogError(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "parse environment")
	}

	// pprof listens on localhost so that it's not open to the world.
	pprofserver.Launch(cfg.PprofPort, logger)

	dbs, err := sqlite.NewDatabase(ctx, cfg.SQLiteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer func() {
		if closeErr := dbs.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close database", errors.SlogError(closeErr))
		}
	}()

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite.DB, 24*time.Hour)
	sessionManager.Lifetime = 12 * time.Hour

	rpOrigins := []string{fmt.Sprintf("http://%s", cfg.Addr)}
	webAuthnHandler, err := webauthnhandler.New(cfg.FQDN, rpOrigins, logger, sessionManager, dbs)
	if err != nil {
		return errors.Wrap(err, "initialise webauthn")
	}

	cases := repositories.NewCaseRepository(dbs, logger)
	progress := repositories.NewProgressRepository(dbs, logger)

	// The leaderboard reads straight from SQLite unless Redis is configured,
	// in which case a read-through cache absorbs the dashboard polling.
	var (
		board leaderboard.Reader = progress
		cache *leaderboard.Cache
	)
	if cfg.RedisAddr != "" {
		ttl, parseErr := time.ParseDuration(cfg.LeaderboardTTL)
		if parseErr != nil {
			return errors.Wrap(parseErr, "parse leaderboard TTL", slog.String("ttl", cfg.LeaderboardTTL))
		}
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}) //nolint:exhaustruct
		cache = leaderboard.NewCache(progress, client, ttl, logger)
		board = cache
	}

	leaderboardFeed := broker.NewFanOutBroker[[]models.LeaderboardEntry]()
	go leaderboardFeed.Start()
	defer leaderboardFeed.Stop()

	app := application{
		logger:           logger,
		sessionManager:   sessionManager,
		webAuthnHandler:  webAuthnHandler,
		cases:            cases,
		progress:         progress,
		scoring:          scoring.NewService(cases, progress, scoring.NewOptionGenerator(), logger),
		leaderboard:      board,
		leaderboardCache: cache,
		leaderboardFeed:  leaderboardFeed,
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}
