package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/spyword/internal/api"
	"github.com/mcoot/spyword/internal/config"
	"github.com/mcoot/spyword/internal/dependencies/clock"
	"github.com/mcoot/spyword/internal/dependencies/random"
	"github.com/mcoot/spyword/internal/engine"
	"github.com/mcoot/spyword/internal/model"
	"github.com/mcoot/spyword/internal/persistence"
	"github.com/mcoot/spyword/internal/persistence/postgres"
	"github.com/mcoot/spyword/internal/persistence/sqlite"
	"github.com/mcoot/spyword/internal/protocol"
	"github.com/mcoot/spyword/internal/services/auth"
	"github.com/mcoot/spyword/internal/services/binding"
	"github.com/mcoot/spyword/internal/services/dispatch"
	"github.com/mcoot/spyword/internal/services/player"
	"github.com/mcoot/spyword/internal/services/session"
	"github.com/mcoot/spyword/internal/services/settings"
	"github.com/mcoot/spyword/internal/services/words"
	"github.com/mcoot/spyword/internal/storage"
	"github.com/mcoot/spyword/internal/storage/memory"
	redisstorage "github.com/mcoot/spyword/internal/storage/redis"
	"github.com/mcoot/spyword/internal/ws"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage
	Store   persistence.Store
	Mirror  *persistence.Mirror

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Players    *player.Registry
	Binder     *binding.Binder
	Dispatcher *dispatch.Dispatcher
	Settings   *settings.Service
	Words      *words.Service
	Auth       *auth.Service
	Scheduler  *engine.Scheduler
	Controller *session.Controller
	Engine     *engine.Engine
	Hub        *ws.Hub
	WSHandler  *ws.Handler

	logger        *slog.Logger
	publicBaseURL string
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the registry backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Persistence selects the durable mirror ("none", "sqlite" or "postgres")
	Persistence string
	SQLitePath  string
	PostgresDSN string
	// WordsFile replaces the embedded word list (optional)
	WordsFile string
	// Settings are the defaults until an administrator saves others.
	// If zero value, defaults to model.DefaultSettings()
	Settings model.Settings
	// Session and Engine tune the core; nil uses the package defaults.
	// An explicit zero duration in either is kept as is.
	Session *session.Config
	Engine  *engine.Config
	// Dispatch zero values use defaults
	Dispatch dispatch.Config
	// RandomSeed makes role assignment reproducible when non-zero
	RandomSeed uint64
	// AdminSecretHash is the bcrypt hash guarding the admin API (optional)
	AdminSecretHash string
	// PublicBaseURL prefixes join links
	PublicBaseURL string
}

// FromEnv converts environment configuration into a factory Config
func FromEnv(env config.Config, logger *slog.Logger) (Config, error) {
	fallback, err := dispatch.ParseFallbackMode(env.FallbackMode)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Logger:      logger,
		StorageType: env.StorageType,
		Persistence: env.Persistence,
		SQLitePath:  env.SQLitePath,
		PostgresDSN: env.PostgresDSN,
		WordsFile:   env.WordsFile,
		Settings: model.Settings{
			MinPlayersToStart:  env.MinPlayersToStart,
			ShowHintToRegulars: env.ShowHintToRegulars,
		},
		Session: &session.Config{RoleRedeliveryDelay: env.RoleRedelivery},
		Engine: &engine.Config{
			ReconnectGrace: env.ReconnectGrace,
			QueueSize:      engine.DefaultConfig().QueueSize,
		},
		Dispatch: dispatch.Config{
			Fallback:   fallback,
			QueueLimit: dispatch.DefaultConfig().QueueLimit,
		},
		RandomSeed:      env.RandomSeed,
		AdminSecretHash: env.AdminSecretHash,
		PublicBaseURL:   env.PublicBaseURL,
	}

	if env.StorageType == config.StorageRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = env.RedisURL
		cfg.RedisConfig = &redisCfg
	}
	return cfg, nil
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	switch cfg.StorageType {
	case "", config.StorageMemory:
		store = memory.New()
	case config.StorageRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create the durable store behind the mirror
	var durable persistence.Store
	switch cfg.Persistence {
	case "", config.PersistenceNone:
		durable = persistence.Nop{}
	case config.PersistenceSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		durable = s
	case config.PersistencePostgres:
		s, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		durable = s
	default:
		return nil, errors.New("invalid Persistence: must be 'none', 'sqlite' or 'postgres'")
	}

	// Create external dependencies
	clk := clock.New()
	var rnd random.Random = random.New()
	if cfg.RandomSeed != 0 {
		rnd = random.NewSeeded(cfg.RandomSeed)
		logger.Warn("using seeded random source", slog.Uint64("seed", cfg.RandomSeed))
	}

	app, err := newWithDependencies(store, durable, clk, rnd, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := app.load(ctx, cfg.WordsFile); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	durable persistence.Store,
	clk clock.Clock,
	rnd random.Random,
	cfg Config,
	logger *slog.Logger,
) (*App, error) {
	if cfg.Settings == (model.Settings{}) {
		cfg.Settings = model.DefaultSettings()
	}
	sessionCfg := session.DefaultConfig()
	if cfg.Session != nil {
		sessionCfg = *cfg.Session
	}
	engineCfg := engine.DefaultConfig()
	if cfg.Engine != nil {
		engineCfg = *cfg.Engine
	}

	authService, err := auth.New(cfg.AdminSecretHash, logger)
	if err != nil {
		return nil, err
	}

	mirror := persistence.NewMirror(durable, persistence.DefaultMirrorConfig(), logger)
	settingsService := settings.New(durable, cfg.Settings, logger)
	wordsService, err := words.New(durable, rnd, logger)
	if err != nil {
		mirror.Close()
		return nil, err
	}

	binder := binding.New()
	hub := ws.NewHub(logger)
	dispatcher := dispatch.New(hub, binder, cfg.Dispatch, logger)
	players := player.NewRegistry(store, clk, mirror, logger)

	loop := engine.NewLoop(engineCfg.QueueSize, logger)
	scheduler := engine.NewScheduler(clk, loop.Post)
	sessions := session.NewRegistry(store, clk, rnd, mirror, scheduler, logger)
	controller := session.NewController(
		sessions, players, dispatcher, settingsService, wordsService,
		rnd, clk, scheduler, sessionCfg, logger,
	)
	eng := engine.New(loop, players, controller, binder, dispatcher, mirror, settingsService, clk, engineCfg, logger)
	wsHandler := ws.NewHandler(hub, protocol.NewRouter(eng, logger), eng, logger)

	return &App{
		Storage:       store,
		Store:         durable,
		Mirror:        mirror,
		Clock:         clk,
		Random:        rnd,
		Players:       players,
		Binder:        binder,
		Dispatcher:    dispatcher,
		Settings:      settingsService,
		Words:         wordsService,
		Auth:          authService,
		Scheduler:     scheduler,
		Controller:    controller,
		Engine:        eng,
		Hub:           hub,
		WSHandler:     wsHandler,
		logger:        logger,
		publicBaseURL: cfg.PublicBaseURL,
	}, nil
}

// load reads the word list and any administrator overrides
func (a *App) load(ctx context.Context, wordsFile string) error {
	if wordsFile != "" {
		if err := a.Words.LoadFromFile(wordsFile); err != nil {
			return fmt.Errorf("load words file: %w", err)
		}
	}
	if err := a.Words.LoadFromStore(ctx); err != nil {
		return fmt.Errorf("load stored words: %w", err)
	}
	if err := a.Settings.LoadFromStore(ctx); err != nil {
		return fmt.Errorf("load stored settings: %w", err)
	}
	return nil
}

// Handler returns the HTTP handler serving the API and the event channel
func (a *App) Handler() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:        a.logger,
		Sessions:      a.Engine,
		Settings:      a.Settings,
		Words:         a.Words,
		AdminAuth:     a.Auth,
		EventChannel:  a.WSHandler,
		PublicBaseURL: a.publicBaseURL,
	})
}

// Run processes engine work until ctx is cancelled
func (a *App) Run(ctx context.Context) {
	a.Engine.Loop().Run(ctx)
}

// Close disconnects clients and flushes pending writes.
// The engine loop must already have stopped.
func (a *App) Close() {
	a.Hub.Close()
	a.Mirror.Close()
	if err := a.Store.Close(); err != nil {
		a.logger.Error("failed to close store", slog.String("error", err.Error()))
	}
	if closer, ok := a.Storage.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}
}
