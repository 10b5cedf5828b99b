package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/teamdraw/teamdraw-go/internal/config"
	"github.com/teamdraw/teamdraw-go/internal/dependencies/clock"
	"github.com/teamdraw/teamdraw-go/internal/dependencies/random"
	"github.com/teamdraw/teamdraw-go/internal/notifier"
	"github.com/teamdraw/teamdraw-go/internal/services/draw"
	"github.com/teamdraw/teamdraw-go/internal/services/registry"
	"github.com/teamdraw/teamdraw-go/internal/storage"
	"github.com/teamdraw/teamdraw-go/internal/storage/memory"
	redisstorage "github.com/teamdraw/teamdraw-go/internal/storage/redis"
	sqlitestorage "github.com/teamdraw/teamdraw-go/internal/storage/sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Store storage.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Notifier   *notifier.Notifier
	Registry   *registry.Service
	DrawEngine *draw.Engine
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType config.StorageType
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file path (required if StorageType is "sqlite")
	SQLitePath string
	// RevealDuration is the draw engine's reveal window; zero selects the default
	RevealDuration time.Duration
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Store
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageMemory
	}

	switch storageType {
	case config.StorageMemory:
		store = memory.New()
	case config.StorageRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case config.StorageSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlitestorage.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg.RevealDuration, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Store, clk clock.Clock, rnd random.Random, revealDuration time.Duration, logger *slog.Logger) *App {
	// Create services
	changeNotifier := notifier.New(logger)
	registryService := registry.NewService(store, changeNotifier, clk, rnd, logger)
	drawEngine := draw.NewEngine(registryService, clk, rnd, revealDuration, logger)

	return &App{
		Store:      store,
		Clock:      clk,
		Random:     rnd,
		Notifier:   changeNotifier,
		Registry:   registryService,
		DrawEngine: drawEngine,
	}
}

// Close releases storage resources held by the app
func (a *App) Close() error {
	a.Notifier.Close()
	if closer, ok := a.Store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
