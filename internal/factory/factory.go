package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/blackjack-go/internal/api"
	"github.com/mcoot/blackjack-go/internal/api/handler"
	"github.com/mcoot/blackjack-go/internal/api/realtime"
	"github.com/mcoot/blackjack-go/internal/dependencies/clock"
	"github.com/mcoot/blackjack-go/internal/dependencies/random"
	"github.com/mcoot/blackjack-go/internal/model"
	"github.com/mcoot/blackjack-go/internal/services/deck"
	"github.com/mcoot/blackjack-go/internal/services/game"
	"github.com/mcoot/blackjack-go/internal/services/room"
	"github.com/mcoot/blackjack-go/internal/services/scoring"
	"github.com/mcoot/blackjack-go/internal/services/session"
	"github.com/mcoot/blackjack-go/internal/storage"
	"github.com/mcoot/blackjack-go/internal/storage/memory"
	redisstorage "github.com/mcoot/blackjack-go/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage     storage.Storage
	StorageType string

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Decks  deck.Source

	// Services
	ScoringService    *scoring.Service
	Engine            *game.Engine
	SessionController *session.Controller
	RoomController    *room.Controller
	HubManager        *realtime.HubManager

	AllowedOrigins []string

	Logger *slog.Logger
	closer io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Session holds single-player lifetime settings (zero value means defaults)
	Session session.Config
	// Room holds the fixed multiplayer wager settings (zero value means defaults)
	Room model.RoomConfig
	// AllowedOrigins lists browser origins, besides the server's own host,
	// that may open the WebSocket
	AllowedOrigins []string
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var (
		store  storage.Storage
		closer io.Closer
	)
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(ctx, *cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closer = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	rnd := random.New()
	app := newWithDependencies(store, clock.New(), rnd, deck.New(rnd), cfg, logger)
	app.StorageType = storageType
	app.closer = closer
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	decks deck.Source,
	cfg Config,
	logger *slog.Logger,
) *App {
	roomCfg := cfg.Room
	if roomCfg == (model.RoomConfig{}) {
		roomCfg = model.DefaultRoomConfig()
	}

	scoringService := scoring.New()
	engine := game.NewEngine(decks, scoringService, logger.With(slog.String("component", "engine")))
	sessionController := session.NewController(store, engine, clk, logger.With(slog.String("component", "sessions")), cfg.Session)
	hubManager := realtime.NewHubManager(logger)
	roomController := room.NewController(
		store,
		decks,
		scoringService,
		clk,
		rnd,
		realtime.NewPublisher(hubManager, logger),
		logger.With(slog.String("component", "rooms")),
		roomCfg,
	)

	return &App{
		Storage:           store,
		StorageType:       StorageTypeMemory,
		Clock:             clk,
		Random:            rnd,
		Decks:             decks,
		ScoringService:    scoringService,
		Engine:            engine,
		SessionController: sessionController,
		RoomController:    roomController,
		HubManager:        hubManager,
		AllowedOrigins:    cfg.AllowedOrigins,
		Logger:            logger,
	}
}

// Router builds the HTTP handler serving the REST API and the WebSocket
func (a *App) Router() http.Handler {
	var pinger handler.Pinger
	if p, ok := a.Storage.(handler.Pinger); ok {
		pinger = p
	}
	return api.NewRouter(api.RouterConfig{
		Logger:            a.Logger,
		SessionController: a.SessionController,
		RoomController:    a.RoomController,
		HubManager:        a.HubManager,
		StorageType:       a.StorageType,
		Pinger:            pinger,
		AllowedOrigins:    a.AllowedOrigins,
	})
}

// Close releases storage connections
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
