// Package factory wires the application graph: storage backend,
// injected dependencies, services, and the realtime gateway.
package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/nettd/lobby-server/internal/dependencies/clock"
	"github.com/nettd/lobby-server/internal/dependencies/random"
	"github.com/nettd/lobby-server/internal/services/chat"
	"github.com/nettd/lobby-server/internal/services/identity"
	"github.com/nettd/lobby-server/internal/services/match"
	"github.com/nettd/lobby-server/internal/services/room"
	"github.com/nettd/lobby-server/internal/services/session"
	"github.com/nettd/lobby-server/internal/storage"
	"github.com/nettd/lobby-server/internal/storage/memory"
	redisstorage "github.com/nettd/lobby-server/internal/storage/redis"
	"github.com/nettd/lobby-server/internal/transport/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	IdentityService *identity.Service
	ChatService     *chat.Service
	MatchService    *match.Service
	RoomService     *room.Service
	SessionTracker  *session.Tracker

	// Realtime
	HubManager *ws.HubManager
	Gateway    *ws.Gateway
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
	// GatewayToken gates websocket upgrades when non-empty
	GatewayToken string
	// ChatFilter optionally screens chat text before posting
	ChatFilter chat.Filter
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
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
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg.GatewayToken, cfg.ChatFilter, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	gatewayToken string,
	filter chat.Filter,
	logger *slog.Logger,
) *App {
	hubManager := ws.NewHubManager(logger)

	identityService := identity.New(store, clk, logger)
	chatService := chat.New(store, clk, hubManager, filter, logger)
	matchService := match.New(store, clk, hubManager, logger)
	roomService := room.New(store, chatService, matchService, clk, rnd, hubManager, logger)
	sessionTracker := session.NewTracker(identityService, roomService, store, logger)

	gateway := ws.NewGateway(
		sessionTracker,
		identityService,
		roomService,
		chatService,
		matchService,
		hubManager,
		clk,
		gatewayToken,
		logger,
	)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		IdentityService: identityService,
		ChatService:     chatService,
		MatchService:    matchService,
		RoomService:     roomService,
		SessionTracker:  sessionTracker,
		HubManager:      hubManager,
		Gateway:         gateway,
	}
}
