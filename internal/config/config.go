package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/blackjack-go/internal/model"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config is the server configuration read from the environment
type Config struct {
	Host     string
	Port     int
	LogLevel slog.Level

	StorageType string
	RedisURL    string

	SessionIdleTimeout   time.Duration
	SessionSweepInterval time.Duration

	Room model.RoomConfig

	// AllowedOrigins are extra browser origins allowed to open the WebSocket
	AllowedOrigins []string
}

// Default returns the configuration used when no variables are set
func Default() Config {
	return Config{
		Port:                 8080,
		LogLevel:             slog.LevelInfo,
		StorageType:          StorageMemory,
		SessionIdleTimeout:   30 * time.Minute,
		SessionSweepInterval: 5 * time.Minute,
		Room:                 model.DefaultRoomConfig(),
	}
}

// Load reads an optional .env file from the working directory, then the
// process environment. Variables already set take precedence over .env.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a variable lookup
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	p := parser{getenv: getenv}

	cfg.Host = getenv("HOST")
	cfg.Port = p.int("PORT", cfg.Port)
	cfg.LogLevel = p.level("LOG_LEVEL", cfg.LogLevel)

	if v := strings.ToLower(strings.TrimSpace(getenv("STORAGE_TYPE"))); v != "" {
		cfg.StorageType = v
	}
	cfg.RedisURL = getenv("REDIS_URL")

	cfg.SessionIdleTimeout = p.duration("SESSION_IDLE_TIMEOUT", cfg.SessionIdleTimeout)
	cfg.SessionSweepInterval = p.duration("SESSION_SWEEP_INTERVAL", cfg.SessionSweepInterval)

	cfg.Room.Bet = p.int("ROOM_BET", cfg.Room.Bet)
	cfg.Room.Balance = p.int("ROOM_BALANCE", cfg.Room.Balance)
	cfg.Room.MaxPlayers = p.int("ROOM_MAX_PLAYERS", cfg.Room.MaxPlayers)

	for _, o := range strings.Split(getenv("WS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	if len(p.errs) > 0 {
		return Config{}, errors.Join(p.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and cross-field requirements
func (c Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	switch c.StorageType {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when STORAGE_TYPE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_TYPE must be %q or %q, got %q", StorageMemory, StorageRedis, c.StorageType))
	}
	if c.SessionIdleTimeout <= 0 {
		errs = append(errs, errors.New("SESSION_IDLE_TIMEOUT must be positive"))
	}
	if c.SessionSweepInterval <= 0 {
		errs = append(errs, errors.New("SESSION_SWEEP_INTERVAL must be positive"))
	}
	if c.Room.Bet <= 0 {
		errs = append(errs, errors.New("ROOM_BET must be positive"))
	}
	if c.Room.Balance < c.Room.Bet {
		errs = append(errs, errors.New("ROOM_BALANCE must cover ROOM_BET"))
	}
	if c.Room.MaxPlayers < 1 {
		errs = append(errs, errors.New("ROOM_MAX_PLAYERS must be at least 1"))
	}
	return errors.Join(errs...)
}

type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) int(key string, def int) int {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func (p *parser) level(key string, def slog.Level) slog.Level {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid level %q", key, v))
		return def
	}
	return l
}
