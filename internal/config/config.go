// Package config loads yapchat settings from the environment.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/luciancaetano/yapnet/internal/loopback"
	"github.com/luciancaetano/yapnet/internal/websocket"
)

// Prefix is prepended to every variable name, e.g. YAPNET_URL.
const Prefix = "YAPNET"

type Config struct {
	URL               string        `envconfig:"URL" default:"ws://localhost:8080/ws"`
	ReconnectDelay    time.Duration `envconfig:"RECONNECT_DELAY" default:"1s"`
	HandshakeTimeout  time.Duration `envconfig:"HANDSHAKE_TIMEOUT" default:"5s"`
	PingPeriod        time.Duration `envconfig:"PING_PERIOD" default:"54s"`
	PongWait          time.Duration `envconfig:"PONG_WAIT" default:"60s"`
	WriteTimeout      time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s"`
	MaxMessageSize    int64         `envconfig:"MAX_MESSAGE_SIZE" default:"1048576"`
	Versions          []string      `envconfig:"VERSIONS" default:"1"`
	ChatTarget        string        `envconfig:"CHAT_TARGET" default:"general"`
	LocalSenderName   string        `envconfig:"LOCAL_SENDER_NAME" default:"You"`
	MonotonicSequence bool          `envconfig:"MONOTONIC_SEQUENCE" default:"false"`

	// Loopback server settings.
	ListenAddr     string  `envconfig:"LISTEN_ADDR" default:":8080"`
	RatePerSecond  float64 `envconfig:"RATE_PER_SECOND" default:"100"`
	RateBurst      int     `envconfig:"RATE_BURST" default:"200"`
	RateLimitOff   bool    `envconfig:"RATE_LIMIT_DISABLED" default:"false"`
	AllowAllOrigin bool    `envconfig:"ALLOW_ALL_ORIGINS" default:"true"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads a .env file from the working directory, when present, and then the
// YAPNET_* environment. Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, errors.Wrap(err, "load .env")
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "process environment")
	}
	return cfg, nil
}

// Client returns the connection manager configuration.
func (c Config) Client() websocket.Config {
	return websocket.Config{
		URL:               c.URL,
		ReconnectDelay:    c.ReconnectDelay,
		HandshakeTimeout:  c.HandshakeTimeout,
		PingPeriod:        c.PingPeriod,
		PongWait:          c.PongWait,
		WriteTimeout:      c.WriteTimeout,
		MaxMessageSize:    c.MaxMessageSize,
		Versions:          c.Versions,
		ChatTarget:        c.ChatTarget,
		LocalSenderName:   c.LocalSenderName,
		MonotonicSequence: c.MonotonicSequence,
	}
}

// RateLimit returns the per-peer limit for the loopback server.
func (c Config) RateLimit() *loopback.RateLimitConfig {
	if c.RateLimitOff {
		return loopback.NoRateLimit()
	}
	return &loopback.RateLimitConfig{
		MessagesPerSecond: rate.Limit(c.RatePerSecond),
		Burst:             c.RateBurst,
		Enabled:           true,
	}
}

// Level parses LogLevel, falling back to info.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
