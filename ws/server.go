package ws

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/luciancaetano/yapnet/internal/loopback"
)

type Server = loopback.Server
type RateLimitConfig = loopback.RateLimitConfig
type CheckOriginFn = loopback.CheckOriginFn
type ServerConfig = *loopback.ServerConfig

// NewServer creates an in-memory chat server speaking the yapnet protocol on /ws.
// It is meant for tests and local demos.
//
// Example:
//
//	server := ws.NewServer(ws.NewServerConfig(":8080", ws.DefaultRateLimitConfig(), ws.AllOrigins(), logger))
//	if err := server.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Stop(context.Background())
func NewServer(cfg ServerConfig) *Server {
	return loopback.New(cfg)
}

func NewServerConfig(addr string, rateLimitConfig *RateLimitConfig, checkOrigin CheckOriginFn, logger zerolog.Logger) ServerConfig {
	return &loopback.ServerConfig{
		Addr:            addr,
		RateLimitConfig: rateLimitConfig,
		CheckOrigin:     checkOrigin,
		Logger:          logger,
	}
}

// AllOrigins returns the default checkOrigin function that allows all origins
func AllOrigins() CheckOriginFn {
	return func(r *http.Request) bool {
		return true
	}
}

// DefaultRateLimitConfig returns the default rate limit configuration
func DefaultRateLimitConfig() *RateLimitConfig {
	return loopback.DefaultRateLimitConfig()
}

// NoRateLimit returns a configuration with rate limiting disabled
func NoRateLimit() *RateLimitConfig {
	return loopback.NoRateLimit()
}
