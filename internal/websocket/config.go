package websocket

import (
	"time"

	"github.com/luciancaetano/yapnet"
	"github.com/luciancaetano/yapnet/internal/protocol"
)

// Config holds the connection manager configuration.
type Config struct {
	// URL is the WebSocket endpoint, e.g. "ws://localhost:8080/ws"
	URL string

	// ReconnectDelay is the fixed delay between a close and the next dial.
	ReconnectDelay time.Duration

	// HandshakeTimeout bounds a single dial.
	HandshakeTimeout time.Duration

	// PingPeriod is the keepalive interval. Must be lower than PongWait.
	PingPeriod time.Duration

	// PongWait is how long the connection may stay silent before it is considered dead.
	PongWait time.Duration

	// WriteTimeout bounds a single write.
	WriteTimeout time.Duration

	// MaxMessageSize is the largest inbound frame accepted, in bytes. It is capped at
	// protocol.MaxFrameSize, the largest frame the codec decodes.
	MaxMessageSize int64

	// Versions advertised in hello and resume.
	Versions []string

	// ChatTarget is the channel outbound chat lines are sent to.
	ChatTarget string

	// LocalSenderName is shown on echoed lines until the server assigns a name.
	LocalSenderName string

	// MonotonicSequence numbers outbound envelopes 0, 1, 2... per connection
	// instead of always sending 0.
	MonotonicSequence bool
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		URL:              yapnet.DefaultURL,
		ReconnectDelay:   yapnet.DefaultReconnectDelay,
		HandshakeTimeout: 5 * time.Second,
		PingPeriod:       54 * time.Second,
		PongWait:         60 * time.Second,
		WriteTimeout:     10 * time.Second,
		MaxMessageSize:   protocol.MaxFrameSize,
		Versions:         []string{yapnet.ProtocolVersion},
		ChatTarget:       yapnet.DefaultChatTarget,
		LocalSenderName:  yapnet.DefaultLocalSender,
	}
}

// withDefaults fills zero values from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.URL == "" {
		c.URL = d.URL
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = d.ReconnectDelay
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = d.HandshakeTimeout
	}
	if c.PongWait <= 0 {
		c.PongWait = d.PongWait
	}
	if c.PingPeriod <= 0 || c.PingPeriod >= c.PongWait {
		c.PingPeriod = (c.PongWait * 9) / 10
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.MaxMessageSize <= 0 || c.MaxMessageSize > protocol.MaxFrameSize {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if len(c.Versions) == 0 {
		c.Versions = d.Versions
	}
	if c.ChatTarget == "" {
		c.ChatTarget = d.ChatTarget
	}
	if c.LocalSenderName == "" {
		c.LocalSenderName = d.LocalSenderName
	}
	return c
}
