package loopback

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/time/rate"

	"github.com/luciancaetano/yapnet"
	"github.com/luciancaetano/yapnet/internal/protocol"
)

// CheckOriginFn validates the origin of a WebSocket upgrade request.
type CheckOriginFn = func(r *http.Request) bool

type ServerConfig struct {
	Addr            string
	RateLimitConfig *RateLimitConfig
	CheckOrigin     CheckOriginFn
	Logger          zerolog.Logger
}

// RateLimitConfig defines rate limiting configuration for peers
type RateLimitConfig struct {
	// MessagesPerSecond defines how many messages a peer can send per second
	MessagesPerSecond rate.Limit
	// Burst defines the maximum burst size (token bucket capacity)
	Burst int
	// Enabled determines if rate limiting is active
	Enabled bool
}

// DefaultRateLimitConfig returns the default rate limit configuration
// Allows 100 messages per second with burst of 200
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		MessagesPerSecond: 100,
		Burst:             200,
		Enabled:           true,
	}
}

// NoRateLimit returns a configuration with rate limiting disabled
func NoRateLimit() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled: false,
	}
}

// Server is a small in-memory chat server speaking the yapnet protocol. It backs the
// integration tests and the demo CLI.
//
// It hands out a fresh token for every hello, accepts resume for known tokens that
// are not already online, and relays chat-send to every other authenticated peer.
type Server struct {
	addr   string
	server *http.Server
	peers  sync.Map // map[string]*Peer

	rateLimitConfig *RateLimitConfig

	mu       sync.RWMutex
	running  bool
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	usersMu  sync.Mutex
	names    map[string]string // token -> name
	tokens   map[string]string // name -> token
	online   map[string]string // token -> peer id
	sessions map[string]string // peer id -> token
}

// New creates a loopback server. A nil RateLimitConfig means DefaultRateLimitConfig().
func New(cfg *ServerConfig) *Server {
	if cfg.RateLimitConfig == nil {
		cfg.RateLimitConfig = DefaultRateLimitConfig()
	}
	return &Server{
		addr:            cfg.Addr,
		rateLimitConfig: cfg.RateLimitConfig,
		logger:          cfg.Logger.With().Str("component", "loopback").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.CheckOrigin,
		},
		names:    make(map[string]string),
		tokens:   make(map[string]string),
		online:   make(map[string]string),
		sessions: make(map[string]string),
	}
}

// Start starts listening on the configured address, serving the endpoint at /ws.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	mux := http.NewServeMux()
	mux.Handle("/ws", s)

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Check for immediate startup errors with a small timeout
	select {
	case err := <-errChan:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return err
	case <-ctx.Done():
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(stopCtx)
	case <-time.After(100 * time.Millisecond):
		s.logger.Info().Str("addr", s.addr).Msg("loopback server listening")
		return nil
	}
}

// Stop closes every peer and shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.CloseAll(ctx)

	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// CloseAll drops every connected peer. Identities survive, so peers may resume.
func (s *Server) CloseAll(ctx context.Context) {
	s.peers.Range(func(key, value interface{}) bool {
		if peer, ok := value.(*Peer); ok {
			peer.Close(ctx)
		}
		return true
	})
}

// ServeHTTP upgrades the request and serves the peer until it disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("upgrade failed")
		return
	}

	peer := NewPeer(conn, r.RemoteAddr, s.rateLimitConfig)
	s.peers.Store(peer.ID(), peer)
	s.logger.Debug().Str("peer_id", peer.ID()).Str("remote_addr", peer.RemoteAddr()).Msg("peer connected")

	go s.handlePeer(peer)
}

// PeerCount returns the number of connected peers.
func (s *Server) PeerCount() int {
	n := 0
	s.peers.Range(func(key, value interface{}) bool {
		n++
		return true
	})
	return n
}

// Online reports whether the user registered as name currently has a connection.
func (s *Server) Online(name string) bool {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	token, ok := s.tokens[name]
	if !ok {
		return false
	}
	_, online := s.online[token]
	return online
}

func (s *Server) handlePeer(peer *Peer) {
	defer func() {
		s.release(peer)
		s.peers.Delete(peer.ID())
		peer.Close(context.Background())
		s.logger.Debug().Str("peer_id", peer.ID()).Msg("peer disconnected")
	}()

	peer.conn.SetReadLimit(protocol.MaxFrameSize)
	peer.conn.SetReadDeadline(time.Now().Add(pongWait))
	peer.conn.SetPongHandler(func(string) error {
		peer.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-peer.Context().Done():
			return
		default:
			_, data, err := peer.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Debug().Err(err).Str("peer_id", peer.ID()).Msg("unexpected close")
				}
				return
			}

			peer.conn.SetReadDeadline(time.Now().Add(pongWait))

			if !peer.CheckRateLimit() {
				s.logger.Warn().Str("peer_id", peer.ID()).Str("remote_addr", peer.RemoteAddr()).Msg("rate limit exceeded")
				s.sendError(peer, yapnet.ErrKindRateLimited, "Rate limit exceeded", nil)
				peer.CloseWithCode(context.Background(), websocket.ClosePolicyViolation, "Rate limit exceeded")
				return
			}

			env, err := protocol.Decode(data)
			if err != nil {
				s.logger.Warn().Err(err).Str("peer_id", peer.ID()).Msg("malformed message")
				s.sendError(peer, yapnet.ErrKindMalformed, err.Error(), nil)
				continue
			}

			s.handleEnvelope(peer, env)
		}
	}
}

// handleEnvelope runs on the peer's read goroutine so a peer's messages are handled in order.
func (s *Server) handleEnvelope(peer *Peer, env protocol.Envelope) {
	switch p := env.Payload.(type) {
	case protocol.HelloPayload:
		s.handleHello(peer, p)
	case protocol.ResumePayload:
		s.handleResume(peer, p)
	case protocol.ChatSendPayload:
		s.handleChat(peer, p)
	default:
		s.sendError(peer, yapnet.ErrKindInvalidMsgType,
			fmt.Sprintf("The message type %v is not a valid type.", env.Kind),
			map[string]any{"invalid_type": string(env.Kind)})
	}
}

func (s *Server) handleHello(peer *Peer, p protocol.HelloPayload) {
	if !s.checkVersions(peer, p.Versions) {
		return
	}

	s.usersMu.Lock()
	if _, ok := s.sessions[peer.ID()]; ok {
		s.usersMu.Unlock()
		s.sendError(peer, yapnet.ErrKindAlreadyConnected, "You are already logged in on this connection", nil)
		return
	}
	if _, taken := s.tokens[p.Username]; taken {
		s.usersMu.Unlock()
		s.sendError(peer, yapnet.ErrKindNonUniqueUsername, fmt.Sprintf("username %q is already taken", p.Username), nil)
		return
	}
	token := uuid.NewString()
	s.names[token] = p.Username
	s.tokens[p.Username] = token
	s.bindLocked(peer, token)
	s.usersMu.Unlock()

	s.logger.Info().Str("peer_id", peer.ID()).Str("name", p.Username).Msg("registered")
	s.send(peer, protocol.WelcomePayload{Token: token, Name: p.Username, Version: yapnet.ProtocolVersion})
}

func (s *Server) handleResume(peer *Peer, p protocol.ResumePayload) {
	if !s.checkVersions(peer, p.Versions) {
		return
	}

	s.usersMu.Lock()
	name, known := s.names[p.Token]
	if !known {
		s.usersMu.Unlock()
		s.sendError(peer, yapnet.ErrKindInvalidToken, "The token given is not a valid token", nil)
		return
	}
	if cur, ok := s.sessions[peer.ID()]; ok && cur != p.Token {
		s.usersMu.Unlock()
		s.sendError(peer, yapnet.ErrKindAlreadyConnected, "You are already logged in on this connection", nil)
		return
	}
	if owner, ok := s.online[p.Token]; ok && owner != peer.ID() {
		s.usersMu.Unlock()
		s.sendError(peer, yapnet.ErrKindAlreadyConnected, "You are already connected to the server", nil)
		return
	}
	s.bindLocked(peer, p.Token)
	s.usersMu.Unlock()

	s.logger.Info().Str("peer_id", peer.ID()).Str("name", name).Msg("resumed")
	s.send(peer, protocol.WelcomePayload{Token: p.Token, Name: name, Version: yapnet.ProtocolVersion})
}

func (s *Server) handleChat(peer *Peer, p protocol.ChatSendPayload) {
	s.usersMu.Lock()
	token, ok := s.sessions[peer.ID()]
	name := s.names[token]
	s.usersMu.Unlock()

	if !ok {
		s.sendError(peer, yapnet.ErrKindNotLoggedIn, "You are not logged in, so you cannot chat.", nil)
		return
	}

	s.Broadcast(context.Background(), protocol.New(protocol.ChatPayload{
		Sender:  name,
		Content: p.Content,
		Target:  p.Target,
	}), peer.ID())
}

// Broadcast sends env to every authenticated peer except the one with id except.
func (s *Server) Broadcast(ctx context.Context, env protocol.Envelope, except string) {
	s.usersMu.Lock()
	targets := lo.Filter(lo.Keys(s.sessions), func(id string, _ int) bool { return id != except })
	s.usersMu.Unlock()

	for _, id := range targets {
		if value, ok := s.peers.Load(id); ok {
			if err := value.(*Peer).Send(ctx, env); err != nil {
				s.logger.Debug().Err(err).Str("peer_id", id).Msg("broadcast send failed")
			}
		}
	}
}

func (s *Server) checkVersions(peer *Peer, versions []string) bool {
	if lo.Contains(versions, yapnet.ProtocolVersion) {
		return true
	}
	s.sendError(peer, yapnet.ErrKindUnsupportedVersion, "No supported protocol version offered",
		map[string]any{"supported": []string{yapnet.ProtocolVersion}})
	return false
}

// bindLocked attaches token to peer. usersMu must be held.
func (s *Server) bindLocked(peer *Peer, token string) {
	s.online[token] = peer.ID()
	s.sessions[peer.ID()] = token
}

// release marks the peer's identity offline so it can be resumed elsewhere.
func (s *Server) release(peer *Peer) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	if token, ok := s.sessions[peer.ID()]; ok {
		delete(s.sessions, peer.ID())
		if s.online[token] == peer.ID() {
			delete(s.online, token)
		}
	}
}

func (s *Server) send(peer *Peer, p protocol.Payload) {
	if err := peer.Send(context.Background(), protocol.New(p)); err != nil {
		s.logger.Debug().Err(err).Str("peer_id", peer.ID()).Str("kind", string(p.Kind())).Msg("send failed")
	}
}

func (s *Server) sendError(peer *Peer, kind, info string, details map[string]any) {
	s.send(peer, protocol.ErrorPayload{ErrKind: kind, Info: info, Details: details})
}
