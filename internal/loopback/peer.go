package loopback

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/luciancaetano/yapnet/internal/protocol"
)

const (
	sendBufferSize = 256
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
)

var errPeerClosed = errors.New("peer connection is closed")

// Peer is one client connected to the loopback server.
type Peer struct {
	id          string
	conn        *websocket.Conn
	remoteAddr  string
	ctx         context.Context
	cancel      context.CancelFunc
	sendCh      chan []byte
	mu          sync.RWMutex
	closed      bool
	closeMsg    []byte
	done        chan struct{}
	rateLimiter *rate.Limiter // Rate limiter for incoming messages
}

// NewPeer wraps an upgraded connection and starts its write pump.
func NewPeer(conn *websocket.Conn, remoteAddr string, rateLimitConfig *RateLimitConfig) *Peer {
	ctx, cancel := context.WithCancel(context.Background())

	var limiter *rate.Limiter
	if rateLimitConfig != nil && rateLimitConfig.Enabled {
		limiter = rate.NewLimiter(rateLimitConfig.MessagesPerSecond, rateLimitConfig.Burst)
	}

	p := &Peer{
		id:          uuid.New().String(),
		conn:        conn,
		remoteAddr:  remoteAddr,
		ctx:         ctx,
		cancel:      cancel,
		sendCh:      make(chan []byte, sendBufferSize),
		closeMsg:    websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		done:        make(chan struct{}),
		rateLimiter: limiter,
	}

	go p.writePump()

	return p
}

// ID returns a unique identifier for the connected peer
func (p *Peer) ID() string {
	return p.id
}

// RemoteAddr returns the peer's remote network address
func (p *Peer) RemoteAddr() string {
	return p.remoteAddr
}

// Context returns the peer's lifecycle context
func (p *Peer) Context() context.Context {
	return p.ctx
}

// Send encodes an envelope and queues it for the write pump.
func (p *Peer) Send(ctx context.Context, env protocol.Envelope) error {
	data, err := protocol.Encode(env)
	if err != nil {
		return errors.Wrap(err, "failed to encode message")
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return errPeerClosed
	}

	// Keep the lock while sending to prevent race with Close()
	select {
	case p.sendCh <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return errPeerClosed
	}
}

// Close closes the peer connection
func (p *Peer) Close(ctx context.Context) error {
	return p.CloseWithCode(ctx, websocket.CloseNormalClosure, "")
}

// CloseWithCode closes the connection with a close code and optional reason.
// Messages already queued are written before the close frame.
func (p *Peer) CloseWithCode(ctx context.Context, code int, reason string) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.closeMsg = websocket.FormatCloseMessage(code, reason)
	close(p.sendCh)
	p.mu.Unlock()

	select {
	case <-p.done:
	case <-ctx.Done():
	case <-time.After(writeWait):
	}

	p.cancel()
	return p.conn.Close()
}

// IsAlive returns true if the connection is still active
func (p *Peer) IsAlive() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.closed
}

// CheckRateLimit reports whether another inbound message is allowed.
func (p *Peer) CheckRateLimit() bool {
	if p.rateLimiter == nil {
		return true
	}
	return p.rateLimiter.Allow()
}

// writePump pumps messages from the send channel to the websocket connection
func (p *Peer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.cancel()
		p.conn.Close()
		close(p.done)
	}()

	for {
		select {
		case message, ok := <-p.sendCh:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, p.closeMsg)
				return
			}

			if err := p.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}
