package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// Conn is one open transport connection.
//
// WriteMessage is only ever called from the manager's event loop and ReadMessage
// only from the connection's reader goroutine. Close may be called from anywhere.
type Conn interface {
	WriteMessage(data []byte) error
	ReadMessage() ([]byte, error)
	Close() error
}

// Dialer opens transport connections.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// GorillaDialer dials WebSocket connections with gorilla/websocket.
type GorillaDialer struct {
	cfg    Config
	dialer *websocket.Dialer
}

// NewDialer creates a dialer using the timeouts and limits of cfg.
func NewDialer(cfg Config) *GorillaDialer {
	cfg = cfg.withDefaults()
	return &GorillaDialer{
		cfg: cfg,
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: cfg.HandshakeTimeout,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
		},
	}
}

// Dial opens a connection and starts its keepalive.
func (d *GorillaDialer) Dial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := d.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", url)
	}
	return newGorillaConn(conn, d.cfg), nil
}

type gorillaConn struct {
	conn *websocket.Conn
	cfg  Config
	done chan struct{}
	once sync.Once
}

func newGorillaConn(conn *websocket.Conn, cfg Config) *gorillaConn {
	c := &gorillaConn{
		conn: conn,
		cfg:  cfg,
		done: make(chan struct{}),
	}

	conn.SetReadLimit(cfg.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	// Set pong handler to reset read deadline on pong
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	go c.pingLoop()
	return c
}

func (c *gorillaConn) WriteMessage(data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *gorillaConn) ReadMessage() ([]byte, error) {
	for {
		typ, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		// Reset read deadline after successful read
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		if typ == websocket.TextMessage || typ == websocket.BinaryMessage {
			return data, nil
		}
	}
}

// Close sends a normal closure frame and closes the socket. Safe to call twice.
func (c *gorillaConn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		c.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second))
		err = c.conn.Close()
	})
	return err
}

// pingLoop sends pings until the connection is closed. WriteControl may run
// concurrently with WriteMessage.
func (c *gorillaConn) pingLoop() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(c.cfg.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
