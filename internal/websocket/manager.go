package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/luciancaetano/yapnet"
	"github.com/luciancaetano/yapnet/internal/protocol"
	"github.com/luciancaetano/yapnet/internal/router"
	"github.com/luciancaetano/yapnet/internal/session"
)

// Events delivered to the event loop.
type (
	openEvent struct {
		id   string
		conn Conn
		ack  chan struct{}
	}
	messageEvent struct {
		id   string
		data []byte
	}
	closeEvent struct {
		id  string
		err error
	}
	errorEvent struct {
		id  string
		err error
	}
	reconnectEvent struct{}
	actionEvent    struct {
		fn    func() error
		reply chan error
	}
)

// afterFunc schedules f after d and returns a function that cancels it.
type afterFunc func(d time.Duration, f func()) (stop func() bool)

func timerAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Manager implements yapnet.Client.
//
// It owns exactly one logical connection. Transport callbacks (open, message, close,
// error), reconnect timers and user actions are all turned into events handled one by
// one by a single goroutine, so the fields below the marker need no locking.
type Manager struct {
	cfg      Config
	dialer   Dialer
	session  *session.Session
	router   *router.Router
	handler  yapnet.Handler
	logger   zerolog.Logger
	schedule afterFunc

	events  chan any
	stopped chan struct{}

	mu      sync.Mutex
	running bool
	closed  bool
	cancel  context.CancelFunc

	pendingCount atomic.Int64

	// owned by the event loop
	attempt          string
	conn             Conn
	pending          []protocol.Envelope
	reconnectPending bool
	stopReconnect    func() bool
	seq              protocol.Sequencer
}

// NewManager creates a manager with a fresh anonymous session.
func NewManager(cfg Config, dialer Dialer, h yapnet.Handler, logger zerolog.Logger) *Manager {
	cfg = cfg.withDefaults()
	if h == nil {
		h = yapnet.HandlerFuncs{}
	}
	logger = logger.With().Str("component", "connection").Str("url", cfg.URL).Logger()

	s := session.New()
	r := router.New(router.Options{
		Versions:    cfg.Versions,
		Target:      cfg.ChatTarget,
		LocalSender: cfg.LocalSenderName,
	}, s, h, logger)

	return &Manager{
		cfg:      cfg,
		dialer:   dialer,
		session:  s,
		router:   r,
		handler:  h,
		logger:   logger,
		schedule: timerAfterFunc,
		events:   make(chan any, 64),
		stopped:  make(chan struct{}),
	}
}

// Start connects and runs the event loop until Stop is called or ctx is cancelled.
// It does not wait for the connection to open.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return yapnet.ErrClientClosed
	}
	if m.running {
		return yapnet.ErrAlreadyRunning
	}
	m.running = true

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	go m.run(loopCtx)
	return nil
}

// Stop cancels the pending reconnect, closes the transport and waits for the event
// loop to exit. Buffered messages are discarded.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	running := m.running
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Unlock()

	if !running {
		return nil
	}

	select {
	case <-m.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubmitRegistration sends a hello with the given username.
func (m *Manager) SubmitRegistration(ctx context.Context, username string) error {
	return m.do(ctx, func() error {
		env, err := m.router.Register(username)
		if err != nil {
			return err
		}
		m.logger.Info().Str("username", username).Msg("registering")
		m.send(env)
		return nil
	})
}

// SubmitResume sends a resume with the given token.
func (m *Manager) SubmitResume(ctx context.Context, token string) error {
	return m.do(ctx, func() error {
		env, err := m.router.Resume(token)
		if err != nil {
			return err
		}
		m.logger.Info().Msg("resuming session")
		m.send(env)
		return nil
	})
}

// SubmitChat echoes the line locally and sends it to the default channel.
func (m *Manager) SubmitChat(ctx context.Context, content string) error {
	return m.do(ctx, func() error {
		env, err := m.router.Chat(content)
		if err != nil {
			return err
		}
		m.send(env)
		return nil
	})
}

func (m *Manager) State() yapnet.SessionState { return m.session.State() }

func (m *Manager) Identity() yapnet.Identity { return m.session.Identity() }

func (m *Manager) Pending() int { return int(m.pendingCount.Load()) }

// do runs fn on the event loop and returns its result.
//
// ctx bounds the wait only. Once the action has been handed to the loop it runs even
// if ctx is done first, and do returns ctx.Err().
func (m *Manager) do(ctx context.Context, fn func() error) error {
	m.mu.Lock()
	running, closed := m.running, m.closed
	m.mu.Unlock()

	if closed {
		return yapnet.ErrClientClosed
	}
	if !running {
		return yapnet.ErrNotRunning
	}

	reply := make(chan error, 1)
	select {
	case m.events <- actionEvent{fn: fn, reply: reply}:
	case <-m.stopped:
		return yapnet.ErrClientClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-m.stopped:
		select {
		case err := <-reply:
			return err
		default:
			return yapnet.ErrClientClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post delivers an event to the loop. It reports false once the loop has exited. An
// event buffered just before the exit is dropped, so events that transfer ownership
// of a resource go through handOver instead.
func (m *Manager) post(ev any) bool {
	select {
	case m.events <- ev:
		return true
	case <-m.stopped:
		return false
	}
}

func (m *Manager) run(ctx context.Context) {
	defer close(m.stopped)

	m.logger.Debug().Msg("event loop started")
	m.connect(ctx)

	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return
		case ev := <-m.events:
			m.handle(ctx, ev)
		}
	}
}

func (m *Manager) handle(ctx context.Context, ev any) {
	switch e := ev.(type) {
	case openEvent:
		m.handleOpen(e.id, e.conn)
		close(e.ack)
	case messageEvent:
		m.handleMessage(e.id, e.data)
	case closeEvent:
		m.handleClose(e.id, e.err)
	case errorEvent:
		m.handleError(e.id, e.err)
	case reconnectEvent:
		m.handleReconnect(ctx)
	case actionEvent:
		e.reply <- e.fn()
	}
}

// connect starts a new connection attempt and returns immediately. The outcome
// arrives as open, error and close events tagged with the attempt id.
func (m *Manager) connect(ctx context.Context) {
	id := uuid.NewString()
	m.attempt = id
	m.logger.Debug().Str("conn_id", id).Msg("connecting")

	go func() {
		conn, err := m.dialer.Dial(ctx, m.cfg.URL)
		if err != nil {
			if m.post(errorEvent{id: id, err: err}) {
				m.post(closeEvent{id: id, err: err})
			}
			return
		}
		if ctx.Err() != nil {
			conn.Close()
			return
		}
		if !m.handOver(openEvent{id: id, conn: conn, ack: make(chan struct{})}) {
			conn.Close()
			return
		}
		for {
			data, err := conn.ReadMessage()
			if err != nil {
				m.post(closeEvent{id: id, err: err})
				return
			}
			if !m.post(messageEvent{id: id, data: data}) {
				return
			}
		}
	}()
}

// handOver delivers an open event and waits until the loop has taken ownership of
// the connection. It reports false if the loop exited first, in which case the
// caller still owns the connection.
func (m *Manager) handOver(ev openEvent) bool {
	select {
	case m.events <- ev:
	case <-m.stopped:
		return false
	}
	select {
	case <-ev.ack:
		return true
	case <-m.stopped:
		select {
		case <-ev.ack:
			return true
		default:
			return false
		}
	}
}

func (m *Manager) handleOpen(id string, conn Conn) {
	if id != m.attempt {
		conn.Close()
		return
	}

	m.conn = conn
	m.seq.Reset()
	m.logger.Info().Str("conn_id", id).Msg("connected")

	if env, ok := m.router.Reauthenticate(); ok {
		m.logger.Info().Str("conn_id", id).Msg("resuming authenticated session")
		if !m.write(env) {
			return
		}
	}
	m.flush()
}

func (m *Manager) handleMessage(id string, data []byte) {
	if id != m.attempt || m.conn == nil {
		return
	}

	env, err := protocol.Decode(data)
	if err != nil {
		m.logger.Warn().Err(err).Str("conn_id", id).Msg("dropping malformed message")
		m.handler.OnOperatorLog(err.Error())
		return
	}
	m.router.Dispatch(env)
}

func (m *Manager) handleError(id string, err error) {
	if id != m.attempt {
		return
	}
	terr := &yapnet.TransportError{ConnID: id, Err: err}
	m.logger.Warn().Err(err).Str("conn_id", id).Msg("transport error")
	m.handler.OnOperatorLog(terr.Error())
}

// handleClose drops the connection and schedules a reconnect. The session is kept.
func (m *Manager) handleClose(id string, err error) {
	if id != m.attempt {
		return
	}
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	m.logger.Info().Err(err).Str("conn_id", id).Dur("delay", m.cfg.ReconnectDelay).Msg("disconnected, reconnecting")
	m.scheduleReconnect()
}

func (m *Manager) scheduleReconnect() {
	if m.reconnectPending {
		m.logger.Debug().Msg("reconnect already scheduled")
		return
	}
	m.reconnectPending = true
	m.stopReconnect = m.schedule(m.cfg.ReconnectDelay, func() {
		m.post(reconnectEvent{})
	})
}

func (m *Manager) handleReconnect(ctx context.Context) {
	if !m.reconnectPending {
		return
	}
	m.reconnectPending = false
	m.stopReconnect = nil
	m.connect(ctx)
}

// send writes env if the connection is open, or buffers it until the next open.
func (m *Manager) send(env protocol.Envelope) {
	if m.conn == nil {
		m.enqueue(env)
		return
	}
	if !m.write(env) {
		m.enqueue(env)
	}
}

func (m *Manager) enqueue(env protocol.Envelope) {
	m.pending = append(m.pending, env)
	m.pendingCount.Store(int64(len(m.pending)))
	m.logger.Debug().Str("kind", string(env.Kind)).Int("pending", len(m.pending)).Msg("connection not open, message queued")
}

// flush sends the buffered messages in order, removing each one once written. On
// a write failure the rest stay queued for the next connection.
func (m *Manager) flush() {
	if len(m.pending) == 0 {
		return
	}
	m.logger.Debug().Int("pending", len(m.pending)).Msg("flushing queued messages")

	for len(m.pending) > 0 {
		if !m.write(m.pending[0]) {
			return
		}
		m.pending = m.pending[1:]
		m.pendingCount.Store(int64(len(m.pending)))
	}
	m.pending = nil
}

// write encodes and writes env. It reports false if the transport failed, in which
// case the connection has been closed and a close event will follow.
func (m *Manager) write(env protocol.Envelope) bool {
	if m.cfg.MonotonicSequence {
		env.Seq = m.seq.Next()
	}

	data, err := protocol.Encode(env)
	if err != nil {
		m.logger.Error().Err(err).Str("kind", string(env.Kind)).Msg("dropping unencodable message")
		m.handler.OnOperatorLog(err.Error())
		return true
	}

	if err := m.conn.WriteMessage(data); err != nil {
		terr := &yapnet.TransportError{ConnID: m.attempt, Err: err}
		m.logger.Warn().Err(err).Str("conn_id", m.attempt).Msg("write failed, closing connection")
		m.handler.OnOperatorLog(terr.Error())
		m.conn.Close()
		m.conn = nil
		return false
	}
	return true
}

func (m *Manager) shutdown() {
	if m.stopReconnect != nil {
		m.stopReconnect()
		m.stopReconnect = nil
	}
	m.reconnectPending = false

	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	m.attempt = ""

	if len(m.pending) > 0 {
		m.logger.Warn().Int("pending", len(m.pending)).Msg("discarding queued messages on shutdown")
	}
	m.logger.Debug().Msg("event loop stopped")
}
