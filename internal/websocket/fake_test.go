package websocket

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/luciancaetano/yapnet"
)

// fakeConn is an in-memory Conn. Frames pushed with deliver are returned by
// ReadMessage; drop makes ReadMessage fail like a server-side close.
type fakeConn struct {
	mu         sync.Mutex
	written    [][]byte
	failWrites int // number of writes to accept before failing, -1 for never

	inbound   chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		failWrites: -1,
		inbound:    make(chan []byte, 16),
		closed:     make(chan struct{}),
	}
}

func (c *fakeConn) WriteMessage(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWrites == 0 {
		return errors.New("broken pipe")
	}
	if c.failWrites > 0 {
		c.failWrites--
	}
	c.written = append(c.written, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case data := <-c.inbound:
		return data, nil
	case <-c.closed:
		return nil, io.EOF
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) deliver(frame string) {
	c.inbound <- []byte(frame)
}

func (c *fakeConn) drop() {
	c.Close()
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

type frame struct {
	MsgType string          `json:"msg_type"`
	Seq     uint64          `json:"seq"`
	Data    json.RawMessage `json:"data"`
}

// frames decodes everything written so far.
func (c *fakeConn) frames() []frame {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]frame, 0, len(c.written))
	for _, w := range c.written {
		var f frame
		if err := json.Unmarshal(w, &f); err == nil {
			out = append(out, f)
		}
	}
	return out
}

type dialResult struct {
	conn *fakeConn
	err  error
}

// fakeDialer hands out the results queued with push, blocking until one is available.
type fakeDialer struct {
	results chan dialResult
	dials   atomic.Int32
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{results: make(chan dialResult, 16)}
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (Conn, error) {
	d.dials.Add(1)
	select {
	case r := <-d.results:
		if r.err != nil {
			return nil, r.err
		}
		return r.conn, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *fakeDialer) push(c *fakeConn) {
	d.results <- dialResult{conn: c}
}

func (d *fakeDialer) fail(err error) {
	d.results <- dialResult{err: err}
}

// stubbornDialer ignores ctx: Dial returns conn only once release is closed.
type stubbornDialer struct {
	conn    *fakeConn
	release chan struct{}
	dialing chan struct{}
}

func newStubbornDialer() *stubbornDialer {
	return &stubbornDialer{
		conn:    newFakeConn(),
		release: make(chan struct{}),
		dialing: make(chan struct{}, 1),
	}
}

func (d *stubbornDialer) Dial(ctx context.Context, url string) (Conn, error) {
	d.dialing <- struct{}{}
	<-d.release
	return d.conn, nil
}

// recorder is a Handler safe to read from the test goroutine.
type recorder struct {
	mu      sync.Mutex
	entries []yapnet.ChatEntry
	auths   []string
	logs    []string
}

func (r *recorder) OnChatEntry(entry yapnet.ChatEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recorder) OnSessionAuthenticated(name, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auths = append(r.auths, name+":"+token)
}

func (r *recorder) OnOperatorLog(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, message)
}

func (r *recorder) snapshot() (entries []yapnet.ChatEntry, auths, logs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]yapnet.ChatEntry(nil), r.entries...),
		append([]string(nil), r.auths...),
		append([]string(nil), r.logs...)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.URL = "ws://test.invalid/ws"
	cfg.ReconnectDelay = 10 * time.Millisecond
	return cfg
}
