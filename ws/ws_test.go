package ws_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/luciancaetano/yapnet"
	"github.com/luciancaetano/yapnet/ws"
)

type inbox struct {
	mu     sync.Mutex
	lines  []yapnet.ChatEntry
	tokens []string
	logs   []string
}

func (b *inbox) handler() yapnet.Handler {
	return yapnet.HandlerFuncs{
		ChatEntry: func(e yapnet.ChatEntry) {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.lines = append(b.lines, e)
		},
		SessionAuthenticated: func(name, token string) {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.tokens = append(b.tokens, token)
		},
		OperatorLog: func(msg string) {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.logs = append(b.logs, msg)
		},
	}
}

func (b *inbox) remote() []yapnet.ChatEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []yapnet.ChatEntry
	for _, l := range b.lines {
		if !l.Local {
			out = append(out, l)
		}
	}
	return out
}

func (b *inbox) hasLog(substr string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range b.logs {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func startLoopback(t *testing.T) (*ws.Server, string) {
	t.Helper()

	server := ws.NewServer(ws.NewServerConfig("", ws.NoRateLimit(), ws.AllOrigins(), zerolog.Nop()))
	ts := httptest.NewServer(server)
	t.Cleanup(func() {
		server.CloseAll(context.Background())
		ts.Close()
	})
	return server, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func startClient(t *testing.T, url string, h yapnet.Handler) yapnet.Client {
	t.Helper()

	cfg := ws.DefaultConfig()
	cfg.URL = url
	cfg.ReconnectDelay = 100 * time.Millisecond

	client := ws.New(cfg, h, zerolog.Nop())
	require.NoError(t, client.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Stop(ctx)
	})
	return client
}

func TestRegisterAndChat(t *testing.T) {
	t.Parallel()

	_, url := startLoopback(t)
	ctx := context.Background()

	var aliceBox, bobBox inbox
	alice := startClient(t, url, aliceBox.handler())
	bob := startClient(t, url, bobBox.handler())

	// Submitted before the connection opens; the hello is queued and flushed.
	require.NoError(t, alice.SubmitRegistration(ctx, "alice"))
	require.NoError(t, bob.SubmitRegistration(ctx, "bob"))

	require.Eventually(t, func() bool {
		return alice.State() == yapnet.Authenticated && bob.State() == yapnet.Authenticated
	}, 2*time.Second, 10*time.Millisecond)

	id := alice.Identity()
	require.Equal(t, "alice", id.Name)
	require.NotEmpty(t, id.Token)
	require.Equal(t, yapnet.ProtocolVersion, id.Version)

	require.NoError(t, alice.SubmitChat(ctx, "hi bob"))

	require.Eventually(t, func() bool { return len(bobBox.remote()) == 1 }, 2*time.Second, 10*time.Millisecond)
	got := bobBox.remote()[0]
	require.Equal(t, "alice", got.Sender)
	require.Equal(t, "hi bob", got.Content)

	aliceBox.mu.Lock()
	require.Len(t, aliceBox.lines, 1)
	require.True(t, aliceBox.lines[0].Local)
	require.Equal(t, "alice", aliceBox.lines[0].Sender)
	aliceBox.mu.Unlock()
}

func TestDuplicateUsername(t *testing.T) {
	t.Parallel()

	_, url := startLoopback(t)
	ctx := context.Background()

	var first, second inbox
	a := startClient(t, url, first.handler())
	b := startClient(t, url, second.handler())

	require.NoError(t, a.SubmitRegistration(ctx, "carol"))
	require.Eventually(t, func() bool { return a.State() == yapnet.Authenticated }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, b.SubmitRegistration(ctx, "carol"))
	require.Eventually(t, func() bool { return second.hasLog(yapnet.ErrKindNonUniqueUsername) }, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, yapnet.PendingRegistration, b.State())

	// The handshake can be retried with another name.
	require.NoError(t, b.SubmitRegistration(ctx, "carol2"))
	require.Eventually(t, func() bool { return b.State() == yapnet.Authenticated }, 2*time.Second, 10*time.Millisecond)
}

func TestReconnectResumesSession(t *testing.T) {
	t.Parallel()

	server, url := startLoopback(t)
	ctx := context.Background()

	var box inbox
	client := startClient(t, url, box.handler())

	require.NoError(t, client.SubmitRegistration(ctx, "dave"))
	require.Eventually(t, func() bool { return client.State() == yapnet.Authenticated }, 2*time.Second, 10*time.Millisecond)
	token := client.Identity().Token

	var peerBox inbox
	peer := startClient(t, url, peerBox.handler())
	require.NoError(t, peer.SubmitRegistration(ctx, "erin"))
	require.Eventually(t, func() bool { return peer.State() == yapnet.Authenticated }, 2*time.Second, 10*time.Millisecond)

	server.CloseAll(ctx)
	require.Eventually(t, func() bool { return !server.Online("dave") }, time.Second, 2*time.Millisecond)
	require.Eventually(t, func() bool { return server.Online("dave") && server.Online("erin") }, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, client.SubmitChat(ctx, "still here"))

	require.Eventually(t, func() bool { return len(peerBox.remote()) == 1 }, 3*time.Second, 10*time.Millisecond)
	require.Equal(t, "dave", peerBox.remote()[0].Sender)
	require.Equal(t, "still here", peerBox.remote()[0].Content)

	require.Equal(t, yapnet.Authenticated, client.State())
	require.Equal(t, token, client.Identity().Token)
	require.Zero(t, client.Pending())

	box.mu.Lock()
	require.Equal(t, []string{token}, box.tokens, "authentication callback fires once")
	box.mu.Unlock()
}

func TestServerStartStop(t *testing.T) {
	t.Parallel()

	server := ws.NewServer(ws.NewServerConfig(":18091", ws.DefaultRateLimitConfig(), ws.AllOrigins(), zerolog.Nop()))
	require.NoError(t, server.Start(context.Background()))
	require.Error(t, server.Start(context.Background()), "second start is rejected")

	var box inbox
	client := startClient(t, "ws://localhost:18091/ws", box.handler())
	require.NoError(t, client.SubmitRegistration(context.Background(), "frank"))
	require.Eventually(t, func() bool { return client.State() == yapnet.Authenticated }, 2*time.Second, 10*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Stop(stopCtx))
}

func TestStoppedClientRejectsSubmissions(t *testing.T) {
	t.Parallel()

	_, url := startLoopback(t)

	client := startClient(t, url, nil)
	require.NoError(t, client.Stop(context.Background()))

	require.ErrorIs(t, client.SubmitChat(context.Background(), "late"), yapnet.ErrClientClosed)
	require.ErrorIs(t, client.Start(context.Background()), yapnet.ErrClientClosed)
}
