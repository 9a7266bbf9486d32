//go:generate go run go.uber.org/mock/mockgen -source=yapnet.go -destination=mocks/mock_yapnet.go -package=mocks

package yapnet

import "context"

// Client is a chat session bound to a single logical WebSocket connection.
//
// The connection is (re)established transparently: when the transport closes, a new
// one is dialed after a fixed delay and, if the session was already authenticated,
// the stored token is replayed with a resume message before any buffered message
// is flushed.
//
// Example usage:
//
//	import "github.com/luciancaetano/yapnet/ws"
//
//	client := ws.New(ws.DefaultConfig(), yapnet.HandlerFuncs{
//	    ChatEntry: func(e yapnet.ChatEntry) { fmt.Printf("%s: %s\n", e.Sender, e.Content) },
//	}, logger)
//
//	client.Start(ctx)
//	client.SubmitRegistration(ctx, "alice")
//	client.SubmitChat(ctx, "hello")
//
// The Submit methods hand the action to the client's event loop and wait for its
// result. ctx bounds that wait but does not retract the action: a Submit that returns
// ctx.Err() may still have been applied, so retrying it can send the line twice.
// Called from a Handler callback, a Submit blocks until ctx is done and the action
// runs after the callback returns.
type Client interface {
	// Start begins connecting to the configured endpoint and starts the event loop.
	// It returns immediately; readiness is observed through the Handler callbacks.
	//
	// Returns ErrAlreadyRunning if the client was already started.
	Start(ctx context.Context) error

	// Stop cancels any pending reconnect, closes the transport with a normal closure
	// and rejects further submissions with ErrClientClosed.
	Stop(ctx context.Context) error

	// SubmitRegistration asks the server for a new identity with the given username.
	//
	// Only valid while the session is not authenticated. The hello message is queued
	// if the connection is not open yet.
	SubmitRegistration(ctx context.Context, username string) error

	// SubmitResume re-authenticates with a token previously issued by the server.
	SubmitResume(ctx context.Context, token string) error

	// SubmitChat sends a chat line to the default channel.
	//
	// The line is echoed to Handler.OnChatEntry immediately, before the server has
	// seen it.
	SubmitChat(ctx context.Context, content string) error

	// State returns the current session state.
	State() SessionState

	// Identity returns a snapshot of the session identity.
	Identity() Identity

	// Pending returns the number of messages buffered while the connection is down.
	Pending() int
}

// Handler receives the events produced by a Client.
//
// Callbacks are invoked from the client's event loop, one at a time and in order.
// They must not block for long. A Submit made from a callback cannot complete until
// the callback returns, so call it from another goroutine or with a bounded ctx.
type Handler interface {
	// OnChatEntry is invoked for every chat line, remote or echoed locally.
	OnChatEntry(entry ChatEntry)

	// OnSessionAuthenticated is invoked once, when the session becomes authenticated.
	OnSessionAuthenticated(name, token string)

	// OnOperatorLog is invoked with diagnostic text: server errors, dropped
	// messages and transport failures.
	OnOperatorLog(message string)
}

// ChatEntry is a single line of the chat log.
type ChatEntry struct {
	Sender  string
	Content string
	// Local is true for the optimistic echo of a line sent by this client.
	Local bool
}

// Identity is a snapshot of the session identity.
type Identity struct {
	State   SessionState
	Name    string
	Token   string
	Version string
}

// HandlerFuncs adapts plain functions to the Handler interface. Nil fields are skipped.
type HandlerFuncs struct {
	ChatEntry            func(entry ChatEntry)
	SessionAuthenticated func(name, token string)
	OperatorLog          func(message string)
}

func (h HandlerFuncs) OnChatEntry(entry ChatEntry) {
	if h.ChatEntry != nil {
		h.ChatEntry(entry)
	}
}

func (h HandlerFuncs) OnSessionAuthenticated(name, token string) {
	if h.SessionAuthenticated != nil {
		h.SessionAuthenticated(name, token)
	}
}

func (h HandlerFuncs) OnOperatorLog(message string) {
	if h.OperatorLog != nil {
		h.OperatorLog(message)
	}
}
