// Package yapnet provides the client-side session layer of a real-time chat service
// reached over a persistent WebSocket connection.
//
// It owns the connection lifecycle (connect, reconnect on close, send with buffering),
// the identity handshake (register with a username or resume with a token) and the
// routing of typed messages between the transport and the application.
//
// # Architecture
//
// Four components, leaf first:
//
//   - Message Codec (internal/protocol): JSON envelope encoding and validation.
//   - Session State (internal/session): anonymous, pending or authenticated identity.
//   - Message Router (internal/router): inbound dispatch and outbound builders.
//   - Connection Manager (internal/websocket): the transport and its event loop.
//
// All transport events and user actions are handled sequentially by a single event
// loop goroutine, so inbound messages are dispatched in delivery order and buffered
// outbound messages are flushed in submission order.
//
// # Quick Start
//
//	import (
//	    "github.com/luciancaetano/yapnet"
//	    "github.com/luciancaetano/yapnet/ws"
//	)
//
//	client := ws.New(ws.DefaultConfig(), yapnet.HandlerFuncs{
//	    ChatEntry: func(e yapnet.ChatEntry) { fmt.Printf("%s: %s\n", e.Sender, e.Content) },
//	    SessionAuthenticated: func(name, token string) { fmt.Println("welcome", name) },
//	}, zerolog.New(os.Stderr))
//
//	client.Start(ctx)
//	defer client.Stop(ctx)
//
//	client.SubmitRegistration(ctx, "alice")
//	client.SubmitChat(ctx, "hi everyone")
//
// # Protocol Format
//
// Every frame is a JSON text message:
//
//	{ "msg_type": "chat-send", "seq": 0, "data": { "target": "general", "content": "hi" } }
//
// Outbound kinds are hello, resume and chat-send; inbound kinds are welcome, chat and err.
// Unrecognized inbound kinds are logged and dropped.
//
// # Reconnection
//
// A closed connection is redialed after a fixed delay (1s by default), forever. Only one
// reconnect is ever pending. Once authenticated, the session survives reconnects and the
// token is replayed automatically with a resume message.
//
// # Local Server
//
// ws.NewServer runs an in-memory server speaking the same protocol. It backs the
// integration tests and the "yapchat serve" command:
//
//	server := ws.NewServer(ws.NewServerConfig(":8080", ws.DefaultRateLimitConfig(), ws.AllOrigins(), logger))
//	server.Start(ctx)
//	defer server.Stop(ctx)
//
// # Important
//
//   - Handler callbacks run on the event loop; do not block in them.
//   - Messages submitted while disconnected are buffered and flushed once, in order,
//     on the next successful connection.
//   - The session token is not persisted across process restarts.
package yapnet
