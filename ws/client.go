package ws

import (
	"github.com/rs/zerolog"

	"github.com/luciancaetano/yapnet"
	"github.com/luciancaetano/yapnet/internal/websocket"
)

type Config = websocket.Config

// DefaultConfig returns a client configuration pointing at yapnet.DefaultURL.
func DefaultConfig() Config {
	return websocket.DefaultConfig()
}

// New creates a chat client that dials cfg.URL with gorilla/websocket.
//
// The client does nothing until Start is called. Chat lines, authentication and
// diagnostics are reported to h, which is called from the client's event loop and
// must not block.
//
// Example:
//
//	client := ws.New(ws.DefaultConfig(), yapnet.HandlerFuncs{
//	    ChatEntry: func(e yapnet.ChatEntry) { fmt.Printf("%s: %s\n", e.Sender, e.Content) },
//	}, logger)
//	if err := client.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	client.SubmitRegistration(ctx, "alice")
func New(cfg Config, h yapnet.Handler, logger zerolog.Logger) yapnet.Client {
	return websocket.NewManager(cfg, websocket.NewDialer(cfg), h, logger)
}
