package protocol

import "encoding/json"

// Kind is the msg_type tag of an envelope.
type Kind string

const (
	// Client to server
	KindHello    Kind = "hello"
	KindResume   Kind = "resume"
	KindChatSend Kind = "chat-send"

	// Server to client
	KindWelcome Kind = "welcome"
	KindChat    Kind = "chat"
	KindError   Kind = "err"
)

// Payload is the kind-specific data of an envelope.
type Payload interface {
	Kind() Kind
}

// Envelope is the uniform wire wrapper.
type Envelope struct {
	Kind    Kind
	Seq     uint64
	Payload Payload
}

// New wraps a payload in an envelope with sequence 0.
func New(p Payload) Envelope {
	return Envelope{Kind: p.Kind(), Payload: p}
}

// HelloPayload asks the server for a new identity.
type HelloPayload struct {
	Username string   `json:"username" validate:"required"`
	Versions []string `json:"versions" validate:"required,min=1"`
}

func (HelloPayload) Kind() Kind { return KindHello }

// ResumePayload re-authenticates with a previously issued token.
type ResumePayload struct {
	Token    string   `json:"token" validate:"required"`
	Versions []string `json:"versions" validate:"required,min=1"`
}

func (ResumePayload) Kind() Kind { return KindResume }

// ChatSendPayload is a chat line sent by the client.
type ChatSendPayload struct {
	Target  string `json:"target" validate:"required"`
	Content string `json:"content"`
}

func (ChatSendPayload) Kind() Kind { return KindChatSend }

// WelcomePayload completes a handshake.
type WelcomePayload struct {
	Token   string `json:"token" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Version string `json:"version,omitempty"`
}

func (WelcomePayload) Kind() Kind { return KindWelcome }

// ChatPayload is a chat line relayed by the server.
type ChatPayload struct {
	Sender  string `json:"sender" validate:"required"`
	Content string `json:"content"`
	Target  string `json:"target,omitempty"`
}

func (ChatPayload) Kind() Kind { return KindChat }

// ErrorPayload is sent by the server when a client goes off-protocol.
type ErrorPayload struct {
	ErrKind string         `json:"kind,omitempty"`
	Info    string         `json:"info"`
	Details map[string]any `json:"details,omitempty"`
}

func (ErrorPayload) Kind() Kind { return KindError }

// UnknownPayload holds the raw data of a kind outside the protocol set.
type UnknownPayload struct {
	kind Kind
	Raw  json.RawMessage
}

func (u UnknownPayload) Kind() Kind { return u.kind }

// Sequencer hands out monotonic sequence numbers for one connection.
type Sequencer struct {
	next uint64
}

// Next returns the current value and advances the counter.
func (s *Sequencer) Next() uint64 {
	v := s.next
	s.next++
	return v
}

// Reset restarts the counter at 0.
func (s *Sequencer) Reset() {
	s.next = 0
}
