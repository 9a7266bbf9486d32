package yapnet

import "time"

// Protocol defaults.
const (
	// ProtocolVersion is the only protocol version this client speaks.
	ProtocolVersion = "1"

	DefaultURL            = "ws://localhost:8080/ws"
	DefaultReconnectDelay = time.Second
	DefaultChatTarget     = "general"

	// DefaultLocalSender is the sender shown on echoed lines before a display
	// name has been assigned.
	DefaultLocalSender = "You"
)

// Standard error messages
const (
	// Protocol errors
	ErrMsgParse       = "Parse error"
	ErrMsgUnknownKind = "unrecognized message kind"

	// Session errors
	ErrMsgInvalidTransition = "invalid session transition"

	// Connection errors
	ErrMsgClientClosed   = "client is closed"
	ErrMsgNotRunning     = "client is not running"
	ErrMsgAlreadyRunning = "client already running"
)

// Error kinds sent by the loopback server in err messages.
const (
	ErrKindNonUniqueUsername  = "NonUniqueUsername"
	ErrKindInvalidToken       = "InvalidToken"
	ErrKindAlreadyConnected   = "AlreadyConnected"
	ErrKindNotLoggedIn        = "NotLoggedIn"
	ErrKindInvalidMsgType     = "InvalidMSGType"
	ErrKindMalformed          = "MalformedMessage"
	ErrKindRateLimited        = "RateLimited"
	ErrKindUnsupportedVersion = "UnsupportedVersion"
)
