package yapnet

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrClientClosed      = errors.New(ErrMsgClientClosed)
	ErrNotRunning        = errors.New(ErrMsgNotRunning)
	ErrAlreadyRunning    = errors.New(ErrMsgAlreadyRunning)
	ErrInvalidTransition = errors.New(ErrMsgInvalidTransition)
	ErrEmptyUsername     = errors.New("username must not be empty")
	ErrEmptyToken        = errors.New("token must not be empty")
	ErrEmptyContent      = errors.New("chat content must not be empty")
)

// TransportError reports a failure of the underlying connection. It is recovered by
// reconnecting and never surfaces as fatal.
type TransportError struct {
	ConnID string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error on connection %s: %v", e.ConnID, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports an inbound message whose kind is not handled.
type ProtocolError struct {
	Kind string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMsgUnknownKind, e.Kind)
}

// ServerError is an err message sent by the server.
type ServerError struct {
	Kind    string
	Info    string
	Details map[string]any
}

func (e *ServerError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("server error: %s", e.Info)
	}
	if len(e.Details) == 0 {
		return fmt.Sprintf("server error (%s): %s", e.Kind, e.Info)
	}
	return fmt.Sprintf("server error (%s): %s %v", e.Kind, e.Info, e.Details)
}

// ParseError reports an inbound frame that is not a well-formed envelope.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrMsgParse, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", ErrMsgParse, e.Reason, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
