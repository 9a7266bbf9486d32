package router

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/luciancaetano/yapnet"
	"github.com/luciancaetano/yapnet/internal/protocol"
	"github.com/luciancaetano/yapnet/internal/session"
)

// Options configures the outbound builders.
type Options struct {
	// Versions advertised in hello and resume.
	Versions []string
	// Target channel of outbound chat lines.
	Target string
	// LocalSender is the sender of echoed lines until the server assigns a name.
	LocalSender string
}

// DefaultOptions returns the reference protocol options.
func DefaultOptions() Options {
	return Options{
		Versions:    []string{yapnet.ProtocolVersion},
		Target:      yapnet.DefaultChatTarget,
		LocalSender: yapnet.DefaultLocalSender,
	}
}

// Router interprets inbound envelopes and builds outbound ones.
//
// It is the only writer of the session. It is not safe for concurrent use; the
// connection manager calls it from its event loop.
type Router struct {
	opts    Options
	session *session.Session
	handler yapnet.Handler
	logger  zerolog.Logger
}

// New creates a router bound to a session and the application handler.
func New(opts Options, s *session.Session, h yapnet.Handler, logger zerolog.Logger) *Router {
	if len(opts.Versions) == 0 {
		opts.Versions = []string{yapnet.ProtocolVersion}
	}
	if opts.Target == "" {
		opts.Target = yapnet.DefaultChatTarget
	}
	if opts.LocalSender == "" {
		opts.LocalSender = yapnet.DefaultLocalSender
	}
	if h == nil {
		h = yapnet.HandlerFuncs{}
	}
	return &Router{
		opts:    opts,
		session: s,
		handler: h,
		logger:  logger.With().Str("component", "router").Logger(),
	}
}

// Dispatch routes an inbound envelope.
//
// Server errors and unrecognized kinds are reported on the operator channel and
// returned so callers can inspect them; neither changes the session.
func (r *Router) Dispatch(env protocol.Envelope) error {
	switch p := env.Payload.(type) {
	case protocol.ErrorPayload:
		err := &yapnet.ServerError{Kind: p.ErrKind, Info: p.Info, Details: p.Details}
		r.logger.Warn().Str("kind", p.ErrKind).Str("info", p.Info).Msg("server error")
		r.handler.OnOperatorLog(err.Error())
		return err

	case protocol.ChatPayload:
		r.handler.OnChatEntry(yapnet.ChatEntry{Sender: p.Sender, Content: p.Content})
		return nil

	case protocol.WelcomePayload:
		r.welcome(p)
		return nil

	default:
		kind := string(env.Kind)
		if env.Payload != nil {
			kind = string(env.Payload.Kind())
		}
		err := &yapnet.ProtocolError{Kind: kind}
		r.logger.Warn().Str("kind", kind).Msg("dropping message with unrecognized kind")
		r.handler.OnOperatorLog(err.Error())
		return err
	}
}

func (r *Router) welcome(p protocol.WelcomePayload) {
	prev := r.session.Identity()
	first := r.session.Welcome(p.Token, p.Name, p.Version)

	if !first {
		if prev.Token != p.Token || prev.Name != p.Name {
			r.logger.Warn().
				Str("name", p.Name).
				Str("previous_name", prev.Name).
				Msg("welcome changed an authenticated identity")
		} else {
			r.logger.Debug().Str("name", p.Name).Msg("identity re-confirmed")
		}
		return
	}

	r.logger.Info().Str("name", p.Name).Str("from", prev.State.String()).Msg("session authenticated")
	r.handler.OnSessionAuthenticated(p.Name, p.Token)
}

// Register moves the session to PendingRegistration and builds the hello envelope.
func (r *Router) Register(username string) (protocol.Envelope, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return protocol.Envelope{}, yapnet.ErrEmptyUsername
	}
	if err := r.session.BeginRegistration(); err != nil {
		return protocol.Envelope{}, err
	}
	return protocol.New(protocol.HelloPayload{Username: username, Versions: r.versions()}), nil
}

// Resume moves the session to PendingResume and builds the resume envelope.
func (r *Router) Resume(token string) (protocol.Envelope, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return protocol.Envelope{}, yapnet.ErrEmptyToken
	}
	if err := r.session.BeginResume(); err != nil {
		return protocol.Envelope{}, err
	}
	return r.resumeEnvelope(token), nil
}

// Reauthenticate builds the resume envelope replayed after a reconnect. It reports
// false when the session is not authenticated.
func (r *Router) Reauthenticate() (protocol.Envelope, bool) {
	if !r.session.Authenticated() {
		return protocol.Envelope{}, false
	}
	return r.resumeEnvelope(r.session.Token()), true
}

// Chat builds a chat-send envelope and echoes the line to the application right away.
func (r *Router) Chat(content string) (protocol.Envelope, error) {
	if content == "" {
		return protocol.Envelope{}, yapnet.ErrEmptyContent
	}

	sender := r.opts.LocalSender
	if name := r.session.DisplayName(); name != "" {
		sender = name
	}
	r.handler.OnChatEntry(yapnet.ChatEntry{Sender: sender, Content: content, Local: true})

	return protocol.New(protocol.ChatSendPayload{Target: r.opts.Target, Content: content}), nil
}

func (r *Router) resumeEnvelope(token string) protocol.Envelope {
	return protocol.New(protocol.ResumePayload{Token: token, Versions: r.versions()})
}

func (r *Router) versions() []string {
	return append([]string(nil), r.opts.Versions...)
}
