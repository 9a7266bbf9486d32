package router

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/luciancaetano/yapnet"
	"github.com/luciancaetano/yapnet/internal/protocol"
	"github.com/luciancaetano/yapnet/internal/session"
	"github.com/luciancaetano/yapnet/mocks"
)

func newRouter(t *testing.T) (*Router, *session.Session, *mocks.MockHandler) {
	ctrl := gomock.NewController(t)
	h := mocks.NewMockHandler(ctrl)
	s := session.New()
	return New(DefaultOptions(), s, h, zerolog.Nop()), s, h
}

func decode(t *testing.T, frame string) protocol.Envelope {
	t.Helper()
	env, err := protocol.Decode([]byte(frame))
	require.NoError(t, err)
	return env
}

func TestRouter_DispatchChat(t *testing.T) {
	req := require.New(t)
	r, s, h := newRouter(t)

	h.EXPECT().OnChatEntry(yapnet.ChatEntry{Sender: "bob", Content: "hey"}).Times(1)

	err := r.Dispatch(decode(t, `{"msg_type":"chat","seq":0,"data":{"sender":"bob","content":"hey"}}`))

	req.NoError(err)
	req.Equal(yapnet.Anonymous, s.State())
}

func TestRouter_DispatchWelcome(t *testing.T) {
	t.Run("should authenticate a pending registration", func(t *testing.T) {
		req := require.New(t)
		r, s, h := newRouter(t)
		req.NoError(s.BeginRegistration())

		h.EXPECT().OnSessionAuthenticated("Alice", "T1").Times(1)

		req.NoError(r.Dispatch(decode(t, `{"msg_type":"welcome","seq":0,"data":{"token":"T1","name":"Alice"}}`)))

		req.Equal(yapnet.Authenticated, s.State())
		req.Equal("T1", s.Token())
		req.Equal("Alice", s.DisplayName())
	})

	t.Run("should authenticate a pending resume", func(t *testing.T) {
		req := require.New(t)
		r, s, h := newRouter(t)
		req.NoError(s.BeginResume())

		h.EXPECT().OnSessionAuthenticated("Alice", "T1").Times(1)

		req.NoError(r.Dispatch(decode(t, `{"msg_type":"welcome","seq":0,"data":{"token":"T1","name":"Alice","version":"1"}}`)))

		req.Equal(yapnet.Identity{State: yapnet.Authenticated, Name: "Alice", Token: "T1", Version: "1"}, s.Identity())
	})

	t.Run("should notify only once on repeated welcome", func(t *testing.T) {
		req := require.New(t)
		r, s, h := newRouter(t)
		req.NoError(s.BeginRegistration())

		h.EXPECT().OnSessionAuthenticated("Alice", "T1").Times(1)

		welcome := decode(t, `{"msg_type":"welcome","seq":0,"data":{"token":"T1","name":"Alice"}}`)
		req.NoError(r.Dispatch(welcome))
		req.NoError(r.Dispatch(welcome))

		req.Equal(yapnet.Authenticated, s.State())
	})
}

func TestRouter_DispatchServerError(t *testing.T) {
	req := require.New(t)
	r, s, h := newRouter(t)
	req.NoError(s.BeginRegistration())

	h.EXPECT().OnOperatorLog(gomock.Any()).Times(1)
	h.EXPECT().OnChatEntry(gomock.Any()).Times(0)

	err := r.Dispatch(decode(t, `{"msg_type":"err","seq":0,"data":{"kind":"NonUniqueUsername","info":"taken"}}`))

	var serr *yapnet.ServerError
	req.True(errors.As(err, &serr))
	req.Equal("NonUniqueUsername", serr.Kind)
	req.Equal("taken", serr.Info)
	req.Equal(yapnet.PendingRegistration, s.State())
}

func TestRouter_DispatchUnrecognizedKind(t *testing.T) {
	req := require.New(t)
	r, s, h := newRouter(t)

	var logged []string
	h.EXPECT().OnOperatorLog(gomock.Any()).Do(func(msg string) { logged = append(logged, msg) }).Times(1)
	h.EXPECT().OnChatEntry(gomock.Any()).Times(0)
	h.EXPECT().OnSessionAuthenticated(gomock.Any(), gomock.Any()).Times(0)

	err := r.Dispatch(decode(t, `{"msg_type":"bogus","seq":0,"data":{}}`))

	var perr *yapnet.ProtocolError
	req.True(errors.As(err, &perr))
	req.Equal("bogus", perr.Kind)
	req.Len(logged, 1)
	req.Contains(logged[0], "bogus")
	req.Equal(yapnet.Anonymous, s.State())
}

func TestRouter_DispatchOutboundKindIsUnrecognized(t *testing.T) {
	req := require.New(t)
	r, _, h := newRouter(t)

	h.EXPECT().OnOperatorLog(gomock.Any()).Times(1)

	err := r.Dispatch(decode(t, `{"msg_type":"hello","seq":0,"data":{"username":"x","versions":["1"]}}`))

	var perr *yapnet.ProtocolError
	req.True(errors.As(err, &perr))
}

func TestRouter_Register(t *testing.T) {
	t.Run("should build hello and move to pending registration", func(t *testing.T) {
		req := require.New(t)
		r, s, _ := newRouter(t)

		env, err := r.Register("alice")

		req.NoError(err)
		req.Equal(protocol.KindHello, env.Kind)
		req.Equal(uint64(0), env.Seq)
		req.Equal(protocol.HelloPayload{Username: "alice", Versions: []string{"1"}}, env.Payload)
		req.Equal(yapnet.PendingRegistration, s.State())
	})

	t.Run("should reject empty username", func(t *testing.T) {
		req := require.New(t)
		r, s, _ := newRouter(t)

		_, err := r.Register("   ")

		req.ErrorIs(err, yapnet.ErrEmptyUsername)
		req.Equal(yapnet.Anonymous, s.State())
	})

	t.Run("should reject once authenticated", func(t *testing.T) {
		req := require.New(t)
		r, s, _ := newRouter(t)
		s.Welcome("T1", "Alice", "1")

		_, err := r.Register("bob")

		req.ErrorIs(err, yapnet.ErrInvalidTransition)
		req.Equal("Alice", s.DisplayName())
	})
}

func TestRouter_Resume(t *testing.T) {
	req := require.New(t)
	r, s, _ := newRouter(t)

	env, err := r.Resume("T1")

	req.NoError(err)
	req.Equal(protocol.KindResume, env.Kind)
	req.Equal(protocol.ResumePayload{Token: "T1", Versions: []string{"1"}}, env.Payload)
	req.Equal(yapnet.PendingResume, s.State())

	_, err = r.Resume("")
	req.ErrorIs(err, yapnet.ErrEmptyToken)
}

func TestRouter_Reauthenticate(t *testing.T) {
	req := require.New(t)
	r, s, _ := newRouter(t)

	_, ok := r.Reauthenticate()
	req.False(ok)

	s.Welcome("T1", "Alice", "1")

	env, ok := r.Reauthenticate()
	req.True(ok)
	req.Equal(protocol.ResumePayload{Token: "T1", Versions: []string{"1"}}, env.Payload)
	req.Equal(yapnet.Authenticated, s.State())
}

func TestRouter_Chat(t *testing.T) {
	t.Run("should echo with the placeholder sender before authentication", func(t *testing.T) {
		req := require.New(t)
		r, _, h := newRouter(t)

		h.EXPECT().OnChatEntry(yapnet.ChatEntry{Sender: "You", Content: "hi", Local: true}).Times(1)

		env, err := r.Chat("hi")

		req.NoError(err)
		req.Equal(protocol.KindChatSend, env.Kind)
		req.Equal(protocol.ChatSendPayload{Target: "general", Content: "hi"}, env.Payload)
	})

	t.Run("should echo with the display name once authenticated", func(t *testing.T) {
		req := require.New(t)
		r, s, h := newRouter(t)
		s.Welcome("T1", "Alice", "1")

		h.EXPECT().OnChatEntry(yapnet.ChatEntry{Sender: "Alice", Content: "hi", Local: true}).Times(1)

		_, err := r.Chat("hi")
		req.NoError(err)
	})

	t.Run("should reject empty content without echo", func(t *testing.T) {
		req := require.New(t)
		r, _, h := newRouter(t)

		h.EXPECT().OnChatEntry(gomock.Any()).Times(0)

		_, err := r.Chat("")
		req.ErrorIs(err, yapnet.ErrEmptyContent)
	})
}

func TestRouter_NilHandler(t *testing.T) {
	req := require.New(t)
	r := New(Options{}, session.New(), nil, zerolog.Nop())

	req.NotPanics(func() {
		_ = r.Dispatch(decode(t, `{"msg_type":"chat","seq":0,"data":{"sender":"bob","content":"hey"}}`))
	})
	req.Equal("general", r.opts.Target)
}
