package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/luciancaetano/yapnet"
)

// MaxFrameSize is the largest frame Encode produces and Decode accepts. Transports
// must not read frames larger than this.
const MaxFrameSize = 1024 * 1024

var validate = validator.New(validator.WithRequiredStructEnabled())

// wireEnvelope is the JSON shape of every frame.
type wireEnvelope struct {
	MsgType *Kind           `json:"msg_type"`
	Seq     uint64          `json:"seq"`
	Data    json.RawMessage `json:"data"`
}

// Encode serializes the envelope into a JSON frame.
func Encode(env Envelope) ([]byte, error) {
	if env.Payload == nil {
		return nil, errors.New("envelope has no payload")
	}

	kind := env.Kind
	if kind == "" {
		kind = env.Payload.Kind()
	}

	var data json.RawMessage
	if u, ok := env.Payload.(UnknownPayload); ok {
		data = u.Raw
	} else {
		raw, err := json.Marshal(env.Payload)
		if err != nil {
			return nil, errors.Wrapf(err, "marshal %s payload", kind)
		}
		data = raw
	}

	out, err := json.Marshal(wireEnvelope{MsgType: &kind, Seq: env.Seq, Data: data})
	if err != nil {
		return nil, errors.Wrap(err, "marshal envelope")
	}
	if len(out) > MaxFrameSize {
		return nil, errors.Errorf("frame size %d exceeds maximum %d bytes", len(out), MaxFrameSize)
	}
	return out, nil
}

// Decode parses a JSON frame into an envelope with a typed payload.
//
// Kinds outside the protocol set decode into an UnknownPayload so the caller can
// report them; only malformed frames fail, always with a *yapnet.ParseError.
func Decode(data []byte) (Envelope, error) {
	if len(data) > MaxFrameSize {
		return Envelope{}, parseError(fmt.Sprintf("frame size %d exceeds maximum %d bytes", len(data), MaxFrameSize), nil)
	}

	var w wireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		return Envelope{}, parseError("invalid json", err)
	}
	if w.MsgType == nil || *w.MsgType == "" {
		return Envelope{}, parseError("missing msg_type", nil)
	}
	if !isObject(w.Data) {
		return Envelope{}, parseError("missing or non-object data", nil)
	}

	kind := *w.MsgType
	env := Envelope{Kind: kind, Seq: w.Seq}

	var err error
	switch kind {
	case KindHello:
		env.Payload, err = decodePayload[HelloPayload](kind, w.Data)
	case KindResume:
		env.Payload, err = decodePayload[ResumePayload](kind, w.Data)
	case KindChatSend:
		env.Payload, err = decodePayload[ChatSendPayload](kind, w.Data)
	case KindWelcome:
		env.Payload, err = decodePayload[WelcomePayload](kind, w.Data)
	case KindChat:
		env.Payload, err = decodePayload[ChatPayload](kind, w.Data)
	case KindError:
		env.Payload, err = decodePayload[ErrorPayload](kind, w.Data)
	default:
		env.Payload = UnknownPayload{kind: kind, Raw: w.Data}
	}
	if err != nil {
		return Envelope{}, err
	}
	return env, nil
}

func decodePayload[T Payload](kind Kind, data json.RawMessage) (T, error) {
	var p T
	if err := json.Unmarshal(data, &p); err != nil {
		return p, parseError(fmt.Sprintf("invalid %s data", kind), err)
	}
	if err := validate.Struct(p); err != nil {
		return p, parseError(fmt.Sprintf("invalid %s data", kind), err)
	}
	return p, nil
}

func isObject(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func parseError(reason string, err error) error {
	return &yapnet.ParseError{Reason: reason, Err: err}
}
