package chat_dto

import (
	"bytes"
	"errors"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	ActionChatMessage = "chat_message"
	ActionChatTyping  = "chat_typing"
	ActionError       = "error"
)

var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrMissingAction  = errors.New("frame has no action")
	ErrMissingData    = errors.New("frame has no data")
)

// InboundFrame is one of ChatMessageFrame, ChatTypingFrame or UnknownFrame.
type InboundFrame interface {
	inbound()
}

type ChatMessageFrame struct {
	Payload CreateMessageRequest
}

type ChatTypingFrame struct{}

// UnknownFrame carries an action the gateway does not handle.
type UnknownFrame struct {
	Action string
}

func (ChatMessageFrame) inbound() {}
func (ChatTypingFrame) inbound()  {}
func (UnknownFrame) inbound()     {}

type wsIncomingFrame struct {
	Action *string              `json:"action"`
	Data   jsoniter.RawMessage `json:"data"`
}

// DecodeInbound parses a text frame. Both action and data are required and
// data must be a JSON object.
func DecodeInbound(raw []byte) (InboundFrame, error) {
	var frame wsIncomingFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, ErrMalformedFrame
	}
	if frame.Action == nil || *frame.Action == "" {
		return nil, ErrMissingAction
	}

	data := bytes.TrimSpace(frame.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, ErrMissingData
	}
	if data[0] != '{' {
		return nil, ErrMalformedFrame
	}

	switch *frame.Action {
	case ActionChatTyping:
		return ChatTypingFrame{}, nil
	case ActionChatMessage:
		var payload CreateMessageRequest
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, ErrMalformedFrame
		}
		return ChatMessageFrame{Payload: payload}, nil
	default:
		return UnknownFrame{Action: *frame.Action}, nil
	}
}
