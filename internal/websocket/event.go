package websocket

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/xenn00/elearning-chat/internal/dtos/chat_dto"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	EventChatMessage = "chat.message"
	EventChatTyping  = "chat.typing"
)

// Event is what the hub fans out to a room. Frame is written to every
// subscriber verbatim.
type Event struct {
	Type  string
	Frame chat_dto.WSOutgoingFrame
}

func NewMessageEvent(msg *chat_dto.MessageResponse) Event {
	return Event{Type: EventChatMessage, Frame: chat_dto.NewMessageFrame(msg)}
}
