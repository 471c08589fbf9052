package chat_dto

import "github.com/xenn00/elearning-chat/internal/dtos/user_dto"

// WSOutgoingFrame is what a session writes to its connection.
type WSOutgoingFrame struct {
	Action string `json:"action"`
	Data   any    `json:"data"`
}

type TypingData struct {
	User *user_dto.UserMinimalResponse `json:"user"`
}

type ErrorData struct {
	Message string            `json:"message"`
	Field   string            `json:"field,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func NewMessageFrame(msg *MessageResponse) WSOutgoingFrame {
	return WSOutgoingFrame{Action: ActionChatMessage, Data: msg}
}

func NewTypingFrame(user *user_dto.UserMinimalResponse) WSOutgoingFrame {
	return WSOutgoingFrame{Action: ActionChatTyping, Data: TypingData{User: user}}
}

func NewErrorFrame(data ErrorData) WSOutgoingFrame {
	return WSOutgoingFrame{Action: ActionError, Data: data}
}
