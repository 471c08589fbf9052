package websocket

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/elearning-chat/internal/dtos/chat_dto"
	app_error "github.com/xenn00/elearning-chat/internal/errors"
)

var (
	errAnonymousSend = app_error.NewAppError(http.StatusUnauthorized, "authentication required to send messages", "token")
	errRateLimited   = app_error.NewAppError(http.StatusTooManyRequests, "too many frames, slow down", "rate")
	errPersistFailed = app_error.NewAppError(http.StatusInternalServerError, "failed to send message", "message")
)

// handleFrame dispatches one inbound text frame. Malformed frames and unknown
// actions are dropped without a reply.
func (h *WebSocketHandler) handleFrame(c *Client, raw []byte) {
	if !c.limiter.Allow() {
		inboundFrames.WithLabelValues("rate_limited").Inc()
		c.sendError(errRateLimited)
		return
	}

	frame, err := chat_dto.DecodeInbound(raw)
	if err != nil {
		inboundFrames.WithLabelValues("dropped").Inc()
		log.Debug().Err(err).Str("clientID", c.ID()).Msg("ws: dropping malformed frame")
		return
	}

	switch f := frame.(type) {
	case chat_dto.ChatTypingFrame:
		inboundFrames.WithLabelValues(chat_dto.ActionChatTyping).Inc()
		h.handleTyping(c)
	case chat_dto.ChatMessageFrame:
		inboundFrames.WithLabelValues(chat_dto.ActionChatMessage).Inc()
		h.handleMessage(c, f.Payload)
	case chat_dto.UnknownFrame:
		inboundFrames.WithLabelValues("dropped").Inc()
		log.Debug().Str("clientID", c.ID()).Str("action", f.Action).Msg("ws: dropping frame with unknown action")
	}
}

// handleTyping fans the typing indicator out to the room. Nothing is stored.
func (h *WebSocketHandler) handleTyping(c *Client) {
	if c.Identity().IsAnonymous() {
		return
	}

	user, appErr := h.users.SerializeUserMinimal(c.Context(), c.UserID())
	if appErr != nil {
		log.Warn().Str("userID", c.UserID()).Str("error", appErr.Message).Msg("ws: cannot serialize typing user")
		return
	}

	h.hub.Broadcast(c.RoomID(), Event{Type: EventChatTyping, Frame: chat_dto.NewTypingFrame(user)})
}

// handleMessage persists the message and broadcasts it once committed. The
// write runs detached from the session so a disconnect mid-write neither
// aborts the transaction nor suppresses the broadcast.
func (h *WebSocketHandler) handleMessage(c *Client, payload chat_dto.CreateMessageRequest) {
	if c.Identity().IsAnonymous() {
		c.sendError(errAnonymousSend)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Context()), h.cfg.PersistTimeout)
	defer cancel()

	msg, appErr := h.messages.PersistMessage(ctx, c.UserID(), c.RoomID(), payload)
	if appErr != nil {
		if appErr.IsValidation() {
			c.sendError(appErr)
			return
		}
		log.Error().Str("roomID", c.RoomID()).Str("userID", c.UserID()).Str("error", appErr.Message).Msg("ws: failed to persist message")
		c.sendError(errPersistFailed)
		return
	}

	h.hub.Broadcast(c.RoomID(), NewMessageEvent(msg))
}
