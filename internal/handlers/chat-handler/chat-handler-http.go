package chat_handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/xenn00/elearning-chat/internal/dtos/chat_dto"
	app_error "github.com/xenn00/elearning-chat/internal/errors"
	"github.com/xenn00/elearning-chat/internal/handlers"
	"github.com/xenn00/elearning-chat/internal/middleware"
	chat_service "github.com/xenn00/elearning-chat/internal/use-case/chat-case"
	"github.com/xenn00/elearning-chat/internal/websocket"
)

type ChatHandler struct {
	Service chat_service.ChatServiceContract
	Hub     *websocket.Hub
}

func NewChatHandler(service chat_service.ChatServiceContract, hub *websocket.Hub) *ChatHandler {
	return &ChatHandler{
		Service: service,
		Hub:     hub,
	}
}

// SendMessage persists a message posted over REST and pushes it to the
// room's live sessions.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	roomID := chi.URLParam(r, "roomId")

	userID, ok := middleware.GetUserId(r)
	if !ok {
		return app_error.NewAppError(http.StatusUnauthorized, "user id is not found in context", "context")
	}

	var req chat_dto.RestCreateMessageRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		return err
	}

	resp, err := h.Service.PersistMessage(r.Context(), userID, roomID, req.ToPayload())
	if err != nil {
		return err
	}

	h.Hub.Broadcast(roomID, websocket.NewMessageEvent(resp))

	handlers.WriteJSON(w, http.StatusCreated, handlers.CreateResponse("message sent successfully", resp, middleware.GetRequestId(r)))
	return nil
}

func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	roomID := chi.URLParam(r, "roomId")

	userID, ok := middleware.GetUserId(r)
	if !ok {
		return app_error.NewAppError(http.StatusUnauthorized, "user id is not found in context", "context")
	}

	var req chat_dto.ListMessagesRequest
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return app_error.NewValidationError("limit must be a number", "limit")
		}
		req.Limit = limit
	}
	if before := r.URL.Query().Get("before"); before != "" {
		req.Before = &before
	}

	resp, err := h.Service.ListMessages(r.Context(), userID, roomID, req)
	if err != nil {
		return err
	}

	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("messages fetch successfully", resp, middleware.GetRequestId(r)))
	return nil
}
