package hub_handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	app_error "github.com/xenn00/elearning-chat/internal/errors"
	"github.com/xenn00/elearning-chat/internal/handlers"
	"github.com/xenn00/elearning-chat/internal/middleware"
	"github.com/xenn00/elearning-chat/internal/websocket"
)

type HubHandler struct {
	Hub *websocket.Hub
}

func NewHubHandler(hub *websocket.Hub) *HubHandler {
	return &HubHandler{
		Hub: hub,
	}
}

func (h *HubHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "chat-gateway",
	})
}

func (h *HubHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	stats := h.Hub.HubStats()
	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("get websocket stats", stats, middleware.GetRequestId(r)))
	return nil
}

func (h *HubHandler) HandleGetRoomStats(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	roomID := chi.URLParam(r, "roomId")
	stats := h.Hub.RoomStats(roomID)
	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("get websocket room stats", stats, middleware.GetRequestId(r)))
	return nil
}
