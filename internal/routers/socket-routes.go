package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/xenn00/elearning-chat/internal/websocket"
)

func SocketRouter(r chi.Router, wsHandler *websocket.WebSocketHandler) {
	r.Get("/socket/chat/{roomId}/", wsHandler.ServeChat)
	r.Get("/socket/chat/{roomId}", wsHandler.ServeChat)
}
