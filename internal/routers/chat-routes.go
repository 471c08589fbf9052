package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/xenn00/elearning-chat/internal/handlers"
	chat_handler "github.com/xenn00/elearning-chat/internal/handlers/chat-handler"
	"github.com/xenn00/elearning-chat/internal/middleware"
	chat_service "github.com/xenn00/elearning-chat/internal/use-case/chat-case"
	"github.com/xenn00/elearning-chat/internal/utils"
	"github.com/xenn00/elearning-chat/internal/websocket"
)

func ChatRouter(r chi.Router, service chat_service.ChatServiceContract, hub *websocket.Hub, verifier *utils.TokenVerifier) {
	chatHandler := chat_handler.NewChatHandler(service, hub)
	r.Group(func(protected chi.Router) {
		protected.Use(middleware.JWTAuth(verifier))
		protected.Post("/api/v1/chat/{roomId}/messages", handlers.WrapHandler(chatHandler.SendMessage))
		protected.Get("/api/v1/chat/{roomId}/messages", handlers.WrapHandler(chatHandler.ListMessages))
	})
}
