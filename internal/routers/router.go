package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xenn00/elearning-chat/config"
	"github.com/xenn00/elearning-chat/internal/middleware"
	"github.com/xenn00/elearning-chat/internal/queue"
	chat_service "github.com/xenn00/elearning-chat/internal/use-case/chat-case"
	user_service "github.com/xenn00/elearning-chat/internal/use-case/user-case"
	"github.com/xenn00/elearning-chat/internal/utils"
	"github.com/xenn00/elearning-chat/internal/websocket"
	"github.com/xenn00/elearning-chat/state"
)

type Dependencies struct {
	State    *state.AppState
	Hub      *websocket.Hub
	Producer queue.Producer
	WS       config.WSConfig
	MaxRetry int
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	if deps.WS.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.WithRequestId)
	r.Use(middleware.AccessLog)
	r.Use(chimw.Recoverer)

	verifier := utils.NewTokenVerifier(deps.State.JwtSecret.SigningKey, deps.State.JwtSecret.Public)
	userService := user_service.NewUserService(deps.State)
	chatService := chat_service.NewChatService(deps.State, deps.Producer, deps.MaxRetry)

	HubRouter(r, deps.Hub)
	ChatRouter(r, chatService, deps.Hub, verifier)
	SocketRouter(r, websocket.NewWebSocketHandler(
		deps.Hub,
		websocket.NewAuthenticator(verifier, userService),
		chatService,
		userService,
		deps.WS,
	))
	r.Handle("/metrics", promhttp.Handler())

	return r
}
