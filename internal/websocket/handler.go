package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/elearning-chat/config"
	"github.com/xenn00/elearning-chat/internal/dtos/chat_dto"
	"github.com/xenn00/elearning-chat/internal/dtos/user_dto"
	app_error "github.com/xenn00/elearning-chat/internal/errors"
)

type MessagePersister interface {
	PersistMessage(ctx context.Context, userID, roomID string, payload chat_dto.CreateMessageRequest) (*chat_dto.MessageResponse, *app_error.AppError)
	CheckMembership(ctx context.Context, roomID, userID string) *app_error.AppError
}

type UserSerializer interface {
	SerializeUserMinimal(ctx context.Context, userID string) (*user_dto.UserMinimalResponse, *app_error.AppError)
}

type WebSocketHandler struct {
	hub      *Hub
	auth     *Authenticator
	messages MessagePersister
	users    UserSerializer
	cfg      config.WSConfig
	upgrader websocket.Upgrader

	connMu     sync.Mutex
	totalConns int
	connsPerIP map[string]int
}

func NewWebSocketHandler(hub *Hub, auth *Authenticator, messages MessagePersister, users UserSerializer, cfg config.WSConfig) *WebSocketHandler {
	cfg = cfg.WithDefaults()
	return &WebSocketHandler{
		hub:      hub,
		auth:     auth,
		messages: messages,
		users:    users,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: cfg.HandshakeTimeout,
			// TODO: restrict to the platform's web origins once they are configurable
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		connsPerIP: make(map[string]int),
	}
}

// ServeChat upgrades GET /socket/chat/{roomId}/ and runs the session on the
// calling goroutine until the connection ends.
func (h *WebSocketHandler) ServeChat(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		h.reject(w, r, "room", app_error.NewAppError(http.StatusBadRequest, "room id is required", "roomId"))
		return
	}

	clientIP := getClientIP(r)
	if appErr := h.acquireConnection(clientIP); appErr != nil {
		h.reject(w, r, "capacity", appErr)
		return
	}
	defer h.releaseConnection(clientIP)

	identity, err := h.auth.Authenticate(r)
	if err != nil {
		if !h.cfg.AllowAnonymous {
			log.Info().Err(err).Str("roomID", roomID).Str("ip", clientIP).Msg("ws: handshake rejected")
			h.reject(w, r, "unauthenticated", app_error.NewAppError(http.StatusUnauthorized, "invalid or missing token", "token"))
			return
		}
		log.Debug().Err(err).Str("roomID", roomID).Msg("ws: continuing as anonymous")
	}

	if h.cfg.RequireMembership {
		if identity.IsAnonymous() {
			h.reject(w, r, "membership", app_error.NewAppError(http.StatusForbidden, "membership required", "membership"))
			return
		}
		if appErr := h.messages.CheckMembership(r.Context(), roomID, identity.UserID); appErr != nil {
			h.reject(w, r, "membership", appErr)
			return
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the error response
		log.Error().Err(err).Msg("ws: upgrade failed")
		return
	}

	client := newClient(conn, roomID, identity, h.cfg)
	if err := h.hub.Join(roomID, client); err != nil {
		log.Error().Err(err).Str("roomID", roomID).Msg("ws: join failed")
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "chat unavailable"),
			time.Now().Add(h.cfg.WriteTimeout))
		_ = conn.Close()
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("clientID", client.ID()).Msg("ws: session panicked")
		}
	}()
	defer client.Close()
	defer h.hub.Leave(roomID, client)

	go client.writePump()
	client.readPump(func(raw []byte) {
		h.handleFrame(client, raw)
	})
}

func (h *WebSocketHandler) reject(w http.ResponseWriter, r *http.Request, reason string, appErr *app_error.AppError) {
	handshakeRejections.WithLabelValues(reason).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Code)
	if err := appErr.JSON(w); err != nil {
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("ws: failed to write rejection")
	}
}
