package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/elearning-chat/config"
	"github.com/xenn00/elearning-chat/internal/dtos/chat_dto"
	app_error "github.com/xenn00/elearning-chat/internal/errors"
	"golang.org/x/time/rate"
)

// Client is one websocket connection joined to one room. The send channel
// is never closed; shutdown is signalled through ctx.
type Client struct {
	id       string
	roomID   string
	identity Identity

	conn *websocket.Conn
	send chan []byte

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	limiter *rate.Limiter

	writeWait  time.Duration
	pongWait   time.Duration
	pingPeriod time.Duration
	readLimit  int64
}

func newClient(conn *websocket.Conn, roomID string, identity Identity, cfg config.WSConfig) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	limit := rate.Inf
	if cfg.MessageRate > 0 {
		limit = rate.Limit(cfg.MessageRate)
	}

	return &Client{
		id:         uuid.NewString(),
		roomID:     roomID,
		identity:   identity,
		conn:       conn,
		send:       make(chan []byte, cfg.SendBuffer),
		ctx:        ctx,
		cancel:     cancel,
		limiter:    rate.NewLimiter(limit, cfg.MessageBurst),
		writeWait:  cfg.WriteTimeout,
		pongWait:   cfg.IdleTimeout,
		pingPeriod: (cfg.IdleTimeout * 9) / 10,
		readLimit:  cfg.MaxMessageSize,
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) UserID() string { return c.identity.UserID }

func (c *Client) Identity() Identity { return c.identity }

func (c *Client) RoomID() string { return c.roomID }

// Context is cancelled once the client is closed.
func (c *Client) Context() context.Context { return c.ctx }

// Deliver enqueues payload without blocking. It fails when the client is
// closed or its buffer is full.
func (c *Client) Deliver(payload []byte) bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
	}

	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(c.cancel)
}

// sendFrame writes a frame to this client only.
func (c *Client) sendFrame(frame chat_dto.WSOutgoingFrame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		log.Error().Err(err).Str("clientID", c.id).Msg("ws: failed to marshal frame")
		return
	}
	if !c.Deliver(payload) {
		log.Warn().Str("clientID", c.id).Str("action", frame.Action).Msg("ws: dropping frame for closed or full client")
	}
}

func (c *Client) sendError(appErr *app_error.AppError) {
	c.sendFrame(chat_dto.NewErrorFrame(chat_dto.ErrorData{
		Message: appErr.Message,
		Field:   appErr.Field,
		Errors:  appErr.Details,
	}))
}

// writePump drains c.send to the socket and keeps the connection alive with
// pings. It owns every write to conn.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug().Err(err).Str("clientID", c.id).Msg("ws: write failed")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(c.writeWait))
			return
		}
	}
}

// readPump hands every text frame to handle until the connection fails or
// goes idle for longer than pongWait.
func (c *Client) readPump(handle func(raw []byte)) {
	c.conn.SetReadLimit(c.readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		msgType, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Debug().Err(err).Str("clientID", c.id).Msg("ws: connection closed unexpectedly")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))

		if msgType != websocket.TextMessage {
			continue
		}
		handle(raw)
	}
}
