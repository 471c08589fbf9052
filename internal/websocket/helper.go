package websocket

import (
	"net"
	"net/http"

	app_error "github.com/xenn00/elearning-chat/internal/errors"
)

// getClientIP keys the per-IP limit on the peer address. Forwarding headers
// are only honoured when chi's RealIP middleware has already rewritten
// RemoteAddr behind a trusted proxy.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// acquireConnection reserves a slot against the global and per-IP limits.
// A limit of zero disables it.
func (h *WebSocketHandler) acquireConnection(clientIP string) *app_error.AppError {
	h.connMu.Lock()
	defer h.connMu.Unlock()

	if h.cfg.MaxConnections > 0 && h.totalConns >= h.cfg.MaxConnections {
		return app_error.NewAppError(http.StatusServiceUnavailable, "server is at connection capacity", "connections")
	}
	if h.cfg.ConnectionsPerIP > 0 && h.connsPerIP[clientIP] >= h.cfg.ConnectionsPerIP {
		return app_error.NewAppError(http.StatusTooManyRequests, "too many connections from this address", "connections")
	}

	h.totalConns++
	h.connsPerIP[clientIP]++
	return nil
}

func (h *WebSocketHandler) releaseConnection(clientIP string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()

	h.totalConns--
	h.connsPerIP[clientIP]--
	if h.connsPerIP[clientIP] <= 0 {
		delete(h.connsPerIP, clientIP)
	}
}

// ConnectionCount reports the connections currently admitted.
func (h *WebSocketHandler) ConnectionCount() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
