package api

import (
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Socket timing follows the gorilla chat example: pings go out at 90%
// of the pong deadline, and a peer that misses a pong is dropped.
const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsMaxMsgSize = 512
)

// handleWebSocket upgrades the connection and attaches it to the hub,
// which streams portfolio mutation events (property_saved,
// property_deleted, assumptions_updated, portfolio_imported).
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.allowWSOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &WSClient{hub: s.wsHub, send: make(chan WSMessage, 256)}
	s.wsHub.Register(client)

	// Version in the greeting lets dashboards notice a redeploy across
	// a reconnect.
	client.send <- WSMessage{Type: "hello", Data: map[string]string{"version": Version}}

	go client.writeLoop(conn)
	go client.readLoop(conn)
}

// allowWSOrigin mirrors the CORS policy for websocket upgrades:
// same-origin requests always pass, cross-origin ones must match a
// configured dashboard origin.
func (s *Server) allowWSOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Host == r.Host {
		return true
	}
	allowed := s.cfg.API.CORSOrigins
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

// readLoop consumes frames until the peer goes away. The event stream
// is one-way; inbound traffic is only the dashboard's subscribe
// chatter, so frames are read and discarded to service control
// messages and deadlines.
func (c *WSClient) readLoop(conn *websocket.Conn) {
	defer func() {
		c.hub.Unregister(c)
		conn.Close()
	}()

	conn.SetReadLimit(wsMaxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
	}
}

// writeLoop relays hub events to the peer and keeps the connection
// alive with protocol pings. It exits when the hub closes the send
// channel or a write fails.
func (c *WSClient) writeLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
