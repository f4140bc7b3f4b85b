package websocket

import (
	"sync/atomic"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// subscribe requests are tiny
	maxMessageSize = 1024
	sendBufferSize = 256
)

// Client is one subscriber of the synthesis event stream
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	ID   string

	// Outbound frames. Closed by the hub only.
	Send chan []byte

	filter atomic.Pointer[Filter]
}

func (c *Client) accepts(frame Frame) bool {
	return c.filter.Load().matches(frame)
}

// readPump applies subscribe requests and detects disconnects
func (c *Client) readPump() {
	defer func() {
		c.Hub.leave(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn(hubModule, "Unexpected websocket close", map[string]interface{}{"client_id": c.ID, "error": err.Error()})
			}
			return
		}

		filter, err := parseFilter(raw)
		if err != nil {
			c.Hub.logger.Warn(hubModule, "Ignoring client message", map[string]interface{}{"client_id": c.ID, "error": err.Error()})
			continue
		}
		c.filter.Store(filter)
		c.Hub.logger.Debug(hubModule, "Client filter updated", map[string]interface{}{
			"client_id":     c.ID,
			"categories":    len(filter.Categories),
			"fallback_only": filter.FallbackOnly,
		})
	}
}

// writePump sends one event per text frame and keeps the connection alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
