package server

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/AiDave71/Bannerlord.LauncherManager/depgraph"
)

// WebSocket timeout constants following Gorilla best practices
// See: https://github.com/gorilla/websocket/blob/master/examples/chat/client.go
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// Client is one WebSocket connection. The hub owns the send channel; the
// write pump is the only goroutine writing to the connection.
type Client struct {
	server *Server
	conn   *websocket.Conn
	send   chan *depgraph.Graph
	id     string
}

// readPump discards client input and watches for disconnects. Clients only
// receive graph updates; any payload they send is ignored.
func (c *Client) readPump() {
	defer func() {
		c.server.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.handleReadError(err)
			return
		}
	}
}

// handleReadError logs unexpected WebSocket read errors. Expected closure
// codes (going away, abnormal, no status) are silently ignored.
func (c *Client) handleReadError(err error) {
	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseNoStatusReceived) {
		c.server.logger.Warnw("WebSocket read error",
			"client_id", c.id,
			"error", err.Error(),
		)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.server.ctx.Done():
			return
		case g, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			msg := graphUpdateMessage{
				Type:      "graph_update",
				Graph:     g,
				Timestamp: time.Now().Unix(),
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.server.logger.Warnw("Graph write error",
					"client_id", c.id,
					"error", err.Error(),
				)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type graphUpdateMessage struct {
	Type      string          `json:"type"`
	Graph     *depgraph.Graph `json:"graph"`
	Timestamp int64           `json:"timestamp"`
}
