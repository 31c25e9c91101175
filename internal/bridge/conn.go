package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/polfunbox/internal/logging"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192

	sendBuffer = 32
)

// client is one connected remote.
type client struct {
	id         string
	remoteAddr string
	ws         *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(id, remoteAddr string, ws *websocket.Conn) *client {
	return &client{id: id, remoteAddr: remoteAddr, ws: ws, send: make(chan []byte, sendBuffer)}
}

// queue hands data to the writer. It drops the message when the buffer is
// full or the client is gone.
func (c *client) queue(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		logging.Warn("Remote is not reading, dropping message", zap.String("conn_id", c.id))
	}
}

// stop ends the writer after it flushes what is queued.
func (c *client) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// closeConn sends a close frame and closes the socket, which ends the
// reader.
func (c *client) closeConn(code int, reason string) {
	deadline := time.Now().Add(writeWait)
	_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	_ = c.ws.Close()
}

// serveClient runs the reader on this goroutine and the writer on another
// until the remote goes away.
func (s *Server) serveClient(ctx context.Context, c *client) {
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writePump()
	}()

	c.readPump(func(data []byte) { s.handleMessage(ctx, c, data) })

	c.stop()
	<-writerDone
	_ = c.ws.Close()
}

func (c *client) readPump(onMessage func([]byte)) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("Remote connection error", zap.String("conn_id", c.id), zap.Error(err))
			} else {
				logging.Debug("Remote closed", zap.String("conn_id", c.id), zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			logging.Warn("Ignoring non-text frame",
				zap.String("conn_id", c.id),
				zap.Int("frame_type", msgType),
			)
			continue
		}
		onMessage(data)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Debug("Write to remote failed", zap.String("conn_id", c.id), zap.Error(err))
				_ = c.ws.Close()
				return
			}
			logging.LogBridgeMessage(c.remoteAddr, "sent", data)

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.ws.Close()
				return
			}
		}
	}
}
