// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package wsrs realizes the websocket resource which pushes the engine
// notifications (e.g., assignment prompts and anomalies) to the
// connected operator consoles.
package wsrs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/momeni/parkade/pkg/core/log"
	"github.com/momeni/parkade/pkg/core/model"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	readLimit  = 512
)

// Hub keeps the connected websocket clients and broadcasts the
// notifications to them. It implements the recouc.Notifier interface.
// Notify never blocks: a client whose send buffer is full is dropped.
type Hub struct {
	upgrader websocket.Upgrader
	bufSize  int

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a Hub which buffers up to bufSize messages for each
// client. A non-positive bufSize is replaced by 64.
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 64
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		bufSize: bufSize,
		clients: make(map[*client]struct{}),
	}
}

// Register adds the GET request to /api/parkade/v1/ws which upgrades
// the connection to a websocket and streams the notifications.
func (h *Hub) Register(r *gin.RouterGroup) {
	r.GET("ws", h.Serve)
}

// Notify broadcasts n as a JSON text message.
func (h *Hub) Notify(ctx context.Context, n model.Notification) {
	b, err := json.Marshal(n)
	if err != nil {
		log.Error(
			ctx, "marshaling notification failed",
			slog.String("kind", string(n.Kind)),
			log.Err("err", err),
		)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			log.Warn(
				ctx, "dropping slow websocket client",
				log.Stringer("remote", c.conn.RemoteAddr()),
			)
			h.drop(c)
		}
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.drop(c)
	}
}

// drop must be called while h.mu is locked. Closing the send channel
// makes the writer send a close message and close the connection.
func (h *Hub) drop(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// Serve upgrades the request and serves the client until it goes away.
func (h *Hub) Serve(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Warn(ctx, "websocket upgrade failed", log.Err("err", err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, h.bufSize)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	log.Info(
		ctx, "websocket client connected",
		log.Stringer("remote", conn.RemoteAddr()),
		slog.Int("clients", n),
	)
	go c.write()
	c.read(ctx)
	h.mu.Lock()
	h.drop(c)
	h.mu.Unlock()
	log.Info(
		ctx, "websocket client disconnected",
		log.Stringer("remote", conn.RemoteAddr()),
	)
}

// read discards the incoming messages and returns when the connection
// fails or is closed. The pong messages extend the read deadline.
func (c *client) read(ctx context.Context) {
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(
				err, websocket.CloseGoingAway, websocket.CloseNormalClosure,
			) {
				log.Warn(ctx, "websocket read failed", log.Err("err", err))
			}
			return
		}
	}
}

func (c *client) write() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case b, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
