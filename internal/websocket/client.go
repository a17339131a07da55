package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize    = 16
	keepAliveInterval = 30 * time.Second
	writeTimeout      = 5 * time.Second
)

// Client is one device's open sync connection. A user often holds several at
// once (phone capturing, desktop editing); each gets its own Client on the
// hub.
type Client struct {
	hub  *Hub
	conn *ws.Conn
	send chan []byte
}

func NewClient(hub *Hub, conn *ws.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// Run serves the connection until it closes and blocks for its lifetime.
// Sync is one-way: notifications go out here, edits come back through the
// API, so incoming frames are drained only to notice the peer going away.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := c.conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			if !ok {
				// Hub dropped us; say goodbye properly.
				c.conn.Close(ws.StatusNormalClosure, "")
				return
			}
			if err := c.write(ctx, msg); err != nil {
				return
			}
		case <-keepAlive.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		}
	}
}

// write applies a deadline so one stalled device cannot wedge the loop for
// the rest of the session.
func (c *Client) write(ctx context.Context, msg []byte) error {
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(wctx, ws.MessageText, msg)
}
