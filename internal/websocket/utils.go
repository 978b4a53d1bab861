package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(v)
}

// WriteError sends an error Reply for the request with the given id.
func WriteError(conn *websocket.Conn, id, errMsg string) error {
	return WriteTyped(conn, Reply{
		ID:    id,
		Event: EventError,
		Error: errMsg,
	})
}

// ReadJSON reads and decodes a message into the provided structure.
// It sets a read deadline.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
	return conn.ReadJSON(v)
}

// Client is a minimal IPC caller. Calls are sequential; one reply per request.
type Client struct {
	conn *websocket.Conn
}

// Dial connects to an IPC endpoint such as ws://127.0.0.1:47800/ipc.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial ipc: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Call sends one action and waits for its reply.
func (c *Client) Call(action Action, payload interface{}) (*Reply, json.RawMessage, error) {
	req := Request{ID: uuid.NewString(), Action: action}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, err
		}
		req.Payload = raw
	}
	if err := WriteTyped(c.conn, req); err != nil {
		return nil, nil, fmt.Errorf("send %s: %w", action, err)
	}

	var wire struct {
		Reply
		Data json.RawMessage `json:"data,omitempty"`
	}
	if err := ReadJSON(c.conn, &wire); err != nil {
		return nil, nil, fmt.Errorf("read %s reply: %w", action, err)
	}
	if wire.ID != req.ID {
		return nil, nil, fmt.Errorf("reply id %q does not match request %q", wire.ID, req.ID)
	}
	reply := wire.Reply
	reply.Data = nil
	return &reply, wire.Data, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
