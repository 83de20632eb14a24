package session

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one live connection to a room session.
type Client struct {
	ID     string
	RoomID string

	conn    *websocket.Conn
	writeMu sync.Mutex
}

func NewClient(id, roomID string, conn *websocket.Conn) *Client {
	return &Client{
		ID:     id,
		RoomID: roomID,
		conn:   conn,
	}
}

// WriteJSON sends one message to the client. gorilla/websocket allows only
// one concurrent writer per connection.
func (c *Client) WriteJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.conn.WriteJSON(v)
}

// Ping sends a control ping; the peer's pong extends the read deadline.
func (c *Client) Ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.conn.WriteMessage(websocket.PingMessage, nil)
}
