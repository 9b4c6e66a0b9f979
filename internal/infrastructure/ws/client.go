package ws

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 512
)

// Client is one participant connection to a meeting's event stream. The
// stream is server to client only; inbound frames are discarded.
type Client struct {
	conn      *connWrapper
	Message   chan *WSMessage
	ID        string
	MeetingID string
	UserID    string
}

func NewClient(conn *websocket.Conn, meetingID, userID string) *Client {
	return &Client{
		conn:      newConnWrapper(conn),
		Message:   make(chan *WSMessage, 64),
		ID:        uuid.NewString(),
		MeetingID: meetingID,
		UserID:    userID,
	}
}

func (c *Client) ReadMessage(core *Core) {
	defer func() {
		core.leave(c)
		_ = c.conn.Close()
	}()

	raw := c.conn.conn
	raw.SetReadLimit(maxMsgSize)
	_ = raw.SetReadDeadline(time.Now().Add(pongWait))
	raw.SetPongHandler(func(string) error {
		return raw.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := raw.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				core.logReadError(c, err)
			}
			return
		}
	}
}

func (c *Client) WriteMessage(core *Core) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Message:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				core.logWriteError(c, err)
				return
			}
		case <-ticker.C:
			if err := c.conn.WritePing(); err != nil {
				return
			}
		}
	}
}
