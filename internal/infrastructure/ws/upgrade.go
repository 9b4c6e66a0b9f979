package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// NewUpgrader accepts any origin when allowed contains "*".
func NewUpgrader(allowed []string) *websocket.Upgrader {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || set["*"] || set[origin]
		},
	}
}

// Serve upgrades the request and blocks until the stream closes.
func (c *Core) Serve(up *websocket.Upgrader, w http.ResponseWriter, r *http.Request, meetingID, userID string) error {
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	cl := NewClient(conn, meetingID, userID)
	select {
	case c.register <- cl:
	case <-c.done:
		return conn.Close()
	}

	go cl.WriteMessage(c)
	cl.ReadMessage(c)
	return nil
}
