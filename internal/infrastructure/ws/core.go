package ws

import (
	"context"
	"errors"

	"github.com/hilthontt/breakout/internal/domain"
	"github.com/hilthontt/breakout/internal/infrastructure/logging"
	"github.com/hilthontt/breakout/internal/infrastructure/metrics"
)

// DisconnectFunc is told when a user's last stream in a meeting closes.
type DisconnectFunc func(ctx context.Context, meetingID, userID string)

// Core owns the meeting streams. All membership changes and broadcasts go
// through Run's loop.
type Core struct {
	roomMgr      *RoomManager
	register     chan *Client
	unregister   chan *Client
	broadcast    chan *WSMessage
	done         chan struct{}
	logger       logging.Logger
	metrics      *metrics.Metrics
	onDisconnect DisconnectFunc
}

func NewCore(logger logging.Logger, m *metrics.Metrics) *Core {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Core{
		roomMgr:    NewRoomManager(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *WSMessage, 256),
		done:       make(chan struct{}),
		logger:     logger,
		metrics:    m,
	}
}

// OnDisconnect must be set before Run starts.
func (c *Core) OnDisconnect(fn DisconnectFunc) {
	c.onDisconnect = fn
}

func (c *Core) Run(ctx context.Context) error {
	defer close(c.done)

	for {
		select {
		case cl := <-c.register:
			c.roomMgr.AddClient(cl)
			c.metrics.StreamOpened()
			cl.Message <- NewConnected(cl.MeetingID, cl.ID, cl.UserID)

			c.logger.Debug(logging.WebSocket, logging.Broadcast, "stream opened", map[logging.ExtraKey]any{
				logging.MeetingID: cl.MeetingID,
				logging.UserID:    cl.UserID,
			})

		case cl := <-c.unregister:
			removed, last := c.roomMgr.RemoveClient(cl)
			if !removed {
				continue
			}
			c.metrics.StreamClosed()

			if last && c.onDisconnect != nil {
				go c.onDisconnect(context.WithoutCancel(ctx), cl.MeetingID, cl.UserID)
			}

		case msg := <-c.broadcast:
			dropped, err := c.roomMgr.BroadcastToRoom(msg)
			if err != nil && !errors.Is(err, ErrRoomNotFound) {
				c.logger.Error(logging.WebSocket, logging.Broadcast, "broadcast failed", map[logging.ExtraKey]any{
					logging.MeetingID:    msg.MeetingID,
					logging.ErrorMessage: err.Error(),
				})
			}
			if len(dropped) > 0 {
				c.logger.Warn(logging.WebSocket, logging.Broadcast, "slow stream clients missed a frame", map[logging.ExtraKey]any{
					logging.MeetingID: msg.MeetingID,
					"connections":     dropped,
				})
			}

		case <-ctx.Done():
			return nil
		}
	}
}

// leave unregisters cl unless the loop has already stopped.
func (c *Core) leave(cl *Client) {
	select {
	case c.unregister <- cl:
	case <-c.done:
	}
}

// Publish queues an event for every stream of the event's meeting.
func (c *Core) Publish(ctx context.Context, ev domain.Event) error {
	select {
	case c.broadcast <- NewEventMessage(ev):
		return nil
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Listeners returns the users with an open stream in a meeting.
func (c *Core) Listeners(meetingID string) []string {
	return c.roomMgr.Users(meetingID)
}

func (c *Core) logReadError(cl *Client, err error) {
	c.logger.Warn(logging.WebSocket, logging.Consume, "stream read error", map[logging.ExtraKey]any{
		logging.MeetingID:    cl.MeetingID,
		logging.UserID:       cl.UserID,
		logging.ErrorMessage: err.Error(),
	})
}

func (c *Core) logWriteError(cl *Client, err error) {
	c.logger.Warn(logging.WebSocket, logging.Broadcast, "stream write error", map[logging.ExtraKey]any{
		logging.MeetingID:    cl.MeetingID,
		logging.UserID:       cl.UserID,
		logging.ErrorMessage: err.Error(),
	})
}
