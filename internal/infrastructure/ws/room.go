package ws

import (
	"errors"
	"slices"
	"sync"
)

var ErrRoomNotFound = errors.New("no listeners for meeting")

// WSRoom is the set of stream connections of one meeting.
type WSRoom struct {
	MeetingID string
	Clients   map[string]*Client // connection ID -> client
}

type RoomManager struct {
	rooms map[string]*WSRoom
	mu    sync.RWMutex
}

func NewRoomManager() *RoomManager {
	return &RoomManager{
		rooms: make(map[string]*WSRoom),
	}
}

func (rm *RoomManager) AddClient(cl *Client) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, ok := rm.rooms[cl.MeetingID]
	if !ok {
		room = &WSRoom{
			MeetingID: cl.MeetingID,
			Clients:   make(map[string]*Client),
		}
		rm.rooms[cl.MeetingID] = room
	}

	room.Clients[cl.ID] = cl
}

// RemoveClient closes the client's queue. It reports whether this was the
// user's last connection in the meeting.
func (rm *RoomManager) RemoveClient(cl *Client) (removed, lastForUser bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, ok := rm.rooms[cl.MeetingID]
	if !ok {
		return false, false
	}
	if _, ok := room.Clients[cl.ID]; !ok {
		return false, false
	}

	delete(room.Clients, cl.ID)
	close(cl.Message)

	lastForUser = true
	for _, other := range room.Clients {
		if other.UserID == cl.UserID {
			lastForUser = false
			break
		}
	}

	if len(room.Clients) == 0 {
		delete(rm.rooms, cl.MeetingID)
	}
	return true, lastForUser
}

func (rm *RoomManager) Users(meetingID string) []string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	room, ok := rm.rooms[meetingID]
	if !ok {
		return nil
	}

	users := make([]string, 0, len(room.Clients))
	for _, cl := range room.Clients {
		if !slices.Contains(users, cl.UserID) {
			users = append(users, cl.UserID)
		}
	}
	slices.Sort(users)
	return users
}

// BroadcastToRoom queues msg for every client of the meeting. Clients with a
// full queue miss the frame; the returned slice lists them.
func (rm *RoomManager) BroadcastToRoom(msg *WSMessage) ([]string, error) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	room, ok := rm.rooms[msg.MeetingID]
	if !ok {
		return nil, ErrRoomNotFound
	}

	var dropped []string
	for _, cl := range room.Clients {
		select {
		case cl.Message <- msg:
		default:
			dropped = append(dropped, cl.ID)
		}
	}
	return dropped, nil
}
