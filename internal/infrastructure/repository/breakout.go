package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/hilthontt/breakout/internal/domain"
)

// breakoutRepository keeps rooms in memory. Callers always receive clones,
// so mutations only land through Update.
type breakoutRepository struct {
	rooms        map[string]*domain.BreakoutRoom // ID -> room
	meetingIndex map[string][]string             // parent meeting ID -> room IDs
	userIndex    map[string]string               // joined user ID -> room ID
	mu           *sync.RWMutex
}

func NewBreakoutRepository() domain.BreakoutRepository {
	return &breakoutRepository{
		rooms:        make(map[string]*domain.BreakoutRoom),
		meetingIndex: make(map[string][]string),
		userIndex:    make(map[string]string),
		mu:           &sync.RWMutex{},
	}
}

func (r *breakoutRepository) CreateMany(ctx context.Context, rooms []*domain.BreakoutRoom) error {
	if len(rooms) == 0 {
		return domain.ErrInvalidParameter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, room := range rooms {
		if room == nil || room.ID == "" || room.ParentMeetingID == "" {
			return domain.ErrInvalidParameter
		}
		if _, exists := r.rooms[room.ID]; exists {
			return domain.ErrInvalidParameter
		}
	}

	for _, room := range rooms {
		r.rooms[room.ID] = room.Clone()
		r.meetingIndex[room.ParentMeetingID] = append(r.meetingIndex[room.ParentMeetingID], room.ID)
		r.indexUsers(room)
	}

	return nil
}

func (r *breakoutRepository) GetByID(ctx context.Context, id string) (*domain.BreakoutRoom, error) {
	if id == "" {
		return nil, domain.ErrInvalidParameter
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	room, exists := r.rooms[id]
	if !exists {
		return nil, domain.ErrRoomNotFound
	}

	return room.Clone(), nil
}

// ListByMeeting returns rooms ordered by sequence.
func (r *breakoutRepository) ListByMeeting(ctx context.Context, meetingID string) ([]*domain.BreakoutRoom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.meetingIndex[meetingID]
	rooms := make([]*domain.BreakoutRoom, 0, len(ids))
	for _, id := range ids {
		if room, ok := r.rooms[id]; ok {
			rooms = append(rooms, room.Clone())
		}
	}

	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].Sequence < rooms[j].Sequence
	})

	return rooms, nil
}

func (r *breakoutRepository) Update(ctx context.Context, room *domain.BreakoutRoom) error {
	if room == nil || room.ID == "" {
		return domain.ErrInvalidParameter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.rooms[room.ID]
	if !exists {
		return domain.ErrRoomNotFound
	}
	if existing.ParentMeetingID != room.ParentMeetingID {
		return domain.ErrInvalidParameter
	}

	r.unindexUsers(existing)
	r.rooms[room.ID] = room.Clone()
	r.indexUsers(room)

	return nil
}

// DeleteByMeeting removes every room of a meeting and returns what was
// removed. Deleting an empty meeting is not an error.
func (r *breakoutRepository) DeleteByMeeting(ctx context.Context, meetingID string) ([]*domain.BreakoutRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.meetingIndex[meetingID]
	removed := make([]*domain.BreakoutRoom, 0, len(ids))
	for _, id := range ids {
		room, ok := r.rooms[id]
		if !ok {
			continue
		}
		r.unindexUsers(room)
		delete(r.rooms, id)
		removed = append(removed, room)
	}
	delete(r.meetingIndex, meetingID)

	sort.Slice(removed, func(i, j int) bool {
		return removed[i].Sequence < removed[j].Sequence
	})

	return removed, nil
}

func (r *breakoutRepository) FindByJoinedUser(ctx context.Context, userID string) (*domain.BreakoutRoom, error) {
	if userID == "" {
		return nil, domain.ErrInvalidParameter
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	roomID, ok := r.userIndex[userID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	return room.Clone(), nil
}

func (r *breakoutRepository) indexUsers(room *domain.BreakoutRoom) {
	for _, u := range room.JoinedUsers {
		r.userIndex[u] = room.ID
	}
}

func (r *breakoutRepository) unindexUsers(room *domain.BreakoutRoom) {
	for _, u := range room.JoinedUsers {
		if r.userIndex[u] == room.ID {
			delete(r.userIndex, u)
		}
	}
}
