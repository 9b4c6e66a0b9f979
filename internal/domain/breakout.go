package domain

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

type BreakoutRoom struct {
	ID              string    `json:"id"`
	ParentMeetingID string    `json:"parentMeetingId"`
	Sequence        int       `json:"sequence"`
	Name            string    `json:"name"`
	FreeJoin        bool      `json:"freeJoin"`
	CreatedAt       time.Time `json:"createdAt"`
	// AssignedUsers were placed in the room by the moderator at creation.
	AssignedUsers []string `json:"assignedUsers"`
	// JoinedUsers redeemed a join grant or had their audio moved in.
	JoinedUsers []string `json:"joinedUsers"`
}

type BreakoutRepository interface {
	CreateMany(ctx context.Context, rooms []*BreakoutRoom) error
	GetByID(ctx context.Context, id string) (*BreakoutRoom, error)
	ListByMeeting(ctx context.Context, meetingID string) ([]*BreakoutRoom, error)
	Update(ctx context.Context, room *BreakoutRoom) error
	DeleteByMeeting(ctx context.Context, meetingID string) ([]*BreakoutRoom, error)
	FindByJoinedUser(ctx context.Context, userID string) (*BreakoutRoom, error)
}

// NewBreakoutRooms builds count rooms for a meeting. assignments maps a
// 1-based sequence to the users invited into that room.
func NewBreakoutRooms(parentMeetingID string, count int, freeJoin bool, assignments map[int][]string, now time.Time) ([]*BreakoutRoom, error) {
	if parentMeetingID == "" || count <= 0 {
		return nil, ErrInvalidParameter
	}

	seen := make(map[string]int)
	for seq, users := range assignments {
		if seq < 1 || seq > count {
			return nil, fmt.Errorf("%w: assignment for room %d outside 1..%d", ErrInvalidParameter, seq, count)
		}
		for _, u := range users {
			if prev, dup := seen[u]; dup {
				return nil, fmt.Errorf("%w: user %s assigned to rooms %d and %d", ErrInvalidParameter, u, prev, seq)
			}
			seen[u] = seq
		}
	}

	rooms := make([]*BreakoutRoom, 0, count)
	for seq := 1; seq <= count; seq++ {
		assigned := slices.Clone(assignments[seq])
		if assigned == nil {
			assigned = []string{}
		}

		rooms = append(rooms, &BreakoutRoom{
			ID:              uuid.NewString(),
			ParentMeetingID: parentMeetingID,
			Sequence:        seq,
			Name:            fmt.Sprintf("Room %d", seq),
			FreeJoin:        freeJoin,
			CreatedAt:       now,
			AssignedUsers:   assigned,
			JoinedUsers:     []string{},
		})
	}

	return rooms, nil
}

func (r *BreakoutRoom) IsAssigned(userID string) bool {
	return slices.Contains(r.AssignedUsers, userID)
}

func (r *BreakoutRoom) HasJoined(userID string) bool {
	return slices.Contains(r.JoinedUsers, userID)
}

// CanJoin reports whether a user may ask for a join grant.
func (r *BreakoutRoom) CanJoin(p Participant) bool {
	return r.FreeJoin || p.IsModerator() || r.IsAssigned(p.UserID)
}

func (r *BreakoutRoom) Join(userID string) {
	if !r.HasJoined(userID) {
		r.JoinedUsers = append(r.JoinedUsers, userID)
	}
}

func (r *BreakoutRoom) Leave(userID string) bool {
	idx := slices.Index(r.JoinedUsers, userID)
	if idx == -1 {
		return false
	}
	r.JoinedUsers = slices.Delete(r.JoinedUsers, idx, idx+1)
	return true
}

// Participants is everyone who must be told to return to the main room when
// the room ends.
func (r *BreakoutRoom) Participants() []string {
	out := slices.Clone(r.JoinedUsers)
	for _, u := range r.AssignedUsers {
		if !slices.Contains(out, u) {
			out = append(out, u)
		}
	}
	return out
}

func (r *BreakoutRoom) Clone() *BreakoutRoom {
	cpy := *r
	cpy.AssignedUsers = slices.Clone(r.AssignedUsers)
	cpy.JoinedUsers = slices.Clone(r.JoinedUsers)
	return &cpy
}
