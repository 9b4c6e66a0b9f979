package rooms

import (
	"time"

	"github.com/hilthontt/breakout/internal/application/breakout"
	"github.com/hilthontt/breakout/internal/domain"
)

// createBreakoutsRequest opens the breakout rooms of a meeting
type createBreakoutsRequest struct {
	Count           int  `json:"count" example:"3" minimum:"1"`             // Number of rooms
	DurationSeconds int  `json:"durationSeconds" example:"900" minimum:"1"` // Shared countdown length
	FreeJoin        bool `json:"freeJoin" example:"false"`                  // Whether any participant may join any room
	// Pre-assignments keyed by 1-based room sequence
	Assignments map[int][]string `json:"assignments,omitempty"`
}

// setTimeRequest changes the total duration of the running rooms
type setTimeRequest struct {
	TimeInMinutes int `json:"timeInMinutes" example:"20"` // New total duration measured from the start
}

// breakoutsResponse lists the rooms of a meeting
type breakoutsResponse struct {
	MeetingID string              `json:"meetingId" example:"standup-42"`
	Rooms     []breakout.RoomView `json:"rooms"`
}

// endAllResponse reports what EndAll tore down
type endAllResponse struct {
	MeetingID  string `json:"meetingId" example:"standup-42"`
	EndedRooms int    `json:"endedRooms" example:"3"`
}

// timerResponse is the shared countdown of a meeting's rooms
type timerResponse struct {
	MeetingID        string            `json:"meetingId" example:"standup-42"`
	Phase            domain.TimerPhase `json:"phase" example:"running"`
	TotalSeconds     int64             `json:"totalSeconds" example:"1200"`
	RemainingSeconds int64             `json:"remainingSeconds" example:"845"`
	EndsAt           time.Time         `json:"endsAt"`
}

// timeCheckResponse answers whether a new duration would overrun the meeting
type timeCheckResponse struct {
	Minutes int  `json:"minutes" example:"30"`
	Exceeds bool `json:"exceeds" example:"false"`
}

// joinURLResponse carries a single-use join link
type joinURLResponse struct {
	GrantID   string    `json:"grantId"`
	RoomID    string    `json:"roomId"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// redeemResponse confirms the caller was placed in a room
type redeemResponse struct {
	RoomID    string `json:"roomId"`
	MeetingID string `json:"meetingId"`
	UserID    string `json:"userId"`
	Name      string `json:"name" example:"Room 2"`
}

// myBreakoutResponse is the caller's breakout status
type myBreakoutResponse struct {
	InBreakoutRoom bool                 `json:"inBreakoutRoom"`
	Room           *domain.BreakoutRoom `json:"room,omitempty"`
	PendingJoinURL *joinURLResponse     `json:"pendingJoinUrl,omitempty"`
}

func newTimerResponse(t *domain.TimerState, now time.Time) timerResponse {
	return timerResponse{
		MeetingID:        t.MeetingID,
		Phase:            t.Phase,
		TotalSeconds:     int64(t.TotalDuration / time.Second),
		RemainingSeconds: int64(t.Remaining(now) / time.Second),
		EndsAt:           t.EndsAt(),
	}
}

func newJoinURLResponse(g *domain.JoinGrant) *joinURLResponse {
	return &joinURLResponse{
		GrantID:   g.ID,
		RoomID:    g.BreakoutRoomID,
		URL:       g.URL,
		ExpiresAt: g.ExpiresAt,
	}
}
