package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventMeetingStarted   EventType = "meeting.started"
	EventMeetingEnded     EventType = "meeting.ended"
	EventBreakoutsCreated EventType = "breakout.created"
	EventBreakoutsEnded   EventType = "breakout.ended"
	EventTimeUpdated      EventType = "breakout.time_updated"
	EventUserJoined       EventType = "breakout.user_joined"
	EventJoinURLIssued    EventType = "breakout.join_url_issued"
	EventTransferUpdated  EventType = "audio.transfer_updated"
	EventReturnToMainRoom EventType = "breakout.return_to_main"
)

// Event is a state change broadcast to every participant of MeetingID.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	MeetingID string    `json:"meetingId"`
	// UserIDs narrows who the event is about; empty means the whole meeting.
	UserIDs   []string  `json:"userIds,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

func NewEvent(eventType EventType, meetingID string, now time.Time, data any, userIDs ...string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		MeetingID: meetingID,
		UserIDs:   userIDs,
		Timestamp: now,
		Data:      data,
	}
}

type BreakoutsCreatedData struct {
	RoomIDs         []string `json:"roomIds"`
	DurationSeconds int64    `json:"durationSeconds"`
	FreeJoin        bool     `json:"freeJoin"`
}

type BreakoutsEndedData struct {
	Reason string         `json:"reason"`
	Rooms  []EndedRoomRef `json:"rooms"`
}

type EndedRoomRef struct {
	RoomID string   `json:"roomId"`
	Users  []string `json:"users"`
}

type TimeUpdatedData struct {
	TotalSeconds     int64     `json:"totalSeconds"`
	RemainingSeconds int64     `json:"remainingSeconds"`
	EndsAt           time.Time `json:"endsAt"`
}

type UserJoinedData struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}
