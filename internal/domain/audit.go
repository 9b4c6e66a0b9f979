package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type BreakoutAuditLog struct {
	ID        string         `bson:"_id" json:"id"`
	MeetingID string         `bson:"meeting_id" json:"meetingId"`
	EventType EventType      `bson:"event_type" json:"eventType"`
	UserIDs   []string       `bson:"user_ids,omitempty" json:"userIds,omitempty"`
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
	Metadata  map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

type AuditRepository interface {
	Log(ctx context.Context, log *BreakoutAuditLog) error
	GetByMeetingID(ctx context.Context, meetingID string, limit int) ([]BreakoutAuditLog, error)
	EnsureIndexes(ctx context.Context) error
}

// NewAuditLog flattens an event into an audit record. Metadata carries the
// fields worth querying later, not the whole payload.
func NewAuditLog(e Event) *BreakoutAuditLog {
	log := &BreakoutAuditLog{
		ID:        uuid.NewString(),
		MeetingID: e.MeetingID,
		EventType: e.Type,
		UserIDs:   e.UserIDs,
		Timestamp: e.Timestamp,
		Metadata:  map[string]any{"event_id": e.ID},
	}

	switch data := e.Data.(type) {
	case BreakoutsEndedData:
		log.Metadata["reason"] = data.Reason
		log.Metadata["room_count"] = len(data.Rooms)
	case TimeUpdatedData:
		log.Metadata["total_seconds"] = data.TotalSeconds
		log.Metadata["remaining_seconds"] = data.RemainingSeconds
	case UserJoinedData:
		log.Metadata["room_id"] = data.RoomID
	case AudioTransferRequest:
		log.Metadata["transfer_id"] = data.ID
		log.Metadata["status"] = string(data.Status)
		if data.Reason != "" {
			log.Metadata["reason"] = data.Reason
		}
	case BreakoutsCreatedData:
		log.Metadata["room_count"] = len(data.RoomIDs)
		log.Metadata["duration_seconds"] = data.DurationSeconds
	case map[string]any:
		// events replayed from the broker arrive undecoded
		for k, v := range data {
			log.Metadata[k] = v
		}
	}

	return log
}
