package contracts

import "github.com/hilthontt/breakout/internal/domain"

// AmqpMessage is the envelope published on the breakout exchange. Data is
// the JSON encoded domain event.
type AmqpMessage struct {
	MeetingID string `json:"meetingId"`
	Data      []byte `json:"data"`
}

// RoutingKeys are the event types the audit queue binds to. The routing key
// of a published event is its type.
var RoutingKeys = []string{
	string(domain.EventMeetingStarted),
	string(domain.EventMeetingEnded),
	string(domain.EventBreakoutsCreated),
	string(domain.EventBreakoutsEnded),
	string(domain.EventTimeUpdated),
	string(domain.EventUserJoined),
	string(domain.EventJoinURLIssued),
	string(domain.EventTransferUpdated),
	string(domain.EventReturnToMainRoom),
}
