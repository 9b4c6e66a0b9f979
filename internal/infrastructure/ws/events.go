package ws

import "github.com/hilthontt/breakout/internal/domain"

// Frame types that are not domain events.
const (
	Connected  = "stream.connected"
	ErrorEvent = "error"
)

// WSMessage is one frame on a meeting's event stream.
type WSMessage struct {
	Type      string `json:"type"`
	MeetingID string `json:"meetingId"`
	Data      any    `json:"data,omitempty"`
}

type ConnectedPayload struct {
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func NewEventMessage(ev domain.Event) *WSMessage {
	return &WSMessage{
		Type:      string(ev.Type),
		MeetingID: ev.MeetingID,
		Data:      ev,
	}
}

func NewConnected(meetingID, connectionID, userID string) *WSMessage {
	return &WSMessage{
		Type:      Connected,
		MeetingID: meetingID,
		Data: ConnectedPayload{
			ConnectionID: connectionID,
			UserID:       userID,
		},
	}
}

func NewError(meetingID, code, message string) *WSMessage {
	return &WSMessage{
		Type:      ErrorEvent,
		MeetingID: meetingID,
		Data: ErrorPayload{
			Code:    code,
			Message: message,
		},
	}
}
