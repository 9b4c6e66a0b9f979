package domain

import (
	"context"
	"time"
)

type TransferStatus string

const (
	TransferPending    TransferStatus = "pending"
	TransferInProgress TransferStatus = "in_progress"
	TransferCompleted  TransferStatus = "completed"
	TransferFailed     TransferStatus = "failed"
)

func (s TransferStatus) Terminal() bool {
	return s == TransferCompleted || s == TransferFailed
}

type AudioTransferRequest struct {
	ID            string         `json:"id"`
	UserID        string         `json:"userId"`
	FromMeetingID string         `json:"fromMeetingId"`
	ToMeetingID   string         `json:"toMeetingId"`
	Status        TransferStatus `json:"status"`
	Reason        string         `json:"reason,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type LegMode string

const (
	LegMicrophone LegMode = "microphone"
	LegListenOnly LegMode = "listen_only"
)

type LegState string

const (
	LegReserved LegState = "reserved"
	LegActive   LegState = "active"
)

// AudioLeg is one participant's connection to a meeting's audio bridge.
type AudioLeg struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	MeetingID string    `json:"meetingId"`
	Mode      LegMode   `json:"mode"`
	State     LegState  `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
}

type LegRequest struct {
	TransferID string
	UserID     string
	MeetingID  string
	Mode       LegMode
}

// AudioBridge is the media side of a transfer. PrepareLeg reserves the
// target leg; the bridge later reports readiness through the confirmation
// callback wired by the caller.
type AudioBridge interface {
	CurrentLeg(ctx context.Context, userID, meetingID string) (*AudioLeg, error)
	PrepareLeg(ctx context.Context, req LegRequest) (*AudioLeg, error)
	CommitLeg(ctx context.Context, legID string) error
	ReleaseLeg(ctx context.Context, legID string) error
}
