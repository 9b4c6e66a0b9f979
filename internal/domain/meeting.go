package domain

import (
	"context"
	"time"
)

type Meeting struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"startedAt"`
	// DurationLimit of zero means the meeting has no scheduled end.
	DurationLimit time.Duration `json:"durationLimit"`
}

type MeetingRepository interface {
	Create(ctx context.Context, meeting *Meeting) error
	GetByID(ctx context.Context, id string) (*Meeting, error)
	Delete(ctx context.Context, id string) error
}

func NewMeeting(id string, durationLimit time.Duration, now time.Time) (*Meeting, error) {
	if id == "" || durationLimit < 0 {
		return nil, ErrInvalidParameter
	}

	return &Meeting{
		ID:            id,
		StartedAt:     now,
		DurationLimit: durationLimit,
	}, nil
}

// Remaining reports the time left before the meeting's scheduled end.
// The boolean is false for meetings without a limit.
func (m *Meeting) Remaining(now time.Time) (time.Duration, bool) {
	if m.DurationLimit == 0 {
		return 0, false
	}

	left := m.StartedAt.Add(m.DurationLimit).Sub(now)
	if left < 0 {
		left = 0
	}
	return left, true
}
