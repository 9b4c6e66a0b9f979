package domain

import (
	"context"
	"time"
)

type JoinGrant struct {
	ID              string     `json:"id"`
	BreakoutRoomID  string     `json:"breakoutRoomId"`
	ParentMeetingID string     `json:"parentMeetingId"`
	UserID          string     `json:"userId"`
	URL             string     `json:"url"`
	IssuedAt        time.Time  `json:"issuedAt"`
	ExpiresAt       time.Time  `json:"expiresAt"`
	ConsumedAt      *time.Time `json:"consumedAt,omitempty"`
}

type GrantStore interface {
	Save(ctx context.Context, grant *JoinGrant) error
	// Consume marks the grant used. It succeeds exactly once per grant.
	Consume(ctx context.Context, grantID string, now time.Time) (*JoinGrant, error)
	// PendingForUser returns the latest unconsumed, unexpired grant.
	PendingForUser(ctx context.Context, userID string, now time.Time) (*JoinGrant, error)
}

func (g *JoinGrant) Expired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}

func (g *JoinGrant) Consumed() bool {
	return g.ConsumedAt != nil
}
