package breakout

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hilthontt/breakout/internal/domain"
	"github.com/hilthontt/breakout/internal/infrastructure/logging"
	"go.opentelemetry.io/otel/attribute"
)

const joinPath = "/api/breakouts/join"

// RequestJoinURL issues a single-use grant for actor to enter a breakout
// room. Rooms that are not free-join only admit assigned users and
// moderators.
func (c *Coordinator) RequestJoinURL(ctx context.Context, actor domain.Participant, roomID string) (grant *domain.JoinGrant, err error) {
	ctx, span := c.startSpan(ctx, "request_join_url",
		attribute.String("room.id", roomID),
		attribute.String("user.id", actor.UserID),
	)
	defer func() { endSpan(span, err) }()

	if roomID == "" || actor.UserID == "" {
		return nil, domain.ErrInvalidParameter
	}

	room, err := c.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	unlock := c.locks.lock(room.ParentMeetingID)
	defer unlock()

	now := c.now()
	room, err = c.liveRoomLocked(ctx, roomID, now)
	if err != nil {
		return nil, err
	}
	if !room.CanJoin(actor) {
		return nil, domain.ErrNotAssigned
	}

	grant = &domain.JoinGrant{
		ID:              uuid.NewString(),
		BreakoutRoomID:  room.ID,
		ParentMeetingID: room.ParentMeetingID,
		UserID:          actor.UserID,
		IssuedAt:        now,
		// Token expiry has whole-second precision; the stored grant matches it.
		ExpiresAt: now.Add(c.opts.GrantTTL).Truncate(time.Second),
	}

	token, err := c.tokens.sign(grant)
	if err != nil {
		return nil, err
	}
	grant.URL = c.joinURL(token)

	if err := c.grants.Save(ctx, grant); err != nil {
		return nil, err
	}
	c.metrics.GrantIssued()

	c.logger.Info(logging.Breakout, logging.JoinGrant, "join grant issued", map[logging.ExtraKey]any{
		logging.MeetingID: room.ParentMeetingID,
		logging.RoomID:    room.ID,
		logging.UserID:    actor.UserID,
	})
	// The URL is a credential; the event only says one was issued.
	c.publish(ctx, domain.NewEvent(domain.EventJoinURLIssued, room.ParentMeetingID, now, map[string]any{
		"roomId":    room.ID,
		"expiresAt": grant.ExpiresAt,
	}, actor.UserID))

	return grant, nil
}

// RedeemJoinURL consumes the grant behind token and places its user in the
// room. A grant redeems exactly once.
func (c *Coordinator) RedeemJoinURL(ctx context.Context, token string) (grant *domain.JoinGrant, room *domain.BreakoutRoom, err error) {
	ctx, span := c.startSpan(ctx, "redeem_join_url")
	defer func() {
		c.metrics.GrantRedeemed(outcome(err))
		endSpan(span, err)
	}()

	now := c.now()
	claims, err := c.tokens.parse(token, now)
	if err != nil {
		return nil, nil, err
	}

	var stale string
	defer func() { c.leaveStaleRoom(ctx, stale, claims.Subject) }()

	unlock := c.locks.lock(claims.MeetingID)
	defer unlock()

	grant, err = c.grants.Consume(ctx, claims.ID, now)
	if err != nil {
		return nil, nil, err
	}
	if grant.UserID != claims.Subject || grant.BreakoutRoomID != claims.RoomID {
		return nil, nil, domain.ErrInvalidGrant
	}

	room, err = c.liveRoomLocked(ctx, claims.RoomID, now)
	if err != nil {
		return nil, nil, err
	}
	if stale, err = c.joinRoomLocked(ctx, room, grant.UserID); err != nil {
		return nil, nil, err
	}

	c.logger.Info(logging.Breakout, logging.JoinGrant, "join grant redeemed", map[logging.ExtraKey]any{
		logging.MeetingID: room.ParentMeetingID,
		logging.RoomID:    room.ID,
		logging.UserID:    grant.UserID,
	})

	return grant, room, nil
}

// liveRoomLocked loads a room whose countdown has not run out. Rooms past
// their end count as missing even before the sweeper removes them.
func (c *Coordinator) liveRoomLocked(ctx context.Context, roomID string, now time.Time) (*domain.BreakoutRoom, error) {
	room, err := c.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	timer := c.timers.get(room.ParentMeetingID)
	if timer == nil || timer.Phase == domain.TimerExpired || timer.Remaining(now) <= 0 {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

func (c *Coordinator) joinURL(token string) string {
	return strings.TrimRight(c.opts.JoinBaseURL, "/") + joinPath + "?token=" + url.QueryEscape(token)
}
