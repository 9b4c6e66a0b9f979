package breakout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hilthontt/breakout/internal/domain"
	"github.com/hilthontt/breakout/internal/infrastructure/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	ReasonEndedByModerator = "ended_by_moderator"
	ReasonExpired          = "expired"
	ReasonMeetingEnded     = "meeting_ended"
)

// RoomView is a breakout room as shown in the moderator panel.
type RoomView struct {
	*domain.BreakoutRoom
	RemainingSeconds int64     `json:"remainingSeconds"`
	EndsAt           time.Time `json:"endsAt"`
}

type CreateParams struct {
	Count    int
	Duration time.Duration
	FreeJoin bool
	// Assignments maps a 1-based room sequence to the users placed there.
	Assignments map[int][]string
}

func (c *Coordinator) StartMeeting(ctx context.Context, actor domain.Participant, meetingID string, durationLimit time.Duration) (*domain.Meeting, error) {
	if err := requireModerator(actor); err != nil {
		return nil, err
	}

	meeting, err := domain.NewMeeting(meetingID, durationLimit, c.now())
	if err != nil {
		return nil, err
	}

	unlock := c.locks.lock(meetingID)
	defer unlock()

	if err := c.meetings.Create(ctx, meeting); err != nil {
		return nil, err
	}

	c.logger.Info(logging.Breakout, logging.RoomLifecycle, "meeting started", map[logging.ExtraKey]any{
		logging.MeetingID: meetingID,
		"duration_limit":  durationLimit.String(),
	})
	c.publish(ctx, domain.NewEvent(domain.EventMeetingStarted, meetingID, meeting.StartedAt, meeting))

	return meeting, nil
}

// EndMeeting ends the meeting's breakout rooms first, so no room outlives
// its parent.
func (c *Coordinator) EndMeeting(ctx context.Context, actor domain.Participant, meetingID string) error {
	if err := requireModerator(actor); err != nil {
		return err
	}

	unlock := c.locks.lock(meetingID)
	defer unlock()

	if _, err := c.activeMeeting(ctx, meetingID); err != nil {
		return err
	}

	if _, err := c.endAllLocked(ctx, meetingID, ReasonMeetingEnded); err != nil {
		return err
	}

	if err := c.meetings.Delete(ctx, meetingID); err != nil {
		return err
	}

	c.logger.Info(logging.Breakout, logging.RoomLifecycle, "meeting ended", map[logging.ExtraKey]any{
		logging.MeetingID: meetingID,
	})
	c.publish(ctx, domain.NewEvent(domain.EventMeetingEnded, meetingID, c.now(), nil))

	return nil
}

func (c *Coordinator) CreateBreakouts(ctx context.Context, actor domain.Participant, meetingID string, p CreateParams) (rooms []RoomView, err error) {
	ctx, span := c.startSpan(ctx, "create_breakouts",
		attribute.String("meeting.id", meetingID),
		attribute.Int("breakout.count", p.Count),
	)
	defer func() { endSpan(span, err) }()

	if err := requireModerator(actor); err != nil {
		return nil, err
	}
	if p.Count <= 0 || p.Count > c.opts.MaxRooms {
		return nil, fmt.Errorf("%w: room count must be between 1 and %d", domain.ErrInvalidParameter, c.opts.MaxRooms)
	}
	if p.Duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", domain.ErrInvalidParameter)
	}

	unlock := c.locks.lock(meetingID)
	defer unlock()

	meeting, err := c.activeMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	existing, err := c.rooms.ListByMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, domain.ErrBreakoutsAlreadyRunning
	}

	now := c.now()
	if exceedsMeeting(meeting, now, p.Duration) {
		return nil, domain.ErrExceedsMeetingRemaining
	}

	created, err := domain.NewBreakoutRooms(meetingID, p.Count, p.FreeJoin, p.Assignments, now)
	if err != nil {
		return nil, err
	}

	timer, err := domain.NewTimer(meetingID, p.Duration, now)
	if err != nil {
		return nil, err
	}

	if err := c.rooms.CreateMany(ctx, created); err != nil {
		return nil, err
	}
	c.timers.put(timer)
	c.metrics.RoomsOpened(len(created))

	ids := make([]string, 0, len(created))
	for _, room := range created {
		ids = append(ids, room.ID)
	}

	c.logger.Info(logging.Breakout, logging.RoomLifecycle, "breakout rooms created", map[logging.ExtraKey]any{
		logging.MeetingID:  meetingID,
		"room_count":       len(created),
		"duration_seconds": int64(p.Duration / time.Second),
	})
	c.publish(ctx, domain.NewEvent(domain.EventBreakoutsCreated, meetingID, now, domain.BreakoutsCreatedData{
		RoomIDs:         ids,
		DurationSeconds: int64(p.Duration / time.Second),
		FreeJoin:        p.FreeJoin,
	}))

	return viewRooms(created, timer, now), nil
}

// EndAllBreakouts is idempotent: ending a meeting without rooms succeeds and
// returns no rooms.
func (c *Coordinator) EndAllBreakouts(ctx context.Context, actor domain.Participant, meetingID string) (ended []*domain.BreakoutRoom, err error) {
	ctx, span := c.startSpan(ctx, "end_all_breakouts", attribute.String("meeting.id", meetingID))
	defer func() { endSpan(span, err) }()

	if err := requireModerator(actor); err != nil {
		return nil, err
	}

	unlock := c.locks.lock(meetingID)
	defer unlock()

	if _, err := c.activeMeeting(ctx, meetingID); err != nil {
		return nil, err
	}

	return c.endAllLocked(ctx, meetingID, ReasonEndedByModerator)
}

func (c *Coordinator) endAllLocked(ctx context.Context, meetingID, reason string) ([]*domain.BreakoutRoom, error) {
	removed, err := c.rooms.DeleteByMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	c.timers.delete(meetingID)

	if len(removed) == 0 {
		return removed, nil
	}

	roomIDs := make(map[string]bool, len(removed))
	refs := make([]domain.EndedRoomRef, 0, len(removed))
	var users []string
	for _, room := range removed {
		roomIDs[room.ID] = true
		participants := room.Participants()
		refs = append(refs, domain.EndedRoomRef{RoomID: room.ID, Users: participants})
		users = append(users, participants...)
	}

	cancelled := c.transfers.cancelWhere(func(req domain.AudioTransferRequest) bool {
		return roomIDs[req.ToMeetingID]
	})
	c.metrics.RoomsClosed(len(removed))

	now := c.now()
	c.logger.Info(logging.Breakout, logging.RoomLifecycle, "breakout rooms ended", map[logging.ExtraKey]any{
		logging.MeetingID:     meetingID,
		"reason":              reason,
		"room_count":          len(removed),
		"cancelled_transfers": cancelled,
	})
	c.publish(ctx, domain.NewEvent(domain.EventBreakoutsEnded, meetingID, now, domain.BreakoutsEndedData{
		Reason: reason,
		Rooms:  refs,
	}))
	if len(users) > 0 {
		c.publish(ctx, domain.NewEvent(domain.EventReturnToMainRoom, meetingID, now, map[string]string{"reason": reason}, users...))
	}

	return removed, nil
}

func (c *Coordinator) FindBreakouts(ctx context.Context, meetingID string) ([]RoomView, error) {
	unlock := c.locks.lock(meetingID)
	defer unlock()

	if _, err := c.activeMeeting(ctx, meetingID); err != nil {
		return nil, err
	}

	rooms, err := c.rooms.ListByMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	return viewRooms(rooms, c.timers.get(meetingID), c.now()), nil
}

// Meeting returns the active parent meeting.
func (c *Coordinator) Meeting(ctx context.Context, meetingID string) (*domain.Meeting, error) {
	return c.activeMeeting(ctx, meetingID)
}

// IsUserInBreakoutRoom returns the room the user has joined, if any.
func (c *Coordinator) IsUserInBreakoutRoom(ctx context.Context, userID string) (*domain.BreakoutRoom, bool, error) {
	room, err := c.rooms.FindByJoinedUser(ctx, userID)
	if errors.Is(err, domain.ErrRoomNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return room, true, nil
}

// GetBreakoutRoomURL returns the user's latest join grant that is neither
// redeemed nor expired.
func (c *Coordinator) GetBreakoutRoomURL(ctx context.Context, userID string) (*domain.JoinGrant, error) {
	if userID == "" {
		return nil, domain.ErrInvalidParameter
	}
	return c.grants.PendingForUser(ctx, userID, c.now())
}

// joinRoomLocked records userID as present in room, leaving any other room
// of the same meeting first. The parent meeting lock must be held. A room of
// another meeting is returned as stale; the caller leaves it with
// leaveStaleRoom once this lock is released.
func (c *Coordinator) joinRoomLocked(ctx context.Context, room *domain.BreakoutRoom, userID string) (stale string, err error) {
	if prev, err := c.rooms.FindByJoinedUser(ctx, userID); err == nil && prev.ID != room.ID {
		if prev.ParentMeetingID != room.ParentMeetingID {
			stale = prev.ID
		} else {
			prev.Leave(userID)
			if err := c.rooms.Update(ctx, prev); err != nil {
				return "", err
			}
		}
	}

	if room.HasJoined(userID) {
		return stale, nil
	}
	room.Join(userID)
	if err := c.rooms.Update(ctx, room); err != nil {
		return "", err
	}

	c.publish(ctx, domain.NewEvent(domain.EventUserJoined, room.ParentMeetingID, c.now(), domain.UserJoinedData{
		RoomID: room.ID,
		UserID: userID,
	}, userID))
	return stale, nil
}

// leaveStaleRoom takes userID out of a room of another meeting under that
// meeting's lock. A room that ended meanwhile is ignored.
func (c *Coordinator) leaveStaleRoom(ctx context.Context, roomID, userID string) {
	if roomID == "" {
		return
	}

	room, err := c.rooms.GetByID(ctx, roomID)
	if err != nil {
		return
	}

	unlock := c.locks.lock(room.ParentMeetingID)
	defer unlock()

	room, err = c.rooms.GetByID(ctx, roomID)
	if err == nil {
		err = c.leaveRoomLocked(ctx, room, userID)
	}
	if err != nil && !errors.Is(err, domain.ErrRoomNotFound) {
		c.logger.Warn(logging.Breakout, logging.RoomLifecycle, "failed to leave previous breakout room", map[logging.ExtraKey]any{
			logging.RoomID:       roomID,
			logging.UserID:       userID,
			logging.ErrorMessage: err.Error(),
		})
	}
}

func (c *Coordinator) leaveRoomLocked(ctx context.Context, room *domain.BreakoutRoom, userID string) error {
	if !room.Leave(userID) {
		return nil
	}
	return c.rooms.Update(ctx, room)
}

func viewRooms(rooms []*domain.BreakoutRoom, timer *domain.TimerState, now time.Time) []RoomView {
	views := make([]RoomView, 0, len(rooms))
	for _, room := range rooms {
		v := RoomView{BreakoutRoom: room}
		if timer != nil {
			v.RemainingSeconds = int64(timer.Remaining(now) / time.Second)
			v.EndsAt = timer.EndsAt()
		}
		views = append(views, v)
	}
	return views
}

// exceedsMeeting reports whether a countdown of total starting at start runs
// past the meeting's scheduled end.
func exceedsMeeting(meeting *domain.Meeting, start time.Time, total time.Duration) bool {
	if meeting.DurationLimit == 0 {
		return false
	}
	return start.Add(total).After(meeting.StartedAt.Add(meeting.DurationLimit))
}
