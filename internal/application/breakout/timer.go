package breakout

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/hilthontt/breakout/internal/domain"
	"github.com/hilthontt/breakout/internal/infrastructure/logging"
	"go.opentelemetry.io/otel/attribute"
)

// timerSet holds one countdown per meeting. Callers mutate a timer only
// while holding that meeting's lock; the set's own mutex guards the map.
type timerSet struct {
	mu        sync.Mutex
	byMeeting map[string]*domain.TimerState
}

func newTimerSet() *timerSet {
	return &timerSet{byMeeting: make(map[string]*domain.TimerState)}
}

func (s *timerSet) get(meetingID string) *domain.TimerState {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byMeeting[meetingID]
	if !ok {
		return nil
	}
	return t.Clone()
}

func (s *timerSet) put(t *domain.TimerState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byMeeting[t.MeetingID] = t.Clone()
}

func (s *timerSet) delete(meetingID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byMeeting, meetingID)
}

func (s *timerSet) meetingIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.byMeeting))
	for id := range s.byMeeting {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Timer returns a copy of the meeting's countdown.
func (c *Coordinator) Timer(ctx context.Context, meetingID string) (*domain.TimerState, error) {
	t := c.timers.get(meetingID)
	if t == nil {
		return nil, domain.ErrRoomNotFound
	}
	return t, nil
}

// SetBreakoutsTime replaces the total duration of the meeting's breakout
// countdown. newTotal is measured from when the rooms were created, so the
// remaining time becomes newTotal minus the time already elapsed.
func (c *Coordinator) SetBreakoutsTime(ctx context.Context, actor domain.Participant, meetingID string, newTotal time.Duration) (timer *domain.TimerState, err error) {
	ctx, span := c.startSpan(ctx, "set_breakouts_time",
		attribute.String("meeting.id", meetingID),
		attribute.Int64("timer.total_seconds", int64(newTotal/time.Second)),
	)
	defer func() {
		c.metrics.TimerUpdate(outcome(err))
		endSpan(span, err)
	}()

	if err := requireModerator(actor); err != nil {
		return nil, err
	}
	if newTotal <= 0 {
		return nil, domain.ErrInvalidDuration
	}

	unlock := c.locks.lock(meetingID)
	defer unlock()

	meeting, err := c.activeMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	timer = c.timers.get(meetingID)
	if timer == nil {
		return nil, domain.ErrRoomNotFound
	}

	now := c.now()
	if err := timer.BeginExtension(newTotal, now); err != nil {
		return nil, err
	}
	if exceedsMeeting(meeting, timer.StartedAt, newTotal) {
		timer.AbortExtension()
		return nil, domain.ErrExceedsMeetingRemaining
	}
	timer.CommitExtension(newTotal)
	c.timers.put(timer)

	remaining := timer.Remaining(now)
	c.logger.Info(logging.Breakout, logging.Timer, "breakout time updated", map[logging.ExtraKey]any{
		logging.MeetingID:   meetingID,
		"total_seconds":     int64(newTotal / time.Second),
		"remaining_seconds": int64(remaining / time.Second),
	})
	c.publish(ctx, domain.NewEvent(domain.EventTimeUpdated, meetingID, now, domain.TimeUpdatedData{
		TotalSeconds:     int64(newTotal / time.Second),
		RemainingSeconds: int64(remaining / time.Second),
		EndsAt:           timer.EndsAt(),
	}))

	return timer, nil
}

// IsNewTimeHigherThanMeetingRemaining reports whether setting the breakout
// countdown to the given total would outlast the parent meeting. Meetings
// without a duration limit never report true.
func (c *Coordinator) IsNewTimeHigherThanMeetingRemaining(ctx context.Context, meetingID string, newTotal time.Duration) (bool, error) {
	unlock := c.locks.lock(meetingID)
	defer unlock()

	meeting, err := c.activeMeeting(ctx, meetingID)
	if err != nil {
		return false, err
	}

	start := c.now()
	if timer := c.timers.get(meetingID); timer != nil {
		start = timer.StartedAt
	}
	return exceedsMeeting(meeting, start, newTotal), nil
}

// Sweep expires every countdown that has run out and ends its rooms. It
// returns the meetings whose rooms were ended.
func (c *Coordinator) Sweep(ctx context.Context) []string {
	var expired []string

	for _, meetingID := range c.timers.meetingIDs() {
		if c.expireIfDue(ctx, meetingID) {
			expired = append(expired, meetingID)
		}
	}

	return expired
}

func (c *Coordinator) expireIfDue(ctx context.Context, meetingID string) bool {
	unlock := c.locks.lock(meetingID)
	defer unlock()

	timer := c.timers.get(meetingID)
	if timer == nil || timer.Phase != domain.TimerRunning || timer.Remaining(c.now()) > 0 {
		return false
	}

	timer.Expire()
	c.timers.put(timer)

	if _, err := c.endAllLocked(ctx, meetingID, ReasonExpired); err != nil {
		c.logger.Error(logging.Breakout, logging.Timer, "failed to end expired breakout rooms", map[logging.ExtraKey]any{
			logging.MeetingID:    meetingID,
			logging.ErrorMessage: err.Error(),
		})
		return false
	}
	return true
}

// Run sweeps on every tick until ctx is done.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sweep(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

// outcome labels a result for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidDuration):
		return "invalid_duration"
	case errors.Is(err, domain.ErrWouldExpireImmediately):
		return "would_expire_immediately"
	case errors.Is(err, domain.ErrExceedsMeetingRemaining):
		return "exceeds_meeting_remaining"
	case errors.Is(err, domain.ErrGrantConsumed):
		return "grant_consumed"
	case errors.Is(err, domain.ErrGrantExpired):
		return "grant_expired"
	case errors.Is(err, domain.ErrInvalidGrant):
		return "invalid_grant"
	case errors.Is(err, domain.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
