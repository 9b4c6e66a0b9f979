package breakout

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/hilthontt/breakout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetBreakoutsTimeExamples(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.startMeeting(t, "m1", 0)
	f.createRooms(t, "m1", CreateParams{Count: 2, Duration: 10 * time.Minute})

	_, err := f.c.SetBreakoutsTime(ctx, moderator, "m1", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)

	timer, err := f.c.SetBreakoutsTime(ctx, moderator, "m1", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, timer.Remaining(f.clock.Now()))
	assert.Equal(t, domain.TimerRunning, timer.Phase)

	updates := f.events.ofType(domain.EventTimeUpdated)
	require.Len(t, updates, 1)
	data := updates[0].Data.(domain.TimeUpdatedData)
	assert.EqualValues(t, 900, data.TotalSeconds)
	assert.EqualValues(t, 900, data.RemainingSeconds)

	rooms, err := f.c.FindBreakouts(ctx, "m1")
	require.NoError(t, err)
	for _, room := range rooms {
		assert.EqualValues(t, 900, room.RemainingSeconds)
	}
}

func TestSetBreakoutsTimeRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.startMeeting(t, "m1", 0)
	f.startMeeting(t, "idle", 0)
	f.createRooms(t, "m1", CreateParams{Count: 1, Duration: 10 * time.Minute})

	f.clock.Advance(6 * time.Minute)

	_, err := f.c.SetBreakoutsTime(ctx, moderator, "m1", 5*time.Minute)
	assert.ErrorIs(t, err, domain.ErrWouldExpireImmediately)

	_, err = f.c.SetBreakoutsTime(ctx, moderator, "m1", -time.Minute)
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)

	_, err = f.c.SetBreakoutsTime(ctx, alice, "m1", 20*time.Minute)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.c.SetBreakoutsTime(ctx, moderator, "idle", 20*time.Minute)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	timer, err := f.c.Timer(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, timer.TotalDuration, "failed updates leave the timer alone")
	assert.Equal(t, 4*time.Minute, timer.Remaining(f.clock.Now()))
	assert.Empty(t, f.events.ofType(domain.EventTimeUpdated))

	// Exactly the elapsed time is allowed and leaves nothing on the clock.
	timer, err = f.c.SetBreakoutsTime(ctx, moderator, "m1", 6*time.Minute)
	require.NoError(t, err)
	assert.Zero(t, timer.Remaining(f.clock.Now()))
}

func TestSetBreakoutsTimeNeverNegative(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		meetingID := fmt.Sprintf("m%d", i)
		f.startMeeting(t, meetingID, 0)
		f.createRooms(t, meetingID, CreateParams{Count: 1, Duration: 2 * time.Hour})

		elapsed := time.Duration(rng.Int63n(int64(2 * time.Hour)))
		f.clock.Advance(elapsed)

		newTotal := time.Duration(rng.Int63n(int64(3*time.Hour))) - 10*time.Minute
		before, err := f.c.Timer(ctx, meetingID)
		require.NoError(t, err)

		timer, setErr := f.c.SetBreakoutsTime(ctx, moderator, meetingID, newTotal)
		now := f.clock.Now()

		switch {
		case newTotal <= 0:
			assert.ErrorIs(t, setErr, domain.ErrInvalidDuration)
		case newTotal < elapsed:
			assert.ErrorIs(t, setErr, domain.ErrWouldExpireImmediately)
		default:
			require.NoError(t, setErr)
			assert.Equal(t, newTotal-elapsed, timer.Remaining(now))
		}

		after, err := f.c.Timer(ctx, meetingID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, after.Remaining(now), time.Duration(0))
		if setErr != nil {
			assert.Equal(t, before.TotalDuration, after.TotalDuration)
		}

		_, err = f.c.EndAllBreakouts(ctx, moderator, meetingID)
		require.NoError(t, err)
	}
}

func TestSetBreakoutsTimeMeetingLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.startMeeting(t, "m1", time.Hour)
	f.clock.Advance(10 * time.Minute)
	f.createRooms(t, "m1", CreateParams{Count: 1, Duration: 30 * time.Minute})

	higher, err := f.c.IsNewTimeHigherThanMeetingRemaining(ctx, "m1", 51*time.Minute)
	require.NoError(t, err)
	assert.True(t, higher)

	higher, err = f.c.IsNewTimeHigherThanMeetingRemaining(ctx, "m1", 50*time.Minute)
	require.NoError(t, err)
	assert.False(t, higher)

	_, err = f.c.SetBreakoutsTime(ctx, moderator, "m1", 51*time.Minute)
	assert.ErrorIs(t, err, domain.ErrExceedsMeetingRemaining)

	timer, err := f.c.SetBreakoutsTime(ctx, moderator, "m1", 50*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, domain.TimerRunning, timer.Phase)

	_, err = f.c.IsNewTimeHigherThanMeetingRemaining(ctx, "missing", time.Minute)
	assert.ErrorIs(t, err, domain.ErrMeetingNotFound)
}

func TestSweepExpiresRooms(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.startMeeting(t, "m1", 0)
	f.startMeeting(t, "m2", 0)
	rooms := f.createRooms(t, "m1", CreateParams{Count: 2, Duration: 5 * time.Minute, Assignments: map[int][]string{2: {"alice"}}})
	f.createRooms(t, "m2", CreateParams{Count: 1, Duration: 20 * time.Minute})

	f.clock.Advance(4 * time.Minute)
	assert.Empty(t, f.c.Sweep(ctx))

	f.clock.Advance(time.Minute)

	// Past the end the room is gone for joiners even before the sweep.
	_, err := f.c.RequestJoinURL(ctx, alice, rooms[1].ID)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	assert.Equal(t, []string{"m1"}, f.c.Sweep(ctx))
	assert.Empty(t, f.c.Sweep(ctx))

	found, err := f.c.FindBreakouts(ctx, "m1")
	require.NoError(t, err)
	assert.Empty(t, found)

	ended := f.events.ofType(domain.EventBreakoutsEnded)
	require.Len(t, ended, 1)
	assert.Equal(t, ReasonExpired, ended[0].Data.(domain.BreakoutsEndedData).Reason)

	returned := f.events.ofType(domain.EventReturnToMainRoom)
	require.Len(t, returned, 1)
	assert.Equal(t, []string{"alice"}, returned[0].UserIDs)

	other, err := f.c.FindBreakouts(ctx, "m2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestRunSweepsOnTick(t *testing.T) {
	f := newFixture(t)
	f.startMeeting(t, "m1", 0)
	f.createRooms(t, "m1", CreateParams{Count: 1, Duration: time.Minute})
	f.clock.Advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.c.Run(ctx, 5*time.Millisecond) }()

	assert.Eventually(t, func() bool {
		return len(f.events.ofType(domain.EventBreakoutsEnded)) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestConcurrentSetTimeIsSerialized(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.startMeeting(t, "m1", 0)
	f.createRooms(t, "m1", CreateParams{Count: 3, Duration: 10 * time.Minute})

	var wg sync.WaitGroup
	for i := 1; i <= 40; i++ {
		wg.Add(1)
		go func(minutes int) {
			defer wg.Done()
			_, err := f.c.SetBreakoutsTime(ctx, moderator, "m1", time.Duration(minutes)*time.Minute)
			assert.NoError(t, err)
		}(10 + i)
	}
	wg.Wait()

	timer, err := f.c.Timer(ctx, "m1")
	require.NoError(t, err)

	updates := f.events.ofType(domain.EventTimeUpdated)
	require.Len(t, updates, 40)
	last := updates[len(updates)-1].Data.(domain.TimeUpdatedData)
	assert.EqualValues(t, timer.TotalDuration/time.Second, last.TotalSeconds, "the last broadcast matches the stored timer")
}
