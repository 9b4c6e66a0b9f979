package breakout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hilthontt/breakout/internal/domain"
	"github.com/hilthontt/breakout/internal/infrastructure/audiobridge"
	"github.com/hilthontt/breakout/internal/infrastructure/grantstore"
	"github.com/hilthontt/breakout/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	moderator = domain.Participant{UserID: "mod", Role: domain.RoleModerator}
	alice     = domain.Participant{UserID: "alice", Role: domain.RoleViewer}
	bob       = domain.Participant{UserID: "bob", Role: domain.RoleViewer}
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recorder) Publish(_ context.Context, ev domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) ofType(t domain.EventType) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type fixture struct {
	c      *Coordinator
	clock  *fakeClock
	events *recorder
	bridge *audiobridge.Bridge
	grants *grantstore.InMemory
	rooms  domain.BreakoutRepository
}

func newFixture(t *testing.T, tweak ...func(*Options, *audiobridge.Options)) *fixture {
	t.Helper()
	return newFixtureWithRooms(t, repository.NewBreakoutRepository(), tweak...)
}

func newFixtureWithRooms(t *testing.T, rooms domain.BreakoutRepository, tweak ...func(*Options, *audiobridge.Options)) *fixture {
	t.Helper()

	clock := &fakeClock{now: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	opts := Options{
		MaxRooms:               8,
		TransferConfirmTimeout: time.Second,
		GrantTTL:               2 * time.Minute,
		JoinBaseURL:            "https://meet.example.com/",
		Secret:                 "test-secret",
		Now:                    clock.Now,
	}
	bridgeOpts := audiobridge.Options{}
	for _, fn := range tweak {
		fn(&opts, &bridgeOpts)
	}

	bridge := audiobridge.New(bridgeOpts)
	grants := grantstore.NewInMemory()
	events := &recorder{}

	c := New(
		repository.NewMeetingRepository(),
		rooms,
		grants,
		bridge,
		events,
		opts,
	)
	bridge.SetConfirmer(audiobridge.Confirmer(c.ConfirmTransfer))

	return &fixture{c: c, clock: clock, events: events, bridge: bridge, grants: grants, rooms: rooms}
}

func (f *fixture) startMeeting(t *testing.T, id string, limit time.Duration) {
	t.Helper()
	_, err := f.c.StartMeeting(context.Background(), moderator, id, limit)
	require.NoError(t, err)
}

func (f *fixture) createRooms(t *testing.T, meetingID string, p CreateParams) []RoomView {
	t.Helper()
	rooms, err := f.c.CreateBreakouts(context.Background(), moderator, meetingID, p)
	require.NoError(t, err)
	return rooms
}

func TestCreateBreakouts(t *testing.T) {
	f := newFixture(t)
	f.startMeeting(t, "m1", 0)

	rooms := f.createRooms(t, "m1", CreateParams{
		Count:       3,
		Duration:    10 * time.Minute,
		Assignments: map[int][]string{1: {"alice"}, 3: {"bob"}},
	})

	require.Len(t, rooms, 3)
	for i, room := range rooms {
		assert.Equal(t, i+1, room.Sequence)
		assert.Equal(t, "m1", room.ParentMeetingID)
		assert.EqualValues(t, 600, room.RemainingSeconds)
	}
	assert.Equal(t, "Room 1", rooms[0].Name)
	assert.Equal(t, []string{"alice"}, rooms[0].AssignedUsers)
	assert.Empty(t, rooms[1].AssignedUsers)

	created := f.events.ofType(domain.EventBreakoutsCreated)
	require.Len(t, created, 1)
	data := created[0].Data.(domain.BreakoutsCreatedData)
	assert.Len(t, data.RoomIDs, 3)
	assert.EqualValues(t, 600, data.DurationSeconds)

	found, err := f.c.FindBreakouts(context.Background(), "m1")
	require.NoError(t, err)
	assert.Len(t, found, 3)
}

func TestCreateBreakoutsRejects(t *testing.T) {
	f := newFixture(t)
	f.startMeeting(t, "m1", 30*time.Minute)
	f.startMeeting(t, "busy", 0)
	f.createRooms(t, "busy", CreateParams{Count: 1, Duration: time.Minute})

	tests := []struct {
		name      string
		actor     domain.Participant
		meetingID string
		params    CreateParams
		want      error
	}{
		{"zero rooms", moderator, "m1", CreateParams{Count: 0, Duration: time.Minute}, domain.ErrInvalidParameter},
		{"too many rooms", moderator, "m1", CreateParams{Count: 9, Duration: time.Minute}, domain.ErrInvalidParameter},
		{"zero duration", moderator, "m1", CreateParams{Count: 2}, domain.ErrInvalidParameter},
		{"assignment out of range", moderator, "m1", CreateParams{Count: 2, Duration: time.Minute, Assignments: map[int][]string{3: {"alice"}}}, domain.ErrInvalidParameter},
		{"viewer", alice, "m1", CreateParams{Count: 2, Duration: time.Minute}, domain.ErrForbidden},
		{"unknown meeting", moderator, "nope", CreateParams{Count: 2, Duration: time.Minute}, domain.ErrMeetingNotFound},
		{"already running", moderator, "busy", CreateParams{Count: 2, Duration: time.Minute}, domain.ErrBreakoutsAlreadyRunning},
		{"outlasts meeting", moderator, "m1", CreateParams{Count: 2, Duration: 31 * time.Minute}, domain.ErrExceedsMeetingRemaining},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.c.CreateBreakouts(context.Background(), tt.actor, tt.meetingID, tt.params)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	found, err := f.c.FindBreakouts(context.Background(), "m1")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestEndAllIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.startMeeting(t, "m1", 0)
	rooms := f.createRooms(t, "m1", CreateParams{
		Count:       2,
		Duration:    10 * time.Minute,
		FreeJoin:    true,
		Assignments: map[int][]string{1: {"alice"}},
	})

	grant, err := f.c.RequestJoinURL(ctx, bob, rooms[1].ID)
	require.NoError(t, err)
	_, _, err = f.c.RedeemJoinURL(ctx, tokenOf(t, grant))
	require.NoError(t, err)

	ended, err := f.c.EndAllBreakouts(ctx, moderator, "m1")
	require.NoError(t, err)
	assert.Len(t, ended, 2)

	first := snapshotState(t, f, "m1")

	again, err := f.c.EndAllBreakouts(ctx, moderator, "m1")
	require.NoError(t, err)
	assert.Empty(t, again)
	assert.Equal(t, first, snapshotState(t, f, "m1"))

	assert.Len(t, f.events.ofType(domain.EventBreakoutsEnded), 1)
	returned := f.events.ofType(domain.EventReturnToMainRoom)
	require.Len(t, returned, 1)
	assert.ElementsMatch(t, []string{"alice", "bob"}, returned[0].UserIDs)

	_, err = f.c.Timer(ctx, "m1")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

type registryState struct {
	rooms    int
	inRoom   bool
	hasTimer bool
}

func snapshotState(t *testing.T, f *fixture, meetingID string) registryState {
	t.Helper()
	ctx := context.Background()

	rooms, err := f.c.FindBreakouts(ctx, meetingID)
	require.NoError(t, err)
	_, inRoom, err := f.c.IsUserInBreakoutRoom(ctx, "bob")
	require.NoError(t, err)
	_, timerErr := f.c.Timer(ctx, meetingID)

	return registryState{rooms: len(rooms), inRoom: inRoom, hasTimer: timerErr == nil}
}

func TestEndAllRequiresModeratorAndMeeting(t *testing.T) {
	f := newFixture(t)
	f.startMeeting(t, "m1", 0)
	f.createRooms(t, "m1", CreateParams{Count: 1, Duration: time.Minute})

	_, err := f.c.EndAllBreakouts(context.Background(), alice, "m1")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.c.EndAllBreakouts(context.Background(), moderator, "missing")
	assert.ErrorIs(t, err, domain.ErrMeetingNotFound)

	rooms, err := f.c.FindBreakouts(context.Background(), "m1")
	require.NoError(t, err)
	assert.Len(t, rooms, 1, "failed calls must not tear anything down")
}

func TestEndMeetingEndsBreakouts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.startMeeting(t, "m1", 0)
	f.createRooms(t, "m1", CreateParams{Count: 2, Duration: time.Minute})

	require.NoError(t, f.c.EndMeeting(ctx, moderator, "m1"))

	_, err := f.c.FindBreakouts(ctx, "m1")
	assert.ErrorIs(t, err, domain.ErrMeetingNotFound)
	_, err = f.c.CreateBreakouts(ctx, moderator, "m1", CreateParams{Count: 1, Duration: time.Minute})
	assert.ErrorIs(t, err, domain.ErrMeetingNotFound)

	ended := f.events.ofType(domain.EventBreakoutsEnded)
	require.Len(t, ended, 1)
	assert.Equal(t, ReasonMeetingEnded, ended[0].Data.(domain.BreakoutsEndedData).Reason)
	assert.Len(t, f.events.ofType(domain.EventMeetingEnded), 1)

	_, err = f.c.StartMeeting(ctx, moderator, "m1", 0)
	assert.NoError(t, err, "an ended meeting id can start again")
}

func TestStartMeetingTwice(t *testing.T) {
	f := newFixture(t)
	f.startMeeting(t, "m1", 0)

	_, err := f.c.StartMeeting(context.Background(), moderator, "m1", 0)
	assert.ErrorIs(t, err, domain.ErrMeetingAlreadyExists)

	_, err = f.c.StartMeeting(context.Background(), alice, "m2", 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
