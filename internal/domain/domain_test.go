package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func TestTimerRemaining(t *testing.T) {
	timer, err := NewTimer("m1", 10*time.Minute, t0)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, timer.Remaining(t0))
	assert.Equal(t, 4*time.Minute, timer.Remaining(t0.Add(6*time.Minute)))
	assert.Zero(t, timer.Remaining(t0.Add(time.Hour)))
	assert.Zero(t, timer.Elapsed(t0.Add(-time.Second)), "clock skew never yields negative elapsed")
	assert.Equal(t, t0.Add(10*time.Minute), timer.EndsAt())

	_, err = NewTimer("m1", 0, t0)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestTimerExtension(t *testing.T) {
	tests := []struct {
		name     string
		newTotal time.Duration
		at       time.Duration
		wantErr  error
	}{
		{name: "zero", newTotal: 0, wantErr: ErrInvalidDuration},
		{name: "negative", newTotal: -time.Minute, wantErr: ErrInvalidDuration},
		{name: "shorter than elapsed", newTotal: 4 * time.Minute, at: 5 * time.Minute, wantErr: ErrWouldExpireImmediately},
		{name: "equal to elapsed", newTotal: 5 * time.Minute, at: 5 * time.Minute},
		{name: "shrink", newTotal: 7 * time.Minute, at: 5 * time.Minute},
		{name: "extend", newTotal: 30 * time.Minute, at: 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timer, err := NewTimer("m1", 10*time.Minute, t0)
			require.NoError(t, err)

			err = timer.BeginExtension(tt.newTotal, t0.Add(tt.at))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, TimerRunning, timer.Phase)
				assert.Equal(t, 10*time.Minute, timer.TotalDuration)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, TimerExtending, timer.Phase)
			timer.CommitExtension(tt.newTotal)
			assert.Equal(t, TimerRunning, timer.Phase)
			assert.Equal(t, tt.newTotal-tt.at, timer.Remaining(t0.Add(tt.at)))
		})
	}
}

func TestTimerAbortAndExpire(t *testing.T) {
	timer, err := NewTimer("m1", time.Minute, t0)
	require.NoError(t, err)

	require.NoError(t, timer.BeginExtension(2*time.Minute, t0))
	timer.AbortExtension()
	assert.Equal(t, TimerRunning, timer.Phase)
	assert.Equal(t, time.Minute, timer.TotalDuration)

	assert.True(t, timer.Expire())
	assert.False(t, timer.Expire())
	assert.Zero(t, timer.Remaining(t0))
	assert.ErrorIs(t, timer.ValidateExtension(time.Hour, t0), ErrRoomNotFound)

	timer.AbortExtension()
	assert.Equal(t, TimerExpired, timer.Phase)
}

func TestNewBreakoutRooms(t *testing.T) {
	rooms, err := NewBreakoutRooms("m1", 3, false, map[int][]string{1: {"alice"}, 3: {"bob", "carol"}}, t0)
	require.NoError(t, err)
	require.Len(t, rooms, 3)

	assert.Equal(t, "Room 2", rooms[1].Name)
	assert.Equal(t, []string{}, rooms[1].AssignedUsers)
	assert.True(t, rooms[2].IsAssigned("carol"))
	assert.NotEqual(t, rooms[0].ID, rooms[1].ID)

	_, err = NewBreakoutRooms("m1", 2, false, map[int][]string{3: {"alice"}}, t0)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = NewBreakoutRooms("m1", 2, false, map[int][]string{1: {"alice"}, 2: {"alice"}}, t0)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = NewBreakoutRooms("", 2, false, nil, t0)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = NewBreakoutRooms("m1", 0, false, nil, t0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestBreakoutRoomMembership(t *testing.T) {
	rooms, err := NewBreakoutRooms("m1", 1, false, map[int][]string{1: {"alice"}}, t0)
	require.NoError(t, err)
	room := rooms[0]

	assert.True(t, room.CanJoin(Participant{UserID: "alice"}))
	assert.False(t, room.CanJoin(Participant{UserID: "bob"}))
	assert.True(t, room.CanJoin(Participant{UserID: "bob", Role: RoleModerator}))

	room.Join("bob")
	room.Join("bob")
	assert.Equal(t, []string{"bob"}, room.JoinedUsers)
	assert.ElementsMatch(t, []string{"alice", "bob"}, room.Participants())

	cpy := room.Clone()
	assert.True(t, room.Leave("bob"))
	assert.False(t, room.Leave("bob"))
	assert.Equal(t, []string{"bob"}, cpy.JoinedUsers, "clones do not share slices")

	room.FreeJoin = true
	assert.True(t, room.CanJoin(Participant{UserID: "dave"}))
}

func TestMeetingRemaining(t *testing.T) {
	m, err := NewMeeting("m1", time.Hour, t0)
	require.NoError(t, err)

	left, limited := m.Remaining(t0.Add(20 * time.Minute))
	assert.True(t, limited)
	assert.Equal(t, 40*time.Minute, left)

	left, _ = m.Remaining(t0.Add(2 * time.Hour))
	assert.Zero(t, left)

	open, err := NewMeeting("m2", 0, t0)
	require.NoError(t, err)
	_, limited = open.Remaining(t0)
	assert.False(t, limited)

	_, err = NewMeeting("m3", -time.Minute, t0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestJoinGrantState(t *testing.T) {
	g := &JoinGrant{ID: "g1", IssuedAt: t0, ExpiresAt: t0.Add(time.Minute)}

	assert.False(t, g.Expired(t0.Add(59*time.Second)))
	assert.True(t, g.Expired(t0.Add(time.Minute)))
	assert.False(t, g.Consumed())

	at := t0
	g.ConsumedAt = &at
	assert.True(t, g.Consumed())
}

func TestNewAuditLog(t *testing.T) {
	ev := NewEvent(EventBreakoutsEnded, "m1", t0, BreakoutsEndedData{
		Reason: "expired",
		Rooms:  []EndedRoomRef{{RoomID: "r1"}, {RoomID: "r2"}},
	}, "alice")

	log := NewAuditLog(ev)
	assert.Equal(t, "m1", log.MeetingID)
	assert.Equal(t, EventBreakoutsEnded, log.EventType)
	assert.Equal(t, []string{"alice"}, log.UserIDs)
	assert.Equal(t, ev.ID, log.Metadata["event_id"])
	assert.Equal(t, "expired", log.Metadata["reason"])
	assert.Equal(t, 2, log.Metadata["room_count"])

	transfer := NewAuditLog(NewEvent(EventTransferUpdated, "m1", t0, AudioTransferRequest{
		ID: "t1", Status: TransferFailed, Reason: "timeout",
	}))
	assert.Equal(t, "failed", transfer.Metadata["status"])
	assert.Equal(t, "timeout", transfer.Metadata["reason"])

	replayed := NewAuditLog(NewEvent(EventJoinURLIssued, "m1", t0, map[string]any{"roomId": "r1"}))
	assert.Equal(t, "r1", replayed.Metadata["roomId"])
}

func TestTransferStatusTerminal(t *testing.T) {
	assert.False(t, TransferPending.Terminal())
	assert.False(t, TransferInProgress.Terminal())
	assert.True(t, TransferCompleted.Terminal())
	assert.True(t, TransferFailed.Terminal())
}
