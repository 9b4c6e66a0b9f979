package audiobridge

import (
	"context"
	"testing"
	"time"

	"github.com/hilthontt/breakout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectReplacesLeg(t *testing.T) {
	ctx := context.Background()
	b := New(Options{})

	first, err := b.Connect(ctx, "alice", "m1", domain.LegMicrophone)
	require.NoError(t, err)
	second, err := b.Connect(ctx, "alice", "m1", domain.LegListenOnly)
	require.NoError(t, err)

	legs := b.Legs(ctx, "alice")
	require.Len(t, legs, 1)
	assert.Equal(t, second.ID, legs[0].ID)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = b.Connect(ctx, "alice", "m1", "video")
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
	_, err = b.Connect(ctx, "", "m1", domain.LegMicrophone)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestPrepareCommitRelease(t *testing.T) {
	ctx := context.Background()
	b := New(Options{})

	_, err := b.CurrentLeg(ctx, "alice", "room-1")
	assert.ErrorIs(t, err, domain.ErrNoAudioLeg)

	leg, err := b.PrepareLeg(ctx, domain.LegRequest{TransferID: "t1", UserID: "alice", MeetingID: "room-1", Mode: domain.LegMicrophone})
	require.NoError(t, err)
	assert.Equal(t, domain.LegReserved, leg.State)

	_, err = b.CurrentLeg(ctx, "alice", "room-1")
	assert.ErrorIs(t, err, domain.ErrNoAudioLeg, "reserved legs carry no audio")

	require.NoError(t, b.CommitLeg(ctx, leg.ID))
	current, err := b.CurrentLeg(ctx, "alice", "room-1")
	require.NoError(t, err)
	assert.Equal(t, leg.ID, current.ID)

	require.NoError(t, b.ReleaseLeg(ctx, leg.ID))
	require.NoError(t, b.ReleaseLeg(ctx, leg.ID))
	assert.ErrorIs(t, b.CommitLeg(ctx, leg.ID), domain.ErrNoAudioLeg)

	_, err = b.PrepareLeg(ctx, domain.LegRequest{UserID: "alice", MeetingID: "room-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestAutoConfirm(t *testing.T) {
	ctx := context.Background()
	b := New(Options{AutoConfirm: time.Millisecond})

	confirmed := make(chan string, 1)
	b.SetConfirmer(func(_ context.Context, transferID string) error {
		confirmed <- transferID
		return nil
	})

	_, err := b.PrepareLeg(ctx, domain.LegRequest{TransferID: "t1", UserID: "alice", MeetingID: "room-1"})
	require.NoError(t, err)

	select {
	case id := <-confirmed:
		assert.Equal(t, "t1", id)
	case <-time.After(time.Second):
		t.Fatal("prepared leg was never confirmed")
	}
}

func TestDisconnect(t *testing.T) {
	ctx := context.Background()
	b := New(Options{})

	_, err := b.Connect(ctx, "alice", "m1", domain.LegMicrophone)
	require.NoError(t, err)
	_, err = b.Connect(ctx, "alice", "room-1", domain.LegMicrophone)
	require.NoError(t, err)
	_, err = b.Connect(ctx, "bob", "m1", domain.LegMicrophone)
	require.NoError(t, err)

	assert.Equal(t, 2, b.Disconnect(ctx, "alice"))
	assert.Empty(t, b.Legs(ctx, "alice"))
	assert.Len(t, b.Legs(ctx, "bob"), 1)
}
