package breakoutsdk_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hilthontt/breakout/pkg/breakoutsdk"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAudio struct {
	micErrs    []error
	listenErrs []error
	toggleErr  error

	calls        []string
	connected    bool
	listenOnly   bool
	reconnecting bool
}

func (f *fakeAudio) next(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

func (f *fakeAudio) JoinMicrophone(context.Context) error {
	f.calls = append(f.calls, "mic")
	if err := f.next(&f.micErrs); err != nil {
		return err
	}
	f.connected, f.listenOnly = true, false
	return nil
}

func (f *fakeAudio) JoinListenOnly(context.Context) error {
	f.calls = append(f.calls, "listen")
	if err := f.next(&f.listenErrs); err != nil {
		return err
	}
	f.connected, f.listenOnly = true, true
	return nil
}

func (f *fakeAudio) ForceExitAudio(context.Context) error {
	f.calls = append(f.calls, "exit")
	f.connected = false
	return nil
}

func (f *fakeAudio) ToggleVoice(_ context.Context, unmute bool) error {
	if unmute {
		f.calls = append(f.calls, "unmute")
	}
	return f.toggleErr
}

func (f *fakeAudio) IsConnected() bool    { return f.connected }
func (f *fakeAudio) IsListenOnly() bool   { return f.listenOnly }
func (f *fakeAudio) IsReconnecting() bool { return f.reconnecting }

var fastPolicy = breakoutsdk.RetryPolicy{MaxAttempts: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}

func newLoggedClient() (*breakoutsdk.Client, *bytes.Buffer) {
	var buf bytes.Buffer
	return breakoutsdk.NewClient(breakoutsdk.WithLogger(zerolog.New(&buf))), &buf
}

func TestRejoinAudio(t *testing.T) {
	ctx := context.Background()
	errDevice := errors.New("no input device")

	t.Run("microphone", func(t *testing.T) {
		client, logs := newLoggedClient()
		audio := &fakeAudio{}

		res := client.RejoinAudio(ctx, audio, breakoutsdk.SelectionMicrophone, fastPolicy)
		assert.Equal(t, breakoutsdk.RejoinJoined, res.Outcome)
		assert.Equal(t, 1, res.Attempts)
		assert.Equal(t, []string{"mic", "unmute"}, audio.calls)
		assert.Empty(t, logs.String())
	})

	t.Run("listen only", func(t *testing.T) {
		client, _ := newLoggedClient()
		audio := &fakeAudio{}

		res := client.RejoinAudio(ctx, audio, breakoutsdk.SelectionListenOnly, fastPolicy)
		assert.Equal(t, breakoutsdk.RejoinJoined, res.Outcome)
		assert.Equal(t, []string{"listen"}, audio.calls)
		assert.True(t, audio.IsListenOnly())
	})

	t.Run("nothing selected", func(t *testing.T) {
		client, _ := newLoggedClient()
		audio := &fakeAudio{}

		res := client.RejoinAudio(ctx, audio, breakoutsdk.SelectionNone, fastPolicy)
		assert.Equal(t, breakoutsdk.RejoinSkipped, res.Outcome)
		assert.Zero(t, res.Attempts)
		assert.Empty(t, audio.calls)
	})

	t.Run("second attempt succeeds", func(t *testing.T) {
		client, logs := newLoggedClient()
		audio := &fakeAudio{micErrs: []error{errDevice}}

		res := client.RejoinAudio(ctx, audio, breakoutsdk.SelectionMicrophone, fastPolicy)
		assert.Equal(t, breakoutsdk.RejoinJoined, res.Outcome)
		assert.Equal(t, 2, res.Attempts)
		assert.Empty(t, logs.String())
	})

	t.Run("attempts exhausted", func(t *testing.T) {
		client, logs := newLoggedClient()
		audio := &fakeAudio{listenErrs: []error{errDevice, errDevice, errDevice}}

		res := client.RejoinAudio(ctx, audio, breakoutsdk.SelectionListenOnly, fastPolicy)
		assert.Equal(t, breakoutsdk.RejoinFailed, res.Outcome)
		assert.Equal(t, 2, res.Attempts)
		assert.ErrorIs(t, res.Err, errDevice)
		assert.Contains(t, logs.String(), `"logCode":"mainroom_audio_rejoin"`)
		assert.Contains(t, logs.String(), `"level":"warn"`)
	})

	t.Run("unmute failure exits audio", func(t *testing.T) {
		client, logs := newLoggedClient()
		audio := &fakeAudio{toggleErr: errors.New("voice server rejected")}

		res := client.RejoinAudio(ctx, audio, breakoutsdk.SelectionMicrophone, fastPolicy)
		assert.Equal(t, breakoutsdk.RejoinFailed, res.Outcome)
		assert.Equal(t, 1, res.Attempts)
		assert.True(t, res.ForcedExit)
		assert.Equal(t, []string{"mic", "unmute", "exit"}, audio.calls)
		assert.False(t, audio.IsConnected())
		assert.Contains(t, logs.String(), "mainroom_audio_rejoin")
	})

	t.Run("zero policy uses defaults", func(t *testing.T) {
		client, _ := newLoggedClient()
		audio := &fakeAudio{micErrs: []error{errDevice}}

		res := client.RejoinAudio(ctx, audio, breakoutsdk.SelectionMicrophone, breakoutsdk.RetryPolicy{})
		assert.Equal(t, breakoutsdk.RejoinJoined, res.Outcome)
		assert.Equal(t, 2, res.Attempts)
	})
}

func TestPanel(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.client.StartMeeting(ctx, e.mod, 0)
	require.NoError(t, err)
	_, err = e.client.CreateBreakouts(ctx, e.mod, breakoutsdk.CreateBreakoutsParams{Count: 3, Duration: 5 * time.Minute})
	require.NoError(t, err)

	mic := &fakeAudio{connected: true}
	panel, err := e.client.Panel(ctx, e.mod, mic)
	require.NoError(t, err)
	assert.True(t, panel.AmIModerator)
	assert.True(t, panel.IsMicrophoneUser)
	assert.False(t, panel.IsReconnecting)
	assert.Len(t, panel.Rooms, 3)
	assert.False(t, panel.Mine.InBreakoutRoom)
	assert.Nil(t, panel.Transfer)

	listener := &fakeAudio{connected: true, listenOnly: true, reconnecting: true}
	panel, err = e.client.Panel(ctx, e.alice, listener)
	require.NoError(t, err)
	assert.False(t, panel.AmIModerator)
	assert.False(t, panel.IsMicrophoneUser)
	assert.True(t, panel.IsReconnecting)

	_, err = e.client.Panel(ctx, breakoutsdk.Session{BaseURL: e.mod.BaseURL, MeetingID: "nope", UserID: "mod"}, mic)
	assert.ErrorIs(t, err, breakoutsdk.ErrMeetingNotFound)
}

func TestTransferWithRejoin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.client.StartMeeting(ctx, e.mod, 0)
	require.NoError(t, err)
	created, err := e.client.CreateBreakouts(ctx, e.mod, breakoutsdk.CreateBreakoutsParams{Count: 1, Duration: 5 * time.Minute, FreeJoin: true})
	require.NoError(t, err)
	roomID := created[0].ID

	// No server side leg: the transfer fails and the dropped local audio is rejoined.
	dropped := &fakeAudio{}
	_, res, err := e.client.TransferWithRejoin(ctx, e.alice, dropped, breakoutsdk.SelectionListenOnly, fastPolicy, "m1", roomID)
	assert.ErrorIs(t, err, breakoutsdk.ErrNoAudioLeg)
	assert.Equal(t, breakoutsdk.RejoinJoined, res.Outcome)
	assert.Equal(t, []string{"listen"}, dropped.calls)

	connected := &fakeAudio{connected: true}
	_, res, err = e.client.TransferWithRejoin(ctx, e.alice, connected, breakoutsdk.SelectionMicrophone, fastPolicy, "m1", roomID)
	assert.ErrorIs(t, err, breakoutsdk.ErrNoAudioLeg)
	assert.Equal(t, breakoutsdk.RejoinResult{}, res)
	assert.Empty(t, connected.calls)

	_, err = e.bridge.Connect(ctx, "alice", "m1", "microphone")
	require.NoError(t, err)
	transfer, res, err := e.client.TransferWithRejoin(ctx, e.alice, connected, breakoutsdk.SelectionMicrophone, fastPolicy, "m1", roomID)
	require.NoError(t, err)
	assert.Equal(t, breakoutsdk.TransferCompleted, transfer.Status)
	assert.Zero(t, res.Attempts)
}
