package breakoutsdk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const rejoinLogCode = "mainroom_audio_rejoin"

// AudioManager is the client's local audio stack.
type AudioManager interface {
	JoinMicrophone(ctx context.Context) error
	JoinListenOnly(ctx context.Context) error
	ForceExitAudio(ctx context.Context) error
	// ToggleVoice unmutes when unmute is true.
	ToggleVoice(ctx context.Context, unmute bool) error
	IsConnected() bool
	IsListenOnly() bool
	IsReconnecting() bool
}

// Panel is what the breakout panel renders for the session user.
type Panel struct {
	MeetingID        string
	AmIModerator     bool
	IsMicrophoneUser bool
	IsReconnecting   bool
	Rooms            []Room
	Mine             *MyBreakout
	// Transfer is nil until the user has moved audio once.
	Transfer *Transfer
}

func (c *Client) Panel(ctx context.Context, s Session, audio AudioManager) (*Panel, error) {
	rooms, err := c.FindBreakouts(ctx, s)
	if err != nil {
		return nil, err
	}
	mine, err := c.MyBreakout(ctx, s)
	if err != nil {
		return nil, err
	}
	transfer, err := c.TransferStatus(ctx, s)
	if err != nil {
		return nil, err
	}

	p := &Panel{
		MeetingID:    s.MeetingID,
		AmIModerator: s.IsModerator(),
		Rooms:        rooms,
		Mine:         mine,
		Transfer:     transfer,
	}
	if audio != nil {
		p.IsMicrophoneUser = audio.IsConnected() && !audio.IsListenOnly()
		p.IsReconnecting = audio.IsReconnecting()
	}
	return p, nil
}

type AudioSelection int

const (
	SelectionNone AudioSelection = iota
	SelectionMicrophone
	SelectionListenOnly
)

func (a AudioSelection) String() string {
	switch a {
	case SelectionMicrophone:
		return "microphone"
	case SelectionListenOnly:
		return "listen_only"
	default:
		return "none"
	}
}

// RetryPolicy bounds RejoinAudio. Zero values fall back to two attempts
// with a 500ms initial backoff.
type RetryPolicy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 2, InitialInterval: 500 * time.Millisecond, MaxInterval: 2 * time.Second}
}

type RejoinOutcome string

const (
	RejoinSkipped RejoinOutcome = "skipped"
	RejoinJoined  RejoinOutcome = "joined"
	RejoinFailed  RejoinOutcome = "failed"
)

type RejoinResult struct {
	Selection AudioSelection
	Outcome   RejoinOutcome
	Attempts  int
	// ForcedExit is set when the microphone joined but could not be unmuted
	// and audio was torn down.
	ForcedExit bool
	Err        error
}

var errUnmute = errors.New("unmute after rejoin failed")

// RejoinAudio reconnects the user's audio in the main room after leaving a
// breakout room, in the mode they had selected. Joining is retried under
// policy. A failed unmute is not retried: audio is force-exited instead.
func (c *Client) RejoinAudio(ctx context.Context, audio AudioManager, selection AudioSelection, policy RetryPolicy) RejoinResult {
	res := RejoinResult{Selection: selection, Outcome: RejoinSkipped}
	if selection == SelectionNone {
		return res
	}

	def := DefaultRetryPolicy()
	if policy.MaxAttempts == 0 {
		policy.MaxAttempts = def.MaxAttempts
	}
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = def.InitialInterval
	}
	if policy.MaxInterval <= 0 {
		policy.MaxInterval = def.MaxInterval
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.InitialInterval
	b.MaxInterval = policy.MaxInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		res.Attempts++
		return struct{}{}, c.rejoinOnce(ctx, audio, selection, &res)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(policy.MaxAttempts),
	)
	if err == nil {
		res.Outcome = RejoinJoined
		return res
	}

	res.Outcome = RejoinFailed
	res.Err = err
	c.logger.Warn().
		Str("logCode", rejoinLogCode).
		Str("logType", "user_action").
		Str("selection", selection.String()).
		Int("attempts", res.Attempts).
		Bool("forcedExit", res.ForcedExit).
		Err(err).
		Msg("leaving breakout room couldn't rejoin audio in the main room")
	return res
}

func (c *Client) rejoinOnce(ctx context.Context, audio AudioManager, selection AudioSelection, res *RejoinResult) error {
	switch selection {
	case SelectionListenOnly:
		if err := audio.JoinListenOnly(ctx); err != nil {
			return fmt.Errorf("join listen only: %w", err)
		}
		return nil

	case SelectionMicrophone:
		if err := audio.JoinMicrophone(ctx); err != nil {
			return fmt.Errorf("join microphone: %w", err)
		}
		if err := audio.ToggleVoice(ctx, true); err != nil {
			res.ForcedExit = true
			if exitErr := audio.ForceExitAudio(ctx); exitErr != nil {
				err = errors.Join(err, exitErr)
			}
			return backoff.Permanent(fmt.Errorf("%w: %w", errUnmute, err))
		}
		return nil
	}

	return backoff.Permanent(fmt.Errorf("unknown audio selection %d", selection))
}

// TransferWithRejoin moves the session user's audio like
// TransferUserToMeeting. When the transfer fails and the local audio stack
// has dropped, it rejoins the previous selection before returning the
// transfer error. The rejoin result is zero when no rejoin was attempted.
func (c *Client) TransferWithRejoin(ctx context.Context, s Session, audio AudioManager, selection AudioSelection, policy RetryPolicy, fromMeetingID, toMeetingID string) (*Transfer, RejoinResult, error) {
	transfer, err := c.TransferUserToMeeting(ctx, s, fromMeetingID, toMeetingID)
	if err == nil {
		return transfer, RejoinResult{}, nil
	}
	if errors.Is(err, ErrMissingIDParameter) || audio == nil || audio.IsConnected() {
		return nil, RejoinResult{}, err
	}

	return nil, c.RejoinAudio(ctx, audio, selection, policy), err
}
