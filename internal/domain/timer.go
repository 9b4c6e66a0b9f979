package domain

import "time"

type TimerPhase string

const (
	TimerRunning   TimerPhase = "running"
	TimerExtending TimerPhase = "extending"
	TimerExpired   TimerPhase = "expired"
)

// TimerState is the single countdown shared by all breakout rooms of a
// meeting. TotalDuration is measured from StartedAt.
type TimerState struct {
	MeetingID     string        `json:"meetingId"`
	TotalDuration time.Duration `json:"totalDuration"`
	StartedAt     time.Time     `json:"startedAt"`
	Phase         TimerPhase    `json:"phase"`
}

func NewTimer(meetingID string, total time.Duration, now time.Time) (*TimerState, error) {
	if total <= 0 {
		return nil, ErrInvalidDuration
	}

	return &TimerState{
		MeetingID:     meetingID,
		TotalDuration: total,
		StartedAt:     now,
		Phase:         TimerRunning,
	}, nil
}

func (t *TimerState) Elapsed(now time.Time) time.Duration {
	elapsed := now.Sub(t.StartedAt)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (t *TimerState) Remaining(now time.Time) time.Duration {
	if t.Phase == TimerExpired {
		return 0
	}

	left := t.TotalDuration - t.Elapsed(now)
	if left < 0 {
		return 0
	}
	return left
}

func (t *TimerState) EndsAt() time.Time {
	return t.StartedAt.Add(t.TotalDuration)
}

// ValidateExtension checks a new total duration without mutating the timer.
func (t *TimerState) ValidateExtension(newTotal time.Duration, now time.Time) error {
	if newTotal <= 0 {
		return ErrInvalidDuration
	}
	if t.Phase == TimerExpired {
		return ErrRoomNotFound
	}
	if newTotal < t.Elapsed(now) {
		return ErrWouldExpireImmediately
	}
	return nil
}

// BeginExtension validates a new total duration and moves the timer into the
// Extending phase. It must be followed by CommitExtension or AbortExtension.
func (t *TimerState) BeginExtension(newTotal time.Duration, now time.Time) error {
	if err := t.ValidateExtension(newTotal, now); err != nil {
		return err
	}
	t.Phase = TimerExtending
	return nil
}

func (t *TimerState) CommitExtension(newTotal time.Duration) {
	t.TotalDuration = newTotal
	t.Phase = TimerRunning
}

func (t *TimerState) AbortExtension() {
	if t.Phase == TimerExtending {
		t.Phase = TimerRunning
	}
}

// Expire marks the timer terminal. It reports false if it already was.
func (t *TimerState) Expire() bool {
	if t.Phase == TimerExpired {
		return false
	}
	t.Phase = TimerExpired
	return true
}

func (t *TimerState) Clone() *TimerState {
	cpy := *t
	return &cpy
}
