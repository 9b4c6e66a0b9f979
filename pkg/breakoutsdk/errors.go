package breakoutsdk

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

var (
	ErrMissingBaseURL     = errors.New("missing session base url")
	ErrMissingIDParameter = errors.New("missing required id parameter")

	ErrInvalidParameter        = errors.New("invalid parameter")
	ErrInvalidDuration         = errors.New("duration must be greater than zero")
	ErrWouldExpireImmediately  = errors.New("new duration is shorter than the time already elapsed")
	ErrExceedsMeetingRemaining = errors.New("new duration exceeds the meeting's remaining time")
	ErrMeetingNotFound         = errors.New("meeting not found")
	ErrMeetingAlreadyExists    = errors.New("meeting already exists")
	ErrBreakoutsAlreadyRunning = errors.New("breakout rooms are already running")
	ErrRoomNotFound            = errors.New("breakout room not found")
	ErrTransferTimeout         = errors.New("audio transfer timed out")
	ErrTransferCancelled       = errors.New("audio transfer cancelled")
	ErrTransferInProgress      = errors.New("audio transfer already in progress")
	ErrTransferNotFound        = errors.New("audio transfer not found")
	ErrNoAudioLeg              = errors.New("user has no audio in the source meeting")
	ErrGrantConsumed           = errors.New("join url already used")
	ErrGrantExpired            = errors.New("join url expired")
	ErrInvalidGrant            = errors.New("join url invalid")
	ErrNotAssigned             = errors.New("user is not assigned to the breakout room")
	ErrForbidden               = errors.New("forbidden")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrRateLimited             = errors.New("rate limited")
)

var codeErrors = map[string]error{
	"invalid_parameter":         ErrInvalidParameter,
	"invalid_duration":          ErrInvalidDuration,
	"would_expire_immediately":  ErrWouldExpireImmediately,
	"exceeds_meeting_remaining": ErrExceedsMeetingRemaining,
	"meeting_not_found":         ErrMeetingNotFound,
	"meeting_already_exists":    ErrMeetingAlreadyExists,
	"breakouts_already_running": ErrBreakoutsAlreadyRunning,
	"room_not_found":            ErrRoomNotFound,
	"transfer_timeout":          ErrTransferTimeout,
	"transfer_cancelled":        ErrTransferCancelled,
	"transfer_in_progress":      ErrTransferInProgress,
	"transfer_not_found":        ErrTransferNotFound,
	"no_audio_leg":              ErrNoAudioLeg,
	"grant_consumed":            ErrGrantConsumed,
	"grant_expired":             ErrGrantExpired,
	"invalid_grant":             ErrInvalidGrant,
	"not_assigned":              ErrNotAssigned,
	"forbidden":                 ErrForbidden,
	"unauthorized":              ErrUnauthorized,
	"rate_limited":              ErrRateLimited,
}

// APIError is a non-2xx answer from the server. It matches the package's
// sentinel errors with errors.Is.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	if gjson.ValidBytes(body) {
		apiErr.Code = gjson.GetBytes(body, "code").String()
		apiErr.Message = gjson.GetBytes(body, "message").String()
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("breakout api: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("breakout api: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *APIError) Is(target error) bool {
	sentinel, ok := codeErrors[e.Code]
	return ok && sentinel == target
}
