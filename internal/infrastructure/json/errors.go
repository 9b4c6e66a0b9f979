package json

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/hilthontt/breakout/internal/domain"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	// Code is the machine readable failure kind, e.g. "grant_consumed".
	Code string `json:"code,omitempty"`
}

type domainError struct {
	err    error
	status int
	code   string
}

var domainErrors = []domainError{
	{domain.ErrInvalidParameter, http.StatusBadRequest, "invalid_parameter"},
	{domain.ErrInvalidDuration, http.StatusBadRequest, "invalid_duration"},
	{domain.ErrWouldExpireImmediately, http.StatusUnprocessableEntity, "would_expire_immediately"},
	{domain.ErrExceedsMeetingRemaining, http.StatusUnprocessableEntity, "exceeds_meeting_remaining"},
	{domain.ErrTransferTimeout, http.StatusGatewayTimeout, "transfer_timeout"},
	{domain.ErrTransferCancelled, http.StatusConflict, "transfer_cancelled"},
	{domain.ErrTransferInProgress, http.StatusConflict, "transfer_in_progress"},
	{domain.ErrTransferNotFound, http.StatusNotFound, "transfer_not_found"},
	{domain.ErrNoAudioLeg, http.StatusConflict, "no_audio_leg"},
	{domain.ErrRoomNotFound, http.StatusNotFound, "room_not_found"},
	{domain.ErrMeetingNotFound, http.StatusNotFound, "meeting_not_found"},
	{domain.ErrMeetingAlreadyExists, http.StatusConflict, "meeting_already_exists"},
	{domain.ErrBreakoutsAlreadyRunning, http.StatusConflict, "breakouts_already_running"},
	{domain.ErrGrantConsumed, http.StatusGone, "grant_consumed"},
	{domain.ErrGrantExpired, http.StatusGone, "grant_expired"},
	{domain.ErrInvalidGrant, http.StatusUnauthorized, "invalid_grant"},
	{domain.ErrGrantNotFound, http.StatusNotFound, "grant_not_found"},
	{domain.ErrNotAssigned, http.StatusForbidden, "not_assigned"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
}

// StatusFor maps an error to its HTTP status and code. Unknown errors are 500.
func StatusFor(err error) (int, string) {
	for _, de := range domainErrors {
		if errors.Is(err, de.err) {
			return de.status, de.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

func WriteError(w http.ResponseWriter, status int, code, msg string) {
	_ = Write(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: msg,
		Code:    code,
	})
}

// WriteDomainError writes err with the status of the domain failure it wraps.
// Internal errors do not leak their message.
func WriteDomainError(w http.ResponseWriter, err error) {
	status, code := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "An unexpected error occurred"
	}
	WriteError(w, status, code, msg)
}

func WriteValidationError(w http.ResponseWriter, err error) {
	WriteError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
}

func WriteBadRequestError(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusBadRequest, "bad_request", msg)
}

func WriteRateLimitError(w http.ResponseWriter, retryAfter int) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}
	WriteError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again later.")
}
