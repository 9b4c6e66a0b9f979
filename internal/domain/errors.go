package domain

import "errors"

var (
	ErrInvalidParameter        = errors.New("invalid parameter")
	ErrInvalidDuration         = errors.New("duration must be greater than zero")
	ErrWouldExpireImmediately  = errors.New("new duration is shorter than the time already elapsed")
	ErrExceedsMeetingRemaining = errors.New("new duration exceeds the parent meeting's remaining time")
	ErrTransferTimeout         = errors.New("audio transfer was not confirmed in time")
	ErrTransferCancelled       = errors.New("audio transfer was cancelled")
	ErrTransferInProgress      = errors.New("an audio transfer is already in progress for this user")
	ErrTransferNotFound        = errors.New("audio transfer not found")
	ErrNoAudioLeg              = errors.New("user has no audio leg in the source meeting")
	ErrRoomNotFound            = errors.New("breakout room not found")
	ErrMeetingNotFound         = errors.New("meeting not found")
	ErrMeetingAlreadyExists    = errors.New("meeting already exists")
	ErrBreakoutsAlreadyRunning = errors.New("breakout rooms are already running for this meeting")
	ErrGrantConsumed           = errors.New("join grant has already been used")
	ErrGrantExpired            = errors.New("join grant has expired")
	ErrInvalidGrant            = errors.New("join grant is invalid")
	ErrGrantNotFound           = errors.New("join grant not found")
	ErrNotAssigned             = errors.New("user is not assigned to this breakout room")
	ErrForbidden               = errors.New("operation requires the moderator role")
)
