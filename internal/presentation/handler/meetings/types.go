package meetings

import "time"

// startMeetingRequest registers a parent meeting with the coordinator
type startMeetingRequest struct {
	MeetingID            string `json:"meetingId" example:"standup-42"`    // Parent meeting identifier
	DurationLimitMinutes int    `json:"durationLimitMinutes" example:"60"` // Scheduled length; 0 means unlimited
}

// meetingResponse describes an active parent meeting
type meetingResponse struct {
	MeetingID            string    `json:"meetingId" example:"standup-42"`
	StartedAt            time.Time `json:"startedAt" example:"2024-01-01T12:00:00Z"`
	DurationLimitMinutes int       `json:"durationLimitMinutes" example:"60"`
}
