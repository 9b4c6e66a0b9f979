package transfers

// transferRequest moves a user's audio between a meeting and one of its
// breakout rooms
type transferRequest struct {
	UserID        string `json:"userId,omitempty" example:"alice"`   // Defaults to the caller; moderators may move others
	FromMeetingID string `json:"fromMeetingId" example:"standup-42"` // Meeting or room the user hears now
	ToMeetingID   string `json:"toMeetingId"`                        // Meeting or room to move to
	Wait          bool   `json:"wait,omitempty" example:"false"`     // Block until the transfer completes or fails
}

// cancelResponse reports whether an in-flight transfer was stopped
type cancelResponse struct {
	Cancelled bool `json:"cancelled"`
}
