package breakoutsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Meeting struct {
	MeetingID            string    `json:"meetingId"`
	StartedAt            time.Time `json:"startedAt"`
	DurationLimitMinutes int       `json:"durationLimitMinutes"`
}

type Room struct {
	ID               string    `json:"id"`
	ParentMeetingID  string    `json:"parentMeetingId"`
	Sequence         int       `json:"sequence"`
	Name             string    `json:"name"`
	FreeJoin         bool      `json:"freeJoin"`
	CreatedAt        time.Time `json:"createdAt"`
	AssignedUsers    []string  `json:"assignedUsers"`
	JoinedUsers      []string  `json:"joinedUsers"`
	RemainingSeconds int64     `json:"remainingSeconds"`
	EndsAt           time.Time `json:"endsAt"`
}

func (r Room) Remaining() time.Duration {
	return time.Duration(r.RemainingSeconds) * time.Second
}

type Timer struct {
	MeetingID        string    `json:"meetingId"`
	Phase            string    `json:"phase"`
	TotalSeconds     int64     `json:"totalSeconds"`
	RemainingSeconds int64     `json:"remainingSeconds"`
	EndsAt           time.Time `json:"endsAt"`
}

type JoinURL struct {
	GrantID   string    `json:"grantId"`
	RoomID    string    `json:"roomId"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Redemption struct {
	RoomID    string `json:"roomId"`
	MeetingID string `json:"meetingId"`
	UserID    string `json:"userId"`
	Name      string `json:"name"`
}

type MyBreakout struct {
	InBreakoutRoom bool     `json:"inBreakoutRoom"`
	Room           *Room    `json:"room,omitempty"`
	PendingJoinURL *JoinURL `json:"pendingJoinUrl,omitempty"`
}

type CreateBreakoutsParams struct {
	Count    int
	Duration time.Duration
	FreeJoin bool
	// Assignments maps a 1-based room sequence to the users placed there.
	Assignments map[int][]string
}

func (c *Client) StartMeeting(ctx context.Context, s Session, durationLimit time.Duration) (*Meeting, error) {
	if s.MeetingID == "" {
		return nil, ErrMissingIDParameter
	}

	body := map[string]any{
		"meetingId":            s.MeetingID,
		"durationLimitMinutes": int(durationLimit / time.Minute),
	}
	res := &Meeting{}
	if err := c.post(ctx, s, "/meetings", body, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) EndMeeting(ctx context.Context, s Session) error {
	if s.MeetingID == "" {
		return ErrMissingIDParameter
	}
	return c.delete(ctx, s, "/meetings/"+url.PathEscape(s.MeetingID), nil)
}

func (c *Client) CreateBreakouts(ctx context.Context, s Session, p CreateBreakoutsParams) ([]Room, error) {
	if s.MeetingID == "" {
		return nil, ErrMissingIDParameter
	}

	body := map[string]any{
		"count":           p.Count,
		"durationSeconds": int(p.Duration / time.Second),
		"freeJoin":        p.FreeJoin,
	}
	if len(p.Assignments) > 0 {
		body["assignments"] = p.Assignments
	}

	var res struct {
		Rooms []Room `json:"rooms"`
	}
	if err := c.post(ctx, s, breakoutsPath(s), body, &res); err != nil {
		return nil, err
	}
	return res.Rooms, nil
}

// FindBreakouts lists the meeting's rooms ordered by sequence.
func (c *Client) FindBreakouts(ctx context.Context, s Session) ([]Room, error) {
	if s.MeetingID == "" {
		return nil, ErrMissingIDParameter
	}

	var res struct {
		Rooms []Room `json:"rooms"`
	}
	if err := c.get(ctx, s, breakoutsPath(s), &res); err != nil {
		return nil, err
	}
	return res.Rooms, nil
}

// EndAllBreakouts returns the number of rooms that were ended. Calling it
// with no rooms running is not an error.
func (c *Client) EndAllBreakouts(ctx context.Context, s Session) (int, error) {
	if s.MeetingID == "" {
		return 0, ErrMissingIDParameter
	}

	var res struct {
		EndedRooms int `json:"endedRooms"`
	}
	if err := c.delete(ctx, s, breakoutsPath(s), &res); err != nil {
		return 0, err
	}
	return res.EndedRooms, nil
}

// SetBreakoutsTime sets the total duration of the rooms, measured from when
// they started. Non-positive values fail without a request.
func (c *Client) SetBreakoutsTime(ctx context.Context, s Session, minutes int) (*Timer, error) {
	if minutes <= 0 {
		return nil, ErrInvalidDuration
	}
	if s.MeetingID == "" {
		return nil, ErrMissingIDParameter
	}

	res := &Timer{}
	if err := c.put(ctx, s, breakoutsPath(s)+"/time", map[string]int{"timeInMinutes": minutes}, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) IsNewTimeHigherThanMeetingRemaining(ctx context.Context, s Session, minutes int) (bool, error) {
	if s.MeetingID == "" {
		return false, ErrMissingIDParameter
	}

	var res struct {
		Exceeds bool `json:"exceeds"`
	}
	path := breakoutsPath(s) + "/time/check?minutes=" + strconv.Itoa(minutes)
	if err := c.get(ctx, s, path, &res); err != nil {
		return false, err
	}
	return res.Exceeds, nil
}

func (c *Client) RequestJoinURL(ctx context.Context, s Session, roomID string) (*JoinURL, error) {
	if roomID == "" {
		return nil, ErrMissingIDParameter
	}

	res := &JoinURL{}
	if err := c.post(ctx, s, fmt.Sprintf("/breakouts/%s/join-url", url.PathEscape(roomID)), nil, res); err != nil {
		return nil, err
	}
	return res, nil
}

// RedeemJoinURL follows a join link. A link works once; a second call fails
// with ErrGrantConsumed.
func (c *Client) RedeemJoinURL(ctx context.Context, s Session, joinURL string) (*Redemption, error) {
	if joinURL == "" {
		return nil, ErrMissingIDParameter
	}

	res := &Redemption{}
	if err := c.do(ctx, s, http.MethodGet, joinURL, nil, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) MyBreakout(ctx context.Context, s Session) (*MyBreakout, error) {
	res := &MyBreakout{}
	if err := c.get(ctx, s, "/users/me/breakout", res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) IsUserInBreakoutRoom(ctx context.Context, s Session) (bool, error) {
	mine, err := c.MyBreakout(ctx, s)
	if err != nil {
		return false, err
	}
	return mine.InBreakoutRoom, nil
}

// GetBreakoutRoomURL returns the caller's unredeemed join link, or nil when
// there is none.
func (c *Client) GetBreakoutRoomURL(ctx context.Context, s Session) (*JoinURL, error) {
	mine, err := c.MyBreakout(ctx, s)
	if err != nil {
		return nil, err
	}
	return mine.PendingJoinURL, nil
}

func breakoutsPath(s Session) string {
	return "/meetings/" + url.PathEscape(s.MeetingID) + "/breakouts"
}
