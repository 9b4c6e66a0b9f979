package breakoutsdk

import (
	"context"
	"errors"
	"time"
)

type TransferStatus string

const (
	TransferPending    TransferStatus = "pending"
	TransferInProgress TransferStatus = "in_progress"
	TransferCompleted  TransferStatus = "completed"
	TransferFailed     TransferStatus = "failed"
)

func (s TransferStatus) Terminal() bool {
	return s == TransferCompleted || s == TransferFailed
}

type Transfer struct {
	ID            string         `json:"id"`
	UserID        string         `json:"userId"`
	FromMeetingID string         `json:"fromMeetingId"`
	ToMeetingID   string         `json:"toMeetingId"`
	Status        TransferStatus `json:"status"`
	Reason        string         `json:"reason,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// TransferUserToMeeting moves the session user's audio and waits for the
// audio bridge to confirm. On failure the user keeps hearing fromMeetingID.
func (c *Client) TransferUserToMeeting(ctx context.Context, s Session, fromMeetingID, toMeetingID string) (*Transfer, error) {
	return c.transfer(ctx, s, s.UserID, fromMeetingID, toMeetingID, true)
}

// MoveUserToMeeting is the moderator variant for another user. It returns
// once the transfer is accepted.
func (c *Client) MoveUserToMeeting(ctx context.Context, s Session, userID, fromMeetingID, toMeetingID string) (*Transfer, error) {
	return c.transfer(ctx, s, userID, fromMeetingID, toMeetingID, false)
}

func (c *Client) transfer(ctx context.Context, s Session, userID, from, to string, wait bool) (*Transfer, error) {
	if userID == "" || from == "" || to == "" {
		return nil, ErrMissingIDParameter
	}

	body := map[string]any{
		"userId":        userID,
		"fromMeetingId": from,
		"toMeetingId":   to,
		"wait":          wait,
	}
	res := &Transfer{}
	if err := c.post(ctx, s, "/transfers", body, res); err != nil {
		return nil, err
	}
	return res, nil
}

// TransferStatus returns the caller's in-flight transfer or the last one
// that finished. It is nil when the user never transferred.
func (c *Client) TransferStatus(ctx context.Context, s Session) (*Transfer, error) {
	res := &Transfer{}
	if err := c.get(ctx, s, "/transfers/me", res); err != nil {
		if errors.Is(err, ErrTransferNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return res, nil
}

func (c *Client) CancelTransfer(ctx context.Context, s Session) (bool, error) {
	var res struct {
		Cancelled bool `json:"cancelled"`
	}
	if err := c.delete(ctx, s, "/transfers/me", &res); err != nil {
		return false, err
	}
	return res.Cancelled, nil
}
