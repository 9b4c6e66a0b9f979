// Package breakoutsdk is a Go client for the breakout room API. It backs the
// breakout panel of a conferencing client: listing rooms, changing the shared
// countdown, moving audio and handing out join links.
package breakoutsdk

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	PackageVersion = "0.1.0"

	participantCookie = "participant"
)

type Role string

const (
	RoleViewer    Role = "viewer"
	RoleModerator Role = "moderator"
)

// Session identifies the caller. Every call takes it explicitly so one
// Client can serve many users.
type Session struct {
	BaseURL   string
	MeetingID string
	UserID    string
	Role      Role
}

func (s Session) IsModerator() bool {
	return s.Role == RoleModerator
}

type Client struct {
	httpClient  *http.Client
	middlewares []Middleware
	timeout     time.Duration
	logger      zerolog.Logger
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		timeout:    30 * time.Second,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MeetingID is the parent meeting the session belongs to.
func (c *Client) MeetingID(s Session) string {
	return s.MeetingID
}

func (c *Client) get(ctx context.Context, s Session, path string, res any) error {
	return c.execute(ctx, s, http.MethodGet, path, nil, res)
}

func (c *Client) post(ctx context.Context, s Session, path string, body, res any) error {
	return c.execute(ctx, s, http.MethodPost, path, body, res)
}

func (c *Client) put(ctx context.Context, s Session, path string, body, res any) error {
	return c.execute(ctx, s, http.MethodPut, path, body, res)
}

func (c *Client) delete(ctx context.Context, s Session, path string, res any) error {
	return c.execute(ctx, s, http.MethodDelete, path, nil, res)
}

func (c *Client) execute(ctx context.Context, s Session, method, path string, body, res any) error {
	if s.BaseURL == "" {
		return ErrMissingBaseURL
	}
	target, err := url.JoinPath(s.BaseURL, "/api")
	if err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}

	path, query, _ := strings.Cut(path, "?")
	target = strings.TrimSuffix(target, "/") + path
	if query != "" {
		target += "?" + query
	}

	return c.do(ctx, s, method, target, body, res)
}

// do sends one request to an absolute URL and decodes a JSON response into
// res when it is non-nil.
func (c *Client) do(ctx context.Context, s Session, method, target string, body, res any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Breakout/Go "+PackageVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.UserID != "" {
		req.AddCookie(&http.Cookie{Name: participantCookie, Value: encodeParticipant(s)})
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return newAPIError(resp.StatusCode, raw)
	}

	if res == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, res); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, req.URL.Path, err)
	}
	return nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	next := c.httpClient.Do
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		mw, inner := c.middlewares[i], next
		next = func(r *http.Request) (*http.Response, error) {
			return mw(r, inner)
		}
	}
	return next(req)
}

func encodeParticipant(s Session) string {
	role := s.Role
	if role == "" {
		role = RoleViewer
	}
	raw, _ := json.Marshal(struct {
		UserID string `json:"userId"`
		Role   Role   `json:"role"`
	}{s.UserID, role})
	return base64.StdEncoding.EncodeToString(raw)
}
