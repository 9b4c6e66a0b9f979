package breakoutsdk_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hilthontt/breakout/internal/application/breakout"
	"github.com/hilthontt/breakout/internal/infrastructure/audiobridge"
	"github.com/hilthontt/breakout/internal/infrastructure/configs"
	"github.com/hilthontt/breakout/internal/infrastructure/grantstore"
	"github.com/hilthontt/breakout/internal/infrastructure/logging"
	"github.com/hilthontt/breakout/internal/infrastructure/metrics"
	"github.com/hilthontt/breakout/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/breakout/internal/infrastructure/repository"
	"github.com/hilthontt/breakout/internal/infrastructure/ws"
	"github.com/hilthontt/breakout/internal/presentation/api"
	"github.com/hilthontt/breakout/internal/presentation/handler/audio"
	"github.com/hilthontt/breakout/internal/presentation/handler/events"
	"github.com/hilthontt/breakout/internal/presentation/handler/health"
	"github.com/hilthontt/breakout/internal/presentation/handler/meetings"
	"github.com/hilthontt/breakout/internal/presentation/handler/rooms"
	"github.com/hilthontt/breakout/internal/presentation/handler/transfers"
	"github.com/hilthontt/breakout/pkg/breakoutsdk"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	client *breakoutsdk.Client
	bridge *audiobridge.Bridge
	mod    breakoutsdk.Session
	alice  breakoutsdk.Session
	bob    breakoutsdk.Session
}

func newEnv(t *testing.T, opts ...breakoutsdk.Option) *env {
	t.Helper()

	logger := logging.NewNopLogger()
	m := metrics.New(prometheus.NewRegistry())
	bridge := audiobridge.New(audiobridge.Options{AutoConfirm: time.Millisecond})
	core := ws.NewCore(logger, m)

	var baseURL string
	c := breakout.New(
		repository.NewMeetingRepository(),
		repository.NewBreakoutRepository(),
		grantstore.NewInMemory(),
		bridge,
		core,
		breakout.Options{
			TransferConfirmTimeout: 2 * time.Second,
			JoinBaseURL:            "http://placeholder",
			Secret:                 "sdk-secret",
			Logger:                 logger,
			Metrics:                m,
		},
	)
	bridge.SetConfirmer(c.ConfirmTransfer)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = core.Run(ctx) }()

	cfg := configs.Config{HTTP: configs.HTTPConfig{AllowedOrigins: []string{"*"}}}
	app := api.NewApplication(cfg, api.Handlers{
		Meetings:  meetings.NewHandler(c),
		Rooms:     rooms.NewHandler(c, logger),
		Transfers: transfers.NewHandler(c, "bridge-secret"),
		Audio:     audio.NewHandler(bridge, c, logger),
		Events:    events.NewHandler(c, core, ws.NewUpgrader(cfg.HTTP.AllowedOrigins), logger),
		Health:    health.NewHandler(),
	}, logger, ratelimiter.New(ratelimiter.Options{MaxRatePerSecond: 1000, MaxBurst: 1000}), m)

	srv := httptest.NewServer(app.Mount())
	t.Cleanup(srv.Close)
	baseURL = srv.URL

	session := func(user string, role breakoutsdk.Role) breakoutsdk.Session {
		return breakoutsdk.Session{BaseURL: baseURL, MeetingID: "m1", UserID: user, Role: role}
	}

	return &env{
		client: breakoutsdk.NewClient(opts...),
		bridge: bridge,
		mod:    session("mod", breakoutsdk.RoleModerator),
		alice:  session("alice", breakoutsdk.RoleViewer),
		bob:    session("bob", breakoutsdk.RoleViewer),
	}
}

func TestModeratorFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.client.StartMeeting(ctx, e.mod, time.Hour)
	require.NoError(t, err)

	created, err := e.client.CreateBreakouts(ctx, e.mod, breakoutsdk.CreateBreakoutsParams{
		Count:       2,
		Duration:    15 * time.Minute,
		Assignments: map[int][]string{2: {"alice"}},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	found, err := e.client.FindBreakouts(ctx, e.alice)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Room 2", found[1].Name)
	assert.Equal(t, []string{"alice"}, found[1].AssignedUsers)
	assert.InDelta(t, 900, found[0].RemainingSeconds, 2)

	_, err = e.client.SetBreakoutsTime(ctx, e.mod, 0)
	assert.ErrorIs(t, err, breakoutsdk.ErrInvalidDuration)

	_, err = e.client.SetBreakoutsTime(ctx, e.alice, 10)
	assert.ErrorIs(t, err, breakoutsdk.ErrForbidden)

	exceeds, err := e.client.IsNewTimeHigherThanMeetingRemaining(ctx, e.mod, 120)
	require.NoError(t, err)
	assert.True(t, exceeds)

	_, err = e.client.SetBreakoutsTime(ctx, e.mod, 120)
	assert.ErrorIs(t, err, breakoutsdk.ErrExceedsMeetingRemaining)

	timer, err := e.client.SetBreakoutsTime(ctx, e.mod, 25)
	require.NoError(t, err)
	assert.EqualValues(t, 25*60, timer.TotalSeconds)

	ended, err := e.client.EndAllBreakouts(ctx, e.mod)
	require.NoError(t, err)
	assert.Equal(t, 2, ended)

	ended, err = e.client.EndAllBreakouts(ctx, e.mod)
	require.NoError(t, err)
	assert.Zero(t, ended)

	assert.Equal(t, "m1", e.client.MeetingID(e.mod))
	require.NoError(t, e.client.EndMeeting(ctx, e.mod))

	_, err = e.client.FindBreakouts(ctx, e.mod)
	var apiErr *breakoutsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.ErrorIs(t, err, breakoutsdk.ErrMeetingNotFound)
}

func TestJoinURLFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.client.StartMeeting(ctx, e.mod, 0)
	require.NoError(t, err)
	created, err := e.client.CreateBreakouts(ctx, e.mod, breakoutsdk.CreateBreakoutsParams{
		Count:       1,
		Duration:    10 * time.Minute,
		Assignments: map[int][]string{1: {"alice"}},
	})
	require.NoError(t, err)
	roomID := created[0].ID

	_, err = e.client.RequestJoinURL(ctx, e.bob, roomID)
	assert.ErrorIs(t, err, breakoutsdk.ErrNotAssigned)

	_, err = e.client.RequestJoinURL(ctx, e.alice, "")
	assert.ErrorIs(t, err, breakoutsdk.ErrMissingIDParameter)

	link, err := e.client.RequestJoinURL(ctx, e.alice, roomID)
	require.NoError(t, err)
	assert.Equal(t, roomID, link.RoomID)

	pending, err := e.client.GetBreakoutRoomURL(ctx, e.alice)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, link.GrantID, pending.GrantID)

	in, err := e.client.IsUserInBreakoutRoom(ctx, e.alice)
	require.NoError(t, err)
	assert.False(t, in)

	// The server was built before its address was known; point the link at it.
	redeemURL := e.alice.BaseURL + link.URL[len("http://placeholder"):]

	redeemed, err := e.client.RedeemJoinURL(ctx, e.alice, redeemURL)
	require.NoError(t, err)
	assert.Equal(t, "alice", redeemed.UserID)

	_, err = e.client.RedeemJoinURL(ctx, e.alice, redeemURL)
	assert.ErrorIs(t, err, breakoutsdk.ErrGrantConsumed)

	in, err = e.client.IsUserInBreakoutRoom(ctx, e.alice)
	require.NoError(t, err)
	assert.True(t, in)

	pending, err = e.client.GetBreakoutRoomURL(ctx, e.alice)
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestTransferUserToMeeting(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.client.StartMeeting(ctx, e.mod, 0)
	require.NoError(t, err)
	created, err := e.client.CreateBreakouts(ctx, e.mod, breakoutsdk.CreateBreakoutsParams{Count: 1, Duration: 10 * time.Minute, FreeJoin: true})
	require.NoError(t, err)
	roomID := created[0].ID

	status, err := e.client.TransferStatus(ctx, e.alice)
	require.NoError(t, err)
	assert.Nil(t, status)

	_, err = e.client.TransferUserToMeeting(ctx, e.alice, "m1", roomID)
	assert.ErrorIs(t, err, breakoutsdk.ErrNoAudioLeg)

	_, err = e.bridge.Connect(ctx, "alice", "m1", "microphone")
	require.NoError(t, err)

	transfer, err := e.client.TransferUserToMeeting(ctx, e.alice, "m1", roomID)
	require.NoError(t, err)
	assert.Equal(t, breakoutsdk.TransferCompleted, transfer.Status)
	assert.True(t, transfer.Status.Terminal())

	status, err = e.client.TransferStatus(ctx, e.alice)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, transfer.ID, status.ID)

	_, err = e.client.MoveUserToMeeting(ctx, e.bob, "alice", roomID, "m1")
	assert.ErrorIs(t, err, breakoutsdk.ErrForbidden)

	moved, err := e.client.MoveUserToMeeting(ctx, e.mod, "alice", roomID, "m1")
	require.NoError(t, err)
	assert.Equal(t, "alice", moved.UserID)
}

func TestAPIErrorWithoutJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := breakoutsdk.NewClient()
	_, err := client.FindBreakouts(context.Background(), breakoutsdk.Session{BaseURL: srv.URL, MeetingID: "m1"})

	var apiErr *breakoutsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Empty(t, apiErr.Code)
	assert.False(t, errors.Is(err, breakoutsdk.ErrRoomNotFound))
}

func TestMissingBaseURL(t *testing.T) {
	_, err := breakoutsdk.NewClient().FindBreakouts(context.Background(), breakoutsdk.Session{MeetingID: "m1"})
	assert.ErrorIs(t, err, breakoutsdk.ErrMissingBaseURL)
}

func TestDebugLogRedactsParticipantCookie(t *testing.T) {
	var buf bytes.Buffer
	var seen []string

	e := newEnv(t,
		breakoutsdk.WithDebugLog(log.New(&buf, "", 0)),
		breakoutsdk.WithMiddleware(func(r *http.Request, next breakoutsdk.MiddlewareNext) (*http.Response, error) {
			seen = append(seen, r.Method+" "+r.URL.Path)
			return next(r)
		}),
	)

	_, err := e.client.StartMeeting(context.Background(), e.mod, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"POST /api/meetings"}, seen)
	assert.Contains(t, buf.String(), "Cookie: [REDACTED]")
	assert.NotContains(t, buf.String(), "participant=")
}
