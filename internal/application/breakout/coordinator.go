// Package breakout is the single authority over breakout rooms, their shared
// countdown, join grants and audio transfers. Mutations are serialized per
// parent meeting.
package breakout

import (
	"context"
	"errors"
	"time"

	"github.com/hilthontt/breakout/internal/domain"
	"github.com/hilthontt/breakout/internal/infrastructure/logging"
	"github.com/hilthontt/breakout/internal/infrastructure/metrics"
	"github.com/hilthontt/breakout/internal/infrastructure/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/hilthontt/breakout/internal/application/breakout"

// Broadcaster delivers events to the participants of ev.MeetingID.
type Broadcaster interface {
	Publish(ctx context.Context, ev domain.Event) error
}

type Options struct {
	MaxRooms               int
	TransferConfirmTimeout time.Duration
	GrantTTL               time.Duration
	JoinBaseURL            string
	Secret                 string

	Logger  logging.Logger
	Metrics *metrics.Metrics
	// Now defaults to time.Now.
	Now func() time.Time
}

type Coordinator struct {
	meetings    domain.MeetingRepository
	rooms       domain.BreakoutRepository
	grants      domain.GrantStore
	bridge      domain.AudioBridge
	broadcaster Broadcaster

	timers    *timerSet
	transfers *transferCoordinator
	tokens    *tokenSigner
	locks     keyedMutex

	opts    Options
	logger  logging.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

func New(
	meetings domain.MeetingRepository,
	rooms domain.BreakoutRepository,
	grants domain.GrantStore,
	bridge domain.AudioBridge,
	broadcaster Broadcaster,
	opts Options,
) *Coordinator {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxRooms <= 0 {
		opts.MaxRooms = 16
	}
	if opts.TransferConfirmTimeout <= 0 {
		opts.TransferConfirmTimeout = 10 * time.Second
	}
	if opts.GrantTTL <= 0 {
		opts.GrantTTL = 2 * time.Minute
	}

	c := &Coordinator{
		meetings:    meetings,
		rooms:       rooms,
		grants:      grants,
		bridge:      bridge,
		broadcaster: broadcaster,
		timers:      newTimerSet(),
		tokens:      newTokenSigner(opts.Secret),
		opts:        opts,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		tracer:      tracing.GetTracer(tracerName),
		now:         opts.Now,
	}
	c.transfers = newTransferCoordinator(bridge, opts.TransferConfirmTimeout, opts.Now, opts.Logger, c.onTransferUpdate, c.commitIfTargetLive)

	return c
}

// publish never fails the caller: state has already changed by the time an
// event goes out.
func (c *Coordinator) publish(ctx context.Context, ev domain.Event) {
	if c.broadcaster == nil {
		return
	}

	if err := c.broadcaster.Publish(ctx, ev); err != nil {
		c.logger.Warn(logging.Breakout, logging.Broadcast, "event delivery failed", map[logging.ExtraKey]any{
			logging.MeetingID:    ev.MeetingID,
			"event_type":         string(ev.Type),
			logging.ErrorMessage: err.Error(),
		})
	}
}

func (c *Coordinator) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "breakout."+name, trace.WithAttributes(attrs...))
}

// endSpan records err unless it is an expected domain outcome.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		if !isDomainError(err) {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}

var domainErrors = []error{
	domain.ErrInvalidParameter,
	domain.ErrInvalidDuration,
	domain.ErrWouldExpireImmediately,
	domain.ErrExceedsMeetingRemaining,
	domain.ErrTransferTimeout,
	domain.ErrTransferCancelled,
	domain.ErrTransferInProgress,
	domain.ErrTransferNotFound,
	domain.ErrNoAudioLeg,
	domain.ErrRoomNotFound,
	domain.ErrMeetingNotFound,
	domain.ErrMeetingAlreadyExists,
	domain.ErrBreakoutsAlreadyRunning,
	domain.ErrGrantConsumed,
	domain.ErrGrantExpired,
	domain.ErrInvalidGrant,
	domain.ErrGrantNotFound,
	domain.ErrNotAssigned,
	domain.ErrForbidden,
}

func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func requireModerator(actor domain.Participant) error {
	if !actor.IsModerator() {
		return domain.ErrForbidden
	}
	return nil
}

// activeMeeting must be called with the meeting lock held.
func (c *Coordinator) activeMeeting(ctx context.Context, meetingID string) (*domain.Meeting, error) {
	if meetingID == "" {
		return nil, domain.ErrInvalidParameter
	}
	return c.meetings.GetByID(ctx, meetingID)
}
