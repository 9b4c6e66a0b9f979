package breakout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hilthontt/breakout/internal/domain"
	"github.com/hilthontt/breakout/internal/infrastructure/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	reasonNoAudioLeg    = "no_audio_leg"
	reasonPrepareFailed = "prepare_failed"
	reasonCommitFailed  = "commit_failed"
	reasonTimeout       = "timeout"
	reasonCancelled     = "cancelled"
	reasonTargetEnded   = "target_ended"
)

type transferTask struct {
	req      domain.AudioTransferRequest
	parentID string
	source   *domain.AudioLeg
	target   *domain.AudioLeg

	confirmed   chan struct{}
	cancelled   chan struct{}
	done        chan struct{}
	confirmOnce sync.Once
	cancelOnce  sync.Once
	err         error
}

func (t *transferTask) confirm() {
	t.confirmOnce.Do(func() { close(t.confirmed) })
}

func (t *transferTask) cancel() {
	t.cancelOnce.Do(func() { close(t.cancelled) })
}

type transferUpdateFunc func(ctx context.Context, req domain.AudioTransferRequest, parentMeetingID string)

// commitGuard runs commit only while the transfer target still exists.
type commitGuard func(ctx context.Context, req domain.AudioTransferRequest, parentMeetingID string, commit func() error) error

// transferCoordinator moves audio legs between a meeting and its breakout
// rooms. The target leg is prepared first and the source leg is only
// released after the bridge confirms the target, so a failed transfer
// always leaves the user on the original leg.
type transferCoordinator struct {
	bridge   domain.AudioBridge
	timeout  time.Duration
	now      func() time.Time
	logger   logging.Logger
	onUpdate transferUpdateFunc
	guard    commitGuard

	mu       sync.Mutex
	inflight map[string]*transferTask // user ID -> task
	byID     map[string]*transferTask
	last     map[string]domain.AudioTransferRequest // user ID -> latest request
}

func newTransferCoordinator(bridge domain.AudioBridge, timeout time.Duration, now func() time.Time, logger logging.Logger, onUpdate transferUpdateFunc, guard commitGuard) *transferCoordinator {
	return &transferCoordinator{
		bridge:   bridge,
		timeout:  timeout,
		now:      now,
		logger:   logger,
		onUpdate: onUpdate,
		guard:    guard,
		inflight: make(map[string]*transferTask),
		byID:     make(map[string]*transferTask),
		last:     make(map[string]domain.AudioTransferRequest),
	}
}

// register makes the task visible to cancel and cancelWhere before any
// bridge work starts.
func (tc *transferCoordinator) register(userID, from, to, parentID string) (*transferTask, error) {
	now := tc.now()
	task := &transferTask{
		req: domain.AudioTransferRequest{
			ID:            uuid.NewString(),
			UserID:        userID,
			FromMeetingID: from,
			ToMeetingID:   to,
			Status:        domain.TransferPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		parentID:  parentID,
		confirmed: make(chan struct{}),
		cancelled: make(chan struct{}),
		done:      make(chan struct{}),
	}

	tc.mu.Lock()
	if _, busy := tc.inflight[userID]; busy {
		tc.mu.Unlock()
		return nil, domain.ErrTransferInProgress
	}
	tc.inflight[userID] = task
	tc.byID[task.req.ID] = task
	tc.last[userID] = task.req
	tc.mu.Unlock()

	return task, nil
}

func (tc *transferCoordinator) start(ctx context.Context, task *transferTask) error {
	userID, from, to, parentID := task.req.UserID, task.req.FromMeetingID, task.req.ToMeetingID, task.parentID

	// The handoff outlives the request that started it.
	bctx := context.WithoutCancel(ctx)
	tc.onUpdate(bctx, tc.snapshot(task), parentID)

	source, err := tc.bridge.CurrentLeg(bctx, userID, from)
	if err != nil {
		if !errors.Is(err, domain.ErrNoAudioLeg) {
			err = fmt.Errorf("lookup source leg: %w", err)
		}
		tc.finish(bctx, task, domain.TransferFailed, reasonNoAudioLeg, err)
		return err
	}
	task.source = source

	target, err := tc.bridge.PrepareLeg(bctx, domain.LegRequest{
		TransferID: task.req.ID,
		UserID:     userID,
		MeetingID:  to,
		Mode:       source.Mode,
	})
	if err != nil {
		err = fmt.Errorf("prepare target leg: %w", err)
		tc.finish(bctx, task, domain.TransferFailed, reasonPrepareFailed, err)
		return err
	}
	task.target = target

	tc.mu.Lock()
	task.req.Status = domain.TransferInProgress
	task.req.UpdatedAt = tc.now()
	tc.last[userID] = task.req
	snapshot := task.req
	tc.mu.Unlock()
	tc.onUpdate(bctx, snapshot, parentID)

	go tc.await(bctx, task)

	return nil
}

func (tc *transferCoordinator) await(ctx context.Context, task *transferTask) {
	timer := time.NewTimer(tc.timeout)
	defer timer.Stop()

	select {
	case <-task.confirmed:
		var commitErr error
		err := tc.guard(ctx, tc.snapshot(task), task.parentID, func() error {
			commitErr = tc.bridge.CommitLeg(ctx, task.target.ID)
			return commitErr
		})
		switch {
		case commitErr != nil:
			tc.release(ctx, task, task.target)
			tc.finish(ctx, task, domain.TransferFailed, reasonCommitFailed, fmt.Errorf("commit target leg: %w", commitErr))
		case err != nil:
			tc.release(ctx, task, task.target)
			tc.finish(ctx, task, domain.TransferFailed, reasonTargetEnded, err)
		default:
			tc.release(ctx, task, task.source)
			tc.finish(ctx, task, domain.TransferCompleted, "", nil)
		}

	case <-timer.C:
		tc.release(ctx, task, task.target)
		tc.finish(ctx, task, domain.TransferFailed, reasonTimeout, domain.ErrTransferTimeout)

	case <-task.cancelled:
		tc.release(ctx, task, task.target)
		tc.finish(ctx, task, domain.TransferFailed, reasonCancelled, domain.ErrTransferCancelled)
	}
}

func (tc *transferCoordinator) release(ctx context.Context, task *transferTask, leg *domain.AudioLeg) {
	if err := tc.bridge.ReleaseLeg(ctx, leg.ID); err != nil {
		tc.logger.Error(logging.Audio, logging.Transfer, "failed to release audio leg", map[logging.ExtraKey]any{
			logging.TransferID:   task.req.ID,
			logging.UserID:       task.req.UserID,
			"leg_id":             leg.ID,
			logging.ErrorMessage: err.Error(),
		})
	}
}

func (tc *transferCoordinator) finish(ctx context.Context, task *transferTask, status domain.TransferStatus, reason string, err error) {
	tc.mu.Lock()
	task.req.Status = status
	task.req.Reason = reason
	task.req.UpdatedAt = tc.now()
	delete(tc.inflight, task.req.UserID)
	delete(tc.byID, task.req.ID)
	tc.last[task.req.UserID] = task.req
	snapshot := task.req
	tc.mu.Unlock()

	task.err = err
	defer close(task.done)

	extra := map[logging.ExtraKey]any{
		logging.TransferID: snapshot.ID,
		logging.UserID:     snapshot.UserID,
		"from":             snapshot.FromMeetingID,
		"to":               snapshot.ToMeetingID,
		"status":           string(status),
	}
	if err != nil {
		extra[logging.ErrorMessage] = err.Error()
		tc.logger.Warn(logging.Audio, logging.Transfer, "audio transfer failed", extra)
	} else {
		tc.logger.Info(logging.Audio, logging.Transfer, "audio transfer completed", extra)
	}

	tc.onUpdate(ctx, snapshot, task.parentID)
}

func (tc *transferCoordinator) confirm(transferID string) error {
	tc.mu.Lock()
	task, ok := tc.byID[transferID]
	tc.mu.Unlock()

	if !ok {
		return domain.ErrTransferNotFound
	}
	task.confirm()
	return nil
}

func (tc *transferCoordinator) cancel(userID string) bool {
	tc.mu.Lock()
	task, ok := tc.inflight[userID]
	tc.mu.Unlock()

	if !ok {
		return false
	}
	task.cancel()
	return true
}

func (tc *transferCoordinator) cancelWhere(match func(domain.AudioTransferRequest) bool) int {
	tc.mu.Lock()
	var tasks []*transferTask
	for _, task := range tc.inflight {
		if match(task.req) {
			tasks = append(tasks, task)
		}
	}
	tc.mu.Unlock()

	for _, task := range tasks {
		task.cancel()
	}
	return len(tasks)
}

// wait blocks until the task is terminal. Giving up on ctx cancels the
// transfer.
func (tc *transferCoordinator) wait(ctx context.Context, task *transferTask) (domain.AudioTransferRequest, error) {
	select {
	case <-task.done:
	case <-ctx.Done():
		task.cancel()
		<-task.done
	}
	return tc.snapshot(task), task.err
}

func (tc *transferCoordinator) snapshot(task *transferTask) domain.AudioTransferRequest {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return task.req
}

func (tc *transferCoordinator) status(userID string) (domain.AudioTransferRequest, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	req, ok := tc.last[userID]
	if !ok {
		return domain.AudioTransferRequest{}, domain.ErrTransferNotFound
	}
	return req, nil
}

// BeginTransfer starts moving a user's audio and returns without waiting for
// the bridge. Poll TransferStatus or listen for audio.transfer_updated.
func (c *Coordinator) BeginTransfer(ctx context.Context, actor domain.Participant, userID, fromMeetingID, toMeetingID string) (domain.AudioTransferRequest, error) {
	task, err := c.beginTransfer(ctx, actor, userID, fromMeetingID, toMeetingID)
	if task == nil {
		return domain.AudioTransferRequest{}, err
	}
	return c.transfers.snapshot(task), err
}

// TransferUser moves a user's audio and waits for the outcome. On
// TransferTimeout or TransferCancelled the user keeps the source leg.
func (c *Coordinator) TransferUser(ctx context.Context, actor domain.Participant, userID, fromMeetingID, toMeetingID string) (req domain.AudioTransferRequest, err error) {
	ctx, span := c.startSpan(ctx, "transfer_user",
		attribute.String("user.id", userID),
		attribute.String("transfer.from", fromMeetingID),
		attribute.String("transfer.to", toMeetingID),
	)
	defer func() { endSpan(span, err) }()

	task, err := c.beginTransfer(ctx, actor, userID, fromMeetingID, toMeetingID)
	if err != nil {
		if task != nil {
			return c.transfers.snapshot(task), err
		}
		return domain.AudioTransferRequest{}, err
	}

	return c.transfers.wait(ctx, task)
}

func (c *Coordinator) beginTransfer(ctx context.Context, actor domain.Participant, userID, from, to string) (*transferTask, error) {
	if actor.UserID != userID && !actor.IsModerator() {
		return nil, domain.ErrForbidden
	}
	if userID == "" || from == "" || to == "" || from == to {
		return nil, domain.ErrInvalidParameter
	}

	parent, err := c.parentOf(ctx, from)
	if err != nil {
		return nil, err
	}

	unlock := c.locks.lock(parent)
	task, err := c.registerTransferLocked(ctx, userID, from, to, parent)
	unlock()
	if err != nil {
		return nil, err
	}

	return task, c.transfers.start(ctx, task)
}

// registerTransferLocked resolves both ends again under the parent meeting
// lock, so EndAllBreakouts either runs first or sees the task.
func (c *Coordinator) registerTransferLocked(ctx context.Context, userID, from, to, parent string) (*transferTask, error) {
	for _, id := range []string{from, to} {
		p, err := c.parentOf(ctx, id)
		if err != nil {
			return nil, err
		}
		if p != parent {
			return nil, fmt.Errorf("%w: %s and %s belong to different meetings", domain.ErrInvalidParameter, from, to)
		}
	}
	return c.transfers.register(userID, from, to, parent)
}

// commitIfTargetLive holds the parent meeting lock across commit so the
// target cannot end between the check and the commit.
func (c *Coordinator) commitIfTargetLive(ctx context.Context, req domain.AudioTransferRequest, parentMeetingID string, commit func() error) error {
	unlock := c.locks.lock(parentMeetingID)
	defer unlock()

	if req.ToMeetingID == parentMeetingID {
		if _, err := c.activeMeeting(ctx, parentMeetingID); err != nil {
			return err
		}
	} else if _, err := c.liveRoomLocked(ctx, req.ToMeetingID, c.now()); err != nil {
		return err
	}
	return commit()
}

// parentOf resolves a meeting or breakout room ID to its parent meeting.
func (c *Coordinator) parentOf(ctx context.Context, id string) (string, error) {
	if _, err := c.meetings.GetByID(ctx, id); err == nil {
		return id, nil
	} else if !errors.Is(err, domain.ErrMeetingNotFound) {
		return "", err
	}

	room, err := c.rooms.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return room.ParentMeetingID, nil
}

// ConfirmTransfer is the audio bridge's signal that the prepared leg carries
// audio.
func (c *Coordinator) ConfirmTransfer(ctx context.Context, transferID string) error {
	return c.transfers.confirm(transferID)
}

// CancelTransfers aborts the user's in-flight transfer, if any, releasing
// the reserved target leg.
func (c *Coordinator) CancelTransfers(ctx context.Context, userID string) bool {
	return c.transfers.cancel(userID)
}

func (c *Coordinator) TransferStatus(ctx context.Context, userID string) (domain.AudioTransferRequest, error) {
	return c.transfers.status(userID)
}

func (c *Coordinator) onTransferUpdate(ctx context.Context, req domain.AudioTransferRequest, parentMeetingID string) {
	c.publish(ctx, domain.NewEvent(domain.EventTransferUpdated, parentMeetingID, req.UpdatedAt, req, req.UserID))

	if !req.Status.Terminal() {
		return
	}
	c.metrics.TransferFinished(string(req.Status), req.Reason)

	if req.Status != domain.TransferCompleted {
		return
	}

	var stale string
	defer func() { c.leaveStaleRoom(ctx, stale, req.UserID) }()

	unlock := c.locks.lock(parentMeetingID)
	defer unlock()

	stale, err := c.moveMembershipLocked(ctx, req)
	if err != nil {
		c.logger.Warn(logging.Breakout, logging.Transfer, "failed to update room membership after transfer", map[logging.ExtraKey]any{
			logging.TransferID:   req.ID,
			logging.UserID:       req.UserID,
			logging.ErrorMessage: err.Error(),
		})
	}
}

// moveMembershipLocked mirrors a completed audio move in room membership.
// Rooms that ended meanwhile are skipped.
func (c *Coordinator) moveMembershipLocked(ctx context.Context, req domain.AudioTransferRequest) (string, error) {
	if room, err := c.rooms.GetByID(ctx, req.FromMeetingID); err == nil {
		if err := c.leaveRoomLocked(ctx, room, req.UserID); err != nil {
			return "", err
		}
	}

	room, err := c.rooms.GetByID(ctx, req.ToMeetingID)
	if errors.Is(err, domain.ErrRoomNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return c.joinRoomLocked(ctx, room, req.UserID)
}
