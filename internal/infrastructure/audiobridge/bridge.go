package audiobridge

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hilthontt/breakout/internal/domain"
	"github.com/hilthontt/breakout/internal/infrastructure/logging"
)

// Confirmer is called when a prepared leg is ready to carry audio.
type Confirmer func(ctx context.Context, transferID string) error

type Options struct {
	// AutoConfirm > 0 confirms every prepared leg after the delay. Zero
	// leaves confirmation to an external callback.
	AutoConfirm time.Duration
	Logger      logging.Logger
}

// Bridge is an in-process audio bridge. It tracks legs per user and
// meeting; a real deployment swaps it for a media server client.
type Bridge struct {
	legs      map[string]*domain.AudioLeg // leg ID -> leg
	confirmer Confirmer
	opts      Options
	mu        sync.Mutex
}

func New(opts Options) *Bridge {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	return &Bridge{
		legs: make(map[string]*domain.AudioLeg),
		opts: opts,
	}
}

func (b *Bridge) SetConfirmer(c Confirmer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmer = c
}

// Connect gives a user an active leg in a meeting, replacing any leg the
// user already held there.
func (b *Bridge) Connect(ctx context.Context, userID, meetingID string, mode domain.LegMode) (*domain.AudioLeg, error) {
	if userID == "" || meetingID == "" {
		return nil, domain.ErrInvalidParameter
	}
	if mode != domain.LegMicrophone && mode != domain.LegListenOnly {
		return nil, domain.ErrInvalidParameter
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for id, leg := range b.legs {
		if leg.UserID == userID && leg.MeetingID == meetingID {
			delete(b.legs, id)
		}
	}

	leg := &domain.AudioLeg{
		ID:        uuid.NewString(),
		UserID:    userID,
		MeetingID: meetingID,
		Mode:      mode,
		State:     domain.LegActive,
		CreatedAt: time.Now(),
	}
	b.legs[leg.ID] = leg

	cpy := *leg
	return &cpy, nil
}

// Disconnect drops every leg of a user.
func (b *Bridge) Disconnect(ctx context.Context, userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for id, leg := range b.legs {
		if leg.UserID == userID {
			delete(b.legs, id)
			n++
		}
	}
	return n
}

func (b *Bridge) Legs(ctx context.Context, userID string) []domain.AudioLeg {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.AudioLeg, 0, 2)
	for _, leg := range b.legs {
		if leg.UserID == userID {
			out = append(out, *leg)
		}
	}
	return out
}

func (b *Bridge) CurrentLeg(ctx context.Context, userID, meetingID string) (*domain.AudioLeg, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, leg := range b.legs {
		if leg.UserID == userID && leg.MeetingID == meetingID && leg.State == domain.LegActive {
			cpy := *leg
			return &cpy, nil
		}
	}
	return nil, domain.ErrNoAudioLeg
}

func (b *Bridge) PrepareLeg(ctx context.Context, req domain.LegRequest) (*domain.AudioLeg, error) {
	if req.UserID == "" || req.MeetingID == "" || req.TransferID == "" {
		return nil, domain.ErrInvalidParameter
	}

	leg := &domain.AudioLeg{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		MeetingID: req.MeetingID,
		Mode:      req.Mode,
		State:     domain.LegReserved,
		CreatedAt: time.Now(),
	}

	b.mu.Lock()
	b.legs[leg.ID] = leg
	confirmer := b.confirmer
	b.mu.Unlock()

	if b.opts.AutoConfirm > 0 && confirmer != nil {
		go b.autoConfirm(confirmer, req.TransferID)
	}

	cpy := *leg
	return &cpy, nil
}

func (b *Bridge) autoConfirm(confirm Confirmer, transferID string) {
	time.Sleep(b.opts.AutoConfirm)

	if err := confirm(context.Background(), transferID); err != nil {
		b.opts.Logger.Warn(logging.Audio, logging.Transfer, "auto confirmation rejected", map[logging.ExtraKey]any{
			logging.TransferID:   transferID,
			logging.ErrorMessage: err.Error(),
		})
	}
}

func (b *Bridge) CommitLeg(ctx context.Context, legID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	leg, ok := b.legs[legID]
	if !ok {
		return domain.ErrNoAudioLeg
	}
	leg.State = domain.LegActive
	return nil
}

// ReleaseLeg is idempotent.
func (b *Bridge) ReleaseLeg(ctx context.Context, legID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.legs, legID)
	return nil
}
