package repository

import (
	"context"
	"sync"

	"github.com/hilthontt/breakout/internal/domain"
)

type meetingRepository struct {
	meetings map[string]*domain.Meeting
	mu       *sync.RWMutex
}

func NewMeetingRepository() domain.MeetingRepository {
	return &meetingRepository{
		meetings: make(map[string]*domain.Meeting),
		mu:       &sync.RWMutex{},
	}
}

func (r *meetingRepository) Create(ctx context.Context, meeting *domain.Meeting) error {
	if meeting == nil || meeting.ID == "" {
		return domain.ErrInvalidParameter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.meetings[meeting.ID]; exists {
		return domain.ErrMeetingAlreadyExists
	}

	cpy := *meeting
	r.meetings[meeting.ID] = &cpy
	return nil
}

func (r *meetingRepository) GetByID(ctx context.Context, id string) (*domain.Meeting, error) {
	if id == "" {
		return nil, domain.ErrInvalidParameter
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	meeting, exists := r.meetings[id]
	if !exists {
		return nil, domain.ErrMeetingNotFound
	}

	cpy := *meeting
	return &cpy, nil
}

// Delete is idempotent.
func (r *meetingRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.meetings, id)
	return nil
}
