package meetings

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/breakout/internal/domain"
	"github.com/hilthontt/breakout/internal/infrastructure/json"
	"github.com/hilthontt/breakout/internal/infrastructure/validate"
	"github.com/hilthontt/breakout/internal/presentation/utils"
)

type Coordinator interface {
	StartMeeting(ctx context.Context, actor domain.Participant, meetingID string, durationLimit time.Duration) (*domain.Meeting, error)
	EndMeeting(ctx context.Context, actor domain.Participant, meetingID string) error
}

type Handler struct {
	coordinator Coordinator
}

func NewHandler(coordinator Coordinator) *Handler {
	return &Handler{coordinator: coordinator}
}

// StartMeetingHandler godoc
// @Summary      Start a parent meeting
// @Description  Registers the meeting as active so breakout rooms can be created under it
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Param        request body startMeetingRequest true "Meeting parameters"
// @Success      201 {object} meetingResponse
// @Failure      400 {object} json.ErrorResponse "Invalid meeting ID or duration"
// @Failure      401 {object} json.ErrorResponse "Missing participant cookie"
// @Failure      403 {object} json.ErrorResponse "Caller is not a moderator"
// @Failure      409 {object} json.ErrorResponse "Meeting already active"
// @Security     ParticipantAuth
// @Router       /meetings [post]
func (h *Handler) StartMeetingHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.RequireParticipant(w, r)
	if !ok {
		return
	}

	var req startMeetingRequest
	if err := json.Read(w, r, &req); err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}

	if err := validate.Identifier("meetingId")(req.MeetingID); err != nil {
		json.WriteValidationError(w, err)
		return
	}
	if req.DurationLimitMinutes < 0 {
		json.WriteError(w, http.StatusBadRequest, "invalid_parameter", "durationLimitMinutes must not be negative")
		return
	}

	meeting, err := h.coordinator.StartMeeting(r.Context(), actor, req.MeetingID, time.Duration(req.DurationLimitMinutes)*time.Minute)
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	_ = json.Write(w, http.StatusCreated, meetingResponse{
		MeetingID:            meeting.ID,
		StartedAt:            meeting.StartedAt,
		DurationLimitMinutes: int(meeting.DurationLimit / time.Minute),
	})
}

// EndMeetingHandler godoc
// @Summary      End a parent meeting
// @Description  Ends every breakout room of the meeting, then the meeting itself
// @Tags         meetings
// @Param        meetingId path string true "Meeting ID"
// @Success      204
// @Failure      403 {object} json.ErrorResponse "Caller is not a moderator"
// @Failure      404 {object} json.ErrorResponse "Meeting not found"
// @Security     ParticipantAuth
// @Router       /meetings/{meetingId} [delete]
func (h *Handler) EndMeetingHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.RequireParticipant(w, r)
	if !ok {
		return
	}

	if err := h.coordinator.EndMeeting(r.Context(), actor, chi.URLParam(r, "meetingId")); err != nil {
		json.WriteDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
