package rooms

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/breakout/internal/application/breakout"
	"github.com/hilthontt/breakout/internal/domain"
	"github.com/hilthontt/breakout/internal/infrastructure/json"
	"github.com/hilthontt/breakout/internal/infrastructure/logging"
	"github.com/hilthontt/breakout/internal/presentation/utils"
)

type Coordinator interface {
	FindBreakouts(ctx context.Context, meetingID string) ([]breakout.RoomView, error)
	CreateBreakouts(ctx context.Context, actor domain.Participant, meetingID string, p breakout.CreateParams) ([]breakout.RoomView, error)
	EndAllBreakouts(ctx context.Context, actor domain.Participant, meetingID string) ([]*domain.BreakoutRoom, error)
	SetBreakoutsTime(ctx context.Context, actor domain.Participant, meetingID string, newTotal time.Duration) (*domain.TimerState, error)
	IsNewTimeHigherThanMeetingRemaining(ctx context.Context, meetingID string, newTotal time.Duration) (bool, error)
	RequestJoinURL(ctx context.Context, actor domain.Participant, roomID string) (*domain.JoinGrant, error)
	RedeemJoinURL(ctx context.Context, token string) (*domain.JoinGrant, *domain.BreakoutRoom, error)
	IsUserInBreakoutRoom(ctx context.Context, userID string) (*domain.BreakoutRoom, bool, error)
	GetBreakoutRoomURL(ctx context.Context, userID string) (*domain.JoinGrant, error)
}

type Handler struct {
	coordinator Coordinator
	logger      logging.Logger
	now         func() time.Time
}

func NewHandler(coordinator Coordinator, logger logging.Logger) *Handler {
	return &Handler{
		coordinator: coordinator,
		logger:      logger,
		now:         time.Now,
	}
}

// FindBreakoutsHandler godoc
// @Summary      List breakout rooms
// @Description  Returns the meeting's rooms ordered by sequence with their remaining time and joined users
// @Tags         breakouts
// @Produce      json
// @Param        meetingId path string true "Meeting ID"
// @Success      200 {object} breakoutsResponse
// @Failure      404 {object} json.ErrorResponse "Meeting not found"
// @Router       /meetings/{meetingId}/breakouts [get]
func (h *Handler) FindBreakoutsHandler(w http.ResponseWriter, r *http.Request) {
	meetingID := chi.URLParam(r, "meetingId")

	rooms, err := h.coordinator.FindBreakouts(r.Context(), meetingID)
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	_ = json.Write(w, http.StatusOK, breakoutsResponse{MeetingID: meetingID, Rooms: rooms})
}

// CreateBreakoutsHandler godoc
// @Summary      Create breakout rooms
// @Description  Opens count rooms named "Room N" and starts their shared countdown
// @Tags         breakouts
// @Accept       json
// @Produce      json
// @Param        meetingId path string true "Meeting ID"
// @Param        request body createBreakoutsRequest true "Room parameters"
// @Success      201 {object} breakoutsResponse
// @Failure      400 {object} json.ErrorResponse "Invalid count, duration or assignments"
// @Failure      403 {object} json.ErrorResponse "Caller is not a moderator"
// @Failure      404 {object} json.ErrorResponse "Meeting not found"
// @Failure      409 {object} json.ErrorResponse "Breakout rooms already running"
// @Failure      422 {object} json.ErrorResponse "Duration exceeds the meeting's remaining time"
// @Security     ParticipantAuth
// @Router       /meetings/{meetingId}/breakouts [post]
func (h *Handler) CreateBreakoutsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.RequireParticipant(w, r)
	if !ok {
		return
	}

	var req createBreakoutsRequest
	if err := json.Read(w, r, &req); err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}

	duration, err := toDuration(req.DurationSeconds, time.Second)
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	meetingID := chi.URLParam(r, "meetingId")
	rooms, err := h.coordinator.CreateBreakouts(r.Context(), actor, meetingID, breakout.CreateParams{
		Count:       req.Count,
		Duration:    duration,
		FreeJoin:    req.FreeJoin,
		Assignments: req.Assignments,
	})
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	_ = json.Write(w, http.StatusCreated, breakoutsResponse{MeetingID: meetingID, Rooms: rooms})
}

// EndAllBreakoutsHandler godoc
// @Summary      End all breakout rooms
// @Description  Tears down every room and sends participants back to the main room. Repeating the call is a no-op.
// @Tags         breakouts
// @Produce      json
// @Param        meetingId path string true "Meeting ID"
// @Success      200 {object} endAllResponse
// @Failure      403 {object} json.ErrorResponse "Caller is not a moderator"
// @Failure      404 {object} json.ErrorResponse "Meeting not found"
// @Security     ParticipantAuth
// @Router       /meetings/{meetingId}/breakouts [delete]
func (h *Handler) EndAllBreakoutsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.RequireParticipant(w, r)
	if !ok {
		return
	}

	meetingID := chi.URLParam(r, "meetingId")
	ended, err := h.coordinator.EndAllBreakouts(r.Context(), actor, meetingID)
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	_ = json.Write(w, http.StatusOK, endAllResponse{MeetingID: meetingID, EndedRooms: len(ended)})
}

// SetBreakoutsTimeHandler godoc
// @Summary      Change the breakout duration
// @Description  Sets the total duration measured from when the rooms started
// @Tags         breakouts
// @Accept       json
// @Produce      json
// @Param        meetingId path string true "Meeting ID"
// @Param        request body setTimeRequest true "New total duration"
// @Success      200 {object} timerResponse
// @Failure      400 {object} json.ErrorResponse "Duration must be positive and in range"
// @Failure      404 {object} json.ErrorResponse "No breakout rooms running"
// @Failure      422 {object} json.ErrorResponse "Shorter than elapsed time or longer than the meeting"
// @Security     ParticipantAuth
// @Router       /meetings/{meetingId}/breakouts/time [put]
func (h *Handler) SetBreakoutsTimeHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.RequireParticipant(w, r)
	if !ok {
		return
	}

	var req setTimeRequest
	if err := json.Read(w, r, &req); err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}

	total, err := toDuration(req.TimeInMinutes, time.Minute)
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	timer, err := h.coordinator.SetBreakoutsTime(r.Context(), actor, chi.URLParam(r, "meetingId"), total)
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	_ = json.Write(w, http.StatusOK, newTimerResponse(timer, h.now()))
}

// CheckBreakoutsTimeHandler godoc
// @Summary      Check a new breakout duration
// @Description  Reports whether the new total duration would end after the parent meeting
// @Tags         breakouts
// @Produce      json
// @Param        meetingId path string true "Meeting ID"
// @Param        minutes query int true "Proposed total duration in minutes"
// @Success      200 {object} timeCheckResponse
// @Failure      400 {object} json.ErrorResponse "minutes is not a number or out of range"
// @Failure      404 {object} json.ErrorResponse "No breakout rooms running"
// @Router       /meetings/{meetingId}/breakouts/time/check [get]
func (h *Handler) CheckBreakoutsTimeHandler(w http.ResponseWriter, r *http.Request) {
	minutes, err := strconv.Atoi(r.URL.Query().Get("minutes"))
	if err != nil {
		json.WriteBadRequestError(w, "minutes query parameter must be an integer")
		return
	}

	total, err := toDuration(minutes, time.Minute)
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	exceeds, err := h.coordinator.IsNewTimeHigherThanMeetingRemaining(r.Context(), chi.URLParam(r, "meetingId"), total)
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	_ = json.Write(w, http.StatusOK, timeCheckResponse{Minutes: minutes, Exceeds: exceeds})
}

// RequestJoinURLHandler godoc
// @Summary      Request a join URL
// @Description  Issues a single-use, short-lived link into a breakout room
// @Tags         breakouts
// @Produce      json
// @Param        breakoutId path string true "Breakout room ID"
// @Success      201 {object} joinURLResponse
// @Failure      403 {object} json.ErrorResponse "Not assigned to this room"
// @Failure      404 {object} json.ErrorResponse "Room not found or expired"
// @Security     ParticipantAuth
// @Router       /breakouts/{breakoutId}/join-url [post]
func (h *Handler) RequestJoinURLHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.RequireParticipant(w, r)
	if !ok {
		return
	}

	grant, err := h.coordinator.RequestJoinURL(r.Context(), actor, chi.URLParam(r, "breakoutId"))
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	_ = json.Write(w, http.StatusCreated, newJoinURLResponse(grant))
}

// RedeemJoinURLHandler godoc
// @Summary      Redeem a join URL
// @Description  Consumes the grant in token and places its user in the room. A token works once.
// @Tags         breakouts
// @Produce      json
// @Param        token query string true "Signed join token"
// @Success      200 {object} redeemResponse
// @Failure      401 {object} json.ErrorResponse "Token is invalid"
// @Failure      404 {object} json.ErrorResponse "Room ended"
// @Failure      410 {object} json.ErrorResponse "Token already used or expired"
// @Router       /breakouts/join [get]
func (h *Handler) RedeemJoinURLHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		json.WriteBadRequestError(w, "token query parameter is required")
		return
	}

	grant, room, err := h.coordinator.RedeemJoinURL(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrGrantConsumed) {
			h.logger.Warn(logging.Breakout, logging.JoinGrant, "join grant replayed", map[logging.ExtraKey]any{
				logging.ClientIp: r.RemoteAddr,
			})
		}
		json.WriteDomainError(w, err)
		return
	}

	_ = json.Write(w, http.StatusOK, redeemResponse{
		RoomID:    room.ID,
		MeetingID: room.ParentMeetingID,
		UserID:    grant.UserID,
		Name:      room.Name,
	})
}

// MyBreakoutHandler godoc
// @Summary      Get my breakout status
// @Description  Returns the room the caller has joined and the join URL still waiting to be used, if any
// @Tags         breakouts
// @Produce      json
// @Success      200 {object} myBreakoutResponse
// @Failure      401 {object} json.ErrorResponse "Missing participant cookie"
// @Security     ParticipantAuth
// @Router       /users/me/breakout [get]
func (h *Handler) MyBreakoutHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.RequireParticipant(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	room, in, err := h.coordinator.IsUserInBreakoutRoom(ctx, actor.UserID)
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	resp := myBreakoutResponse{InBreakoutRoom: in, Room: room}

	grant, err := h.coordinator.GetBreakoutRoomURL(ctx, actor.UserID)
	switch {
	case err == nil:
		resp.PendingJoinURL = newJoinURLResponse(grant)
	case !errors.Is(err, domain.ErrGrantNotFound):
		json.WriteDomainError(w, err)
		return
	}

	_ = json.Write(w, http.StatusOK, resp)
}

// toDuration rejects counts that would overflow time.Duration.
func toDuration(n int, unit time.Duration) (time.Duration, error) {
	limit := int64(math.MaxInt64 / unit)
	if int64(n) > limit || int64(n) < -limit {
		return 0, fmt.Errorf("%w: duration out of range", domain.ErrInvalidParameter)
	}
	return time.Duration(n) * unit, nil
}
