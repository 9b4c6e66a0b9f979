package audio

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/breakout/internal/domain"
	"github.com/hilthontt/breakout/internal/infrastructure/json"
	"github.com/hilthontt/breakout/internal/infrastructure/logging"
	"github.com/hilthontt/breakout/internal/infrastructure/validate"
	"github.com/hilthontt/breakout/internal/presentation/utils"
)

type Bridge interface {
	Connect(ctx context.Context, userID, meetingID string, mode domain.LegMode) (*domain.AudioLeg, error)
	Legs(ctx context.Context, userID string) []domain.AudioLeg
	Disconnect(ctx context.Context, userID string) int
}

// Canceller stops a user's in-flight transfer before the legs go away.
type Canceller interface {
	CancelTransfers(ctx context.Context, userID string) bool
}

var validMode = validate.Field("mode", validate.Required(), validate.OneOf(string(domain.LegMicrophone), string(domain.LegListenOnly)))

type Handler struct {
	bridge    Bridge
	canceller Canceller
	logger    logging.Logger
}

func NewHandler(bridge Bridge, canceller Canceller, logger logging.Logger) *Handler {
	return &Handler{
		bridge:    bridge,
		canceller: canceller,
		logger:    logger,
	}
}

// ConnectHandler godoc
// @Summary      Join meeting audio
// @Description  Gives the caller an active audio leg in a meeting or breakout room, replacing any leg held there
// @Tags         audio
// @Accept       json
// @Produce      json
// @Param        meetingId path string true "Meeting or breakout room ID"
// @Param        request body connectRequest true "Audio mode"
// @Success      201 {object} domain.AudioLeg
// @Failure      400 {object} json.ErrorResponse "Unknown mode"
// @Security     ParticipantAuth
// @Router       /meetings/{meetingId}/audio [post]
func (h *Handler) ConnectHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.RequireParticipant(w, r)
	if !ok {
		return
	}

	var req connectRequest
	if err := json.Read(w, r, &req); err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}

	meetingID := chi.URLParam(r, "meetingId")
	if err := validate.All(
		validate.Check(validate.Identifier("meetingId"), meetingID),
		validate.Check(validMode, req.Mode),
	); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	leg, err := h.bridge.Connect(r.Context(), actor.UserID, meetingID, domain.LegMode(req.Mode))
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	h.logger.Info(logging.Audio, logging.Rejoin, "audio connected", map[logging.ExtraKey]any{
		logging.MeetingID: meetingID,
		logging.UserID:    actor.UserID,
		"mode":            req.Mode,
	})

	_ = json.Write(w, http.StatusCreated, leg)
}

// MyLegsHandler godoc
// @Summary      List my audio legs
// @Tags         audio
// @Produce      json
// @Success      200 {array} domain.AudioLeg
// @Security     ParticipantAuth
// @Router       /audio/me [get]
func (h *Handler) MyLegsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.RequireParticipant(w, r)
	if !ok {
		return
	}

	_ = json.Write(w, http.StatusOK, h.bridge.Legs(r.Context(), actor.UserID))
}

// DisconnectHandler godoc
// @Summary      Leave audio
// @Description  Cancels the caller's in-flight transfer, then drops every audio leg
// @Tags         audio
// @Produce      json
// @Success      200 {object} disconnectResponse
// @Security     ParticipantAuth
// @Router       /audio/me [delete]
func (h *Handler) DisconnectHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.RequireParticipant(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	cancelled := h.canceller.CancelTransfers(ctx, actor.UserID)
	released := h.bridge.Disconnect(ctx, actor.UserID)

	_ = json.Write(w, http.StatusOK, disconnectResponse{Released: released, Cancelled: cancelled})
}
