package events

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/hilthontt/breakout/internal/domain"
	"github.com/hilthontt/breakout/internal/infrastructure/json"
	"github.com/hilthontt/breakout/internal/infrastructure/logging"
	"github.com/hilthontt/breakout/internal/presentation/utils"
)

type Meetings interface {
	Meeting(ctx context.Context, meetingID string) (*domain.Meeting, error)
}

type Streamer interface {
	Serve(up *websocket.Upgrader, w http.ResponseWriter, r *http.Request, meetingID, userID string) error
}

type Handler struct {
	meetings Meetings
	streamer Streamer
	upgrader *websocket.Upgrader
	logger   logging.Logger
}

func NewHandler(meetings Meetings, streamer Streamer, upgrader *websocket.Upgrader, logger logging.Logger) *Handler {
	return &Handler{
		meetings: meetings,
		streamer: streamer,
		upgrader: upgrader,
		logger:   logger,
	}
}

// StreamHandler godoc
// @Summary      Subscribe to meeting events
// @Description  Upgrades to a WebSocket carrying every breakout event of the meeting. Closing the caller's last stream cancels their in-flight audio transfer.
// @Tags         events
// @Param        meetingId path string true "Meeting ID"
// @Success      101 {object} ws.WSMessage "Switching Protocols"
// @Failure      401 {object} json.ErrorResponse "Missing participant cookie"
// @Failure      404 {object} json.ErrorResponse "Meeting not found"
// @Security     ParticipantAuth
// @Router       /meetings/{meetingId}/events [get]
func (h *Handler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.RequireParticipant(w, r)
	if !ok {
		return
	}

	meetingID := chi.URLParam(r, "meetingId")
	if _, err := h.meetings.Meeting(r.Context(), meetingID); err != nil {
		json.WriteDomainError(w, err)
		return
	}

	// The upgrader has already answered the client when Serve fails.
	if err := h.streamer.Serve(h.upgrader, w, r, meetingID, actor.UserID); err != nil {
		h.logger.Warn(logging.WebSocket, logging.Broadcast, "event stream upgrade failed", map[logging.ExtraKey]any{
			logging.MeetingID:    meetingID,
			logging.UserID:       actor.UserID,
			logging.ErrorMessage: err.Error(),
		})
	}
}
