package audit

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/breakout/internal/domain"
	"github.com/hilthontt/breakout/internal/infrastructure/json"
	"github.com/hilthontt/breakout/internal/presentation/utils"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

type Handler struct {
	repo domain.AuditRepository
}

func NewHandler(repo domain.AuditRepository) *Handler {
	return &Handler{repo: repo}
}

// ListHandler godoc
// @Summary      Breakout audit trail
// @Description  Latest recorded breakout events of a meeting, newest first
// @Tags         audit
// @Produce      json
// @Param        meetingId path string true "Meeting ID"
// @Param        limit query int false "Maximum entries (default 100, max 1000)"
// @Success      200 {array} domain.BreakoutAuditLog
// @Failure      403 {object} json.ErrorResponse "Caller is not a moderator"
// @Security     ParticipantAuth
// @Router       /meetings/{meetingId}/audit [get]
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.RequireParticipant(w, r)
	if !ok {
		return
	}
	if !actor.IsModerator() {
		json.WriteDomainError(w, domain.ErrForbidden)
		return
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			json.WriteBadRequestError(w, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLimit)
	}

	logs, err := h.repo.GetByMeetingID(r.Context(), chi.URLParam(r, "meetingId"), limit)
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}
	if logs == nil {
		logs = []domain.BreakoutAuditLog{}
	}

	_ = json.Write(w, http.StatusOK, logs)
}
