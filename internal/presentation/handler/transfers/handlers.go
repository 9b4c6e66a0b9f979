package transfers

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/breakout/internal/domain"
	"github.com/hilthontt/breakout/internal/infrastructure/json"
	"github.com/hilthontt/breakout/internal/infrastructure/validate"
	"github.com/hilthontt/breakout/internal/presentation/utils"
)

type Coordinator interface {
	BeginTransfer(ctx context.Context, actor domain.Participant, userID, fromMeetingID, toMeetingID string) (domain.AudioTransferRequest, error)
	TransferUser(ctx context.Context, actor domain.Participant, userID, fromMeetingID, toMeetingID string) (domain.AudioTransferRequest, error)
	TransferStatus(ctx context.Context, userID string) (domain.AudioTransferRequest, error)
	ConfirmTransfer(ctx context.Context, transferID string) error
	CancelTransfers(ctx context.Context, userID string) bool
}

// HeaderBridgeSecret authenticates the audio bridge on its callback.
const HeaderBridgeSecret = "X-Bridge-Secret"

type Handler struct {
	coordinator  Coordinator
	bridgeSecret []byte
}

// NewHandler wires the transfer routes. An empty bridgeSecret disables the
// confirmation callback.
func NewHandler(coordinator Coordinator, bridgeSecret string) *Handler {
	return &Handler{coordinator: coordinator, bridgeSecret: []byte(bridgeSecret)}
}

// TransferHandler godoc
// @Summary      Transfer audio
// @Description  Starts a two-phase audio handoff. Without wait the pending request is returned at once.
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        request body transferRequest true "Transfer parameters"
// @Success      200 {object} domain.AudioTransferRequest "Completed (wait=true)"
// @Success      202 {object} domain.AudioTransferRequest "Accepted"
// @Failure      400 {object} json.ErrorResponse "Invalid meeting IDs"
// @Failure      403 {object} json.ErrorResponse "Only moderators may move other users"
// @Failure      409 {object} json.ErrorResponse "Transfer already in progress or no audio leg"
// @Failure      504 {object} json.ErrorResponse "Audio bridge did not confirm in time"
// @Security     ParticipantAuth
// @Router       /transfers [post]
func (h *Handler) TransferHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.RequireParticipant(w, r)
	if !ok {
		return
	}

	var req transferRequest
	if err := json.Read(w, r, &req); err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}
	if req.UserID == "" {
		req.UserID = actor.UserID
	}

	if err := validate.All(
		validate.Check(validate.Identifier("userId"), req.UserID),
		validate.Check(validate.Identifier("fromMeetingId"), req.FromMeetingID),
		validate.Check(validate.Identifier("toMeetingId"), req.ToMeetingID),
	); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	if !req.Wait {
		transfer, err := h.coordinator.BeginTransfer(r.Context(), actor, req.UserID, req.FromMeetingID, req.ToMeetingID)
		if err != nil {
			json.WriteDomainError(w, err)
			return
		}
		_ = json.Write(w, http.StatusAccepted, transfer)
		return
	}

	transfer, err := h.coordinator.TransferUser(r.Context(), actor, req.UserID, req.FromMeetingID, req.ToMeetingID)
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}
	_ = json.Write(w, http.StatusOK, transfer)
}

// MyTransferHandler godoc
// @Summary      Get my last transfer
// @Description  Returns the caller's in-flight transfer or the last one that finished
// @Tags         transfers
// @Produce      json
// @Success      200 {object} domain.AudioTransferRequest
// @Failure      404 {object} json.ErrorResponse "No transfer recorded"
// @Security     ParticipantAuth
// @Router       /transfers/me [get]
func (h *Handler) MyTransferHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.RequireParticipant(w, r)
	if !ok {
		return
	}

	transfer, err := h.coordinator.TransferStatus(r.Context(), actor.UserID)
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}
	_ = json.Write(w, http.StatusOK, transfer)
}

// ConfirmTransferHandler godoc
// @Summary      Confirm a prepared audio leg
// @Description  Audio bridge callback: the reserved target leg is carrying audio. Only the bridge holding the shared secret may call it.
// @Tags         transfers
// @Param        transferId path string true "Transfer ID"
// @Param        X-Bridge-Secret header string true "Shared audio bridge secret"
// @Success      204
// @Failure      401 {object} json.ErrorResponse "Missing or wrong bridge secret"
// @Failure      403 {object} json.ErrorResponse "Bridge callback disabled"
// @Failure      404 {object} json.ErrorResponse "Transfer unknown or already finished"
// @Router       /transfers/{transferId}/confirm [post]
func (h *Handler) ConfirmTransferHandler(w http.ResponseWriter, r *http.Request) {
	if len(h.bridgeSecret) == 0 {
		json.WriteError(w, http.StatusForbidden, "forbidden", "audio bridge callback is disabled")
		return
	}
	if subtle.ConstantTimeCompare([]byte(r.Header.Get(HeaderBridgeSecret)), h.bridgeSecret) != 1 {
		json.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid bridge secret")
		return
	}

	if err := h.coordinator.ConfirmTransfer(r.Context(), chi.URLParam(r, "transferId")); err != nil {
		json.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelMyTransferHandler godoc
// @Summary      Cancel my transfer
// @Description  Stops the caller's in-flight transfer; the reserved leg is released and the current audio is kept
// @Tags         transfers
// @Produce      json
// @Success      200 {object} cancelResponse
// @Security     ParticipantAuth
// @Router       /transfers/me [delete]
func (h *Handler) CancelMyTransferHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.RequireParticipant(w, r)
	if !ok {
		return
	}

	_ = json.Write(w, http.StatusOK, cancelResponse{
		Cancelled: h.coordinator.CancelTransfers(r.Context(), actor.UserID),
	})
}
