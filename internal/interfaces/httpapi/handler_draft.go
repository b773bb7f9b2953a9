package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	availableOnly, _ := strconv.ParseBool(r.URL.Query().Get("available"))
	players, err := h.playerService.ListPlayers(ctx, availableOnly)
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerDTO, 0, len(players))
	for _, p := range players {
		items = append(items, playerToDTO(p))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDraft")
	defer span.End()

	state, err := h.draftService.State(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get draft state failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, draftStateToDTO(state))
}

func (h *Handler) StartDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartDraft")
	defer span.End()

	actorID, err := callerID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	state, err := h.draftService.Start(ctx, actorID)
	if err != nil {
		h.logger.WarnContext(ctx, "start draft failed", "actor_id", actorID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, draftStateToDTO(state))
}

func (h *Handler) Allocate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Allocate")
	defer span.End()

	participantID, err := callerID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req allocateRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	allocation, err := h.draftService.Allocate(ctx, usecase.AllocateInput{
		ParticipantID: participantID,
		PlayerID:      strings.TrimSpace(req.PlayerID),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "allocate failed",
			"participant_id", participantID,
			"player_id", req.PlayerID,
			"kind", string(usecase.KindOf(err)),
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, allocationToDTO(allocation))
}

func (h *Handler) Deallocate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Deallocate")
	defer span.End()

	actorID, err := callerID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	req := deallocateRequest{
		PlayerID:      strings.TrimSpace(r.PathValue("playerID")),
		ParticipantID: strings.TrimSpace(r.URL.Query().Get("participant_id")),
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	state, err := h.draftService.Deallocate(ctx, usecase.DeallocateInput{
		ActorID:       actorID,
		ParticipantID: req.ParticipantID,
		PlayerID:      req.PlayerID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "deallocate failed",
			"actor_id", actorID,
			"participant_id", req.ParticipantID,
			"player_id", req.PlayerID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, draftStateToDTO(state))
}

func (h *Handler) GetSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSquad")
	defer span.End()

	participantID := strings.TrimSpace(r.PathValue("participantID"))
	allocations, err := h.draftService.Squad(ctx, participantID)
	if err != nil {
		h.logger.WarnContext(ctx, "get squad failed", "participant_id", participantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]allocationDTO, 0, len(allocations))
	for _, a := range allocations {
		items = append(items, allocationToDTO(a))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListAllocations(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAllocations")
	defer span.End()

	allocations, err := h.draftService.ListAllocations(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list allocations failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]allocationDTO, 0, len(allocations))
	for _, a := range allocations {
		items = append(items, allocationToDTO(a))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}
