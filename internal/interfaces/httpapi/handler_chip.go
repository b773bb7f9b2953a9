package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/fantasy-draft/internal/domain/chip"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

func (h *Handler) ListMyChips(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyChips")
	defer span.End()

	ownerID, err := callerID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	chips, err := h.chipService.ListByOwner(ctx, ownerID)
	if err != nil {
		h.logger.WarnContext(ctx, "list chips failed", "owner_id", ownerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]chipDTO, 0, len(chips))
	for _, c := range chips {
		items = append(items, chipToDTO(c))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ConsumeChip(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ConsumeChip")
	defer span.End()

	actorID, err := callerID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req consumeChipRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	target, err := chip.TargetFrom(chip.TargetKind(strings.TrimSpace(req.TargetKind)), req.TargetID)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	chipID := strings.TrimSpace(r.PathValue("chipID"))
	consumed, err := h.chipService.Consume(ctx, usecase.ConsumeChipInput{
		ActorID:  actorID,
		ChipID:   chipID,
		Gameweek: req.Gameweek,
		Target:   target,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "consume chip failed",
			"actor_id", actorID,
			"chip_id", chipID,
			"gameweek", req.Gameweek,
			"kind", string(usecase.KindOf(err)),
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, chipToDTO(consumed))
}

// IssueChip is an internal operation; league admins grant chips through the job token.
func (h *Handler) IssueChip(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IssueChip")
	defer span.End()

	var req issueChipRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	issued, err := h.chipService.Issue(ctx, usecase.IssueChipInput{
		OwnerID:       strings.TrimSpace(req.OwnerID),
		Kind:          chip.Kind(strings.TrimSpace(req.Kind)),
		StartGameweek: req.StartGameweek,
		EndGameweek:   req.EndGameweek,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "issue chip failed", "owner_id", req.OwnerID, "kind", req.Kind, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, chipToDTO(issued))
}
