package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

func (h *Handler) SetSelection(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetSelection")
	defer span.End()

	participantID, err := callerID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	gameweek, err := pathGameweek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req setSelectionRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	selection, err := h.scoringService.SetSelection(ctx, usecase.SetSelectionInput{
		ParticipantID: participantID,
		Gameweek:      gameweek,
		CaptainID:     strings.TrimSpace(req.CaptainID),
		ViceCaptainID: strings.TrimSpace(req.ViceCaptainID),
		BenchID:       strings.TrimSpace(req.BenchID),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "set selection failed",
			"participant_id", participantID,
			"gameweek", gameweek,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, selectionToDTO(selection))
}

func (h *Handler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetBreakdown")
	defer span.End()

	participantID, err := callerID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if requested := strings.TrimSpace(r.URL.Query().Get("participant_id")); requested != "" {
		participantID = requested
	}
	gameweek, err := pathGameweek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	breakdown, err := h.scoringService.Breakdown(ctx, participantID, gameweek)
	if err != nil {
		h.logger.WarnContext(ctx, "get breakdown failed",
			"participant_id", participantID,
			"gameweek", gameweek,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, breakdownToDTO(breakdown))
}

func (h *Handler) ListGameweekScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGameweekScores")
	defer span.End()

	gameweek, err := pathGameweek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	scores, err := h.scoringService.ListGameweek(ctx, gameweek)
	if err != nil {
		h.logger.WarnContext(ctx, "list gameweek scores failed", "gameweek", gameweek, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, scoresToDTO(scores))
}

func (h *Handler) ComputeGameweek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ComputeGameweek")
	defer span.End()

	gameweek, err := pathGameweek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	scores, err := h.scoringService.ComputeGameweek(ctx, gameweek)
	if err != nil {
		h.logger.WarnContext(ctx, "compute gameweek failed",
			"gameweek", gameweek,
			"kind", string(usecase.KindOf(err)),
			"retryable", usecase.IsRetryable(err),
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, scoresToDTO(scores))
}

func (h *Handler) RecomputeGameweeks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecomputeGameweeks")
	defer span.End()

	query := r.URL.Query()
	from, err := parseGameweek(query.Get("from"), "from")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	to, err := parseGameweek(query.Get("to"), "to")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	results, err := h.scoringService.RecomputeRange(ctx, from, to)
	if err != nil {
		h.logger.WarnContext(ctx, "recompute gameweeks failed", "from", from, "to", to, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameweekResultDTO, 0, len(results))
	for _, res := range results {
		item := gameweekResultDTO{Gameweek: res.Gameweek}
		if res.Err != nil {
			item.Error = res.Err.Error()
			item.Kind = string(usecase.KindOf(res.Err))
		} else {
			item.Scores = scoresToDTO(res.Scores)
		}
		items = append(items, item)
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

// ScheduleGameweek queues the delayed compute job for one gameweek.
func (h *Handler) ScheduleGameweek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScheduleGameweek")
	defer span.End()

	gameweek, err := pathGameweek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	job, err := h.scheduleService.ScheduleCompute(ctx, gameweek)
	if err != nil {
		h.logger.WarnContext(ctx, "schedule gameweek failed",
			"gameweek", gameweek,
			"kind", string(usecase.KindOf(err)),
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusAccepted, scheduledComputeToDTO(job))
}

func (h *Handler) ScheduleUpcoming(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScheduleUpcoming")
	defer span.End()

	jobs, err := h.scheduleService.ScheduleUpcoming(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "schedule upcoming gameweeks failed", "scheduled", len(jobs), "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]scheduledComputeDTO, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, scheduledComputeToDTO(job))
	}
	writeSuccess(ctx, w, http.StatusAccepted, items)
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	entries, err := h.leaderboardService.Build(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "build leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(entries))
}
