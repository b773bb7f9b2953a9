package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	playerService      *usecase.PlayerService
	draftService       *usecase.DraftService
	chipService        *usecase.ChipService
	scoringService     *usecase.ScoringService
	leaderboardService *usecase.LeaderboardService
	scheduleService    *usecase.ScheduleService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	playerService *usecase.PlayerService,
	draftService *usecase.DraftService,
	chipService *usecase.ChipService,
	scoringService *usecase.ScoringService,
	leaderboardService *usecase.LeaderboardService,
	scheduleService *usecase.ScheduleService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		playerService:      playerService,
		draftService:       draftService,
		chipService:        chipService,
		scoringService:     scoringService,
		leaderboardService: leaderboardService,
		scheduleService:    scheduleService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeAndValidate(ctx context.Context, r *http.Request, payload any) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
	}
	if err := sonic.Unmarshal(raw, payload); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, payload)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func callerID(ctx context.Context) (string, error) {
	principal, ok := principalFromContext(ctx)
	if !ok || strings.TrimSpace(principal.ParticipantID) == "" {
		return "", fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return principal.ParticipantID, nil
}

func pathGameweek(r *http.Request) (int, error) {
	return parseGameweek(r.PathValue("gameweek"), "gameweek")
}

func parseGameweek(raw, field string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, field)
	}
	return value, nil
}
