package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/domain/participant"
	"github.com/riskibarqy/fantasy-draft/internal/domain/player"
	idgen "github.com/riskibarqy/fantasy-draft/internal/platform/id"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
)

// DefaultDraftID names the single draft this service drives.
const DefaultDraftID = "main"

type ConfigureDraftInput struct {
	Order     []string
	OrderMode draft.OrderMode
	Quota     int
}

type AllocateInput struct {
	ParticipantID string
	PlayerID      string
}

type DeallocateInput struct {
	ActorID       string
	ParticipantID string
	PlayerID      string
}

type DraftService struct {
	draftID         string
	draftRepo       draft.Repository
	playerRepo      player.Repository
	participantRepo participant.Repository
	idGen           idgen.Generator
	logger          *logging.Logger
	now             func() time.Time
}

func NewDraftService(
	draftID string,
	draftRepo draft.Repository,
	playerRepo player.Repository,
	participantRepo participant.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
) *DraftService {
	if strings.TrimSpace(draftID) == "" {
		draftID = DefaultDraftID
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &DraftService{
		draftID:         draftID,
		draftRepo:       draftRepo,
		playerRepo:      playerRepo,
		participantRepo: participantRepo,
		idGen:           idGen,
		logger:          logger,
		now:             time.Now,
	}
}

// Configure creates the pending draft. It runs once per draft.
func (s *DraftService) Configure(ctx context.Context, input ConfigureDraftInput) (draft.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.Configure")
	defer span.End()

	quota := input.Quota
	if quota == 0 {
		quota = draft.DefaultQuota
	}
	state, err := draft.NewState(s.draftID, input.Order, input.OrderMode, quota, s.now().UTC())
	if err != nil {
		return draft.State{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if _, exists, err := s.draftRepo.GetState(ctx, s.draftID); err != nil {
		return draft.State{}, fmt.Errorf("get draft state: %w", err)
	} else if exists {
		return draft.State{}, fmt.Errorf("%w: draft=%s", draft.ErrAlreadyConfigured, s.draftID)
	}

	if err := s.draftRepo.CreateState(ctx, state); err != nil {
		return draft.State{}, fmt.Errorf("create draft state: %w", err)
	}

	s.logger.InfoContext(ctx, "draft configured",
		"draft_id", state.ID,
		"participants", len(state.Order),
		"order_mode", string(state.OrderMode),
		"quota", state.Quota,
	)
	return state, nil
}

// Start moves the draft from pending to in progress once every participant in
// the order is registered and active.
func (s *DraftService) Start(ctx context.Context, actorID string) (draft.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.Start")
	defer span.End()

	if _, err := requireAdmin(ctx, s.participantRepo, actorID); err != nil {
		return draft.State{}, err
	}

	state, err := s.loadState(ctx)
	if err != nil {
		return draft.State{}, err
	}
	if state.Phase != draft.PhasePending {
		return draft.State{}, fmt.Errorf("%w: phase=%s", draft.ErrAlreadyStarted, state.Phase)
	}

	registered, err := s.participantRepo.ListByIDs(ctx, state.Order)
	if err != nil {
		return draft.State{}, fmt.Errorf("list draft participants: %w", err)
	}
	active := make(map[string]struct{}, len(registered))
	for _, p := range registered {
		if p.IsActive {
			active[p.ID] = struct{}{}
		}
	}
	for _, participantID := range state.Order {
		if _, ok := active[participantID]; !ok {
			return draft.State{}, fmt.Errorf("%w: participant %s is not registered or inactive", ErrInvalidInput, participantID)
		}
	}

	available, err := s.playerRepo.CountAvailable(ctx)
	if err != nil {
		return draft.State{}, fmt.Errorf("count available players: %w", err)
	}

	next, err := state.Start(available, s.now().UTC())
	if err != nil {
		return draft.State{}, err
	}
	if err := s.draftRepo.SaveState(ctx, next, state.Version); err != nil {
		return draft.State{}, mapDraftWriteError(err)
	}

	s.logger.InfoContext(ctx, "draft started",
		"draft_id", next.ID,
		"phase", string(next.Phase),
		"available_players", available,
	)
	return next, nil
}

// Allocate assigns a player to the participant holding the turn. The commit is
// conditional on the state version read here.
func (s *DraftService) Allocate(ctx context.Context, input AllocateInput) (draft.Allocation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.Allocate")
	defer span.End()

	input.ParticipantID = strings.TrimSpace(input.ParticipantID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	if input.ParticipantID == "" {
		return draft.Allocation{}, fmt.Errorf("%w: participant id is required", ErrInvalidInput)
	}
	if input.PlayerID == "" {
		return draft.Allocation{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	state, exists, err := s.draftRepo.GetState(ctx, s.draftID)
	if err != nil {
		return draft.Allocation{}, fmt.Errorf("get draft state: %w", err)
	}
	if !exists {
		return draft.Allocation{}, fmt.Errorf("%w: draft %s is not configured", draft.ErrNotInProgress, s.draftID)
	}
	if err := state.CheckTurn(input.ParticipantID); err != nil {
		return draft.Allocation{}, fmt.Errorf("allocate player=%s participant=%s: %w", input.PlayerID, input.ParticipantID, err)
	}

	p, exists, err := s.playerRepo.GetByID(ctx, input.PlayerID)
	if err != nil {
		return draft.Allocation{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return draft.Allocation{}, fmt.Errorf("%w: player=%s", ErrNotFound, input.PlayerID)
	}
	if !p.Available {
		return draft.Allocation{}, fmt.Errorf("%w: player=%s", draft.ErrPlayerUnavailable, input.PlayerID)
	}
	if _, held, err := s.draftRepo.GetLiveAllocationByPlayer(ctx, s.draftID, input.PlayerID); err != nil {
		return draft.Allocation{}, fmt.Errorf("get live allocation: %w", err)
	} else if held {
		return draft.Allocation{}, fmt.Errorf("%w: player=%s", draft.ErrPlayerUnavailable, input.PlayerID)
	}

	available, err := s.playerRepo.CountAvailable(ctx)
	if err != nil {
		return draft.Allocation{}, fmt.Errorf("count available players: %w", err)
	}

	allocationID, err := s.idGen.NewID()
	if err != nil {
		return draft.Allocation{}, fmt.Errorf("generate allocation id: %w", err)
	}

	now := s.now().UTC()
	round, pick, overall := state.NextPick()
	allocation := draft.Allocation{
		ID:            allocationID,
		DraftID:       s.draftID,
		PlayerID:      input.PlayerID,
		ParticipantID: input.ParticipantID,
		Round:         round,
		Pick:          pick,
		OverallPick:   overall,
		AllocatedAt:   now,
	}
	next := state.AfterAllocation(input.ParticipantID, available-1, now)

	if err := ctx.Err(); err != nil {
		return draft.Allocation{}, err
	}
	if err := s.draftRepo.CommitAllocation(ctx, next, state.Version, allocation); err != nil {
		return draft.Allocation{}, mapDraftWriteError(err)
	}

	s.logger.InfoContext(ctx, "draft allocation committed",
		"draft_id", s.draftID,
		"participant_id", allocation.ParticipantID,
		"player_id", allocation.PlayerID,
		"round", allocation.Round,
		"overall_pick", allocation.OverallPick,
		"phase", string(next.Phase),
	)
	return allocation, nil
}

// Deallocate is the admin correction path. It restores availability and the
// participant's slot but leaves the turn pointer and phase alone.
func (s *DraftService) Deallocate(ctx context.Context, input DeallocateInput) (draft.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.Deallocate")
	defer span.End()

	if _, err := requireAdmin(ctx, s.participantRepo, input.ActorID); err != nil {
		return draft.State{}, err
	}
	input.ParticipantID = strings.TrimSpace(input.ParticipantID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	if input.ParticipantID == "" || input.PlayerID == "" {
		return draft.State{}, fmt.Errorf("%w: participant id and player id are required", ErrInvalidInput)
	}

	state, err := s.loadState(ctx)
	if err != nil {
		return draft.State{}, err
	}

	allocation, held, err := s.draftRepo.GetLiveAllocationByPlayer(ctx, s.draftID, input.PlayerID)
	if err != nil {
		return draft.State{}, fmt.Errorf("get live allocation: %w", err)
	}
	if !held || allocation.ParticipantID != input.ParticipantID {
		return draft.State{}, fmt.Errorf("%w: no live allocation of player=%s to participant=%s", ErrNotFound, input.PlayerID, input.ParticipantID)
	}

	next := state.AfterRelease(input.ParticipantID, s.now().UTC())
	if err := ctx.Err(); err != nil {
		return draft.State{}, err
	}
	if err := s.draftRepo.ReleaseAllocation(ctx, next, state.Version, allocation.ID); err != nil {
		return draft.State{}, mapDraftWriteError(err)
	}

	s.logger.InfoContext(ctx, "draft allocation released",
		"draft_id", s.draftID,
		"participant_id", input.ParticipantID,
		"player_id", input.PlayerID,
		"allocation_id", allocation.ID,
	)
	return next, nil
}

func (s *DraftService) State(ctx context.Context) (draft.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.State")
	defer span.End()

	return s.loadState(ctx)
}

// Squad returns the participant's live allocations by overall pick.
func (s *DraftService) Squad(ctx context.Context, participantID string) ([]draft.Allocation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.Squad")
	defer span.End()

	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return nil, fmt.Errorf("%w: participant id is required", ErrInvalidInput)
	}

	allocations, err := s.draftRepo.ListLiveAllocations(ctx, s.draftID)
	if err != nil {
		return nil, fmt.Errorf("list live allocations: %w", err)
	}
	out := make([]draft.Allocation, 0, len(allocations))
	for _, a := range allocations {
		if a.ParticipantID == participantID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ListAllocations returns the full pick history, released picks included.
func (s *DraftService) ListAllocations(ctx context.Context) ([]draft.Allocation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.ListAllocations")
	defer span.End()

	allocations, err := s.draftRepo.ListAllocations(ctx, s.draftID)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	return allocations, nil
}

func (s *DraftService) loadState(ctx context.Context) (draft.State, error) {
	state, exists, err := s.draftRepo.GetState(ctx, s.draftID)
	if err != nil {
		return draft.State{}, fmt.Errorf("get draft state: %w", err)
	}
	if !exists {
		return draft.State{}, fmt.Errorf("%w: draft=%s", ErrNotFound, s.draftID)
	}
	return state, nil
}

func mapDraftWriteError(err error) error {
	switch {
	case errors.Is(err, draft.ErrVersionConflict):
		return fmt.Errorf("%w: %w", ErrConcurrentModification, err)
	case errors.Is(err, draft.ErrPlayerUnavailable):
		return err
	default:
		return fmt.Errorf("commit draft change: %w", err)
	}
}
