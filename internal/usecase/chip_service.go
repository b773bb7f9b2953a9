package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-draft/internal/domain/chip"
	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/domain/participant"
	idgen "github.com/riskibarqy/fantasy-draft/internal/platform/id"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
)

type IssueChipInput struct {
	OwnerID       string
	Kind          chip.Kind
	StartGameweek int
	EndGameweek   int
}

type ConsumeChipInput struct {
	// ActorID, when set, must be the chip owner.
	ActorID  string
	ChipID   string
	Gameweek int
	Target   chip.Target
}

type ChipService struct {
	draftID         string
	chipRepo        chip.Repository
	draftRepo       draft.Repository
	participantRepo participant.Repository
	idGen           idgen.Generator
	logger          *logging.Logger
	now             func() time.Time
}

func NewChipService(
	draftID string,
	chipRepo chip.Repository,
	draftRepo draft.Repository,
	participantRepo participant.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
) *ChipService {
	if strings.TrimSpace(draftID) == "" {
		draftID = DefaultDraftID
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &ChipService{
		draftID:         draftID,
		chipRepo:        chipRepo,
		draftRepo:       draftRepo,
		participantRepo: participantRepo,
		idGen:           idGen,
		logger:          logger,
		now:             time.Now,
	}
}

// Issue grants a new unused chip to a participant.
func (s *ChipService) Issue(ctx context.Context, input IssueChipInput) (chip.Chip, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChipService.Issue")
	defer span.End()

	input.OwnerID = strings.TrimSpace(input.OwnerID)
	owner, exists, err := s.participantRepo.GetByID(ctx, input.OwnerID)
	if err != nil {
		return chip.Chip{}, fmt.Errorf("get chip owner: %w", err)
	}
	if !exists {
		return chip.Chip{}, fmt.Errorf("%w: participant=%s", ErrNotFound, input.OwnerID)
	}

	chipID, err := s.idGen.NewID()
	if err != nil {
		return chip.Chip{}, fmt.Errorf("generate chip id: %w", err)
	}
	c := chip.Chip{
		ID:            chipID,
		OwnerID:       owner.ID,
		Kind:          input.Kind,
		StartGameweek: input.StartGameweek,
		EndGameweek:   input.EndGameweek,
		Target:        chip.NoTarget(),
		CreatedAt:     s.now().UTC(),
	}
	if err := c.Validate(); err != nil {
		return chip.Chip{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.chipRepo.Create(ctx, c); err != nil {
		return chip.Chip{}, fmt.Errorf("create chip: %w", err)
	}

	s.logger.InfoContext(ctx, "chip issued",
		"chip_id", c.ID,
		"owner_id", c.OwnerID,
		"kind", string(c.Kind),
		"start_gameweek", c.StartGameweek,
		"end_gameweek", c.EndGameweek,
	)
	return c, nil
}

// Consume spends a chip for gameweek. Effects for every affected participant
// are stored with the chip in one conditional write.
func (s *ChipService) Consume(ctx context.Context, input ConsumeChipInput) (chip.Chip, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChipService.Consume")
	defer span.End()

	input.ChipID = strings.TrimSpace(input.ChipID)
	if input.ChipID == "" {
		return chip.Chip{}, fmt.Errorf("%w: chip id is required", ErrInvalidInput)
	}
	if input.Gameweek < 1 {
		return chip.Chip{}, fmt.Errorf("%w: gameweek must be at least 1", ErrInvalidInput)
	}

	c, exists, err := s.chipRepo.GetByID(ctx, input.ChipID)
	if err != nil {
		return chip.Chip{}, fmt.Errorf("get chip: %w", err)
	}
	if !exists {
		return chip.Chip{}, fmt.Errorf("%w: chip=%s", ErrNotFound, input.ChipID)
	}
	if actor := strings.TrimSpace(input.ActorID); actor != "" && actor != c.OwnerID {
		return chip.Chip{}, fmt.Errorf("%w: chip %s belongs to another participant", ErrForbidden, c.ID)
	}

	if err := c.CheckConsumable(input.Gameweek, input.Target); err != nil {
		return chip.Chip{}, fmt.Errorf("consume chip=%s: %w", c.ID, err)
	}

	holderID, err := s.resolveTarget(ctx, c, input.Target)
	if err != nil {
		return chip.Chip{}, err
	}

	consumed := c.Consumed(input.Gameweek, input.Target, s.now().UTC())
	effects := chip.Materialize(consumed, holderID)

	if err := ctx.Err(); err != nil {
		return chip.Chip{}, err
	}
	if err := s.chipRepo.MarkConsumed(ctx, consumed, effects); err != nil {
		return chip.Chip{}, fmt.Errorf("mark chip=%s consumed: %w", c.ID, err)
	}

	s.logger.InfoContext(ctx, "chip consumed",
		"chip_id", consumed.ID,
		"owner_id", consumed.OwnerID,
		"kind", string(consumed.Kind),
		"gameweek", consumed.ConsumedGameweek,
		"target_kind", string(consumed.Target.Kind()),
		"target_id", consumed.Target.ID(),
		"effects", len(effects),
	)
	return consumed, nil
}

// resolveTarget checks the target against the other aggregates and returns
// the holder of a targeted player.
func (s *ChipService) resolveTarget(ctx context.Context, c chip.Chip, target chip.Target) (string, error) {
	switch target.Kind() {
	case chip.TargetParticipant:
		if target.ID() == c.OwnerID {
			return "", fmt.Errorf("%w: chip owner cannot target themselves", chip.ErrInvalidTarget)
		}
		p, exists, err := s.participantRepo.GetByID(ctx, target.ID())
		if err != nil {
			return "", fmt.Errorf("get target participant: %w", err)
		}
		if !exists || !p.IsActive {
			return "", fmt.Errorf("%w: participant %s is unknown or inactive", chip.ErrInvalidTarget, target.ID())
		}
		return "", nil
	case chip.TargetPlayer:
		allocation, held, err := s.draftRepo.GetLiveAllocationByPlayer(ctx, s.draftID, target.ID())
		if err != nil {
			return "", fmt.Errorf("get target player allocation: %w", err)
		}
		if !held {
			return "", fmt.Errorf("%w: player %s is not drafted", chip.ErrInvalidTarget, target.ID())
		}
		if allocation.ParticipantID == c.OwnerID {
			return "", fmt.Errorf("%w: player %s already belongs to the chip owner", chip.ErrInvalidTarget, target.ID())
		}
		return allocation.ParticipantID, nil
	default:
		return "", nil
	}
}

func (s *ChipService) ListByOwner(ctx context.Context, ownerID string) ([]chip.Chip, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChipService.ListByOwner")
	defer span.End()

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}

	chips, err := s.chipRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list chips by owner: %w", err)
	}
	return chips, nil
}
