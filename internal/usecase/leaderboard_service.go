package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/domain/leaderboard"
	"github.com/riskibarqy/fantasy-draft/internal/domain/participant"
	"github.com/riskibarqy/fantasy-draft/internal/domain/scoring"
)

const leaderboardLoadLimit = 8

type LeaderboardService struct {
	draftID         string
	draftRepo       draft.Repository
	participantRepo participant.Repository
	scoreRepo       scoring.ScoreRepository
}

func NewLeaderboardService(
	draftID string,
	draftRepo draft.Repository,
	participantRepo participant.Repository,
	scoreRepo scoring.ScoreRepository,
) *LeaderboardService {
	if strings.TrimSpace(draftID) == "" {
		draftID = DefaultDraftID
	}
	return &LeaderboardService{
		draftID:         draftID,
		draftRepo:       draftRepo,
		participantRepo: participantRepo,
		scoreRepo:       scoreRepo,
	}
}

// Build derives the standings from stored gameweek rows on every call.
func (s *LeaderboardService) Build(ctx context.Context) ([]leaderboard.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Build")
	defer span.End()

	state, exists, err := s.draftRepo.GetState(ctx, s.draftID)
	if err != nil {
		return nil, fmt.Errorf("get draft state: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: draft=%s", ErrNotFound, s.draftID)
	}

	participants, err := s.participantRepo.ListByIDs(ctx, state.Order)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	rows := make([][]scoring.GameweekScore, len(state.Order))
	p := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(leaderboardLoadLimit)
	for i, participantID := range state.Order {
		i, participantID := i, participantID
		p.Go(func(ctx context.Context) error {
			scores, err := s.scoreRepo.ListByParticipant(ctx, participantID)
			if err != nil {
				return fmt.Errorf("list scores participant=%s: %w", participantID, err)
			}
			rows[i] = scores
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	all := make([]scoring.GameweekScore, 0)
	for _, r := range rows {
		all = append(all, r...)
	}
	return leaderboard.Build(state.Order, participants, all), nil
}
