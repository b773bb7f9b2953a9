package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/fantasy-draft/internal/domain/chip"
	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-draft/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
	"github.com/riskibarqy/fantasy-draft/internal/platform/resilience"
)

const (
	defaultScoringWorkers = 4
	selectionLoadLimit    = 8
)

type ScoringConfig struct {
	AutoSubstitute bool
	Workers        int
}

type SetSelectionInput struct {
	ParticipantID string
	Gameweek      int
	CaptainID     string
	ViceCaptainID string
	BenchID       string
}

// GameweekResult is one gameweek's outcome within a range recompute.
type GameweekResult struct {
	Gameweek int
	Scores   []scoring.GameweekScore
	Err      error
}

type ScoringService struct {
	draftID       string
	draftRepo     draft.Repository
	chipRepo      chip.Repository
	scoreRepo     scoring.ScoreRepository
	selectionRepo scoring.SelectionRepository
	calendarRepo  scoring.CalendarRepository
	feed          playerstats.Feed
	cfg           ScoringConfig
	logger        *logging.Logger
	now           func() time.Time
	computeLocks  resilience.KeyedLock
}

// statsInvalidator is implemented by feeds that cache gameweek loads.
type statsInvalidator interface {
	Invalidate(ctx context.Context, gameweek int)
}

func NewScoringService(
	draftID string,
	draftRepo draft.Repository,
	chipRepo chip.Repository,
	scoreRepo scoring.ScoreRepository,
	selectionRepo scoring.SelectionRepository,
	calendarRepo scoring.CalendarRepository,
	feed playerstats.Feed,
	cfg ScoringConfig,
	logger *logging.Logger,
) *ScoringService {
	if strings.TrimSpace(draftID) == "" {
		draftID = DefaultDraftID
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultScoringWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &ScoringService{
		draftID:       draftID,
		draftRepo:     draftRepo,
		chipRepo:      chipRepo,
		scoreRepo:     scoreRepo,
		selectionRepo: selectionRepo,
		calendarRepo:  calendarRepo,
		feed:          feed,
		cfg:           cfg,
		logger:        logger,
		now:           time.Now,
	}
}

// ComputeGameweek recomputes and replaces every participant's row for
// gameweek. Calls for the same gameweek run one after another, each from
// its own snapshot.
func (s *ScoringService) ComputeGameweek(ctx context.Context, gameweek int) ([]scoring.GameweekScore, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ComputeGameweek")
	defer span.End()

	if gameweek < 1 {
		return nil, fmt.Errorf("%w: gameweek must be at least 1", ErrInvalidInput)
	}

	unlock, err := s.computeLocks.Lock(ctx, "scoring:compute:"+strconv.Itoa(gameweek))
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.computeGameweekOnce(ctx, gameweek)
}

func (s *ScoringService) computeGameweekOnce(ctx context.Context, gameweek int) ([]scoring.GameweekScore, error) {
	breakdowns, err := s.evaluate(ctx, gameweek)
	if err != nil {
		return nil, err
	}

	scores := make([]scoring.GameweekScore, 0, len(breakdowns))
	for _, b := range breakdowns {
		scores = append(scores, b.Score)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.scoreRepo.ReplaceGameweek(ctx, gameweek, scores); err != nil {
		return nil, fmt.Errorf("replace gameweek=%d scores: %w", gameweek, err)
	}

	s.logger.InfoContext(ctx, "gameweek scores committed",
		"gameweek", gameweek,
		"participants", len(scores),
	)
	return scores, nil
}

// RecomputeRange recomputes gameweeks from..to on a bounded worker pool.
// A failing gameweek is reported in its result and does not stop the others.
func (s *ScoringService) RecomputeRange(ctx context.Context, from, to int) ([]GameweekResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.RecomputeRange")
	defer span.End()

	if from < 1 || to < from {
		return nil, fmt.Errorf("%w: invalid gameweek range %d..%d", ErrInvalidInput, from, to)
	}

	workers := s.cfg.Workers
	if count := to - from + 1; count < workers {
		workers = count
	}
	workerPool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	results := make([]GameweekResult, to-from+1)
	var wg sync.WaitGroup
	for gameweek := from; gameweek <= to; gameweek++ {
		gameweek := gameweek
		wg.Add(1)
		if err := workerPool.Submit(func() {
			defer wg.Done()
			scores, err := s.ComputeGameweek(ctx, gameweek)
			results[gameweek-from] = GameweekResult{Gameweek: gameweek, Scores: scores, Err: err}
		}); err != nil {
			wg.Done()
			results[gameweek-from] = GameweekResult{Gameweek: gameweek, Err: fmt.Errorf("submit gameweek=%d: %w", gameweek, err)}
		}
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.logger.InfoContext(ctx, "gameweek range recomputed",
		"from", from,
		"to", to,
		"workers", workers,
		"failed", failed,
	)
	return results, nil
}

// Breakdown returns the per-player view of a participant's gameweek without
// committing anything.
func (s *ScoringService) Breakdown(ctx context.Context, participantID string, gameweek int) (scoring.Breakdown, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.Breakdown")
	defer span.End()

	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return scoring.Breakdown{}, fmt.Errorf("%w: participant id is required", ErrInvalidInput)
	}
	if gameweek < 1 {
		return scoring.Breakdown{}, fmt.Errorf("%w: gameweek must be at least 1", ErrInvalidInput)
	}

	breakdowns, err := s.evaluate(ctx, gameweek)
	if err != nil {
		return scoring.Breakdown{}, err
	}
	for _, b := range breakdowns {
		if b.ParticipantID == participantID {
			return b, nil
		}
	}
	return scoring.Breakdown{}, fmt.Errorf("%w: participant %s is not in the draft", ErrNotFound, participantID)
}

// ListGameweek returns the committed rows for gameweek.
func (s *ScoringService) ListGameweek(ctx context.Context, gameweek int) ([]scoring.GameweekScore, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ListGameweek")
	defer span.End()

	if gameweek < 1 {
		return nil, fmt.Errorf("%w: gameweek must be at least 1", ErrInvalidInput)
	}

	scores, err := s.scoreRepo.ListByGameweek(ctx, gameweek)
	if err != nil {
		return nil, fmt.Errorf("list gameweek=%d scores: %w", gameweek, err)
	}
	return scores, nil
}

// SetSelection stores a captaincy and bench choice effective from gameweek.
func (s *ScoringService) SetSelection(ctx context.Context, input SetSelectionInput) (scoring.Selection, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.SetSelection")
	defer span.End()

	input.ParticipantID = strings.TrimSpace(input.ParticipantID)
	if input.ParticipantID == "" {
		return scoring.Selection{}, fmt.Errorf("%w: participant id is required", ErrInvalidInput)
	}
	if input.Gameweek < 1 {
		return scoring.Selection{}, fmt.Errorf("%w: gameweek must be at least 1", ErrInvalidInput)
	}

	live, err := s.draftRepo.ListLiveAllocations(ctx, s.draftID)
	if err != nil {
		return scoring.Selection{}, fmt.Errorf("list live allocations: %w", err)
	}
	squad := squadOf(live, input.ParticipantID)

	selection := scoring.Selection{
		ParticipantID: input.ParticipantID,
		Gameweek:      input.Gameweek,
		CaptainID:     strings.TrimSpace(input.CaptainID),
		ViceCaptainID: strings.TrimSpace(input.ViceCaptainID),
		BenchID:       strings.TrimSpace(input.BenchID),
		UpdatedAt:     s.now().UTC(),
	}
	if err := scoring.ValidateSelection(selection, squad); err != nil {
		return scoring.Selection{}, err
	}

	if err := s.selectionRepo.Upsert(ctx, selection); err != nil {
		return scoring.Selection{}, fmt.Errorf("upsert selection: %w", err)
	}

	s.logger.InfoContext(ctx, "selection saved",
		"participant_id", selection.ParticipantID,
		"gameweek", selection.Gameweek,
		"captain_id", selection.CaptainID,
		"vice_captain_id", selection.ViceCaptainID,
		"bench_id", selection.BenchID,
	)
	return selection, nil
}

// evaluate runs the full calculation for gameweek and returns one breakdown
// per participant in draft order, chip adjustments included.
func (s *ScoringService) evaluate(ctx context.Context, gameweek int) ([]scoring.Breakdown, error) {
	state, exists, err := s.draftRepo.GetState(ctx, s.draftID)
	if err != nil {
		return nil, fmt.Errorf("get draft state: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: draft=%s", ErrNotFound, s.draftID)
	}

	lines, err := s.feed.GameweekStats(ctx, gameweek)
	if err != nil {
		return nil, crerr.Wrapf(crerr.Mark(err, ErrFeedDataUnavailable), "fetch stats gameweek=%d", gameweek)
	}
	if len(lines) == 0 {
		s.invalidateStats(ctx, gameweek)
		return nil, fmt.Errorf("%w: no stats for gameweek=%d", ErrFeedDataUnavailable, gameweek)
	}
	stats := playerstats.Index(lines)

	squads, err := s.squadsAsOf(ctx, gameweek)
	if err != nil {
		return nil, err
	}

	selections, err := s.loadSelections(ctx, state.Order, gameweek)
	if err != nil {
		return nil, err
	}

	effects, err := s.chipRepo.ListEffectsByGameweek(ctx, gameweek)
	if err != nil {
		return nil, fmt.Errorf("list chip effects gameweek=%d: %w", gameweek, err)
	}

	cfg := scoring.Config{AutoSubstitute: s.cfg.AutoSubstitute}
	breakdowns := make([]scoring.Breakdown, 0, len(state.Order))
	for i, participantID := range state.Order {
		squad := squads[participantID]
		sel, defaulted := scoring.EffectiveSelection(participantID, gameweek, selections[i].selection, selections[i].found, squad, state.Quota)

		b, err := scoring.Calculate(participantID, gameweek, squad, sel, stats, cfg)
		if err != nil {
			if errors.Is(err, scoring.ErrStatMissing) {
				s.invalidateStats(ctx, gameweek)
				return nil, fmt.Errorf("%w: %v", ErrFeedDataUnavailable, err)
			}
			return nil, fmt.Errorf("calculate participant=%s gameweek=%d: %w", participantID, gameweek, err)
		}
		b.DefaultSelection = defaulted
		breakdowns = append(breakdowns, b)
	}

	ledger := scoring.NewLedger(breakdowns, stats)
	for i := range breakdowns {
		breakdowns[i].Score = scoring.ApplyEffects(breakdowns[i], effects, ledger)
	}
	return breakdowns, nil
}

// invalidateStats drops a cached incomplete load so a retry refetches it.
func (s *ScoringService) invalidateStats(ctx context.Context, gameweek int) {
	if inv, ok := s.feed.(statsInvalidator); ok {
		inv.Invalidate(ctx, gameweek)
		s.logger.DebugContext(ctx, "cached gameweek stats dropped", "gameweek", gameweek)
	}
}

// squadsAsOf resolves each participant's squad at the gameweek deadline.
// Without a calendar entry the current live squad is used.
func (s *ScoringService) squadsAsOf(ctx context.Context, gameweek int) (map[string][]scoring.SquadMember, error) {
	allocations, err := s.draftRepo.ListAllocations(ctx, s.draftID)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	week, scheduled, err := s.calendarRepo.GetGameweek(ctx, gameweek)
	if err != nil {
		return nil, fmt.Errorf("get gameweek=%d calendar: %w", gameweek, err)
	}

	out := make(map[string][]scoring.SquadMember)
	for _, a := range allocations {
		held := a.Live()
		if scheduled {
			held = a.HeldAt(week.DeadlineAt)
		}
		if !held {
			continue
		}
		out[a.ParticipantID] = append(out[a.ParticipantID], scoring.SquadMember{
			PlayerID:    a.PlayerID,
			OverallPick: a.OverallPick,
		})
	}
	for participantID, squad := range out {
		out[participantID] = scoring.SortSquad(squad)
	}
	return out, nil
}

type loadedSelection struct {
	selection scoring.Selection
	found     bool
}

func (s *ScoringService) loadSelections(ctx context.Context, order []string, gameweek int) ([]loadedSelection, error) {
	out := make([]loadedSelection, len(order))
	p := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(selectionLoadLimit)
	for i, participantID := range order {
		i, participantID := i, participantID
		p.Go(func(ctx context.Context) error {
			sel, found, err := s.selectionRepo.GetEffective(ctx, participantID, gameweek)
			if err != nil {
				return fmt.Errorf("get selection participant=%s gameweek=%d: %w", participantID, gameweek, err)
			}
			out[i] = loadedSelection{selection: sel, found: found}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func squadOf(allocations []draft.Allocation, participantID string) []scoring.SquadMember {
	out := make([]scoring.SquadMember, 0)
	for _, a := range allocations {
		if a.ParticipantID == participantID {
			out = append(out, scoring.SquadMember{PlayerID: a.PlayerID, OverallPick: a.OverallPick})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OverallPick < out[j].OverallPick })
	return out
}
