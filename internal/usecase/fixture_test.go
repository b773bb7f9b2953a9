package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/domain/participant"
	"github.com/riskibarqy/fantasy-draft/internal/domain/player"
	"github.com/riskibarqy/fantasy-draft/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-draft/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
)

var fixtureNow = time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

type sequenceIDGenerator struct {
	prefix string
	next   atomic.Int64
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	return fmt.Sprintf("%s-%03d", g.prefix, g.next.Add(1)), nil
}

type staticFeed struct {
	mu    sync.Mutex
	lines map[int][]playerstats.StatLine
	err   error
	calls atomic.Int32
}

func (f *staticFeed) GameweekStats(_ context.Context, gameweek int) ([]playerstats.StatLine, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]playerstats.StatLine(nil), f.lines[gameweek]...), nil
}

func (f *staticFeed) set(gameweek int, lines ...playerstats.StatLine) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lines == nil {
		f.lines = make(map[int][]playerstats.StatLine)
	}
	for i := range lines {
		lines[i].Gameweek = gameweek
	}
	f.lines[gameweek] = lines
}

// testEnv wires every service over one in-memory store.
type testEnv struct {
	store       *memory.Store
	feed        *staticFeed
	drafts      *DraftService
	chips       *ChipService
	scoring     *ScoringService
	leaderboard *LeaderboardService
	players     *PlayerService
}

const testAdmin = "admin"

func newTestEnv(t *testing.T, participantIDs []string, playerCount int, autoSub bool) *testEnv {
	t.Helper()

	players := make([]player.Player, 0, playerCount)
	for i := 1; i <= playerCount; i++ {
		players = append(players, player.Player{
			ID:        fmt.Sprintf("p%d", i),
			Name:      fmt.Sprintf("Player %d", i),
			Position:  player.PositionMidfielder,
			Price:     50,
			Available: true,
		})
	}
	participants := []participant.Participant{{ID: testAdmin, Name: "Admin", IsActive: true, IsAdmin: true}}
	for _, id := range participantIDs {
		participants = append(participants, participant.Participant{ID: id, Name: "Manager " + id, IsActive: true})
	}

	store := memory.NewSeededStore(players, participants, nil)
	draftRepo := memory.NewDraftRepository(store)
	playerRepo := memory.NewPlayerRepository(store)
	participantRepo := memory.NewParticipantRepository(store)
	chipRepo := memory.NewChipRepository(store)
	scoreRepo := memory.NewScoreRepository(store)
	logger := logging.NewNop()
	feed := &staticFeed{}

	env := &testEnv{
		store:       store,
		feed:        feed,
		drafts:      NewDraftService(DefaultDraftID, draftRepo, playerRepo, participantRepo, &sequenceIDGenerator{prefix: "alloc"}, logger),
		chips:       NewChipService(DefaultDraftID, chipRepo, draftRepo, participantRepo, &sequenceIDGenerator{prefix: "chip"}, logger),
		leaderboard: NewLeaderboardService(DefaultDraftID, draftRepo, participantRepo, scoreRepo),
		players:     NewPlayerService(playerRepo),
		scoring: NewScoringService(
			DefaultDraftID,
			draftRepo,
			chipRepo,
			scoreRepo,
			memory.NewSelectionRepository(store),
			memory.NewCalendarRepository(store),
			feed,
			ScoringConfig{AutoSubstitute: autoSub, Workers: 2},
			logger,
		),
	}
	env.setNow(fixtureNow)
	return env
}

func (e *testEnv) setNow(now time.Time) {
	clock := func() time.Time { return now }
	e.drafts.now = clock
	e.chips.now = clock
	e.scoring.now = clock
}

// startDraft configures and starts a fixed-order draft.
func (e *testEnv) startDraft(t *testing.T, order []string, quota int) draft.State {
	t.Helper()

	if _, err := e.drafts.Configure(t.Context(), ConfigureDraftInput{Order: order, OrderMode: draft.OrderModeFixed, Quota: quota}); err != nil {
		t.Fatalf("configure draft: %v", err)
	}
	state, err := e.drafts.Start(t.Context(), testAdmin)
	if err != nil {
		t.Fatalf("start draft: %v", err)
	}
	return state
}

func (e *testEnv) mustAllocate(t *testing.T, participantID, playerID string) {
	t.Helper()

	if _, err := e.drafts.Allocate(t.Context(), AllocateInput{ParticipantID: participantID, PlayerID: playerID}); err != nil {
		t.Fatalf("allocate %s to %s: %v", playerID, participantID, err)
	}
}

func participantInactive(id string) participant.Participant {
	return participant.Participant{ID: id, Name: "Manager " + id, IsActive: false}
}
