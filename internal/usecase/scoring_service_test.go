package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-draft/internal/domain/chip"
	"github.com/riskibarqy/fantasy-draft/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-draft/internal/domain/scoring"
)

func line(playerID string, minutes, points int) playerstats.StatLine {
	return playerstats.StatLine{PlayerID: playerID, Minutes: minutes, Points: points}
}

func TestScoringService_CaptainWithoutMinutesUsesVice(t *testing.T) {
	env := newTestEnv(t, []string{"A"}, 2, false)
	env.startDraft(t, []string{"A"}, 2)
	env.mustAllocate(t, "A", "p1")
	env.mustAllocate(t, "A", "p2")
	env.feed.set(1, line("p1", 0, 3), line("p2", 90, 8))

	scores, err := env.scoring.ComputeGameweek(t.Context(), 1)
	if err != nil {
		t.Fatalf("compute gameweek: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("expected one row, got %d", len(scores))
	}
	got := scores[0]
	if got.RawPoints != 11 || got.CaptainBonus != 8 || got.ChipAdjustment != 0 || got.FinalTotal != 19 {
		t.Fatalf("unexpected score: %+v", got)
	}
}

func TestScoringService_ComputeIsIdempotent(t *testing.T) {
	env := scoredEnv(t)
	ctx := t.Context()

	first, err := env.scoring.ComputeGameweek(ctx, 1)
	if err != nil {
		t.Fatalf("first compute: %v", err)
	}
	second, err := env.scoring.ComputeGameweek(ctx, 1)
	if err != nil {
		t.Fatalf("second compute: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("row count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("row %d changed: %+v vs %+v", i, first[i], second[i])
		}
	}

	stored, err := env.scoring.ListGameweek(ctx, 1)
	if err != nil {
		t.Fatalf("list gameweek: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected one stored row per participant, got %d", len(stored))
	}
}

func TestScoringService_ConcurrentComputeAgrees(t *testing.T) {
	env := scoredEnv(t)

	const callers = 8
	results := make([][]scoring.GameweekScore, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			scores, err := env.scoring.ComputeGameweek(context.Background(), 1)
			if err != nil {
				t.Errorf("compute: %v", err)
				return
			}
			results[i] = scores
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if len(results[i]) != len(results[0]) {
			t.Fatalf("caller %d saw %d rows, caller 0 saw %d", i, len(results[i]), len(results[0]))
		}
		for j := range results[i] {
			if results[i][j] != results[0][j] {
				t.Fatalf("caller %d row %d differs", i, j)
			}
		}
	}
}

func TestScoringService_FeedUnavailableCommitsNothing(t *testing.T) {
	env := scoredEnv(t)
	ctx := t.Context()

	env.feed.err = errors.New("upstream timeout")
	_, err := env.scoring.ComputeGameweek(ctx, 1)
	if KindOf(err) != KindFeedDataUnavailable || !IsRetryable(err) {
		t.Fatalf("expected retryable feed_data_unavailable, got %v", err)
	}
	env.feed.err = nil

	_, err = env.scoring.ComputeGameweek(ctx, 9)
	if KindOf(err) != KindFeedDataUnavailable {
		t.Fatalf("expected feed_data_unavailable for empty feed, got %v", err)
	}

	env.feed.set(2, line("p1", 90, 2))
	_, err = env.scoring.ComputeGameweek(ctx, 2)
	if KindOf(err) != KindFeedDataUnavailable {
		t.Fatalf("expected feed_data_unavailable for missing squad player, got %v", err)
	}

	for _, gameweek := range []int{1, 2, 9} {
		rows, _ := env.scoring.ListGameweek(ctx, gameweek)
		if len(rows) != 0 {
			t.Fatalf("gameweek %d: expected nothing committed, got %+v", gameweek, rows)
		}
	}
}

func TestScoringService_EmptySquadGetsZeroRow(t *testing.T) {
	env := newTestEnv(t, []string{"A", "B"}, 1, false)
	env.startDraft(t, []string{"A", "B"}, 1)
	env.mustAllocate(t, "A", "p1")
	env.feed.set(1, line("p1", 90, 6))

	scores, err := env.scoring.ComputeGameweek(t.Context(), 1)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	byParticipant := indexScores(scores)
	if byParticipant["B"] != (scoring.GameweekScore{ParticipantID: "B", Gameweek: 1}) {
		t.Fatalf("expected zero row for B, got %+v", byParticipant["B"])
	}
	if byParticipant["A"].FinalTotal != 12 {
		t.Fatalf("expected A to score 6 doubled, got %+v", byParticipant["A"])
	}
}

func TestScoringService_ChipEffectsApplied(t *testing.T) {
	env := scoredEnv(t)
	ctx := t.Context()

	triple, _ := env.chips.Issue(ctx, IssueChipInput{OwnerID: "A", Kind: chip.KindTripleCaptain, StartGameweek: 1, EndGameweek: 3})
	redirect, _ := env.chips.Issue(ctx, IssueChipInput{OwnerID: "B", Kind: chip.KindPointRedirect, StartGameweek: 1, EndGameweek: 3})
	if _, err := env.chips.Consume(ctx, ConsumeChipInput{ChipID: triple.ID, Gameweek: 1}); err != nil {
		t.Fatalf("consume triple captain: %v", err)
	}
	env.setNow(fixtureNow.Add(time.Minute))
	if _, err := env.chips.Consume(ctx, ConsumeChipInput{ChipID: redirect.ID, Gameweek: 1, Target: chip.ParticipantTarget("A")}); err != nil {
		t.Fatalf("consume redirect: %v", err)
	}

	scores, err := env.scoring.ComputeGameweek(ctx, 1)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	byParticipant := indexScores(scores)

	// A: p1 captain 10, p3 4, p5 benched. Triple captain +10, redirect -10.
	a := byParticipant["A"]
	if a.RawPoints != 14 || a.CaptainBonus != 10 || a.ChipAdjustment != 0 || a.FinalTotal != 24 {
		t.Fatalf("unexpected A score: %+v", a)
	}
	// B: p2 captain 2, p4 6, p6 benched. Redirect takes A's top scorer p1 (10).
	b := byParticipant["B"]
	if b.RawPoints != 8 || b.CaptainBonus != 2 || b.ChipAdjustment != 10 || b.FinalTotal != 20 {
		t.Fatalf("unexpected B score: %+v", b)
	}
}

func TestScoringService_SquadResolvedAtDeadline(t *testing.T) {
	env := scoredEnv(t)
	ctx := t.Context()

	env.store.PutGameweek(scoring.Gameweek{Number: 1, DeadlineAt: fixtureNow.Add(24 * time.Hour)})
	env.store.PutGameweek(scoring.Gameweek{Number: 2, DeadlineAt: fixtureNow.Add(8 * 24 * time.Hour)})

	env.setNow(fixtureNow.Add(48 * time.Hour))
	if _, err := env.drafts.Deallocate(ctx, DeallocateInput{ActorID: testAdmin, ParticipantID: "A", PlayerID: "p3"}); err != nil {
		t.Fatalf("deallocate: %v", err)
	}
	env.feed.set(2, line("p1", 90, 10), line("p2", 90, 2), line("p4", 90, 6), line("p5", 90, 1), line("p6", 90, 3))

	first, err := env.scoring.Breakdown(ctx, "A", 1)
	if err != nil {
		t.Fatalf("breakdown gameweek 1: %v", err)
	}
	if len(first.Players) != 3 {
		t.Fatalf("gameweek 1 must still include the released player, got %+v", first.Players)
	}

	second, err := env.scoring.Breakdown(ctx, "A", 2)
	if err != nil {
		t.Fatalf("breakdown gameweek 2: %v", err)
	}
	if len(second.Players) != 2 {
		t.Fatalf("gameweek 2 must exclude the released player, got %+v", second.Players)
	}
	if !second.DefaultSelection {
		t.Fatalf("expected default selection for gameweek 2")
	}
}

func TestScoringService_SetSelection(t *testing.T) {
	env := scoredEnv(t)
	ctx := t.Context()

	_, err := env.scoring.SetSelection(ctx, SetSelectionInput{ParticipantID: "A", Gameweek: 1, CaptainID: "p2"})
	if KindOf(err) != KindInvalidInput {
		t.Fatalf("expected invalid_input for foreign captain, got %v", err)
	}

	if _, err := env.scoring.SetSelection(ctx, SetSelectionInput{
		ParticipantID: "A",
		Gameweek:      1,
		CaptainID:     "p3",
		ViceCaptainID: "p5",
		BenchID:       "p1",
	}); err != nil {
		t.Fatalf("set selection: %v", err)
	}

	b, err := env.scoring.Breakdown(ctx, "A", 1)
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if b.DefaultSelection {
		t.Fatalf("expected stored selection to apply")
	}
	// p1 benched (10), p3 captain 4, p5 vice 1.
	if b.Score.RawPoints != 5 || b.Score.CaptainBonus != 4 {
		t.Fatalf("unexpected score: %+v", b.Score)
	}
}

func TestScoringService_RecomputeRangeReportsPerGameweek(t *testing.T) {
	env := scoredEnv(t)
	env.feed.set(2, line("p1", 90, 1), line("p2", 90, 1), line("p3", 90, 1), line("p4", 90, 1), line("p5", 90, 1), line("p6", 90, 1))

	results, err := env.scoring.RecomputeRange(t.Context(), 1, 3)
	if err != nil {
		t.Fatalf("recompute range: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected three results, got %d", len(results))
	}
	for _, r := range results[:2] {
		if r.Err != nil || len(r.Scores) != 2 {
			t.Fatalf("gameweek %d: unexpected result %+v", r.Gameweek, r)
		}
	}
	if results[2].Gameweek != 3 || KindOf(results[2].Err) != KindFeedDataUnavailable {
		t.Fatalf("expected gameweek 3 to fail on the feed, got %+v", results[2])
	}

	if _, err := env.scoring.RecomputeRange(t.Context(), 3, 1); KindOf(err) != KindInvalidInput {
		t.Fatalf("expected invalid_input for inverted range, got %v", err)
	}
}

// scoredEnv drafts A={p1,p3,p5} and B={p2,p4,p6} and loads gameweek 1 stats.
func scoredEnv(t *testing.T) *testEnv {
	t.Helper()

	env := newTestEnv(t, []string{"A", "B"}, 8, false)
	env.startDraft(t, []string{"A", "B"}, 3)
	for i, participantID := range []string{"A", "B", "A", "B", "A", "B"} {
		env.mustAllocate(t, participantID, playerName(i+1))
	}
	env.feed.set(1,
		line("p1", 90, 10),
		line("p2", 90, 2),
		line("p3", 90, 4),
		line("p4", 90, 6),
		line("p5", 90, 1),
		line("p6", 90, 3),
	)
	return env
}

func playerName(n int) string {
	return fmt.Sprintf("p%d", n)
}

func indexScores(scores []scoring.GameweekScore) map[string]scoring.GameweekScore {
	out := make(map[string]scoring.GameweekScore, len(scores))
	for _, s := range scores {
		out[s.ParticipantID] = s
	}
	return out
}

// gatedEffects holds the first effects read open until release is closed,
// after the snapshot has been taken.
type gatedEffects struct {
	chip.Repository
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedEffects(next chip.Repository) *gatedEffects {
	return &gatedEffects{Repository: next, entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedEffects) ListEffectsByGameweek(ctx context.Context, gameweek int) ([]chip.Effect, error) {
	effects, err := g.Repository.ListEffectsByGameweek(ctx, gameweek)
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return effects, err
}

func (g *gatedEffects) waitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("compute never reached the effects read")
	}
}

type computeResult struct {
	scores []scoring.GameweekScore
	err    error
}

func computeAsync(ctx context.Context, svc *ScoringService, gameweek int) <-chan computeResult {
	out := make(chan computeResult, 1)
	go func() {
		scores, err := svc.ComputeGameweek(ctx, gameweek)
		out <- computeResult{scores: scores, err: err}
	}()
	return out
}

func TestScoringService_ComputeAfterChipConsumedDuringRunSeesChip(t *testing.T) {
	env := scoredEnv(t)
	ctx := t.Context()

	triple, err := env.chips.Issue(ctx, IssueChipInput{OwnerID: "A", Kind: chip.KindTripleCaptain, StartGameweek: 1, EndGameweek: 3})
	if err != nil {
		t.Fatalf("issue chip: %v", err)
	}
	gate := newGatedEffects(env.scoring.chipRepo)
	env.scoring.chipRepo = gate

	first := computeAsync(ctx, env.scoring, 1)
	gate.waitEntered(t)

	if _, err := env.chips.Consume(ctx, ConsumeChipInput{ChipID: triple.ID, Gameweek: 1}); err != nil {
		t.Fatalf("consume triple captain: %v", err)
	}
	second := computeAsync(ctx, env.scoring, 1)
	time.Sleep(20 * time.Millisecond)
	close(gate.release)

	a := <-first
	if a.err != nil {
		t.Fatalf("first compute: %v", a.err)
	}
	if got := indexScores(a.scores)["A"].ChipAdjustment; got != 0 {
		t.Fatalf("first run read effects before the chip, got adjustment %d", got)
	}

	b := <-second
	if b.err != nil {
		t.Fatalf("second compute: %v", b.err)
	}
	row := indexScores(b.scores)["A"]
	if row.ChipAdjustment != 10 || row.FinalTotal != 34 {
		t.Fatalf("expected triple captain in the second run, got %+v", row)
	}

	stored, err := env.scoring.ListGameweek(ctx, 1)
	if err != nil {
		t.Fatalf("list gameweek: %v", err)
	}
	if got := indexScores(stored)["A"]; got != row {
		t.Fatalf("expected the later run to be stored, got %+v", got)
	}
}

func TestScoringService_CancelledComputeDoesNotFailQueuedCaller(t *testing.T) {
	env := scoredEnv(t)
	gate := newGatedEffects(env.scoring.chipRepo)
	env.scoring.chipRepo = gate

	firstCtx, cancel := context.WithCancel(t.Context())
	first := computeAsync(firstCtx, env.scoring, 1)
	gate.waitEntered(t)

	second := computeAsync(t.Context(), env.scoring, 1)
	time.Sleep(20 * time.Millisecond)
	cancel()
	close(gate.release)

	if a := <-first; !errors.Is(a.err, context.Canceled) {
		t.Fatalf("expected the cancelled caller to fail, got %v", a.err)
	}
	b := <-second
	if b.err != nil || len(b.scores) != 2 {
		t.Fatalf("expected the queued caller to compute, got %+v", b)
	}
}

// invalidatingFeed caches whatever it loads until Invalidate is called.
type invalidatingFeed struct {
	next        *staticFeed
	mu          sync.Mutex
	cached      map[int][]playerstats.StatLine
	invalidated []int
}

func (f *invalidatingFeed) GameweekStats(ctx context.Context, gameweek int) ([]playerstats.StatLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if lines, ok := f.cached[gameweek]; ok {
		return lines, nil
	}
	lines, err := f.next.GameweekStats(ctx, gameweek)
	if err != nil {
		return nil, err
	}
	if f.cached == nil {
		f.cached = make(map[int][]playerstats.StatLine)
	}
	f.cached[gameweek] = lines
	return lines, nil
}

func (f *invalidatingFeed) Invalidate(_ context.Context, gameweek int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.cached, gameweek)
	f.invalidated = append(f.invalidated, gameweek)
}

func TestScoringService_IncompleteFeedIsRefetchedOnRetry(t *testing.T) {
	env := scoredEnv(t)
	ctx := t.Context()
	feed := &invalidatingFeed{next: env.feed}
	env.scoring.feed = feed

	env.feed.set(2, line("p1", 90, 2))
	if _, err := env.scoring.ComputeGameweek(ctx, 2); KindOf(err) != KindFeedDataUnavailable {
		t.Fatalf("expected feed_data_unavailable for a partial feed, got %v", err)
	}
	if _, err := env.scoring.ComputeGameweek(ctx, 3); KindOf(err) != KindFeedDataUnavailable {
		t.Fatalf("expected feed_data_unavailable for an empty feed, got %v", err)
	}
	if len(feed.invalidated) != 2 || feed.invalidated[0] != 2 || feed.invalidated[1] != 3 {
		t.Fatalf("expected gameweeks 2 and 3 invalidated, got %v", feed.invalidated)
	}

	env.feed.set(2, line("p1", 90, 2), line("p2", 90, 2), line("p3", 90, 2), line("p4", 90, 2), line("p5", 90, 2), line("p6", 90, 2))
	scores, err := env.scoring.ComputeGameweek(ctx, 2)
	if err != nil {
		t.Fatalf("retry after publish: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected two rows, got %+v", scores)
	}
}

func TestScoringService_ListGameweekRejectsInvalidGameweek(t *testing.T) {
	env := scoredEnv(t)

	for _, gameweek := range []int{0, -1} {
		if _, err := env.scoring.ListGameweek(t.Context(), gameweek); KindOf(err) != KindInvalidInput {
			t.Fatalf("gameweek %d: expected invalid_input, got %v", gameweek, err)
		}
	}
}
