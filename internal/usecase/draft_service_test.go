package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
)

func TestDraftService_TwoParticipantScenario(t *testing.T) {
	env := newTestEnv(t, []string{"A", "B"}, 6, false)
	env.startDraft(t, []string{"A", "B"}, 2)
	ctx := t.Context()

	env.mustAllocate(t, "A", "p1")

	_, err := env.drafts.Allocate(ctx, AllocateInput{ParticipantID: "B", PlayerID: "p1"})
	if KindOf(err) != KindPlayerUnavailable {
		t.Fatalf("expected player_unavailable, got %v", err)
	}

	env.mustAllocate(t, "B", "p2")
	env.mustAllocate(t, "A", "p3")
	env.mustAllocate(t, "B", "p4")

	state, err := env.drafts.State(ctx)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state.Phase != draft.PhaseComplete {
		t.Fatalf("expected complete phase, got %s", state.Phase)
	}

	assertSquad(t, env, "A", "p1", "p3")
	assertSquad(t, env, "B", "p2", "p4")

	available, err := env.players.ListPlayers(ctx, true)
	if err != nil {
		t.Fatalf("list available players: %v", err)
	}
	if len(available) != 2 {
		t.Fatalf("expected 2 available players, got %d", len(available))
	}

	_, err = env.drafts.Allocate(ctx, AllocateInput{ParticipantID: "A", PlayerID: "p5"})
	if KindOf(err) != KindDraftNotInProgress {
		t.Fatalf("expected draft_not_in_progress after completion, got %v", err)
	}
}

func TestDraftService_AllocateErrors(t *testing.T) {
	env := newTestEnv(t, []string{"A", "B"}, 4, false)
	ctx := t.Context()

	_, err := env.drafts.Allocate(ctx, AllocateInput{ParticipantID: "A", PlayerID: "p1"})
	if KindOf(err) != KindDraftNotInProgress {
		t.Fatalf("expected draft_not_in_progress before configure, got %v", err)
	}

	env.startDraft(t, []string{"A", "B"}, 2)

	tests := []struct {
		name  string
		input AllocateInput
		want  Kind
	}{
		{name: "not your turn", input: AllocateInput{ParticipantID: "B", PlayerID: "p1"}, want: KindNotYourTurn},
		{name: "unknown participant", input: AllocateInput{ParticipantID: "Z", PlayerID: "p1"}, want: KindNotYourTurn},
		{name: "unknown player", input: AllocateInput{ParticipantID: "A", PlayerID: "nope"}, want: KindNotFound},
		{name: "missing player id", input: AllocateInput{ParticipantID: "A"}, want: KindInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.drafts.Allocate(ctx, tc.input)
			if got := KindOf(err); got != tc.want {
				t.Fatalf("want %s, got %s (%v)", tc.want, got, err)
			}
		})
	}
}

func TestDraftService_CompletesWhenPlayersRunOut(t *testing.T) {
	env := newTestEnv(t, []string{"A", "B"}, 3, false)
	env.startDraft(t, []string{"A", "B"}, 5)

	env.mustAllocate(t, "A", "p1")
	env.mustAllocate(t, "B", "p2")

	state, _ := env.drafts.State(t.Context())
	if state.Phase != draft.PhaseInProgress {
		t.Fatalf("draft must not complete while a player remains, got %s", state.Phase)
	}

	env.mustAllocate(t, "A", "p3")
	state, _ = env.drafts.State(t.Context())
	if state.Phase != draft.PhaseComplete {
		t.Fatalf("expected complete phase once players ran out, got %s", state.Phase)
	}
}

func TestDraftService_StartRequiresAdminAndActiveParticipants(t *testing.T) {
	env := newTestEnv(t, []string{"A", "B"}, 4, false)
	ctx := t.Context()

	if _, err := env.drafts.Configure(ctx, ConfigureDraftInput{Order: []string{"A", "ghost"}, Quota: 2}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if _, err := env.drafts.Configure(ctx, ConfigureDraftInput{Order: []string{"A"}, Quota: 2}); KindOf(err) != KindInvalidInput {
		t.Fatalf("expected second configure to fail with invalid_input, got %v", err)
	}

	if _, err := env.drafts.Start(ctx, ""); KindOf(err) != KindUnauthorized {
		t.Fatalf("expected unauthorized without an actor, got %v", err)
	}
	if _, err := env.drafts.Start(ctx, "A"); KindOf(err) != KindForbidden {
		t.Fatalf("expected forbidden for non-admin, got %v", err)
	}
	if _, err := env.drafts.Start(ctx, testAdmin); KindOf(err) != KindInvalidInput {
		t.Fatalf("expected invalid_input for unregistered participant, got %v", err)
	}

	state, _ := env.drafts.State(ctx)
	if state.Phase != draft.PhasePending {
		t.Fatalf("failed start must leave the draft pending, got %s", state.Phase)
	}
}

func TestDraftService_StartTwiceFails(t *testing.T) {
	env := newTestEnv(t, []string{"A"}, 2, false)
	env.startDraft(t, []string{"A"}, 1)

	if _, err := env.drafts.Start(t.Context(), testAdmin); !errors.Is(err, draft.ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestDraftService_Deallocate(t *testing.T) {
	env := newTestEnv(t, []string{"A", "B"}, 4, false)
	env.startDraft(t, []string{"A", "B"}, 1)
	ctx := t.Context()

	env.mustAllocate(t, "A", "p1")
	env.mustAllocate(t, "B", "p2")

	if _, err := env.drafts.Deallocate(ctx, DeallocateInput{ActorID: "A", ParticipantID: "A", PlayerID: "p1"}); KindOf(err) != KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := env.drafts.Deallocate(ctx, DeallocateInput{ActorID: testAdmin, ParticipantID: "B", PlayerID: "p1"}); KindOf(err) != KindNotFound {
		t.Fatalf("expected not_found for wrong participant, got %v", err)
	}

	state, err := env.drafts.Deallocate(ctx, DeallocateInput{ActorID: testAdmin, ParticipantID: "A", PlayerID: "p1"})
	if err != nil {
		t.Fatalf("deallocate: %v", err)
	}
	if state.Phase != draft.PhaseComplete {
		t.Fatalf("deallocation must not reverse the phase, got %s", state.Phase)
	}
	if state.SquadCounts["A"] != 0 {
		t.Fatalf("expected A count 0, got %d", state.SquadCounts["A"])
	}

	p1, err := env.players.GetPlayer(ctx, "p1")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if !p1.Available {
		t.Fatalf("expected p1 to be available again")
	}
	assertSquad(t, env, "A")

	history, err := env.drafts.ListAllocations(ctx)
	if err != nil {
		t.Fatalf("list allocations: %v", err)
	}
	if len(history) != 2 || history[0].ReleasedAt == nil {
		t.Fatalf("expected released allocation to stay in history, got %+v", history)
	}

	if _, err := env.drafts.Deallocate(ctx, DeallocateInput{ActorID: testAdmin, ParticipantID: "A", PlayerID: "p1"}); KindOf(err) != KindNotFound {
		t.Fatalf("expected not_found on repeated deallocation, got %v", err)
	}
}

func TestDraftService_ConcurrentAllocationsAreExclusive(t *testing.T) {
	env := newTestEnv(t, []string{"A", "B"}, 10, false)
	env.startDraft(t, []string{"A", "B"}, 5)

	const attempts = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.drafts.Allocate(context.Background(), AllocateInput{ParticipantID: "A", PlayerID: "p1"})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			switch KindOf(err) {
			case KindPlayerUnavailable, KindConcurrentModification, KindNotYourTurn:
			default:
				t.Errorf("unexpected error kind %s: %v", KindOf(err), err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one successful allocation, got %d", successes)
	}

	live, err := env.drafts.ListAllocations(t.Context())
	if err != nil {
		t.Fatalf("list allocations: %v", err)
	}
	if len(live) != 1 {
		t.Fatalf("expected one allocation, got %d", len(live))
	}
	state, _ := env.drafts.State(t.Context())
	if state.SquadCounts["A"] != 1 || state.PickCount != 1 {
		t.Fatalf("unexpected state after race: %+v", state)
	}
}

func TestDraftService_StaleVersionIsConcurrentModification(t *testing.T) {
	env := newTestEnv(t, []string{"A", "B"}, 4, false)
	env.startDraft(t, []string{"A", "B"}, 2)
	repo := env.drafts.draftRepo
	ctx := t.Context()

	state, _, err := repo.GetState(ctx, DefaultDraftID)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	env.mustAllocate(t, "A", "p1")

	next := state.AfterAllocation("A", 2, fixtureNow)
	err = repo.CommitAllocation(ctx, next, state.Version, draft.Allocation{ID: "stale", DraftID: DefaultDraftID, PlayerID: "p2", ParticipantID: "A"})
	if KindOf(mapDraftWriteError(err)) != KindConcurrentModification {
		t.Fatalf("expected concurrent_modification, got %v", err)
	}
}

func assertSquad(t *testing.T, env *testEnv, participantID string, want ...string) {
	t.Helper()

	squad, err := env.drafts.Squad(t.Context(), participantID)
	if err != nil {
		t.Fatalf("squad %s: %v", participantID, err)
	}
	if len(squad) != len(want) {
		t.Fatalf("squad %s: want %v, got %+v", participantID, want, squad)
	}
	for i, a := range squad {
		if a.PlayerID != want[i] {
			t.Fatalf("squad %s: want %v, got %+v", participantID, want, squad)
		}
	}
}
