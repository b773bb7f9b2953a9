package leaderboard

import (
	"testing"

	"github.com/riskibarqy/fantasy-draft/internal/domain/participant"
	"github.com/riskibarqy/fantasy-draft/internal/domain/scoring"
)

func TestBuild_TotalOrderWithTieBreaks(t *testing.T) {
	participants := []participant.Participant{
		{ID: "a", Name: "Ana"},
		{ID: "b", Name: "Ben"},
		{ID: "c", Name: "Cy"},
		{ID: "d", Name: "Dee"},
	}
	scores := []scoring.GameweekScore{
		{ParticipantID: "a", Gameweek: 1, FinalTotal: 10},
		{ParticipantID: "a", Gameweek: 2, FinalTotal: 10},
		{ParticipantID: "b", Gameweek: 1, FinalTotal: 15},
		{ParticipantID: "b", Gameweek: 2, FinalTotal: 5},
		{ParticipantID: "c", Gameweek: 1, FinalTotal: 5},
		{ParticipantID: "c", Gameweek: 2, FinalTotal: 15},
	}

	entries := Build([]string{"d", "c", "b", "a"}, participants, scores)

	wantOrder := []string{"b", "c", "a", "d"}
	if len(entries) != len(wantOrder) {
		t.Fatalf("expected %d entries, got %d", len(wantOrder), len(entries))
	}
	for i, want := range wantOrder {
		if entries[i].ParticipantID != want {
			t.Fatalf("position %d: want %s got %s", i+1, want, entries[i].ParticipantID)
		}
		if entries[i].Rank != i+1 {
			t.Fatalf("position %d: unexpected rank %d", i+1, entries[i].Rank)
		}
	}

	if entries[0].Name != "Ben" || entries[0].BestGameweek != 15 || entries[0].WorstGameweek != 5 {
		t.Fatalf("unexpected entry for b: %+v", entries[0])
	}
	if entries[3].TotalPoints != 0 || entries[3].GameweeksPlayed != 0 || entries[3].AveragePoints != 0 {
		t.Fatalf("expected zero entry for d, got %+v", entries[3])
	}
}

func TestBuild_AverageRoundsToOneDecimal(t *testing.T) {
	scores := []scoring.GameweekScore{
		{ParticipantID: "a", Gameweek: 1, FinalTotal: 10},
		{ParticipantID: "a", Gameweek: 2, FinalTotal: 10},
		{ParticipantID: "a", Gameweek: 3, FinalTotal: 11},
	}

	entries := Build([]string{"a"}, nil, scores)
	if entries[0].AveragePoints != 10.3 {
		t.Fatalf("want 10.3, got %v", entries[0].AveragePoints)
	}
}

func TestBuild_IgnoresRowsOutsideOrder(t *testing.T) {
	entries := Build([]string{"a"}, nil, []scoring.GameweekScore{{ParticipantID: "ghost", Gameweek: 1, FinalTotal: 99}})
	if len(entries) != 1 || entries[0].ParticipantID != "a" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}
