package memory

import (
	"sync"

	"github.com/riskibarqy/fantasy-draft/internal/domain/chip"
	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/domain/participant"
	"github.com/riskibarqy/fantasy-draft/internal/domain/player"
	"github.com/riskibarqy/fantasy-draft/internal/domain/scoring"
)

// Store is the shared in-memory dataset. Repositories are views over one
// Store so that writes spanning aggregates commit under a single lock.
type Store struct {
	mu sync.RWMutex

	players      map[string]player.Player
	playerOrder  []string
	participants map[string]participant.Participant
	drafts       map[string]draft.State
	allocations  []draft.Allocation
	chips        map[string]chip.Chip
	effects      []chip.Effect
	scores       map[int]map[string]scoring.GameweekScore
	selections   map[string][]scoring.Selection
	calendar     map[int]scoring.Gameweek
}

func NewStore() *Store {
	return &Store{
		players:      make(map[string]player.Player),
		participants: make(map[string]participant.Participant),
		drafts:       make(map[string]draft.State),
		chips:        make(map[string]chip.Chip),
		scores:       make(map[int]map[string]scoring.GameweekScore),
		selections:   make(map[string][]scoring.Selection),
		calendar:     make(map[int]scoring.Gameweek),
	}
}

// NewSeededStore returns a store loaded with the given fixtures.
func NewSeededStore(players []player.Player, participants []participant.Participant, calendar []scoring.Gameweek) *Store {
	s := NewStore()
	for _, p := range players {
		s.PutPlayer(p)
	}
	for _, p := range participants {
		s.PutParticipant(p)
	}
	for _, g := range calendar {
		s.PutGameweek(g)
	}
	return s
}

func (s *Store) PutPlayer(p player.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[p.ID]; !ok {
		s.playerOrder = append(s.playerOrder, p.ID)
	}
	s.players[p.ID] = p
}

func (s *Store) PutParticipant(p participant.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.participants[p.ID] = p
}

func (s *Store) PutGameweek(g scoring.Gameweek) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calendar[g.Number] = g
}

func (s *Store) availableLocked() int {
	count := 0
	for _, p := range s.players {
		if p.Available {
			count++
		}
	}
	return count
}
