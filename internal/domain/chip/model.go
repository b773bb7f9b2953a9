package chip

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type Kind string

const (
	KindTripleCaptain Kind = "triple_captain"
	KindBenchBoost    Kind = "bench_boost"
	KindPointRedirect Kind = "point_redirect"
	KindPlayerLoan    Kind = "player_loan"
	KindScout         Kind = "scout"
)

// TargetKind names which variant of Target a chip kind expects.
type TargetKind string

const (
	TargetNone        TargetKind = "none"
	TargetParticipant TargetKind = "participant"
	TargetPlayer      TargetKind = "player"
)

// Definition is the static description of a chip kind.
type Definition struct {
	Kind           Kind
	RequiresTarget TargetKind
	Description    string
}

var catalog = map[Kind]Definition{
	KindTripleCaptain: {Kind: KindTripleCaptain, RequiresTarget: TargetNone, Description: "captain points count three times"},
	KindBenchBoost:    {Kind: KindBenchBoost, RequiresTarget: TargetNone, Description: "benched player points count"},
	KindPointRedirect: {Kind: KindPointRedirect, RequiresTarget: TargetParticipant, Description: "take the target's top scorer points"},
	KindPlayerLoan:    {Kind: KindPlayerLoan, RequiresTarget: TargetPlayer, Description: "score another participant's player"},
	KindScout:         {Kind: KindScout, RequiresTarget: TargetParticipant, Description: "reveal the target's selection"},
}

func Lookup(kind Kind) (Definition, bool) {
	def, ok := catalog[kind]
	return def, ok
}

// Kinds lists the catalog in a stable order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(catalog))
	for kind := range catalog {
		out = append(out, kind)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Target is what a chip was aimed at: nothing, a participant, or a player.
// The zero value is the empty target.
type Target struct {
	kind TargetKind
	id   string
}

func NoTarget() Target {
	return Target{kind: TargetNone}
}

func ParticipantTarget(participantID string) Target {
	return Target{kind: TargetParticipant, id: strings.TrimSpace(participantID)}
}

func PlayerTarget(playerID string) Target {
	return Target{kind: TargetPlayer, id: strings.TrimSpace(playerID)}
}

// TargetFrom rebuilds a target from its stored form.
func TargetFrom(kind TargetKind, id string) (Target, error) {
	switch kind {
	case "", TargetNone:
		return NoTarget(), nil
	case TargetParticipant:
		return ParticipantTarget(id), nil
	case TargetPlayer:
		return PlayerTarget(id), nil
	default:
		return Target{}, fmt.Errorf("unknown target kind %q", kind)
	}
}

func (t Target) Kind() TargetKind {
	if t.kind == "" || t.id == "" {
		return TargetNone
	}
	return t.kind
}

func (t Target) ID() string {
	if t.Kind() == TargetNone {
		return ""
	}
	return t.id
}

func (t Target) IsNone() bool {
	return t.Kind() == TargetNone
}

// Chip is a single-use modifier owned by one participant, usable within an
// inclusive gameweek window.
type Chip struct {
	ID               string
	OwnerID          string
	Kind             Kind
	StartGameweek    int
	EndGameweek      int
	Used             bool
	Target           Target
	ConsumedAt       *time.Time
	ConsumedGameweek int
	CreatedAt        time.Time
}

func (c Chip) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("chip id is required")
	}
	if c.OwnerID == "" {
		return fmt.Errorf("chip owner is required")
	}
	if _, ok := Lookup(c.Kind); !ok {
		return fmt.Errorf("unknown chip kind %q", c.Kind)
	}
	if c.StartGameweek < 1 {
		return fmt.Errorf("chip window must start at gameweek 1 or later")
	}
	if c.EndGameweek < c.StartGameweek {
		return fmt.Errorf("chip window end %d is before start %d", c.EndGameweek, c.StartGameweek)
	}
	return nil
}

func (c Chip) InWindow(gameweek int) bool {
	return gameweek >= c.StartGameweek && gameweek <= c.EndGameweek
}

// CheckConsumable validates everything about a consumption that does not need
// other aggregates. Checks run in a fixed order so callers get a stable error.
func (c Chip) CheckConsumable(gameweek int, target Target) error {
	if c.Used {
		return ErrAlreadyUsed
	}
	if !c.InWindow(gameweek) {
		return fmt.Errorf("%w: gameweek %d outside [%d,%d]", ErrOutOfWindow, gameweek, c.StartGameweek, c.EndGameweek)
	}

	def, ok := Lookup(c.Kind)
	if !ok {
		return fmt.Errorf("%w: unknown chip kind %q", ErrInvalidTarget, c.Kind)
	}
	switch {
	case def.RequiresTarget == TargetNone && !target.IsNone():
		return fmt.Errorf("%w: %s takes no target", ErrInvalidTarget, c.Kind)
	case def.RequiresTarget != TargetNone && target.IsNone():
		return fmt.Errorf("%w: %s needs a %s target", ErrTargetRequired, c.Kind, def.RequiresTarget)
	case def.RequiresTarget != TargetNone && target.Kind() != def.RequiresTarget:
		return fmt.Errorf("%w: %s needs a %s target, got %s", ErrInvalidTarget, c.Kind, def.RequiresTarget, target.Kind())
	}
	return nil
}

// Consumed returns the chip as recorded after a successful consumption.
func (c Chip) Consumed(gameweek int, target Target, now time.Time) Chip {
	out := c
	out.Used = true
	out.Target = target
	out.ConsumedGameweek = gameweek
	consumedAt := now
	out.ConsumedAt = &consumedAt
	return out
}
