package playerstats

import "context"

// StatLine is one player's feed row for one gameweek.
type StatLine struct {
	PlayerID string
	Gameweek int
	Minutes  int
	Points   int
}

func (s StatLine) Played() bool {
	return s.Minutes > 0
}

// Feed is the external raw statistics source.
type Feed interface {
	GameweekStats(ctx context.Context, gameweek int) ([]StatLine, error)
}

// Index keys stat lines by player id. A later duplicate replaces an earlier one.
func Index(lines []StatLine) map[string]StatLine {
	out := make(map[string]StatLine, len(lines))
	for _, line := range lines {
		out[line.PlayerID] = line
	}
	return out
}
