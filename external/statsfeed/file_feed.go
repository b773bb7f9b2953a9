package statsfeed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-draft/internal/domain/playerstats"
)

// FileFeed serves stat lines from gameweek-<n>.json files in one directory,
// using the same payload shape as the HTTP feed. Meant for local runs.
type FileFeed struct {
	dir string
}

func NewFileFeed(dir string) *FileFeed {
	return &FileFeed{dir: dir}
}

func (f *FileFeed) GameweekStats(ctx context.Context, gameweek int) ([]playerstats.StatLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(f.dir, "gameweek-"+strconv.Itoa(gameweek)+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []playerstats.StatLine{}, nil
		}
		return nil, fmt.Errorf("read stats file %s: %w", path, err)
	}

	var payload statsEnvelope
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode stats file %s: %w", path, err)
	}

	out := make([]playerstats.StatLine, 0, len(payload.Data))
	for _, item := range payload.Data {
		if item.PlayerID == "" {
			continue
		}
		out = append(out, playerstats.StatLine{
			PlayerID: item.PlayerID,
			Gameweek: gameweek,
			Minutes:  max(item.Minutes, 0),
			Points:   item.Points,
		})
	}
	return out, nil
}

var _ playerstats.Feed = (*FileFeed)(nil)
