package statsfeed

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/riskibarqy/fantasy-draft/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-draft/internal/platform/cache"
)

// errNoLines marks an empty load so GetOrLoad does not store it.
var errNoLines = errors.New("no stat lines")

// CachedFeed keeps successful gameweek loads for a TTL. Failed and empty
// loads are not cached, and concurrent misses for one gameweek share a
// single upstream call.
type CachedFeed struct {
	next  playerstats.Feed
	store *cache.Store[[]playerstats.StatLine]
}

func NewCachedFeed(next playerstats.Feed, ttl time.Duration) *CachedFeed {
	return &CachedFeed{
		next:  next,
		store: cache.NewStore[[]playerstats.StatLine](ttl),
	}
}

func (f *CachedFeed) GameweekStats(ctx context.Context, gameweek int) ([]playerstats.StatLine, error) {
	lines, err := f.store.GetOrLoad(ctx, cacheKey(gameweek), func(ctx context.Context) ([]playerstats.StatLine, error) {
		lines, err := f.next.GameweekStats(ctx, gameweek)
		if err != nil {
			return nil, err
		}
		if len(lines) == 0 {
			return nil, errNoLines
		}
		return lines, nil
	})
	if errors.Is(err, errNoLines) {
		return []playerstats.StatLine{}, nil
	}
	if err != nil {
		return nil, err
	}
	return append([]playerstats.StatLine(nil), lines...), nil
}

// Invalidate drops the cached lines of one gameweek, e.g. after a late correction.
func (f *CachedFeed) Invalidate(ctx context.Context, gameweek int) {
	f.store.Delete(ctx, cacheKey(gameweek))
}

func cacheKey(gameweek int) string {
	return "gameweek:" + strconv.Itoa(gameweek)
}

var _ playerstats.Feed = (*CachedFeed)(nil)
