package infrastructure

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/ports"
)

const (
	// DefaultResolverCacheSize bounds how many distinct queries are remembered.
	DefaultResolverCacheSize = 512

	// DefaultResolverCacheTTL is how long a load result stays fresh.
	DefaultResolverCacheTTL = 5 * time.Minute
)

// CachingTrackResolver remembers load results so that autocomplete, which
// fires on every keystroke, and the command that follows it do not hit the
// audio node with the same query again and again.
// Empty and failed results are never cached.
type CachingTrackResolver struct {
	next  ports.TrackResolver
	cache *expirable.LRU[string, *ports.LoadResult]
}

// NewCachingTrackResolver wraps next with an expiring LRU cache.
func NewCachingTrackResolver(next ports.TrackResolver, size int, ttl time.Duration) *CachingTrackResolver {
	if size <= 0 {
		size = DefaultResolverCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultResolverCacheTTL
	}

	return &CachingTrackResolver{
		next:  next,
		cache: expirable.NewLRU[string, *ports.LoadResult](size, nil, ttl),
	}
}

// LoadTracks returns a cached result for query, loading it on a miss.
func (r *CachingTrackResolver) LoadTracks(ctx context.Context, query string) (*ports.LoadResult, error) {
	if result, ok := r.cache.Get(query); ok {
		slog.Debug("track resolver cache hit", "query", query)
		return copyLoadResult(result), nil
	}

	result, err := r.next.LoadTracks(ctx, query)
	if err != nil {
		return nil, err
	}

	if !result.IsEmpty() {
		r.cache.Add(query, copyLoadResult(result))
	}

	return result, nil
}

// Len returns the number of cached queries.
func (r *CachingTrackResolver) Len() int {
	return r.cache.Len()
}

// copyLoadResult keeps callers from mutating cached tracks.
func copyLoadResult(result *ports.LoadResult) *ports.LoadResult {
	out := *result
	out.Tracks = make([]*ports.TrackInfo, len(result.Tracks))
	for i, track := range result.Tracks {
		info := *track
		out.Tracks[i] = &info
	}
	return &out
}

// Ensure CachingTrackResolver implements ports.TrackResolver.
var _ ports.TrackResolver = (*CachingTrackResolver)(nil)
