package ports

import (
	"context"
)

// TrackResolver turns a query into playable tracks.
// The query is either a URL or "<source>:<terms>", e.g. "ytsearch:lofi".
// Queries that find nothing or that the node rejects are reported through
// LoadResult.Type; the error is reserved for the node being unreachable.
type TrackResolver interface {
	LoadTracks(ctx context.Context, query string) (*LoadResult, error)
}
