package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

const (
	thumbnailCacheSize = 512
	thumbnailCacheTTL  = time.Hour
	thumbnailCheckTimeout = 5 * time.Second
)

// youTubeQualities are tried best first.
var youTubeQualities = []string{"maxresdefault", "sddefault", "hqdefault", "mqdefault"}

// thumbnailFinder picks the largest artwork a source offers. Lookup results
// are cached, so a looping track costs one round of HEAD requests.
type thumbnailFinder struct {
	client *http.Client
	cache  *expirable.LRU[string, string]
}

func newThumbnailFinder(client *http.Client) *thumbnailFinder {
	return &thumbnailFinder{
		client: client,
		cache:  expirable.NewLRU[string, string](thumbnailCacheSize, nil, thumbnailCacheTTL),
	}
}

// find returns the best artwork URL, or "" when the track has none.
func (f *thumbnailFinder) find(source domain.TrackSource, identifier, artworkURL string) string {
	candidates := thumbnailCandidates(source, identifier, artworkURL)
	if len(candidates) == 0 {
		return artworkURL
	}

	key := string(source) + "|" + identifier + "|" + artworkURL
	if url, ok := f.cache.Get(key); ok {
		return url
	}

	ctx, cancel := context.WithTimeout(context.Background(), thumbnailCheckTimeout)
	defer cancel()

	best := artworkURL
	for _, candidate := range candidates {
		if f.exists(ctx, candidate) {
			best = candidate
			break
		}
	}
	// A timed-out check says nothing about the URLs, so try again next time.
	if ctx.Err() == nil {
		f.cache.Add(key, best)
	}
	return best
}

// thumbnailCandidates lists larger variants of the artwork worth probing.
func thumbnailCandidates(source domain.TrackSource, identifier, artworkURL string) []string {
	switch source {
	case domain.TrackSourceYouTube:
		if identifier == "" {
			return nil
		}
		urls := make([]string, 0, len(youTubeQualities))
		for _, quality := range youTubeQualities {
			urls = append(urls, fmt.Sprintf("https://img.youtube.com/vi/%s/%s.jpg", identifier, quality))
		}
		return urls
	case domain.TrackSourceTwitch:
		// Live previews come as 440x248; the CDN also serves 1280x720.
		upgraded := strings.Replace(artworkURL, "440x248", "1280x720", 1)
		if upgraded == artworkURL {
			return nil
		}
		return []string{upgraded}
	default:
		return nil
	}
}

func (f *thumbnailFinder) exists(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}
