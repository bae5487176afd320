package infrastructure

import (
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
	"github.com/stretchr/testify/assert"
)

func TestThumbnailCandidates(t *testing.T) {
	yt := thumbnailCandidates(domain.TrackSourceYouTube, "abc", "")
	assert.Len(t, yt, len(youTubeQualities))
	assert.Equal(t, "https://img.youtube.com/vi/abc/maxresdefault.jpg", yt[0])

	assert.Empty(t, thumbnailCandidates(domain.TrackSourceYouTube, "", "https://i.ytimg.com/x.jpg"))
	assert.Empty(t, thumbnailCandidates(domain.TrackSourceTwitch, "", "https://static-cdn.jtvnw.net/x-1280x720.jpg"))
	assert.Empty(t, thumbnailCandidates(domain.TrackSourceSoundCloud, "abc", "https://i1.sndcdn.com/a.jpg"))
}

func TestThumbnailFinder_CachesResults(t *testing.T) {
	var requests atomic.Int32
	client := &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
		requests.Add(1)
		status := http.StatusNotFound
		if strings.HasSuffix(req.URL.Path, "/hqdefault.jpg") {
			status = http.StatusOK
		}
		return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader("")), Header: make(http.Header)}
	})}
	finder := newThumbnailFinder(client)

	first := finder.find(domain.TrackSourceYouTube, "abc", "")
	assert.Equal(t, "https://img.youtube.com/vi/abc/hqdefault.jpg", first)
	assert.Equal(t, int32(3), requests.Load())

	second := finder.find(domain.TrackSourceYouTube, "abc", "")
	assert.Equal(t, first, second)
	assert.Equal(t, int32(3), requests.Load(), "the second lookup is served from the cache")
}
