package domain

import (
	"strings"
)

// SearchSource is the Lavalink search prefix for a catalogue.
type SearchSource string

const (
	SourceYouTube      SearchSource = "ytsearch"
	SourceYouTubeMusic SearchSource = "ytmsearch"
	SourceSoundCloud   SearchSource = "scsearch"
	SourceSpotify      SearchSource = "spsearch" // needs the LavaSrc plugin on the node
	SourceDirect       SearchSource = ""         // the query is a URL
)

// ParseSearchSource maps the "source" option of /play and /search to a prefix.
// Anything unknown searches YouTube.
func ParseSearchSource(name string) SearchSource {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "youtubemusic", "ytm":
		return SourceYouTubeMusic
	case "soundcloud", "sc":
		return SourceSoundCloud
	case "spotify", "sp":
		return SourceSpotify
	default:
		return SourceYouTube
	}
}

// SearchQuery is user input made ready for the audio node.
type SearchQuery struct {
	Query  string
	Source SearchSource
	IsURL  bool
}

// NewSearchQuery parses what the user typed. URLs load directly and ignore
// source; bare "www." links get an https scheme so the node accepts them.
func NewSearchQuery(input string, source SearchSource) *SearchQuery {
	input = strings.TrimSpace(input)

	switch {
	case strings.HasPrefix(input, "http://"), strings.HasPrefix(input, "https://"):
		return &SearchQuery{Query: input, Source: SourceDirect, IsURL: true}
	case strings.HasPrefix(input, "www."):
		return &SearchQuery{Query: "https://" + input, Source: SourceDirect, IsURL: true}
	}

	if source == SourceDirect {
		source = SourceYouTube
	}
	return &SearchQuery{Query: input, Source: source}
}

// LavalinkQuery returns the identifier to hand to the node's load endpoint.
func (q *SearchQuery) LavalinkQuery() string {
	if q.IsURL {
		return q.Query
	}
	return string(q.Source) + ":" + q.Query
}

// IsValid reports whether there is anything to search for.
func (q *SearchQuery) IsValid() bool {
	return q.Query != ""
}
