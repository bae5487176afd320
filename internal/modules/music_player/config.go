package music_player

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Config holds the music player module configuration.
type Config struct {
	LavalinkHost     string `env:"LAVALINK_HOST,notEmpty"`
	LavalinkPort     int    `env:"LAVALINK_PORT"     envDefault:"2333"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD,notEmpty"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE"   envDefault:"false"`

	EmbedColor           string `env:"EMBED_COLOR"            envDefault:"#FFB6C1"`
	FallbackThumbnailURL string `env:"FALLBACK_THUMBNAIL_URL"`

	IdleTimeout time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`

	LocalAudioDir        string `env:"LOCAL_AUDIO_DIR"         envDefault:"./downloads"`
	LocalAudioListenAddr string `env:"LOCAL_AUDIO_LISTEN_ADDR" envDefault:":8080"`
	LocalAudioPublicURL  string `env:"LOCAL_AUDIO_PUBLIC_URL"`
	MaxUploadSize        string `env:"MAX_UPLOAD_SIZE"         envDefault:"100 MB"`
}

// LavalinkAddress returns the host:port the audio node listens on.
func (c *Config) LavalinkAddress() string {
	return net.JoinHostPort(c.LavalinkHost, strconv.Itoa(c.LavalinkPort))
}

// validate checks values env cannot check on its own and returns the parsed
// embed color and upload limit.
func (c *Config) validate() (int, int64, error) {
	if c.LavalinkPort <= 0 || c.LavalinkPort > 65535 {
		return 0, 0, fmt.Errorf("LAVALINK_PORT out of range: %d", c.LavalinkPort)
	}
	if c.IdleTimeout < 0 {
		return 0, 0, fmt.Errorf("IDLE_TIMEOUT must not be negative: %s", c.IdleTimeout)
	}

	color, err := parseEmbedColor(c.EmbedColor)
	if err != nil {
		return 0, 0, err
	}

	maxSize, err := parseByteSize(c.MaxUploadSize)
	if err != nil {
		return 0, 0, err
	}

	return color, maxSize, nil
}

// parseEmbedColor parses a "#RRGGBB" or "RRGGBB" color.
func parseEmbedColor(raw string) (int, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("invalid EMBED_COLOR %q: expected 6 hex digits", raw)
	}
	color, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid EMBED_COLOR %q: %w", raw, err)
	}
	return int(color), nil
}

// parseByteSize parses human sizes such as "100 MB" or "25MiB".
func parseByteSize(raw string) (int64, error) {
	size, err := humanize.ParseBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid MAX_UPLOAD_SIZE %q: %w", raw, err)
	}
	if size == 0 {
		return 0, fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}
	return int64(size), nil
}
