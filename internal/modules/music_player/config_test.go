package music_player

import (
	"testing"
	"time"

	"github.com/sglre6355/tunebox/internal/bot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LAVALINK_HOST", "lavalink")
	t.Setenv("LAVALINK_PASSWORD", "youshallnotpass")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	m := &MusicPlayerModule{}
	require.NoError(t, m.LoadConfig())

	assert.Equal(t, "lavalink:2333", m.config.LavalinkAddress())
	assert.False(t, m.config.LavalinkSecure)
	assert.Equal(t, 0xFFB6C1, m.embedColor)
	assert.Equal(t, 60*time.Second, m.config.IdleTimeout)
	assert.Equal(t, "./downloads", m.config.LocalAudioDir)
	assert.Equal(t, ":8080", m.config.LocalAudioListenAddr)
	assert.Empty(t, m.config.LocalAudioPublicURL)
	assert.Equal(t, int64(100_000_000), m.maxUpload)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LAVALINK_PORT", "443")
	t.Setenv("LAVALINK_SECURE", "true")
	t.Setenv("EMBED_COLOR", "1db954")
	t.Setenv("IDLE_TIMEOUT", "5m")
	t.Setenv("MAX_UPLOAD_SIZE", "25MiB")

	m := &MusicPlayerModule{}
	require.NoError(t, m.LoadConfig())

	assert.Equal(t, "lavalink:443", m.config.LavalinkAddress())
	assert.True(t, m.config.LavalinkSecure)
	assert.Equal(t, 0x1DB954, m.embedColor)
	assert.Equal(t, 5*time.Minute, m.config.IdleTimeout)
	assert.Equal(t, int64(25*1024*1024), m.maxUpload)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	t.Setenv("LAVALINK_HOST", "")
	t.Setenv("LAVALINK_PASSWORD", "secret")

	m := &MusicPlayerModule{}
	assert.Error(t, m.LoadConfig())
	assert.Nil(t, m.config)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "LAVALINK_PORT", "70000"},
		{"negative idle timeout", "IDLE_TIMEOUT", "-1s"},
		{"short color", "EMBED_COLOR", "#FFF"},
		{"non-hex color", "EMBED_COLOR", "#GGGGGG"},
		{"unparsable size", "MAX_UPLOAD_SIZE", "lots"},
		{"zero size", "MAX_UPLOAD_SIZE", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			m := &MusicPlayerModule{}
			assert.Error(t, m.LoadConfig())
		})
	}
}

func TestParseEmbedColor(t *testing.T) {
	color, err := parseEmbedColor(" #5865f2 ")
	require.NoError(t, err)
	assert.Equal(t, 0x5865F2, color)
}

func TestInit_RequiresSession(t *testing.T) {
	setRequiredEnv(t)

	m := &MusicPlayerModule{}
	require.NoError(t, m.LoadConfig())

	assert.Error(t, m.Init(bot.ModuleDependencies{}))
	assert.Nil(t, m.CommandHandlers())
}
