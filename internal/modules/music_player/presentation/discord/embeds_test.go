package discord

import (
	"strings"
	"testing"
	"time"

	"github.com/sglre6355/tunebox/internal/modules/music_player/application/usecases"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name     string
		position time.Duration
		want     string
	}{
		{"start", 0, "🔘▬▬▬▬"},
		{"middle", 50 * time.Second, "▬▬🔘▬▬"},
		{"end", 100 * time.Second, "▬▬▬▬🔘"},
		{"past end", 150 * time.Second, "▬▬▬▬🔘"},
		{"negative", -time.Second, "🔘▬▬▬▬"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, progressBar(tt.position, 100*time.Second, 5))
		})
	}

	assert.Empty(t, progressBar(time.Second, 0, 5), "unknown duration draws nothing")
}

func TestNowPlayingEmbed(t *testing.T) {
	output := &usecases.NowPlayingOutput{
		Track: &usecases.Track{
			Title:         "Song",
			Artist:        "Artist",
			URI:           "https://example.com/song",
			Duration:      3 * time.Minute,
			RequesterName: "alice",
		},
		Position:      90 * time.Second,
		Paused:        true,
		LoopMode:      usecases.LoopModeQueue,
		UpcomingCount: 3,
	}

	embed := nowPlayingEmbed(output)

	assert.Equal(t, "Song", embed.Title)
	assert.True(t, strings.HasPrefix(embed.Description, "⏸️"))
	assert.Contains(t, embed.Description, "`01:30 / 03:00`")
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "🔁 Queue", embed.Fields[1].Value)
	assert.Equal(t, "3 in queue", embed.Fields[2].Value)
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "Requested by alice", embed.Footer.Text)
}

func TestNowPlayingEmbed_Stream(t *testing.T) {
	embed := nowPlayingEmbed(&usecases.NowPlayingOutput{
		Track: &usecases.Track{Title: "Radio", IsStream: true},
	})

	assert.Equal(t, "▶️ 🔴 Live", embed.Description)
	assert.Empty(t, embed.Fields)
	assert.Nil(t, embed.Footer)
}

func TestQueueEmbed_Empty(t *testing.T) {
	embed := queueEmbed(&usecases.QueueListOutput{CurrentPage: 1, TotalPages: 1})

	assert.Equal(t, "Queue", embed.Title)
	assert.Equal(t, "The queue is empty.", embed.Description)
	assert.Nil(t, embed.Footer)
}

func TestQueueEmbed_Positions(t *testing.T) {
	embed := queueEmbed(&usecases.QueueListOutput{
		CurrentTrack: &usecases.Track{Title: "Current", Duration: time.Minute},
		Tracks: []*usecases.Track{
			{Title: "Eleventh", Duration: time.Minute},
			{Title: "Twelfth", Duration: time.Minute},
		},
		PageStart:     10,
		TotalTracks:   1200,
		TotalDuration: 2 * time.Hour,
		CurrentPage:   2,
		TotalPages:    120,
		LoopMode:      usecases.LoopModeTrack,
	})

	assert.Equal(t, "Queue \U0001F502", embed.Title)
	assert.Contains(t, embed.Description, "1\\. **Current** `01:00`")
	assert.Contains(t, embed.Description, "12\\. **Eleventh**")
	assert.Contains(t, embed.Description, "13\\. **Twelfth**")
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "Page 2/120 • 1,200 upcoming • 02:00:00 total", embed.Footer.Text)
}

func TestPingEmbed(t *testing.T) {
	t.Run("node unavailable", func(t *testing.T) {
		embed := pingEmbed(42*time.Millisecond, nil)

		assert.Equal(t, colorError, embed.Color)
		require.Len(t, embed.Fields, 2)
		assert.Equal(t, "42 ms", embed.Fields[0].Value)
		assert.Equal(t, "🔴 Unavailable", embed.Fields[1].Value)
	})

	t.Run("node connected", func(t *testing.T) {
		embed := pingEmbed(0, &usecases.NodeStatus{
			Name:           "main",
			Connected:      true,
			Version:        "4.0.8",
			Latency:        15 * time.Millisecond,
			Players:        3,
			PlayingPlayers: 2,
			Uptime:         time.Hour,
			MemoryUsed:     250_000_000,
			CPUCores:       4,
			LavalinkLoad:   0.125,
		})

		assert.Equal(t, colorInfo, embed.Color)
		require.Len(t, embed.Fields, 7)
		assert.Equal(t, "n/a", embed.Fields[0].Value)
		assert.Equal(t, "🟢 main (v4.0.8)", embed.Fields[1].Value)
		assert.Equal(t, "15 ms", embed.Fields[2].Value)
		assert.Equal(t, "2 playing / 3 total", embed.Fields[3].Value)
		assert.Equal(t, "250 MB", embed.Fields[5].Value)
		assert.Equal(t, "12.5% of 4 cores", embed.Fields[6].Value)
	})
}
