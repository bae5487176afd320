package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/usecases"
)

const progressBarWidth = 18

func nowPlayingEmbed(output *usecases.NowPlayingOutput) *discordgo.MessageEmbed {
	track := output.Track

	state := "▶️"
	if output.Paused {
		state = "⏸️"
	}

	var progress string
	if track.IsStream {
		progress = fmt.Sprintf("%s 🔴 Live", state)
	} else {
		progress = fmt.Sprintf(
			"%s %s `%s / %s`",
			state,
			progressBar(output.Position, track.Duration, progressBarWidth),
			usecases.FormatDuration(output.Position),
			usecases.FormatDuration(track.Duration),
		)
	}

	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name: "Now Playing",
		},
		Title:       track.Title,
		URL:         track.URI,
		Description: progress,
		Color:       colorInfo,
	}

	if track.Artist != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Artist",
			Value:  track.Artist,
			Inline: true,
		})
	}
	if output.LoopMode != usecases.LoopModeNone {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Loop",
			Value:  loopLabel(output.LoopMode),
			Inline: true,
		})
	}
	if output.UpcomingCount > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Up Next",
			Value:  fmt.Sprintf("%d in queue", output.UpcomingCount),
			Inline: true,
		})
	}
	if track.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: track.ArtworkURL}
	}
	if track.RequesterName != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text:    "Requested by " + track.RequesterName,
			IconURL: track.RequesterAvatarURL,
		}
	}

	return embed
}

// progressBar draws a fixed-width bar with a marker at the current position.
func progressBar(position, duration time.Duration, width int) string {
	if duration <= 0 || width <= 0 {
		return ""
	}

	marker := int(float64(width) * float64(min(max(position, 0), duration)) / float64(duration))
	marker = min(marker, width-1)

	return strings.Repeat("▬", marker) + "🔘" + strings.Repeat("▬", width-marker-1)
}

func loopLabel(mode usecases.LoopMode) string {
	switch mode {
	case usecases.LoopModeTrack:
		return "🔂 Track"
	case usecases.LoopModeQueue:
		return "🔁 Queue"
	default:
		return "Off"
	}
}

func queueEmbed(output *usecases.QueueListOutput) *discordgo.MessageEmbed {
	title := "Queue"
	switch output.LoopMode {
	case usecases.LoopModeTrack:
		title = "Queue \U0001F502" // 🔂
	case usecases.LoopModeQueue:
		title = "Queue \U0001F501" // 🔁
	}

	embed := &discordgo.MessageEmbed{
		Title: title,
		Color: colorInfo,
	}

	if output.CurrentTrack == nil && output.TotalTracks == 0 {
		embed.Description = "The queue is empty."
		return embed
	}

	var sb strings.Builder
	if output.CurrentTrack != nil {
		sb.WriteString("### Now Playing\n")
		if output.Paused {
			sb.WriteString("⏸️ ")
		}
		writeTrackLine(&sb, 1, output.CurrentTrack)
	}

	if len(output.Tracks) > 0 {
		sb.WriteString("### Up Next\n")
		for idx, track := range output.Tracks {
			// Upcoming tracks start at position 2
			writeTrackLine(&sb, output.PageStart+idx+2, track)
		}
	}

	embed.Description = sb.String()
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf(
			"Page %d/%d • %s upcoming • %s total",
			output.CurrentPage,
			output.TotalPages,
			humanize.Comma(int64(output.TotalTracks)),
			usecases.FormatDuration(output.TotalDuration),
		),
	}

	return embed
}

// writeTrackLine writes a single track line to the string builder.
// Escapes period to prevent Discord markdown list formatting.
func writeTrackLine(sb *strings.Builder, position int, track *usecases.Track) {
	fmt.Fprintf(sb, "%d\\. %s `%s`", position, trackLink(track), track.FormattedDuration())
	if track.Artist != "" {
		fmt.Fprintf(sb, " - %s", escapeMarkdown(track.Artist))
	}
	sb.WriteString("\n")
}

func pingEmbed(gatewayLatency time.Duration, status *usecases.NodeStatus) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🏓 Pong!",
		Color: colorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Gateway",
				Value:  formatLatency(gatewayLatency),
				Inline: true,
			},
		},
	}

	if status == nil || !status.Connected {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Audio Node",
			Value:  "🔴 Unavailable",
			Inline: true,
		})
		embed.Color = colorError
		return embed
	}

	node := fmt.Sprintf("🟢 %s", status.Name)
	if status.Version != "" {
		node += fmt.Sprintf(" (v%s)", status.Version)
	}

	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "Audio Node", Value: node, Inline: true},
		&discordgo.MessageEmbedField{Name: "Node Latency", Value: formatLatency(status.Latency), Inline: true},
		&discordgo.MessageEmbedField{
			Name:   "Players",
			Value:  fmt.Sprintf("%d playing / %d total", status.PlayingPlayers, status.Players),
			Inline: true,
		},
		&discordgo.MessageEmbedField{Name: "Uptime", Value: usecases.FormatDuration(status.Uptime), Inline: true},
		&discordgo.MessageEmbedField{
			Name:   "Memory",
			Value:  humanize.Bytes(status.MemoryUsed),
			Inline: true,
		},
		&discordgo.MessageEmbedField{
			Name:   "Load",
			Value:  fmt.Sprintf("%.1f%% of %d cores", status.LavalinkLoad*100, status.CPUCores),
			Inline: true,
		},
	)

	return embed
}

func formatLatency(d time.Duration) string {
	if d <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d ms", d.Milliseconds())
}
