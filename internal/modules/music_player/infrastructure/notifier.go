package infrastructure

import (
	"cmp"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

const colorRed = 0xE74C3C

// messageClient is the part of *discordgo.Session the notifier uses.
type messageClient interface {
	ChannelMessageSendEmbed(
		channelID string,
		embed *discordgo.MessageEmbed,
		options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
	ChannelMessageEditComplex(
		m *discordgo.MessageEdit,
		options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	ChannelMessages(
		channelID string,
		limit int,
		beforeID, afterID, aroundID string,
		options ...discordgo.RequestOption,
	) ([]*discordgo.Message, error)
}

// NotifierConfig controls how notifications look.
type NotifierConfig struct {
	// EmbedColor is used for tracks whose source has no brand color.
	EmbedColor int

	// FallbackThumbnailURL is shown when a track has no artwork.
	FallbackThumbnailURL string
}

// Notifier posts playback notifications through the Discord REST API.
type Notifier struct {
	client     messageClient
	config     NotifierConfig
	thumbnails *thumbnailFinder
}

// NewNotifier creates a Notifier that posts through session.
func NewNotifier(session *discordgo.Session, config NotifierConfig) *Notifier {
	return newNotifier(session, config, &http.Client{Timeout: thumbnailCheckTimeout})
}

func newNotifier(client messageClient, config NotifierConfig, httpClient *http.Client) *Notifier {
	return &Notifier{
		client:     client,
		config:     config,
		thumbnails: newThumbnailFinder(httpClient),
	}
}

// SendNowPlaying posts a new Now Playing embed.
func (n *Notifier) SendNowPlaying(channelID snowflake.ID, info *ports.NowPlayingInfo) (snowflake.ID, error) {
	msg, err := n.client.ChannelMessageSendEmbed(channelID.String(), n.nowPlayingEmbed(info))
	if err != nil {
		return 0, fmt.Errorf("failed to send now playing message: %w", err)
	}
	return snowflake.Parse(msg.ID)
}

// EditNowPlaying turns an existing message into a "Now Playing" embed,
// dropping any text or buttons it carried.
func (n *Notifier) EditNowPlaying(
	channelID, messageID snowflake.ID,
	info *ports.NowPlayingInfo,
) error {
	content := ""
	edit := &discordgo.MessageEdit{
		ID:         messageID.String(),
		Channel:    channelID.String(),
		Content:    &content,
		Embeds:     &[]*discordgo.MessageEmbed{n.nowPlayingEmbed(info)},
		Components: &[]discordgo.MessageComponent{},
	}

	if _, err := n.client.ChannelMessageEditComplex(edit); err != nil {
		return fmt.Errorf("failed to edit now playing message: %w", err)
	}
	return nil
}

// HasNewerMessages reports whether anything was posted in the channel after the message.
func (n *Notifier) HasNewerMessages(channelID, messageID snowflake.ID) (bool, error) {
	messages, err := n.client.ChannelMessages(channelID.String(), 1, "", messageID.String(), "")
	if err != nil {
		return false, fmt.Errorf("failed to fetch channel messages: %w", err)
	}
	return len(messages) > 0, nil
}

func (n *Notifier) DeleteMessage(channelID, messageID snowflake.ID) error {
	return n.client.ChannelMessageDelete(channelID.String(), messageID.String())
}

// SendQueueFinished tells the channel that nothing is left to play.
func (n *Notifier) SendQueueFinished(channelID snowflake.ID) error {
	embed := &discordgo.MessageEmbed{
		Title:       "Queue Finished",
		Description: "Add more tracks with `/play`.",
		Color:       n.config.EmbedColor,
	}

	_, err := n.client.ChannelMessageSendEmbed(channelID.String(), embed)
	return err
}

// SendError posts message as a red embed.
func (n *Notifier) SendError(channelID snowflake.ID, message string) error {
	_, err := n.client.ChannelMessageSendEmbed(channelID.String(), &discordgo.MessageEmbed{
		Description: message,
		Color:       colorRed,
	})
	return err
}

func (n *Notifier) nowPlayingEmbed(info *ports.NowPlayingInfo) *discordgo.MessageEmbed {
	source := domain.ParseTrackSource(info.SourceName)

	color := source.Color()
	if color == 0 {
		color = n.config.EmbedColor
	}

	artist := cmp.Or(info.Artist, "Unknown")
	duration := info.Duration
	if info.IsStream {
		duration = "🔴 Live"
	}

	fields := []*discordgo.MessageEmbedField{
		inlineField("Artist", artist),
		inlineField("Duration", duration),
	}
	if info.Looping {
		fields = append(fields, inlineField("Loop", "🔂 Track"))
	}
	if info.UpcomingCount > 0 {
		fields = append(fields, inlineField("Up Next", fmt.Sprintf("%d in queue", info.UpcomingCount)))
	}

	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{Name: "Now Playing", IconURL: source.IconURL()},
		Title:  info.Title,
		URL:    info.URI,
		Color:  color,
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text:    "Requested by " + info.RequesterName,
			IconURL: info.RequesterAvatarURL,
		},
	}
	if !info.EnqueuedAt.IsZero() {
		embed.Timestamp = info.EnqueuedAt.UTC().Format(time.RFC3339)
	}

	thumbnail := cmp.Or(
		n.thumbnails.find(source, info.Identifier, info.ArtworkURL),
		n.config.FallbackThumbnailURL,
	)
	if thumbnail != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: thumbnail}
	}

	return embed
}

func inlineField(name, value string) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: name, Value: value, Inline: true}
}

var _ ports.NotificationSender = (*Notifier)(nil)
