package discord

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/bot"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/usecases"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
	colorInfo    = 0x5865F2
)

// userFacingErrors are shown to the user as they are. Anything else is logged
// and replaced with a generic message.
var userFacingErrors = []error{
	usecases.ErrNotConnected,
	usecases.ErrUserNotInVoice,
	usecases.ErrNotSameVoiceChannel,
	usecases.ErrNotPlaying,
	usecases.ErrAlreadyPaused,
	usecases.ErrNotPaused,
	usecases.ErrNoResults,
	usecases.ErrQueueEmpty,
	usecases.ErrNotEnoughTracks,
	usecases.ErrIsCurrentTrack,
	usecases.ErrSamePosition,
	usecases.ErrNotSeekable,
	usecases.ErrSeekOutOfRange,
	usecases.ErrAlreadyLocked,
	usecases.ErrNotLocked,
	usecases.ErrUnsupportedFile,
	usecases.ErrFileTooLarge,
	usecases.ErrSearchActive,
	usecases.ErrSearchExpired,
	usecases.ErrInvalidSelection,
	usecases.ErrOutOfRange,
	usecases.ErrInvalidPosition,
	usecases.ErrInvalidTimestamp,
	usecases.ErrLoadFailed,
}

// errorMessage turns a use case error into a sentence for the user.
func errorMessage(err error) string {
	for _, known := range userFacingErrors {
		if errors.Is(err, known) {
			return sentence(known.Error())
		}
	}

	slog.Error("unexpected music player error", "error", err)
	return "Something went wrong, please try again."
}

// sentence capitalizes the first letter and ends the text with a period.
func sentence(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	s = string(unicode.ToUpper(r)) + s[size:]
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}

// interactionIDs holds the parsed IDs every music command needs.
type interactionIDs struct {
	guildID   snowflake.ID
	userID    snowflake.ID
	channelID snowflake.ID
}

// parseInteractionIDs reads the guild, user and channel of an interaction.
// Music commands only work inside guilds.
func parseInteractionIDs(i *discordgo.InteractionCreate) (interactionIDs, error) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return interactionIDs{}, errors.New("this command can only be used in a server")
	}

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return interactionIDs{}, fmt.Errorf("invalid guild: %w", err)
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return interactionIDs{}, fmt.Errorf("invalid user: %w", err)
	}
	channelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return interactionIDs{}, fmt.Errorf("invalid channel: %w", err)
	}

	return interactionIDs{guildID: guildID, userID: userID, channelID: channelID}, nil
}

// optionMap indexes options by name.
func optionMap(
	options []*discordgo.ApplicationCommandInteractionDataOption,
) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

// Response helpers.

func respondEmbed(r bot.Responder, embed *discordgo.MessageEmbed, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func respondSuccess(r bot.Responder, description string) error {
	return respondEmbed(r, &discordgo.MessageEmbed{
		Description: description,
		Color:       colorSuccess,
	}, false)
}

func respondError(r bot.Responder, message string) error {
	return respondEmbed(r, errorEmbed(message), true)
}

func errorEmbed(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Error",
		Description: message,
		Color:       colorError,
	}
}

// editEmbed replaces a deferred reply with a single embed.
func editEmbed(r bot.Responder, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return r.Edit(&discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
}

// editError replaces a deferred reply with an error embed.
func editError(r bot.Responder, message string) error {
	_, err := editEmbed(r, errorEmbed(message))
	return err
}

// trackLink renders a track title, linked when it has a URI.
func trackLink(track *usecases.Track) string {
	title := escapeMarkdown(track.Title)
	if track.URI != "" {
		return fmt.Sprintf("[%s](%s)", title, track.URI)
	}
	return fmt.Sprintf("**%s**", title)
}

var markdownEscaper = strings.NewReplacer(
	"*", "\\*",
	"_", "\\_",
	"`", "\\`",
	"~", "\\~",
	"|", "\\|",
	"[", "\\[",
	"]", "\\]",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
