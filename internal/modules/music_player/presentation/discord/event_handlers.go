package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/bot"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/usecases"
)

// EventHandlers receives the gateway events the bot router does not cover.
type EventHandlers struct {
	botID        snowflake.ID
	voiceChannel *usecases.VoiceChannelService
	autocomplete *AutocompleteHandler
	searchButton *SearchButtonHandler
}

// NewEventHandlers creates a new EventHandlers.
func NewEventHandlers(
	botID snowflake.ID,
	voiceChannel *usecases.VoiceChannelService,
	autocomplete *AutocompleteHandler,
	searchButton *SearchButtonHandler,
) *EventHandlers {
	return &EventHandlers{
		botID:        botID,
		voiceChannel: voiceChannel,
		autocomplete: autocomplete,
		searchButton: searchButton,
	}
}

// HandleVoiceStateUpdate keeps the player in sync when the bot itself is
// moved, disconnected or kicked from voice.
func (h *EventHandlers) HandleVoiceStateUpdate(_ *discordgo.Session, event *discordgo.VoiceStateUpdate) {
	if event.VoiceState == nil || event.UserID != h.botID.String() {
		return
	}

	input, err := botVoiceStateChange(event.VoiceState)
	if err != nil {
		slog.Error("failed to parse bot voice state", "guild", event.GuildID, "error", err)
		return
	}
	h.voiceChannel.HandleBotVoiceStateChange(context.Background(), input)
}

// botVoiceStateChange converts a gateway voice state. An empty channel ID
// means the bot left voice.
func botVoiceStateChange(vs *discordgo.VoiceState) (usecases.BotVoiceStateChangeInput, error) {
	guildID, err := snowflake.Parse(vs.GuildID)
	if err != nil {
		return usecases.BotVoiceStateChangeInput{}, fmt.Errorf("invalid guild ID: %w", err)
	}

	input := usecases.BotVoiceStateChangeInput{GuildID: guildID}
	if vs.ChannelID == "" {
		return input, nil
	}

	channelID, err := snowflake.Parse(vs.ChannelID)
	if err != nil {
		return usecases.BotVoiceStateChangeInput{}, fmt.Errorf("invalid channel ID: %w", err)
	}
	input.NewChannelID = &channelID
	return input, nil
}

// HandleInteractionCreate routes autocomplete requests and button clicks.
// Application commands go through the bot's command router instead.
func (h *EventHandlers) HandleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.routeInteraction(s, i, bot.NewDiscordResponder(s, i.Interaction))
}

func (h *EventHandlers) routeInteraction(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) {
	var err error
	switch i.Type {
	case discordgo.InteractionApplicationCommandAutocomplete:
		err = h.autocomplete.Handle(s, i, r)
	case discordgo.InteractionMessageComponent:
		if !strings.HasPrefix(i.MessageComponentData().CustomID, SearchCustomIDPrefix) {
			return
		}
		err = h.searchButton.Handle(s, i, r)
	default:
		return
	}

	if err != nil {
		slog.Error("failed to handle interaction", "type", i.Type.String(), "error", err)
	}
}
