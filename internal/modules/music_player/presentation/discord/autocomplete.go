package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/bot"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/usecases"
)

const (
	// Discord limits for autocomplete results.
	maxChoices         = 25
	maxChoiceLength    = 100
	minQueryLength     = 2
	autocompleteBudget = 2500 * time.Millisecond
)

// AutocompleteHandler handles autocomplete requests.
type AutocompleteHandler struct {
	autocomplete *usecases.AutocompleteService
}

// NewAutocompleteHandler creates a new AutocompleteHandler.
func NewAutocompleteHandler(autocomplete *usecases.AutocompleteService) *AutocompleteHandler {
	return &AutocompleteHandler{
		autocomplete: autocomplete,
	}
}

// Handle answers an autocomplete interaction for any music command.
func (h *AutocompleteHandler) Handle(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	data := i.ApplicationCommandData()

	var choices []*discordgo.ApplicationCommandOptionChoice
	switch data.Name {
	case "play":
		choices = h.playChoices(data.Options)
	case "queue":
		if len(data.Options) > 0 {
			choices = h.queuePositionChoices(i.GuildID, data.Options[0].Options)
		}
	}

	return respondChoices(r, choices)
}

// playChoices suggests tracks for the query typed so far.
func (h *AutocompleteHandler) playChoices(
	options []*discordgo.ApplicationCommandInteractionDataOption,
) []*discordgo.ApplicationCommandOptionChoice {
	opts := optionMap(options)

	query, ok := opts["query"]
	if !ok || !query.Focused {
		return nil
	}
	text := strings.TrimSpace(query.StringValue())
	if len([]rune(text)) < minQueryLength {
		return nil
	}

	var source string
	if opt, ok := opts["source"]; ok {
		source = opt.StringValue()
	}

	// Discord drops autocomplete answers after three seconds
	ctx, cancel := context.WithTimeout(context.Background(), autocompleteBudget)
	defer cancel()

	output, err := h.autocomplete.LoadTracksForAutocomplete(ctx, usecases.LoadTracksForAutocompleteInput{
		Query:  text,
		Source: source,
	})
	if err != nil {
		slog.Warn("failed to load autocomplete tracks", "query", text, "error", err)
		return nil
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, maxChoices)

	if output.IsPlaylist && len(output.PlaylistURL) <= maxChoiceLength {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name: truncate(
				fmt.Sprintf("📋 %s (%d tracks)", output.PlaylistName, output.TrackCount),
				maxChoiceLength,
			),
			Value: output.PlaylistURL,
		})
	}

	for idx, track := range output.Tracks {
		// A cut off URL would load something else
		if track.URI == "" || len(track.URI) > maxChoiceLength {
			continue
		}

		var name string
		if output.IsPlaylist {
			name = fmt.Sprintf("🎵 %d. %s - %s", idx+1, track.Title, track.Artist)
		} else {
			name = fmt.Sprintf("🎵 %s - %s", track.Title, track.Artist)
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(name, maxChoiceLength),
			Value: track.URI,
		})
		if len(choices) == maxChoices {
			break
		}
	}

	return choices
}

// queuePositionChoices suggests upcoming queue positions, filtered by what
// was typed: a position prefix or part of the title.
func (h *AutocompleteHandler) queuePositionChoices(
	rawGuildID string,
	options []*discordgo.ApplicationCommandInteractionDataOption,
) []*discordgo.ApplicationCommandOptionChoice {
	guildID, err := snowflake.Parse(rawGuildID)
	if err != nil {
		slog.Warn("failed to parse guild ID in autocomplete", "error", err, "guildID", rawGuildID)
		return nil
	}

	var typed string
	for _, opt := range options {
		if opt.Focused {
			typed = strings.ToLower(strings.TrimSpace(fmt.Sprint(opt.Value)))
			break
		}
	}

	output := h.autocomplete.GetQueueTracks(context.Background(), usecases.GetQueueTracksInput{
		GuildID: guildID,
	})

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, maxChoices)
	for idx, track := range output.Upcoming {
		position := idx + 2
		label := strconv.Itoa(position)
		if typed != "" &&
			!strings.HasPrefix(label, typed) &&
			!strings.Contains(strings.ToLower(track.Title), typed) {
			continue
		}

		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(fmt.Sprintf("%d. %s", position, track.Title), maxChoiceLength),
			Value: position,
		})
		if len(choices) == maxChoices {
			break
		}
	}

	return choices
}

func respondChoices(r bot.Responder, choices []*discordgo.ApplicationCommandOptionChoice) error {
	if choices == nil {
		choices = []*discordgo.ApplicationCommandOptionChoice{}
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
}
