package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/bot"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/usecases"
)

// SearchCustomIDPrefix prefixes the custom IDs of /search buttons.
// The full ID is "search:<userID>:<index|cancel>".
const SearchCustomIDPrefix = "search:"

const searchCancelAction = "cancel"

func searchCustomID(userID snowflake.ID, action string) string {
	return SearchCustomIDPrefix + userID.String() + ":" + action
}

// parseSearchCustomID splits a button ID into the searching user and the action.
func parseSearchCustomID(customID string) (snowflake.ID, string, error) {
	rest, ok := strings.CutPrefix(customID, SearchCustomIDPrefix)
	if !ok {
		return 0, "", fmt.Errorf("not a search button: %q", customID)
	}
	user, action, ok := strings.Cut(rest, ":")
	if !ok || action == "" {
		return 0, "", fmt.Errorf("malformed search button: %q", customID)
	}
	userID, err := snowflake.Parse(user)
	if err != nil {
		return 0, "", fmt.Errorf("malformed search button: %w", err)
	}
	return userID, action, nil
}

func searchResultsEmbed(query string, tracks []*usecases.Track) *discordgo.MessageEmbed {
	var sb strings.Builder
	for idx, track := range tracks {
		fmt.Fprintf(&sb, "%d\\. %s `%s`", idx+1, trackLink(track), track.FormattedDuration())
		if track.Artist != "" {
			fmt.Fprintf(&sb, " - %s", escapeMarkdown(track.Artist))
		}
		sb.WriteString("\n")
	}

	return &discordgo.MessageEmbed{
		Title:       truncate(fmt.Sprintf("Results for %q", query), 256),
		Description: sb.String(),
		Color:       colorInfo,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Pick a track within 30 seconds.",
		},
	}
}

// searchComponents builds one button per result plus a cancel button.
func searchComponents(userID snowflake.ID, count int) []discordgo.MessageComponent {
	picks := make([]discordgo.MessageComponent, 0, count)
	for idx := range count {
		picks = append(picks, discordgo.Button{
			Label:    strconv.Itoa(idx + 1),
			Style:    discordgo.PrimaryButton,
			CustomID: searchCustomID(userID, strconv.Itoa(idx)),
		})
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: picks},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Cancel",
				Style:    discordgo.SecondaryButton,
				CustomID: searchCustomID(userID, searchCancelAction),
			},
		}},
	}
}

// SearchButtonHandler handles clicks on /search result buttons.
type SearchButtonHandler struct {
	searchSession *usecases.SearchSessionService
}

// NewSearchButtonHandler creates a new SearchButtonHandler.
func NewSearchButtonHandler(searchSession *usecases.SearchSessionService) *SearchButtonHandler {
	return &SearchButtonHandler{searchSession: searchSession}
}

// Handle enqueues the picked result or cancels the search.
// The results message turns into the loading message, and from there into
// "Now Playing" when the pick starts playback.
func (h *SearchButtonHandler) Handle(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ownerID, action, err := parseSearchCustomID(i.MessageComponentData().CustomID)
	if err != nil {
		return respondError(r, "This button is no longer valid.")
	}

	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, sentence(err.Error()))
	}
	if ids.userID != ownerID {
		return respondError(r, "Only the person who searched can pick a result.")
	}

	if action == searchCancelAction {
		if err := h.searchSession.Cancel(ownerID); err != nil && !errors.Is(err, usecases.ErrSearchExpired) {
			return err
		}
		return updateMessage(r, &discordgo.MessageEmbed{
			Description: "Search cancelled.",
			Color:       colorInfo,
		})
	}

	index, err := strconv.Atoi(action)
	if err != nil {
		return respondError(r, "This button is no longer valid.")
	}

	// Take the buttons away first so the pick cannot be made twice
	if err := updateMessage(r, &discordgo.MessageEmbed{
		Description: "Loading your pick...",
		Color:       colorInfo,
	}); err != nil {
		return err
	}

	output, err := h.searchSession.Select(ctx, usecases.SelectSearchInput{
		GuildID:        ids.guildID,
		UserID:         ids.userID,
		Index:          index,
		LoadingMessage: loadingMessage(i.Message, ids.channelID),
	})
	if err != nil {
		return editError(r, errorMessage(err))
	}

	if output.StartsPlayback {
		return nil
	}

	_, err = editEmbed(r, &discordgo.MessageEmbed{
		Description: fmt.Sprintf("Added %s to the queue at position %d.", trackLink(output.Track), output.Position),
		Color:       colorSuccess,
	})
	return err
}

// updateMessage replaces the message a component belongs to and drops its buttons.
func updateMessage(r bot.Responder, embed *discordgo.MessageEmbed) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: []discordgo.MessageComponent{},
		},
	})
}
