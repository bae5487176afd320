package bot

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

const (
	colorWarning = 0xFFFF00
	colorFailure = 0xFF0000
)

// handleInteraction takes application commands only. Autocomplete and
// component interactions belong to the module that rendered them.
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	b.routeCommand(s, i, NewDiscordResponder(s, i.Interaction))
}

func (b *Bot) routeCommand(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) {
	name := i.ApplicationCommandData().Name
	user := interactionUserID(i.Interaction)

	if !b.limiter.Allow(user) {
		slog.Info("rate limited command", "command", name, "user", user)
		notify(r, "Slow Down", "You are sending commands too quickly. Try again in a moment.", colorWarning, true)
		return
	}

	handler, ok := b.handlers[name]
	if !ok {
		slog.Warn("found no handler for command", "command", name)
		notify(r, "Unknown Command", "This command is not recognized.", colorWarning, false)
		return
	}

	if err := handler(s, i, r); err != nil {
		slog.Error("failed to handle command", "command", name, "user", user, "error", err)
		notify(r, "Error", "An error occurred while processing your command.", colorFailure, false)
	}
}

// notify answers the interaction with a single titled embed.
func notify(r Responder, title, description string, color int, ephemeral bool) {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       title,
			Description: description,
			Color:       color,
		}},
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	if err := r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}); err != nil {
		slog.Error("failed to send embed response", "error", err)
	}
}
