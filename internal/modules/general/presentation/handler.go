package presentation

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/tunebox/internal/bot"
	"github.com/sglre6355/tunebox/internal/modules/general/application"
)

const helpEmbedColor = 0x5865F2

// HelpHandler handles the /help command.
type HelpHandler struct {
	interactor *application.HelpInteractor
}

// NewHelpHandler creates a new HelpHandler.
func NewHelpHandler(interactor *application.HelpInteractor) *HelpHandler {
	return &HelpHandler{
		interactor: interactor,
	}
}

// Handle lists every command only to the user who asked.
func (h *HelpHandler) Handle(
	_ *discordgo.Session,
	_ *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	embed := &discordgo.MessageEmbed{
		Title: "Commands",
		Color: helpEmbedColor,
	}

	for _, section := range h.interactor.Execute() {
		var sb strings.Builder
		for _, cmd := range section.Commands {
			sb.WriteString("`" + cmd.Usage + "`")
			if cmd.Description != "" {
				sb.WriteString(" " + cmd.Description)
			}
			sb.WriteString("\n")
		}

		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  sectionTitle(section.Module),
			Value: truncateField(sb.String()),
		})
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

// sectionTitle turns a module name like "music_player" into "Music Player".
func sectionTitle(module string) string {
	words := strings.Fields(strings.ReplaceAll(module, "_", " "))
	for idx, word := range words {
		words[idx] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// Discord rejects embed fields longer than 1024 characters.
func truncateField(value string) string {
	const maxFieldLength = 1024
	if len(value) <= maxFieldLength {
		return value
	}
	cut := strings.LastIndex(value[:maxFieldLength-4], "\n")
	if cut < 0 {
		cut = maxFieldLength - 4
	}
	return value[:cut] + "\n..."
}
