package application

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/tunebox/internal/bot"
	"github.com/sglre6355/tunebox/internal/modules/general/domain"
)

// ModuleLister returns the modules whose commands are listed.
type ModuleLister func() []bot.Module

// HelpInteractor handles the help use case.
type HelpInteractor struct {
	modules ModuleLister
}

// NewHelpInteractor creates a new HelpInteractor.
func NewHelpInteractor(modules ModuleLister) *HelpInteractor {
	return &HelpInteractor{
		modules: modules,
	}
}

// Execute collects one help section per module that has commands.
// Commands with subcommands are listed once per subcommand.
func (h *HelpInteractor) Execute() []domain.HelpSection {
	var sections []domain.HelpSection
	for _, m := range h.modules() {
		var entries []domain.CommandEntry
		for _, cmd := range m.Commands() {
			entries = append(entries, commandEntries(cmd)...)
		}

		section := domain.NewHelpSection(m.Name(), entries)
		if !section.IsEmpty() {
			sections = append(sections, section)
		}
	}
	return sections
}

func commandEntries(cmd *discordgo.ApplicationCommand) []domain.CommandEntry {
	var entries []domain.CommandEntry
	for _, opt := range cmd.Options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionSubCommand:
			entries = append(entries, domain.CommandEntry{
				Usage:       "/" + cmd.Name + " " + opt.Name,
				Description: opt.Description,
			})
		case discordgo.ApplicationCommandOptionSubCommandGroup:
			for _, sub := range opt.Options {
				entries = append(entries, domain.CommandEntry{
					Usage:       "/" + cmd.Name + " " + opt.Name + " " + sub.Name,
					Description: sub.Description,
				})
			}
		}
	}

	if len(entries) == 0 {
		entries = append(entries, domain.CommandEntry{
			Usage:       "/" + cmd.Name,
			Description: cmd.Description,
		})
	}
	return entries
}
