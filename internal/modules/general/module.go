package general

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/tunebox/internal/bot"
	"github.com/sglre6355/tunebox/internal/modules/general/application"
	"github.com/sglre6355/tunebox/internal/modules/general/presentation"
)

func init() {
	bot.Register(&GeneralModule{})
}

// GeneralModule provides commands that are not tied to a feature, like /help.
type GeneralModule struct {
	helpHandler *presentation.HelpHandler
}

// Name returns the module name.
func (m *GeneralModule) Name() string {
	return "general"
}

// Commands returns the slash commands for this module.
func (m *GeneralModule) Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "help",
			Description: "List all commands",
		},
	}
}

// CommandHandlers returns the command handlers for this module.
func (m *GeneralModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"help": m.helpHandler.Handle,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *GeneralModule) EventHandlers() []bot.EventHandler {
	return nil
}

// Init initializes the module.
func (m *GeneralModule) Init(_ bot.ModuleDependencies) error {
	m.helpHandler = presentation.NewHelpHandler(application.NewHelpInteractor(bot.Modules))
	return nil
}

// Shutdown cleans up module resources.
func (m *GeneralModule) Shutdown() error {
	return nil
}
