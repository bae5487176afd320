package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
)

// InteractionHandler answers one application command through r. A returned
// error is logged by the router and the user sees a generic error embed.
type InteractionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error

// EventHandler is any function discordgo.Session.AddHandler accepts, such as
// func(*discordgo.Session, *discordgo.VoiceStateUpdate).
type EventHandler any

// ModuleDependencies is what the bot hands every module in Init.
type ModuleDependencies struct {
	Session *discordgo.Session

	// BotUserID is resolved through the REST API before the gateway opens.
	BotUserID snowflake.ID
}

// CommandProvider is the slash command surface of a module.
type CommandProvider interface {
	// Commands are registered globally once the gateway is open.
	Commands() []*discordgo.ApplicationCommand

	// CommandHandlers maps command names to handlers. Names must be unique
	// across all modules.
	CommandHandlers() map[string]InteractionHandler
}

// Module is a feature bundle the bot loads from the registry.
type Module interface {
	CommandProvider

	Name() string

	// EventHandlers are added to the session before it connects.
	EventHandlers() []EventHandler

	Init(deps ModuleDependencies) error
	Shutdown() error
}

// ConfigurableModule is implemented by modules that read their own
// environment variables. LoadConfig runs for every module before any Init,
// so a missing variable fails startup before a connection is made.
type ConfigurableModule interface {
	LoadConfig() error
}
