package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
)

// Bot owns the Discord session and drives the modules through their
// lifecycle.
type Bot struct {
	config  *Config
	session *discordgo.Session

	modules []Module
	// running holds the modules whose Init succeeded, in Init order.
	running []Module

	handlers map[string]InteractionHandler
	limiter  *userRateLimiter
}

// NewBot creates a Bot. Call LoadModules before Start.
func NewBot(cfg *Config) *Bot {
	return &Bot{
		config:   cfg,
		handlers: make(map[string]InteractionHandler),
		limiter:  newUserRateLimiter(cfg.CommandRateLimit, cfg.CommandBurst),
	}
}

// LoadModules takes every module registered so far.
func (b *Bot) LoadModules() {
	b.modules = Modules()
}

// Start brings the bot online: session, module config and Init, routing,
// gateway connection and finally command registration.
func (b *Bot) Start() error {
	session, err := discordgo.New("Bot " + b.config.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	b.session = session

	botUserID, err := b.fetchBotUserID()
	if err != nil {
		return err
	}

	if err := b.loadModuleConfigs(); err != nil {
		return fmt.Errorf("failed to load module config: %w", err)
	}
	if err := b.initModules(ModuleDependencies{Session: session, BotUserID: botUserID}); err != nil {
		return fmt.Errorf("failed to initialize modules: %w", err)
	}
	if err := b.buildHandlerMap(); err != nil {
		b.shutdownModules()
		return err
	}

	session.AddHandler(b.handleInteraction)
	for _, mod := range b.running {
		for _, handler := range mod.EventHandlers() {
			session.AddHandler(handler)
		}
	}

	if err := session.Open(); err != nil {
		b.shutdownModules()
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if err := b.registerCommands(botUserID); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	slog.Info("started bot", "user_id", botUserID, "username", session.State.User.Username)
	return nil
}

// Stop shuts modules down in reverse Init order and closes the session.
func (b *Bot) Stop() error {
	errs := b.shutdownModules()
	if b.session != nil {
		errs = append(errs, b.session.Close())
	}
	return errors.Join(errs...)
}

func (b *Bot) fetchBotUserID() (snowflake.ID, error) {
	user, err := b.session.User("@me")
	if err != nil {
		return 0, fmt.Errorf("failed to fetch bot user: %w", err)
	}
	id, err := snowflake.Parse(user.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to parse bot user ID %q: %w", user.ID, err)
	}
	return id, nil
}

func (b *Bot) loadModuleConfigs() error {
	for _, mod := range b.modules {
		configurable, ok := mod.(ConfigurableModule)
		if !ok {
			continue
		}
		if err := configurable.LoadConfig(); err != nil {
			return fmt.Errorf("failed to load %s module config: %w", mod.Name(), err)
		}
	}
	return nil
}

// initModules initializes modules in registration order. When one fails, the
// ones already running are shut down again.
func (b *Bot) initModules(deps ModuleDependencies) error {
	for _, mod := range b.modules {
		if err := mod.Init(deps); err != nil {
			b.shutdownModules()
			return fmt.Errorf("failed to initialize %s module: %w", mod.Name(), err)
		}
		b.running = append(b.running, mod)
		slog.Debug("initialized module", "module", mod.Name())
	}

	names := make([]string, 0, len(b.running))
	for _, mod := range b.running {
		names = append(names, mod.Name())
	}
	slog.Info("initialized modules", "modules", names)
	return nil
}

func (b *Bot) shutdownModules() []error {
	var errs []error
	for _, mod := range slices.Backward(b.running) {
		if err := mod.Shutdown(); err != nil {
			slog.Warn("failed to shutdown module", "module", mod.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", mod.Name(), err))
		}
	}
	b.running = nil
	return errs
}

// buildHandlerMap routes command names to module handlers. Two modules
// claiming the same command name is a startup error.
func (b *Bot) buildHandlerMap() error {
	owners := make(map[string]string)
	for _, mod := range b.modules {
		for name, handler := range mod.CommandHandlers() {
			if owner, taken := owners[name]; taken {
				return fmt.Errorf("command %q is handled by both %s and %s", name, owner, mod.Name())
			}
			owners[name] = mod.Name()
			b.handlers[name] = handler
		}
	}
	return nil
}

func (b *Bot) collectCommands() []*discordgo.ApplicationCommand {
	var commands []*discordgo.ApplicationCommand
	for _, mod := range b.modules {
		commands = append(commands, mod.Commands()...)
	}
	return commands
}

// registerCommands replaces the global command set, so commands removed from
// the code also disappear from Discord.
func (b *Bot) registerCommands(appID snowflake.ID) error {
	commands := b.collectCommands()

	registered, err := b.session.ApplicationCommandBulkOverwrite(appID.String(), "", commands)
	if err != nil {
		return err
	}
	for _, cmd := range registered {
		slog.Debug("registered command", "command", cmd.Name)
	}
	return nil
}
