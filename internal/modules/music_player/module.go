package music_player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/sglre6355/tunebox/internal/bot"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/tunebox/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/tunebox/internal/modules/music_player/presentation/discord"
)

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*MusicPlayerModule)(nil)

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config     *Config
	embedColor int
	maxUpload  int64

	commandHandlers *discord.CommandHandlers
	eventHandlers   *discord.EventHandlers
	lavalinkAdapter *infrastructure.LavalinkAdapter
	localAudio      *infrastructure.LocalAudioServer
	repo            *infrastructure.MemoryRepository

	// Event-driven components
	eventBus            *infrastructure.ChannelEventBus
	playbackHandler     *application.PlaybackEventHandler
	notificationHandler *application.NotificationEventHandler
	idleHandler         *application.IdleEventHandler

	// Context for background work
	ctx    context.Context
	cancel context.CancelFunc
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	if m.commandHandlers == nil {
		return nil
	}
	return m.commandHandlers.Handlers()
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.handleVoiceServerUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.handleVoiceStateUpdate(s, event)
		},
		func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if m.eventHandlers != nil {
				m.eventHandlers.HandleInteractionCreate(s, i)
			}
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}

	color, maxUpload, err := cfg.validate()
	if err != nil {
		return err
	}

	m.config = cfg
	m.embedColor = color
	m.maxUpload = maxUpload
	return nil
}

// Init initializes the module.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		return errors.New("music_player requires a Discord session")
	}
	if m.config == nil {
		return errors.New("music_player config not loaded")
	}

	m.ctx, m.cancel = context.WithCancel(context.Background())

	// The bus comes first since the Lavalink adapter publishes node events to it
	m.eventBus = infrastructure.NewChannelEventBus(infrastructure.DefaultEventBufferSize)

	lavalinkAdapter, err := infrastructure.NewLavalinkAdapter(
		deps.Session,
		deps.BotUserID,
		infrastructure.LavalinkConfig{
			Address:  m.config.LavalinkAddress(),
			Password: m.config.LavalinkPassword,
			Secure:   m.config.LavalinkSecure,
		},
		m.eventBus,
	)
	if err != nil {
		m.eventBus.Close()
		return err
	}
	m.lavalinkAdapter = lavalinkAdapter

	localAudio, err := infrastructure.NewLocalAudioServer(infrastructure.LocalAudioConfig{
		Dir:        m.config.LocalAudioDir,
		ListenAddr: m.config.LocalAudioListenAddr,
		PublicURL:  m.config.LocalAudioPublicURL,
		MaxSize:    m.maxUpload,
	})
	if err != nil {
		m.shutdownTransport()
		return err
	}
	if localAudio.Enabled() {
		// Files left over from a previous run belong to queues that no longer exist
		if removed, err := localAudio.Purge(); err != nil {
			slog.Warn("failed to purge local audio directory", "error", err)
		} else if removed > 0 {
			slog.Info("purged stale local audio files", "count", removed)
		}
	}
	if err := localAudio.Start(m.ctx); err != nil {
		m.shutdownTransport()
		return fmt.Errorf("failed to start local audio server: %w", err)
	}
	m.localAudio = localAudio

	// Infrastructure
	repo := infrastructure.NewMemoryRepository()
	m.repo = repo
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)
	userInfo := infrastructure.NewDiscordUserInfoProvider(deps.Session)
	notifier := infrastructure.NewNotifier(deps.Session, infrastructure.NotifierConfig{
		EmbedColor:           m.embedColor,
		FallbackThumbnailURL: m.config.FallbackThumbnailURL,
	})
	resolver := infrastructure.NewCachingTrackResolver(
		lavalinkAdapter,
		infrastructure.DefaultResolverCacheSize,
		infrastructure.DefaultResolverCacheTTL,
	)
	searchSessions := infrastructure.NewSearchSessionStore(infrastructure.DefaultSearchSessionTTL)

	// Use cases
	trackLoader := usecases.NewTrackLoaderService(resolver, userInfo)
	voiceChannel := usecases.NewVoiceChannelService(
		repo,
		lavalinkAdapter,
		voiceState,
		m.eventBus,
		localAudio,
	)
	playback := usecases.NewPlaybackService(
		repo,
		lavalinkAdapter,
		voiceState,
		m.eventBus,
		localAudio,
		nil,
	)
	queue := usecases.NewQueueService(repo, m.eventBus, voiceState, localAudio)
	searchSession := usecases.NewSearchSessionService(searchSessions, trackLoader, queue, nil)
	filePlayback := usecases.NewFilePlaybackService(resolver, localAudio, trackLoader, m.maxUpload)
	notificationChannel := usecases.NewNotificationChannelService(repo)
	nodeStatus := usecases.NewNodeStatusService(lavalinkAdapter)
	autocomplete := usecases.NewAutocompleteService(repo, resolver)

	// Application event handlers
	m.playbackHandler = application.NewPlaybackEventHandler(
		repo,
		lavalinkAdapter,
		m.eventBus,
		m.eventBus,
		localAudio,
		nil,
	)
	m.notificationHandler = application.NewNotificationEventHandler(repo, m.eventBus, notifier)
	m.idleHandler = application.NewIdleEventHandler(m.eventBus, voiceChannel, m.config.IdleTimeout)

	for _, handler := range []interface{ Start() error }{
		m.playbackHandler,
		m.notificationHandler,
		m.idleHandler,
	} {
		if err := handler.Start(); err != nil {
			_ = m.Shutdown()
			return err
		}
	}

	// Presentation
	m.commandHandlers = discord.NewCommandHandlers(
		voiceChannel,
		playback,
		queue,
		trackLoader,
		searchSession,
		filePlayback,
		notificationChannel,
		nodeStatus,
	)
	m.eventHandlers = discord.NewEventHandlers(
		deps.BotUserID,
		voiceChannel,
		discord.NewAutocompleteHandler(autocomplete),
		discord.NewSearchButtonHandler(searchSession),
	)

	slog.Info(
		"music_player module initialized",
		"lavalink", m.config.LavalinkAddress(),
		"localAudio", localAudio.Enabled(),
		"idleTimeout", m.config.IdleTimeout,
	)

	return nil
}

// Shutdown cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	if m.repo != nil {
		connected, playing := m.repo.Stats()
		slog.Info("shutting down music player", "connected", connected, "playing", playing)
	}

	// Cancel context first to stop the file server
	if m.cancel != nil {
		m.cancel()
	}

	if m.idleHandler != nil {
		m.idleHandler.Stop()
	}

	m.shutdownTransport()
	return nil
}

func (m *MusicPlayerModule) shutdownTransport() {
	if m.eventBus != nil {
		m.eventBus.Close()
	}
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Close()
	}
}

// Event handlers.

func (m *MusicPlayerModule) handleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceServerUpdate(event)
	}
}

func (m *MusicPlayerModule) handleVoiceStateUpdate(
	s *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceStateUpdate(event)
	}
	if m.eventHandlers != nil {
		m.eventHandlers.HandleVoiceStateUpdate(s, event)
	}
}
