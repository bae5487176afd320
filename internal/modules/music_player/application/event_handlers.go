package application

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

// PlaybackEventHandler handles events related to playback control.
// It subscribes to TrackEnqueued and TrackEnded events to manage playback flow.
type PlaybackEventHandler struct {
	playerStates domain.PlayerStateRepository
	player       ports.AudioPlayer
	publisher    ports.EventPublisher
	subscriber   ports.EventSubscriber
	localAudio   ports.LocalAudioStore
	now          domain.Clock
}

// NewPlaybackEventHandler creates a new PlaybackEventHandler.
func NewPlaybackEventHandler(
	playerStates domain.PlayerStateRepository,
	player ports.AudioPlayer,
	publisher ports.EventPublisher,
	subscriber ports.EventSubscriber,
	localAudio ports.LocalAudioStore,
	clock domain.Clock,
) *PlaybackEventHandler {
	if clock == nil {
		clock = domain.SystemClock
	}
	return &PlaybackEventHandler{
		playerStates: playerStates,
		player:       player,
		subscriber:   subscriber,
		publisher:    publisher,
		localAudio:   localAudio,
		now:          clock,
	}
}

// Start registers event handlers with the subscriber.
func (h *PlaybackEventHandler) Start() error {
	err := h.subscriber.Subscribe(
		reflect.TypeFor[domain.TrackEnqueuedEvent](),
		func(ctx context.Context, e domain.Event) {
			h.handleTrackEnqueued(ctx, e.(domain.TrackEnqueuedEvent))
		},
	)
	if err != nil {
		return err
	}

	err = h.subscriber.Subscribe(
		reflect.TypeFor[domain.TrackEndedEvent](),
		func(ctx context.Context, e domain.Event) {
			h.handleTrackEnded(ctx, e.(domain.TrackEndedEvent))
		},
	)
	if err != nil {
		return err
	}

	slog.Debug("playback event handlers properly registered")

	return nil
}

func (h *PlaybackEventHandler) handleTrackEnqueued(
	ctx context.Context,
	event domain.TrackEnqueuedEvent,
) {
	if !event.WasIdle {
		return
	}

	state, err := h.playerStates.Get(ctx, event.GuildID)
	if err != nil {
		slog.Warn(
			"player state not found, skipping",
			"event", event,
		)
		return
	}

	state.Lock()
	defer state.Unlock()

	// Another enqueue or a skip may have started playback already
	if !state.IsIdle() || state.IsPaused() {
		return
	}

	slog.Debug(
		"starting track",
		"event", event,
	)

	h.playCurrent(ctx, state)
}

func (h *PlaybackEventHandler) handleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	// Only advance queue for certain end reasons
	if !event.Reason.ShouldAdvanceQueue() {
		return
	}

	state, err := h.playerStates.Get(ctx, event.GuildID)
	if err != nil {
		slog.Warn(
			"track ended but player state not found",
			"event", event,
		)
		return
	}

	state.Lock()
	defer state.Unlock()

	finished := state.CurrentTrack()
	if finished == nil || finished.ID != event.TrackID {
		slog.Debug(
			"ignoring end of a track that is no longer current",
			"event", event,
		)
		return
	}

	slog.Debug(
		"track ended, advancing queue",
		"event", event,
		"loop_mode", state.LoopMode().String(),
	)

	var next *domain.Track
	if event.Reason.IsFailure() {
		// A failing track would fail again on every loop
		next = state.Queue.DropCurrent()
	} else {
		next = state.Queue.Advance(state.LoopMode())
	}

	if !state.Queue.Contains(finished) && finished.LocalFile != "" && h.localAudio != nil {
		if err := h.localAudio.Remove(finished.LocalFile); err != nil {
			slog.Warn(
				"failed to remove local audio file",
				"file", finished.LocalFile,
				"error", err,
			)
		}
	}

	state.ClearSnapshot()

	if next == nil {
		state.SetPlaybackActive(false)
		h.publish(domain.QueueFinishedEvent{GuildID: event.GuildID})
		return
	}

	h.playCurrent(ctx, state)
}

// playCurrent starts the head of the queue. A track the node refuses is
// reported as a failed track end so the queue moves past it.
func (h *PlaybackEventHandler) playCurrent(ctx context.Context, state *domain.PlayerState) {
	guildID := state.GuildID()
	current := state.CurrentTrack()
	if current == nil {
		return
	}

	state.ClearSnapshot()

	if err := h.player.Play(ctx, guildID, current); err != nil {
		slog.Error(
			"failed to start track",
			"guild", guildID,
			"track", current.ID,
			"error", err,
		)
		state.SetPlaybackActive(true)
		h.publish(domain.TrackEndedEvent{
			GuildID: guildID,
			TrackID: current.ID,
			Title:   current.Title,
			Reason:  domain.TrackEndLoadFailed,
			Message: err.Error(),
		})
		return
	}

	state.SetPlaybackActive(true)
	state.SetPaused(false, h.now())

	h.publish(domain.NewCurrentTrackChangedEvent(guildID))
}

func (h *PlaybackEventHandler) publish(event domain.Event) {
	if err := h.publisher.Publish(event); err != nil {
		slog.Warn(
			"failed to publish event",
			"event", event,
			"error", err,
		)
	}
}

// NotificationEventHandler handles events related to Discord notifications.
// It keeps a single "Now Playing" message per guild up to date.
type NotificationEventHandler struct {
	playerStates domain.PlayerStateRepository
	subscriber   ports.EventSubscriber
	notifier     ports.NotificationSender
}

// NewNotificationEventHandler creates a new NotificationEventHandler.
func NewNotificationEventHandler(
	playerStates domain.PlayerStateRepository,
	subscriber ports.EventSubscriber,
	notifier ports.NotificationSender,
) *NotificationEventHandler {
	return &NotificationEventHandler{
		playerStates: playerStates,
		subscriber:   subscriber,
		notifier:     notifier,
	}
}

// Start registers event handlers with the subscriber.
func (h *NotificationEventHandler) Start() error {
	subscriptions := []struct {
		eventType reflect.Type
		handler   func(context.Context, domain.Event)
	}{
		{
			reflect.TypeFor[domain.CurrentTrackChangedEvent](),
			func(ctx context.Context, e domain.Event) {
				h.handleCurrentTrackChanged(ctx, e.(domain.CurrentTrackChangedEvent))
			},
		},
		{
			reflect.TypeFor[domain.TrackEndedEvent](),
			func(ctx context.Context, e domain.Event) {
				h.handleTrackEnded(ctx, e.(domain.TrackEndedEvent))
			},
		},
		{
			reflect.TypeFor[domain.QueueFinishedEvent](),
			func(ctx context.Context, e domain.Event) {
				h.handleQueueFinished(ctx, e.(domain.QueueFinishedEvent))
			},
		},
		{
			reflect.TypeFor[domain.PlaybackStoppedEvent](),
			func(_ context.Context, e domain.Event) {
				h.handlePlaybackStopped(e.(domain.PlaybackStoppedEvent))
			},
		},
	}

	for _, s := range subscriptions {
		if err := h.subscriber.Subscribe(s.eventType, s.handler); err != nil {
			return err
		}
	}

	slog.Debug("notification event handlers properly registered")

	return nil
}

func (h *NotificationEventHandler) handleCurrentTrackChanged(
	ctx context.Context,
	event domain.CurrentTrackChangedEvent,
) {
	state, err := h.playerStates.Get(ctx, event.GuildID)
	if err != nil {
		slog.Debug(
			"skipping now playing notification, state not found",
			"guild", event.GuildID,
		)
		return
	}

	state.Lock()
	defer state.Unlock()

	current := state.CurrentTrack()
	if current == nil {
		return
	}

	channelID := state.NotificationChannelID()
	info := ports.NewNowPlayingInfo(current, state.LoopMode(), state.Queue.UpcomingCount())

	// The reply of the command that started playback is reused before an older message
	existing := state.LoadingMessage()
	stale := state.NowPlayingMessage()
	if existing == nil {
		existing, stale = stale, nil
	}
	state.ClearLoadingMessage()
	state.ClearNowPlayingMessage()

	if stale != nil {
		h.deleteMessage(stale, event)
	}

	hasNewer := false
	if existing != nil {
		hasNewer = existing.ChannelID != channelID
		if !hasNewer {
			hasNewer, err = h.notifier.HasNewerMessages(existing.ChannelID, existing.MessageID)
			if err != nil {
				slog.Warn(
					"failed to check for newer messages, replacing now playing message",
					"event", event,
					"error", err,
				)
				hasNewer = true
			}
		}
	}

	switch domain.DecideNowPlayingAction(existing, hasNewer) {
	case domain.NowPlayingEdit:
		err := h.notifier.EditNowPlaying(existing.ChannelID, existing.MessageID, info)
		if err == nil {
			state.SetNowPlayingMessage(existing)
			return
		}
		slog.Warn(
			"failed to edit now playing message, sending a new one",
			"event", event,
			"error", err,
		)
		h.deleteMessage(existing, event)
	case domain.NowPlayingReplace:
		h.deleteMessage(existing, event)
	}

	slog.Debug(
		"sending now playing notification",
		"event", event,
	)

	messageID, err := h.notifier.SendNowPlaying(channelID, info)
	if err != nil {
		slog.Error(
			"failed to send now playing notification",
			"event", event,
			"error", err,
		)
		return
	}

	msg := domain.NewNowPlayingMessage(channelID, messageID)
	state.SetNowPlayingMessage(&msg)
}

func (h *NotificationEventHandler) handleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	if !event.Reason.IsFailure() {
		return
	}

	state, err := h.playerStates.Get(ctx, event.GuildID)
	if err != nil {
		return
	}

	state.Lock()
	channelID := state.NotificationChannelID()
	state.Unlock()

	message := fmt.Sprintf("Failed to play **%s**", event.Title)
	if event.Reason == domain.TrackEndStuck {
		message = fmt.Sprintf("**%s** got stuck and was skipped", event.Title)
	} else if event.Message != "" {
		message += ": " + event.Message
	}

	if err := h.notifier.SendError(channelID, message); err != nil {
		slog.Warn(
			"failed to send track failure notification",
			"event", event,
			"error", err,
		)
	}
}

func (h *NotificationEventHandler) handleQueueFinished(
	ctx context.Context,
	event domain.QueueFinishedEvent,
) {
	state, err := h.playerStates.Get(ctx, event.GuildID)
	if err != nil {
		return
	}

	state.Lock()
	defer state.Unlock()

	for _, msg := range []*domain.NowPlayingMessage{
		state.NowPlayingMessage(),
		state.LoadingMessage(),
	} {
		if msg != nil {
			h.deleteMessage(msg, event)
		}
	}
	state.ClearNowPlayingMessage()
	state.ClearLoadingMessage()

	if err := h.notifier.SendQueueFinished(state.NotificationChannelID()); err != nil {
		slog.Warn(
			"failed to send queue finished notification",
			"event", event,
			"error", err,
		)
	}
}

func (h *NotificationEventHandler) handlePlaybackStopped(event domain.PlaybackStoppedEvent) {
	if event.NowPlaying == nil {
		return
	}
	h.deleteMessage(event.NowPlaying, event)
}

func (h *NotificationEventHandler) deleteMessage(msg *domain.NowPlayingMessage, event domain.Event) {
	if err := h.notifier.DeleteMessage(msg.ChannelID, msg.MessageID); err != nil {
		slog.Warn(
			"failed to delete now playing message",
			"event", event,
			"now_playing", msg,
			"error", err,
		)
	}
}

// IdleLeaver disconnects the bot from a guild where nothing is playing.
type IdleLeaver interface {
	LeaveIfIdle(ctx context.Context, guildID snowflake.ID) (bool, error)
}

// IdleEventHandler leaves voice channels after the queue has been empty for a while.
type IdleEventHandler struct {
	subscriber ports.EventSubscriber
	leaver     IdleLeaver
	timeout    time.Duration

	mu     sync.Mutex
	timers map[snowflake.ID]*time.Timer
}

// NewIdleEventHandler creates a new IdleEventHandler.
// A timeout of zero or less disables leaving on idle.
func NewIdleEventHandler(
	subscriber ports.EventSubscriber,
	leaver IdleLeaver,
	timeout time.Duration,
) *IdleEventHandler {
	return &IdleEventHandler{
		subscriber: subscriber,
		leaver:     leaver,
		timeout:    timeout,
		timers:     make(map[snowflake.ID]*time.Timer),
	}
}

// Start registers event handlers with the subscriber.
func (h *IdleEventHandler) Start() error {
	if h.timeout <= 0 {
		slog.Debug("idle timeout disabled")
		return nil
	}

	arm := func(_ context.Context, e domain.Event) {
		h.arm(e.Guild())
	}

	if err := h.subscriber.Subscribe(reflect.TypeFor[domain.QueueFinishedEvent](), arm); err != nil {
		return err
	}
	if err := h.subscriber.Subscribe(reflect.TypeFor[domain.PlaybackStoppedEvent](), arm); err != nil {
		return err
	}

	err := h.subscriber.Subscribe(
		reflect.TypeFor[domain.TrackEnqueuedEvent](),
		func(_ context.Context, e domain.Event) {
			h.disarm(e.Guild())
		},
	)
	if err != nil {
		return err
	}

	slog.Debug("idle event handlers properly registered", "timeout", h.timeout)

	return nil
}

// Stop cancels every pending idle timer.
func (h *IdleEventHandler) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for guildID, timer := range h.timers {
		timer.Stop()
		delete(h.timers, guildID)
	}
}

func (h *IdleEventHandler) arm(guildID snowflake.ID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if timer, ok := h.timers[guildID]; ok {
		timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(h.timeout, func() {
		h.mu.Lock()
		if h.timers[guildID] != timer {
			h.mu.Unlock()
			return
		}
		delete(h.timers, guildID)
		h.mu.Unlock()

		left, err := h.leaver.LeaveIfIdle(context.Background(), guildID)
		if err != nil {
			slog.Debug("idle leave skipped", "guild", guildID, "error", err)
			return
		}
		if left {
			slog.Info("left voice channel after idle timeout", "guild", guildID)
		}
	})
	h.timers[guildID] = timer
}

func (h *IdleEventHandler) disarm(guildID snowflake.ID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if timer, ok := h.timers[guildID]; ok {
		timer.Stop()
		delete(h.timers, guildID)
	}
}
