package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/dustin/go-humanize"
	"github.com/sglre6355/tunebox/internal/bot"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/usecases"
)

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	voiceChannel        *usecases.VoiceChannelService
	playback            *usecases.PlaybackService
	queue               *usecases.QueueService
	trackLoader         *usecases.TrackLoaderService
	searchSession       *usecases.SearchSessionService
	filePlayback        *usecases.FilePlaybackService
	notificationChannel *usecases.NotificationChannelService
	nodeStatus          *usecases.NodeStatusService
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	voiceChannel *usecases.VoiceChannelService,
	playback *usecases.PlaybackService,
	queue *usecases.QueueService,
	trackLoader *usecases.TrackLoaderService,
	searchSession *usecases.SearchSessionService,
	filePlayback *usecases.FilePlaybackService,
	notificationChannel *usecases.NotificationChannelService,
	nodeStatus *usecases.NodeStatusService,
) *CommandHandlers {
	return &CommandHandlers{
		voiceChannel:        voiceChannel,
		playback:            playback,
		queue:               queue,
		trackLoader:         trackLoader,
		searchSession:       searchSession,
		filePlayback:        filePlayback,
		notificationChannel: notificationChannel,
		nodeStatus:          nodeStatus,
	}
}

// Handlers maps command names to their handlers.
func (h *CommandHandlers) Handlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"join":       h.HandleJoin,
		"leave":      h.HandleLeave,
		"play":       h.HandlePlay,
		"playfile":   h.HandlePlayFile,
		"search":     h.HandleSearch,
		"stop":       h.HandleStop,
		"pause":      h.HandlePause,
		"resume":     h.HandleResume,
		"skip":       h.HandleSkip,
		"forward":    h.HandleForward,
		"rewind":     h.HandleRewind,
		"seek":       h.HandleSeek,
		"nowplaying": h.HandleNowPlaying,
		"lock":       h.HandleLock,
		"unlock":     h.HandleUnlock,
		"ping":       h.HandlePing,
		"queue":      h.HandleQueue,
	}
}

// HandleJoin handles the /join command.
func (h *CommandHandlers) HandleJoin(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, sentence(err.Error()))
	}

	var voiceChannelID snowflake.ID
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["channel"]; ok {
		value, _ := opt.Value.(string)
		voiceChannelID, err = snowflake.Parse(value)
		if err != nil {
			return respondError(r, "Invalid voice channel.")
		}
	}

	output, err := h.voiceChannel.Join(ctx, usecases.JoinInput{
		GuildID:               ids.guildID,
		UserID:                ids.userID,
		NotificationChannelID: ids.channelID,
		VoiceChannelID:        voiceChannelID,
	})
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	if output.AlreadyConnected {
		return respondSuccess(r, fmt.Sprintf("Already connected to <#%d>.", output.VoiceChannelID))
	}
	return respondSuccess(r, fmt.Sprintf("Connected to <#%d>.", output.VoiceChannelID))
}

// HandleLeave handles the /leave command.
func (h *CommandHandlers) HandleLeave(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, sentence(err.Error()))
	}

	if err := h.voiceChannel.Leave(ctx, usecases.LeaveInput{GuildID: ids.guildID}); err != nil {
		return respondError(r, errorMessage(err))
	}

	return respondSuccess(r, "Disconnected.")
}

// HandlePlay handles the /play command.
// The deferred reply shows progress and turns into the "Now Playing"
// message when the tracks start playback right away.
func (h *CommandHandlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, sentence(err.Error()))
	}

	options := optionMap(i.ApplicationCommandData().Options)
	var query, source string
	if opt, ok := options["query"]; ok {
		query = strings.TrimSpace(opt.StringValue())
	}
	if opt, ok := options["source"]; ok {
		source = opt.StringValue()
	}
	position := positionOptionValue(options)

	if err := r.Defer(false); err != nil {
		return err
	}

	if _, err := h.voiceChannel.Join(ctx, usecases.JoinInput{
		GuildID:               ids.guildID,
		UserID:                ids.userID,
		NotificationChannelID: ids.channelID,
	}); err != nil {
		return editError(r, errorMessage(err))
	}

	loaded, err := h.trackLoader.LoadTracks(ctx, usecases.LoadTracksInput{
		GuildID:     ids.guildID,
		RequesterID: ids.userID,
		Query:       query,
		Source:      source,
	})
	if err != nil {
		return editError(r, errorMessage(err))
	}

	label := trackLink(loaded.Tracks[0])
	if loaded.IsPlaylist {
		label = fmt.Sprintf("**%d tracks** from **%s**", len(loaded.Tracks), escapeMarkdown(loaded.PlaylistName))
	}

	_, err = h.enqueue(ctx, r, ids, loaded.Tracks, position, label)
	return err
}

// HandlePlayFile handles the /playfile command.
func (h *CommandHandlers) HandlePlayFile(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, sentence(err.Error()))
	}

	data := i.ApplicationCommandData()
	options := optionMap(data.Options)
	attachment := resolvedAttachment(data, options["file"])
	if attachment == nil {
		return respondError(r, "Attach an audio file to play.")
	}
	position := positionOptionValue(options)

	if err := r.Defer(false); err != nil {
		return err
	}

	if _, err := h.voiceChannel.Join(ctx, usecases.JoinInput{
		GuildID:               ids.guildID,
		UserID:                ids.userID,
		NotificationChannelID: ids.channelID,
	}); err != nil {
		return editError(r, errorMessage(err))
	}

	output, err := h.filePlayback.LoadFile(ctx, usecases.LoadFileInput{
		GuildID:     ids.guildID,
		RequesterID: ids.userID,
		FileName:    attachment.Filename,
		URL:         attachment.URL,
		Size:        int64(attachment.Size),
	})
	if err != nil {
		message := errorMessage(err)
		if maxSize := h.filePlayback.MaxSize(); maxSize > 0 && errors.Is(err, usecases.ErrFileTooLarge) {
			message = fmt.Sprintf("File is too large, the limit is %s.", humanize.Bytes(uint64(maxSize)))
		}
		return editError(r, message)
	}

	added, err := h.enqueue(ctx, r, ids, []*usecases.Track{output.Track}, position, trackLink(output.Track))
	if !added {
		h.filePlayback.Discard(output.Track)
	}
	return err
}

// enqueue adds tracks to the queue and reports the outcome in the deferred reply.
// It reports whether the tracks made it into the queue.
func (h *CommandHandlers) enqueue(
	ctx context.Context,
	r bot.Responder,
	ids interactionIDs,
	tracks []*usecases.Track,
	position *int,
	label string,
) (bool, error) {
	msg, err := editEmbed(r, &discordgo.MessageEmbed{
		Description: fmt.Sprintf("Loading %s...", label),
		Color:       colorInfo,
	})
	if err != nil {
		return false, err
	}

	output, err := h.queue.Add(ctx, usecases.QueueAddInput{
		GuildID:        ids.guildID,
		Tracks:         tracks,
		Position:       position,
		LoadingMessage: loadingMessage(msg, ids.channelID),
	})
	if err != nil {
		return false, editError(r, errorMessage(err))
	}

	// The reply becomes "Now Playing" once the track starts
	if output.StartsPlayback {
		return true, nil
	}

	_, err = editEmbed(r, &discordgo.MessageEmbed{
		Description: fmt.Sprintf("Added %s to the queue at position %d.", label, output.Position),
		Color:       colorSuccess,
	})
	return true, err
}

// HandleSearch handles the /search command.
func (h *CommandHandlers) HandleSearch(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, sentence(err.Error()))
	}

	options := optionMap(i.ApplicationCommandData().Options)
	var query, source string
	if opt, ok := options["query"]; ok {
		query = strings.TrimSpace(opt.StringValue())
	}
	if opt, ok := options["source"]; ok {
		source = opt.StringValue()
	}

	if err := r.Defer(false); err != nil {
		return err
	}

	if _, err := h.voiceChannel.Join(ctx, usecases.JoinInput{
		GuildID:               ids.guildID,
		UserID:                ids.userID,
		NotificationChannelID: ids.channelID,
	}); err != nil {
		return editError(r, errorMessage(err))
	}

	output, err := h.searchSession.Start(ctx, usecases.StartSearchInput{
		GuildID: ids.guildID,
		UserID:  ids.userID,
		Query:   query,
		Source:  source,
	})
	if err != nil {
		return editError(r, errorMessage(err))
	}

	components := searchComponents(ids.userID, len(output.Tracks))
	_, err = r.Edit(&discordgo.WebhookEdit{
		Embeds:     &[]*discordgo.MessageEmbed{searchResultsEmbed(query, output.Tracks)},
		Components: &components,
	})
	return err
}

// HandleStop handles the /stop command.
func (h *CommandHandlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, sentence(err.Error()))
	}
	h.setNotificationChannel(ctx, ids)

	output, err := h.playback.Stop(ctx, usecases.StopInput{GuildID: ids.guildID, UserID: ids.userID})
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	return respondSuccess(r, fmt.Sprintf("Stopped playback and cleared %s.", pluralTracks(output.ClearedCount)))
}

// HandlePause handles the /pause command.
func (h *CommandHandlers) HandlePause(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, sentence(err.Error()))
	}
	h.setNotificationChannel(ctx, ids)

	if err := h.playback.Pause(ctx, usecases.PauseInput{GuildID: ids.guildID, UserID: ids.userID}); err != nil {
		return respondError(r, errorMessage(err))
	}

	return respondSuccess(r, "Paused playback.")
}

// HandleResume handles the /resume command.
func (h *CommandHandlers) HandleResume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, sentence(err.Error()))
	}
	h.setNotificationChannel(ctx, ids)

	if err := h.playback.Resume(ctx, usecases.ResumeInput{GuildID: ids.guildID, UserID: ids.userID}); err != nil {
		return respondError(r, errorMessage(err))
	}

	return respondSuccess(r, "Resumed playback.")
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, sentence(err.Error()))
	}
	h.setNotificationChannel(ctx, ids)

	amount := 1
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["amount"]; ok {
		amount = int(opt.IntValue())
	}

	output, err := h.playback.Skip(ctx, usecases.SkipInput{
		GuildID: ids.guildID,
		UserID:  ids.userID,
		Amount:  amount,
	})
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	// "Now Playing" for the next track is sent via CurrentTrackChangedEvent
	var description string
	switch {
	case output.SkippedCount > 1:
		description = fmt.Sprintf("Skipped %s.", pluralTracks(output.SkippedCount))
	case output.SkippedTrack != nil:
		description = fmt.Sprintf("Skipped %s.", trackLink(output.SkippedTrack))
	default:
		description = "Skipped."
	}
	if output.NextTrack == nil {
		description += " The queue is now empty."
	}

	return respondSuccess(r, description)
}

// HandleForward handles the /forward command.
func (h *CommandHandlers) HandleForward(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, sentence(err.Error()))
	}
	h.setNotificationChannel(ctx, ids)

	output, err := h.playback.Forward(ctx, usecases.ForwardInput{
		GuildID: ids.guildID,
		UserID:  ids.userID,
		Amount:  secondsOption(i),
	})
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	return respondSuccess(r, seekDescription(output))
}

// HandleRewind handles the /rewind command.
func (h *CommandHandlers) HandleRewind(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, sentence(err.Error()))
	}
	h.setNotificationChannel(ctx, ids)

	output, err := h.playback.Rewind(ctx, usecases.RewindInput{
		GuildID: ids.guildID,
		UserID:  ids.userID,
		Amount:  secondsOption(i),
	})
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	return respondSuccess(r, seekDescription(output))
}

// HandleSeek handles the /seek command.
func (h *CommandHandlers) HandleSeek(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, sentence(err.Error()))
	}
	h.setNotificationChannel(ctx, ids)

	var timestamp string
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["timestamp"]; ok {
		timestamp = opt.StringValue()
	}

	position, err := usecases.ParseTimestamp(timestamp)
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	output, err := h.playback.Seek(ctx, usecases.SeekInput{
		GuildID:  ids.guildID,
		UserID:   ids.userID,
		Position: position,
	})
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	return respondSuccess(r, seekDescription(output))
}

// HandleNowPlaying handles the /nowplaying command.
func (h *CommandHandlers) HandleNowPlaying(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, sentence(err.Error()))
	}

	output, err := h.playback.NowPlaying(ctx, usecases.NowPlayingInput{GuildID: ids.guildID})
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	return respondEmbed(r, nowPlayingEmbed(output), false)
}

// HandleLock handles the /lock command.
func (h *CommandHandlers) HandleLock(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, sentence(err.Error()))
	}
	h.setNotificationChannel(ctx, ids)

	output, err := h.playback.Lock(ctx, usecases.LockInput{GuildID: ids.guildID, UserID: ids.userID})
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	return respondSuccess(r, fmt.Sprintf("🔂 Repeating %s.", trackLink(output.Track)))
}

// HandleUnlock handles the /unlock command.
func (h *CommandHandlers) HandleUnlock(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, sentence(err.Error()))
	}
	h.setNotificationChannel(ctx, ids)

	if _, err := h.playback.Unlock(ctx, usecases.LockInput{GuildID: ids.guildID, UserID: ids.userID}); err != nil {
		return respondError(r, errorMessage(err))
	}

	return respondSuccess(r, "Stopped repeating the current track.")
}

// HandlePing handles the /ping command.
func (h *CommandHandlers) HandlePing(
	s *discordgo.Session,
	_ *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var gatewayLatency time.Duration
	if s != nil {
		gatewayLatency = s.HeartbeatLatency()
	}

	status, err := h.nodeStatus.Status(ctx)
	if err != nil {
		slog.Warn("failed to get audio node status", "error", err)
	}

	return respondEmbed(r, pingEmbed(gatewayLatency, status), false)
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return respondError(r, "Invalid subcommand.")
	}

	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, sentence(err.Error()))
	}
	h.setNotificationChannel(ctx, ids)

	subCmd := options[0]
	subOptions := optionMap(subCmd.Options)

	switch subCmd.Name {
	case "view":
		page := 1
		if opt, ok := subOptions["page"]; ok {
			page = int(opt.IntValue())
		}
		output, err := h.queue.List(ctx, usecases.QueueListInput{GuildID: ids.guildID, Page: page})
		if err != nil {
			return respondError(r, errorMessage(err))
		}
		return respondEmbed(r, queueEmbed(output), false)

	case "remove":
		output, err := h.queue.Remove(ctx, usecases.QueueRemoveInput{
			GuildID:  ids.guildID,
			UserID:   ids.userID,
			Position: intOption(subOptions, "position"),
		})
		if err != nil {
			return respondError(r, errorMessage(err))
		}
		return respondSuccess(r, fmt.Sprintf("Removed %s.", trackLink(output.RemovedTrack)))

	case "move":
		from, to := intOption(subOptions, "from"), intOption(subOptions, "to")
		output, err := h.queue.Move(ctx, usecases.QueueMoveInput{
			GuildID: ids.guildID,
			UserID:  ids.userID,
			From:    from,
			To:      to,
		})
		if err != nil {
			return respondError(r, errorMessage(err))
		}
		return respondSuccess(r, fmt.Sprintf("Moved %s to position %d.", trackLink(output.Track), to))

	case "shuffle":
		output, err := h.queue.Shuffle(ctx, usecases.QueueShuffleInput{GuildID: ids.guildID, UserID: ids.userID})
		if err != nil {
			return respondError(r, errorMessage(err))
		}
		return respondSuccess(r, fmt.Sprintf("Shuffled %s.", pluralTracks(output.ShuffledCount)))

	case "clear":
		output, err := h.queue.Clear(ctx, usecases.QueueClearInput{GuildID: ids.guildID, UserID: ids.userID})
		if err != nil {
			return respondError(r, errorMessage(err))
		}
		return respondSuccess(r, fmt.Sprintf("Removed %s from the queue.", pluralTracks(output.ClearedCount)))

	case "loop":
		output, err := h.queue.ToggleLoop(ctx, usecases.QueueLoopInput{GuildID: ids.guildID, UserID: ids.userID})
		if err != nil {
			return respondError(r, errorMessage(err))
		}
		if output.Enabled {
			return respondSuccess(r, "🔁 Now looping the queue.")
		}
		return respondSuccess(r, "Queue loop disabled.")

	default:
		return respondError(r, "Unknown subcommand.")
	}
}

// setNotificationChannel points notifications at the channel the command came from.
func (h *CommandHandlers) setNotificationChannel(ctx context.Context, ids interactionIDs) {
	// Best effort; the guild may have no player yet
	changed, err := h.notificationChannel.Set(ctx, usecases.SetNotificationChannelInput{
		GuildID:   ids.guildID,
		ChannelID: ids.channelID,
	})
	if err == nil && changed {
		slog.Debug("moved notifications", "guild", ids.guildID, "channel", ids.channelID)
	}
}

// loadingMessage identifies an interaction reply so it can later become "Now Playing".
func loadingMessage(msg *discordgo.Message, fallbackChannelID snowflake.ID) *usecases.NowPlayingMessage {
	if msg == nil {
		return nil
	}
	messageID, err := snowflake.Parse(msg.ID)
	if err != nil {
		return nil
	}
	channelID, err := snowflake.Parse(msg.ChannelID)
	if err != nil {
		channelID = fallbackChannelID
	}

	loading := usecases.NowPlayingMessage{ChannelID: channelID, MessageID: messageID}
	return &loading
}

// resolvedAttachment looks up the attachment referenced by an attachment option.
func resolvedAttachment(
	data discordgo.ApplicationCommandInteractionData,
	opt *discordgo.ApplicationCommandInteractionDataOption,
) *discordgo.MessageAttachment {
	if opt == nil || data.Resolved == nil {
		return nil
	}
	id, ok := opt.Value.(string)
	if !ok {
		return nil
	}
	return data.Resolved.Attachments[id]
}

func positionOptionValue(
	options map[string]*discordgo.ApplicationCommandInteractionDataOption,
) *int {
	opt, ok := options["position"]
	if !ok {
		return nil
	}
	position := int(opt.IntValue())
	return &position
}

func intOption(options map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) int {
	if opt, ok := options[name]; ok {
		return int(opt.IntValue())
	}
	return 0
}

func secondsOption(i *discordgo.InteractionCreate) time.Duration {
	options := optionMap(i.ApplicationCommandData().Options)
	return time.Duration(intOption(options, "seconds")) * time.Second
}

func seekDescription(output *usecases.SeekOutput) string {
	if output.Skipped {
		if output.NextTrack != nil {
			return fmt.Sprintf("Reached the end of the track, skipped to %s.", trackLink(output.NextTrack))
		}
		return "Reached the end of the track. The queue is now empty."
	}
	return fmt.Sprintf(
		"Jumped to `%s / %s` in %s.",
		usecases.FormatDuration(output.Position),
		usecases.FormatDuration(output.Track.Duration),
		trackLink(output.Track),
	)
}

func pluralTracks(n int) string {
	if n == 1 {
		return "1 track"
	}
	return fmt.Sprintf("%d tracks", n)
}
