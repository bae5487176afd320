package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

// voiceConnectionTimeout is the maximum time to wait for voice connection to be established.
const voiceConnectionTimeout = 10 * time.Second

// ErrNoNode is returned when no Lavalink node is available.
var ErrNoNode = errors.New("no available Lavalink node")

// voiceHandshake buffers the two halves of a Discord voice connection.
// Lavalink rejects a partial voice state, so VoiceStateUpdate and
// VoiceServerUpdate are only forwarded once both have arrived, whatever
// order Discord sends them in.
type voiceHandshake struct {
	mu sync.Mutex

	// From VoiceStateUpdate
	hasVoiceState bool
	channelID     *snowflake.ID
	sessionID     string

	// From VoiceServerUpdate
	hasVoiceServer bool
	token          string
	endpoint       string

	// ready is closed when both halves have been seen; nil when nobody waits.
	ready chan struct{}
}

// voiceServerData is a complete handshake, ready to be forwarded to Lavalink.
type voiceServerData struct {
	channelID *snowflake.ID
	sessionID string
	token     string
	endpoint  string
}

// setVoiceState stores voice state data and returns the complete handshake
// once the server half is also present.
func (h *voiceHandshake) setVoiceState(channelID *snowflake.ID, sessionID string) *voiceServerData {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hasVoiceState = true
	h.channelID = channelID
	h.sessionID = sessionID

	return h.completeLocked()
}

// setVoiceServer stores voice server data and returns the complete handshake
// once the state half is also present.
func (h *voiceHandshake) setVoiceServer(token, endpoint string) *voiceServerData {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hasVoiceServer = true
	h.token = token
	h.endpoint = endpoint

	return h.completeLocked()
}

// wait returns a channel closed by the next completed handshake.
func (h *voiceHandshake) wait() <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ready == nil {
		h.ready = make(chan struct{})
	}
	return h.ready
}

func (h *voiceHandshake) completeLocked() *voiceServerData {
	if !h.hasVoiceState || !h.hasVoiceServer {
		return nil
	}

	data := &voiceServerData{
		channelID: h.channelID,
		sessionID: h.sessionID,
		token:     h.token,
		endpoint:  h.endpoint,
	}

	h.hasVoiceState = false
	h.hasVoiceServer = false
	h.channelID = nil
	h.sessionID = ""
	h.token = ""
	h.endpoint = ""

	if h.ready != nil {
		close(h.ready)
		h.ready = nil
	}

	return data
}

// LavalinkAdapter wraps DisGoLink to implement the port interfaces.
type LavalinkAdapter struct {
	link      disgolink.Client
	session   *discordgo.Session
	botID     snowflake.ID
	nodeName  string
	publisher ports.EventPublisher

	handshakeMu sync.Mutex
	handshakes  map[snowflake.ID]*voiceHandshake

	// exceptions holds the last exception message per guild until the
	// matching track end event arrives.
	exceptionMu sync.Mutex
	exceptions  map[snowflake.ID]string
}

// LavalinkConfig contains Lavalink connection configuration.
type LavalinkConfig struct {
	NodeName string
	Address  string
	Password string
	Secure   bool
}

// NewLavalinkAdapter creates a new LavalinkAdapter and connects it to the node.
// Track lifecycle events reported by the node are published as domain events.
func NewLavalinkAdapter(
	session *discordgo.Session,
	botID snowflake.ID,
	config LavalinkConfig,
	publisher ports.EventPublisher,
) (*LavalinkAdapter, error) {
	if config.NodeName == "" {
		config.NodeName = "main"
	}

	adapter := newLavalinkAdapter(session, botID, config.NodeName, publisher)

	link := disgolink.New(botID,
		disgolink.WithListenerFunc(adapter.onTrackStart),
		disgolink.WithListenerFunc(adapter.onTrackEnd),
		disgolink.WithListenerFunc(adapter.onTrackException),
		disgolink.WithListenerFunc(adapter.onTrackStuck),
	)
	adapter.link = link

	node, err := link.AddNode(context.Background(), disgolink.NodeConfig{
		Name:     config.NodeName,
		Address:  config.Address,
		Password: config.Password,
		Secure:   config.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}

	slog.Info(
		"connected to Lavalink",
		"node", node.Config().Name,
		"address", config.Address,
		"secure", config.Secure,
	)

	return adapter, nil
}

func newLavalinkAdapter(
	session *discordgo.Session,
	botID snowflake.ID,
	nodeName string,
	publisher ports.EventPublisher,
) *LavalinkAdapter {
	return &LavalinkAdapter{
		session:    session,
		botID:      botID,
		nodeName:   nodeName,
		publisher:  publisher,
		handshakes: make(map[snowflake.ID]*voiceHandshake),
		exceptions: make(map[snowflake.ID]string),
	}
}

// Close disconnects from every Lavalink node.
func (c *LavalinkAdapter) Close() {
	if c.link != nil {
		c.link.Close()
	}
}

// JoinChannel connects to a voice channel.
// It waits for both VoiceStateUpdate and VoiceServerUpdate events before returning.
func (c *LavalinkAdapter) JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error {
	ready := c.handshake(guildID).wait()

	err := c.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, true)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	timer := time.NewTimer(voiceConnectionTimeout)
	defer timer.Stop()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for voice connection: %w", ctx.Err())
	case <-timer.C:
		return errors.New("timeout waiting for voice connection")
	}
}

// LeaveChannel destroys the guild's player and disconnects from voice.
func (c *LavalinkAdapter) LeaveChannel(ctx context.Context, guildID snowflake.ID) error {
	if player := c.link.ExistingPlayer(guildID); player != nil {
		if err := player.Destroy(ctx); err != nil {
			slog.Warn("failed to destroy player", "guild", guildID, "error", err)
		}
	}

	c.clearHandshake(guildID)
	c.takeException(guildID)

	err := c.session.ChannelVoiceJoinManual(guildID.String(), "", false, false)
	if err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// Play plays a track, replacing the current one and clearing a pause.
func (c *LavalinkAdapter) Play(
	ctx context.Context,
	guildID snowflake.ID,
	track *domain.Track,
) error {
	player := c.link.Player(guildID)

	// Use WithEncodedTrack to avoid userData:null issue
	err := player.Update(ctx, lavalink.WithEncodedTrack(track.Encoded), lavalink.WithPaused(false))
	if err != nil {
		return fmt.Errorf("failed to play track: %w", err)
	}

	return nil
}

// Stop stops the current playback.
func (c *LavalinkAdapter) Stop(ctx context.Context, guildID snowflake.ID) error {
	player := c.link.ExistingPlayer(guildID)
	if player == nil {
		return nil
	}

	if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}

	return nil
}

// Pause pauses the current playback.
func (c *LavalinkAdapter) Pause(ctx context.Context, guildID snowflake.ID) error {
	player := c.link.Player(guildID)

	if err := player.Update(ctx, lavalink.WithPaused(true)); err != nil {
		return fmt.Errorf("failed to pause playback: %w", err)
	}

	return nil
}

// Resume resumes the current playback.
func (c *LavalinkAdapter) Resume(ctx context.Context, guildID snowflake.ID) error {
	player := c.link.Player(guildID)

	if err := player.Update(ctx, lavalink.WithPaused(false)); err != nil {
		return fmt.Errorf("failed to resume playback: %w", err)
	}

	return nil
}

// Seek moves the playhead of the current track.
func (c *LavalinkAdapter) Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) error {
	player := c.link.ExistingPlayer(guildID)
	if player == nil || player.Track() == nil {
		return errors.New("failed to seek: nothing is playing")
	}

	err := player.Update(ctx, lavalink.WithPosition(lavalink.Duration(position.Milliseconds())))
	if err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	return nil
}

// Position returns the node's view of the playhead, or -1 when nothing is loaded.
func (c *LavalinkAdapter) Position(guildID snowflake.ID) time.Duration {
	player := c.link.ExistingPlayer(guildID)
	if player == nil || player.Track() == nil {
		return -1
	}
	return time.Duration(player.Position()) * time.Millisecond
}

// LoadTracks loads tracks from Lavalink.
func (c *LavalinkAdapter) LoadTracks(
	ctx context.Context,
	query string,
) (*ports.LoadResult, error) {
	node := c.link.BestNode()
	if node == nil {
		return nil, ErrNoNode
	}

	result, err := node.LoadTracks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}

	return normalizeLoadResult(result), nil
}

// NodeStatus reports the health of the configured Lavalink node.
func (c *LavalinkAdapter) NodeStatus(ctx context.Context) (*ports.NodeStatus, error) {
	node := c.link.Node(c.nodeName)
	if node == nil {
		node = c.link.BestNode()
	}
	if node == nil {
		return nil, ErrNoNode
	}

	status := &ports.NodeStatus{
		Name:      node.Config().Name,
		Connected: node.Status() == disgolink.StatusConnected,
	}

	stats := node.Stats()
	status.Players = stats.Players
	status.PlayingPlayers = stats.PlayingPlayers
	status.Uptime = time.Duration(stats.Uptime) * time.Millisecond
	status.MemoryUsed = uint64(max(stats.Memory.Used, 0))
	status.CPUCores = stats.CPU.Cores
	status.LavalinkLoad = stats.CPU.LavalinkLoad

	start := time.Now()
	version, err := node.Version(ctx)
	if err != nil {
		slog.Warn("failed to query Lavalink version", "node", status.Name, "error", err)
		return status, nil
	}
	status.Latency = time.Since(start)
	status.Version = version

	return status, nil
}

// normalizeLoadResult converts a Lavalink result into the single shape used
// by the application layer.
func normalizeLoadResult(result *lavalink.LoadResult) *ports.LoadResult {
	if result == nil {
		return &ports.LoadResult{Type: ports.LoadTypeEmpty}
	}

	switch data := result.Data.(type) {
	case lavalink.Track:
		return &ports.LoadResult{
			Type:   ports.LoadTypeTrack,
			Tracks: []*ports.TrackInfo{convertTrack(data)},
		}

	case lavalink.Playlist:
		return &ports.LoadResult{
			Type:         ports.LoadTypePlaylist,
			Tracks:       convertTracks(data.Tracks),
			PlaylistName: data.Info.Name,
		}

	case lavalink.Search:
		return &ports.LoadResult{
			Type:   ports.LoadTypeSearch,
			Tracks: convertTracks(data),
		}

	case lavalink.Exception:
		return &ports.LoadResult{
			Type:  ports.LoadTypeError,
			Error: data.Message,
		}

	default:
		return &ports.LoadResult{Type: ports.LoadTypeEmpty}
	}
}

func convertTracks(tracks []lavalink.Track) []*ports.TrackInfo {
	infos := make([]*ports.TrackInfo, len(tracks))
	for i, track := range tracks {
		infos[i] = convertTrack(track)
	}
	return infos
}

// convertTrack converts a Lavalink track to TrackInfo.
func convertTrack(track lavalink.Track) *ports.TrackInfo {
	info := track.Info

	return &ports.TrackInfo{
		Identifier: info.Identifier,
		Encoded:    track.Encoded,
		Title:      info.Title,
		Artist:     info.Author,
		Duration:   time.Duration(info.Length) * time.Millisecond,
		URI:        derefString(info.URI),
		ArtworkURL: derefString(info.ArtworkURL),
		SourceName: info.SourceName,
		IsStream:   info.IsStream,
		// The node's isSeekable flag is not decoded by disgolink; only live
		// streams refuse seeks.
		IsSeekable: !info.IsStream,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// OnVoiceServerUpdate handles Discord voice server updates.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice server update", "error", err)
		return
	}

	if data := c.handshake(guildID).setVoiceServer(event.Token, event.Endpoint); data != nil {
		c.forwardVoiceEvents(guildID, data)
	}
}

// OnVoiceStateUpdate handles Discord voice state updates.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	// Only handle updates for the bot itself
	if event.UserID != c.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	// An empty channel ID means the bot is disconnecting
	var channelID *snowflake.ID
	if event.ChannelID != "" {
		id, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			slog.Error("failed to parse channel ID in voice state update", "error", err)
			return
		}
		channelID = &id
	}

	// Disconnects need no server half
	if channelID == nil {
		c.link.OnVoiceStateUpdate(context.Background(), guildID, nil, event.SessionID)
		c.clearHandshake(guildID)
		return
	}

	if data := c.handshake(guildID).setVoiceState(channelID, event.SessionID); data != nil {
		c.forwardVoiceEvents(guildID, data)
	}
}

// handshake returns the voice handshake for a guild, creating one if needed.
func (c *LavalinkAdapter) handshake(guildID snowflake.ID) *voiceHandshake {
	c.handshakeMu.Lock()
	defer c.handshakeMu.Unlock()

	h, ok := c.handshakes[guildID]
	if !ok {
		h = &voiceHandshake{}
		c.handshakes[guildID] = h
	}
	return h
}

func (c *LavalinkAdapter) clearHandshake(guildID snowflake.ID) {
	c.handshakeMu.Lock()
	defer c.handshakeMu.Unlock()
	delete(c.handshakes, guildID)
}

// forwardVoiceEvents sends a completed handshake to Lavalink, state first.
func (c *LavalinkAdapter) forwardVoiceEvents(guildID snowflake.ID, data *voiceServerData) {
	slog.Debug("forwarding buffered voice events to Lavalink",
		"guild", guildID,
		"channel", data.channelID,
		"has_session_id", data.sessionID != "",
	)

	c.link.OnVoiceStateUpdate(context.Background(), guildID, data.channelID, data.sessionID)
	c.link.OnVoiceServerUpdate(context.Background(), guildID, data.token, data.endpoint)
}

func (c *LavalinkAdapter) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("track started", "guild", player.GuildID(), "track", event.Track.Info.Title)
}

func (c *LavalinkAdapter) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	slog.Debug("track ended", "guild", player.GuildID(), "reason", event.Reason)

	c.publishTrackEnded(player.GuildID(), event.Track, convertEndReason(event.Reason))
}

func (c *LavalinkAdapter) onTrackException(
	player disgolink.Player,
	event lavalink.TrackExceptionEvent,
) {
	slog.Warn(
		"track exception",
		"guild", player.GuildID(),
		"track", event.Track.Info.Title,
		"error", event.Exception.Message,
	)

	// The node follows up with a load failed track end
	c.exceptionMu.Lock()
	c.exceptions[player.GuildID()] = event.Exception.Message
	c.exceptionMu.Unlock()
}

func (c *LavalinkAdapter) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn(
		"track stuck",
		"guild", player.GuildID(),
		"track", event.Track.Info.Title,
		"threshold", event.Threshold,
	)

	c.publishTrackEnded(player.GuildID(), event.Track, domain.TrackEndStuck)
}

func (c *LavalinkAdapter) publishTrackEnded(
	guildID snowflake.ID,
	track lavalink.Track,
	reason domain.TrackEndReason,
) {
	message := c.takeException(guildID)
	if reason != domain.TrackEndLoadFailed {
		message = ""
	}

	if c.publisher == nil {
		return
	}

	err := c.publisher.Publish(domain.TrackEndedEvent{
		GuildID: guildID,
		TrackID: domain.TrackID(track.Info.Identifier),
		Title:   track.Info.Title,
		Reason:  reason,
		Message: message,
	})
	if err != nil {
		slog.Warn("failed to publish track end", "guild", guildID, "error", err)
	}
}

func (c *LavalinkAdapter) takeException(guildID snowflake.ID) string {
	c.exceptionMu.Lock()
	defer c.exceptionMu.Unlock()

	message := c.exceptions[guildID]
	delete(c.exceptions, guildID)
	return message
}

func convertEndReason(reason lavalink.TrackEndReason) domain.TrackEndReason {
	switch reason {
	case lavalink.TrackEndReasonFinished:
		return domain.TrackEndFinished
	case lavalink.TrackEndReasonLoadFailed:
		return domain.TrackEndLoadFailed
	case lavalink.TrackEndReasonStopped:
		return domain.TrackEndStopped
	case lavalink.TrackEndReasonReplaced:
		return domain.TrackEndReplaced
	case lavalink.TrackEndReasonCleanup:
		return domain.TrackEndCleanup
	default:
		return domain.TrackEndStopped
	}
}

// Ensure LavalinkAdapter implements port interfaces.
var (
	_ ports.AudioPlayer        = (*LavalinkAdapter)(nil)
	_ ports.VoiceConnection    = (*LavalinkAdapter)(nil)
	_ ports.TrackResolver      = (*LavalinkAdapter)(nil)
	_ ports.NodeStatusProvider = (*LavalinkAdapter)(nil)
)
