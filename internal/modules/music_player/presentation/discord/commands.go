package discord

import "github.com/bwmarrin/discordgo"

// sourceChoices are the search sources offered by /play and /search.
var sourceChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "YouTube", Value: "youtube"},
	{Name: "YouTube Music", Value: "youtubemusic"},
	{Name: "SoundCloud", Value: "soundcloud"},
	{Name: "Spotify", Value: "spotify"},
}

// Commands returns all slash commands for the music player module.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "join",
			Description: "Join a voice channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Voice channel to join (defaults to your current channel)",
					Required:    false,
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildVoice,
						discordgo.ChannelTypeGuildStageVoice,
					},
				},
			},
		},
		{
			Name:        "leave",
			Description: "Leave the voice channel",
		},
		{
			Name:        "play",
			Description: "Play a track from URL or search",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "query",
					Description:  "URL or search term",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "position",
					Description: "Queue position to insert at (2 plays next)",
					Required:    false,
					MinValue:    floatPtr(2),
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "source",
					Description: "Where to search (defaults to YouTube)",
					Required:    false,
					Choices:     sourceChoices,
				},
			},
		},
		{
			Name:        "playfile",
			Description: "Play an uploaded audio file",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        "file",
					Description: "mp3, opus, ogg, wav or flac file",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "position",
					Description: "Queue position to insert at (2 plays next)",
					Required:    false,
					MinValue:    floatPtr(2),
				},
			},
		},
		{
			Name:        "search",
			Description: "Search and pick one of the top results",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "Search term",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "source",
					Description: "Where to search (defaults to YouTube)",
					Required:    false,
					Choices:     sourceChoices,
				},
			},
		},
		{
			Name:        "stop",
			Description: "Stop playback and clear the queue",
		},
		{
			Name:        "pause",
			Description: "Pause playback",
		},
		{
			Name:        "resume",
			Description: "Resume playback",
		},
		{
			Name:        "skip",
			Description: "Skip the current track",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Number of tracks to skip, the current one included",
					Required:    false,
					MinValue:    floatPtr(1),
				},
			},
		},
		{
			Name:        "forward",
			Description: "Fast forward the current track",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "seconds",
					Description: "Seconds to skip ahead",
					Required:    true,
					MinValue:    floatPtr(1),
				},
			},
		},
		{
			Name:        "rewind",
			Description: "Rewind the current track",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "seconds",
					Description: "Seconds to go back",
					Required:    true,
					MinValue:    floatPtr(1),
				},
			},
		},
		{
			Name:        "seek",
			Description: "Jump to a timestamp in the current track",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "timestamp",
					Description: "Seconds, mm:ss or hh:mm:ss",
					Required:    true,
				},
			},
		},
		{
			Name:        "nowplaying",
			Description: "Show the current track",
		},
		{
			Name:        "lock",
			Description: "Repeat the current track",
		},
		{
			Name:        "unlock",
			Description: "Stop repeating the current track",
		},
		{
			Name:        "ping",
			Description: "Show bot and audio node status",
		},
		{
			Name:        "queue",
			Description: "Manage the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "view",
					Description: "Show the current queue",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "page",
							Description: "Page number",
							Required:    false,
							MinValue:    floatPtr(1),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a track from the queue",
					Options: []*discordgo.ApplicationCommandOption{
						positionOption("position", "Position of the track to remove, as shown in /queue view"),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "move",
					Description: "Move a track to another position",
					Options: []*discordgo.ApplicationCommandOption{
						positionOption("from", "Position of the track to move"),
						positionOption("to", "Position to move the track to"),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "shuffle",
					Description: "Shuffle the upcoming tracks",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "clear",
					Description: "Remove every upcoming track",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "loop",
					Description: "Toggle looping the whole queue",
				},
			},
		},
	}
}

func positionOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionInteger,
		Name:         name,
		Description:  description,
		Required:     true,
		MinValue:     floatPtr(2),
		Autocomplete: true,
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
