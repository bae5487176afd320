package bot

import "github.com/bwmarrin/discordgo"

// Responder provides an abstraction for responding to Discord interactions.
// This interface enables testing handlers without a live Discord connection.
type Responder interface {
	// Respond sends a response to an interaction.
	Respond(response *discordgo.InteractionResponse) error

	// Defer acknowledges the interaction so the reply can be sent later with Edit.
	Defer(ephemeral bool) error

	// Edit replaces the original reply and returns the resulting message.
	Edit(edit *discordgo.WebhookEdit) (*discordgo.Message, error)
}

// DiscordResponder implements Responder using a live Discord session.
type DiscordResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

// NewDiscordResponder creates a new DiscordResponder.
func NewDiscordResponder(s *discordgo.Session, i *discordgo.Interaction) *DiscordResponder {
	return &DiscordResponder{
		session:     s,
		interaction: i,
	}
}

// Respond sends a response to the interaction via Discord API.
func (r *DiscordResponder) Respond(response *discordgo.InteractionResponse) error {
	return r.session.InteractionRespond(r.interaction, response)
}

// Defer sends a "thinking" acknowledgement.
func (r *DiscordResponder) Defer(ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
}

// Edit edits the original interaction response.
func (r *DiscordResponder) Edit(edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
	return r.session.InteractionResponseEdit(r.interaction, edit)
}

// MockResponder is a test double for Responder.
type MockResponder struct {
	LastResponse *discordgo.InteractionResponse
	LastEdit     *discordgo.WebhookEdit
	Deferred     bool
	Ephemeral    bool

	// EditedMessage is returned from Edit. A message with ID "1" is used when nil.
	EditedMessage *discordgo.Message
	Err           error
}

// Respond records the response for testing.
func (m *MockResponder) Respond(response *discordgo.InteractionResponse) error {
	m.LastResponse = response
	return m.Err
}

// Defer records that the interaction was deferred.
func (m *MockResponder) Defer(ephemeral bool) error {
	m.Deferred = true
	m.Ephemeral = ephemeral
	return m.Err
}

// Edit records the edit for testing.
func (m *MockResponder) Edit(edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
	m.LastEdit = edit
	if m.Err != nil {
		return nil, m.Err
	}
	if m.EditedMessage != nil {
		return m.EditedMessage, nil
	}
	return &discordgo.Message{ID: "1"}, nil
}
