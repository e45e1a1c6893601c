package interactions

import "github.com/bwmarrin/discordgo"

// ResponseKind says how a response is delivered.
type ResponseKind int

const (
	// KindMessage sends a new message in reply to the interaction.
	KindMessage ResponseKind = iota

	// KindUpdate edits the message the component belongs to.
	KindUpdate

	// KindModal opens a modal.
	KindModal
)

// Response is what a handler wants sent back to the user.
type Response struct {
	Kind       ResponseKind
	Content    string
	Embeds     []*discordgo.MessageEmbed
	Components []discordgo.MessageComponent
	Files      []*discordgo.File
	Ephemeral  bool

	// Modal is set when Kind is KindModal.
	Modal *Modal

	// FollowUp is sent after the response has been delivered.
	FollowUp *Response
}

// Modal is a form shown to the user.
type Modal struct {
	CustomID   string
	Title      string
	Components []discordgo.MessageComponent
}

// Message returns a public message response.
func Message(content string) *Response {
	return &Response{Kind: KindMessage, Content: content}
}

// Ephemeral returns a message response only the invoking user can see.
func Ephemeral(content string) *Response {
	return &Response{Kind: KindMessage, Content: content, Ephemeral: true}
}

// EphemeralEmbed returns an embed response only the invoking user can see.
func EphemeralEmbed(embeds ...*discordgo.MessageEmbed) *Response {
	return &Response{Kind: KindMessage, Embeds: embeds, Ephemeral: true}
}

// Update returns a response that replaces the component's message.
func Update(content string, components ...discordgo.MessageComponent) *Response {
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	return &Response{Kind: KindUpdate, Content: content, Components: components}
}

// ShowModal returns a response that opens a modal.
func ShowModal(m *Modal) *Response {
	return &Response{Kind: KindModal, Modal: m}
}

func (r *Response) flags() discordgo.MessageFlags {
	if r.Ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

func (r *Response) interactionResponse() *discordgo.InteractionResponse {
	switch r.Kind {
	case KindModal:
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: &discordgo.InteractionResponseData{
				CustomID:   r.Modal.CustomID,
				Title:      r.Modal.Title,
				Components: r.Modal.Components,
			},
		}
	case KindUpdate:
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Content:    r.Content,
				Embeds:     r.Embeds,
				Components: r.Components,
			},
		}
	default:
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content:    r.Content,
				Embeds:     r.Embeds,
				Components: r.Components,
				Files:      r.Files,
				Flags:      r.flags(),
			},
		}
	}
}

func (r *Response) webhookEdit() *discordgo.WebhookEdit {
	content := r.Content
	embeds := r.Embeds
	if embeds == nil {
		embeds = []*discordgo.MessageEmbed{}
	}
	components := r.Components
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	return &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
		Files:      r.Files,
	}
}

func (r *Response) webhookParams() *discordgo.WebhookParams {
	return &discordgo.WebhookParams{
		Content:    r.Content,
		Embeds:     r.Embeds,
		Components: r.Components,
		Files:      r.Files,
		Flags:      r.flags(),
	}
}
