package ticketing

import (
	"fmt"

	"github.com/Jacobbrewer1/satla/pkg/chat"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/Jacobbrewer1/satla/pkg/interactions"
	"github.com/bwmarrin/discordgo"
)

const (
	// SubjectField is the custom ID of the subject input of the ticket modal.
	SubjectField = "subject"

	// DescriptionField is the custom ID of the description input of the ticket modal.
	DescriptionField = "description"

	subjectMaxLength     = 100
	descriptionMaxLength = 1000

	// DefaultDescription is used when the modal description is left empty.
	DefaultDescription = "No description provided"

	colorOpen    = 0x00aaff
	colorClaimed = 0xffaa00
	colorClose   = 0xff0000
	colorPanel   = 0x5865f2
)

// PanelMessage is the message holding the button that opens the ticket modal.
func PanelMessage(title, description string) *discordgo.MessageSend {
	if title == "" {
		title = "🎫 Support Tickets"
	}
	if description == "" {
		description = "Need help? Click the button below to create a support ticket.\n\nOur staff team will assist you as soon as possible."
	}

	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       title,
			Description: description,
			Color:       colorPanel,
			Footer:      &discordgo.MessageEmbedFooter{Text: "Click the button below to create a ticket"},
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Create Ticket",
						Style:    discordgo.PrimaryButton,
						Emoji:    &discordgo.ComponentEmoji{Name: "🎫"},
						CustomID: CreateID(),
					},
				},
			},
		},
	}
}

// CreateModal is the form asking for the ticket subject and description.
func CreateModal() *interactions.Modal {
	return &interactions.Modal{
		CustomID: SubmitID(),
		Title:    "Create Support Ticket",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    SubjectField,
						Label:       "Subject",
						Style:       discordgo.TextInputShort,
						Placeholder: "Brief description of your issue",
						Required:    true,
						MaxLength:   subjectMaxLength,
					},
				},
			},
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    DescriptionField,
						Label:       "Description",
						Style:       discordgo.TextInputParagraph,
						Placeholder: "Detailed description of your issue or question",
						Required:    false,
						MaxLength:   descriptionMaxLength,
					},
				},
			},
		},
	}
}

// ModalValue returns the value of the text input with the given custom ID.
func ModalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, c := range data.Components {
		var row []discordgo.MessageComponent
		switch r := c.(type) {
		case *discordgo.ActionsRow:
			row = r.Components
		case discordgo.ActionsRow:
			row = r.Components
		}
		for _, rc := range row {
			switch in := rc.(type) {
			case *discordgo.TextInput:
				if in.CustomID == customID {
					return in.Value
				}
			case discordgo.TextInput:
				if in.CustomID == customID {
					return in.Value
				}
			}
		}
	}
	return ""
}

// controlEmbed describes the ticket at the top of its channel.
func controlEmbed(t *entities.Ticket) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       "🎫 Ticket " + t.TicketID,
		Description: t.Description,
		Color:       colorOpen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "👤 Created by", Value: chat.Mention(t.UserID), Inline: true},
			{Name: "📝 Subject", Value: t.Subject, Inline: true},
			{Name: "🕐 Created", Value: fmt.Sprintf("<t:%d:R>", t.CreatedAt.Unix()), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Ticket ID: " + t.TicketID},
	}
	if t.ClaimedBy != "" {
		e.Color = colorClaimed
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "🔧 Claimed by", Value: chat.Mention(t.ClaimedBy), Inline: true})
	}
	return e
}

// controlComponents are the claim and close buttons of a ticket.
func controlComponents(t *entities.Ticket) []discordgo.MessageComponent {
	claim := discordgo.Button{
		Label:    "🔧 Claim Ticket",
		Style:    discordgo.PrimaryButton,
		CustomID: ClaimID(t.TicketID),
	}
	if t.ClaimedBy != "" {
		claim.Label = "✅ Claimed"
		claim.Style = discordgo.SuccessButton
		claim.Disabled = true
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				claim,
				discordgo.Button{
					Label:    "🔒 Close Ticket",
					Style:    discordgo.DangerButton,
					CustomID: CloseID(t.TicketID),
				},
			},
		},
	}
}

// controlMessage is the first message posted in a ticket channel.
func controlMessage(t *entities.Ticket, staffRoleID string) *discordgo.MessageSend {
	content := chat.Mention(t.UserID) + " Welcome to your support ticket!"
	if staffRoleID != "" {
		content += "\n" + chat.RoleMention(staffRoleID)
	}
	return &discordgo.MessageSend{
		Content:    content,
		Embeds:     []*discordgo.MessageEmbed{controlEmbed(t)},
		Components: controlComponents(t),
	}
}

// ControlUpdate replaces the control message of a ticket with its current state.
func ControlUpdate(t *entities.Ticket) *interactions.Response {
	return &interactions.Response{
		Kind:       interactions.KindUpdate,
		Embeds:     []*discordgo.MessageEmbed{controlEmbed(t)},
		Components: controlComponents(t),
	}
}

// closePrompt asks the user to confirm closing the ticket.
func closePrompt(ticketID, text string) *interactions.Response {
	return &interactions.Response{
		Kind:      interactions.KindMessage,
		Ephemeral: true,
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "🔒 Close Ticket",
			Description: text,
			Color:       colorClose,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "✅ Yes, Close Ticket",
						Style:    discordgo.DangerButton,
						CustomID: ConfirmCloseID(ticketID),
					},
					discordgo.Button{
						Label:    "❌ Cancel",
						Style:    discordgo.SecondaryButton,
						CustomID: CancelCloseID(),
					},
				},
			},
		},
	}
}

// TicketEmbed summarises a ticket, including its most recent log entries.
func TicketEmbed(t *entities.Ticket) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       "🎫 " + t.TicketID,
		Description: t.Description,
		Color:       colorOpen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📝 Subject", Value: t.Subject, Inline: true},
			{Name: "👤 Created by", Value: chat.Mention(t.UserID), Inline: true},
			{Name: "📊 Status", Value: string(t.Status), Inline: true},
			{Name: "🕐 Created", Value: fmt.Sprintf("<t:%d:F>", t.CreatedAt.Unix()), Inline: true},
		},
	}
	if t.ChannelID != "" && !t.IsClosed() {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "💬 Channel", Value: chat.ChannelMention(t.ChannelID), Inline: true})
	}
	if t.ClaimedBy != "" {
		e.Color = colorClaimed
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "🔧 Claimed by", Value: chat.Mention(t.ClaimedBy), Inline: true})
	}
	if t.ClosedAt != nil {
		e.Color = colorClose
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "🔒 Closed", Value: fmt.Sprintf("<t:%d:F>", t.ClosedAt.Unix()), Inline: true})
	}

	if logs := t.RecentLogs(3); len(logs) > 0 {
		lines := ""
		for _, l := range logs {
			lines += fmt.Sprintf("• **%s** by %s <t:%d:R>", l.Action, l.Username, l.Timestamp.Unix())
			if l.Details != "" {
				lines += " - " + l.Details
			}
			lines += "\n"
		}
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "📋 Recent Activity", Value: lines})
	}
	return e
}
