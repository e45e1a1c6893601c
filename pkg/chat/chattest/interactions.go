package chattest

import (
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
)

var interactionSeq atomic.Int64

func member(userID string, perms int64, roles ...string) *discordgo.Member {
	return &discordgo.Member{
		User:        &discordgo.User{ID: userID, Username: "user" + userID},
		Permissions: perms,
		Roles:       roles,
	}
}

func interaction(t discordgo.InteractionType, guildID string, m *discordgo.Member, data discordgo.InteractionData) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:        fmt.Sprintf("i%d", interactionSeq.Add(1)),
			Type:      t,
			GuildID:   guildID,
			ChannelID: "channel",
			Member:    m,
			Data:      data,
		},
	}
}

// Member returns a guild member with the given permissions and roles.
func Member(userID string, perms int64, roles ...string) *discordgo.Member {
	return member(userID, perms, roles...)
}

// Command returns a slash command interaction.
func Command(m *discordgo.Member, guildID, name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return interaction(discordgo.InteractionApplicationCommand, guildID, m, discordgo.ApplicationCommandInteractionData{
		Name:    name,
		Options: options,
	})
}

// SubCommand returns a sub command option holding options.
func SubCommand(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:    name,
		Type:    discordgo.ApplicationCommandOptionSubCommand,
		Options: options,
	}
}

// StringOption returns a string option.
func StringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

// IntOption returns an integer option. Integers arrive as float64 from the gateway.
func IntOption(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(value)}
}

// BoolOption returns a boolean option.
func BoolOption(name string, value bool) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionBoolean, Value: value}
}

// IDOption returns a channel, role or user option.
func IDOption(name string, t discordgo.ApplicationCommandOptionType, id string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: t, Value: id}
}

// Button returns a button press interaction.
func Button(m *discordgo.Member, guildID, customID string) *discordgo.InteractionCreate {
	return interaction(discordgo.InteractionMessageComponent, guildID, m, discordgo.MessageComponentInteractionData{
		CustomID:      customID,
		ComponentType: discordgo.ButtonComponent,
	})
}

// ModalSubmit returns a modal submission with one text input per field.
func ModalSubmit(m *discordgo.Member, guildID, customID string, fields map[string]string) *discordgo.InteractionCreate {
	rows := make([]discordgo.MessageComponent, 0, len(fields))
	for id, v := range fields {
		rows = append(rows, &discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: id, Value: v},
			},
		})
	}
	return interaction(discordgo.InteractionModalSubmit, guildID, m, discordgo.ModalSubmitInteractionData{
		CustomID:   customID,
		Components: rows,
	})
}
