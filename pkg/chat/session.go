// Package chat describes the parts of the Discord session the bot relies on.
package chat

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// Session is the subset of *discordgo.Session used by the bot.
type Session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)

	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)

	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)

	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)

	HeartbeatLatency() time.Duration
}

var _ Session = (*discordgo.Session)(nil)

// HighestRolePosition returns the position of the highest of the given roles.
func HighestRolePosition(roles []*discordgo.Role, ids []string) int {
	byID := make(map[string]int, len(roles))
	for _, r := range roles {
		byID[r.ID] = r.Position
	}

	highest := 0
	for _, id := range ids {
		if p, ok := byID[id]; ok && p > highest {
			highest = p
		}
	}
	return highest
}

// FindRole returns the role with the given ID, or nil.
func FindRole(roles []*discordgo.Role, id string) *discordgo.Role {
	for _, r := range roles {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// Mention formats a user mention.
func Mention(userID string) string {
	return "<@" + userID + ">"
}

// ChannelMention formats a channel mention.
func ChannelMention(channelID string) string {
	return "<#" + channelID + ">"
}

// RoleMention formats a role mention.
func RoleMention(roleID string) string {
	return "<@&" + roleID + ">"
}
