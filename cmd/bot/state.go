package main

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// guildState answers questions about guilds from the gateway cache.
type guildState interface {
	// Guild returns a cached guild.
	Guild(guildID string) (*discordgo.Guild, error)

	// Channel returns a cached channel.
	Channel(channelID string) (*discordgo.Channel, error)

	// BotID returns the user ID of the bot.
	BotID() string

	// GuildCount returns the number of guilds the bot is in.
	GuildCount() int

	// BotGuildPermissions returns the guild level permissions of the bot.
	BotGuildPermissions(guildID string) (int64, error)

	// BotChannelPermissions returns the permissions of the bot in a channel.
	BotChannelPermissions(channelID string) (int64, error)
}

// sessionState reads the state tracked by a discordgo session.
type sessionState struct {
	s *discordgo.Session
}

func (ss *sessionState) Guild(guildID string) (*discordgo.Guild, error) {
	return ss.s.State.Guild(guildID)
}

func (ss *sessionState) Channel(channelID string) (*discordgo.Channel, error) {
	return ss.s.State.Channel(channelID)
}

func (ss *sessionState) BotID() string {
	if ss.s.State.User == nil {
		return ""
	}
	return ss.s.State.User.ID
}

func (ss *sessionState) GuildCount() int {
	ss.s.State.RLock()
	defer ss.s.State.RUnlock()
	return len(ss.s.State.Guilds)
}

func (ss *sessionState) BotGuildPermissions(guildID string) (int64, error) {
	g, err := ss.s.State.Guild(guildID)
	if err != nil {
		return 0, fmt.Errorf("error getting guild: %w", err)
	}
	m, err := ss.s.State.Member(guildID, ss.BotID())
	if err != nil {
		return 0, fmt.Errorf("error getting bot member: %w", err)
	}
	return memberPermissions(g, m), nil
}

func (ss *sessionState) BotChannelPermissions(channelID string) (int64, error) {
	return ss.s.State.UserChannelPermissions(ss.BotID(), channelID)
}

// memberPermissions combines the permissions of @everyone and every role the member holds.
func memberPermissions(g *discordgo.Guild, m *discordgo.Member) int64 {
	if g.OwnerID == m.User.ID {
		return discordgo.PermissionAll
	}

	held := make(map[string]struct{}, len(m.Roles)+1)
	held[g.ID] = struct{}{}
	for _, id := range m.Roles {
		held[id] = struct{}{}
	}

	var perms int64
	for _, r := range g.Roles {
		if _, ok := held[r.ID]; ok {
			perms |= r.Permissions
		}
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return discordgo.PermissionAll
	}
	return perms
}
