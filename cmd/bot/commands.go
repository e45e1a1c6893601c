package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Jacobbrewer1/satla/pkg/dataaccess"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/Jacobbrewer1/satla/pkg/interactions"
	"github.com/Jacobbrewer1/satla/pkg/messages"
	"github.com/Jacobbrewer1/satla/pkg/permissions"
	"github.com/bwmarrin/discordgo"
)

const defaultCooldown = 5 * time.Second

var (
	manageGuild    int64 = discordgo.PermissionManageGuild
	manageRoles    int64 = discordgo.PermissionManageRoles
	manageChannels int64 = discordgo.PermissionManageChannels
	manageMessages int64 = discordgo.PermissionManageMessages
	noDM                 = false
)

// command is a slash command definition and the route that handles it.
type command struct {
	def   *discordgo.ApplicationCommand
	route interactions.Route
}

func (a *App) commandSet() []*command {
	return []*command{
		a.healthCommand(),
		a.localeCommand(),
		a.ticketConfigCommand(),
		a.autoRoleCommand(),
		a.infoCommand(),
		a.pingCommand(),
		a.welcomeCommand(),
		a.ticketPanelCommand(),
		a.ticketsCommand(),
	}
}

// invocation is the guild context a command runs in.
type invocation struct {
	guild   *entities.Guild
	lang    entities.Language
	member  permissions.Member
	checker *permissions.Checker
}

// deny returns the localized permission error.
func (inv *invocation) deny() error {
	return interactions.NewUserError(messages.Get(inv.lang, messages.ErrPermissions))
}

// text returns a localized message.
func (inv *invocation) text(key messages.Key, kv ...string) string {
	return messages.Get(inv.lang, key, kv...)
}

// invocation loads the guild configuration and describes the invoking member.
func (a *App) invocation(ctx context.Context, i *discordgo.InteractionCreate) (*invocation, error) {
	if i.GuildID == "" || i.Member == nil {
		return nil, interactions.NewUserError(messages.Get(entities.LanguageEnglish, messages.ErrGuildOnly))
	}

	guild, err := dataaccess.LoadGuild(ctx, a.store.Guilds, i.GuildID)
	if err != nil {
		return nil, fmt.Errorf("error loading guild: %w", err)
	}

	return &invocation{
		guild:   guild,
		lang:    guild.Lang(),
		member:  permissions.FromMember(i.Member, a.guildOwner(i.GuildID)),
		checker: a.checker.ForGuild(guild.Ticketing.StaffRoleID),
	}, nil
}

// saveGuild persists a guild configuration.
func (a *App) saveGuild(ctx context.Context, guild *entities.Guild) error {
	if err := a.store.Guilds.SaveGuild(ctx, guild); err != nil {
		return fmt.Errorf("error saving guild: %w", err)
	}
	return nil
}

// options indexes command options by name.
type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func indexOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	o := make(options, len(opts))
	for _, opt := range opts {
		o[opt.Name] = opt
	}
	return o
}

// commandOptions returns the top level options of a command.
func commandOptions(i *discordgo.InteractionCreate) options {
	return indexOptions(i.ApplicationCommandData().Options)
}

// subCommand returns the invoked sub command and its options.
func subCommand(i *discordgo.InteractionCreate) (string, options) {
	opts := i.ApplicationCommandData().Options
	if len(opts) == 0 || opts[0].Type != discordgo.ApplicationCommandOptionSubCommand {
		return "", options{}
	}
	return opts[0].Name, indexOptions(opts[0].Options)
}

// str returns a string option, or an empty string when it was not given.
func (o options) str(name string) string {
	opt, ok := o[name]
	if !ok {
		return ""
	}
	v, _ := opt.Value.(string)
	return v
}

// id returns a user, channel or role option. Those arrive as snowflake strings.
func (o options) id(name string) string {
	return o.str(name)
}

// integer returns an integer option and whether it was given.
func (o options) integer(name string) (int64, bool) {
	opt, ok := o[name]
	if !ok {
		return 0, false
	}
	v, ok := opt.Value.(float64)
	return int64(v), ok
}

// boolean returns a boolean option and whether it was given.
func (o options) boolean(name string) (bool, bool) {
	opt, ok := o[name]
	if !ok {
		return false, false
	}
	v, ok := opt.Value.(bool)
	return v, ok
}

// unknownSubCommand is returned when a sub command has no handler.
func unknownSubCommand(cmd, sub string) error {
	return fmt.Errorf("unhandled sub command %s %s", cmd, sub)
}

// enabled formats a flag for status embeds.
func enabled(b bool) string {
	if b {
		return "✅"
	}
	return "❌"
}

// formatUptime formats a duration as days, hours, minutes and seconds.
func formatUptime(d time.Duration) string {
	d = d.Truncate(time.Second)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, d/time.Second)
}

// canPost reports whether the bot may post embeds in a channel.
func (a *App) canPost(channelID string) bool {
	perms, err := a.state.BotChannelPermissions(channelID)
	if err != nil {
		return false
	}
	need := int64(discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks)
	return perms&need == need
}

// resolvedChannel returns a channel passed as an option.
func (a *App) resolvedChannel(i *discordgo.InteractionCreate, id string) *discordgo.Channel {
	if res := i.ApplicationCommandData().Resolved; res != nil {
		if ch, ok := res.Channels[id]; ok {
			return ch
		}
	}
	if ch, err := a.state.Channel(id); err == nil {
		return ch
	}
	return nil
}

// resolvedRole returns a role passed as an option.
func (a *App) resolvedRole(i *discordgo.InteractionCreate, id string) *discordgo.Role {
	if res := i.ApplicationCommandData().Resolved; res != nil {
		if r, ok := res.Roles[id]; ok {
			return r
		}
	}
	if g, err := a.state.Guild(i.GuildID); err == nil {
		for _, r := range g.Roles {
			if r.ID == id {
				return r
			}
		}
	}
	return nil
}
