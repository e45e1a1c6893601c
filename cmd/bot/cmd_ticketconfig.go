package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/satla/pkg/chat"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/Jacobbrewer1/satla/pkg/interactions"
	"github.com/Jacobbrewer1/satla/pkg/messages"
	"github.com/bwmarrin/discordgo"
)

const (
	ticketConfigCmdName = "ticketconfig"

	maxTicketsLimit = 10
)

func (a *App) ticketConfigCommand() *command {
	minTickets := 1.0

	return &command{
		def: &discordgo.ApplicationCommand{
			Name:                     ticketConfigCmdName,
			Description:              "Configure the ticket system settings",
			DefaultMemberPermissions: &manageGuild,
			DMPermission:             &noDM,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "category",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Set the category for ticket channels",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:         "category",
							Type:         discordgo.ApplicationCommandOptionChannel,
							Description:  "Category channel for tickets",
							Required:     true,
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildCategory},
						},
					},
				},
				{
					Name:        "staffrole",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Set the staff role for ticket management",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "role",
							Type:        discordgo.ApplicationCommandOptionRole,
							Description: "Staff role",
							Required:    true,
						},
					},
				},
				{
					Name:        "logs",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Set the log channel for ticket actions",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:         "channel",
							Type:         discordgo.ApplicationCommandOptionChannel,
							Description:  "Log channel",
							Required:     true,
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						},
					},
				},
				{
					Name:        "maxtickets",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Set maximum tickets per user",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "amount",
							Type:        discordgo.ApplicationCommandOptionInteger,
							Description: "Maximum number of tickets per user",
							Required:    true,
							MinValue:    &minTickets,
							MaxValue:    maxTicketsLimit,
						},
					},
				},
				{
					Name:        "status",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "View current ticket system configuration",
				},
			},
		},
		route: interactions.Route{Handler: a.ticketConfigHandler, Cooldown: defaultCooldown, Defer: true, Ephemeral: true},
	}
}

func (a *App) ticketConfigHandler(ctx context.Context, i *discordgo.InteractionCreate) (*interactions.Response, error) {
	inv, err := a.invocation(ctx, i)
	if err != nil {
		return nil, err
	}
	if !inv.checker.CanConfigureBot(inv.member) {
		return nil, inv.deny()
	}

	cfg := &inv.guild.Ticketing
	sub, opts := subCommand(i)

	var reply string
	switch sub {
	case "category":
		ch := a.resolvedChannel(i, opts.id("category"))
		if ch == nil || ch.Type != discordgo.ChannelTypeGuildCategory {
			return nil, interactions.NewUserError(inv.text(messages.ConfigInvalidChannel))
		}
		cfg.CategoryID = ch.ID
		reply = fmt.Sprintf("✅ Ticket category has been set to **%s**.", ch.Name)

	case "staffrole":
		role := a.resolvedRole(i, opts.id("role"))
		if role == nil {
			return nil, interactions.NewUserError(inv.text(messages.ConfigInvalidRole))
		}
		cfg.StaffRoleID = role.ID
		reply = fmt.Sprintf("✅ Staff role has been set to **%s**.", role.Name)

	case "logs":
		ch := a.resolvedChannel(i, opts.id("channel"))
		if ch == nil || ch.Type != discordgo.ChannelTypeGuildText {
			return nil, interactions.NewUserError(inv.text(messages.ConfigInvalidChannel))
		}
		if !a.canPost(ch.ID) {
			return nil, interactions.NewUserError(inv.text(messages.ConfigChannelPermissions))
		}
		cfg.LogChannelID = ch.ID
		reply = fmt.Sprintf("✅ Ticket log channel has been set to %s.", chat.ChannelMention(ch.ID))

	case "maxtickets":
		n, _ := opts.integer("amount")
		if n < 1 || n > maxTicketsLimit {
			return nil, interactions.NewUserError(fmt.Sprintf("❌ The amount must be between 1 and %d.", maxTicketsLimit))
		}
		cfg.MaxTicketsPerUser = int(n)
		reply = fmt.Sprintf("✅ Maximum tickets per user has been set to **%d**.", n)

	case "status":
		return interactions.Ephemeral(a.ticketConfigStatus(i.GuildID, inv.guild.Ticketing)), nil

	default:
		return nil, unknownSubCommand(ticketConfigCmdName, sub)
	}

	if err := a.saveGuild(ctx, inv.guild); err != nil {
		return nil, err
	}
	return interactions.Ephemeral(reply), nil
}

func (a *App) ticketConfigStatus(guildID string, cfg entities.TicketingConfig) string {
	var b strings.Builder
	b.WriteString("**🎫 Ticket System Configuration**\n\n")

	switch {
	case cfg.CategoryID == "":
		b.WriteString("📁 **Category:** Not configured\n")
	default:
		name := "Not found"
		if ch, err := a.state.Channel(cfg.CategoryID); err == nil {
			name = ch.Name
		}
		fmt.Fprintf(&b, "📁 **Category:** %s\n", name)
	}

	switch {
	case cfg.StaffRoleID == "":
		b.WriteString("👥 **Staff Role:** Not configured\n")
	default:
		name := "Not found"
		if g, err := a.state.Guild(guildID); err == nil {
			if r := chat.FindRole(g.Roles, cfg.StaffRoleID); r != nil {
				name = r.Name
			}
		}
		fmt.Fprintf(&b, "👥 **Staff Role:** %s\n", name)
	}

	switch {
	case cfg.LogChannelID == "":
		b.WriteString("📋 **Log Channel:** Not configured\n")
	default:
		fmt.Fprintf(&b, "📋 **Log Channel:** %s\n", chat.ChannelMention(cfg.LogChannelID))
	}

	fmt.Fprintf(&b, "🔢 **Max Tickets per User:** %d\n", cfg.MaxTickets())
	fmt.Fprintf(&b, "🗑️ **Auto Delete After:** %dh\n", cfg.AutoDeleteAfterHours)
	fmt.Fprintf(&b, "📜 **Transcripts:** %s\n", enabled(cfg.TranscriptEnabled))

	status := "Disabled"
	if cfg.Enabled {
		status = "Enabled"
	}
	fmt.Fprintf(&b, "⚙️ **System Status:** %s", status)
	return b.String()
}
