package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Jacobbrewer1/satla/pkg/dataaccess"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/Jacobbrewer1/satla/pkg/interactions"
	"github.com/bwmarrin/discordgo"
)

const (
	infoCmdName = "info"

	colorInfo = 0x00aaff
)

func (a *App) infoCommand() *command {
	return &command{
		def: &discordgo.ApplicationCommand{
			Name:         infoCmdName,
			Description:  "Display bot information and statistics",
			DMPermission: &noDM,
		},
		route: interactions.Route{Handler: a.infoHandler, Cooldown: 10 * time.Second},
	}
}

func (a *App) infoHandler(ctx context.Context, i *discordgo.InteractionCreate) (*interactions.Response, error) {
	inv, err := a.invocation(ctx, i)
	if err != nil {
		return nil, err
	}

	count := func(statuses ...entities.TicketStatus) (int64, error) {
		return a.store.Tickets.CountTickets(ctx, dataaccess.TicketFilter{GuildID: inv.guild.ID, Statuses: statuses})
	}
	total, err := count()
	if err != nil {
		return nil, fmt.Errorf("error counting tickets: %w", err)
	}
	active, err := count(entities.ActiveTicketStatuses...)
	if err != nil {
		return nil, fmt.Errorf("error counting tickets: %w", err)
	}
	closed, err := count(entities.TicketStatusClosed)
	if err != nil {
		return nil, fmt.Errorf("error counting tickets: %w", err)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🤖 Satla Bot Information",
		Description: "A Discord bot with a ticket system, welcome messages and auto-role assignment.",
		Color:       colorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "📊 Bot Statistics",
				Value:  fmt.Sprintf("**Servers:** %d\n**Commands:** %d", a.state.GuildCount(), len(a.commands)),
				Inline: true,
			},
			{
				Name:   "🎫 Ticket Statistics",
				Value:  fmt.Sprintf("**Total:** %d\n**Open:** %d\n**Closed:** %d", total, active, closed),
				Inline: true,
			},
			{
				Name:   "⚙️ System Info",
				Value:  fmt.Sprintf("**Uptime:** %s\n**Language:** %s", formatUptime(time.Since(a.startedAt)), inv.lang.DisplayName()),
				Inline: true,
			},
			{
				Name:  "🔗 Quick Setup",
				Value: "1. `/ticketconfig` - Configure ticket system\n2. `/welcome setup` - Set up welcome messages\n3. `/autorole set` - Configure auto-roles\n4. `/ticketpanel` - Create ticket panel",
			},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Requested by " + inv.member.Username},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	return &interactions.Response{Kind: interactions.KindMessage, Embeds: []*discordgo.MessageEmbed{embed}}, nil
}
