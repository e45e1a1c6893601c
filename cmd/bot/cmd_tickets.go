package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Jacobbrewer1/satla/pkg/dataaccess"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/Jacobbrewer1/satla/pkg/interactions"
	"github.com/Jacobbrewer1/satla/pkg/messages"
	"github.com/Jacobbrewer1/satla/pkg/ticketing"
	"github.com/bwmarrin/discordgo"
)

const (
	ticketsCmdName = "tickets"

	ticketListLimit = 10
	statusAll       = "all"

	// embedDescriptionLimit is the longest description Discord accepts.
	embedDescriptionLimit = 4096
)

func (a *App) ticketsCommand() *command {
	return &command{
		def: &discordgo.ApplicationCommand{
			Name:                     ticketsCmdName,
			Description:              "Manage and view tickets",
			DefaultMemberPermissions: &manageMessages,
			DMPermission:             &noDM,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "list",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "List tickets",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "status",
							Type:        discordgo.ApplicationCommandOptionString,
							Description: "Filter by status",
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Open", Value: string(entities.TicketStatusOpen)},
								{Name: "Claimed", Value: string(entities.TicketStatusClaimed)},
								{Name: "Closed", Value: string(entities.TicketStatusClosed)},
								{Name: "All", Value: statusAll},
							},
						},
						{
							Name:        "user",
							Type:        discordgo.ApplicationCommandOptionUser,
							Description: "Filter by user",
						},
					},
				},
				{
					Name:        "view",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "View a specific ticket",
					Options: []*discordgo.ApplicationCommandOption{
						{Name: "ticket_id", Type: discordgo.ApplicationCommandOptionString, Description: "Ticket ID to view", Required: true},
					},
				},
				{
					Name:        "close",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Force close a ticket",
					Options: []*discordgo.ApplicationCommandOption{
						{Name: "ticket_id", Type: discordgo.ApplicationCommandOptionString, Description: "Ticket ID to close", Required: true},
						{Name: "reason", Type: discordgo.ApplicationCommandOptionString, Description: "Reason for closing"},
					},
				},
				{
					Name:        "stats",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "View ticket statistics",
				},
			},
		},
		route: interactions.Route{Handler: a.ticketsHandler, Cooldown: defaultCooldown, Defer: true, Ephemeral: true},
	}
}

func (a *App) ticketsHandler(ctx context.Context, i *discordgo.InteractionCreate) (*interactions.Response, error) {
	inv, err := a.invocation(ctx, i)
	if err != nil {
		return nil, err
	}

	isStaff := inv.checker.IsStaff(inv.member)
	sub, opts := subCommand(i)
	if sub != "list" && !isStaff && !inv.member.IsOwner {
		return nil, inv.deny()
	}

	switch sub {
	case "list":
		return a.listTickets(ctx, inv, opts, isStaff)
	case "view":
		return a.viewTicket(ctx, inv, opts.str("ticket_id"))
	case "close":
		return a.forceCloseTicket(ctx, inv, opts.str("ticket_id"), opts.str("reason"))
	case "stats":
		return a.ticketStats(ctx, inv)
	default:
		return nil, unknownSubCommand(ticketsCmdName, sub)
	}
}

func (a *App) listTickets(ctx context.Context, inv *invocation, opts options, isStaff bool) (*interactions.Response, error) {
	filter := dataaccess.TicketFilter{GuildID: inv.guild.ID}

	// Members who are not staff only see their own tickets.
	if !isStaff {
		filter.UserID = inv.member.UserID
	} else if user := opts.id("user"); user != "" {
		filter.UserID = user
	}

	if status := opts.str("status"); status != "" && status != statusAll {
		s := entities.TicketStatus(status)
		if !s.Valid() {
			return nil, interactions.NewUserError("❌ Unknown ticket status.")
		}
		filter.Statuses = []entities.TicketStatus{s}
	}

	tickets, err := a.store.Tickets.FindTickets(ctx, filter, ticketListLimit)
	if err != nil {
		return nil, fmt.Errorf("error finding tickets: %w", err)
	}
	if len(tickets) == 0 {
		return interactions.Ephemeral("📭 No tickets found matching your criteria."), nil
	}

	var b strings.Builder
	for _, t := range tickets {
		fmt.Fprintf(&b, "%s **%s** - %s\n📝 %s\n📅 <t:%d:R>\n\n", statusEmoji(t.Status), t.TicketID, t.Username, t.Subject, t.CreatedAt.Unix())
	}
	description := b.String()
	if len(description) > embedDescriptionLimit {
		description = description[:embedDescriptionLimit]
	}

	return interactions.EphemeralEmbed(&discordgo.MessageEmbed{
		Title:       "🎫 Ticket List",
		Description: description,
		Color:       colorInfo,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Showing %d tickets", len(tickets))},
		Timestamp:   a.now().Format(time.RFC3339),
	}), nil
}

func (a *App) viewTicket(ctx context.Context, inv *invocation, ticketID string) (*interactions.Response, error) {
	t, err := a.store.Tickets.GetTicket(ctx, inv.guild.ID, entities.NormalizeTicketID(ticketID))
	if errors.Is(err, dataaccess.ErrNotFound) {
		return nil, interactions.WrapUserError(inv.text(messages.TicketNotFound), err)
	} else if err != nil {
		return nil, fmt.Errorf("error getting ticket: %w", err)
	}
	return interactions.EphemeralEmbed(ticketing.TicketEmbed(t)), nil
}

func (a *App) forceCloseTicket(ctx context.Context, inv *invocation, ticketID, reason string) (*interactions.Response, error) {
	if reason == "" {
		reason = ticketing.DefaultForceCloseReason
	}

	t, err := a.engine.ForceClose(ctx, inv.guild, inv.member, ticketID, reason)
	if err != nil {
		return nil, ticketing.UserError(inv.lang, err, messages.ErrPermissions)
	}
	return interactions.Ephemeral(inv.text(messages.TicketForceClosed, "ticketId", t.TicketID) + "\n**Reason:** " + reason), nil
}

func (a *App) ticketStats(ctx context.Context, inv *invocation) (*interactions.Response, error) {
	now := a.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	counts := []struct {
		name   string
		filter dataaccess.TicketFilter
	}{
		{name: "🎫 Total Tickets", filter: dataaccess.TicketFilter{GuildID: inv.guild.ID}},
		{name: "🟢 Open", filter: dataaccess.TicketFilter{GuildID: inv.guild.ID, Statuses: []entities.TicketStatus{entities.TicketStatusOpen}}},
		{name: "🟡 Claimed", filter: dataaccess.TicketFilter{GuildID: inv.guild.ID, Statuses: []entities.TicketStatus{entities.TicketStatusClaimed}}},
		{name: "🔴 Closed", filter: dataaccess.TicketFilter{GuildID: inv.guild.ID, Statuses: []entities.TicketStatus{entities.TicketStatusClosed}}},
		{name: "📅 Today", filter: dataaccess.TicketFilter{GuildID: inv.guild.ID, CreatedSince: today}},
	}

	fields := make([]*discordgo.MessageEmbedField, 0, len(counts)+1)
	for _, c := range counts {
		n, err := a.store.Tickets.CountTickets(ctx, c.filter)
		if err != nil {
			return nil, fmt.Errorf("error counting tickets: %w", err)
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: c.name, Value: strconv.FormatInt(n, 10), Inline: true})
	}

	claimed, err := a.store.Tickets.FindTickets(ctx, dataaccess.TicketFilter{GuildID: inv.guild.ID, ClaimedOnly: true}, 0)
	if err != nil {
		return nil, fmt.Errorf("error finding claimed tickets: %w", err)
	}
	fields = append(fields, &discordgo.MessageEmbedField{Name: "⏱️ Avg Response Time", Value: formatResponseTime(averageTimeToClaim(claimed)), Inline: true})

	footer := "Ticket statistics"
	if g, err := a.state.Guild(inv.guild.ID); err == nil {
		footer = "Statistics for " + g.Name
	}

	return interactions.EphemeralEmbed(&discordgo.MessageEmbed{
		Title:     "📊 Ticket Statistics",
		Color:     colorInfo,
		Fields:    fields,
		Footer:    &discordgo.MessageEmbedFooter{Text: footer},
		Timestamp: now.Format(time.RFC3339),
	}), nil
}

// averageTimeToClaim is the mean time between creation and claim.
func averageTimeToClaim(tickets []*entities.Ticket) time.Duration {
	var (
		total time.Duration
		n     int
	)
	for _, t := range tickets {
		if t.ClaimedAt == nil {
			continue
		}
		total += t.ClaimedAt.Sub(t.CreatedAt)
		n++
	}
	if n == 0 {
		return 0
	}
	return total / time.Duration(n)
}

func formatResponseTime(d time.Duration) string {
	if d <= 0 {
		return "N/A"
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func statusEmoji(s entities.TicketStatus) string {
	switch s {
	case entities.TicketStatusOpen:
		return "🟢"
	case entities.TicketStatusClaimed:
		return "🟡"
	case entities.TicketStatusClosed:
		return "🔴"
	default:
		return "⚪"
	}
}
