package main

import (
	"context"
	"testing"
	"time"

	"github.com/Jacobbrewer1/satla/pkg/chat/chattest"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

func ticket(id, userID string, status entities.TicketStatus, created time.Time) *entities.Ticket {
	t := &entities.Ticket{
		TicketID:  id,
		GuildID:   "g1",
		ChannelID: "ch-" + id,
		UserID:    userID,
		Username:  "user" + userID,
		Subject:   "Subject " + id,
		Status:    status,
		CreatedAt: created,
		UpdatedAt: created,
	}
	if status != entities.TicketStatusOpen {
		claimed := created.Add(30 * time.Minute)
		t.ClaimedBy = "s1"
		t.ClaimedAt = &claimed
	}
	return t
}

func seedTickets(t *testing.T, a *testApp) {
	t.Helper()
	a.saveTicket(t, ticket("TICKET-0001", "u1", entities.TicketStatusOpen, testNow.Add(-3*time.Hour)))
	a.saveTicket(t, ticket("TICKET-0002", "u2", entities.TicketStatusClaimed, testNow.Add(-2*time.Hour)))
	closed := ticket("TICKET-0003", "u1", entities.TicketStatusClosed, testNow.Add(-26*time.Hour))
	claimedAt := closed.CreatedAt.Add(90 * time.Minute)
	closed.ClaimedAt = &claimedAt
	a.saveTicket(t, closed)
}

func ticketsCmd(m *discordgo.Member, sub string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return chattest.Command(m, "g1", ticketsCmdName, chattest.SubCommand(sub, opts...))
}

func TestTickets_List(t *testing.T) {
	a := newTestApp(t)
	seedTickets(t, a)
	ctx := context.Background()

	tests := []struct {
		name       string
		member     *discordgo.Member
		opts       []*discordgo.ApplicationCommandInteractionDataOption
		wantFooter string
		wantIDs    []string
		notIDs     []string
	}{
		{
			name:       "member sees own tickets",
			member:     regular,
			opts:       []*discordgo.ApplicationCommandInteractionDataOption{chattest.IDOption("user", discordgo.ApplicationCommandOptionUser, "u2")},
			wantFooter: "Showing 2 tickets",
			wantIDs:    []string{"TICKET-0001", "TICKET-0003"},
			notIDs:     []string{"TICKET-0002"},
		},
		{
			name:       "staff sees all",
			member:     staff,
			opts:       []*discordgo.ApplicationCommandInteractionDataOption{chattest.StringOption("status", statusAll)},
			wantFooter: "Showing 3 tickets",
			wantIDs:    []string{"TICKET-0001", "TICKET-0002", "TICKET-0003"},
		},
		{
			name:       "status filter",
			member:     staff,
			opts:       []*discordgo.ApplicationCommandInteractionDataOption{chattest.StringOption("status", "claimed")},
			wantFooter: "Showing 1 tickets",
			wantIDs:    []string{"🟡 **TICKET-0002**"},
			notIDs:     []string{"TICKET-0001", "TICKET-0003"},
		},
		{
			name:       "user filter",
			member:     staff,
			opts:       []*discordgo.ApplicationCommandInteractionDataOption{chattest.IDOption("user", discordgo.ApplicationCommandOptionUser, "u1")},
			wantFooter: "Showing 2 tickets",
			wantIDs:    []string{"🟢 **TICKET-0001**", "🔴 **TICKET-0003**"},
			notIDs:     []string{"TICKET-0002"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := a.ticketsHandler(ctx, ticketsCmd(tt.member, "list", tt.opts...))
			require.NoError(t, err)
			require.True(t, resp.Ephemeral)
			require.Len(t, resp.Embeds, 1)

			embed := resp.Embeds[0]
			require.Equal(t, tt.wantFooter, embed.Footer.Text)
			for _, id := range tt.wantIDs {
				require.Contains(t, embed.Description, id)
			}
			for _, id := range tt.notIDs {
				require.NotContains(t, embed.Description, id)
			}
		})
	}
}

func TestTickets_ListEmpty(t *testing.T) {
	a := newTestApp(t)

	resp, err := a.ticketsHandler(context.Background(), ticketsCmd(regular, "list"))
	require.NoError(t, err)
	require.Equal(t, "📭 No tickets found matching your criteria.", resp.Content)
}

func TestTickets_ListNewestFirst(t *testing.T) {
	a := newTestApp(t)
	for i := 1; i <= ticketListLimit+2; i++ {
		a.saveTicket(t, ticket(entities.FormatTicketID(int64(i)), "u1", entities.TicketStatusOpen, testNow.Add(time.Duration(i)*time.Minute)))
	}

	resp, err := a.ticketsHandler(context.Background(), ticketsCmd(staff, "list"))
	require.NoError(t, err)
	require.Equal(t, "Showing 10 tickets", resp.Embeds[0].Footer.Text)
	require.Contains(t, resp.Embeds[0].Description, "TICKET-0012")
	require.NotContains(t, resp.Embeds[0].Description, "**TICKET-0001**")
	require.NotContains(t, resp.Embeds[0].Description, "TICKET-0002")
}

func TestTickets_StaffOnly(t *testing.T) {
	a := newTestApp(t)
	seedTickets(t, a)

	for _, sub := range []string{"view", "close", "stats"} {
		t.Run(sub, func(t *testing.T) {
			_, err := a.ticketsHandler(context.Background(), ticketsCmd(regular, sub, chattest.StringOption("ticket_id", "TICKET-0001")))
			requireUserError(t, err, "❌ You do not have permission to use this command.")
		})
	}
}

func TestTickets_View(t *testing.T) {
	a := newTestApp(t)
	seedTickets(t, a)
	ctx := context.Background()

	resp, err := a.ticketsHandler(ctx, ticketsCmd(staff, "view", chattest.StringOption("ticket_id", " ticket-0002 ")))
	require.NoError(t, err)
	require.Len(t, resp.Embeds, 1)
	require.Equal(t, "🎫 TICKET-0002", resp.Embeds[0].Title)

	_, err = a.ticketsHandler(ctx, ticketsCmd(staff, "view", chattest.StringOption("ticket_id", "TICKET-9999")))
	requireUserError(t, err, "❌ Ticket not found.")
}

func TestTickets_ForceClose(t *testing.T) {
	a := newTestApp(t)
	seedTickets(t, a)
	ctx := context.Background()

	resp, err := a.ticketsHandler(ctx, ticketsCmd(staff, "close",
		chattest.StringOption("ticket_id", "ticket-0001"),
		chattest.StringOption("reason", "Spam"),
	))
	require.NoError(t, err)
	require.Equal(t, "✅ Ticket **TICKET-0001** has been force closed.\n**Reason:** Spam", resp.Content)

	tk := a.store.Ticket("TICKET-0001")
	require.Equal(t, entities.TicketStatusClosed, tk.Status)
	require.Equal(t, entities.TicketActionForceClosed, tk.Logs[len(tk.Logs)-1].Action)
	require.Equal(t, "Spam", tk.Logs[len(tk.Logs)-1].Details)
	require.Contains(t, a.s.DeletedChannels(), "ch-TICKET-0001")

	_, err = a.ticketsHandler(ctx, ticketsCmd(staff, "close", chattest.StringOption("ticket_id", "TICKET-0001")))
	requireUserError(t, err, "❌ This ticket is already closed.")
}

func TestTickets_ForceCloseByOwner(t *testing.T) {
	a := newTestApp(t)
	seedTickets(t, a)

	resp, err := a.ticketsHandler(context.Background(), ticketsCmd(owner, "close", chattest.StringOption("ticket_id", "TICKET-0002")))
	require.NoError(t, err)
	require.Contains(t, resp.Content, "**Reason:** Force closed by staff")

	tk := a.store.Ticket("TICKET-0002")
	require.Equal(t, entities.TicketStatusClosed, tk.Status)
}

func TestTickets_DispatchAcknowledgesFirst(t *testing.T) {
	a := newTestApp(t)
	seedTickets(t, a)

	a.interactions.Dispatch(context.Background(), ticketsCmd(staff, "close", chattest.StringOption("ticket_id", "TICKET-0001")))

	// Force close deletes a channel, so the interaction is acknowledged before the handler runs.
	require.NotEmpty(t, a.s.Responses)
	first := a.s.Responses[0].Response
	require.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, first.Type)
	require.Equal(t, discordgo.MessageFlagsEphemeral, first.Data.Flags)

	require.Len(t, a.s.Edits, 1)
	require.Contains(t, *a.s.Edits[0].Content, "TICKET-0001")
	require.Contains(t, a.s.DeletedChannels(), "ch-TICKET-0001")
}

func TestTickets_Stats(t *testing.T) {
	a := newTestApp(t)
	seedTickets(t, a)

	resp, err := a.ticketsHandler(context.Background(), ticketsCmd(staff, "stats"))
	require.NoError(t, err)
	require.Len(t, resp.Embeds, 1)

	embed := resp.Embeds[0]
	values := make(map[string]string, len(embed.Fields))
	for _, f := range embed.Fields {
		values[f.Name] = f.Value
	}
	require.Equal(t, map[string]string{
		"🎫 Total Tickets":       "3",
		"🟢 Open":                "1",
		"🟡 Claimed":             "1",
		"🔴 Closed":              "1",
		"📅 Today":               "2",
		"⏱️ Avg Response Time": "1h 0m",
	}, values)
	require.Equal(t, "Statistics for Test Guild", embed.Footer.Text)
}

func TestFormatResponseTime(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{name: "none", d: 0, want: "N/A"},
		{name: "minutes", d: 42 * time.Minute, want: "42m"},
		{name: "hours", d: 3*time.Hour + 5*time.Minute, want: "3h 5m"},
		{name: "sub minute", d: 30 * time.Second, want: "0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, formatResponseTime(tt.d))
		})
	}
}

func TestAverageTimeToClaim(t *testing.T) {
	open := ticket("TICKET-0001", "u1", entities.TicketStatusOpen, testNow)
	claimed := ticket("TICKET-0002", "u1", entities.TicketStatusClaimed, testNow)

	require.Equal(t, time.Duration(0), averageTimeToClaim(nil))
	require.Equal(t, time.Duration(0), averageTimeToClaim([]*entities.Ticket{open}))
	require.Equal(t, 30*time.Minute, averageTimeToClaim([]*entities.Ticket{open, claimed}))
}
