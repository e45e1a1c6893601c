package ticketing

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/Jacobbrewer1/satla/pkg/chat/chattest"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/Jacobbrewer1/satla/pkg/interactions"
	"github.com/Jacobbrewer1/satla/pkg/messages"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

func newTestHandlers(t *testing.T) (*Handlers, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	require.NoError(t, env.store.SaveGuild(context.Background(), env.guild))
	h := NewHandlers(slog.Default(), env.engine, env.store, func(string) string { return "o1" })
	return h, env
}

func requireUserError(t *testing.T, err error, want string) {
	t.Helper()
	ue, ok := interactions.AsUserError(err)
	require.True(t, ok, "expected user error, got %v", err)
	require.Equal(t, want, ue.Message)
}

func TestHandlers_CreateButton(t *testing.T) {
	h, env := newTestHandlers(t)
	ctx := context.Background()

	resp, err := h.Component(ctx, chattest.Button(chattest.Member("u1", 0), "g1", CreateID()))
	require.NoError(t, err)
	require.Equal(t, interactions.KindModal, resp.Kind)
	require.Equal(t, SubmitID(), resp.Modal.CustomID)

	env.guild.Ticketing.MaxTicketsPerUser = 1
	require.NoError(t, env.store.SaveGuild(ctx, env.guild))
	env.create(t, owner)

	_, err = h.Component(ctx, chattest.Button(chattest.Member("u1", 0), "g1", CreateID()))
	requireUserError(t, err, "❌ You already have 1 open tickets. Please close some before creating new ones.")
}

func TestHandlers_Submit(t *testing.T) {
	h, env := newTestHandlers(t)

	i := chattest.ModalSubmit(chattest.Member("u1", 0), "g1", SubmitID(), map[string]string{
		SubjectField:     "  Login broken ",
		DescriptionField: "",
	})
	resp, err := h.Submit(context.Background(), i)
	require.NoError(t, err)
	require.True(t, resp.Ephemeral)

	tk := env.store.Ticket("TICKET-0001")
	require.NotNil(t, tk)
	require.Equal(t, "Login broken", tk.Subject)
	require.Equal(t, DefaultDescription, tk.Description)
	require.Equal(t, "useru1", tk.Username)
	require.Equal(t, messages.Get(entities.LanguageEnglish, messages.TicketCreated, "channel", "<#"+tk.ChannelID+">"), resp.Content)
}

func TestHandlers_ClaimFlow(t *testing.T) {
	h, env := newTestHandlers(t)
	ctx := context.Background()
	tk := env.create(t, owner)

	_, err := h.Component(ctx, chattest.Button(chattest.Member("u1", 0), "g1", ClaimID(tk.TicketID)))
	requireUserError(t, err, "❌ Only staff members can claim tickets.")

	resp, err := h.Component(ctx, chattest.Button(chattest.Member("s1", 0, "staff"), "g1", ClaimID(tk.TicketID)))
	require.NoError(t, err)
	require.Equal(t, interactions.KindUpdate, resp.Kind)
	require.Len(t, resp.Embeds, 1)
	row := resp.Components[0].(discordgo.ActionsRow)
	require.True(t, row.Components[0].(discordgo.Button).Disabled)
	require.NotNil(t, resp.FollowUp)
	require.Equal(t, "🔧 **users1** has claimed this ticket and will assist you shortly.", resp.FollowUp.Content)
	require.False(t, resp.FollowUp.Ephemeral)

	_, err = h.Component(ctx, chattest.Button(chattest.Member("s2", discordgo.PermissionAdministrator), "g1", ClaimID(tk.TicketID)))
	requireUserError(t, err, "❌ This ticket is already claimed by <@s1>.")
}

func TestHandlers_CloseFlow(t *testing.T) {
	h, env := newTestHandlers(t)
	ctx := context.Background()
	tk := env.create(t, owner)

	_, err := h.Component(ctx, chattest.Button(chattest.Member("u2", 0), "g1", CloseID(tk.TicketID)))
	requireUserError(t, err, "❌ Only the ticket owner or staff can close this ticket.")

	resp, err := h.Component(ctx, chattest.Button(chattest.Member("u1", 0), "g1", CloseID(tk.TicketID)))
	require.NoError(t, err)
	require.True(t, resp.Ephemeral)
	require.Contains(t, resp.Embeds[0].Description, "**TICKET-0001**")
	row := resp.Components[0].(discordgo.ActionsRow)
	require.Equal(t, ConfirmCloseID(tk.TicketID), row.Components[0].(discordgo.Button).CustomID)
	require.Equal(t, CancelCloseID(), row.Components[1].(discordgo.Button).CustomID)

	resp, err = h.Component(ctx, chattest.Button(chattest.Member("u1", 0), "g1", CancelCloseID()))
	require.NoError(t, err)
	require.Equal(t, interactions.KindUpdate, resp.Kind)
	require.Equal(t, "❌ Ticket close cancelled.", resp.Content)
	require.Equal(t, entities.TicketStatusOpen, env.store.Ticket(tk.TicketID).Status)

	resp, err = h.Component(ctx, chattest.Button(chattest.Member("u1", 0), "g1", ConfirmCloseID(tk.TicketID)))
	require.NoError(t, err)
	require.Equal(t, "✅ Ticket will be closed in 5 seconds...", resp.Content)
	require.Equal(t, entities.TicketStatusClosed, env.store.Ticket(tk.TicketID).Status)

	_, err = h.Component(ctx, chattest.Button(chattest.Member("u1", 0), "g1", ConfirmCloseID(tk.TicketID)))
	requireUserError(t, err, "❌ This ticket is already closed.")
}

func TestHandlers_Localized(t *testing.T) {
	h, env := newTestHandlers(t)
	env.guild.Language = entities.LanguageHebrew
	require.NoError(t, env.store.SaveGuild(context.Background(), env.guild))

	_, err := h.Component(context.Background(), chattest.Button(chattest.Member("s1", 0, "staff"), "g1", ClaimID("TICKET-0042")))
	requireUserError(t, err, "❌ הכרטיס לא נמצא.")
}

func TestHandlers_BadCustomID(t *testing.T) {
	h, _ := newTestHandlers(t)
	_, err := h.Component(context.Background(), chattest.Button(chattest.Member("u1", 0), "g1", "ticket:explode"))
	require.Error(t, err)
	_, ok := interactions.AsUserError(err)
	require.False(t, ok)
}

func TestUserError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "not found", err: ErrTicketNotFound, want: "❌ Ticket not found."},
		{name: "closed", err: ErrTicketClosed, want: "❌ This ticket is already closed."},
		{name: "denied", err: ErrPermissionDenied, want: "❌ You do not have permission to use this command."},
		{name: "in progress", err: ErrCreationInProgress, want: "⏳ Your ticket is already being created. Please wait."},
		{name: "disabled", err: ErrTicketingDisabled, want: "❌ The ticket system is disabled on this server."},
		{name: "claimed", err: &AlreadyClaimedError{By: "9"}, want: "❌ This ticket is already claimed by <@9>."},
		{name: "quota", err: &QuotaExceededError{Count: 3, Max: 3}, want: "❌ You already have 3 open tickets. Please close some before creating new ones."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireUserError(t, UserError(entities.LanguageEnglish, tt.err, messages.ErrPermissions), tt.want)
		})
	}

	plain := errors.New("database down")
	require.Same(t, plain, UserError(entities.LanguageEnglish, plain, messages.ErrPermissions))
}
