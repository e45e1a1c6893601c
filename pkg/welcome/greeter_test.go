package welcome

import (
	"context"
	"log/slog"
	"testing"

	"github.com/Jacobbrewer1/satla/pkg/chat/chattest"
	"github.com/Jacobbrewer1/satla/pkg/dataaccess/dataaccesstest"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

func newTestGreeter(t *testing.T, guild *entities.Guild) (*Greeter, *chattest.Session) {
	t.Helper()
	s := chattest.New()
	s.Roles["g1"] = []*discordgo.Role{
		{ID: "bot-role", Position: 5},
		{ID: "member", Position: 2},
		{ID: "admin", Position: 8},
		{ID: "booster", Position: 1, Managed: true},
	}
	s.SetMember("g1", chattest.Member("bot", 0, "bot-role"))

	store := dataaccesstest.NewStore()
	if guild != nil {
		require.NoError(t, store.SaveGuild(context.Background(), guild))
	}
	return NewGreeter(slog.Default(), s, store), s
}

func TestAssignable(t *testing.T) {
	roles := []*discordgo.Role{
		{ID: "bot-role", Position: 5},
		{ID: "member", Position: 2},
		{ID: "peer", Position: 5},
		{ID: "booster", Position: 1, Managed: true},
	}

	tests := []struct {
		name    string
		roleID  string
		wantErr error
	}{
		{name: "below", roleID: "member"},
		{name: "equal", roleID: "peer", wantErr: ErrRoleTooHigh},
		{name: "own role", roleID: "bot-role", wantErr: ErrRoleTooHigh},
		{name: "managed", roleID: "booster", wantErr: ErrRoleManaged},
		{name: "missing", roleID: "gone", wantErr: ErrRoleNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assignable(roles, []string{"bot-role"}, tt.roleID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestMemberJoined(t *testing.T) {
	guild := entities.NewGuild("g1")
	guild.AutoRole = entities.AutoRoleConfig{Enabled: true, RoleID: "member"}
	guild.Welcome.Enabled = true
	guild.Welcome.ChannelID = "welcome"

	g, s := newTestGreeter(t, guild)
	g.MemberJoined(context.Background(), "g1", "bot", testServer, chattest.Member("u1", 0))

	require.Equal(t, []string{"g1/u1/member"}, s.RolesAdded)
	sent := s.SentTo("welcome")
	require.Len(t, sent, 1)
	require.Len(t, sent[0].Embeds, 1)
	require.Equal(t, "Welcome to Satla! 🎉", sent[0].Embeds[0].Title)
}

func TestMemberJoined_RoleTooHigh(t *testing.T) {
	guild := entities.NewGuild("g1")
	guild.AutoRole = entities.AutoRoleConfig{Enabled: true, RoleID: "admin"}
	guild.Welcome.Enabled = true
	guild.Welcome.ChannelID = "welcome"

	g, s := newTestGreeter(t, guild)
	g.MemberJoined(context.Background(), "g1", "bot", testServer, chattest.Member("u1", 0))

	require.Empty(t, s.RolesAdded)
	require.Len(t, s.SentTo("welcome"), 1)
}

func TestMemberJoined_Skips(t *testing.T) {
	t.Run("no config", func(t *testing.T) {
		g, s := newTestGreeter(t, nil)
		g.MemberJoined(context.Background(), "g1", "bot", testServer, chattest.Member("u1", 0))
		require.Empty(t, s.RolesAdded)
		require.Empty(t, s.Messages)
	})

	t.Run("disabled", func(t *testing.T) {
		g, s := newTestGreeter(t, entities.NewGuild("g1"))
		g.MemberJoined(context.Background(), "g1", "bot", testServer, chattest.Member("u1", 0))
		require.Empty(t, s.RolesAdded)
		require.Empty(t, s.Messages)
	})

	t.Run("bots", func(t *testing.T) {
		guild := entities.NewGuild("g1")
		guild.Welcome.Enabled = true
		guild.Welcome.ChannelID = "welcome"
		g, s := newTestGreeter(t, guild)

		m := chattest.Member("b2", 0)
		m.User.Bot = true
		g.MemberJoined(context.Background(), "g1", "bot", testServer, m)
		require.Empty(t, s.Messages)
	})

	t.Run("send failure", func(t *testing.T) {
		guild := entities.NewGuild("g1")
		guild.Welcome.Enabled = true
		guild.Welcome.ChannelID = "welcome"
		g, s := newTestGreeter(t, guild)
		s.FailSend = true

		require.NotPanics(t, func() {
			g.MemberJoined(context.Background(), "g1", "bot", testServer, chattest.Member("u1", 0))
		})
	})
}
