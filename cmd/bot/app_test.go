package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/Jacobbrewer1/satla/cmd/bot/config"
	"github.com/Jacobbrewer1/satla/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/satla/pkg/chat/chattest"
	"github.com/Jacobbrewer1/satla/pkg/dataaccess/dataaccesstest"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/Jacobbrewer1/satla/pkg/interactions"
	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

var (
	admin   = chattest.Member("a1", discordgo.PermissionAdministrator)
	staff   = chattest.Member("s1", discordgo.PermissionManageChannels)
	regular = chattest.Member("u1", 0)
	owner   = chattest.Member("o1", 0)
)

var errNoState = errors.New("state cache entry not found")

type fakeState struct {
	guilds       map[string]*discordgo.Guild
	channels     map[string]*discordgo.Channel
	guildPerms   int64
	channelPerms int64
}

func (f *fakeState) Guild(guildID string) (*discordgo.Guild, error) {
	g, ok := f.guilds[guildID]
	if !ok {
		return nil, errNoState
	}
	return g, nil
}

func (f *fakeState) Channel(channelID string) (*discordgo.Channel, error) {
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, errNoState
	}
	return ch, nil
}

func (f *fakeState) BotID() string {
	return "bot"
}

func (f *fakeState) GuildCount() int {
	return len(f.guilds)
}

func (f *fakeState) BotGuildPermissions(guildID string) (int64, error) {
	if _, ok := f.guilds[guildID]; !ok {
		return 0, errNoState
	}
	return f.guildPerms, nil
}

func (f *fakeState) BotChannelPermissions(channelID string) (int64, error) {
	if _, ok := f.channels[channelID]; !ok {
		return 0, errNoState
	}
	return f.channelPerms, nil
}

type testApp struct {
	*App
	s     *chattest.Session
	store *dataaccesstest.Store
	state *fakeState
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	s := chattest.New()
	s.Roles["g1"] = []*discordgo.Role{
		{ID: "bot-role", Name: "bot", Position: 5},
		{ID: "member", Name: "member", Position: 2},
		{ID: "admin", Name: "admin", Position: 8},
		{ID: "booster", Name: "booster", Position: 1, Managed: true},
	}
	s.SetMember("g1", chattest.Member("bot", 0, "bot-role"))

	st := &fakeState{
		guilds: map[string]*discordgo.Guild{
			"g1": {ID: "g1", Name: "Test Guild", OwnerID: "o1", MemberCount: 42},
		},
		channels: map[string]*discordgo.Channel{
			"welcome": {ID: "welcome", Name: "welcome", Type: discordgo.ChannelTypeGuildText},
			"logs":    {ID: "logs", Name: "logs", Type: discordgo.ChannelTypeGuildText},
			"support": {ID: "support", Name: "Support", Type: discordgo.ChannelTypeGuildCategory},
		},
		guildPerms:   discordgo.PermissionAdministrator,
		channelPerms: discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks,
	}

	store := dataaccesstest.NewStore()

	a := NewApp(slog.Default(), mux.NewRouter())
	a.chat = s
	a.state = st
	a.store = &config.Store{Guilds: store, Tickets: store}
	a.now = func() time.Time { return testNow }
	a.wire()

	return &testApp{App: a, s: s, store: store, state: st}
}

func (ta *testApp) saveGuild(t *testing.T, g *entities.Guild) {
	t.Helper()
	require.NoError(t, ta.store.SaveGuild(context.Background(), g))
}

func (ta *testApp) saveTicket(t *testing.T, tk *entities.Ticket) {
	t.Helper()
	require.NoError(t, ta.store.SaveTicket(context.Background(), tk))
}

func requireUserError(t *testing.T, err error, want string) {
	t.Helper()
	ue, ok := interactions.AsUserError(err)
	require.True(t, ok, "expected user error, got %v", err)
	require.Equal(t, want, ue.Message)
}

func TestApp_CommandsRegistered(t *testing.T) {
	a := newTestApp(t)

	want := []string{"autorole", "health", "info", "locale", "ping", "ticketconfig", "ticketpanel", "tickets", "welcome"}
	got := a.interactions.CommandNames()
	sort.Strings(got)
	require.Equal(t, want, got)

	for _, cmd := range a.commands {
		require.NotEmpty(t, cmd.def.Description, cmd.def.Name)
		require.NotNil(t, cmd.route.Handler, cmd.def.Name)
	}
}

func TestApp_DispatchPing(t *testing.T) {
	a := newTestApp(t)
	a.s.Latency = 42 * time.Millisecond

	a.interactions.Dispatch(context.Background(), chattest.Command(regular, "g1", pingCmdName))

	resp := a.s.LastResponse()
	require.NotNil(t, resp)
	require.Contains(t, resp.Data.Content, "🏓 **Pong!**")
	require.Contains(t, resp.Data.Content, "💓 **API Latency:** 42ms")
}

func TestApp_DispatchGuildOnly(t *testing.T) {
	a := newTestApp(t)

	a.interactions.Dispatch(context.Background(), chattest.Command(nil, "", infoCmdName))

	resp := a.s.LastResponse()
	require.NotNil(t, resp)
	require.Equal(t, "❌ This command can only be used in a server.", resp.Data.Content)
}

func TestApp_GuildOwner(t *testing.T) {
	a := newTestApp(t)
	require.Equal(t, "o1", a.guildOwner("g1"))
	require.Empty(t, a.guildOwner("missing"))
}

func TestApp_GuildLanguage(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	require.Equal(t, entities.LanguageEnglish, a.guildLanguage(ctx, ""))
	require.Equal(t, entities.LanguageEnglish, a.guildLanguage(ctx, "g1"))

	g := entities.NewGuild("g1")
	g.Language = entities.LanguageHebrew
	a.saveGuild(t, g)
	require.Equal(t, entities.LanguageHebrew, a.guildLanguage(ctx, "g1"))
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := new(dto.Metric)
	require.NoError(t, g.Write(m))
	return m.GetGauge().GetValue()
}

func TestGuildHandlers_GuildCount(t *testing.T) {
	a := newTestApp(t)

	a.guildJoinedHandler(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "g1"}})
	require.Equal(t, float64(1), gaugeValue(t, monitoring.TotalDiscordGuilds))

	delete(a.state.guilds, "g1")
	a.guildLeaveHandler(nil, &discordgo.GuildDelete{Guild: &discordgo.Guild{ID: "g1"}})
	require.Equal(t, float64(0), gaugeValue(t, monitoring.TotalDiscordGuilds))
}

func TestGuildHandlers_MemberJoined(t *testing.T) {
	a := newTestApp(t)

	g := entities.NewGuild("g1")
	g.Welcome.Enabled = true
	g.Welcome.ChannelID = "welcome"
	g.AutoRole.Enabled = true
	g.AutoRole.RoleID = "member"
	a.saveGuild(t, g)

	m := chattest.Member("n1", 0)
	m.GuildID = "g1"
	a.memberJoinedHandler(nil, &discordgo.GuildMemberAdd{Member: m})

	require.Equal(t, []string{"g1/n1/member"}, a.s.RolesAdded)

	sent := a.s.SentTo("welcome")
	require.Len(t, sent, 1)
	require.Len(t, sent[0].Embeds, 1)
	require.Contains(t, sent[0].Embeds[0].Description, "<@n1>")
	require.Contains(t, sent[0].Embeds[0].Footer.Text, "42")
}

func TestGuildHandlers_MemberJoinedUnconfigured(t *testing.T) {
	a := newTestApp(t)

	m := chattest.Member("n1", 0)
	m.GuildID = "g1"
	a.memberJoined(context.Background(), m)

	require.Empty(t, a.s.RolesAdded)
	require.Empty(t, a.s.Messages)
}

func TestMiddlewareHttp(t *testing.T) {
	tests := []struct {
		name     string
		handler  Controller
		wantCode int
	}{
		{
			name: "ok",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			wantCode: http.StatusOK,
		},
		{
			name: "status kept",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name: "panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("boom")
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mux.NewRouter()
			r.HandleFunc("/test", middlewareHttp(slog.Default(), tt.handler)).Methods(http.MethodGet)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
			require.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestApp_SetupRoutes(t *testing.T) {
	a := newTestApp(t)
	a.health = newTestChecker(nil)
	t.Cleanup(a.health.Stop)
	a.setupRoutes()

	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, PathHealth, nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	a.r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	a.r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, PathMetrics, nil))
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
