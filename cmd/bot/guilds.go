package main

import (
	"context"
	"log/slog"

	"github.com/Jacobbrewer1/satla/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/satla/pkg/logging"
	"github.com/Jacobbrewer1/satla/pkg/welcome"
	"github.com/bwmarrin/discordgo"
)

func (a *App) guildJoinedHandler(_ *discordgo.Session, g *discordgo.GuildCreate) {
	a.Info("Joined guild", slog.String(logging.KeyGuildID, g.ID), slog.String("name", g.Name))
	monitoring.TotalDiscordGuilds.Set(float64(a.state.GuildCount()))
}

func (a *App) guildLeaveHandler(_ *discordgo.Session, g *discordgo.GuildDelete) {
	a.Info("Left guild", slog.String(logging.KeyGuildID, g.ID), slog.Bool("unavailable", g.Unavailable))
	monitoring.TotalDiscordGuilds.Set(float64(a.state.GuildCount()))
}

func (a *App) memberJoinedHandler(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
	a.memberJoined(context.Background(), m.Member)
}

// memberJoined gives a new member the auto-role and welcomes them.
func (a *App) memberJoined(ctx context.Context, m *discordgo.Member) {
	var srv welcome.Server
	if g, err := a.state.Guild(m.GuildID); err == nil {
		srv = welcome.ServerFromGuild(g)
	} else {
		a.Warn("Guild not cached for member join", slog.String(logging.KeyGuildID, m.GuildID), slog.String(logging.KeyError, err.Error()))
	}

	monitoring.MembersGreeted.WithLabelValues(m.GuildID).Inc()
	a.greeter.MemberJoined(ctx, m.GuildID, a.state.BotID(), srv, m)
}
