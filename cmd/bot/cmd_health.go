package main

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/Jacobbrewer1/satla/pkg/interactions"
	"github.com/Jacobbrewer1/satla/pkg/permissions"
	"github.com/alexliesenfeld/health"
	"github.com/bwmarrin/discordgo"
)

const (
	healthCmdName = "health"

	colorHealthy   = 0x00ff00
	colorUnhealthy = 0xff0000
)

func (a *App) healthCommand() *command {
	return &command{
		def: &discordgo.ApplicationCommand{
			Name:                     healthCmdName,
			Description:              "Check bot health and system status",
			DefaultMemberPermissions: &manageGuild,
			DMPermission:             &noDM,
		},
		route: interactions.Route{Handler: a.healthHandler, Cooldown: 30 * time.Second, Defer: true, Ephemeral: true},
	}
}

func (a *App) healthHandler(ctx context.Context, i *discordgo.InteractionCreate) (*interactions.Response, error) {
	inv, err := a.invocation(ctx, i)
	if err != nil {
		return nil, err
	}
	if !inv.checker.CanConfigureBot(inv.member) {
		return nil, inv.deny()
	}

	dbOK := a.databaseHealthy(ctx)

	var missing []string
	perms, err := a.state.BotGuildPermissions(inv.guild.ID)
	if err != nil {
		missing = []string{"unknown"}
	} else {
		missing = permissions.MissingBotPermissions(perms)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	color := colorHealthy
	if !dbOK || len(missing) > 0 {
		color = colorUnhealthy
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "💾 Database", Value: statusText(dbOK, "Connected", "Disconnected"), Inline: true},
		{Name: "🔐 Permissions", Value: statusText(len(missing) == 0, "All permissions", fmt.Sprintf("%d missing", len(missing))), Inline: true},
		{Name: "⚡ Commands", Value: fmt.Sprintf("%d loaded", len(a.commands)), Inline: true},
		{Name: "⚙️ Configuration", Value: configurationStatus(inv.guild)},
		{
			Name: "📊 System",
			Value: fmt.Sprintf("**Memory:** %d MB\n**Uptime:** %s\n**Ping:** %dms\n**Servers:** %d",
				mem.Alloc/1024/1024,
				formatUptime(time.Since(a.startedAt)),
				a.chat.HeartbeatLatency().Milliseconds(),
				a.state.GuildCount(),
			),
		},
	}
	if len(missing) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "⚠️ Missing Permissions", Value: strings.Join(missing, "\n")})
	}

	return interactions.EphemeralEmbed(&discordgo.MessageEmbed{
		Title:     "🏥 Bot Health Check",
		Color:     color,
		Fields:    fields,
		Timestamp: a.now().Format(time.RFC3339),
	}), nil
}

// databaseHealthy reads the database check from the health checker.
func (a *App) databaseHealthy(ctx context.Context) bool {
	if a.health == nil {
		return false
	}
	res, ok := a.health.Check(ctx).Details[checkDatabase]
	return ok && res.Status == health.StatusUp
}

func configurationStatus(g *entities.Guild) string {
	return fmt.Sprintf("**Welcome:** %s\n**Auto-role:** %s\n**Tickets:** %s\n**Logs:** %s",
		enabled(g.Welcome.Enabled && g.Welcome.ChannelID != ""),
		enabled(g.AutoRole.Enabled && g.AutoRole.RoleID != ""),
		enabled(g.Ticketing.Enabled && g.Ticketing.CategoryID != ""),
		enabled(g.Ticketing.LogChannelID != ""),
	)
}

func statusText(ok bool, good, bad string) string {
	if ok {
		return "✅ " + good
	}
	return "❌ " + bad
}
