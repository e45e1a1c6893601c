package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Jacobbrewer1/satla/pkg/interactions"
	"github.com/bwmarrin/discordgo"
)

const pingCmdName = "ping"

func (a *App) pingCommand() *command {
	return &command{
		def: &discordgo.ApplicationCommand{
			Name:        pingCmdName,
			Description: "Check bot latency and status",
		},
		route: interactions.Route{Handler: a.pingHandler, Cooldown: 3 * time.Second},
	}
}

func (a *App) pingHandler(_ context.Context, i *discordgo.InteractionCreate) (*interactions.Response, error) {
	// Time from the interaction being created, read from its snowflake, until now.
	latency := time.Duration(0)
	if created, err := discordgo.SnowflakeTimestamp(i.ID); err == nil {
		latency = time.Since(created)
	}

	return interactions.Message(fmt.Sprintf("🏓 **Pong!**\n📶 **Latency:** %dms\n💓 **API Latency:** %dms",
		latency.Milliseconds(),
		a.chat.HeartbeatLatency().Milliseconds(),
	)), nil
}
