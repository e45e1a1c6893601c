package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Jacobbrewer1/satla/pkg/chat"
	"github.com/Jacobbrewer1/satla/pkg/interactions"
	"github.com/Jacobbrewer1/satla/pkg/messages"
	"github.com/Jacobbrewer1/satla/pkg/ticketing"
	"github.com/bwmarrin/discordgo"
)

const ticketPanelCmdName = "ticketpanel"

func (a *App) ticketPanelCommand() *command {
	return &command{
		def: &discordgo.ApplicationCommand{
			Name:                     ticketPanelCmdName,
			Description:              "Create a ticket panel for users to create support tickets",
			DefaultMemberPermissions: &manageChannels,
			DMPermission:             &noDM,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:         "channel",
					Type:         discordgo.ApplicationCommandOptionChannel,
					Description:  "Channel to send the ticket panel (optional)",
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				},
				{
					Name:        "title",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "Panel title",
				},
				{
					Name:        "description",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "Panel description",
				},
			},
		},
		route: interactions.Route{Handler: a.ticketPanelHandler, Cooldown: 10 * time.Second, Defer: true, Ephemeral: true},
	}
}

func (a *App) ticketPanelHandler(ctx context.Context, i *discordgo.InteractionCreate) (*interactions.Response, error) {
	inv, err := a.invocation(ctx, i)
	if err != nil {
		return nil, err
	}
	if !inv.checker.IsStaff(inv.member) {
		return nil, inv.deny()
	}

	opts := commandOptions(i)
	channelID := opts.id("channel")
	if channelID == "" {
		channelID = i.ChannelID
	}
	if !a.canPost(channelID) {
		return nil, interactions.NewUserError(inv.text(messages.ConfigChannelPermissions))
	}

	if _, err := a.chat.ChannelMessageSendComplex(channelID, ticketing.PanelMessage(opts.str("title"), opts.str("description"))); err != nil {
		return nil, fmt.Errorf("error sending ticket panel: %w", err)
	}
	return interactions.Ephemeral(fmt.Sprintf("✅ Ticket panel created in %s!", chat.ChannelMention(channelID))), nil
}
