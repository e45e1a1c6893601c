package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jacobbrewer1/satla/pkg/chat"
	"github.com/Jacobbrewer1/satla/pkg/interactions"
	"github.com/Jacobbrewer1/satla/pkg/messages"
	"github.com/Jacobbrewer1/satla/pkg/welcome"
	"github.com/bwmarrin/discordgo"
)

const autoRoleCmdName = "autorole"

func (a *App) autoRoleCommand() *command {
	return &command{
		def: &discordgo.ApplicationCommand{
			Name:                     autoRoleCmdName,
			Description:              "Configure automatic role assignment for new members",
			DefaultMemberPermissions: &manageRoles,
			DMPermission:             &noDM,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "set",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Set the auto-role for new members",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "role",
							Type:        discordgo.ApplicationCommandOptionRole,
							Description: "The role to assign to new members",
							Required:    true,
						},
					},
				},
				{
					Name:        "remove",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Disable auto-role assignment",
				},
				{
					Name:        "status",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Check current auto-role configuration",
				},
			},
		},
		route: interactions.Route{Handler: a.autoRoleHandler, Cooldown: defaultCooldown},
	}
}

func (a *App) autoRoleHandler(ctx context.Context, i *discordgo.InteractionCreate) (*interactions.Response, error) {
	inv, err := a.invocation(ctx, i)
	if err != nil {
		return nil, err
	}
	if !inv.checker.CanConfigureBot(inv.member) {
		return nil, inv.deny()
	}

	sub, opts := subCommand(i)
	switch sub {
	case "set":
		roles, err := a.chat.GuildRoles(i.GuildID)
		if err != nil {
			return nil, fmt.Errorf("error getting guild roles: %w", err)
		}
		botRoles, err := welcome.BotRoles(a.chat, i.GuildID, a.state.BotID())
		if err != nil {
			return nil, err
		}

		role, err := welcome.Assignable(roles, botRoles, opts.id("role"))
		switch {
		case errors.Is(err, welcome.ErrRoleNotFound):
			return nil, interactions.WrapUserError(inv.text(messages.ConfigInvalidRole), err)
		case errors.Is(err, welcome.ErrRoleManaged):
			return nil, interactions.WrapUserError(inv.text(messages.AutoRoleManaged), err)
		case errors.Is(err, welcome.ErrRoleTooHigh):
			return nil, interactions.WrapUserError(inv.text(messages.AutoRoleTooHigh), err)
		case err != nil:
			return nil, err
		}

		inv.guild.AutoRole.Enabled = true
		inv.guild.AutoRole.RoleID = role.ID
		if err := a.saveGuild(ctx, inv.guild); err != nil {
			return nil, err
		}
		return interactions.Ephemeral(inv.text(messages.AutoRoleSet, "role", role.Name)), nil

	case "remove":
		inv.guild.AutoRole.Enabled = false
		inv.guild.AutoRole.RoleID = ""
		if err := a.saveGuild(ctx, inv.guild); err != nil {
			return nil, err
		}
		return interactions.Ephemeral(inv.text(messages.AutoRoleDisabled)), nil

	case "status":
		cfg := inv.guild.AutoRole
		if !cfg.Enabled || cfg.RoleID == "" {
			return interactions.Ephemeral("❌ Auto-role is **disabled**."), nil
		}

		roles, err := a.chat.GuildRoles(i.GuildID)
		if err != nil {
			return nil, fmt.Errorf("error getting guild roles: %w", err)
		}
		role := chat.FindRole(roles, cfg.RoleID)
		if role == nil {
			return interactions.Ephemeral("⚠️ Auto-role is enabled but the configured role no longer exists."), nil
		}
		return interactions.Ephemeral(fmt.Sprintf("✅ Auto-role is **enabled**.\n📝 Role: **%s**", role.Name)), nil

	default:
		return nil, unknownSubCommand(autoRoleCmdName, sub)
	}
}
