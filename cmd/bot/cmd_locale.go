package main

import (
	"context"

	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/Jacobbrewer1/satla/pkg/interactions"
	"github.com/Jacobbrewer1/satla/pkg/messages"
	"github.com/bwmarrin/discordgo"
)

const localeCmdName = "locale"

func (a *App) localeCommand() *command {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(messages.Languages()))
	for _, lang := range messages.Languages() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: lang.DisplayName(), Value: string(lang)})
	}

	return &command{
		def: &discordgo.ApplicationCommand{
			Name:                     localeCmdName,
			Description:              "Manage server language settings",
			DefaultMemberPermissions: &manageGuild,
			DMPermission:             &noDM,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "set",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Set the server language",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "language",
							Type:        discordgo.ApplicationCommandOptionString,
							Description: "Select language",
							Required:    true,
							Choices:     choices,
						},
					},
				},
				{
					Name:        "current",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Show current server language",
				},
			},
		},
		route: interactions.Route{Handler: a.localeHandler, Cooldown: defaultCooldown},
	}
}

func (a *App) localeHandler(ctx context.Context, i *discordgo.InteractionCreate) (*interactions.Response, error) {
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
		lang := entities.Language(opts.str("language"))
		if !lang.Valid() {
			return nil, interactions.NewUserError(inv.text(messages.LocaleInvalid))
		}

		inv.guild.Language = lang
		if err := a.saveGuild(ctx, inv.guild); err != nil {
			return nil, err
		}
		// Answer in the language just chosen.
		return interactions.Ephemeral(messages.Get(lang, messages.LocaleSet, "language", lang.DisplayName())), nil

	case "current":
		return interactions.Ephemeral(inv.text(messages.LocaleCurrent, "language", inv.lang.DisplayName())), nil

	default:
		return nil, unknownSubCommand(localeCmdName, sub)
	}
}
