package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/Jacobbrewer1/satla/pkg/chat"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/Jacobbrewer1/satla/pkg/interactions"
	"github.com/Jacobbrewer1/satla/pkg/logging"
	"github.com/Jacobbrewer1/satla/pkg/messages"
	"github.com/Jacobbrewer1/satla/pkg/welcome"
	"github.com/bwmarrin/discordgo"
)

const (
	welcomeCmdName = "welcome"

	colorSuccess = 0x00ff00

	placeholderHelp = "**Available placeholders:**\n`{user}` - User mention\n`{server}` - Server name\n`{memberCount}` - Current member count"
)

func (a *App) welcomeCommand() *command {
	styleChoices := []*discordgo.ApplicationCommandOptionChoice{
		{Name: "Modern (Blue theme)", Value: string(entities.WelcomeStyleModern)},
		{Name: "Classic (Green theme)", Value: string(entities.WelcomeStyleClassic)},
		{Name: "Minimal (Gray theme)", Value: string(entities.WelcomeStyleMinimal)},
	}

	return &command{
		def: &discordgo.ApplicationCommand{
			Name:                     welcomeCmdName,
			Description:              "Configure welcome messages for new members",
			DefaultMemberPermissions: &manageGuild,
			DMPermission:             &noDM,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "setup",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Set up basic welcome configuration",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:         "channel",
							Type:         discordgo.ApplicationCommandOptionChannel,
							Description:  "Channel to send welcome messages",
							Required:     true,
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						},
					},
				},
				{
					Name:        "message",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Configure welcome message content",
					Options: []*discordgo.ApplicationCommandOption{
						{Name: "title", Type: discordgo.ApplicationCommandOptionString, Description: "Embed title (use {user}, {server}, {memberCount})"},
						{Name: "description", Type: discordgo.ApplicationCommandOptionString, Description: "Embed description (use {user}, {server}, {memberCount})"},
						{Name: "footer", Type: discordgo.ApplicationCommandOptionString, Description: "Embed footer text"},
					},
				},
				{
					Name:        "style",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Configure welcome message appearance",
					Options: []*discordgo.ApplicationCommandOption{
						{Name: "color", Type: discordgo.ApplicationCommandOptionString, Description: "Embed color (hex code like #7289da)"},
						{Name: "style", Type: discordgo.ApplicationCommandOptionString, Description: "Embed style preset", Choices: styleChoices},
						{Name: "image", Type: discordgo.ApplicationCommandOptionString, Description: "Banner image URL for the embed"},
						{Name: "show_avatar", Type: discordgo.ApplicationCommandOptionBoolean, Description: "Show user avatar as thumbnail"},
						{Name: "show_member_count", Type: discordgo.ApplicationCommandOptionBoolean, Description: "Show member count in footer"},
						{Name: "show_server_icon", Type: discordgo.ApplicationCommandOptionBoolean, Description: "Show server icon in footer"},
					},
				},
				{
					Name:        "disable",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Disable welcome messages",
				},
				{
					Name:        "test",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Test the welcome message",
				},
				{
					Name:        "status",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Description: "Check current welcome configuration",
				},
			},
		},
		route: interactions.Route{Handler: a.welcomeHandler, Cooldown: defaultCooldown, Defer: true, Ephemeral: true},
	}
}

func (a *App) welcomeHandler(ctx context.Context, i *discordgo.InteractionCreate) (*interactions.Response, error) {
	inv, err := a.invocation(ctx, i)
	if err != nil {
		return nil, err
	}
	if !inv.checker.CanConfigureBot(inv.member) {
		return nil, inv.deny()
	}

	cfg := &inv.guild.Welcome
	sub, opts := subCommand(i)

	if !cfg.Enabled && (sub == "message" || sub == "style" || sub == "test") {
		return nil, interactions.NewUserError(inv.text(messages.WelcomeNotConfigured))
	}

	switch sub {
	case "setup":
		ch := a.resolvedChannel(i, opts.id("channel"))
		if ch == nil || ch.Type != discordgo.ChannelTypeGuildText {
			return nil, interactions.NewUserError(inv.text(messages.ConfigInvalidChannel))
		}
		if !a.canPost(ch.ID) {
			return nil, interactions.NewUserError(inv.text(messages.ConfigChannelPermissions))
		}

		cfg.Enabled = true
		cfg.ChannelID = ch.ID
		defaults := entities.DefaultWelcomeConfig()
		if cfg.Title == "" {
			cfg.Title = defaults.Title
		}
		if cfg.Description == "" {
			cfg.Description = defaults.Description
		}
		if cfg.Footer == "" {
			cfg.Footer = defaults.Footer
		}
		if err := a.saveGuild(ctx, inv.guild); err != nil {
			return nil, err
		}

		return interactions.EphemeralEmbed(&discordgo.MessageEmbed{
			Title:       inv.text(messages.WelcomeConfigured),
			Description: "Welcome messages will be sent to " + chat.ChannelMention(ch.ID),
			Color:       colorSuccess,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "🎨 Customize Style", Value: "Use `/welcome style` to change colors and appearance", Inline: true},
				{Name: "📝 Customize Message", Value: "Use `/welcome message` to edit the content", Inline: true},
				{Name: "🧪 Test Setup", Value: "Use `/welcome test` to preview your welcome message", Inline: true},
			},
		}), nil

	case "message":
		var changes []string
		if v := opts.str("title"); v != "" {
			cfg.Title = v
			changes = append(changes, "**Title:** "+v)
		}
		if v := opts.str("description"); v != "" {
			cfg.Description = v
			changes = append(changes, "**Description:** "+v)
		}
		if v := opts.str("footer"); v != "" {
			cfg.Footer = v
			changes = append(changes, "**Footer:** "+v)
		}
		if len(changes) == 0 {
			return nil, interactions.NewUserError("❌ Please provide at least one option to update.\n\n" + placeholderHelp)
		}
		if err := a.saveGuild(ctx, inv.guild); err != nil {
			return nil, err
		}
		return interactions.Ephemeral(inv.text(messages.WelcomeUpdated) + "\n\n" + strings.Join(changes, "\n")), nil

	case "style":
		changes, err := applyWelcomeStyle(inv, cfg, opts)
		if err != nil {
			return nil, err
		}
		if err := a.saveGuild(ctx, inv.guild); err != nil {
			return nil, err
		}
		return interactions.Ephemeral("🎨 Welcome message style updated!\n\n" + strings.Join(changes, "\n")), nil

	case "disable":
		cfg.Enabled = false
		if err := a.saveGuild(ctx, inv.guild); err != nil {
			return nil, err
		}
		return interactions.Ephemeral(inv.text(messages.WelcomeDisabled)), nil

	case "test":
		var srv welcome.Server
		if g, err := a.state.Guild(i.GuildID); err == nil {
			srv = welcome.ServerFromGuild(g)
		}
		if err := a.greeter.Send(*cfg, welcome.NewcomerFromMember(i.Member), srv, true); err != nil {
			a.Warn("Error sending test welcome message",
				slog.String(logging.KeyGuildID, i.GuildID),
				slog.String(logging.KeyError, err.Error()),
			)
			return nil, interactions.WrapUserError("❌ Failed to send test message. Check bot permissions in the welcome channel.", err)
		}
		return interactions.Ephemeral(inv.text(messages.WelcomeTestSent, "channel", chat.ChannelMention(cfg.ChannelID))), nil

	case "status":
		if !cfg.Enabled {
			return interactions.Ephemeral("❌ Welcome messages are **disabled**.\n\nUse `/welcome setup` to get started!"), nil
		}
		return interactions.EphemeralEmbed(welcomeStatus(*cfg)), nil

	default:
		return nil, unknownSubCommand(welcomeCmdName, sub)
	}
}

// applyWelcomeStyle applies the style options and describes what changed.
func applyWelcomeStyle(inv *invocation, cfg *entities.WelcomeConfig, opts options) ([]string, error) {
	var changes []string

	if v := opts.str("color"); v != "" {
		if _, err := welcome.ParseColor(v); err != nil {
			return nil, interactions.WrapUserError(inv.text(messages.WelcomeInvalidColor), err)
		}
		cfg.Color = v
		changes = append(changes, "**Color:** "+v)
	}

	if v := entities.WelcomeStyle(opts.str("style")); v != "" {
		if !v.Valid() {
			return nil, interactions.NewUserError("❌ Unknown style preset.")
		}
		cfg.Style = v
		cfg.Color = v.Color()
		changes = append(changes, inv.text(messages.WelcomeStyleSet, "style", titleCase(string(v))))
	}

	if v := opts.str("image"); v != "" {
		u, err := url.ParseRequestURI(v)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, interactions.NewUserError("❌ Invalid image URL provided.")
		}
		cfg.ImageURL = v
		changes = append(changes, "**Banner Image:** Set")
	}

	toggles := []struct {
		option string
		label  string
		field  *bool
	}{
		{option: "show_avatar", label: "Show Avatar", field: &cfg.ShowAvatar},
		{option: "show_member_count", label: "Show Member Count", field: &cfg.ShowMemberCount},
		{option: "show_server_icon", label: "Show Server Icon", field: &cfg.ShowServerIcon},
	}
	for _, t := range toggles {
		if v, ok := opts.boolean(t.option); ok {
			*t.field = v
			state := "Disabled"
			if v {
				state = "Enabled"
			}
			changes = append(changes, fmt.Sprintf("**%s:** %s", t.label, state))
		}
	}

	if len(changes) == 0 {
		return nil, interactions.NewUserError("❌ Please provide at least one style option to update.")
	}
	return changes, nil
}

func welcomeStatus(cfg entities.WelcomeConfig) *discordgo.MessageEmbed {
	color, err := welcome.ParseColor(cfg.Color)
	if err != nil {
		color, _ = welcome.ParseColor(cfg.Style.Color())
	}

	notSet := func(s string) string {
		if s == "" {
			return "Not set"
		}
		return s
	}

	return &discordgo.MessageEmbed{
		Title: "📊 Welcome System Status",
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📍 Channel", Value: chat.ChannelMention(cfg.ChannelID), Inline: true},
			{Name: "🎨 Style", Value: titleCase(string(cfg.Style)), Inline: true},
			{
				Name: "🖼️ Features",
				Value: strings.Join([]string{
					"Avatar: " + enabled(cfg.ShowAvatar),
					"Member Count: " + enabled(cfg.ShowMemberCount),
					"Server Icon: " + enabled(cfg.ShowServerIcon),
					"Banner: " + enabled(cfg.ImageURL != ""),
				}, "\n"),
				Inline: true,
			},
			{Name: "📝 Current Title", Value: notSet(cfg.Title)},
			{Name: "💬 Current Description", Value: notSet(cfg.Description)},
		},
	}
}

// titleCase upper cases the first letter of s.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
