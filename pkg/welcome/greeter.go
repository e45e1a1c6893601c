package welcome

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/satla/pkg/chat"
	"github.com/Jacobbrewer1/satla/pkg/dataaccess"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/Jacobbrewer1/satla/pkg/logging"
	"github.com/bwmarrin/discordgo"
)

var (
	// ErrRoleNotFound is returned when the role does not exist in the guild.
	ErrRoleNotFound = errors.New("role not found")

	// ErrRoleManaged is returned for roles owned by an integration.
	ErrRoleManaged = errors.New("role is managed by an integration")

	// ErrRoleTooHigh is returned when the role is not below the bot's highest role.
	ErrRoleTooHigh = errors.New("role is not below the bot's highest role")
)

// Greeter runs the member join flow: the auto-role first, then the welcome message.
type Greeter struct {
	l      *slog.Logger
	s      chat.Session
	guilds dataaccess.GuildDal
	now    func() time.Time
}

// NewGreeter creates a greeter.
func NewGreeter(l *slog.Logger, s chat.Session, guilds dataaccess.GuildDal) *Greeter {
	return &Greeter{
		l:      l,
		s:      s,
		guilds: guilds,
		now:    time.Now,
	}
}

// Assignable checks that the bot, holding botRoles, may hand out the role.
func Assignable(roles []*discordgo.Role, botRoles []string, roleID string) (*discordgo.Role, error) {
	role := chat.FindRole(roles, roleID)
	if role == nil {
		return nil, ErrRoleNotFound
	}
	if role.Managed {
		return role, ErrRoleManaged
	}
	if chat.HighestRolePosition(roles, botRoles) <= role.Position {
		return role, ErrRoleTooHigh
	}
	return role, nil
}

// BotRoles returns the roles the bot holds in the guild.
func BotRoles(s chat.Session, guildID, botID string) ([]string, error) {
	m, err := s.GuildMember(guildID, botID)
	if err != nil {
		return nil, fmt.Errorf("error getting bot member: %w", err)
	}
	return m.Roles, nil
}

// MemberJoined gives the member the auto-role and posts the welcome message. Failures are logged.
func (g *Greeter) MemberJoined(ctx context.Context, guildID, botID string, srv Server, m *discordgo.Member) {
	if m == nil || m.User == nil || m.User.Bot {
		return
	}

	l := g.l.With(
		slog.String(logging.KeyGuildID, guildID),
		slog.String(logging.KeyUserID, m.User.ID),
	)

	guild, err := g.guilds.GetGuildByID(ctx, guildID)
	if errors.Is(err, dataaccess.ErrNotFound) {
		return
	} else if err != nil {
		l.Error("Error loading guild", slog.String(logging.KeyError, err.Error()))
		return
	}

	if guild.AutoRole.Enabled && guild.AutoRole.RoleID != "" {
		if err := g.assignRole(guildID, botID, guild.AutoRole.RoleID, m.User.ID); err != nil {
			l.Warn("Auto-role not assigned", slog.String(logging.KeyError, err.Error()))
		} else {
			l.Info("Auto-role assigned")
		}
	}

	if guild.Welcome.Enabled && guild.Welcome.ChannelID != "" {
		if err := g.Send(guild.Welcome, NewcomerFromMember(m), srv, false); err != nil {
			l.Error("Error sending welcome message", slog.String(logging.KeyError, err.Error()))
		}
	}
}

func (g *Greeter) assignRole(guildID, botID, roleID, userID string) error {
	roles, err := g.s.GuildRoles(guildID)
	if err != nil {
		return fmt.Errorf("error getting guild roles: %w", err)
	}
	botRoles, err := BotRoles(g.s, guildID, botID)
	if err != nil {
		return err
	}
	if _, err := Assignable(roles, botRoles, roleID); err != nil {
		return err
	}
	if err := g.s.GuildMemberRoleAdd(guildID, userID, roleID); err != nil {
		return fmt.Errorf("error adding role: %w", err)
	}
	return nil
}

// Send posts the welcome embed to the configured channel.
func (g *Greeter) Send(cfg entities.WelcomeConfig, m Newcomer, srv Server, test bool) error {
	_, err := g.s.ChannelMessageSendComplex(cfg.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{Embed(cfg, m, srv, test, g.now())},
	})
	return err
}
