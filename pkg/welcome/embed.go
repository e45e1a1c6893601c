// Package welcome greets new members and gives them the guild auto-role.
package welcome

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Jacobbrewer1/satla/pkg/chat"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/bwmarrin/discordgo"
)

const testSuffix = " (Test Message)"

var (
	// ErrInvalidColor is returned when a color is not a #rrggbb hex string.
	ErrInvalidColor = errors.New("invalid hex color")

	hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// Server is what the welcome embed shows about the guild.
type Server struct {
	Name        string
	MemberCount int
	IconURL     string
}

// Newcomer is what the welcome embed shows about the member.
type Newcomer struct {
	UserID    string
	Username  string
	AvatarURL string
}

// NewcomerFromMember describes a guild member for the welcome embed.
func NewcomerFromMember(m *discordgo.Member) Newcomer {
	if m == nil || m.User == nil {
		return Newcomer{}
	}
	return Newcomer{
		UserID:    m.User.ID,
		Username:  m.User.Username,
		AvatarURL: m.User.AvatarURL("256"),
	}
}

// ServerFromGuild describes a guild for the welcome embed.
func ServerFromGuild(g *discordgo.Guild) Server {
	if g == nil {
		return Server{}
	}
	return Server{
		Name:        g.Name,
		MemberCount: g.MemberCount,
		IconURL:     g.IconURL(""),
	}
}

// ParseColor converts a #rrggbb string to an embed color.
func ParseColor(s string) (int, error) {
	if !hexColor.MatchString(s) {
		return 0, ErrInvalidColor
	}
	c, err := strconv.ParseInt(s[1:], 16, 32)
	if err != nil {
		return 0, ErrInvalidColor
	}
	return int(c), nil
}

// render fills the {user}, {server} and {memberCount} placeholders.
func render(tmpl, user, server, count string) string {
	return strings.NewReplacer(
		"{user}", user,
		"{server}", server,
		"{memberCount}", count,
	).Replace(tmpl)
}

// Embed builds the welcome embed for a member. Test embeds are marked in the footer.
func Embed(cfg entities.WelcomeConfig, m Newcomer, srv Server, test bool, now time.Time) *discordgo.MessageEmbed {
	count := strconv.Itoa(srv.MemberCount)

	color, err := ParseColor(cfg.Color)
	if err != nil {
		color, _ = ParseColor(cfg.Style.Color())
	}

	footerCount := ""
	if cfg.ShowMemberCount {
		footerCount = count
	}
	footer := strings.TrimSpace(render(cfg.Footer, m.Username, srv.Name, footerCount))
	footer = strings.TrimSpace(strings.TrimSuffix(footer, "#"))
	if test {
		footer += testSuffix
	}

	e := &discordgo.MessageEmbed{
		Title:       render(cfg.Title, m.Username, srv.Name, count),
		Description: render(cfg.Description, chat.Mention(m.UserID), srv.Name, count),
		Color:       color,
		Timestamp:   now.Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: strings.TrimSpace(footer)},
	}
	if cfg.ShowAvatar && m.AvatarURL != "" {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: m.AvatarURL}
	}
	if cfg.ImageURL != "" {
		e.Image = &discordgo.MessageEmbedImage{URL: cfg.ImageURL}
	}
	if cfg.ShowServerIcon && srv.IconURL != "" {
		e.Footer.IconURL = srv.IconURL
	}
	return e
}
