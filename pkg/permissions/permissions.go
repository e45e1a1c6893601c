// Package permissions answers capability questions about guild members.
package permissions

import (
	"os"
	"slices"

	"github.com/bwmarrin/discordgo"
)

// envStaffRole names the environment variable holding a staff role that applies to every guild.
const envStaffRole = "STAFF_ROLE_ID"

// RequiredBotPermissions are the permissions the bot needs to work in a guild.
var RequiredBotPermissions = []Permission{
	{Name: "View Channels", Bit: discordgo.PermissionViewChannel},
	{Name: "Send Messages", Bit: discordgo.PermissionSendMessages},
	{Name: "Embed Links", Bit: discordgo.PermissionEmbedLinks},
	{Name: "Attach Files", Bit: discordgo.PermissionAttachFiles},
	{Name: "Read Message History", Bit: discordgo.PermissionReadMessageHistory},
	{Name: "Manage Channels", Bit: discordgo.PermissionManageChannels},
	{Name: "Manage Roles", Bit: discordgo.PermissionManageRoles},
}

// Permission is a named permission bit.
type Permission struct {
	Name string
	Bit  int64
}

// Member is what the checker needs to know about a guild member.
type Member struct {
	UserID      string
	Username    string
	Permissions int64
	Roles       []string
	IsOwner     bool
}

// FromMember builds a Member from a discord member. ownerID is the ID of the guild owner.
func FromMember(m *discordgo.Member, ownerID string) Member {
	if m == nil {
		return Member{}
	}

	mem := Member{
		Permissions: m.Permissions,
		Roles:       m.Roles,
	}
	if m.User != nil {
		mem.UserID = m.User.ID
		mem.Username = m.User.Username
		mem.IsOwner = ownerID != "" && m.User.ID == ownerID
	}
	return mem
}

func (m Member) has(bit int64) bool {
	return m.Permissions&bit == bit
}

// Checker answers capability questions. The zero value knows no staff roles.
type Checker struct {
	staffRoles []string
}

// NewChecker returns a checker that treats the STAFF_ROLE_ID role as staff in every guild.
func NewChecker() *Checker {
	return NewCheckerWithRoles(os.Getenv(envStaffRole))
}

// NewCheckerWithRoles returns a checker treating the given roles as staff.
func NewCheckerWithRoles(roles ...string) *Checker {
	c := new(Checker)
	for _, r := range roles {
		if r != "" {
			c.staffRoles = append(c.staffRoles, r)
		}
	}
	return c
}

// ForGuild returns a checker that also treats the guild's configured staff role as staff.
func (c *Checker) ForGuild(staffRoleID string) *Checker {
	if staffRoleID == "" || slices.Contains(c.staffRoles, staffRoleID) {
		return c
	}
	roles := append(slices.Clone(c.staffRoles), staffRoleID)
	return &Checker{staffRoles: roles}
}

// StaffRoles returns the roles treated as staff.
func (c *Checker) StaffRoles() []string {
	return slices.Clone(c.staffRoles)
}

// IsAdmin reports whether the member is an administrator or the guild owner.
func (c *Checker) IsAdmin(m Member) bool {
	return m.IsOwner || m.has(discordgo.PermissionAdministrator)
}

// IsStaff reports whether the member can handle tickets.
func (c *Checker) IsStaff(m Member) bool {
	if m.has(discordgo.PermissionAdministrator) || m.has(discordgo.PermissionManageChannels) {
		return true
	}
	for _, r := range m.Roles {
		if slices.Contains(c.staffRoles, r) {
			return true
		}
	}
	return false
}

// IsModerator reports whether the member is staff or can manage messages.
func (c *Checker) IsModerator(m Member) bool {
	return c.IsStaff(m) || m.has(discordgo.PermissionManageMessages)
}

// CanConfigureBot reports whether the member may change the guild configuration.
func (c *Checker) CanConfigureBot(m Member) bool {
	return c.IsAdmin(m)
}

// CanManageTickets reports whether the member may claim and close other users' tickets.
func (c *Checker) CanManageTickets(m Member) bool {
	return c.IsStaff(m)
}

// MissingBotPermissions lists the required permissions absent from perms.
func MissingBotPermissions(perms int64) []string {
	if perms&discordgo.PermissionAdministrator != 0 {
		return nil
	}

	missing := make([]string, 0)
	for _, p := range RequiredBotPermissions {
		if perms&p.Bit != p.Bit {
			missing = append(missing, p.Name)
		}
	}
	return missing
}
