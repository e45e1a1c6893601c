package entities

const (
	// DefaultMaxTicketsPerUser is the number of active tickets a user may hold when the guild has not configured it.
	DefaultMaxTicketsPerUser = 3

	// DefaultAutoDeleteAfterHours is the default value of TicketingConfig.AutoDeleteAfterHours.
	DefaultAutoDeleteAfterHours = 24
)

type TicketingConfig struct {
	// Enabled is whether ticketing is enabled.
	Enabled bool `json:"enabled" bson:"enabled"`

	// CategoryID is the ID of the category that ticket channels are created in.
	CategoryID string `json:"category_id" bson:"category_id"`

	// StaffRoleID is the ID of the role that handles tickets.
	StaffRoleID string `json:"staff_role_id" bson:"staff_role_id"`

	// LogChannelID is the ID of the channel that ticket actions are logged to.
	LogChannelID string `json:"log_channel_id" bson:"log_channel_id"`

	// MaxTicketsPerUser is the number of open or claimed tickets a user may have at once.
	MaxTicketsPerUser int `json:"max_tickets_per_user" bson:"max_tickets_per_user"`

	// AutoDeleteAfterHours is how long a closed ticket is kept for.
	AutoDeleteAfterHours int `json:"auto_delete_after_hours" bson:"auto_delete_after_hours"`

	// TranscriptEnabled is whether a transcript is attached to the close log.
	TranscriptEnabled bool `json:"transcript_enabled" bson:"transcript_enabled"`
}

// DefaultTicketingConfig returns the ticketing configuration of a new guild.
func DefaultTicketingConfig() TicketingConfig {
	return TicketingConfig{
		Enabled:              true,
		MaxTicketsPerUser:    DefaultMaxTicketsPerUser,
		AutoDeleteAfterHours: DefaultAutoDeleteAfterHours,
		TranscriptEnabled:    true,
	}
}

// MaxTickets returns the configured maximum, falling back to the default when unset.
func (c TicketingConfig) MaxTickets() int {
	if c.MaxTicketsPerUser < 1 {
		return DefaultMaxTicketsPerUser
	}
	return c.MaxTicketsPerUser
}
