package entities

import "time"

// Language is a supported guild language.
type Language string

const (
	// LanguageEnglish is English. It is the default language.
	LanguageEnglish Language = "en"

	// LanguageHebrew is Hebrew.
	LanguageHebrew Language = "he"
)

// Valid reports whether the language is supported.
func (l Language) Valid() bool {
	switch l {
	case LanguageEnglish, LanguageHebrew:
		return true
	}
	return false
}

// DisplayName returns the human readable name of the language.
func (l Language) DisplayName() string {
	switch l {
	case LanguageHebrew:
		return "עברית (Hebrew)"
	default:
		return "English"
	}
}

// Guild is a configuration for a guild.
type Guild struct {
	// ID is the ID of the guild.
	ID string `json:"id" bson:"id"`

	// Welcome is the welcome message configuration.
	Welcome WelcomeConfig `json:"welcome" bson:"welcome"`

	// AutoRole is the auto-role configuration.
	AutoRole AutoRoleConfig `json:"auto_role" bson:"auto_role"`

	// Ticketing is the ticketing configuration.
	Ticketing TicketingConfig `json:"ticketing" bson:"ticketing"`

	// Language is the language the bot replies in for this guild.
	Language Language `json:"language" bson:"language"`

	// CreatedAt is the time the configuration was first saved.
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	// UpdatedAt is the time the configuration was last saved.
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// NewGuild returns the default configuration for a guild. It is what a guild
// looks like before anything has been saved for it.
func NewGuild(id string) *Guild {
	return &Guild{
		ID:        id,
		Welcome:   DefaultWelcomeConfig(),
		Ticketing: DefaultTicketingConfig(),
		Language:  LanguageEnglish,
	}
}

// Lang returns the guild language, defaulting to English.
func (g *Guild) Lang() Language {
	if g == nil || !g.Language.Valid() {
		return LanguageEnglish
	}
	return g.Language
}

// AutoRoleConfig is the configuration for assigning a role to new members.
type AutoRoleConfig struct {
	// Enabled is whether auto-role is enabled.
	Enabled bool `json:"enabled" bson:"enabled"`

	// RoleID is the ID of the role given to new members.
	RoleID string `json:"role_id" bson:"role_id"`
}
