package entities

// WelcomeStyle is a preset for the welcome embed.
type WelcomeStyle string

const (
	WelcomeStyleModern  WelcomeStyle = "modern"
	WelcomeStyleClassic WelcomeStyle = "classic"
	WelcomeStyleMinimal WelcomeStyle = "minimal"
)

// Color returns the embed color of the preset.
func (s WelcomeStyle) Color() string {
	switch s {
	case WelcomeStyleClassic:
		return "#43b581"
	case WelcomeStyleMinimal:
		return "#747f8d"
	default:
		return "#7289da"
	}
}

// Valid reports whether the style is a known preset.
func (s WelcomeStyle) Valid() bool {
	switch s {
	case WelcomeStyleModern, WelcomeStyleClassic, WelcomeStyleMinimal:
		return true
	}
	return false
}

const (
	DefaultWelcomeTitle       = "Welcome to {server}! 🎉"
	DefaultWelcomeDescription = "Hey {user}! Welcome to **{server}**!\n\nYou are our **{memberCount}** member. We hope you enjoy your stay! 🌟"
	DefaultWelcomeFooter      = "Member #{memberCount}"
)

// WelcomeConfig is the configuration for welcome messages.
type WelcomeConfig struct {
	// Enabled is whether welcome messages are sent.
	Enabled bool `json:"enabled" bson:"enabled"`

	// ChannelID is the ID of the channel welcome messages are sent to.
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// Title is the embed title template.
	Title string `json:"title" bson:"title"`

	// Description is the embed description template.
	Description string `json:"description" bson:"description"`

	// Footer is the embed footer template.
	Footer string `json:"footer" bson:"footer"`

	// Color is the embed color as a hex string, e.g. #7289da.
	Color string `json:"color" bson:"color"`

	// ImageURL is an optional banner image.
	ImageURL string `json:"image_url" bson:"image_url"`

	ShowAvatar      bool `json:"show_avatar" bson:"show_avatar"`
	ShowMemberCount bool `json:"show_member_count" bson:"show_member_count"`
	ShowServerIcon  bool `json:"show_server_icon" bson:"show_server_icon"`

	// Style is the preset the embed was last styled with.
	Style WelcomeStyle `json:"style" bson:"style"`
}

// DefaultWelcomeConfig returns the welcome configuration of a new guild.
func DefaultWelcomeConfig() WelcomeConfig {
	return WelcomeConfig{
		Title:           DefaultWelcomeTitle,
		Description:     DefaultWelcomeDescription,
		Footer:          DefaultWelcomeFooter,
		Color:           WelcomeStyleModern.Color(),
		ShowAvatar:      true,
		ShowMemberCount: true,
		ShowServerIcon:  true,
		Style:           WelcomeStyleModern,
	}
}
