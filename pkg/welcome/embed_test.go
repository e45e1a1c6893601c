package welcome

import (
	"testing"
	"time"

	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/stretchr/testify/require"
)

var (
	testNow      = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	testNewcomer = Newcomer{UserID: "u1", Username: "alice", AvatarURL: "https://cdn/avatar.png"}
	testServer   = Server{Name: "Satla", MemberCount: 42, IconURL: "https://cdn/icon.png"}
)

func TestEmbed_Defaults(t *testing.T) {
	e := Embed(entities.DefaultWelcomeConfig(), testNewcomer, testServer, false, testNow)

	require.Equal(t, "Welcome to Satla! 🎉", e.Title)
	require.Equal(t, "Hey <@u1>! Welcome to **Satla**!\n\nYou are our **42** member. We hope you enjoy your stay! 🌟", e.Description)
	require.Equal(t, 0x7289da, e.Color)
	require.Equal(t, "Member #42", e.Footer.Text)
	require.Equal(t, "https://cdn/icon.png", e.Footer.IconURL)
	require.Equal(t, "https://cdn/avatar.png", e.Thumbnail.URL)
	require.Nil(t, e.Image)
	require.Equal(t, "2024-03-01T12:00:00Z", e.Timestamp)
}

func TestEmbed_Options(t *testing.T) {
	cfg := entities.DefaultWelcomeConfig()
	cfg.Title = "{user} joined {server}, {user}!"
	cfg.Color = "#43B581"
	cfg.ImageURL = "https://cdn/banner.png"
	cfg.ShowAvatar = false
	cfg.ShowServerIcon = false
	cfg.ShowMemberCount = false

	e := Embed(cfg, testNewcomer, testServer, true, testNow)

	require.Equal(t, "alice joined Satla, alice!", e.Title)
	require.Equal(t, 0x43b581, e.Color)
	require.Equal(t, "https://cdn/banner.png", e.Image.URL)
	require.Nil(t, e.Thumbnail)
	require.Empty(t, e.Footer.IconURL)
	require.Equal(t, "Member (Test Message)", e.Footer.Text)
}

func TestEmbed_BadColorFallsBackToStyle(t *testing.T) {
	cfg := entities.DefaultWelcomeConfig()
	cfg.Color = "blue"
	cfg.Style = entities.WelcomeStyleMinimal

	e := Embed(cfg, testNewcomer, testServer, false, testNow)
	require.Equal(t, 0x747f8d, e.Color)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "#7289da", want: 0x7289da},
		{in: "#FFFFFF", want: 0xffffff},
		{in: "7289da", wantErr: true},
		{in: "#72z9da", wantErr: true},
		{in: "#7289d", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidColor)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
