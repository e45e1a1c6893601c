// Package messages holds the user facing text of the bot in every supported language.
package messages

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"github.com/Jacobbrewer1/satla/pkg/entities"
	"gopkg.in/yaml.v3"
)

// Key identifies a message in the catalog.
type Key string

const (
	ErrGeneric     Key = "error_generic"
	ErrPermissions Key = "error_permissions"
	ErrCooldown    Key = "error_cooldown"
	ErrGuildOnly   Key = "error_guild_only"
	SuccessGeneric Key = "success_generic"

	TicketCreated        Key = "ticket_created"
	TicketMaxReached     Key = "ticket_max_reached"
	TicketNotFound       Key = "ticket_not_found"
	TicketAlreadyClaimed Key = "ticket_already_claimed"
	TicketAlreadyClosed  Key = "ticket_already_closed"
	TicketClaimed        Key = "ticket_claimed"
	TicketCloseConfirm   Key = "ticket_close_confirm"
	TicketClosing        Key = "ticket_closing"
	TicketCloseCancelled Key = "ticket_close_cancelled"
	TicketForceClosed    Key = "ticket_force_closed"
	TicketInProgress     Key = "ticket_in_progress"
	TicketSystemDisabled Key = "ticket_system_disabled"
	TicketStaffOnly      Key = "ticket_staff_only"
	TicketCloseDenied    Key = "ticket_close_denied"
	TicketCreationFailed Key = "ticket_creation_failed"

	WelcomeConfigured    Key = "welcome_configured"
	WelcomeUpdated       Key = "welcome_updated"
	WelcomeStyleSet      Key = "welcome_style_set"
	WelcomeDisabled      Key = "welcome_disabled"
	WelcomeNotConfigured Key = "welcome_not_configured"
	WelcomeTestSent      Key = "welcome_test_sent"
	WelcomeInvalidColor  Key = "welcome_invalid_color"

	AutoRoleSet      Key = "autorole_set"
	AutoRoleDisabled Key = "autorole_disabled"
	AutoRoleTooHigh  Key = "autorole_role_too_high"
	AutoRoleManaged  Key = "autorole_managed_role"

	ConfigUpdated            Key = "config_updated"
	ConfigChannelPermissions Key = "config_channel_permissions"
	ConfigInvalidChannel     Key = "config_invalid_channel"
	ConfigInvalidRole        Key = "config_invalid_role"

	LocaleSet     Key = "locale_set"
	LocaleCurrent Key = "locale_current"
	LocaleInvalid Key = "locale_invalid"
)

//go:embed catalog.yaml
var rawCatalog []byte

var catalog = mustParse(rawCatalog)

func mustParse(raw []byte) map[entities.Language]map[Key]string {
	c, err := parse(raw)
	if err != nil {
		panic(fmt.Errorf("error parsing message catalog: %w", err))
	}
	return c
}

func parse(raw []byte) (map[entities.Language]map[Key]string, error) {
	c := make(map[entities.Language]map[Key]string)
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if _, ok := c[entities.LanguageEnglish]; !ok {
		return nil, fmt.Errorf("catalog has no %q messages", entities.LanguageEnglish)
	}
	return c, nil
}

// Get returns the message for key in lang. Messages missing from lang fall back to English, and
// unknown keys are returned as is. args are placeholder and value pairs, e.g. "time", "3" replaces {time}.
func Get(lang entities.Language, key Key, args ...string) string {
	msg, ok := catalog[lang][key]
	if !ok {
		msg, ok = catalog[entities.LanguageEnglish][key]
	}
	if !ok {
		msg = string(key)
	}

	if len(args) < 2 {
		return msg
	}

	pairs := make([]string, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		pairs = append(pairs, "{"+args[i]+"}", args[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Languages returns the languages that have a catalog.
func Languages() []entities.Language {
	langs := make([]entities.Language, 0, len(catalog))
	for l := range catalog {
		langs = append(langs, l)
	}
	slices.Sort(langs)
	return langs
}
