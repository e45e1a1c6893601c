package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Jacobbrewer1/satla/pkg/chat"
	"github.com/Jacobbrewer1/satla/pkg/dataaccess"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/Jacobbrewer1/satla/pkg/interactions"
	"github.com/Jacobbrewer1/satla/pkg/messages"
	"github.com/Jacobbrewer1/satla/pkg/permissions"
	"github.com/bwmarrin/discordgo"
)

// OwnerResolver returns the ID of a guild's owner, or an empty string when it is not known.
type OwnerResolver func(guildID string) string

// Handlers answers the ticket buttons and the ticket modal.
type Handlers struct {
	l      *slog.Logger
	engine *Engine
	guilds dataaccess.GuildDal
	owner  OwnerResolver
}

// NewHandlers creates the ticket interaction handlers.
func NewHandlers(l *slog.Logger, engine *Engine, guilds dataaccess.GuildDal, owner OwnerResolver) *Handlers {
	return &Handlers{
		l:      l,
		engine: engine,
		guilds: guilds,
		owner:  owner,
	}
}

// Register adds the ticket routes to the router.
func (h *Handlers) Register(r *interactions.Router) {
	r.Component(Namespace, interactions.Route{Handler: h.Component})
	r.Modal(Namespace, interactions.Route{Handler: h.Submit, Defer: true, Ephemeral: true})
}

// Actor returns the member that triggered the interaction.
func (h *Handlers) Actor(i *discordgo.InteractionCreate) permissions.Member {
	ownerID := ""
	if h.owner != nil {
		ownerID = h.owner(i.GuildID)
	}
	return permissions.FromMember(i.Member, ownerID)
}

// Component handles every ticket button.
func (h *Handlers) Component(ctx context.Context, i *discordgo.InteractionCreate) (*interactions.Response, error) {
	if i.GuildID == "" || i.Member == nil {
		return interactions.Ephemeral(messages.Get(entities.LanguageEnglish, messages.ErrGuildOnly)), nil
	}

	action, err := ParseAction(i.MessageComponentData().CustomID)
	if err != nil {
		return nil, err
	}

	guild, err := dataaccess.LoadGuild(ctx, h.guilds, i.GuildID)
	if err != nil {
		return nil, fmt.Errorf("error loading guild: %w", err)
	}
	lang := guild.Lang()
	actor := h.Actor(i)

	switch action.Kind {
	case ActionCreate:
		if !guild.Ticketing.Enabled {
			return nil, UserError(lang, ErrTicketingDisabled, messages.ErrPermissions)
		}
		if err := h.engine.CheckQuota(ctx, guild, actor.UserID); err != nil {
			return nil, UserError(lang, err, messages.ErrPermissions)
		}
		return interactions.ShowModal(CreateModal()), nil

	case ActionClaim:
		t, err := h.engine.Claim(ctx, guild, actor, action.TicketID)
		if err != nil {
			return nil, UserError(lang, err, messages.TicketStaffOnly)
		}
		resp := ControlUpdate(t)
		resp.FollowUp = interactions.Message(ClaimNotice(lang, actor.Username))
		return resp, nil

	case ActionClose:
		t, err := h.engine.RequestClose(ctx, guild, actor, action.TicketID)
		if err != nil {
			return nil, UserError(lang, err, messages.TicketCloseDenied)
		}
		return closePrompt(t.TicketID, messages.Get(lang, messages.TicketCloseConfirm, "ticketId", t.TicketID)), nil

	case ActionConfirmClose:
		if _, err := h.engine.ConfirmClose(ctx, guild, actor, action.TicketID); err != nil {
			return nil, UserError(lang, err, messages.TicketCloseDenied)
		}
		return interactions.Update(messages.Get(lang, messages.TicketClosing)), nil

	case ActionCancelClose:
		return interactions.Update(messages.Get(lang, messages.TicketCloseCancelled)), nil

	default:
		return nil, fmt.Errorf("unexpected ticket button %q", action.Kind)
	}
}

// Submit handles the ticket modal.
func (h *Handlers) Submit(ctx context.Context, i *discordgo.InteractionCreate) (*interactions.Response, error) {
	if i.GuildID == "" || i.Member == nil {
		return interactions.Ephemeral(messages.Get(entities.LanguageEnglish, messages.ErrGuildOnly)), nil
	}

	data := i.ModalSubmitData()
	if _, err := ParseAction(data.CustomID); err != nil {
		return nil, err
	}

	guild, err := dataaccess.LoadGuild(ctx, h.guilds, i.GuildID)
	if err != nil {
		return nil, fmt.Errorf("error loading guild: %w", err)
	}
	lang := guild.Lang()

	subject := strings.TrimSpace(ModalValue(data, SubjectField))
	description := strings.TrimSpace(ModalValue(data, DescriptionField))

	t, err := h.engine.Create(ctx, guild, h.Actor(i), subject, description)
	if err != nil {
		return nil, UserError(lang, err, messages.ErrPermissions)
	}
	return interactions.Ephemeral(messages.Get(lang, messages.TicketCreated, "channel", chat.ChannelMention(t.ChannelID))), nil
}

// UserError turns a ticket error into a message for the user. deniedKey is shown for ErrPermissionDenied.
// Errors that are not ticket errors are returned unchanged.
func UserError(lang entities.Language, err error, deniedKey messages.Key) error {
	var (
		claimed *AlreadyClaimedError
		quota   *QuotaExceededError
	)

	switch {
	case errors.Is(err, ErrTicketNotFound):
		return interactions.WrapUserError(messages.Get(lang, messages.TicketNotFound), err)
	case errors.Is(err, ErrTicketClosed):
		return interactions.WrapUserError(messages.Get(lang, messages.TicketAlreadyClosed), err)
	case errors.Is(err, ErrPermissionDenied):
		return interactions.WrapUserError(messages.Get(lang, deniedKey), err)
	case errors.Is(err, ErrCreationInProgress):
		return interactions.WrapUserError(messages.Get(lang, messages.TicketInProgress), err)
	case errors.Is(err, ErrTicketingDisabled):
		return interactions.WrapUserError(messages.Get(lang, messages.TicketSystemDisabled), err)
	case errors.Is(err, ErrChannelCreationFailed):
		return interactions.WrapUserError(messages.Get(lang, messages.TicketCreationFailed), err)
	case errors.As(err, &claimed):
		return interactions.WrapUserError(messages.Get(lang, messages.TicketAlreadyClaimed, "user", chat.Mention(claimed.By)), err)
	case errors.As(err, &quota):
		return interactions.WrapUserError(messages.Get(lang, messages.TicketMaxReached, "count", strconv.Itoa(quota.Count)), err)
	default:
		return err
	}
}
