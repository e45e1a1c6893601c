// Package ticketing runs the support ticket lifecycle: create, claim, close and force close.
package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Jacobbrewer1/satla/pkg/chat"
	"github.com/Jacobbrewer1/satla/pkg/dataaccess"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/Jacobbrewer1/satla/pkg/logging"
	"github.com/Jacobbrewer1/satla/pkg/messages"
	"github.com/Jacobbrewer1/satla/pkg/permissions"
	"github.com/bwmarrin/discordgo"
)

const (
	// CloseDelay is how long a confirmed close waits before deleting the ticket channel.
	CloseDelay = 5 * time.Second

	// DefaultForceCloseReason is recorded when a force close gives no reason.
	DefaultForceCloseReason = "Force closed by staff"

	channelCreationFailed = "channel creation failed"

	ticketChannelPerms = discordgo.PermissionViewChannel |
		discordgo.PermissionSendMessages |
		discordgo.PermissionReadMessageHistory |
		discordgo.PermissionAttachFiles |
		discordgo.PermissionEmbedLinks
)

// Engine runs ticket actions. State changes are saved before any chat side effect, and side
// effect failures after a save are logged rather than returned.
type Engine struct {
	l       *slog.Logger
	s       chat.Session
	tickets dataaccess.TicketDal
	checker *permissions.Checker
	audit   *AuditSink

	now        func() time.Time
	afterFunc  func(d time.Duration, f func())
	closeDelay time.Duration

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// EngineOption configures an Engine.
type EngineOption func(e *Engine)

// WithEngineClock replaces the clock used for timestamps.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithAfterFunc replaces the scheduler used for the delayed channel delete.
func WithAfterFunc(f func(d time.Duration, fn func())) EngineOption {
	return func(e *Engine) {
		e.afterFunc = f
	}
}

// NewEngine creates a ticket engine.
func NewEngine(l *slog.Logger, s chat.Session, tickets dataaccess.TicketDal, checker *permissions.Checker, audit *AuditSink, opts ...EngineOption) *Engine {
	e := &Engine{
		l:       l,
		s:       s,
		tickets: tickets,
		checker: checker,
		audit:   audit,
		now: func() time.Time {
			return time.Now().UTC()
		},
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		closeDelay: CloseDelay,
		inFlight:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Checker returns the permission checker scoped to the guild.
func (e *Engine) Checker(guild *entities.Guild) *permissions.Checker {
	return e.checker.ForGuild(guild.Ticketing.StaffRoleID)
}

func (e *Engine) logger(guild *entities.Guild, ticketID string) *slog.Logger {
	return e.l.With(
		slog.String(logging.KeyGuildID, guild.ID),
		slog.String(logging.KeyTicketID, ticketID),
	)
}

// CheckQuota returns a QuotaExceededError when the user holds as many open or claimed tickets as the guild allows.
func (e *Engine) CheckQuota(ctx context.Context, guild *entities.Guild, userID string) error {
	n, err := e.tickets.CountTickets(ctx, dataaccess.TicketFilter{
		GuildID:  guild.ID,
		UserID:   userID,
		Statuses: entities.ActiveTicketStatuses,
	})
	if err != nil {
		return fmt.Errorf("error counting tickets: %w", err)
	}

	if limit := guild.Ticketing.MaxTickets(); int(n) >= limit {
		return &QuotaExceededError{Count: int(n), Max: limit}
	}
	return nil
}

func (e *Engine) begin(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.inFlight[key]; ok {
		return false
	}
	e.inFlight[key] = struct{}{}
	return true
}

func (e *Engine) end(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, key)
}

// Create opens a ticket for the actor and gives it a private channel.
func (e *Engine) Create(ctx context.Context, guild *entities.Guild, actor permissions.Member, subject, description string) (*entities.Ticket, error) {
	if !guild.Ticketing.Enabled {
		return nil, ErrTicketingDisabled
	}

	key := actor.UserID + "|" + guild.ID
	if !e.begin(key) {
		return nil, ErrCreationInProgress
	}
	defer e.end(key)

	if err := e.CheckQuota(ctx, guild, actor.UserID); err != nil {
		return nil, err
	}

	seq, err := e.tickets.NextTicketSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("error allocating ticket id: %w", err)
	}

	if description == "" {
		description = DefaultDescription
	}

	now := e.now()
	t := &entities.Ticket{
		TicketID:    entities.FormatTicketID(seq),
		GuildID:     guild.ID,
		UserID:      actor.UserID,
		Username:    actor.Username,
		Subject:     subject,
		Description: description,
		Status:      entities.TicketStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t.AddLog(entities.TicketActionCreated, actor.UserID, actor.Username, "Subject: "+subject, now)

	if err := e.tickets.SaveTicket(ctx, t); err != nil {
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}

	l := e.logger(guild, t.TicketID)

	ch, err := e.s.GuildChannelCreateComplex(guild.ID, e.channelData(guild, t))
	if err != nil {
		l.Error("Error creating ticket channel", slog.String(logging.KeyError, err.Error()))
		e.abandon(ctx, l, t)
		return nil, fmt.Errorf("%w: %w", ErrChannelCreationFailed, err)
	}
	t.ChannelID = ch.ID

	msg, err := e.s.ChannelMessageSendComplex(ch.ID, controlMessage(t, guild.Ticketing.StaffRoleID))
	if err != nil {
		l.Error("Error posting ticket control message", slog.String(logging.KeyError, err.Error()))
	} else {
		t.ControlMessageID = msg.ID
	}

	t.UpdatedAt = e.now()
	if err := e.tickets.SaveTicket(ctx, t); err != nil {
		// The stored ticket does not know its channel, so nothing could delete it later.
		l.Error("Error saving ticket channel", slog.String(logging.KeyError, err.Error()))
		e.deleteChannel(l, ch.ID)
		t.ChannelID = ""
		t.ControlMessageID = ""
		e.abandon(ctx, l, t)
		return nil, fmt.Errorf("error saving ticket channel: %w", err)
	}

	e.audit.Post(guild, AuditEntry{Action: entities.TicketActionCreated, Ticket: t, Actor: actor, At: now})

	l.Info("Ticket created", slog.String(logging.KeyChannelID, ch.ID))
	return t, nil
}

// abandon closes a ticket whose channel could not be created so that it stops counting against the quota.
func (e *Engine) abandon(ctx context.Context, l *slog.Logger, t *entities.Ticket) {
	now := e.now()
	t.Status = entities.TicketStatusClosed
	t.ClosedAt = &now
	t.UpdatedAt = now
	t.AddLog(entities.TicketActionForceClosed, t.UserID, t.Username, channelCreationFailed, now)

	if err := e.tickets.SaveTicket(ctx, t); err != nil {
		l.Error("Error closing abandoned ticket", slog.String(logging.KeyError, err.Error()))
	}
}

func (e *Engine) channelData(guild *entities.Guild, t *entities.Ticket) discordgo.GuildChannelCreateData {
	overwrites := []*discordgo.PermissionOverwrite{
		// @everyone shares the guild ID.
		{
			ID:   guild.ID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    t.UserID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: ticketChannelPerms,
		},
	}
	for _, role := range e.Checker(guild).StaffRoles() {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    role,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: ticketChannelPerms | discordgo.PermissionManageMessages,
		})
	}

	return discordgo.GuildChannelCreateData{
		Name:                 t.ChannelName(),
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                fmt.Sprintf("Support ticket %s by %s | %s", t.TicketID, t.Username, t.Subject),
		ParentID:             guild.Ticketing.CategoryID,
		PermissionOverwrites: overwrites,
	}
}

func (e *Engine) load(ctx context.Context, guild *entities.Guild, ticketID string) (*entities.Ticket, error) {
	t, err := e.tickets.GetTicket(ctx, guild.ID, entities.NormalizeTicketID(ticketID))
	if errors.Is(err, dataaccess.ErrNotFound) {
		return nil, ErrTicketNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting ticket: %w", err)
	}
	return t, nil
}

func (e *Engine) canClose(guild *entities.Guild, actor permissions.Member, t *entities.Ticket) bool {
	return actor.UserID == t.UserID || e.Checker(guild).CanManageTickets(actor)
}

// Claim assigns the ticket to a staff member.
func (e *Engine) Claim(ctx context.Context, guild *entities.Guild, actor permissions.Member, ticketID string) (*entities.Ticket, error) {
	if !e.Checker(guild).CanManageTickets(actor) {
		return nil, ErrPermissionDenied
	}

	t, err := e.load(ctx, guild, ticketID)
	if err != nil {
		return nil, err
	}
	if t.IsClosed() {
		return nil, ErrTicketClosed
	}
	if t.ClaimedBy != "" {
		return nil, &AlreadyClaimedError{By: t.ClaimedBy}
	}

	now := e.now()
	t.Status = entities.TicketStatusClaimed
	t.ClaimedBy = actor.UserID
	t.ClaimedAt = &now
	t.UpdatedAt = now
	t.AddLog(entities.TicketActionClaimed, actor.UserID, actor.Username, "", now)

	if err := e.tickets.SaveTicket(ctx, t); err != nil {
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}

	e.audit.Post(guild, AuditEntry{Action: entities.TicketActionClaimed, Ticket: t, Actor: actor, At: now})
	e.logger(guild, t.TicketID).Info("Ticket claimed", slog.String(logging.KeyUserID, actor.UserID))
	return t, nil
}

// RequestClose checks that the actor may close the ticket. Nothing changes until ConfirmClose.
func (e *Engine) RequestClose(ctx context.Context, guild *entities.Guild, actor permissions.Member, ticketID string) (*entities.Ticket, error) {
	t, err := e.load(ctx, guild, ticketID)
	if err != nil {
		return nil, err
	}
	if t.IsClosed() {
		return nil, ErrTicketClosed
	}
	if !e.canClose(guild, actor, t) {
		return nil, ErrPermissionDenied
	}
	return t, nil
}

// ConfirmClose closes the ticket and deletes its channel after CloseDelay.
func (e *Engine) ConfirmClose(ctx context.Context, guild *entities.Guild, actor permissions.Member, ticketID string) (*entities.Ticket, error) {
	t, err := e.RequestClose(ctx, guild, actor, ticketID)
	if err != nil {
		return nil, err
	}

	captured, err := e.close(ctx, guild, actor, t, entities.TicketActionClosed, "")
	if err != nil {
		return nil, err
	}

	channelID := t.ChannelID
	l := e.logger(guild, t.TicketID)
	e.afterFunc(e.closeDelay, func() {
		<-captured
		e.deleteChannel(l, channelID)
	})
	return t, nil
}

// ForceClose closes the ticket at once. Only staff and the guild owner may force close.
func (e *Engine) ForceClose(ctx context.Context, guild *entities.Guild, actor permissions.Member, ticketID, reason string) (*entities.Ticket, error) {
	if !actor.IsOwner && !e.Checker(guild).CanManageTickets(actor) {
		return nil, ErrPermissionDenied
	}

	t, err := e.load(ctx, guild, ticketID)
	if err != nil {
		return nil, err
	}
	if t.IsClosed() {
		return nil, ErrTicketClosed
	}

	if reason == "" {
		reason = DefaultForceCloseReason
	}
	captured, err := e.close(ctx, guild, actor, t, entities.TicketActionForceClosed, reason)
	if err != nil {
		return nil, err
	}

	<-captured
	e.deleteChannel(e.logger(guild, t.TicketID), t.ChannelID)
	return t, nil
}

// close marks the ticket closed and posts the close log. The returned channel is closed once the
// ticket channel may be deleted.
func (e *Engine) close(ctx context.Context, guild *entities.Guild, actor permissions.Member, t *entities.Ticket, action entities.TicketAction, details string) (<-chan struct{}, error) {
	now := e.now()
	t.Status = entities.TicketStatusClosed
	t.ClosedAt = &now
	t.UpdatedAt = now
	t.AddLog(action, actor.UserID, actor.Username, details, now)

	if err := e.tickets.SaveTicket(ctx, t); err != nil {
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}

	entry := AuditEntry{Action: action, Ticket: t, Actor: actor, Details: details, At: now}
	if guild.Ticketing.TranscriptEnabled {
		entry.TranscriptChannelID = t.ChannelID
	}
	captured := e.audit.Post(guild, entry)

	e.logger(guild, t.TicketID).Info("Ticket closed", slog.String("action", string(action)), slog.String(logging.KeyUserID, actor.UserID))
	return captured, nil
}

func (e *Engine) deleteChannel(l *slog.Logger, channelID string) {
	if channelID == "" {
		return
	}
	if _, err := e.s.ChannelDelete(channelID); err != nil {
		l.Error("Error deleting ticket channel",
			slog.String(logging.KeyChannelID, channelID),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}

// ClaimNotice is the message posted in the ticket channel when it is claimed.
func ClaimNotice(lang entities.Language, username string) string {
	return messages.Get(lang, messages.TicketClaimed, "user", username)
}
