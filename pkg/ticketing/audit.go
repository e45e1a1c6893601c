package ticketing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Jacobbrewer1/satla/pkg/chat"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/Jacobbrewer1/satla/pkg/logging"
	"github.com/Jacobbrewer1/satla/pkg/permissions"
	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

const (
	// auditRate is how many audit posts per second a guild may send, after the burst.
	auditRate  = rate.Limit(1)
	auditBurst = 5

	auditTimeout = 30 * time.Second
)

// AuditEntry is one ticket action to record in the guild log channel.
type AuditEntry struct {
	Action     entities.TicketAction
	Ticket     *entities.Ticket
	Actor      permissions.Member
	Details    string
	Transcript string
	At         time.Time

	// TranscriptChannelID is read into Transcript before posting when Transcript is empty.
	TranscriptChannelID string
}

// AuditSink posts ticket actions to the guild log channel. Posts are sent in the background,
// paced per guild and kept in order per guild.
type AuditSink struct {
	l *slog.Logger
	s chat.Session

	mu     sync.Mutex
	guilds map[string]*auditQueue

	wg sync.WaitGroup
}

type auditQueue struct {
	limiter *rate.Limiter

	// tail is closed when the most recently queued post has finished.
	tail chan struct{}
}

// NewAuditSink creates an audit sink posting through s.
func NewAuditSink(l *slog.Logger, s chat.Session) *AuditSink {
	return &AuditSink{
		l:      l,
		s:      s,
		guilds: make(map[string]*auditQueue),
	}
}

// enqueue returns the guild limiter, the channel closed when the previous post is done, and the
// channel to close when this post is done.
func (a *AuditSink) enqueue(guildID string) (*rate.Limiter, <-chan struct{}, chan struct{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	q, ok := a.guilds[guildID]
	if !ok {
		q = &auditQueue{limiter: rate.NewLimiter(auditRate, auditBurst)}
		a.guilds[guildID] = q
	}
	prev := q.tail
	done := make(chan struct{})
	q.tail = done
	return q.limiter, prev, done
}

// Post records the entry when the guild has a log channel. It does not block. The returned channel
// is closed once the transcript channel has been read, after which the channel may be deleted.
func (a *AuditSink) Post(guild *entities.Guild, entry AuditEntry) <-chan struct{} {
	captured := make(chan struct{})

	channelID := guild.Ticketing.LogChannelID
	if channelID == "" {
		close(captured)
		return captured
	}

	// The caller keeps mutating its ticket.
	ticket := *entry.Ticket
	entry.Ticket = &ticket

	l := a.l.With(
		slog.String(logging.KeyGuildID, guild.ID),
		slog.String(logging.KeyTicketID, ticket.TicketID),
		slog.String(logging.KeyChannelID, channelID),
	)

	limiter, prev, done := a.enqueue(guild.ID)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer close(done)

		if entry.Transcript == "" && entry.TranscriptChannelID != "" {
			transcript, err := buildTranscript(a.s, ticket.TicketID, entry.TranscriptChannelID)
			if err != nil {
				l.Warn("Error building transcript", slog.String(logging.KeyError, err.Error()))
			}
			entry.Transcript = transcript
		}
		close(captured)

		if prev != nil {
			<-prev
		}

		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()

		if err := limiter.Wait(ctx); err != nil {
			l.Warn("Dropping audit post", slog.String(logging.KeyError, err.Error()))
			return
		}
		if _, err := a.s.ChannelMessageSendComplex(channelID, auditMessage(entry)); err != nil {
			l.Error("Error posting audit log", slog.String(logging.KeyError, err.Error()))
		}
	}()

	return captured
}

// Flush waits for every pending post.
func (a *AuditSink) Flush() {
	a.wg.Wait()
}

func actionColor(action entities.TicketAction) int {
	switch action {
	case entities.TicketActionCreated:
		return 0x00ff00
	case entities.TicketActionClaimed:
		return 0xffaa00
	case entities.TicketActionClosed, entities.TicketActionForceClosed:
		return 0xff0000
	default:
		return 0x00aaff
	}
}

func actionTitle(action entities.TicketAction) string {
	words := strings.Split(string(action), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return "📋 Ticket " + strings.Join(words, " ")
}

func auditMessage(entry AuditEntry) *discordgo.MessageSend {
	t := entry.Ticket
	embed := &discordgo.MessageEmbed{
		Title: actionTitle(entry.Action),
		Color: actionColor(entry.Action),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🎫 Ticket ID", Value: t.TicketID, Inline: true},
			{Name: "👤 User", Value: chat.Mention(entry.Actor.UserID), Inline: true},
			{Name: "📝 Subject", Value: t.Subject, Inline: true},
			{Name: "📅 Action Time", Value: fmt.Sprintf("<t:%d:F>", entry.At.Unix()), Inline: true},
		},
		Timestamp: entry.At.Format(time.RFC3339),
	}
	if entry.Details != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "ℹ️ Details", Value: entry.Details})
	}

	msg := &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}
	if entry.Transcript != "" {
		msg.Files = []*discordgo.File{{
			Name:        strings.ToLower(t.TicketID) + "-transcript.txt",
			ContentType: "text/plain",
			Reader:      strings.NewReader(entry.Transcript),
		}}
	}
	return msg
}
