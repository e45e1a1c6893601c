package entities

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TicketStatus is the lifecycle state of a ticket.
type TicketStatus string

const (
	TicketStatusOpen    TicketStatus = "open"
	TicketStatusClaimed TicketStatus = "claimed"
	TicketStatusClosed  TicketStatus = "closed"
)

// ActiveTicketStatuses are the statuses that count against a user's ticket quota.
var ActiveTicketStatuses = []TicketStatus{TicketStatusOpen, TicketStatusClaimed}

// Valid reports whether the status is known.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusClaimed, TicketStatusClosed:
		return true
	}
	return false
}

// TicketAction is the action recorded in a ticket log entry.
type TicketAction string

const (
	TicketActionCreated     TicketAction = "created"
	TicketActionClaimed     TicketAction = "claimed"
	TicketActionClosed      TicketAction = "closed"
	TicketActionForceClosed TicketAction = "force_closed"
)

// TicketIDPrefix is the prefix of every ticket ID.
const TicketIDPrefix = "TICKET-"

// FormatTicketID formats a ticket sequence number as a ticket ID, e.g. TICKET-0001.
func FormatTicketID(seq int64) string {
	return fmt.Sprintf("%s%04d", TicketIDPrefix, seq)
}

// NormalizeTicketID upper cases a ticket ID typed by a user.
func NormalizeTicketID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Ticket is a support ticket. Each ticket has its own channel.
type Ticket struct {
	// TicketID is the unique ID of the ticket, e.g. TICKET-0001.
	TicketID string `json:"ticket_id" bson:"ticket_id"`

	// GuildID is the ID of the guild that the ticket is in.
	GuildID string `json:"guild_id" bson:"guild_id"`

	// ChannelID is the ID of the channel that the ticket is in.
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// UserID is the ID of the user that created the ticket.
	UserID string `json:"user_id" bson:"user_id"`

	// Username is the username of the user that created the ticket.
	Username string `json:"username" bson:"username"`

	// Subject is the short summary given when the ticket was opened.
	Subject string `json:"subject" bson:"subject"`

	// Description is the longer description given when the ticket was opened.
	Description string `json:"description" bson:"description"`

	// ControlMessageID is the ID of the message holding the claim and close buttons.
	ControlMessageID string `json:"control_message_id" bson:"control_message_id"`

	// Status is the lifecycle state of the ticket.
	Status TicketStatus `json:"status" bson:"status"`

	// ClaimedBy is the ID of the user that claimed the ticket.
	ClaimedBy string `json:"claimed_by,omitempty" bson:"claimed_by,omitempty"`

	// ClaimedAt is when the ticket was claimed.
	ClaimedAt *time.Time `json:"claimed_at,omitempty" bson:"claimed_at,omitempty"`

	// ClosedAt is when the ticket was closed.
	ClosedAt *time.Time `json:"closed_at,omitempty" bson:"closed_at,omitempty"`

	// Logs is every action taken on the ticket, oldest first. Entries are only ever appended.
	Logs []TicketLog `json:"logs" bson:"logs"`

	// CreatedAt is the time that the ticket was created.
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	// UpdatedAt is the time that the ticket was last saved.
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// TicketLog is a single entry of a ticket's action log.
type TicketLog struct {
	Action    TicketAction `json:"action" bson:"action"`
	UserID    string       `json:"user_id" bson:"user_id"`
	Username  string       `json:"username" bson:"username"`
	Timestamp time.Time    `json:"timestamp" bson:"timestamp"`
	Details   string       `json:"details,omitempty" bson:"details,omitempty"`
}

// AddLog appends an entry to the ticket log.
func (t *Ticket) AddLog(action TicketAction, userID, username, details string, at time.Time) {
	t.Logs = append(t.Logs, TicketLog{
		Action:    action,
		UserID:    userID,
		Username:  username,
		Timestamp: at,
		Details:   details,
	})
}

// IsClosed reports whether the ticket has reached its terminal state.
func (t *Ticket) IsClosed() bool {
	return t.Status == TicketStatusClosed
}

// RecentLogs returns at most n of the newest log entries, oldest first.
func (t *Ticket) RecentLogs(n int) []TicketLog {
	if n <= 0 || len(t.Logs) == 0 {
		return nil
	}
	if len(t.Logs) <= n {
		return t.Logs
	}
	return t.Logs[len(t.Logs)-n:]
}

var channelNameStrip = regexp.MustCompile(`[^a-z0-9_-]+`)

// ChannelName returns the name of the ticket channel.
// For example, if the ticket ID is TICKET-0001 and the username is "Alice", the channel name is "ticket-0001-alice".
func (t *Ticket) ChannelName() string {
	name := strings.ToLower(t.TicketID)
	if u := channelNameStrip.ReplaceAllString(strings.ToLower(t.Username), ""); u != "" {
		name += "-" + u
	}
	if len(name) > 100 {
		name = name[:100]
	}
	return name
}
