// Package dataaccesstest provides in-memory stores for tests.
package dataaccesstest

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Jacobbrewer1/satla/pkg/dataaccess"
	"github.com/Jacobbrewer1/satla/pkg/entities"
)

// ErrForced is returned by calls configured to fail.
var ErrForced = errors.New("forced failure")

// Store keeps guilds and tickets in memory. Records are copied on the way in and out.
type Store struct {
	mu      sync.Mutex
	guilds  map[string]entities.Guild
	tickets map[string]entities.Ticket
	lastSeq int64

	// FailSave makes SaveTicket fail.
	FailSave bool

	// Saves counts successful SaveTicket calls.
	Saves int
}

var (
	_ dataaccess.GuildDal  = (*Store)(nil)
	_ dataaccess.TicketDal = (*Store)(nil)
)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		guilds:  make(map[string]entities.Guild),
		tickets: make(map[string]entities.Ticket),
	}
}

func copyTicket(t entities.Ticket) *entities.Ticket {
	t.Logs = append([]entities.TicketLog(nil), t.Logs...)
	if t.ClaimedAt != nil {
		at := *t.ClaimedAt
		t.ClaimedAt = &at
	}
	if t.ClosedAt != nil {
		at := *t.ClosedAt
		t.ClosedAt = &at
	}
	return &t
}

func (s *Store) SaveGuild(_ context.Context, guild *entities.Guild) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guilds[guild.ID] = *guild
	return nil
}

func (s *Store) GetGuildByID(_ context.Context, id string) (*entities.Guild, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.guilds[id]
	if !ok {
		return nil, dataaccess.ErrNotFound
	}
	return &g, nil
}

func (s *Store) SaveTicket(_ context.Context, ticket *entities.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSave {
		return ErrForced
	}
	s.tickets[ticket.TicketID] = *copyTicket(*ticket)
	s.Saves++
	return nil
}

func (s *Store) GetTicket(_ context.Context, guildID, ticketID string) (*entities.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[ticketID]
	if !ok || t.GuildID != guildID {
		return nil, dataaccess.ErrNotFound
	}
	return copyTicket(t), nil
}

func (s *Store) FindTickets(_ context.Context, filter dataaccess.TicketFilter, limit int) ([]*entities.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*entities.Ticket, 0)
	for _, t := range s.tickets {
		if filter.Matches(&t) {
			out = append(out, copyTicket(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].TicketID > out[j].TicketID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CountTickets(_ context.Context, filter dataaccess.TicketFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, t := range s.tickets {
		if filter.Matches(&t) {
			n++
		}
	}
	return n, nil
}

func (s *Store) NextTicketSequence(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeq = max(s.lastSeq, int64(len(s.tickets))) + 1
	return s.lastSeq, nil
}

// Ticket returns the stored ticket, or nil.
func (s *Store) Ticket(ticketID string) *entities.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[ticketID]
	if !ok {
		return nil
	}
	return copyTicket(t)
}
