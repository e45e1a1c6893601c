package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/satla/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/Jacobbrewer1/satla/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ticketDalName = "ticket_dal"

type TicketDal interface {
	// SaveTicket saves a ticket, creating it if it does not exist.
	SaveTicket(ctx context.Context, ticket *entities.Ticket) error

	// GetTicket gets a ticket by its ticket ID. ErrNotFound is returned when the guild has no such ticket.
	GetTicket(ctx context.Context, guildID, ticketID string) (*entities.Ticket, error)

	// FindTickets returns the tickets matching the filter, newest first. A limit of zero returns every match.
	FindTickets(ctx context.Context, filter TicketFilter, limit int) ([]*entities.Ticket, error)

	// CountTickets counts the tickets matching the filter.
	CountTickets(ctx context.Context, filter TicketFilter) (int64, error)

	// NextTicketSequence reserves the next ticket number. No two calls return the same number.
	NextTicketSequence(ctx context.Context) (int64, error)
}

// TicketFilter selects tickets. Zero fields are ignored.
type TicketFilter struct {
	GuildID      string
	UserID       string
	Statuses     []entities.TicketStatus
	CreatedSince time.Time
	ClaimedOnly  bool
}

// Matches reports whether the ticket is selected by the filter.
func (f TicketFilter) Matches(t *entities.Ticket) bool {
	if f.GuildID != "" && t.GuildID != f.GuildID {
		return false
	}
	if f.UserID != "" && t.UserID != f.UserID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if t.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.CreatedSince.IsZero() && t.CreatedAt.Before(f.CreatedSince) {
		return false
	}
	if f.ClaimedOnly && t.ClaimedAt == nil {
		return false
	}
	return true
}

func (f TicketFilter) bson() bson.M {
	m := bson.M{}
	if f.GuildID != "" {
		m["guild_id"] = f.GuildID
	}
	if f.UserID != "" {
		m["user_id"] = f.UserID
	}
	if len(f.Statuses) > 0 {
		m["status"] = bson.M{"$in": f.Statuses}
	}
	if !f.CreatedSince.IsZero() {
		m["created_at"] = bson.M{"$gte": f.CreatedSince}
	}
	if f.ClaimedOnly {
		m["claimed_at"] = bson.M{"$ne": nil}
	}
	return m
}

type ticketDal struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client

	// database is the name of the Mongo database.
	database string
}

// NewTicketDal creates a new ticket data access layer.
func NewTicketDal(l *slog.Logger, client *mongo.Client, database string) TicketDal {
	l = l.With(slog.String(logging.KeyDal, ticketDalName))

	if client == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &ticketDal{
		l:        l,
		client:   client,
		database: database,
	}
}

func (d *ticketDal) collection(name string) *mongo.Collection {
	return d.client.Database(d.database).Collection(name)
}

func (d *ticketDal) timer(query, collection string) *prometheus.Timer {
	return monitoring.StartOperation(DriverMongo, ticketDalName, query, collection)
}

func (d *ticketDal) SaveTicket(ctx context.Context, ticket *entities.Ticket) error {
	t := d.timer("save_ticket", collectionTickets)
	defer t.ObserveDuration()

	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now().UTC()
	}

	// Save the ticket.
	opts := options.Update().SetUpsert(true)
	_, err := d.collection(collectionTickets).UpdateOne(ctx, bson.M{"ticket_id": ticket.TicketID}, bson.M{"$set": ticket}, opts)
	if err != nil {
		return fmt.Errorf("error updating ticket: %w", err)
	}
	return nil
}

func (d *ticketDal) GetTicket(ctx context.Context, guildID, ticketID string) (*entities.Ticket, error) {
	t := d.timer("get_ticket", collectionTickets)
	defer t.ObserveDuration()

	// Get the ticket.
	ticket := new(entities.Ticket)
	err := d.collection(collectionTickets).FindOne(ctx, bson.M{
		"guild_id":  guildID,
		"ticket_id": ticketID,
	}).Decode(ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting ticket: %w", err)
	}

	return ticket, nil
}

func (d *ticketDal) FindTickets(ctx context.Context, filter TicketFilter, limit int) ([]*entities.Ticket, error) {
	t := d.timer("find_tickets", collectionTickets)
	defer t.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := d.collection(collectionTickets).Find(ctx, filter.bson(), opts)
	if err != nil {
		return nil, fmt.Errorf("error finding tickets: %w", err)
	}

	tickets := make([]*entities.Ticket, 0)
	if err := cur.All(ctx, &tickets); err != nil {
		return nil, fmt.Errorf("error decoding tickets: %w", err)
	}
	return tickets, nil
}

func (d *ticketDal) CountTickets(ctx context.Context, filter TicketFilter) (int64, error) {
	t := d.timer("count_tickets", collectionTickets)
	defer t.ObserveDuration()

	n, err := d.collection(collectionTickets).CountDocuments(ctx, filter.bson())
	if err != nil {
		return 0, fmt.Errorf("error counting tickets: %w", err)
	}
	return n, nil
}

// NextTicketSequence seeds the counter with the number of stored tickets and then increments it.
// The seed keeps numbering in line with tickets saved before the counter existed.
func (d *ticketDal) NextTicketSequence(ctx context.Context) (int64, error) {
	count, err := d.CountTickets(ctx, TicketFilter{})
	if err != nil {
		return 0, err
	}

	t := d.timer("next_ticket_sequence", collectionCounters)
	defer t.ObserveDuration()

	counters := d.collection(collectionCounters)
	_, err = counters.UpdateOne(ctx,
		bson.M{"_id": ticketSequenceKey},
		bson.M{"$max": bson.M{"seq": count}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return 0, fmt.Errorf("error seeding ticket counter: %w", err)
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	res := counters.FindOneAndUpdate(ctx, bson.M{"_id": ticketSequenceKey}, bson.M{"$inc": bson.M{"seq": int64(1)}}, opts)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	if err := res.Decode(&doc); err != nil {
		return 0, fmt.Errorf("error incrementing ticket counter: %w", err)
	}
	return doc.Seq, nil
}
