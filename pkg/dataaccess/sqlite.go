package dataaccess

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Jacobbrewer1/satla/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/satla/pkg/entities"
	"github.com/Jacobbrewer1/satla/pkg/logging"
)

const sqliteDalName = "sqlite_dal"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS guilds (
	id         TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tickets (
	ticket_id  TEXT PRIMARY KEY,
	guild_id   TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	status     TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	claimed_at INTEGER,
	data       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tickets_guild_user_status ON tickets(guild_id, user_id, status);
CREATE INDEX IF NOT EXISTS idx_tickets_guild_created ON tickets(guild_id, created_at);

CREATE TABLE IF NOT EXISTS counters (
	name TEXT PRIMARY KEY,
	seq  INTEGER NOT NULL
);
`

// SQLiteStore keeps guilds and tickets in an embedded SQLite database. Each record is stored
// as a JSON document alongside the columns it is queried by.
type SQLiteStore struct {
	l  *slog.Logger
	db *sql.DB
}

// NewSQLiteStore creates the schema if needed and returns a store backed by db.
func NewSQLiteStore(l *slog.Logger, db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &SQLiteStore{
		l:  l.With(slog.String(logging.KeyDal, sqliteDalName)),
		db: db,
	}, nil
}

func (s *SQLiteStore) SaveGuild(ctx context.Context, guild *entities.Guild) error {
	defer monitoring.StartOperation(DriverSQLite, sqliteDalName, "save_guild_config", collectionGuilds).ObserveDuration()

	touchGuild(guild, time.Now().UTC())

	data, err := json.Marshal(guild)
	if err != nil {
		return fmt.Errorf("error encoding guild: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO guilds (id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data=excluded.data, updated_at=excluded.updated_at`,
		guild.ID, string(data), guild.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("error updating guild: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetGuildByID(ctx context.Context, id string) (*entities.Guild, error) {
	defer monitoring.StartOperation(DriverSQLite, sqliteDalName, "get_guild_by_id", collectionGuilds).ObserveDuration()

	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM guilds WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting guild: %w", err)
	}

	guild := new(entities.Guild)
	if err := json.Unmarshal([]byte(data), guild); err != nil {
		return nil, fmt.Errorf("error decoding guild: %w", err)
	}
	return guild, nil
}

func (s *SQLiteStore) SaveTicket(ctx context.Context, ticket *entities.Ticket) error {
	defer monitoring.StartOperation(DriverSQLite, sqliteDalName, "save_ticket", collectionTickets).ObserveDuration()

	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("error encoding ticket: %w", err)
	}

	var claimedAt any
	if ticket.ClaimedAt != nil {
		claimedAt = ticket.ClaimedAt.UnixNano()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tickets (ticket_id, guild_id, user_id, status, created_at, claimed_at, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(ticket_id) DO UPDATE SET
		   guild_id=excluded.guild_id,
		   user_id=excluded.user_id,
		   status=excluded.status,
		   created_at=excluded.created_at,
		   claimed_at=excluded.claimed_at,
		   data=excluded.data`,
		ticket.TicketID, ticket.GuildID, ticket.UserID, string(ticket.Status), ticket.CreatedAt.UnixNano(), claimedAt, string(data),
	)
	if err != nil {
		return fmt.Errorf("error updating ticket: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTicket(ctx context.Context, guildID, ticketID string) (*entities.Ticket, error) {
	defer monitoring.StartOperation(DriverSQLite, sqliteDalName, "get_ticket", collectionTickets).ObserveDuration()

	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM tickets WHERE guild_id = ? AND ticket_id = ?`,
		guildID, ticketID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting ticket: %w", err)
	}
	return decodeTicket(data)
}

func (s *SQLiteStore) FindTickets(ctx context.Context, filter TicketFilter, limit int) ([]*entities.Ticket, error) {
	defer monitoring.StartOperation(DriverSQLite, sqliteDalName, "find_tickets", collectionTickets).ObserveDuration()

	where, args := filter.sql()
	query := `SELECT data FROM tickets` + where + ` ORDER BY created_at DESC, ticket_id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error finding tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]*entities.Ticket, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("error scanning ticket: %w", err)
		}
		t, err := decodeTicket(data)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}
	return tickets, nil
}

func (s *SQLiteStore) CountTickets(ctx context.Context, filter TicketFilter) (int64, error) {
	defer monitoring.StartOperation(DriverSQLite, sqliteDalName, "count_tickets", collectionTickets).ObserveDuration()

	where, args := filter.sql()

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting tickets: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) NextTicketSequence(ctx context.Context) (seq int64, err error) {
	defer monitoring.StartOperation(DriverSQLite, sqliteDalName, "next_ticket_sequence", collectionCounters).ObserveDuration()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.l.Error("error rolling back ticket sequence", slog.String(logging.KeyError, rbErr.Error()))
			}
		}
	}()

	var count int64
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting tickets: %w", err)
	}

	var last int64
	err = tx.QueryRowContext(ctx, `SELECT seq FROM counters WHERE name = ?`, ticketSequenceKey).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("error reading ticket counter: %w", err)
	}

	seq = max(count, last) + 1
	_, err = tx.ExecContext(ctx,
		`INSERT INTO counters (name, seq) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET seq=excluded.seq`,
		ticketSequenceKey, seq,
	)
	if err != nil {
		return 0, fmt.Errorf("error updating ticket counter: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing ticket counter: %w", err)
	}
	return seq, nil
}

// Ping checks that the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (f TicketFilter) sql() (string, []any) {
	clauses := make([]string, 0, 5)
	args := make([]any, 0, 5)

	if f.GuildID != "" {
		clauses = append(clauses, "guild_id = ?")
		args = append(args, f.GuildID)
	}
	if f.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, f.UserID)
	}
	if len(f.Statuses) > 0 {
		marks := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			marks[i] = "?"
			args = append(args, string(st))
		}
		clauses = append(clauses, "status IN ("+strings.Join(marks, ", ")+")")
	}
	if !f.CreatedSince.IsZero() {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, f.CreatedSince.UnixNano())
	}
	if f.ClaimedOnly {
		clauses = append(clauses, "claimed_at IS NOT NULL")
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func decodeTicket(data string) (*entities.Ticket, error) {
	t := new(entities.Ticket)
	if err := json.Unmarshal([]byte(data), t); err != nil {
		return nil, fmt.Errorf("error decoding ticket: %w", err)
	}
	return t, nil
}
