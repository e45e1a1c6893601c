package dataaccess

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// DefaultMongoDatabase is the Mongo database used when none is configured.
const DefaultMongoDatabase = "satla"

const (
	collectionGuilds   = "guilds"
	collectionTickets  = "tickets"
	collectionCounters = "counters"

	// ticketSequenceKey is the counter document holding the last issued ticket number.
	ticketSequenceKey = "ticket_id"
)

// Supported storage drivers.
const (
	DriverMongo  = "mongodb"
	DriverSQLite = "sqlite"
)
