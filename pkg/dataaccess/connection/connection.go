package connection

import "context"

// Database is an open database connection that can be health checked.
type Database interface {
	Ping(ctx context.Context) error
	Disconnect(ctx context.Context) error
}
