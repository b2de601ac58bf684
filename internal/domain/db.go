package domain

import "context"

// Database is the lifecycle of a roster store: bring the schema up to
// date on boot and release the handle on shutdown.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}
