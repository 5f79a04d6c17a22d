package domain

import "context"

// Database defines lifecycle operations for the backing store. An
// implementation owns its own schema migration strategy, so the whole
// persistence layer stays swappable behind RecordStore/ReportStore.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}
