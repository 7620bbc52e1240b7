// Package storage implements the room catalog and user directory on
// BadgerDB. Records are stored as JSON values under prefixed keys, with
// extra index keys for the unique lookups (room name, username, email).
package storage

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
)

// Open opens (or creates) the database at path. An empty path opens an
// in-memory instance, handy for tests.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	return badger.Open(opts)
}

// RunGC runs Badger value-log garbage collection until ctx is canceled.
func RunGC(ctx context.Context, db *badger.DB, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// Rerun while there is something to collect.
			for {
				if err := db.RunValueLogGC(0.5); err != nil {
					break
				}
			}
			log.Debug().Str("module", "storage").Msg("value log GC pass done")
		}
	}
}
