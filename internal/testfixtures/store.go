package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/campus-housing/internal/docstore"
	"github.com/example/campus-housing/internal/docstore/memstore"
	"github.com/example/campus-housing/internal/docstore/sqlitestore"
)

// Seeder is the subset of docstore.Store the seeding helpers need.
type Seeder interface {
	CommitBatch(ctx context.Context, writes []docstore.Write) error
}

// Seed commits the given fixture writes into the store, failing the test on
// error.
func Seed(tb testing.TB, store Seeder, writes ...docstore.Write) {
	tb.Helper()
	if len(writes) == 0 {
		return
	}
	if err := store.CommitBatch(context.Background(), writes); err != nil {
		tb.Fatalf("failed to seed store: %v", err)
	}
}

// NewMemStore returns an in-memory document store seeded with the given
// writes.
func NewMemStore(tb testing.TB, writes ...docstore.Write) *memstore.Store {
	tb.Helper()
	store := memstore.New()
	Seed(tb, store, writes...)
	return store
}

// NewSQLiteStore returns a document store backed by a temporary SQLite file,
// seeded with the given writes. Cleanup is registered with the provided
// testing.TB.
func NewSQLiteStore(tb testing.TB, writes ...docstore.Write) *sqlitestore.Store {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "housing.db")
	store, err := sqlitestore.Open(path)
	if err != nil {
		tb.Fatalf("failed to open store: %v", err)
	}
	tb.Cleanup(func() {
		_ = store.Close()
	})

	Seed(tb, store, writes...)
	return store
}
