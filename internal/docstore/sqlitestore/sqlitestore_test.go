package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/campus-housing/internal/docstore"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "housing.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func TestOpenAppliesSchema(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Ping(context.Background()))

	docs, err := store.Query(context.Background(), "users", nil)
	require.NoError(t, err)
	require.Empty(t, docs)
}

func TestCommitBatchPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "housing.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.CommitBatch(ctx, []docstore.Write{{
		Collection: "dorms",
		ID:         "dorm-001",
		Fields:     map[string]any{"name": "Maple Hall"},
	}}))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	doc, err := reopened.Get(ctx, "dorms", "dorm-001")
	require.NoError(t, err)
	require.Equal(t, int64(1), doc.Revision)
	require.Equal(t, "Maple Hall", doc.Fields["name"])
}

func TestCommitBatchMergeAndRevisions(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CommitBatch(ctx, []docstore.Write{{
		Collection: "rooms",
		ID:         "dorm-001/101",
		Fields:     map[string]any{"floor": float64(1), "type": "double", "price": float64(4200)},
	}}))
	require.NoError(t, store.CommitBatch(ctx, []docstore.Write{{
		Collection: "rooms",
		ID:         "dorm-001/101",
		Fields:     map[string]any{"price": float64(4500), "occupants": nil},
	}}))

	doc, err := store.Get(ctx, "rooms", "dorm-001/101")
	require.NoError(t, err)
	require.Equal(t, int64(2), doc.Revision)
	require.Equal(t, float64(4500), doc.Fields["price"])
	require.Equal(t, "double", doc.Fields["type"])

	occupants, present := doc.Fields["occupants"]
	require.True(t, present, "a nil value keeps the key with an explicit null")
	require.Nil(t, occupants)
}

func TestCommitBatchRollsBackOnConflict(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CommitBatch(ctx, []docstore.Write{{
		Collection: "rooms",
		ID:         "dorm-001/101",
		Fields:     map[string]any{"occupancyStatus": "available"},
	}}))

	err := store.CommitBatch(ctx, []docstore.Write{
		{
			Collection: "users",
			ID:         "alice",
			Fields:     map[string]any{"selectedRoom": map[string]any{"dormId": "dorm-001", "roomId": "101"}},
		},
		{
			Collection:       "rooms",
			ID:               "dorm-001/101",
			Fields:           map[string]any{"occupancyStatus": "unavailable"},
			ExpectedRevision: docstore.Rev(9),
		},
	})
	require.ErrorIs(t, err, docstore.ErrConflict)

	_, err = store.Get(ctx, "users", "alice")
	require.ErrorIs(t, err, docstore.ErrNotFound, "the transaction rolls back every write in the batch")

	doc, err := store.Get(ctx, "rooms", "dorm-001/101")
	require.NoError(t, err)
	require.Equal(t, int64(1), doc.Revision)
	require.Equal(t, "available", doc.Fields["occupancyStatus"])
}

func TestCommitBatchMatchingRevisionApplies(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CommitBatch(ctx, []docstore.Write{{
		Collection: "rooms",
		ID:         "dorm-001/101",
		Fields:     map[string]any{"occupancyStatus": "available"},
	}}))
	require.NoError(t, store.CommitBatch(ctx, []docstore.Write{{
		Collection:       "rooms",
		ID:               "dorm-001/101",
		Fields:           map[string]any{"occupancyStatus": "unavailable"},
		ExpectedRevision: docstore.Rev(1),
	}}))

	doc, err := store.Get(ctx, "rooms", "dorm-001/101")
	require.NoError(t, err)
	require.Equal(t, int64(2), doc.Revision)
	require.Equal(t, "unavailable", doc.Fields["occupancyStatus"])
}

func TestCommitBatchDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CommitBatch(ctx, []docstore.Write{{
		Collection: "sessions",
		ID:         "token-1",
		Fields:     map[string]any{"userId": "alice"},
	}}))
	require.NoError(t, store.CommitBatch(ctx, []docstore.Write{{
		Collection: "sessions",
		ID:         "token-1",
		Delete:     true,
	}}))

	_, err := store.Get(ctx, "sessions", "token-1")
	require.ErrorIs(t, err, docstore.ErrNotFound)

	err = store.CommitBatch(ctx, []docstore.Write{{
		Collection: "sessions",
		ID:         "token-1",
		Delete:     true,
	}})
	require.ErrorIs(t, err, docstore.ErrWriteFailed)
}

func TestGetManyDropsMissingAndKeepsOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CommitBatch(ctx, []docstore.Write{
		{Collection: "users", ID: "alice", Fields: map[string]any{"email": "alice@example.edu"}},
		{Collection: "users", ID: "bob", Fields: map[string]any{"email": "bob@example.edu"}},
	}))

	docs, err := store.GetMany(ctx, "users", []string{"bob", "ghost", "alice"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "bob", docs[0].ID)
	require.Equal(t, "alice", docs[1].ID)
}

func TestQueryAppliesPredicate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CommitBatch(ctx, []docstore.Write{
		{Collection: "rooms", ID: "dorm-001/101", Fields: map[string]any{"floor": float64(1)}},
		{Collection: "rooms", ID: "dorm-001/201", Fields: map[string]any{"floor": float64(2)}},
		{Collection: "rooms", ID: "dorm-002/101", Fields: map[string]any{"floor": float64(1)}},
	}))

	ground, err := store.Query(ctx, "rooms", func(doc docstore.Document) bool {
		return doc.Fields["floor"] == float64(1)
	})
	require.NoError(t, err)
	require.Len(t, ground, 2)

	all, err := store.Query(ctx, "rooms", nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
}
