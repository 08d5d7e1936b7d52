package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/campus-housing/internal/docstore"
)

func TestCommitBatchCreatesWithRevisionOne(t *testing.T) {
	store := New()
	ctx := context.Background()

	err := store.CommitBatch(ctx, []docstore.Write{{
		Collection: "users",
		ID:         "alice",
		Fields:     map[string]any{"email": "alice@example.edu", "classYear": "junior"},
	}})
	require.NoError(t, err)

	doc, err := store.Get(ctx, "users", "alice")
	require.NoError(t, err)
	require.Equal(t, int64(1), doc.Revision)
	require.Equal(t, "alice@example.edu", doc.Fields["email"])
	require.Equal(t, "junior", doc.Fields["classYear"])
}

func TestCommitBatchMergesTopLevelFields(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.CommitBatch(ctx, []docstore.Write{{
		Collection: "rooms",
		ID:         "dorm-001/101",
		Fields:     map[string]any{"floor": float64(1), "type": "double", "price": float64(4200)},
	}}))
	require.NoError(t, store.CommitBatch(ctx, []docstore.Write{{
		Collection: "rooms",
		ID:         "dorm-001/101",
		Fields:     map[string]any{"price": float64(4500)},
	}}))

	doc, err := store.Get(ctx, "rooms", "dorm-001/101")
	require.NoError(t, err)
	require.Equal(t, int64(2), doc.Revision)
	require.Equal(t, float64(4500), doc.Fields["price"])
	require.Equal(t, "double", doc.Fields["type"], "untouched keys survive a merge")
}

func TestCommitBatchNilValueStoresExplicitNull(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.CommitBatch(ctx, []docstore.Write{{
		Collection: "users",
		ID:         "alice",
		Fields:     map[string]any{"selectedRoom": map[string]any{"dormId": "dorm-001", "roomId": "101"}},
	}}))
	require.NoError(t, store.CommitBatch(ctx, []docstore.Write{{
		Collection: "users",
		ID:         "alice",
		Fields:     map[string]any{"selectedRoom": nil},
	}}))

	doc, err := store.Get(ctx, "users", "alice")
	require.NoError(t, err)
	value, present := doc.Fields["selectedRoom"]
	require.True(t, present, "a nil value keeps the key with an explicit null")
	require.Nil(t, value)
}

func TestCommitBatchExpectedRevision(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.CommitBatch(ctx, []docstore.Write{{
		Collection: "rooms",
		ID:         "dorm-001/101",
		Fields:     map[string]any{"occupancyStatus": "available"},
	}}))

	err := store.CommitBatch(ctx, []docstore.Write{{
		Collection:       "rooms",
		ID:               "dorm-001/101",
		Fields:           map[string]any{"occupancyStatus": "unavailable"},
		ExpectedRevision: docstore.Rev(1),
	}})
	require.NoError(t, err)

	err = store.CommitBatch(ctx, []docstore.Write{{
		Collection:       "rooms",
		ID:               "dorm-001/101",
		Fields:           map[string]any{"occupancyStatus": "available"},
		ExpectedRevision: docstore.Rev(1),
	}})
	require.ErrorIs(t, err, docstore.ErrConflict)

	err = store.CommitBatch(ctx, []docstore.Write{{
		Collection:       "rooms",
		ID:               "dorm-001/999",
		Fields:           map[string]any{"occupancyStatus": "available"},
		ExpectedRevision: docstore.Rev(1),
	}})
	require.ErrorIs(t, err, docstore.ErrConflict, "a revision guard on a missing document conflicts")
}

func TestCommitBatchIsAtomic(t *testing.T) {
	store := New()
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
			ExpectedRevision: docstore.Rev(7),
		},
	})
	require.ErrorIs(t, err, docstore.ErrConflict)

	_, err = store.Get(ctx, "users", "alice")
	require.ErrorIs(t, err, docstore.ErrNotFound, "a failed batch applies none of its writes")

	doc, err := store.Get(ctx, "rooms", "dorm-001/101")
	require.NoError(t, err)
	require.Equal(t, "available", doc.Fields["occupancyStatus"])
	require.Equal(t, int64(1), doc.Revision)
}

func TestCommitBatchDelete(t *testing.T) {
	store := New()
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
	require.ErrorIs(t, err, docstore.ErrWriteFailed, "deleting a missing document fails the batch")
}

func TestCommitBatchRejectsIncompleteWrite(t *testing.T) {
	store := New()
	ctx := context.Background()

	err := store.CommitBatch(ctx, []docstore.Write{{
		Collection: "",
		ID:         "alice",
		Fields:     map[string]any{"email": "alice@example.edu"},
	}})
	require.ErrorIs(t, err, docstore.ErrWriteFailed)

	err = store.CommitBatch(ctx, []docstore.Write{{
		Collection: "users",
		ID:         "",
		Fields:     map[string]any{"email": "alice@example.edu"},
	}})
	require.ErrorIs(t, err, docstore.ErrWriteFailed)
}

func TestGetManyDropsMissingAndKeepsOrder(t *testing.T) {
	store := New()
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
	store := New()
	ctx := context.Background()

	require.NoError(t, store.CommitBatch(ctx, []docstore.Write{
		{Collection: "rooms", ID: "dorm-001/101", Fields: map[string]any{"floor": float64(1)}},
		{Collection: "rooms", ID: "dorm-001/201", Fields: map[string]any{"floor": float64(2)}},
		{Collection: "rooms", ID: "dorm-001/202", Fields: map[string]any{"floor": float64(2)}},
	}))

	docs, err := store.Query(ctx, "rooms", func(doc docstore.Document) bool {
		return doc.Fields["floor"] == float64(2)
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	all, err := store.Query(ctx, "rooms", nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestGetReturnsIsolatedCopies(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.CommitBatch(ctx, []docstore.Write{{
		Collection: "users",
		ID:         "alice",
		Fields:     map[string]any{"connections": []any{"bob"}},
	}}))

	doc, err := store.Get(ctx, "users", "alice")
	require.NoError(t, err)
	doc.Fields["connections"] = []any{"mallory"}
	doc.Fields["email"] = "mallory@example.edu"

	again, err := store.Get(ctx, "users", "alice")
	require.NoError(t, err)
	require.Equal(t, []any{"bob"}, again.Fields["connections"])
	require.NotContains(t, again.Fields, "email", "callers cannot mutate stored state through returned maps")
}
