// Package docstore defines the minimal document-database contract the housing
// core depends on. The only capability the protocol requires from a backend is
// CommitBatch: an all-or-nothing commit across an arbitrary set of document
// updates prepared before the call.
package docstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the requested document does not exist.
	ErrNotFound = errors.New("docstore: not found")
	// ErrConflict is returned when a batch carried a revision precondition
	// that no longer matches the stored document. Nothing is applied.
	ErrConflict = errors.New("docstore: revision conflict")
	// ErrWriteFailed is returned when a batch could not be committed for a
	// reason other than a revision conflict.
	ErrWriteFailed = errors.New("docstore: write failed")
)

// Document is a stored record: an identifier inside a collection, a revision
// counter incremented on every applied write, and a flat field map.
type Document struct {
	Collection string
	ID         string
	Revision   int64
	Fields     map[string]any
}

// Write describes one document mutation inside a batch. Fields merge into the
// existing body at the top level; a document that does not exist yet is
// created, unless ExpectedRevision demands one. Delete removes the document
// and ignores Fields.
type Write struct {
	Collection string
	ID         string
	Fields     map[string]any
	// ExpectedRevision, when non-nil, makes the whole batch fail with
	// ErrConflict unless the stored revision matches at commit time.
	ExpectedRevision *int64
	Delete           bool
}

// Store is the abstract document store consumed by the application layer.
//
// GetMany silently omits ids that do not resolve; callers that obtained the
// id list from persisted state should treat a short result as a
// data-integrity signal, not an error.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	GetMany(ctx context.Context, collection string, ids []string) ([]Document, error)
	Query(ctx context.Context, collection string, predicate func(Document) bool) ([]Document, error)
	CommitBatch(ctx context.Context, writes []Write) error
}

// Rev is a convenience for building a revision precondition in place.
func Rev(revision int64) *int64 {
	return &revision
}

// MergeFields applies a top-level field merge onto base, returning the merged
// map. A nil value for a key stores an explicit null rather than deleting the
// key; both backends share this behavior so the application layer can rely on
// it.
func MergeFields(base, patch map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}
