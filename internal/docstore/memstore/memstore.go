// Package memstore provides an in-memory docstore.Store used by tests and the
// development mode of the server.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/example/campus-housing/internal/docstore"
)

// Store keeps documents in process memory guarded by a single RWMutex.
// CommitBatch validates every precondition before applying anything, so a
// failed batch leaves no partial state visible, matching the contract.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]docstore.Document
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{collections: make(map[string]map[string]docstore.Document)}
}

// Get retrieves a document by collection and id.
func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return cloneDocument(doc), nil
}

// GetMany retrieves the documents for the given ids, silently omitting ids
// that do not resolve. Output order follows input order.
func (s *Store) GetMany(ctx context.Context, collection string, ids []string) ([]docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]docstore.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := s.collections[collection][id]; ok {
			docs = append(docs, cloneDocument(doc))
		}
	}
	return docs, nil
}

// Query returns every document in the collection matching the predicate.
func (s *Store) Query(ctx context.Context, collection string, predicate func(docstore.Document) bool) ([]docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []docstore.Document
	for _, doc := range s.collections[collection] {
		cloned := cloneDocument(doc)
		if predicate == nil || predicate(cloned) {
			docs = append(docs, cloned)
		}
	}
	return docs, nil
}

// CommitBatch applies every write or none of them.
func (s *Store) CommitBatch(ctx context.Context, writes []docstore.Write) error {
	if len(writes) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate all preconditions before touching anything.
	for _, w := range writes {
		if w.Collection == "" || w.ID == "" {
			return fmt.Errorf("%w: write missing collection or id", docstore.ErrWriteFailed)
		}
		current, exists := s.collections[w.Collection][w.ID]
		if w.ExpectedRevision != nil {
			if !exists || current.Revision != *w.ExpectedRevision {
				return docstore.ErrConflict
			}
		}
		if w.Delete && !exists {
			return fmt.Errorf("%w: delete of missing document %s/%s", docstore.ErrWriteFailed, w.Collection, w.ID)
		}
	}

	for _, w := range writes {
		if w.Delete {
			delete(s.collections[w.Collection], w.ID)
			continue
		}
		coll, ok := s.collections[w.Collection]
		if !ok {
			coll = make(map[string]docstore.Document)
			s.collections[w.Collection] = coll
		}
		current, exists := coll[w.ID]
		next := docstore.Document{
			Collection: w.Collection,
			ID:         w.ID,
			Revision:   1,
		}
		if exists {
			next.Revision = current.Revision + 1
			next.Fields = docstore.MergeFields(current.Fields, w.Fields)
		} else {
			next.Fields = docstore.MergeFields(nil, w.Fields)
		}
		coll[w.ID] = cloneDocument(next)
	}
	return nil
}

// cloneDocument deep-copies a document through a JSON round trip so callers
// can never mutate stored state through a returned or submitted map. It also
// keeps the value shapes identical to what the SQLite backend yields.
func cloneDocument(doc docstore.Document) docstore.Document {
	cloned := docstore.Document{
		Collection: doc.Collection,
		ID:         doc.ID,
		Revision:   doc.Revision,
	}
	if doc.Fields == nil {
		return cloned
	}
	raw, err := json.Marshal(doc.Fields)
	if err != nil {
		// Field maps originate from json-compatible values only.
		panic(fmt.Sprintf("memstore: unencodable document %s/%s: %v", doc.Collection, doc.ID, err))
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		panic(fmt.Sprintf("memstore: undecodable document %s/%s: %v", doc.Collection, doc.ID, err))
	}
	cloned.Fields = fields
	return cloned
}
