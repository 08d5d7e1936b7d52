// Package sqlitestore implements docstore.Store on SQLite. Documents live in
// a single table keyed by (collection, id) with a JSON body and a revision
// counter; CommitBatch runs inside one transaction, which supplies the
// all-or-nothing multi-record commit the housing protocol requires.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/campus-housing/internal/docstore"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	revision   INTEGER NOT NULL,
	body       TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents (collection);
`

// Store is a SQLite-backed document store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if necessary) the database at the given DSN and
// ensures the schema exists.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open %q: %w", dsn, err)
	}
	// The driver is not safe for concurrent writers on one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitestore: apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Get retrieves a single document.
func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT revision, body FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
	return scanDocument(row, collection, id)
}

// GetMany retrieves the documents for the given ids in input order, silently
// omitting ids that do not resolve.
func (s *Store) GetMany(ctx context.Context, collection string, ids []string) ([]docstore.Document, error) {
	docs := make([]docstore.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.Get(ctx, collection, id)
		if errors.Is(err, docstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Query returns every document in the collection matching the predicate.
func (s *Store) Query(ctx context.Context, collection string, predicate func(docstore.Document) bool) ([]docstore.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, revision, body FROM documents WHERE collection = ? ORDER BY id`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: query %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var (
			id       string
			revision int64
			body     string
		)
		if err := rows.Scan(&id, &revision, &body); err != nil {
			return nil, fmt.Errorf("sqlitestore: scan %s: %w", collection, err)
		}
		doc, err := decodeDocument(collection, id, revision, body)
		if err != nil {
			return nil, err
		}
		if predicate == nil || predicate(doc) {
			docs = append(docs, doc)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitestore: iterate %s: %w", collection, err)
	}
	return docs, nil
}

// CommitBatch applies every write inside one transaction. A failed revision
// precondition rolls the whole batch back with docstore.ErrConflict.
func (s *Store) CommitBatch(ctx context.Context, writes []docstore.Write) error {
	if len(writes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", docstore.ErrWriteFailed, err)
	}

	if err := s.applyWrites(ctx, tx, writes); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback error: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", docstore.ErrWriteFailed, err)
	}
	return nil
}

func (s *Store) applyWrites(ctx context.Context, tx *sql.Tx, writes []docstore.Write) error {
	stamp := s.now().UTC().Format(time.RFC3339Nano)

	for _, w := range writes {
		if w.Collection == "" || w.ID == "" {
			return fmt.Errorf("%w: write missing collection or id", docstore.ErrWriteFailed)
		}

		row := tx.QueryRowContext(ctx,
			`SELECT revision, body FROM documents WHERE collection = ? AND id = ?`,
			w.Collection, w.ID,
		)
		current, err := scanDocument(row, w.Collection, w.ID)
		exists := true
		if errors.Is(err, docstore.ErrNotFound) {
			exists = false
		} else if err != nil {
			return err
		}

		if w.ExpectedRevision != nil {
			if !exists || current.Revision != *w.ExpectedRevision {
				return docstore.ErrConflict
			}
		}

		if w.Delete {
			if !exists {
				return fmt.Errorf("%w: delete of missing document %s/%s", docstore.ErrWriteFailed, w.Collection, w.ID)
			}
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM documents WHERE collection = ? AND id = ?`,
				w.Collection, w.ID,
			); err != nil {
				return fmt.Errorf("%w: delete %s/%s: %v", docstore.ErrWriteFailed, w.Collection, w.ID, err)
			}
			continue
		}

		merged := docstore.MergeFields(current.Fields, w.Fields)
		body, err := json.Marshal(merged)
		if err != nil {
			return fmt.Errorf("%w: encode %s/%s: %v", docstore.ErrWriteFailed, w.Collection, w.ID, err)
		}

		if exists {
			_, err = tx.ExecContext(ctx,
				`UPDATE documents SET revision = revision + 1, body = ?, updated_at = ? WHERE collection = ? AND id = ?`,
				string(body), stamp, w.Collection, w.ID,
			)
		} else {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO documents (collection, id, revision, body, updated_at) VALUES (?, ?, 1, ?, ?)`,
				w.Collection, w.ID, string(body), stamp,
			)
		}
		if err != nil {
			return fmt.Errorf("%w: write %s/%s: %v", docstore.ErrWriteFailed, w.Collection, w.ID, err)
		}
	}
	return nil
}

func scanDocument(row *sql.Row, collection, id string) (docstore.Document, error) {
	var (
		revision int64
		body     string
	)
	if err := row.Scan(&revision, &body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docstore.Document{}, docstore.ErrNotFound
		}
		return docstore.Document{}, fmt.Errorf("sqlitestore: scan %s/%s: %w", collection, id, err)
	}
	return decodeDocument(collection, id, revision, body)
}

func decodeDocument(collection, id string, revision int64, body string) (docstore.Document, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return docstore.Document{}, fmt.Errorf("sqlitestore: decode %s/%s: %w", collection, id, err)
	}
	return docstore.Document{
		Collection: collection,
		ID:         id,
		Revision:   revision,
		Fields:     fields,
	}, nil
}
