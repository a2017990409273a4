package sqlitestore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/dyluth/coursecat/pkg/catalog"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store keeps YearDocuments in a SQLite file, one JSON body per row.
// Rows are listed in insertion order.
type Store struct {
	db     *sql.DB
	schema catalog.Schema
	now    func() time.Time
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the table schema automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - 5-second busy timeout for lock contention
func Open(path string, schema catalog.Schema) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, schema: schema, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ListYearDocuments returns every document, oldest first.
func (s *Store) ListYearDocuments(ctx context.Context) ([]*catalog.YearDocument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, body, created_at_ms, updated_at_ms FROM year_documents ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []*catalog.YearDocument{}
	for rows.Next() {
		var (
			id, body             string
			createdMs, updatedMs int64
		)
		if err := rows.Scan(&id, &body, &createdMs, &updatedMs); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		d, err := s.schema.UnmarshalDocument([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", id, err)
		}
		d.ID = id
		d.CreatedAt = time.UnixMilli(createdMs).UTC()
		d.UpdatedAt = time.UnixMilli(updatedMs).UTC()
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

// PutYearDocument inserts or replaces a document. A replaced document keeps
// its creation time and list position.
func (s *Store) PutYearDocument(ctx context.Context, d *catalog.YearDocument) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	d.Touch(s.now())

	body, err := s.schema.MarshalDocument(d)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	var createdMs int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO year_documents (id, body, created_at_ms, updated_at_ms)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at_ms = excluded.updated_at_ms
		RETURNING created_at_ms`,
		d.ID, string(body), d.CreatedAt.UnixMilli(), d.UpdatedAt.UnixMilli(),
	).Scan(&createdMs)
	if err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	d.CreatedAt = time.UnixMilli(createdMs).UTC()

	return nil
}

// DeleteYearDocument removes a document. Deleting a missing document is not an error.
func (s *Store) DeleteYearDocument(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM year_documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
