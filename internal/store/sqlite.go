// Package store persists anchor registries in SQLite so that renderers and
// editors can resolve cross-references without rebuilding the registry.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/roboco-io/isoanchor/internal/xref"
)

// ErrNotFound is returned when a document or anchor is not in the store.
var ErrNotFound = errors.New("not found")

// Document describes one stored registry.
type Document struct {
	Key       string    `json:"key" yaml:"key"`
	RunID     string    `json:"run_id" yaml:"run_id"`
	Digest    string    `json:"digest" yaml:"digest"`
	Anchors   int       `json:"anchors" yaml:"anchors"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Store is a SQLite backed anchor store.
type Store struct {
	db   *sql.DB
	path string

	lookupStmt *sql.Stmt
	listStmt   *sql.Stmt
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports single writer

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		doc_key TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		digest TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS anchors (
		doc_key TEXT NOT NULL REFERENCES documents(doc_key) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		id TEXT NOT NULL,
		label TEXT NOT NULL,
		xref TEXT NOT NULL,
		level INTEGER NOT NULL,
		type TEXT NOT NULL,
		container TEXT NOT NULL,
		unnumbered INTEGER NOT NULL,
		PRIMARY KEY (doc_key, id)
	);

	CREATE INDEX IF NOT EXISTS idx_anchors_seq ON anchors(doc_key, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) prepareStatements() error {
	var err error

	s.lookupStmt, err = s.db.Prepare(`
		SELECT id, label, xref, level, type, container, unnumbered
		FROM anchors
		WHERE doc_key = ? AND id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare lookup statement: %w", err)
	}

	s.listStmt, err = s.db.Prepare(`
		SELECT id, label, xref, level, type, container, unnumbered
		FROM anchors
		WHERE doc_key = ?
		ORDER BY seq
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}
	return nil
}

// SaveRegistry replaces the stored registry of the document key.
func (s *Store) SaveRegistry(ctx context.Context, doc Document, reg *xref.Registry) error {
	if doc.Key == "" {
		return fmt.Errorf("document key cannot be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE doc_key = ?`, doc.Key); err != nil {
		return fmt.Errorf("failed to clear document: %w", err)
	}
	updated := doc.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (doc_key, run_id, digest, updated_at) VALUES (?, ?, ?, ?)`,
		doc.Key, doc.RunID, doc.Digest, updated.Unix(),
	); err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	insert, err := tx.PrepareContext(ctx, `
		INSERT INTO anchors (doc_key, seq, id, label, xref, level, type, container, unnumbered)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer insert.Close()

	for i, a := range reg.Entries() {
		if _, err := insert.ExecContext(ctx,
			doc.Key, i, a.ID, a.Label, a.XRef, a.Level, string(a.Type), a.Container, a.Unnumbered,
		); err != nil {
			return fmt.Errorf("failed to insert anchor %q: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Lookup returns one anchor of a stored document.
func (s *Store) Lookup(ctx context.Context, key, id string) (xref.Anchor, error) {
	a, err := scanAnchor(s.lookupStmt.QueryRowContext(ctx, key, id))
	if errors.Is(err, sql.ErrNoRows) {
		return xref.Anchor{}, fmt.Errorf("anchor %q in %q: %w", id, key, ErrNotFound)
	}
	if err != nil {
		return xref.Anchor{}, fmt.Errorf("failed to look up anchor: %w", err)
	}
	return a, nil
}

// LoadRegistry rebuilds the registry of a stored document.
func (s *Store) LoadRegistry(ctx context.Context, key string) (*xref.Registry, error) {
	rows, err := s.listStmt.QueryContext(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to list anchors: %w", err)
	}
	defer rows.Close()

	reg := xref.NewRegistry()
	for rows.Next() {
		a, err := scanAnchor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan anchor: %w", err)
		}
		if err := reg.Add(a); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list anchors: %w", err)
	}
	if reg.Len() == 0 {
		if _, err := s.Document(ctx, key); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Document returns the description of a stored document.
func (s *Store) Document(ctx context.Context, key string) (Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT d.doc_key, d.run_id, d.digest, d.updated_at, COUNT(a.id)
		FROM documents d LEFT JOIN anchors a ON a.doc_key = d.doc_key
		WHERE d.doc_key = ?
		GROUP BY d.doc_key
	`, key)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, fmt.Errorf("document %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to read document: %w", err)
	}
	return doc, nil
}

// Documents lists the stored documents ordered by key.
func (s *Store) Documents(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.doc_key, d.run_id, d.digest, d.updated_at, COUNT(a.id)
		FROM documents d LEFT JOIN anchors a ON a.doc_key = d.doc_key
		GROUP BY d.doc_key
		ORDER BY d.doc_key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	if s.lookupStmt != nil {
		s.lookupStmt.Close()
	}
	if s.listStmt != nil {
		s.listStmt.Close()
	}
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnchor(row scanner) (xref.Anchor, error) {
	var (
		a   xref.Anchor
		typ string
	)
	if err := row.Scan(&a.ID, &a.Label, &a.XRef, &a.Level, &typ, &a.Container, &a.Unnumbered); err != nil {
		return xref.Anchor{}, err
	}
	a.Type = xref.Type(typ)
	return a, nil
}

func scanDocument(row scanner) (Document, error) {
	var (
		doc     Document
		updated int64
	)
	if err := row.Scan(&doc.Key, &doc.RunID, &doc.Digest, &updated, &doc.Anchors); err != nil {
		return Document{}, err
	}
	doc.UpdatedAt = time.Unix(updated, 0)
	return doc, nil
}
