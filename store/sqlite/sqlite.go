/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements all persistence interfaces (DocumentStore, SandboxStore,
  SnapshotStore) using SQLite. In production, the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  engine.DocumentStore: Base planning documents
  engine.SandboxStore:  What-if sandboxes
  engine.SnapshotStore: Projection headline snapshots

STORAGE MODEL:
  Documents and sandboxes are stored as whole JSON bodies (the factory
  package's schema), last-write-wins. There is no per-stream row model:
  a planning document is small, edited as a unit, and projected as a
  unit, so a body column keeps reads and writes single-row.

KEY TABLES:
  documents:            id, name, JSON body
  sandboxes:            id, owning document id, JSON body
  projection_snapshots: one row per document, latest projection summary

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/cashflow.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine/persist.go: Interface definitions
  - engine/store/memory.go: In-memory implementation for testing
  - factory/document.go: The JSON bodies stored here
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ledgerline/cashflow-engine/engine"
	"github.com/ledgerline/cashflow-engine/factory"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db      *sql.DB
	mu      sync.RWMutex
	factory *factory.DocumentFactory
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, factory: factory.NewDocumentFactory()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Planning documents (whole-body, last-write-wins)
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		body_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- What-if sandboxes, each forked from a document
	CREATE TABLE IF NOT EXISTS sandboxes (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		body_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sandboxes_document
		ON sandboxes(document_id);

	-- Latest projection summary per document, written by the scheduler
	CREATE TABLE IF NOT EXISTS projection_snapshots (
		document_id TEXT PRIMARY KEY,
		computed_at TEXT NOT NULL,
		range_start TEXT NOT NULL,
		range_end TEXT NOT NULL,
		end_balance TEXT NOT NULL,
		lowest_balance TEXT NOT NULL,
		lowest_balance_date TEXT NOT NULL,
		first_negative_date TEXT,
		negative_day_count INTEGER NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DOCUMENT STORE
// =============================================================================

// SaveDocument stores the document body, replacing any previous version.
func (s *Store) SaveDocument(ctx context.Context, id, name string, doc engine.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := s.factory.EncodeDocument(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO documents (id, name, body_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			body_json = excluded.body_json,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, id, name, string(body), now, now); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// LoadDocument returns the stored document, repaired through the lenient
// parse on the way out.
func (s *Store) LoadDocument(ctx context.Context, id string) (engine.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body_json FROM documents WHERE id = ?`, id).Scan(&body)
	if err == sql.ErrNoRows {
		return engine.Document{}, engine.ErrDocumentNotFound
	}
	if err != nil {
		return engine.Document{}, fmt.Errorf("failed to load document: %w", err)
	}

	doc, _, err := s.factory.ParseDocument(body)
	if err != nil {
		return engine.Document{}, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	return doc, nil
}

// ListDocuments returns id and name for every stored document.
func (s *Store) ListDocuments(ctx context.Context) ([]engine.DocumentInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM documents ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var out []engine.DocumentInfo
	for rows.Next() {
		var info engine.DocumentInfo
		if err := rows.Scan(&info.ID, &info.Name); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteDocument removes the document and its sandboxes.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return engine.ErrDocumentNotFound
	}

	// Orphaned sandboxes and snapshots go with the document.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sandboxes WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete document sandboxes: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM projection_snapshots WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete document snapshots: %w", err)
	}
	return nil
}

// =============================================================================
// SANDBOX STORE
// =============================================================================

// SaveSandbox stores the sandbox body, replacing any previous version.
func (s *Store) SaveSandbox(ctx context.Context, id, documentID string, sb engine.Sandbox) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := s.factory.EncodeSandbox(sb)
	if err != nil {
		return fmt.Errorf("failed to encode sandbox: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO sandboxes (id, document_id, body_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			body_json = excluded.body_json,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, id, documentID, string(body), now, now); err != nil {
		return fmt.Errorf("failed to save sandbox: %w", err)
	}
	return nil
}

// LoadSandbox returns the stored sandbox and its owning document id.
func (s *Store) LoadSandbox(ctx context.Context, id string) (engine.Sandbox, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var body, documentID string
	err := s.db.QueryRowContext(ctx,
		`SELECT body_json, document_id FROM sandboxes WHERE id = ?`, id).Scan(&body, &documentID)
	if err == sql.ErrNoRows {
		return engine.Sandbox{}, "", engine.ErrSandboxNotFound
	}
	if err != nil {
		return engine.Sandbox{}, "", fmt.Errorf("failed to load sandbox: %w", err)
	}

	sb, _, err := s.factory.ParseSandbox(body)
	if err != nil {
		return engine.Sandbox{}, "", fmt.Errorf("failed to decode sandbox %s: %w", id, err)
	}
	return sb, documentID, nil
}

// DeleteSandbox removes the sandbox.
func (s *Store) DeleteSandbox(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM sandboxes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sandbox: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return engine.ErrSandboxNotFound
	}
	return nil
}

// =============================================================================
// SNAPSHOT STORE
// =============================================================================

// SaveSnapshot stores the projection summary, latest-wins per document.
func (s *Store) SaveSnapshot(ctx context.Context, snap engine.ProjectionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstNegative any
	if snap.FirstNegativeDate != nil {
		firstNegative = snap.FirstNegativeDate.String()
	}

	query := `
		INSERT INTO projection_snapshots
		(document_id, computed_at, range_start, range_end, end_balance,
		 lowest_balance, lowest_balance_date, first_negative_date, negative_day_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			computed_at = excluded.computed_at,
			range_start = excluded.range_start,
			range_end = excluded.range_end,
			end_balance = excluded.end_balance,
			lowest_balance = excluded.lowest_balance,
			lowest_balance_date = excluded.lowest_balance_date,
			first_negative_date = excluded.first_negative_date,
			negative_day_count = excluded.negative_day_count
	`
	_, err := s.db.ExecContext(ctx, query,
		snap.DocumentID,
		snap.ComputedAt,
		snap.RangeStart.String(),
		snap.RangeEnd.String(),
		snap.EndBalance.String(),
		snap.LowestBalance.String(),
		snap.LowestBalanceDate.String(),
		firstNegative,
		snap.NegativeDayCount,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the latest projection summary for the document.
func (s *Store) LoadSnapshot(ctx context.Context, documentID string) (engine.ProjectionSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		snap          engine.ProjectionSnapshot
		rangeStart    string
		rangeEnd      string
		endBalance    string
		lowest        string
		lowestDate    string
		firstNegative sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT document_id, computed_at, range_start, range_end, end_balance,
		       lowest_balance, lowest_balance_date, first_negative_date, negative_day_count
		FROM projection_snapshots WHERE document_id = ?`,
		documentID,
	).Scan(
		&snap.DocumentID,
		&snap.ComputedAt,
		&rangeStart,
		&rangeEnd,
		&endBalance,
		&lowest,
		&lowestDate,
		&firstNegative,
		&snap.NegativeDayCount,
	)
	if err == sql.ErrNoRows {
		return engine.ProjectionSnapshot{}, engine.ErrDocumentNotFound
	}
	if err != nil {
		return engine.ProjectionSnapshot{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	snap.RangeStart = engine.MustDate(rangeStart)
	snap.RangeEnd = engine.MustDate(rangeEnd)
	snap.EndBalance = engine.ParseMoney(endBalance)
	snap.LowestBalance = engine.ParseMoney(lowest)
	snap.LowestBalanceDate = engine.MustDate(lowestDate)
	if firstNegative.Valid {
		d := engine.MustDate(firstNegative.String)
		snap.FirstNegativeDate = &d
	}
	return snap, nil
}

// Reset drops all stored data. For tests and development only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"documents", "sandboxes", "projection_snapshots"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}
