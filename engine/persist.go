/*
persist.go - Persistence interfaces for documents and sandboxes

PURPOSE:
  Defines the seam between the engine and storage. The engine itself
  does no I/O; these interfaces exist so the API layer can load a
  snapshot, project it, and persist the outcome. Persistence is
  last-write-wins on whole documents - there is no finer-grained
  transactional contract.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite
  - engine/store: in-memory, for tests and dev
*/
package engine

import "context"

// DocumentInfo is the listing view of a stored document.
type DocumentInfo struct {
	ID   string
	Name string
}

// DocumentStore persists base planning documents, whole-document
// last-write-wins.
type DocumentStore interface {
	SaveDocument(ctx context.Context, id, name string, doc Document) error
	LoadDocument(ctx context.Context, id string) (Document, error)
	ListDocuments(ctx context.Context) ([]DocumentInfo, error)
	DeleteDocument(ctx context.Context, id string) error
}

// SandboxStore persists what-if sandboxes keyed by id. Load reports the
// owning document id alongside the sandbox.
type SandboxStore interface {
	SaveSandbox(ctx context.Context, id, documentID string, sb Sandbox) error
	LoadSandbox(ctx context.Context, id string) (Sandbox, string, error)
	DeleteSandbox(ctx context.Context, id string) error
}

// ProjectionSnapshot is a persisted headline summary of one projection
// run, written by the refresh scheduler for dashboard consumption.
type ProjectionSnapshot struct {
	DocumentID        string
	ComputedAt        string // RFC3339
	RangeStart        Date
	RangeEnd          Date
	EndBalance        Money
	LowestBalance     Money
	LowestBalanceDate Date
	FirstNegativeDate *Date
	NegativeDayCount  int
}

// SnapshotStore persists projection snapshots, latest-wins per document.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap ProjectionSnapshot) error
	LoadSnapshot(ctx context.Context, documentID string) (ProjectionSnapshot, error)
}
