// Package store provides in-memory implementations of the engine's
// persistence interfaces, for tests and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/ledgerline/cashflow-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	documents map[string]namedDocument
	sandboxes map[string]ownedSandbox
	snapshots map[string]engine.ProjectionSnapshot
}

type namedDocument struct {
	name string
	doc  engine.Document
}

type ownedSandbox struct {
	documentID string
	sb         engine.Sandbox
}

func NewMemory() *Memory {
	return &Memory{
		documents: make(map[string]namedDocument),
		sandboxes: make(map[string]ownedSandbox),
		snapshots: make(map[string]engine.ProjectionSnapshot),
	}
}

func (m *Memory) SaveDocument(_ context.Context, id, name string, doc engine.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[id] = namedDocument{name: name, doc: doc.Clone()}
	return nil
}

func (m *Memory) LoadDocument(_ context.Context, id string) (engine.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	nd, ok := m.documents[id]
	if !ok {
		return engine.Document{}, engine.ErrDocumentNotFound
	}
	return nd.doc.Clone(), nil
}

func (m *Memory) ListDocuments(_ context.Context) ([]engine.DocumentInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.DocumentInfo, 0, len(m.documents))
	for id, nd := range m.documents {
		out = append(out, engine.DocumentInfo{ID: id, Name: nd.name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[id]; !ok {
		return engine.ErrDocumentNotFound
	}
	delete(m.documents, id)
	return nil
}

func (m *Memory) SaveSandbox(_ context.Context, id, documentID string, sb engine.Sandbox) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sandboxes[id] = ownedSandbox{documentID: documentID, sb: sb.Clone()}
	return nil
}

func (m *Memory) LoadSandbox(_ context.Context, id string) (engine.Sandbox, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	os, ok := m.sandboxes[id]
	if !ok {
		return engine.Sandbox{}, "", engine.ErrSandboxNotFound
	}
	return os.sb.Clone(), os.documentID, nil
}

func (m *Memory) DeleteSandbox(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sandboxes[id]; !ok {
		return engine.ErrSandboxNotFound
	}
	delete(m.sandboxes, id)
	return nil
}

func (m *Memory) SaveSnapshot(_ context.Context, snap engine.ProjectionSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snap.DocumentID] = snap
	return nil
}

func (m *Memory) LoadSnapshot(_ context.Context, documentID string) (engine.ProjectionSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[documentID]
	if !ok {
		return engine.ProjectionSnapshot{}, engine.ErrDocumentNotFound
	}
	return snap, nil
}
