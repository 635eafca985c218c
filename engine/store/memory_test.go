package store

import (
	"context"
	"testing"

	"github.com/ledgerline/cashflow-engine/engine"
)

func testDocument() engine.Document {
	return engine.Document{
		Settings: engine.Settings{
			Start: engine.MustDate("2025-01-01"),
			End:   engine.MustDate("2025-06-30"),
		},
		Streams: []engine.RecurringStream{{
			ID: "salary", Name: "Salary", Direction: engine.DirIncome,
			Frequency:   engine.FreqMonthly,
			Start:       engine.MustDate("2025-01-01"),
			End:         engine.MustDate("2025-12-31"),
			MonthlyMode: engine.MonthlyByDay, DayOfMonth: 1,
			Base: engine.NewMoneyFromInt(1000),
		}},
	}
}

func TestMemory_DocumentRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.SaveDocument(ctx, "d1", "Household", testDocument()); err != nil {
		t.Fatalf("save: %v", err)
	}

	doc, err := m.LoadDocument(ctx, "d1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.Streams) != 1 || doc.Streams[0].ID != "salary" {
		t.Errorf("loaded document lost its stream: %+v", doc.Streams)
	}

	infos, err := m.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].ID != "d1" || infos[0].Name != "Household" {
		t.Errorf("unexpected listing: %+v", infos)
	}
}

func TestMemory_LoadMissingDocument(t *testing.T) {
	m := NewMemory()
	_, err := m.LoadDocument(context.Background(), "ghost")
	if !engine.IsNotFound(err) {
		t.Errorf("expected a not-found error, got %v", err)
	}
}

func TestMemory_DeleteDocument(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.SaveDocument(ctx, "d1", "Household", testDocument())

	if err := m.DeleteDocument(ctx, "d1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := m.DeleteDocument(ctx, "d1"); !engine.IsNotFound(err) {
		t.Errorf("second delete should be not-found, got %v", err)
	}
}

func TestMemory_StoredDocumentIsIsolated(t *testing.T) {
	// GIVEN a saved document
	ctx := context.Background()
	m := NewMemory()
	doc := testDocument()
	m.SaveDocument(ctx, "d1", "Household", doc)

	// WHEN the caller mutates its own copy afterwards
	doc.Streams[0].Base = engine.NewMoneyFromInt(9999)

	// THEN the stored copy is unaffected
	loaded, _ := m.LoadDocument(ctx, "d1")
	if !loaded.Streams[0].Base.Equal(engine.NewMoneyFromInt(1000)) {
		t.Error("store shares state with the caller's document")
	}
}

func TestMemory_SandboxRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	sb := engine.Sandbox{Base: testDocument()}
	sb.Tweaks.PerStream = map[engine.StreamID]*engine.StreamTweak{
		"salary": {Mode: engine.TweakPercent, Percent: 10},
	}

	if err := m.SaveSandbox(ctx, "s1", "d1", sb); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, documentID, err := m.LoadSandbox(ctx, "s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if documentID != "d1" {
		t.Errorf("expected owning document d1, got %s", documentID)
	}
	if loaded.Tweaks.PerStream["salary"].Percent != 10 {
		t.Errorf("sandbox tweaks lost on round trip: %+v", loaded.Tweaks.PerStream)
	}

	// Mutating the loaded copy must not write through to the store.
	loaded.Tweaks.PerStream["salary"].Percent = 99
	again, _, _ := m.LoadSandbox(ctx, "s1")
	if again.Tweaks.PerStream["salary"].Percent != 10 {
		t.Error("store shares tweak state with loaded sandboxes")
	}
}

func TestMemory_DeleteSandbox(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.SaveSandbox(ctx, "s1", "d1", engine.Sandbox{Base: testDocument()})

	if err := m.DeleteSandbox(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := m.LoadSandbox(ctx, "s1"); !engine.IsNotFound(err) {
		t.Errorf("expected a not-found error, got %v", err)
	}
}

func TestMemory_SnapshotLatestWins(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	first := engine.ProjectionSnapshot{DocumentID: "d1", ComputedAt: "2025-01-01T00:00:00Z"}
	second := engine.ProjectionSnapshot{DocumentID: "d1", ComputedAt: "2025-02-01T00:00:00Z"}
	m.SaveSnapshot(ctx, first)
	m.SaveSnapshot(ctx, second)

	snap, err := m.LoadSnapshot(ctx, "d1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.ComputedAt != second.ComputedAt {
		t.Errorf("expected the latest snapshot, got %s", snap.ComputedAt)
	}
}
