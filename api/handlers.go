/*
handlers.go - HTTP API handlers for the cash-flow planning engine

PURPOSE:
  Exposes the projection engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Documents:
    GET    /api/documents                    List stored documents
    POST   /api/documents                    Create/replace a document
    GET    /api/documents/{id}               Get document body
    DELETE /api/documents/{id}               Delete document

  Projection:
    GET    /api/documents/{id}/projection      Full calendar + summary
    GET    /api/documents/{id}/projection.csv  CSV export
    GET    /api/documents/{id}/chart.png       Balance chart PNG
    GET    /api/documents/{id}/upcoming        Next occurrences
    GET    /api/documents/{id}/snapshot        Latest persisted summary

  What-if:
    POST   /api/documents/{id}/sandboxes     Fork a sandbox
    GET    /api/sandboxes/{id}               Get sandbox
    DELETE /api/sandboxes/{id}               Delete sandbox
    PUT    /api/sandboxes/{id}/tweaks        Replace tweak tree
    GET    /api/sandboxes/{id}/evaluation    Evaluate base vs tweaked
    POST   /api/sandboxes/{id}/streams/{streamID}/lock
    POST   /api/sandboxes/{id}/streams/{streamID}/unlock

  Scenarios:
    GET    /api/scenarios                    List demo scenarios
    GET    /api/scenarios/current            Currently loaded scenario
    POST   /api/scenarios/load               Load a demo scenario

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: persistence (documents, sandboxes, snapshots)
  - Factory: JSON to Document conversion

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (projection, sandbox evaluation)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ledgerline/cashflow-engine/engine"
	"github.com/ledgerline/cashflow-engine/factory"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the persistence surface the handlers need.
type Store interface {
	engine.DocumentStore
	engine.SandboxStore
	engine.SnapshotStore
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   Store
	Factory *factory.DocumentFactory

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store Store) *Handler {
	return &Handler{
		Store:   store,
		Factory: factory.NewDocumentFactory(),
	}
}

// =============================================================================
// DOCUMENT HANDLERS
// =============================================================================

// ListDocuments returns all stored documents.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	infos, err := h.Store.ListDocuments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list documents", err)
		return
	}

	dtos := make([]DocumentInfoDTO, len(infos))
	for i, info := range infos {
		dtos[i] = DocumentInfoDTO{ID: info.ID, Name: info.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveDocument creates or replaces a document. The body goes through the
// lenient parse; repairs come back as issues, never as a rejection.
func (h *Handler) SaveDocument(w http.ResponseWriter, r *http.Request) {
	var req SaveDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Document name is required", nil)
		return
	}

	doc, issues, err := h.Factory.FromJSON(req.Document)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid document", err)
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}

	if err := h.Store.SaveDocument(r.Context(), id, req.Name, doc); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save document", err)
		return
	}

	writeJSON(w, http.StatusCreated, SaveDocumentResponse{
		ID:     id,
		Name:   req.Name,
		Issues: toIssueDTOs(issues),
	})
}

// GetDocument returns the stored document body.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := h.Store.LoadDocument(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to load document", err)
		return
	}

	writeJSON(w, http.StatusOK, h.Factory.ToJSON(doc))
}

// DeleteDocument removes a document and everything forked from it.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteDocument(r.Context(), id); err != nil {
		writeStoreError(w, "Failed to delete document", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// =============================================================================
// PROJECTION HANDLERS
// =============================================================================

// loadProjection loads the document and projects it over the optional
// ?start=/?end= override range.
func (h *Handler) loadProjection(r *http.Request) (*engine.ProjectionResult, error) {
	id := chi.URLParam(r, "id")

	doc, err := h.Store.LoadDocument(r.Context(), id)
	if err != nil {
		return nil, err
	}

	var opts *engine.ProjectionOptions
	start := engine.MustDate(r.URL.Query().Get("start"))
	end := engine.MustDate(r.URL.Query().Get("end"))
	if !start.IsZero() || !end.IsZero() {
		rng := doc.Range()
		if !start.IsZero() {
			rng.Start = start
		}
		if !end.IsZero() {
			rng.End = end
		}
		rng = rng.Normalize()
		opts = &engine.ProjectionOptions{Range: &rng}
	}

	return engine.ComputeProjection(doc, opts), nil
}

// GetProjection returns the full calendar plus summary statistics.
func (h *Handler) GetProjection(w http.ResponseWriter, r *http.Request) {
	result, err := h.loadProjection(r)
	if err != nil {
		writeStoreError(w, "Failed to project document", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectionDTO(result))
}

// ExportProjectionCSV streams the calendar as CSV, one row per day.
func (h *Handler) ExportProjectionCSV(w http.ResponseWriter, r *http.Request) {
	result, err := h.loadProjection(r)
	if err != nil {
		writeStoreError(w, "Failed to project document", err)
		return
	}

	// Build the file before touching the response so a write failure
	// cannot stream a truncated export.
	var buf bytes.Buffer
	if err := writeProjectionCSV(&buf, result); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build CSV", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="projection.csv"`)
	w.Write(buf.Bytes())
}

// writeProjectionCSV writes the projection calendar as CSV rows.
func writeProjectionCSV(w io.Writer, result *engine.ProjectionResult) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"date", "income", "expenses", "net", "running"})
	for _, row := range result.Calendar {
		cw.Write([]string{
			row.Date.String(),
			row.Income.String(),
			row.Expenses.String(),
			row.Net.String(),
			row.Running.String(),
		})
	}
	cw.Flush()
	return cw.Error()
}

// GetProjectionChart renders the running balance as a PNG line chart.
func (h *Handler) GetProjectionChart(w http.ResponseWriter, r *http.Request) {
	result, err := h.loadProjection(r)
	if err != nil {
		writeStoreError(w, "Failed to project document", err)
		return
	}

	png, err := renderBalanceChart(result)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Failed to render chart", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// GetUpcoming lists each stream's occurrences in the next N days
// (default 30), soonest first.
func (h *Handler) GetUpcoming(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := h.Store.LoadDocument(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to load document", err)
		return
	}

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 366 {
			writeError(w, http.StatusBadRequest, "days must be 1..366", err)
			return
		}
		days = n
	}

	from := engine.MustDate(r.URL.Query().Get("from"))
	if from.IsZero() {
		from = engine.Today()
	}

	dto := UpcomingDTO{From: from.String(), Days: days, Items: []UpcomingItemDTO{}}
	window := engine.Period{Start: from, End: from.AddDays(days - 1)}
	for _, s := range doc.Streams {
		for _, occ := range engine.ScanOccurrences(s, window, nil) {
			dto.Items = append(dto.Items, UpcomingItemDTO{
				StreamID:  string(s.ID),
				Name:      s.Name,
				Direction: string(s.Direction),
				Date:      occ.Date.String(),
				Amount:    occ.Amount.Round2().String(),
			})
		}
	}
	sortUpcoming(dto.Items)

	writeJSON(w, http.StatusOK, dto)
}

// GetSnapshot returns the latest persisted projection summary.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, err := h.Store.LoadSnapshot(r.Context(), id)
	if err != nil {
		writeStoreError(w, "No snapshot for document", err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(snap))
}

// =============================================================================
// SANDBOX HANDLERS
// =============================================================================

// CreateSandbox forks a sandbox from the document's current state.
func (h *Handler) CreateSandbox(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "id")

	doc, err := h.Store.LoadDocument(r.Context(), documentID)
	if err != nil {
		writeStoreError(w, "Failed to load document", err)
		return
	}

	sb := engine.Sandbox{Base: doc}
	sb.Reconcile()

	id := uuid.New().String()
	if err := h.Store.SaveSandbox(r.Context(), id, documentID, sb); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save sandbox", err)
		return
	}

	writeJSON(w, http.StatusCreated, SandboxDTO{
		ID:         id,
		DocumentID: documentID,
		Sandbox:    h.Factory.SandboxToJSON(sb),
	})
}

// GetSandbox returns the stored sandbox.
func (h *Handler) GetSandbox(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sb, documentID, err := h.Store.LoadSandbox(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to load sandbox", err)
		return
	}

	writeJSON(w, http.StatusOK, SandboxDTO{
		ID:         id,
		DocumentID: documentID,
		Sandbox:    h.Factory.SandboxToJSON(sb),
	})
}

// DeleteSandbox removes the sandbox. The base document is untouched.
func (h *Handler) DeleteSandbox(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteSandbox(r.Context(), id); err != nil {
		writeStoreError(w, "Failed to delete sandbox", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// UpdateTweaks replaces the sandbox's tweak tree. The base snapshot
// cannot be modified through this endpoint; only tweaks move.
func (h *Handler) UpdateTweaks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateTweaksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sb, documentID, err := h.Store.LoadSandbox(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to load sandbox", err)
		return
	}

	// Rebuild the sandbox from the stored base plus the new tweaks.
	updated, _, err := h.Factory.SandboxFromJSON(factory.SandboxJSON{
		Base:   h.Factory.ToJSON(sb.Base),
		Tweaks: req.Tweaks,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid tweaks", err)
		return
	}

	if err := h.Store.SaveSandbox(r.Context(), id, documentID, updated); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save sandbox", err)
		return
	}

	writeJSON(w, http.StatusOK, SandboxDTO{
		ID:         id,
		DocumentID: documentID,
		Sandbox:    h.Factory.SandboxToJSON(updated),
	})
}

// EvaluateSandbox projects the base twice (untweaked and tweaked) and
// returns both plus the headline deltas.
func (h *Handler) EvaluateSandbox(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sb, _, err := h.Store.LoadSandbox(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to load sandbox", err)
		return
	}

	result := sb.Evaluate()
	writeJSON(w, http.StatusOK, EvaluationDTO{
		Base:    toProjectionDTO(result.Base),
		Tweaked: toProjectionDTO(result.Tweaked),
		Deltas: DeltasDTO{
			EndBalance:       result.Deltas.EndBalance.String(),
			TotalIncome:      result.Deltas.TotalIncome.String(),
			TotalExpenses:    result.Deltas.TotalExpenses.String(),
			LowestBalance:    result.Deltas.LowestBalance.String(),
			NegativeDayCount: result.Deltas.NegativeDayCount,
		},
	})
}

// LockStream freezes the stream's current effective amount.
func (h *Handler) LockStream(w http.ResponseWriter, r *http.Request) {
	h.lockUnlock(w, r, true)
}

// UnlockStream resets the stream's tweak to a zeroed percent mode.
func (h *Handler) UnlockStream(w http.ResponseWriter, r *http.Request) {
	h.lockUnlock(w, r, false)
}

func (h *Handler) lockUnlock(w http.ResponseWriter, r *http.Request, lock bool) {
	id := chi.URLParam(r, "id")
	streamID := engine.StreamID(chi.URLParam(r, "streamID"))

	sb, documentID, err := h.Store.LoadSandbox(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to load sandbox", err)
		return
	}

	var ok bool
	if lock {
		ok = sb.Lock(streamID)
	} else {
		ok = sb.Unlock(streamID)
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Stream not found", engine.ErrStreamNotFound)
		return
	}

	// Persist only after the mutation succeeded.
	if err := h.Store.SaveSandbox(r.Context(), id, documentID, sb); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save sandbox", err)
		return
	}

	writeJSON(w, http.StatusOK, SandboxDTO{
		ID:         id,
		DocumentID: documentID,
		Sandbox:    h.Factory.SandboxToJSON(sb),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeStoreError maps not-found to 404 and everything else to 500.
func writeStoreError(w http.ResponseWriter, message string, err error) {
	if engine.IsNotFound(err) {
		writeError(w, http.StatusNotFound, message, err)
		return
	}
	writeError(w, http.StatusInternalServerError, message, err)
}

// sortUpcoming orders items by date, then stream id for stable output.
func sortUpcoming(items []UpcomingItemDTO) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date < items[j].Date
		}
		return items[i].StreamID < items[j].StreamID
	})
}
