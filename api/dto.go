/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Documents:
    DocumentInfoDTO, SaveDocumentRequest

  Projection:
    ProjectionDTO, CalendarRowDTO, DetailDTO, UpcomingDTO

  What-if:
    SandboxDTO, CreateSandboxRequest, UpdateTweaksRequest,
    EvaluationDTO, DeltasDTO

  Snapshots:
    SnapshotDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

MONEY AND DATES:
  Money is rendered as fixed-2 decimal strings, dates as "YYYY-MM-DD".
  The document and sandbox bodies reuse the factory package's schema
  types directly; only derived/summary shapes live here.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/document.go: DocumentJSON/SandboxJSON schema
*/
package api

import (
	"github.com/ledgerline/cashflow-engine/engine"
	"github.com/ledgerline/cashflow-engine/factory"
)

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// DocumentInfoDTO is the listing view of a stored document.
type DocumentInfoDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SaveDocumentRequest creates or replaces a document. ID is optional on
// create; the server generates one when absent.
type SaveDocumentRequest struct {
	ID       string               `json:"id,omitempty"`
	Name     string               `json:"name"`
	Document factory.DocumentJSON `json:"document"`
}

// SaveDocumentResponse reports the stored id plus any lenient repairs.
type SaveDocumentResponse struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Issues []IssueDTO `json:"issues,omitempty"`
}

// IssueDTO is one validation repair report.
type IssueDTO struct {
	Code     string `json:"code"`
	StreamID string `json:"stream_id,omitempty"`
	Field    string `json:"field,omitempty"`
	Message  string `json:"message"`
}

// =============================================================================
// PROJECTION TYPES
// =============================================================================

// DetailDTO is one labeled contribution to a calendar row.
type DetailDTO struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

// CalendarRowDTO is one projected day.
type CalendarRowDTO struct {
	Date           string      `json:"date"`
	Income         string      `json:"income"`
	Expenses       string      `json:"expenses"`
	Net            string      `json:"net"`
	Running        string      `json:"running"`
	IncomeDetails  []DetailDTO `json:"income_details,omitempty"`
	ExpenseDetails []DetailDTO `json:"expense_details,omitempty"`
}

// ProjectionDTO is the full projection response.
type ProjectionDTO struct {
	Start                 string           `json:"start"`
	End                   string           `json:"end"`
	Calendar              []CalendarRowDTO `json:"calendar"`
	TotalIncome           string           `json:"total_income"`
	TotalExpenses         string           `json:"total_expenses"`
	EndBalance            string           `json:"end_balance"`
	LowestBalance         string           `json:"lowest_balance"`
	LowestBalanceDate     string           `json:"lowest_balance_date"`
	PeakBalance           string           `json:"peak_balance"`
	PeakBalanceDate       string           `json:"peak_balance_date"`
	FirstNegativeDate     *string          `json:"first_negative_date,omitempty"`
	NegativeDayCount      int              `json:"negative_day_count"`
	ProjectedWeeklyIncome string           `json:"projected_weekly_income"`
}

// UpcomingItemDTO is one future stream occurrence.
type UpcomingItemDTO struct {
	StreamID  string `json:"stream_id"`
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Date      string `json:"date"`
	Amount    string `json:"amount"`
}

// UpcomingDTO lists the next occurrences within the lookahead window.
type UpcomingDTO struct {
	From  string            `json:"from"`
	Days  int               `json:"days"`
	Items []UpcomingItemDTO `json:"items"`
}

// =============================================================================
// WHAT-IF TYPES
// =============================================================================

// CreateSandboxRequest forks a sandbox from a stored document.
type CreateSandboxRequest struct {
	DocumentID string `json:"document_id"`
}

// SandboxDTO is the stored sandbox in API responses.
type SandboxDTO struct {
	ID         string              `json:"id"`
	DocumentID string              `json:"document_id"`
	Sandbox    factory.SandboxJSON `json:"sandbox"`
}

// UpdateTweaksRequest replaces the sandbox's tweak tree wholesale. The
// base snapshot is never writable through this endpoint.
type UpdateTweaksRequest struct {
	Tweaks factory.TweaksJSON `json:"tweaks"`
}

// DeltasDTO reports tweaked-minus-base headline differences.
type DeltasDTO struct {
	EndBalance       string `json:"end_balance"`
	TotalIncome      string `json:"total_income"`
	TotalExpenses    string `json:"total_expenses"`
	LowestBalance    string `json:"lowest_balance"`
	NegativeDayCount int    `json:"negative_day_count"`
}

// EvaluationDTO is the side-by-side what-if evaluation.
type EvaluationDTO struct {
	Base    ProjectionDTO `json:"base"`
	Tweaked ProjectionDTO `json:"tweaked"`
	Deltas  DeltasDTO     `json:"deltas"`
}

// =============================================================================
// SNAPSHOT TYPES
// =============================================================================

// SnapshotDTO is the latest persisted projection summary for a document.
type SnapshotDTO struct {
	DocumentID        string  `json:"document_id"`
	ComputedAt        string  `json:"computed_at"`
	RangeStart        string  `json:"range_start"`
	RangeEnd          string  `json:"range_end"`
	EndBalance        string  `json:"end_balance"`
	LowestBalance     string  `json:"lowest_balance"`
	LowestBalanceDate string  `json:"lowest_balance_date"`
	FirstNegativeDate *string `json:"first_negative_date,omitempty"`
	NegativeDayCount  int     `json:"negative_day_count"`
}

// =============================================================================
// SCENARIO TYPES
// =============================================================================

// ScenarioDTO describes one demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toIssueDTOs(issues []engine.Issue) []IssueDTO {
	if len(issues) == 0 {
		return nil
	}
	out := make([]IssueDTO, len(issues))
	for i, is := range issues {
		out[i] = IssueDTO{
			Code:     is.Code,
			StreamID: string(is.StreamID),
			Field:    is.Field,
			Message:  is.Message,
		}
	}
	return out
}

func toDetailDTOs(details []engine.Detail) []DetailDTO {
	if len(details) == 0 {
		return nil
	}
	out := make([]DetailDTO, len(details))
	for i, d := range details {
		out[i] = DetailDTO{Label: d.Label, Amount: d.Amount.String()}
	}
	return out
}

func toProjectionDTO(result *engine.ProjectionResult) ProjectionDTO {
	dto := ProjectionDTO{
		TotalIncome:           result.TotalIncome.String(),
		TotalExpenses:         result.TotalExpenses.String(),
		EndBalance:            result.EndBalance.String(),
		LowestBalance:         result.LowestBalance.String(),
		LowestBalanceDate:     result.LowestBalanceDate.String(),
		PeakBalance:           result.PeakBalance.String(),
		PeakBalanceDate:       result.PeakBalanceDate.String(),
		NegativeDayCount:      result.NegativeDayCount,
		ProjectedWeeklyIncome: result.ProjectedWeeklyIncome.String(),
	}
	if len(result.Calendar) > 0 {
		dto.Start = result.Calendar[0].Date.String()
		dto.End = result.Calendar[len(result.Calendar)-1].Date.String()
	}
	if result.FirstNegativeDate != nil {
		s := result.FirstNegativeDate.String()
		dto.FirstNegativeDate = &s
	}
	dto.Calendar = make([]CalendarRowDTO, len(result.Calendar))
	for i, row := range result.Calendar {
		dto.Calendar[i] = CalendarRowDTO{
			Date:           row.Date.String(),
			Income:         row.Income.String(),
			Expenses:       row.Expenses.String(),
			Net:            row.Net.String(),
			Running:        row.Running.String(),
			IncomeDetails:  toDetailDTOs(row.IncomeDetails),
			ExpenseDetails: toDetailDTOs(row.ExpenseDetails),
		}
	}
	return dto
}

func toSnapshotDTO(snap engine.ProjectionSnapshot) SnapshotDTO {
	dto := SnapshotDTO{
		DocumentID:        snap.DocumentID,
		ComputedAt:        snap.ComputedAt,
		RangeStart:        snap.RangeStart.String(),
		RangeEnd:          snap.RangeEnd.String(),
		EndBalance:        snap.EndBalance.String(),
		LowestBalance:     snap.LowestBalance.String(),
		LowestBalanceDate: snap.LowestBalanceDate.String(),
		NegativeDayCount:  snap.NegativeDayCount,
	}
	if snap.FirstNegativeDate != nil {
		s := snap.FirstNegativeDate.String()
		dto.FirstNegativeDate = &s
	}
	return dto
}
