package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edgepos/backend/internal/domain/session"
)

// ==================== Requests ====================

// OpenSessionRequest starts a business day
type OpenSessionRequest struct {
	BusinessDate string `json:"business_date" binding:"required" time_format:"2006-01-02"`
}

// CloseSessionRequest ends the business day. Force overrides blocking
// readiness issues and requires an elevated approval code.
type CloseSessionRequest struct {
	Force        bool   `json:"force"`
	ApprovalCode string `json:"approval_code"`
	// NextBusinessDate defaults to the day after the closing session's.
	NextBusinessDate string `json:"next_business_date"`
}

// OpenShiftRequest opens a cashier drawer
type OpenShiftRequest struct {
	TerminalID  *uuid.UUID      `json:"terminal_id"`
	OpeningCash decimal.Decimal `json:"opening_cash"`
}

// CloseShiftRequest reconciles a drawer with the counted cash
type CloseShiftRequest struct {
	ActualCash decimal.Decimal `json:"actual_cash" binding:"required"`
	Notes      string          `json:"notes"`
}

// ApproveVarianceRequest carries the supervisor approval code
type ApproveVarianceRequest struct {
	ApprovalCode string `json:"approval_code" binding:"required"`
}

// ==================== Responses ====================

// SessionResponse is the business-day session in API responses
type SessionResponse struct {
	ID           uuid.UUID          `json:"id"`
	BusinessDate string             `json:"business_date"`
	Status       string             `json:"status"`
	IsCurrent    bool               `json:"is_current"`
	Health       string             `json:"health"`
	AgeHours     float64            `json:"age_hours"`
	OpenedBy     uuid.UUID          `json:"opened_by"`
	OpenedAt     time.Time          `json:"opened_at"`
	ClosedBy     *uuid.UUID         `json:"closed_by,omitempty"`
	ClosedAt     *time.Time         `json:"closed_at,omitempty"`
	Report       *session.EODReport `json:"report,omitempty"`
}

// ReadinessResponse is the pre-close validation result
type ReadinessResponse struct {
	CanClose bool                     `json:"can_close"`
	Blocking []session.ReadinessIssue `json:"blocking"`
	Warnings []session.ReadinessIssue `json:"warnings"`
}

// ShiftSummaryResponse is one per-method takings row
type ShiftSummaryResponse struct {
	Method   string          `json:"method"`
	Amount   decimal.Decimal `json:"amount"`
	TxnCount int64           `json:"txn_count"`
}

// ShiftResponse is a cashier shift in API responses
type ShiftResponse struct {
	ID               uuid.UUID              `json:"id"`
	SessionID        uuid.UUID              `json:"session_id"`
	CashierID        uuid.UUID              `json:"cashier_id"`
	TerminalID       *uuid.UUID             `json:"terminal_id,omitempty"`
	Status           string                 `json:"status"`
	OpeningCash      decimal.Decimal        `json:"opening_cash"`
	ExpectedCash     decimal.Decimal        `json:"expected_cash"`
	ActualCash       decimal.Decimal        `json:"actual_cash"`
	Variance         decimal.Decimal        `json:"variance"`
	VarianceSeverity string                 `json:"variance_severity"`
	RequiresApproval bool                   `json:"requires_approval"`
	ApprovedBy       *uuid.UUID             `json:"approved_by,omitempty"`
	Settled          bool                   `json:"settled"`
	Summaries        []ShiftSummaryResponse `json:"summaries,omitempty"`
	OpenedAt         time.Time              `json:"opened_at"`
	ClosedAt         *time.Time             `json:"closed_at,omitempty"`
	Notes            string                 `json:"notes,omitempty"`
}

// ChecklistItemResponse is one EOD closing task
type ChecklistItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Sequence    int        `json:"sequence"`
	Completed   bool       `json:"completed"`
	CompletedBy *uuid.UUID `json:"completed_by,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// AlertResponse is one operational alert
type AlertResponse struct {
	ID           uuid.UUID `json:"id"`
	Type         string    `json:"type"`
	Severity     string    `json:"severity"`
	Message      string    `json:"message"`
	Acknowledged bool      `json:"acknowledged"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToSessionResponse converts a domain session to a response
func ToSessionResponse(s *session.StoreSession, now time.Time) SessionResponse {
	return SessionResponse{
		ID:           s.ID,
		BusinessDate: s.BusinessDate.Format("2006-01-02"),
		Status:       string(s.Status),
		IsCurrent:    s.IsCurrent,
		Health:       string(s.Health(now)),
		AgeHours:     s.Age(now).Hours(),
		OpenedBy:     s.OpenedBy,
		OpenedAt:     s.OpenedAt,
		ClosedBy:     s.ClosedBy,
		ClosedAt:     s.ClosedAt,
		Report:       s.Report,
	}
}

// ToShiftResponse converts a domain shift to a response
func ToShiftResponse(s *session.CashierShift) ShiftResponse {
	summaries := make([]ShiftSummaryResponse, len(s.Summaries))
	for i, row := range s.Summaries {
		summaries[i] = ShiftSummaryResponse{
			Method:   row.Method,
			Amount:   row.Amount,
			TxnCount: row.TxnCount,
		}
	}
	return ShiftResponse{
		ID:               s.ID,
		SessionID:        s.SessionID,
		CashierID:        s.CashierID,
		TerminalID:       s.TerminalID,
		Status:           string(s.Status),
		OpeningCash:      s.OpeningCash,
		ExpectedCash:     s.ExpectedCash,
		ActualCash:       s.ActualCash,
		Variance:         s.Variance,
		VarianceSeverity: string(s.VarianceSeverity),
		RequiresApproval: s.RequiresApproval,
		ApprovedBy:       s.ApprovedBy,
		Settled:          s.IsSettled(),
		Summaries:        summaries,
		OpenedAt:         s.OpenedAt,
		ClosedAt:         s.ClosedAt,
		Notes:            s.Notes,
	}
}

// ToChecklistItemResponse converts a domain checklist item to a response
func ToChecklistItemResponse(item *session.EODChecklistItem) ChecklistItemResponse {
	return ChecklistItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Sequence:    item.Sequence,
		Completed:   item.Completed,
		CompletedBy: item.CompletedBy,
		CompletedAt: item.CompletedAt,
	}
}

// ToAlertResponse converts a domain alert to a response
func ToAlertResponse(a *session.SessionAlert) AlertResponse {
	return AlertResponse{
		ID:           a.ID,
		Type:         string(a.Type),
		Severity:     string(a.Severity),
		Message:      a.Message,
		Acknowledged: a.Acknowledged,
		CreatedAt:    a.CreatedAt,
	}
}
