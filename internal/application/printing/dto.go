package printing

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/edgepos/backend/internal/domain/printing"
)

// ==================== Requests ====================

// FetchJobsRequest is the agent's poll query
type FetchJobsRequest struct {
	TerminalID *uuid.UUID `form:"terminal_id"`
	Limit      int        `form:"limit"`
}

// FailJobRequest carries the agent's error report for a job
type FailJobRequest struct {
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message" binding:"required"`
}

// ReprintReceiptRequest re-queues a paid bill's receipt
type ReprintReceiptRequest struct {
	BillID uuid.UUID `json:"bill_id" binding:"required"`
	Copies int       `json:"copies"`
}

// ReprintKitchenRequest re-queues a kitchen ticket print
type ReprintKitchenRequest struct {
	TicketID uuid.UUID `json:"ticket_id" binding:"required"`
}

// UpsertTemplateRequest creates or updates a brand receipt template
type UpsertTemplateRequest struct {
	BrandID     uuid.UUID `json:"brand_id" binding:"required"`
	Name        string    `json:"name" binding:"required"`
	HeaderLines []string  `json:"header_lines"`
	FooterLines []string  `json:"footer_lines"`
	PaperSize   string    `json:"paper_size" binding:"omitempty,oneof=RECEIPT_58MM RECEIPT_80MM"`
	IsDefault   bool      `json:"is_default"`
}

// ==================== Responses ====================

// JobResponse is a print job handed to the agent or listed in the admin UI
type JobResponse struct {
	ID           uuid.UUID       `json:"id"`
	Token        uuid.UUID       `json:"token"`
	JobType      string          `json:"job_type"`
	Status       string          `json:"status"`
	TerminalID   *uuid.UUID      `json:"terminal_id,omitempty"`
	RefID        uuid.UUID       `json:"ref_id"`
	RefNumber    string          `json:"ref_number"`
	Payload      json.RawMessage `json:"payload"`
	PaperSize    string          `json:"paper_size"`
	Copies       int             `json:"copies"`
	RetryCount   int             `json:"retry_count"`
	ErrorCode    string          `json:"error_code,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	FetchedAt    *time.Time      `json:"fetched_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// TemplateResponse is a receipt template in API responses
type TemplateResponse struct {
	ID          uuid.UUID `json:"id"`
	BrandID     uuid.UUID `json:"brand_id"`
	Name        string    `json:"name"`
	HeaderLines []string  `json:"header_lines"`
	FooterLines []string  `json:"footer_lines"`
	PaperSize   string    `json:"paper_size"`
	IsDefault   bool      `json:"is_default"`
}

// ToJobResponse converts a domain print job to a response
func ToJobResponse(j *printing.PrintJob) JobResponse {
	return JobResponse{
		ID:           j.ID,
		Token:        j.Token,
		JobType:      string(j.JobType),
		Status:       string(j.Status),
		TerminalID:   j.TerminalID,
		RefID:        j.RefID,
		RefNumber:    j.RefNumber,
		Payload:      j.Payload,
		PaperSize:    string(j.PaperSize),
		Copies:       j.Copies,
		RetryCount:   j.RetryCount,
		ErrorCode:    j.ErrorCode,
		ErrorMessage: j.ErrorMessage,
		CreatedAt:    j.CreatedAt,
		FetchedAt:    j.FetchedAt,
		CompletedAt:  j.CompletedAt,
	}
}

// ToTemplateResponse converts a domain template to a response
func ToTemplateResponse(t *printing.ReceiptTemplate) TemplateResponse {
	return TemplateResponse{
		ID:          t.ID,
		BrandID:     t.BrandID,
		Name:        t.Name,
		HeaderLines: t.HeaderLines,
		FooterLines: t.FooterLines,
		PaperSize:   string(t.PaperSize),
		IsDefault:   t.IsDefault,
	}
}
