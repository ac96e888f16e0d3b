package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edgepos/backend/internal/domain/payment"
)

// ==================== Requests ====================

// RecordPaymentRequest applies one settlement instrument to a bill
type RecordPaymentRequest struct {
	Method    string          `json:"method" binding:"required,oneof=cash card qris ewallet transfer voucher"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Reference string          `json:"reference"`
}

// RefundLineRequest selects a quantity of one bill line to refund
type RefundLineRequest struct {
	BillItemID uuid.UUID `json:"bill_item_id" binding:"required"`
	Quantity   int       `json:"quantity" binding:"required,min=1"`
}

// CreateRefundRequest opens a pending refund against a paid bill
type CreateRefundRequest struct {
	BillID uuid.UUID           `json:"bill_id" binding:"required"`
	Lines  []RefundLineRequest `json:"lines" binding:"required,min=1,dive"`
	Reason string              `json:"reason" binding:"required"`
}

// ApproveRefundRequest carries the elevated approval code
type ApproveRefundRequest struct {
	ApprovalCode string `json:"approval_code" binding:"required"`
}

// RejectRefundRequest carries the elevated approval code and a reason
type RejectRefundRequest struct {
	ApprovalCode string `json:"approval_code" binding:"required"`
	Reason       string `json:"reason" binding:"required"`
}

// ReversalRequest is one payment reversal at refund completion
type ReversalRequest struct {
	PaymentID *uuid.UUID      `json:"payment_id"`
	Method    string          `json:"method" binding:"required,oneof=cash card qris ewallet transfer voucher"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Reference string          `json:"reference"`
}

// CompleteRefundRequest records the money movement for an approved refund
type CompleteRefundRequest struct {
	Reversals []ReversalRequest `json:"reversals" binding:"required,min=1,dive"`
}

// RefundListFilter filters refund listings
type RefundListFilter struct {
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ==================== Responses ====================

// PaymentResponse is one settlement row plus the bill state it produced
type PaymentResponse struct {
	ID         uuid.UUID       `json:"id"`
	BillID     uuid.UUID       `json:"bill_id"`
	Method     string          `json:"method"`
	Amount     decimal.Decimal `json:"amount"`
	Reference  string          `json:"reference,omitempty"`
	PaidAt     time.Time       `json:"paid_at"`
	Remaining  decimal.Decimal `json:"remaining"`
	Change     decimal.Decimal `json:"change"`
	BillStatus string          `json:"bill_status"`
}

// RefundItemResponse is one refunded line
type RefundItemResponse struct {
	BillItemID  uuid.UUID       `json:"bill_item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// ReversalResponse is one recorded payment reversal
type ReversalResponse struct {
	PaymentID *uuid.UUID      `json:"payment_id,omitempty"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// RefundResponse is the full refund in API responses
type RefundResponse struct {
	ID              uuid.UUID            `json:"id"`
	RefundNumber    string               `json:"refund_number"`
	BillID          uuid.UUID            `json:"bill_id"`
	BillNumber      string               `json:"bill_number"`
	RefundType      string               `json:"refund_type"`
	Status          string               `json:"status"`
	Reason          string               `json:"reason"`
	Items           []RefundItemResponse `json:"items"`
	Reversals       []ReversalResponse   `json:"reversals,omitempty"`
	Subtotal        decimal.Decimal      `json:"subtotal"`
	DiscountTotal   decimal.Decimal      `json:"discount_total"`
	TaxAmount       decimal.Decimal      `json:"tax_amount"`
	ServiceCharge   decimal.Decimal      `json:"service_charge"`
	TotalAmount     decimal.Decimal      `json:"total_amount"`
	RequestedBy     uuid.UUID            `json:"requested_by"`
	ApprovedBy      *uuid.UUID           `json:"approved_by,omitempty"`
	RejectionReason string               `json:"rejection_reason,omitempty"`
	CompletedAt     *time.Time           `json:"completed_at,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}

// ToPaymentResponse converts a domain payment to a response
func ToPaymentResponse(p *payment.Payment, remaining, change decimal.Decimal, billStatus string) PaymentResponse {
	return PaymentResponse{
		ID:         p.ID,
		BillID:     p.BillID,
		Method:     string(p.Method),
		Amount:     p.Amount,
		Reference:  p.Reference,
		PaidAt:     p.PaidAt,
		Remaining:  remaining,
		Change:     change,
		BillStatus: billStatus,
	}
}

// ToRefundResponse converts a domain refund to a response
func ToRefundResponse(r *payment.BillRefund) RefundResponse {
	items := make([]RefundItemResponse, len(r.Items))
	for i, item := range r.Items {
		items[i] = RefundItemResponse{
			BillItemID:  item.BillItemID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		}
	}
	reversals := make([]ReversalResponse, len(r.Reversals))
	for i, rev := range r.Reversals {
		reversals[i] = ReversalResponse{
			PaymentID: rev.PaymentID,
			Method:    string(rev.Method),
			Amount:    rev.Amount,
			Reference: rev.Reference,
		}
	}
	return RefundResponse{
		ID:              r.ID,
		RefundNumber:    r.RefundNumber,
		BillID:          r.BillID,
		BillNumber:      r.BillNumber,
		RefundType:      string(r.RefundType),
		Status:          string(r.Status),
		Reason:          r.Reason,
		Items:           items,
		Reversals:       reversals,
		Subtotal:        r.Subtotal,
		DiscountTotal:   r.DiscountTotal,
		TaxAmount:       r.TaxAmount,
		ServiceCharge:   r.ServiceCharge,
		TotalAmount:     r.TotalAmount,
		RequestedBy:     r.RequestedBy,
		ApprovedBy:      r.ApprovedBy,
		RejectionReason: r.RejectionReason,
		CompletedAt:     r.CompletedAt,
		CreatedAt:       r.CreatedAt,
	}
}
