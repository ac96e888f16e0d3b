package handler

import (
	paymentapp "github.com/edgepos/backend/internal/application/payment"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles bill settlement API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *paymentapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *paymentapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// Record godoc
// @Summary      Record a payment against a bill
// @Description  Closes the bill when cumulative payments cover the total
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Param        request body payment.RecordPaymentRequest true "Payment"
// @Success      201 {object} dto.Response{data=payment.PaymentResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bills/{id}/payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bill ID format")
		return
	}
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req paymentapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.Record(c.Request.Context(), billID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, payment)
}

// ListByBill godoc
// @Summary      List payments for a bill
// @Tags         payments
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]payment.PaymentResponse}
// @Security     BearerAuth
// @Router       /bills/{id}/payments [get]
func (h *PaymentHandler) ListByBill(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bill ID format")
		return
	}

	payments, err := h.paymentService.ListByBill(c.Request.Context(), billID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payments)
}

// RefundHandler handles refund lifecycle API endpoints
type RefundHandler struct {
	BaseHandler
	refundService *paymentapp.RefundService
}

// NewRefundHandler creates a new RefundHandler
func NewRefundHandler(refundService *paymentapp.RefundService) *RefundHandler {
	return &RefundHandler{
		refundService: refundService,
	}
}

// Create godoc
// @Summary      Open a pending refund against a paid bill
// @Tags         refunds
// @Accept       json
// @Produce      json
// @Param        request body payment.CreateRefundRequest true "Refund lines"
// @Success      201 {object} dto.Response{data=payment.RefundResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /refunds [post]
func (h *RefundHandler) Create(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req paymentapp.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	refund, err := h.refundService.Create(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, refund)
}

// GetByID godoc
// @Summary      Get refund by ID
// @Tags         refunds
// @Produce      json
// @Param        id path string true "Refund ID" format(uuid)
// @Success      200 {object} dto.Response{data=payment.RefundResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /refunds/{id} [get]
func (h *RefundHandler) GetByID(c *gin.Context) {
	refundID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid refund ID format")
		return
	}

	refund, err := h.refundService.GetByID(c.Request.Context(), refundID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, refund)
}

// List godoc
// @Summary      List refunds for the store
// @Tags         refunds
// @Produce      json
// @Param        status query string false "Refund status filter"
// @Success      200 {object} dto.Response{data=[]payment.RefundResponse}
// @Security     BearerAuth
// @Router       /refunds [get]
func (h *RefundHandler) List(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	var filter paymentapp.RefundListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	refunds, err := h.refundService.ListByStatus(c.Request.Context(), storeID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, refunds)
}

// ListByBill godoc
// @Summary      List refunds for a bill
// @Tags         refunds
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]payment.RefundResponse}
// @Security     BearerAuth
// @Router       /bills/{id}/refunds [get]
func (h *RefundHandler) ListByBill(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bill ID format")
		return
	}

	refunds, err := h.refundService.ListByBill(c.Request.Context(), billID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, refunds)
}

// Approve godoc
// @Summary      Approve a pending refund
// @Description  Requires an approval code from a staff member holding the refund approval capability
// @Tags         refunds
// @Accept       json
// @Produce      json
// @Param        id path string true "Refund ID" format(uuid)
// @Param        request body payment.ApproveRefundRequest true "Approval code"
// @Success      200 {object} dto.Response{data=payment.RefundResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /refunds/{id}/approve [post]
func (h *RefundHandler) Approve(c *gin.Context) {
	refundID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid refund ID format")
		return
	}

	var req paymentapp.ApproveRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	refund, err := h.refundService.Approve(c.Request.Context(), refundID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, refund)
}

// Reject godoc
// @Summary      Reject a pending refund
// @Tags         refunds
// @Accept       json
// @Produce      json
// @Param        id path string true "Refund ID" format(uuid)
// @Param        request body payment.RejectRefundRequest true "Approval code and reason"
// @Success      200 {object} dto.Response{data=payment.RefundResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /refunds/{id}/reject [post]
func (h *RefundHandler) Reject(c *gin.Context) {
	refundID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid refund ID format")
		return
	}

	var req paymentapp.RejectRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	refund, err := h.refundService.Reject(c.Request.Context(), refundID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, refund)
}

// Complete godoc
// @Summary      Complete an approved refund
// @Description  Records the payment reversals that return money to the customer
// @Tags         refunds
// @Accept       json
// @Produce      json
// @Param        id path string true "Refund ID" format(uuid)
// @Param        request body payment.CompleteRefundRequest true "Reversals"
// @Success      200 {object} dto.Response{data=payment.RefundResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /refunds/{id}/complete [post]
func (h *RefundHandler) Complete(c *gin.Context) {
	refundID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid refund ID format")
		return
	}
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req paymentapp.CompleteRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	refund, err := h.refundService.Complete(c.Request.Context(), refundID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, refund)
}
