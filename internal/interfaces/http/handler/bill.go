package handler

import (
	orderingapp "github.com/edgepos/backend/internal/application/ordering"
	"github.com/edgepos/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BillHandler handles bill lifecycle API endpoints
type BillHandler struct {
	BaseHandler
	billService *orderingapp.BillService
}

// NewBillHandler creates a new BillHandler
func NewBillHandler(billService *orderingapp.BillService) *BillHandler {
	return &BillHandler{
		billService: billService,
	}
}

// getTerminalID extracts the terminal binding from JWT claims with a header
// fallback for development
func getTerminalID(c *gin.Context) (uuid.UUID, error) {
	if claims := middleware.GetJWTClaims(c); claims != nil {
		terminalID, err := claims.GetTerminalUUID()
		if err == nil && terminalID != uuid.Nil {
			return terminalID, nil
		}
	}
	if header := c.GetHeader("X-Terminal-ID"); header != "" {
		return uuid.Parse(header)
	}
	return uuid.Nil, nil
}

// Open godoc
// @Summary      Open a new bill
// @Description  Open a bill on the current terminal; blocked when the business day is absent or critical
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        request body ordering.OpenBillRequest true "Bill open request"
// @Success      201 {object} dto.Response{data=ordering.BillResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bills [post]
func (h *BillHandler) Open(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}
	terminalID, err := getTerminalID(c)
	if err != nil {
		h.BadRequest(c, "Invalid terminal ID")
		return
	}

	var req orderingapp.OpenBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	bill, err := h.billService.Open(c.Request.Context(), storeID, terminalID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, bill)
}

// List godoc
// @Summary      List bills
// @Description  List bills for the store with optional status and business date filters
// @Tags         bills
// @Produce      json
// @Param        status query string false "Bill status filter"
// @Param        business_date query string false "Business date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]ordering.BillResponse}
// @Security     BearerAuth
// @Router       /bills [get]
func (h *BillHandler) List(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	var filter orderingapp.BillListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	bills, err := h.billService.List(c.Request.Context(), storeID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bills)
}

// GetByID godoc
// @Summary      Get bill by ID
// @Tags         bills
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Success      200 {object} dto.Response{data=ordering.BillResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bills/{id} [get]
func (h *BillHandler) GetByID(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bill ID format")
		return
	}

	bill, err := h.billService.GetByID(c.Request.Context(), billID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bill)
}

// AddItem godoc
// @Summary      Add an item to a bill
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Param        request body ordering.AddItemRequest true "Item to add"
// @Success      200 {object} dto.Response{data=ordering.BillResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bills/{id}/items [post]
func (h *BillHandler) AddItem(c *gin.Context) {
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

	var req orderingapp.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	bill, err := h.billService.AddItem(c.Request.Context(), billID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bill)
}

// UpdateItemQuantity godoc
// @Summary      Change a bill line's quantity
// @Description  Quantity zero removes a pending line; reducing a sent line requires a void reason
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Param        item_id path string true "Item ID" format(uuid)
// @Param        request body ordering.UpdateItemQuantityRequest true "New quantity"
// @Success      200 {object} dto.Response{data=ordering.BillResponse}
// @Security     BearerAuth
// @Router       /bills/{id}/items/{item_id} [patch]
func (h *BillHandler) UpdateItemQuantity(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bill ID format")
		return
	}
	itemID, err := uuid.Parse(c.Param("item_id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req orderingapp.UpdateItemQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	bill, err := h.billService.UpdateItemQuantity(c.Request.Context(), billID, itemID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bill)
}

// VoidItem godoc
// @Summary      Void a bill line
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Param        item_id path string true "Item ID" format(uuid)
// @Param        request body ordering.VoidItemRequest true "Void reason"
// @Success      200 {object} dto.Response{data=ordering.BillResponse}
// @Security     BearerAuth
// @Router       /bills/{id}/items/{item_id}/void [post]
func (h *BillHandler) VoidItem(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bill ID format")
		return
	}
	itemID, err := uuid.Parse(c.Param("item_id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req orderingapp.VoidItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	bill, err := h.billService.VoidItem(c.Request.Context(), billID, itemID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bill)
}

// ApplyDiscount godoc
// @Summary      Apply a manual discount
// @Description  Amount and percent are mutually exclusive
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Param        request body ordering.DiscountRequest true "Discount"
// @Success      200 {object} dto.Response{data=ordering.BillResponse}
// @Security     BearerAuth
// @Router       /bills/{id}/discount [post]
func (h *BillHandler) ApplyDiscount(c *gin.Context) {
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

	var req orderingapp.DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	bill, err := h.billService.ApplyDiscount(c.Request.Context(), billID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bill)
}

// ApplyPromotions godoc
// @Summary      Re-evaluate promotions on a bill
// @Tags         bills
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Success      200 {object} dto.Response{data=ordering.BillResponse}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bills/{id}/promotions [post]
func (h *BillHandler) ApplyPromotions(c *gin.Context) {
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

	bill, err := h.billService.ApplyPromotions(c.Request.Context(), billID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bill)
}

// Hold godoc
// @Summary      Park a bill
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Param        request body ordering.HoldBillRequest true "Hold reason"
// @Success      200 {object} dto.Response{data=ordering.BillResponse}
// @Security     BearerAuth
// @Router       /bills/{id}/hold [post]
func (h *BillHandler) Hold(c *gin.Context) {
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

	var req orderingapp.HoldBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	bill, err := h.billService.Hold(c.Request.Context(), billID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bill)
}

// Resume godoc
// @Summary      Resume a held bill
// @Tags         bills
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Success      200 {object} dto.Response{data=ordering.BillResponse}
// @Security     BearerAuth
// @Router       /bills/{id}/resume [post]
func (h *BillHandler) Resume(c *gin.Context) {
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

	bill, err := h.billService.Resume(c.Request.Context(), billID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bill)
}

// Cancel godoc
// @Summary      Cancel a never-sent bill
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Param        request body ordering.CancelBillRequest true "Cancel reason"
// @Success      200 {object} dto.Response{data=ordering.BillResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bills/{id}/cancel [post]
func (h *BillHandler) Cancel(c *gin.Context) {
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

	var req orderingapp.CancelBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	bill, err := h.billService.Cancel(c.Request.Context(), billID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bill)
}

// Void godoc
// @Summary      Void a bill with elevated approval
// @Description  Requires an approval code from a staff member holding the bill void capability
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Param        request body ordering.VoidBillRequest true "Void reason and approval code"
// @Success      200 {object} dto.Response{data=ordering.BillResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bills/{id}/void [post]
func (h *BillHandler) Void(c *gin.Context) {
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

	var req orderingapp.VoidBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	bill, err := h.billService.Void(c.Request.Context(), billID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bill)
}

// SendToKitchen godoc
// @Summary      Send pending items to the kitchen
// @Description  Creates one ticket per station for pending lines and queues their prints
// @Tags         bills
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Success      200 {object} dto.Response{data=ordering.BillResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bills/{id}/send [post]
func (h *BillHandler) SendToKitchen(c *gin.Context) {
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

	bill, err := h.billService.SendToKitchen(c.Request.Context(), billID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bill)
}

// Split godoc
// @Summary      Split selected quantities onto a new bill
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Source bill ID" format(uuid)
// @Param        request body ordering.SplitBillRequest true "Lines to split off"
// @Success      201 {object} dto.Response{data=ordering.SplitBillResponse}
// @Security     BearerAuth
// @Router       /bills/{id}/split [post]
func (h *BillHandler) Split(c *gin.Context) {
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

	var req orderingapp.SplitBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.billService.Split(c.Request.Context(), billID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// Merge godoc
// @Summary      Merge a source bill into this bill
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Target bill ID" format(uuid)
// @Param        request body ordering.MergeBillsRequest true "Source bill"
// @Success      200 {object} dto.Response{data=ordering.BillResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bills/{id}/merge [post]
func (h *BillHandler) Merge(c *gin.Context) {
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

	var req orderingapp.MergeBillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	bill, err := h.billService.Merge(c.Request.Context(), billID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bill)
}

// MoveTable godoc
// @Summary      Move a bill to another table
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Param        request body ordering.MoveTableRequest true "Destination table"
// @Success      200 {object} dto.Response{data=ordering.BillResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bills/{id}/move-table [post]
func (h *BillHandler) MoveTable(c *gin.Context) {
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

	var req orderingapp.MoveTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	bill, err := h.billService.MoveTable(c.Request.Context(), billID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bill)
}

// TransferCashier godoc
// @Summary      Hand a bill to another cashier
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Param        request body ordering.TransferCashierRequest true "New cashier"
// @Success      200 {object} dto.Response{data=ordering.BillResponse}
// @Security     BearerAuth
// @Router       /bills/{id}/transfer [post]
func (h *BillHandler) TransferCashier(c *gin.Context) {
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

	var req orderingapp.TransferCashierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	bill, err := h.billService.TransferCashier(c.Request.Context(), billID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bill)
}
