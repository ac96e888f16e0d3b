package handler

import (
	kitchenapp "github.com/edgepos/backend/internal/application/kitchen"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// KitchenHandler handles kitchen ticket and station printer API endpoints
type KitchenHandler struct {
	BaseHandler
	dispatchService *kitchenapp.DispatchService
	printerService  *kitchenapp.PrinterService
}

// NewKitchenHandler creates a new KitchenHandler
func NewKitchenHandler(dispatchService *kitchenapp.DispatchService, printerService *kitchenapp.PrinterService) *KitchenHandler {
	return &KitchenHandler{
		dispatchService: dispatchService,
		printerService:  printerService,
	}
}

// SetPrinterActiveRequest toggles a printer's availability
// @Description Request body for enabling or disabling a station printer
type SetPrinterActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// ListTicketsByBill godoc
// @Summary      List kitchen tickets for a bill
// @Tags         kitchen
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]kitchen.TicketResponse}
// @Security     BearerAuth
// @Router       /bills/{id}/tickets [get]
func (h *KitchenHandler) ListTicketsByBill(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bill ID format")
		return
	}

	tickets, err := h.dispatchService.ListByBill(c.Request.Context(), billID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tickets)
}

// RetryTicket godoc
// @Summary      Re-queue a failed kitchen ticket
// @Tags         kitchen
// @Produce      json
// @Param        id path string true "Ticket ID" format(uuid)
// @Success      200 {object} dto.Response{data=kitchen.TicketResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /kitchen/tickets/{id}/retry [post]
func (h *KitchenHandler) RetryTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	ticket, err := h.dispatchService.Retry(c.Request.Context(), ticketID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ticket)
}

// RegisterPrinter godoc
// @Summary      Register a station printer
// @Tags         kitchen
// @Accept       json
// @Produce      json
// @Param        request body kitchen.RegisterPrinterRequest true "Printer configuration"
// @Success      201 {object} dto.Response{data=kitchen.PrinterResponse}
// @Security     BearerAuth
// @Router       /kitchen/printers [post]
func (h *KitchenHandler) RegisterPrinter(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	var req kitchenapp.RegisterPrinterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	printer, err := h.printerService.Register(c.Request.Context(), storeID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, printer)
}

// ListPrinters godoc
// @Summary      List station printers for the store
// @Tags         kitchen
// @Produce      json
// @Success      200 {object} dto.Response{data=[]kitchen.PrinterResponse}
// @Security     BearerAuth
// @Router       /kitchen/printers [get]
func (h *KitchenHandler) ListPrinters(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	printers, err := h.printerService.List(c.Request.Context(), storeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, printers)
}

// SetPrinterActive godoc
// @Summary      Enable or disable a station printer
// @Tags         kitchen
// @Accept       json
// @Produce      json
// @Param        id path string true "Printer ID" format(uuid)
// @Param        request body SetPrinterActiveRequest true "Active flag"
// @Success      200 {object} dto.Response{data=kitchen.PrinterResponse}
// @Security     BearerAuth
// @Router       /kitchen/printers/{id}/active [patch]
func (h *KitchenHandler) SetPrinterActive(c *gin.Context) {
	printerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid printer ID format")
		return
	}

	var req SetPrinterActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	printer, err := h.printerService.SetActive(c.Request.Context(), printerID, *req.Active)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, printer)
}

// RemovePrinter godoc
// @Summary      Remove a station printer
// @Tags         kitchen
// @Produce      json
// @Param        id path string true "Printer ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /kitchen/printers/{id} [delete]
func (h *KitchenHandler) RemovePrinter(c *gin.Context) {
	printerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid printer ID format")
		return
	}

	if err := h.printerService.Remove(c.Request.Context(), printerID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
