package handler

import (
	printingapp "github.com/edgepos/backend/internal/application/printing"
	"github.com/edgepos/backend/internal/domain/printing"
	"github.com/edgepos/backend/internal/domain/shared"
	"github.com/edgepos/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PrintingHandler handles the print queue and receipt template API endpoints
type PrintingHandler struct {
	BaseHandler
	queueService    *printingapp.QueueService
	agentService    *printingapp.AgentService
	templateService *printingapp.TemplateService
}

// NewPrintingHandler creates a new PrintingHandler
func NewPrintingHandler(
	queueService *printingapp.QueueService,
	agentService *printingapp.AgentService,
	templateService *printingapp.TemplateService,
) *PrintingHandler {
	return &PrintingHandler{
		queueService:    queueService,
		agentService:    agentService,
		templateService: templateService,
	}
}

// ReprintReceipt godoc
// @Summary      Re-queue a paid bill's receipt
// @Tags         printing
// @Accept       json
// @Produce      json
// @Param        request body printing.ReprintReceiptRequest true "Bill and copy count"
// @Success      201 {object} dto.Response{data=printing.JobResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /printing/reprint/receipt [post]
func (h *PrintingHandler) ReprintReceipt(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req printingapp.ReprintReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	job, err := h.queueService.EnqueueReceipt(c.Request.Context(), req.BillID, actorID, true, req.Copies)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, job)
}

// ReprintKitchenTicket godoc
// @Summary      Re-queue a kitchen ticket print
// @Tags         printing
// @Accept       json
// @Produce      json
// @Param        request body printing.ReprintKitchenRequest true "Ticket"
// @Success      201 {object} dto.Response{data=printing.JobResponse}
// @Security     BearerAuth
// @Router       /printing/reprint/kitchen [post]
func (h *PrintingHandler) ReprintKitchenTicket(c *gin.Context) {
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req printingapp.ReprintKitchenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	job, err := h.queueService.EnqueueKitchenTicket(c.Request.Context(), req.TicketID, actorID, true)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, job)
}

// ListJobsByStatus godoc
// @Summary      List print jobs by status
// @Tags         printing
// @Produce      json
// @Param        status query string true "Job status" Enums(pending, fetched, printing, completed, failed)
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]printing.JobResponse}
// @Security     BearerAuth
// @Router       /printing/jobs [get]
func (h *PrintingHandler) ListJobsByStatus(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	status := printing.JobStatus(c.Query("status"))
	if !status.IsValid() {
		h.BadRequest(c, "Invalid job status")
		return
	}

	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.Filter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		OrderBy:  listReq.OrderBy,
		OrderDir: listReq.OrderDir,
	}

	jobs, err := h.agentService.ListByStatus(c.Request.Context(), storeID, status, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, jobs)
}

// ListJobsByRef godoc
// @Summary      List print jobs for a bill or ticket
// @Tags         printing
// @Produce      json
// @Param        ref_id path string true "Bill or ticket ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]printing.JobResponse}
// @Security     BearerAuth
// @Router       /printing/jobs/by-ref/{ref_id} [get]
func (h *PrintingHandler) ListJobsByRef(c *gin.Context) {
	refID, err := uuid.Parse(c.Param("ref_id"))
	if err != nil {
		h.BadRequest(c, "Invalid reference ID format")
		return
	}

	jobs, err := h.queueService.ListByRef(c.Request.Context(), refID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, jobs)
}

// CreateTemplate godoc
// @Summary      Create a brand receipt template
// @Tags         printing
// @Accept       json
// @Produce      json
// @Param        request body printing.UpsertTemplateRequest true "Template"
// @Success      201 {object} dto.Response{data=printing.TemplateResponse}
// @Security     BearerAuth
// @Router       /printing/templates [post]
func (h *PrintingHandler) CreateTemplate(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	var req printingapp.UpsertTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	template, err := h.templateService.Create(c.Request.Context(), storeID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, template)
}

// UpdateTemplate godoc
// @Summary      Update a brand receipt template
// @Tags         printing
// @Accept       json
// @Produce      json
// @Param        id path string true "Template ID" format(uuid)
// @Param        request body printing.UpsertTemplateRequest true "Template"
// @Success      200 {object} dto.Response{data=printing.TemplateResponse}
// @Security     BearerAuth
// @Router       /printing/templates/{id} [put]
func (h *PrintingHandler) UpdateTemplate(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID format")
		return
	}

	var req printingapp.UpsertTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	template, err := h.templateService.Update(c.Request.Context(), templateID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, template)
}

// GetDefaultTemplate godoc
// @Summary      Get the default receipt template for a brand
// @Tags         printing
// @Produce      json
// @Param        brand_id path string true "Brand ID" format(uuid)
// @Success      200 {object} dto.Response{data=printing.TemplateResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /printing/templates/default/{brand_id} [get]
func (h *PrintingHandler) GetDefaultTemplate(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}
	brandID, err := uuid.Parse(c.Param("brand_id"))
	if err != nil {
		h.BadRequest(c, "Invalid brand ID format")
		return
	}

	template, err := h.templateService.GetDefault(c.Request.Context(), storeID, brandID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, template)
}

// DeleteTemplate godoc
// @Summary      Delete a receipt template
// @Tags         printing
// @Produce      json
// @Param        id path string true "Template ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /printing/templates/{id} [delete]
func (h *PrintingHandler) DeleteTemplate(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID format")
		return
	}

	if err := h.templateService.Delete(c.Request.Context(), templateID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
