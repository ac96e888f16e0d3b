package handler

import (
	kitchenapp "github.com/edgepos/backend/internal/application/kitchen"
	printingapp "github.com/edgepos/backend/internal/application/printing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PrintAgentHandler handles the terminal print agent polling API.
// Agents authenticate with terminal-bound tokens and never see staff routes.
type PrintAgentHandler struct {
	BaseHandler
	agentService    *printingapp.AgentService
	dispatchService *kitchenapp.DispatchService
}

// NewPrintAgentHandler creates a new PrintAgentHandler
func NewPrintAgentHandler(agentService *printingapp.AgentService, dispatchService *kitchenapp.DispatchService) *PrintAgentHandler {
	return &PrintAgentHandler{
		agentService:    agentService,
		dispatchService: dispatchService,
	}
}

// FetchJobs godoc
// @Summary      Fetch pending print jobs
// @Description  Hands pending jobs to the polling agent and marks them fetched
// @Tags         print-agent
// @Produce      json
// @Param        terminal_id query string false "Terminal filter" format(uuid)
// @Param        limit query int false "Maximum jobs to fetch"
// @Success      200 {object} dto.Response{data=[]printing.JobResponse}
// @Security     BearerAuth
// @Router       /print-agent/jobs [get]
func (h *PrintAgentHandler) FetchJobs(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	var req printingapp.FetchJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	jobs, err := h.agentService.Fetch(c.Request.Context(), storeID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, jobs)
}

// CompleteJob godoc
// @Summary      Report a print job as completed
// @Tags         print-agent
// @Produce      json
// @Param        token path string true "Job token" format(uuid)
// @Success      200 {object} dto.Response{data=printing.JobResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /print-agent/jobs/{token}/complete [post]
func (h *PrintAgentHandler) CompleteJob(c *gin.Context) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		h.BadRequest(c, "Invalid job token format")
		return
	}

	job, err := h.agentService.Complete(c.Request.Context(), token)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, job)
}

// FailJob godoc
// @Summary      Report a print job failure
// @Tags         print-agent
// @Accept       json
// @Produce      json
// @Param        token path string true "Job token" format(uuid)
// @Param        request body printing.FailJobRequest true "Error report"
// @Success      200 {object} dto.Response{data=printing.JobResponse}
// @Security     BearerAuth
// @Router       /print-agent/jobs/{token}/failed [post]
func (h *PrintAgentHandler) FailJob(c *gin.Context) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		h.BadRequest(c, "Invalid job token format")
		return
	}

	var req printingapp.FailJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	job, err := h.agentService.Fail(c.Request.Context(), token, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, job)
}

// ClaimTickets godoc
// @Summary      Claim kitchen tickets for printing
// @Description  Atomically claims new tickets; concurrent agents never receive the same ticket
// @Tags         print-agent
// @Produce      json
// @Param        limit query int false "Maximum tickets to claim"
// @Success      200 {object} dto.Response{data=[]kitchen.TicketResponse}
// @Security     BearerAuth
// @Router       /print-agent/tickets [get]
func (h *PrintAgentHandler) ClaimTickets(c *gin.Context) {
	var req kitchenapp.ClaimTicketsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tickets, err := h.dispatchService.Claim(c.Request.Context(), req.Limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tickets)
}

// CompleteTicket godoc
// @Summary      Report a kitchen ticket as printed
// @Tags         print-agent
// @Accept       json
// @Produce      json
// @Param        id path string true "Ticket ID" format(uuid)
// @Param        request body kitchen.CompleteTicketRequest true "Print duration"
// @Success      200 {object} dto.Response{data=kitchen.TicketResponse}
// @Security     BearerAuth
// @Router       /print-agent/tickets/{id}/complete [post]
func (h *PrintAgentHandler) CompleteTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	var req kitchenapp.CompleteTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ticket, err := h.dispatchService.Complete(c.Request.Context(), ticketID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ticket)
}

// FailTicket godoc
// @Summary      Report a kitchen ticket print failure
// @Tags         print-agent
// @Accept       json
// @Produce      json
// @Param        id path string true "Ticket ID" format(uuid)
// @Param        request body kitchen.FailTicketRequest true "Error report"
// @Success      200 {object} dto.Response{data=kitchen.TicketResponse}
// @Security     BearerAuth
// @Router       /print-agent/tickets/{id}/failed [post]
func (h *PrintAgentHandler) FailTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID format")
		return
	}

	var req kitchenapp.FailTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ticket, err := h.dispatchService.Fail(c.Request.Context(), ticketID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ticket)
}
