package handler

import (
	sessionapp "github.com/edgepos/backend/internal/application/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHandler handles business-day session API endpoints
type SessionHandler struct {
	BaseHandler
	sessionService *sessionapp.SessionService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessionService *sessionapp.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

// Open godoc
// @Summary      Open the business day
// @Description  Opens a session for the given business date; only one session can be current per store
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        request body session.OpenSessionRequest true "Business date"
// @Success      201 {object} dto.Response{data=session.SessionResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sessions [post]
func (h *SessionHandler) Open(c *gin.Context) {
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

	var req sessionapp.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sess, err := h.sessionService.Open(c.Request.Context(), storeID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, sess)
}

// Current godoc
// @Summary      Get the current session
// @Tags         sessions
// @Produce      json
// @Success      200 {object} dto.Response{data=session.SessionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sessions/current [get]
func (h *SessionHandler) Current(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	sess, err := h.sessionService.Current(c.Request.Context(), storeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sess)
}

// Readiness godoc
// @Summary      Report end-of-day readiness
// @Description  Lists blocking and warning issues that stand between the session and a clean close
// @Tags         sessions
// @Produce      json
// @Success      200 {object} dto.Response{data=session.ReadinessResponse}
// @Security     BearerAuth
// @Router       /sessions/current/readiness [get]
func (h *SessionHandler) Readiness(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	report, err := h.sessionService.Readiness(c.Request.Context(), storeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, report)
}

// Close godoc
// @Summary      Close the business day
// @Description  Force closing past blocking issues requires an elevated approval code
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        request body session.CloseSessionRequest true "Close options"
// @Success      200 {object} dto.Response{data=session.SessionResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sessions/current/close [post]
func (h *SessionHandler) Close(c *gin.Context) {
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

	var req sessionapp.CloseSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sess, err := h.sessionService.Close(c.Request.Context(), storeID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sess)
}

// Checklist godoc
// @Summary      List the end-of-day checklist
// @Tags         sessions
// @Produce      json
// @Success      200 {object} dto.Response{data=[]session.ChecklistItemResponse}
// @Security     BearerAuth
// @Router       /sessions/current/checklist [get]
func (h *SessionHandler) Checklist(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	items, err := h.sessionService.Checklist(c.Request.Context(), storeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, items)
}

// CompleteChecklistItem godoc
// @Summary      Complete an end-of-day checklist item
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Checklist item ID" format(uuid)
// @Success      200 {object} dto.Response{data=session.ChecklistItemResponse}
// @Security     BearerAuth
// @Router       /sessions/current/checklist/{id}/complete [post]
func (h *SessionHandler) CompleteChecklistItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid checklist item ID format")
		return
	}
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	item, err := h.sessionService.CompleteChecklistItem(c.Request.Context(), itemID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// Alerts godoc
// @Summary      List session alerts
// @Tags         sessions
// @Produce      json
// @Success      200 {object} dto.Response{data=[]session.AlertResponse}
// @Security     BearerAuth
// @Router       /sessions/alerts [get]
func (h *SessionHandler) Alerts(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	alerts, err := h.sessionService.Alerts(c.Request.Context(), storeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, alerts)
}

// AcknowledgeAlert godoc
// @Summary      Acknowledge a session alert
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Alert ID" format(uuid)
// @Success      200 {object} dto.Response{data=session.AlertResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sessions/alerts/{id}/acknowledge [post]
func (h *SessionHandler) AcknowledgeAlert(c *gin.Context) {
	alertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid alert ID format")
		return
	}
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	alert, err := h.sessionService.AcknowledgeAlert(c.Request.Context(), alertID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, alert)
}
