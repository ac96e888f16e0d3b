package handler

import (
	sessionapp "github.com/edgepos/backend/internal/application/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ShiftHandler handles cashier shift API endpoints
type ShiftHandler struct {
	BaseHandler
	shiftService *sessionapp.ShiftService
}

// NewShiftHandler creates a new ShiftHandler
func NewShiftHandler(shiftService *sessionapp.ShiftService) *ShiftHandler {
	return &ShiftHandler{
		shiftService: shiftService,
	}
}

// Open godoc
// @Summary      Open a cashier shift
// @Description  Opens a drawer for the authenticated cashier within the current session
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Param        request body session.OpenShiftRequest true "Opening cash"
// @Success      201 {object} dto.Response{data=session.ShiftResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shifts [post]
func (h *ShiftHandler) Open(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}
	cashierID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req sessionapp.OpenShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	shift, err := h.shiftService.Open(c.Request.Context(), storeID, cashierID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, shift)
}

// GetByID godoc
// @Summary      Get shift by ID
// @Tags         shifts
// @Produce      json
// @Param        id path string true "Shift ID" format(uuid)
// @Success      200 {object} dto.Response{data=session.ShiftResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shifts/{id} [get]
func (h *ShiftHandler) GetByID(c *gin.Context) {
	shiftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shift ID format")
		return
	}

	shift, err := h.shiftService.GetByID(c.Request.Context(), shiftID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shift)
}

// ListBySession godoc
// @Summary      List shifts for a session
// @Tags         shifts
// @Produce      json
// @Param        session_id query string true "Session ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]session.ShiftResponse}
// @Security     BearerAuth
// @Router       /shifts [get]
func (h *ShiftHandler) ListBySession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Query("session_id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	shifts, err := h.shiftService.ListBySession(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shifts)
}

// Close godoc
// @Summary      Close a cashier shift
// @Description  Reconciles the drawer against the counted cash and computes variance
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Param        id path string true "Shift ID" format(uuid)
// @Param        request body session.CloseShiftRequest true "Counted cash"
// @Success      200 {object} dto.Response{data=session.ShiftResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shifts/{id}/close [post]
func (h *ShiftHandler) Close(c *gin.Context) {
	shiftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shift ID format")
		return
	}
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req sessionapp.CloseShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	shift, err := h.shiftService.Close(c.Request.Context(), shiftID, actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shift)
}

// ApproveVariance godoc
// @Summary      Approve a shift's cash variance
// @Description  Requires an approval code from a staff member holding the variance approval capability
// @Tags         shifts
// @Accept       json
// @Produce      json
// @Param        id path string true "Shift ID" format(uuid)
// @Param        request body session.ApproveVarianceRequest true "Approval code"
// @Success      200 {object} dto.Response{data=session.ShiftResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /shifts/{id}/approve-variance [post]
func (h *ShiftHandler) ApproveVariance(c *gin.Context) {
	shiftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shift ID format")
		return
	}

	var req sessionapp.ApproveVarianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	shift, err := h.shiftService.ApproveVariance(c.Request.Context(), shiftID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shift)
}
