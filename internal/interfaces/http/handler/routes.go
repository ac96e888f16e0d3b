package handler

import (
	"github.com/edgepos/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"

	"github.com/edgepos/backend/internal/interfaces/http/middleware"
)

// BillRoutes creates the route group for bill lifecycle endpoints.
// Payment, refund, and ticket listings scoped to a bill live here too.
func BillRoutes(
	bills *BillHandler,
	payments *PaymentHandler,
	refunds *RefundHandler,
	kitchen *KitchenHandler,
	authMiddleware gin.HandlerFunc,
) *router.DomainGroup {
	group := router.NewDomainGroup("bills", "/bills")
	group.Use(authMiddleware)

	group.POST("", bills.Open)
	group.GET("", bills.List)
	group.GET("/:id", bills.GetByID)

	group.POST("/:id/items", bills.AddItem)
	group.PATCH("/:id/items/:item_id", bills.UpdateItemQuantity)
	group.POST("/:id/items/:item_id/void", bills.VoidItem)

	group.POST("/:id/discount", bills.ApplyDiscount)
	group.POST("/:id/promotions", bills.ApplyPromotions)

	group.POST("/:id/hold", bills.Hold)
	group.POST("/:id/resume", bills.Resume)
	group.POST("/:id/cancel", bills.Cancel)
	group.POST("/:id/void", bills.Void)
	group.POST("/:id/send", bills.SendToKitchen)

	group.POST("/:id/split", bills.Split)
	group.POST("/:id/merge", bills.Merge)
	group.POST("/:id/move-table", bills.MoveTable)
	group.POST("/:id/transfer", bills.TransferCashier)

	group.POST("/:id/payments", payments.Record)
	group.GET("/:id/payments", payments.ListByBill)
	group.GET("/:id/refunds", refunds.ListByBill)
	group.GET("/:id/tickets", kitchen.ListTicketsByBill)

	return group
}

// RefundRoutes creates the route group for refund lifecycle endpoints
func RefundRoutes(refunds *RefundHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("refunds", "/refunds")
	group.Use(authMiddleware)

	group.POST("", refunds.Create)
	group.GET("", refunds.List)
	group.GET("/:id", refunds.GetByID)
	group.POST("/:id/approve", refunds.Approve)
	group.POST("/:id/reject", refunds.Reject)
	group.POST("/:id/complete", refunds.Complete)

	return group
}

// KitchenRoutes creates the route group for station printers and ticket recovery
func KitchenRoutes(kitchen *KitchenHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("kitchen", "/kitchen")
	group.Use(authMiddleware)

	manage := middleware.RequireCapability("printing.manage")
	group.POST("/printers", manage, kitchen.RegisterPrinter)
	group.GET("/printers", kitchen.ListPrinters)
	group.PATCH("/printers/:id/active", manage, kitchen.SetPrinterActive)
	group.DELETE("/printers/:id", manage, kitchen.RemovePrinter)

	group.POST("/tickets/:id/retry", kitchen.RetryTicket)

	return group
}

// PrintAgentRoutes creates the route group for the terminal print agent.
// Only terminal-bound tokens are admitted.
func PrintAgentRoutes(agent *PrintAgentHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("print-agent", "/print-agent")
	group.Use(authMiddleware, middleware.RequireTerminal())

	group.GET("/jobs", agent.FetchJobs)
	group.POST("/jobs/:token/complete", agent.CompleteJob)
	group.POST("/jobs/:token/failed", agent.FailJob)

	group.GET("/tickets", agent.ClaimTickets)
	group.POST("/tickets/:id/complete", agent.CompleteTicket)
	group.POST("/tickets/:id/failed", agent.FailTicket)

	return group
}

// PrintingRoutes creates the route group for the print queue and templates
func PrintingRoutes(printing *PrintingHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("printing", "/printing")
	group.Use(authMiddleware)

	group.POST("/reprint/receipt", printing.ReprintReceipt)
	group.POST("/reprint/kitchen", printing.ReprintKitchenTicket)

	group.GET("/jobs", printing.ListJobsByStatus)
	group.GET("/jobs/by-ref/:ref_id", printing.ListJobsByRef)

	manage := middleware.RequireCapability("printing.manage")
	group.POST("/templates", manage, printing.CreateTemplate)
	group.PUT("/templates/:id", manage, printing.UpdateTemplate)
	group.GET("/templates/default/:brand_id", printing.GetDefaultTemplate)
	group.DELETE("/templates/:id", manage, printing.DeleteTemplate)

	return group
}

// SessionRoutes creates the route group for business-day sessions
func SessionRoutes(sessions *SessionHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("sessions", "/sessions")
	group.Use(authMiddleware)

	manage := middleware.RequireAnyCapability("session.manage", "session.force_close")
	group.POST("", manage, sessions.Open)
	group.GET("/current", sessions.Current)
	group.GET("/current/readiness", sessions.Readiness)
	group.POST("/current/close", manage, sessions.Close)

	group.GET("/current/checklist", sessions.Checklist)
	group.POST("/current/checklist/:id/complete", sessions.CompleteChecklistItem)

	group.GET("/alerts", sessions.Alerts)
	group.POST("/alerts/:id/acknowledge", sessions.AcknowledgeAlert)

	return group
}

// ShiftRoutes creates the route group for cashier shifts
func ShiftRoutes(shifts *ShiftHandler, authMiddleware gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("shifts", "/shifts")
	group.Use(authMiddleware)

	group.POST("", shifts.Open)
	group.GET("", shifts.ListBySession)
	group.GET("/:id", shifts.GetByID)
	group.POST("/:id/close", shifts.Close)
	group.POST("/:id/approve-variance", shifts.ApproveVariance)

	return group
}
