package kitchen

import (
	"time"

	"github.com/google/uuid"

	"github.com/edgepos/backend/internal/domain/kitchen"
)

// ==================== Requests ====================

// ClaimTicketsRequest is the print agent's poll for work
type ClaimTicketsRequest struct {
	Limit int `form:"limit"`
}

// FailTicketRequest carries the agent's error for a failed print
type FailTicketRequest struct {
	ErrorMessage string `json:"error_message" binding:"required"`
	DurationMs   *int64 `json:"duration_ms"`
}

// CompleteTicketRequest reports a successful print
type CompleteTicketRequest struct {
	DurationMs *int64 `json:"duration_ms"`
}

// RegisterPrinterRequest configures a physical printer for a station
type RegisterPrinterRequest struct {
	BrandID  uuid.UUID `json:"brand_id" binding:"required"`
	Station  string    `json:"station" binding:"required"`
	Name     string    `json:"name" binding:"required"`
	Address  string    `json:"address" binding:"required"`
	Priority int       `json:"priority"`
}

// ==================== Responses ====================

// TicketItemResponse is one line of a claimed ticket
type TicketItemResponse struct {
	ProductName string   `json:"product_name"`
	Quantity    int      `json:"quantity"`
	Notes       string   `json:"notes,omitempty"`
	Modifiers   []string `json:"modifiers,omitempty"`
}

// TicketResponse is one kitchen ticket for the print agent or back office
type TicketResponse struct {
	ID           uuid.UUID            `json:"id"`
	BillID       uuid.UUID            `json:"bill_id"`
	BillNumber   string               `json:"bill_number"`
	TableID      *uuid.UUID           `json:"table_id,omitempty"`
	QueueNumber  *int                 `json:"queue_number,omitempty"`
	Station      string               `json:"station"`
	Status       string               `json:"status"`
	Items        []TicketItemResponse `json:"items"`
	Attempts     int                  `json:"attempts"`
	PrinterName  string               `json:"printer_name,omitempty"`
	PrinterAddr  string               `json:"printer_address,omitempty"`
	ErrorMessage string               `json:"error_message,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// PrinterResponse is one configured station printer
type PrinterResponse struct {
	ID       uuid.UUID `json:"id"`
	BrandID  uuid.UUID `json:"brand_id"`
	Station  string    `json:"station"`
	Name     string    `json:"name"`
	Address  string    `json:"address"`
	Priority int       `json:"priority"`
	Active   bool      `json:"active"`
}

// ToTicketResponse converts a domain ticket to a response. printerAddr is
// resolved at claim time so the agent knows the physical device.
func ToTicketResponse(t *kitchen.KitchenTicket, printerAddr string) TicketResponse {
	items := make([]TicketItemResponse, len(t.Items))
	for i, item := range t.Items {
		items[i] = TicketItemResponse{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Notes:       item.Notes,
			Modifiers:   item.Modifiers,
		}
	}
	return TicketResponse{
		ID:           t.ID,
		BillID:       t.BillID,
		BillNumber:   t.BillNumber,
		TableID:      t.TableID,
		QueueNumber:  t.QueueNumber,
		Station:      t.Station,
		Status:       string(t.Status),
		Items:        items,
		Attempts:     t.Attempts,
		PrinterName:  t.PrinterName,
		PrinterAddr:  printerAddr,
		ErrorMessage: t.ErrorMessage,
		CreatedAt:    t.CreatedAt,
	}
}

// ToPrinterResponse converts a domain printer to a response
func ToPrinterResponse(p *kitchen.StationPrinter) PrinterResponse {
	return PrinterResponse{
		ID:       p.ID,
		BrandID:  p.BrandID,
		Station:  p.Station,
		Name:     p.Name,
		Address:  p.Address,
		Priority: p.Priority,
		Active:   p.Active,
	}
}
