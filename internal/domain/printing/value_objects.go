package printing

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ReceiptLine is one rendered bill line on a receipt payload
type ReceiptLine struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
	Modifiers []string        `json:"modifiers,omitempty"`
}

// ReceiptPaymentLine is one settlement row on a receipt payload
type ReceiptPaymentLine struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// ReceiptPayload is the agent-facing JSON body of a receipt job
type ReceiptPayload struct {
	Header        []string             `json:"header,omitempty"`
	BillNumber    string               `json:"bill_number"`
	BillType      string               `json:"bill_type"`
	TableName     string               `json:"table_name,omitempty"`
	QueueNumber   *int                 `json:"queue_number,omitempty"`
	CashierName   string               `json:"cashier_name,omitempty"`
	Lines         []ReceiptLine        `json:"lines"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	Discount      decimal.Decimal      `json:"discount"`
	Tax           decimal.Decimal      `json:"tax"`
	ServiceCharge decimal.Decimal      `json:"service_charge"`
	Total         decimal.Decimal      `json:"total"`
	Payments      []ReceiptPaymentLine `json:"payments"`
	Change        decimal.Decimal      `json:"change"`
	Footer        []string             `json:"footer,omitempty"`
	Reprint       bool                 `json:"reprint,omitempty"`
}

// Encode serializes the payload for the outbox row
func (p ReceiptPayload) Encode() (json.RawMessage, error) {
	return json.Marshal(p)
}

// KitchenLine is one item on a kitchen ticket payload
type KitchenLine struct {
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	Notes     string   `json:"notes,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
}

// KitchenPayload is the agent-facing JSON body of a kitchen ticket job
type KitchenPayload struct {
	TicketID    string        `json:"ticket_id"`
	BillNumber  string        `json:"bill_number"`
	Station     string        `json:"station"`
	TableName   string        `json:"table_name,omitempty"`
	QueueNumber *int          `json:"queue_number,omitempty"`
	Lines       []KitchenLine `json:"lines"`
	Reprint     bool          `json:"reprint,omitempty"`
}

// Encode serializes the payload for the outbox row
func (p KitchenPayload) Encode() (json.RawMessage, error) {
	return json.Marshal(p)
}
