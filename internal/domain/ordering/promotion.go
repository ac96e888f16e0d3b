package ordering

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one active bill line flattened for promotion evaluation
type CartLine struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// Cart is the promotion evaluator's view of a bill
type Cart struct {
	StoreID  uuid.UUID
	BrandID  uuid.UUID
	BillType BillType
	Subtotal decimal.Decimal
	Lines    []CartLine
}

// PromotionResult is the evaluator's verdict, applied verbatim to the bill
type PromotionResult struct {
	DiscountAmount      decimal.Decimal
	AppliedPromotionIDs []uuid.UUID
}

// PromotionEvaluator is the external discount-rule engine. The engine
// consumes its result unmodified; rule semantics live elsewhere.
type PromotionEvaluator interface {
	Evaluate(ctx context.Context, cart Cart) (PromotionResult, error)
}

// CartFromBill flattens a bill's active lines for evaluation
func CartFromBill(bill *Bill) Cart {
	active := bill.ActiveItems()
	lines := make([]CartLine, len(active))
	for i, item := range active {
		lines[i] = CartLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
		}
	}
	return Cart{
		StoreID:  bill.StoreID,
		BrandID:  bill.BrandID,
		BillType: bill.BillType,
		Subtotal: bill.Subtotal,
		Lines:    lines,
	}
}
