// Package billing holds the pure money math for orders: totals derivation and
// payment status classification. Nothing here touches the database, so the
// formulas can be exercised directly in tests.
package billing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineItem is the quantity/rate pair the calculator works from.
type LineItem struct {
	Quantity int
	Rate     decimal.Decimal
}

// Totals is the full set of derived financial fields stored on an order.
type Totals struct {
	TotalQuantity   int
	Subtotal        decimal.Decimal
	DiscountAmount  decimal.Decimal
	TaxAmount       decimal.Decimal
	TotalAmount     decimal.Decimal
	RemainingAmount decimal.Decimal
}

// Calculate derives order totals from the line items and the order-level
// adjustments. Discount applies to the subtotal, tax applies after discount,
// and the remaining amount is the signed difference against the advance —
// negative when overpaid, deliberately not clamped.
//
// Input is assumed sanitized (quantity >= 1, rate >= 0.01); validation happens
// at the request boundary.
func Calculate(items []LineItem, discountPct, taxPct, advancePaid decimal.Decimal) Totals {
	var totalQty int
	subtotal := decimal.Zero

	for _, item := range items {
		totalQty += item.Quantity
		subtotal = subtotal.Add(item.Rate.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	discountAmount := subtotal.Mul(discountPct).Div(hundred)
	afterDiscount := subtotal.Sub(discountAmount)
	taxAmount := afterDiscount.Mul(taxPct).Div(hundred)
	totalAmount := afterDiscount.Add(taxAmount)

	return Totals{
		TotalQuantity:   totalQty,
		Subtotal:        subtotal,
		DiscountAmount:  discountAmount,
		TaxAmount:       taxAmount,
		TotalAmount:     totalAmount,
		RemainingAmount: totalAmount.Sub(advancePaid),
	}
}

// LineAmount computes the stored amount for a single item.
func LineAmount(quantity int, rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(int64(quantity)))
}
