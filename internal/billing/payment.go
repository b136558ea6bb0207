package billing

import "github.com/shopspring/decimal"

// Payment statuses derived from how much of the total has been prepaid.
const (
	PaymentPending = "pending"
	PaymentPartial = "partial"
	PaymentPaid    = "paid"
)

// ClassifyPayment maps (total, advance) onto the three-way payment status.
// Total function: every input pair lands in exactly one bucket.
func ClassifyPayment(totalAmount, advancePaid decimal.Decimal) string {
	switch {
	case advancePaid.LessThanOrEqual(decimal.Zero):
		return PaymentPending
	case advancePaid.GreaterThanOrEqual(totalAmount):
		return PaymentPaid
	default:
		return PaymentPartial
	}
}
