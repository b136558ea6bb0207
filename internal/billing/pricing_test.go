package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestCalculateTypicalOrder(t *testing.T) {
	items := []LineItem{
		{Quantity: 2, Rate: d("100.00")},
		{Quantity: 1, Rate: d("50.00")},
	}

	totals := Calculate(items, d("10"), d("5"), d("100"))

	assert.Equal(t, 3, totals.TotalQuantity)
	assert.True(t, totals.Subtotal.Equal(d("250.00")), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.DiscountAmount.Equal(d("25.00")), "discount = %s", totals.DiscountAmount)
	assert.True(t, totals.TaxAmount.Equal(d("11.25")), "tax = %s", totals.TaxAmount)
	assert.True(t, totals.TotalAmount.Equal(d("236.25")), "total = %s", totals.TotalAmount)
	assert.True(t, totals.RemainingAmount.Equal(d("136.25")), "remaining = %s", totals.RemainingAmount)
	assert.Equal(t, PaymentPartial, ClassifyPayment(totals.TotalAmount, d("100")))
}

func TestCalculateOverpaidKeepsSignedRemaining(t *testing.T) {
	items := []LineItem{
		{Quantity: 2, Rate: d("100.00")},
		{Quantity: 1, Rate: d("50.00")},
	}

	totals := Calculate(items, d("10"), d("5"), d("300"))

	// Overpayment is stored as the raw negative difference, not clamped.
	assert.True(t, totals.RemainingAmount.Equal(d("-63.75")), "remaining = %s", totals.RemainingAmount)
	assert.Equal(t, PaymentPaid, ClassifyPayment(totals.TotalAmount, d("300")))
}

func TestCalculateNoAdjustments(t *testing.T) {
	items := []LineItem{{Quantity: 4, Rate: d("12.50")}}

	totals := Calculate(items, decimal.Zero, decimal.Zero, decimal.Zero)

	assert.Equal(t, 4, totals.TotalQuantity)
	assert.True(t, totals.Subtotal.Equal(d("50.00")))
	assert.True(t, totals.DiscountAmount.IsZero())
	assert.True(t, totals.TaxAmount.IsZero())
	assert.True(t, totals.TotalAmount.Equal(d("50.00")))
	assert.True(t, totals.RemainingAmount.Equal(d("50.00")))
}

func TestCalculateEmptyItems(t *testing.T) {
	totals := Calculate(nil, d("10"), d("5"), decimal.Zero)

	assert.Equal(t, 0, totals.TotalQuantity)
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.TotalAmount.IsZero())
}

func TestCalculateInvariants(t *testing.T) {
	cases := []struct {
		name     string
		items    []LineItem
		discount string
		tax      string
		advance  string
	}{
		{"plain", []LineItem{{3, d("33.33")}}, "0", "0", "0"},
		{"discount only", []LineItem{{1, d("199.99")}, {2, d("0.01")}}, "15", "0", "50"},
		{"tax only", []LineItem{{5, d("20.00")}}, "0", "18", "0"},
		{"both", []LineItem{{2, d("75.50")}, {7, d("10.25")}}, "7.5", "12.5", "120"},
		{"full discount", []LineItem{{1, d("80.00")}}, "100", "5", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			totals := Calculate(tc.items, d(tc.discount), d(tc.tax), d(tc.advance))

			require.True(t, totals.TotalAmount.Equal(
				totals.Subtotal.Sub(totals.DiscountAmount).Add(totals.TaxAmount)),
				"total != subtotal - discount + tax")
			require.True(t, totals.DiscountAmount.Equal(
				totals.Subtotal.Mul(d(tc.discount)).Div(decimal.NewFromInt(100))))
			require.True(t, totals.TaxAmount.Equal(
				totals.Subtotal.Sub(totals.DiscountAmount).Mul(d(tc.tax)).Div(decimal.NewFromInt(100))))
			require.True(t, totals.RemainingAmount.Equal(totals.TotalAmount.Sub(d(tc.advance))))
		})
	}
}

func TestLineAmount(t *testing.T) {
	assert.True(t, LineAmount(3, d("19.99")).Equal(d("59.97")))
	assert.True(t, LineAmount(1, d("0.01")).Equal(d("0.01")))
}
