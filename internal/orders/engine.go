// Package orders implements the order processing and billing engine: order
// creation, update, status changes and deletion, each as one atomic unit of
// work that keeps the derived financial fields and the cached customer
// aggregates consistent with the line items.
package orders

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/laundromat/internal/billing"
	"github.com/example/laundromat/internal/models"
)

// createAttempts bounds retries when two transactions race to the same
// monthly sequence number.
const createAttempts = 5

const unknownServiceName = "Unknown Service"

// Engine orchestrates order mutations against a Store.
type Engine struct {
	store Store
	now   func() time.Time
}

// NewEngine constructs an Engine on top of the given store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// ItemInput is one requested service line.
type ItemInput struct {
	ServiceID uint
	Quantity  int
	Rate      decimal.Decimal
	Notes     string
}

// CreateInput carries everything needed to place an order.
type CreateInput struct {
	CustomerID         uint
	Items              []ItemInput
	DueDate            *time.Time
	DueTime            string
	PickupDate         *time.Time
	DeliveryDate       *time.Time
	Priority           string
	DiscountPercentage decimal.Decimal
	TaxPercentage      decimal.Decimal
	AdvancePaid        decimal.Decimal
	Notes              string
	CreatedBy          uint
}

// UpdateInput is a partial order update. Nil pointers leave the field alone.
// A non-nil Items slice replaces the entire item set and recomputes every
// financial field; partial item edits are not supported by design.
type UpdateInput struct {
	DueDate            *time.Time
	DueTime            *string
	PickupDate         *time.Time
	DeliveryDate       *time.Time
	Status             *string
	Priority           *string
	DiscountPercentage *decimal.Decimal
	TaxPercentage      *decimal.Decimal
	AdvancePaid        *decimal.Decimal
	Notes              *string
	Items              []ItemInput
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return validationErr("order items are required")
	}
	minRate := decimal.New(1, -2) // 0.01
	for _, item := range items {
		if item.ServiceID == 0 {
			return validationErr("service id is required for all items")
		}
		if item.Quantity < 1 {
			return validationErr("quantity must be at least 1")
		}
		if item.Rate.LessThan(minRate) {
			return validationErr("rate must be at least 0.01")
		}
	}
	return nil
}

func toLineItems(items []ItemInput) []billing.LineItem {
	lines := make([]billing.LineItem, len(items))
	for i, item := range items {
		lines[i] = billing.LineItem{Quantity: item.Quantity, Rate: item.Rate}
	}
	return lines
}

// buildItems snapshots the catalog name per item and computes the stored
// amounts. A missing service never blocks the order: the name falls back to a
// sentinel so a concurrent catalog edit cannot fail a sale.
func (e *Engine) buildItems(ctx context.Context, tx Tx, orderID uint, items []ItemInput) ([]models.OrderItem, error) {
	rows := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		name, err := tx.ServiceName(ctx, item.ServiceID)
		if errors.Is(err, ErrNotFound) {
			name = unknownServiceName
		} else if err != nil {
			return nil, err
		}
		rows = append(rows, models.OrderItem{
			OrderID:     orderID,
			ServiceID:   item.ServiceID,
			ServiceName: name,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			Amount:      billing.LineAmount(item.Quantity, item.Rate),
			Notes:       item.Notes,
		})
	}
	return rows, nil
}

// Create places a new order with its items, derived totals and a fresh order
// number, and refreshes the customer aggregates, all in one transaction.
// Retries the whole transaction on an order number collision.
func (e *Engine) Create(ctx context.Context, in CreateInput) (*models.Order, error) {
	if in.CustomerID == 0 {
		return nil, validationErr("customer id is required")
	}
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}

	var orderID uint
	for attempt := 0; attempt < createAttempts; attempt++ {
		err := e.store.Transact(ctx, func(tx Tx) error {
			number, err := nextOrderNumber(ctx, tx, e.now())
			if err != nil {
				return err
			}

			totals := billing.Calculate(toLineItems(in.Items), in.DiscountPercentage, in.TaxPercentage, in.AdvancePaid)

			order := models.Order{
				OrderNumber:        number,
				CustomerID:         in.CustomerID,
				DueDate:            in.DueDate,
				DueTime:            in.DueTime,
				PickupDate:         in.PickupDate,
				DeliveryDate:       in.DeliveryDate,
				Status:             models.OrderStatusPending,
				Priority:           priority,
				TotalQuantity:      totals.TotalQuantity,
				Subtotal:           totals.Subtotal,
				DiscountPercentage: in.DiscountPercentage,
				DiscountAmount:     totals.DiscountAmount,
				TaxPercentage:      in.TaxPercentage,
				TaxAmount:          totals.TaxAmount,
				TotalAmount:        totals.TotalAmount,
				AdvancePaid:        in.AdvancePaid,
				RemainingAmount:    totals.RemainingAmount,
				PaymentStatus:      billing.ClassifyPayment(totals.TotalAmount, in.AdvancePaid),
				Notes:              in.Notes,
				CreatedBy:          in.CreatedBy,
			}

			if err := tx.InsertOrder(ctx, &order); err != nil {
				return err
			}

			items, err := e.buildItems(ctx, tx, order.ID, in.Items)
			if err != nil {
				return err
			}
			if err := tx.InsertOrderItems(ctx, items); err != nil {
				return err
			}

			if err := refreshCustomerStats(ctx, tx, in.CustomerID); err != nil {
				return err
			}

			orderID = order.ID
			return nil
		})
		if errors.Is(err, ErrNumberConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return e.store.GetOrderByID(ctx, orderID)
	}
	return nil, ErrNumberConflict
}

// Update applies a partial update. Supplying items replaces the whole item set
// and recomputes all totals from the new items plus the current or incoming
// percentages; supplying only advance_paid recomputes remaining amount and
// payment status against the existing total. An update carrying no recognized
// fields returns the order unchanged.
func (e *Engine) Update(ctx context.Context, id uint, in UpdateInput) (*models.Order, error) {
	if in.Items != nil {
		if err := validateItems(in.Items); err != nil {
			return nil, err
		}
	}

	err := e.store.Transact(ctx, func(tx Tx) error {
		existing, err := tx.GetOrderByID(ctx, id)
		if err != nil {
			return err
		}

		fields := map[string]any{}
		if in.DueDate != nil {
			fields["due_date"] = *in.DueDate
		}
		if in.DueTime != nil {
			fields["due_time"] = *in.DueTime
		}
		if in.PickupDate != nil {
			fields["pickup_date"] = *in.PickupDate
		}
		if in.DeliveryDate != nil {
			fields["delivery_date"] = *in.DeliveryDate
		}
		if in.Status != nil {
			fields["status"] = *in.Status
		}
		if in.Priority != nil {
			fields["priority"] = *in.Priority
		}
		if in.DiscountPercentage != nil {
			fields["discount_percentage"] = *in.DiscountPercentage
		}
		if in.TaxPercentage != nil {
			fields["tax_percentage"] = *in.TaxPercentage
		}
		if in.AdvancePaid != nil {
			fields["advance_paid"] = *in.AdvancePaid
		}
		if in.Notes != nil {
			fields["notes"] = *in.Notes
		}

		if in.Items != nil {
			if err := tx.DeleteOrderItems(ctx, id); err != nil {
				return err
			}

			discountPct := existing.DiscountPercentage
			if in.DiscountPercentage != nil {
				discountPct = *in.DiscountPercentage
			}
			taxPct := existing.TaxPercentage
			if in.TaxPercentage != nil {
				taxPct = *in.TaxPercentage
			}
			advance := existing.AdvancePaid
			if in.AdvancePaid != nil {
				advance = *in.AdvancePaid
			}

			totals := billing.Calculate(toLineItems(in.Items), discountPct, taxPct, advance)
			fields["total_quantity"] = totals.TotalQuantity
			fields["subtotal"] = totals.Subtotal
			fields["discount_amount"] = totals.DiscountAmount
			fields["tax_amount"] = totals.TaxAmount
			fields["total_amount"] = totals.TotalAmount
			fields["remaining_amount"] = totals.RemainingAmount
			fields["payment_status"] = billing.ClassifyPayment(totals.TotalAmount, advance)

			items, err := e.buildItems(ctx, tx, id, in.Items)
			if err != nil {
				return err
			}
			if err := tx.InsertOrderItems(ctx, items); err != nil {
				return err
			}
		} else if in.AdvancePaid != nil {
			// Advance-only change: keep the item-derived totals untouched.
			fields["remaining_amount"] = existing.TotalAmount.Sub(*in.AdvancePaid)
			fields["payment_status"] = billing.ClassifyPayment(existing.TotalAmount, *in.AdvancePaid)
		}

		if len(fields) == 0 {
			return nil
		}

		if err := tx.UpdateOrder(ctx, id, fields); err != nil {
			return err
		}
		return refreshCustomerStats(ctx, tx, existing.CustomerID)
	})
	if err != nil {
		return nil, err
	}
	return e.store.GetOrderByID(ctx, id)
}

// UpdateStatus sets the order status. Transitions are deliberately free-form;
// the aggregates are refreshed because moving into or out of cancelled changes
// what the customer totals count.
func (e *Engine) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	switch status {
	case models.OrderStatusPending, models.OrderStatusInProgress, models.OrderStatusCompleted,
		models.OrderStatusDelivered, models.OrderStatusCancelled:
	default:
		return nil, validationErr("invalid status value")
	}

	err := e.store.Transact(ctx, func(tx Tx) error {
		existing, err := tx.GetOrderByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.UpdateOrder(ctx, id, map[string]any{"status": status}); err != nil {
			return err
		}
		return refreshCustomerStats(ctx, tx, existing.CustomerID)
	})
	if err != nil {
		return nil, err
	}
	return e.store.GetOrderByID(ctx, id)
}

// Delete removes an order and its items. Orders that already have invoices are
// protected: the caller gets ErrHasInvoices and must cancel instead. Returns
// false without error when the id does not exist.
func (e *Engine) Delete(ctx context.Context, id uint) (bool, error) {
	deleted := false
	err := e.store.Transact(ctx, func(tx Tx) error {
		existing, err := tx.GetOrderByID(ctx, id)
		if err != nil {
			return err
		}

		invoices, err := tx.InvoiceCount(ctx, id)
		if err != nil {
			return err
		}
		if invoices > 0 {
			return ErrHasInvoices
		}

		// Items first, explicitly, so behavior does not depend on the
		// schema's cascade configuration.
		if err := tx.DeleteOrderItems(ctx, id); err != nil {
			return err
		}
		if err := tx.DeleteOrder(ctx, id); err != nil {
			return err
		}
		if err := refreshCustomerStats(ctx, tx, existing.CustomerID); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// Get returns the order with its items and customer summary, or ErrNotFound.
func (e *Engine) Get(ctx context.Context, id uint) (*models.Order, error) {
	return e.store.GetOrderByID(ctx, id)
}

// List returns orders matching the filter, newest first.
func (e *Engine) List(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	return e.store.ListOrders(ctx, filter)
}

// Search matches order number, customer name or mobile.
func (e *Engine) Search(ctx context.Context, query string) ([]models.Order, error) {
	return e.store.SearchOrders(ctx, query, 20)
}

// RefreshCustomerStats recomputes and persists the cached aggregates for one
// customer outside any order mutation, e.g. for the customer stats endpoint.
func (e *Engine) RefreshCustomerStats(ctx context.Context, customerID uint) error {
	return e.store.Transact(ctx, func(tx Tx) error {
		return refreshCustomerStats(ctx, tx, customerID)
	})
}
