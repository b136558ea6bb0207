package orders

import "context"

// refreshCustomerStats recomputes a customer's cached total_orders/total_spent
// from the orders table and writes them back. Read-recompute-write rather than
// incremental counters, so a status flip into or out of cancelled needs no
// separate bookkeeping. Idempotent.
func refreshCustomerStats(ctx context.Context, tx Tx, customerID uint) error {
	totalOrders, totalSpent, err := tx.CustomerOrderTotals(ctx, customerID)
	if err != nil {
		return err
	}
	return tx.UpdateCustomerTotals(ctx, customerID, totalOrders, totalSpent)
}
