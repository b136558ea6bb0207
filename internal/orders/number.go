package orders

import (
	"context"
	"fmt"
	"time"
)

const orderNumberPrefix = "ORD"

// monthPrefix returns the ORD<YYYY><MM> prefix for the given time.
func monthPrefix(t time.Time) string {
	return orderNumberPrefix + t.Format("200601")
}

// nextOrderNumber produces the next monthly-scoped order number, e.g.
// ORD2026080042. The sequence is derived from a count inside the transaction,
// so two concurrent creates can still race to the same number; the unique
// index on order_number catches that and the create path retries.
func nextOrderNumber(ctx context.Context, tx Tx, now time.Time) (string, error) {
	prefix := monthPrefix(now)
	count, err := tx.CountOrdersWithPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}
