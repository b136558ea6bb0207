package orders

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/laundromat/internal/models"
)

// Tx is the storage view the engine works against inside a transaction. The
// same methods back the non-transactional read path on Store.
type Tx interface {
	CountOrdersWithPrefix(ctx context.Context, prefix string) (int64, error)
	InsertOrder(ctx context.Context, order *models.Order) error
	InsertOrderItems(ctx context.Context, items []models.OrderItem) error
	DeleteOrderItems(ctx context.Context, orderID uint) error
	// GetOrderByID returns the order with its items (in insertion order) and
	// customer summary, or ErrNotFound.
	GetOrderByID(ctx context.Context, id uint) (*models.Order, error)
	UpdateOrder(ctx context.Context, id uint, fields map[string]any) error
	DeleteOrder(ctx context.Context, id uint) error
	// ServiceName resolves the current catalog display name for a service, or
	// ErrNotFound when the service does not exist.
	ServiceName(ctx context.Context, serviceID uint) (string, error)
	InvoiceCount(ctx context.Context, orderID uint) (int64, error)
	// CustomerOrderTotals recomputes the cached customer aggregates from the
	// orders table, excluding cancelled orders.
	CustomerOrderTotals(ctx context.Context, customerID uint) (int64, decimal.Decimal, error)
	UpdateCustomerTotals(ctx context.Context, customerID uint, totalOrders int64, totalSpent decimal.Decimal) error
}

// Store is the single persistence seam of the order engine. Transact runs fn
// as one atomic unit: any error rolls the whole unit back.
type Store interface {
	Tx
	Transact(ctx context.Context, fn func(tx Tx) error) error
	ListOrders(ctx context.Context, filter ListFilter) ([]models.Order, error)
	SearchOrders(ctx context.Context, query string, limit int) ([]models.Order, error)
}

// ListFilter narrows the order list. Zero values mean "no filter".
type ListFilter struct {
	Search        string
	Status        string
	Priority      string
	PaymentStatus string
	CustomerID    uint
	FromDate      *time.Time
	ToDate        *time.Time
	DueDate       *time.Time
	Limit         int
}
