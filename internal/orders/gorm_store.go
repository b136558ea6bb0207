package orders

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/laundromat/internal/models"
)

// gormTx implements Tx over a *gorm.DB, which may be a live transaction or the
// root handle for the read paths.
type gormTx struct {
	db *gorm.DB
}

// gormStore implements Store on PostgreSQL via GORM.
type gormStore struct {
	gormTx
}

// NewGormStore wraps a gorm handle as the engine's Store. The handle must be
// opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{gormTx{db: db}}
}

func (s *gormStore) Transact(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

func (t *gormTx) CountOrdersWithPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := t.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_number LIKE ?", prefix+"%").
		Count(&count).Error
	return count, err
}

func (t *gormTx) InsertOrder(ctx context.Context, order *models.Order) error {
	if err := t.db.WithContext(ctx).Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrNumberConflict
		}
		return err
	}
	return nil
}

func (t *gormTx) InsertOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return t.db.WithContext(ctx).Create(&items).Error
}

func (t *gormTx) DeleteOrderItems(ctx context.Context, orderID uint) error {
	return t.db.WithContext(ctx).Delete(&models.OrderItem{}, "order_id = ?", orderID).Error
}

func (t *gormTx) GetOrderByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := t.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Customer").
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (t *gormTx) UpdateOrder(ctx context.Context, id uint, fields map[string]any) error {
	return t.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (t *gormTx) DeleteOrder(ctx context.Context, id uint) error {
	return t.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id).Error
}

func (t *gormTx) ServiceName(ctx context.Context, serviceID uint) (string, error) {
	var name string
	err := t.db.WithContext(ctx).Model(&models.Service{}).
		Select("name").
		Where("id = ?", serviceID).
		Take(&name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	return name, err
}

func (t *gormTx) InvoiceCount(ctx context.Context, orderID uint) (int64, error) {
	var count int64
	err := t.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	return count, err
}

func (t *gormTx) CustomerOrderTotals(ctx context.Context, customerID uint) (int64, decimal.Decimal, error) {
	var row struct {
		TotalOrders int64
		TotalSpent  decimal.Decimal
	}
	err := t.db.WithContext(ctx).Model(&models.Order{}).
		Select("COUNT(*) AS total_orders, COALESCE(SUM(total_amount), 0) AS total_spent").
		Where("customer_id = ? AND status <> ?", customerID, models.OrderStatusCancelled).
		Scan(&row).Error
	return row.TotalOrders, row.TotalSpent, err
}

func (t *gormTx) UpdateCustomerTotals(ctx context.Context, customerID uint, totalOrders int64, totalSpent decimal.Decimal) error {
	return t.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ?", customerID).
		Updates(map[string]any{
			"total_orders": totalOrders,
			"total_spent":  totalSpent,
		}).Error
}

func (s *gormStore) ListOrders(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{}).Preload("Customer")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.
			Joins("LEFT JOIN customers ON customers.id = orders.customer_id").
			Where("orders.order_number ILIKE ? OR customers.name ILIKE ? OR customers.mobile ILIKE ?",
				pattern, pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("orders.status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("orders.priority = ?", filter.Priority)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("orders.payment_status = ?", filter.PaymentStatus)
	}
	if filter.CustomerID != 0 {
		query = query.Where("orders.customer_id = ?", filter.CustomerID)
	}
	if filter.FromDate != nil {
		query = query.Where("orders.created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("orders.created_at < ?", filter.ToDate.AddDate(0, 0, 1))
	}
	if filter.DueDate != nil {
		query = query.Where("orders.due_date = ?", *filter.DueDate)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var result []models.Order
	err := query.Order("orders.created_at DESC").Limit(limit).Find(&result).Error
	return result, err
}

func (s *gormStore) SearchOrders(ctx context.Context, query string, limit int) ([]models.Order, error) {
	pattern := "%" + query + "%"
	var result []models.Order
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Preload("Customer").
		Joins("LEFT JOIN customers ON customers.id = orders.customer_id").
		Where("orders.order_number ILIKE ? OR customers.name ILIKE ? OR customers.mobile ILIKE ?",
			pattern, pattern, pattern).
		Order("orders.created_at DESC").
		Limit(limit).
		Find(&result).Error
	return result, err
}
