package orders

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/laundromat/internal/models"
)

// fakeStore is an in-memory Store with real transaction semantics: Transact
// snapshots all tables and restores them when fn fails, so rollback behavior
// can be exercised without a database. Operations can be failed on demand via
// failOn, and countHook can skew the order-number prefix count to provoke
// duplicate-number collisions.
type fakeStore struct {
	mu sync.Mutex

	orders    map[uint]models.Order
	items     map[uint][]models.OrderItem
	customers map[uint]models.Customer
	services  map[uint]models.Service
	invoices  map[uint]int64

	nextOrderID uint
	nextItemID  uint

	failOn    map[string]error
	countHook func(prefix string, real int64) int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:    map[uint]models.Order{},
		items:     map[uint][]models.OrderItem{},
		customers: map[uint]models.Customer{},
		services:  map[uint]models.Service{},
		invoices:  map[uint]int64{},
		failOn:    map[string]error{},
	}
}

func (s *fakeStore) addCustomer(id uint, name string) {
	s.customers[id] = models.Customer{
		BaseModel:  models.BaseModel{ID: id},
		Name:       name,
		TotalSpent: decimal.Zero,
	}
}

func (s *fakeStore) addService(id uint, name string) {
	s.services[id] = models.Service{BaseModel: models.BaseModel{ID: id}, Name: name}
}

type snapshot struct {
	orders    map[uint]models.Order
	items     map[uint][]models.OrderItem
	customers map[uint]models.Customer
	invoices  map[uint]int64

	nextOrderID uint
	nextItemID  uint
}

func (s *fakeStore) snapshot() snapshot {
	snap := snapshot{
		orders:      make(map[uint]models.Order, len(s.orders)),
		items:       make(map[uint][]models.OrderItem, len(s.items)),
		customers:   make(map[uint]models.Customer, len(s.customers)),
		invoices:    make(map[uint]int64, len(s.invoices)),
		nextOrderID: s.nextOrderID,
		nextItemID:  s.nextItemID,
	}
	for id, o := range s.orders {
		snap.orders[id] = o
	}
	for id, rows := range s.items {
		snap.items[id] = append([]models.OrderItem(nil), rows...)
	}
	for id, c := range s.customers {
		snap.customers[id] = c
	}
	for id, n := range s.invoices {
		snap.invoices[id] = n
	}
	return snap
}

func (s *fakeStore) restore(snap snapshot) {
	s.orders = snap.orders
	s.items = snap.items
	s.customers = snap.customers
	s.invoices = snap.invoices
	s.nextOrderID = snap.nextOrderID
	s.nextItemID = snap.nextItemID
}

func (s *fakeStore) Transact(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&fakeTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// fakeTx runs against the store's tables without re-locking; the surrounding
// Transact holds the mutex for the whole unit.
type fakeTx struct {
	s *fakeStore
}

func (t *fakeTx) fail(op string) error {
	if err, ok := t.s.failOn[op]; ok {
		return err
	}
	return nil
}

func (t *fakeTx) CountOrdersWithPrefix(ctx context.Context, prefix string) (int64, error) {
	if err := t.fail("CountOrdersWithPrefix"); err != nil {
		return 0, err
	}
	var count int64
	for _, o := range t.s.orders {
		if strings.HasPrefix(o.OrderNumber, prefix) {
			count++
		}
	}
	if t.s.countHook != nil {
		return t.s.countHook(prefix, count), nil
	}
	return count, nil
}

func (t *fakeTx) InsertOrder(ctx context.Context, order *models.Order) error {
	if err := t.fail("InsertOrder"); err != nil {
		return err
	}
	for _, o := range t.s.orders {
		if o.OrderNumber == order.OrderNumber {
			return ErrNumberConflict
		}
	}
	t.s.nextOrderID++
	order.ID = t.s.nextOrderID
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	t.s.orders[order.ID] = *order
	return nil
}

func (t *fakeTx) InsertOrderItems(ctx context.Context, items []models.OrderItem) error {
	if err := t.fail("InsertOrderItems"); err != nil {
		return err
	}
	for _, item := range items {
		t.s.nextItemID++
		item.ID = t.s.nextItemID
		item.CreatedAt = time.Now()
		t.s.items[item.OrderID] = append(t.s.items[item.OrderID], item)
	}
	return nil
}

func (t *fakeTx) DeleteOrderItems(ctx context.Context, orderID uint) error {
	if err := t.fail("DeleteOrderItems"); err != nil {
		return err
	}
	delete(t.s.items, orderID)
	return nil
}

func (t *fakeTx) GetOrderByID(ctx context.Context, id uint) (*models.Order, error) {
	order, ok := t.s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	order.Items = append([]models.OrderItem(nil), t.s.items[id]...)
	if customer, ok := t.s.customers[order.CustomerID]; ok {
		c := customer
		order.Customer = &c
	}
	return &order, nil
}

func (t *fakeTx) UpdateOrder(ctx context.Context, id uint, fields map[string]any) error {
	if err := t.fail("UpdateOrder"); err != nil {
		return err
	}
	order, ok := t.s.orders[id]
	if !ok {
		return ErrNotFound
	}
	for key, value := range fields {
		switch key {
		case "due_date":
			v := value.(time.Time)
			order.DueDate = &v
		case "due_time":
			order.DueTime = value.(string)
		case "pickup_date":
			v := value.(time.Time)
			order.PickupDate = &v
		case "delivery_date":
			v := value.(time.Time)
			order.DeliveryDate = &v
		case "status":
			order.Status = value.(string)
		case "priority":
			order.Priority = value.(string)
		case "discount_percentage":
			order.DiscountPercentage = value.(decimal.Decimal)
		case "tax_percentage":
			order.TaxPercentage = value.(decimal.Decimal)
		case "advance_paid":
			order.AdvancePaid = value.(decimal.Decimal)
		case "notes":
			order.Notes = value.(string)
		case "total_quantity":
			order.TotalQuantity = value.(int)
		case "subtotal":
			order.Subtotal = value.(decimal.Decimal)
		case "discount_amount":
			order.DiscountAmount = value.(decimal.Decimal)
		case "tax_amount":
			order.TaxAmount = value.(decimal.Decimal)
		case "total_amount":
			order.TotalAmount = value.(decimal.Decimal)
		case "remaining_amount":
			order.RemainingAmount = value.(decimal.Decimal)
		case "payment_status":
			order.PaymentStatus = value.(string)
		}
	}
	order.UpdatedAt = time.Now()
	t.s.orders[id] = order
	return nil
}

func (t *fakeTx) DeleteOrder(ctx context.Context, id uint) error {
	if err := t.fail("DeleteOrder"); err != nil {
		return err
	}
	delete(t.s.orders, id)
	return nil
}

func (t *fakeTx) ServiceName(ctx context.Context, serviceID uint) (string, error) {
	service, ok := t.s.services[serviceID]
	if !ok {
		return "", ErrNotFound
	}
	return service.Name, nil
}

func (t *fakeTx) InvoiceCount(ctx context.Context, orderID uint) (int64, error) {
	return t.s.invoices[orderID], nil
}

func (t *fakeTx) CustomerOrderTotals(ctx context.Context, customerID uint) (int64, decimal.Decimal, error) {
	var count int64
	spent := decimal.Zero
	for _, o := range t.s.orders {
		if o.CustomerID == customerID && o.Status != models.OrderStatusCancelled {
			count++
			spent = spent.Add(o.TotalAmount)
		}
	}
	return count, spent, nil
}

func (t *fakeTx) UpdateCustomerTotals(ctx context.Context, customerID uint, totalOrders int64, totalSpent decimal.Decimal) error {
	if err := t.fail("UpdateCustomerTotals"); err != nil {
		return err
	}
	customer, ok := t.s.customers[customerID]
	if !ok {
		return nil
	}
	customer.TotalOrders = int(totalOrders)
	customer.TotalSpent = totalSpent
	t.s.customers[customerID] = customer
	return nil
}

// Read-path Store methods delegate to a tx view under the lock.

func (s *fakeStore) view() *fakeTx { return &fakeTx{s: s} }

func (s *fakeStore) CountOrdersWithPrefix(ctx context.Context, prefix string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().CountOrdersWithPrefix(ctx, prefix)
}

func (s *fakeStore) InsertOrder(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().InsertOrder(ctx, order)
}

func (s *fakeStore) InsertOrderItems(ctx context.Context, items []models.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().InsertOrderItems(ctx, items)
}

func (s *fakeStore) DeleteOrderItems(ctx context.Context, orderID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().DeleteOrderItems(ctx, orderID)
}

func (s *fakeStore) GetOrderByID(ctx context.Context, id uint) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().GetOrderByID(ctx, id)
}

func (s *fakeStore) UpdateOrder(ctx context.Context, id uint, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().UpdateOrder(ctx, id, fields)
}

func (s *fakeStore) DeleteOrder(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().DeleteOrder(ctx, id)
}

func (s *fakeStore) ServiceName(ctx context.Context, serviceID uint) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().ServiceName(ctx, serviceID)
}

func (s *fakeStore) InvoiceCount(ctx context.Context, orderID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().InvoiceCount(ctx, orderID)
}

func (s *fakeStore) CustomerOrderTotals(ctx context.Context, customerID uint) (int64, decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().CustomerOrderTotals(ctx, customerID)
}

func (s *fakeStore) UpdateCustomerTotals(ctx context.Context, customerID uint, totalOrders int64, totalSpent decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().UpdateCustomerTotals(ctx, customerID, totalOrders, totalSpent)
}

// matchesSearch mirrors the case-insensitive match over order number, customer
// name and mobile used by the SQL store.
func (s *fakeStore) matchesSearch(o models.Order, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(o.OrderNumber), q) {
		return true
	}
	customer, ok := s.customers[o.CustomerID]
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(customer.Name), q) ||
		strings.Contains(strings.ToLower(customer.Mobile), q)
}

func (s *fakeStore) attachCustomer(o models.Order) models.Order {
	if customer, ok := s.customers[o.CustomerID]; ok {
		c := customer
		o.Customer = &c
	}
	return o
}

// Newest first; ties broken by insertion order.
func sortNewestFirst(result []models.Order) {
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
}

func (s *fakeStore) ListOrders(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.Order
	for _, o := range s.orders {
		if filter.Search != "" && !s.matchesSearch(o, filter.Search) {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && o.Priority != filter.Priority {
			continue
		}
		if filter.PaymentStatus != "" && o.PaymentStatus != filter.PaymentStatus {
			continue
		}
		if filter.CustomerID != 0 && o.CustomerID != filter.CustomerID {
			continue
		}
		if filter.FromDate != nil && o.CreatedAt.Before(*filter.FromDate) {
			continue
		}
		if filter.ToDate != nil && !o.CreatedAt.Before(filter.ToDate.AddDate(0, 0, 1)) {
			continue
		}
		if filter.DueDate != nil && (o.DueDate == nil || !o.DueDate.Equal(*filter.DueDate)) {
			continue
		}
		result = append(result, s.attachCustomer(o))
	}

	sortNewestFirst(result)
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *fakeStore) SearchOrders(ctx context.Context, query string, limit int) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.Order
	for _, o := range s.orders {
		if !s.matchesSearch(o, query) {
			continue
		}
		result = append(result, s.attachCustomer(o))
	}

	sortNewestFirst(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
