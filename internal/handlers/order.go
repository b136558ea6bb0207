package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/example/laundromat/internal/middleware"
	"github.com/example/laundromat/internal/models"
	"github.com/example/laundromat/internal/orders"
)

// OrderHandler is the HTTP surface of the order engine. All validation of the
// request shape happens here; the engine assumes sanitized input.
type OrderHandler struct {
	engine *orders.Engine
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(engine *orders.Engine) *OrderHandler {
	return &OrderHandler{engine: engine}
}

const dateLayout = "2006-01-02"

var validPriorities = map[string]bool{
	models.PriorityLow:    true,
	models.PriorityNormal: true,
	models.PriorityHigh:   true,
	models.PriorityUrgent: true,
}

var validStatuses = map[string]bool{
	models.OrderStatusPending:    true,
	models.OrderStatusInProgress: true,
	models.OrderStatusCompleted:  true,
	models.OrderStatusDelivered:  true,
	models.OrderStatusCancelled:  true,
}

type orderItemRequest struct {
	ServiceID uint            `json:"service_id"`
	Quantity  int             `json:"quantity"`
	Rate      decimal.Decimal `json:"rate"`
	Notes     string          `json:"notes"`
}

type createOrderRequest struct {
	CustomerID         uint               `json:"customer_id"`
	Items              []orderItemRequest `json:"items"`
	DueDate            string             `json:"due_date"`
	DueTime            string             `json:"due_time"`
	PickupDate         string             `json:"pickup_date"`
	DeliveryDate       string             `json:"delivery_date"`
	Priority           string             `json:"priority"`
	DiscountPercentage decimal.Decimal    `json:"discount_percentage"`
	TaxPercentage      decimal.Decimal    `json:"tax_percentage"`
	AdvancePaid        decimal.Decimal    `json:"advance_paid"`
	Notes              string             `json:"notes"`
}

// mapEngineError translates engine errors into HTTP ones. Unrecognized errors
// pass through to the global error handler, which hides details in production.
func mapEngineError(err error) error {
	var verr *orders.ValidationError
	switch {
	case errors.As(err, &verr):
		return fiber.NewError(fiber.StatusBadRequest, verr.Msg)
	case errors.Is(err, orders.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	case errors.Is(err, orders.ErrHasInvoices):
		return fiber.NewError(fiber.StatusConflict, "cannot delete an order that has invoices, cancel it instead")
	case errors.Is(err, orders.ErrNumberConflict):
		return fiber.NewError(fiber.StatusConflict, "could not allocate an order number, please retry")
	}
	return err
}

func parseDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+field+" format")
	}
	return &parsed, nil
}

func validPercentage(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(decimal.NewFromInt(100))
}

func toItemInputs(items []orderItemRequest) []orders.ItemInput {
	inputs := make([]orders.ItemInput, len(items))
	for i, item := range items {
		inputs[i] = orders.ItemInput{
			ServiceID: item.ServiceID,
			Quantity:  item.Quantity,
			Rate:      item.Rate,
			Notes:     item.Notes,
		}
	}
	return inputs
}

// ListOrders returns orders matching the query filters, newest first.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	filter := orders.ListFilter{
		Search:        c.Query("search"),
		Status:        c.Query("status"),
		Priority:      c.Query("priority"),
		PaymentStatus: c.Query("payment_status"),
		CustomerID:    uint(c.QueryInt("customer_id")),
		Limit:         c.QueryInt("limit"),
	}

	for _, d := range []struct {
		param string
		dest  **time.Time
	}{
		{"from_date", &filter.FromDate},
		{"to_date", &filter.ToDate},
		{"due_date", &filter.DueDate},
	} {
		parsed, err := parseDate(c.Query(d.param), d.param)
		if err != nil {
			return err
		}
		*d.dest = parsed
	}

	result, err := h.engine.List(c.Context(), filter)
	if err != nil {
		return mapEngineError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": result})
}

// SearchOrders matches order number, customer name or mobile.
func (h *OrderHandler) SearchOrders(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query is required")
	}

	result, err := h.engine.Search(c.Context(), query)
	if err != nil {
		return mapEngineError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": result})
}

// GetOrder returns a single order with items and customer summary.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	order, err := h.engine.Get(c.Context(), id)
	if err != nil {
		return mapEngineError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// CreateOrder validates the intake request and places the order.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.CustomerID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "customer id is required")
	}
	if len(req.Items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "order items are required")
	}
	for _, item := range req.Items {
		if item.ServiceID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "service id is required for all items")
		}
		if item.Quantity < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "valid quantity is required for all items")
		}
		if item.Rate.LessThan(decimal.New(1, -2)) {
			return fiber.NewError(fiber.StatusBadRequest, "valid rate is required for all items")
		}
	}
	if req.Priority != "" && !validPriorities[req.Priority] {
		return fiber.NewError(fiber.StatusBadRequest, "invalid priority value")
	}
	if !validPercentage(req.DiscountPercentage) {
		return fiber.NewError(fiber.StatusBadRequest, "discount percentage must be between 0 and 100")
	}
	if !validPercentage(req.TaxPercentage) {
		return fiber.NewError(fiber.StatusBadRequest, "tax percentage must be between 0 and 100")
	}
	if req.AdvancePaid.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "advance paid cannot be negative")
	}

	input := orders.CreateInput{
		CustomerID:         req.CustomerID,
		Items:              toItemInputs(req.Items),
		DueTime:            req.DueTime,
		Priority:           req.Priority,
		DiscountPercentage: req.DiscountPercentage,
		TaxPercentage:      req.TaxPercentage,
		AdvancePaid:        req.AdvancePaid,
		Notes:              req.Notes,
		CreatedBy:          userID,
	}

	for _, d := range []struct {
		value string
		field string
		dest  **time.Time
	}{
		{req.DueDate, "due date", &input.DueDate},
		{req.PickupDate, "pickup date", &input.PickupDate},
		{req.DeliveryDate, "delivery date", &input.DeliveryDate},
	} {
		parsed, err := parseDate(d.value, d.field)
		if err != nil {
			return err
		}
		*d.dest = parsed
	}

	order, err := h.engine.Create(c.Context(), input)
	if err != nil {
		return mapEngineError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": order})
}

type updateOrderRequest struct {
	DueDate            *string            `json:"due_date"`
	DueTime            *string            `json:"due_time"`
	PickupDate         *string            `json:"pickup_date"`
	DeliveryDate       *string            `json:"delivery_date"`
	Status             *string            `json:"status"`
	Priority           *string            `json:"priority"`
	DiscountPercentage *decimal.Decimal   `json:"discount_percentage"`
	TaxPercentage      *decimal.Decimal   `json:"tax_percentage"`
	AdvancePaid        *decimal.Decimal   `json:"advance_paid"`
	Notes              *string            `json:"notes"`
	Items              []orderItemRequest `json:"items"`
}

// UpdateOrder applies a partial update; supplying items replaces the whole
// item set and recomputes all totals.
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req updateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Priority != nil && !validPriorities[*req.Priority] {
		return fiber.NewError(fiber.StatusBadRequest, "invalid priority value")
	}
	if req.Status != nil && !validStatuses[*req.Status] {
		return fiber.NewError(fiber.StatusBadRequest, "invalid status value")
	}
	if req.DiscountPercentage != nil && !validPercentage(*req.DiscountPercentage) {
		return fiber.NewError(fiber.StatusBadRequest, "discount percentage must be between 0 and 100")
	}
	if req.TaxPercentage != nil && !validPercentage(*req.TaxPercentage) {
		return fiber.NewError(fiber.StatusBadRequest, "tax percentage must be between 0 and 100")
	}
	if req.AdvancePaid != nil && req.AdvancePaid.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "advance paid cannot be negative")
	}
	for _, item := range req.Items {
		if item.ServiceID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "service id is required for all items")
		}
		if item.Quantity < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "valid quantity is required for all items")
		}
		if item.Rate.LessThan(decimal.New(1, -2)) {
			return fiber.NewError(fiber.StatusBadRequest, "valid rate is required for all items")
		}
	}

	input := orders.UpdateInput{
		DueTime:            req.DueTime,
		Status:             req.Status,
		Priority:           req.Priority,
		DiscountPercentage: req.DiscountPercentage,
		TaxPercentage:      req.TaxPercentage,
		AdvancePaid:        req.AdvancePaid,
		Notes:              req.Notes,
	}
	if req.Items != nil {
		input.Items = toItemInputs(req.Items)
	}

	for _, d := range []struct {
		value *string
		field string
		dest  **time.Time
	}{
		{req.DueDate, "due date", &input.DueDate},
		{req.PickupDate, "pickup date", &input.PickupDate},
		{req.DeliveryDate, "delivery date", &input.DeliveryDate},
	} {
		if d.value == nil {
			continue
		}
		parsed, err := parseDate(*d.value, d.field)
		if err != nil {
			return err
		}
		*d.dest = parsed
	}

	order, err := h.engine.Update(c.Context(), id, input)
	if err != nil {
		return mapEngineError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus sets the order status.
func (h *OrderHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if !validStatuses[req.Status] {
		return fiber.NewError(fiber.StatusBadRequest, "invalid status value")
	}

	order, err := h.engine.UpdateStatus(c.Context(), id, req.Status)
	if err != nil {
		return mapEngineError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// DeleteOrder removes an order unless it has invoices.
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	deleted, err := h.engine.Delete(c.Context(), id)
	if err != nil {
		return mapEngineError(err)
	}
	if !deleted {
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
