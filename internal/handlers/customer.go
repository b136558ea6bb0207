package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/laundromat/internal/middleware"
	"github.com/example/laundromat/internal/models"
	"github.com/example/laundromat/internal/orders"
	"github.com/example/laundromat/internal/utils"
)

// CustomerHandler manages customer records and their cached statistics.
type CustomerHandler struct {
	db     *gorm.DB
	engine *orders.Engine
}

// NewCustomerHandler constructs CustomerHandler.
func NewCustomerHandler(db *gorm.DB, engine *orders.Engine) *CustomerHandler {
	return &CustomerHandler{db: db, engine: engine}
}

// ListCustomers returns paginated customers with optional filters.
func (h *CustomerHandler) ListCustomers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Customer{})

	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR mobile ILIKE ? OR email ILIKE ?", pattern, pattern, pattern)
	}
	if ctype := c.Query("customer_type"); ctype != "" {
		query = query.Where("customer_type = ?", ctype)
	}
	if active := c.Query("is_active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}
	if city := c.Query("city"); city != "" {
		query = query.Where("city ILIKE ?", "%"+city+"%")
	}
	if state := c.Query("state"); state != "" {
		query = query.Where("state ILIKE ?", "%"+state+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var customers []models.Customer
	if err := query.Limit(pg.Limit).Offset(pg.Offset).Order("name asc").
		Find(&customers).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    customers,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// SearchCustomers is the quick lookup used by the order intake form.
func (h *CustomerHandler) SearchCustomers(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query is required")
	}

	pattern := "%" + query + "%"
	var customers []models.Customer
	if err := h.db.Where("name ILIKE ? OR mobile ILIKE ?", pattern, pattern).
		Order("name asc").Limit(20).Find(&customers).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": customers})
}

// GetCustomer returns a single customer by ID.
func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": customer})
}

// GetCustomerStats recomputes and persists the customer's aggregates, then
// returns them with the derived averages.
func (h *CustomerHandler) GetCustomerStats(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return err
	}

	if err := h.engine.RefreshCustomerStats(c.Context(), customer.ID); err != nil {
		return err
	}

	if err := h.db.First(&customer, "id = ?", id).Error; err != nil {
		return err
	}

	var lastOrderAt *string
	var last models.Order
	err = h.db.Where("customer_id = ? AND status <> ?", customer.ID, models.OrderStatusCancelled).
		Order("created_at desc").First(&last).Error
	if err == nil {
		formatted := last.CreatedAt.Format("2006-01-02 15:04:05")
		lastOrderAt = &formatted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	avgOrderValue := decimal.Zero
	if customer.TotalOrders > 0 {
		avgOrderValue = customer.TotalSpent.Div(decimal.NewFromInt(int64(customer.TotalOrders)))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_orders":    customer.TotalOrders,
			"total_spent":     customer.TotalSpent,
			"avg_order_value": avgOrderValue.Round(2),
			"last_order_date": lastOrderAt,
		},
	})
}

// CreateCustomer persists a new customer. Mobile numbers are unique.
func (h *CustomerHandler) CreateCustomer(c *fiber.Ctx) error {
	var payload models.Customer
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if payload.Name == "" || payload.Mobile == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name and mobile are required")
	}

	if payload.CustomerType == "" {
		payload.CustomerType = "regular"
	}

	payload.IsActive = true
	payload.TotalOrders = 0
	payload.TotalSpent = decimal.Zero

	if err := h.db.Create(&payload).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "mobile number already exists")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": payload})
}

type updateCustomerRequest struct {
	Name         *string `json:"name"`
	Mobile       *string `json:"mobile"`
	Email        *string `json:"email"`
	AddressLine1 *string `json:"address_line1"`
	AddressLine2 *string `json:"address_line2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	Pincode      *string `json:"pincode"`
	CustomerType *string `json:"customer_type"`
	IsActive     *bool   `json:"is_active"`
}

// UpdateCustomer applies a partial update to plain customer fields. The cached
// aggregates are never writable through this endpoint.
func (h *CustomerHandler) UpdateCustomer(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return err
	}

	var req updateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Mobile != nil {
		updates["mobile"] = *req.Mobile
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.AddressLine1 != nil {
		updates["address_line1"] = *req.AddressLine1
	}
	if req.AddressLine2 != nil {
		updates["address_line2"] = *req.AddressLine2
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.State != nil {
		updates["state"] = *req.State
	}
	if req.Pincode != nil {
		updates["pincode"] = *req.Pincode
	}
	if req.CustomerType != nil {
		updates["customer_type"] = *req.CustomerType
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return c.JSON(fiber.Map{"success": true, "data": customer})
	}

	if err := h.db.Model(&customer).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "mobile number already exists")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": customer})
}

// ToggleCustomerStatus flips the active flag.
func (h *CustomerHandler) ToggleCustomerStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return err
	}

	if err := h.db.Model(&customer).Update("is_active", !customer.IsActive).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": customer})
}

// DeleteCustomer removes a customer that has no orders on file. Admin only.
func (h *CustomerHandler) DeleteCustomer(c *fiber.Ctx) error {
	if role, _ := middleware.GetCurrentUserRole(c); role != "admin" {
		return fiber.NewError(fiber.StatusForbidden, "admin access required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return err
	}

	var orderCount int64
	if err := h.db.Model(&models.Order{}).Where("customer_id = ?", id).
		Count(&orderCount).Error; err != nil {
		return err
	}
	if orderCount > 0 {
		return fiber.NewError(fiber.StatusConflict, "customer has orders, deactivate instead")
	}

	if err := h.db.Delete(&customer).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
