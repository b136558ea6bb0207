package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/laundromat/internal/models"
	"github.com/example/laundromat/internal/utils"
)

// CatalogHandler manages categories and the service price list.
type CatalogHandler struct {
	db *gorm.DB
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

// ListCategories returns paginated categories, optionally filtered by search
// text and active flag.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Category{})

	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if active := c.Query("is_active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var categories []models.Category
	if err := query.Limit(pg.Limit).Offset(pg.Offset).Order("name asc").
		Find(&categories).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    categories,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetCategory returns a single category by ID.
func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var category models.Category
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "category not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": category})
}

// CreateCategory persists a new category.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var payload models.Category
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if payload.CatID == "" || payload.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "catid and name are required")
	}

	payload.IsActive = true
	if err := h.db.Create(&payload).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "category id already exists")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": payload})
}

type updateCategoryRequest struct {
	CatID       *string `json:"catid"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// updates builds the column map for a partial update. Fields absent from the
// request are left alone; explicit false and empty strings are applied, so a
// category can be deactivated or have its description cleared.
func (r updateCategoryRequest) updates() map[string]any {
	fields := map[string]any{}
	if r.CatID != nil {
		fields["cat_id"] = *r.CatID
	}
	if r.Name != nil {
		fields["name"] = *r.Name
	}
	if r.Description != nil {
		fields["description"] = *r.Description
	}
	if r.IsActive != nil {
		fields["is_active"] = *r.IsActive
	}
	return fields
}

// UpdateCategory applies a partial update to a category.
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var category models.Category
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "category not found")
		}
		return err
	}

	var req updateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := req.updates()
	if len(updates) == 0 {
		return c.JSON(fiber.Map{"success": true, "data": category})
	}

	if err := h.db.Model(&category).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "category id already exists")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": category})
}

// DeleteCategory removes a category by ID. Categories still carrying services
// cannot be removed.
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var serviceCount int64
	if err := h.db.Model(&models.Service{}).Where("category_id = ?", id).
		Count(&serviceCount).Error; err != nil {
		return err
	}
	if serviceCount > 0 {
		return fiber.NewError(fiber.StatusConflict, "category has services, deactivate it instead")
	}

	if err := h.db.Delete(&models.Category{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListServices returns the service price list with optional filters.
func (h *CatalogHandler) ListServices(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Service{}).Preload("Category")

	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if categoryID := c.QueryInt("category_id"); categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	if serviceType := c.Query("service_type"); serviceType != "" {
		query = query.Where("service_type = ?", serviceType)
	}
	if active := c.Query("is_active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var services []models.Service
	if err := query.Limit(pg.Limit).Offset(pg.Offset).Order("name asc").
		Find(&services).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    services,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetService returns a single service by ID.
func (h *CatalogHandler) GetService(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var service models.Service
	if err := h.db.Preload("Category").First(&service, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "service not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": service})
}

// ListServicesByCategory returns active services within one category.
func (h *CatalogHandler) ListServicesByCategory(c *fiber.Ctx) error {
	categoryID, err := strconv.ParseUint(c.Params("categoryId"), 10, 64)
	if err != nil || categoryID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid category id")
	}

	var services []models.Service
	if err := h.db.Where("category_id = ? AND is_active = ?", categoryID, true).
		Order("name asc").Find(&services).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": services})
}

// CreateService persists a new service.
func (h *CatalogHandler) CreateService(c *fiber.Ctx) error {
	var payload models.Service
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if payload.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	if payload.CategoryID != nil {
		var category models.Category
		if err := h.db.First(&category, "id = ? AND is_active = ?", *payload.CategoryID, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusBadRequest, "invalid category")
			}
			return err
		}
	}

	payload.IsActive = true
	if err := h.db.Create(&payload).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "service number already exists")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": payload})
}

type updateServiceRequest struct {
	SNo         *string          `json:"sno"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	CategoryID  *uint            `json:"category_id"`
	Rate1       *decimal.Decimal `json:"rate1"`
	Rate2       *decimal.Decimal `json:"rate2"`
	Rate3       *decimal.Decimal `json:"rate3"`
	Rate4       *decimal.Decimal `json:"rate4"`
	Rate5       *decimal.Decimal `json:"rate5"`
	ServiceType *string          `json:"service_type"`
	IsActive    *bool            `json:"is_active"`
}

// updates builds the column map for a partial update. Explicit false and zero
// rates are applied; only absent fields are skipped.
func (r updateServiceRequest) updates() map[string]any {
	fields := map[string]any{}
	if r.SNo != nil {
		fields["s_no"] = *r.SNo
	}
	if r.Name != nil {
		fields["name"] = *r.Name
	}
	if r.Description != nil {
		fields["description"] = *r.Description
	}
	if r.CategoryID != nil {
		fields["category_id"] = *r.CategoryID
	}
	if r.Rate1 != nil {
		fields["rate1"] = *r.Rate1
	}
	if r.Rate2 != nil {
		fields["rate2"] = *r.Rate2
	}
	if r.Rate3 != nil {
		fields["rate3"] = *r.Rate3
	}
	if r.Rate4 != nil {
		fields["rate4"] = *r.Rate4
	}
	if r.Rate5 != nil {
		fields["rate5"] = *r.Rate5
	}
	if r.ServiceType != nil {
		fields["service_type"] = *r.ServiceType
	}
	if r.IsActive != nil {
		fields["is_active"] = *r.IsActive
	}
	return fields
}

// UpdateService applies a partial update to a service.
func (h *CatalogHandler) UpdateService(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var service models.Service
	if err := h.db.First(&service, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "service not found")
		}
		return err
	}

	var req updateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.CategoryID != nil {
		var category models.Category
		if err := h.db.First(&category, "id = ? AND is_active = ?", *req.CategoryID, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusBadRequest, "invalid category")
			}
			return err
		}
	}

	updates := req.updates()
	if len(updates) == 0 {
		return c.JSON(fiber.Map{"success": true, "data": service})
	}

	if err := h.db.Model(&service).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "service number already exists")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": service})
}

// DeleteService removes a service by ID. Historical order items keep their
// snapshotted name, so removal never rewrites past orders.
func (h *CatalogHandler) DeleteService(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	if err := h.db.Delete(&models.Service{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
