package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Pagination holds pagination parameters.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePagination reads page and limit query params with sane defaults.
// Limits above maxPageSize are clamped.
func ParsePagination(c *fiber.Ctx) Pagination {
	return paginate(c.Query("page"), c.Query("limit"))
}

func paginate(pageRaw, limitRaw string) Pagination {
	page := parseInt(pageRaw, 1)
	if page <= 0 {
		page = 1
	}

	limit := parseInt(limitRaw, defaultPageSize)
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return fallback
}
