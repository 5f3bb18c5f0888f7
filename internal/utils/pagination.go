package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ParsePagination reads page/limit query parameters, falling back to defaults
// on absent or malformed values and clamping limit to MaxLimit.
func ParsePagination(ctx *gin.Context) (page, limit int) {
	page = DefaultPage
	limit = DefaultLimit

	if value, err := strconv.Atoi(ctx.Query("page")); err == nil && value > 0 {
		page = value
	}

	if value, err := strconv.Atoi(ctx.Query("limit")); err == nil && value > 0 {
		limit = value
	}

	if limit > MaxLimit {
		limit = MaxLimit
	}

	return page, limit
}

// Pages computes the page count for a total row count: ceil(total/limit).
func Pages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}

	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}

	return pages
}
