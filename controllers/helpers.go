package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ripplefeed/ripple/middleware"
	"github.com/ripplefeed/ripple/services"
)

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := services.DefaultPageSize
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= services.MaxPageSize {
		pageSize = s
	}
	return page, pageSize
}

// listPayload builds the standard listing envelope around a page of items.
func listPayload(items interface{}, page services.Page) gin.H {
	return gin.H{
		"items": items,
		"pagination": gin.H{
			"page":        page.Page,
			"page_size":   page.PageSize,
			"total":       page.Total,
			"total_pages": page.TotalPages(),
		},
	}
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
