package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/constants"
)

// PaginationParams is the page requested by a list call
type PaginationParams struct {
	Page     int
	PageSize int
}

// PaginationResponse is the pagination block of list responses
type PaginationResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// GetPaginationParams reads ?page= and ?page_size= (or the older ?limit=).
// Out of range values fall back to the defaults.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}

	size := queryInt(c, "page_size", 0)
	if size == 0 {
		size = queryInt(c, "limit", constants.DefaultPageSize)
	}
	if size < constants.MinPageSize || size > constants.MaxPageSize {
		size = constants.DefaultPageSize
	}

	return PaginationParams{Page: page, PageSize: size}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw, ok := c.GetQuery(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// NewPaginationResponse builds the pagination block for total matching rows
func NewPaginationResponse(params PaginationParams, total int64) PaginationResponse {
	pages := 0
	if params.PageSize > 0 {
		pages = int((total + int64(params.PageSize) - 1) / int64(params.PageSize))
	}
	return PaginationResponse{
		Page:       params.Page,
		PageSize:   params.PageSize,
		Total:      total,
		TotalPages: pages,
	}
}
