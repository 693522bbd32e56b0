package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type response struct {
	Data   any      `json:"data"`
	Errors []string `json:"errors"`
}

// writeResponse wraps data in the {data, errors} envelope. Error strings
// are shown to the user, so they must never carry internal details.
func writeResponse(c *gin.Context, data interface{}, statusCode int, errors []string) {

	if statusCode == http.StatusNoContent {
		c.Status(statusCode)
		return
	}

	response := response{
		Data:   data,
		Errors: errors,
	}

	c.JSON(statusCode, response)
}

type Pagination struct {
	CurrentPage  int  `json:"current_page"`
	PageSize     int  `json:"page_size"`
	TotalPages   int  `json:"total_pages"`
	HasNextPage  bool `json:"has_next_page"`
	HasPrevPage  bool `json:"has_prev_page"`
	TotalResults int  `json:"total_results"`
}

// calculatePagination describes the page starting at offset when total
// items are split into pages of limit items.
func calculatePagination(total, limit, offset int) Pagination {
	if limit <= 0 {
		limit = 1
	}
	pageSize := limit
	currentPage := (offset / limit) + 1
	totalPages := (total + pageSize - 1) / pageSize

	if totalPages == 0 {
		totalPages = 1
	}

	return Pagination{
		CurrentPage:  currentPage,
		PageSize:     pageSize,
		TotalPages:   totalPages,
		HasNextPage:  currentPage < totalPages,
		HasPrevPage:  currentPage > 1,
		TotalResults: total,
	}
}
