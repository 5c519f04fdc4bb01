// package utils provides utility functions to support various operations within the application.
package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"microblog/internal/schemas"
)

// ParsePageParam extracts the 'page' query parameter. Missing, malformed and non-positive values yield 1.
func ParsePageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query(PageParamKey))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// NewPagination computes the navigation flags of a page from the total record count.
func NewPagination(page, perPage, total int) schemas.Pagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	// keeps page*perPage, and with it the offset, from overflowing
	if page > math.MaxInt/perPage {
		page = math.MaxInt / perPage
	}

	p := schemas.Pagination{
		Page:    page,
		PerPage: perPage,
		Total:   total,
		HasPrev: page > 1,
		HasNext: page*perPage < total,
	}
	if p.HasPrev {
		p.PrevNum = page - 1
	}
	if p.HasNext {
		p.NextNum = page + 1
	}
	return p
}
