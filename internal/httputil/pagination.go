package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Pagination describes the limits applied to a listing endpoint.
type Pagination struct {
	// DefaultLimit is used when the request carries no limit.
	DefaultLimit int
	// MaxLimit is the largest page a client may request.
	MaxLimit int
}

// IssuancePagination pages the issuance audit trail. Operators export it in bulk, so
// pages are larger than a typical listing.
var IssuancePagination = Pagination{DefaultLimit: 50, MaxLimit: 500}

// Parse reads and validates the offset and limit query parameters.
func (p Pagination) Parse(c *gin.Context) (offset, limit int, err error) {
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return 0, 0, fmt.Errorf("invalid offset parameter: must be a non-negative integer")
	}

	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(p.DefaultLimit)))
	if err != nil || limit < 1 || limit > p.MaxLimit {
		return 0, 0, fmt.Errorf("invalid limit parameter: must be between 1 and %d", p.MaxLimit)
	}

	return offset, limit, nil
}
