package api

import (
	"strconv"

	"rental-ledger/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

func pageParams(c *gin.Context) (*queries.Cursor, int) {
	limit := queries.DefaultListLimit
	if v := c.Query("limit"); v != "" {
		if iv, e := strconv.Atoi(v); e == nil {
			limit = queries.ValidateLimit(iv)
		}
	}
	var cursor *queries.Cursor
	if after := c.Query("after"); after != "" {
		cursor = &queries.Cursor{After: after}
	}
	return cursor, limit
}
