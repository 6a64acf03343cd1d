package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Pagination extracts page/page_size query params with sane bounds.
func Pagination(c *gin.Context) (offset, limit int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return (page - 1) * size, size
}
