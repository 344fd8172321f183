package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// getPageQuery 解析 page/page_size 查询参数，非法值回退默认
func getPageQuery(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return page, pageSize
}

// getPagination 同上，但直接换算成 limit/offset
func getPagination(c *gin.Context) (int, int) {
	page, pageSize := getPageQuery(c)
	return pageSize, (page - 1) * pageSize
}
