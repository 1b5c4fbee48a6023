package handler

import (
	"net/http"
	"strconv"

	"github.com/fandom-project/back-end/internal/pkg"

	"github.com/gin-gonic/gin"
)

// respond 统一响应结构 {body, message}
func respond(c *gin.Context, status int, body any, msg string) {
	if body == nil {
		c.JSON(status, gin.H{"message": msg})
		return
	}
	c.JSON(status, gin.H{"body": body, "message": msg})
}

// respondError 业务错误按类型映射状态码；存储层故障只记录，不暴露细节
func respondError(c *gin.Context, err error) {
	status := pkg.StatusOf(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"message": "internal error"})
		return
	}
	c.JSON(status, gin.H{"message": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": msg})
}

// paramID 解析路径上的正整数 id
func paramID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
