package public

import (
	"github.com/gin-gonic/gin"

	"github.com/sportline-next/internal/http/response"
	"github.com/sportline-next/internal/logger"
)

// respondError 输出错误响应，err 非空时记录日志
func respondError(c *gin.Context, code int, msg string, err error) {
	if err != nil {
		logger.Warnw("request_failed",
			"path", c.FullPath(),
			"code", code,
			"msg", msg,
			"error", err,
		)
	}
	response.Error(c, code, msg)
}
