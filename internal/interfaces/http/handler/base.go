// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"flow-writer-api/internal/interfaces/http/dto"
	"flow-writer-api/pkg/errors"
	"flow-writer-api/pkg/logger"
)

// respondError 统一错误出口：AppError 按错误码映射状态码，其余按 500 兜底
func respondError(c *gin.Context, err error, fallback string) {
	if errors.IsAppError(err) {
		appErr := errors.AsAppError(err)
		dto.ErrorWithDetail(c, appErr.HTTPStatus, appErr.Message, &dto.ErrorDetail{
			ErrorCode: string(appErr.Code),
			Details:   appErr.Detail,
		})
		return
	}

	logger.Error(c.Request.Context(), fallback, err,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	dto.InternalError(c, fallback)
}
