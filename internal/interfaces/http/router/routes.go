// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"

	"flow-writer-api/internal/interfaces/http/handler"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	projectHandler *handler.ProjectHandler,
	chapterHandler *handler.ChapterHandler,
) {
	// 项目管理
	projects := v1.Group("/projects")
	{
		projects.GET("", projectHandler.List)
		projects.POST("", projectHandler.Create)
		projects.GET("/:pid", projectHandler.Get)
		projects.PUT("/:pid", projectHandler.Replace)
		projects.DELETE("/:pid", projectHandler.Delete)

		// 项目下的章节
		projects.POST("/:pid/chapters/:cid/generate", chapterHandler.Generate)
	}
}
