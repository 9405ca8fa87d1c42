package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"flow-writer-api/internal/application/story"
	"flow-writer-api/internal/infrastructure/persistence/redis"
	"flow-writer-api/internal/interfaces/http/dto"
	"flow-writer-api/pkg/logger"
)

// ChapterHandler 章节处理器
type ChapterHandler struct {
	generator *story.StoryGenerator
	cache     *redis.Cache
}

// NewChapterHandler 创建章节处理器。cache 可为 nil（未启用 Redis）
func NewChapterHandler(generator *story.StoryGenerator, cache *redis.Cache) *ChapterHandler {
	return &ChapterHandler{
		generator: generator,
		cache:     cache,
	}
}

// Generate 按需生成指定章节正文，返回更新后的完整项目文档
// POST /v1/projects/:pid/chapters/:cid/generate
func (h *ChapterHandler) Generate(c *gin.Context) {
	pid := c.Param("pid")

	cid, err := strconv.Atoi(c.Param("cid"))
	if err != nil || cid < 1 {
		dto.BadRequest(c, "chapter id must be a positive integer")
		return
	}

	project, err := h.generator.GenerateChapterContent(c.Request.Context(), pid, cid)
	if err != nil {
		respondError(c, err, "failed to generate chapter content")
		return
	}

	// 正文生成会更新项目的修改时间，列表缓存需要失效
	if h.cache != nil {
		if err := h.cache.InvalidateProjectSummaries(c.Request.Context()); err != nil {
			logger.Warn(c.Request.Context(), "failed to invalidate project summaries cache", "error", err)
		}
	}

	dto.Success(c, dto.FromProject(project))
}
