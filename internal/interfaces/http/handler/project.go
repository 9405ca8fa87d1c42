package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"flow-writer-api/internal/application/story"
	"flow-writer-api/internal/domain/entity"
	"flow-writer-api/internal/domain/repository"
	"flow-writer-api/internal/infrastructure/persistence/redis"
	"flow-writer-api/internal/interfaces/http/dto"
	"flow-writer-api/pkg/errors"
	"flow-writer-api/pkg/logger"
)

// 项目摘要列表缓存时长
const summariesCacheTTL = 30 * time.Second

// ProjectHandler 项目处理器
type ProjectHandler struct {
	store     repository.ProjectStore
	generator *story.StoryGenerator
	cache     *redis.Cache
}

// NewProjectHandler 创建项目处理器。cache 可为 nil（未启用 Redis）
func NewProjectHandler(store repository.ProjectStore, generator *story.StoryGenerator, cache *redis.Cache) *ProjectHandler {
	return &ProjectHandler{
		store:     store,
		generator: generator,
		cache:     cache,
	}
}

// List 项目列表
// GET /v1/projects
func (h *ProjectHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if h.cache != nil {
		summaries, err := h.listFromCache(ctx)
		if err == nil {
			dto.Success(c, dto.FromSummaries(summaries))
			return
		}
		// 缓存故障只降级，不影响业务
		logger.Warn(ctx, "project summaries cache unavailable, falling back to store", "error", err.Error())
	}

	summaries, err := h.store.ListSummaries(ctx)
	if err != nil {
		respondError(c, err, "failed to list projects")
		return
	}
	dto.Success(c, dto.FromSummaries(summaries))
}

// listFromCache 经由缓存读取摘要列表，singleflight 合并并发回源
func (h *ProjectHandler) listFromCache(ctx context.Context) ([]entity.ProjectSummary, error) {
	bytes, err := h.cache.GetOrLoadSafe(ctx, redis.ProjectSummariesKey, summariesCacheTTL,
		func() (interface{}, error) {
			return h.store.ListSummaries(ctx)
		})
	if err != nil {
		return nil, err
	}

	var summaries []entity.ProjectSummary
	if err := json.Unmarshal(bytes, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Create 从初始灵感创建项目
// POST /v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	project, err := h.generator.CreateProject(c.Request.Context(), req.Idea, req.NumChapters)
	if err != nil {
		respondError(c, err, "failed to create project")
		return
	}

	h.invalidateSummaries(c)
	dto.Created(c, dto.FromProject(project))
}

// Get 获取项目完整文档
// GET /v1/projects/:pid
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.store.Get(c.Request.Context(), c.Param("pid"))
	if err != nil {
		respondError(c, err, "failed to get project")
		return
	}
	dto.Success(c, dto.FromProject(project))
}

// Replace 整文档替换项目
// PUT /v1/projects/:pid
func (h *ProjectHandler) Replace(c *gin.Context) {
	pid := c.Param("pid")

	var req dto.ReplaceProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	// 载荷中的 id 可省略；给了就必须与路径一致
	if req.ID != "" && req.ID != pid {
		respondError(c, errors.ErrIdentifierMismatch.WithDetail(
			"body id "+req.ID+" does not match path id "+pid), "failed to replace project")
		return
	}

	project := req.ToEntity()
	project.ID = pid

	updated, err := h.generator.ReplaceProject(c.Request.Context(), project)
	if err != nil {
		respondError(c, err, "failed to replace project")
		return
	}

	h.invalidateSummaries(c)
	dto.Success(c, dto.FromProject(updated))
}

// Delete 删除项目
// DELETE /v1/projects/:pid
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("pid")); err != nil {
		respondError(c, err, "failed to delete project")
		return
	}

	h.invalidateSummaries(c)
	dto.NoContent(c)
}

// invalidateSummaries 写操作后使列表缓存失效；失败只记日志
func (h *ProjectHandler) invalidateSummaries(c *gin.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateProjectSummaries(c.Request.Context()); err != nil {
		logger.Warn(c.Request.Context(), "failed to invalidate project summaries cache", "error", err)
	}
}
