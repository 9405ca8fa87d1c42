package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"flow-writer-api/internal/domain/repository"
	"flow-writer-api/internal/infrastructure/persistence/redis"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	store repository.ProjectStore
	redis *redis.Client
}

// NewHealthHandler 创建健康检查处理器。redisClient 可为 nil（未启用缓存）
func NewHealthHandler(store repository.ProjectStore, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		store: store,
		redis: redisClient,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Health 健康检查接口
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
	})
}

// Live 存活检查接口
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
	})
}

// Ready 就绪检查接口。
// 项目存储是必需依赖，不可用即 503；Redis 仅用于缓存与限流，只降级不拦截
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]*readinessCheck{
		"store": {Status: "unknown"},
		"redis": {Status: "disabled"},
	}

	ready := true

	start := time.Now()
	if err := h.store.Ping(ctx); err != nil {
		checks["store"].Status = "error"
		checks["store"].Error = err.Error()
		ready = false
	} else {
		checks["store"].Status = "ok"
	}
	checks["store"].LatencyMs = time.Since(start).Milliseconds()

	if h.redis != nil {
		start = time.Now()
		if err := h.redis.Ping(ctx); err != nil {
			checks["redis"].Status = "degraded"
			checks["redis"].Error = err.Error()
		} else {
			checks["redis"].Status = "ok"
		}
		checks["redis"].LatencyMs = time.Since(start).Milliseconds()
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, readinessResponse{
			Status: "not_ready",
			Checks: checks,
		})
		return
	}

	c.JSON(http.StatusOK, readinessResponse{
		Status: "ready",
		Checks: checks,
	})
}
