//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"flow-writer-api/internal/application/story"
	"flow-writer-api/internal/config"
	"flow-writer-api/internal/infrastructure/llm"
	"flow-writer-api/internal/interfaces/http/handler"
	"flow-writer-api/internal/interfaces/http/router"
	"flow-writer-api/internal/workflow/port"
	"flow-writer-api/internal/workflow/prompt"
)

// InfraSet 基础设施依赖
var InfraSet = wire.NewSet(
	ProvideProjectStore,
	ProvideRedisClient,
	ProvideCache,
	ProvideRateLimiter,
)

// LLMSet 补全网关依赖
var LLMSet = wire.NewSet(
	llm.NewEinoFactory,
	llm.NewEinoGateway,
	wire.Bind(new(port.CompletionGateway), new(*llm.EinoGateway)),
)

// StorySet 生成流水线依赖
var StorySet = wire.NewSet(
	prompt.NewRegistry,
	story.NewStoryGenerator,
)

// HandlerSet HTTP 处理器依赖
var HandlerSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewProjectHandler,
	handler.NewChapterHandler,
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		InfraSet,
		LLMSet,
		StorySet,
		HandlerSet,
		router.New,
	)
	return nil, nil, nil
}
