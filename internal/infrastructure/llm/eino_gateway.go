package llm

import (
	"context"
	"strings"
	"time"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"flow-writer-api/internal/config"
	wfnode "flow-writer-api/internal/workflow/node"
	"flow-writer-api/internal/workflow/port"
	"flow-writer-api/pkg/errors"
	"flow-writer-api/pkg/logger"
	"flow-writer-api/pkg/metrics"
)

// chatModelProvider 网关对工厂的最小依赖
type chatModelProvider interface {
	Default(ctx context.Context) (model.BaseChatModel, error)
}

// EinoGateway 基于 Eino ChatModel 的补全网关实现
type EinoGateway struct {
	factory  chatModelProvider
	provider string
}

// NewEinoGateway 创建补全网关
func NewEinoGateway(factory *EinoFactory, cfg *config.Config) *EinoGateway {
	return &EinoGateway{
		factory:  factory,
		provider: cfg.LLM.DefaultProvider,
	}
}

// Complete 执行一次补全调用。不做重试，错误按统一错误码分类返回
func (g *EinoGateway) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.ErrInvalidParam.WithDetail("prompt is empty")
	}
	if req.Temperature < 0 || req.Temperature > 2 {
		return nil, errors.ErrInvalidParam.WithDetail("temperature must be within [0, 2]")
	}

	chatModel, err := g.factory.Default(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeGatewayUnavailable, "completion gateway unavailable")
	}

	msgs := buildMessages(req)

	start := time.Now()
	outMsg, err := chatModel.Generate(ctx, msgs, g.buildOptions(req, true)...)
	if err != nil && req.Shape == port.ShapeJSONObject && wfnode.IsResponseFormatUnsupportedError(err) {
		// 提供商不支持 response_format，回退为纯提示词约束
		logger.Warn(ctx, "llm response_format not supported, fallback to prompt-only",
			"provider", g.provider,
			"model", req.Model,
			"error", err.Error(),
		)
		outMsg, err = chatModel.Generate(ctx, msgs, g.buildOptions(req, false)...)
	}
	g.observe(req.Model, start, err)

	if err != nil {
		return nil, errors.Wrap(err, errors.CodeGatewayError, "completion request failed")
	}
	if outMsg == nil || strings.TrimSpace(outMsg.Content) == "" {
		return nil, errors.ErrEmptyResponse
	}

	result := &port.CompletionResult{
		Text:     outMsg.Content,
		Provider: g.provider,
		Model:    req.Model,
	}
	if outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
		result.PromptTokens = outMsg.ResponseMeta.Usage.PromptTokens
		result.CompletionTokens = outMsg.ResponseMeta.Usage.CompletionTokens
		metrics.LLMTokensUsed.WithLabelValues(g.provider, req.Model, "prompt").Add(float64(result.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(g.provider, req.Model, "completion").Add(float64(result.CompletionTokens))
	}
	return result, nil
}

// buildMessages 组装对话消息
func buildMessages(req port.CompletionRequest) []*schema.Message {
	msgs := make([]*schema.Message, 0, 2)
	if strings.TrimSpace(req.SystemPrompt) != "" {
		msgs = append(msgs, schema.SystemMessage(req.SystemPrompt))
	}
	msgs = append(msgs, schema.UserMessage(req.Prompt))
	return msgs
}

// buildOptions 组装模型调用选项
func (g *EinoGateway) buildOptions(req port.CompletionRequest, enableResponseFormat bool) []model.Option {
	opts := make([]model.Option, 0, 4)

	temperature := float32(req.Temperature)
	opts = append(opts, model.WithTemperature(temperature))

	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}
	if strings.TrimSpace(req.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(req.Model)))
	}

	if req.Shape == port.ShapeJSONObject && enableResponseFormat {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_object",
			},
		}))
	}

	return opts
}

// observe 记录 LLM 调用指标
func (g *EinoGateway) observe(model string, start time.Time, err error) {
	metrics.LLMCallDuration.WithLabelValues(g.provider, model).Observe(time.Since(start).Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.LLMCallTotal.WithLabelValues(g.provider, model, status).Inc()
}
