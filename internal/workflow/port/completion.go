package port

import (
	"context"
)

// OutputShape 期望的输出形态
type OutputShape string

const (
	// ShapeText 自由文本
	ShapeText OutputShape = "text"
	// ShapeJSONObject 单个 JSON 对象
	ShapeJSONObject OutputShape = "json_object"
)

// CompletionRequest 一次补全调用的全部参数
type CompletionRequest struct {
	// Prompt 用户提示词，必填
	Prompt string
	// SystemPrompt 系统提示词，可为空
	SystemPrompt string
	// Shape 输出形态，默认 text
	Shape OutputShape
	// Temperature 采样温度，[0, 2]
	Temperature float64
	// MaxTokens 为 0 时使用提供商默认
	MaxTokens int
	// Model 为空时使用默认提供商的默认模型
	Model string
}

// CompletionResult 补全结果与用量元数据
type CompletionResult struct {
	Text             string
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// CompletionGateway 定义生成流水线对 LLM 的最小依赖（port）。
// 实现不做重试，一次调用对应一次模型请求。
type CompletionGateway interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}
