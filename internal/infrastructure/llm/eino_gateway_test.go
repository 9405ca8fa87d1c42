package llm

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flow-writer-api/internal/config"
	"flow-writer-api/internal/workflow/port"
	"flow-writer-api/pkg/errors"
)

// fakeChatModel 按调用次序回放预置的消息或错误
type fakeChatModel struct {
	replies []*schema.Message
	errs    []error
	calls   int
}

func (m *fakeChatModel) Generate(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	i := m.calls
	m.calls++
	var reply *schema.Message
	if i < len(m.replies) {
		reply = m.replies[i]
	}
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	return reply, err
}

func (m *fakeChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, stderrors.New("stream not supported")
}

type fakeProvider struct {
	model model.BaseChatModel
	err   error
}

func (p *fakeProvider) Default(ctx context.Context) (model.BaseChatModel, error) {
	return p.model, p.err
}

func newFakeGateway(m model.BaseChatModel) *EinoGateway {
	return &EinoGateway{factory: &fakeProvider{model: m}, provider: "openai"}
}

func TestCompleteRejectsInvalidInput(t *testing.T) {
	gw := newFakeGateway(&fakeChatModel{})
	ctx := context.Background()

	_, err := gw.Complete(ctx, port.CompletionRequest{Prompt: "   ", Temperature: 0.5})
	assert.ErrorIs(t, err, errors.ErrInvalidParam)

	_, err = gw.Complete(ctx, port.CompletionRequest{Prompt: "写一段开场", Temperature: 2.5})
	assert.ErrorIs(t, err, errors.ErrInvalidParam)

	_, err = gw.Complete(ctx, port.CompletionRequest{Prompt: "写一段开场", Temperature: -0.1})
	assert.ErrorIs(t, err, errors.ErrInvalidParam)
}

func TestCompleteMissingAPIKeyMapsToUnavailable(t *testing.T) {
	cfg := &config.Config{
		LLM: config.LLMConfig{
			DefaultProvider: "openai",
			Providers: map[string]config.ProviderConfig{
				"openai": {BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini"},
			},
		},
	}
	gw := NewEinoGateway(NewEinoFactory(cfg), cfg)

	_, err := gw.Complete(context.Background(), port.CompletionRequest{Prompt: "写一段开场", Temperature: 0.3})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeGatewayUnavailable))
	assert.Contains(t, err.Error(), "not configured")
}

func TestCompleteEmptyContentReturnsEmptyResponse(t *testing.T) {
	gw := newFakeGateway(&fakeChatModel{
		replies: []*schema.Message{schema.AssistantMessage("   \n", nil)},
	})

	_, err := gw.Complete(context.Background(), port.CompletionRequest{Prompt: "写一段开场", Temperature: 0.5})
	assert.ErrorIs(t, err, errors.ErrEmptyResponse)
}

func TestCompleteWrapsProviderFailure(t *testing.T) {
	cause := stderrors.New("401 unauthorized")
	gw := newFakeGateway(&fakeChatModel{errs: []error{cause}})

	_, err := gw.Complete(context.Background(), port.CompletionRequest{Prompt: "写一段开场", Temperature: 0.5})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeGatewayError))
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "401 unauthorized")
}

func TestCompleteFallsBackWhenResponseFormatUnsupported(t *testing.T) {
	fake := &fakeChatModel{
		errs:    []error{stderrors.New("invalid parameter: response_format is not supported")},
		replies: []*schema.Message{nil, schema.AssistantMessage(`{"synopsis":"ok"}`, nil)},
	}
	gw := newFakeGateway(fake)

	result, err := gw.Complete(context.Background(), port.CompletionRequest{
		Prompt:      "生成结构化输出",
		Shape:       port.ShapeJSONObject,
		Temperature: 0.3,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, fake.calls, "应回退为纯提示词再调用一次")
	assert.Equal(t, `{"synopsis":"ok"}`, result.Text)
}

func TestCompleteNoFallbackForTextShape(t *testing.T) {
	fake := &fakeChatModel{
		errs: []error{stderrors.New("invalid parameter: response_format is not supported")},
	}
	gw := newFakeGateway(fake)

	_, err := gw.Complete(context.Background(), port.CompletionRequest{Prompt: "写正文", Temperature: 0.8})
	require.Error(t, err)
	assert.Equal(t, 1, fake.calls)
	assert.True(t, errors.HasCode(err, errors.CodeGatewayError))
}

func TestCompleteCarriesUsageMetadata(t *testing.T) {
	msg := schema.AssistantMessage("第一章正文", nil)
	msg.ResponseMeta = &schema.ResponseMeta{
		Usage: &schema.TokenUsage{PromptTokens: 120, CompletionTokens: 800},
	}
	gw := newFakeGateway(&fakeChatModel{replies: []*schema.Message{msg}})

	result, err := gw.Complete(context.Background(), port.CompletionRequest{
		Prompt:      "写正文",
		Model:       "gpt-4o-mini",
		Temperature: 0.8,
	})
	require.NoError(t, err)
	assert.Equal(t, "第一章正文", result.Text)
	assert.Equal(t, "openai", result.Provider)
	assert.Equal(t, 120, result.PromptTokens)
	assert.Equal(t, 800, result.CompletionTokens)
}
