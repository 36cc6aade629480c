package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
)

const defaultMaxTokens = 2000

// AnthropicProvider serves chat completions through the Anthropic Messages API.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider creates a provider. baseURL and httpClient are optional.
func NewAnthropicProvider(apiKey, model, baseURL string, httpClient *http.Client) *AnthropicProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &AnthropicProvider{client: anthropic.NewClient(opts...), model: model}
}

func (p *AnthropicProvider) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	model := request.Model
	if model == "" {
		model = p.model
	}
	params := toAnthropicParams(model, request)

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return openai.ChatCompletionResponse{}, fmt.Errorf("anthropic messages: %w", err)
	}

	var content strings.Builder
	for _, block := range message.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			content.WriteString(variant.Text)
		}
	}
	return openai.ChatCompletionResponse{
		ID:    message.ID,
		Model: string(message.Model),
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content.String()},
			FinishReason: openai.FinishReason(message.StopReason),
		}},
		Usage: openai.Usage{
			PromptTokens:     int(message.Usage.InputTokens),
			CompletionTokens: int(message.Usage.OutputTokens),
			TotalTokens:      int(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
	}, nil
}

// toAnthropicParams folds system messages into the System field and maps the
// remaining turns onto user/assistant message params.
func toAnthropicParams(model string, request openai.ChatCompletionRequest) anthropic.MessageNewParams {
	maxTokens := int64(request.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
	}
	if request.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(request.Temperature))
	}
	var system []string
	for _, msg := range request.Messages {
		switch msg.Role {
		case openai.ChatMessageRoleSystem:
			system = append(system, msg.Content)
		case openai.ChatMessageRoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	if len(system) > 0 {
		params.System = []anthropic.TextBlockParam{{Text: strings.Join(system, "\n\n")}}
	}
	return params
}
