package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the minimal interface needed by core logic to call a chat model.
// It mirrors the CreateChatCompletion method of go-openai so that Anthropic,
// Gemini and any OpenAI-compatible backend can be adapted behind it.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Supported backends.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

// DefaultModels maps each backend to the model used when none is configured.
var DefaultModels = map[string]string{
	ProviderAnthropic: "claude-sonnet-4-20250514",
	ProviderOpenAI:    "gpt-4o",
	ProviderGemini:    "gemini-2.5-flash",
}

var providerAliases = map[string]string{
	"claude": ProviderAnthropic,
	"google": ProviderGemini,
	"gpt":    ProviderOpenAI,
}

// NormalizeProvider lower-cases name and resolves aliases. Empty selects Anthropic.
func NormalizeProvider(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ProviderAnthropic
	}
	if canonical, ok := providerAliases[name]; ok {
		return canonical
	}
	return name
}

// Options selects and configures a backend.
type Options struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// New builds the Client for opts.Provider. It returns (nil, nil) when no API
// key is configured so callers can treat a missing model as a value.
func New(ctx context.Context, opts Options) (Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, nil
	}
	provider := NormalizeProvider(opts.Provider)
	model := opts.Model
	if model == "" {
		model = DefaultModels[provider]
	}
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicProvider(opts.APIKey, model, opts.BaseURL, opts.HTTPClient), nil
	case ProviderOpenAI:
		cfg := openai.DefaultConfig(opts.APIKey)
		if opts.BaseURL != "" {
			cfg.BaseURL = opts.BaseURL
		}
		if opts.HTTPClient != nil {
			cfg.HTTPClient = opts.HTTPClient
		}
		return &OpenAIProvider{Inner: openai.NewClientWithConfig(cfg), Model: model}, nil
	case ProviderGemini:
		return NewGeminiProvider(ctx, opts.APIKey, model, opts.HTTPClient)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}

// OpenAIProvider adapts *openai.Client to the Client interface.
type OpenAIProvider struct {
	Inner *openai.Client
	// Model is used when the request leaves Model empty.
	Model string
}

func (p *OpenAIProvider) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if request.Model == "" {
		request.Model = p.Model
	}
	return p.Inner.CreateChatCompletion(ctx, request)
}

// FirstContent returns the trimmed content of the first choice, or "".
func FirstContent(resp openai.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content)
}
