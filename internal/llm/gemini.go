package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// GeminiProvider serves chat completions through the Google Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a provider backed by the Gemini API.
func NewGeminiProvider(ctx context.Context, apiKey, model string, httpClient *http.Client) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	model := request.Model
	if model == "" {
		model = p.model
	}
	contents, system := toGeminiContents(request.Messages)
	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	config := &genai.GenerateContentConfig{MaxOutputTokens: int32(maxTokens)}
	if request.Temperature > 0 {
		config.Temperature = genai.Ptr(request.Temperature)
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return openai.ChatCompletionResponse{}, fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return openai.ChatCompletionResponse{}, errors.New("empty response from gemini")
	}
	out := openai.ChatCompletionResponse{
		Model: model,
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: text},
			FinishReason: openai.FinishReasonStop,
		}},
	}
	if resp.UsageMetadata != nil {
		out.Usage = openai.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}

func toGeminiContents(messages []openai.ChatCompletionMessage) ([]*genai.Content, string) {
	var contents []*genai.Content
	var system []string
	for _, msg := range messages {
		switch msg.Role {
		case openai.ChatMessageRoleSystem:
			system = append(system, msg.Content)
		case openai.ChatMessageRoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	return contents, strings.Join(system, "\n\n")
}
