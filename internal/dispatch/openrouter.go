package dispatch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Iron-Ham/superchat/internal/prompt"
)

// DefaultBaseURL is the OpenRouter API root.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterConfig configures an OpenRouterClient.
type OpenRouterConfig struct {
	APIKey     string
	BaseURL    string
	MaxRetries int
	// Referer and Title identify the application to OpenRouter.
	Referer    string
	Title      string
	HTTPClient *http.Client
}

// OpenRouterClient talks to OpenRouter through its OpenAI-compatible API.
type OpenRouterClient struct {
	client openai.Client
}

// NewOpenRouterClient creates a client. An empty API key is rejected.
func NewOpenRouterClient(cfg OpenRouterConfig) (*OpenRouterClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter: missing API key")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &OpenRouterClient{client: openai.NewClient(opts...)}, nil
}

// Complete sends one chat completion request.
func (c *OpenRouterClient) Complete(ctx context.Context, req Request) (*Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model:    req.RemoteID,
		Messages: convertMessages(req.Preamble, req.Messages),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openrouter %s: %w", req.RemoteID, err)
	}
	if len(resp.Choices) == 0 {
		return &Completion{Model: resp.Model}, nil
	}

	choice := resp.Choices[0]
	return &Completion{
		Text:         choice.Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        resp.Model,
		FinishReason: string(choice.FinishReason),
	}, nil
}

func convertMessages(preamble string, msgs []prompt.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	if preamble != "" {
		result = append(result, openai.SystemMessage(preamble))
	}
	for _, msg := range msgs {
		switch msg.Role {
		case prompt.RoleAssistant:
			result = append(result, openai.AssistantMessage(msg.Content))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}
	return result
}
