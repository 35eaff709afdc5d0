package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAIInputRequired        = errors.New("input is required")
	ErrAIRequestFailed        = errors.New("failed to generate AI response")
)

// FallbackAIResponse is returned when the model answers without any choice.
const FallbackAIResponse = "I couldn't generate a response. Please try again."

const assistantTitle = "FocusFlow AI Assistant"

const assistantSystemPrompt = `You are a helpful project management assistant. Keep your responses concise and focused:

1. Start with a simple "Hello" or "Hi"

2. When showing task statistics, use this format:
- Completed: [number]
- To do: [number]
- In Progress: [number]
- High priority: [number]

3. Keep suggestions brief and relevant to the question
- Use bullet points for clarity
- No more than 3 suggestions
- Focus on actionable steps

4. Use bold for important numbers or key points
- Example: "You have **2** high priority tasks"
- Example: "Focus on **completing the current task** first"

Keep responses direct and helpful, avoiding unnecessary decoration or lengthy explanations.`

// AIConfig configures the OpenAI-compatible completion endpoint.
type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type AIService struct {
	client *openai.Client
	model  string
}

// NewAIService returns nil when no API key is configured.
func NewAIService(cfg AIConfig) *AIService {
	if cfg.APIKey == "" {
		return nil
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{
		Transport: titleTransport{base: http.DefaultTransport},
	}

	return &AIService{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// Generate answers a question about the board described by taskContext
func (s *AIService) Generate(ctx context.Context, input, taskContext string) (string, error) {
	if s == nil || s.client == nil {
		return "", ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(input) == "" {
		return "", ErrAIInputRequired
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: assistantSystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: fmt.Sprintf("Context: %s\n\nUser question: %s", taskContext, input),
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAIRequestFailed, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return FallbackAIResponse, nil
	}

	return resp.Choices[0].Message.Content, nil
}

// titleTransport tags every request with the application title OpenRouter displays.
type titleTransport struct {
	base http.RoundTripper
}

func (t titleTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("X-Title", assistantTitle)
	return t.base.RoundTrip(req)
}
