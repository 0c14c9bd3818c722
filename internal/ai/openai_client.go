package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.GPT4oMini

// OpenAIClient implements Client against the Chat Completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

type Option func(*openai.ClientConfig)

// WithBaseURL points the client at an alternate API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(cfg *openai.ClientConfig) {
		cfg.BaseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

func NewOpenAIClient(apiKey, model string, opts ...Option) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ai: api key must not be empty")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := openai.DefaultConfig(apiKey)
	for _, opt := range opts {
		opt(&cfg)
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// GetReply sends the transcript plus the new user input and returns the
// model's text. An empty or choiceless response is an error so the caller's
// fallback path also covers malformed replies.
func (c *OpenAIClient) GetReply(ctx context.Context, history []Message, input string) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, m := range history {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Text,
		})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: input,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: msgs,
	})
	if err != nil {
		return "", fmt.Errorf("ai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("ai: no choices in response")
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", errors.New("ai: empty reply content")
	}
	return reply, nil
}
