package ai

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"

	"tailoring-engine/internal/platform/logger"
)

// OpenAIClient sends prompts straight to an OpenAI-compatible chat API.
type OpenAIClient struct {
	client *openai.Client
	model  string
	log    *logger.Logger
}

// NewOpenAIClient targets baseURL when set, e.g. a self-hosted gateway.
func NewOpenAIClient(apiKey, baseURL, model string, log *logger.Logger) *OpenAIClient {
	if log == nil {
		log = logger.Nop()
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    log.With("component", "openai"),
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	c.log.Debug("openai completion", "model", resp.Model, "total_tokens", resp.Usage.TotalTokens)
	return resp.Choices[0].Message.Content, nil
}
