package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tailoring-engine/internal/config"
	"tailoring-engine/internal/domain"
	"tailoring-engine/internal/model"
	"tailoring-engine/internal/platform/logger"
	"tailoring-engine/pkg/ai/formatters"
)

// Completer turns one prompt into the model's raw text answer. ServiceClient
// and OpenAIClient implement it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ServiceClient calls the internal ai-service chat endpoint.
type ServiceClient struct {
	BaseURL string
	HTTP    *http.Client
	log     *logger.Logger
}

func NewServiceClient(baseURL string, timeout time.Duration, log *logger.Logger) *ServiceClient {
	if log == nil {
		log = logger.Nop()
	}
	return &ServiceClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		log:     log.With("component", "ai-service"),
	}
}

type chatRequest struct {
	Agent string `json:"agent"`
	Input string `json:"input"`
}

type chatResponse struct {
	Agent  string `json:"agent"`
	Output string `json:"output"`
}

// Complete posts the prompt to /v1/chat once. Failures are returned to the
// caller, which decides whether to retry.
func (c *ServiceClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{Agent: "auto", Input: prompt})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	c.log.Debug("ai-service response", "status", resp.StatusCode, "bytes", len(rb), "took", time.Since(start))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai-service returned non-200 status: %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.Unmarshal(rb, &out); err != nil {
		return "", fmt.Errorf("decode ai-service response: %w", err)
	}
	return out.Output, nil
}

// NewCompleter picks the provider named in the configuration.
func NewCompleter(cfg config.AI, log *logger.Logger) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderService, "":
		return NewServiceClient(cfg.ServiceURL, cfg.Timeout, log), nil
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, log), nil
	}
	return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
}

// Client exposes the generation, evaluation and improve capabilities on top
// of a Completer. Each call goes through the matching formatter.
type Client struct {
	llm             Completer
	DefaultLanguage string
}

func NewClient(llm Completer, language string) *Client {
	return &Client{llm: llm, DefaultLanguage: language}
}

func (c *Client) GenerateCV(ctx context.Context, in *model.GenerationInput) (string, error) {
	return formatters.NewCVFormatter(c.llm, c.DefaultLanguage).Format(ctx, in)
}

func (c *Client) GenerateCoverLetter(ctx context.Context, in *model.GenerationInput) (string, error) {
	return formatters.NewCoverLetterFormatter(c.llm, c.DefaultLanguage).Format(ctx, in)
}

func (c *Client) GenerateSpeech(ctx context.Context, in *model.GenerationInput) (*domain.Speech, error) {
	return formatters.NewSpeechFormatter(c.llm, c.DefaultLanguage).Format(ctx, in)
}

func (c *Client) Evaluate(ctx context.Context, kind domain.MaterialKind, content string) (*domain.ApplicationStrengthEvaluation, error) {
	return formatters.NewEvaluationFormatter(c.llm, c.DefaultLanguage).Format(ctx, kind, content)
}

func (c *Client) Improve(ctx context.Context, req model.ImproveRequest) (string, error) {
	return formatters.NewImproveFormatter(c.llm, c.DefaultLanguage).Format(ctx, req)
}
