package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const defaultPerplexityBaseURL = "https://api.perplexity.ai"

type PerplexityConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Perplexity speaks the OpenAI chat completions protocol, so it runs on the
// OpenAI client pointed at the Perplexity base URL.
type Perplexity struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewPerplexity(cfg PerplexityConfig) (*Perplexity, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("perplexity: api key not configured")
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.1-sonar-small-128k-online"
	}
	base, err := resolveBaseURL("perplexity", cfg.BaseURL, defaultPerplexityBaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = base
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}
	return &Perplexity{
		client:  openai.NewClientWithConfig(oc),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

func (p *Perplexity) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   1024,
		Temperature: 0.2,
		TopP:        0.9,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("perplexity: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
