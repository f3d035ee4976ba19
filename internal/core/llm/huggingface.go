package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type HuggingFaceConfig struct {
	APIKey        string
	BaseURL       string
	ChatModel     string
	ContentModels []string
	Timeout       time.Duration
	HTTPClient    *http.Client
}

// HuggingFace talks to the hosted inference API's text-generation task.
type HuggingFace struct {
	client        *jsonClient
	chatModel     string
	contentModels []string
}

func NewHuggingFace(cfg HuggingFaceConfig) *HuggingFace {
	headers := map[string]string{}
	if cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + cfg.APIKey
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt2"
	}
	return &HuggingFace{
		client:        newJSONClient(cfg.BaseURL, cfg.Timeout, cfg.HTTPClient, headers),
		chatModel:     cfg.ChatModel,
		contentModels: cfg.ContentModels,
	}
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p"`
	DoSample       bool    `json:"do_sample"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
	Error         string `json:"error"`
}

var (
	chatParams    = hfParameters{MaxNewTokens: 250, Temperature: 0.7, TopP: 0.9, DoSample: true}
	contentParams = hfParameters{MaxNewTokens: 1024, Temperature: 0.5, TopP: 0.95, DoSample: true}
)

// Complete sends prompt to the chat model as a single completion request.
func (h *HuggingFace) Complete(ctx context.Context, prompt string) (string, error) {
	return h.textGeneration(ctx, h.chatModel, prompt, chatParams)
}

// Generate tries each content model in order until one yields text.
func (h *HuggingFace) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if len(h.contentModels) == 0 {
		return "", errors.New("huggingface: no content models configured")
	}
	prompt := fmt.Sprintf("%s\n\nUser: %s\n\nAssistant:", systemPrompt, userPrompt)

	var errs []error
	for _, model := range h.contentModels {
		text, err := h.textGeneration(ctx, model, prompt, contentParams)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", model, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			return text, nil
		}
		errs = append(errs, fmt.Errorf("%s: empty generation", model))
	}
	return "", errors.Join(errs...)
}

func (h *HuggingFace) textGeneration(ctx context.Context, model, prompt string, params hfParameters) (string, error) {
	var raw json.RawMessage
	if err := h.client.postJSON(ctx, "/models/"+model, hfRequest{Inputs: prompt, Parameters: params}, &raw); err != nil {
		return "", err
	}

	// the API answers with a list for text-generation and an object for errors
	var list []hfGeneration
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return "", errors.New("empty generation list")
		}
		return list[0].GeneratedText, nil
	}
	var single hfGeneration
	if err := json.Unmarshal(raw, &single); err != nil {
		return "", fmt.Errorf("decode generation: %w", err)
	}
	if single.Error != "" {
		return "", errors.New(single.Error)
	}
	return single.GeneratedText, nil
}
