package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultOpenAIModel is used when OPENAI_MODEL is unset.
	DefaultOpenAIModel = "gpt-4o-mini"

	providerOpenAI = "openai"
)

// OpenAIProvider implements Provider on top of go-openai. The chat completion
// endpoint is the primary shape and the legacy completion endpoint the alternate.
type OpenAIProvider struct {
	api   *openai.Client
	model string
}

// NewOpenAIProvider creates an OpenAIProvider. baseURL may point at any
// OpenAI-compatible server; empty keeps the library default.
func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIProvider{api: openai.NewClientWithConfig(cfg), model: model}
}

func (p *OpenAIProvider) Shapes() []Shape {
	return []Shape{
		{Name: "chat", Generate: p.generateChat},
		{Name: "completion", Generate: p.generateCompletion},
	}
}

func (p *OpenAIProvider) generateChat(ctx context.Context, prompt string) (string, error) {
	resp, err := p.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindEmpty, Provider: providerOpenAI, Err: ErrEmptyResponse}
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) generateCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := p.api.CreateCompletion(ctx, openai.CompletionRequest{
		Model:  p.model,
		Prompt: prompt,
	})
	if err != nil {
		return "", mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindEmpty, Provider: providerOpenAI, Err: ErrEmptyResponse}
	}
	return resp.Choices[0].Text, nil
}

func (p *OpenAIProvider) ModelInfo() ModelMeta {
	return ModelMeta{ID: p.model, Provider: providerOpenAI}
}

// mapOpenAIError converts go-openai's status-carrying errors into *Error.
// Transport errors pass through unchanged.
func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{
			Kind:     KindFromStatus(apiErr.HTTPStatusCode, apiErr.Message),
			Provider: providerOpenAI,
			Status:   apiErr.HTTPStatusCode,
			Detail:   truncate(apiErr.Message, maxDetailLen),
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := ""
		if reqErr.Err != nil {
			detail = reqErr.Err.Error()
		}
		return &Error{
			Kind:     KindFromStatus(reqErr.HTTPStatusCode, detail),
			Provider: providerOpenAI,
			Status:   reqErr.HTTPStatusCode,
			Detail:   truncate(detail, maxDetailLen),
		}
	}
	return fmt.Errorf("openai: %w", err)
}
