package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
)

const (
	// DefaultOllamaModel is used when OLLAMA_MODEL is unset.
	DefaultOllamaModel = "llama3.2:3b"
	// DefaultOllamaBaseURL points at a local Ollama daemon.
	DefaultOllamaBaseURL = "http://localhost:11434"
	// DefaultAnthropicModel is used when ANTHROPIC_MODEL is unset.
	DefaultAnthropicModel = "claude-3-5-haiku-latest"

	providerOllama    = "ollama"
	providerAnthropic = "anthropic"
)

// LangchainProvider adapts any langchaingo llms.Model to Provider.
type LangchainProvider struct {
	llm  llms.Model
	meta ModelMeta
}

// NewLangchainProvider wraps an already constructed langchaingo model.
func NewLangchainProvider(provider, modelName string, model llms.Model) *LangchainProvider {
	return &LangchainProvider{llm: model, meta: ModelMeta{ID: modelName, Provider: provider}}
}

// NewOllamaProvider creates a provider backed by a local Ollama server.
func NewOllamaProvider(baseURL, model string) (*LangchainProvider, error) {
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	m, err := ollama.New(ollama.WithModel(model), ollama.WithServerURL(baseURL))
	if err != nil {
		return nil, &Error{Kind: KindConfig, Provider: providerOllama, Err: fmt.Errorf("create ollama model: %w", err)}
	}
	return NewLangchainProvider(providerOllama, model, m), nil
}

// NewAnthropicProvider creates a provider backed by the Anthropic API.
func NewAnthropicProvider(apiKey, model string) (*LangchainProvider, error) {
	if apiKey == "" {
		return nil, &Error{Kind: KindConfig, Provider: providerAnthropic, Err: ErrMissingAPIKey}
	}
	if model == "" {
		model = DefaultAnthropicModel
	}
	m, err := anthropic.New(anthropic.WithToken(apiKey), anthropic.WithModel(model))
	if err != nil {
		return nil, &Error{Kind: KindConfig, Provider: providerAnthropic, Err: fmt.Errorf("create anthropic model: %w", err)}
	}
	return NewLangchainProvider(providerAnthropic, model, m), nil
}

// Shapes sends the prompt as a single completion first, then as one human
// chat message.
func (p *LangchainProvider) Shapes() []Shape {
	return []Shape{
		{Name: "prompt", Generate: p.generatePrompt},
		{Name: "content", Generate: p.generateContent},
	}
}

func (p *LangchainProvider) generatePrompt(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, p.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: generate: %w", p.meta.Provider, err)
	}
	return out, nil
}

func (p *LangchainProvider) generateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := p.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	})
	if err != nil {
		return "", fmt.Errorf("%s: generate content: %w", p.meta.Provider, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", &Error{Kind: KindEmpty, Provider: p.meta.Provider, Err: ErrEmptyResponse}
	}
	return resp.Choices[0].Content, nil
}

func (p *LangchainProvider) ModelInfo() ModelMeta { return p.meta }
