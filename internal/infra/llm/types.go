// Package llm defines the model-agnostic upstream provider abstraction.
// All types here are shared between the provider interface and adapters.
package llm

import "context"

// Shape is one way of phrasing a generation request to a provider. A provider
// may accept several shapes across API versions; the client tries them in order.
type Shape struct {
	Name     string
	Generate func(ctx context.Context, prompt string) (string, error)
}

// ModelMeta describes the model / provider identity.
type ModelMeta struct {
	ID       string // e.g. "models/gemini-2.5-flash", "gpt-4o-mini"
	Provider string // e.g. "gemini", "openai"
}

// Settings carries everything needed to build any registered provider.
// Keys may be empty; the provider that needs one fails on first use.
type Settings struct {
	Provider string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	AnthropicAPIKey string
	AnthropicModel  string

	OllamaBaseURL string
	OllamaModel   string
}
