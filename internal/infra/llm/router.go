// Provider router.
// Router maps provider names to factories and builds the configured one on demand.
package llm

import (
	"fmt"
	"sort"
	"strings"
)

// Factory builds a Provider. It runs on first use, so a missing credential
// surfaces as a request failure rather than a startup failure.
type Factory func() (Provider, error)

// Router selects the Provider factory named by the configuration.
type Router struct {
	factories       map[string]Factory
	defaultProvider string
}

// NewRouter creates a Router with an initial set of factories and a default key.
func NewRouter(factories map[string]Factory, defaultProvider string) *Router {
	fs := make(map[string]Factory, len(factories))
	for k, v := range factories {
		fs[k] = v
	}
	return &Router{factories: fs, defaultProvider: strings.ToLower(strings.TrimSpace(defaultProvider))}
}

// NewRouterFromSettings registers every built-in provider and selects
// s.Provider, defaulting to gemini.
func NewRouterFromSettings(s Settings) *Router {
	name := s.Provider
	if strings.TrimSpace(name) == "" {
		name = providerGemini
	}
	return NewRouter(map[string]Factory{
		providerGemini: func() (Provider, error) {
			if s.GeminiAPIKey == "" {
				return nil, &Error{Kind: KindConfig, Provider: providerGemini, Err: ErrMissingAPIKey}
			}
			return NewGeminiProvider(s.GeminiBaseURL, s.GeminiAPIKey, s.GeminiModel), nil
		},
		providerOpenAI: func() (Provider, error) {
			if s.OpenAIAPIKey == "" {
				return nil, &Error{Kind: KindConfig, Provider: providerOpenAI, Err: ErrMissingAPIKey}
			}
			return NewOpenAIProvider(s.OpenAIAPIKey, s.OpenAIBaseURL, s.OpenAIModel), nil
		},
		providerAnthropic: func() (Provider, error) {
			return NewAnthropicProvider(s.AnthropicAPIKey, s.AnthropicModel)
		},
		providerOllama: func() (Provider, error) {
			return NewOllamaProvider(s.OllamaBaseURL, s.OllamaModel)
		},
	}, name)
}

// Register adds (or replaces) a factory under the given key.
func (r *Router) Register(key string, f Factory) {
	r.factories[key] = f
}

// Name returns the selected provider key.
func (r *Router) Name() string { return r.defaultProvider }

// Build constructs the selected provider. It satisfies Factory.
func (r *Router) Build() (Provider, error) {
	f, ok := r.factories[r.defaultProvider]
	if !ok {
		return nil, &Error{
			Kind: KindConfig,
			Err:  fmt.Errorf("%w %q (available: %v)", ErrUnknownProvider, r.defaultProvider, r.keys()),
		}
	}
	return f()
}

// keys returns the registered provider names (for error messages).
func (r *Router) keys() []string {
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
