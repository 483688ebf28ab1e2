// Upstream Provider interface.
// Adapters (Gemini REST, OpenAI, langchaingo backends) implement this interface
// so the chat pipeline is never coupled to a specific vendor.
package llm

// Provider is one upstream generative-text backend.
type Provider interface {
	// Shapes returns the request shapes to try for one attempt, primary first.
	Shapes() []Shape

	// ModelInfo returns static metadata about the provider/model.
	ModelInfo() ModelMeta
}
