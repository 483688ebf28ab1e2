package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

// fakeModel is a scripted langchaingo llms.Model.
type fakeModel struct {
	reply string
	err   error
	calls int
}

func (m *fakeModel) GenerateContent(_ context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestLangchainProvider_Generate(t *testing.T) {
	t.Parallel()

	model := &fakeModel{reply: "  bonjour  "}
	p := NewLangchainProvider("ollama", "llama3.2:3b", model)
	c := NewClient(func() (Provider, error) { return p, nil }, WithSleeper(noSleep))

	text, err := c.Generate(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "bonjour" {
		t.Errorf("unexpected text %q", text)
	}
	if model.calls != 1 {
		t.Errorf("expected a single model call, got %d", model.calls)
	}
	if got := p.ModelInfo(); got.Provider != "ollama" || got.ID != "llama3.2:3b" {
		t.Errorf("unexpected model info %+v", got)
	}
}

func TestLangchainProvider_ErrorTextDrivesRetry(t *testing.T) {
	t.Parallel()

	model := &fakeModel{err: errors.New("API returned unexpected status code: 429: rate limit")}
	p := NewLangchainProvider("anthropic", "claude", model)
	c := NewClient(func() (Provider, error) { return p, nil }, WithSleeper(noSleep))

	_, err := c.Generate(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected error")
	}
	// Two shapes per attempt, three attempts.
	if model.calls != 6 {
		t.Errorf("expected 6 model calls, got %d", model.calls)
	}
}

func TestNewAnthropicProvider_RequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewAnthropicProvider("", "")
	if KindOf(err) != KindConfig || !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected missing key config error, got %v", err)
	}
}
