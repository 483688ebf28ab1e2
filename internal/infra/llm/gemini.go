// Gemini REST adapter.
// GeminiProvider calls the Generative Language API using stdlib net/http.
// Endpoint used:
//   - POST /v1beta/{model}:generateContent
//
// Two request bodies are supported: the current "contents" form and the older
// "input" form some API revisions still expect.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	mimeJSON          = "application/json"
	headerContentType = "Content-Type"
	headerGoogAPIKey  = "x-goog-api-key"

	// DefaultGeminiModel is used when GEN_MODEL is unset.
	DefaultGeminiModel = "gemini-2.5-flash"
	// DefaultGeminiBaseURL is the public Generative Language endpoint.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

	providerGemini = "gemini"
)

// GeminiProvider implements Provider against the Gemini REST API.
type GeminiProvider struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGeminiProvider creates a GeminiProvider. The model name is normalized to
// the "models/<id>" form the API expects.
func NewGeminiProvider(baseURL, apiKey, model string) *GeminiProvider {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	return &GeminiProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   NormalizeModelName(model),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NormalizeModelName prefixes a bare model id with "models/".
func NormalizeModelName(model string) string {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultGeminiModel
	}
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}

// ─── internal Gemini JSON types ──────────────────────────────────────────────

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiContentsRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiInputRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// ─── Provider implementation ────────────────────────────────────────────────

// Shapes returns the "contents" request form first and the "input" form second.
func (p *GeminiProvider) Shapes() []Shape {
	return []Shape{
		{Name: "contents", Generate: p.generateContents},
		{Name: "input", Generate: p.generateInput},
	}
}

func (p *GeminiProvider) generateContents(ctx context.Context, prompt string) (string, error) {
	return p.generate(ctx, geminiContentsRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	})
}

func (p *GeminiProvider) generateInput(ctx context.Context, prompt string) (string, error) {
	return p.generate(ctx, geminiInputRequest{Model: p.model, Input: prompt})
}

func (p *GeminiProvider) generate(ctx context.Context, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	respBody, err := p.doPost(ctx, "/v1beta/"+p.model+":generateContent", body)
	if err != nil {
		return "", err
	}
	defer respBody.Close() //nolint:errcheck

	var decoded map[string]any
	if decodeErr := json.NewDecoder(respBody).Decode(&decoded); decodeErr != nil {
		return "", fmt.Errorf("gemini: decode response: %w", decodeErr)
	}
	text, err := ExtractText(decoded)
	if err != nil {
		return "", withProvider(err, providerGemini)
	}
	return text, nil
}

// ModelInfo returns static metadata for this provider/model.
func (p *GeminiProvider) ModelInfo() ModelMeta {
	return ModelMeta{ID: p.model, Provider: providerGemini}
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// doPost sends a POST request to baseURL+path and returns the response body.
// Non-2xx statuses become a classified *Error. Caller closes the body.
func (p *GeminiProvider) doPost(ctx context.Context, path string, body []byte) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set(headerContentType, mimeJSON)
	req.Header.Set(headerGoogAPIKey, p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close() //nolint:errcheck
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &Error{
			Kind:     KindFromStatus(resp.StatusCode, string(raw)),
			Provider: providerGemini,
			Status:   resp.StatusCode,
			Detail:   truncate(strings.TrimSpace(string(raw)), maxDetailLen),
		}
	}
	return resp.Body, nil
}

func withProvider(err error, provider string) error {
	if e, ok := err.(*Error); ok && e.Provider == "" {
		cp := *e
		cp.Provider = provider
		return &cp
	}
	return err
}
