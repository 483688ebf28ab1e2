package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/matiasleandrokruk/soksol/internal/domain/chat"
	"github.com/matiasleandrokruk/soksol/internal/infra/llm"
	"github.com/matiasleandrokruk/soksol/internal/infra/ratelimit"
)

// ErrInvalidPolicy wraps every policy file decoding or validation failure.
var ErrInvalidPolicy = errors.New("invalid policy file")

// Policy holds the pipeline tunables that may be overridden from YAML.
// Fields missing from the file keep their defaults.
type Policy struct {
	RateLimit         ratelimit.Policy `yaml:"rate_limit"`
	Validation        chat.Limits      `yaml:"validation"`
	Upstream          UpstreamPolicy   `yaml:"upstream"`
	BlockedUserAgents []string         `yaml:"blocked_user_agents"`
	SystemPrompt      string           `yaml:"system_prompt"`
	LatestLabel       string           `yaml:"latest_label"`
	DefaultLocale     string           `yaml:"default_locale"`
}

// UpstreamPolicy bounds calls to the model provider.
type UpstreamPolicy struct {
	Timeout time.Duration   `yaml:"timeout"`
	Retry   llm.RetryPolicy `yaml:"retry"`
}

// DefaultPolicy returns the built-in pipeline tunables.
func DefaultPolicy() Policy {
	return Policy{
		RateLimit:         ratelimit.DefaultPolicy(),
		Validation:        chat.DefaultLimits(),
		Upstream:          UpstreamPolicy{Timeout: llm.DefaultAttemptTimeout, Retry: llm.DefaultRetryPolicy()},
		BlockedUserAgents: chat.DefaultBlockedUserAgents(),
		SystemPrompt:      chat.DefaultSystemPrompt,
		LatestLabel:       chat.DefaultLatestLabel,
		DefaultLocale:     "ko",
	}
}

// LoadPolicy reads path and overlays it on DefaultPolicy.
func LoadPolicy(path string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy %s: %w", path, err)
	}
	return ParsePolicy(raw)
}

// ParsePolicy decodes YAML over DefaultPolicy and validates the result.
// Unknown keys are rejected so typos do not silently keep defaults.
func ParsePolicy(raw []byte) (Policy, error) {
	p := DefaultPolicy()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Policy{}, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	if err := p.validate(); err != nil {
		return Policy{}, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	return p, nil
}

func (p Policy) validate() error {
	for _, pattern := range p.BlockedUserAgents {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("blocked_user_agents: %q: %w", pattern, err)
		}
	}
	if _, err := language.Parse(p.DefaultLocale); err != nil {
		return fmt.Errorf("default_locale: %w", err)
	}
	if p.Upstream.Retry.MaxRetries < 0 {
		return errors.New("upstream.retry.max_retries must not be negative")
	}
	if p.RateLimit.DelayThreshold > 1 {
		return errors.New("rate_limit.delay_threshold must be at most 1")
	}
	return nil
}
