package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matiasleandrokruk/soksol/internal/infra/llm"
)

func TestClassify_TypedKinds(t *testing.T) {
	t.Parallel()

	cases := map[llm.Kind]Code{
		llm.KindTimeout:     CodeTimeout,
		llm.KindRateLimited: CodeRateLimit,
		llm.KindQuota:       CodeQuotaExceeded,
		llm.KindAuth:        CodeAuth,
		llm.KindConfig:      CodeAuth,
		llm.KindNotFound:    CodeModelNotFound,
		llm.KindEmpty:       CodeInternal,
		llm.KindUnavailable: CodeInternal,
	}
	for kind, want := range cases {
		err := fmt.Errorf("generate: %w", &llm.Error{Kind: kind})
		assert.Equal(t, want, Classify(err), "kind %s", kind)
	}
}

func TestClassify_TypedKindBeatsText(t *testing.T) {
	t.Parallel()

	// The detail mentions a model, but the status said rate limited.
	err := &llm.Error{Kind: llm.KindRateLimited, Detail: "model overloaded"}
	assert.Equal(t, CodeRateLimit, Classify(err))
}

func TestClassify_ContextErrors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CodeTimeout, Classify(context.DeadlineExceeded))
	assert.Equal(t, CodeInternal, Classify(context.Canceled))
	assert.Equal(t, CodeOK, Classify(nil))
}

func TestClassifyText_RulesInOrder(t *testing.T) {
	t.Parallel()

	cases := []struct {
		msg  string
		want Code
	}{
		{"The operation was aborted", CodeTimeout},
		{"request timeout after 20s", CodeTimeout},
		{"status 429", CodeRateLimit},
		{"Too Many Requests", CodeRateLimit},
		{"rate limit reached", CodeRateLimit},
		{"Quota exceeded for metric", CodeQuotaExceeded},
		{"limit exceeded", CodeQuotaExceeded},
		{"API key not valid", CodeAuth},
		{"permission denied", CodeAuth},
		{"status 403", CodeAuth},
		{"404 page", CodeModelNotFound},
		{"model gemini-x is not supported", CodeModelNotFound},
		{"generate: invalid argument", CodeInternal},
		{"something odd", CodeInternal},
		{"", CodeInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyText(tc.msg), "msg %q", tc.msg)
	}
}

func TestClassify_UnknownKindFallsBackToText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CodeQuotaExceeded, Classify(errors.New("RESOURCE_EXHAUSTED: quota")))
	assert.Equal(t, CodeAuth, Classify(&llm.Error{Kind: llm.KindUnknown, Detail: "unauthorized client"}))
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusBadRequest, statusFor(CodeEmpty))
	assert.Equal(t, http.StatusBadRequest, statusFor(CodeBlockedUA))
	assert.Equal(t, http.StatusTooManyRequests, statusFor(CodeRateLimit))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(CodeTimeout))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(CodeQuotaExceeded))
	assert.Equal(t, http.StatusInternalServerError, statusFor(CodeAuth))
	assert.Equal(t, http.StatusBadGateway, statusFor(CodeModelNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(CodeInternal))
	assert.Equal(t, http.StatusOK, statusFor(CodeOK))
	assert.Equal(t, http.StatusNotFound, StatusFor(CodeNotFound))
	assert.Equal(t, http.StatusMethodNotAllowed, StatusFor(CodeMethodNotAllowed))
}
