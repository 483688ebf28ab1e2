package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Kind classifies an upstream failure.
type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindRateLimited Kind = "rate_limited"
	KindQuota       Kind = "quota_exceeded"
	KindUnavailable Kind = "unavailable"
	KindAuth        Kind = "auth"
	KindNotFound    Kind = "not_found"
	KindEmpty       Kind = "empty"
	KindConfig      Kind = "config"
	KindUnknown     Kind = "unknown"
)

// Transient reports whether a failure of this kind is expected to succeed on retry.
func (k Kind) Transient() bool {
	switch k {
	case KindTimeout, KindRateLimited, KindQuota, KindUnavailable:
		return true
	default:
		return false
	}
}

var (
	// ErrMissingAPIKey is returned on first use when the selected provider has no key.
	ErrMissingAPIKey = errors.New("api key not configured")

	// ErrEmptyResponse is returned when no response shape yields usable text.
	ErrEmptyResponse = errors.New("empty response from upstream")

	// ErrUnknownProvider is returned when the configured provider name is not registered.
	ErrUnknownProvider = errors.New("unknown llm provider")
)

// maxDetailLen caps the upstream text kept in an Error.
const maxDetailLen = 200

// Error is a classified upstream failure.
type Error struct {
	Kind     Kind
	Provider string
	Status   int
	// Detail is a length-capped diagnostic from the upstream body. It never
	// contains the prompt.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Provider != "" {
		b.WriteString(e.Provider)
		b.WriteString(": ")
	}
	b.WriteString(kindText(e.Kind))
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// kindText keeps the coarse category words in the error text so that
// substring classification of wrapped errors still lands in the right bucket.
func kindText(k Kind) string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindRateLimited:
		return "rate limited (429)"
	case KindQuota:
		return "quota exceeded"
	case KindUnavailable:
		return "temporarily unavailable"
	case KindAuth:
		return "unauthorized"
	case KindNotFound:
		return "not found"
	case KindEmpty:
		return "empty reply"
	case KindConfig:
		return "configuration error"
	default:
		return "request failed"
	}
}

// KindFromStatus maps an upstream HTTP status (and body hints) to a Kind.
func KindFromStatus(status int, body string) Kind {
	lower := strings.ToLower(body)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimeout
	case status == http.StatusTooManyRequests:
		if strings.Contains(lower, "quota") {
			return KindQuota
		}
		return KindRateLimited
	case status == http.StatusBadRequest && strings.Contains(lower, "api key"):
		return KindAuth
	case status >= 500:
		return KindUnavailable
	default:
		return KindUnknown
	}
}

// KindOf extracts the Kind of err. Deadline errors are timeouts; anything
// unclassified is KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

var transientHints = []string{"timeout", "429", "rate limit", "rate_limit", "ratelimit", "quota", "exceed", "tempor"}

// IsTransient reports whether err should be retried. Typed kinds decide
// directly; unknown errors fall back to substring hints in their text.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if k := KindOf(err); k != KindUnknown {
		return k.Transient()
	}
	raw := strings.ToLower(err.Error())
	for _, hint := range transientHints {
		if strings.Contains(raw, hint) {
			return true
		}
	}
	return false
}

// truncate shortens s to at most maxChars runes.
func truncate(s string, maxChars int) string {
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxChars])
}
