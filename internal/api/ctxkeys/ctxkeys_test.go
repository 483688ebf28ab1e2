package ctxkeys

import (
	"context"
	"testing"
)

func TestWithValue_SetsAndGetsTypedKey(t *testing.T) {
	t.Parallel()

	ctx := WithValue(context.Background(), ClientKey, "203.0.113.1")
	got, ok := ctx.Value(ClientKey).(string)
	if !ok {
		t.Fatalf("expected string value")
	}
	if got != "203.0.113.1" {
		t.Fatalf("expected 203.0.113.1, got %q", got)
	}
}

func TestString_MissingOrUntypedKey(t *testing.T) {
	t.Parallel()

	if got := String(context.Background(), Locale); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	//nolint:staticcheck // plain string key on purpose
	ctx := context.WithValue(context.Background(), "locale", "en")
	if got := String(ctx, Locale); got != "" {
		t.Fatalf("string key must not collide with typed key, got %q", got)
	}
}
