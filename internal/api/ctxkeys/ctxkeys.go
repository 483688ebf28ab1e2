// Shared context keys for the API layer.
// Kept in a leaf package so middleware and handlers can both import it.
package ctxkeys

import "context"

// Key is the named type for all API context keys.
// Using a named type avoids collisions with string keys from other packages
// at runtime (context.Value compares both type and value).
type Key string

const (
	// ClientKey is the rate-limit identity of the caller.
	// Injected by the Identity middleware; never logged.
	ClientKey Key = "client_key"

	// Locale is the negotiated response language as a BCP 47 tag ("ko", "en").
	Locale Key = "locale"
)

// WithValue adds a ctxkeys.Key value to the context.
func WithValue(ctx context.Context, key Key, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

// String returns the string stored under key, or "" when absent.
func String(ctx context.Context, key Key) string {
	v, _ := ctx.Value(key).(string)
	return v
}
